// Package registry implements the MIME-routed, priority-ranked extractor
// registry. Lookup resolves an exact MIME match first; failing that, it
// scans every registered `type/*` pattern and picks the highest-priority
// prefix match, breaking ties by registration order.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/Goldziher/kreuzberg-go/internal/kerr"
	"github.com/Goldziher/kreuzberg-go/internal/plugins"
)

// DefaultPriority is the priority Register assigns when the caller does
// not pick one.
const DefaultPriority int32 = 50

type registration struct {
	mimeType  string
	name      string
	extractor plugins.Extractor
	priority  int32
	seq       uint64
}

// Registry is a single-writer, many-reader mapping from MIME type to
// registered extractors. Reads take an RLock so concurrent Get calls never
// block each other.
type Registry struct {
	mu      sync.RWMutex
	byMime  map[string][]*registration
	nextSeq uint64
}

// New returns an empty registry. Callers typically construct one instance
// per process rather than relying on hidden global state, so tests can
// compose their own.
func New() *Registry {
	return &Registry{byMime: make(map[string][]*registration)}
}

// Register adds extractor under every MIME type it reports supporting, at
// DefaultPriority.
func (r *Registry) Register(extractor plugins.Extractor) {
	r.RegisterWithPriority(extractor, DefaultPriority)
}

// RegisterWithPriority adds extractor under every MIME type it reports
// supporting, at the given priority.
func (r *Registry) RegisterWithPriority(extractor plugins.Extractor, priority int32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mimeType := range extractor.SupportedMimeTypes() {
		r.nextSeq++
		reg := &registration{
			mimeType:  mimeType,
			name:      extractor.Name(),
			extractor: extractor,
			priority:  priority,
			seq:       r.nextSeq,
		}
		r.byMime[mimeType] = append(r.byMime[mimeType], reg)
	}
}

// Get resolves mimeType to the highest-priority extractor registered
// either as an exact match, or (failing that) as the highest-priority
// `type/*` prefix match. Ties are broken by earliest registration.
func (r *Registry) Get(mimeType string) (plugins.Extractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if regs, ok := r.byMime[mimeType]; ok && len(regs) > 0 {
		return bestOf(regs).extractor, nil
	}

	var best *registration
	for pattern, regs := range r.byMime {
		prefix, ok := strings.CutSuffix(pattern, "/*")
		if !ok {
			continue
		}
		prefix += "/"
		if !strings.HasPrefix(mimeType, prefix) {
			continue
		}
		candidate := bestOf(regs)
		if best == nil || isBetter(candidate, best) {
			best = candidate
		}
	}

	if best == nil {
		return nil, kerr.NewUnsupportedFormatError(mimeType)
	}
	return best.extractor, nil
}

// bestOf picks the highest-priority registration in regs, breaking ties by
// earliest sequence number (insertion order).
func bestOf(regs []*registration) *registration {
	best := regs[0]
	for _, reg := range regs[1:] {
		if isBetter(reg, best) {
			best = reg
		}
	}
	return best
}

func isBetter(candidate, current *registration) bool {
	if candidate.priority != current.priority {
		return candidate.priority > current.priority
	}
	return candidate.seq < current.seq
}

// Remove deregisters name from every MIME type/priority it was registered
// under.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for mimeType, regs := range r.byMime {
		filtered := regs[:0]
		for _, reg := range regs {
			if reg.name != name {
				filtered = append(filtered, reg)
			}
		}
		if len(filtered) == 0 {
			delete(r.byMime, mimeType)
		} else {
			r.byMime[mimeType] = filtered
		}
	}
}

// RemoveRegistration removes either one specific (name, priority)
// registration under mimeType, or (priority == nil) every registration for
// name under mimeType.
func (r *Registry) RemoveRegistration(mimeType, name string, priority *int32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	regs, ok := r.byMime[mimeType]
	if !ok {
		return
	}

	filtered := regs[:0]
	for _, reg := range regs {
		matches := reg.name == name && (priority == nil || reg.priority == *priority)
		if !matches {
			filtered = append(filtered, reg)
		}
	}
	if len(filtered) == 0 {
		delete(r.byMime, mimeType)
	} else {
		r.byMime[mimeType] = filtered
	}
}

// Supports reports whether Get(mimeType) would currently succeed.
func (r *Registry) Supports(mimeType string) bool {
	_, err := r.Get(mimeType)
	return err == nil
}

// MimeTypes returns every exact MIME pattern with at least one
// registration, sorted lexicographically.
func (r *Registry) MimeTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byMime))
	for mimeType := range r.byMime {
		out = append(out, mimeType)
	}
	sort.Strings(out)
	return out
}
