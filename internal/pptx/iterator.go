package pptx

import (
	"archive/zip"
	"io"

	"github.com/Goldziher/kreuzberg-go/internal/kerr"
)

// slideState names the per-slide phases (Queued, Reading-XML, Parsing,
// Resolving-Images, Rendered, Yielded), implemented as an explicit loop
// rather than a generator so failure at any phase stops iteration
// without a hidden suspension point.
type slideState int

const (
	stateQueued slideState = iota
	stateReadingXML
	stateParsing
	stateResolvingImages
	stateRendered
	stateYielded
)

// Iterator is a pull-based, finite lazy sequence over a presentation's
// slides: it holds the archive, the ordered slide paths, the current
// index, the shared image cache, and the current slide's phase, and
// nothing else, so cancellation
// (simply stopping calls to Next) is explicit rather than implied by a
// suspended goroutine.
type Iterator struct {
	archive *zip.Reader
	paths   []string
	index   int
	cache   *ImageCache
	state   slideState
}

// NewIterator opens reader as a ZIP container and enumerates its slide
// parts; it does not read any slide XML yet (that happens lazily in
// Next).
func NewIterator(reader io.ReaderAt, size int64, cache *ImageCache) (*Iterator, error) {
	zr, err := zip.NewReader(reader, size)
	if err != nil {
		return nil, kerr.NewParsingError("open PPTX container", err)
	}

	paths, err := slidePaths(zr)
	if err != nil {
		return nil, kerr.NewParsingError("enumerate slide parts", err)
	}

	return &Iterator{archive: zr, paths: paths, cache: cache, state: stateQueued}, nil
}

// Len reports the total slide count.
func (it *Iterator) Len() int { return len(it.paths) }

// Next advances the state machine through one slide and returns it, or
// (nil, false, nil) once every slide has been yielded. A non-nil error
// means the current slide failed at whichever phase raised it; the
// iterator should not be called again afterward.
func (it *Iterator) Next() (*Slide, bool, error) {
	if it.index >= len(it.paths) {
		return nil, false, nil
	}

	slidePath := it.paths[it.index]
	slideNumber := it.index + 1

	it.state = stateReadingXML
	f := findZipEntry(it.archive, slidePath)
	if f == nil {
		return nil, false, kerr.NewParsingError("missing slide part "+slidePath, nil)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, false, kerr.NewIOError("open slide part "+slidePath, err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, false, kerr.NewIOError("read slide part "+slidePath, err)
	}

	it.state = stateParsing
	elements, err := parseSlideXML(data)
	if err != nil && len(elements) == 0 {
		return nil, false, kerr.NewParsingError("parse slide XML "+slidePath, err)
	}

	it.state = stateResolvingImages
	refs, err := readSlideRels(it.archive, slidePath)
	if err != nil {
		return nil, false, kerr.NewParsingError("read slide relationships "+slidePath, err)
	}

	imageData := map[string][]byte{}
	for _, ref := range refs {
		archivePath := resolveImageTarget(slidePath, ref.Target)
		if cached, ok := it.cache.Get(archivePath); ok {
			imageData[ref.ID] = cached
			continue
		}
		if imgFile := findZipEntry(it.archive, archivePath); imgFile != nil {
			if imgRC, err := imgFile.Open(); err == nil {
				raw, _ := io.ReadAll(imgRC)
				imgRC.Close()
				it.cache.Put(archivePath, raw)
				imageData[ref.ID] = raw
			}
		}
	}

	it.state = stateRendered
	slide := &Slide{
		Number:    slideNumber,
		Elements:  elements,
		ImageRefs: refs,
		ImageData: imageData,
		Notes:     readNotes(it.archive, slideNumber),
	}

	it.state = stateYielded
	it.index++
	return slide, true, nil
}

// readSlideRels loads the image relationships referenced from a slide's
// own .rels part, each entry carrying its relationship id.
func readSlideRels(zr *zip.Reader, slidePath string) ([]ImageReference, error) {
	rels, err := readRelationships(zr, slideRelsPath(slidePath))
	if err != nil || rels == nil {
		return nil, nil
	}

	var refs []ImageReference
	for _, rel := range rels.Relationships {
		if !isImageRelationship(rel.Type) {
			continue
		}
		refs = append(refs, ImageReference{ID: rel.ID, Target: rel.Target})
	}
	return refs, nil
}

func isImageRelationship(relType string) bool {
	return len(relType) >= len("/image") && relType[len(relType)-len("/image"):] == "/image"
}
