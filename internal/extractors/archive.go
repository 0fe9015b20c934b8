package extractors

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bodgit/sevenzip"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/kerr"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// ArchiveEntry describes one member of an archive: name, size,
// is-directory, and optionally the decoded text of entries whose
// extension looks text-like.
type ArchiveEntry struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	IsDirectory bool   `json:"is_directory"`
	Text        string `json:"text,omitempty"`
}

// textLikeExtensions bounds which entries get their content decoded and
// surfaced inline; everything else is listed by name and size only.
var textLikeExtensions = map[string]bool{
	".txt": true, ".md": true, ".csv": true, ".json": true, ".xml": true,
	".yaml": true, ".yml": true, ".toml": true, ".ini": true, ".log": true,
	".html": true, ".htm": true,
}

// ArchiveExtractor enumerates zip, tar(.gz), and 7z containers, built on
// stdlib archive/zip and archive/tar with github.com/bodgit/sevenzip
// layered in for .7z, the one archive format stdlib doesn't cover.
type ArchiveExtractor struct{ base }

func NewArchiveExtractor() *ArchiveExtractor {
	return &ArchiveExtractor{base{
		name:     "archive",
		version:  "1.0.0",
		priority: 50,
		mimes: []string{
			"application/zip",
			"application/x-tar",
			"application/gzip",
			"application/x-7z-compressed",
		},
	}}
}

func (e *ArchiveExtractor) ExtractFile(ctx context.Context, path, mimeType string, cfg *config.ExtractionConfig) (*types.ExtractionResult, error) {
	return extractFileViaBytes(ctx, path, mimeType, cfg, e.ExtractBytes)
}

func (e *ArchiveExtractor) ExtractBytes(_ context.Context, content []byte, mimeType string, _ *config.ExtractionConfig) (*types.ExtractionResult, error) {
	var entries []ArchiveEntry
	var err error

	switch mimeType {
	case "application/zip":
		entries, err = listZip(content)
	case "application/x-7z-compressed":
		entries, err = listSevenZip(content)
	case "application/gzip":
		entries, err = listTarGz(content)
	default:
		entries, err = listTar(content)
	}
	if err != nil {
		return nil, kerr.NewParsingError("read archive", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	var b strings.Builder
	for _, entry := range entries {
		if entry.IsDirectory {
			b.WriteString(entry.Name + "/\n")
			continue
		}
		b.WriteString(entry.Name + " (" + humanizeSize(entry.Size) + ")\n")
		if entry.Text != "" {
			b.WriteString("```\n" + entry.Text + "\n```\n")
		}
	}

	return &types.ExtractionResult{
		Content:  b.String(),
		MimeType: mimeType,
		Metadata: types.Metadata{Additional: map[string]any{
			"entries":     entries,
			"entry_count": len(entries),
		}},
	}, nil
}

func isTextLike(name string) bool {
	return textLikeExtensions[strings.ToLower(filepath.Ext(name))]
}

func listZip(content []byte) ([]ArchiveEntry, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	entries := make([]ArchiveEntry, 0, len(reader.File))
	for _, f := range reader.File {
		entry := ArchiveEntry{Name: f.Name, Size: int64(f.UncompressedSize64), IsDirectory: f.FileInfo().IsDir()}
		if !entry.IsDirectory && isTextLike(f.Name) {
			entry.Text = readZipEntryText(f)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func readZipEntryText(f *zip.File) string {
	rc, err := f.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()
	raw, err := io.ReadAll(io.LimitReader(rc, 1<<20))
	if err != nil {
		return ""
	}
	return DecodeBestEffort(raw)
}

func listTar(content []byte) ([]ArchiveEntry, error) {
	return readTarEntries(tar.NewReader(bytes.NewReader(content)))
}

func listTarGz(content []byte) ([]ArchiveEntry, error) {
	gz, err := gzip.NewReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return readTarEntries(tar.NewReader(gz))
}

func readTarEntries(tr *tar.Reader) ([]ArchiveEntry, error) {
	var entries []ArchiveEntry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return entries, err
		}

		entry := ArchiveEntry{Name: hdr.Name, Size: hdr.Size, IsDirectory: hdr.Typeflag == tar.TypeDir}
		if !entry.IsDirectory && isTextLike(hdr.Name) {
			raw, _ := io.ReadAll(io.LimitReader(tr, 1<<20))
			entry.Text = DecodeBestEffort(raw)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func listSevenZip(content []byte) ([]ArchiveEntry, error) {
	reader, err := sevenzip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	entries := make([]ArchiveEntry, 0, len(reader.File))
	for _, f := range reader.File {
		entry := ArchiveEntry{Name: f.Name, Size: int64(f.UncompressedSize), IsDirectory: f.FileInfo().IsDir()}
		if !entry.IsDirectory && isTextLike(f.Name) {
			if rc, openErr := f.Open(); openErr == nil {
				raw, _ := io.ReadAll(io.LimitReader(rc, 1<<20))
				entry.Text = DecodeBestEffort(raw)
				rc.Close()
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func humanizeSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KB", "MB", "GB", "TB"}
	return fmt.Sprintf("%.1f%s", float64(n)/float64(div), suffixes[exp])
}
