// Package mimedetect maps a file path (and, when peeking is requested, a
// content prefix) to a canonical MIME string: extension lookup against a
// canonical table first, gabriel-vasile/mimetype content sniffing when
// the extension alone can't decide.
package mimedetect

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Goldziher/kreuzberg-go/internal/kerr"
)

// byExtension is the canonical extension → MIME table. Lookup is
// case-insensitive.
var byExtension = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".markdown": "text/markdown",
	".html": "text/html",
	".htm":  "text/html",
	".xml":  "application/xml",
	".json": "application/json",
	".csv":  "text/csv",
	".pdf":  "application/pdf",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".ppt":  "application/vnd.ms-powerpoint",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".doc":  "application/msword",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
	".odt":  "application/vnd.oasis.opendocument.text",
	".ods":  "application/vnd.oasis.opendocument.spreadsheet",
	".odp":  "application/vnd.oasis.opendocument.presentation",
	".rtf":  "application/rtf",
	".eml":  "message/rfc822",
	".msg":  "application/vnd.ms-outlook",
	".zip":  "application/zip",
	".tar":  "application/x-tar",
	".gz":   "application/gzip",
	".7z":   "application/x-7z-compressed",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",
}

// canonicalMimes is the set of MIME strings this engine recognizes as a
// registered extractor target, used by ValidateMimeType.
var canonicalMimes = func() map[string]bool {
	out := make(map[string]bool, len(byExtension))
	for _, m := range byExtension {
		out[m] = true
	}
	return out
}()

// DetectPath resolves path's extension to a canonical MIME type. When
// peek is true and the extension lookup is ambiguous or missing, it reads
// a bounded prefix of the file's content via mimetype.DetectFile to
// disambiguate.
func DetectPath(path string, peek bool) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if mime, ok := byExtension[ext]; ok {
		return mime, nil
	}

	if !peek {
		return "", kerr.NewUnsupportedFormatError(ext)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", kerr.NewIOError("sniff mime type for "+path, err)
	}
	return normalizeSniffed(mtype.String()), nil
}

// DetectBytes sniffs mimeType from a byte buffer directly, for callers
// extracting from in-memory content rather than a file on disk.
func DetectBytes(content []byte) string {
	mtype := mimetype.Detect(content)
	return normalizeSniffed(mtype.String())
}

// normalizeSniffed strips a trailing "; charset=..." parameter that
// mimetype.Detect sometimes appends to text/* results, so downstream MIME
// comparisons can use simple string equality.
func normalizeSniffed(mime string) string {
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.TrimSpace(mime)
}

// ValidateMimeType accepts any image/* MIME or any MIME present in the
// canonical extension table, rejecting everything else.
func ValidateMimeType(mime string) bool {
	if strings.HasPrefix(mime, "image/") {
		return true
	}
	return canonicalMimes[mime]
}
