package pptx

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
)

type relationshipsXML struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Relationships []relationship `xml:"Relationship"`
}

type relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// slidePaths enumerates the presentation's slide XML entries in
// presentation order: read ppt/_rels/presentation.xml.rels, keep
// relationships whose Type ends in
// "slide" (excluding slideMaster/slideLayout, whose Type strings end in
// those longer words instead), normalize each Target, and sort
// lexicographically. Falls back to globbing ppt/slides/slide*.xml when
// the rels file is absent or unreadable.
func slidePaths(zr *zip.Reader) ([]string, error) {
	rels, err := readRelationships(zr, "ppt/_rels/presentation.xml.rels")
	if err != nil || rels == nil {
		return fallbackSlidePaths(zr), nil
	}

	var paths []string
	for _, rel := range rels.Relationships {
		if !strings.HasSuffix(rel.Type, "/slide") {
			continue
		}
		paths = append(paths, normalizeRelTarget(rel.Target))
	}

	if len(paths) == 0 {
		return fallbackSlidePaths(zr), nil
	}

	sort.Strings(paths)
	return paths, nil
}

func fallbackSlidePaths(zr *zip.Reader) []string {
	var paths []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			paths = append(paths, f.Name)
		}
	}
	sort.Strings(paths)
	return paths
}

// normalizeRelTarget normalizes a relationship target: a leading "/" is
// stripped (archive-root-relative already); a path already under
// "ppt/" is kept as-is; a path under "slides/" is re-rooted under
// "ppt/"; anything else is assumed relative to ppt/slides/.
func normalizeRelTarget(target string) string {
	target = strings.TrimPrefix(target, "/")
	switch {
	case strings.HasPrefix(target, "ppt/"):
		return target
	case strings.HasPrefix(target, "slides/"):
		return "ppt/" + target
	default:
		return "ppt/slides/" + target
	}
}

// readRelationships loads and parses a .rels part. It returns (nil, nil)
// both when the entry doesn't exist in the archive and when it is
// malformed XML, so callers fall back the same way in either case
// (broken rels are no better than absent ones for iteration purposes);
// only a failure to open or read the entry is returned as an error.
func readRelationships(zr *zip.Reader, entryPath string) (*relationshipsXML, error) {
	f := findZipEntry(zr, entryPath)
	if f == nil {
		return nil, nil
	}

	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, nil
	}
	return &rels, nil
}

func findZipEntry(zr *zip.Reader, entryPath string) *zip.File {
	for _, f := range zr.File {
		if f.Name == entryPath {
			return f
		}
	}
	return nil
}

// slideRelsPath derives a slide's own .rels part from its XML path:
// "ppt/slides/slide1.xml" -> "ppt/slides/_rels/slide1.xml.rels".
func slideRelsPath(slideXMLPath string) string {
	dir := path.Dir(slideXMLPath)
	name := path.Base(slideXMLPath)
	return path.Join(dir, "_rels", name+".rels")
}

// resolveImageTarget joins a slide's directory with a relationship
// target, collapsing ".." segments, producing the image's full archive
// path.
func resolveImageTarget(slideXMLPath, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	dir := path.Dir(slideXMLPath)
	return path.Clean(path.Join(dir, target))
}

// notesSlidePath derives a slide's speaker-notes part path from its
// index, following the OOXML convention notesSlideN.xml <-> slideN.xml.
func notesSlidePath(slideIndex int) string {
	return "ppt/notesSlides/notesSlide" + strconv.Itoa(slideIndex) + ".xml"
}
