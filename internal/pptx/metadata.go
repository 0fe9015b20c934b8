package pptx

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"regexp"
	"sort"

	"github.com/Goldziher/kreuzberg-go/internal/types"
)

type coreProperties struct {
	Title       string `xml:"title"`
	Creator     string `xml:"creator"`
	Description string `xml:"description"`
	Subject     string `xml:"subject"`
}

var fontTypefaceRE = regexp.MustCompile(`typeface="([^"]+)"`)

// readMetadata populates a PptxMetadata from docProps/core.xml (title,
// author, description, summary) and the theme's typeface declarations
// (fonts); any missing part is simply left at its zero value.
func readMetadata(zr *zip.Reader) *types.PptxMetadata {
	meta := &types.PptxMetadata{}

	if f := findZipEntry(zr, "docProps/core.xml"); f != nil {
		if rc, err := f.Open(); err == nil {
			defer rc.Close()
			data, _ := io.ReadAll(rc)
			var core coreProperties
			if xml.Unmarshal(data, &core) == nil {
				meta.Title = core.Title
				meta.Author = core.Creator
				meta.Description = core.Description
				meta.Summary = core.Subject
			}
		}
	}

	meta.Fonts = collectFonts(zr)
	return meta
}

// collectFonts scans every theme part for <a:latin typeface="..."/>
// declarations, the closest OOXML analogue to a presentation-wide font
// list, and returns the deduplicated, sorted set.
func collectFonts(zr *zip.Reader) []string {
	seen := map[string]bool{}
	for _, f := range zr.File {
		if !isThemePart(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		data, _ := io.ReadAll(rc)
		rc.Close()

		for _, match := range fontTypefaceRE.FindAllStringSubmatch(string(data), -1) {
			if match[1] != "" && match[1] != "+mn-lt" && match[1] != "+mj-lt" {
				seen[match[1]] = true
			}
		}
	}

	fonts := make([]string, 0, len(seen))
	for f := range seen {
		fonts = append(fonts, f)
	}
	sort.Strings(fonts)
	return fonts
}

func isThemePart(name string) bool {
	return len(name) > len("ppt/theme/") && name[:len("ppt/theme/")] == "ppt/theme/"
}

// readNotes returns the speaker-notes text for a slide, concatenating
// every paragraph's run text from its notesSlideN.xml part; returns ""
// if the part is absent.
func readNotes(zr *zip.Reader, slideIndex int) string {
	f := findZipEntry(zr, notesSlidePath(slideIndex))
	if f == nil {
		return ""
	}
	rc, err := f.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return ""
	}

	elements, err := parseSlideXML(data)
	if err != nil && len(elements) == 0 {
		return ""
	}

	var out string
	for _, elem := range elements {
		if elem.Kind != kindText && elem.Kind != kindList {
			continue
		}
		for _, p := range elem.Paragraphs {
			if out != "" {
				out += "\n"
			}
			out += paragraphPlainText(p)
		}
	}
	return out
}
