package pptx

import (
	"html"
	"sort"
	"strconv"
	"strings"
)

// orderForRendering stable-sorts a slide's elements by (type_priority,
// y, x).
func orderForRendering(elements []SlideElement) []SlideElement {
	ordered := make([]SlideElement, len(elements))
	copy(ordered, elements)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Kind.priority() != b.Kind.priority() {
			return a.Kind.priority() < b.Kind.priority()
		}
		if a.Position.Y != b.Position.Y {
			return a.Position.Y < b.Position.Y
		}
		return a.Position.X < b.Position.X
	})
	return ordered
}

// ToMarkdown renders a slide: an optional slide-number comment, each
// element in rendering order, then a speaker-notes section if present.
func (s *Slide) ToMarkdown(includeSlideComment bool) string {
	var b strings.Builder

	if includeSlideComment {
		b.WriteString("\n\n<!-- Slide number: ")
		b.WriteString(strconv.Itoa(s.Number))
		b.WriteString(" -->\n")
	}

	for _, elem := range orderForRendering(s.Elements) {
		switch elem.Kind {
		case kindText:
			renderTextElement(&b, elem)
		case kindList:
			renderListElement(&b, elem)
		case kindTable:
			renderTableElement(&b, elem)
		case kindImage:
			renderImageElement(&b, elem, s.Number)
		}
	}

	if strings.TrimSpace(s.Notes) != "" {
		b.WriteString("\n**Speaker Notes:**\n\n")
		b.WriteString(s.Notes)
		b.WriteString("\n")
	}

	return b.String()
}

func paragraphPlainText(p TextParagraph) string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

func renderTextElement(b *strings.Builder, elem SlideElement) {
	var joined strings.Builder
	for i, p := range elem.Paragraphs {
		if i > 0 {
			joined.WriteString(" ")
		}
		joined.WriteString(paragraphPlainText(p))
	}

	collapsed := strings.ReplaceAll(joined.String(), "\n", " ")
	trimmed := strings.TrimSpace(collapsed)

	if trimmed != "" && len(trimmed) <= 100 {
		b.WriteString("# " + trimmed + "\n\n")
		return
	}

	for _, p := range elem.Paragraphs {
		b.WriteString(renderRunsMarkdown(p.Runs))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func renderRunsMarkdown(runs []TextRun) string {
	var b strings.Builder
	for _, r := range runs {
		text := r.Text
		if r.Bold {
			text = "**" + text + "**"
		}
		if r.Italic {
			text = "*" + text + "*"
		}
		b.WriteString(text)
	}
	return b.String()
}

func renderListElement(b *strings.Builder, elem SlideElement) {
	for _, p := range elem.Paragraphs {
		level := p.Level
		if level < 1 {
			level = 1
		}
		b.WriteString(strings.Repeat(" ", (level-1)*2))
		if p.Ordered {
			b.WriteString("1. ")
		} else {
			b.WriteString("- ")
		}
		b.WriteString(renderRunsMarkdown(p.Runs))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func renderTableElement(b *strings.Builder, elem SlideElement) {
	b.WriteString("<table>\n")
	for i, row := range elem.Rows {
		b.WriteString("<tr>")
		cellTag := "td"
		if i == 0 {
			cellTag = "th"
		}
		for _, cell := range row.Cells {
			text := html.EscapeString(runsPlainText(cell.Runs))
			b.WriteString("<" + cellTag + ">" + text + "</" + cellTag + ">")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>\n\n")
}

func runsPlainText(runs []TextRun) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

func renderImageElement(b *strings.Builder, elem SlideElement, slideNumber int) {
	id := elem.Image.ID
	b.WriteString("![" + id + "](slide_" + strconv.Itoa(slideNumber) + "_image_" + id + ".jpg)\n")
}
