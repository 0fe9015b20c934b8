package pptx

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

// Struct-tag element matching in encoding/xml compares by Name.Local
// when the tag carries no namespace, so these structs match OOXML's
// "p:"/"a:" prefixed elements without needing namespace plumbing.

type xfrmXML struct {
	Off struct {
		X int64 `xml:"x,attr"`
		Y int64 `xml:"y,attr"`
	} `xml:"off"`
}

type rPrXML struct {
	B  string `xml:"b,attr"`
	I  string `xml:"i,attr"`
	U  string `xml:"u,attr"`
	Sz string `xml:"sz,attr"`
}

func (r *rPrXML) toRunFormatting() (bold, italic, underline bool, sizePt float64) {
	if r == nil {
		return false, false, false, 0
	}
	bold = r.B == "1" || r.B == "true"
	italic = r.I == "1" || r.I == "true"
	underline = r.U != "" && r.U != "0" && r.U != "none"
	if sz, err := strconv.ParseFloat(r.Sz, 64); err == nil {
		sizePt = sz / 100
	}
	return
}

type runXML struct {
	RPr *rPrXML `xml:"rPr"`
	T   string  `xml:"t"`
}

// pPrXML carries paragraph properties. List-item detection: any child tag
// whose name starts with "bu" (buChar, buAutoNum, buNone, ...) marks the
// paragraph as a list item, and an explicit lvl attribute greater than
// zero is sufficient on its own, with no bullet child required. It has a
// custom UnmarshalXML since encoding/xml struct tags can't match "any
// child starting with a prefix."
type pPrXML struct {
	Lvl       *int
	HasBullet bool
	Ordered   bool
}

func (p *pPrXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local != "lvl" {
			continue
		}
		if lvl, err := strconv.Atoi(attr.Value); err == nil {
			p.Lvl = &lvl
		}
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if strings.HasPrefix(t.Name.Local, "bu") {
				p.HasBullet = true
				if t.Name.Local == "buAutoNum" {
					p.Ordered = true
				}
			}
			if err := d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return nil
			}
		}
	}
}

type paragraphXML struct {
	PPr  *pPrXML  `xml:"pPr"`
	Runs []runXML `xml:"r"`
}

func (p paragraphXML) toParagraph() TextParagraph {
	para := TextParagraph{}
	for _, r := range p.Runs {
		bold, italic, underline, sizePt := r.RPr.toRunFormatting()
		para.Runs = append(para.Runs, TextRun{Text: r.T, Bold: bold, Italic: italic, Underline: underline, SizePt: sizePt})
	}

	if p.PPr != nil {
		explicitLevel := p.PPr.Lvl != nil && *p.PPr.Lvl > 0
		if p.PPr.HasBullet || explicitLevel {
			para.IsListItem = true
			para.Ordered = p.PPr.Ordered
			para.Level = 1
			if p.PPr.Lvl != nil {
				para.Level = *p.PPr.Lvl + 1
			}
		}
	}
	return para
}

type txBodyXML struct {
	Paragraphs []paragraphXML `xml:"p"`
}

type spXML struct {
	SpPr struct {
		Xfrm xfrmXML `xml:"xfrm"`
	} `xml:"spPr"`
	TxBody *txBodyXML `xml:"txBody"`
}

type tcXML struct {
	TxBody txBodyXML `xml:"txBody"`
}

type trXML struct {
	Tc []tcXML `xml:"tc"`
}

type tblXML struct {
	Tr []trXML `xml:"tr"`
}

type graphicFrameXML struct {
	Xfrm    xfrmXML `xml:"xfrm"`
	Graphic struct {
		GraphicData struct {
			Tbl *tblXML `xml:"tbl"`
		} `xml:"graphicData"`
	} `xml:"graphic"`
}

type picXML struct {
	SpPr struct {
		Xfrm xfrmXML `xml:"xfrm"`
	} `xml:"spPr"`
	BlipFill struct {
		Blip struct {
			Embed string `xml:"embed,attr"`
		} `xml:"blip"`
	} `xml:"blipFill"`
}

// parseSlideXML parses one slide part's XML into its ordered element
// sequence: find <p:cSld>/<p:spTree>, then walk its children in
// declaration order.
func parseSlideXML(data []byte) ([]SlideElement, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == "spTree" {
			return walkChildren(dec, "spTree")
		}
	}
}

// walkChildren reads shape-tree children (p:sp, p:graphicFrame, p:pic,
// p:grpSp) in declaration order until the element named endName closes,
// recursing into p:grpSp so nested groups flatten into the same ordered
// sequence.
func walkChildren(dec *xml.Decoder, endName string) ([]SlideElement, error) {
	var elements []SlideElement

	for {
		tok, err := dec.Token()
		if err != nil {
			return elements, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp":
				var s spXML
				if err := dec.DecodeElement(&s, &t); err != nil {
					continue
				}
				elements = append(elements, shapeToElement(s))
			case "graphicFrame":
				var g graphicFrameXML
				if err := dec.DecodeElement(&g, &t); err != nil {
					continue
				}
				if g.Graphic.GraphicData.Tbl != nil {
					elements = append(elements, tableToElement(g))
				}
			case "pic":
				var p picXML
				if err := dec.DecodeElement(&p, &t); err != nil {
					continue
				}
				elements = append(elements, picToElement(p))
			case "grpSp":
				nested, err := walkChildren(dec, "grpSp")
				if err != nil {
					return elements, err
				}
				elements = append(elements, nested...)
			default:
				if err := dec.Skip(); err != nil {
					return elements, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == endName {
				return elements, nil
			}
		}
	}
}

func shapeToElement(s spXML) SlideElement {
	elem := SlideElement{
		Kind:     kindText,
		Position: ElementPosition{X: s.SpPr.Xfrm.Off.X, Y: s.SpPr.Xfrm.Off.Y},
	}
	if s.TxBody == nil {
		return elem
	}

	isList := false
	for _, p := range s.TxBody.Paragraphs {
		para := p.toParagraph()
		if para.IsListItem {
			isList = true
		}
		elem.Paragraphs = append(elem.Paragraphs, para)
	}
	if isList {
		elem.Kind = kindList
	}
	return elem
}

func tableToElement(g graphicFrameXML) SlideElement {
	elem := SlideElement{
		Kind:     kindTable,
		Position: ElementPosition{X: g.Xfrm.Off.X, Y: g.Xfrm.Off.Y},
	}
	for _, tr := range g.Graphic.GraphicData.Tbl.Tr {
		row := TableRow{}
		for _, tc := range tr.Tc {
			cell := TableCell{}
			for _, p := range tc.TxBody.Paragraphs {
				cell.Runs = append(cell.Runs, p.toParagraph().Runs...)
			}
			row.Cells = append(row.Cells, cell)
		}
		elem.Rows = append(elem.Rows, row)
	}
	return elem
}

func picToElement(p picXML) SlideElement {
	return SlideElement{
		Kind:     kindImage,
		Position: ElementPosition{X: p.SpPr.Xfrm.Off.X, Y: p.SpPr.Xfrm.Off.Y},
		Image:    ImageReference{ID: p.BlipFill.Blip.Embed},
	}
}
