package pptx

// elementKind distinguishes the four renderable element types a slide
// can contain, in rendering priority order (Text < Table < List <
// Image).
type elementKind int

const (
	kindText elementKind = iota
	kindTable
	kindList
	kindImage
)

func (k elementKind) priority() int { return int(k) }

// ElementPosition is a shape's (x, y) offset in EMUs, read from
// <a:xfrm>/<a:off>; absent on a shape (including shapes nested inside a
// group with no transform of their own) defaults to (0, 0) and sorts
// first within its type band.
type ElementPosition struct {
	X int64
	Y int64
}

// TextRun is one formatted run of text within a paragraph.
type TextRun struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	SizePt    float64
}

// TextParagraph is either a plain paragraph or a list item; Level is
// 1-based and only meaningful when IsListItem is true.
type TextParagraph struct {
	Runs       []TextRun
	IsListItem bool
	Ordered    bool
	Level      int
}

// TableCell holds the run sequence for one grid cell.
type TableCell struct {
	Runs []TextRun
}

// TableRow is an ordered sequence of cells.
type TableRow struct {
	Cells []TableCell
}

// ImageReference names an embedded picture by its relationship id; Target
// is resolved once the slide's own rels have been read.
type ImageReference struct {
	ID     string
	Target string
}

// SlideElement is one child of <p:spTree>, tagged by Kind with exactly
// the matching payload populated.
type SlideElement struct {
	Kind       elementKind
	Position   ElementPosition
	Paragraphs []TextParagraph // kindText, kindList
	Rows       []TableRow      // kindTable
	Image      ImageReference  // kindImage
}

// Slide is one parsed presentation slide; Number is 1-based.
type Slide struct {
	Number    int
	Elements  []SlideElement
	ImageRefs []ImageReference
	ImageData map[string][]byte
	Notes     string
}
