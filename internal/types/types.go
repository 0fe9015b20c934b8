// Package types holds the shared data model threaded through every
// extractor, the pipeline, and the cache: ExtractionResult and its
// supporting structures.
package types

// Table is an ordered two-dimensional text grid extracted from a document,
// alongside a pre-rendered Markdown representation.
type Table struct {
	Cells      [][]string `json:"cells"`
	Markdown   string     `json:"markdown"`
	PageNumber int        `json:"page_number"`
}

// PDFMetadata carries the subset of PDF document info this engine surfaces.
type PDFMetadata struct {
	PageCount int     `json:"page_count"`
	Producer  string  `json:"producer,omitempty"`
	Title     string  `json:"title,omitempty"`
	Author    string  `json:"author,omitempty"`
	Created   *string `json:"created,omitempty"`
	Modified  *string `json:"modified,omitempty"`
}

// PptxMetadata carries presentation-level metadata pulled from
// docProps/core.xml.
type PptxMetadata struct {
	Title       string   `json:"title,omitempty"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Fonts       []string `json:"fonts,omitempty"`
}

// ImageMetadata describes a single extracted raster image.
type ImageMetadata struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// ExcelMetadata describes a spreadsheet workbook.
type ExcelMetadata struct {
	SheetNames []string `json:"sheet_names"`
	SheetCount int      `json:"sheet_count"`
}

// EmailMetadata describes a parsed email message.
type EmailMetadata struct {
	Subject   string   `json:"subject,omitempty"`
	FromEmail string   `json:"from_email,omitempty"`
	ToEmails  []string `json:"to_emails,omitempty"`
	Date      string   `json:"date,omitempty"`
}

// Metadata is the per-format-specific metadata envelope attached to every
// ExtractionResult. At most one of the typed slots is populated depending
// on the extractor that produced the result; Additional carries anything
// else (element counts, sheet metadata key/value pairs, etc.) and Error
// records post-processor failures appended during the pipeline run.
type Metadata struct {
	PDF        *PDFMetadata   `json:"pdf,omitempty"`
	Pptx       *PptxMetadata  `json:"pptx,omitempty"`
	Image      *ImageMetadata `json:"image,omitempty"`
	Excel      *ExcelMetadata `json:"excel,omitempty"`
	Email      *EmailMetadata `json:"email,omitempty"`
	Additional map[string]any `json:"additional,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// AppendError semicolon-joins a new post-processor failure message onto
// Metadata.Error.
func (m *Metadata) AppendError(msg string) {
	if m.Error == "" {
		m.Error = msg
		return
	}
	m.Error = m.Error + "; " + msg
}

// ExtractionResult is the pipeline's universal currency: what every
// extractor produces and what every post-processor mutates in place.
type ExtractionResult struct {
	Content           string   `json:"content"`
	MimeType          string   `json:"mime_type"`
	Metadata          Metadata `json:"metadata"`
	Tables            []Table  `json:"tables,omitempty"`
	DetectedLanguages []string `json:"detected_languages,omitempty"`
	Chunks            []string `json:"chunks,omitempty"`
}

// BatchItem wraps one ExtractionResult (or error) positioned at its
// original submission index, used by the batch extraction paths to
// preserve ordering without aborting the whole batch on one failure.
type BatchItem struct {
	Index   int               `json:"index"`
	Result  *ExtractionResult `json:"result,omitempty"`
	Success bool              `json:"success"`
	Error   string            `json:"error_message,omitempty"`
}
