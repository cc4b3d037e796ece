package model

import (
	"fmt"
	"time"
)

// Orientation describes the dominant page orientation of a document
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

func (o Orientation) String() string {
	if o == Landscape {
		return "landscape"
	}
	return "portrait"
}

// MarshalText renders the orientation by name in JSON summaries
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses a name written by MarshalText
func (o *Orientation) UnmarshalText(text []byte) error {
	switch string(text) {
	case "portrait":
		*o = Portrait
	case "landscape":
		*o = Landscape
	default:
		return fmt.Errorf("unknown orientation %q", text)
	}
	return nil
}

// Metadata contains document-level information
type Metadata struct {
	Title       string
	Author      string
	Subject     string
	Creator     string
	Producer    string
	CreatedAt   time.Time
	PageWidth   float64
	PageHeight  float64
	Orientation Orientation
	PageCount   int // pages in the source PDF, including skipped ones
}

// TableRef addresses one table on one page
type TableRef struct {
	Page  int // 1-indexed page number
	Table int // index into the page's Tables()
}

// Continuation links a table on one page to the table on the previous page
// it continues. It is a lookup relation; neither table is modified.
type Continuation struct {
	From TableRef
	To   TableRef
}

// LogicalTable is a table as it appears to the reader, possibly assembled
// from several physical page regions.
type LogicalTable struct {
	Table *TableRegion
	Parts []TableRef
}

// Spans reports whether the logical table covers more than one page
func (l *LogicalTable) Spans() bool {
	return len(l.Parts) > 1
}

// Document is the structured representation of one converted PDF.
// It is built fresh for every conversion and never shared.
type Document struct {
	Metadata      Metadata
	Pages         []*PageModel
	Tables        []*LogicalTable
	Continuations []Continuation
	Warnings      []Warning
	SkippedPages  []int
}

// NewDocument creates an empty document
func NewDocument() *Document {
	return &Document{
		Pages: make([]*PageModel, 0),
	}
}

// AddPage appends a page
func (d *Document) AddPage(page *PageModel) {
	d.Pages = append(d.Pages, page)
}

// PageCount returns the number of decoded pages
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// GetPage returns the page with the given 1-indexed number, or nil
func (d *Document) GetPage(number int) *PageModel {
	for _, p := range d.Pages {
		if p.Number == number {
			return p
		}
	}
	return nil
}

// Warn records a non-fatal problem
func (d *Document) Warn(kind WarningKind, page int, format string, args ...any) {
	d.Warnings = append(d.Warnings, Warning{Kind: kind, Page: page, Message: fmt.Sprintf(format, args...)})
}

// Partial reports whether some pages were skipped
func (d *Document) Partial() bool {
	return len(d.SkippedPages) > 0
}

// LogicalTableAt returns the logical table whose first part is ref, and
// whether ref is a continuation part that has already been emitted.
func (d *Document) LogicalTableAt(ref TableRef) (lt *LogicalTable, continued bool) {
	for _, t := range d.Tables {
		for i, part := range t.Parts {
			if part == ref {
				return t, i > 0
			}
		}
	}
	return nil, false
}

// ParagraphCount returns the number of paragraphs across all pages
func (d *Document) ParagraphCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Paragraphs())
	}
	return n
}

// ImageCount returns the number of images across all pages
func (d *Document) ImageCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Images())
	}
	return n
}
