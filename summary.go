package pdfbackend

import (
	"time"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

// Summary is the JSON-friendly overview of a converted document
type Summary struct {
	Title        string          `json:"title,omitempty"`
	Author       string          `json:"author,omitempty"`
	PageCount    int             `json:"page_count"`
	Pages        []PageSummary   `json:"pages"`
	SkippedPages []int           `json:"skipped_pages,omitempty"`
	Tables       []TableSummary  `json:"tables"`
	Paragraphs   int             `json:"paragraphs"`
	Images       int             `json:"images"`
	Warnings     []model.Warning `json:"warnings,omitempty"`
	Partial      bool            `json:"partial"`
	ElapsedMS    int64           `json:"elapsed_ms"`
}

// PageSummary describes one converted page
type PageSummary struct {
	Number      int               `json:"number"`
	Width       float64           `json:"width"`
	Height      float64           `json:"height"`
	Orientation model.Orientation `json:"orientation"`
	Paragraphs  int               `json:"paragraphs"`
	Tables      int               `json:"tables"`
	Images      int               `json:"images"`
}

// TableSummary describes one logical table
type TableSummary struct {
	Pages      []int      `json:"pages"`
	Rows       int        `json:"rows"`
	Columns    int        `json:"columns"`
	HeaderRows int        `json:"header_rows"`
	Header     []string   `json:"header,omitempty"`
	Preview    [][]string `json:"preview,omitempty"`
}

// previewRows is the number of body rows included in a TableSummary
const previewRows = 3

// Summary condenses the result for reporting
func (r *Result) Summary() Summary {
	doc := r.Document
	s := Summary{
		Title:        doc.Metadata.Title,
		Author:       doc.Metadata.Author,
		PageCount:    doc.Metadata.PageCount,
		SkippedPages: doc.SkippedPages,
		Paragraphs:   doc.ParagraphCount(),
		Images:       doc.ImageCount(),
		Warnings:     r.Warnings,
		Partial:      r.Partial(),
		ElapsedMS:    r.Elapsed.Round(time.Millisecond).Milliseconds(),
		Pages:        make([]PageSummary, 0, len(doc.Pages)),
		Tables:       make([]TableSummary, 0, len(doc.Tables)),
	}
	for _, p := range doc.Pages {
		orient := model.Portrait
		if p.Landscape() {
			orient = model.Landscape
		}
		s.Pages = append(s.Pages, PageSummary{
			Number:      p.Number,
			Width:       p.Width,
			Height:      p.Height,
			Orientation: orient,
			Paragraphs:  len(p.Paragraphs()),
			Tables:      len(p.Tables()),
			Images:      len(p.Images()),
		})
	}
	for _, lt := range doc.Tables {
		t := lt.Table
		ts := TableSummary{
			Rows:       t.RowCount(),
			Columns:    t.ColCount(),
			HeaderRows: t.HeaderRowCount,
		}
		for _, part := range lt.Parts {
			ts.Pages = append(ts.Pages, part.Page)
		}
		if t.HeaderRowCount > 0 {
			ts.Header = t.RowTexts(0)
		}
		for i := t.HeaderRowCount; i < t.RowCount() && i < t.HeaderRowCount+previewRows; i++ {
			ts.Preview = append(ts.Preview, t.RowTexts(i))
		}
		s.Tables = append(s.Tables, ts)
	}
	return s
}
