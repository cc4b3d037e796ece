// Package modeltest builds documents for projector tests without going
// through the decoder.
package modeltest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

// Table builds a table from cell texts. Rows are 20pt high and columns
// 100pt wide, starting at (72, top). The first headerRows rows are marked
// as headers.
func Table(top float64, headerRows int, rows [][]string) *model.TableRegion {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	t := model.NewTableRegion(len(rows), cols)
	for i, r := range rows {
		for j, text := range r {
			t.Rows[i][j].Text = text
			t.Rows[i][j].FontSize = 10
			t.Rows[i][j].BBox = model.NewBBox(72+100*float64(j), top+20*float64(i), 100, 20)
		}
	}
	t.BBox = model.NewBBox(72, top, 100*float64(cols), 20*float64(len(rows)))
	t.HeaderRowCount = headerRows
	t.Ruled = true
	return t
}

// Merge makes (row, col) span rows × cols slots
func Merge(t *model.TableRegion, row, col, rows, cols int) {
	for r := row; r < row+rows; r++ {
		for c := col; c < col+cols; c++ {
			cell := &t.Rows[r][c]
			if r == row && c == col {
				cell.RowSpan, cell.ColSpan, cell.Merged = rows, cols, true
				continue
			}
			cell.Covered = true
			cell.Text = ""
		}
	}
}

// Paragraph builds a single-run body paragraph
func Paragraph(text string, size float64, bbox model.BBox) *model.Paragraph {
	return &model.Paragraph{
		Runs: []model.Run{{Text: text, FontFamily: "Helvetica", FontSize: size, BBox: bbox}},
		BBox: bbox,
	}
}

// Heading builds a level-n heading paragraph
func Heading(text string, level int, bbox model.BBox) *model.Paragraph {
	p := Paragraph(text, 18, bbox)
	p.Runs[0].Bold = true
	p.Role = model.RoleHeading
	p.Level = level
	return p
}

// Image builds a PNG image of w × h pixels placed at bbox
func Image(w, h int, bbox model.BBox) *model.RasterImage {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / max(w, 1)), G: 128, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return &model.RasterImage{
		BBox:        bbox,
		Data:        buf.Bytes(),
		Encoding:    model.EncodingPNG,
		PixelWidth:  w,
		PixelHeight: h,
	}
}

// Page builds a page holding elems in order. Positions and table page
// numbers are filled in.
func Page(number int, width, height float64, elems ...model.Element) *model.PageModel {
	p := model.NewPageModel(number, width, height)
	for i, e := range elems {
		switch v := e.(type) {
		case *model.Paragraph:
			v.Position = i
		case *model.TableRegion:
			v.Position = i
			v.Page = number
		case *model.RasterImage:
			v.Position = i
		}
		p.AddElement(e)
	}
	return p
}

// Document builds a document from pages. Every table becomes its own
// logical table.
func Document(pages ...*model.PageModel) *model.Document {
	doc := model.NewDocument()
	doc.Metadata.Title = "Test document"
	for _, p := range pages {
		doc.AddPage(p)
		for i, t := range p.Tables() {
			doc.Tables = append(doc.Tables, &model.LogicalTable{
				Table: t.Clone(),
				Parts: []model.TableRef{{Page: p.Number, Table: i}},
			})
		}
	}
	if len(pages) > 0 {
		doc.Metadata.PageWidth = pages[0].Width
		doc.Metadata.PageHeight = pages[0].Height
	}
	doc.Metadata.PageCount = len(pages)
	return doc
}

// Join marks the first table of page to as the continuation of the last
// table of page from, merging rows into the logical table. Header rows of
// the continuation are skipped.
func Join(doc *model.Document, from, to int) {
	fromPage, toPage := doc.GetPage(from), doc.GetPage(to)
	ft, tt := fromPage.Tables(), toPage.Tables()
	fromRef := model.TableRef{Page: from, Table: len(ft) - 1}
	toRef := model.TableRef{Page: to, Table: 0}
	doc.Continuations = append(doc.Continuations, model.Continuation{From: fromRef, To: toRef})

	var lt *model.LogicalTable
	kept := doc.Tables[:0]
	for _, l := range doc.Tables {
		if l.Parts[0] == toRef {
			continue
		}
		if l.Parts[len(l.Parts)-1] == fromRef {
			lt = l
		}
		kept = append(kept, l)
	}
	doc.Tables = kept
	next := tt[0]
	for _, row := range next.Rows[next.HeaderRowCount:] {
		lt.Table.Rows = append(lt.Table.Rows, append([]model.Cell(nil), row...))
	}
	lt.Parts = append(lt.Parts, toRef)
}
