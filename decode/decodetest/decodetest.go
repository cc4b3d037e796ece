// Package decodetest builds synthetic pages for tests of the conversion
// pipeline.
//
// Coordinates passed to a PageBuilder use the top-left origin of the
// decoded page model; the builder writes the equivalent PDF content stream
// with a bottom-left origin.
package decodetest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rezaldwntr/pdf-backend-api/decode"
	"github.com/rezaldwntr/pdf-backend-api/font"
	"github.com/rezaldwntr/pdf-backend-api/model"
)

// Font resource names available on every built page
const (
	Regular = "F1"
	Bold    = "F2"
	Italic  = "F3"
)

// Resources returns the standard font resources used by PageBuilder
func Resources() *decode.Resources {
	spec := func(base string) font.Spec {
		return font.Spec{Subtype: "Type1", BaseFont: base, Encoding: "WinAnsiEncoding"}
	}
	return &decode.Resources{
		Fonts: map[string]font.Spec{
			Regular: spec("Helvetica"),
			Bold:    spec("Helvetica-Bold"),
			Italic:  spec("Helvetica-Oblique"),
		},
		XObjects:  map[string]*decode.XObject{},
		ExtGState: map[string]decode.ExtGState{},
	}
}

// PageBuilder accumulates content stream operators for one page
type PageBuilder struct {
	width, height float64
	rotate        int
	buf           bytes.Buffer
	res           *decode.Resources
	images        int
}

// NewPage starts a page of the given size in points
func NewPage(width, height float64) *PageBuilder {
	return &PageBuilder{width: width, height: height, res: Resources()}
}

// Rotate sets the page /Rotate value
func (b *PageBuilder) Rotate(deg int) *PageBuilder {
	b.rotate = deg
	return b
}

// Text shows s with its baseline at (x, y) in the given font resource
func (b *PageBuilder) Text(fontName string, size, x, y float64, s string) *PageBuilder {
	fmt.Fprintf(&b.buf, "BT /%s %g Tf %g %g Td (%s) Tj ET\n", fontName, size, x, b.height-y, Escape(s))
	return b
}

// Line strokes a segment of the given width
func (b *PageBuilder) Line(x0, y0, x1, y1, width float64) *PageBuilder {
	fmt.Fprintf(&b.buf, "%g w %g %g m %g %g l S\n", width, x0, b.height-y0, x1, b.height-y1)
	return b
}

// Fill paints a filled rectangle whose top-left corner is (x, y)
func (b *PageBuilder) Fill(x, y, w, h float64, c model.Color) *PageBuilder {
	fmt.Fprintf(&b.buf, "q %g %g %g rg %g %g %g %g re f Q\n",
		float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, x, b.height-y-h, w, h)
	return b
}

// Grid strokes a ruled grid with the given column and row edges
func (b *PageBuilder) Grid(xs, ys []float64) *PageBuilder {
	for _, y := range ys {
		b.Line(xs[0], y, xs[len(xs)-1], y, 0.5)
	}
	for _, x := range xs {
		b.Line(x, ys[0], x, ys[len(ys)-1], 0.5)
	}
	return b
}

// Image places a small gray image XObject in the box with top-left (x, y)
func (b *PageBuilder) Image(x, y, w, h float64) *PageBuilder {
	b.images++
	name := fmt.Sprintf("Im%d", b.images)
	b.res.XObjects[name] = &decode.XObject{Image: &decode.Image{
		Width: 2, Height: 2, BitsPerComponent: 8, Components: 1,
		Data: []byte{0, 128, 128, 255},
	}}
	fmt.Fprintf(&b.buf, "q %g 0 0 %g %g %g cm /%s Do Q\n", w, h, x, b.height-y-h, name)
	return b
}

// Raw appends content stream text verbatim
func (b *PageBuilder) Raw(s string) *PageBuilder {
	b.buf.WriteString(s)
	b.buf.WriteByte('\n')
	return b
}

// Build returns the page as page number n
func (b *PageBuilder) Build(n int) *decode.RawPage {
	return &decode.RawPage{
		Number:    n,
		Box:       model.BBox{X1: b.width, Y1: b.height},
		Rotate:    b.rotate,
		Contents:  append([]byte(nil), b.buf.Bytes()...),
		Resources: b.res,
	}
}

// Escape escapes a PDF literal string
func Escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// Source is an in-memory decode.Source
type Source struct {
	Pages []*decode.RawPage
	Meta  model.Metadata
	// Errs makes Page fail for the given page numbers
	Errs map[int]error
}

// NewSource wraps pages, numbering them from 1
func NewSource(pages ...*decode.RawPage) *Source {
	for i, p := range pages {
		p.Number = i + 1
	}
	src := &Source{Pages: pages}
	if len(pages) > 0 {
		w, h := pages[0].Size()
		src.Meta = model.Metadata{PageWidth: w, PageHeight: h}
		if w > h {
			src.Meta.Orientation = model.Landscape
		}
	}
	src.Meta.PageCount = len(pages)
	return src
}

func (s *Source) PageCount() int {
	return len(s.Pages)
}

func (s *Source) Page(number int) (*decode.RawPage, error) {
	if err := s.Errs[number]; err != nil {
		return nil, err
	}
	if number < 1 || number > len(s.Pages) {
		return nil, fmt.Errorf("%w: %d", decode.ErrNoSuchPage, number)
	}
	return s.Pages[number-1], nil
}

func (s *Source) Metadata() model.Metadata {
	return s.Meta
}
