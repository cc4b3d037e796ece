package decode

import (
	"github.com/rezaldwntr/pdf-backend-api/font"
	"github.com/rezaldwntr/pdf-backend-api/internal/filters"
	"github.com/rezaldwntr/pdf-backend-api/model"
)

// Source provides raw pages of one document. Implementations need not be
// safe for concurrent use.
type Source interface {
	PageCount() int
	// Page returns page number (1-based)
	Page(number int) (*RawPage, error)
	Metadata() model.Metadata
}

// RawPage is everything the decoder needs to interpret one page
type RawPage struct {
	Number int

	// Box is the visible page area in PDF user space (y up): the CropBox
	// when present, otherwise the MediaBox.
	Box    model.BBox
	Rotate int

	Contents  []byte
	Resources *Resources
}

// Resources are the named objects a content stream can refer to
type Resources struct {
	Fonts     map[string]font.Spec
	XObjects  map[string]*XObject
	ExtGState map[string]ExtGState
}

// ExtGState carries the graphics state parameters the decoder honours
type ExtGState struct {
	LineWidth float64 // zero when absent
}

// XObject is either a form or an image
type XObject struct {
	Form  *Form
	Image *Image
}

// Form is a reusable content stream
type Form struct {
	Contents []byte
	Matrix   model.Matrix
	// Resources is nil when the form inherits the resources of its caller
	Resources *Resources
}

// Image is an image XObject or inline image before filtering
type Image struct {
	Width            int
	Height           int
	BitsPerComponent int
	Components       int
	Indexed          bool
	Palette          []byte
	ImageMask        bool
	// Invert is set for /Decode [1 0]
	Invert bool

	Filters []filters.Filter
	Data    []byte
}

// NormalizedRotation returns Rotate reduced to 0, 90, 180 or 270
func (p *RawPage) NormalizedRotation() int {
	r := p.Rotate % 360
	if r < 0 {
		r += 360
	}
	return r - r%90
}

// Size returns the displayed page size, with width and height swapped for
// quarter-turn rotations.
func (p *RawPage) Size() (width, height float64) {
	w, h := p.Box.Width(), p.Box.Height()
	if r := p.NormalizedRotation(); r == 90 || r == 270 {
		return h, w
	}
	return w, h
}

// Normalization returns the matrix mapping PDF user space to displayed page
// space: origin at the top-left of the rotated page, y growing downward.
func (p *RawPage) Normalization() model.Matrix {
	b := p.Box
	switch p.NormalizedRotation() {
	case 90:
		return model.Matrix{0, 1, 1, 0, -b.Y0, -b.X0}
	case 180:
		return model.Matrix{-1, 0, 0, 1, b.X1, -b.Y0}
	case 270:
		return model.Matrix{0, -1, -1, 0, b.Y1, b.X1}
	default:
		return model.Matrix{1, 0, 0, -1, -b.X0, b.Y1}
	}
}
