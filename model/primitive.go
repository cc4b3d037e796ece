package model

import "math"

// PrimitiveKind identifies the concrete type behind a Primitive
type PrimitiveKind int

const (
	KindText PrimitiveKind = iota
	KindLine
	KindImage
	KindShade
)

func (k PrimitiveKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindLine:
		return "Line"
	case KindImage:
		return "Image"
	case KindShade:
		return "Shade"
	default:
		return "Unknown"
	}
}

// Primitive is one decoded drawing instruction from a page.
//
// The set of implementations is closed: [TextSpan], [LineSegment],
// [RasterImage] and [ShadedRect]. Seq is the painter's order index assigned
// by the decoder. Primitives are never modified after decoding.
type Primitive interface {
	Kind() PrimitiveKind
	Bounds() BBox
	Seq() int
	isPrimitive()
}

// Color is an RGB color
type Color struct {
	R, G, B uint8
}

// Black is the default fill and stroke color
var Black = Color{0, 0, 0}

// White is the page background
var White = Color{255, 255, 255}

// Hex returns the color as RRGGBB
func (c Color) Hex() string {
	const digits = "0123456789ABCDEF"
	b := []byte{
		digits[c.R>>4], digits[c.R&0x0F],
		digits[c.G>>4], digits[c.G&0x0F],
		digits[c.B>>4], digits[c.B&0x0F],
	}
	return string(b)
}

// TextSpan is a run of text drawn with one font, size and baseline
type TextSpan struct {
	Text       string
	BBox       BBox
	FontFamily string
	FontSize   float64
	Bold       bool
	Italic     bool
	Baseline   float64
	Color      Color
	Order      int
}

func (s *TextSpan) Kind() PrimitiveKind { return KindText }
func (s *TextSpan) Bounds() BBox        { return s.BBox }
func (s *TextSpan) Seq() int            { return s.Order }
func (s *TextSpan) isPrimitive()        {}

// SameStyle reports whether two spans share font family, size, weight and slant
func (s *TextSpan) SameStyle(other *TextSpan) bool {
	return s.FontFamily == other.FontFamily &&
		math.Abs(s.FontSize-other.FontSize) < 0.5 &&
		s.Bold == other.Bold && s.Italic == other.Italic
}

// LineSegment is a stroked straight line, used as table ruling evidence
type LineSegment struct {
	Start Point
	End   Point
	Width float64
	Color Color
	Order int
}

func (l *LineSegment) Kind() PrimitiveKind { return KindLine }
func (l *LineSegment) Seq() int            { return l.Order }
func (l *LineSegment) isPrimitive()        {}

// Bounds returns the segment's extent padded by half its stroke width
func (l *LineSegment) Bounds() BBox {
	return NewBBoxFromPoints(l.Start, l.End).Expand(l.Width / 2)
}

// Length returns the segment length
func (l *LineSegment) Length() float64 {
	return l.Start.Distance(l.End)
}

// IsHorizontal reports whether the segment's vertical drift is within tol
func (l *LineSegment) IsHorizontal(tol float64) bool {
	return math.Abs(l.Start.Y-l.End.Y) <= tol && math.Abs(l.Start.X-l.End.X) > tol
}

// IsVertical reports whether the segment's horizontal drift is within tol
func (l *LineSegment) IsVertical(tol float64) bool {
	return math.Abs(l.Start.X-l.End.X) <= tol && math.Abs(l.Start.Y-l.End.Y) > tol
}

// ImageEncoding describes the byte format of a RasterImage
type ImageEncoding int

const (
	EncodingUnknown ImageEncoding = iota
	EncodingPNG
	EncodingJPEG
	EncodingJPEG2000
)

func (e ImageEncoding) String() string {
	switch e {
	case EncodingPNG:
		return "png"
	case EncodingJPEG:
		return "jpeg"
	case EncodingJPEG2000:
		return "jp2"
	default:
		return "unknown"
	}
}

// Extension returns the file extension used when embedding the image
func (e ImageEncoding) Extension() string {
	switch e {
	case EncodingJPEG:
		return "jpeg"
	case EncodingJPEG2000:
		return "jp2"
	default:
		return "png"
	}
}

// MIMEType returns the content type for the encoding
func (e ImageEncoding) MIMEType() string {
	switch e {
	case EncodingJPEG:
		return "image/jpeg"
	case EncodingJPEG2000:
		return "image/jp2"
	default:
		return "image/png"
	}
}

// RasterImage is an embedded image placed on the page
type RasterImage struct {
	BBox        BBox
	Data        []byte
	Encoding    ImageEncoding
	PixelWidth  int
	PixelHeight int
	Order       int

	// Position is the document-wide ordering index set by the builder
	Position int
}

func (r *RasterImage) Kind() PrimitiveKind { return KindImage }
func (r *RasterImage) Bounds() BBox        { return r.BBox }
func (r *RasterImage) Seq() int            { return r.Order }
func (r *RasterImage) isPrimitive()        {}

func (r *RasterImage) Type() ElementType { return ElementTypeImage }
func (r *RasterImage) BoundingBox() BBox { return r.BBox }
func (r *RasterImage) Index() int        { return r.Position }

// ShadedRect is a filled rectangle (cell backgrounds, banding)
type ShadedRect struct {
	BBox  BBox
	Fill  Color
	Order int
}

func (r *ShadedRect) Kind() PrimitiveKind { return KindShade }
func (r *ShadedRect) Bounds() BBox        { return r.BBox }
func (r *ShadedRect) Seq() int            { return r.Order }
func (r *ShadedRect) isPrimitive()        {}

// SpansOf returns the text spans of a primitive list in order
func SpansOf(prims []Primitive) []*TextSpan {
	var out []*TextSpan
	for _, p := range prims {
		if s, ok := p.(*TextSpan); ok {
			out = append(out, s)
		}
	}
	return out
}

// LinesOf returns the line segments of a primitive list in order
func LinesOf(prims []Primitive) []*LineSegment {
	var out []*LineSegment
	for _, p := range prims {
		if l, ok := p.(*LineSegment); ok {
			out = append(out, l)
		}
	}
	return out
}

// ImagesOf returns the raster images of a primitive list in order
func ImagesOf(prims []Primitive) []*RasterImage {
	var out []*RasterImage
	for _, p := range prims {
		if r, ok := p.(*RasterImage); ok {
			out = append(out, r)
		}
	}
	return out
}

// ShadesOf returns the shaded rectangles of a primitive list in order
func ShadesOf(prims []Primitive) []*ShadedRect {
	var out []*ShadedRect
	for _, p := range prims {
		if r, ok := p.(*ShadedRect); ok {
			out = append(out, r)
		}
	}
	return out
}
