package model

import "strings"

// ElementType represents the type of page element
type ElementType int

const (
	ElementTypeUnknown ElementType = iota
	ElementTypeParagraph
	ElementTypeTable
	ElementTypeImage
)

func (et ElementType) String() string {
	switch et {
	case ElementTypeParagraph:
		return "Paragraph"
	case ElementTypeTable:
		return "Table"
	case ElementTypeImage:
		return "Image"
	default:
		return "Unknown"
	}
}

// Element is the interface for all page elements.
// Position is the document-wide output order assigned by the builder.
type Element interface {
	Type() ElementType
	BoundingBox() BBox
	Index() int
}

// Role is the inferred semantic role of a paragraph
type Role int

const (
	RoleBody Role = iota
	RoleHeading
	RoleCaption
)

func (r Role) String() string {
	switch r {
	case RoleHeading:
		return "heading"
	case RoleCaption:
		return "caption"
	default:
		return "body"
	}
}

// MarshalText renders the role by name in JSON summaries
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Alignment represents horizontal text alignment
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	default:
		return "left"
	}
}

// Run is a styled piece of text inside a paragraph
type Run struct {
	Text       string
	FontFamily string
	FontSize   float64
	Bold       bool
	Italic     bool
	Color      Color
	BBox       BBox
}

// RunFromSpan copies the styling of a decoded span into a run
func RunFromSpan(s *TextSpan) Run {
	return Run{
		Text:       s.Text,
		FontFamily: s.FontFamily,
		FontSize:   s.FontSize,
		Bold:       s.Bold,
		Italic:     s.Italic,
		Color:      s.Color,
		BBox:       s.BBox,
	}
}

// Paragraph is an ordered sequence of runs in reading order
type Paragraph struct {
	Runs      []Run
	BBox      BBox
	Role      Role
	Level     int // heading level, 1-based; 0 for non-headings
	Alignment Alignment
	Column    int
	Position  int
}

func (p *Paragraph) Type() ElementType { return ElementTypeParagraph }
func (p *Paragraph) BoundingBox() BBox { return p.BBox }
func (p *Paragraph) Index() int        { return p.Position }

// Text returns the concatenated run text
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// FontSize returns the largest run font size
func (p *Paragraph) FontSize() float64 {
	size := 0.0
	for _, r := range p.Runs {
		if r.FontSize > size {
			size = r.FontSize
		}
	}
	return size
}
