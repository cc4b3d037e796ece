package model

import "sort"

// PageModel holds the structured content of one page
type PageModel struct {
	Number   int     // 1-indexed page number
	Width    float64 // Page width in points, after rotation
	Height   float64 // Page height in points, after rotation
	Rotation int     // Rotation angle (0, 90, 180, 270)

	// Elements holds tables, paragraphs and images ordered by Index()
	Elements []Element

	// Primitives is the decoded page content the elements were built from
	Primitives []Primitive
}

// NewPageModel creates an empty page model with given dimensions
func NewPageModel(number int, width, height float64) *PageModel {
	return &PageModel{
		Number:   number,
		Width:    width,
		Height:   height,
		Elements: make([]Element, 0),
	}
}

// AddElement adds an element to the page
func (p *PageModel) AddElement(elem Element) {
	p.Elements = append(p.Elements, elem)
}

// SortElements orders elements by their position index
func (p *PageModel) SortElements() {
	sort.SliceStable(p.Elements, func(i, j int) bool {
		return p.Elements[i].Index() < p.Elements[j].Index()
	})
}

// Tables returns all table elements on the page
func (p *PageModel) Tables() []*TableRegion {
	var tables []*TableRegion
	for _, elem := range p.Elements {
		if t, ok := elem.(*TableRegion); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// Paragraphs returns all paragraph elements on the page
func (p *PageModel) Paragraphs() []*Paragraph {
	var paras []*Paragraph
	for _, elem := range p.Elements {
		if para, ok := elem.(*Paragraph); ok {
			paras = append(paras, para)
		}
	}
	return paras
}

// Images returns all image elements on the page
func (p *PageModel) Images() []*RasterImage {
	var imgs []*RasterImage
	for _, elem := range p.Elements {
		if img, ok := elem.(*RasterImage); ok {
			imgs = append(imgs, img)
		}
	}
	return imgs
}

// HasText reports whether the page carries any paragraph or table
func (p *PageModel) HasText() bool {
	for _, elem := range p.Elements {
		switch elem.(type) {
		case *Paragraph, *TableRegion:
			return true
		}
	}
	return false
}

// GetElementsInRegion returns elements within a bounding box
func (p *PageModel) GetElementsInRegion(bbox BBox) []Element {
	var elements []Element
	for _, elem := range p.Elements {
		if bbox.Intersects(elem.BoundingBox()) {
			elements = append(elements, elem)
		}
	}
	return elements
}

// Landscape reports whether the page is wider than it is tall
func (p *PageModel) Landscape() bool {
	return p.Width > p.Height
}
