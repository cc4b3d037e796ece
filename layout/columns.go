package layout

import (
	"math"

	"github.com/rezaldwntr/pdf-backend-api/model"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

// Spanning is the column index of content that crosses a gutter
const Spanning = -1

// Band is a vertical strip of the page holding one text column
type Band struct {
	X0, X1 float64
}

// Center returns the horizontal centre of the band
func (b Band) Center() float64 {
	return (b.X0 + b.X1) / 2
}

// Gutter is a vertical whitespace channel separating two bands
type Gutter struct {
	Left, Right float64
}

// Width returns the channel width
func (g Gutter) Width() float64 {
	return g.Right - g.Left
}

// ColumnLayout is the column structure of a page's flowing text
type ColumnLayout struct {
	Bands   []Band
	Gutters []Gutter
	// Extent is the box around all text on the page
	Extent model.BBox
}

// ColumnCount returns the number of bands
func (c *ColumnLayout) ColumnCount() int {
	return len(c.Bands)
}

// IsMultiColumn reports whether more than one band was found
func (c *ColumnLayout) IsMultiColumn() bool {
	return len(c.Bands) > 1
}

// Assign returns the band index holding b, or Spanning when b crosses a
// gutter.
func (c *ColumnLayout) Assign(b model.BBox) int {
	for _, g := range c.Gutters {
		if b.X0 < g.Right && b.X1 > g.Left {
			return Spanning
		}
	}
	cx := (b.X0 + b.X1) / 2
	for i := len(c.Bands) - 1; i > 0; i-- {
		if cx >= c.Bands[i].X0 {
			return i
		}
	}
	return 0
}

// Band returns the band for a column index; Spanning maps to the full
// text extent.
func (c *ColumnLayout) Band(column int) Band {
	if column < 0 || column >= len(c.Bands) {
		return Band{X0: c.Extent.X0, X1: c.Extent.X1}
	}
	return c.Bands[column]
}

// ColumnDetector finds column bands from whitespace channels
type ColumnDetector struct {
	cfg tuning.LayoutConfig
}

// NewColumnDetector creates a detector with the given thresholds
func NewColumnDetector(cfg tuning.LayoutConfig) *ColumnDetector {
	return &ColumnDetector{cfg: cfg}
}

// Detect finds vertical whitespace channels at least MinColumnGap wide
// that stay clear for at least MinColumnHeightRatio of the text height, and
// splits the text extent into bands at their centres.
func (d *ColumnDetector) Detect(spans []*model.TextSpan) *ColumnLayout {
	if len(spans) == 0 {
		return &ColumnLayout{}
	}
	extent := spans[0].BBox
	for _, s := range spans[1:] {
		extent = extent.Union(s.BBox)
	}
	single := &ColumnLayout{
		Bands:  []Band{{X0: extent.X0, X1: extent.X1}},
		Extent: extent,
	}
	if extent.Height() <= 0 || extent.Width() <= 2*d.cfg.MinColumnGap {
		return single
	}

	// blocked[i] is the text height crossing x = extent.X0 + i
	n := int(math.Ceil(extent.Width())) + 1
	blocked := make([]float64, n)
	for _, s := range spans {
		lo := int(math.Floor(s.BBox.X0 - extent.X0))
		hi := int(math.Ceil(s.BBox.X1 - extent.X0))
		for i := max(lo, 0); i < min(hi, n); i++ {
			blocked[i] += s.BBox.Height()
		}
	}

	limit := (1 - d.cfg.MinColumnHeightRatio) * extent.Height()
	var gutters []Gutter
	start := -1
	for i := 0; i <= n; i++ {
		free := i < n && blocked[i] <= limit
		if free && start < 0 {
			start = i
		}
		if !free && start >= 0 {
			g := Gutter{Left: extent.X0 + float64(start), Right: extent.X0 + float64(i)}
			if start > 0 && i < n && g.Width() >= d.cfg.MinColumnGap {
				gutters = append(gutters, g)
			}
			start = -1
		}
	}

	layout := &ColumnLayout{Extent: extent}
	minBand := 3 * d.cfg.MinColumnGap
	left := extent.X0
	for _, g := range gutters {
		cut := (g.Left + g.Right) / 2
		if cut-left < minBand || extent.X1-cut < minBand {
			continue
		}
		layout.Bands = append(layout.Bands, Band{X0: left, X1: cut})
		layout.Gutters = append(layout.Gutters, g)
		left = cut
	}
	if len(layout.Gutters) == 0 {
		return single
	}
	layout.Bands = append(layout.Bands, Band{X0: left, X1: extent.X1})
	return layout
}
