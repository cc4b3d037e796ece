package tables

import (
	"math"
	"sort"

	"github.com/rezaldwntr/pdf-backend-api/model"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

// ImplicitStrategy infers grids from text laid out in aligned columns
// without ruling lines.
type ImplicitStrategy struct {
	cfg tuning.TableConfig
}

// NewImplicitStrategy creates the whitespace-alignment strategy
func NewImplicitStrategy(cfg tuning.TableConfig) *ImplicitStrategy {
	return &ImplicitStrategy{cfg: cfg}
}

// Name returns "implicit"
func (s *ImplicitStrategy) Name() string { return "implicit" }

// textLine is a set of spans sharing one visual line, left to right
type textLine struct {
	spans []*model.TextSpan
	bbox  model.BBox
}

// band is a column's horizontal extent
type band struct {
	x0, x1 float64
	spans  []*model.TextSpan
}

// Find looks for runs of at least MinAlignedLines consecutive lines that
// each split into columns separated by MinColumnGap of whitespace.
func (s *ImplicitStrategy) Find(in *Input) ([]*Grid, error) {
	lines := groupLines(in.Spans)
	var grids []*Grid
	for i := 0; i < len(lines); {
		if !s.multiColumn(lines[i]) {
			i++
			continue
		}
		j := i + 1
		for j < len(lines) && s.multiColumn(lines[j]) && closeLines(lines[j-1], lines[j]) {
			j++
		}
		if j-i >= s.cfg.MinAlignedLines {
			if g := s.grid(lines[i:j]); g != nil {
				grids = append(grids, g)
			}
		}
		i = j
	}
	return grids, nil
}

// groupLines clusters spans whose boxes overlap vertically by at least half
// of the shorter height
func groupLines(spans []*model.TextSpan) []*textLine {
	sorted := append([]*model.TextSpan(nil), spans...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.Center().Y < sorted[j].BBox.Center().Y
	})

	var lines []*textLine
	for _, sp := range sorted {
		if n := len(lines); n > 0 && lines[n-1].bbox.VerticalOverlapRatio(sp.BBox) >= 0.5 {
			l := lines[n-1]
			l.spans = append(l.spans, sp)
			l.bbox = l.bbox.Union(sp.BBox)
			continue
		}
		lines = append(lines, &textLine{spans: []*model.TextSpan{sp}, bbox: sp.BBox})
	}
	for _, l := range lines {
		sort.SliceStable(l.spans, func(i, j int) bool { return l.spans[i].BBox.X0 < l.spans[j].BBox.X0 })
	}
	return lines
}

// multiColumn reports whether a line has a column-sized whitespace gap
func (s *ImplicitStrategy) multiColumn(l *textLine) bool {
	for k := 1; k < len(l.spans); k++ {
		if l.spans[k].BBox.X0-l.spans[k-1].BBox.X1 >= s.cfg.MinColumnGap {
			return true
		}
	}
	return false
}

// closeLines reports whether next follows prev without a paragraph-sized
// vertical gap
func closeLines(prev, next *textLine) bool {
	gap := next.bbox.Y0 - prev.bbox.Y1
	return gap <= 2*math.Max(prev.bbox.Height(), next.bbox.Height())
}

// grid turns a run of lines into a grid when enough column bands align
func (s *ImplicitStrategy) grid(lines []*textLine) *Grid {
	bands := s.bands(lines)
	if len(bands) < s.cfg.MinCols {
		return nil
	}

	aligned, leftAligned := 0, false
	for _, b := range bands {
		x0 := s.alignedCount(b.spans, func(sp *model.TextSpan) float64 { return sp.BBox.X0 })
		x1 := s.alignedCount(b.spans, func(sp *model.TextSpan) float64 { return sp.BBox.X1 })
		xc := s.alignedCount(b.spans, func(sp *model.TextSpan) float64 { return sp.BBox.Center().X })
		if x0 >= s.cfg.MinAlignedSpans {
			leftAligned = true
		}
		if max(x0, x1, xc) >= s.cfg.MinAlignedSpans {
			aligned++
		}
	}
	if !leftAligned || aligned < s.cfg.MinCols || proseColumns(bands) {
		return nil
	}

	xs := []float64{bands[0].x0}
	for k := 1; k < len(bands); k++ {
		xs = append(xs, (bands[k-1].x1+bands[k].x0)/2)
	}
	xs = append(xs, bands[len(bands)-1].x1)

	ys := []float64{lines[0].bbox.Y0}
	for k := 1; k < len(lines); k++ {
		ys = append(ys, (lines[k-1].bbox.Y1+lines[k].bbox.Y0)/2)
	}
	ys = append(ys, lines[len(lines)-1].bbox.Y1)
	if !ascending(xs) || !ascending(ys) {
		return nil
	}
	return &Grid{Xs: xs, Ys: ys}
}

// bands projects every span onto the x axis and merges extents closer than
// MinColumnGap
func (s *ImplicitStrategy) bands(lines []*textLine) []*band {
	var spans []*model.TextSpan
	for _, l := range lines {
		spans = append(spans, l.spans...)
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].BBox.X0 < spans[j].BBox.X0 })

	var out []*band
	for _, sp := range spans {
		if n := len(out); n > 0 && sp.BBox.X0-out[n-1].x1 < s.cfg.MinColumnGap {
			b := out[n-1]
			b.x1 = math.Max(b.x1, sp.BBox.X1)
			b.spans = append(b.spans, sp)
			continue
		}
		out = append(out, &band{x0: sp.BBox.X0, x1: sp.BBox.X1, spans: []*model.TextSpan{sp}})
	}
	return out
}

// alignedCount returns the size of the largest group of spans whose key
// values agree within AlignTolerance
func (s *ImplicitStrategy) alignedCount(spans []*model.TextSpan, key func(*model.TextSpan) float64) int {
	vals := make([]float64, len(spans))
	for i, sp := range spans {
		vals[i] = key(sp)
	}
	sort.Float64s(vals)
	best := 0
	for i, lo := 0, 0; i < len(vals); i++ {
		for vals[i]-vals[lo] > s.cfg.AlignTolerance {
			lo++
		}
		best = max(best, i-lo+1)
	}
	return best
}

// proseColumns reports whether every band looks like a column of running
// text: wide, with most lines filling the band.
func proseColumns(bands []*band) bool {
	for _, b := range bands {
		w := b.x1 - b.x0
		if w < 100 {
			return false
		}
		full := 0
		for _, sp := range b.spans {
			if sp.BBox.Width() >= 0.75*w {
				full++
			}
		}
		if float64(full) < 0.75*float64(len(b.spans)) {
			return false
		}
	}
	return true
}

func ascending(v []float64) bool {
	for i := 1; i < len(v); i++ {
		if v[i] <= v[i-1] {
			return false
		}
	}
	return true
}
