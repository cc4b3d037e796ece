package tables

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/rezaldwntr/pdf-backend-api/model"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

// ErrBudgetExceeded reports a page whose ruling is too complex to analyse
// within the configured work caps.
var ErrBudgetExceeded = errors.New("table detection budget exceeded")

// Strategy proposes candidate grids for one page
type Strategy interface {
	// Name returns the strategy identifier used in logs
	Name() string

	// Find returns candidate grids. Spans already claimed by an earlier
	// strategy are not in in.Spans.
	Find(in *Input) ([]*Grid, error)
}

// Input is the page content a strategy works on
type Input struct {
	Page   int
	Spans  []*model.TextSpan
	Lines  []*model.LineSegment
	Shades []*model.ShadedRect
}

// Grid is a candidate table: row and column edges plus, for ruled grids,
// the rules that separate neighbouring cells.
type Grid struct {
	Xs    []float64 // column edges, ascending
	Ys    []float64 // row edges, ascending
	Ruled bool

	// separated reports whether a rule divides the given neighbours.
	// Nil for grids that are never merged.
	separated func(row, col int, down bool) bool
}

// BBox returns the outer edges of the grid
func (g *Grid) BBox() model.BBox {
	return model.BBox{X0: g.Xs[0], Y0: g.Ys[0], X1: g.Xs[len(g.Xs)-1], Y1: g.Ys[len(g.Ys)-1]}
}

// Rows returns the number of grid rows
func (g *Grid) Rows() int { return len(g.Ys) - 1 }

// Cols returns the number of grid columns
func (g *Grid) Cols() int { return len(g.Xs) - 1 }

// Locate returns the cell containing p, or -1, -1. Points on a boundary
// belong to the cell above and to the left.
func (g *Grid) Locate(p model.Point) (row, col int) {
	return locate(g.Ys, p.Y), locate(g.Xs, p.X)
}

func locate(edges []float64, v float64) int {
	if len(edges) < 2 || v < edges[0] || v > edges[len(edges)-1] {
		return -1
	}
	// first edge >= v closes the slot v falls in
	i := sort.SearchFloat64s(edges, v)
	if i == 0 {
		return 0
	}
	return i - 1
}

// Result is the outcome of detection on one page
type Result struct {
	Tables []*model.TableRegion
	// Remaining holds the spans outside every accepted table, in painter's
	// order.
	Remaining []*model.TextSpan
	Warnings  []model.Warning
}

// Detector runs the detection strategies. It holds no per-page state and
// may be shared by concurrent goroutines.
type Detector struct {
	cfg        tuning.TableConfig
	logger     *slog.Logger
	strategies []Strategy
}

// New creates a detector with the ruled and implicit strategies
func New(cfg tuning.TableConfig, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		cfg:        cfg,
		logger:     logger,
		strategies: []Strategy{NewRuledStrategy(cfg), NewImplicitStrategy(cfg)},
	}
}

// Strategies returns the names of the strategies in the order they run
func (d *Detector) Strategies() []string {
	names := make([]string, len(d.strategies))
	for i, s := range d.strategies {
		names[i] = s.Name()
	}
	return names
}

// Detect finds the tables among the primitives of page
func (d *Detector) Detect(page int, prims []model.Primitive) (*Result, error) {
	in := &Input{
		Page:   page,
		Spans:  model.SpansOf(prims),
		Lines:  model.LinesOf(prims),
		Shades: model.ShadesOf(prims),
	}
	res := &Result{}

	for _, s := range d.strategies {
		grids, err := s.Find(in)
		if err != nil {
			return nil, err
		}
		for _, g := range grids {
			if overlapsAny(g.BBox(), res.Tables) {
				if hasSpanInside(in.Spans, g.BBox()) {
					res.Warnings = append(res.Warnings, model.Warning{
						Kind: model.WarnAmbiguousTable, Page: page,
						Message: s.Name() + " candidate overlaps an accepted table",
					})
				}
				continue
			}
			t, claimed := d.build(g, in)
			if t == nil {
				if claimed > 0 {
					res.Warnings = append(res.Warnings, model.Warning{
						Kind: model.WarnAmbiguousTable, Page: page,
						Message: s.Name() + " candidate has fewer than the minimum rows or columns",
					})
				}
				continue
			}
			t.Page = page
			res.Tables = append(res.Tables, t)
			in.Spans = outside(in.Spans, t.BBox)
		}
		d.logger.Debug("table strategy finished", "page", page, "strategy", s.Name(), "candidates", len(grids), "tables", len(res.Tables))
	}

	sort.SliceStable(res.Tables, func(i, j int) bool {
		return res.Tables[i].BBox.Y0 < res.Tables[j].BBox.Y0
	})
	res.Remaining = in.Spans
	return res, nil
}

// build fills a grid with text and styling and applies cell merging. It
// returns nil when the result is smaller than the minimum table size, along
// with the number of spans that fell inside the grid.
func (d *Detector) build(g *Grid, in *Input) (*model.TableRegion, int) {
	rows, cols := g.Rows(), g.Cols()
	t := model.NewTableRegion(rows, cols)
	t.BBox = g.BBox()
	t.Ruled = g.Ruled

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			t.Rows[i][j].BBox = model.BBox{X0: g.Xs[j], Y0: g.Ys[i], X1: g.Xs[j+1], Y1: g.Ys[i+1]}
		}
	}

	spans := make([][][]*model.TextSpan, rows)
	for i := range spans {
		spans[i] = make([][]*model.TextSpan, cols)
	}
	claimed := 0
	for _, s := range in.Spans {
		r, c := g.Locate(s.BBox.Center())
		if r < 0 || c < 0 {
			continue
		}
		spans[r][c] = append(spans[r][c], s)
		claimed++
	}
	if claimed == 0 {
		return nil, 0
	}
	for i := range spans {
		for j := range spans[i] {
			fillCell(&t.Rows[i][j], spans[i][j])
		}
	}
	applyShading(t, in.Shades)

	if g.separated != nil {
		mergeCells(t, g.separated)
	}

	if r, c := effectiveSize(t); r < d.cfg.MinRows || c < d.cfg.MinCols {
		return nil, claimed
	}
	return t, claimed
}

// fillCell sets cell text and font styling from its spans in reading order
func fillCell(c *model.Cell, spans []*model.TextSpan) {
	if len(spans) == 0 {
		return
	}
	sort.SliceStable(spans, func(i, j int) bool {
		a, b := spans[i], spans[j]
		if a.BBox.VerticalOverlapRatio(b.BBox) < 0.5 {
			return a.Baseline < b.Baseline
		}
		return a.BBox.X0 < b.BBox.X0
	})
	parts := make([]string, 0, len(spans))
	bold := true
	for _, s := range spans {
		parts = append(parts, s.Text)
		bold = bold && s.Bold
		if s.FontSize > c.FontSize {
			c.FontSize = s.FontSize
		}
	}
	c.Text = strings.Join(parts, " ")
	c.Bold = bold
}

// applyShading marks cells whose centre lies in a filled rectangle. Later
// fills paint over earlier ones.
func applyShading(t *model.TableRegion, shades []*model.ShadedRect) {
	for _, sh := range shades {
		if !sh.BBox.Intersects(t.BBox) {
			continue
		}
		for i := range t.Rows {
			for j := range t.Rows[i] {
				c := &t.Rows[i][j]
				if sh.BBox.Contains(c.BBox.Center()) {
					c.Shaded = true
					c.Fill = sh.Fill
				}
			}
		}
	}
}

// effectiveSize counts the distinct visible rows and columns left after
// merging
func effectiveSize(t *model.TableRegion) (rows, cols int) {
	for i := range t.Rows {
		n := 0
		for j := range t.Rows[i] {
			if !t.Rows[i][j].Covered {
				n++
			}
		}
		cols = max(cols, n)
	}
	for j := 0; j < t.ColCount(); j++ {
		n := 0
		for i := range t.Rows {
			if !t.Rows[i][j].Covered {
				n++
			}
		}
		rows = max(rows, n)
	}
	return rows, cols
}

func overlapsAny(b model.BBox, tables []*model.TableRegion) bool {
	for _, t := range tables {
		if b.Intersects(t.BBox) && b.Intersection(t.BBox).Area() > 1 {
			return true
		}
	}
	return false
}

func hasSpanInside(spans []*model.TextSpan, b model.BBox) bool {
	for _, s := range spans {
		if b.Contains(s.BBox.Center()) {
			return true
		}
	}
	return false
}

func outside(spans []*model.TextSpan, b model.BBox) []*model.TextSpan {
	out := spans[:0:0]
	for _, s := range spans {
		if !b.Contains(s.BBox.Center()) {
			out = append(out, s)
		}
	}
	return out
}
