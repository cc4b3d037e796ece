package tables

import (
	"math"
	"sort"

	"github.com/tidwall/rtree"

	"github.com/rezaldwntr/pdf-backend-api/model"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

// rule is a merged horizontal or vertical ruling line. Pos is the y of a
// horizontal rule or the x of a vertical one; Lo and Hi bound its extent
// along the other axis.
type rule struct {
	Pos        float64
	Lo, Hi     float64
	Horizontal bool
}

func (r rule) length() float64 { return r.Hi - r.Lo }

func (r rule) bbox(tol float64) (lo, hi [2]float64) {
	if r.Horizontal {
		return [2]float64{r.Lo - tol, r.Pos - tol}, [2]float64{r.Hi + tol, r.Pos + tol}
	}
	return [2]float64{r.Pos - tol, r.Lo - tol}, [2]float64{r.Pos + tol, r.Hi + tol}
}

// RuledStrategy builds grids from drawn ruling lines
type RuledStrategy struct {
	cfg tuning.TableConfig
}

// NewRuledStrategy creates the ruling-line strategy
func NewRuledStrategy(cfg tuning.TableConfig) *RuledStrategy {
	return &RuledStrategy{cfg: cfg}
}

// Name returns "ruled"
func (s *RuledStrategy) Name() string { return "ruled" }

// Find merges the page's rules and returns one grid per connected set of
// horizontal and vertical rules.
func (s *RuledStrategy) Find(in *Input) ([]*Grid, error) {
	hs, vs := s.classify(in.Lines)
	if len(hs)+len(vs) > s.cfg.MaxSegments {
		return nil, ErrBudgetExceeded
	}
	if len(hs) < 2 || len(vs) < 2 {
		return nil, nil
	}

	budget := s.cfg.MaxMergeIterations
	hs, err := mergeRules(hs, s.cfg.SnapTolerance, s.cfg.JoinTolerance, &budget)
	if err != nil {
		return nil, err
	}
	vs, err = mergeRules(vs, s.cfg.SnapTolerance, s.cfg.JoinTolerance, &budget)
	if err != nil {
		return nil, err
	}

	var grids []*Grid
	for _, comp := range s.components(hs, vs) {
		if g := s.grid(comp); g != nil {
			grids = append(grids, g)
		}
	}
	return grids, nil
}

// classify keeps axis-aligned segments long enough to be rules
func (s *RuledStrategy) classify(lines []*model.LineSegment) (hs, vs []rule) {
	for _, l := range lines {
		if l.Length() < s.cfg.MinSegmentLength {
			continue
		}
		switch {
		case l.IsHorizontal(s.cfg.SnapTolerance):
			hs = append(hs, rule{
				Pos:        (l.Start.Y + l.End.Y) / 2,
				Lo:         math.Min(l.Start.X, l.End.X),
				Hi:         math.Max(l.Start.X, l.End.X),
				Horizontal: true,
			})
		case l.IsVertical(s.cfg.SnapTolerance):
			vs = append(vs, rule{
				Pos: (l.Start.X + l.End.X) / 2,
				Lo:  math.Min(l.Start.Y, l.End.Y),
				Hi:  math.Max(l.Start.Y, l.End.Y),
			})
		}
	}
	return hs, vs
}

// mergeRules snaps rules whose positions lie within snap of the running
// group mean onto that mean, then joins collinear pieces that overlap or
// are within join of each other. Each comparison spends one unit of budget.
func mergeRules(rules []rule, snap, join float64, budget *int) ([]rule, error) {
	if len(rules) == 0 {
		return nil, nil
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Pos != rules[j].Pos {
			return rules[i].Pos < rules[j].Pos
		}
		return rules[i].Lo < rules[j].Lo
	})

	var out []rule
	for i := 0; i < len(rules); {
		sum, n := rules[i].Pos, 1
		j := i + 1
		for ; j < len(rules); j++ {
			if *budget--; *budget < 0 {
				return nil, ErrBudgetExceeded
			}
			if math.Abs(rules[j].Pos-sum/float64(n)) > snap {
				break
			}
			sum += rules[j].Pos
			n++
		}
		pos := sum / float64(n)

		group := append([]rule(nil), rules[i:j]...)
		sort.Slice(group, func(a, b int) bool { return group[a].Lo < group[b].Lo })
		cur := group[0]
		cur.Pos = pos
		for _, next := range group[1:] {
			if *budget--; *budget < 0 {
				return nil, ErrBudgetExceeded
			}
			if next.Lo-cur.Hi <= join {
				cur.Hi = math.Max(cur.Hi, next.Hi)
				continue
			}
			out = append(out, cur)
			cur = next
			cur.Pos = pos
		}
		out = append(out, cur)
		i = j
	}
	return out, nil
}

// component is one connected set of rules
type component struct {
	hs, vs []rule
	tol    float64
}

// components indexes the vertical rules in an R-tree and links every
// horizontal rule to the vertical rules it crosses.
func (s *RuledStrategy) components(hs, vs []rule) []*component {
	tol := s.cfg.SnapTolerance
	var tr rtree.RTreeG[int]
	for i, v := range vs {
		lo, hi := v.bbox(tol)
		tr.Insert(lo, hi, i)
	}

	// union-find over hs (0..len(hs)-1) followed by vs
	parent := make([]int, len(hs)+len(vs))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	crossed := make([]bool, len(parent))
	for i, h := range hs {
		lo, hi := h.bbox(tol)
		tr.Search(lo, hi, func(_, _ [2]float64, j int) bool {
			a, b := find(i), find(len(hs)+j)
			if a != b {
				parent[a] = b
			}
			crossed[i], crossed[len(hs)+j] = true, true
			return true
		})
	}

	byRoot := make(map[int]*component)
	var order []int
	add := func(idx int, r rule) {
		if !crossed[idx] {
			return
		}
		root := find(idx)
		c, ok := byRoot[root]
		if !ok {
			c = &component{tol: tol}
			byRoot[root] = c
			order = append(order, root)
		}
		if r.Horizontal {
			c.hs = append(c.hs, r)
		} else {
			c.vs = append(c.vs, r)
		}
	}
	for i, h := range hs {
		add(i, h)
	}
	for j, v := range vs {
		add(len(hs)+j, v)
	}

	out := make([]*component, 0, len(order))
	for _, root := range order {
		out = append(out, byRoot[root])
	}
	return out
}

// grid derives row and column edges from a component
func (s *RuledStrategy) grid(c *component) *Grid {
	ys := edges(c.hs, c.tol)
	xs := edges(c.vs, c.tol)
	if len(ys) < s.cfg.MinRows+1 || len(xs) < s.cfg.MinCols+1 {
		return nil
	}
	return &Grid{
		Xs:    xs,
		Ys:    ys,
		Ruled: true,
		separated: func(row, col int, down bool) bool {
			if down {
				// horizontal rule at ys[row+1] under column col
				return c.covers(c.hs, ys[row+1], xs[col], xs[col+1])
			}
			// vertical rule at xs[col+1] beside row row
			return c.covers(c.vs, xs[col+1], ys[row], ys[row+1])
		},
	}
}

// covers reports whether rules at pos cover at least half of [lo, hi]
func (c *component) covers(rules []rule, pos, lo, hi float64) bool {
	need := (hi - lo) / 2
	got := 0.0
	for _, r := range rules {
		if math.Abs(r.Pos-pos) > c.tol {
			continue
		}
		if overlap := math.Min(r.Hi, hi) - math.Max(r.Lo, lo); overlap > 0 {
			got += overlap
		}
	}
	return got >= need
}

// edges returns the distinct rule positions in ascending order
func edges(rules []rule, tol float64) []float64 {
	pos := make([]float64, len(rules))
	for i, r := range rules {
		pos[i] = r.Pos
	}
	return clusterValues(pos, tol)
}

// clusterValues sorts values and collapses runs closer than tolerance into
// their mean
func clusterValues(values []float64, tolerance float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var out []float64
	sum, n := sorted[0], 1
	for _, v := range sorted[1:] {
		if v-sum/float64(n) <= tolerance {
			sum += v
			n++
			continue
		}
		out = append(out, sum/float64(n))
		sum, n = v, 1
	}
	return append(out, sum/float64(n))
}

// mergeCells joins neighbouring cells that no rule separates, as long as
// the joined block is rectangular and at most one of its cells has text.
func mergeCells(t *model.TableRegion, separated func(row, col int, down bool) bool) {
	rows, cols := t.RowCount(), t.ColCount()
	parent := make([]int, rows*cols)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		if ra, rb := find(a), find(b); ra != rb {
			parent[rb] = ra
		}
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if j+1 < cols && !separated(i, j, false) {
				union(i*cols+j, i*cols+j+1)
			}
			if i+1 < rows && !separated(i, j, true) {
				union(i*cols+j, (i+1)*cols+j)
			}
		}
	}

	type block struct {
		r0, c0, r1, c1 int
		n, texts       int
		text           int // slot holding the text
	}
	blocks := make(map[int]*block)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			root := find(i*cols + j)
			b, ok := blocks[root]
			if !ok {
				b = &block{r0: i, c0: j, r1: i, c1: j, text: -1}
				blocks[root] = b
			}
			b.r0, b.c0 = min(b.r0, i), min(b.c0, j)
			b.r1, b.c1 = max(b.r1, i), max(b.c1, j)
			b.n++
			if !t.Rows[i][j].IsEmpty() {
				b.texts++
				b.text = i*cols + j
			}
		}
	}

	for _, b := range blocks {
		rs, cs := b.r1-b.r0+1, b.c1-b.c0+1
		if b.n == 1 || b.texts > 1 || rs*cs != b.n {
			continue
		}
		owner := &t.Rows[b.r0][b.c0]
		if b.text >= 0 {
			src := t.Rows[b.text/cols][b.text%cols]
			owner.Text, owner.Bold, owner.FontSize = src.Text, src.Bold, src.FontSize
		}
		for i := b.r0; i <= b.r1; i++ {
			for j := b.c0; j <= b.c1; j++ {
				owner.BBox = owner.BBox.Union(t.Rows[i][j].BBox)
				if i == b.r0 && j == b.c0 {
					continue
				}
				t.Rows[i][j] = model.Cell{BBox: t.Rows[i][j].BBox, Covered: true, RowSpan: 1, ColSpan: 1}
			}
		}
		owner.Merged = true
		owner.RowSpan, owner.ColSpan = rs, cs
	}
}
