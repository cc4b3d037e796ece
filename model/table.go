package model

import (
	"fmt"
	"strings"
)

// Cell is one slot of a table grid.
//
// A spanning cell is stored at its top-left slot with Merged set and
// RowSpan/ColSpan > 1; the slots it swallows are kept with Covered set so
// every row has the same number of columns.
type Cell struct {
	Text     string
	BBox     BBox
	Merged   bool
	RowSpan  int
	ColSpan  int
	Covered  bool
	Bold     bool
	Shaded   bool
	Fill     Color
	FontSize float64
}

// IsEmpty reports whether the cell has no visible text
func (c Cell) IsEmpty() bool {
	return strings.TrimSpace(c.Text) == ""
}

// TableRegion is a detected rectangular grid of cells on one page
type TableRegion struct {
	Rows           [][]Cell
	BBox           BBox
	HeaderRowCount int
	Ruled          bool // grid came from drawn ruling lines rather than text alignment
	Page           int
	Position       int
}

func (t *TableRegion) Type() ElementType { return ElementTypeTable }
func (t *TableRegion) BoundingBox() BBox { return t.BBox }
func (t *TableRegion) Index() int        { return t.Position }

// NewTableRegion creates an empty region with rows × cols unit cells
func NewTableRegion(rows, cols int) *TableRegion {
	t := &TableRegion{Rows: make([][]Cell, rows)}
	for i := range t.Rows {
		t.Rows[i] = make([]Cell, cols)
		for j := range t.Rows[i] {
			t.Rows[i][j] = Cell{RowSpan: 1, ColSpan: 1}
		}
	}
	return t
}

// RowCount returns the number of rows
func (t *TableRegion) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of columns in the first row
func (t *TableRegion) ColCount() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// GetCell returns the cell at the given row and column (0-indexed)
func (t *TableRegion) GetCell(row, col int) *Cell {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	if col < 0 || col >= len(t.Rows[row]) {
		return nil
	}
	return &t.Rows[row][col]
}

// RowTexts returns the trimmed text of every visible cell in a row
func (t *TableRegion) RowTexts(row int) []string {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	out := make([]string, 0, len(t.Rows[row]))
	for _, c := range t.Rows[row] {
		if c.Covered {
			continue
		}
		out = append(out, strings.TrimSpace(c.Text))
	}
	return out
}

// Owner returns the top-left slot of the cell covering (row, col). A slot
// that is not covered owns itself.
func (t *TableRegion) Owner(row, col int) (int, int) {
	for r := row; r >= 0; r-- {
		for c := col; c >= 0; c-- {
			cell := t.Rows[r][c]
			if cell.Covered {
				continue
			}
			if r+max(cell.RowSpan, 1) > row && c+max(cell.ColSpan, 1) > col {
				return r, c
			}
		}
	}
	return row, col
}

// minColumnWidth is the width given to columns whose cells all span
const minColumnWidth = 36.0

// ColumnWidths derives column widths in points from single-column cells.
// Columns without such a cell share the remaining table width evenly.
func (t *TableRegion) ColumnWidths() []float64 {
	cols := t.ColCount()
	widths := make([]float64, cols)
	for j := 0; j < cols; j++ {
		for i := range t.Rows {
			c := t.Rows[i][j]
			if !c.Covered && max(c.ColSpan, 1) == 1 && c.BBox.Width() > 0 {
				widths[j] = c.BBox.Width()
				break
			}
		}
	}
	known, missing := 0.0, 0
	for _, w := range widths {
		if w > 0 {
			known += w
		} else {
			missing++
		}
	}
	if missing > 0 {
		share := max(t.BBox.Width()-known, minColumnWidth*float64(missing)) / float64(missing)
		for j := range widths {
			if widths[j] == 0 {
				widths[j] = share
			}
		}
	}
	return widths
}

// RowHeights derives row heights in points from single-row cells. Rows
// without such a cell share the remaining table height evenly.
func (t *TableRegion) RowHeights() []float64 {
	heights := make([]float64, len(t.Rows))
	known, missing := 0.0, 0
	for i, row := range t.Rows {
		for _, c := range row {
			if !c.Covered && max(c.RowSpan, 1) == 1 && c.BBox.Height() > 0 {
				heights[i] = c.BBox.Height()
				break
			}
		}
		if heights[i] > 0 {
			known += heights[i]
		} else {
			missing++
		}
	}
	if missing > 0 {
		share := max(t.BBox.Height()-known, 0) / float64(missing)
		for i := range heights {
			if heights[i] == 0 {
				heights[i] = share
			}
		}
	}
	return heights
}

// Clone returns a deep copy of the region
func (t *TableRegion) Clone() *TableRegion {
	c := *t
	c.Rows = make([][]Cell, len(t.Rows))
	for i, row := range t.Rows {
		c.Rows[i] = append([]Cell(nil), row...)
	}
	return &c
}

// ValidateMerges checks that every spanning cell covers exactly the slots
// marked Covered inside the grid. target names the output format in the
// returned error.
func (t *TableRegion) ValidateMerges(target string) error {
	cols := t.ColCount()
	owner := make([][]bool, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) != cols {
			return &ProjectionError{Target: target, Element: "table", Reason: fmt.Sprintf("row %d has %d cells, want %d", i, len(row), cols)}
		}
		owner[i] = make([]bool, cols)
	}
	for i, row := range t.Rows {
		for j, c := range row {
			if c.Covered {
				continue
			}
			rs, cs := max(c.RowSpan, 1), max(c.ColSpan, 1)
			if i+rs > len(t.Rows) || j+cs > cols {
				return &ProjectionError{Target: target, Element: "table", Reason: fmt.Sprintf("cell (%d,%d) spans past the grid", i, j)}
			}
			for r := i; r < i+rs; r++ {
				for k := j; k < j+cs; k++ {
					if owner[r][k] {
						return &ProjectionError{Target: target, Element: "table", Reason: fmt.Sprintf("cell (%d,%d) overlaps another merged cell", r, k)}
					}
					if (r != i || k != j) && !t.Rows[r][k].Covered {
						return &ProjectionError{Target: target, Element: "table", Reason: fmt.Sprintf("cell (%d,%d) is inside a span but not marked covered", r, k)}
					}
					owner[r][k] = true
				}
			}
		}
	}
	for i := range owner {
		for j, ok := range owner[i] {
			if !ok {
				return &ProjectionError{Target: target, Element: "table", Reason: fmt.Sprintf("covered cell (%d,%d) has no owner", i, j)}
			}
		}
	}
	return nil
}

// ToMarkdown converts the table to markdown format, using the header rows
// (or the first row when none were classified) as the markdown header
func (t *TableRegion) ToMarkdown() string {
	if len(t.Rows) == 0 {
		return ""
	}

	writeRow := func(sb *strings.Builder, row []Cell) {
		for _, cell := range row {
			sb.WriteString("| ")
			if !cell.Covered {
				sb.WriteString(strings.ReplaceAll(cell.Text, "\n", " "))
			}
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}

	var sb strings.Builder
	writeRow(&sb, t.Rows[0])
	for range t.Rows[0] {
		sb.WriteString("|---")
	}
	sb.WriteString("|\n")
	for _, row := range t.Rows[1:] {
		writeRow(&sb, row)
	}
	return sb.String()
}
