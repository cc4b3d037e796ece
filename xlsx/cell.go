package xlsx

import (
	"github.com/xuri/excelize/v2"
)

// CellType represents the type of data in a cell.
type CellType int

const (
	// CellTypeEmpty indicates an empty or covered cell.
	CellTypeEmpty CellType = iota
	// CellTypeString indicates a text value.
	CellTypeString
	// CellTypeNumber indicates a numeric value.
	CellTypeNumber
)

// String returns the string representation of the cell type.
func (t CellType) String() string {
	switch t {
	case CellTypeString:
		return "string"
	case CellTypeNumber:
		return "number"
	case CellTypeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Cell is one projected worksheet cell.
type Cell struct {
	Value  string   // text as it appeared in the PDF
	Type   CellType // how the cell is written
	Number float64  // parsed value when Type is CellTypeNumber
	Format string   // custom number format; empty means General
	Header bool     // header rows are bold
}

// IsEmpty returns true if the cell has no value.
func (c *Cell) IsEmpty() bool {
	return c.Type == CellTypeEmpty || c.Value == ""
}

// Sheet is the single worksheet produced from a document's tables.
type Sheet struct {
	Name string
	Rows [][]Cell

	// FreezeRows is the number of rows kept visible while scrolling.
	FreezeRows int

	// Merged cell regions
	MergedRegions []MergedRegion
}

// MergedRegion represents a merged cell region (0-indexed, inclusive).
type MergedRegion struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// Range returns the top-left and bottom-right references, such as "A1" and "B2".
func (m MergedRegion) Range() (string, string, error) {
	start, err := CellRef(m.StartCol, m.StartRow)
	if err != nil {
		return "", "", err
	}
	end, err := CellRef(m.EndCol, m.EndRow)
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}

// Cell returns the cell at the given row and column (0-indexed).
// Returns nil if the cell doesn't exist.
func (s *Sheet) Cell(row, col int) *Cell {
	if row < 0 || row >= len(s.Rows) {
		return nil
	}
	if col < 0 || col >= len(s.Rows[row]) {
		return nil
	}
	return &s.Rows[row][col]
}

// RowCount returns the number of rows in the sheet.
func (s *Sheet) RowCount() int {
	return len(s.Rows)
}

// ColCount returns the maximum number of columns in any row.
func (s *Sheet) ColCount() int {
	n := 0
	for _, r := range s.Rows {
		n = max(n, len(r))
	}
	return n
}

// CellRef creates a cell reference string from column and row indices (0-indexed).
func CellRef(col, row int) (string, error) {
	return excelize.CoordinatesToCellName(col+1, row+1)
}
