package xlsx

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

// ErrNoTables is returned when the document has no tables to export
var ErrNoTables = errors.New("no tables detected")

// DefaultSheetName names the worksheet when Options.SheetName is empty
const DefaultSheetName = "Tables"

// Column widths in characters
const (
	minColumnWidth = 8.0
	maxColumnWidth = 60.0
)

// Options configures Project
type Options struct {
	// Locale selects the decimal and grouping separators used to recognise
	// numbers. The zero value means English.
	Locale    language.Tag
	SheetName string
	Logger    *slog.Logger
}

// Tree is a projected workbook ready to be written
type Tree struct {
	Sheet *Sheet

	Title  string
	Author string
}

// Project stacks every logical table of doc on one sheet, separated by a
// blank row. The first table's header rows are frozen and all header rows
// are bold. The document is not modified.
func Project(doc *model.Document, opts Options) (*Tree, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(doc.Tables) == 0 {
		return nil, &model.ProjectionError{Target: "xlsx", Element: "document", Reason: "no tables", Err: ErrNoTables}
	}
	name := opts.SheetName
	if name == "" {
		name = DefaultSheetName
	}
	sep := SeparatorsFor(opts.Locale)

	sheet := &Sheet{Name: name}
	for n, lt := range doc.Tables {
		t := lt.Table
		if err := t.ValidateMerges("xlsx"); err != nil {
			return nil, err
		}
		if n == 0 {
			sheet.FreezeRows = t.HeaderRowCount
		} else {
			sheet.Rows = append(sheet.Rows, nil)
		}
		offset := len(sheet.Rows)
		for i, row := range t.Rows {
			out := make([]Cell, len(row))
			for j, c := range row {
				if c.Covered {
					continue
				}
				out[j] = projectCell(c, i < t.HeaderRowCount, sep)
				if rs, cs := max(c.RowSpan, 1), max(c.ColSpan, 1); rs > 1 || cs > 1 {
					sheet.MergedRegions = append(sheet.MergedRegions, MergedRegion{
						StartRow: offset + i, StartCol: j,
						EndRow: offset + i + rs - 1, EndCol: j + cs - 1,
					})
				}
			}
			sheet.Rows = append(sheet.Rows, out)
		}
		logger.Debug("table projected",
			slog.Int("table", n),
			slog.Int("rows", t.RowCount()),
			slog.Int("parts", len(lt.Parts)))
	}

	return &Tree{Sheet: sheet, Title: doc.Metadata.Title, Author: doc.Metadata.Author}, nil
}

func projectCell(c model.Cell, header bool, sep Separators) Cell {
	out := Cell{Value: c.Text, Header: header}
	switch {
	case c.Text == "":
		out.Type = CellTypeEmpty
	case header:
		out.Type = CellTypeString
	default:
		// a number is kept only when the sheet shows it as written
		if num, ok := ParseNumber(c.Text, sep); ok && num.Render() == c.Text {
			out.Type = CellTypeNumber
			out.Number = num.Value
			out.Format = num.Format()
		} else {
			out.Type = CellTypeString
		}
	}
	return out
}

// Write serialises the tree as an .xlsx workbook
func (t *Tree) Write(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Sheet
	if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: t.Title, Creator: t.Author}); err != nil {
		return fmt.Errorf("set properties: %w", err)
	}

	styles := newStyleCache(f)
	widths := make([]float64, sheet.ColCount())
	for i, row := range sheet.Rows {
		for j, c := range row {
			if c.Type == CellTypeEmpty {
				continue
			}
			ref, err := CellRef(j, i)
			if err != nil {
				return err
			}
			switch c.Type {
			case CellTypeNumber:
				err = f.SetCellFloat(sheet.Name, ref, c.Number, -1, 64)
			default:
				err = f.SetCellStr(sheet.Name, ref, c.Value)
			}
			if err != nil {
				return fmt.Errorf("set %s: %w", ref, err)
			}
			if c.Header || c.Format != "" {
				id, err := styles.get(c.Header, c.Format)
				if err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet.Name, ref, ref, id); err != nil {
					return fmt.Errorf("style %s: %w", ref, err)
				}
			}
			widths[j] = max(widths[j], float64(utf8.RuneCountInString(c.Value))+2)
		}
	}

	for _, m := range sheet.MergedRegions {
		start, end, err := m.Range()
		if err != nil {
			return err
		}
		if err := f.MergeCell(sheet.Name, start, end); err != nil {
			return fmt.Errorf("merge %s:%s: %w", start, end, err)
		}
	}

	for j, wd := range widths {
		col, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.Name, col, col, min(max(wd, minColumnWidth), maxColumnWidth)); err != nil {
			return fmt.Errorf("column width %s: %w", col, err)
		}
	}

	if sheet.FreezeRows > 0 {
		top, err := CellRef(0, sheet.FreezeRows)
		if err != nil {
			return err
		}
		if err := f.SetPanes(sheet.Name, &excelize.Panes{
			Freeze:      true,
			YSplit:      sheet.FreezeRows,
			TopLeftCell: top,
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("freeze header: %w", err)
		}
	}

	return f.Write(w)
}

// styleCache registers one excelize style per (bold, format) pair
type styleCache struct {
	f   *excelize.File
	ids map[styleKey]int
}

type styleKey struct {
	bold   bool
	format string
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{f: f, ids: make(map[styleKey]int)}
}

func (s *styleCache) get(bold bool, format string) (int, error) {
	key := styleKey{bold, format}
	if id, ok := s.ids[key]; ok {
		return id, nil
	}
	style := &excelize.Style{}
	if bold {
		style.Font = &excelize.Font{Bold: true}
	}
	if format != "" {
		style.CustomNumFmt = &format
	}
	id, err := s.f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("new style: %w", err)
	}
	s.ids[key] = id
	return id, nil
}
