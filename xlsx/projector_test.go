package xlsx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"

	"github.com/rezaldwntr/pdf-backend-api/model"
	"github.com/rezaldwntr/pdf-backend-api/model/modeltest"
)

func invoiceTable(top float64) *model.TableRegion {
	return modeltest.Table(top, 1, [][]string{
		{"Name", "Qty", "Price", "Total"},
		{"Widget", "2", "3.50", "7.00"},
		{"Gadget", "1", "12.00", "12.00"},
		{"Gizmo", "10", "1,250.00", "12,500.00"},
	})
}

// roundTrip projects and writes doc, then opens the workbook with excelize
func roundTrip(t *testing.T, doc *model.Document, opts Options) *excelize.File {
	t.Helper()
	tree, err := Project(doc, opts)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, tree.Write(&buf))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestProjectNoTables(t *testing.T) {
	doc := modeltest.Document(modeltest.Page(1, 612, 792,
		modeltest.Paragraph("Just text", 11, model.NewBBox(72, 72, 100, 12)),
	))
	_, err := Project(doc, Options{})
	require.ErrorIs(t, err, ErrNoTables)

	var pe *model.ProjectionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "xlsx", pe.Target)
}

func TestRoundTripInvoice(t *testing.T) {
	doc := modeltest.Document(modeltest.Page(1, 612, 792, invoiceTable(100)))
	f := roundTrip(t, doc, Options{})

	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Name", "Qty", "Price", "Total"}, rows[0])
	assert.Equal(t, []string{"Gizmo", "10", "1,250.00", "12,500.00"}, rows[3], "formatted values keep decimals and grouping")

	raw, err := f.GetCellValue(DefaultSheetName, "D4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "12500", raw)

	typ, err := f.GetCellType(DefaultSheetName, "C2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)
	assert.NotEqual(t, excelize.CellTypeInlineString, typ)

	typ, err = f.GetCellType(DefaultSheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeSharedString, typ)

	panes, err := f.GetPanes(DefaultSheetName)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
	assert.Equal(t, "A2", panes.TopLeftCell)

	for _, ref := range []string{"A1", "D1"} {
		id, err := f.GetCellStyle(DefaultSheetName, ref)
		require.NoError(t, err)
		style, err := f.GetStyle(id)
		require.NoError(t, err)
		require.NotNil(t, style.Font, ref)
		assert.True(t, style.Font.Bold, ref)
	}
}

func TestRoundTripStacksTables(t *testing.T) {
	second := modeltest.Table(400, 1, [][]string{
		{"Region", "Share"},
		{"North", "12.5%"},
	})
	doc := modeltest.Document(modeltest.Page(1, 612, 792, invoiceTable(100), second))
	f := roundTrip(t, doc, Options{})

	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Empty(t, rows[4], "blank separator row")
	assert.Equal(t, "Region", rows[5][0])

	raw, err := f.GetCellValue(DefaultSheetName, "B7", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "0.125", raw)

	id, err := f.GetCellStyle(DefaultSheetName, "A6")
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold, "second table's header is bold")

	panes, err := f.GetPanes(DefaultSheetName)
	require.NoError(t, err)
	assert.Equal(t, 1, panes.YSplit, "only the first table's header is frozen")
}

func TestRoundTripMerges(t *testing.T) {
	tbl := modeltest.Table(100, 1, [][]string{
		{"Region", "", "Total"},
		{"North", "12", "40"},
		{"South", "28", ""},
	})
	modeltest.Merge(tbl, 0, 0, 1, 2)
	modeltest.Merge(tbl, 1, 2, 2, 1)
	f := roundTrip(t, modeltest.Document(modeltest.Page(1, 612, 792, tbl)), Options{})

	merges, err := f.GetMergeCells(DefaultSheetName)
	require.NoError(t, err)
	got := map[string]string{}
	for _, m := range merges {
		got[m.GetStartAxis()] = m.GetEndAxis()
	}
	assert.Equal(t, map[string]string{"A1": "B1", "C2": "C3"}, got)
}

func TestRoundTripLocale(t *testing.T) {
	tbl := modeltest.Table(100, 1, [][]string{
		{"Barang", "Harga"},
		{"Kopi", "12.500,00"},
		{"Teh", "Rp 7.000"},
		{"Gula", "7000"},
	})
	doc := modeltest.Document(modeltest.Page(1, 612, 792, tbl))
	f := roundTrip(t, doc, Options{Locale: language.Indonesian, SheetName: "Tabel"})

	rows, err := f.GetRows("Tabel")
	require.NoError(t, err)
	for i, want := range tbl.Rows {
		assert.Equal(t, []string{want[0].Text, want[1].Text}, rows[i])
	}

	// only the value a sheet shows unchanged is typed as a number
	for ref, want := range map[string]excelize.CellType{
		"B2": excelize.CellTypeSharedString,
		"B3": excelize.CellTypeSharedString,
	} {
		typ, err := f.GetCellType("Tabel", ref)
		require.NoError(t, err)
		assert.Equal(t, want, typ, ref)
	}
	typ, err := f.GetCellType("Tabel", "B4")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)
	raw, err := f.GetCellValue("Tabel", "B4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "7000", raw)
}

func TestRoundTripKeepsText(t *testing.T) {
	tests := []struct {
		locale language.Tag
		values []string
	}{
		{language.English, []string{
			"7", "-42", "3.50", "12,500.00", "(1,200.50)", "12.5%", "$3.50",
			"+5", "5 %", "$ 12.50", "1 234", "007", "12.03.2024",
		}},
		{language.Indonesian, []string{"12.500,00", "Rp 7.000", "1.234", "7000", "3,5"}},
		{language.German, []string{"1.234,5", "42", "0,75 €"}},
	}
	for _, tt := range tests {
		t.Run(tt.locale.String(), func(t *testing.T) {
			rows := [][]string{{"Item", "Value"}}
			for i, v := range tt.values {
				rows = append(rows, []string{string(rune('a' + i)), v})
			}
			doc := modeltest.Document(modeltest.Page(1, 612, 792, modeltest.Table(100, 1, rows)))
			f := roundTrip(t, doc, Options{Locale: tt.locale})

			for i, want := range tt.values {
				ref, err := CellRef(1, i+1)
				require.NoError(t, err)
				got, err := f.GetCellValue(DefaultSheetName, ref)
				require.NoError(t, err)
				assert.Equal(t, want, got, ref)
			}
		})
	}
}

func TestProjectLogicalTable(t *testing.T) {
	rows := [][]string{{"Name", "Qty"}, {"A", "1"}, {"B", "2"}}
	doc := modeltest.Document(
		modeltest.Page(1, 612, 792, modeltest.Table(600, 1, rows)),
		modeltest.Page(2, 612, 792, modeltest.Table(72, 1, rows)),
	)
	modeltest.Join(doc, 1, 2)

	tree, err := Project(doc, Options{})
	require.NoError(t, err)
	assert.Equal(t, 5, tree.Sheet.RowCount())
	assert.Equal(t, 1, tree.Sheet.FreezeRows)
	assert.Equal(t, CellTypeNumber, tree.Sheet.Cell(4, 1).Type)
	assert.InDelta(t, 2.0, tree.Sheet.Cell(4, 1).Number, 1e-9)
}

func TestMergedRegionRange(t *testing.T) {
	start, end, err := MergedRegion{StartRow: 0, StartCol: 0, EndRow: 2, EndCol: 27}.Range()
	require.NoError(t, err)
	assert.Equal(t, "A1", start)
	assert.Equal(t, "AB3", end)
}
