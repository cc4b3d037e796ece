package pdfbackend

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rezaldwntr/pdf-backend-api/decode/decodetest"
	"github.com/rezaldwntr/pdf-backend-api/format"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

func invoicePDF() []byte {
	return decodetest.PDF(decodetest.Info{Title: "Invoice", Author: "Billing"}, decodetest.Invoice())
}

func TestConvertInvoiceToXlsx(t *testing.T) {
	var buf bytes.Buffer
	result, err := FromReader(bytes.NewReader(invoicePDF())).ToXlsx(context.Background(), &buf)
	require.NoError(t, err)
	assert.False(t, result.Partial())

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Name", "Qty", "Price", "Total"}, rows[0])
	assert.Equal(t, "Gizmo", rows[3][0])

	raw, err := f.GetCellValue(sheet, "D4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "12500", raw)
}

func TestConvertDetectedFormats(t *testing.T) {
	tests := []struct {
		name string
		to   format.Format
	}{
		{"docx", format.DOCX},
		{"xlsx", format.XLSX},
		{"pptx", format.PPTX},
	}
	data := invoicePDF()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			_, err := FromReader(bytes.NewReader(data)).Convert(context.Background(), tt.to, &buf)
			require.NoError(t, err)

			got, err := format.DetectFromReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
			require.NoError(t, err)
			assert.Equal(t, tt.to, got)
		})
	}
}

func TestConvertUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	_, err := FromReader(bytes.NewReader(invoicePDF())).Convert(context.Background(), format.PDF, &buf)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Zero(t, buf.Len())
}

func TestAnalyzeSummary(t *testing.T) {
	result, err := FromReader(bytes.NewReader(invoicePDF())).Analyze(context.Background())
	require.NoError(t, err)

	s := result.Summary()
	assert.Equal(t, "Invoice", s.Title)
	assert.Equal(t, "Billing", s.Author)
	assert.Equal(t, 1, s.PageCount)
	require.Len(t, s.Pages, 1)
	assert.Equal(t, 1, s.Pages[0].Tables)
	require.Len(t, s.Tables, 1)

	tbl := s.Tables[0]
	assert.Equal(t, []int{1}, tbl.Pages)
	assert.Equal(t, 4, tbl.Rows)
	assert.Equal(t, 4, tbl.Columns)
	assert.Equal(t, 1, tbl.HeaderRows)
	assert.Equal(t, []string{"Name", "Qty", "Price", "Total"}, tbl.Header)
	assert.Len(t, tbl.Preview, 3)
	assert.False(t, s.Partial)
}

func TestAnalyzeContinuation(t *testing.T) {
	p1, p2 := decodetest.Inventory()
	data := decodetest.PDF(decodetest.Info{Title: "Inventory"}, p1, p2)

	result, err := FromReader(bytes.NewReader(data)).Analyze(context.Background())
	require.NoError(t, err)

	s := result.Summary()
	require.Len(t, s.Tables, 1)
	assert.Equal(t, []int{1, 2}, s.Tables[0].Pages)
	// Repeated header row on page 2 is dropped.
	assert.Equal(t, 7, s.Tables[0].Rows)
}

func TestAnalyzePages(t *testing.T) {
	p1, p2 := decodetest.Inventory()
	data := decodetest.PDF(decodetest.Info{}, p1, p2)

	result, err := FromReader(bytes.NewReader(data)).Pages(2).Analyze(context.Background())
	require.NoError(t, err)

	s := result.Summary()
	require.Len(t, s.Pages, 1)
	assert.Equal(t, 2, s.Pages[0].Number)
	require.Len(t, s.Tables, 1)
	assert.Equal(t, []int{2}, s.Tables[0].Pages)
}

func TestConvertNoTables(t *testing.T) {
	page := decodetest.NewPage(612, 792).Text(decodetest.Regular, 12, 72, 100, "Just a letter.")
	data := decodetest.PDF(decodetest.Info{}, page)

	var buf bytes.Buffer
	_, err := FromReader(bytes.NewReader(data)).ToXlsx(context.Background(), &buf)
	assert.ErrorIs(t, err, ErrNoTables)
	assert.Zero(t, buf.Len())

	buf.Reset()
	_, err = FromReader(bytes.NewReader(data)).ToDocx(context.Background(), &buf)
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}

func TestConvertNoContent(t *testing.T) {
	data := decodetest.PDF(decodetest.Info{}, decodetest.NewPage(612, 792))

	_, err := FromReader(bytes.NewReader(data)).Analyze(context.Background())
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestConverterImmutable(t *testing.T) {
	base := FromReader(bytes.NewReader(invoicePDF()))
	withPages := base.Pages(1)
	assert.Empty(t, base.options.pages)
	assert.Equal(t, []int{1}, withPages.options.pages)

	ranged := withPages.PageRange(3, 5)
	assert.Equal(t, []int{1}, withPages.options.pages)
	assert.Equal(t, []int{1, 3, 4, 5}, ranged.options.pages)
}

func TestInvalidTuning(t *testing.T) {
	cfg := tuning.Default()
	cfg.Assembly.MarginRatio = -1

	_, err := FromReader(bytes.NewReader(invoicePDF())).WithTuning(cfg).Analyze(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tuning")
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf")).Analyze(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "err = %v", err)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.pdf")
	require.NoError(t, os.WriteFile(path, invoicePDF(), 0o600))

	result := Must(Open(path).Analyze(context.Background()))
	assert.Len(t, result.Document.Tables, 1)
}

func TestFormatWarnings(t *testing.T) {
	assert.Equal(t, "", FormatWarnings(nil))
}
