package docmodel

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rezaldwntr/pdf-backend-api/contentstream"
	"github.com/rezaldwntr/pdf-backend-api/decode"
	"github.com/rezaldwntr/pdf-backend-api/decode/decodetest"
	"github.com/rezaldwntr/pdf-backend-api/model"
	"github.com/rezaldwntr/pdf-backend-api/tables"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

var (
	columns   = decodetest.InvoiceColumns
	labels    = decodetest.InvoiceLabels
	tablePage = decodetest.Table
	invoice   = decodetest.Invoice
)

func build(t *testing.T, src decode.Source, opts Options) *model.Document {
	t.Helper()
	if opts.Tuning == (tuning.Config{}) {
		opts.Tuning = tuning.Default()
	}
	doc, err := New(opts).Build(context.Background(), src)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return doc
}

func TestBuildSinglePage(t *testing.T) {
	doc := build(t, decodetest.NewSource(invoice().Build(1)), Options{})

	if len(doc.Pages) != 1 || doc.Partial() {
		t.Fatalf("pages = %d, skipped = %v", len(doc.Pages), doc.SkippedPages)
	}
	if len(doc.Tables) != 1 {
		t.Fatalf("got %d logical tables, want 1", len(doc.Tables))
	}
	tbl := doc.Tables[0].Table
	if tbl.RowCount() != 4 || tbl.ColCount() != 4 || tbl.HeaderRowCount != 1 {
		t.Errorf("table %dx%d header=%d, want 4x4 header=1", tbl.RowCount(), tbl.ColCount(), tbl.HeaderRowCount)
	}

	elems := doc.Pages[0].Elements
	if len(elems) != 2 {
		t.Fatalf("got %d elements, want paragraph and table", len(elems))
	}
	p, ok := elems[0].(*model.Paragraph)
	if !ok || p.Text() != "Invoice 2024-001" {
		t.Errorf("first element = %#v", elems[0])
	}
	if _, ok := elems[1].(*model.TableRegion); !ok {
		t.Errorf("second element = %T, want table", elems[1])
	}
	for i, e := range elems {
		if e.Index() != i {
			t.Errorf("element %d has position %d", i, e.Index())
		}
	}
	if doc.Tables[0].Table.Position != 1 {
		t.Errorf("logical table position = %d, want 1", doc.Tables[0].Table.Position)
	}
}

// continued builds two pages: page 1 ends with a table at the bottom
// margin and page 2 starts with its continuation. Both pages carry a
// running footer.
func continued(nextRows [][]string, xs []float64) *decodetest.Source {
	p1 := decodetest.NewPage(612, 792).Text(decodetest.Regular, 10, 72, 60, "Annual inventory")
	tablePage(p1, columns, 620, [][]string{
		labels,
		{"Widget", "2", "3.50", "7.00"},
		{"Gadget", "1", "12.00", "12.00"},
		{"Gizmo", "10", "1.00", "10.00"},
		{"Doohickey", "4", "2.00", "8.00"},
	})
	p1.Text(decodetest.Regular, 8, 290, 770, "Page 1")

	p2 := tablePage(decodetest.NewPage(612, 792), xs, 40, nextRows)
	p2.Text(decodetest.Regular, 10, 72, 200, "End of report")
	p2.Text(decodetest.Regular, 8, 290, 770, "Page 2")
	return decodetest.NewSource(p1.Build(1), p2.Build(2))
}

func TestBuildContinuation(t *testing.T) {
	src := continued([][]string{
		labels,
		{"Sprocket", "3", "4.00", "12.00"},
		{"Flange", "6", "0.50", "3.00"},
	}, columns)
	doc := build(t, src, Options{})

	if len(doc.Continuations) != 1 {
		t.Fatalf("got %d continuations, want 1", len(doc.Continuations))
	}
	want := model.Continuation{From: model.TableRef{Page: 1, Table: 0}, To: model.TableRef{Page: 2, Table: 0}}
	if doc.Continuations[0] != want {
		t.Errorf("continuation = %+v, want %+v", doc.Continuations[0], want)
	}
	if len(doc.Tables) != 1 {
		t.Fatalf("got %d logical tables, want 1", len(doc.Tables))
	}

	lt := doc.Tables[0]
	if !lt.Spans() || len(lt.Parts) != 2 {
		t.Errorf("parts = %v", lt.Parts)
	}
	if lt.Table.RowCount() != 7 {
		t.Errorf("merged rows = %d, want 7 (header dropped once)", lt.Table.RowCount())
	}
	if lt.Table.HeaderRowCount != 1 {
		t.Errorf("HeaderRowCount = %d, want 1", lt.Table.HeaderRowCount)
	}
	if got := lt.Table.Rows[5][0].Text; got != "Sprocket" {
		t.Errorf("row 5 = %q, want Sprocket", got)
	}

	// page models are untouched
	if n := doc.Pages[1].Tables()[0].RowCount(); n != 3 {
		t.Errorf("page 2 table has %d rows, want 3", n)
	}
	if n := doc.Pages[0].Tables()[0].RowCount(); n != 5 {
		t.Errorf("page 1 table has %d rows, want 5", n)
	}

	if got, continuedPart := doc.LogicalTableAt(model.TableRef{Page: 2, Table: 0}); got != lt || !continuedPart {
		t.Error("LogicalTableAt does not resolve the continuation part")
	}
}

func TestBuildContinuationRepeatedFirstRow(t *testing.T) {
	xs := []float64{72, 250, 450}
	p1 := decodetest.NewPage(612, 792).Text(decodetest.Regular, 10, 72, 60, "Capitals")
	decodetest.PlainTable(p1, xs, 620, [][]string{
		{"City", "Country"},
		{"Paris", "France"},
		{"Rome", "Italy"},
		{"Oslo", "Norway"},
		{"Bern", "Switzerland"},
	})
	p1.Text(decodetest.Regular, 8, 290, 770, "Page 1")
	p2 := decodetest.PlainTable(decodetest.NewPage(612, 792), xs, 40, [][]string{
		{"City", "Country"},
		{"Lima", "Peru"},
		{"Quito", "Ecuador"},
	})
	p2.Text(decodetest.Regular, 8, 290, 770, "Page 2")
	doc := build(t, decodetest.NewSource(p1.Build(1), p2.Build(2)), Options{})

	if n := doc.Pages[0].Tables()[0].HeaderRowCount; n != 0 {
		t.Fatalf("page 1 HeaderRowCount = %d, want 0 (no header rule applies)", n)
	}
	if len(doc.Continuations) != 1 || len(doc.Tables) != 1 {
		t.Fatalf("continuations = %v, tables = %d", doc.Continuations, len(doc.Tables))
	}

	lt := doc.Tables[0].Table
	if lt.RowCount() != 7 {
		t.Errorf("merged rows = %d, want 7", lt.RowCount())
	}
	cities := 0
	for _, row := range lt.Rows {
		if row[0].Text == "City" {
			cities++
		}
	}
	if cities != 1 {
		t.Errorf("first row appears %d times in merged table, want 1", cities)
	}
	if lt.HeaderRowCount != 1 {
		t.Errorf("HeaderRowCount = %d, want 1", lt.HeaderRowCount)
	}
	if got := lt.Rows[5][0].Text; got != "Lima" {
		t.Errorf("row 5 = %q, want Lima", got)
	}
	if n := doc.Pages[1].Tables()[0].RowCount(); n != 3 {
		t.Errorf("page 2 table has %d rows, want 3", n)
	}
}

func TestBuildContinuationColumnMismatch(t *testing.T) {
	src := continued([][]string{
		{"Name", "Qty", "Price"},
		{"Sprocket", "3", "4.00"},
	}, columns[:4])
	doc := build(t, src, Options{})

	if len(doc.Continuations) != 0 {
		t.Errorf("got %d continuations, want 0", len(doc.Continuations))
	}
	if len(doc.Tables) != 2 {
		t.Errorf("got %d logical tables, want 2", len(doc.Tables))
	}
	var dropped []model.Warning
	for _, w := range doc.Warnings {
		if w.Kind == model.WarnContinuationDropped {
			dropped = append(dropped, w)
		}
	}
	if len(dropped) != 1 || dropped[0].Page != 2 {
		t.Errorf("continuation warnings = %v", dropped)
	}
}

func TestBuildNoContinuationAwayFromMargin(t *testing.T) {
	p1 := tablePage(decodetest.NewPage(612, 792), columns, 100, [][]string{
		labels, {"Widget", "2", "3.50", "7.00"},
	})
	p2 := tablePage(decodetest.NewPage(612, 792), columns, 40, [][]string{
		labels, {"Gadget", "1", "12.00", "12.00"},
	})
	doc := build(t, decodetest.NewSource(p1.Build(1), p2.Build(2)), Options{})
	if len(doc.Continuations) != 0 || len(doc.Tables) != 2 {
		t.Errorf("continuations = %v, tables = %d", doc.Continuations, len(doc.Tables))
	}
}

func TestBuildSkipsTruncatedPage(t *testing.T) {
	src := decodetest.NewSource(
		invoice().Build(1),
		decodetest.NewPage(612, 792).Raw("BT /F1 12 Tf 72 700 Td (Hello").Build(2),
		invoice().Build(3),
	)
	doc := build(t, src, Options{})

	if !reflect.DeepEqual(doc.SkippedPages, []int{2}) {
		t.Fatalf("SkippedPages = %v, want [2]", doc.SkippedPages)
	}
	if !doc.Partial() || len(doc.Pages) != 2 {
		t.Errorf("Partial = %v, pages = %d", doc.Partial(), len(doc.Pages))
	}
	if doc.Pages[0].Number != 1 || doc.Pages[1].Number != 3 {
		t.Errorf("page numbers = %d, %d", doc.Pages[0].Number, doc.Pages[1].Number)
	}
	found := false
	for _, w := range doc.Warnings {
		if w.Kind == model.WarnPageSkipped && w.Page == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("no skipped-page warning in %v", doc.Warnings)
	}
}

func TestProcessPageDecodeError(t *testing.T) {
	b := New(Options{Tuning: tuning.Default()})
	raw := decodetest.NewPage(612, 792).Raw("BT /F1 12 Tf 72 700 Td (Hello").Build(4)
	res := b.processPage(context.Background(), raw)

	var de *decode.DecodeError
	if !errors.As(res.err, &de) || de.Page != 4 {
		t.Fatalf("err = %v, want DecodeError for page 4", res.err)
	}
	if !errors.Is(res.err, contentstream.ErrTruncated) {
		t.Errorf("err = %v, want ErrTruncated", res.err)
	}
}

func TestBuildTableBudget(t *testing.T) {
	cfg := tuning.Default()
	cfg.Tables.MaxSegments = 4
	src := decodetest.NewSource(invoice().Build(1), decodetest.NewPage(612, 792).Text(decodetest.Regular, 10, 72, 60, "Plain page").Build(2))
	doc := build(t, src, Options{Tuning: cfg})

	if !reflect.DeepEqual(doc.SkippedPages, []int{1}) {
		t.Fatalf("SkippedPages = %v, want [1]", doc.SkippedPages)
	}

	b := New(Options{Tuning: cfg})
	res := b.processPage(context.Background(), invoice().Build(1))
	if !errors.Is(res.err, tables.ErrBudgetExceeded) {
		t.Errorf("err = %v, want ErrBudgetExceeded", res.err)
	}
}

func TestBuildNoContent(t *testing.T) {
	_, err := New(Options{Tuning: tuning.Default()}).Build(context.Background(),
		decodetest.NewSource(decodetest.NewPage(612, 792).Build(1)))
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("empty page: err = %v, want ErrNoContent", err)
	}

	src := decodetest.NewSource(invoice().Build(1))
	src.Errs = map[int]error{1: errors.New("broken xref")}
	_, err = New(Options{Tuning: tuning.Default()}).Build(context.Background(), src)
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("unreadable page: err = %v, want ErrNoContent", err)
	}
}

func TestBuildCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{Tuning: tuning.Default()}).Build(ctx, decodetest.NewSource(invoice().Build(1)))
	if !errors.Is(err, ErrNoContent) || !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want ErrNoContent wrapping context.Canceled", err)
	}
}

// cancelingSource cancels the build while page at is read
type cancelingSource struct {
	*decodetest.Source
	at     int
	cancel context.CancelFunc
}

func (s *cancelingSource) Page(n int) (*decode.RawPage, error) {
	if n == s.at {
		s.cancel()
	}
	return s.Source.Page(n)
}

func TestBuildDeadlineMidDocument(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &cancelingSource{
		Source: decodetest.NewSource(invoice().Build(1), invoice().Build(2), invoice().Build(3)),
		at:     2,
		cancel: cancel,
	}
	doc, err := New(Options{Tuning: tuning.Default(), Workers: 1}).Build(ctx, src)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !reflect.DeepEqual(doc.SkippedPages, []int{3}) {
		t.Fatalf("SkippedPages = %v, want [3]", doc.SkippedPages)
	}
	last := doc.Warnings[len(doc.Warnings)-1]
	if last.Kind != model.WarnDeadline || last.Page != 3 {
		t.Errorf("last warning = %v, want deadline on page 3", last)
	}
}

func TestBuildPageSelection(t *testing.T) {
	src := decodetest.NewSource(invoice().Build(1), invoice().Build(2), invoice().Build(3))
	doc := build(t, src, Options{Pages: []int{3, 2, 3}})
	if len(doc.Pages) != 2 || doc.Pages[0].Number != 2 || doc.Pages[1].Number != 3 {
		t.Errorf("pages = %v", doc.Pages)
	}
	if doc.Metadata.PageCount != 3 {
		t.Errorf("PageCount = %d, want 3", doc.Metadata.PageCount)
	}

	_, err := New(Options{Tuning: tuning.Default(), Pages: []int{5}}).Build(context.Background(), src)
	if !errors.Is(err, decode.ErrNoSuchPage) {
		t.Errorf("err = %v, want ErrNoSuchPage", err)
	}
}

// shape summarises the structure compared for idempotence
type shape struct {
	Page       int
	Tables     []model.BBox
	Paragraphs []model.BBox
	Positions  []int
}

func shapes(doc *model.Document) []shape {
	var out []shape
	for _, p := range doc.Pages {
		s := shape{Page: p.Number}
		for _, t := range p.Tables() {
			s.Tables = append(s.Tables, t.BBox)
		}
		for _, para := range p.Paragraphs() {
			s.Paragraphs = append(s.Paragraphs, para.BBox)
		}
		for _, e := range p.Elements {
			s.Positions = append(s.Positions, e.Index())
		}
		out = append(out, s)
	}
	return out
}

func TestBuildIdempotent(t *testing.T) {
	newSrc := func() decode.Source {
		return continued([][]string{labels, {"Sprocket", "3", "4.00", "12.00"}}, columns)
	}
	first := build(t, newSrc(), Options{Workers: 1})
	second := build(t, newSrc(), Options{Workers: 8})

	if !reflect.DeepEqual(shapes(first), shapes(second)) {
		t.Errorf("structure differs between runs:\n%+v\n%+v", shapes(first), shapes(second))
	}
	if len(first.Tables) != len(second.Tables) || first.ParagraphCount() != second.ParagraphCount() {
		t.Errorf("counts differ: tables %d/%d paragraphs %d/%d",
			len(first.Tables), len(second.Tables), first.ParagraphCount(), second.ParagraphCount())
	}
	if !reflect.DeepEqual(first.Warnings, second.Warnings) {
		t.Errorf("warnings differ: %v vs %v", first.Warnings, second.Warnings)
	}
}
