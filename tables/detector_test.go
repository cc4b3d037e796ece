package tables

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rezaldwntr/pdf-backend-api/decode"
	"github.com/rezaldwntr/pdf-backend-api/decode/decodetest"
	"github.com/rezaldwntr/pdf-backend-api/model"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

func detect(t *testing.T, b *decodetest.PageBuilder, cfg tuning.TableConfig) (*Result, error) {
	t.Helper()
	page, err := decode.New(tuning.Default().Decode, nil).Decode(context.Background(), b.Build(1))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return New(cfg, nil).Detect(page.Number, page.Primitives)
}

// invoicePage draws a 4×4 ruled grid with a bold header row
func invoicePage() *decodetest.PageBuilder {
	xs := []float64{72, 200, 300, 400, 500}
	ys := []float64{100, 120, 140, 160, 180}
	rows := [][]string{
		{"Name", "Qty", "Price", "Total"},
		{"Widget", "2", "3.50", "7.00"},
		{"Gadget", "1", "12.00", "12.00"},
		{"Gizmo", "10", "1,250.00", "12,500.00"},
	}
	b := decodetest.NewPage(612, 792).Grid(xs, ys)
	for i, row := range rows {
		font := decodetest.Regular
		if i == 0 {
			font = decodetest.Bold
		}
		for j, text := range row {
			b.Text(font, 10, xs[j]+4, ys[i]+14, text)
		}
	}
	return b
}

func TestDetectRuledTable(t *testing.T) {
	b := invoicePage().Text(decodetest.Regular, 10, 72, 60, "Invoice 2024-001")
	res, err := detect(t, b, tuning.Default().Tables)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(res.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(res.Tables))
	}
	tbl := res.Tables[0]
	if tbl.RowCount() != 4 || tbl.ColCount() != 4 {
		t.Fatalf("size = %dx%d, want 4x4", tbl.RowCount(), tbl.ColCount())
	}
	if !tbl.Ruled || tbl.Page != 1 {
		t.Errorf("Ruled = %v, Page = %d", tbl.Ruled, tbl.Page)
	}

	want := [][]string{
		{"Name", "Qty", "Price", "Total"},
		{"Widget", "2", "3.50", "7.00"},
		{"Gadget", "1", "12.00", "12.00"},
		{"Gizmo", "10", "1,250.00", "12,500.00"},
	}
	for i := range want {
		got := tbl.RowTexts(i)
		if fmt.Sprint(got) != fmt.Sprint(want[i]) {
			t.Errorf("row %d = %q, want %q", i, got, want[i])
		}
	}
	for j := 0; j < 4; j++ {
		if !tbl.Rows[0][j].Bold {
			t.Errorf("header cell %d not bold", j)
		}
		if tbl.Rows[1][j].Bold {
			t.Errorf("body cell %d bold", j)
		}
	}

	if len(res.Remaining) != 1 || res.Remaining[0].Text != "Invoice 2024-001" {
		t.Errorf("Remaining = %v, want only the title span", res.Remaining)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v", res.Warnings)
	}
}

func TestDetectCellsDoNotOverlap(t *testing.T) {
	res, err := detect(t, invoicePage(), tuning.Default().Tables)
	if err != nil || len(res.Tables) != 1 {
		t.Fatalf("Detect() = %v, %v", res, err)
	}
	tbl := res.Tables[0]
	var boxes []model.BBox
	for i := range tbl.Rows {
		for j := range tbl.Rows[i] {
			c := tbl.Rows[i][j]
			if c.Covered {
				continue
			}
			if i > 0 && c.BBox.Y0 < tbl.Rows[i-1][j].BBox.Y0 {
				t.Errorf("row %d is above row %d", i, i-1)
			}
			boxes = append(boxes, c.BBox)
		}
	}
	for a := range boxes {
		for b := a + 1; b < len(boxes); b++ {
			if in := boxes[a].Intersection(boxes[b]); !in.IsEmpty() {
				t.Errorf("cells %v and %v overlap", boxes[a], boxes[b])
			}
		}
	}
}

func TestDetectMergedTitleRow(t *testing.T) {
	b := decodetest.NewPage(612, 792)
	for _, y := range []float64{100, 120, 140, 160} {
		b.Line(72, y, 400, y, 0.5)
	}
	b.Line(72, 100, 72, 160, 0.5).Line(400, 100, 400, 160, 0.5)
	// interior rules stop below the title row
	b.Line(200, 120, 200, 160, 0.5).Line(300, 120, 300, 160, 0.5)
	b.Text(decodetest.Bold, 10, 76, 114, "Summary")
	for i, row := range [][]string{{"a", "b", "c"}, {"d", "e", "f"}} {
		for j, text := range row {
			b.Text(decodetest.Regular, 10, []float64{76, 204, 304}[j], 134+float64(i)*20, text)
		}
	}

	res, err := detect(t, b, tuning.Default().Tables)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(res.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(res.Tables))
	}
	tbl := res.Tables[0]
	title := tbl.Rows[0][0]
	if !title.Merged || title.ColSpan != 3 || title.RowSpan != 1 || title.Text != "Summary" {
		t.Errorf("title cell = %+v", title)
	}
	if !tbl.Rows[0][1].Covered || !tbl.Rows[0][2].Covered {
		t.Error("title row slots 1 and 2 should be covered")
	}
	if tbl.Rows[1][1].Merged || tbl.Rows[1][1].Text != "b" {
		t.Errorf("body cell = %+v", tbl.Rows[1][1])
	}
	if err := tbl.ValidateMerges("test"); err != nil {
		t.Errorf("ValidateMerges() = %v", err)
	}
}

func TestDetectKeepsTextCellsApart(t *testing.T) {
	// no interior vertical rules: both columns carry text so nothing merges
	b := decodetest.NewPage(612, 792)
	for _, y := range []float64{100, 120, 140} {
		b.Line(72, y, 400, y, 0.5)
	}
	b.Line(72, 100, 72, 140, 0.5).Line(400, 100, 400, 140, 0.5).Line(236, 100, 236, 140, 0.5)
	b.Text(decodetest.Regular, 10, 76, 114, "left").Text(decodetest.Regular, 10, 240, 114, "right")
	b.Text(decodetest.Regular, 10, 76, 134, "one").Text(decodetest.Regular, 10, 240, 134, "two")

	res, err := detect(t, b, tuning.Default().Tables)
	if err != nil || len(res.Tables) != 1 {
		t.Fatalf("Detect() = %+v, %v", res, err)
	}
	for i := range res.Tables[0].Rows {
		for _, c := range res.Tables[0].Rows[i] {
			if c.Merged || c.Covered {
				t.Errorf("unexpected merge in %+v", c)
			}
		}
	}
}

func TestDetectRejectsSmallGrids(t *testing.T) {
	t.Run("single row box", func(t *testing.T) {
		b := decodetest.NewPage(612, 792).
			Grid([]float64{72, 200, 300}, []float64{100, 120}).
			Text(decodetest.Regular, 10, 76, 114, "alone").
			Text(decodetest.Regular, 10, 204, 114, "row")
		res, err := detect(t, b, tuning.Default().Tables)
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Tables) != 0 {
			t.Errorf("got %d tables, want 0", len(res.Tables))
		}
		if len(res.Remaining) != 2 {
			t.Errorf("Remaining = %d spans, want 2", len(res.Remaining))
		}
	})

	t.Run("collapses to one column", func(t *testing.T) {
		// a 2×2 grid whose column rule is too short to separate anything
		b := decodetest.NewPage(612, 792)
		for _, y := range []float64{100, 120, 140} {
			b.Line(72, y, 300, y, 0.5)
		}
		b.Line(72, 100, 72, 140, 0.5).Line(300, 100, 300, 140, 0.5).Line(180, 100, 180, 106, 0.5)
		b.Text(decodetest.Regular, 10, 76, 114, "note")
		res, err := detect(t, b, tuning.Default().Tables)
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Tables) != 0 {
			t.Fatalf("got %d tables, want 0", len(res.Tables))
		}
		if len(res.Warnings) != 1 || res.Warnings[0].Kind != model.WarnAmbiguousTable {
			t.Errorf("Warnings = %v, want one ambiguous table warning", res.Warnings)
		}
	})
}

func TestDetectShadedHeader(t *testing.T) {
	b := decodetest.NewPage(612, 792).
		Fill(72, 100, 428, 20, model.Color{R: 217, G: 217, B: 217})
	b.Raw(string(invoicePage().Build(1).Contents))

	res, err := detect(t, b, tuning.Default().Tables)
	if err != nil || len(res.Tables) != 1 {
		t.Fatalf("Detect() = %+v, %v", res, err)
	}
	tbl := res.Tables[0]
	for j := range tbl.Rows[0] {
		if c := tbl.Rows[0][j]; !c.Shaded || c.Fill != (model.Color{R: 217, G: 217, B: 217}) {
			t.Errorf("header cell %d = shaded %v fill %+v", j, c.Shaded, c.Fill)
		}
		if tbl.Rows[1][j].Shaded {
			t.Errorf("body cell %d shaded", j)
		}
	}
}

func TestDetectBudget(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(*tuning.TableConfig)
	}{
		{"segment cap", func(c *tuning.TableConfig) { c.MaxSegments = 3 }},
		{"merge iteration cap", func(c *tuning.TableConfig) { c.MaxMergeIterations = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tuning.Default().Tables
			tt.cfg(&cfg)
			_, err := detect(t, invoicePage(), cfg)
			if !errors.Is(err, ErrBudgetExceeded) {
				t.Errorf("Detect() error = %v, want ErrBudgetExceeded", err)
			}
		})
	}
}

func TestDetectorStrategies(t *testing.T) {
	d := New(tuning.Default().Tables, nil)
	got := d.Strategies()
	if len(got) != 2 || got[0] != "ruled" || got[1] != "implicit" {
		t.Errorf("Strategies() = %v", got)
	}
}

func TestDetectEmptyPage(t *testing.T) {
	res, err := New(tuning.Default().Tables, nil).Detect(1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Tables) != 0 || len(res.Remaining) != 0 {
		t.Errorf("Detect(nil) = %+v", res)
	}
}
