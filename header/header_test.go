package header

import (
	"testing"

	"github.com/rezaldwntr/pdf-backend-api/model"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

func table(rows ...[]string) *model.TableRegion {
	t := model.NewTableRegion(len(rows), len(rows[0]))
	for i, row := range rows {
		for j, s := range row {
			t.Rows[i][j].Text = s
			t.Rows[i][j].FontSize = 10
		}
	}
	return t
}

func boldRow(t *model.TableRegion, i int) *model.TableRegion {
	for j := range t.Rows[i] {
		t.Rows[i][j].Bold = true
	}
	return t
}

func shadeRow(t *model.TableRegion, i int, c model.Color) *model.TableRegion {
	for j := range t.Rows[i] {
		t.Rows[i][j].Shaded = true
		t.Rows[i][j].Fill = c
	}
	return t
}

func sizeRow(t *model.TableRegion, i int, size float64) *model.TableRegion {
	for j := range t.Rows[i] {
		t.Rows[i][j].FontSize = size
	}
	return t
}

func people() *model.TableRegion {
	return table(
		[]string{"Name", "City"},
		[]string{"Ada", "London"},
		[]string{"Grace", "New York"},
	)
}

func TestClassify(t *testing.T) {
	gray := model.Color{R: 217, G: 217, B: 217}
	tests := []struct {
		name      string
		table     *model.TableRegion
		rows      int
		rule      string
		ambiguous bool
	}{
		{"bold first row", boldRow(people(), 0), 1, "bold-or-shaded", false},
		{"shaded first row", shadeRow(people(), 0, gray), 1, "bold-or-shaded", false},
		{"near white shading", shadeRow(people(), 0, model.Color{R: 252, G: 252, B: 252}), 0, "", true},
		{"every row shaded alike", shadeRow(shadeRow(people(), 0, gray), 1, gray), 0, "", true},
		{"larger first row", sizeRow(people(), 0, 12), 1, "font-size", false},
		{"barely larger first row", sizeRow(people(), 0, 10.2), 0, "", true},
		{"numeric body", table(
			[]string{"Item", "Qty", "Price"},
			[]string{"Widget", "4", "$3.50"},
			[]string{"Gadget", "12", "(1,200.00)"},
		), 1, "numeric-labels", false},
		{"numeric label row", table(
			[]string{"Year", "2023", "2024"},
			[]string{"Revenue", "10", "12"},
			[]string{"Cost", "8", "9"},
		), 0, "", true},
		{"body row without numbers", table(
			[]string{"Item", "Qty"},
			[]string{"Widget", "4"},
			[]string{"Gadget", "n/a"},
		), 0, "", true},
		{"two rows no rule", table(
			[]string{"a", "b"},
			[]string{"c", "d"},
		), 0, "", false},
		{"single row", boldRow(table([]string{"a", "b"}), 0), 0, "", false},
	}

	c := New(tuning.Default().Header)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := c.Classify(tt.table)
			if d.Rows != tt.rows || d.Rule != tt.rule || d.Ambiguous != tt.ambiguous {
				t.Errorf("Classify() = %+v, want rows=%d rule=%q ambiguous=%v", d, tt.rows, tt.rule, tt.ambiguous)
			}
		})
	}
}

func TestRuleOrder(t *testing.T) {
	c := New(tuning.Default().Header)
	var names []string
	for _, r := range c.Rules() {
		names = append(names, r.Name)
	}
	want := []string{"bold-or-shaded", "font-size", "numeric-labels"}
	if len(names) != len(want) {
		t.Fatalf("rules = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("rule %d = %q, want %q", i, names[i], want[i])
		}
	}

	// bold beats the size rule even when both match
	tbl := sizeRow(boldRow(people(), 0), 0, 14)
	if d := c.Classify(tbl); d.Rule != "bold-or-shaded" {
		t.Errorf("Rule = %q, want bold-or-shaded", d.Rule)
	}
}

func TestApply(t *testing.T) {
	c := New(tuning.Default().Header)

	tbl := boldRow(people(), 0)
	if w := c.Apply(tbl); w != nil {
		t.Errorf("unexpected warning %+v", w)
	}
	if tbl.HeaderRowCount != 1 {
		t.Errorf("HeaderRowCount = %d, want 1", tbl.HeaderRowCount)
	}

	tbl = people()
	tbl.Page = 3
	tbl.HeaderRowCount = 2
	w := c.Apply(tbl)
	if w == nil || w.Kind != model.WarnAmbiguousHeader || w.Page != 3 {
		t.Fatalf("warning = %+v, want ambiguous header on page 3", w)
	}
	if tbl.HeaderRowCount != 0 {
		t.Errorf("HeaderRowCount = %d, want 0", tbl.HeaderRowCount)
	}
}

func TestBoldIgnoresEmptyCells(t *testing.T) {
	tbl := table(
		[]string{"", "Q1", "Q2"},
		[]string{"North", "x", "y"},
		[]string{"South", "z", "w"},
	)
	tbl.Rows[0][1].Bold = true
	tbl.Rows[0][2].Bold = true
	if d := New(tuning.Default().Header).Classify(tbl); d.Rows != 1 {
		t.Errorf("Rows = %d, want 1", d.Rows)
	}
}

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"42", true},
		{"-3.5", true},
		{"1,234.56", true},
		{"1.234,56", true},
		{"(12.00)", true},
		{"12%", true},
		{"$ 3.50", true},
		{"€3", true},
		{"1 000", true},
		{"", false},
		{"n/a", false},
		{"12 apples", false},
		{"Q1", false},
		{"5-6", false},
		{"-", false},
	}
	for _, tt := range tests {
		if got := IsNumeric(tt.in); got != tt.want {
			t.Errorf("IsNumeric(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDropRepeatedHeader(t *testing.T) {
	first := boldRow(people(), 0)
	first.HeaderRowCount = 1

	next := table(
		[]string{"Name ", "City"},
		[]string{"Linus", "Helsinki"},
	)
	next.Rows[0][0].BBox = model.BBox{Y0: 50, Y1: 60}
	next.Rows[1][0].BBox = model.BBox{Y0: 60, Y1: 70}
	next.BBox = model.BBox{Y0: 50, Y1: 70}

	got, dropped := DropRepeatedHeader(first, next)
	if !dropped {
		t.Fatal("expected repeated header to be dropped")
	}
	if got.RowCount() != 1 || got.Rows[0][0].Text != "Linus" {
		t.Errorf("rows = %v", got.Rows)
	}
	if got.BBox.Y0 != 60 {
		t.Errorf("BBox.Y0 = %v, want 60", got.BBox.Y0)
	}
	if next.RowCount() != 2 {
		t.Error("input table was modified")
	}

	other := table([]string{"Name", "Town"}, []string{"Linus", "Helsinki"})
	if _, dropped := DropRepeatedHeader(first, other); dropped {
		t.Error("different labels must not be dropped")
	}

	noHeader := people()
	if !RepeatsHeader(noHeader, next) {
		t.Error("a table without header rows must be compared by its first row")
	}
	if RepeatsHeader(noHeader, other) {
		t.Error("different first rows must not repeat")
	}

	blank := table([]string{"", ""}, []string{"Ada", "London"})
	if RepeatsHeader(blank, table([]string{" ", ""}, []string{"Linus", "Helsinki"})) {
		t.Error("an empty first row must not count as repeated")
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  Total  ﬁnal\n"); got != "Total final" {
		t.Errorf("Normalize() = %q", got)
	}
}
