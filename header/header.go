// Package header decides how many leading rows of a table are column
// labels.
//
// The decision is an ordered list of rules. Rules are evaluated strictly in
// order and the first one that matches decides the header row count:
//
//  1. bold-or-shaded: the first row is uniformly bold, or uniformly shaded
//     with a fill that differs from the page and from the body rows.
//  2. font-size: the first row is set larger than the modal body size by
//     at least HeaderConfig.FontSizeRatio.
//  3. numeric-labels: the first row has no numeric cell while the body rows
//     (at least NumericRowMinShare of them) each carry one.
//
// When no rule matches the table has no header row. Tables of three or more
// rows that end up without a header are flagged as ambiguous.
package header

import (
	"strings"
	"unicode"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/unicode/norm"

	"github.com/rezaldwntr/pdf-backend-api/model"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

// Rule is one predicate→decision pair
type Rule struct {
	Name  string
	Match func(t *model.TableRegion) bool
	// Rows is the header row count decided when Match returns true
	Rows int
}

// Decision is the outcome of classifying one table
type Decision struct {
	Rows      int
	Rule      string // name of the matching rule, empty when none matched
	Ambiguous bool
}

// Classifier applies the header rules
type Classifier struct {
	cfg   tuning.HeaderConfig
	rules []Rule
}

// New creates a classifier with the standard rule list
func New(cfg tuning.HeaderConfig) *Classifier {
	c := &Classifier{cfg: cfg}
	c.rules = []Rule{
		{Name: "bold-or-shaded", Match: c.boldOrShaded, Rows: 1},
		{Name: "font-size", Match: c.largerFont, Rows: 1},
		{Name: "numeric-labels", Match: c.numericLabels, Rows: 1},
	}
	return c
}

// Rules returns the rules in evaluation order
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// Classify evaluates the rules against t without modifying it
func (c *Classifier) Classify(t *model.TableRegion) Decision {
	if t.RowCount() < 2 {
		return Decision{}
	}
	for _, r := range c.rules {
		if r.Match(t) {
			return Decision{Rows: r.Rows, Rule: r.Name}
		}
	}
	return Decision{Ambiguous: t.RowCount() >= 3}
}

// Apply classifies t, stores the header row count and returns a warning
// for ambiguous tables.
func (c *Classifier) Apply(t *model.TableRegion) *model.Warning {
	d := c.Classify(t)
	t.HeaderRowCount = d.Rows
	if !d.Ambiguous {
		return nil
	}
	return &model.Warning{
		Kind:    model.WarnAmbiguousHeader,
		Page:    t.Page,
		Message: "no header rule matched; all rows treated as data",
	}
}

// visible returns the non-covered, non-empty cells of a row
func visible(row []model.Cell) []model.Cell {
	var out []model.Cell
	for _, c := range row {
		if !c.Covered && !c.IsEmpty() {
			out = append(out, c)
		}
	}
	return out
}

func (c *Classifier) boldOrShaded(t *model.TableRegion) bool {
	first := visible(t.Rows[0])
	if len(first) == 0 {
		return false
	}
	bold := true
	for _, cell := range first {
		bold = bold && cell.Bold
	}
	return bold || c.uniformlyShaded(t)
}

// uniformlyShaded reports whether every slot of the first row has the same
// fill, that fill is not page white, and the second row does not share it.
func (c *Classifier) uniformlyShaded(t *model.TableRegion) bool {
	var fill colorful.Color
	for j, cell := range t.Rows[0] {
		if cell.Covered {
			continue
		}
		if !cell.Shaded {
			return false
		}
		cf := toColorful(cell.Fill)
		if j == 0 {
			fill = cf
		} else if fill.DistanceLab(cf) > c.cfg.ShadeDistance {
			return false
		}
	}
	if fill.DistanceLab(toColorful(model.White)) <= c.cfg.ShadeDistance {
		return false
	}
	for _, cell := range t.Rows[1] {
		if cell.Covered {
			continue
		}
		if !cell.Shaded || fill.DistanceLab(toColorful(cell.Fill)) > c.cfg.ShadeDistance {
			return true
		}
	}
	return false
}

func toColorful(col model.Color) colorful.Color {
	return colorful.Color{R: float64(col.R) / 255, G: float64(col.G) / 255, B: float64(col.B) / 255}
}

func (c *Classifier) largerFont(t *model.TableRegion) bool {
	body := modalSize(t.Rows[1:])
	if body <= 0 {
		return false
	}
	head := 0.0
	for _, cell := range visible(t.Rows[0]) {
		head = max(head, cell.FontSize)
	}
	return head >= body*c.cfg.FontSizeRatio
}

// modalSize returns the most common cell font size, rounded to half points.
// Ties go to the smaller size.
func modalSize(rows [][]model.Cell) float64 {
	counts := make(map[int]int)
	for _, row := range rows {
		for _, cell := range visible(row) {
			if cell.FontSize > 0 {
				counts[int(cell.FontSize*2+0.5)]++
			}
		}
	}
	best, bestN := 0, 0
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return float64(best) / 2
}

func (c *Classifier) numericLabels(t *model.TableRegion) bool {
	first := visible(t.Rows[0])
	if len(first) == 0 {
		return false
	}
	for _, cell := range first {
		if IsNumeric(cell.Text) {
			return false
		}
	}
	body := t.Rows[1:]
	withNumber := 0
	for _, row := range body {
		for _, cell := range visible(row) {
			if IsNumeric(cell.Text) {
				withNumber++
				break
			}
		}
	}
	return float64(withNumber) >= c.cfg.NumericRowMinShare*float64(len(body))
}

// IsNumeric reports whether s reads as a single number: digits with
// optional grouping and decimal separators, a sign or accounting
// parentheses, a percent sign or a currency symbol.
func IsNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
	}
	digits := 0
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.' || r == ',' || r == '\'' || r == ' ' || r == '\u00a0' || r == '\u202f':
		case r == '-' || r == '+' || r == '\u2212':
			if i != 0 && digits > 0 {
				return false
			}
		case r == '%' || unicode.Is(unicode.Sc, r):
		default:
			return false
		}
	}
	return digits > 0
}

// Normalize folds text for header comparison: compatibility forms and
// runs of whitespace are collapsed.
func Normalize(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// RepeatsHeader reports whether the first row of next has the same text as
// the header row of first. A table without header rows is compared by its
// first row.
func RepeatsHeader(first, next *model.TableRegion) bool {
	if first.RowCount() == 0 || next.RowCount() == 0 || first.ColCount() != next.ColCount() {
		return false
	}
	head := first.Rows[max(first.HeaderRowCount-1, 0)]
	filled := false
	for j := range head {
		if next.Rows[0][j].RowSpan > 1 {
			return false
		}
		text := Normalize(head[j].Text)
		if text != Normalize(next.Rows[0][j].Text) {
			return false
		}
		filled = filled || text != ""
	}
	return filled
}

// DropRepeatedHeader returns next without its first row when that row
// repeats the header of first. next itself is never modified; the second
// result reports whether a row was dropped.
func DropRepeatedHeader(first, next *model.TableRegion) (*model.TableRegion, bool) {
	if !RepeatsHeader(first, next) {
		return next, false
	}
	out := next.Clone()
	out.Rows = out.Rows[1:]
	if out.HeaderRowCount > 0 {
		out.HeaderRowCount--
	}
	if len(out.Rows) > 0 {
		out.BBox.Y0 = out.Rows[0][0].BBox.Y0
	}
	return out, true
}
