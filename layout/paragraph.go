package layout

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

// block is a paragraph under construction
type block struct {
	lines  []*Line
	column int
	bbox   model.BBox
	role   model.Role
	level  int
}

func newBlock(l *Line, column int) *block {
	return &block{lines: []*Line{l}, column: column, bbox: l.BBox}
}

func (b *block) add(l *Line) {
	b.lines = append(b.lines, l)
	b.bbox = b.bbox.Union(l.BBox)
}

func (b *block) last() *Line {
	return b.lines[len(b.lines)-1]
}

// fontSize is the character-weighted dominant size of the block
func (b *block) fontSize() float64 {
	weights := make(map[float64]int)
	for _, l := range b.lines {
		for _, s := range l.Spans {
			weights[s.FontSize] += utf8.RuneCountInString(s.Text)
		}
	}
	best, bestN := 0.0, -1
	for size, n := range weights {
		if n > bestN || (n == bestN && size > best) {
			best, bestN = size, n
		}
	}
	return best
}

func (b *block) italic() bool {
	for _, l := range b.lines {
		if !l.Italic() {
			return false
		}
	}
	return true
}

func (b *block) bold() bool {
	for _, l := range b.lines {
		if !l.Bold() {
			return false
		}
	}
	return true
}

// groupParagraphs joins consecutive lines of one column into blocks.
// A line continues the current block when its top sits within
// ParagraphGapRatio line heights of the previous line's top, the font size
// does not jump by HeadingRatio, and the two lines share a left edge,
// centre or right edge within AlignTolerance. A first-line indent is
// accepted when the right edges agree.
func (e *Engine) groupParagraphs(lines []*Line, column int) []*block {
	var blocks []*block
	var cur *block
	for _, l := range lines {
		if cur != nil && e.continues(cur, l) {
			cur.add(l)
			continue
		}
		cur = newBlock(l, column)
		blocks = append(blocks, cur)
	}
	return blocks
}

func (e *Engine) continues(b *block, next *Line) bool {
	prev := b.last()
	h := max(prev.Height(), next.Height())
	step := next.BBox.Y0 - prev.BBox.Y0
	if step <= 0 || step > e.cfg.ParagraphGapRatio*h {
		return false
	}

	ps, ns := prev.FontSize(), next.FontSize()
	if ps > 0 && ns > 0 && max(ps, ns)/min(ps, ns) >= e.cfg.HeadingRatio {
		return false
	}

	tol := e.cfg.AlignTolerance
	left := math.Abs(prev.BBox.X0-next.BBox.X0) <= tol
	right := math.Abs(prev.BBox.X1-next.BBox.X1) <= tol
	centre := math.Abs(prev.BBox.Center().X-next.BBox.Center().X) <= tol
	indent := len(b.lines) == 1 && right &&
		prev.BBox.X0 > next.BBox.X0 && prev.BBox.X0-next.BBox.X0 <= 4*ns
	return left || right || centre || indent
}

// alignment infers paragraph alignment from line edges. Single lines are
// compared against their band.
func (e *Engine) alignment(b *block, band Band) model.Alignment {
	tol := e.cfg.AlignTolerance
	if len(b.lines) == 1 {
		box := b.lines[0].BBox
		indented := box.X0 > band.X0+tol
		switch {
		case indented && math.Abs(box.Center().X-band.Center()) <= tol:
			return model.AlignCenter
		case indented && math.Abs(box.X1-band.X1) <= tol:
			return model.AlignRight
		default:
			return model.AlignLeft
		}
	}

	first := b.lines[0].BBox
	second := b.lines[1].BBox
	left, right, centre, bodyRight := true, true, true, true
	for i, l := range b.lines {
		if i > 0 && math.Abs(l.BBox.X0-second.X0) > tol {
			left = false
		}
		if math.Abs(l.BBox.X1-first.X1) > tol {
			right = false
			if i < len(b.lines)-1 {
				bodyRight = false
			}
		}
		if math.Abs(l.BBox.Center().X-first.Center().X) > tol {
			centre = false
		}
	}
	// the first line may be indented but never outdented
	left = left && first.X0 >= second.X0-tol
	switch {
	case left && bodyRight && len(b.lines) >= 3:
		return model.AlignJustify
	case left:
		return model.AlignLeft
	case centre:
		return model.AlignCenter
	case right:
		return model.AlignRight
	default:
		return model.AlignLeft
	}
}

// runs flattens a block into styled runs. Words split across lines by a
// hyphen are rejoined; other line breaks become a space. Adjacent runs with
// identical styling are coalesced.
func runs(b *block) []model.Run {
	var out []model.Run
	appendRun := func(r model.Run) {
		if n := len(out); n > 0 && sameStyle(out[n-1], r) {
			out[n-1].Text += r.Text
			out[n-1].BBox = out[n-1].BBox.Union(r.BBox)
			return
		}
		out = append(out, r)
	}

	for li, l := range b.lines {
		for si, s := range l.Spans {
			r := model.RunFromSpan(s)
			r.Text = norm.NFC.String(r.Text)
			if si > 0 && needsSpace(l.Spans[si-1], s) {
				r.Text = " " + r.Text
			}
			if si == 0 && li > 0 && len(out) > 0 {
				prev := &out[len(out)-1]
				if hyphenated(prev.Text, r.Text) {
					prev.Text = strings.TrimSuffix(prev.Text, "-")
				} else if !strings.HasSuffix(prev.Text, " ") {
					r.Text = " " + r.Text
				}
			}
			appendRun(r)
		}
	}
	return out
}

// hyphenated reports whether a line ending in "-" splits a word that the
// next line completes.
func hyphenated(end, next string) bool {
	if !strings.HasSuffix(end, "-") || len(end) < 2 {
		return false
	}
	before, _ := utf8.DecodeLastRuneInString(end[:len(end)-1])
	after, _ := utf8.DecodeRuneInString(next)
	return unicode.IsLetter(before) && unicode.IsLower(after)
}

func sameStyle(a, b model.Run) bool {
	return a.FontFamily == b.FontFamily && a.FontSize == b.FontSize &&
		a.Bold == b.Bold && a.Italic == b.Italic && a.Color == b.Color
}
