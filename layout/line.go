package layout

import (
	"sort"
	"strings"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

// Line is a run of spans that share a vertical extent, left to right
type Line struct {
	Spans []*model.TextSpan
	BBox  model.BBox
}

// FontSize returns the size carrying the most characters on the line
func (l *Line) FontSize() float64 {
	weights := make(map[float64]int)
	for _, s := range l.Spans {
		weights[s.FontSize] += len([]rune(s.Text))
	}
	best, bestN := 0.0, -1
	for size, n := range weights {
		if n > bestN || (n == bestN && size > best) {
			best, bestN = size, n
		}
	}
	return best
}

// Height is the line's vertical extent
func (l *Line) Height() float64 {
	return l.BBox.Height()
}

// Italic reports whether every span on the line is italic
func (l *Line) Italic() bool {
	for _, s := range l.Spans {
		if !s.Italic {
			return false
		}
	}
	return len(l.Spans) > 0
}

// Bold reports whether every span on the line is bold
func (l *Line) Bold() bool {
	for _, s := range l.Spans {
		if !s.Bold {
			return false
		}
	}
	return len(l.Spans) > 0
}

// Text assembles the span text with word spaces between spans
func (l *Line) Text() string {
	var sb strings.Builder
	for i, s := range l.Spans {
		if i > 0 && needsSpace(l.Spans[i-1], s) {
			sb.WriteByte(' ')
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// needsSpace reports whether two neighbouring spans are separate words.
// Spans split only by a style change sit flush against each other.
func needsSpace(prev, next *model.TextSpan) bool {
	if strings.HasSuffix(prev.Text, " ") || strings.HasPrefix(next.Text, " ") {
		return false
	}
	gap := next.BBox.X0 - prev.BBox.X1
	return gap > 0.1*max(prev.FontSize, next.FontSize)
}

// GroupLines clusters spans into lines. A span joins a line when their
// vertical extents overlap by at least overlap of the smaller height.
// Lines come back top to bottom with spans sorted left to right.
func GroupLines(spans []*model.TextSpan, overlap float64) []*Line {
	sorted := append([]*model.TextSpan(nil), spans...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y0 != sorted[j].BBox.Y0 {
			return sorted[i].BBox.Y0 < sorted[j].BBox.Y0
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	var lines []*Line
	for _, s := range sorted {
		var target *Line
		// Only the most recent lines can still overlap a span that starts
		// lower down the page.
		for i := len(lines) - 1; i >= 0 && i >= len(lines)-3; i-- {
			if lines[i].BBox.VerticalOverlapRatio(s.BBox) >= overlap {
				target = lines[i]
				break
			}
		}
		if target == nil {
			lines = append(lines, &Line{Spans: []*model.TextSpan{s}, BBox: s.BBox})
			continue
		}
		target.Spans = append(target.Spans, s)
		target.BBox = target.BBox.Union(s.BBox)
	}

	for _, l := range lines {
		sort.SliceStable(l.Spans, func(i, j int) bool {
			return l.Spans[i].BBox.X0 < l.Spans[j].BBox.X0
		})
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].BBox.Y0 < lines[j].BBox.Y0
	})
	return lines
}
