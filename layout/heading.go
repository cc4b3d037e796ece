package layout

import (
	"math"
	"unicode/utf8"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

// MaxHeadingLines is the longest block still treated as a heading
const MaxHeadingLines = 3

// Heading levels by size relative to body text. Anything at or above
// HeadingRatio but below level2Ratio is level 3.
const (
	level1Ratio = 1.8
	level2Ratio = 1.5
)

// BodySize returns the font size carrying the most characters, rounded to
// half points. Ties go to the smaller size. It returns 0 when spans is empty.
func BodySize(spans []*model.TextSpan) float64 {
	counts := make(map[int]int)
	for _, s := range spans {
		if s.FontSize > 0 {
			counts[int(math.Round(s.FontSize*2))] += utf8.RuneCountInString(s.Text)
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

// HeadingLevel maps a size ratio to a level 1..3, or 0 below ratio
func HeadingLevel(size, body, ratio float64) int {
	if body <= 0 || size < body*ratio {
		return 0
	}
	switch r := size / body; {
	case r >= level1Ratio:
		return 1
	case r >= level2Ratio:
		return 2
	default:
		return 3
	}
}

// assignHeadings marks short blocks set clearly larger than body text as
// headings. A block whose neighbour in the same column shares its size and
// weight is large body text rather than a heading.
func (e *Engine) assignHeadings(blocks []*block, body float64) {
	for i, b := range blocks {
		if len(b.lines) > MaxHeadingLines {
			continue
		}
		size := b.fontSize()
		level := HeadingLevel(size, body, e.cfg.HeadingRatio)
		if level == 0 {
			continue
		}
		if e.sameStyleNeighbour(blocks, i, size) {
			continue
		}
		b.role = model.RoleHeading
		b.level = level
	}
}

func (e *Engine) sameStyleNeighbour(blocks []*block, i int, size float64) bool {
	b := blocks[i]
	near := func(o *block) bool {
		if o.column != b.column || o.bold() != b.bold() {
			return false
		}
		if math.Abs(o.fontSize()-size) > 0.05*size {
			return false
		}
		gap := max(o.bbox.Y0-b.bbox.Y1, b.bbox.Y0-o.bbox.Y1)
		return gap <= e.cfg.ParagraphGapRatio*size
	}
	return i > 0 && near(blocks[i-1]) || i+1 < len(blocks) && near(blocks[i+1])
}

// assignCaptions marks italic blocks set smaller than body text that sit
// directly under an image as captions.
func (e *Engine) assignCaptions(blocks []*block, images []*model.RasterImage, body float64) {
	for _, b := range blocks {
		if b.role != model.RoleBody || !b.italic() || b.fontSize() >= body {
			continue
		}
		for _, img := range images {
			gap := b.bbox.Y0 - img.BBox.Y1
			overlaps := b.bbox.X0 < img.BBox.X1 && b.bbox.X1 > img.BBox.X0
			if overlaps && gap >= -e.cfg.AlignTolerance && gap <= e.cfg.CaptionMaxGap {
				b.role = model.RoleCaption
				break
			}
		}
	}
}
