package graphicsstate

import (
	"math"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

// PathSegmentType defines the type of path segment
type PathSegmentType int

const (
	// PathMoveTo starts a new subpath
	PathMoveTo PathSegmentType = iota
	// PathLineTo draws a line to a point
	PathLineTo
	// PathCurveTo draws a cubic Bézier curve
	PathCurveTo
	// PathClosePath closes the current subpath
	PathClosePath
)

// PathSegment represents a single segment of a path.
// Points are already mapped through the CTM into page space.
type PathSegment struct {
	Type PathSegmentType

	// For MoveTo and LineTo: single point
	// For CurveTo: control point 1, control point 2, end point
	Points []model.Point
}

// Path is a path under construction. Each point is transformed by the CTM
// in effect when it was added.
type Path struct {
	Segments []PathSegment

	current      model.Point // user space
	subpathStart model.Point // user space
	hasCurrent   bool
}

// ExtractedLine is one stroked straight segment in page space
type ExtractedLine struct {
	Start model.Point
	End   model.Point
	Width float64
	Color model.Color
}

// ExtractedRectangle is one filled axis-aligned rectangle in page space
type ExtractedRectangle struct {
	BBox  model.BBox
	Color model.Color
}

// PathExtractor builds paths and turns paint operators into lines and
// filled rectangles.
type PathExtractor struct {
	path Path
	gs   *GraphicsState

	// MaxSegments bounds the size of a single path; further segments are
	// dropped.
	MaxSegments int
}

// NewPathExtractor creates a new path extractor bound to gs
func NewPathExtractor(gs *GraphicsState) *PathExtractor {
	return &PathExtractor{gs: gs, MaxSegments: 100000}
}

func (pe *PathExtractor) add(seg PathSegment) {
	if pe.MaxSegments > 0 && len(pe.path.Segments) >= pe.MaxSegments {
		return
	}
	pe.path.Segments = append(pe.path.Segments, seg)
}

func (pe *PathExtractor) toPage(x, y float64) model.Point {
	return pe.gs.CTM.Transform(model.Point{X: x, Y: y})
}

// MoveTo handles the m operator
func (pe *PathExtractor) MoveTo(x, y float64) {
	pe.add(PathSegment{Type: PathMoveTo, Points: []model.Point{pe.toPage(x, y)}})
	pe.path.current = model.Point{X: x, Y: y}
	pe.path.subpathStart = pe.path.current
	pe.path.hasCurrent = true
}

// LineTo handles the l operator
func (pe *PathExtractor) LineTo(x, y float64) {
	if !pe.path.hasCurrent {
		pe.MoveTo(x, y)
		return
	}
	pe.add(PathSegment{Type: PathLineTo, Points: []model.Point{pe.toPage(x, y)}})
	pe.path.current = model.Point{X: x, Y: y}
}

// CurveTo handles the c operator
func (pe *PathExtractor) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	if !pe.path.hasCurrent {
		pe.MoveTo(x1, y1)
	}
	pe.add(PathSegment{
		Type:   PathCurveTo,
		Points: []model.Point{pe.toPage(x1, y1), pe.toPage(x2, y2), pe.toPage(x3, y3)},
	})
	pe.path.current = model.Point{X: x3, Y: y3}
}

// CurveToV handles the v operator (first control point = current point)
func (pe *PathExtractor) CurveToV(x2, y2, x3, y3 float64) {
	if !pe.path.hasCurrent {
		return
	}
	pe.CurveTo(pe.path.current.X, pe.path.current.Y, x2, y2, x3, y3)
}

// CurveToY handles the y operator (second control point = end point)
func (pe *PathExtractor) CurveToY(x1, y1, x3, y3 float64) {
	if !pe.path.hasCurrent {
		return
	}
	pe.CurveTo(x1, y1, x3, y3, x3, y3)
}

// ClosePath handles the h operator
func (pe *PathExtractor) ClosePath() {
	if !pe.path.hasCurrent {
		return
	}
	pe.add(PathSegment{Type: PathClosePath})
	pe.path.current = pe.path.subpathStart
}

// Rectangle handles the re operator
func (pe *PathExtractor) Rectangle(x, y, width, height float64) {
	pe.MoveTo(x, y)
	pe.LineTo(x+width, y)
	pe.LineTo(x+width, y+height)
	pe.LineTo(x, y+height)
	pe.ClosePath()
}

// EndPath discards the current path (n operator, and after every paint)
func (pe *PathExtractor) EndPath() {
	pe.path.Segments = pe.path.Segments[:0]
	pe.path.hasCurrent = false
}

// Empty reports whether no path is under construction
func (pe *PathExtractor) Empty() bool {
	return len(pe.path.Segments) == 0
}

// Paint consumes the current path. Stroked paths yield their straight
// segments; filled paths yield the axis-aligned rectangles among their
// subpaths. The path is cleared afterwards.
func (pe *PathExtractor) Paint(stroke, fill bool) (lines []ExtractedLine, rects []ExtractedRectangle) {
	defer pe.EndPath()

	subpaths := splitSubpaths(pe.path.Segments)
	for _, sp := range subpaths {
		if fill {
			if box, ok := rectangleOf(sp); ok {
				rects = append(rects, ExtractedRectangle{BBox: box, Color: pe.gs.FillColor})
			}
		}
		if stroke {
			lines = append(lines, pe.strokeSegments(sp)...)
		}
	}
	return lines, rects
}

// strokeSegments returns the straight pieces of one subpath. Curves are
// skipped since they never form table rulings.
func (pe *PathExtractor) strokeSegments(sp []PathSegment) []ExtractedLine {
	var out []ExtractedLine
	width := pe.lineWidthInPage()
	var current, start model.Point
	for _, seg := range sp {
		switch seg.Type {
		case PathMoveTo:
			current = seg.Points[0]
			start = current
		case PathLineTo:
			end := seg.Points[0]
			if !pointsEqual(current, end, 0.01) {
				out = append(out, ExtractedLine{Start: current, End: end, Width: width, Color: pe.gs.StrokeColor})
			}
			current = end
		case PathCurveTo:
			current = seg.Points[2]
		case PathClosePath:
			if !pointsEqual(current, start, 0.01) {
				out = append(out, ExtractedLine{Start: current, End: start, Width: width, Color: pe.gs.StrokeColor})
			}
			current = start
		}
	}
	return out
}

// lineWidthInPage scales the current line width by the CTM
func (pe *PathExtractor) lineWidthInPage() float64 {
	w := pe.gs.LineWidth
	if w <= 0 {
		// Zero width means the thinnest line the device can draw.
		w = 0.1
	}
	return w * pe.gs.CTM.ScaleFactor()
}

func splitSubpaths(segs []PathSegment) [][]PathSegment {
	var out [][]PathSegment
	start := -1
	for i, s := range segs {
		if s.Type == PathMoveTo {
			if start >= 0 {
				out = append(out, segs[start:i])
			}
			start = i
		}
	}
	if start >= 0 {
		out = append(out, segs[start:])
	}
	return out
}

// rectangleOf reports whether a subpath is an axis-aligned rectangle in page
// space and returns its bounds.
func rectangleOf(sp []PathSegment) (model.BBox, bool) {
	if len(sp) < 4 || sp[0].Type != PathMoveTo {
		return model.BBox{}, false
	}
	corners := []model.Point{sp[0].Points[0]}
	for _, seg := range sp[1:] {
		switch seg.Type {
		case PathLineTo:
			corners = append(corners, seg.Points[0])
		case PathClosePath:
		default:
			return model.BBox{}, false
		}
	}
	if len(corners) == 5 && pointsEqual(corners[0], corners[4], 0.1) {
		corners = corners[:4]
	}
	if len(corners) != 4 {
		return model.BBox{}, false
	}
	for i := 0; i < 4; i++ {
		a, b := corners[i], corners[(i+1)%4]
		if math.Abs(a.X-b.X) > 0.1 && math.Abs(a.Y-b.Y) > 0.1 {
			return model.BBox{}, false
		}
	}
	box := model.NewBBoxFromPoints(corners[0], corners[2])
	box = box.Union(model.NewBBoxFromPoints(corners[1], corners[3]))
	return box, true
}

// pointsEqual checks if two points are approximately equal
func pointsEqual(a, b model.Point, tolerance float64) bool {
	return math.Abs(a.X-b.X) < tolerance && math.Abs(a.Y-b.Y) < tolerance
}
