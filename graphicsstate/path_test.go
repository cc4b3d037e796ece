package graphicsstate

import (
	"math"
	"testing"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

func TestPaintStrokedLine(t *testing.T) {
	gs := NewGraphicsState(flip)
	gs.LineWidth = 2
	pe := NewPathExtractor(gs)

	pe.MoveTo(72, 700)
	pe.LineTo(300, 700)
	lines, rects := pe.Paint(true, false)

	if len(rects) != 0 {
		t.Errorf("rects = %d, want 0", len(rects))
	}
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	l := lines[0]
	if l.Start != (model.Point{X: 72, Y: 92}) || l.End != (model.Point{X: 300, Y: 92}) {
		t.Errorf("line = %v -> %v, want {72 92} -> {300 92}", l.Start, l.End)
	}
	if math.Abs(l.Width-2) > 1e-9 {
		t.Errorf("Width = %v, want 2", l.Width)
	}
	if !pe.Empty() {
		t.Error("path not cleared after Paint")
	}
}

func TestPaintFilledRectangle(t *testing.T) {
	gs := NewGraphicsState(flip)
	gs.FillColor = model.Color{R: 200, G: 200, B: 200}
	pe := NewPathExtractor(gs)

	pe.Rectangle(100, 600, 50, 20)
	lines, rects := pe.Paint(false, true)

	if len(lines) != 0 {
		t.Errorf("lines = %d, want 0", len(lines))
	}
	if len(rects) != 1 {
		t.Fatalf("rects = %d, want 1", len(rects))
	}
	want := model.BBox{X0: 100, Y0: 172, X1: 150, Y1: 192}
	if rects[0].BBox != want {
		t.Errorf("BBox = %+v, want %+v", rects[0].BBox, want)
	}
	if rects[0].Color != gs.FillColor {
		t.Errorf("Color = %v, want %v", rects[0].Color, gs.FillColor)
	}
}

func TestPaintStrokedRectangleYieldsFourEdges(t *testing.T) {
	pe := NewPathExtractor(NewGraphicsState(model.Identity()))
	pe.Rectangle(0, 0, 10, 10)
	lines, _ := pe.Paint(true, false)
	if len(lines) != 4 {
		t.Errorf("lines = %d, want 4", len(lines))
	}
}

func TestPaintMultipleSubpaths(t *testing.T) {
	pe := NewPathExtractor(NewGraphicsState(model.Identity()))
	pe.Rectangle(0, 0, 10, 10)
	pe.Rectangle(20, 0, 10, 10)
	pe.MoveTo(0, 50)
	pe.CurveTo(10, 60, 20, 60, 30, 50)
	_, rects := pe.Paint(false, true)
	if len(rects) != 2 {
		t.Errorf("rects = %d, want 2", len(rects))
	}
}

func TestPaintSkipsCurves(t *testing.T) {
	pe := NewPathExtractor(NewGraphicsState(model.Identity()))
	pe.MoveTo(0, 0)
	pe.CurveTo(10, 10, 20, 10, 30, 0)
	pe.LineTo(40, 0)
	lines, _ := pe.Paint(true, false)
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if lines[0].Start != (model.Point{X: 30, Y: 0}) {
		t.Errorf("Start = %v, want {30 0}", lines[0].Start)
	}
}

func TestRotatedRectangleIsNotAxisAligned(t *testing.T) {
	pe := NewPathExtractor(NewGraphicsState(model.Identity()))
	pe.MoveTo(0, 0)
	pe.LineTo(10, 10)
	pe.LineTo(0, 20)
	pe.LineTo(-10, 10)
	pe.ClosePath()
	_, rects := pe.Paint(false, true)
	if len(rects) != 0 {
		t.Errorf("rects = %d, want 0 for a diamond", len(rects))
	}
}

func TestMaxSegments(t *testing.T) {
	pe := NewPathExtractor(NewGraphicsState(model.Identity()))
	pe.MaxSegments = 3
	for i := 0; i < 10; i++ {
		pe.LineTo(float64(i), 0)
	}
	lines, _ := pe.Paint(true, false)
	if len(lines) != 2 {
		t.Errorf("lines = %d, want 2", len(lines))
	}
}
