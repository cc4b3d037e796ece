package graphicsstate

import (
	"errors"
	"math"
	"testing"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

// flip maps PDF user space on a 792pt tall page to top-left page space
var flip = model.Matrix{1, 0, 0, -1, 0, 792}

// TestNewGraphicsState tests initial state
func TestNewGraphicsState(t *testing.T) {
	gs := NewGraphicsState(model.Identity())

	if gs.LineWidth != 1.0 {
		t.Errorf("expected line width 1.0, got %f", gs.LineWidth)
	}
	if gs.Text.HorizontalScaling != 100.0 {
		t.Errorf("expected horizontal scaling 100.0, got %f", gs.Text.HorizontalScaling)
	}
	if gs.FillColor != model.Black {
		t.Errorf("expected black fill, got %v", gs.FillColor)
	}
}

// TestSaveRestore tests q/Q operators
func TestSaveRestore(t *testing.T) {
	gs := NewGraphicsState(model.Identity())
	gs.LineWidth = 2.5
	gs.SetFont("Helvetica", 14)

	if err := gs.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	gs.LineWidth = 5.0
	gs.SetFont("Times", 18)
	gs.Transform(model.Translate(10, 10))

	if err := gs.Restore(); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if gs.LineWidth != 2.5 {
		t.Errorf("expected restored line width 2.5, got %f", gs.LineWidth)
	}
	if gs.Text.FontName != "Helvetica" || gs.Text.FontSize != 14 {
		t.Errorf("expected restored font Helvetica 14, got %s %f", gs.Text.FontName, gs.Text.FontSize)
	}
	if gs.CTM != model.Identity() {
		t.Errorf("expected identity CTM, got %v", gs.CTM)
	}
}

func TestRestoreUnderflow(t *testing.T) {
	gs := NewGraphicsState(model.Identity())
	if err := gs.Restore(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Restore() = %v, want ErrStackUnderflow", err)
	}
}

func TestSaveOverflow(t *testing.T) {
	gs := NewGraphicsState(model.Identity())
	for i := 0; i < MaxStackDepth; i++ {
		if err := gs.Save(); err != nil {
			t.Fatalf("Save() #%d = %v", i, err)
		}
	}
	if err := gs.Save(); !errors.Is(err, ErrStackOverflow) {
		t.Errorf("Save() = %v, want ErrStackOverflow", err)
	}
}

// TestTransformConcatenation checks that cm prepends to the CTM
func TestTransformConcatenation(t *testing.T) {
	gs := NewGraphicsState(flip)
	gs.Transform(model.Translate(100, 100))
	gs.Transform(model.Scale(2, 2))

	// (1,1) scaled to (2,2), moved to (102,102), flipped to (102, 690)
	got := gs.CTM.Transform(model.Point{X: 1, Y: 1})
	if math.Abs(got.X-102) > 1e-9 || math.Abs(got.Y-690) > 1e-9 {
		t.Errorf("CTM.Transform() = %v, want {102 690}", got)
	}
}

func TestTextPositioning(t *testing.T) {
	gs := NewGraphicsState(flip)
	gs.BeginText()
	gs.SetFont("F1", 12)
	gs.TranslateText(72, 700)

	origin := gs.TextOrigin()
	if math.Abs(origin.X-72) > 1e-9 || math.Abs(origin.Y-92) > 1e-9 {
		t.Errorf("TextOrigin() = %v, want {72 92}", origin)
	}

	gs.TranslateTextSetLeading(0, -14)
	if gs.Text.Leading != 14 {
		t.Errorf("Leading = %v, want 14", gs.Text.Leading)
	}
	gs.NextLine()
	origin = gs.TextOrigin()
	if math.Abs(origin.Y-120) > 1e-9 {
		t.Errorf("TextOrigin().Y after two lines = %v, want 120", origin.Y)
	}
}

func TestGlyphAdvance(t *testing.T) {
	gs := NewGraphicsState(model.Identity())
	gs.SetFont("F1", 10)
	gs.Text.CharSpacing = 1
	gs.Text.WordSpacing = 2

	if got := gs.GlyphAdvance(500, false); math.Abs(got-6) > 1e-9 {
		t.Errorf("GlyphAdvance(500) = %v, want 6", got)
	}
	if got := gs.GlyphAdvance(250, true); math.Abs(got-5.5) > 1e-9 {
		t.Errorf("GlyphAdvance(space) = %v, want 5.5", got)
	}

	gs.Text.HorizontalScaling = 50
	if got := gs.KernAdvance(-1000); math.Abs(got-5) > 1e-9 {
		t.Errorf("KernAdvance(-1000) = %v, want 5", got)
	}
}

func TestEffectiveFontSize(t *testing.T) {
	gs := NewGraphicsState(flip)
	gs.SetFont("F1", 1)
	gs.SetTextMatrix(model.Matrix{14, 0, 0, 14, 0, 0})
	if got := gs.EffectiveFontSize(); math.Abs(got-14) > 1e-9 {
		t.Errorf("EffectiveFontSize() = %v, want 14", got)
	}
}

func TestColorFromComponents(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want model.Color
	}{
		{"gray", []float64{0.5}, model.Color{R: 128, G: 128, B: 128}},
		{"rgb", []float64{1, 0, 0}, model.Color{R: 255}},
		{"cmyk black", []float64{0, 0, 0, 1}, model.Black},
		{"cmyk cyan", []float64{1, 0, 0, 0}, model.Color{G: 255, B: 255}},
		{"clamped", []float64{2, -1, 0.5}, model.Color{R: 255, G: 0, B: 128}},
		{"unknown", []float64{1, 1}, model.Black},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ColorFromComponents(tt.in); got != tt.want {
				t.Errorf("ColorFromComponents(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
