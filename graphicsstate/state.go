package graphicsstate

import (
	"errors"
	"math"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

// MaxStackDepth bounds q nesting. Deeper saves are ignored and reported by
// Save so that a hostile stream cannot grow the stack without limit.
const MaxStackDepth = 256

var (
	// ErrStackUnderflow is returned by Restore when there is no saved state
	ErrStackUnderflow = errors.New("graphics state stack underflow")

	// ErrStackOverflow is returned by Save when MaxStackDepth is reached
	ErrStackOverflow = errors.New("graphics state stack overflow")
)

// GraphicsState represents the PDF graphics state.
//
// CTM maps user space into normalized page space (top-left origin, y down);
// the decoder seeds it with the page normalization matrix.
type GraphicsState struct {
	CTM model.Matrix

	Text TextState

	LineWidth   float64
	StrokeColor model.Color
	FillColor   model.Color

	stack []snapshot
}

type snapshot struct {
	ctm         model.Matrix
	text        TextState
	lineWidth   float64
	strokeColor model.Color
	fillColor   model.Color
}

// TextState represents text-specific state
type TextState struct {
	FontName string
	FontSize float64

	CharSpacing       float64
	WordSpacing       float64
	HorizontalScaling float64 // percentage
	Leading           float64
	RenderingMode     int
	Rise              float64

	TextMatrix     model.Matrix
	TextLineMatrix model.Matrix
}

// NewGraphicsState creates a graphics state whose CTM is base
func NewGraphicsState(base model.Matrix) *GraphicsState {
	return &GraphicsState{
		CTM:         base,
		LineWidth:   1.0,
		StrokeColor: model.Black,
		FillColor:   model.Black,
		Text: TextState{
			HorizontalScaling: 100.0,
			TextMatrix:        model.Identity(),
			TextLineMatrix:    model.Identity(),
		},
	}
}

// Depth returns the number of saved states
func (gs *GraphicsState) Depth() int {
	return len(gs.stack)
}

// Save pushes the current graphics state onto the stack (q operator)
func (gs *GraphicsState) Save() error {
	if len(gs.stack) >= MaxStackDepth {
		return ErrStackOverflow
	}
	gs.stack = append(gs.stack, snapshot{
		ctm:         gs.CTM,
		text:        gs.Text,
		lineWidth:   gs.LineWidth,
		strokeColor: gs.StrokeColor,
		fillColor:   gs.FillColor,
	})
	return nil
}

// Restore pops a graphics state from the stack (Q operator)
func (gs *GraphicsState) Restore() error {
	if len(gs.stack) == 0 {
		return ErrStackUnderflow
	}
	saved := gs.stack[len(gs.stack)-1]
	gs.stack = gs.stack[:len(gs.stack)-1]

	gs.CTM = saved.ctm
	gs.Text = saved.text
	gs.LineWidth = saved.lineWidth
	gs.StrokeColor = saved.strokeColor
	gs.FillColor = saved.fillColor
	return nil
}

// Transform concatenates m onto the CTM (cm operator)
func (gs *GraphicsState) Transform(m model.Matrix) {
	gs.CTM = m.Multiply(gs.CTM)
}

// SetFont sets the current font (Tf operator)
func (gs *GraphicsState) SetFont(name string, size float64) {
	gs.Text.FontName = name
	gs.Text.FontSize = size
}

// BeginText resets the text matrices (BT operator)
func (gs *GraphicsState) BeginText() {
	gs.Text.TextMatrix = model.Identity()
	gs.Text.TextLineMatrix = model.Identity()
}

// SetTextMatrix sets the text matrix (Tm operator)
func (gs *GraphicsState) SetTextMatrix(m model.Matrix) {
	gs.Text.TextMatrix = m
	gs.Text.TextLineMatrix = m
}

// TranslateText moves to the start of the next line offset by (tx, ty)
// (Td operator)
func (gs *GraphicsState) TranslateText(tx, ty float64) {
	gs.Text.TextLineMatrix = model.Translate(tx, ty).Multiply(gs.Text.TextLineMatrix)
	gs.Text.TextMatrix = gs.Text.TextLineMatrix
}

// TranslateTextSetLeading translates text and sets leading (TD operator)
func (gs *GraphicsState) TranslateTextSetLeading(tx, ty float64) {
	gs.Text.Leading = -ty
	gs.TranslateText(tx, ty)
}

// NextLine moves to next line (T* operator)
func (gs *GraphicsState) NextLine() {
	gs.TranslateText(0, -gs.Text.Leading)
}

// Advance moves the text matrix by a displacement in unscaled text space
// units (glyph widths in thousandths of an em already multiplied out).
func (gs *GraphicsState) Advance(tx float64) {
	gs.Text.TextMatrix = model.Translate(tx, 0).Multiply(gs.Text.TextMatrix)
}

// GlyphAdvance returns the horizontal displacement for one glyph
// given its width in glyph space (1/1000 em) and whether it is a single
// byte space (code 32), which receives word spacing.
func (gs *GraphicsState) GlyphAdvance(w0 float64, isSpace bool) float64 {
	tx := w0/1000*gs.Text.FontSize + gs.Text.CharSpacing
	if isSpace {
		tx += gs.Text.WordSpacing
	}
	return tx * gs.Text.HorizontalScaling / 100
}

// KernAdvance returns the displacement for a TJ number adjustment
func (gs *GraphicsState) KernAdvance(adj float64) float64 {
	return -adj / 1000 * gs.Text.FontSize * gs.Text.HorizontalScaling / 100
}

// RenderingMatrix returns the text rendering matrix
// Trm = [Tfs×Th 0 0 Tfs 0 Trise] × Tm × CTM
func (gs *GraphicsState) RenderingMatrix() model.Matrix {
	th := gs.Text.HorizontalScaling / 100
	params := model.Matrix{gs.Text.FontSize * th, 0, 0, gs.Text.FontSize, 0, gs.Text.Rise}
	return params.Multiply(gs.Text.TextMatrix).Multiply(gs.CTM)
}

// EffectiveFontSize returns the rendered font size in page space
func (gs *GraphicsState) EffectiveFontSize() float64 {
	trm := gs.RenderingMatrix()
	return math.Abs(trm.ScaleFactor())
}

// TextOrigin returns the current text position in page space
func (gs *GraphicsState) TextOrigin() model.Point {
	return gs.Text.TextMatrix.Multiply(gs.CTM).Transform(model.Point{X: 0, Y: gs.Text.Rise})
}

// Invisible reports whether text is drawn in rendering mode 3 (neither
// filled nor stroked) or 7 (clip only)
func (gs *GraphicsState) Invisible() bool {
	return gs.Text.RenderingMode == 3 || gs.Text.RenderingMode == 7
}
