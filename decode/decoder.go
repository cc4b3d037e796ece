package decode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"

	"github.com/rezaldwntr/pdf-backend-api/contentstream"
	"github.com/rezaldwntr/pdf-backend-api/font"
	"github.com/rezaldwntr/pdf-backend-api/graphicsstate"
	"github.com/rezaldwntr/pdf-backend-api/model"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

// Page is the decoded form of one page
type Page struct {
	Number     int
	Width      float64
	Height     float64
	Rotation   int
	Primitives []model.Primitive
}

// Decoder interprets page content streams. A Decoder holds no per-page
// state and may be shared by concurrent goroutines.
type Decoder struct {
	cfg    tuning.DecodeConfig
	logger *slog.Logger
}

// New creates a decoder. A nil logger uses slog.Default().
func New(cfg tuning.DecodeConfig, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{cfg: cfg, logger: logger}
}

// Decode interprets raw and returns its primitives in painter's order.
// Any failure, including a panic in the interpreter, is reported as a
// *DecodeError for the page.
func (d *Decoder) Decode(ctx context.Context, raw *RawPage) (page *Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic decoding page", "page", raw.Number, "panic", r, "stack", string(debug.Stack()))
			page, err = nil, &DecodeError{Page: raw.Number, Offset: -1, Err: fmt.Errorf("%w: %v", ErrPanic, r)}
		}
	}()

	if d.cfg.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.PageTimeout)
		defer cancel()
	}

	w, h := raw.Size()
	in := newInterpreter(ctx, d.cfg, raw)
	if err := in.run(raw.Contents, raw.Resources, 0); err != nil {
		return nil, err
	}
	in.text.flush()

	prims := in.prims
	sort.SliceStable(prims, func(i, j int) bool { return prims[i].Seq() < prims[j].Seq() })

	d.logger.Debug("decoded page", "page", raw.Number, "operations", in.ops, "primitives", len(prims))
	return &Page{
		Number:     raw.Number,
		Width:      w,
		Height:     h,
		Rotation:   raw.NormalizedRotation(),
		Primitives: prims,
	}, nil
}

// interpreter holds the state for one page
type interpreter struct {
	ctx  context.Context
	cfg  tuning.DecodeConfig
	page int

	gs    *graphicsstate.GraphicsState
	paths *graphicsstate.PathExtractor
	fonts map[fontKey]*font.Font
	font  *font.Font
	text  *spanBuilder

	prims []model.Primitive
	seq   int
	ops   int
	clip  bool
}

type fontKey struct {
	res  *Resources
	name string
}

func newInterpreter(ctx context.Context, cfg tuning.DecodeConfig, raw *RawPage) *interpreter {
	in := &interpreter{
		ctx:   ctx,
		cfg:   cfg,
		page:  raw.Number,
		gs:    graphicsstate.NewGraphicsState(raw.Normalization()),
		fonts: make(map[fontKey]*font.Font),
	}
	in.paths = graphicsstate.NewPathExtractor(in.gs)
	in.text = newSpanBuilder(cfg, func(s *model.TextSpan) { in.prims = append(in.prims, s) })
	return in
}

func (in *interpreter) nextSeq() int {
	in.seq++
	return in.seq
}

// run interprets one content stream with the given resources
func (in *interpreter) run(content []byte, res *Resources, depth int) error {
	remaining := in.cfg.MaxOperations - in.ops
	if in.cfg.MaxOperations > 0 && remaining <= 0 {
		return &DecodeError{Page: in.page, Offset: 0, Err: contentstream.ErrTooManyOperations}
	}

	parser := contentstream.NewParser(content)
	if in.cfg.MaxOperations > 0 {
		parser.SetMaxOperations(remaining)
	}
	ops, err := parser.Parse()
	if err != nil {
		var se *contentstream.SyntaxError
		if errors.As(err, &se) {
			return &DecodeError{Page: in.page, Offset: se.Offset, Operator: se.Operator, Err: se.Err}
		}
		return &DecodeError{Page: in.page, Offset: -1, Err: err}
	}

	for _, op := range ops {
		in.ops++
		if in.ops%256 == 0 {
			if err := in.ctx.Err(); err != nil {
				return &DecodeError{Page: in.page, Offset: op.Offset, Operator: op.Operator, Err: fmt.Errorf("%w: %v", ErrPageTimeout, err)}
			}
		}
		if err := in.execute(op, res, depth); err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				return err
			}
			return &DecodeError{Page: in.page, Offset: op.Offset, Operator: op.Operator, Err: err}
		}
	}
	return nil
}

func (in *interpreter) execute(op contentstream.Operation, res *Resources, depth int) error {
	args := op.Operands
	nums, numeric := contentstream.Numbers(args)

	switch op.Operator {
	// Graphics state
	case "q":
		_ = in.gs.Save()
	case "Q":
		// Unbalanced Q is common in producer output and harmless here.
		_ = in.gs.Restore()
	case "cm":
		if numeric && len(nums) == 6 {
			in.gs.Transform(matrixOf(nums))
		}
	case "w":
		if numeric && len(nums) == 1 {
			in.gs.LineWidth = nums[0]
		}
	case "gs":
		if name, ok := nameArg(args, 0); ok && res != nil {
			if eg, ok := res.ExtGState[name]; ok && eg.LineWidth > 0 {
				in.gs.LineWidth = eg.LineWidth
			}
		}

	// Colour
	case "g", "rg", "k":
		if numeric {
			in.gs.FillColor = graphicsstate.ColorFromComponents(nums)
		}
	case "G", "RG", "K":
		if numeric {
			in.gs.StrokeColor = graphicsstate.ColorFromComponents(nums)
		}
	case "sc", "scn":
		if c, ok := leadingNumbers(args); ok {
			in.gs.FillColor = graphicsstate.ColorFromComponents(c)
		}
	case "SC", "SCN":
		if c, ok := leadingNumbers(args); ok {
			in.gs.StrokeColor = graphicsstate.ColorFromComponents(c)
		}
	case "cs":
		in.gs.FillColor = model.Black
	case "CS":
		in.gs.StrokeColor = model.Black

	// Path construction
	case "m":
		if numeric && len(nums) == 2 {
			in.paths.MoveTo(nums[0], nums[1])
		}
	case "l":
		if numeric && len(nums) == 2 {
			in.paths.LineTo(nums[0], nums[1])
		}
	case "c":
		if numeric && len(nums) == 6 {
			in.paths.CurveTo(nums[0], nums[1], nums[2], nums[3], nums[4], nums[5])
		}
	case "v":
		if numeric && len(nums) == 4 {
			in.paths.CurveToV(nums[0], nums[1], nums[2], nums[3])
		}
	case "y":
		if numeric && len(nums) == 4 {
			in.paths.CurveToY(nums[0], nums[1], nums[2], nums[3])
		}
	case "h":
		in.paths.ClosePath()
	case "re":
		if numeric && len(nums) == 4 {
			in.paths.Rectangle(nums[0], nums[1], nums[2], nums[3])
		}

	// Path painting
	case "S":
		in.paint(true, false)
	case "s":
		in.paths.ClosePath()
		in.paint(true, false)
	case "f", "F", "f*":
		in.paint(false, true)
	case "B", "B*":
		in.paint(true, true)
	case "b", "b*":
		in.paths.ClosePath()
		in.paint(true, true)
	case "n":
		in.paths.EndPath()
		in.clip = false
	case "W", "W*":
		in.clip = true

	// Text objects and state
	case "BT":
		in.gs.BeginText()
	case "ET":
	case "Tf":
		if name, ok := nameArg(args, 0); ok && len(args) == 2 {
			size, _ := contentstream.Number(args[1])
			in.gs.SetFont(name, size)
			in.font = in.lookupFont(res, name)
		}
	case "Tc":
		if numeric && len(nums) == 1 {
			in.gs.Text.CharSpacing = nums[0]
		}
	case "Tw":
		if numeric && len(nums) == 1 {
			in.gs.Text.WordSpacing = nums[0]
		}
	case "Tz":
		if numeric && len(nums) == 1 {
			in.gs.Text.HorizontalScaling = nums[0]
		}
	case "TL":
		if numeric && len(nums) == 1 {
			in.gs.Text.Leading = nums[0]
		}
	case "Tr":
		if numeric && len(nums) == 1 {
			in.gs.Text.RenderingMode = int(nums[0])
		}
	case "Ts":
		if numeric && len(nums) == 1 {
			in.gs.Text.Rise = nums[0]
		}

	// Text positioning
	case "Td":
		if numeric && len(nums) == 2 {
			in.gs.TranslateText(nums[0], nums[1])
		}
	case "TD":
		if numeric && len(nums) == 2 {
			in.gs.TranslateTextSetLeading(nums[0], nums[1])
		}
	case "Tm":
		if numeric && len(nums) == 6 {
			in.gs.SetTextMatrix(matrixOf(nums))
		}
	case "T*":
		in.gs.NextLine()

	// Text showing
	case "Tj":
		if s, ok := stringArg(args, 0); ok {
			in.show(s)
		}
	case "'":
		in.gs.NextLine()
		if s, ok := stringArg(args, 0); ok {
			in.show(s)
		}
	case "\"":
		if len(args) == 3 {
			if aw, ok := contentstream.Number(args[0]); ok {
				in.gs.Text.WordSpacing = aw
			}
			if ac, ok := contentstream.Number(args[1]); ok {
				in.gs.Text.CharSpacing = ac
			}
			in.gs.NextLine()
			if s, ok := stringArg(args, 2); ok {
				in.show(s)
			}
		}
	case "TJ":
		if len(args) == 1 {
			if arr, ok := args[0].(contentstream.Array); ok {
				in.showArray(arr)
			}
		}

	// External objects
	case "Do":
		if name, ok := nameArg(args, 0); ok {
			return in.doXObject(res, name, depth)
		}
	case "BI":
		if len(args) == 1 {
			if ii, ok := args[0].(*contentstream.InlineImage); ok {
				in.drawImage(inlineImage(ii))
			}
		}
	}
	return nil
}

func (in *interpreter) lookupFont(res *Resources, name string) *font.Font {
	key := fontKey{res: res, name: name}
	if f, ok := in.fonts[key]; ok {
		return f
	}
	spec, ok := font.Spec{}, false
	if res != nil {
		spec, ok = res.Fonts[name]
	}
	if !ok {
		spec = font.Spec{Subtype: "Type1", BaseFont: "Helvetica", Encoding: "WinAnsiEncoding"}
	}
	f := font.New(name, spec)
	in.fonts[key] = f
	return f
}

func (in *interpreter) doXObject(res *Resources, name string, depth int) error {
	if res == nil {
		return nil
	}
	xo, ok := res.XObjects[name]
	if !ok || xo == nil {
		return nil
	}
	switch {
	case xo.Image != nil:
		in.drawImage(xo.Image)
	case xo.Form != nil:
		if in.cfg.MaxFormDepth > 0 && depth >= in.cfg.MaxFormDepth {
			return nil
		}
		formRes := xo.Form.Resources
		if formRes == nil {
			formRes = res
		}
		if err := in.gs.Save(); err != nil {
			return nil
		}
		in.gs.Transform(xo.Form.Matrix)
		err := in.run(xo.Form.Contents, formRes, depth+1)
		_ = in.gs.Restore()
		return err
	}
	return nil
}

func matrixOf(n []float64) model.Matrix {
	return model.Matrix{n[0], n[1], n[2], n[3], n[4], n[5]}
}

func nameArg(args []contentstream.Object, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	return contentstream.NameValue(args[i])
}

func stringArg(args []contentstream.Object, i int) ([]byte, bool) {
	if i >= len(args) {
		return nil, false
	}
	s, ok := args[i].(contentstream.String)
	return []byte(s), ok
}

// leadingNumbers returns the numeric operands of sc/scn, ignoring a
// trailing pattern name.
func leadingNumbers(args []contentstream.Object) ([]float64, bool) {
	var out []float64
	for _, a := range args {
		v, ok := contentstream.Number(a)
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out, len(out) > 0
}
