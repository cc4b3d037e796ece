package decode

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/rezaldwntr/pdf-backend-api/contentstream"
	"github.com/rezaldwntr/pdf-backend-api/model"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

// Glyph box in text space, as a fraction of the em
const (
	glyphDescent = -0.2
	glyphAscent  = 0.8
)

// fragment is one visible glyph in page space
type fragment struct {
	text     string
	box      model.BBox
	baseline float64
	size     float64
	family   string
	bold     bool
	italic   bool
	color    model.Color
	upright  bool // baseline runs left to right along +x
}

func (in *interpreter) show(data []byte) {
	f := in.font
	if f == nil {
		f = in.lookupFont(nil, in.gs.Text.FontName)
		in.font = f
	}
	visible := !in.gs.Invisible()
	for _, g := range f.Decode(data) {
		if visible && strings.TrimSpace(g.Text) != "" {
			trm := in.gs.RenderingMatrix()
			origin := trm.Transform(model.Point{})
			in.text.add(fragment{
				text:     g.Text,
				box:      trm.TransformRect(0, glyphDescent, g.Width/1000, glyphAscent),
				baseline: origin.Y,
				size:     in.gs.EffectiveFontSize(),
				family:   f.Family,
				bold:     f.Bold || in.gs.Text.RenderingMode == 2,
				italic:   f.Italic,
				color:    in.gs.FillColor,
				upright:  trm[0] > 0 && math.Abs(trm[1]) < 1e-6*math.Abs(trm[0]),
			}, in.nextSeq)
		}
		in.gs.Advance(in.gs.GlyphAdvance(g.Width, g.Space))
	}
}

func (in *interpreter) showArray(arr contentstream.Array) {
	for _, item := range arr {
		switch v := item.(type) {
		case contentstream.String:
			in.show([]byte(v))
		case contentstream.Int, contentstream.Real:
			adj, _ := contentstream.Number(v)
			in.gs.Advance(in.gs.KernAdvance(adj))
		}
	}
}

// spanBuilder merges consecutive fragments into TextSpans
type spanBuilder struct {
	cfg  tuning.DecodeConfig
	emit func(*model.TextSpan)

	cur     *model.TextSpan
	sb      strings.Builder
	upright bool
}

func newSpanBuilder(cfg tuning.DecodeConfig, emit func(*model.TextSpan)) *spanBuilder {
	return &spanBuilder{cfg: cfg, emit: emit}
}

// add appends fr to the open span or starts a new one. seq is only called
// when a new span starts.
func (b *spanBuilder) add(fr fragment, seq func() int) {
	if b.cur != nil {
		if join, space := b.joinable(fr); join {
			if space && !strings.HasSuffix(b.sb.String(), " ") {
				b.sb.WriteByte(' ')
			}
			b.sb.WriteString(fr.text)
			b.cur.BBox = b.cur.BBox.Union(fr.box)
			return
		}
		b.flush()
	}
	b.cur = &model.TextSpan{
		BBox:       fr.box,
		FontFamily: fr.family,
		FontSize:   fr.size,
		Bold:       fr.bold,
		Italic:     fr.italic,
		Baseline:   fr.baseline,
		Color:      fr.color,
		Order:      seq(),
	}
	b.upright = fr.upright
	b.sb.Reset()
	b.sb.WriteString(fr.text)
}

// joinable reports whether fr continues the open span and whether a space
// separates them.
func (b *spanBuilder) joinable(fr fragment) (join, space bool) {
	c := b.cur
	if b.upright != fr.upright {
		return false, false
	}
	if c.FontFamily != fr.family || c.Bold != fr.bold || c.Italic != fr.italic || c.Color != fr.color {
		return false, false
	}
	if math.Abs(c.FontSize-fr.size) > 0.05*math.Max(c.FontSize, fr.size) {
		return false, false
	}
	if !b.upright {
		// Rotated text: join glyphs whose boxes touch.
		reach := c.BBox.Expand(b.cfg.MergeGapRatio * c.FontSize)
		return reach.Intersects(fr.box), false
	}
	if math.Abs(c.Baseline-fr.baseline) > b.cfg.BaselineTolerance {
		return false, false
	}
	gap := fr.box.X0 - c.BBox.X1
	if gap < -0.5*c.FontSize || gap >= b.cfg.MergeGapRatio*c.FontSize {
		return false, false
	}
	return true, gap > b.cfg.SpaceGapRatio*c.FontSize
}

// flush emits the open span, if any
func (b *spanBuilder) flush() {
	if b.cur == nil {
		return
	}
	b.cur.Text = norm.NFC.String(strings.TrimSpace(b.sb.String()))
	if b.cur.Text != "" {
		b.emit(b.cur)
	}
	b.cur = nil
}
