package layout

import (
	"log/slog"

	"github.com/rezaldwntr/pdf-backend-api/model"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

// Input is the flowing content of one page: the spans left over after
// table detection and the page's images.
type Input struct {
	Page   int
	Spans  []*model.TextSpan
	Images []*model.RasterImage
	// BodySize overrides the body font size derived from Spans when set.
	BodySize float64
}

// Result is the reflowed page
type Result struct {
	// Paragraphs in reading order. Position is left for the caller.
	Paragraphs []*model.Paragraph
	Columns    *ColumnLayout
	BodySize   float64
}

// Engine turns positioned spans into paragraphs
type Engine struct {
	cfg     tuning.LayoutConfig
	columns *ColumnDetector
	logger  *slog.Logger
}

// New creates an engine with the given thresholds. A nil logger uses
// slog.Default().
func New(cfg tuning.LayoutConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, columns: NewColumnDetector(cfg), logger: logger}
}

// Reflow detects columns, lines and paragraphs, assigns heading and caption
// roles and returns the paragraphs in reading order.
func (e *Engine) Reflow(in Input) *Result {
	body := in.BodySize
	if body <= 0 {
		body = BodySize(in.Spans)
	}
	res := &Result{Columns: e.columns.Detect(in.Spans), BodySize: body}
	if len(in.Spans) == 0 {
		return res
	}

	// Step 1: split spans by band
	groups := make(map[int][]*model.TextSpan)
	for _, s := range in.Spans {
		col := res.Columns.Assign(s.BBox)
		groups[col] = append(groups[col], s)
	}

	// Step 2: lines and paragraphs per band, then roles
	var blocks []*block
	for col := Spanning; col < res.Columns.ColumnCount(); col++ {
		spans, ok := groups[col]
		if !ok {
			continue
		}
		lines := GroupLines(spans, e.cfg.LineOverlap)
		bs := e.groupParagraphs(lines, col)
		e.assignHeadings(bs, body)
		e.assignCaptions(bs, in.Images, body)
		blocks = append(blocks, bs...)
	}

	// Step 3: reading order
	for _, b := range orderBlocks(blocks) {
		band := res.Columns.Band(b.column)
		res.Paragraphs = append(res.Paragraphs, &model.Paragraph{
			Runs:      runs(b),
			BBox:      b.bbox,
			Role:      b.role,
			Level:     b.level,
			Alignment: e.alignment(b, band),
			Column:    b.column,
		})
	}

	e.logger.Debug("page reflowed",
		slog.Int("page", in.Page),
		slog.Int("columns", res.Columns.ColumnCount()),
		slog.Int("paragraphs", len(res.Paragraphs)),
		slog.Float64("body_size", body))
	return res
}
