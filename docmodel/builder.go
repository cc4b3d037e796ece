package docmodel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rezaldwntr/pdf-backend-api/decode"
	"github.com/rezaldwntr/pdf-backend-api/header"
	"github.com/rezaldwntr/pdf-backend-api/layout"
	"github.com/rezaldwntr/pdf-backend-api/model"
	"github.com/rezaldwntr/pdf-backend-api/tables"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

// Options configures a Builder
type Options struct {
	Tuning tuning.Config
	// Workers bounds concurrent page processing. Zero uses
	// Tuning.Assembly.Workers, then runtime.NumCPU().
	Workers int
	// Pages restricts the build to these 1-based page numbers. Empty means
	// every page.
	Pages  []int
	Logger *slog.Logger
}

// Builder turns a decode.Source into a Document. A Builder holds no
// per-document state; Build may run concurrently for different sources.
type Builder struct {
	opts    Options
	logger  *slog.Logger
	decoder *decode.Decoder
	tables  *tables.Detector
	headers *header.Classifier
	layout  *layout.Engine
}

// New creates a builder
func New(opts Options) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = opts.Tuning.Assembly.Workers
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Builder{
		opts:    opts,
		logger:  logger,
		decoder: decode.New(opts.Tuning.Decode, logger),
		tables:  tables.New(opts.Tuning.Tables, logger),
		headers: header.New(opts.Tuning.Header),
		layout:  layout.New(opts.Tuning.Layout, logger),
	}
}

// pageResult is the outcome of processing one page
type pageResult struct {
	number   int
	page     *model.PageModel
	warnings []model.Warning
	err      error
}

// Build reads, decodes and assembles every selected page of src.
//
// Raw pages are read sequentially in this goroutine. The context is checked
// before each page; once it is done the remaining pages are skipped with a
// deadline warning and the document built so far is returned.
func (b *Builder) Build(ctx context.Context, src decode.Source) (*model.Document, error) {
	start := time.Now()
	numbers, err := b.selectPages(src.PageCount())
	if err != nil {
		return nil, err
	}

	doc := model.NewDocument()
	doc.Metadata = src.Metadata()
	if doc.Metadata.PageCount == 0 {
		doc.Metadata.PageCount = src.PageCount()
	}

	results := make([]*pageResult, len(numbers))
	g := new(errgroup.Group)
	g.SetLimit(b.opts.Workers)
	for i, n := range numbers {
		if ctx.Err() != nil {
			results[i] = &pageResult{number: n, err: ctx.Err()}
			continue
		}
		raw, err := src.Page(n)
		if err != nil {
			results[i] = &pageResult{number: n, err: err}
			continue
		}
		g.Go(func() error {
			results[i] = b.processPage(ctx, raw)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.err != nil {
			b.skip(doc, r)
			continue
		}
		doc.AddPage(r.page)
		doc.Warnings = append(doc.Warnings, r.warnings...)
	}

	if !hasContent(doc) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoContent, err)
		}
		return nil, ErrNoContent
	}

	b.fillPageSize(doc)
	assignPositions(doc)
	b.resolveContinuations(doc)

	b.logger.Info("document built",
		slog.Int("pages", len(doc.Pages)),
		slog.Int("skipped", len(doc.SkippedPages)),
		slog.Int("tables", len(doc.Tables)),
		slog.Int("warnings", len(doc.Warnings)),
		slog.Duration("elapsed", time.Since(start)))
	return doc, nil
}

// selectPages returns the sorted, de-duplicated page numbers to build
func (b *Builder) selectPages(count int) ([]int, error) {
	if len(b.opts.Pages) == 0 {
		numbers := make([]int, count)
		for i := range numbers {
			numbers[i] = i + 1
		}
		return numbers, nil
	}
	numbers := slices.Clone(b.opts.Pages)
	slices.Sort(numbers)
	numbers = slices.Compact(numbers)
	for _, n := range numbers {
		if n < 1 || n > count {
			return nil, fmt.Errorf("%w: %d of %d", decode.ErrNoSuchPage, n, count)
		}
	}
	return numbers, nil
}

// skip records a page that produced no model
func (b *Builder) skip(doc *model.Document, r *pageResult) {
	doc.SkippedPages = append(doc.SkippedPages, r.number)
	if errors.Is(r.err, context.DeadlineExceeded) || errors.Is(r.err, context.Canceled) {
		doc.Warn(model.WarnDeadline, r.number, "page not converted before the deadline: %v", r.err)
		b.logger.Warn("page skipped at deadline", slog.Int("page", r.number))
		return
	}
	doc.Warn(model.WarnPageSkipped, r.number, "%v", r.err)
	b.logger.Warn("page skipped", slog.Int("page", r.number), slog.Any("error", r.err))
}

// processPage runs decode, table detection, header classification and
// reflow for one page.
func (b *Builder) processPage(ctx context.Context, raw *decode.RawPage) *pageResult {
	res := &pageResult{number: raw.Number}
	decoded, err := b.decoder.Decode(ctx, raw)
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		res.err = err
		return res
	}

	det, err := b.tables.Detect(raw.Number, decoded.Primitives)
	if err != nil {
		res.err = &decode.DecodeError{Page: raw.Number, Offset: -1, Err: fmt.Errorf("table detection: %w", err)}
		return res
	}
	res.warnings = append(res.warnings, det.Warnings...)
	for _, t := range det.Tables {
		if w := b.headers.Apply(t); w != nil {
			res.warnings = append(res.warnings, *w)
		}
	}

	images := model.ImagesOf(decoded.Primitives)
	flow := b.layout.Reflow(layout.Input{Page: raw.Number, Spans: det.Remaining, Images: images})

	page := model.NewPageModel(decoded.Number, decoded.Width, decoded.Height)
	page.Rotation = decoded.Rotation
	page.Primitives = decoded.Primitives
	page.Elements = pageOrder(flow, det.Tables, images)
	res.page = page
	return res
}

// pageOrder interleaves paragraphs, tables and images in reading order
func pageOrder(flow *layout.Result, tbls []*model.TableRegion, images []*model.RasterImage) []model.Element {
	var elems []model.Element
	var items []layout.Placed
	add := func(e model.Element, column int) {
		items = append(items, layout.Placed{BBox: e.BoundingBox(), Column: column, Key: len(elems)})
		elems = append(elems, e)
	}
	for _, p := range flow.Paragraphs {
		add(p, p.Column)
	}
	for _, t := range tbls {
		add(t, flow.Columns.Assign(t.BBox))
	}
	for _, img := range images {
		add(img, flow.Columns.Assign(img.BBox))
	}

	ordered := layout.ReadingOrder(items)
	out := make([]model.Element, len(ordered))
	for i, it := range ordered {
		out[i] = elems[it.Key]
	}
	return out
}

func hasContent(doc *model.Document) bool {
	for _, p := range doc.Pages {
		if len(p.Elements) > 0 {
			return true
		}
	}
	return false
}

// fillPageSize falls back to the first decoded page when the source did not
// report a page size.
func (b *Builder) fillPageSize(doc *model.Document) {
	md := &doc.Metadata
	if md.PageWidth > 0 && md.PageHeight > 0 {
		return
	}
	first := doc.Pages[0]
	md.PageWidth, md.PageHeight = first.Width, first.Height
	if first.Landscape() {
		md.Orientation = model.Landscape
	}
}

// assignPositions numbers every element across the document in output
// order.
func assignPositions(doc *model.Document) {
	pos := 0
	for _, p := range doc.Pages {
		for _, e := range p.Elements {
			switch el := e.(type) {
			case *model.Paragraph:
				el.Position = pos
			case *model.TableRegion:
				el.Position = pos
			case *model.RasterImage:
				el.Position = pos
			}
			pos++
		}
	}
}
