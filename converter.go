package pdfbackend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/rezaldwntr/pdf-backend-api/decode"
	"github.com/rezaldwntr/pdf-backend-api/docmodel"
	"github.com/rezaldwntr/pdf-backend-api/docx"
	"github.com/rezaldwntr/pdf-backend-api/format"
	"github.com/rezaldwntr/pdf-backend-api/model"
	"github.com/rezaldwntr/pdf-backend-api/pptx"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
	"github.com/rezaldwntr/pdf-backend-api/xlsx"
)

var (
	// ErrNoContent reports a PDF from which nothing could be extracted
	ErrNoContent = docmodel.ErrNoContent
	// ErrNoTables reports a spreadsheet conversion of a PDF without tables
	ErrNoTables = xlsx.ErrNoTables
	// ErrUnsupportedFormat reports an output format the converter cannot write
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// Converter provides a fluent interface for converting a PDF. Each
// configuration method returns a new Converter, so a configured Converter
// can be shared and reused.
type Converter struct {
	// Source: a file name or a caller-owned reader
	filename string
	source   io.ReadSeeker

	// Configuration
	options ConvertOptions

	// Accumulated error (fail-fast)
	err error
}

// Result is the outcome of a conversion
type Result struct {
	Document *model.Document
	Warnings []model.Warning
	Elapsed  time.Duration
}

// Partial reports whether some pages were skipped
func (r *Result) Partial() bool {
	return r.Document != nil && r.Document.Partial()
}

// clone creates a shallow copy of the Converter with a deep copy of options.
func (c *Converter) clone() *Converter {
	return &Converter{
		filename: c.filename,
		source:   c.source,
		options:  c.options.clone(),
		err:      c.err,
	}
}

// ============================================================================
// Configuration Methods (return new Converter instance)
// ============================================================================

// Pages specifies which pages to convert (1-indexed).
// Multiple calls are cumulative.
//
// Example:
//
//	result, err := pdfbackend.Open("doc.pdf").Pages(1, 3, 5).Analyze(ctx)
func (c *Converter) Pages(pages ...int) *Converter {
	newConv := c.clone()
	newConv.options.pages = append(newConv.options.pages, pages...)
	return newConv
}

// PageRange specifies a range of pages to convert (1-indexed, inclusive).
func (c *Converter) PageRange(start, end int) *Converter {
	newConv := c.clone()
	for i := start; i <= end; i++ {
		newConv.options.pages = append(newConv.options.pages, i)
	}
	return newConv
}

// WithTuning replaces the heuristic thresholds. An invalid configuration
// fails the terminal operation.
func (c *Converter) WithTuning(cfg tuning.Config) *Converter {
	newConv := c.clone()
	if err := cfg.Validate(); err != nil && newConv.err == nil {
		newConv.err = fmt.Errorf("invalid tuning: %w", err)
	}
	newConv.options.tuning = cfg
	return newConv
}

// WithWorkers bounds the number of pages processed concurrently.
func (c *Converter) WithWorkers(n int) *Converter {
	newConv := c.clone()
	newConv.options.workers = n
	return newConv
}

// WithTimeout sets a deadline for the whole conversion. Pages not reached
// by then are skipped and the result is partial.
func (c *Converter) WithTimeout(d time.Duration) *Converter {
	newConv := c.clone()
	newConv.options.timeout = d
	return newConv
}

// WithLocale selects the number convention used when writing spreadsheet
// cells. A cell becomes a number only when the sheet displays it exactly as
// written; everything else stays text.
func (c *Converter) WithLocale(tag language.Tag) *Converter {
	newConv := c.clone()
	newConv.options.locale = tag
	return newConv
}

// WithLogger sets the logger for the pipeline. The default is slog.Default().
func (c *Converter) WithLogger(l *slog.Logger) *Converter {
	newConv := c.clone()
	newConv.options.logger = l
	return newConv
}

// ============================================================================
// Terminal Operations (run the pipeline)
// ============================================================================

// Analyze builds the document model without writing any output.
func (c *Converter) Analyze(ctx context.Context) (*Result, error) {
	if c.err != nil {
		return nil, c.err
	}
	start := time.Now()
	if c.options.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.options.timeout)
		defer cancel()
	}

	rs := c.source
	if rs == nil {
		if c.filename == "" {
			return nil, fmt.Errorf("no filename specified")
		}
		f, err := os.Open(c.filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open PDF: %w", err)
		}
		defer f.Close()
		rs = f
	}

	src, err := decode.OpenPDF(rs)
	if err != nil {
		return nil, err
	}
	doc, err := docmodel.New(docmodel.Options{
		Tuning:  c.options.tuning,
		Workers: c.options.workers,
		Pages:   c.options.pages,
		Logger:  c.logger(),
	}).Build(ctx, src)
	if err != nil {
		return nil, err
	}
	return &Result{Document: doc, Warnings: doc.Warnings, Elapsed: time.Since(start)}, nil
}

// ToDocx converts the PDF to a Word document written to w.
func (c *Converter) ToDocx(ctx context.Context, w io.Writer) (*Result, error) {
	return c.Convert(ctx, format.DOCX, w)
}

// ToXlsx writes the PDF's tables to an Excel workbook. A PDF without
// tables fails with ErrNoTables.
func (c *Converter) ToXlsx(ctx context.Context, w io.Writer) (*Result, error) {
	return c.Convert(ctx, format.XLSX, w)
}

// ToPptx converts the PDF to a PowerPoint presentation, one slide per page.
func (c *Converter) ToPptx(ctx context.Context, w io.Writer) (*Result, error) {
	return c.Convert(ctx, format.PPTX, w)
}

// writer is a projected tree ready to be serialised
type writer interface {
	Write(io.Writer) error
}

// Convert converts the PDF to the given output format. Nothing is written
// to w when projection fails.
func (c *Converter) Convert(ctx context.Context, to format.Format, w io.Writer) (*Result, error) {
	if c.err != nil {
		return nil, c.err
	}
	switch to {
	case format.DOCX, format.XLSX, format.PPTX:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, to)
	}

	result, err := c.Analyze(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	var tree writer
	switch to {
	case format.DOCX:
		tree, err = docx.Project(result.Document, docx.Options{Logger: c.logger()})
	case format.XLSX:
		tree, err = xlsx.Project(result.Document, xlsx.Options{Locale: c.options.locale, Logger: c.logger()})
	case format.PPTX:
		tree, err = pptx.Project(result.Document, pptx.Options{Logger: c.logger()})
	}
	if err != nil {
		return result, err
	}
	if err := tree.Write(w); err != nil {
		return result, fmt.Errorf("write %s: %w", to, err)
	}
	result.Elapsed += time.Since(start)
	return result, nil
}

func (c *Converter) logger() *slog.Logger {
	if c.options.logger != nil {
		return c.options.logger
	}
	return slog.Default()
}

// FormatWarnings renders warnings one per line
func FormatWarnings(warnings []model.Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
