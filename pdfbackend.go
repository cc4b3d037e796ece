// Package pdfbackend converts PDF files into editable Word, Excel and
// PowerPoint documents.
//
// Basic usage:
//
//	f, _ := os.Create("report.docx")
//	defer f.Close()
//	result, err := pdfbackend.Open("report.pdf").ToDocx(ctx, f)
//	if err != nil {
//	    // handle error
//	}
//	if result.Partial() {
//	    log.Println("Warnings:", pdfbackend.FormatWarnings(result.Warnings))
//	}
//
// With options:
//
//	result, err := pdfbackend.Open("tables.pdf").
//	    Pages(2, 3).
//	    WithLocale(language.Indonesian).
//	    WithTimeout(30 * time.Second).
//	    ToXlsx(ctx, w)
//
// Every conversion runs the same pipeline: pages are decoded into text,
// line and image primitives, tables and paragraphs are recovered, tables
// that continue across pages are joined, and the resulting document model
// is projected onto the requested format. The lower-level packages (decode,
// tables, layout, docmodel, docx, xlsx, pptx) are available for custom
// pipelines.
package pdfbackend

import (
	"io"
)

// Open returns a Converter for the PDF at filename. The file is opened by
// each terminal operation and closed before it returns.
//
// Example:
//
//	result, err := pdfbackend.Open("document.pdf").Analyze(ctx)
func Open(filename string) *Converter {
	return &Converter{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromReader returns a Converter reading the PDF from r. The caller keeps
// ownership of r.
//
// Example:
//
//	f, _ := os.Open("document.pdf")
//	defer f.Close()
//	result, err := pdfbackend.FromReader(f).ToPptx(ctx, w)
func FromReader(r io.ReadSeeker) *Converter {
	return &Converter{
		source:  r,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	result := pdfbackend.Must(pdfbackend.Open("document.pdf").Analyze(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
