package pdfbackend

import (
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

// ConvertOptions holds configuration for a conversion.
type ConvertOptions struct {
	// Page selection (1-indexed), nil means all pages
	pages []int

	tuning  tuning.Config
	workers int           // zero defers to the tuning
	timeout time.Duration // zero means no deadline beyond the caller's
	locale  language.Tag  // number convention for spreadsheets
	logger  *slog.Logger
}

// defaultOptions returns the default conversion options.
func defaultOptions() ConvertOptions {
	return ConvertOptions{
		tuning: tuning.Default(),
		locale: language.English,
	}
}

// clone creates a deep copy of ConvertOptions.
func (o ConvertOptions) clone() ConvertOptions {
	newOpts := o
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}
	return newOpts
}
