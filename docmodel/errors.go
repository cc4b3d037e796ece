package docmodel

import (
	"errors"
	"fmt"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

// ErrNoContent reports a document from which nothing could be extracted
var ErrNoContent = errors.New("no extractable content")

// ErrColumnMismatch is wrapped by AssemblyError when two table parts have
// different column counts.
var ErrColumnMismatch = errors.New("column count mismatch")

// AssemblyError describes a continuation candidate that could not be
// merged. The tables stay separate.
type AssemblyError struct {
	From, To model.TableRef
	Err      error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("table %d on page %d cannot continue table %d on page %d: %v",
		e.To.Table, e.To.Page, e.From.Table, e.From.Page, e.Err)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}
