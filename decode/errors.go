package decode

import (
	"errors"
	"fmt"
)

var (
	// ErrPageTimeout reports a page that exceeded its wall-clock budget
	ErrPageTimeout = errors.New("page decode time budget exceeded")

	// ErrPanic reports a recovered panic while interpreting a page
	ErrPanic = errors.New("panic while decoding page")

	// ErrNoSuchPage reports a page number outside the document
	ErrNoSuchPage = errors.New("no such page")
)

// DecodeError describes a page whose content could not be interpreted
type DecodeError struct {
	Page     int
	Offset   int // byte offset in the content stream, -1 when unknown
	Operator string
	Err      error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Operator != "":
		return fmt.Sprintf("page %d: offset %d: operator %q: %v", e.Page, e.Offset, e.Operator, e.Err)
	case e.Offset >= 0:
		return fmt.Sprintf("page %d: offset %d: %v", e.Page, e.Offset, e.Err)
	default:
		return fmt.Sprintf("page %d: %v", e.Page, e.Err)
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
