package model

import "fmt"

// WarningKind classifies a non-fatal conversion problem
type WarningKind int

const (
	WarnPageSkipped WarningKind = iota
	WarnAmbiguousTable
	WarnAmbiguousHeader
	WarnContinuationDropped
	WarnDeadline
)

func (k WarningKind) String() string {
	switch k {
	case WarnPageSkipped:
		return "page_skipped"
	case WarnAmbiguousTable:
		return "ambiguous_table"
	case WarnAmbiguousHeader:
		return "ambiguous_header"
	case WarnContinuationDropped:
		return "continuation_dropped"
	case WarnDeadline:
		return "deadline"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON summaries
func (k WarningKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a name written by MarshalText
func (k *WarningKind) UnmarshalText(text []byte) error {
	for kind := WarnPageSkipped; kind <= WarnDeadline; kind++ {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown warning kind %q", text)
}

// Warning is a recorded, non-fatal problem. Page is 0 for document-wide
// warnings.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Page    int         `json:"page,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("page %d: %s: %s", w.Page, w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// ProjectionError reports that a target format cannot represent an element
type ProjectionError struct {
	Target  string // "docx", "xlsx" or "pptx"
	Element string
	Reason  string
	Err     error
}

func (e *ProjectionError) Error() string {
	msg := fmt.Sprintf("%s: cannot project %s: %s", e.Target, e.Element, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProjectionError) Unwrap() error {
	return e.Err
}
