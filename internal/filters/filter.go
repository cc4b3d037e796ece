package filters

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFilter reports a filter name this package cannot decode
var ErrUnsupportedFilter = errors.New("unsupported filter")

// Format describes what Apply produced
type Format int

const (
	// FormatSamples is raw, uncompressed image samples
	FormatSamples Format = iota
	// FormatJPEG is a complete JPEG file (DCTDecode)
	FormatJPEG
	// FormatJPEG2000 is a complete JPEG 2000 codestream (JPXDecode)
	FormatJPEG2000
)

// Params holds the decode parameters used by the supported filters.
// Zero values mean "not present" and the filter default applies.
type Params struct {
	Predictor        int
	Colors           int
	BitsPerComponent int
	Columns          int

	// CCITTFaxDecode
	K        int
	Rows     int
	BlackIs1 bool
}

func (p Params) orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// Filter is one entry of a stream's filter chain
type Filter struct {
	Name   string
	Params Params
}

// Result is the output of a filter chain
type Result struct {
	Data   []byte
	Format Format
}

var abbreviations = map[string]string{
	"AHx": "ASCIIHexDecode",
	"A85": "ASCII85Decode",
	"LZW": "LZWDecode",
	"Fl":  "FlateDecode",
	"RL":  "RunLengthDecode",
	"CCF": "CCITTFaxDecode",
	"DCT": "DCTDecode",
}

// CanonicalName expands inline-image filter abbreviations
func CanonicalName(name string) string {
	if full, ok := abbreviations[name]; ok {
		return full
	}
	return name
}

// Apply runs data through chain in order. An image codec filter ends the
// chain and its input is returned as encoded bytes.
func Apply(data []byte, chain []Filter) (Result, error) {
	out := data
	for i, f := range chain {
		var err error
		switch CanonicalName(f.Name) {
		case "FlateDecode":
			out, err = FlateDecode(out, f.Params)
		case "ASCIIHexDecode":
			out, err = ASCIIHexDecode(out)
		case "ASCII85Decode":
			out, err = ASCII85Decode(out)
		case "RunLengthDecode":
			out, err = RunLengthDecode(out)
		case "CCITTFaxDecode":
			out, err = CCITTFaxDecode(out, f.Params)
		case "DCTDecode":
			return Result{Data: out, Format: FormatJPEG}, nil
		case "JPXDecode":
			return Result{Data: out, Format: FormatJPEG2000}, nil
		default:
			return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedFilter, f.Name)
		}
		if err != nil {
			return Result{}, fmt.Errorf("filter %d (%s): %w", i, f.Name, err)
		}
	}
	return Result{Data: out, Format: FormatSamples}, nil
}
