package font

import (
	"strings"
	"unicode/utf8"
)

// FontDescriptor flag bits used for style inference
const (
	flagSerif  = 1 << 1
	flagItalic = 1 << 6
	flagBold   = 1 << 18 // ForceBold
)

// Spec is the information the decoder extracts from a PDF font dictionary.
// It is independent of the PDF object library so fonts can be built in
// tests without a document.
type Spec struct {
	Subtype  string // Type1, TrueType, Type0, Type3, MMType1
	BaseFont string

	// Encoding is the base encoding name (WinAnsiEncoding, MacRomanEncoding,
	// StandardEncoding, Identity-H, Identity-V).
	Encoding    string
	Differences map[int]string

	// ToUnicode is the decoded ToUnicode CMap stream, if any
	ToUnicode []byte

	// Simple font widths
	FirstChar int
	Widths    []float64

	// Composite font widths: DW and the expanded W array
	DefaultWidth float64
	CIDWidths    map[int]float64

	// FontDescriptor fields
	Flags       int
	ItalicAngle float64
	FontWeight  float64

	// WidthScale converts widths to thousandths of an em. It is 1 for every
	// font type except Type3, where it comes from the FontMatrix.
	WidthScale float64
}

// Glyph is one decoded character code
type Glyph struct {
	Code  uint32
	Text  string
	Width float64 // thousandths of an em
	Space bool    // single-byte code 32, which receives word spacing
}

// Font decodes strings shown with one PDF font
type Font struct {
	Name   string // resource name, e.g. F1
	Family string // BaseFont without subset prefix and style suffix
	Bold   bool
	Italic bool

	spec      Spec
	cmap      *CMap
	table     [256]rune
	composite bool
	std       map[rune]float64
}

// New builds a font from a spec. A ToUnicode stream that fails to parse is
// ignored and the base encoding is used instead.
func New(name string, spec Spec) *Font {
	if spec.WidthScale == 0 {
		spec.WidthScale = 1
	}
	f := &Font{
		Name:      name,
		spec:      spec,
		composite: spec.Subtype == "Type0",
	}
	if len(spec.ToUnicode) > 0 {
		if cm, err := ParseCMap(spec.ToUnicode); err == nil {
			f.cmap = cm
		}
	}
	if !f.composite {
		f.table = baseEncoding(spec.Encoding)
		applyDifferences(&f.table, spec.Differences)
	}
	f.std = standardWidthsFor(spec.BaseFont)
	f.Family, f.Bold, f.Italic = inferStyle(spec)
	return f
}

// Decode splits a shown string into glyphs
func (f *Font) Decode(data []byte) []Glyph {
	glyphs := make([]Glyph, 0, len(data))
	for len(data) > 0 {
		var code uint32
		n := 1
		switch {
		case f.composite && f.cmap != nil && !f.cmap.TwoByte() && len(f.cmap.codeLengths) > 0:
			code, n = f.cmap.NextCode(data)
		case f.composite:
			n = 2
			if len(data) < 2 {
				n = 1
			}
			code = codeOf(data[:n])
		default:
			code = uint32(data[0])
		}
		data = data[n:]

		g := Glyph{Code: code, Space: n == 1 && code == 32}
		g.Text = f.text(code)
		g.Width = f.width(code, g.Text)
		glyphs = append(glyphs, g)
	}
	return glyphs
}

// DecodeString is a convenience returning only the text of data
func (f *Font) DecodeString(data []byte) string {
	var sb strings.Builder
	for _, g := range f.Decode(data) {
		sb.WriteString(g.Text)
	}
	return sb.String()
}

func (f *Font) text(code uint32) string {
	if f.cmap != nil {
		if s, ok := f.cmap.Lookup(code); ok {
			return s
		}
	}
	if f.composite {
		// Identity encodings without ToUnicode: many producers use Unicode
		// code points as CIDs.
		if code >= 32 && code < 0xD800 {
			return string(rune(code))
		}
		return ""
	}
	if code < 256 {
		if r := f.table[code]; r != 0 {
			return string(r)
		}
	}
	return ""
}

func (f *Font) width(code uint32, text string) float64 {
	s := f.spec
	if f.composite {
		if w, ok := s.CIDWidths[int(code)]; ok {
			return w
		}
		if s.DefaultWidth > 0 {
			return s.DefaultWidth
		}
		return 1000
	}
	idx := int(code) - s.FirstChar
	if idx >= 0 && idx < len(s.Widths) {
		return s.Widths[idx] * s.WidthScale
	}
	if f.std != nil && text != "" {
		r, _ := utf8.DecodeRuneInString(text)
		if w, ok := f.std[r]; ok {
			return w
		}
	}
	if s.DefaultWidth > 0 {
		return s.DefaultWidth
	}
	return 500
}

// inferStyle derives a family name and bold/italic flags from the BaseFont
// name and FontDescriptor.
func inferStyle(spec Spec) (family string, bold, italic bool) {
	name := spec.BaseFont
	if isSubsetFont(name) {
		name = name[7:]
	}
	lower := strings.ToLower(name)

	bold = spec.Flags&flagBold != 0 || spec.FontWeight >= 600 ||
		strings.Contains(lower, "bold") || strings.Contains(lower, "black") ||
		strings.Contains(lower, "heavy") || strings.Contains(lower, "semibold") ||
		strings.Contains(lower, "demi")
	italic = spec.Flags&flagItalic != 0 || spec.ItalicAngle != 0 ||
		strings.Contains(lower, "italic") || strings.Contains(lower, "oblique")

	family = name
	if i := strings.IndexAny(family, "-,"); i > 0 {
		family = family[:i]
	}
	family = strings.TrimSuffix(family, "MT")
	family = strings.TrimSuffix(family, "PS")
	switch family {
	case "TimesNewRoman", "TimesNewRomanPS", "Times":
		family = "Times New Roman"
	case "CourierNew", "CourierNewPS":
		family = "Courier New"
	case "":
		if spec.Flags&flagSerif != 0 {
			family = "Times New Roman"
		} else {
			family = "Helvetica"
		}
	}
	return family, bold, italic
}

// isSubsetFont reports names like "ABCDEF+FontName"
func isSubsetFont(baseFontName string) bool {
	if len(baseFontName) < 8 {
		return false
	}
	for i := 0; i < 6; i++ {
		if baseFontName[i] < 'A' || baseFontName[i] > 'Z' {
			return false
		}
	}
	return baseFontName[6] == '+'
}
