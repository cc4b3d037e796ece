package xlsx

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
)

// Separators are the decimal and digit-grouping marks of a locale
type Separators struct {
	Decimal rune
	Group   rune
}

// commaDecimal lists languages that write 1.234,5 (or 1 234,5)
var commaDecimal = map[string]bool{
	"bg": true, "ca": true, "cs": true, "da": true, "de": true, "el": true,
	"es": true, "et": true, "fi": true, "fr": true, "hr": true, "hu": true,
	"id": true, "it": true, "lt": true, "lv": true, "nb": true, "nl": true,
	"pl": true, "pt": true, "ro": true, "ru": true, "sk": true, "sl": true,
	"sv": true, "tr": true, "uk": true, "vi": true,
}

// Regions whose convention differs from their language's
var (
	dotDecimalRegions = map[string]bool{"MX": true, "US": true, "PR": true, "GT": true, "HN": true, "NI": true, "PA": true, "DO": true}
	apostropheRegions = map[string]bool{"CH": true, "LI": true}
)

// SeparatorsFor returns the number convention of tag
func SeparatorsFor(tag language.Tag) Separators {
	base, _ := tag.Base()
	region, _ := tag.Region()
	switch {
	case apostropheRegions[region.String()] && base.String() != "fr":
		return Separators{Decimal: '.', Group: '\''}
	case commaDecimal[base.String()] && !dotDecimalRegions[region.String()]:
		return Separators{Decimal: ',', Group: '.'}
	default:
		return Separators{Decimal: '.', Group: ','}
	}
}

// Number is a parsed numeric cell
type Number struct {
	Value    float64
	Decimals int  // digits after the decimal mark
	Grouped  bool // thousands were separated
	Percent  bool // Value already divided by 100
	Currency string
	Negative bool // written in accounting parentheses
}

// maxSignificantDigits is the precision limit of a spreadsheet number
const maxSignificantDigits = 15

// ParseNumber parses s with the separators of a locale. It accepts a
// leading sign or accounting parentheses, a currency symbol before or after
// the digits and a trailing percent sign. Integers with leading zeros and
// values beyond spreadsheet precision are not numbers.
func ParseNumber(s string, sep Separators) (Number, bool) {
	var n Number
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		n.Negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if rest, ok := strings.CutSuffix(s, "%"); ok {
		n.Percent = true
		s = strings.TrimSpace(rest)
	}
	s, n.Currency = cutCurrency(s)

	neg := n.Negative
	if r, size := firstRune(s); r == '-' || r == '+' || r == '\u2212' {
		if n.Negative {
			return Number{}, false
		}
		neg = r != '+'
		s = strings.TrimSpace(s[size:])
		if n.Currency == "" {
			s, n.Currency = cutCurrency(s)
		}
	}
	if s == "" {
		return Number{}, false
	}

	intPart, frac, hasDecimal := strings.Cut(s, string(sep.Decimal))
	if hasDecimal && !allDigits(frac) {
		return Number{}, false
	}
	if hasDecimal && intPart == "" {
		intPart = "0"
	}
	digits, grouped, ok := ungroup(intPart, sep.Group)
	if !ok {
		return Number{}, false
	}
	if !grouped && len(digits) > 1 && digits[0] == '0' {
		return Number{}, false
	}
	if len(strings.TrimLeft(digits, "0"))+len(frac) > maxSignificantDigits {
		return Number{}, false
	}

	plain := digits
	if hasDecimal {
		plain += "." + frac
	}
	v, err := strconv.ParseFloat(plain, 64)
	if err != nil {
		return Number{}, false
	}
	if neg {
		v = -v
	}
	if n.Percent {
		v /= 100
	}
	n.Value = v
	n.Decimals = len(frac)
	n.Grouped = grouped
	return n, true
}

// Format returns an Excel number format showing the value the way it was
// written. Plain integers use the General format.
func (n Number) Format() string {
	if n.Decimals == 0 && !n.Grouped && !n.Percent && n.Currency == "" && !n.Negative {
		return ""
	}
	code := "0"
	if n.Grouped {
		code = "#,##0"
	}
	if n.Decimals > 0 {
		code += "." + strings.Repeat("0", n.Decimals)
	}
	if n.Percent {
		code += "%"
	}
	if n.Currency != "" {
		code = strconv.Quote(n.Currency) + code
	}
	if n.Negative {
		code = code + ";(" + code + ")"
	}
	return code
}

// Render returns the text a spreadsheet shows for the value under Format:
// en separators, the currency symbol against the digits and a leading minus.
func (n Number) Render() string {
	v := math.Abs(n.Value)
	if n.Percent {
		v *= 100
	}
	body := strconv.FormatFloat(v, 'f', n.Decimals, 64)
	if n.Grouped {
		intPart, frac, hasDecimal := strings.Cut(body, ".")
		body = group(intPart)
		if hasDecimal {
			body += "." + frac
		}
	}
	if n.Percent {
		body += "%"
	}
	body = n.Currency + body
	switch {
	case n.Negative:
		return "(" + body + ")"
	case n.Value < 0:
		return "-" + body
	}
	return body
}

// group inserts a comma between every three digits of an integer
func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// ungroup strips group separators from an integer part. Groups after the
// first must hold exactly three digits. Spaces always group.
func ungroup(s string, group rune) (digits string, grouped, ok bool) {
	var parts []string
	start := 0
	for i, r := range s {
		if r == group || r == ' ' || r == '\u00a0' || r == '\u202f' {
			parts = append(parts, s[start:i])
			start = i + utf8.RuneLen(r)
		}
	}
	parts = append(parts, s[start:])
	for i, p := range parts {
		if !allDigits(p) {
			return "", false, false
		}
		if i == 0 && len(parts) > 1 && len(p) > 3 {
			return "", false, false
		}
		if i > 0 && len(p) != 3 {
			return "", false, false
		}
	}
	return strings.Join(parts, ""), len(parts) > 1, true
}

// cutCurrency removes a currency symbol (or "Rp") from either end of s
func cutCurrency(s string) (rest, currency string) {
	if after, ok := strings.CutPrefix(s, "Rp"); ok {
		return strings.TrimSpace(strings.TrimPrefix(after, ".")), "Rp"
	}
	if r, size := firstRune(s); unicode.Is(unicode.Sc, r) {
		return strings.TrimSpace(s[size:]), string(r)
	}
	if r := lastRune(s); unicode.Is(unicode.Sc, r) {
		return strings.TrimSpace(strings.TrimSuffix(s, string(r))), string(r)
	}
	return s, ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func firstRune(s string) (rune, int) {
	return utf8.DecodeRuneInString(s)
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}
