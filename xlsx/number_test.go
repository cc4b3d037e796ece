package xlsx

import (
	"math"
	"testing"

	"golang.org/x/text/language"
)

var (
	english    = Separators{Decimal: '.', Group: ','}
	indonesian = Separators{Decimal: ',', Group: '.'}
)

func TestSeparatorsFor(t *testing.T) {
	tests := []struct {
		tag  string
		want Separators
	}{
		{"en", english},
		{"en-GB", english},
		{"id", indonesian},
		{"id-ID", indonesian},
		{"de", indonesian},
		{"es-MX", english},
		{"es-ES", indonesian},
		{"de-CH", Separators{Decimal: '.', Group: '\''}},
		{"ja", english},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if got := SeparatorsFor(language.MustParse(tt.tag)); got != tt.want {
				t.Errorf("SeparatorsFor(%s) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     string
		sep    Separators
		want   float64
		format string
		ok     bool
	}{
		{"7", english, 7, "", true},
		{"3.50", english, 3.5, "0.00", true},
		{"12,500.00", english, 12500, "#,##0.00", true},
		{"1,250", english, 1250, "#,##0", true},
		{"12.500,00", indonesian, 12500, "#,##0.00", true},
		{"1.234", indonesian, 1234, "#,##0", true},
		{"1.234", english, 1.234, "0.000", true},
		{"-42", english, -42, "", true},
		{"(1,200.50)", english, -1200.5, "#,##0.00;(#,##0.00)", true},
		{"12.5%", english, 0.125, "0.0%", true},
		{"$3.50", english, 3.5, `"$"0.00`, true},
		{"-$3.50", english, -3.5, `"$"0.00`, true},
		{"3,50 €", indonesian, 3.5, `"€"0.00`, true},
		{"Rp 1.500.000", indonesian, 1500000, `"Rp"#,##0`, true},
		{"1 250,75", indonesian, 1250.75, "#,##0.00", true},
		{".5", english, 0.5, "0.0", true},
		{"0.75", english, 0.75, "0.00", true},

		{"", english, 0, "", false},
		{"abc", english, 0, "", false},
		{"007", english, 0, "", false},
		{"1,5", english, 0, "", false},
		{"12.03.2024", english, 0, "", false},
		{"12.03.2024", indonesian, 0, "", false},
		{"0812 3456", english, 0, "", false},
		{"1234567890123456", english, 0, "", false},
		{"1,,000", english, 0, "", false},
		{"1.", english, 0, "", false},
		{"-", english, 0, "", false},
		{"(-5)", english, 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, ok := ParseNumber(tt.in, tt.sep)
			if ok != tt.ok {
				t.Fatalf("ParseNumber(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if !ok {
				return
			}
			if math.Abs(n.Value-tt.want) > 1e-9 {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, n.Value, tt.want)
			}
			if got := n.Format(); got != tt.format {
				t.Errorf("ParseNumber(%q).Format() = %q, want %q", tt.in, got, tt.format)
			}
		})
	}
}

func TestNumberRender(t *testing.T) {
	tests := []struct {
		in   string
		sep  Separators
		want string
	}{
		{"7", english, "7"},
		{"-42", english, "-42"},
		{"3.50", english, "3.50"},
		{"12,500.00", english, "12,500.00"},
		{"1,234,567", english, "1,234,567"},
		{"(1,200.50)", english, "(1,200.50)"},
		{"12.5%", english, "12.5%"},
		{"7%", english, "7%"},
		{"$3.50", english, "$3.50"},
		{"-$3.50", english, "-$3.50"},
		{"Rp7,000", english, "Rp7,000"},

		{"+5", english, "5"},
		{"5 %", english, "5%"},
		{"$ 12.50", english, "$12.50"},
		{"1 234", english, "1,234"},
		{"12.500,00", indonesian, "12,500.00"},
		{"Rp 7.000", indonesian, "Rp7,000"},
		{"1.234,5", indonesian, "1,234.5"},
		{"7000", indonesian, "7000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, ok := ParseNumber(tt.in, tt.sep)
			if !ok {
				t.Fatalf("ParseNumber(%q) failed", tt.in)
			}
			if got := n.Render(); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}
