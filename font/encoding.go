package font

import (
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// baseEncoding returns the 256-entry code → rune table for a simple font
// encoding name. Unknown names use StandardEncoding.
func baseEncoding(name string) [256]rune {
	var table [256]rune
	var cm *charmap.Charmap
	switch name {
	case "WinAnsiEncoding":
		cm = charmap.Windows1252
	case "MacRomanEncoding":
		cm = charmap.Macintosh
	default:
		cm = charmap.Windows1252
	}
	for i := 0; i < 256; i++ {
		table[i] = cm.DecodeByte(byte(i))
	}
	// Control codes carry no glyphs in PDF simple fonts.
	for i := 0; i < 32; i++ {
		table[i] = 0
	}
	if name == "StandardEncoding" || name == "" {
		table['\''] = '’'
		table['`'] = '‘'
	}
	return table
}

// applyDifferences overlays a /Differences array onto table
func applyDifferences(table *[256]rune, diffs map[int]string) {
	for code, glyph := range diffs {
		if code < 0 || code > 255 {
			continue
		}
		if r, ok := glyphToRune(glyph); ok {
			table[code] = r
		}
	}
}

// glyphToRune resolves an Adobe glyph name. It understands the uniXXXX and
// uXXXX[XX] forms and the names that occur in practice for Latin text.
func glyphToRune(name string) (rune, bool) {
	if r, ok := glyphNames[name]; ok {
		return r, true
	}
	if len(name) == 1 {
		return rune(name[0]), true
	}
	if strings.HasPrefix(name, "uni") && len(name) >= 7 {
		if v, err := strconv.ParseUint(name[3:7], 16, 32); err == nil {
			return rune(v), true
		}
	}
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return rune(v), true
		}
	}
	// Suffixed variants such as "a.sc" or "one.oldstyle".
	if dot := strings.IndexByte(name, '.'); dot > 0 {
		return glyphToRune(name[:dot])
	}
	return 0, false
}

var glyphNames = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=',
	"greater": '>', "question": '?', "at": '@', "bracketleft": '[',
	"backslash": '\\', "bracketright": ']', "asciicircum": '^',
	"underscore": '_', "grave": '`', "braceleft": '{', "bar": '|',
	"braceright": '}', "asciitilde": '~', "quoteleft": '‘',
	"quoteright": '’', "quotedblleft": '“', "quotedblright": '”',
	"quotesinglbase": '‚', "quotedblbase": '„',
	"bullet": '•', "endash": '–', "emdash": '—',
	"ellipsis": '…', "dagger": '†', "daggerdbl": '‡',
	"perthousand": '‰', "trademark": '™', "copyright": '©',
	"registered": '®', "degree": '°', "section": '§',
	"paragraph": '¶', "Euro": '€', "sterling": '£',
	"yen": '¥', "cent": '¢', "multiply": '×',
	"divide": '÷', "minus": '−', "plusminus": '±',
	"fi": 'ﬁ', "fl": 'ﬂ', "ff": 'ﬀ', "ffi": 'ﬃ',
	"ffl": 'ﬄ', "nbspace": ' ', "periodcentered": '·',
	"guillemotleft": '«', "guillemotright": '»',
	"exclamdown": '¡', "questiondown": '¿',
	"Adieresis": 'Ä', "Odieresis": 'Ö', "Udieresis": 'Ü',
	"adieresis": 'ä', "odieresis": 'ö', "udieresis": 'ü',
	"germandbls": 'ß', "eacute": 'é', "egrave": 'è', "ecircumflex": 'ê',
	"aacute": 'á', "agrave": 'à', "acircumflex": 'â', "ccedilla": 'ç',
	"Eacute": 'É', "iacute": 'í', "oacute": 'ó', "uacute": 'ú',
	"ntilde": 'ñ', "Ntilde": 'Ñ', "atilde": 'ã', "otilde": 'õ',
}
