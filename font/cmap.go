package font

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// CMap maps character codes to Unicode text (a ToUnicode CMap)
type CMap struct {
	charMappings  map[uint32]string
	rangeMappings []cmapRange

	// codeLengths holds the byte lengths declared by codespace ranges,
	// shortest first
	codeLengths []int
	codespaces  []codespace
}

type cmapRange struct {
	start, end uint32
	dst        []byte // UTF-16BE destination of start
}

type codespace struct {
	low, high []byte
}

// NewCMap creates a new empty CMap
func NewCMap() *CMap {
	return &CMap{charMappings: make(map[uint32]string)}
}

// ParseCMap parses a decoded ToUnicode CMap stream.
// Malformed entries are skipped; only an empty or tokenless input fails.
func ParseCMap(data []byte) (*CMap, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty cmap stream")
	}

	cm := NewCMap()
	toks := tokenizeCMap(data)

	for i := 0; i < len(toks); i++ {
		switch toks[i].keyword {
		case "begincodespacerange":
			i = cm.parseCodespace(toks, i+1)
		case "beginbfchar":
			i = cm.parseBfChar(toks, i+1)
		case "beginbfrange":
			i = cm.parseBfRange(toks, i+1)
		}
	}
	return cm, nil
}

func (cm *CMap) parseCodespace(toks []cmapToken, i int) int {
	for ; i+1 < len(toks) && toks[i].keyword != "endcodespacerange"; i += 2 {
		lo, hi := toks[i], toks[i+1]
		if lo.hex == nil || hi.hex == nil || len(lo.hex) != len(hi.hex) {
			continue
		}
		cm.codespaces = append(cm.codespaces, codespace{low: lo.hex, high: hi.hex})
		cm.addCodeLength(len(lo.hex))
	}
	return i
}

func (cm *CMap) addCodeLength(n int) {
	for i, l := range cm.codeLengths {
		if l == n {
			return
		}
		if l > n {
			cm.codeLengths = append(cm.codeLengths[:i], append([]int{n}, cm.codeLengths[i:]...)...)
			return
		}
	}
	cm.codeLengths = append(cm.codeLengths, n)
}

func (cm *CMap) parseBfChar(toks []cmapToken, i int) int {
	for ; i+1 < len(toks) && toks[i].keyword != "endbfchar"; i += 2 {
		src, dst := toks[i], toks[i+1]
		if src.hex == nil || dst.hex == nil {
			continue
		}
		cm.charMappings[codeOf(src.hex)] = decodeUTF16(dst.hex)
		cm.noteImplicitLength(len(src.hex))
	}
	return i
}

func (cm *CMap) parseBfRange(toks []cmapToken, i int) int {
	for i+2 < len(toks) && toks[i].keyword != "endbfrange" {
		lo, hi := toks[i], toks[i+1]
		if lo.hex == nil || hi.hex == nil {
			i++
			continue
		}
		start, end := codeOf(lo.hex), codeOf(hi.hex)
		cm.noteImplicitLength(len(lo.hex))

		if toks[i+2].keyword == "[" {
			j := i + 3
			code := start
			for ; j < len(toks) && toks[j].keyword != "]"; j++ {
				if toks[j].hex != nil && code <= end {
					cm.charMappings[code] = decodeUTF16(toks[j].hex)
				}
				code++
			}
			i = j + 1
			continue
		}

		if toks[i+2].hex != nil && end >= start && end-start < 1<<16 {
			cm.rangeMappings = append(cm.rangeMappings, cmapRange{start: start, end: end, dst: toks[i+2].hex})
		}
		i += 3
	}
	return i
}

// noteImplicitLength records code lengths for CMaps that omit codespace
// ranges.
func (cm *CMap) noteImplicitLength(n int) {
	if len(cm.codespaces) == 0 {
		cm.addCodeLength(n)
	}
}

// TwoByte reports whether the CMap only declares 2-byte codes
func (cm *CMap) TwoByte() bool {
	return len(cm.codeLengths) == 1 && cm.codeLengths[0] == 2
}

// Lookup returns the Unicode text for a code and whether it was mapped
func (cm *CMap) Lookup(code uint32) (string, bool) {
	if s, ok := cm.charMappings[code]; ok {
		return s, true
	}
	for _, r := range cm.rangeMappings {
		if code < r.start || code > r.end {
			continue
		}
		dst := append([]byte(nil), r.dst...)
		// The offset is added to the last byte of the destination.
		offset := code - r.start
		for k := len(dst) - 1; k >= 0 && offset > 0; k-- {
			sum := uint32(dst[k]) + offset
			dst[k] = byte(sum)
			offset = sum >> 8
		}
		return decodeUTF16(dst), true
	}
	return "", false
}

// NextCode splits the next character code off data using the codespace
// ranges. It returns the code and its byte length.
func (cm *CMap) NextCode(data []byte) (uint32, int) {
	if len(cm.codespaces) > 0 {
		for _, n := range cm.codeLengths {
			if n > len(data) {
				break
			}
			for _, cs := range cm.codespaces {
				if len(cs.low) == n && inCodespace(data[:n], cs) {
					return codeOf(data[:n]), n
				}
			}
		}
	}
	n := 1
	if len(cm.codeLengths) > 0 {
		n = cm.codeLengths[0]
		if cm.TwoByte() {
			n = 2
		}
	}
	if n > len(data) {
		n = len(data)
	}
	return codeOf(data[:n]), n
}

func inCodespace(b []byte, cs codespace) bool {
	for i := range b {
		if b[i] < cs.low[i] || b[i] > cs.high[i] {
			return false
		}
	}
	return true
}

func codeOf(b []byte) uint32 {
	var c uint32
	for _, x := range b {
		c = c<<8 | uint32(x)
	}
	return c
}

var utf16Decoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// decodeUTF16 decodes a UTF-16BE destination string. Single bytes are
// treated as Latin-1 code points.
func decodeUTF16(b []byte) string {
	if len(b) == 1 {
		return string(rune(b[0]))
	}
	out, err := utf16Decoder.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(out)
}

type cmapToken struct {
	hex     []byte // set for <...> tokens
	keyword string // set for everything else
}

// tokenizeCMap splits CMap PostScript into hex strings, brackets and
// keywords. Names, strings, numbers and dictionaries are reduced to keywords
// that the section parsers ignore.
func tokenizeCMap(data []byte) []cmapToken {
	var toks []cmapToken
	i := 0
	for i < len(data) {
		c := data[i]
		switch {
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case isCMapSpace(c):
			i++
		case c == '<' && i+1 < len(data) && data[i+1] == '<':
			toks = append(toks, cmapToken{keyword: "<<"})
			i += 2
		case c == '>' && i+1 < len(data) && data[i+1] == '>':
			toks = append(toks, cmapToken{keyword: ">>"})
			i += 2
		case c == '<':
			j := i + 1
			var digits []byte
			for j < len(data) && data[j] != '>' {
				if isHex(data[j]) {
					digits = append(digits, data[j])
				}
				j++
			}
			if len(digits)%2 == 1 {
				digits = append(digits, '0')
			}
			b := make([]byte, len(digits)/2)
			for k := range b {
				b[k] = unhex(digits[2*k])<<4 | unhex(digits[2*k+1])
			}
			toks = append(toks, cmapToken{hex: b})
			i = j + 1
		case c == '[' || c == ']':
			toks = append(toks, cmapToken{keyword: string(c)})
			i++
		case c == '(':
			depth := 0
			for i < len(data) {
				if data[i] == '\\' {
					i += 2
					continue
				}
				if data[i] == '(' {
					depth++
				} else if data[i] == ')' {
					depth--
					if depth == 0 {
						i++
						break
					}
				}
				i++
			}
			toks = append(toks, cmapToken{keyword: "()"})
		default:
			j := i
			for j < len(data) && !isCMapSpace(data[j]) && !bytes.ContainsRune([]byte("<>[]()%"), rune(data[j])) {
				j++
			}
			if j == i {
				j++
			}
			toks = append(toks, cmapToken{keyword: string(data[i:j])})
			i = j
		}
	}
	return toks
}

func isCMapSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
