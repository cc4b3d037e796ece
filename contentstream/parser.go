package contentstream

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrTruncated reports a stream that ends inside a token or with
	// operands that no operator consumed.
	ErrTruncated = errors.New("content stream truncated")

	// ErrUnsupportedOperator reports an operator outside the PDF operator
	// set that is not wrapped in a BX/EX compatibility section.
	ErrUnsupportedOperator = errors.New("unsupported content operator")

	// ErrTooManyOperations reports a stream exceeding the operation limit.
	ErrTooManyOperations = errors.New("content stream operation limit exceeded")

	// ErrSyntax reports a byte sequence that is not a valid token.
	ErrSyntax = errors.New("malformed content stream")
)

// SyntaxError describes where parsing stopped
type SyntaxError struct {
	Offset   int
	Operator string
	Err      error
}

func (e *SyntaxError) Error() string {
	if e.Operator != "" {
		return fmt.Sprintf("offset %d: operator %q: %v", e.Offset, e.Operator, e.Err)
	}
	return fmt.Sprintf("offset %d: %v", e.Offset, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Operation represents a single content stream operation consisting of an
// operator and the operands that precede it.
type Operation struct {
	Operator string
	Operands []Object
	Offset   int // byte offset of the operator
}

// Parser parses PDF content streams into a sequence of operations.
// A Parser is single-use and holds all of its state, so separate parsers may
// run concurrently.
type Parser struct {
	data     []byte
	pos      int
	ops      []Operation
	operands []Object
	compat   int // BX/EX nesting depth
	maxOps   int
}

// NewParser creates a new content stream parser for the given data.
func NewParser(data []byte) *Parser {
	return &Parser{
		data: data,
		ops:  make([]Operation, 0, 64),
	}
}

// SetMaxOperations caps the number of operations Parse will produce.
// Zero disables the cap.
func (p *Parser) SetMaxOperations(n int) {
	p.maxOps = n
}

// Parse parses the content stream and returns all operations in order.
func (p *Parser) Parse() ([]Operation, error) {
	for {
		p.skipWhitespaceAndComments()
		if p.pos >= len(p.data) {
			break
		}
		if err := p.parseNext(); err != nil {
			return nil, err
		}
		if p.maxOps > 0 && len(p.ops) > p.maxOps {
			return nil, &SyntaxError{Offset: p.pos, Err: ErrTooManyOperations}
		}
	}

	if len(p.operands) > 0 {
		return nil, &SyntaxError{Offset: p.pos, Err: fmt.Errorf("%w: %d operands without operator", ErrTruncated, len(p.operands))}
	}
	return p.ops, nil
}

// parseNext parses the next token, which is either an operand (pushed onto
// the operand stack) or an operator (which consumes the stack).
func (p *Parser) parseNext() error {
	c := p.data[p.pos]
	if isRegular(c) && !isNumberStart(c) {
		start := p.pos
		token := p.readToken()
		switch token {
		case "true":
			p.operands = append(p.operands, Bool(true))
			return nil
		case "false":
			p.operands = append(p.operands, Bool(false))
			return nil
		case "null":
			p.operands = append(p.operands, Null{})
			return nil
		}
		return p.emit(token, start)
	}

	start := p.pos
	operand, err := p.parseOperand()
	if err != nil {
		return wrapOffset(err, start)
	}
	p.operands = append(p.operands, operand)
	return nil
}

// emit validates an operator and records an operation with the pending
// operands.
func (p *Parser) emit(operator string, start int) error {
	switch operator {
	case "BX":
		p.compat++
	case "EX":
		if p.compat > 0 {
			p.compat--
		}
	case "BI":
		img, err := p.parseInlineImage()
		if err != nil {
			return &SyntaxError{Offset: start, Operator: operator, Err: err}
		}
		p.operands = append(p.operands, img)
	}

	if !knownOperators[operator] {
		if p.compat == 0 {
			return &SyntaxError{Offset: start, Operator: operator, Err: ErrUnsupportedOperator}
		}
		p.operands = p.operands[:0]
		return nil
	}

	op := Operation{
		Operator: operator,
		Operands: make([]Object, len(p.operands)),
		Offset:   start,
	}
	copy(op.Operands, p.operands)
	p.ops = append(p.ops, op)
	p.operands = p.operands[:0]
	return nil
}

// parseOperand parses a single operand, which can be a number, string, name,
// array, dictionary, boolean, or null.
func (p *Parser) parseOperand() (Object, error) {
	p.skipWhitespaceAndComments()
	if p.pos >= len(p.data) {
		return nil, ErrTruncated
	}

	c := p.data[p.pos]
	switch {
	case isNumberStart(c):
		return p.parseNumber()
	case c == '(':
		return p.parseString()
	case c == '<' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '<':
		return p.parseDict()
	case c == '<':
		return p.parseHexString()
	case c == '/':
		return p.parseName(), nil
	case c == '[':
		return p.parseArray()
	case isRegular(c):
		switch token := p.readToken(); token {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "null":
			return Null{}, nil
		default:
			return nil, fmt.Errorf("%w: unexpected token %q inside operand", ErrSyntax, token)
		}
	}

	return nil, fmt.Errorf("%w: unexpected character %q", ErrSyntax, c)
}

// parseNumber parses an integer or real number operand.
func (p *Parser) parseNumber() (Object, error) {
	start := p.pos
	hasDecimal := false

	if p.data[p.pos] == '+' || p.data[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
		} else if c == '.' && !hasDecimal {
			hasDecimal = true
			p.pos++
		} else {
			break
		}
	}

	numStr := string(p.data[start:p.pos])
	switch numStr {
	case "+", "-", ".", "+.", "-.":
		// Producers write a lone sign or dot for zero.
		return Int(0), nil
	}

	if hasDecimal {
		val, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid real number %q", ErrSyntax, numStr)
		}
		return Real(val), nil
	}

	val, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		// Out-of-range integers are clamped through float parsing.
		f, ferr := strconv.ParseFloat(numStr, 64)
		if ferr != nil {
			return nil, fmt.Errorf("%w: invalid integer %q", ErrSyntax, numStr)
		}
		return Real(f), nil
	}
	return Int(val), nil
}

// parseString parses a literal string (...) with escape sequence handling.
func (p *Parser) parseString() (Object, error) {
	p.pos++ // skip '('

	var result bytes.Buffer
	depth := 1

	for p.pos < len(p.data) && depth > 0 {
		c := p.data[p.pos]

		switch {
		case c == '\\':
			p.pos++
			if p.pos >= len(p.data) {
				return nil, fmt.Errorf("%w: unterminated string", ErrTruncated)
			}
			next := p.data[p.pos]
			switch next {
			case 'n':
				result.WriteByte('\n')
				p.pos++
			case 'r':
				result.WriteByte('\r')
				p.pos++
			case 't':
				result.WriteByte('\t')
				p.pos++
			case 'b':
				result.WriteByte('\b')
				p.pos++
			case 'f':
				result.WriteByte('\f')
				p.pos++
			case '\r':
				p.pos++
				if p.pos < len(p.data) && p.data[p.pos] == '\n' {
					p.pos++
				}
			case '\n':
				p.pos++
			case '0', '1', '2', '3', '4', '5', '6', '7':
				octalVal := int(next - '0')
				p.pos++
				for i := 0; i < 2 && p.pos < len(p.data); i++ {
					digit := p.data[p.pos]
					if digit < '0' || digit > '7' {
						break
					}
					octalVal = octalVal*8 + int(digit-'0')
					p.pos++
				}
				result.WriteByte(byte(octalVal & 0xFF))
			default:
				// Covers \( \) \\ and unknown escapes, which drop the backslash.
				result.WriteByte(next)
				p.pos++
			}
		case c == '(':
			depth++
			result.WriteByte(c)
			p.pos++
		case c == ')':
			depth--
			if depth > 0 {
				result.WriteByte(c)
			}
			p.pos++
		default:
			result.WriteByte(c)
			p.pos++
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("%w: unterminated string", ErrTruncated)
	}
	return String(result.String()), nil
}

// parseHexString parses a hexadecimal string <...>.
func (p *Parser) parseHexString() (Object, error) {
	p.pos++ // skip '<'

	var digits []byte
	for {
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("%w: unterminated hex string", ErrTruncated)
		}
		c := p.data[p.pos]
		p.pos++
		if c == '>' {
			break
		}
		if isWhitespace(c) {
			continue
		}
		if !isHexDigit(c) {
			return nil, fmt.Errorf("%w: invalid hex digit %q", ErrSyntax, c)
		}
		digits = append(digits, c)
	}

	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		out[i] = hexValue(digits[2*i])<<4 | hexValue(digits[2*i+1])
	}
	return String(out), nil
}

// parseName parses a name object /Name with # escape handling.
func (p *Parser) parseName() Object {
	p.pos++ // skip '/'

	var result bytes.Buffer
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		if c == '#' && p.pos+2 < len(p.data) && isHexDigit(p.data[p.pos+1]) && isHexDigit(p.data[p.pos+2]) {
			result.WriteByte(hexValue(p.data[p.pos+1])<<4 | hexValue(p.data[p.pos+2]))
			p.pos += 3
			continue
		}
		result.WriteByte(c)
		p.pos++
	}
	return Name(result.String())
}

// parseArray parses an array [...] of operands.
func (p *Parser) parseArray() (Object, error) {
	p.pos++ // skip '['

	arr := Array{}
	for {
		p.skipWhitespaceAndComments()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("%w: unterminated array", ErrTruncated)
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return arr, nil
		}
		obj, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

// parseDict parses a dictionary <<...>> (marked content properties).
func (p *Parser) parseDict() (Object, error) {
	p.pos += 2 // skip '<<'

	dict := make(Dict)
	for {
		p.skipWhitespaceAndComments()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("%w: unterminated dictionary", ErrTruncated)
		}
		if p.data[p.pos] == '>' {
			if p.pos+1 < len(p.data) && p.data[p.pos+1] == '>' {
				p.pos += 2
				return dict, nil
			}
			return nil, fmt.Errorf("%w: unterminated dictionary", ErrTruncated)
		}
		if p.data[p.pos] != '/' {
			return nil, fmt.Errorf("%w: dictionary key must be a name", ErrSyntax)
		}
		key := p.parseName().(Name)
		value, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		dict[string(key)] = value
	}
}

// parseInlineImage reads the key/value pairs after BI, the ID keyword and
// the raw sample bytes up to EI.
func (p *Parser) parseInlineImage() (*InlineImage, error) {
	img := &InlineImage{Params: make(Dict)}

	for {
		p.skipWhitespaceAndComments()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("%w: inline image without ID", ErrTruncated)
		}
		if p.data[p.pos] == '/' {
			key := p.parseName().(Name)
			value, err := p.parseOperand()
			if err != nil {
				return nil, err
			}
			img.Params[string(key)] = value
			continue
		}
		if token := p.readToken(); token != "ID" {
			return nil, fmt.Errorf("%w: expected ID in inline image, got %q", ErrSyntax, token)
		}
		break
	}

	// A single whitespace byte separates ID from the data.
	if p.pos < len(p.data) && isWhitespace(p.data[p.pos]) {
		p.pos++
	}

	if n, ok := inlineLength(img.Params); ok && p.pos+n <= len(p.data) {
		img.Data = p.data[p.pos : p.pos+n]
		p.pos += n
		p.skipWhitespaceAndComments()
		if p.readToken() != "EI" {
			return nil, fmt.Errorf("%w: inline image without EI", ErrTruncated)
		}
		return img, nil
	}

	for i := p.pos; i+1 < len(p.data); i++ {
		if p.data[i] != 'E' || p.data[i+1] != 'I' {
			continue
		}
		if i > p.pos && !isWhitespace(p.data[i-1]) {
			continue
		}
		if i+2 < len(p.data) && !isWhitespace(p.data[i+2]) && !isDelimiter(p.data[i+2]) {
			continue
		}
		end := i
		if end > p.pos && isWhitespace(p.data[end-1]) {
			end--
		}
		img.Data = p.data[p.pos:end]
		p.pos = i + 2
		return img, nil
	}
	return nil, fmt.Errorf("%w: inline image without EI", ErrTruncated)
}

func inlineLength(params Dict) (int, bool) {
	for _, key := range []string{"L", "Length"} {
		if v, ok := params[key]; ok {
			if n, ok := Number(v); ok && n >= 0 {
				return int(n), true
			}
		}
	}
	return 0, false
}

// readToken reads a run of regular characters.
func (p *Parser) readToken() string {
	start := p.pos
	for p.pos < len(p.data) && isRegular(p.data[p.pos]) {
		p.pos++
	}
	return string(p.data[start:p.pos])
}

// skipWhitespaceAndComments advances past PDF whitespace and % comments.
func (p *Parser) skipWhitespaceAndComments() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) {
			p.pos++
			continue
		}
		if c == '%' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
			continue
		}
		return
	}
}

func wrapOffset(err error, offset int) error {
	var se *SyntaxError
	if errors.As(err, &se) {
		return err
	}
	return &SyntaxError{Offset: offset, Err: err}
}

// isWhitespace reports whether c is a PDF whitespace character.
func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

// isDelimiter reports whether c is a PDF delimiter character.
func isDelimiter(c byte) bool {
	return c == '(' || c == ')' || c == '<' || c == '>' ||
		c == '[' || c == ']' || c == '{' || c == '}' ||
		c == '/' || c == '%'
}

// isRegular reports whether c can appear inside an operator or keyword.
func isRegular(c byte) bool {
	return !isWhitespace(c) && !isDelimiter(c)
}

// isNumberStart reports whether c can begin a numeric operand.
func isNumberStart(c byte) bool {
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

// isHexDigit reports whether c is a hexadecimal digit.
func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// hexValue returns the numeric value of a hexadecimal digit.
func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

// knownOperators is the complete PDF 2.0 content stream operator set.
var knownOperators = map[string]bool{
	"b": true, "B": true, "b*": true, "B*": true, "BDC": true, "BI": true,
	"BMC": true, "BT": true, "BX": true, "c": true, "cm": true, "CS": true,
	"cs": true, "d": true, "d0": true, "d1": true, "Do": true, "DP": true,
	"EI": true, "EMC": true, "ET": true, "EX": true, "f": true, "F": true,
	"f*": true, "G": true, "g": true, "gs": true, "h": true, "i": true,
	"ID": true, "j": true, "J": true, "K": true, "k": true, "l": true,
	"m": true, "M": true, "MP": true, "n": true, "q": true, "Q": true,
	"re": true, "RG": true, "rg": true, "ri": true, "s": true, "S": true,
	"SC": true, "sc": true, "SCN": true, "scn": true, "sh": true, "T*": true,
	"Tc": true, "Td": true, "TD": true, "Tf": true, "Tj": true, "TJ": true,
	"TL": true, "Tm": true, "Tr": true, "Ts": true, "Tw": true, "Tz": true,
	"v": true, "w": true, "W": true, "W*": true, "y": true, "'": true,
	"\"": true,
}
