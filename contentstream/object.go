package contentstream

import "fmt"

// Object is a content stream operand
type Object interface {
	String() string
}

// Int is an integer operand
type Int int64

// Real is a real number operand
type Real float64

// String is a literal or hex string operand holding raw bytes
type String string

// Name is a name operand without the leading slash
type Name string

// Bool is a boolean operand
type Bool bool

// Null is the null operand
type Null struct{}

// Array is an array operand
type Array []Object

// Dict is a dictionary operand
type Dict map[string]Object

// InlineImage is the operand produced for a BI ... ID ... EI sequence.
// Params uses the abbreviated keys as written in the stream.
type InlineImage struct {
	Params Dict
	Data   []byte
}

func (i Int) String() string    { return fmt.Sprintf("%d", int64(i)) }
func (r Real) String() string   { return fmt.Sprintf("%g", float64(r)) }
func (s String) String() string { return fmt.Sprintf("(%s)", string(s)) }
func (n Name) String() string   { return "/" + string(n) }
func (b Bool) String() string   { return fmt.Sprintf("%t", bool(b)) }
func (Null) String() string     { return "null" }
func (a Array) String() string  { return fmt.Sprintf("%v", []Object(a)) }
func (d Dict) String() string   { return fmt.Sprintf("%v", map[string]Object(d)) }
func (i *InlineImage) String() string {
	return fmt.Sprintf("inline image (%d bytes)", len(i.Data))
}

// Number converts a numeric operand to float64
func Number(o Object) (float64, bool) {
	switch v := o.(type) {
	case Int:
		return float64(v), true
	case Real:
		return float64(v), true
	default:
		return 0, false
	}
}

// Numbers converts a list of numeric operands to float64. It fails if any
// operand is not a number.
func Numbers(objs []Object) ([]float64, bool) {
	out := make([]float64, len(objs))
	for i, o := range objs {
		v, ok := Number(o)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// NameValue returns the value of a name operand
func NameValue(o Object) (string, bool) {
	n, ok := o.(Name)
	return string(n), ok
}
