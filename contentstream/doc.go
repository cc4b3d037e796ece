// Package contentstream tokenizes PDF page content streams into operations.
//
// The parser is the first stage of page decoding. It turns the raw bytes
// of a content stream into a flat list of operators with their operands and
// the byte offset where each operation starts, which decode errors report:
//
//	ops, err := contentstream.NewParser(data).Parse()
//	if err != nil {
//	    var se *contentstream.SyntaxError
//	    if errors.As(err, &se) {
//	        log.Printf("bad content at offset %d", se.Offset)
//	    }
//	}
//
// Operands use this package's own types: [Int], [Real], [String], [Name],
// [Array], [Dict], [Bool], [Null] and [InlineImage] for BI/ID/EI sequences.
// [Number], [Numbers] and [NameValue] unpack them.
//
// [Parser.SetMaxOperations] caps the number of operations one Parse call
// accepts.
//
// Parse fails with a [*SyntaxError] wrapping [ErrTruncated],
// [ErrUnsupportedOperator], [ErrSyntax] or [ErrTooManyOperations]. Operators
// outside the PDF operator set are tolerated only inside BX/EX sections.
package contentstream
