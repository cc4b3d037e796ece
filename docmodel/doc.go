// Package docmodel assembles a [model.Document] from a PDF source.
//
// A [Builder] reads raw pages one at a time (the PDF object graph is not
// safe for concurrent access) and fans the per-page work out to a bounded
// worker group: content decoding, table detection, header classification
// and layout reflow. Once every page is built it walks the pages in order
// and links tables that continue across a page break into logical tables.
//
// Per-page failures never fail the document. A page that cannot be decoded
// is skipped with a warning; only a document with nothing extractable
// returns [ErrNoContent].
package docmodel
