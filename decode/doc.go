// Package decode turns one PDF page into drawing primitives.
//
// A [Source] yields [RawPage] values: the page box, rotation, concatenated
// content stream bytes and the resources the content refers to. [Decoder]
// interprets the content stream with the contentstream, graphicsstate and
// font packages and returns text spans, ruling segments, raster images and
// shaded rectangles in painter's order, in page coordinates with the origin
// at the top-left corner of the rotated page.
//
// The PDF object graph is read through pdfcpu (see [OpenPDF]). Reading raw
// pages is sequential; decoding a RawPage is self-contained and safe to run
// concurrently with other pages.
//
// A page that cannot be decoded fails with a [*DecodeError] carrying the page
// number, the byte offset and operator where interpretation stopped.
package decode
