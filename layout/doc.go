// Package layout rebuilds flowing text from positioned spans.
//
// The [Engine] runs per page over the spans that table detection left
// unclaimed:
//
//   - [ColumnDetector] finds whitespace gutters that split the page into
//     bands. Spans crossing a gutter are spanning content.
//   - [GroupLines] clusters spans into lines by vertical overlap.
//   - Lines inside a band join into paragraphs by leading and edge
//     alignment; hyphenated line ends are rejoined.
//   - Short blocks set well above the body size become headings (levels
//     1 to 3). Small italic blocks under an image become captions.
//   - Reading order is band by band, top to bottom, with spanning blocks
//     cutting the page into sections.
//
// Thresholds come from [tuning.LayoutConfig]:
//
//	engine := layout.New(tuning.Default().Layout, nil)
//	res := engine.Reflow(layout.Input{Page: 1, Spans: spans, Images: images})
//
// [RunningElements] works across pages and reports repeated headers and
// footers such as page numbers.
package layout
