// Package model provides the intermediate representation shared by every
// stage of the conversion pipeline.
//
// # Primitives
//
// The page decoder produces [Primitive] values in painter's order: [TextSpan],
// [LineSegment], [RasterImage] and [ShadedRect]. Coordinates are page points
// with the origin at the top-left corner and Y increasing downward.
//
// # Elements
//
// Structured page content implements the [Element] interface:
//
//   - [Paragraph] - styled runs with a semantic [Role]
//   - [TableRegion] - a grid of [Cell] values with a header row count
//   - [RasterImage] - embedded images
//
// A [PageModel] owns the elements of one page. A [Document] owns all pages,
// the cross-page [Continuation] relations, the merged [LogicalTable] values
// and the warnings collected during conversion.
//
// # Errors
//
// [ProjectionError] is returned by format projectors when a target format
// cannot represent an element. [Warning] records problems that were
// contained, such as skipped pages.
package model
