// Package graphicsstate provides PDF graphics state management.
//
// The PDF graphics state controls how content is placed on the page:
// the current transformation matrix, colors, line width and text state.
// The decoder seeds the CTM with the page normalization matrix so every
// coordinate produced here is already in top-left page space.
//
// Example usage:
//
//	gs := graphicsstate.NewGraphicsState(pageMatrix)
//	_ = gs.Save()          // q
//	gs.Transform(matrix)   // cm
//	gs.SetFont("F1", 12)   // Tf
//	_ = gs.Restore()       // Q
//
// # Paths
//
// [PathExtractor] builds paths from m/l/c/v/y/h/re and turns paint
// operators into stroked [ExtractedLine] segments and filled
// [ExtractedRectangle] values, the raw material for table ruling detection.
package graphicsstate
