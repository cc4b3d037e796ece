// Package filters decodes the stream filters found on image data.
//
// Page content streams are decoded by the PDF object layer; this package
// covers image XObjects and inline images, whose filter chains may end in an
// image codec (DCTDecode, JPXDecode) that is kept as encoded bytes rather
// than expanded into samples.
//
//	res, err := filters.Apply(raw, []filters.Filter{{Name: "FlateDecode"}})
//	if res.Format == filters.FormatSamples {
//	    png, err := filters.EncodePNG(filters.Samples{...Data: res.Data})
//	}
//
// Abbreviated inline-image names (AHx, A85, Fl, RL, CCF, DCT) are accepted.
// LZWDecode is not supported.
package filters
