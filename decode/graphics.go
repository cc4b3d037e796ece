package decode

import (
	"math"

	"github.com/rezaldwntr/pdf-backend-api/contentstream"
	"github.com/rezaldwntr/pdf-backend-api/internal/filters"
	"github.com/rezaldwntr/pdf-backend-api/model"
)

// paint consumes the current path and records its visible pieces
func (in *interpreter) paint(stroke, fill bool) {
	defer func() { in.clip = false }()
	lines, rects := in.paths.Paint(stroke, fill)

	for _, r := range rects {
		w, h := r.BBox.Width(), r.BBox.Height()
		thin := math.Min(w, h)
		switch {
		case thin <= in.cfg.ThinRectMax && math.Max(w, h) > thin:
			in.prims = append(in.prims, ruleFromRect(r.BBox, r.Color, in.nextSeq()))
		case nearWhite(r.Color):
			// Page-coloured backgrounds carry no structure.
		default:
			in.prims = append(in.prims, &model.ShadedRect{BBox: r.BBox, Fill: r.Color, Order: in.nextSeq()})
		}
	}
	for _, l := range lines {
		in.prims = append(in.prims, &model.LineSegment{
			Start: l.Start,
			End:   l.End,
			Width: l.Width,
			Color: l.Color,
			Order: in.nextSeq(),
		})
	}
}

// ruleFromRect turns a thin filled rectangle into a segment along its long
// axis.
func ruleFromRect(b model.BBox, c model.Color, seq int) *model.LineSegment {
	cx, cy := (b.X0+b.X1)/2, (b.Y0+b.Y1)/2
	if b.Width() >= b.Height() {
		return &model.LineSegment{
			Start: model.Point{X: b.X0, Y: cy},
			End:   model.Point{X: b.X1, Y: cy},
			Width: b.Height(),
			Color: c,
			Order: seq,
		}
	}
	return &model.LineSegment{
		Start: model.Point{X: cx, Y: b.Y0},
		End:   model.Point{X: cx, Y: b.Y1},
		Width: b.Width(),
		Color: c,
		Order: seq,
	}
}

func nearWhite(c model.Color) bool {
	return c.R >= 250 && c.G >= 250 && c.B >= 250
}

// drawImage places img in the unit square of the current CTM. Images whose
// data cannot be decoded are skipped without failing the page.
func (in *interpreter) drawImage(img *Image) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return
	}
	box := in.gs.CTM.TransformRect(0, 0, 1, 1)
	if box.Width() < 0.5 || box.Height() < 0.5 {
		return
	}
	data, enc, pw, ph, err := encodeImage(img, in.cfg.MaxImagePixels)
	if err != nil {
		return
	}
	in.prims = append(in.prims, &model.RasterImage{
		BBox:        box,
		Data:        data,
		Encoding:    enc,
		PixelWidth:  pw,
		PixelHeight: ph,
		Order:       in.nextSeq(),
	})
}

// encodeImage turns image data into an embeddable file. DCT and JPX data
// pass through; everything else is re-encoded as PNG.
func encodeImage(img *Image, maxPixels int) ([]byte, model.ImageEncoding, int, int, error) {
	res, err := filters.Apply(img.Data, img.Filters)
	if err != nil {
		return nil, model.EncodingUnknown, 0, 0, err
	}
	switch res.Format {
	case filters.FormatJPEG:
		return res.Data, model.EncodingJPEG, img.Width, img.Height, nil
	case filters.FormatJPEG2000:
		return res.Data, model.EncodingJPEG2000, img.Width, img.Height, nil
	}

	s := filters.Samples{
		Width:            img.Width,
		Height:           img.Height,
		BitsPerComponent: img.BitsPerComponent,
		Components:       img.Components,
		Indexed:          img.Indexed,
		Palette:          img.Palette,
		Invert:           img.Invert,
		Data:             res.Data,
	}
	if img.ImageMask {
		s.BitsPerComponent, s.Components, s.Indexed = 1, 1, false
	}
	if s.BitsPerComponent == 0 {
		s.BitsPerComponent = 8
	}
	data, w, h, err := filters.EncodePNG(s, maxPixels)
	if err != nil {
		return nil, model.EncodingUnknown, 0, 0, err
	}
	return data, model.EncodingPNG, w, h, nil
}

// inlineImage converts BI/ID/EI parameters into an Image
func inlineImage(ii *contentstream.InlineImage) *Image {
	p := ii.Params
	img := &Image{
		Width:            intParam(p, "W", "Width"),
		Height:           intParam(p, "H", "Height"),
		BitsPerComponent: intParam(p, "BPC", "BitsPerComponent"),
		Components:       1,
		Data:             ii.Data,
	}
	if v, ok := lookup(p, "IM", "ImageMask").(contentstream.Bool); ok && bool(v) {
		img.ImageMask = true
	}
	if d, ok := lookup(p, "D", "Decode").(contentstream.Array); ok && len(d) >= 2 {
		lo, _ := contentstream.Number(d[0])
		hi, _ := contentstream.Number(d[1])
		img.Invert = lo > hi
	}

	switch cs := lookup(p, "CS", "ColorSpace").(type) {
	case contentstream.Name:
		img.Components = componentsOf(string(cs))
	case contentstream.Array:
		// [/I /RGB hival <palette>]
		if len(cs) == 4 {
			if name, _ := contentstream.NameValue(cs[0]); name == "I" || name == "Indexed" {
				base, _ := contentstream.NameValue(cs[1])
				if pal, ok := cs[3].(contentstream.String); ok && componentsOf(base) == 3 {
					img.Indexed = true
					img.Palette = []byte(pal)
				}
			}
		}
	}

	var params []filters.Params
	switch dp := lookup(p, "DP", "DecodeParms").(type) {
	case contentstream.Dict:
		params = append(params, inlineParams(dp))
	case contentstream.Array:
		for _, o := range dp {
			d, _ := o.(contentstream.Dict)
			params = append(params, inlineParams(d))
		}
	}
	var names []string
	switch f := lookup(p, "F", "Filter").(type) {
	case contentstream.Name:
		names = []string{string(f)}
	case contentstream.Array:
		for _, o := range f {
			if n, ok := contentstream.NameValue(o); ok {
				names = append(names, n)
			}
		}
	}
	for i, n := range names {
		f := filters.Filter{Name: n}
		if i < len(params) {
			f.Params = params[i]
		}
		img.Filters = append(img.Filters, f)
	}
	return img
}

func componentsOf(space string) int {
	switch space {
	case "RGB", "DeviceRGB", "CalRGB":
		return 3
	case "CMYK", "DeviceCMYK":
		return 4
	default:
		return 1
	}
}

func inlineParams(d contentstream.Dict) filters.Params {
	var p filters.Params
	if d == nil {
		return p
	}
	p.Predictor = intParam(d, "Predictor")
	p.Colors = intParam(d, "Colors")
	p.BitsPerComponent = intParam(d, "BitsPerComponent")
	p.Columns = intParam(d, "Columns")
	p.K = intParam(d, "K")
	p.Rows = intParam(d, "Rows")
	if b, ok := d["BlackIs1"].(contentstream.Bool); ok {
		p.BlackIs1 = bool(b)
	}
	return p
}

func lookup(d contentstream.Dict, keys ...string) contentstream.Object {
	for _, k := range keys {
		if v, ok := d[k]; ok {
			return v
		}
	}
	return nil
}

func intParam(d contentstream.Dict, keys ...string) int {
	v, _ := contentstream.Number(lookup(d, keys...))
	return int(v)
}
