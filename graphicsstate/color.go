package graphicsstate

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

// ColorFromComponents converts device color components to RGB. One
// component is gray, three are RGB and four are CMYK. Other counts (pattern
// or separation spaces without a known alternate) fall back to black.
func ColorFromComponents(c []float64) model.Color {
	switch len(c) {
	case 1:
		return fromColorful(colorful.Color{R: c[0], G: c[0], B: c[0]})
	case 3:
		return fromColorful(colorful.Color{R: c[0], G: c[1], B: c[2]})
	case 4:
		r, g, b := cmykToRGB(c[0], c[1], c[2], c[3])
		return fromColorful(colorful.Color{R: r, G: g, B: b})
	default:
		return model.Black
	}
}

func fromColorful(c colorful.Color) model.Color {
	r, g, b := c.Clamped().RGB255()
	return model.Color{R: r, G: g, B: b}
}

// cmykToRGB converts CMYK to RGB using the naive device conversion
func cmykToRGB(c, m, y, k float64) (r, g, b float64) {
	r = (1 - c) * (1 - k)
	g = (1 - m) * (1 - k)
	b = (1 - y) * (1 - k)
	return r, g, b
}
