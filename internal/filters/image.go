package filters

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"
)

// Samples describes decoded image samples
type Samples struct {
	Width            int
	Height           int
	BitsPerComponent int

	// Components is the number of colour components per pixel: 1 (gray or
	// palette index), 3 (RGB) or 4 (CMYK).
	Components int
	Indexed    bool
	// Palette holds RGB triples for indexed images
	Palette []byte
	// Invert flips sample values, used for stencil masks and /Decode [1 0]
	Invert bool

	Data []byte
}

// Image expands the samples into a Go image
func (s Samples) Image() (image.Image, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", s.Width, s.Height)
	}
	bpc := s.BitsPerComponent
	switch bpc {
	case 1, 2, 4, 8, 16:
	default:
		return nil, fmt.Errorf("unsupported bits per component: %d", bpc)
	}
	comps := s.Components
	if comps == 0 {
		comps = 1
	}
	stride := (s.Width*comps*bpc + 7) / 8
	if len(s.Data) < stride*s.Height {
		return nil, fmt.Errorf("insufficient data: got %d, expected %d", len(s.Data), stride*s.Height)
	}

	maxVal := 1<<bpc - 1
	sample := func(row []byte, idx int) int {
		switch bpc {
		case 8:
			return int(row[idx])
		case 16:
			return int(row[2*idx])<<8 | int(row[2*idx+1])
		default:
			bit := idx * bpc
			shift := 8 - bpc - bit%8
			return int(row[bit/8]>>shift) & maxVal
		}
	}
	scale := func(v int) uint8 {
		if s.Invert {
			v = maxVal - v
		}
		return uint8(v * 255 / maxVal)
	}

	bounds := image.Rect(0, 0, s.Width, s.Height)
	if comps == 1 && !s.Indexed {
		img := image.NewGray(bounds)
		for y := 0; y < s.Height; y++ {
			row := s.Data[y*stride:]
			for x := 0; x < s.Width; x++ {
				img.Pix[y*img.Stride+x] = scale(sample(row, x))
			}
		}
		return img, nil
	}

	img := image.NewRGBA(bounds)
	for y := 0; y < s.Height; y++ {
		row := s.Data[y*stride:]
		for x := 0; x < s.Width; x++ {
			var c color.RGBA
			switch {
			case s.Indexed:
				i := sample(row, x) * 3
				if i+2 < len(s.Palette) {
					c = color.RGBA{s.Palette[i], s.Palette[i+1], s.Palette[i+2], 255}
				} else {
					c = color.RGBA{A: 255}
				}
			case comps == 3:
				c = color.RGBA{scale(sample(row, 3*x)), scale(sample(row, 3*x+1)), scale(sample(row, 3*x+2)), 255}
			case comps == 4:
				r, g, b := color.CMYKToRGB(scale(sample(row, 4*x)), scale(sample(row, 4*x+1)), scale(sample(row, 4*x+2)), scale(sample(row, 4*x+3)))
				c = color.RGBA{r, g, b, 255}
			default:
				return nil, fmt.Errorf("unsupported component count %d", comps)
			}
			o := y*img.Stride + 4*x
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = c.R, c.G, c.B, c.A
		}
	}
	return img, nil
}

// EncodePNG converts samples to PNG. Images above maxPixels (when positive)
// are downscaled to fit first.
func EncodePNG(s Samples, maxPixels int) (data []byte, width, height int, err error) {
	img, err := s.Image()
	if err != nil {
		return nil, 0, 0, err
	}
	img = Fit(img, maxPixels)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, 0, 0, fmt.Errorf("encode PNG: %w", err)
	}
	b := img.Bounds()
	return buf.Bytes(), b.Dx(), b.Dy(), nil
}

// Fit downscales img so that its pixel count does not exceed maxPixels,
// keeping the aspect ratio.
func Fit(img image.Image, maxPixels int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxPixels <= 0 || w*h <= maxPixels {
		return img
	}
	f := math.Sqrt(float64(maxPixels) / float64(w*h))
	nw, nh := max(1, int(float64(w)*f)), max(1, int(float64(h)*f))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
