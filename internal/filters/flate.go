package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// FlateDecode inflates zlib data and undoes any TIFF or PNG predictor
func FlateDecode(data []byte, params Params) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib header: %w", err)
	}
	defer r.Close()

	inflated, err := io.ReadAll(r)
	if err != nil && len(inflated) == 0 {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	// Truncated deflate streams are common; keep what was recovered.

	switch predictor := params.orDefault(params.Predictor, 1); {
	case predictor == 1:
		return inflated, nil
	case predictor == 2:
		return undoTIFFPredictor(inflated, params)
	case predictor >= 10 && predictor <= 15:
		return undoPNGPredictor(inflated, params)
	default:
		return nil, fmt.Errorf("unsupported predictor %d", predictor)
	}
}

func predictorGeometry(params Params) (colors, columns, bpc int) {
	return params.orDefault(params.Colors, 1),
		params.orDefault(params.Columns, 1),
		params.orDefault(params.BitsPerComponent, 8)
}

// undoTIFFPredictor reverses TIFF predictor 2 for 8-bit samples
func undoTIFFPredictor(data []byte, params Params) ([]byte, error) {
	colors, columns, bpc := predictorGeometry(params)
	if bpc != 8 {
		return nil, fmt.Errorf("TIFF predictor with %d bits per component", bpc)
	}
	stride := colors * columns
	if stride == 0 || len(data)%stride != 0 {
		return nil, fmt.Errorf("data length %d is not a multiple of row size %d", len(data), stride)
	}
	out := make([]byte, len(data))
	copy(out, data)
	for row := 0; row < len(out); row += stride {
		for i := row + colors; i < row+stride; i++ {
			out[i] += out[i-colors]
		}
	}
	return out, nil
}

// undoPNGPredictor reverses the per-row PNG filters. Each input row carries
// a leading filter-type byte.
func undoPNGPredictor(data []byte, params Params) ([]byte, error) {
	colors, columns, bpc := predictorGeometry(params)
	bpp := (colors*bpc + 7) / 8
	stride := (colors*bpc*columns + 7) / 8
	if len(data)%(stride+1) != 0 {
		return nil, fmt.Errorf("data length %d is not a multiple of row size %d", len(data), stride+1)
	}

	rows := len(data) / (stride + 1)
	out := make([]byte, rows*stride)
	prev := make([]byte, stride)
	for r := 0; r < rows; r++ {
		in := data[r*(stride+1):]
		kind, src := in[0], in[1:stride+1]
		cur := out[r*stride : (r+1)*stride]
		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			up := prev[i]
			switch kind {
			case 0:
				cur[i] = src[i]
			case 1:
				cur[i] = src[i] + left
			case 2:
				cur[i] = src[i] + up
			case 3:
				cur[i] = src[i] + byte((int(left)+int(up))/2)
			case 4:
				cur[i] = src[i] + paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("row %d: unknown PNG filter type %d", r, kind)
			}
		}
		prev = cur
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := absInt(p-int(a)), absInt(p-int(b)), absInt(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	default:
		return c
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
