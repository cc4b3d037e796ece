package decode_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rezaldwntr/pdf-backend-api/contentstream"
	"github.com/rezaldwntr/pdf-backend-api/decode"
	"github.com/rezaldwntr/pdf-backend-api/decode/decodetest"
	"github.com/rezaldwntr/pdf-backend-api/internal/filters"
	"github.com/rezaldwntr/pdf-backend-api/model"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

func decodeContent(t *testing.T, content string) *decode.Page {
	t.Helper()
	raw := decodetest.NewPage(612, 792).Raw(content).Build(1)
	page, err := decode.New(tuning.Default().Decode, nil).Decode(context.Background(), raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return page
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

// ============================================================================
// Text
// ============================================================================

func TestDecodeTextSpan(t *testing.T) {
	page := decodeContent(t, "BT /F1 12 Tf 72 700 Td (Hello World) Tj ET")

	spans := model.SpansOf(page.Primitives)
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	s := spans[0]
	if s.Text != "Hello World" {
		t.Errorf("Text = %q, want %q", s.Text, "Hello World")
	}
	if !near(s.BBox.X0, 72) {
		t.Errorf("X0 = %v, want 72", s.BBox.X0)
	}
	// Helvetica advance for "Hello World" is 5.167 em
	if !near(s.BBox.X1, 72+5.167*12) {
		t.Errorf("X1 = %v, want %v", s.BBox.X1, 72+5.167*12)
	}
	if !near(s.Baseline, 92) {
		t.Errorf("Baseline = %v, want 92", s.Baseline)
	}
	if s.BBox.Y0 >= s.Baseline || s.BBox.Y1 <= s.Baseline {
		t.Errorf("BBox %+v does not straddle baseline %v", s.BBox, s.Baseline)
	}
	if !near(s.FontSize, 12) || s.FontFamily != "Helvetica" || s.Bold || s.Italic {
		t.Errorf("style = %v %q bold=%v italic=%v", s.FontSize, s.FontFamily, s.Bold, s.Italic)
	}
}

func TestDecodeSpanSplitting(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "wide gap splits",
			content: "BT /F1 10 Tf 72 700 Td (Name) Tj 100 0 Td (Qty) Tj ET",
			want:    []string{"Name", "Qty"},
		},
		{
			name:    "tight words join",
			content: "BT /F1 10 Tf 72 700 Td (Unit) Tj 22 0 Td (price) Tj ET",
			want:    []string{"Unit price"},
		},
		{
			name:    "large kern splits",
			content: "BT /F1 12 Tf 72 700 Td [(Hel) -2000 (lo)] TJ ET",
			want:    []string{"Hel", "lo"},
		},
		{
			name:    "small kern stays",
			content: "BT /F1 12 Tf 72 700 Td [(W) 80 (ave)] TJ ET",
			want:    []string{"Wave"},
		},
		{
			name:    "style change splits",
			content: "BT /F2 12 Tf 72 700 Td (Bold) Tj /F1 12 Tf ( plain) Tj ET",
			want:    []string{"Bold", "plain"},
		},
		{
			name:    "baseline change splits",
			content: "BT /F1 12 Tf 72 700 Td (one) Tj 0 -14 Td (two) Tj ET",
			want:    []string{"one", "two"},
		},
		{
			name:    "invisible text dropped",
			content: "BT /F1 12 Tf 3 Tr 72 700 Td (hidden) Tj ET",
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := decodeContent(t, tt.content)
			var got []string
			for _, s := range model.SpansOf(page.Primitives) {
				got = append(got, s.Text)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("spans = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeBoldAndItalicFonts(t *testing.T) {
	page := decodeContent(t, "BT /F2 12 Tf 72 700 Td (B) Tj ET BT /F3 12 Tf 72 600 Td (I) Tj ET")
	spans := model.SpansOf(page.Primitives)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if !spans[0].Bold || spans[0].Italic {
		t.Errorf("first span bold=%v italic=%v, want bold only", spans[0].Bold, spans[0].Italic)
	}
	if spans[1].Bold || !spans[1].Italic {
		t.Errorf("second span bold=%v italic=%v, want italic only", spans[1].Bold, spans[1].Italic)
	}
}

func TestDecodeTextMatrixScaling(t *testing.T) {
	// 1pt font scaled by the text matrix renders at 18pt.
	page := decodeContent(t, "BT /F1 1 Tf 18 0 0 18 100 500 Tm (Big) Tj ET")
	spans := model.SpansOf(page.Primitives)
	if len(spans) != 1 || !near(spans[0].FontSize, 18) {
		t.Fatalf("spans = %+v, want one 18pt span", spans)
	}
	if !near(spans[0].Baseline, 292) {
		t.Errorf("Baseline = %v, want 292", spans[0].Baseline)
	}
}

// ============================================================================
// Graphics
// ============================================================================

func TestDecodeRulingAndShading(t *testing.T) {
	page := decodeContent(t, strings.Join([]string{
		"1 w 72 700 m 540 700 l S",
		"72 600 468 0.5 re f",
		"0.8 0.8 0.8 rg 72 500 100 20 re f",
		"1 1 1 rg 0 0 612 792 re f",
	}, "\n"))

	lines := model.LinesOf(page.Primitives)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !near(lines[0].Start.Y, 92) || !near(lines[0].Start.X, 72) || !near(lines[0].End.X, 540) {
		t.Errorf("stroked line = %+v", lines[0])
	}
	if !lines[1].IsHorizontal(0.5) || !near(lines[1].Width, 0.5) || !near(lines[1].Start.Y, 191.75) {
		t.Errorf("thin rectangle line = %+v", lines[1])
	}

	shades := model.ShadesOf(page.Primitives)
	if len(shades) != 1 {
		t.Fatalf("got %d shaded rects, want 1 (white fill is ignored)", len(shades))
	}
	if shades[0].Fill != (model.Color{R: 204, G: 204, B: 204}) {
		t.Errorf("Fill = %+v, want 204 gray", shades[0].Fill)
	}
	want := model.BBox{X0: 72, Y0: 272, X1: 172, Y1: 292}
	if !near(shades[0].BBox.X0, want.X0) || !near(shades[0].BBox.Y0, want.Y0) || !near(shades[0].BBox.Y1, want.Y1) {
		t.Errorf("BBox = %+v, want %+v", shades[0].BBox, want)
	}
}

func TestDecodePaintersOrder(t *testing.T) {
	page := decodeContent(t, "0.9 g 50 50 200 200 re f BT /F1 12 Tf 72 100 Td (Over) Tj ET 0 G 60 60 m 200 60 l S")
	var kinds []model.PrimitiveKind
	prev := 0
	for _, p := range page.Primitives {
		if p.Seq() <= prev {
			t.Errorf("Seq %d not increasing after %d", p.Seq(), prev)
		}
		prev = p.Seq()
		kinds = append(kinds, p.Kind())
	}
	want := []model.PrimitiveKind{model.KindShade, model.KindText, model.KindLine}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestDecodeFormXObject(t *testing.T) {
	raw := decodetest.NewPage(612, 792).Raw("q 1 0 0 1 100 0 cm /Fm1 Do Q").Build(1)
	raw.Resources.XObjects["Fm1"] = &decode.XObject{Form: &decode.Form{
		Contents: []byte("BT /F1 10 Tf 0 700 Td (inside) Tj ET"),
		Matrix:   model.Translate(20, 0),
	}}
	page, err := decode.New(tuning.Default().Decode, nil).Decode(context.Background(), raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	spans := model.SpansOf(page.Primitives)
	if len(spans) != 1 || spans[0].Text != "inside" {
		t.Fatalf("spans = %+v, want one span from the form", spans)
	}
	if !near(spans[0].BBox.X0, 120) {
		t.Errorf("X0 = %v, want 120 (form matrix then CTM)", spans[0].BBox.X0)
	}
}

func TestDecodeSelfReferencingForm(t *testing.T) {
	raw := decodetest.NewPage(612, 792).Raw("/Fm1 Do").Build(1)
	form := &decode.XObject{Form: &decode.Form{Contents: []byte("0 0 m 10 0 l S /Fm1 Do"), Matrix: model.Identity()}}
	raw.Resources.XObjects["Fm1"] = form

	cfg := tuning.Default().Decode
	cfg.MaxFormDepth = 4
	page, err := decode.New(cfg, nil).Decode(context.Background(), raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := len(model.LinesOf(page.Primitives)); got != 4 {
		t.Errorf("got %d lines, want 4 (one per allowed nesting level)", got)
	}
}

func TestDecodeImages(t *testing.T) {
	t.Run("xobject", func(t *testing.T) {
		raw := decodetest.NewPage(612, 792).Image(72, 100, 200, 100).Build(1)
		page, err := decode.New(tuning.Default().Decode, nil).Decode(context.Background(), raw)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		imgs := model.ImagesOf(page.Primitives)
		if len(imgs) != 1 {
			t.Fatalf("got %d images, want 1", len(imgs))
		}
		img := imgs[0]
		if img.Encoding != model.EncodingPNG || img.PixelWidth != 2 || img.PixelHeight != 2 {
			t.Errorf("image = %v %dx%d", img.Encoding, img.PixelWidth, img.PixelHeight)
		}
		if !near(img.BBox.X0, 72) || !near(img.BBox.Y0, 100) || !near(img.BBox.X1, 272) || !near(img.BBox.Y1, 200) {
			t.Errorf("BBox = %+v", img.BBox)
		}
	})

	t.Run("inline", func(t *testing.T) {
		page := decodeContent(t, "q 100 0 0 50 72 600 cm BI /W 2 /H 2 /CS /G /BPC 8 ID \x00\xff\xff\x00 EI Q")
		imgs := model.ImagesOf(page.Primitives)
		if len(imgs) != 1 {
			t.Fatalf("got %d images, want 1", len(imgs))
		}
		if !near(imgs[0].BBox.Y0, 142) || !near(imgs[0].BBox.Y1, 192) {
			t.Errorf("BBox = %+v", imgs[0].BBox)
		}
	})

	t.Run("jpeg passes through", func(t *testing.T) {
		raw := decodetest.NewPage(612, 792).Raw("q 10 0 0 10 0 0 cm /J Do Q").Build(1)
		jpeg := []byte{0xFF, 0xD8, 0xFF, 0xD9}
		raw.Resources.XObjects["J"] = &decode.XObject{Image: &decode.Image{
			Width: 8, Height: 8, BitsPerComponent: 8, Components: 3, Data: jpeg,
			Filters: []filters.Filter{{Name: "DCTDecode"}},
		}}
		page, err := decode.New(tuning.Default().Decode, nil).Decode(context.Background(), raw)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		imgs := model.ImagesOf(page.Primitives)
		if len(imgs) != 1 || imgs[0].Encoding != model.EncodingJPEG || string(imgs[0].Data) != string(jpeg) {
			t.Errorf("images = %+v, want the JPEG bytes untouched", imgs)
		}
	})
}

// ============================================================================
// Page geometry
// ============================================================================

func TestRotatedPage(t *testing.T) {
	raw := decodetest.NewPage(612, 792).Rotate(90).
		Raw("1 w 0 0 m 0 792 l S").
		Build(1)
	page, err := decode.New(tuning.Default().Decode, nil).Decode(context.Background(), raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if page.Width != 792 || page.Height != 612 || page.Rotation != 90 {
		t.Errorf("page = %vx%v rot %d, want 792x612 rot 90", page.Width, page.Height, page.Rotation)
	}
	// The left edge of the unrotated page becomes the top edge.
	lines := model.LinesOf(page.Primitives)
	if len(lines) != 1 || !lines[0].IsHorizontal(0.5) || !near(lines[0].Start.Y, 0) {
		t.Errorf("lines = %+v, want one horizontal line at y=0", lines)
	}
}

func TestNormalization(t *testing.T) {
	box := model.BBox{X0: 0, Y0: 0, X1: 600, Y1: 800}
	tests := []struct {
		rotate int
		in     model.Point
		want   model.Point
	}{
		{0, model.Point{X: 0, Y: 800}, model.Point{X: 0, Y: 0}},
		{0, model.Point{X: 600, Y: 0}, model.Point{X: 600, Y: 800}},
		{90, model.Point{X: 0, Y: 800}, model.Point{X: 800, Y: 0}},
		{90, model.Point{X: 0, Y: 0}, model.Point{X: 0, Y: 0}},
		{180, model.Point{X: 0, Y: 800}, model.Point{X: 600, Y: 800}},
		{270, model.Point{X: 0, Y: 800}, model.Point{X: 0, Y: 600}},
		{-90, model.Point{X: 600, Y: 800}, model.Point{X: 0, Y: 0}},
	}
	for _, tt := range tests {
		p := &decode.RawPage{Box: box, Rotate: tt.rotate}
		got := p.Normalization().Transform(tt.in)
		if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
			t.Errorf("rotate %d: %v -> %v, want %v", tt.rotate, tt.in, got, tt.want)
		}
	}
}

// ============================================================================
// Failures
// ============================================================================

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		cfg     func(*tuning.DecodeConfig)
		want    error
	}{
		{
			name:    "truncated mid operator",
			content: "BT /F1 12 Tf 72 700 Td (Hello",
			want:    contentstream.ErrTruncated,
		},
		{
			name:    "dangling operands",
			content: "BT /F1 12 Tf 72 700",
			want:    contentstream.ErrTruncated,
		},
		{
			name:    "unknown operator",
			content: "72 700 frobnicate",
			want:    contentstream.ErrUnsupportedOperator,
		},
		{
			name:    "operation budget",
			content: strings.Repeat("q Q ", 20),
			cfg:     func(c *tuning.DecodeConfig) { c.MaxOperations = 10 },
			want:    contentstream.ErrTooManyOperations,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tuning.Default().Decode
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			raw := decodetest.NewPage(612, 792).Raw(tt.content).Build(7)
			_, err := decode.New(cfg, nil).Decode(context.Background(), raw)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.want)
			}
			var de *decode.DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("Decode() error %T is not a *DecodeError", err)
			}
			if de.Page != 7 {
				t.Errorf("DecodeError.Page = %d, want 7", de.Page)
			}
		})
	}
}

func TestDecodeCompatibilitySection(t *testing.T) {
	page := decodeContent(t, "BX 1 2 frobnicate EX BT /F1 12 Tf 72 700 Td (ok) Tj ET")
	if spans := model.SpansOf(page.Primitives); len(spans) != 1 {
		t.Errorf("got %d spans, want 1", len(spans))
	}
}

func TestDecodeTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	raw := decodetest.NewPage(612, 792).Raw(strings.Repeat("q Q ", 300)).Build(1)
	_, err := decode.New(tuning.Default().Decode, nil).Decode(ctx, raw)
	if !errors.Is(err, decode.ErrPageTimeout) {
		t.Errorf("Decode() error = %v, want ErrPageTimeout", err)
	}
}

func TestDecodeErrorMessage(t *testing.T) {
	err := &decode.DecodeError{Page: 3, Offset: 12, Operator: "Tj", Err: contentstream.ErrTruncated}
	if got := err.Error(); !strings.Contains(got, "page 3") || !strings.Contains(got, `"Tj"`) {
		t.Errorf("Error() = %q", got)
	}
}
