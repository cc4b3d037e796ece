package pptx

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

// emuPerPoint converts points to English Metric Units
const emuPerPoint = 12700

// Slide size limits accepted by PowerPoint, in EMU
const (
	minSlideEMU = 914400
	maxSlideEMU = 51206400
)

// borderWidth is the line width of ruled table cells, in EMU
const borderWidth = emuPerPoint

// Options configures Project
type Options struct {
	Logger *slog.Logger
}

// Tree is a projected presentation ready to be written
type Tree struct {
	Width  int64 // slide width in EMU
	Height int64 // slide height in EMU
	Slides []*Slide

	Title  string
	Author string
}

// Slide is one projected page
type Slide struct {
	Page  int
	XML   *slideXML
	Media []media
}

// media is an image part referenced by a slide
type media struct {
	RelID string
	Name  string // file name under ppt/media/
	Data  []byte
	Type  model.ImageEncoding
}

// projector holds the state of one projection
type projector struct {
	logger *slog.Logger
	tree   *Tree
	images int // media counter across the package
}

// slideProjector maps page coordinates onto one slide
type slideProjector struct {
	*projector
	page    *model.PageModel
	slide   *Slide
	scale   float64 // EMU per point
	offX    float64
	offY    float64
	shapeID int
}

// Project converts every page of doc into a slide. The slide size comes
// from the first page; later pages of a different size are scaled to fit
// and centred. The document is not modified.
func Project(doc *model.Document, opts Options) (*Tree, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	width, height := 720.0, 540.0
	if len(doc.Pages) > 0 {
		width, height = doc.Pages[0].Width, doc.Pages[0].Height
	}
	p := &projector{
		logger: logger,
		tree: &Tree{
			Width:  slideEMU(width),
			Height: slideEMU(height),
			Title:  doc.Metadata.Title,
			Author: doc.Metadata.Author,
		},
	}
	for _, page := range doc.Pages {
		slide, err := p.projectPage(page)
		if err != nil {
			return nil, err
		}
		p.tree.Slides = append(p.tree.Slides, slide)
	}
	return p.tree, nil
}

func slideEMU(pt float64) int64 {
	return min(max(int64(math.Round(pt*emuPerPoint)), minSlideEMU), maxSlideEMU)
}

func (p *projector) projectPage(page *model.PageModel) (*Slide, error) {
	slide := &Slide{Page: page.Number, XML: newSlideXML()}
	sw, sh := float64(p.tree.Width), float64(p.tree.Height)
	scale := emuPerPoint * 1.0
	if page.Width > 0 && page.Height > 0 {
		scale = min(sw/page.Width, sh/page.Height)
	}
	sp := &slideProjector{
		projector: p,
		page:      page,
		slide:     slide,
		scale:     scale,
		offX:      (sw - page.Width*scale) / 2,
		offY:      (sh - page.Height*scale) / 2,
		shapeID:   1,
	}

	if img := rasterFallback(page); img != nil {
		full := model.BBox{X0: 0, Y0: 0, X1: sw, Y1: sh}
		if pic := sp.picture(img, xfrmOf(full)); pic != nil {
			sp.add(pic)
		}
		p.logger.Debug("slide uses page image", slog.Int("page", page.Number))
		return slide, nil
	}

	for _, elem := range page.Elements {
		switch e := elem.(type) {
		case *model.Paragraph:
			sp.add(sp.textBox(e))
		case *model.TableRegion:
			frame, err := sp.table(e)
			if err != nil {
				return nil, err
			}
			sp.add(frame)
		case *model.RasterImage:
			if pic := sp.picture(e, sp.xfrm(e.BBox)); pic != nil {
				sp.add(pic)
			}
		}
	}
	return slide, nil
}

// rasterFallback returns the largest image of a page that has no text and
// no tables
func rasterFallback(page *model.PageModel) *model.RasterImage {
	if len(page.Paragraphs()) > 0 || len(page.Tables()) > 0 {
		return nil
	}
	var best *model.RasterImage
	for _, img := range page.Images() {
		if best == nil || img.BBox.Area() > best.BBox.Area() {
			best = img
		}
	}
	return best
}

func (sp *slideProjector) add(shape any) {
	sp.slide.XML.CSld.SpTree.Shapes = append(sp.slide.XML.CSld.SpTree.Shapes, shape)
}

func (sp *slideProjector) nextID() int {
	sp.shapeID++
	return sp.shapeID
}

// xfrm converts a page box into slide coordinates
func (sp *slideProjector) xfrm(b model.BBox) xfrmXML {
	return xfrmXML{
		Off: offXML{X: int64(math.Round(sp.offX + b.X0*sp.scale)), Y: int64(math.Round(sp.offY + b.Y0*sp.scale))},
		Ext: extXML{Cx: int64(math.Round(b.Width() * sp.scale)), Cy: int64(math.Round(b.Height() * sp.scale))},
	}
}

// xfrmOf wraps a box already in EMU
func xfrmOf(b model.BBox) xfrmXML {
	return xfrmXML{
		Off: offXML{X: int64(b.X0), Y: int64(b.Y0)},
		Ext: extXML{Cx: int64(b.Width()), Cy: int64(b.Height())},
	}
}

// fontSize converts a point size to hundredths of a point on the slide
func (sp *slideProjector) fontSize(pt float64) int {
	if pt <= 0 {
		return 0
	}
	return min(max(int(math.Round(pt*100*sp.scale/emuPerPoint)), 100), 400000)
}

func (sp *slideProjector) textBox(para *model.Paragraph) *spXML {
	id := sp.nextID()
	zero := int64(0)
	shape := &spXML{
		NvSpPr: nvSpPrXML{
			CNvPr:   cNvPrXML{ID: id, Name: fmt.Sprintf("TextBox %d", id)},
			CNvSpPr: cNvSpPrXML{TxBox: "1"},
		},
		SpPr: spPrXML{Xfrm: sp.xfrm(para.BBox), Geom: prstGeomXML{Prst: "rect"}, NoFill: &struct{}{}},
		TxBody: &txBodyXML{
			BodyPr: bodyPrXML{Wrap: "square", LIns: &zero, TIns: &zero, RIns: &zero, BIns: &zero},
		},
	}
	out := paragraphXML{}
	if algn := alignment(para.Alignment); algn != "" {
		out.PPr = &pPrXML{Algn: algn}
	}
	for _, r := range para.Runs {
		out.Runs = append(out.Runs, runXML{RPr: sp.runProps(r.FontFamily, r.FontSize, r.Bold, r.Italic, r.Color), Text: r.Text})
	}
	shape.TxBody.Paragraphs = []paragraphXML{out}
	return shape
}

func alignment(a model.Alignment) string {
	switch a {
	case model.AlignCenter:
		return "ctr"
	case model.AlignRight:
		return "r"
	case model.AlignJustify:
		return "just"
	}
	return ""
}

func (sp *slideProjector) runProps(family string, size float64, bold, italic bool, color model.Color) rPrXML {
	rpr := rPrXML{Sz: sp.fontSize(size)}
	if bold {
		rpr.B = "1"
	}
	if italic {
		rpr.I = "1"
	}
	if color != model.Black {
		rpr.Fill = &solidFill{Color: srgbClrXML{Val: color.Hex()}}
	}
	if family != "" {
		rpr.Latin = &typefaceXML{Typeface: family}
	}
	return rpr
}

// picture embeds an image. Encodings PowerPoint cannot display are
// dropped with a warning.
func (sp *slideProjector) picture(img *model.RasterImage, at xfrmXML) *picXML {
	if img.Encoding == model.EncodingJPEG2000 || img.Encoding == model.EncodingUnknown || len(img.Data) == 0 {
		sp.logger.Warn("image not embedded",
			slog.Int("page", sp.page.Number),
			slog.String("encoding", img.Encoding.String()))
		return nil
	}
	sp.images++
	m := media{
		RelID: fmt.Sprintf("rId%d", len(sp.slide.Media)+2), // rId1 is the layout
		Name:  fmt.Sprintf("image%d.%s", sp.images, img.Encoding.Extension()),
		Data:  img.Data,
		Type:  img.Encoding,
	}
	sp.slide.Media = append(sp.slide.Media, m)

	id := sp.nextID()
	return &picXML{
		NvPicPr:  nvPicPrXML{CNvPr: cNvPrXML{ID: id, Name: fmt.Sprintf("Picture %d", id)}},
		BlipFill: blipFillXML{Blip: blipXML{Embed: m.RelID}},
		SpPr:     spPrXML{Xfrm: at, Geom: prstGeomXML{Prst: "rect"}},
	}
}

// table converts a table region into a graphic frame. Covered slots are
// written as hMerge or vMerge cells as the table grid requires.
func (sp *slideProjector) table(t *model.TableRegion) (*graphicFrameXML, error) {
	if err := t.ValidateMerges("pptx"); err != nil {
		return nil, err
	}
	id := sp.nextID()
	frame := &graphicFrameXML{}
	frame.NvPr.CNvPr = cNvPrXML{ID: id, Name: fmt.Sprintf("Table %d", id)}
	frame.NvPr.CNvGraphicFramePr.Locks.NoGrp = "1"
	x := sp.xfrm(t.BBox)
	frame.Xfrm = frameXfrmXML{Off: x.Off, Ext: x.Ext}
	frame.Graphic.Data.URI = nsTable

	tbl := &frame.Graphic.Data.Table
	if t.HeaderRowCount > 0 {
		tbl.TblPr.FirstRow = "1"
	}
	for _, w := range t.ColumnWidths() {
		tbl.Grid = append(tbl.Grid, gridCol{W: int64(math.Round(w * sp.scale))})
	}
	heights := t.RowHeights()
	for i, row := range t.Rows {
		tr := trXML{H: int64(math.Round(heights[i] * sp.scale))}
		for j := range row {
			r, c := t.Owner(i, j)
			tc := tcXML{TxBody: txBodyXML{Paragraphs: []paragraphXML{{}}}}
			if r != i || c != j {
				if c != j {
					tc.HMerge = "1"
				}
				if r != i {
					tc.VMerge = "1"
				}
				tr.Cells = append(tr.Cells, tc)
				continue
			}
			cell := row[j]
			if cs := max(cell.ColSpan, 1); cs > 1 {
				tc.GridSpan = cs
			}
			if rs := max(cell.RowSpan, 1); rs > 1 {
				tc.RowSpan = rs
			}
			if cell.Text != "" {
				bold := cell.Bold || i < t.HeaderRowCount
				tc.TxBody.Paragraphs[0].Runs = []runXML{{
					RPr:  sp.runProps("", cell.FontSize, bold, false, model.Black),
					Text: cell.Text,
				}}
			}
			if t.Ruled {
				line := func() *lineXML {
					return &lineXML{W: borderWidth, Fill: &solidFill{Color: srgbClrXML{Val: model.Black.Hex()}}}
				}
				tc.TcPr = tcPrXML{LnL: line(), LnR: line(), LnT: line(), LnB: line()}
			}
			if cell.Shaded {
				tc.TcPr.Fill = &solidFill{Color: srgbClrXML{Val: cell.Fill.Hex()}}
			}
			tr.Cells = append(tr.Cells, tc)
		}
		tbl.Rows = append(tbl.Rows, tr)
	}
	return frame, nil
}

func newSlideXML() *slideXML {
	s := &slideXML{A: nsDrawingML, R: nsRelationships, P: nsPresentationML}
	s.CSld.SpTree.NvGrpSpPr.CNvPr = cNvPrXML{ID: 1, Name: ""}
	return s
}
