package docx

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

// defaultBodySize is used when the document has no body text
const defaultBodySize = 11.0

// pageMargin is the margin of every generated section, in points
const pageMargin = 72.0

// Options configures Project
type Options struct {
	Logger *slog.Logger
}

// Tree is a projected Word document ready to be written
type Tree struct {
	Document *documentXML
	Styles   *stylesXML
	Media    []media

	Title   string
	Author  string
	Subject string
	Created time.Time
}

// projector holds the state of one projection
type projector struct {
	doc    *model.Document
	logger *slog.Logger
	tree   *Tree
	nextID int // drawing object IDs
}

// Project converts a document into a Word tree. The document is not
// modified.
func Project(doc *model.Document, opts Options) (*Tree, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := &projector{
		doc:    doc,
		logger: logger,
		tree: &Tree{
			Document: newDocumentXML(),
			Styles:   defaultStyles(bodySize(doc)),
			Title:    doc.Metadata.Title,
			Author:   doc.Metadata.Author,
			Subject:  doc.Metadata.Subject,
			Created:  doc.Metadata.CreatedAt,
		},
	}
	if err := p.project(); err != nil {
		return nil, err
	}
	return p.tree, nil
}

func (p *projector) project() error {
	body := &p.tree.Document.Body
	var section *model.PageModel
	for _, page := range p.doc.Pages {
		switch {
		case section == nil:
			section = page
		case !sameGeometry(section, page):
			// a sectPr in the last paragraph closes the section and starts
			// the next one on a new page
			body.Items = append(body.Items, &paragraphXML{PPr: &pPrXML{SectPr: sectionProps(section)}})
			section = page
		default:
			body.Items = append(body.Items, &paragraphXML{Runs: []*runXML{{Break: &breakXML{Type: "page"}}}})
		}

		for _, elem := range page.Elements {
			item, err := p.element(page, elem)
			if err != nil {
				return err
			}
			if item != nil {
				body.Items = append(body.Items, item)
			}
		}
	}
	if section != nil {
		body.SectPr = sectionProps(section)
	} else {
		body.SectPr = sectionProps(model.NewPageModel(0, 612, 792))
	}
	return nil
}

// element projects one page element. It returns nil for elements that
// produce no output.
func (p *projector) element(page *model.PageModel, elem model.Element) (any, error) {
	switch e := elem.(type) {
	case *model.Paragraph:
		return p.paragraph(e), nil
	case *model.TableRegion:
		ref := model.TableRef{Page: page.Number, Table: tableIndex(page, e)}
		t := e
		if lt, continued := p.doc.LogicalTableAt(ref); lt != nil {
			if continued {
				return nil, nil
			}
			t = lt.Table
		}
		tbl, err := p.projectTable(t)
		if err != nil {
			return nil, err
		}
		return tbl, nil
	case *model.RasterImage:
		if para := p.image(page, e); para != nil {
			return para, nil
		}
	}
	return nil, nil
}

func tableIndex(page *model.PageModel, t *model.TableRegion) int {
	for i, other := range page.Tables() {
		if other == t {
			return i
		}
	}
	return -1
}

func (p *projector) paragraph(para *model.Paragraph) *paragraphXML {
	out := &paragraphXML{PPr: &pPrXML{}}
	switch para.Role {
	case model.RoleHeading:
		out.PPr.Style = &valXML{Val: headingStyle(para.Level)}
	case model.RoleCaption:
		out.PPr.Style = &valXML{Val: styleCaption}
	}
	switch para.Alignment {
	case model.AlignCenter:
		out.PPr.Jc = &valXML{Val: "center"}
	case model.AlignRight:
		out.PPr.Jc = &valXML{Val: "right"}
	case model.AlignJustify:
		out.PPr.Jc = &valXML{Val: "both"}
	}
	for _, r := range para.Runs {
		out.Runs = append(out.Runs, textRun(r.Text, runProps(r)))
	}
	return out
}

func runProps(r model.Run) *rPrXML {
	rpr := &rPrXML{}
	if r.FontFamily != "" {
		rpr.Fonts = &fontsXML{ASCII: r.FontFamily, HAnsi: r.FontFamily, CS: r.FontFamily}
	}
	if r.Bold {
		rpr.Bold = &onXML{}
	}
	if r.Italic {
		rpr.Italic = &onXML{}
	}
	if r.Color != model.Black {
		rpr.Color = &valXML{Val: r.Color.Hex()}
	}
	if r.FontSize > 0 {
		rpr.Size = &valXML{Val: strconv.Itoa(int(r.FontSize*2 + 0.5))}
	}
	return rpr
}

// image embeds a picture in its own paragraph. Encodings Word cannot
// display are dropped with a warning.
func (p *projector) image(page *model.PageModel, img *model.RasterImage) *paragraphXML {
	if img.Encoding == model.EncodingJPEG2000 || img.Encoding == model.EncodingUnknown || len(img.Data) == 0 {
		p.logger.Warn("image not embedded",
			slog.Int("page", page.Number),
			slog.String("encoding", img.Encoding.String()))
		return nil
	}
	p.nextID++
	m := media{
		RelID: fmt.Sprintf("rIdImg%d", p.nextID),
		Name:  fmt.Sprintf("image%d.%s", p.nextID, img.Encoding.Extension()),
		Data:  img.Data,
		Type:  img.Encoding,
	}
	p.tree.Media = append(p.tree.Media, m)
	maxWidth := page.Width - 2*pageMargin
	return &paragraphXML{Runs: []*runXML{{Drawing: picture(img, m.RelID, p.nextID, maxWidth)}}}
}

func sameGeometry(a, b *model.PageModel) bool {
	return a.Landscape() == b.Landscape() &&
		math.Abs(a.Width-b.Width) < 1 && math.Abs(a.Height-b.Height) < 1
}

func sectionProps(page *model.PageModel) *sectPrXML {
	s := &sectPrXML{
		PgSz: pgSzXML{W: twips(page.Width), H: twips(page.Height)},
		PgMar: pgMarXML{
			Top: twips(pageMargin), Right: twips(pageMargin),
			Bottom: twips(pageMargin), Left: twips(pageMargin),
			Header: twips(pageMargin / 2), Footer: twips(pageMargin / 2),
		},
	}
	if page.Landscape() {
		s.PgSz.Orient = "landscape"
	}
	return s
}

// bodySize is the most common font size of body paragraphs, rounded to
// half a point
func bodySize(doc *model.Document) float64 {
	counts := map[float64]int{}
	for _, page := range doc.Pages {
		for _, para := range page.Paragraphs() {
			if para.Role != model.RoleBody {
				continue
			}
			for _, r := range para.Runs {
				if r.FontSize > 0 {
					counts[math.Round(r.FontSize*2)/2] += len([]rune(r.Text))
				}
			}
		}
	}
	best, bestN := defaultBodySize, 0
	for size, n := range counts {
		if n > bestN || (n == bestN && size < best) {
			best, bestN = size, n
		}
	}
	return best
}
