package docx

import (
	"encoding/xml"
	"strconv"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

// tableXML is <w:tbl>
type tableXML struct {
	XMLName xml.Name   `xml:"w:tbl"`
	TblPr   tblPrXML   `xml:"w:tblPr"`
	Grid    tblGridXML `xml:"w:tblGrid"`
	Rows    []trXML    `xml:"w:tr"`
}

type tblPrXML struct {
	Style   *valXML        `xml:"w:tblStyle"`
	Width   *widthXML      `xml:"w:tblW"`
	Borders *tblBordersXML `xml:"w:tblBorders"`
	Layout  *tblLayoutXML  `xml:"w:tblLayout"`
}

type tblLayoutXML struct {
	Type string `xml:"w:type,attr"`
}

type tblBordersXML struct {
	Top     *borderXML `xml:"w:top"`
	Left    *borderXML `xml:"w:left"`
	Bottom  *borderXML `xml:"w:bottom"`
	Right   *borderXML `xml:"w:right"`
	InsideH *borderXML `xml:"w:insideH"`
	InsideV *borderXML `xml:"w:insideV"`
}

type borderXML struct {
	Val   string `xml:"w:val,attr"`
	Size  int    `xml:"w:sz,attr"`
	Color string `xml:"w:color,attr"`
}

type tblGridXML struct {
	Cols []widthValXML `xml:"w:gridCol"`
}

type widthValXML struct {
	W int `xml:"w:w,attr"`
}

// widthXML is a measurement in twips (type dxa)
type widthXML struct {
	W    int    `xml:"w:w,attr"`
	Type string `xml:"w:type,attr"`
}

// trXML is a table row. Header rows repeat on every page.
type trXML struct {
	TrPr  *trPrXML `xml:"w:trPr"`
	Cells []tcXML  `xml:"w:tc"`
}

type trPrXML struct {
	TblHeader *onXML `xml:"w:tblHeader"`
}

// tcXML is a table cell. Every cell needs at least one paragraph.
type tcXML struct {
	TcPr       tcPrXML        `xml:"w:tcPr"`
	Paragraphs []paragraphXML `xml:"w:p"`
}

type tcPrXML struct {
	Width    *widthXML `xml:"w:tcW"`
	GridSpan *valXML   `xml:"w:gridSpan"`
	VMerge   *valXML   `xml:"w:vMerge"`
	Shd      *shdXML   `xml:"w:shd"`
}

type shdXML struct {
	Val   string `xml:"w:val,attr"`
	Color string `xml:"w:color,attr"`
	Fill  string `xml:"w:fill,attr"`
}

// twips converts points to twentieths of a point
func twips(pt float64) int {
	return int(pt*20 + 0.5)
}

// projectTable converts a table region. Horizontal spans become gridSpan;
// vertical spans become a vMerge restart on the owning cell and vMerge
// continuation cells below it.
func (p *projector) projectTable(t *model.TableRegion) (*tableXML, error) {
	if err := t.ValidateMerges("docx"); err != nil {
		return nil, err
	}

	widths := t.ColumnWidths()
	tbl := &tableXML{TblPr: tblPrXML{
		Style:  &valXML{Val: styleTableGrid},
		Width:  &widthXML{W: 0, Type: "auto"},
		Layout: &tblLayoutXML{Type: "fixed"},
	}}
	if !t.Ruled {
		none := &borderXML{Val: "nil"}
		tbl.TblPr.Borders = &tblBordersXML{Top: none, Left: none, Bottom: none, Right: none, InsideH: none, InsideV: none}
	}
	for _, w := range widths {
		tbl.Grid.Cols = append(tbl.Grid.Cols, widthValXML{W: twips(w)})
	}

	for i, row := range t.Rows {
		tr := trXML{}
		header := i < t.HeaderRowCount
		if header {
			tr.TrPr = &trPrXML{TblHeader: &onXML{}}
		}
		for j := 0; j < len(row); {
			r, c := t.Owner(i, j)
			owner := t.Rows[r][c]
			span := max(owner.ColSpan, 1)
			if c != j {
				// inside a horizontal span that started further left
				j++
				continue
			}

			width := 0.0
			for k := j; k < j+span; k++ {
				width += widths[k]
			}
			tc := tcXML{TcPr: tcPrXML{Width: &widthXML{W: twips(width), Type: "dxa"}}}
			if span > 1 {
				tc.TcPr.GridSpan = &valXML{Val: strconv.Itoa(span)}
			}
			if owner.Shaded {
				tc.TcPr.Shd = &shdXML{Val: "clear", Color: "auto", Fill: owner.Fill.Hex()}
			}

			para := paragraphXML{}
			switch {
			case r != i:
				tc.TcPr.VMerge = &valXML{Val: "continue"}
			default:
				if max(owner.RowSpan, 1) > 1 {
					tc.TcPr.VMerge = &valXML{Val: "restart"}
				}
				if owner.Text != "" {
					para.Runs = []*runXML{textRun(owner.Text, p.cellRunProps(owner, header))}
				}
			}
			tc.Paragraphs = []paragraphXML{para}
			tr.Cells = append(tr.Cells, tc)
			j += span
		}
		tbl.Rows = append(tbl.Rows, tr)
	}
	return tbl, nil
}

func (p *projector) cellRunProps(c model.Cell, header bool) *rPrXML {
	rpr := &rPrXML{}
	if header || c.Bold {
		rpr.Bold = &onXML{}
	}
	if c.FontSize > 0 {
		rpr.Size = &valXML{Val: strconv.Itoa(int(c.FontSize*2 + 0.5))}
	}
	return rpr
}
