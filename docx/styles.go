package docx

import (
	"encoding/xml"
	"strconv"
)

// Style IDs referenced by projected paragraphs and tables
const (
	styleNormal    = "Normal"
	styleCaption   = "Caption"
	styleTableGrid = "TableGrid"
)

// headingStyle returns the style ID for a heading level
func headingStyle(level int) string {
	return "Heading" + strconv.Itoa(min(max(level, 1), 3))
}

// stylesXML is word/styles.xml
type stylesXML struct {
	XMLName     xml.Name       `xml:"w:styles"`
	W           string         `xml:"xmlns:w,attr"`
	DocDefaults docDefaultsXML `xml:"w:docDefaults"`
	Styles      []styleDefXML  `xml:"w:style"`
}

type docDefaultsXML struct {
	RPr rPrXML `xml:"w:rPrDefault>w:rPr"`
}

// styleDefXML is one <w:style> definition
type styleDefXML struct {
	Type    string    `xml:"w:type,attr"` // paragraph, table
	StyleID string    `xml:"w:styleId,attr"`
	Default string    `xml:"w:default,attr,omitempty"`
	Name    valXML    `xml:"w:name"`
	BasedOn *valXML   `xml:"w:basedOn"`
	Next    *valXML   `xml:"w:next"`
	PPr     *pPrXML   `xml:"w:pPr"`
	RPr     *rPrXML   `xml:"w:rPr"`
	TblPr   *tblPrXML `xml:"w:tblPr"`
}

// defaultStyles builds the style sheet: body text, three heading levels,
// captions and a bordered table grid.
func defaultStyles(bodySize float64) *stylesXML {
	halfPoints := func(pt float64) *valXML {
		return &valXML{Val: strconv.Itoa(int(pt*2 + 0.5))}
	}
	heading := func(level int, size float64) styleDefXML {
		return styleDefXML{
			Type:    "paragraph",
			StyleID: headingStyle(level),
			Name:    valXML{Val: "heading " + strconv.Itoa(level)},
			BasedOn: &valXML{Val: styleNormal},
			Next:    &valXML{Val: styleNormal},
			PPr:     &pPrXML{KeepNext: &onXML{}},
			RPr:     &rPrXML{Bold: &onXML{}, Size: halfPoints(size)},
		}
	}
	border := &borderXML{Val: "single", Size: 4, Color: "auto"}
	return &stylesXML{
		W:           nsW,
		DocDefaults: docDefaultsXML{RPr: rPrXML{Size: halfPoints(bodySize)}},
		Styles: []styleDefXML{
			{Type: "paragraph", StyleID: styleNormal, Default: "1", Name: valXML{Val: "Normal"}},
			heading(1, bodySize*2),
			heading(2, bodySize*1.6),
			heading(3, bodySize*1.3),
			{
				Type:    "paragraph",
				StyleID: styleCaption,
				Name:    valXML{Val: "caption"},
				BasedOn: &valXML{Val: styleNormal},
				RPr:     &rPrXML{Italic: &onXML{}, Size: halfPoints(bodySize * 0.9)},
			},
			{
				Type:    "table",
				StyleID: styleTableGrid,
				Name:    valXML{Val: "Table Grid"},
				TblPr: &tblPrXML{Borders: &tblBordersXML{
					Top: border, Left: border, Bottom: border, Right: border,
					InsideH: border, InsideV: border,
				}},
			},
		},
	}
}
