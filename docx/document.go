package docx

import "encoding/xml"

// XML namespaces used in the generated parts
const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// documentXML is word/document.xml
type documentXML struct {
	XMLName xml.Name `xml:"w:document"`
	W       string   `xml:"xmlns:w,attr"`
	R       string   `xml:"xmlns:r,attr"`
	WP      string   `xml:"xmlns:wp,attr"`
	A       string   `xml:"xmlns:a,attr"`
	Pic     string   `xml:"xmlns:pic,attr"`
	Body    bodyXML  `xml:"w:body"`
}

func newDocumentXML() *documentXML {
	return &documentXML{W: nsW, R: nsR, WP: nsWP, A: nsA, Pic: nsPic}
}

// bodyXML holds paragraphs and tables in document order, followed by the
// properties of the final section.
type bodyXML struct {
	Items  []any      `xml:",any"`
	SectPr *sectPrXML `xml:"w:sectPr"`
}

// paragraphXML is <w:p>
type paragraphXML struct {
	XMLName xml.Name  `xml:"w:p"`
	PPr     *pPrXML   `xml:"w:pPr"`
	Runs    []*runXML `xml:"w:r"`
}

// pPrXML is <w:pPr>. A section break is a sectPr inside the last
// paragraph of the section.
type pPrXML struct {
	Style    *valXML    `xml:"w:pStyle"`
	KeepNext *onXML     `xml:"w:keepNext"`
	Jc       *valXML    `xml:"w:jc"`
	SectPr   *sectPrXML `xml:"w:sectPr"`
}

// runXML is <w:r>
type runXML struct {
	RPr     *rPrXML     `xml:"w:rPr"`
	Break   *breakXML   `xml:"w:br"`
	Text    *textXML    `xml:"w:t"`
	Drawing *drawingXML `xml:"w:drawing"`
}

// rPrXML is <w:rPr>
type rPrXML struct {
	Fonts  *fontsXML `xml:"w:rFonts"`
	Bold   *onXML    `xml:"w:b"`
	Italic *onXML    `xml:"w:i"`
	Color  *valXML   `xml:"w:color"`
	Size   *valXML   `xml:"w:sz"` // half-points
}

// fontsXML is <w:rFonts>
type fontsXML struct {
	ASCII string `xml:"w:ascii,attr"`
	HAnsi string `xml:"w:hAnsi,attr"`
	CS    string `xml:"w:cs,attr"`
}

// valXML is any element carrying a single w:val attribute
type valXML struct {
	Val string `xml:"w:val,attr"`
}

// onXML is a toggle property such as <w:b/>
type onXML struct{}

// textXML is <w:t>
type textXML struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Value string `xml:",chardata"`
}

// breakXML is <w:br>
type breakXML struct {
	Type string `xml:"w:type,attr,omitempty"` // page, column, textWrapping
}

// sectPrXML is <w:sectPr>
type sectPrXML struct {
	PgSz  pgSzXML  `xml:"w:pgSz"`
	PgMar pgMarXML `xml:"w:pgMar"`
}

// pgSzXML is the page size in twips
type pgSzXML struct {
	W      int    `xml:"w:w,attr"`
	H      int    `xml:"w:h,attr"`
	Orient string `xml:"w:orient,attr,omitempty"`
}

// pgMarXML is the page margins in twips
type pgMarXML struct {
	Top    int `xml:"w:top,attr"`
	Right  int `xml:"w:right,attr"`
	Bottom int `xml:"w:bottom,attr"`
	Left   int `xml:"w:left,attr"`
	Header int `xml:"w:header,attr"`
	Footer int `xml:"w:footer,attr"`
}

func textRun(s string, rpr *rPrXML) *runXML {
	t := &textXML{Value: s}
	if s != "" && (s[0] == ' ' || s[len(s)-1] == ' ') {
		t.Space = "preserve"
	}
	return &runXML{RPr: rpr, Text: t}
}
