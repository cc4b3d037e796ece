package pptx

import "encoding/xml"

// XML namespaces used in the generated parts
const (
	nsPresentationML = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsDrawingML      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsRelationships  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels    = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsTable          = "http://schemas.openxmlformats.org/drawingml/2006/table"
)

// presentationXML is ppt/presentation.xml
type presentationXML struct {
	XMLName xml.Name      `xml:"p:presentation"`
	A       string        `xml:"xmlns:a,attr"`
	R       string        `xml:"xmlns:r,attr"`
	P       string        `xml:"xmlns:p,attr"`
	Masters []masterIDXML `xml:"p:sldMasterIdLst>p:sldMasterId"`
	Slides  []slideIDXML  `xml:"p:sldIdLst>p:sldId"`
	SlideSz slideSzXML    `xml:"p:sldSz"`
	NotesSz extXML        `xml:"p:notesSz"`
}

type masterIDXML struct {
	ID  int64  `xml:"id,attr"`
	RID string `xml:"r:id,attr"`
}

type slideIDXML struct {
	ID  int    `xml:"id,attr"`
	RID string `xml:"r:id,attr"`
}

type slideSzXML struct {
	Cx int64 `xml:"cx,attr"` // Width in EMUs
	Cy int64 `xml:"cy,attr"` // Height in EMUs
}

// slideXML is ppt/slides/slideN.xml
type slideXML struct {
	XMLName xml.Name  `xml:"p:sld"`
	A       string    `xml:"xmlns:a,attr"`
	R       string    `xml:"xmlns:r,attr"`
	P       string    `xml:"xmlns:p,attr"`
	CSld    cSldXML   `xml:"p:cSld"`
	ClrMap  clrMapOvr `xml:"p:clrMapOvr"`
}

type clrMapOvr struct {
	Master struct{} `xml:"a:masterClrMapping"`
}

type cSldXML struct {
	SpTree spTreeXML `xml:"p:spTree"`
}

// spTreeXML is the shape tree. Shapes keep reading order.
type spTreeXML struct {
	NvGrpSpPr nvGrpSpPrXML `xml:"p:nvGrpSpPr"`
	GrpSpPr   struct{}     `xml:"p:grpSpPr"`
	Shapes    []any        `xml:",any"`
}

type nvGrpSpPrXML struct {
	CNvPr      cNvPrXML `xml:"p:cNvPr"`
	CNvGrpSpPr struct{} `xml:"p:cNvGrpSpPr"`
	NvPr       struct{} `xml:"p:nvPr"`
}

type cNvPrXML struct {
	ID   int    `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

// spXML is a text box shape
type spXML struct {
	XMLName xml.Name   `xml:"p:sp"`
	NvSpPr  nvSpPrXML  `xml:"p:nvSpPr"`
	SpPr    spPrXML    `xml:"p:spPr"`
	TxBody  *txBodyXML `xml:"p:txBody"`
}

type nvSpPrXML struct {
	CNvPr   cNvPrXML   `xml:"p:cNvPr"`
	CNvSpPr cNvSpPrXML `xml:"p:cNvSpPr"`
	NvPr    struct{}   `xml:"p:nvPr"`
}

type cNvSpPrXML struct {
	TxBox string `xml:"txBox,attr,omitempty"`
}

type spPrXML struct {
	Xfrm   xfrmXML     `xml:"a:xfrm"`
	Geom   prstGeomXML `xml:"a:prstGeom"`
	NoFill *struct{}   `xml:"a:noFill"`
}

type xfrmXML struct {
	Off offXML `xml:"a:off"`
	Ext extXML `xml:"a:ext"`
}

type offXML struct {
	X int64 `xml:"x,attr"`
	Y int64 `xml:"y,attr"`
}

type extXML struct {
	Cx int64 `xml:"cx,attr"`
	Cy int64 `xml:"cy,attr"`
}

type prstGeomXML struct {
	Prst  string   `xml:"prst,attr"`
	AvLst struct{} `xml:"a:avLst"`
}

// txBodyXML is the text of a shape or table cell
type txBodyXML struct {
	BodyPr     bodyPrXML      `xml:"a:bodyPr"`
	LstStyle   struct{}       `xml:"a:lstStyle"`
	Paragraphs []paragraphXML `xml:"a:p"`
}

type bodyPrXML struct {
	Wrap string `xml:"wrap,attr,omitempty"`
	LIns *int64 `xml:"lIns,attr"`
	TIns *int64 `xml:"tIns,attr"`
	RIns *int64 `xml:"rIns,attr"`
	BIns *int64 `xml:"bIns,attr"`
}

type paragraphXML struct {
	PPr  *pPrXML  `xml:"a:pPr"`
	Runs []runXML `xml:"a:r"`
	End  *rPrXML  `xml:"a:endParaRPr"`
}

type pPrXML struct {
	Algn string `xml:"algn,attr,omitempty"` // l, ctr, r, just
}

type runXML struct {
	RPr  rPrXML `xml:"a:rPr"`
	Text string `xml:"a:t"`
}

type rPrXML struct {
	Lang  string       `xml:"lang,attr,omitempty"`
	Sz    int          `xml:"sz,attr,omitempty"` // hundredths of a point
	B     string       `xml:"b,attr,omitempty"`
	I     string       `xml:"i,attr,omitempty"`
	Fill  *solidFill   `xml:"a:solidFill"`
	Latin *typefaceXML `xml:"a:latin"`
}

type solidFill struct {
	Color srgbClrXML `xml:"a:srgbClr"`
}

type srgbClrXML struct {
	Val string `xml:"val,attr"`
}

type typefaceXML struct {
	Typeface string `xml:"typeface,attr"`
}

// picXML is a picture shape
type picXML struct {
	XMLName  xml.Name    `xml:"p:pic"`
	NvPicPr  nvPicPrXML  `xml:"p:nvPicPr"`
	BlipFill blipFillXML `xml:"p:blipFill"`
	SpPr     spPrXML     `xml:"p:spPr"`
}

type nvPicPrXML struct {
	CNvPr    cNvPrXML `xml:"p:cNvPr"`
	CNvPicPr struct{} `xml:"p:cNvPicPr"`
	NvPr     struct{} `xml:"p:nvPr"`
}

type blipFillXML struct {
	Blip    blipXML  `xml:"a:blip"`
	Stretch struct{} `xml:"a:stretch>a:fillRect"`
}

type blipXML struct {
	Embed string `xml:"r:embed,attr"`
}

// graphicFrameXML holds a table
type graphicFrameXML struct {
	XMLName xml.Name     `xml:"p:graphicFrame"`
	NvPr    nvFramePrXML `xml:"p:nvGraphicFramePr"`
	Xfrm    frameXfrmXML `xml:"p:xfrm"`
	Graphic graphicXML   `xml:"a:graphic"`
}

type nvFramePrXML struct {
	CNvPr             cNvPrXML `xml:"p:cNvPr"`
	CNvGraphicFramePr struct {
		Locks struct {
			NoGrp string `xml:"noGrp,attr"`
		} `xml:"a:graphicFrameLocks"`
	} `xml:"p:cNvGraphicFramePr"`
	NvPr struct{} `xml:"p:nvPr"`
}

type frameXfrmXML struct {
	Off offXML `xml:"a:off"`
	Ext extXML `xml:"a:ext"`
}

type graphicXML struct {
	Data graphicDataXML `xml:"a:graphicData"`
}

type graphicDataXML struct {
	URI   string   `xml:"uri,attr"`
	Table tableXML `xml:"a:tbl"`
}

type tableXML struct {
	TblPr tblPrXML  `xml:"a:tblPr"`
	Grid  []gridCol `xml:"a:tblGrid>a:gridCol"`
	Rows  []trXML   `xml:"a:tr"`
}

type tblPrXML struct {
	FirstRow string `xml:"firstRow,attr,omitempty"`
	BandRow  string `xml:"bandRow,attr,omitempty"`
}

type gridCol struct {
	W int64 `xml:"w,attr"`
}

type trXML struct {
	H     int64   `xml:"h,attr"`
	Cells []tcXML `xml:"a:tc"`
}

type tcXML struct {
	GridSpan int       `xml:"gridSpan,attr,omitempty"`
	RowSpan  int       `xml:"rowSpan,attr,omitempty"`
	HMerge   string    `xml:"hMerge,attr,omitempty"`
	VMerge   string    `xml:"vMerge,attr,omitempty"`
	TxBody   txBodyXML `xml:"a:txBody"`
	TcPr     tcPrXML   `xml:"a:tcPr"`
}

// tcPrXML is the cell border and fill. Line elements precede the fill.
type tcPrXML struct {
	LnL  *lineXML   `xml:"a:lnL"`
	LnR  *lineXML   `xml:"a:lnR"`
	LnT  *lineXML   `xml:"a:lnT"`
	LnB  *lineXML   `xml:"a:lnB"`
	Fill *solidFill `xml:"a:solidFill"`
}

type lineXML struct {
	W    int64      `xml:"w,attr"`
	Fill *solidFill `xml:"a:solidFill"`
}
