package docx

import (
	"fmt"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

// emuPerPoint converts points to English Metric Units
const emuPerPoint = 12700

// drawingXML is an inline picture: <w:drawing><wp:inline>...
type drawingXML struct {
	Inline inlineXML `xml:"wp:inline"`
}

type inlineXML struct {
	Extent  extentXML  `xml:"wp:extent"`
	DocPr   docPrXML   `xml:"wp:docPr"`
	Graphic graphicXML `xml:"a:graphic"`
}

type extentXML struct {
	Cx int64 `xml:"cx,attr"`
	Cy int64 `xml:"cy,attr"`
}

type docPrXML struct {
	ID   int    `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type graphicXML struct {
	Data graphicDataXML `xml:"a:graphicData"`
}

type graphicDataXML struct {
	URI string `xml:"uri,attr"`
	Pic picXML `xml:"pic:pic"`
}

type picXML struct {
	NvPicPr  nvPicPrXML  `xml:"pic:nvPicPr"`
	BlipFill blipFillXML `xml:"pic:blipFill"`
	SpPr     spPrXML     `xml:"pic:spPr"`
}

type nvPicPrXML struct {
	CNvPr    docPrXML `xml:"pic:cNvPr"`
	CNvPicPr struct{} `xml:"pic:cNvPicPr"`
}

type blipFillXML struct {
	Blip    blipXML  `xml:"a:blip"`
	Stretch struct{} `xml:"a:stretch>a:fillRect"`
}

type blipXML struct {
	Embed string `xml:"r:embed,attr"`
}

type spPrXML struct {
	Xfrm xfrmXML     `xml:"a:xfrm"`
	Geom prstGeomXML `xml:"a:prstGeom"`
}

type xfrmXML struct {
	Off offXML    `xml:"a:off"`
	Ext extentXML `xml:"a:ext"`
}

type offXML struct {
	X int64 `xml:"x,attr"`
	Y int64 `xml:"y,attr"`
}

type prstGeomXML struct {
	Prst  string   `xml:"prst,attr"`
	AvLst struct{} `xml:"a:avLst"`
}

// media is an image part embedded in the package
type media struct {
	RelID string
	Name  string // file name under word/media/
	Data  []byte
	Type  model.ImageEncoding
}

// picture builds the inline drawing for an image already registered as
// relID. The picture is scaled to fit maxWidth points.
func picture(img *model.RasterImage, relID string, id int, maxWidth float64) *drawingXML {
	w, h := img.BBox.Width(), img.BBox.Height()
	if w > maxWidth && w > 0 {
		h *= maxWidth / w
		w = maxWidth
	}
	ext := extentXML{Cx: int64(w * emuPerPoint), Cy: int64(h * emuPerPoint)}
	pr := docPrXML{ID: id, Name: fmt.Sprintf("Picture %d", id)}
	return &drawingXML{Inline: inlineXML{
		Extent: ext,
		DocPr:  pr,
		Graphic: graphicXML{Data: graphicDataXML{
			URI: nsPic,
			Pic: picXML{
				NvPicPr:  nvPicPrXML{CNvPr: pr},
				BlipFill: blipFillXML{Blip: blipXML{Embed: relID}},
				SpPr: spPrXML{
					Xfrm: xfrmXML{Ext: ext},
					Geom: prstGeomXML{Prst: "rect"},
				},
			},
		}},
	}}
}
