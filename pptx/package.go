package pptx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
)

const (
	relTypeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeCore     = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relTypeMaster   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTypeLayout   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeSlide    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeTheme    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relTypeImage    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	nsContentTypes = "http://schemas.openxmlformats.org/package/2006/content-types"

	ctPresentation = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ctSlide        = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctMaster       = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	ctLayout       = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	ctTheme        = "application/vnd.openxmlformats-officedocument.theme+xml"
	ctCore         = "application/vnd.openxmlformats-package.core-properties+xml"
)

// firstMasterID is the smallest ID PowerPoint accepts for a master
const firstMasterID = 2147483648

type contentTypesXML struct {
	XMLName   xml.Name          `xml:"Types"`
	Xmlns     string            `xml:"xmlns,attr"`
	Defaults  []defaultTypeXML  `xml:"Default"`
	Overrides []overrideTypeXML `xml:"Override"`
}

type defaultTypeXML struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type overrideTypeXML struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type relationshipsXML struct {
	XMLName xml.Name          `xml:"Relationships"`
	Xmlns   string            `xml:"xmlns,attr"`
	Rels    []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type corePropsXML struct {
	XMLName xml.Name `xml:"cp:coreProperties"`
	CP      string   `xml:"xmlns:cp,attr"`
	DC      string   `xml:"xmlns:dc,attr"`
	Title   string   `xml:"dc:title,omitempty"`
	Creator string   `xml:"dc:creator,omitempty"`
}

func rels(r ...relationshipXML) relationshipsXML {
	return relationshipsXML{Xmlns: nsPackageRels, Rels: r}
}

// Write serialises the tree as a .pptx package
func (t *Tree) Write(w io.Writer) error {
	zw := zip.NewWriter(w)

	types := contentTypesXML{
		Xmlns: nsContentTypes,
		Defaults: []defaultTypeXML{
			{Extension: "rels", ContentType: "application/vnd.openxmlformats-package.relationships+xml"},
			{Extension: "xml", ContentType: "application/xml"},
		},
		Overrides: []overrideTypeXML{
			{PartName: "/ppt/presentation.xml", ContentType: ctPresentation},
			{PartName: "/ppt/slideMasters/slideMaster1.xml", ContentType: ctMaster},
			{PartName: "/ppt/slideLayouts/slideLayout1.xml", ContentType: ctLayout},
			{PartName: "/ppt/theme/theme1.xml", ContentType: ctTheme},
			{PartName: "/docProps/core.xml", ContentType: ctCore},
		},
	}
	pres := presentationXML{
		A: nsDrawingML, R: nsRelationships, P: nsPresentationML,
		Masters: []masterIDXML{{ID: firstMasterID, RID: "rId1"}},
		SlideSz: slideSzXML{Cx: t.Width, Cy: t.Height},
		NotesSz: extXML{Cx: t.Height, Cy: t.Width},
	}
	presRels := rels(
		relationshipXML{ID: "rId1", Type: relTypeMaster, Target: "slideMasters/slideMaster1.xml"},
		relationshipXML{ID: "rId2", Type: relTypeTheme, Target: "theme/theme1.xml"},
	)

	seen := map[string]bool{}
	for i, s := range t.Slides {
		n := i + 1
		rid := fmt.Sprintf("rId%d", n+2)
		pres.Slides = append(pres.Slides, slideIDXML{ID: 255 + n, RID: rid})
		presRels.Rels = append(presRels.Rels, relationshipXML{ID: rid, Type: relTypeSlide, Target: fmt.Sprintf("slides/slide%d.xml", n)})
		types.Overrides = append(types.Overrides, overrideTypeXML{PartName: fmt.Sprintf("/ppt/slides/slide%d.xml", n), ContentType: ctSlide})
		for _, m := range s.Media {
			if ext := m.Type.Extension(); !seen[ext] {
				seen[ext] = true
				types.Defaults = append(types.Defaults, defaultTypeXML{Extension: ext, ContentType: m.Type.MIMEType()})
			}
		}
	}

	parts := []struct {
		name string
		v    any
	}{
		{"[Content_Types].xml", types},
		{"_rels/.rels", rels(
			relationshipXML{ID: "rId1", Type: relTypeDocument, Target: "ppt/presentation.xml"},
			relationshipXML{ID: "rId2", Type: relTypeCore, Target: "docProps/core.xml"},
		)},
		{"docProps/core.xml", corePropsXML{
			CP: "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
			DC: "http://purl.org/dc/elements/1.1/",
			Title: t.Title, Creator: t.Author,
		}},
		{"ppt/presentation.xml", pres},
		{"ppt/_rels/presentation.xml.rels", presRels},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", rels(
			relationshipXML{ID: "rId1", Type: relTypeLayout, Target: "../slideLayouts/slideLayout1.xml"},
			relationshipXML{ID: "rId2", Type: relTypeTheme, Target: "../theme/theme1.xml"},
		)},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", rels(
			relationshipXML{ID: "rId1", Type: relTypeMaster, Target: "../slideMasters/slideMaster1.xml"},
		)},
	}
	for _, p := range parts {
		if err := writeXML(zw, p.name, p.v); err != nil {
			return err
		}
	}

	static := []struct{ name, body string }{
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML},
		{"ppt/theme/theme1.xml", themeXML},
	}
	for _, p := range static {
		if err := writeRaw(zw, p.name, []byte(xml.Header+p.body)); err != nil {
			return err
		}
	}

	for i, s := range t.Slides {
		n := i + 1
		r := rels(relationshipXML{ID: "rId1", Type: relTypeLayout, Target: "../slideLayouts/slideLayout1.xml"})
		for _, m := range s.Media {
			r.Rels = append(r.Rels, relationshipXML{ID: m.RelID, Type: relTypeImage, Target: "../media/" + m.Name})
			if err := writeRaw(zw, "ppt/media/"+m.Name, m.Data); err != nil {
				return err
			}
		}
		if err := writeXML(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), r); err != nil {
			return err
		}
		if err := writeXML(zw, fmt.Sprintf("ppt/slides/slide%d.xml", n), s.XML); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeXML(zw *zip.Writer, name string, v any) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.WriteString(f, xml.Header); err != nil {
		return err
	}
	if err := xml.NewEncoder(f).Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return nil
}

func writeRaw(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
