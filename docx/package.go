package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

const (
	relTypeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeCore     = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relTypeStyles   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeImage    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsCoreProps     = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsDC            = "http://purl.org/dc/elements/1.1/"
	nsDCTerms       = "http://purl.org/dc/terms/"
	nsXSI           = "http://www.w3.org/2001/XMLSchema-instance"
)

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
	DCTerms string   `xml:"xmlns:dcterms,attr"`
	XSI     string   `xml:"xmlns:xsi,attr"`
	Title   string   `xml:"dc:title,omitempty"`
	Creator string   `xml:"dc:creator,omitempty"`
	Subject string   `xml:"dc:subject,omitempty"`
	Created *dateXML `xml:"dcterms:created"`
}

type dateXML struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

// Write serialises the tree as a .docx package
func (t *Tree) Write(w io.Writer) error {
	zw := zip.NewWriter(w)

	types := contentTypesXML{
		Xmlns: nsContentTypes,
		Defaults: []defaultTypeXML{
			{Extension: "rels", ContentType: "application/vnd.openxmlformats-package.relationships+xml"},
			{Extension: "xml", ContentType: "application/xml"},
		},
		Overrides: []overrideTypeXML{
			{PartName: "/word/document.xml", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"},
			{PartName: "/word/styles.xml", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"},
			{PartName: "/docProps/core.xml", ContentType: "application/vnd.openxmlformats-package.core-properties+xml"},
		},
	}
	seen := map[string]bool{}
	for _, m := range t.Media {
		ext := m.Type.Extension()
		if !seen[ext] {
			seen[ext] = true
			types.Defaults = append(types.Defaults, defaultTypeXML{Extension: ext, ContentType: m.Type.MIMEType()})
		}
	}

	pkgRels := relationshipsXML{Xmlns: nsRelationships, Rels: []relationshipXML{
		{ID: "rId1", Type: relTypeDocument, Target: "word/document.xml"},
		{ID: "rId2", Type: relTypeCore, Target: "docProps/core.xml"},
	}}

	docRels := relationshipsXML{Xmlns: nsRelationships, Rels: []relationshipXML{
		{ID: "rId1", Type: relTypeStyles, Target: "styles.xml"},
	}}
	for _, m := range t.Media {
		docRels.Rels = append(docRels.Rels, relationshipXML{ID: m.RelID, Type: relTypeImage, Target: "media/" + m.Name})
	}

	core := corePropsXML{
		CP: nsCoreProps, DC: nsDC, DCTerms: nsDCTerms, XSI: nsXSI,
		Title:   t.Title,
		Creator: t.Author,
		Subject: t.Subject,
	}
	if !t.Created.IsZero() {
		core.Created = &dateXML{Type: "dcterms:W3CDTF", Value: t.Created.UTC().Format(time.RFC3339)}
	}

	parts := []struct {
		name string
		v    any
	}{
		{"[Content_Types].xml", types},
		{"_rels/.rels", pkgRels},
		{"docProps/core.xml", core},
		{"word/_rels/document.xml.rels", docRels},
		{"word/styles.xml", t.Styles},
		{"word/document.xml", t.Document},
	}
	for _, p := range parts {
		if err := writeXML(zw, p.name, p.v); err != nil {
			return err
		}
	}
	for _, m := range t.Media {
		f, err := zw.Create("word/media/" + m.Name)
		if err != nil {
			return fmt.Errorf("create %s: %w", m.Name, err)
		}
		if _, err := f.Write(m.Data); err != nil {
			return fmt.Errorf("write %s: %w", m.Name, err)
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
