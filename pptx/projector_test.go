package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rezaldwntr/pdf-backend-api/model"
	"github.com/rezaldwntr/pdf-backend-api/model/modeltest"
)

func project(t *testing.T, doc *model.Document) *Tree {
	t.Helper()
	tree, err := Project(doc, Options{})
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	return tree
}

// writeParts serialises tree and returns the package parts by name
func writeParts(t *testing.T, tree *Tree) map[string]string {
	t.Helper()
	var buf bytes.Buffer
	if err := tree.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	parts := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		parts[f.Name] = string(data)
	}
	return parts
}

func TestProjectSlideSize(t *testing.T) {
	doc := modeltest.Document(
		modeltest.Page(1, 792, 612, modeltest.Paragraph("Wide", 12, model.NewBBox(72, 72, 100, 14))),
		modeltest.Page(2, 612, 792, modeltest.Paragraph("Tall", 12, model.NewBBox(72, 72, 100, 14))),
	)
	tree := project(t, doc)

	if tree.Width != 792*emuPerPoint || tree.Height != 612*emuPerPoint {
		t.Errorf("slide size = %d×%d, want %d×%d", tree.Width, tree.Height, 792*emuPerPoint, 612*emuPerPoint)
	}
	if len(tree.Slides) != 2 {
		t.Fatalf("slides = %d, want 2", len(tree.Slides))
	}

	// the portrait page is scaled by 612/792 and centred horizontally
	box := tree.Slides[1].XML.CSld.SpTree.Shapes[0].(*spXML)
	scale := 612.0 / 792.0 * emuPerPoint
	wantX := int64((792*emuPerPoint-612*scale)/2 + 72*scale + 0.5)
	if got := box.SpPr.Xfrm.Off.X; got < wantX-1 || got > wantX+1 {
		t.Errorf("offset x = %d, want %d", got, wantX)
	}
	if got := box.TxBody.Paragraphs[0].Runs[0].RPr.Sz; got != 927 {
		t.Errorf("font size = %d, want 927", got)
	}
}

func TestProjectSlideSizeClamped(t *testing.T) {
	doc := modeltest.Document(modeltest.Page(1, 20, 5000,
		modeltest.Paragraph("x", 10, model.NewBBox(0, 0, 10, 10))))
	tree := project(t, doc)
	if tree.Width != minSlideEMU || tree.Height != maxSlideEMU {
		t.Errorf("slide size = %d×%d, want clamped to %d×%d", tree.Width, tree.Height, minSlideEMU, maxSlideEMU)
	}
}

func TestProjectShapes(t *testing.T) {
	heading := modeltest.Heading("Quarterly report", 1, model.NewBBox(72, 72, 300, 24))
	heading.Alignment = model.AlignCenter
	tbl := modeltest.Table(200, 1, [][]string{
		{"Region", "", "Total"},
		{"North", "12", "40"},
		{"South", "28", ""},
	})
	modeltest.Merge(tbl, 0, 0, 1, 2)
	modeltest.Merge(tbl, 1, 2, 2, 1)
	img := modeltest.Image(2, 2, model.NewBBox(72, 400, 100, 100))

	doc := modeltest.Document(modeltest.Page(1, 612, 792, heading, tbl, img))
	tree := project(t, doc)
	parts := writeParts(t, tree)
	slide := parts["ppt/slides/slide1.xml"]

	tests := []struct {
		want string
		n    int
	}{
		{`<p:sp>`, 1},
		{`txBox="1"`, 1},
		{`algn="ctr"`, 1},
		{`<a:t>Quarterly report</a:t>`, 1},
		{`<p:graphicFrame>`, 1},
		{`<a:tr `, 3},
		{`<a:gridCol `, 3},
		{`gridSpan="2"`, 1},
		{`hMerge="1"`, 1},
		{`rowSpan="2"`, 1},
		{`vMerge="1"`, 1},
		{`<p:pic>`, 1},
		{`r:embed="rId2"`, 1},
	}
	for _, tt := range tests {
		if got := strings.Count(slide, tt.want); got != tt.n {
			t.Errorf("count(%q) = %d, want %d", tt.want, got, tt.n)
		}
	}
	if _, ok := parts["ppt/media/image1.png"]; !ok {
		t.Error("image not embedded")
	}
	if !strings.Contains(parts["ppt/slides/_rels/slide1.xml.rels"], `Target="../media/image1.png"`) {
		t.Error("image relationship missing")
	}
}

func TestProjectRasterFallback(t *testing.T) {
	small := modeltest.Image(2, 2, model.NewBBox(10, 10, 50, 50))
	large := modeltest.Image(4, 4, model.NewBBox(0, 0, 612, 792))
	doc := modeltest.Document(modeltest.Page(1, 612, 792, small, large))
	tree := project(t, doc)

	shapes := tree.Slides[0].XML.CSld.SpTree.Shapes
	if len(shapes) != 1 {
		t.Fatalf("shapes = %d, want 1", len(shapes))
	}
	pic := shapes[0].(*picXML)
	if pic.SpPr.Xfrm.Ext.Cx != tree.Width || pic.SpPr.Xfrm.Ext.Cy != tree.Height {
		t.Errorf("picture = %d×%d, want full slide %d×%d", pic.SpPr.Xfrm.Ext.Cx, pic.SpPr.Xfrm.Ext.Cy, tree.Width, tree.Height)
	}
	if got := tree.Slides[0].Media[0].Data; !bytes.Equal(got, large.Data) {
		t.Error("fallback did not pick the largest image")
	}
}

func TestProjectBadMerge(t *testing.T) {
	tbl := modeltest.Table(100, 0, [][]string{{"a", "b"}, {"c", "d"}})
	tbl.Rows[0][0].RowSpan = 2
	doc := modeltest.Document(modeltest.Page(1, 612, 792, tbl))

	_, err := Project(doc, Options{})
	var pe *model.ProjectionError
	if !errors.As(err, &pe) || pe.Target != "pptx" {
		t.Fatalf("Project() error = %v, want pptx ProjectionError", err)
	}
}

func TestWritePackage(t *testing.T) {
	doc := modeltest.Document(
		modeltest.Page(1, 612, 792, modeltest.Paragraph("one", 11, model.NewBBox(72, 72, 100, 12))),
		modeltest.Page(2, 612, 792, modeltest.Paragraph("two", 11, model.NewBBox(72, 72, 100, 12))),
	)
	parts := writeParts(t, project(t, doc))

	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"docProps/core.xml",
		"ppt/presentation.xml",
		"ppt/_rels/presentation.xml.rels",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/theme/theme1.xml",
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
	} {
		if _, ok := parts[name]; !ok {
			t.Errorf("missing part %s", name)
		}
	}
	pres := parts["ppt/presentation.xml"]
	if got := strings.Count(pres, "<p:sldId "); got != 2 {
		t.Errorf("slide ids = %d, want 2", got)
	}
	if !strings.Contains(pres, `<p:sldSz cx="7772400" cy="10058400">`) {
		t.Errorf("presentation.xml = %s", pres)
	}
}
