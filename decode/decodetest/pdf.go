package decodetest

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Info is the document information written by PDF
type Info struct {
	Title        string
	Author       string
	CreationDate string // PDF date string, e.g. D:20240102030405
}

// PDF serializes pages into a complete, uncompressed PDF file that uses the
// same font and image resource names as the built RawPages.
func PDF(info Info, pages ...*PageBuilder) []byte {
	w := &pdfWriter{}
	w.buf.WriteString("%PDF-1.4\n%\xE2\xE3\xCF\xD3\n")

	const (
		catalog = 1
		tree    = 2
		fonts   = 3 // 3, 4, 5
		infoObj = 6
	)
	next := 7
	pageObjs := make([]int, len(pages))
	for i := range pages {
		pageObjs[i] = next
		next += 2 + len(pages[i].res.XObjects)
	}

	w.object(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", tree))
	var kids []string
	for _, n := range pageObjs {
		kids = append(kids, fmt.Sprintf("%d 0 R", n))
	}
	w.object(tree, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	for i, base := range []string{"Helvetica", "Helvetica-Bold", "Helvetica-Oblique"} {
		w.object(fonts+i, fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding >>", base))
	}
	w.object(infoObj, fmt.Sprintf("<< /Title (%s) /Author (%s) /CreationDate (%s) >>",
		Escape(info.Title), Escape(info.Author), Escape(info.CreationDate)))

	for i, p := range pages {
		obj := pageObjs[i]
		names := make([]string, 0, len(p.res.XObjects))
		for name := range p.res.XObjects {
			names = append(names, name)
		}
		sort.Strings(names)

		var xobjs []string
		for k, name := range names {
			ref := obj + 2 + k
			xobjs = append(xobjs, fmt.Sprintf("/%s %d 0 R", name, ref))
			img := p.res.XObjects[name].Image
			w.stream(ref, fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceGray /BitsPerComponent %d",
				img.Width, img.Height, img.BitsPerComponent), img.Data)
		}
		w.object(obj, fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %g %g] /Rotate %d /Contents %d 0 R "+
				"/Resources << /Font << /%s %d 0 R /%s %d 0 R /%s %d 0 R >> /XObject << %s >> >> >>",
			tree, p.width, p.height, p.rotate, obj+1,
			Regular, fonts, Bold, fonts+1, Italic, fonts+2, strings.Join(xobjs, " ")))
		w.stream(obj+1, "", p.buf.Bytes())
	}

	return w.finish(next, catalog, infoObj)
}

type pdfWriter struct {
	buf     bytes.Buffer
	offsets map[int]int
}

func (w *pdfWriter) object(n int, body string) {
	if w.offsets == nil {
		w.offsets = make(map[int]int)
	}
	w.offsets[n] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", n, body)
}

func (w *pdfWriter) stream(n int, dict string, data []byte) {
	if w.offsets == nil {
		w.offsets = make(map[int]int)
	}
	w.offsets[n] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n<< %s /Length %d >>\nstream\n", n, dict, len(data))
	w.buf.Write(data)
	w.buf.WriteString("\nendstream\nendobj\n")
}

func (w *pdfWriter) finish(size, root, info int) []byte {
	xref := w.buf.Len()
	fmt.Fprintf(&w.buf, "xref\n0 %d\n0000000000 65535 f \n", size)
	for n := 1; n < size; n++ {
		fmt.Fprintf(&w.buf, "%010d 00000 n \n", w.offsets[n])
	}
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d /Root %d 0 R /Info %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, root, info, xref)
	return w.buf.Bytes()
}
