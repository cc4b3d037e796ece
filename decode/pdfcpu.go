package decode

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/rezaldwntr/pdf-backend-api/font"
	"github.com/rezaldwntr/pdf-backend-api/internal/filters"
	"github.com/rezaldwntr/pdf-backend-api/model"
)

// PDFSource reads pages from a PDF through pdfcpu. It is not safe for
// concurrent use; callers read pages one at a time and hand the RawPages to
// decoders.
type PDFSource struct {
	ctx *pdfmodel.Context

	xobjects map[int]*XObject
	fonts    map[int]font.Spec
	// maxDepth bounds nested form resources while loading
	maxDepth int
}

// OpenPDF parses a PDF with relaxed validation
func OpenPDF(rs io.ReadSeeker) (*PDFSource, error) {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return &PDFSource{
		ctx:      ctx,
		xobjects: make(map[int]*XObject),
		fonts:    make(map[int]font.Spec),
		maxDepth: 16,
	}, nil
}

// PageCount returns the number of pages in the document
func (s *PDFSource) PageCount() int {
	return s.ctx.PageCount
}

// Page loads page number (1-based)
func (s *PDFSource) Page(number int) (*RawPage, error) {
	if number < 1 || number > s.ctx.PageCount {
		return nil, fmt.Errorf("%w: %d of %d", ErrNoSuchPage, number, s.ctx.PageCount)
	}
	_, _, inh, err := s.ctx.PageDict(number, true)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", number, err)
	}

	page := &RawPage{Number: number, Box: model.BBox{X0: 0, Y0: 0, X1: 612, Y1: 792}}
	if inh != nil {
		switch {
		case inh.CropBox != nil:
			page.Box = rectBox(inh.CropBox)
		case inh.MediaBox != nil:
			page.Box = rectBox(inh.MediaBox)
		}
		page.Rotate = inh.Rotate
		page.Resources = s.resources(inh.Resources, 0)
	}

	r, err := pdfcpu.ExtractPageContent(s.ctx, number)
	if err != nil {
		return nil, &DecodeError{Page: number, Offset: -1, Err: fmt.Errorf("read content: %w", err)}
	}
	if r != nil {
		if page.Contents, err = io.ReadAll(r); err != nil {
			return nil, &DecodeError{Page: number, Offset: -1, Err: fmt.Errorf("read content: %w", err)}
		}
	}
	return page, nil
}

// Metadata returns the document information dictionary and the size of the
// first page.
func (s *PDFSource) Metadata() model.Metadata {
	md := model.Metadata{PageCount: s.ctx.PageCount}
	if s.ctx.Info != nil {
		if info, ok := s.resolve(*s.ctx.Info).(types.Dict); ok {
			md.Title = s.text(info, "Title")
			md.Author = s.text(info, "Author")
			md.Subject = s.text(info, "Subject")
			md.Creator = s.text(info, "Creator")
			md.Producer = s.text(info, "Producer")
			md.CreatedAt = parsePDFDate(s.text(info, "CreationDate"))
		}
	}
	if s.ctx.PageCount > 0 {
		if _, _, inh, err := s.ctx.PageDict(1, false); err == nil && inh != nil {
			p := RawPage{Rotate: inh.Rotate, Box: model.BBox{X1: 612, Y1: 792}}
			if inh.CropBox != nil {
				p.Box = rectBox(inh.CropBox)
			} else if inh.MediaBox != nil {
				p.Box = rectBox(inh.MediaBox)
			}
			md.PageWidth, md.PageHeight = p.Size()
			if md.PageWidth > md.PageHeight {
				md.Orientation = model.Landscape
			}
		}
	}
	return md
}

func rectBox(r *types.Rectangle) model.BBox {
	return model.NewBBoxFromPoints(model.Point{X: r.LL.X, Y: r.LL.Y}, model.Point{X: r.UR.X, Y: r.UR.Y})
}

// resolve follows indirect references. Unresolvable objects become nil.
func (s *PDFSource) resolve(o types.Object) types.Object {
	if o == nil {
		return nil
	}
	obj, err := s.ctx.Dereference(o)
	if err != nil {
		return nil
	}
	return obj
}

func (s *PDFSource) dict(o types.Object) types.Dict {
	switch v := s.resolve(o).(type) {
	case types.Dict:
		return v
	case types.StreamDict:
		return v.Dict
	}
	return nil
}

func (s *PDFSource) array(o types.Object) types.Array {
	a, _ := s.resolve(o).(types.Array)
	return a
}

func (s *PDFSource) name(d types.Dict, key string) string {
	if d == nil {
		return ""
	}
	o, _ := d.Find(key)
	n, _ := s.resolve(o).(types.Name)
	return string(n)
}

func (s *PDFSource) number(o types.Object) (float64, bool) {
	switch v := s.resolve(o).(type) {
	case types.Integer:
		return float64(v), true
	case types.Float:
		return float64(v), true
	}
	return 0, false
}

func (s *PDFSource) entryNumber(d types.Dict, key string) (float64, bool) {
	if d == nil {
		return 0, false
	}
	o, ok := d.Find(key)
	if !ok {
		return 0, false
	}
	return s.number(o)
}

func (s *PDFSource) entryInt(d types.Dict, key string) int {
	v, _ := s.entryNumber(d, key)
	return int(v)
}

func (s *PDFSource) entryBool(d types.Dict, key string) bool {
	if d == nil {
		return false
	}
	o, _ := d.Find(key)
	b, _ := s.resolve(o).(types.Boolean)
	return bool(b)
}

func (s *PDFSource) numbers(o types.Object) []float64 {
	arr := s.array(o)
	out := make([]float64, 0, len(arr))
	for _, x := range arr {
		v, _ := s.number(x)
		out = append(out, v)
	}
	return out
}

// streamContent returns the decoded bytes of a stream object
func (s *PDFSource) streamContent(o types.Object) []byte {
	sd, ok := s.resolve(o).(types.StreamDict)
	if !ok {
		return nil
	}
	if err := sd.Decode(); err != nil {
		return nil
	}
	if sd.Content != nil {
		return sd.Content
	}
	return sd.Raw
}

// text decodes a string entry, honouring UTF-16 byte order marks
func (s *PDFSource) text(d types.Dict, key string) string {
	o, ok := d.Find(key)
	if !ok {
		return ""
	}
	var raw []byte
	switch v := s.resolve(o).(type) {
	case types.StringLiteral:
		raw = unescapeLiteral(string(v))
	case types.HexLiteral:
		b, err := hex.DecodeString(strings.TrimSpace(string(v)))
		if err != nil {
			return ""
		}
		raw = b
	default:
		return ""
	}
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		u := make([]uint16, 0, len(raw)/2)
		for i := 2; i+1 < len(raw); i += 2 {
			u = append(u, uint16(raw[i])<<8|uint16(raw[i+1]))
		}
		return string(utf16.Decode(u))
	}
	return string(raw)
}

func unescapeLiteral(s string) []byte {
	var out bytes.Buffer
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			out.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case 'n':
			out.WriteByte('\n')
		case 'r':
			out.WriteByte('\r')
		case 't':
			out.WriteByte('\t')
		case 'b':
			out.WriteByte('\b')
		case 'f':
			out.WriteByte('\f')
		case '\r', '\n':
		default:
			if e >= '0' && e <= '7' {
				v := int(e - '0')
				for k := 0; k < 2 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; k++ {
					i++
					v = v*8 + int(s[i]-'0')
				}
				out.WriteByte(byte(v))
			} else {
				out.WriteByte(e)
			}
		}
	}
	return out.Bytes()
}

// parsePDFDate reads the D:YYYYMMDDHHmmSS prefix of a PDF date
func parsePDFDate(s string) time.Time {
	s = strings.TrimPrefix(s, "D:")
	for _, layout := range []string{"20060102150405", "200601021504", "20060102"} {
		if len(s) >= len(layout) {
			if t, err := time.Parse(layout, s[:len(layout)]); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// resources loads a resource dictionary
func (s *PDFSource) resources(o types.Object, depth int) *Resources {
	d := s.dict(o)
	if d == nil {
		return nil
	}
	res := &Resources{
		Fonts:     make(map[string]font.Spec),
		XObjects:  make(map[string]*XObject),
		ExtGState: make(map[string]ExtGState),
	}
	if fonts := s.dict(d["Font"]); fonts != nil {
		for name, fo := range fonts {
			res.Fonts[name] = s.fontSpec(fo)
		}
	}
	if xobjs := s.dict(d["XObject"]); xobjs != nil {
		for name, xo := range xobjs {
			if x := s.xobject(xo, depth); x != nil {
				res.XObjects[name] = x
			}
		}
	}
	if gstates := s.dict(d["ExtGState"]); gstates != nil {
		for name, g := range gstates {
			lw, _ := s.entryNumber(s.dict(g), "LW")
			res.ExtGState[name] = ExtGState{LineWidth: lw}
		}
	}
	return res
}

func objectNumber(o types.Object) (int, bool) {
	ref, ok := o.(types.IndirectRef)
	if !ok {
		return 0, false
	}
	return int(ref.ObjectNumber), true
}

func (s *PDFSource) xobject(o types.Object, depth int) *XObject {
	objNr, indirect := objectNumber(o)
	if indirect {
		if x, ok := s.xobjects[objNr]; ok {
			return x
		}
	}
	sd, ok := s.resolve(o).(types.StreamDict)
	if !ok {
		return nil
	}
	x := &XObject{}
	if indirect {
		// Registered before loading so self-referencing forms terminate.
		s.xobjects[objNr] = x
	}

	switch s.name(sd.Dict, "Subtype") {
	case "Image":
		x.Image = s.image(sd)
	case "Form":
		form := &Form{Matrix: model.Identity(), Contents: s.streamContent(o)}
		if m := s.numbers(sd.Dict["Matrix"]); len(m) == 6 {
			form.Matrix = model.Matrix{m[0], m[1], m[2], m[3], m[4], m[5]}
		}
		if depth < s.maxDepth {
			form.Resources = s.resources(sd.Dict["Resources"], depth+1)
		}
		x.Form = form
	default:
		return nil
	}
	return x
}

func (s *PDFSource) image(sd types.StreamDict) *Image {
	d := sd.Dict
	img := &Image{
		Width:            s.entryInt(d, "Width"),
		Height:           s.entryInt(d, "Height"),
		BitsPerComponent: s.entryInt(d, "BitsPerComponent"),
		ImageMask:        s.entryBool(d, "ImageMask"),
		Components:       1,
		Data:             sd.Raw,
	}
	if dec := s.numbers(d["Decode"]); len(dec) >= 2 && dec[0] > dec[1] {
		img.Invert = true
	}
	s.colorSpace(img, d["ColorSpace"])

	var names []string
	switch f := s.resolve(d["Filter"]).(type) {
	case types.Name:
		names = []string{string(f)}
	case types.Array:
		for _, o := range f {
			if n, ok := s.resolve(o).(types.Name); ok {
				names = append(names, string(n))
			}
		}
	}
	var parms []types.Dict
	switch p := s.resolve(d["DecodeParms"]).(type) {
	case types.Dict:
		parms = []types.Dict{p}
	case types.Array:
		for _, o := range p {
			parms = append(parms, s.dict(o))
		}
	}
	for i, n := range names {
		f := filters.Filter{Name: n}
		if i < len(parms) && parms[i] != nil {
			f.Params = s.filterParams(parms[i])
		}
		img.Filters = append(img.Filters, f)
	}
	return img
}

func (s *PDFSource) filterParams(d types.Dict) filters.Params {
	return filters.Params{
		Predictor:        s.entryInt(d, "Predictor"),
		Colors:           s.entryInt(d, "Colors"),
		BitsPerComponent: s.entryInt(d, "BitsPerComponent"),
		Columns:          s.entryInt(d, "Columns"),
		K:                s.entryInt(d, "K"),
		Rows:             s.entryInt(d, "Rows"),
		BlackIs1:         s.entryBool(d, "BlackIs1"),
	}
}

// colorSpace fills the component count and palette of img
func (s *PDFSource) colorSpace(img *Image, o types.Object) {
	switch cs := s.resolve(o).(type) {
	case types.Name:
		img.Components = componentsOf(string(cs))
	case types.Array:
		if len(cs) == 0 {
			return
		}
		family, _ := s.resolve(cs[0]).(types.Name)
		switch family {
		case "ICCBased":
			if len(cs) > 1 {
				if n := s.entryInt(s.dict(cs[1]), "N"); n > 0 {
					img.Components = n
				}
			}
		case "CalRGB", "Lab":
			img.Components = 3
		case "DeviceN":
			if len(cs) > 1 {
				img.Components = len(s.array(cs[1]))
			}
		case "Indexed", "I":
			if len(cs) < 4 {
				return
			}
			base := &Image{Components: 1}
			s.colorSpace(base, cs[1])
			if base.Components != 3 {
				return
			}
			var lookup []byte
			switch l := s.resolve(cs[3]).(type) {
			case types.StringLiteral:
				lookup = unescapeLiteral(string(l))
			case types.HexLiteral:
				lookup, _ = hex.DecodeString(string(l))
			case types.StreamDict:
				lookup = s.streamContent(cs[3])
			}
			img.Indexed = true
			img.Palette = lookup
		}
	}
}

// fontSpec extracts the fields of a font dictionary the font package needs
func (s *PDFSource) fontSpec(o types.Object) font.Spec {
	objNr, indirect := objectNumber(o)
	if indirect {
		if spec, ok := s.fonts[objNr]; ok {
			return spec
		}
	}

	d := s.dict(o)
	spec := font.Spec{
		Subtype:  s.name(d, "Subtype"),
		BaseFont: s.name(d, "BaseFont"),
	}
	if d == nil {
		return spec
	}

	switch enc := s.resolve(d["Encoding"]).(type) {
	case types.Name:
		spec.Encoding = string(enc)
	case types.Dict:
		spec.Encoding = s.name(enc, "BaseEncoding")
		spec.Differences = s.differences(enc["Differences"])
	}
	if tu, ok := d.Find("ToUnicode"); ok {
		spec.ToUnicode = s.streamContent(tu)
	}
	spec.FirstChar = s.entryInt(d, "FirstChar")
	spec.Widths = s.numbers(d["Widths"])

	fd := s.dict(d["FontDescriptor"])
	if spec.Subtype == "Type0" {
		if desc := s.array(d["DescendantFonts"]); len(desc) > 0 {
			cid := s.dict(desc[0])
			spec.DefaultWidth = 1000
			if dw, ok := s.entryNumber(cid, "DW"); ok {
				spec.DefaultWidth = dw
			}
			spec.CIDWidths = s.cidWidths(cid["W"])
			fd = s.dict(cid["FontDescriptor"])
			if spec.BaseFont == "" {
				spec.BaseFont = s.name(cid, "BaseFont")
			}
		}
	}
	if fd != nil {
		spec.Flags = s.entryInt(fd, "Flags")
		spec.ItalicAngle, _ = s.entryNumber(fd, "ItalicAngle")
		spec.FontWeight, _ = s.entryNumber(fd, "FontWeight")
		if mw, ok := s.entryNumber(fd, "MissingWidth"); ok && spec.Subtype != "Type0" {
			spec.DefaultWidth = mw
		}
	}
	if spec.Subtype == "Type3" {
		if m := s.numbers(d["FontMatrix"]); len(m) == 6 && m[0] != 0 {
			spec.WidthScale = m[0] * 1000
		}
	}

	if indirect {
		s.fonts[objNr] = spec
	}
	return spec
}

// differences expands [code /name /name code /name ...]
func (s *PDFSource) differences(o types.Object) map[int]string {
	arr := s.array(o)
	if len(arr) == 0 {
		return nil
	}
	out := make(map[int]string)
	code := 0
	for _, item := range arr {
		switch v := s.resolve(item).(type) {
		case types.Integer:
			code = int(v)
		case types.Float:
			code = int(v)
		case types.Name:
			out[code] = string(v)
			code++
		}
	}
	return out
}

// cidWidths expands a /W array: c [w1 w2 ...] or cfirst clast w
func (s *PDFSource) cidWidths(o types.Object) map[int]float64 {
	arr := s.array(o)
	if len(arr) == 0 {
		return nil
	}
	out := make(map[int]float64)
	for i := 0; i < len(arr); {
		first, ok := s.number(arr[i])
		if !ok || i+1 >= len(arr) {
			break
		}
		if ws, isArr := s.resolve(arr[i+1]).(types.Array); isArr {
			for k, w := range ws {
				v, _ := s.number(w)
				out[int(first)+k] = v
			}
			i += 2
			continue
		}
		if i+2 >= len(arr) {
			break
		}
		last, _ := s.number(arr[i+1])
		w, _ := s.number(arr[i+2])
		for c := int(first); c <= int(last) && c-int(first) < 1<<16; c++ {
			out[c] = w
		}
		i += 3
	}
	return out
}
