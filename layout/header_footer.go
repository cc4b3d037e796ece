package layout

import (
	"regexp"
	"strings"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

var (
	digitRun   = regexp.MustCompile(`\d+`)
	pageNumber = regexp.MustCompile(`(?i)^(page\s*)?#(\s*(of|/)\s*#)?$|^-\s*#\s*-$`)
)

// RegionType says which page edge a running element repeats at
type RegionType int

const (
	Header RegionType = iota
	Footer
)

func (r RegionType) String() string {
	if r == Header {
		return "header"
	}
	return "footer"
}

// Zone returns which running band b lies in. ok is false for boxes
// outside both bands.
func Zone(b model.BBox, pageHeight, bandRatio float64) (r RegionType, ok bool) {
	band := pageHeight * bandRatio
	switch {
	case b.Y1 <= band:
		return Header, true
	case b.Y0 >= pageHeight-band:
		return Footer, true
	}
	return 0, false
}

// runningKey masks digits so "Page 3" and "Page 4" compare equal
func runningKey(zone RegionType, text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return zone.String() + "|" + digitRun.ReplaceAllString(text, "#")
}

// RunningElements finds paragraphs that repeat as page headers or footers.
// A paragraph inside the top or bottom band counts when its digit-masked
// text appears in the same band on another page, or when it reads as a
// bare page number.
func RunningElements(pages []*model.PageModel, bandRatio float64) map[model.Element]bool {
	type hit struct {
		page int
		para *model.Paragraph
	}
	seen := make(map[string][]hit)
	for _, p := range pages {
		for _, para := range p.Paragraphs() {
			zone, ok := Zone(para.BBox, p.Height, bandRatio)
			if !ok {
				continue
			}
			key := runningKey(zone, para.Text())
			seen[key] = append(seen[key], hit{page: p.Number, para: para})
		}
	}

	out := make(map[model.Element]bool)
	for key, hits := range seen {
		onPages := make(map[int]bool)
		for _, h := range hits {
			onPages[h.page] = true
		}
		masked := key[strings.IndexByte(key, '|')+1:]
		if len(onPages) < 2 && !pageNumber.MatchString(masked) {
			continue
		}
		for _, h := range hits {
			out[h.para] = true
		}
	}
	return out
}
