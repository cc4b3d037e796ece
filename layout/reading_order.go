package layout

import (
	"sort"

	"github.com/rezaldwntr/pdf-backend-api/model"
)

// Placed is an item positioned on the page within a column. Key is
// returned untouched so callers can map the order back to their items.
type Placed struct {
	BBox   model.BBox
	Column int
	Key    int
}

// ReadingOrder sorts items for output. Spanning items cut the page into
// horizontal sections; inside a section the left band is read top to
// bottom before the next band.
func ReadingOrder(items []Placed) []Placed {
	var spanning, columns []Placed
	for _, it := range items {
		if it.Column == Spanning {
			spanning = append(spanning, it)
		} else {
			columns = append(columns, it)
		}
	}
	sort.SliceStable(spanning, func(i, j int) bool {
		return spanning[i].BBox.Y0 < spanning[j].BBox.Y0
	})
	sort.SliceStable(columns, func(i, j int) bool {
		if columns[i].Column != columns[j].Column {
			return columns[i].Column < columns[j].Column
		}
		return columns[i].BBox.Y0 < columns[j].BBox.Y0
	})

	out := make([]Placed, 0, len(items))
	emitted := make([]bool, len(columns))
	flush := func(limit float64) {
		for i, it := range columns {
			if !emitted[i] && it.BBox.Y0 < limit {
				out = append(out, it)
				emitted[i] = true
			}
		}
	}
	for _, s := range spanning {
		flush(s.BBox.Y0)
		out = append(out, s)
	}
	for i, it := range columns {
		if !emitted[i] {
			out = append(out, it)
		}
	}
	return out
}

func orderBlocks(blocks []*block) []*block {
	items := make([]Placed, len(blocks))
	for i, b := range blocks {
		items[i] = Placed{BBox: b.bbox, Column: b.column, Key: i}
	}
	out := make([]*block, 0, len(blocks))
	for _, it := range ReadingOrder(items) {
		out = append(out, blocks[it.Key])
	}
	return out
}
