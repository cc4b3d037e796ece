package docmodel

import (
	"log/slog"

	"github.com/rezaldwntr/pdf-backend-api/header"
	"github.com/rezaldwntr/pdf-backend-api/layout"
	"github.com/rezaldwntr/pdf-backend-api/model"
)

// resolveContinuations links the last table of each page to the first
// table of the next page when both touch the page break, then assembles
// the logical tables. Page models are not modified; merged tables are
// clones.
func (b *Builder) resolveContinuations(doc *model.Document) {
	running := layout.RunningElements(doc.Pages, b.opts.Tuning.Assembly.RunningBandRatio)

	for i := 0; i+1 < len(doc.Pages); i++ {
		prev, next := doc.Pages[i], doc.Pages[i+1]
		if next.Number != prev.Number+1 {
			continue
		}
		prevTables, nextTables := prev.Tables(), next.Tables()
		if len(prevTables) == 0 || len(nextTables) == 0 {
			continue
		}
		last, first := prevTables[len(prevTables)-1], nextTables[0]
		if !b.touchesBottom(prev, last, running) || !b.touchesTop(next, first, running) {
			continue
		}

		from := model.TableRef{Page: prev.Number, Table: len(prevTables) - 1}
		to := model.TableRef{Page: next.Number, Table: 0}
		if last.ColCount() != first.ColCount() {
			err := &AssemblyError{From: from, To: to, Err: ErrColumnMismatch}
			doc.Warn(model.WarnContinuationDropped, next.Number, "%v (%d vs %d columns)", err, last.ColCount(), first.ColCount())
			b.logger.Warn("continuation dropped", slog.Int("page", next.Number), slog.Any("error", err))
			continue
		}
		doc.Continuations = append(doc.Continuations, model.Continuation{From: from, To: to})
	}

	doc.Tables = assemble(doc)
}

// touchesBottom reports whether t lies in the bottom margin zone with no
// body content below it.
func (b *Builder) touchesBottom(p *model.PageModel, t *model.TableRegion, running map[model.Element]bool) bool {
	if t.BBox.Y1 < p.Height*(1-b.opts.Tuning.Assembly.MarginRatio) {
		return false
	}
	for _, e := range p.Elements {
		if e == model.Element(t) || running[e] {
			continue
		}
		if box := e.BoundingBox(); box.Y0 >= t.BBox.Y1 && overlapsHorizontally(box, t.BBox) {
			return false
		}
	}
	return true
}

// touchesTop reports whether t lies in the top margin zone with no body
// content above it.
func (b *Builder) touchesTop(p *model.PageModel, t *model.TableRegion, running map[model.Element]bool) bool {
	if t.BBox.Y0 > p.Height*b.opts.Tuning.Assembly.MarginRatio {
		return false
	}
	for _, e := range p.Elements {
		if e == model.Element(t) || running[e] {
			continue
		}
		if box := e.BoundingBox(); box.Y1 <= t.BBox.Y0 && overlapsHorizontally(box, t.BBox) {
			return false
		}
	}
	return true
}

func overlapsHorizontally(a, b model.BBox) bool {
	return a.X0 < b.X1 && a.X1 > b.X0
}

// assemble builds the logical tables in document order. A part that
// continues an earlier table has its repeated header row dropped and its
// rows appended to the first part's clone. The header row count comes from
// the first part, except that a first row repeated on a later part becomes
// the header.
func assemble(doc *model.Document) []*model.LogicalTable {
	continues := make(map[model.TableRef]model.TableRef, len(doc.Continuations))
	for _, c := range doc.Continuations {
		continues[c.To] = c.From
	}

	var out []*model.LogicalTable
	byRef := make(map[model.TableRef]*model.LogicalTable)
	firstPart := make(map[*model.LogicalTable]*model.TableRegion)
	for _, p := range doc.Pages {
		for i, t := range p.Tables() {
			ref := model.TableRef{Page: p.Number, Table: i}
			if from, ok := continues[ref]; ok {
				if lt := byRef[from]; lt != nil {
					part, dropped := header.DropRepeatedHeader(firstPart[lt], t)
					if dropped && lt.Table.HeaderRowCount == 0 {
						lt.Table.HeaderRowCount = 1
					}
					for _, row := range part.Rows {
						lt.Table.Rows = append(lt.Table.Rows, append([]model.Cell(nil), row...))
					}
					lt.Parts = append(lt.Parts, ref)
					byRef[ref] = lt
					continue
				}
			}
			lt := &model.LogicalTable{Table: t.Clone(), Parts: []model.TableRef{ref}}
			firstPart[lt] = t
			byRef[ref] = lt
			out = append(out, lt)
		}
	}
	return out
}
