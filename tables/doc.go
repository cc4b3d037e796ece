// Package tables finds table regions on a decoded page.
//
// Detection runs a list of strategies in order:
//
//   - ruled: drawn ruling lines are snapped, joined and intersected; every
//     connected set of horizontal and vertical rules forms a candidate grid.
//   - implicit: when text is laid out in aligned columns with wide
//     whitespace gaps over several consecutive lines, the column bands and
//     lines form the grid.
//
// Each text span is assigned to the cell containing its centre. A span
// centred exactly on a boundary goes to the cell above, then to the left.
// In ruled grids, neighbouring cells that no rule separates are merged into
// one spanning cell when at most one of them carries text.
//
// A candidate is accepted only with at least [tuning.TableConfig.MinRows]
// rows and [tuning.TableConfig.MinCols] columns after merging. Rejected
// candidates that carry text are reported as [model.WarnAmbiguousTable]
// warnings and their spans flow back to paragraph layout.
//
// Basic usage:
//
//	d := tables.New(tuning.Default().Tables, nil)
//	res, err := d.Detect(page.Number, page.Primitives)
//	if errors.Is(err, tables.ErrBudgetExceeded) {
//	    // pathological ruling, skip the page
//	}
//	for _, t := range res.Tables {
//	    fmt.Println(t.ToMarkdown())
//	}
package tables
