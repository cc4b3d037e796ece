package decodetest

// InvoiceColumns are the ruling x positions of the invoice fixtures
var InvoiceColumns = []float64{72, 200, 300, 400, 500}

// InvoiceLabels is the header row of the invoice fixtures
var InvoiceLabels = []string{"Name", "Qty", "Price", "Total"}

// Table draws a ruled table with rows starting at top, 20pt per row.
// The first row is set bold.
func Table(b *PageBuilder, xs []float64, top float64, rows [][]string) *PageBuilder {
	return grid(b, xs, top, rows, Bold)
}

// PlainTable is Table with every row in the regular font
func PlainTable(b *PageBuilder, xs []float64, top float64, rows [][]string) *PageBuilder {
	return grid(b, xs, top, rows, Regular)
}

func grid(b *PageBuilder, xs []float64, top float64, rows [][]string, head string) *PageBuilder {
	ys := make([]float64, len(rows)+1)
	for i := range ys {
		ys[i] = top + 20*float64(i)
	}
	b.Grid(xs, ys)
	for i, row := range rows {
		font := Regular
		if i == 0 {
			font = head
		}
		for j, text := range row {
			b.Text(font, 10, xs[j]+4, ys[i]+14, text)
		}
	}
	return b
}

// Invoice is a letter page with a title line and a ruled 4×4 table whose
// bold first row is Name, Qty, Price, Total.
func Invoice() *PageBuilder {
	b := NewPage(612, 792).Text(Regular, 10, 72, 60, "Invoice 2024-001")
	return Table(b, InvoiceColumns, 100, [][]string{
		InvoiceLabels,
		{"Widget", "2", "3.50", "7.00"},
		{"Gadget", "1", "12.00", "12.00"},
		{"Gizmo", "10", "1,250.00", "12,500.00"},
	})
}

// Inventory is two pages: the first ends with a table at the bottom margin
// and the second starts with its continuation, repeating the header row.
// Both pages carry a running "Page N" footer.
func Inventory() (*PageBuilder, *PageBuilder) {
	p1 := NewPage(612, 792).Text(Regular, 10, 72, 60, "Annual inventory")
	Table(p1, InvoiceColumns, 620, [][]string{
		InvoiceLabels,
		{"Widget", "2", "3.50", "7.00"},
		{"Gadget", "1", "12.00", "12.00"},
		{"Gizmo", "10", "1.00", "10.00"},
		{"Doohickey", "4", "2.00", "8.00"},
	})
	p1.Text(Regular, 8, 290, 770, "Page 1")

	p2 := Table(NewPage(612, 792), InvoiceColumns, 40, [][]string{
		InvoiceLabels,
		{"Sprocket", "3", "4.00", "12.00"},
		{"Flange", "6", "0.50", "3.00"},
	})
	p2.Text(Regular, 10, 72, 200, "End of report")
	p2.Text(Regular, 8, 290, 770, "Page 2")
	return p1, p2
}
