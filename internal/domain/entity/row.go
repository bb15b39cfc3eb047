package entity

// Column positions of an import row.
const (
	ColInvoiceNumber = iota
	ColInvoiceDate
	ColCustomerName
	ColCustomerAddress
	ColProductName
	ColQuantity
	ColUnitPrice
	ColLineTotal
	ColGrandTotal
)

// Row is one positional record read from a spreadsheet.
// Cells hold string, numeric, time.Time or nil values.
type Row []any

// Cell returns the value at col, or nil when the row is shorter.
func (r Row) Cell(col int) any {
	if col < 0 || col >= len(r) {
		return nil
	}
	return r[col]
}
