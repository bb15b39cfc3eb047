package importer

import (
	"strings"

	"github.com/garyjia/invoice-importer/internal/domain/entity"
)

// headerKeywords mark row 0 as a header when any string cell contains one
var headerKeywords = []string{"invoice", "customer", "product", "quantity", "price", "date"}

// Group is the ordered set of rows that share an invoice number
type Group struct {
	InvoiceNumber int64
	Rows          []entity.Row
	// Lines holds the 1-based source line of each row in Rows
	Lines []int
}

// FirstLine returns the source line of the group's first row
func (g Group) FirstLine() int {
	if len(g.Lines) == 0 {
		return 0
	}
	return g.Lines[0]
}

// GroupRows partitions rows into invoice groups keyed by column 0, in
// first-seen order. Header, blank and unkeyed rows are skipped silently.
func GroupRows(rows []entity.Row) []Group {
	if len(rows) == 0 {
		return nil
	}

	start := 0
	if HasHeaderRow(rows[0]) {
		start = 1
	}

	var groups []Group
	index := make(map[int64]int)

	for i := start; i < len(rows); i++ {
		row := rows[i]
		if IsEmptyRow(row) {
			continue
		}

		number, ok := ParseInvoiceNumber(row.Cell(entity.ColInvoiceNumber))
		if !ok || number == 0 {
			continue
		}

		pos, seen := index[number]
		if !seen {
			pos = len(groups)
			index[number] = pos
			groups = append(groups, Group{InvoiceNumber: number})
		}
		groups[pos].Rows = append(groups[pos].Rows, row)
		groups[pos].Lines = append(groups[pos].Lines, i+1)
	}

	return groups
}

// HasHeaderRow reports whether any string cell of row names a known column
func HasHeaderRow(row entity.Row) bool {
	for _, cell := range row {
		s, ok := cell.(string)
		if !ok {
			continue
		}
		lower := strings.ToLower(s)
		for _, kw := range headerKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
