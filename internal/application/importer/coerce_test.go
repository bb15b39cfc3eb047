package importer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInvoiceNumber(t *testing.T) {
	tests := []struct {
		name   string
		cell   any
		want   int64
		wantOK bool
	}{
		{name: "int", cell: 7, want: 7, wantOK: true},
		{name: "int64", cell: int64(1001), want: 1001, wantOK: true},
		{name: "float truncates", cell: 3.9, want: 3, wantOK: true},
		{name: "numeric string", cell: " 42 ", want: 42, wantOK: true},
		{name: "decimal string truncates", cell: "12.5", want: 12, wantOK: true},
		{name: "negative", cell: -5, want: -5, wantOK: true},
		{name: "zero", cell: 0, want: 0, wantOK: true},
		{name: "text", cell: "INV-1", wantOK: false},
		{name: "nil", cell: nil, wantOK: false},
		{name: "empty", cell: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseInvoiceNumber(tt.cell)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name    string
		cell    any
		want    string
		wantErr bool
	}{
		{name: "int", cell: 3, want: "3"},
		{name: "float", cell: 25.5, want: "25.5"},
		{name: "plain string", cell: "10.00", want: "10"},
		{name: "currency and separators", cell: "$1,234.50", want: "1234.5"},
		{name: "accounting negative", cell: "(12.30)", want: "-12.3"},
		{name: "decimal passthrough", cell: decimal.NewFromInt(9), want: "9"},
		{name: "nil", cell: nil, wantErr: true},
		{name: "blank", cell: " ", wantErr: true},
		{name: "text", cell: "two", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimal(tt.cell)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", CellString(nil))
	assert.Equal(t, "John Doe", CellString("  John Doe "))
	assert.Equal(t, "25.5", CellString(25.5))
	assert.Equal(t, "12", CellString(12))
}

func TestIsEmptyRow(t *testing.T) {
	assert.True(t, IsEmptyRow(nil))
	assert.True(t, IsEmptyRow([]any{nil, "", "  "}))
	assert.False(t, IsEmptyRow([]any{nil, 0}))
}
