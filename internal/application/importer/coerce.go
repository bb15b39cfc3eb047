package importer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/invoice-importer/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// numericRegex matches plain integers, decimals and scientific notation
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// IsEmptyCell reports whether a cell is nil or a blank string
func IsEmptyCell(cell any) bool {
	switch v := cell.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

// IsEmptyRow reports whether every cell of the row is empty
func IsEmptyRow(row entity.Row) bool {
	for _, cell := range row {
		if !IsEmptyCell(cell) {
			return false
		}
	}
	return true
}

// CellString renders a cell as trimmed text
func CellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case time.Time:
		return v.Format("2006-01-02")
	case decimal.Decimal:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return strings.TrimSpace(fmt.Sprint(cell))
}

// cellFloat extracts a float from a numeric cell or a strictly numeric string
func cellFloat(cell any) (float64, bool) {
	var f float64
	switch v := cell.(type) {
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	case decimal.Decimal:
		f = v.InexactFloat64()
	case string:
		s := strings.TrimSpace(v)
		if !numericRegex.MatchString(s) {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseInvoiceNumber converts a cell to an invoice number, truncating any
// fractional part. ok is false when the cell is not numeric.
func ParseInvoiceNumber(cell any) (n int64, ok bool) {
	switch v := cell.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return i, true
		}
	}

	f, ok := cellFloat(cell)
	if !ok || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// ParseDecimal converts a cell to a decimal. Strings may carry currency
// symbols, thousands separators or accounting-style parentheses.
func ParseDecimal(cell any) (decimal.Decimal, error) {
	switch v := cell.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("empty value")
	case decimal.Decimal:
		return v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, fmt.Errorf("not a finite number: %v", v)
		}
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case string:
		return parseDecimalString(v)
	}

	if f, ok := cellFloat(cell); ok {
		return decimal.NewFromFloat(f), nil
	}
	return decimal.Zero, fmt.Errorf("not a number: %v", cell)
}

func parseDecimalString(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty value")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", ",", "").Replace(s)
	s = strings.TrimSpace(s)
	if negative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return decimal.Zero, fmt.Errorf("not a number: %q", raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", raw)
	}
	return d, nil
}
