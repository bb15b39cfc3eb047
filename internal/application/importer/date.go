package importer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// maxExcelSerial is the serial number of 9999-12-31 in the 1900 system
const maxExcelSerial = 2958465

// cjkDateRegex matches dates written as 2023年1月15日 anywhere in a cell
var cjkDateRegex = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)

// dateLayouts are tried in order for free-form date strings
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"1/2/2006",
	"01/02/2006",
	"1-2-2006",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"20060102",
}

// DateOptions controls serial date conversion
type DateOptions struct {
	// Date1904 selects the 1904 epoch used by some Mac workbooks
	Date1904 bool
}

// NormalizeDate converts a raw cell into a calendar date at UTC midnight.
// Accepted inputs are time.Time values, spreadsheet serial numbers,
// 2023年1月15日 style strings and the common layouts in dateLayouts.
func NormalizeDate(cell any, opts DateOptions) (time.Time, error) {
	switch v := cell.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	case time.Time:
		return v, nil
	case string:
		return normalizeDateString(v, opts)
	}

	serial, ok := cellFloat(cell)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unsupported value %v", ErrInvalidDate, cell)
	}
	return fromSerial(serial, opts)
}

func normalizeDateString(raw string, opts DateOptions) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}

	if m := cjkDateRegex.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		iso := fmt.Sprintf("%s-%02d-%02d", m[1], month, day)
		t, err := time.Parse("2006-01-02", iso)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
		}
		return t, nil
	}

	// Eight digits read as YYYYMMDD; no serial number is that large.
	if len(s) == 8 && isDigits(s) {
		if t, err := time.Parse("20060102", s); err == nil {
			return t, nil
		}
	}

	if numericRegex.MatchString(s) {
		serial, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
		}
		return fromSerial(serial, opts)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized format %q", ErrInvalidDate, raw)
}

func fromSerial(serial float64, opts DateOptions) (time.Time, error) {
	if serial <= 0 || serial > maxExcelSerial || math.IsNaN(serial) {
		return time.Time{}, fmt.Errorf("%w: serial %v out of range", ErrInvalidDate, serial)
	}
	t, err := excelize.ExcelDateToTime(serial, opts.Date1904)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return dateOnly(t), nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
