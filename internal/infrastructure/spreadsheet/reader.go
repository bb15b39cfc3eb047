// Package spreadsheet reads invoice rows from xlsx and csv files.
package spreadsheet

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/garyjia/invoice-importer/internal/application/port"
	"github.com/garyjia/invoice-importer/internal/domain/entity"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither xlsx, xls nor csv
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

const utf8BOM = "\ufeff"

// IsSupportedExtension reports whether path ends in .xlsx, .xls or .csv
func IsSupportedExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls", ".csv":
		return true
	}
	return false
}

// Open returns a RowSource for the file at path, chosen by extension.
// Legacy .xls workbooks are handed to excelize, which rejects them unless
// they are really OOXML files with the wrong extension.
func Open(path string) (port.RowSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("spreadsheet file not found: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return &WorkbookSource{path: path}, nil
	case ".csv":
		return &CSVSource{path: path}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// WorkbookSource reads one worksheet of an Excel workbook
type WorkbookSource struct {
	path  string
	sheet string
}

// NewWorkbookSource reads the named sheet; an empty name selects the
// workbook's active sheet
func NewWorkbookSource(path, sheet string) *WorkbookSource {
	return &WorkbookSource{path: path, sheet: sheet}
}

// AllRows returns the sheet's rows with raw, unformatted cell text
func (s *WorkbookSource) AllRows() ([]entity.Row, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := s.resolveSheet(f)
	if err != nil {
		return nil, err
	}

	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return toRows(records), nil
}

// SheetNames lists the worksheets in the workbook
func (s *WorkbookSource) SheetNames() ([]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func (s *WorkbookSource) resolveSheet(f *excelize.File) (string, error) {
	if s.sheet != "" {
		if idx, err := f.GetSheetIndex(s.sheet); err != nil || idx < 0 {
			return "", fmt.Errorf("worksheet %q not found", s.sheet)
		}
		return s.sheet, nil
	}

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return "", fmt.Errorf("workbook has no sheets")
	}
	return sheet, nil
}

// CSVSource reads a comma-separated file
type CSVSource struct {
	path string
}

// AllRows returns every record of the file
func (s *CSVSource) AllRows() ([]entity.Row, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV parses CSV records from r. Ragged rows are allowed and a leading
// byte order mark is dropped.
func ReadCSV(r io.Reader) ([]entity.Row, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(len(utf8BOM)); err == nil && string(bom) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return toRows(records), nil
}

func toRows(records [][]string) []entity.Row {
	rows := make([]entity.Row, len(records))
	for i, rec := range records {
		row := make(entity.Row, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		rows[i] = row
	}
	return rows
}

var _ port.RowSource = (*WorkbookSource)(nil)
var _ port.RowSource = (*CSVSource)(nil)
