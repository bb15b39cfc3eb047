package spreadsheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestIsSupportedExtension(t *testing.T) {
	assert.True(t, IsSupportedExtension("a.xlsx"))
	assert.True(t, IsSupportedExtension("A.XLS"))
	assert.True(t, IsSupportedExtension("/tmp/data.csv"))
	assert.False(t, IsSupportedExtension("data.txt"))
	assert.False(t, IsSupportedExtension("xlsx"))
}

func TestOpen_Workbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoices.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"Invoice Number", "Invoice Date", "Customer Name", "Customer Address", "Product Name", "Quantity", "Unit Price"},
		{1, "2023年1月15日", "John Doe", "123 Main St", "Product A", 2, 25.5},
		{2, 44942, "Jane Smith", "456 Oak Ave", "Product C", 3, 10},
	})

	src, err := Open(path)
	require.NoError(t, err)

	rows, err := src.AllRows()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Invoice Number", rows[0][0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "2023年1月15日", rows[1][1])
	assert.Equal(t, "25.5", rows[1][6])
	assert.Equal(t, "44942", rows[2][1])

	names, err := src.(*WorkbookSource).SheetNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1"}, names)
}

func TestWorkbookSource_NamedSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoices.xlsx")
	writeWorkbook(t, path, [][]interface{}{{1, "x"}})

	_, err := NewWorkbookSource(path, "Missing").AllRows()
	assert.Error(t, err)

	rows, err := NewWorkbookSource(path, "Sheet1").AllRows()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestOpen_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoices.csv")
	content := "\ufeffInvoice Number,Invoice Date,Customer Name\n1,2023-01-15,\"Doe, John\"\n2,2023-01-16\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	src, err := Open(path)
	require.NoError(t, err)

	rows, err := src.AllRows()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Invoice Number", rows[0][0])
	assert.Equal(t, "Doe, John", rows[1][2])
	assert.Len(t, rows[2], 2)
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.xlsx"))
	assert.Error(t, err)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0644))
	_, err = Open(txt)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	fake := filepath.Join(dir, "legacy.xls")
	require.NoError(t, os.WriteFile(fake, []byte("not a workbook"), 0644))
	src, err := Open(fake)
	require.NoError(t, err)
	_, err = src.AllRows()
	assert.Error(t, err)
}
