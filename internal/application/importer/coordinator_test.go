package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/garyjia/invoice-importer/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoordinator(gateway *mockGateway, tx *mockTxManager, src *mockSource) *Coordinator {
	if tx == nil {
		tx = &mockTxManager{}
	}
	if src == nil {
		src = &mockSource{}
	}
	return NewCoordinator(gateway, tx, openerFor(src, nil), BuilderConfig{}, &mockLogger{})
}

func TestCoordinator_ImportRows_EndToEnd(t *testing.T) {
	gateway := &mockGateway{}
	tx := &mockTxManager{}
	c := newTestCoordinator(gateway, tx, nil)

	result, stats, err := c.ImportRows(context.Background(), sampleRows())
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 0, result.ErrorCount)
	assert.True(t, result.IsSuccess())
	assert.Equal(t, 2, result.TotalProcessed())
	assert.NotEmpty(t, result.RunID)

	require.Len(t, result.ImportedInvoices, 2)
	assert.Equal(t, "66.00", result.ImportedInvoices[0].GrandTotal.StringFixed(2))
	assert.Equal(t, "30.00", result.ImportedInvoices[1].GrandTotal.StringFixed(2))
	assert.Equal(t, "2023-01-15", result.ImportedInvoices[0].InvoiceDate.Format("2006-01-02"))

	assert.Equal(t, Statistics{
		TotalRows:         4,
		ProcessedRows:     3,
		SuccessfulImports: 2,
		FailedImports:     0,
		CustomersCreated:  2,
		InvoicesCreated:   2,
	}, stats)
	assert.Equal(t, 2, stats.Map()["customers_created"])

	assert.Len(t, gateway.customers, 2)
	assert.Len(t, gateway.invoices, 2)
	assert.Equal(t, 2, tx.calls)
	assert.Equal(t, StateDone, c.State())
}

func TestCoordinator_SharedCustomerAcrossGroups(t *testing.T) {
	gateway := &mockGateway{}
	c := newTestCoordinator(gateway, nil, nil)

	rows := []entity.Row{
		headerRow(),
		{10, "2023-01-15", "Acme", "1 Road", "A", 1, 1},
		{11, "2023-01-16", "Acme", "1 Road", "B", 1, 2},
		{12, "2023-01-17", "Acme", "1 Road", "C", 1, 3},
	}
	result, stats, err := c.ImportRows(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 1, stats.CustomersCreated)
	require.Len(t, gateway.customers, 1)
	for _, inv := range result.ImportedInvoices {
		assert.Equal(t, gateway.customers[0].ID, inv.CustomerID)
	}
}

func TestCoordinator_IsolatesGroupFailures(t *testing.T) {
	gateway := &mockGateway{}
	c := newTestCoordinator(gateway, nil, nil)

	rows := []entity.Row{
		headerRow(),
		{1, "2023-01-15", "", "1 Road", "A", 1, 1},
		{2, "2023-01-15", "Bob", "2 Road", "B", 1, 1},
		{"abc", "2023-01-15", "Bob", "2 Road", "B", 1, 1},
		{3, "bad date", "Cy", "3 Road", "C", 1, 1},
	}
	result, stats, err := c.ImportRows(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.ErrorCount)
	assert.False(t, result.IsSuccess())
	assert.Equal(t, 3, result.TotalProcessed())
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Invoice 1 processing failed")
	assert.Contains(t, result.Errors[1], "Invoice 3 processing failed")

	assert.Equal(t, 5, stats.TotalRows)
	assert.Equal(t, 3, stats.ProcessedRows)
	assert.Equal(t, 2, stats.FailedImports)
	assert.Equal(t, 1, stats.InvoicesCreated)
}

func TestCoordinator_StorageFailure(t *testing.T) {
	gateway := &mockGateway{
		createInvoiceErr: func(inv *entity.Invoice) error {
			if inv.InvoiceNumber == 1 {
				return errors.New("disk full")
			}
			return nil
		},
	}
	c := newTestCoordinator(gateway, nil, nil)

	result, stats, err := c.ImportRows(context.Background(), sampleRows())
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Contains(t, result.Errors[0], "Invoice 1 processing failed")
	assert.Contains(t, result.Errors[0], "disk full")
	assert.Equal(t, 1, stats.InvoicesCreated)
	assert.Equal(t, 1, stats.CustomersCreated)
}

func TestCoordinator_DuplicateInvoiceAcrossRuns(t *testing.T) {
	gateway := &mockGateway{}
	c := newTestCoordinator(gateway, nil, nil)

	_, _, err := c.ImportRows(context.Background(), sampleRows())
	require.NoError(t, err)

	result, stats, err := c.ImportRows(context.Background(), sampleRows())
	require.NoError(t, err)
	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 2, result.ErrorCount)
	assert.Equal(t, 0, stats.CustomersCreated)
	assert.Equal(t, 2, stats.FailedImports)
}

func TestCoordinator_FatalErrors(t *testing.T) {
	t.Run("ungroupable rows", func(t *testing.T) {
		c := newTestCoordinator(&mockGateway{}, nil, nil)
		result, stats, err := c.ImportRows(context.Background(), []entity.Row{headerRow(), {"x", "y"}})
		assert.ErrorIs(t, err, ErrEmptyOrUngroupable)
		require.NotNil(t, result)
		assert.Equal(t, 0, result.TotalProcessed())
		assert.Equal(t, 2, stats.TotalRows)
		assert.Equal(t, StateAborted, c.State())
	})

	t.Run("unsupported extension", func(t *testing.T) {
		c := newTestCoordinator(&mockGateway{}, nil, &mockSource{rows: sampleRows()})
		_, _, err := c.ImportFile(context.Background(), "/tmp/invoices.pdf")
		assert.ErrorIs(t, err, ErrInvalidSource)
	})

	t.Run("open failure", func(t *testing.T) {
		c := NewCoordinator(&mockGateway{}, &mockTxManager{}, openerFor(nil, errors.New("no such file")),
			BuilderConfig{}, &mockLogger{})
		_, _, err := c.ImportFile(context.Background(), "/tmp/missing.xlsx")
		assert.ErrorIs(t, err, ErrInvalidSource)
	})

	t.Run("read failure", func(t *testing.T) {
		gateway := &mockGateway{}
		c := newTestCoordinator(gateway, nil, &mockSource{err: errors.New("corrupt zip")})
		_, _, err := c.ImportFile(context.Background(), "/tmp/broken.xlsx")
		assert.ErrorIs(t, err, ErrInvalidSource)
		assert.Empty(t, gateway.invoices)
	})
}

func TestCoordinator_ImportFile(t *testing.T) {
	gateway := &mockGateway{}
	c := newTestCoordinator(gateway, nil, &mockSource{rows: sampleRows()})

	result, stats, err := c.ImportFile(context.Background(), "/data/Invoices.XLSX")
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 2, stats.InvoicesCreated)
}

func TestCoordinator_Validate(t *testing.T) {
	gateway := &mockGateway{}
	tx := &mockTxManager{}
	c := newTestCoordinator(gateway, tx, &mockSource{rows: sampleRows()})

	assert.True(t, c.ValidateFile(context.Background(), "/data/invoices.csv"))
	assert.True(t, c.ValidateRows(context.Background(), sampleRows()))
	assert.False(t, c.ValidateFile(context.Background(), "/data/invoices.txt"))
	assert.False(t, c.ValidateRows(context.Background(), []entity.Row{headerRow()}))
	assert.False(t, c.ValidateRows(context.Background(), []entity.Row{
		{1, "bad", "John", "addr", "A", 1, 1},
	}))

	assert.Empty(t, gateway.customers)
	assert.Empty(t, gateway.invoices)
	assert.Equal(t, 0, tx.calls)
}

func TestCoordinator_TransactionPerGroup(t *testing.T) {
	var seen []int
	tx := &mockTxManager{}
	tx.withTransactionFunc = func(ctx context.Context, fn func(ctx context.Context) error) error {
		seen = append(seen, tx.calls)
		return fn(ctx)
	}
	c := newTestCoordinator(&mockGateway{}, tx, nil)

	_, _, err := c.ImportRows(context.Background(), sampleRows())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, seen)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "processing", StateProcessing.String())
	assert.Equal(t, "state(99)", State(99).String())
}
