package importer

import (
	"context"
	"fmt"

	"github.com/garyjia/invoice-importer/internal/application/port"
	"github.com/garyjia/invoice-importer/internal/domain/entity"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
	calls               int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

// mockGateway keeps customers and invoices in memory unless a func field
// overrides the call
type mockGateway struct {
	findFunc          func(ctx context.Context, name, address string) (*entity.Customer, error)
	createCustomerErr error
	createInvoiceErr  func(inv *entity.Invoice) error

	customers []*entity.Customer
	invoices  []*entity.Invoice
	nextID    int64
}

func (m *mockGateway) FindCustomerByIdentity(ctx context.Context, name, address string) (*entity.Customer, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, name, address)
	}
	for _, c := range m.customers {
		if c.Name == name && c.Address == address {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockGateway) CreateCustomer(ctx context.Context, customer *entity.Customer) error {
	if m.createCustomerErr != nil {
		return m.createCustomerErr
	}
	m.nextID++
	customer.ID = m.nextID
	m.customers = append(m.customers, customer)
	return nil
}

func (m *mockGateway) CreateInvoiceWithItems(ctx context.Context, invoice *entity.Invoice) error {
	if m.createInvoiceErr != nil {
		if err := m.createInvoiceErr(invoice); err != nil {
			return err
		}
	}
	for _, existing := range m.invoices {
		if existing.InvoiceNumber == invoice.InvoiceNumber {
			return fmt.Errorf("UNIQUE constraint failed: invoices.invoice_number")
		}
	}
	m.nextID++
	invoice.ID = m.nextID
	m.invoices = append(m.invoices, invoice)
	return nil
}

type mockSource struct {
	rows []entity.Row
	err  error
}

func (m *mockSource) AllRows() ([]entity.Row, error) {
	return m.rows, m.err
}

func openerFor(src *mockSource, openErr error) port.SourceOpener {
	return func(path string) (port.RowSource, error) {
		if openErr != nil {
			return nil, openErr
		}
		return src, nil
	}
}

func headerRow() entity.Row {
	return entity.Row{"Invoice Number", "Invoice Date", "Customer Name", "Customer Address",
		"Product Name", "Quantity", "Unit Price", "Total Price", "Grand Total"}
}

func sampleRows() []entity.Row {
	return []entity.Row{
		headerRow(),
		{1, "2023年1月15日", "John Doe", "123 Main St, City, State", "Product A", 2, 25.50},
		{1, "2023年1月15日", "John Doe", "123 Main St, City, State", "Product B", 1, 15.00},
		{2, "2023年1月16日", "Jane Smith", "456 Oak Ave, City, State", "Product C", 3, 10.00},
	}
}
