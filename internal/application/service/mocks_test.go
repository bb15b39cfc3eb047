package service

import (
	"context"
	"time"

	"github.com/garyjia/invoice-importer/internal/application/port"
	"github.com/garyjia/invoice-importer/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockInvoiceRepo struct {
	invoices   []*entity.Invoice
	listErr    error
	lastFilter port.InvoiceFilter
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	invoice.ID = int64(len(m.invoices) + 1)
	m.invoices = append(m.invoices, invoice)
	return nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	for _, inv := range m.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, nil
}

func (m *mockInvoiceRepo) GetByNumber(ctx context.Context, number int64) (*entity.Invoice, error) {
	for _, inv := range m.invoices {
		if inv.InvoiceNumber == number {
			return inv, nil
		}
	}
	return nil, nil
}

func (m *mockInvoiceRepo) List(ctx context.Context, filter port.InvoiceFilter) ([]*entity.Invoice, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*entity.Invoice
	for _, inv := range m.invoices {
		if filter.CustomerID != 0 && inv.CustomerID != filter.CustomerID {
			continue
		}
		out = append(out, inv)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *mockInvoiceRepo) ListByCustomerID(ctx context.Context, customerID int64) ([]*entity.Invoice, error) {
	return m.List(ctx, port.InvoiceFilter{CustomerID: customerID})
}

func (m *mockInvoiceRepo) ListByDateRange(ctx context.Context, start, end time.Time) ([]*entity.Invoice, error) {
	return m.List(ctx, port.InvoiceFilter{StartDate: &start, EndDate: &end})
}

func (m *mockInvoiceRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.invoices)), nil
}

func (m *mockInvoiceRepo) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, inv := range m.invoices {
		total = total.Add(inv.GrandTotal)
	}
	return total, nil
}

type mockCustomerRepo struct {
	customers []*entity.Customer
}

func (m *mockCustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	customer.ID = int64(len(m.customers) + 1)
	m.customers = append(m.customers, customer)
	return nil
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, id int64) (*entity.Customer, error) {
	for _, c := range m.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCustomerRepo) FindByNameAndAddress(ctx context.Context, name, address string) (*entity.Customer, error) {
	for _, c := range m.customers {
		if c.Name == name && c.Address == address {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCustomerRepo) List(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	return m.customers, nil
}

func (m *mockCustomerRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.customers)), nil
}

func seededRepos() (*mockInvoiceRepo, *mockCustomerRepo) {
	created := time.Date(2023, 2, 1, 9, 30, 0, 0, time.UTC)
	john := &entity.Customer{ID: 1, Name: "John Doe", Address: "123 Main St", CreatedAt: created, UpdatedAt: created}
	jane := &entity.Customer{ID: 2, Name: "Jane Smith", Address: "456 Oak Ave", CreatedAt: created, UpdatedAt: created}

	first := entity.NewInvoice(1, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), john)
	first.ID = 1
	first.AddItem(&entity.InvoiceItem{ID: 1, InvoiceID: 1, ProductName: "Product A",
		Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("25.50"), TotalPrice: decimal.RequireFromString("51.00")})
	first.AddItem(&entity.InvoiceItem{ID: 2, InvoiceID: 1, ProductName: "Product B",
		Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("15.00"), TotalPrice: decimal.RequireFromString("15.00")})

	second := entity.NewInvoice(2, time.Date(2023, 1, 16, 0, 0, 0, 0, time.UTC), jane)
	second.ID = 2
	second.AddItem(&entity.InvoiceItem{ID: 3, InvoiceID: 2, ProductName: "Product C",
		Quantity: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("10.00"), TotalPrice: decimal.RequireFromString("30.00")})

	return &mockInvoiceRepo{invoices: []*entity.Invoice{first, second}},
		&mockCustomerRepo{customers: []*entity.Customer{john, jane}}
}
