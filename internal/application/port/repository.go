package port

import (
	"context"
	"time"

	"github.com/garyjia/invoice-importer/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CustomerRepository defines persistence operations for Customer
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id int64) (*entity.Customer, error)
	FindByNameAndAddress(ctx context.Context, name, address string) (*entity.Customer, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Customer, error)
	Count(ctx context.Context) (int64, error)
}

// InvoiceItemRepository defines persistence operations for InvoiceItem
type InvoiceItemRepository interface {
	Create(ctx context.Context, item *entity.InvoiceItem) error
	GetByInvoiceID(ctx context.Context, invoiceID int64) ([]*entity.InvoiceItem, error)
}

// InvoiceFilter narrows invoice listings. Zero values mean "no bound".
type InvoiceFilter struct {
	CustomerID int64
	StartDate  *time.Time
	EndDate    *time.Time
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Limit      int
	Offset     int
}

// InvoiceRepository defines persistence operations for Invoice.
// Read methods return invoices with Customer and Items loaded.
type InvoiceRepository interface {
	// Create inserts the invoice and all of its items atomically
	Create(ctx context.Context, invoice *entity.Invoice) error

	GetByID(ctx context.Context, id int64) (*entity.Invoice, error)
	GetByNumber(ctx context.Context, number int64) (*entity.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error)
	ListByCustomerID(ctx context.Context, customerID int64) ([]*entity.Invoice, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*entity.Invoice, error)
	Count(ctx context.Context) (int64, error)

	// TotalRevenue sums grand totals across all invoices
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
