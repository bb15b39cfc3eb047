package port

import (
	"context"

	"github.com/garyjia/invoice-importer/internal/domain/entity"
)

// RowSource yields every row of a tabular source, header included
type RowSource interface {
	AllRows() ([]entity.Row, error)
}

// SourceOpener opens a file on disk as a RowSource
type SourceOpener func(path string) (RowSource, error)

// CustomerFinder looks up an existing customer by exact identity.
// It returns nil, nil when no customer matches.
type CustomerFinder interface {
	FindCustomerByIdentity(ctx context.Context, name, address string) (*entity.Customer, error)
}

// InvoiceGateway is the storage surface the import pipeline writes through
type InvoiceGateway interface {
	CustomerFinder

	// CreateCustomer persists a new customer and sets its ID
	CreateCustomer(ctx context.Context, customer *entity.Customer) error

	// CreateInvoiceWithItems persists the invoice and its items atomically
	// and sets their IDs
	CreateInvoiceWithItems(ctx context.Context, invoice *entity.Invoice) error
}
