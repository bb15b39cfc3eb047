package repository

import (
	"context"

	"github.com/garyjia/invoice-importer/internal/application/port"
	"github.com/garyjia/invoice-importer/internal/domain/entity"
)

// ImportGateway adapts the repositories to the import pipeline
type ImportGateway struct {
	customers port.CustomerRepository
	invoices  port.InvoiceRepository
}

// NewImportGateway creates a new ImportGateway
func NewImportGateway(customers port.CustomerRepository, invoices port.InvoiceRepository) *ImportGateway {
	return &ImportGateway{customers: customers, invoices: invoices}
}

func (g *ImportGateway) FindCustomerByIdentity(ctx context.Context, name, address string) (*entity.Customer, error) {
	return g.customers.FindByNameAndAddress(ctx, name, address)
}

func (g *ImportGateway) CreateCustomer(ctx context.Context, customer *entity.Customer) error {
	return g.customers.Create(ctx, customer)
}

func (g *ImportGateway) CreateInvoiceWithItems(ctx context.Context, invoice *entity.Invoice) error {
	return g.invoices.Create(ctx, invoice)
}

var _ port.InvoiceGateway = (*ImportGateway)(nil)
