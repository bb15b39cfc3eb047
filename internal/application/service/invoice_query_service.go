package service

import (
	"context"
	"fmt"

	"github.com/garyjia/invoice-importer/internal/application/port"
	"github.com/garyjia/invoice-importer/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Dashboard summarizes what has been imported so far
type Dashboard struct {
	TotalCustomers int64           `json:"total_customers"`
	TotalInvoices  int64           `json:"total_invoices"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	RecentInvoices []InvoiceRecord `json:"recent_invoices"`
}

const recentInvoiceLimit = 10

// InvoiceQueryService serves read-only views over imported invoices
type InvoiceQueryService interface {
	ListInvoices(ctx context.Context, filter port.InvoiceFilter) ([]*entity.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*entity.Invoice, error)
	ListCustomers(ctx context.Context, limit, offset int) ([]*entity.Customer, error)
	GetDashboard(ctx context.Context) (*Dashboard, error)
}

type invoiceQueryServiceImpl struct {
	invoiceRepo  port.InvoiceRepository
	customerRepo port.CustomerRepository
	logger       Logger
}

// NewInvoiceQueryService creates a new InvoiceQueryService
func NewInvoiceQueryService(
	invoiceRepo port.InvoiceRepository,
	customerRepo port.CustomerRepository,
	logger Logger,
) InvoiceQueryService {
	return &invoiceQueryServiceImpl{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		logger:       logger,
	}
}

func (s *invoiceQueryServiceImpl) ListInvoices(ctx context.Context, filter port.InvoiceFilter) ([]*entity.Invoice, error) {
	invoices, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list invoices", "error", err)
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// GetInvoice returns ErrInvoiceNotFound when id does not exist
func (s *invoiceQueryServiceImpl) GetInvoice(ctx context.Context, id int64) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get invoice", "error", err, "invoice_id", id)
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if invoice == nil {
		return nil, fmt.Errorf("%w: id %d", ErrInvoiceNotFound, id)
	}
	return invoice, nil
}

func (s *invoiceQueryServiceImpl) ListCustomers(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	customers, err := s.customerRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list customers", "error", err)
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

func (s *invoiceQueryServiceImpl) GetDashboard(ctx context.Context) (*Dashboard, error) {
	customers, err := s.customerRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	invoices, err := s.invoiceRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count invoices: %w", err)
	}

	revenue, err := s.invoiceRepo.TotalRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("total revenue: %w", err)
	}

	recent, err := s.invoiceRepo.List(ctx, port.InvoiceFilter{Limit: recentInvoiceLimit})
	if err != nil {
		return nil, fmt.Errorf("recent invoices: %w", err)
	}

	return &Dashboard{
		TotalCustomers: customers,
		TotalInvoices:  invoices,
		TotalRevenue:   entity.RoundMoney(revenue),
		RecentInvoices: invoiceRecords(recent),
	}, nil
}
