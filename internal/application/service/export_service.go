package service

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/invoice-importer/internal/application/port"
	"github.com/garyjia/invoice-importer/internal/domain/entity"
)

// Logger defines the logging interface used by services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ExportService renders stored invoices and customers as json, xml or excel
type ExportService interface {
	ExportInvoices(ctx context.Context, format string, filter port.InvoiceFilter) ([]byte, error)
	ExportInvoice(ctx context.Context, id int64, format string) ([]byte, error)
	ExportCustomers(ctx context.Context, format string) ([]byte, error)
	SupportedFormats() []string
	IsValidFormat(format string) bool
}

type exportServiceImpl struct {
	invoiceRepo  port.InvoiceRepository
	customerRepo port.CustomerRepository
	logger       Logger
	now          func() time.Time
}

// NewExportService creates a new ExportService
func NewExportService(
	invoiceRepo port.InvoiceRepository,
	customerRepo port.CustomerRepository,
	logger Logger,
) ExportService {
	return &exportServiceImpl{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// ExportInvoices renders every invoice matching filter
func (s *exportServiceImpl) ExportInvoices(ctx context.Context, format string, filter port.InvoiceFilter) ([]byte, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list invoices for export", "error", err)
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	out, err := s.renderInvoices(f, invoices)
	if err != nil {
		s.logger.Error("Failed to render invoices", "error", err, "format", f)
		return nil, err
	}

	s.logger.Info("Invoices exported", "format", f, "count", len(invoices), "bytes", len(out))
	return out, nil
}

// ExportInvoice renders a single invoice
func (s *exportServiceImpl) ExportInvoice(ctx context.Context, id int64, format string) ([]byte, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get invoice for export", "error", err, "invoice_id", id)
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if invoice == nil {
		return nil, fmt.Errorf("%w: id %d", ErrInvoiceNotFound, id)
	}

	return s.renderInvoices(f, []*entity.Invoice{invoice})
}

// ExportCustomers renders every customer
func (s *exportServiceImpl) ExportCustomers(ctx context.Context, format string) ([]byte, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	customers, err := s.customerRepo.List(ctx, 0, 0)
	if err != nil {
		s.logger.Error("Failed to list customers for export", "error", err)
		return nil, fmt.Errorf("list customers: %w", err)
	}

	var out []byte
	switch f {
	case FormatJSON:
		out, err = encodeJSON(s.now(), len(customers), customerRecords(customers))
	case FormatXML:
		out, err = encodeXML(xmlEnvelope{
			Timestamp:    s.now().Format(timestampLayout),
			TotalRecords: len(customers),
			Customers:    customerRecords(customers),
		})
	case FormatExcel:
		out, err = encodeCustomersExcel(customers)
	}
	if err != nil {
		s.logger.Error("Failed to render customers", "error", err, "format", f)
		return nil, err
	}

	s.logger.Info("Customers exported", "format", f, "count", len(customers))
	return out, nil
}

// SupportedFormats lists the accepted format names
func (s *exportServiceImpl) SupportedFormats() []string {
	names := make([]string, len(supportedFormats))
	for i, f := range supportedFormats {
		names[i] = string(f)
	}
	return names
}

// IsValidFormat reports whether format is supported, ignoring case
func (s *exportServiceImpl) IsValidFormat(format string) bool {
	_, err := ParseFormat(format)
	return err == nil
}

func (s *exportServiceImpl) renderInvoices(f Format, invoices []*entity.Invoice) ([]byte, error) {
	switch f {
	case FormatXML:
		return encodeXML(xmlEnvelope{
			Timestamp:    s.now().Format(timestampLayout),
			TotalRecords: len(invoices),
			Invoices:     invoiceRecords(invoices),
		})
	case FormatExcel:
		return encodeInvoicesExcel(invoices)
	default:
		return encodeJSON(s.now(), len(invoices), invoiceRecords(invoices))
	}
}

func invoiceRecords(invoices []*entity.Invoice) []InvoiceRecord {
	records := make([]InvoiceRecord, 0, len(invoices))
	for _, inv := range invoices {
		records = append(records, ToInvoiceRecord(inv))
	}
	return records
}

func customerRecords(customers []*entity.Customer) []CustomerRecord {
	records := make([]CustomerRecord, 0, len(customers))
	for _, c := range customers {
		records = append(records, ToCustomerRecord(c))
	}
	return records
}
