package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/invoice-importer/internal/application/port"
	"github.com/garyjia/invoice-importer/internal/domain/entity"
	"github.com/garyjia/invoice-importer/internal/infrastructure/persistence/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const invoiceColumns = `invoice_id, invoice_number, invoice_date, customer_id, grand_total, created_at, updated_at`

// InvoiceRepository implements port.InvoiceRepository
type InvoiceRepository struct {
	db        *sqlite.DB
	customers port.CustomerRepository
	items     port.InvoiceItemRepository
	logger    *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(
	db *sqlite.DB,
	customers port.CustomerRepository,
	items port.InvoiceItemRepository,
	logger *zap.Logger,
) *InvoiceRepository {
	return &InvoiceRepository{
		db:        db,
		customers: customers,
		items:     items,
		logger:    logger,
	}
}

// Create inserts the invoice and its items in one transaction, joining the
// caller's transaction when there is one
func (r *InvoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	if invoice.Customer != nil && invoice.CustomerID == 0 {
		invoice.CustomerID = invoice.Customer.ID
	}
	if invoice.CustomerID == 0 {
		return fmt.Errorf("failed to create invoice %d: %w", invoice.InvoiceNumber, entity.ErrInvoiceHasNoCustomer)
	}
	if len(invoice.Items) == 0 {
		return fmt.Errorf("failed to create invoice %d: %w", invoice.InvoiceNumber, entity.ErrInvoiceHasNoItems)
	}

	return r.db.WithTransaction(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		query := `
			INSERT INTO invoices (
				invoice_number, invoice_date, customer_id, grand_total,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?)
		`

		result, err := r.db.Executor(ctx).ExecContext(ctx, query,
			invoice.InvoiceNumber,
			invoice.InvoiceDate,
			invoice.CustomerID,
			invoice.GrandTotal,
			now,
			now,
		)
		if err != nil {
			r.logger.Error("Failed to create invoice",
				zap.Int64("invoice_number", invoice.InvoiceNumber),
				zap.Error(err))
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		for _, item := range invoice.Items {
			item.InvoiceID = id
			if err := r.items.Create(ctx, item); err != nil {
				return err
			}
		}

		invoice.ID = id
		invoice.CreatedAt = now
		invoice.UpdatedAt = now
		return nil
	})
}

// GetByID retrieves an invoice with its customer and items
func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = ?`
	return r.getOne(ctx, query, id)
}

// GetByNumber retrieves an invoice by its business number
func (r *InvoiceRepository) GetByNumber(ctx context.Context, number int64) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_number = ?`
	return r.getOne(ctx, query, number)
}

// List returns invoices matching filter, newest first
func (r *InvoiceRepository) List(ctx context.Context, filter port.InvoiceFilter) ([]*entity.Invoice, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.CustomerID > 0 {
		conds = append(conds, "customer_id = ?")
		args = append(args, filter.CustomerID)
	}
	if filter.StartDate != nil {
		conds = append(conds, "invoice_date >= ?")
		args = append(args, filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		conds = append(conds, "invoice_date <= ?")
		args = append(args, filter.EndDate.UTC())
	}
	if filter.MinAmount != nil {
		conds = append(conds, "grand_total >= ?")
		args = append(args, filter.MinAmount.InexactFloat64())
	}
	if filter.MaxAmount != nil {
		conds = append(conds, "grand_total <= ?")
		args = append(args, filter.MaxAmount.InexactFloat64())
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY invoice_date DESC, invoice_number ASC"

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	return r.getMany(ctx, query, args...)
}

// ListByCustomerID returns all invoices of a customer, newest first
func (r *InvoiceRepository) ListByCustomerID(ctx context.Context, customerID int64) ([]*entity.Invoice, error) {
	return r.List(ctx, port.InvoiceFilter{CustomerID: customerID})
}

// ListByDateRange returns invoices dated within [start, end], newest first
func (r *InvoiceRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]*entity.Invoice, error) {
	return r.List(ctx, port.InvoiceFilter{StartDate: &start, EndDate: &end})
}

// Count returns the number of invoices
func (r *InvoiceRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.Executor(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return n, nil
}

// TotalRevenue sums the grand totals of all invoices
func (r *InvoiceRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := r.db.Executor(ctx).QueryRowContext(ctx, `SELECT SUM(grand_total) FROM invoices`).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum invoices: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return entity.RoundMoney(total.Decimal), nil
}

func (r *InvoiceRepository) getOne(ctx context.Context, query string, arg interface{}) (*entity.Invoice, error) {
	invoice, err := scanInvoice(r.db.Executor(ctx).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get invoice", zap.Any("key", arg), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if err := r.loadRelations(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *InvoiceRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]*entity.Invoice, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list invoices", zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	var invoices []*entity.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Close before loading relations so a single-connection pool is free
	rows.Close()

	for _, invoice := range invoices {
		if err := r.loadRelations(ctx, invoice); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

func (r *InvoiceRepository) loadRelations(ctx context.Context, invoice *entity.Invoice) error {
	customer, err := r.customers.GetByID(ctx, invoice.CustomerID)
	if err != nil {
		return err
	}
	invoice.Customer = customer

	items, err := r.items.GetByInvoiceID(ctx, invoice.ID)
	if err != nil {
		return err
	}
	invoice.Items = items
	return nil
}

func scanInvoice(s rowScanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := s.Scan(
		&inv.ID,
		&inv.InvoiceNumber,
		&inv.InvoiceDate,
		&inv.CustomerID,
		&inv.GrandTotal,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
