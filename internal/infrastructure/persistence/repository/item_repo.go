package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/invoice-importer/internal/application/port"
	"github.com/garyjia/invoice-importer/internal/domain/entity"
	"github.com/garyjia/invoice-importer/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// ItemRepository implements port.InvoiceItemRepository
type ItemRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewItemRepository creates a new invoice item repository
func NewItemRepository(db *sqlite.DB, logger *zap.Logger) *ItemRepository {
	return &ItemRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an invoice item. InvoiceID must already be set.
func (r *ItemRepository) Create(ctx context.Context, item *entity.InvoiceItem) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO invoice_items (
			invoice_id, product_name, quantity, unit_price, total_price,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		item.InvoiceID,
		item.ProductName,
		item.Quantity,
		item.UnitPrice,
		item.TotalPrice,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice item",
			zap.Int64("invoice_id", item.InvoiceID),
			zap.Error(err))
		return fmt.Errorf("failed to create invoice item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

// GetByInvoiceID retrieves the items of an invoice in insertion order
func (r *ItemRepository) GetByInvoiceID(ctx context.Context, invoiceID int64) ([]*entity.InvoiceItem, error) {
	query := `
		SELECT item_id, invoice_id, product_name, quantity, unit_price, total_price,
			created_at, updated_at
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY item_id
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, invoiceID)
	if err != nil {
		r.logger.Error("Failed to get items by invoice ID", zap.Int64("invoice_id", invoiceID), zap.Error(err))
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []*entity.InvoiceItem
	for rows.Next() {
		var item entity.InvoiceItem
		err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

var _ port.InvoiceItemRepository = (*ItemRepository)(nil)
