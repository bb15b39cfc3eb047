package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/invoice-importer/internal/application/port"
	"github.com/garyjia/invoice-importer/internal/domain/entity"
	"github.com/garyjia/invoice-importer/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const customerColumns = `customer_id, customer_name, customer_address, created_at, updated_at`

// CustomerRepository implements port.CustomerRepository
type CustomerRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *sqlite.DB, logger *zap.Logger) *CustomerRepository {
	return &CustomerRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a customer and sets its ID and timestamps
func (r *CustomerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	if err := customer.Validate(); err != nil {
		return fmt.Errorf("invalid customer: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO customers (customer_name, customer_address, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		customer.Name,
		customer.Address,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create customer", zap.String("name", customer.Name), zap.Error(err))
		return fmt.Errorf("failed to create customer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	customer.ID = id
	customer.CreatedAt = now
	customer.UpdatedAt = now
	return nil
}

// GetByID retrieves a customer by ID
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE customer_id = ?`

	customer, err := scanCustomer(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get customer by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// FindByNameAndAddress retrieves the customer with exactly this identity
func (r *CustomerRepository) FindByNameAndAddress(ctx context.Context, name, address string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + `
		FROM customers
		WHERE customer_name = ? AND customer_address = ?
		ORDER BY customer_id
		LIMIT 1`

	customer, err := scanCustomer(r.db.Executor(ctx).QueryRowContext(ctx, query, name, address))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find customer", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return customer, nil
}

// List returns customers ordered by name. A limit of 0 returns all.
func (r *CustomerRepository) List(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT ` + customerColumns + `
		FROM customers
		ORDER BY customer_name, customer_id
		LIMIT ? OFFSET ?`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list customers", zap.Error(err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*entity.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}

// Count returns the number of customers
func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.Executor(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCustomer(s rowScanner) (*entity.Customer, error) {
	var c entity.Customer
	if err := s.Scan(&c.ID, &c.Name, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

var _ port.CustomerRepository = (*CustomerRepository)(nil)
