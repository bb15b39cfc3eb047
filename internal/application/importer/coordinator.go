package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/garyjia/invoice-importer/internal/application/port"
	"github.com/garyjia/invoice-importer/internal/domain/entity"
	"github.com/google/uuid"
)

// Logger defines logging interface
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// SupportedExtensions lists the file types ImportFile accepts
var SupportedExtensions = []string{".xlsx", ".xls", ".csv"}

// State is the lifecycle stage of an import run
type State int

const (
	StateIdle State = iota
	StateReading
	StateGrouping
	StateProcessing
	StateFinalizing
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReading:
		return "reading"
	case StateGrouping:
		return "grouping"
	case StateProcessing:
		return "processing"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Coordinator drives an import run from source rows to persisted invoices.
// Runs are serialized; groups within a run are processed in order, each in
// its own transaction.
type Coordinator struct {
	gateway   port.InvoiceGateway
	txManager port.TransactionManager
	open      port.SourceOpener
	builder   *Builder
	logger    Logger

	mu    sync.Mutex
	state atomic.Int32
	stats Statistics
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(
	gateway port.InvoiceGateway,
	txManager port.TransactionManager,
	open port.SourceOpener,
	cfg BuilderConfig,
	logger Logger,
) *Coordinator {
	return &Coordinator{
		gateway:   gateway,
		txManager: txManager,
		open:      open,
		builder:   NewBuilder(gateway, cfg),
		logger:    logger,
	}
}

// State returns the stage of the current or last run
// without waiting for a running import
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

func (c *Coordinator) setState(s State) {
	c.state.Store(int32(s))
}

// HasSupportedExtension reports whether path names a readable file type
func HasSupportedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ImportFile reads the file at path and imports every invoice group in it.
// The error is non-nil only when the whole run could not proceed.
func (c *Coordinator) ImportFile(ctx context.Context, path string) (*ImportResult, Statistics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := c.begin()
	c.logger.Info("Import run started", "run_id", result.RunID, "source", path)

	c.setState(StateReading)
	rows, err := c.readSource(path)
	if err != nil {
		return c.abort(result, err)
	}
	return c.run(ctx, result, rows)
}

// ImportRows imports already-read rows, header included
func (c *Coordinator) ImportRows(ctx context.Context, rows []entity.Row) (*ImportResult, Statistics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := c.begin()
	c.logger.Info("Import run started", "run_id", result.RunID, "source", "rows", "rows", len(rows))
	return c.run(ctx, result, rows)
}

// ValidateFile is a dry run of ImportFile: it reads, groups and builds
// without writing anything. It reports whether at least one group built.
func (c *Coordinator) ValidateFile(ctx context.Context, path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setState(StateReading)
	rows, err := c.readSource(path)
	if err != nil {
		c.setState(StateAborted)
		c.logger.Error("Validation failed", "source", path, "error", err)
		return false
	}
	return c.validate(ctx, rows)
}

// ValidateRows is the dry-run counterpart of ImportRows
func (c *Coordinator) ValidateRows(ctx context.Context, rows []entity.Row) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validate(ctx, rows)
}

func (c *Coordinator) begin() *ImportResult {
	c.stats = Statistics{}
	c.setState(StateIdle)
	return newImportResult(uuid.NewString())
}

func (c *Coordinator) readSource(path string) ([]entity.Row, error) {
	if !HasSupportedExtension(path) {
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrInvalidSource, filepath.Ext(path))
	}
	src, err := c.open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	rows, err := src.AllRows()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	return rows, nil
}

func (c *Coordinator) run(ctx context.Context, result *ImportResult, rows []entity.Row) (*ImportResult, Statistics, error) {
	c.setState(StateGrouping)
	c.stats.TotalRows = len(rows)

	groups := GroupRows(rows)
	if len(groups) == 0 {
		return c.abort(result, ErrEmptyOrUngroupable)
	}

	c.setState(StateProcessing)
	for _, group := range groups {
		c.processGroup(ctx, result, group)
	}

	c.setState(StateFinalizing)
	result.FinishedAt = time.Now()
	c.logger.Info("Import run completed",
		"run_id", result.RunID,
		"successful", result.SuccessCount,
		"failed", result.ErrorCount,
		"customers_created", c.stats.CustomersCreated,
		"duration", result.FinishedAt.Sub(result.StartedAt).String())

	c.setState(StateDone)
	return result, c.stats, nil
}

func (c *Coordinator) processGroup(ctx context.Context, result *ImportResult, group Group) {
	c.stats.ProcessedRows += len(group.Rows)

	built := c.builder.Build(ctx, group)
	if !built.OK() {
		c.recordFailure(result, built.Err)
		return
	}

	err := c.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if built.CustomerCreated {
			if err := c.gateway.CreateCustomer(txCtx, built.Customer); err != nil {
				return fmt.Errorf("create customer: %w", err)
			}
		}
		built.Invoice.SetCustomer(built.Customer)
		if err := c.gateway.CreateInvoiceWithItems(txCtx, built.Invoice); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		c.recordFailure(result, &GroupError{
			InvoiceNumber: group.InvoiceNumber,
			Line:          group.FirstLine(),
			Err:           fmt.Errorf("%w: %v", ErrStorage, err),
		})
		return
	}

	result.addSuccess(built.Invoice)
	c.stats.SuccessfulImports++
	c.stats.InvoicesCreated++
	if built.CustomerCreated {
		c.stats.CustomersCreated++
	}
}

func (c *Coordinator) recordFailure(result *ImportResult, err error) {
	result.addError(err)
	c.stats.FailedImports++

	var ge *GroupError
	if errors.As(err, &ge) {
		c.logger.Error("Invoice group failed",
			"run_id", result.RunID,
			"invoice_number", ge.InvoiceNumber,
			"line", ge.Line,
			"error", ge.Err)
		return
	}
	c.logger.Error("Invoice group failed", "run_id", result.RunID, "error", err)
}

func (c *Coordinator) abort(result *ImportResult, err error) (*ImportResult, Statistics, error) {
	c.setState(StateAborted)
	result.FinishedAt = time.Now()
	c.logger.Error("Import run aborted", "run_id", result.RunID, "error", err)
	return result, c.stats, err
}

func (c *Coordinator) validate(ctx context.Context, rows []entity.Row) bool {
	c.setState(StateGrouping)
	groups := GroupRows(rows)
	if len(groups) == 0 {
		c.setState(StateAborted)
		c.logger.Error("Validation failed", "error", ErrEmptyOrUngroupable)
		return false
	}

	c.setState(StateProcessing)
	valid := 0
	for _, group := range groups {
		built := c.builder.Build(ctx, group)
		if !built.OK() {
			c.logger.Error("Validation error", "invoice_number", group.InvoiceNumber, "error", built.Err)
			continue
		}
		valid++
	}

	c.setState(StateDone)
	c.logger.Info("Validation completed", "groups", len(groups), "valid", valid)
	return valid > 0
}
