package container

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/garyjia/invoice-importer/internal/application/importer"
	"github.com/garyjia/invoice-importer/internal/application/port"
	"github.com/garyjia/invoice-importer/internal/application/service"
	"github.com/garyjia/invoice-importer/internal/infrastructure/persistence/repository"
	"github.com/garyjia/invoice-importer/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/invoice-importer/internal/infrastructure/storage"
	"github.com/garyjia/invoice-importer/pkg/database"
	"go.uber.org/zap"
)

// Container manages all application dependencies and lifecycle.
// Components start in dependency order and close in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure - Data
	sqlDB             *database.DB
	db                *sqlite.DB
	repositories      *RepositoryBundle
	migrationsApplied int

	// Infrastructure - Storage
	fileStorage *storage.LocalFileStorage

	// Application
	services *ServiceBundle

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Customer port.CustomerRepository
	Item     port.InvoiceItemRepository
	Invoice  port.InvoiceRepository
	Gateway  port.InvoiceGateway
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Importer *importer.Coordinator
	Export   service.ExportService
	Query    service.InvoiceQueryService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// 1. Database, migrations and repositories
// 2. Upload storage
// 3. Import coordinator and application services
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized", zap.Int("migrations_applied", c.migrationsApplied))

	if err := c.initStorage(); err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := c.initServices(); err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.logger.Info("Application services initialized")

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	// Services and storage hold no resources; only the database needs closing
	err := c.closeDatabase()

	c.closed.Store(true)
	c.ready.Store(false)

	if err != nil {
		c.logger.Error("Container closed with errors", zap.Error(err))
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}
	set := func(name string, h ComponentHealth) {
		status.Components[name] = h
		if !h.Healthy {
			status.Overall = false
		}
	}

	switch {
	case c.sqlDB == nil:
		set("database", ComponentHealth{Message: "not initialized"})
	default:
		if err := c.sqlDB.Ping(); err != nil {
			set("database", ComponentHealth{Message: fmt.Sprintf("ping failed: %v", err)})
		} else {
			set("database", ComponentHealth{Healthy: true})
		}
	}

	if c.fileStorage == nil {
		set("storage", ComponentHealth{Message: "not initialized"})
	} else if _, err := os.Stat(c.fileStorage.BaseDir()); err != nil {
		set("storage", ComponentHealth{Message: fmt.Sprintf("upload dir unavailable: %v", err)})
	} else {
		set("storage", ComponentHealth{Healthy: true})
	}

	if c.services == nil {
		set("importer", ComponentHealth{Message: "not initialized"})
	} else {
		set("importer", ComponentHealth{Healthy: true, Message: c.services.Importer.State().String()})
	}

	return status
}

func (c *Container) initDatabase() error {
	dbBundle, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return err
	}

	c.sqlDB = dbBundle.SqlDB
	c.db = dbBundle.TransactionMgr
	c.migrationsApplied = dbBundle.MigrationsApplied

	repos, err := ProvideRepositories(c.db, c.logger)
	if err != nil {
		c.closeDatabase()
		return err
	}

	c.repositories = repos
	return nil
}

func (c *Container) initStorage() error {
	fs, err := ProvideStorage(&c.config.Storage, c.logger)
	if err != nil {
		return err
	}
	c.fileStorage = fs
	return nil
}

func (c *Container) initServices() error {
	services, err := ProvideServices(&ServiceDeps{
		Repos:     c.repositories,
		TxManager: c.db,
		ImportCfg: &c.config.Import,
		Logger:    c.logger,
	})
	if err != nil {
		return err
	}

	c.services = services
	return nil
}

func (c *Container) closeDatabase() error {
	if c.sqlDB == nil {
		return nil
	}
	err := c.sqlDB.Close()
	c.sqlDB = nil
	c.db = nil
	return err
}

// DB returns the transaction manager.
func (c *Container) DB() port.TransactionManager {
	return c.db
}

// SQLDB returns the underlying database handle.
func (c *Container) SQLDB() *database.DB {
	return c.sqlDB
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// FileStorage returns the upload storage.
func (c *Container) FileStorage() *storage.LocalFileStorage {
	return c.fileStorage
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// MigrationsApplied is the number of migrations Start applied.
func (c *Container) MigrationsApplied() int {
	return c.migrationsApplied
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

var _ port.InvoiceGateway = (*repository.ImportGateway)(nil)
