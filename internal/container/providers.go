package container

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/garyjia/invoice-importer/internal/application/importer"
	"github.com/garyjia/invoice-importer/internal/application/service"
	"github.com/garyjia/invoice-importer/internal/infrastructure/persistence/repository"
	"github.com/garyjia/invoice-importer/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/invoice-importer/internal/infrastructure/spreadsheet"
	"github.com/garyjia/invoice-importer/internal/infrastructure/storage"
	"github.com/garyjia/invoice-importer/pkg/database"
	"github.com/garyjia/invoice-importer/pkg/utils"
	"go.uber.org/zap"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	SqlDB             *database.DB
	TransactionMgr    *sqlite.DB
	MigrationsApplied int
}

// ProvideDatabase opens the database, creating its directory, and applies
// pending migrations when cfg.AutoMigrate is set.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if dir := filepath.Dir(cfg.Path); dir != "." && cfg.Path != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		BusyTimeout:     cfg.BusyTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	applied := 0
	if cfg.AutoMigrate {
		applied, err = database.NewMigrator(sqlDB, logger).RunMigrations(database.EmbeddedMigrations())
		if err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return &DatabaseBundle{
		SqlDB:             sqlDB,
		TransactionMgr:    sqlite.NewDB(sqlDB.DB, logger),
		MigrationsApplied: applied,
	}, nil
}

// ProvideRepositories creates all repositories over the transaction-aware DB.
func ProvideRepositories(db *sqlite.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	customers := repository.NewCustomerRepository(db, logger)
	items := repository.NewItemRepository(db, logger)
	invoices := repository.NewInvoiceRepository(db, customers, items, logger)

	return &RepositoryBundle{
		Customer: customers,
		Item:     items,
		Invoice:  invoices,
		Gateway:  repository.NewImportGateway(customers, invoices),
	}, nil
}

// ProvideStorage creates the upload directory and its storage.
func ProvideStorage(cfg *StorageConfig, logger *zap.Logger) (*storage.LocalFileStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return storage.NewLocalFileStorage(cfg.UploadDir, logger), nil
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Repos     *RepositoryBundle
	TxManager *sqlite.DB
	ImportCfg *ImportConfig
	Logger    *zap.Logger
}

// ProvideServices creates the import coordinator and the read-side services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repos == nil || deps.TxManager == nil {
		return nil, fmt.Errorf("repositories and transaction manager are required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	importCfg := ImportConfig{}
	if deps.ImportCfg != nil {
		importCfg = *deps.ImportCfg
	}

	kv := utils.NewKVLogger(deps.Logger)

	return &ServiceBundle{
		Importer: importer.NewCoordinator(
			deps.Repos.Gateway,
			deps.TxManager,
			spreadsheet.Open,
			importer.BuilderConfig{
				Dates:        importer.DateOptions{Date1904: importCfg.Date1904},
				StrictTotals: importCfg.StrictTotals,
			},
			kv,
		),
		Export: service.NewExportService(deps.Repos.Invoice, deps.Repos.Customer, kv),
		Query:  service.NewInvoiceQueryService(deps.Repos.Invoice, deps.Repos.Customer, kv),
	}, nil
}
