// Package container provides dependency injection and lifecycle management
// for the invoice importer.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
type Config struct {
	Database DatabaseConfig
	Import   ImportConfig
	Storage  StorageConfig
	Server   ServerConfig
	Export   ExportConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	BusyTimeout     time.Duration

	// AutoMigrate applies pending embedded migrations on Start
	AutoMigrate bool
}

// ImportConfig holds spreadsheet import settings.
type ImportConfig struct {
	StrictTotals bool
	Date1904     bool
}

// StorageConfig holds file storage settings.
type StorageConfig struct {
	// UploadDir holds uploaded spreadsheets while they are imported
	UploadDir string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// MaxUploadSize caps the multipart body of an import request, in bytes
	MaxUploadSize int64
}

// ExportConfig holds export settings.
type ExportConfig struct {
	DefaultFormat string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/invoices.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			BusyTimeout:     5 * time.Second,
			AutoMigrate:     true,
		},
		Storage: StorageConfig{
			UploadDir: "data/uploads",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadSize:   32 << 20,
		},
		Export: ExportConfig{
			DefaultFormat: "json",
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.UploadDir == "" {
		return fmt.Errorf("storage.upload_dir is required")
	}
	return nil
}
