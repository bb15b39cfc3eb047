package config

import (
	"github.com/garyjia/invoice-importer/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// Migrations always run on container start; the migrate command only makes
// that step explicit.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			BusyTimeout:     c.Database.BusyTimeout,
			AutoMigrate:     true,
		},
		Import: container.ImportConfig{
			StrictTotals: c.Import.StrictTotals,
			Date1904:     c.Import.Date1904,
		},
		Storage: container.StorageConfig{
			UploadDir: c.Server.UploadDir,
		},
		Server: container.ServerConfig{
			Host:            c.Server.Host,
			Port:            c.Server.Port,
			ReadTimeout:     c.Server.ReadTimeout,
			WriteTimeout:    c.Server.WriteTimeout,
			ShutdownTimeout: c.Server.ShutdownTimeout,
			MaxUploadSize:   c.Server.MaxUploadSize,
		},
		Export: container.ExportConfig{
			DefaultFormat: c.Export.DefaultFormat,
		},
	}
}
