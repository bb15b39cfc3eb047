package commands

import (
	"context"
	"fmt"

	"github.com/garyjia/invoice-importer/internal/config"
	"github.com/garyjia/invoice-importer/internal/container"
	"github.com/garyjia/invoice-importer/pkg/utils"
	"go.uber.org/zap"
)

// app is the wired application a single command runs against
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	container *container.Container
}

// openApp loads configuration and starts the container. Logs go to stderr
// unless a file is configured, so stdout carries only command output.
func openApp(ctx context.Context, opts *globalOptions, autoMigrate bool) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	logCfg := utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}
	if logCfg.OutputPath == "" || logCfg.OutputPath == "stdout" {
		logCfg.OutputPath = "stderr"
	}
	logger, err := utils.NewLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cc := cfg.ToContainerConfig()
	cc.Database.AutoMigrate = autoMigrate

	c, err := container.NewContainer(cc, logger)
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, container: c}, nil
}

func (a *app) Close() {
	if err := a.container.Close(); err != nil {
		a.logger.Error("Failed to close container", zap.Error(err))
	}
	_ = a.logger.Sync()
}
