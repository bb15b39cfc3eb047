package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/garyjia/invoice-importer/internal/application/port"
	"github.com/garyjia/invoice-importer/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *Config {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "db", "invoices.db")
	cfg.Storage.UploadDir = filepath.Join(dir, "uploads")
	return cfg
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(DefaultConfig(), nil)
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Database.Path = ""
	_, err = NewContainer(cfg, zap.NewNop())
	assert.ErrorContains(t, err, "database.path")
}

func TestContainer_Lifecycle(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	health := c.Health()
	assert.False(t, health.Overall)
	assert.Equal(t, "not initialized", health.Components["database"].Message)

	require.NoError(t, c.Start(ctx))
	assert.True(t, c.Ready())
	assert.Equal(t, 1, c.MigrationsApplied())
	assert.Error(t, c.Start(ctx))

	health = c.Health()
	assert.True(t, health.Overall, "%+v", health.Components)
	assert.Equal(t, "idle", health.Components["importer"].Message)

	require.NotNil(t, c.Services())
	require.NotNil(t, c.Repositories())

	customer, err := entity.NewCustomer("John Doe", "123 Main St")
	require.NoError(t, err)
	require.NoError(t, c.Repositories().Customer.Create(ctx, customer))

	invoices, err := c.Services().Query.ListInvoices(ctx, port.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, invoices)

	out, err := c.Services().Export.ExportCustomers(ctx, "json")
	require.NoError(t, err)
	assert.Contains(t, string(out), "John Doe")

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(ctx))
}

func TestContainer_ReopenSkipsAppliedMigrations(t *testing.T) {
	cfg := testConfig(t)

	first, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Start(context.Background()))
	require.NoError(t, first.Close())

	second, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, second.Start(context.Background()))
	defer second.Close()

	assert.Equal(t, 0, second.MigrationsApplied())
}
