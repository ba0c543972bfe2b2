package database

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/contosopizza/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:            "db.internal",
		Port:            5433,
		User:            "pizza",
		Password:        "secret",
		Name:            "ContosoPizza",
		SSLMode:         "disable",
		MaxOpenConns:    12,
		MaxIdleConns:    3,
		ConnMaxLifetime: 600,
		ConnMaxIdleTime: 60,
	}

	poolConfig, err := PoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", poolConfig.ConnConfig.Host)
	assert.Equal(t, uint16(5433), poolConfig.ConnConfig.Port)
	assert.Equal(t, "pizza", poolConfig.ConnConfig.User)
	assert.Equal(t, "secret", poolConfig.ConnConfig.Password)
	assert.Equal(t, "ContosoPizza", poolConfig.ConnConfig.Database)
	assert.Equal(t, int32(12), poolConfig.MaxConns)
	assert.Equal(t, int32(3), poolConfig.MinConns)
	assert.Equal(t, 10*time.Minute, poolConfig.MaxConnLifetime)
	assert.Equal(t, time.Minute, poolConfig.MaxConnIdleTime)
}

func TestPoolConfig_InvalidURL(t *testing.T) {
	_, err := PoolConfig(config.DatabaseConfig{URL: "postgres://%zz"})
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.Len(t, files, 2)

	var schema strings.Builder
	for _, f := range files {
		b, err := fs.ReadFile(migrations, f)
		require.NoError(t, err)
		assert.Contains(t, string(b), "---- create above / drop below ----", f)
		schema.Write(b)
	}

	for _, table := range []string{"customers", "orders", "products", "order_details"} {
		assert.Contains(t, schema.String(), "CREATE TABLE "+table+" (")
	}
}

func TestNewMigrationFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_create_catalog.sql"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "007_add_index.sql"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), nil, 0o644))

	path, err := NewMigrationFile(dir, "add_product_description")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "008_add_product_description.sql"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "---- create above / drop below ----")
}

func TestNewMigrationFile_EmptyDir(t *testing.T) {
	path, err := NewMigrationFile(t.TempDir(), "initial")
	require.NoError(t, err)
	assert.Equal(t, "001_initial.sql", filepath.Base(path))
}

func TestNewMigrationFile_InvalidName(t *testing.T) {
	_, err := NewMigrationFile(t.TempDir(), "Add Column")
	assert.ErrorIs(t, err, ErrInvalidMigrationName)
}

func TestMigrationStatus_Pending(t *testing.T) {
	assert.True(t, MigrationStatus{Current: 1, Latest: 2}.Pending())
	assert.False(t, MigrationStatus{Current: 2, Latest: 2}.Pending())
}
