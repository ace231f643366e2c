package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goldstore/storefront/pkg/config"
	"github.com/goldstore/storefront/pkg/db"
	"github.com/goldstore/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVEntriesMigrationContainsSchema(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_kv_entries.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no kv_entries migration file found")

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS kv_entries",
		"storage_key VARCHAR(512) PRIMARY KEY",
		"payload TEXT NOT NULL",
		"DROP TABLE IF EXISTS kv_entries",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestValidateEmbedded(t *testing.T) {
	require.NoError(t, ValidateEmbedded())
	require.NoError(t, ValidateDir("migrations"))
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Carts Index!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_carts_index.sql"))
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestCreateSQLMigrationRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	path, err := createSQLMigration(dir, "prune stale entries", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20260301120000_prune_stale_entries.sql"), path)

	_, err = createSQLMigration(dir, "prune stale entries", now)
	require.Error(t, err)
}

func TestValidateFSRejectsDownBeforeUp(t *testing.T) {
	fsys := fstest.MapFS{
		"m/20260301120000_swap.sql": {Data: []byte("-- +goose Down\nDROP TABLE x;\n-- +goose Up\nCREATE TABLE x (id INT);\n")},
	}
	require.Error(t, ValidateFS(fsys, "m"))

	fsys["m/20260301120000_swap.sql"] = &fstest.MapFile{Data: []byte("-- +goose Up\nCREATE TABLE x (id INT);\n-- +goose Down\nDROP TABLE x;\n")}
	require.NoError(t, ValidateFS(fsys, "m"))
}

func TestDialect(t *testing.T) {
	d, err := Dialect("Postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d)

	d, err = Dialect(config.StorageDriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", d)

	_, err = Dialect(config.StorageDriverRedis)
	require.Error(t, err)
}

func TestRunAppliesEmbeddedMigrationsOnSQLite(t *testing.T) {
	ctx := context.Background()
	client, err := db.New(ctx, config.StorageDriverSQLite, config.DBConfig{
		DSN:          "file:migrate_run_test?mode=memory&cache=shared",
		MaxOpenConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.SQL()
	require.NoError(t, err)

	require.NoError(t, Run(ctx, sqlDB, client.Driver(), "", "up"))
	assert.True(t, client.DB().Migrator().HasTable("kv_entries"))

	require.NoError(t, Run(ctx, sqlDB, client.Driver(), "", "down"))
	assert.False(t, client.DB().Migrator().HasTable("kv_entries"))

	require.NoError(t, MigrateToVersion(ctx, sqlDB, client.Driver(), "", "20260301120000"))
	assert.True(t, client.DB().Migrator().HasTable("kv_entries"))
}

func TestMaybeRunSkipsWithoutFlag(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvDev}}
	logg := logger.New(logger.Options{ServiceName: "migrate-test"})
	require.NoError(t, MaybeRun(context.Background(), cfg, logg, nil))
}

func TestMaybeRunMigratesSQLite(t *testing.T) {
	ctx := context.Background()
	client, err := db.New(ctx, config.StorageDriverSQLite, config.DBConfig{
		DSN:          "file:migrate_autorun_test?mode=memory&cache=shared",
		MaxOpenConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		App:          config.AppConfig{Env: config.AppEnvProd},
		FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true},
	}
	logg := logger.New(logger.Options{ServiceName: "migrate-test"})
	require.NoError(t, MaybeRun(ctx, cfg, logg, client))
	assert.True(t, client.DB().Migrator().HasTable("kv_entries"))
}
