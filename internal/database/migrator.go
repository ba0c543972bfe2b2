package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/deppfellow/contosopizza/internal/config"
	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

// migrations carries the schema inside the binary.
//
//go:embed migrations/*.sql
var migrations embed.FS

// VersionTable stores the applied migration version.
const VersionTable = "schema_version"

// MigrationStatus reports where the schema stands.
type MigrationStatus struct {
	Current int32
	Latest  int32
}

// Pending reports whether migrations remain to be applied.
func (s MigrationStatus) Pending() bool {
	return s.Current < s.Latest
}

// withMigrator opens a single connection (not a pool) for a one-off
// migration action and hands fn a migrator loaded with the embedded files.
func withMigrator(ctx context.Context, cfg *config.Config, fn func(m *tern.Migrator) error) error {
	conn, err := pgx.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, VersionTable)
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	return fn(m)
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	return withMigrator(ctx, cfg, func(m *tern.Migrator) error {
		from, err := m.GetCurrentVersion(ctx)
		if err != nil {
			return fmt.Errorf("retrieving current database migration version: %w", err)
		}

		if err := m.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}

		if from == int32(len(m.Migrations)) {
			logger.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
		} else {
			logger.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
		}
		return nil
	})
}

// MigrateTo moves the schema to the given version, up or down.
func MigrateTo(ctx context.Context, logger *zerolog.Logger, cfg *config.Config, version int32) error {
	return withMigrator(ctx, cfg, func(m *tern.Migrator) error {
		if version < 0 || version > int32(len(m.Migrations)) {
			return fmt.Errorf("target version %d out of range 0..%d", version, len(m.Migrations))
		}

		from, err := m.GetCurrentVersion(ctx)
		if err != nil {
			return fmt.Errorf("retrieving current database migration version: %w", err)
		}

		if err := m.MigrateTo(ctx, version); err != nil {
			return fmt.Errorf("migrating database to version %d: %w", version, err)
		}

		logger.Info().Int32("from", from).Int32("to", version).Msg("migrated database schema")
		return nil
	})
}

// Status reports the applied and the latest available schema version.
func Status(ctx context.Context, cfg *config.Config) (MigrationStatus, error) {
	var status MigrationStatus
	err := withMigrator(ctx, cfg, func(m *tern.Migrator) error {
		current, err := m.GetCurrentVersion(ctx)
		if err != nil {
			return fmt.Errorf("retrieving current database migration version: %w", err)
		}
		status = MigrationStatus{Current: current, Latest: int32(len(m.Migrations))}
		return nil
	})
	return status, err
}

// migrationTemplate is the skeleton of a new tern migration.
const migrationTemplate = `-- Write your migrate up statements here

---- create above / drop below ----

-- Write your migrate down statements here. If this migration is irreversible
-- then delete the separator line above.
`

var (
	migrationFileRe = regexp.MustCompile(`^(\d+)_.+\.sql$`)
	migrationNameRe = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// ErrInvalidMigrationName is returned for names that are not snake_case.
var ErrInvalidMigrationName = errors.New("migration name must be snake_case (a-z, 0-9, _)")

// NewMigrationFile creates the next sequentially numbered migration in dir
// and returns its path.
func NewMigrationFile(dir, name string) (string, error) {
	if !migrationNameRe.MatchString(name) {
		return "", ErrInvalidMigrationName
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading migrations directory: %w", err)
	}

	next := 1
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := migrationFileRe.FindStringSubmatch(entry.Name())
		if matches == nil {
			continue
		}
		n, err := strconv.Atoi(matches[1])
		if err != nil {
			continue
		}
		if n >= next {
			next = n + 1
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("%03d_%s.sql", next, name))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating migration file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(migrationTemplate); err != nil {
		return "", fmt.Errorf("writing migration file: %w", err)
	}

	return path, nil
}
