// AngelaMos | 2026
// schema.go

// Package schema owns the relational layout of the billing store and the
// fixed sample data loaded into it.
//
// Table and column names are part of the storage contract. Mixed-case
// columns ("meterNumber", "issuedDate", ...) are quoted everywhere so
// PostgreSQL keeps them exactly as written.
package schema

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationsDir = "migrations"

type Options struct {
	// Reset drops every table before migrating up again.
	Reset  bool
	Logger *slog.Logger
}

// Migrate brings the database at databaseURL to the latest schema
// version. migrate owns its own connection so closing it never touches
// the application pool.
func Migrate(databaseURL string, opts Options) error {
	m, err := newMigrator(databaseURL, opts.Logger)
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger(opts.Logger).Warn("close migrator",
				"source_error", srcErr,
				"database_error", dbErr,
			)
		}
	}()

	if opts.Reset {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate down: %w", err)
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	logger(opts.Logger).Info("schema migrated",
		"version", version,
		"dirty", dirty,
		"reset", opts.Reset,
	)

	return nil
}

func newMigrator(databaseURL string, log *slog.Logger) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFS, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}

	m.Log = &migrateLogger{logger: logger(log)}

	return m, nil
}

// migrateURL rewrites a postgres:// URL to the scheme registered by the
// pgx/v5 migrate driver.
func migrateURL(databaseURL string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, scheme)
		}
	}
	return databaseURL
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *migrateLogger) Verbose() bool {
	return false
}
