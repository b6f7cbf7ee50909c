// Package migrations applies the numbered SQL files under migrations/ to PostgreSQL.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// lockKey serializes migrators across replicas starting at the same time
const lockKey int64 = 0x466f6f744c696e6b // "FootLink"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Migration is one SQL file. Version is the name up to the first underscore,
// so "003_listings.sql" has version "003".
type Migration struct {
	Version string
	Name    string
}

// Migrator applies the numbered SQL files of a directory once each
type Migrator struct {
	db     *pgxpool.Pool
	logger zerolog.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *pgxpool.Pool, logger zerolog.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger.With().Str("component", "migrator").Logger(),
	}
}

// MigrateFromDirectory applies the pending .sql files of dirPath in version order
func (m *Migrator) MigrateFromDirectory(ctx context.Context, dirPath string) error {
	return m.Migrate(ctx, os.DirFS(dirPath))
}

// Migrate applies the pending .sql files at the root of fsys
func (m *Migrator) Migrate(ctx context.Context, fsys fs.FS) error {
	all, err := Discover(fsys)
	if err != nil {
		return err
	}

	conn, err := m.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	// Session-level lock, so it has to stay on this one connection
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return fmt.Errorf("failed to take migration lock: %w", err)
	}
	defer func() {
		if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to release migration lock")
		}
	}()

	if _, err := conn.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`); err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}

	applied, err := appliedVersions(ctx, conn.Conn())
	if err != nil {
		return err
	}

	pending := Pending(all, applied)
	for _, mig := range pending {
		body, err := fs.ReadFile(fsys, mig.Name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", mig.Name, err)
		}
		if err := apply(ctx, conn.Conn(), mig, string(body)); err != nil {
			return err
		}
		m.logger.Info().Str("file", mig.Name).Msg("Migration applied")
	}

	m.logger.Info().Int("applied", len(pending)).Int("total", len(all)).Msg("Migrations complete")
	return nil
}

// Discover lists the .sql files at the root of fsys sorted by version
func Discover(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	files := lo.FilterMap(entries, func(e fs.DirEntry, _ int) (Migration, bool) {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			return Migration{}, false
		}
		version, _, _ := strings.Cut(e.Name(), "_")
		return Migration{Version: version, Name: e.Name()}, true
	})
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	if dup := lo.FindDuplicatesBy(files, func(m Migration) string { return m.Version }); len(dup) > 0 {
		return nil, fmt.Errorf("duplicate migration version %s", dup[0].Version)
	}
	return files, nil
}

// Pending returns the migrations whose version is not in applied, preserving order
func Pending(all []Migration, applied map[string]bool) []Migration {
	return lo.Filter(all, func(m Migration, _ int) bool { return !applied[m.Version] })
}

func appliedVersions(ctx context.Context, conn *pgx.Conn) (map[string]bool, error) {
	rows, err := conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	return lo.Associate(versions, func(v string) (string, bool) { return v, true }), nil
}

// apply runs one file and records it in the same transaction
func apply(ctx context.Context, conn *pgx.Conn, mig Migration, body string) error {
	record, args, err := psql.Insert("schema_migrations").
		Columns("version", "applied_at").
		Values(mig.Version, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build migration record: %w", err)
	}

	return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, body); err != nil {
			return fmt.Errorf("migration %s failed: %w", mig.Name, err)
		}
		if _, err := tx.Exec(ctx, record, args...); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", mig.Name, err)
		}
		return nil
	})
}
