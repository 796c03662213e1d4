// Package store persists solved rosters to PostgreSQL. It is a collaborator
// of the core, never imported by it: only the service layer and the CLI
// touch this package.
package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateLockKey is the advisory-lock key serializing concurrent migrators
// against the same database.
const migrateLockKey = 0x726f7374 // "rost"

// Store provides roster persistence backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New opens a connection pool against connString and verifies it with a
// ping.
func New(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("store: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// migration is one embedded schema step. Files are named NNN_label.sql; the
// numeric prefix is the schema version the step brings the database to.
type migration struct {
	version int
	name    string
	sql     string
}

// Migrate brings the schema up to the highest embedded migration version.
// The whole run holds a session advisory lock so concurrent deployments
// serialize instead of racing, and the version row advances inside the same
// transaction as each step, so a failed step leaves the version untouched.
func (s *Store) Migrate(ctx context.Context) error {
	steps, err := loadMigrations()
	if err != nil {
		return err
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("store: acquire migration conn: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, migrateLockKey); err != nil {
		return fmt.Errorf("store: take migration lock: %w", err)
	}
	defer conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, migrateLockKey)

	if _, err := conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INT NOT NULL)`); err != nil {
		return fmt.Errorf("store: ensure schema_version: %w", err)
	}

	current := 0
	row := conn.QueryRow(ctx, `SELECT version FROM schema_version LIMIT 1`)
	switch err := row.Scan(&current); {
	case err == nil:
	case errors.Is(err, pgx.ErrNoRows):
		if _, err := conn.Exec(ctx, `INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return fmt.Errorf("store: seed schema_version: %w", err)
		}
	default:
		return fmt.Errorf("store: read schema_version: %w", err)
	}

	for _, step := range steps {
		if step.version <= current {
			continue
		}
		tx, err := conn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("store: begin %s: %w", step.name, err)
		}
		if _, err := tx.Exec(ctx, step.sql); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("store: apply %s: %w", step.name, err)
		}
		if _, err := tx.Exec(ctx, `UPDATE schema_version SET version = $1`, step.version); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("store: advance to version %d: %w", step.version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("store: commit %s: %w", step.name, err)
		}
		current = step.version
	}
	return nil
}

// loadMigrations parses the embedded migration files into version order,
// rejecting duplicate or unparseable version prefixes at startup rather
// than half-way through a schema change.
func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("store: read embedded migrations: %w", err)
	}

	steps := make([]migration, 0, len(entries))
	seen := make(map[int]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("store: migration %q has no NNN_ prefix", name)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("store: migration %q has a bad version prefix", name)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("store: migrations %q and %q share version %d", prev, name, version)
		}
		seen[version] = name

		sql, err := fs.ReadFile(migrationsFS, "migrations/"+name)
		if err != nil {
			return nil, fmt.Errorf("store: read migration %q: %w", name, err)
		}
		steps = append(steps, migration{version: version, name: name, sql: string(sql)})
	}

	slices.SortFunc(steps, func(a, b migration) int { return a.version - b.version })
	return steps, nil
}
