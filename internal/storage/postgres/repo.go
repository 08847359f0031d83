// Package postgres implements the storage.Repository interface on top of a
// pgx connection pool. Bulk loads use the COPY protocol, which is the fast
// path for warehouse-style append loads.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akshay-rajan/adventureworks/internal/storage"
)

type Repo struct {
	pool       *pgxpool.Pool
	autoCreate bool
}

func init() {
	storage.Register("postgres", New)
}

// New creates a Postgres-backed repository.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool, autoCreate: cfg.AutoCreateTable}, nil
}

// Close closes the connection pool.
func (r *Repo) Close() {
	r.pool.Close()
}

// EnsureTable creates the destination table with text columns when
// auto-create is configured. Idempotent.
func (r *Repo) EnsureTable(ctx context.Context, table string, columns []string) error {
	if !r.autoCreate {
		return nil
	}
	sql, err := buildCreateSQL(table, columns)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// CopyFrom streams rows into table via the COPY protocol.
func (r *Repo) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

// buildCreateSQL constructs an idempotent CREATE TABLE statement.
//
// Why this exists:
//   - It is pure and deterministic, so we can unit test identifier quoting
//     without a database.
func buildCreateSQL(table string, columns []string) (string, error) {
	if table == "" {
		return "", fmt.Errorf("create table: empty table name")
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("create table %s: no columns", table)
	}
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(pgIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgIdent(c))
		b.WriteString(" TEXT")
	}
	b.WriteString(")")
	return b.String(), nil
}

// pgIdent quotes an identifier for Postgres.
func pgIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
