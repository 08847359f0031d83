// Package sqlite implements storage.Repository on modernc.org/sqlite.
//
// SQLite has no COPY protocol; CopyFrom is a chunked multi-row INSERT inside
// a single transaction, which is the fast path for this engine.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/akshay-rajan/adventureworks/internal/storage"
)

type Repo struct {
	db         *sql.DB
	autoCreate bool
}

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db, autoCreate: cfg.AutoCreateTable}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

// EnsureTable creates the destination table with untyped columns when
// auto-create is configured. SQLite's affinity rules make TEXT the safe
// default for CSV-shaped data.
func (r *Repo) EnsureTable(ctx context.Context, table string, columns []string) error {
	if !r.autoCreate {
		return nil
	}
	if table == "" {
		return fmt.Errorf("create table: empty table name")
	}
	if len(columns) == 0 {
		return fmt.Errorf("create table %s: no columns", table)
	}
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
		b.WriteString(" TEXT")
	}
	b.WriteString(")")
	if _, err := r.db.ExecContext(ctx, b.String()); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// CopyFrom performs chunked multi-row INSERTs inside one transaction, so a
// failed load leaves the table untouched.
func (r *Repo) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	for start := 0; start < len(rows); start += maxRowsPerInsert(len(columns)) {
		end := start + maxRowsPerInsert(len(columns))
		if end > len(rows) {
			end = len(rows)
		}
		q, args := buildInsertSQL(table, columns, rows[start:end])
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return 0, fmt.Errorf("insert into %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}

// maxRowsPerInsert keeps each statement under SQLite's bound-parameter limit.
func maxRowsPerInsert(cols int) int {
	if cols < 1 {
		cols = 1
	}
	n := 900 / cols
	if n < 1 {
		n = 1
	}
	return n
}

func buildInsertSQL(table string, columns []string, rows [][]any) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString("?")
			args = append(args, row[j])
		}
		b.WriteString(")")
	}
	return b.String(), args
}

// sqlIdent quotes an identifier for SQLite.
func sqlIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
