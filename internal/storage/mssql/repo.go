// Package mssql implements storage.Repository for SQL Server using the
// driver's native bulk-copy support (the TDS equivalent of BULK INSERT).
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/akshay-rajan/adventureworks/internal/storage"
)

type Repo struct {
	db         *sql.DB
	autoCreate bool
}

func init() {
	storage.Register("mssql", New)
}

// New constructs a Repo using database/sql and the "sqlserver" driver,
// which registers itself via the driver import above.
//
// This method validates connectivity via PingContext.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, err
	}

	// Conservative defaults for ETL-style bursty loads.
	db.SetMaxOpenConns(64)
	db.SetMaxIdleConns(64)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db, autoCreate: cfg.AutoCreateTable}, nil
}

// Close releases database resources held by this repository.
func (r *Repo) Close() {
	if r == nil || r.db == nil {
		return
	}
	_ = r.db.Close()
}

// EnsureTable creates the destination table when auto-create is configured.
// Idempotent and safe to run on every invocation.
func (r *Repo) EnsureTable(ctx context.Context, table string, columns []string) error {
	if !r.autoCreate {
		return nil
	}
	q, err := buildCreateSQL(table, columns)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// CopyFrom bulk-loads rows using the driver's CopyIn statement. The whole
// load runs in one transaction; a failure rolls everything back.
func (r *Repo) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = txn.Rollback() }()

	stmt, err := txn.PrepareContext(ctx, mssql.CopyIn(table, mssql.BulkOptions{}, columns...))
	if err != nil {
		return 0, fmt.Errorf("bulk copy into %s: %w", table, err)
	}

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("bulk copy into %s: %w", table, err)
		}
	}

	// The empty final Exec flushes the bulk batch and reports the row count.
	res, err := stmt.ExecContext(ctx)
	if err != nil {
		_ = stmt.Close()
		return 0, fmt.Errorf("bulk copy into %s: %w", table, err)
	}
	if err := stmt.Close(); err != nil {
		return 0, err
	}
	if err := txn.Commit(); err != nil {
		return 0, err
	}

	n, _ := res.RowsAffected()
	return n, nil
}

// buildCreateSQL wraps a CREATE TABLE statement in an OBJECT_ID guard;
// SQL Server has no CREATE TABLE IF NOT EXISTS.
func buildCreateSQL(table string, columns []string) (string, error) {
	if table == "" {
		return "", fmt.Errorf("create table: empty table name")
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("create table %s: no columns", table)
	}
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = mssqlIdent(c) + " NVARCHAR(MAX)"
	}
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL BEGIN CREATE TABLE %s (%s); END;",
		table, mssqlIdent(table), strings.Join(defs, ", "),
	), nil
}

// mssqlIdent quotes an identifier for SQL Server.
func mssqlIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
