package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/akshay-rajan/adventureworks/internal/storage"
)

func newMemRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := New(context.Background(), storage.Config{
		Kind:            "sqlite",
		DSN:             ":memory:",
		AutoCreateTable: true,
	})
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	t.Cleanup(r.Close)
	return r.(*Repo)
}

func TestEnsureTableAndCopyFrom(t *testing.T) {
	r := newMemRepo(t)
	ctx := context.Background()

	cols := []string{"CustomerKey", "MaritalStatus", "HomeOwner"}
	if err := r.EnsureTable(ctx, "customers", cols); err != nil {
		t.Fatalf("ensure table: %v", err)
	}
	// Idempotent on the second run.
	if err := r.EnsureTable(ctx, "customers", cols); err != nil {
		t.Fatalf("ensure table twice: %v", err)
	}

	rows := [][]any{
		{"11000", "Married", "True"},
		{"11001", "Single", nil},
	}
	n, err := r.CopyFrom(ctx, "customers", cols, rows)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if n != 2 {
		t.Fatalf("copied %d rows, want 2", n)
	}

	var got sql.NullString
	err = r.db.QueryRowContext(ctx,
		`SELECT "HomeOwner" FROM "customers" WHERE "CustomerKey" = ?`, "11001").Scan(&got)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got.Valid {
		t.Fatalf("nil cell should load as NULL, got %q", got.String)
	}
}

func TestCopyFrom_EmptyIsNoOp(t *testing.T) {
	r := newMemRepo(t)
	n, err := r.CopyFrom(context.Background(), "t", []string{"a"}, nil)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if n != 0 {
		t.Fatalf("n = %d", n)
	}
}

func TestCopyFrom_ChunksLargeLoads(t *testing.T) {
	r := newMemRepo(t)
	ctx := context.Background()

	cols := []string{"a", "b", "c"}
	if err := r.EnsureTable(ctx, "wide", cols); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	// More rows than fit in one statement under the parameter cap.
	var rows [][]any
	for i := 0; i < 1000; i++ {
		rows = append(rows, []any{"x", "y", "z"})
	}
	n, err := r.CopyFrom(ctx, "wide", cols, rows)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if n != 1000 {
		t.Fatalf("copied %d rows, want 1000", n)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "wide"`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1000 {
		t.Fatalf("table holds %d rows, want 1000", count)
	}
}

func TestEnsureTable_DisabledIsNoOp(t *testing.T) {
	ctx := context.Background()
	r, err := New(ctx, storage.Config{Kind: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	if err := r.EnsureTable(ctx, "t", []string{"a"}); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	// Table must not exist, so a copy fails.
	if _, err := r.CopyFrom(ctx, "t", []string{"a"}, [][]any{{"x"}}); err == nil {
		t.Fatalf("expected missing-table error")
	}
}

func TestBuildInsertSQL(t *testing.T) {
	q, args := buildInsertSQL("t", []string{"a", "b"}, [][]any{{"1", "2"}, {"3", nil}})
	want := `INSERT INTO "t" ("a", "b") VALUES (?, ?), (?, ?)`
	if q != want {
		t.Fatalf("sql = %q, want %q", q, want)
	}
	if len(args) != 4 || args[3] != nil {
		t.Fatalf("args = %#v", args)
	}
}

func TestSQLIdentQuoting(t *testing.T) {
	if got := sqlIdent(`we"ird`); !strings.Contains(got, `""`) {
		t.Fatalf("quote not doubled: %q", got)
	}
}
