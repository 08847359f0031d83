package postgres

import (
	"testing"
)

func TestBuildCreateSQL(t *testing.T) {
	got, err := buildCreateSQL("customers", []string{"CustomerKey", "LastName"})
	if err != nil {
		t.Fatalf("buildCreateSQL: %v", err)
	}
	want := `CREATE TABLE IF NOT EXISTS "customers" ("CustomerKey" TEXT, "LastName" TEXT)`
	if got != want {
		t.Fatalf("sql = %q, want %q", got, want)
	}
}

func TestBuildCreateSQL_Rejects(t *testing.T) {
	if _, err := buildCreateSQL("", []string{"a"}); err == nil {
		t.Fatalf("expected error for empty table")
	}
	if _, err := buildCreateSQL("t", nil); err == nil {
		t.Fatalf("expected error for no columns")
	}
}

func TestPGIdent(t *testing.T) {
	if got := pgIdent(`a"b`); got != `"a""b"` {
		t.Fatalf("pgIdent = %q", got)
	}
}
