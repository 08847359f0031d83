package mssql

import (
	"testing"
)

func TestBuildCreateSQL(t *testing.T) {
	got, err := buildCreateSQL("returns", []string{"ReturnDate", "ReturnQuantity"})
	if err != nil {
		t.Fatalf("buildCreateSQL: %v", err)
	}
	want := "IF OBJECT_ID(N'returns', N'U') IS NULL BEGIN CREATE TABLE [returns] " +
		"([ReturnDate] NVARCHAR(MAX), [ReturnQuantity] NVARCHAR(MAX)); END;"
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

func TestMSSQLIdent(t *testing.T) {
	if got := mssqlIdent("a]b"); got != "[a]]b]" {
		t.Fatalf("mssqlIdent = %q", got)
	}
}
