package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeObject(t *testing.T, root, bucket, key, body string) {
	t.Helper()
	dir := filepath.Join(root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, key), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestRunMain_PrintsSchema(t *testing.T) {
	root := t.TempDir()
	writeObject(t, root, "raw", "returns.csv",
		"ReturnDate,ProductKey,ReturnQuantity\n"+
			"01/18/2016,312,2\n"+
			"03/02/2016,214,1\n")

	var out, errw strings.Builder
	code := runMain([]string{"-root", root, "-bucket", "raw", "-key", "returns.csv"}, &out, &errw)
	if code != 0 {
		t.Fatalf("exit = %d, stderr: %s", code, errw.String())
	}
	for _, line := range []string{
		"sample_rows=2",
		"ReturnDate,date,01/02/2006,0",
		"ProductKey,integer,,0",
		"ReturnQuantity,integer,,0",
	} {
		if !strings.Contains(out.String(), line+"\n") {
			t.Errorf("output missing %q:\n%s", line, out.String())
		}
	}
}

func TestRunMain_UsageWithoutKey(t *testing.T) {
	var out, errw strings.Builder
	code := runMain([]string{"-root", "."}, &out, &errw)
	if code != 2 {
		t.Fatalf("exit = %d, want 2", code)
	}
	if !strings.Contains(errw.String(), "usage:") {
		t.Fatalf("stderr = %q", errw.String())
	}
}

func TestRunMain_MissingObject(t *testing.T) {
	var out, errw strings.Builder
	code := runMain([]string{"-root", t.TempDir(), "-bucket", "raw", "-key", "absent.csv"}, &out, &errw)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
}
