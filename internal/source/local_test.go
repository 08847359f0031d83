package source

import (
	"context"
	"errors"
	"io/fs"
	"testing"
)

func TestLocalPutGet(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	body := []byte("CustomerKey\n11000\n")
	if err := s.Put(ctx, "raw", "customers.csv", body); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, "raw", "customers.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string(body) {
		t.Fatalf("get = %q", got)
	}

	// Overwrite replaces.
	if err := s.Put(ctx, "raw", "customers.csv", []byte("x")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err = s.Get(ctx, "raw", "customers.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "x" {
		t.Fatalf("overwrite lost: %q", got)
	}
}

func TestLocalGetMissing(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = s.Get(context.Background(), "raw", "nope.csv")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist, got %v", err)
	}
}

func TestLocalNestedKeys(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	if err := s.Put(ctx, "clean", "2015/sales_2015_processed.csv", []byte("y")); err != nil {
		t.Fatalf("put nested: %v", err)
	}
	if _, err := s.Get(ctx, "clean", "2015/sales_2015_processed.csv"); err != nil {
		t.Fatalf("get nested: %v", err)
	}
}

func TestLocalRejectsEscapingKey(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Put(context.Background(), "raw", "../../etc/passwd", []byte("x")); err == nil {
		t.Fatalf("expected escape rejection")
	}
}
