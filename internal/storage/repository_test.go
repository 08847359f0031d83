package storage

import (
	"context"
	"testing"
)

type fakeRepo struct {
	closeCalls int
}

func (f *fakeRepo) Close() {}
func (f *fakeRepo) EnsureTable(ctx context.Context, table string, columns []string) error {
	return nil
}
func (f *fakeRepo) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}

func TestNew_ResolvesRegisteredFactory(t *testing.T) {
	Register("fake", func(ctx context.Context, cfg Config) (Repository, error) {
		return &fakeRepo{}, nil
	})

	r, err := New(context.Background(), Config{Kind: "fake", DSN: "ignored"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	n, err := r.CopyFrom(context.Background(), "t", []string{"a"}, [][]any{{1}, {2}})
	if err != nil || n != 2 {
		t.Fatalf("CopyFrom = %d, %v", n, err)
	}
}

func TestNew_RejectsUnknownAndEmptyKind(t *testing.T) {
	if _, err := New(context.Background(), Config{Kind: "nope"}); err == nil {
		t.Fatalf("expected error for unregistered kind")
	}
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for empty kind")
	}
}

func TestRegister_PanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	f := func(ctx context.Context, cfg Config) (Repository, error) { return &fakeRepo{}, nil }
	Register("dup", f)
	Register("dup", f)
}

func TestRegister_PanicsOnNilFactory(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on nil factory")
		}
	}()
	Register("nilfactory", nil)
}
