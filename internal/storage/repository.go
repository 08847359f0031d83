// Package storage defines the warehouse-loading interface cleaned datasets
// are bulk-copied into, plus the registry backend packages register their
// factories with.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Config is the minimal configuration needed to create a Repository.
//
// When to use:
//   - Use Config when constructing a Repository via New.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend factory; validation is backend-specific.
type Config struct {
	Kind string
	DSN  string

	// AutoCreateTable makes EnsureTable create the destination table from
	// the dataset's columns when it does not exist. All columns are created
	// as text; cleaned values travel in their CSV string form.
	AutoCreateTable bool
}

// Repository is a backend-agnostic interface for loading cleaned datasets.
//
// IMPORTANT: This interface is intentionally minimal and focused on the
// operations the pipeline needs. Each backend implements the semantics in
// its own idiomatic way (Postgres COPY, SQL Server bulk insert, SQLite
// batched INSERT).
type Repository interface {
	// Close releases any backend resources (connections, prepared statements, etc).
	//
	// When to use:
	//   - Always call Close when you are done with the repository to avoid leaks.
	//
	// Edge cases:
	//   - Implementations should be safe to call once at process shutdown.
	//   - Repeated calls may be a no-op or may panic, depending on backend; callers
	//     should treat Close as "call once".
	Close()

	// EnsureTable makes the destination table loadable. With AutoCreateTable
	// set it creates the table from the given columns when missing; otherwise
	// it is a no-op. Idempotent and safe to run on every invocation.
	EnsureTable(ctx context.Context, table string, columns []string) error

	// CopyFrom bulk-loads rows into table, aligned to columns. Cells are the
	// CSV string form of the cleaned dataset; nil loads as SQL NULL.
	// Returns the number of rows written.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind (e.g. "postgres", "sqlite").
//
// When to use:
//   - Call Register from an init() function in a backend package.
//   - The `kind` string becomes the lookup key used by New.
//
// Edge cases:
//   - kind must be non-empty.
//   - f must be non-nil.
//   - Registering the same kind more than once panics. This is intentional to
//     fail fast and avoid ambiguous backend selection.
//
// Panics:
//   - If kind is empty.
//   - If f is nil.
//   - If kind is already registered.
func Register(kind string, f factory) {
	regMu.Lock()
	defer regMu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
//
// When to use:
//   - Call New when a run is configured to load into a warehouse and you need
//     a repository for the configured backend kind.
//
// Concurrency:
//   - Safe for concurrent use with Register. New takes a read lock while
//     selecting the factory.
//
// Errors:
//   - Returns an error if cfg.Kind is empty or unsupported.
//   - Returns whatever error the registered factory returns.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing Kind")
	}

	regMu.RLock()
	f := factories[cfg.Kind]
	regMu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
