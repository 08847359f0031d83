// Package pipeline orchestrates one cleaning run: fetch a raw object,
// decode it, clean it according to its identity, write the cleaned object,
// and bulk-load it into the warehouse.
//
// The engine holds no global state; every collaborator is injected, so
// tests run it against in-memory fakes.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akshay-rajan/adventureworks/internal/cleaner"
	"github.com/akshay-rajan/adventureworks/internal/config"
	"github.com/akshay-rajan/adventureworks/internal/metrics"
	"github.com/akshay-rajan/adventureworks/internal/parser/csv"
	"github.com/akshay-rajan/adventureworks/internal/source"
	"github.com/akshay-rajan/adventureworks/internal/storage"
)

// Logger is the minimal logging interface used by the engine.
// *log.Logger satisfies this interface.
type Logger interface {
	Printf(format string, v ...any)
}

// Engine runs single-shot cleaning invocations.
type Engine struct {
	Store  source.Store
	Parser config.Options

	// TargetBucket receives cleaned objects.
	TargetBucket string

	// Storage selects the warehouse backend. An empty Kind skips loading.
	Storage storage.Config

	Logger Logger

	// NewRepository is a seam for tests; nil uses the storage factory.
	NewRepository func(ctx context.Context, cfg storage.Config) (storage.Repository, error)
}

// Result summarizes one completed run.
type Result struct {
	RunID      string
	Kind       cleaner.Kind
	RowsIn     int
	RowsOut    int
	OutputKey  string
	Table      string
	RowsLoaded int64
}

// Run processes the object at bucket/key end to end. Already-written outputs
// are not rolled back on a later failure; reprocessing the same object is
// the recovery path (outputs are whole-object overwrites, loads append).
func (e *Engine) Run(ctx context.Context, bucket, key string) (*Result, error) {
	if e.Store == nil {
		return nil, fmt.Errorf("pipeline: Store is required")
	}
	if e.TargetBucket == "" {
		return nil, fmt.Errorf("pipeline: TargetBucket is required")
	}

	logf := e.logger()
	res := &Result{RunID: uuid.NewString()}

	base := path.Base(key)
	res.Table = strings.TrimSuffix(base, path.Ext(base))
	res.Kind = cleaner.KindForName(base)

	logf("run=%s object=%s/%s kind=%s", res.RunID, bucket, key, res.Kind)

	fetchStart := time.Now()
	raw, err := e.Store.Get(ctx, bucket, key)
	if err != nil {
		return nil, e.fail("fetch", fetchStart, err)
	}
	e.stepOK("fetch", fetchStart)

	decodeStart := time.Now()
	ds, err := csv.Decode(bytes.NewReader(raw), e.Parser)
	if err != nil {
		return nil, e.fail("decode", decodeStart, err)
	}
	res.RowsIn = ds.Len()
	metrics.IncCounter("etl_records_total", float64(res.RowsIn), metrics.Labels{"kind": "raw"})
	e.stepOK("decode", decodeStart)

	cleanStart := time.Now()
	out, err := cleaner.Clean(ds, res.Kind)
	if err != nil {
		return nil, e.fail("clean", cleanStart, err)
	}
	res.RowsOut = out.Len()
	metrics.IncCounter("etl_records_total", float64(res.RowsOut), metrics.Labels{"kind": "cleaned"})
	e.stepOK("clean", cleanStart)
	logf("run=%s rows_in=%d rows_out=%d", res.RunID, res.RowsIn, res.RowsOut)

	writeStart := time.Now()
	body, err := csv.Encode(out, false)
	if err != nil {
		return nil, e.fail("write", writeStart, err)
	}
	res.OutputKey = res.Table + "_processed.csv"
	if err := e.Store.Put(ctx, e.TargetBucket, res.OutputKey, body); err != nil {
		return nil, e.fail("write", writeStart, err)
	}
	e.stepOK("write", writeStart)
	logf("run=%s wrote %s/%s", res.RunID, e.TargetBucket, res.OutputKey)

	if e.Storage.Kind != "" {
		loadStart := time.Now()
		n, err := e.load(ctx, res.Table, out.Columns(), out.Rows())
		if err != nil {
			return nil, e.fail("load", loadStart, err)
		}
		res.RowsLoaded = n
		metrics.IncCounter("etl_records_total", float64(n), metrics.Labels{"kind": "loaded"})
		metrics.IncCounter("etl_batches_total", 1, nil)
		e.stepOK("load", loadStart)
		logf("run=%s loaded %d rows into %s", res.RunID, n, res.Table)
	}

	return res, nil
}

// load opens a repository, makes the table loadable, and bulk-copies the
// cleaned rows in their CSV string form.
func (e *Engine) load(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	newRepo := e.NewRepository
	if newRepo == nil {
		newRepo = storage.New
	}
	repo, err := newRepo(ctx, e.Storage)
	if err != nil {
		return 0, fmt.Errorf("storage (kind=%s): %w", e.Storage.Kind, err)
	}
	defer repo.Close()

	if err := repo.EnsureTable(ctx, table, columns); err != nil {
		return 0, err
	}

	load := make([][]any, len(rows))
	for i, row := range rows {
		lr := make([]any, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			lr[j] = csv.FormatCell(v)
		}
		load[i] = lr
	}
	return repo.CopyFrom(ctx, table, columns, load)
}

func (e *Engine) stepOK(step string, start time.Time) {
	d := time.Since(start)
	metrics.IncCounter("etl_step_total", 1, metrics.Labels{"step": step, "status": "ok"})
	metrics.ObserveHistogram("etl_step_duration_seconds", d.Seconds(), metrics.Labels{"step": step, "status": "ok"})
	e.logger()("stage=%s ok duration=%s", step, d.Truncate(time.Millisecond))
}

func (e *Engine) fail(step string, start time.Time, err error) error {
	metrics.IncCounter("etl_step_total", 1, metrics.Labels{"step": step, "status": "error"})
	metrics.ObserveHistogram("etl_step_duration_seconds", time.Since(start).Seconds(), metrics.Labels{"step": step, "status": "error"})
	return fmt.Errorf("%s: %w", step, err)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func (e *Engine) logger() func(format string, v ...any) {
	if e.Logger == nil {
		l := log.New(discardWriter{}, "", 0)
		return l.Printf
	}
	return e.Logger.Printf
}

// FromConfig builds an engine from a validated pipeline config. The local
// object store is the only built-in source kind.
func FromConfig(p config.Pipeline, logger Logger) (*Engine, error) {
	if p.Source.Kind != "local" || p.Source.Local == nil {
		return nil, fmt.Errorf("pipeline: source.kind=local with a root is required")
	}
	store, err := source.NewLocal(p.Source.Local.Root)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Store:        store,
		Parser:       p.Parser.Options,
		TargetBucket: p.Target.Bucket,
		Storage: storage.Config{
			Kind:            p.Storage.Kind,
			DSN:             p.Storage.DSN,
			AutoCreateTable: p.Storage.AutoCreateTable,
		},
		Logger: logger,
	}, nil
}
