package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/akshay-rajan/adventureworks/internal/cleaner"
	"github.com/akshay-rajan/adventureworks/internal/config"
	"github.com/akshay-rajan/adventureworks/internal/storage"
)

type memStore struct {
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	b, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("no such object %s/%s", bucket, key)
	}
	return b, nil
}

func (m *memStore) Put(ctx context.Context, bucket, key string, body []byte) error {
	m.objects[bucket+"/"+key] = body
	return nil
}

type memRepo struct {
	ensured map[string][]string
	loaded  map[string][][]any
}

func newMemRepo() *memRepo {
	return &memRepo{ensured: map[string][]string{}, loaded: map[string][][]any{}}
}

func (r *memRepo) Close() {}

func (r *memRepo) EnsureTable(ctx context.Context, table string, columns []string) error {
	r.ensured[table] = append([]string(nil), columns...)
	return nil
}

func (r *memRepo) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	r.loaded[table] = rows
	return int64(len(rows)), nil
}

func newTestEngine(store *memStore, repo *memRepo) *Engine {
	e := &Engine{
		Store:        store,
		Parser:       config.Options{"charset": "utf-8"},
		TargetBucket: "clean",
	}
	if repo != nil {
		e.Storage = storage.Config{Kind: "mem", DSN: "mem://", AutoCreateTable: true}
		e.NewRepository = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
			return repo, nil
		}
	}
	return e
}

const rawReturns = "ReturnDate,TerritoryKey,ProductKey,ReturnQuantity\n" +
	"01/18/2016,4,312,2\n" +
	"03/20/2016,9,310,0\n"

func TestRun_CleansWritesAndLoads(t *testing.T) {
	store := newMemStore()
	repo := newMemRepo()
	store.objects["raw/returns.csv"] = []byte(rawReturns)

	e := newTestEngine(store, repo)
	res, err := e.Run(context.Background(), "raw", "returns.csv")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Kind != cleaner.KindReturns {
		t.Fatalf("kind = %v", res.Kind)
	}
	if res.RowsIn != 2 || res.RowsOut != 1 {
		t.Fatalf("rows in/out = %d/%d", res.RowsIn, res.RowsOut)
	}
	if res.OutputKey != "returns_processed.csv" {
		t.Fatalf("output key = %q", res.OutputKey)
	}

	body, ok := store.objects["clean/returns_processed.csv"]
	if !ok {
		t.Fatalf("cleaned object missing; have %v", keysOf(store.objects))
	}
	// Headerless, one surviving row, ISO date, integer quantity.
	if got := string(body); got != "2016-01-18,4,312,2\n" {
		t.Fatalf("cleaned object = %q", got)
	}

	if res.Table != "returns" || res.RowsLoaded != 1 {
		t.Fatalf("load result = %q/%d", res.Table, res.RowsLoaded)
	}
	cols := repo.ensured["returns"]
	if len(cols) != 4 || cols[3] != "ReturnQuantity" {
		t.Fatalf("ensured columns = %v", cols)
	}
	rows := repo.loaded["returns"]
	if len(rows) != 1 || rows[0][0] != "2016-01-18" || rows[0][3] != "2" {
		t.Fatalf("loaded rows = %v", rows)
	}
}

func TestRun_UnknownIdentityPassesThrough(t *testing.T) {
	store := newMemStore()
	store.objects["raw/inventory.csv"] = []byte("Sku,Qty\nA1,5\n")

	e := newTestEngine(store, nil)
	res, err := e.Run(context.Background(), "raw", "inventory.csv")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Kind != cleaner.KindUnknown {
		t.Fatalf("kind = %v", res.Kind)
	}
	body := store.objects["clean/inventory_processed.csv"]
	if string(body) != "A1,5\n" {
		t.Fatalf("passthrough body = %q", body)
	}
}

func TestRun_MissingColumnWritesNothing(t *testing.T) {
	store := newMemStore()
	repo := newMemRepo()
	// returns.csv without its quantity column.
	store.objects["raw/returns.csv"] = []byte("ReturnDate,TerritoryKey\n01/18/2016,4\n")

	e := newTestEngine(store, repo)
	_, err := e.Run(context.Background(), "raw", "returns.csv")
	if err == nil {
		t.Fatalf("expected missing-column failure")
	}
	if !strings.Contains(err.Error(), "clean") {
		t.Fatalf("error should name the failing step: %v", err)
	}
	if _, ok := store.objects["clean/returns_processed.csv"]; ok {
		t.Fatalf("failed run must not write output")
	}
	if len(repo.loaded) != 0 {
		t.Fatalf("failed run must not load")
	}
}

func TestRun_MissingObjectFailsFetch(t *testing.T) {
	e := newTestEngine(newMemStore(), nil)
	_, err := e.Run(context.Background(), "raw", "customers.csv")
	if err == nil || !strings.Contains(err.Error(), "fetch") {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestRun_NestedKeyNamesTableFromBase(t *testing.T) {
	store := newMemStore()
	store.objects["raw/2017/sales_2017.csv"] = []byte(
		"OrderDate,StockDate,OrderNumber,ProductKey,CustomerKey,TerritoryKey,OrderLineItem,OrderQty\n" +
			"07/01/2017,06/12/2014,SO1,1,2,3,1,2\n")

	e := newTestEngine(store, nil)
	res, err := e.Run(context.Background(), "raw", "2017/sales_2017.csv")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Kind != cleaner.KindSales2017 {
		t.Fatalf("kind = %v", res.Kind)
	}
	if res.Table != "sales_2017" || res.OutputKey != "sales_2017_processed.csv" {
		t.Fatalf("table/key = %q/%q", res.Table, res.OutputKey)
	}
	body := string(store.objects["clean/sales_2017_processed.csv"])
	if !strings.HasSuffix(strings.TrimSpace(body), ",2017") {
		t.Fatalf("expected derived order year in output, got %q", body)
	}
}

func TestFromConfig_RequiresLocalSource(t *testing.T) {
	_, err := FromConfig(config.Pipeline{
		Source: config.Source{Kind: "s3"},
		Target: config.Target{Bucket: "clean"},
	}, nil)
	if err == nil {
		t.Fatalf("expected error for non-local source")
	}
}

func keysOf(m map[string][]byte) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
