package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"supplysight/pkg/core/extract"
	"supplysight/pkg/core/schema"
)

type mockOracle struct {
	MapRowsFunc func(ctx context.Context, def *schema.Definition, table *extract.RawTable) ([]map[string]interface{}, error)
}

func (m *mockOracle) MapRows(ctx context.Context, def *schema.Definition, table *extract.RawTable) ([]map[string]interface{}, error) {
	return m.MapRowsFunc(ctx, def, table)
}

type mockStore struct {
	mu      sync.Mutex
	inserts map[string][]schema.Record
	err     error
}

func newMockStore() *mockStore {
	return &mockStore{inserts: make(map[string][]schema.Record)}
}

func (m *mockStore) InsertMany(ctx context.Context, schemaType string, records []schema.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.inserts[schemaType] = append(m.inserts[schemaType], records...)
	return nil
}

func (m *mockStore) inserted(schemaType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inserts[schemaType])
}

// echoOracle maps rows by passing raw cells through under canonical names,
// the shape a well-behaved oracle reply projects into.
func echoOracle(mapping map[string]string) *mockOracle {
	return &mockOracle{
		MapRowsFunc: func(_ context.Context, _ *schema.Definition, table *extract.RawTable) ([]map[string]interface{}, error) {
			var objs []map[string]interface{}
			for _, row := range table.Rows {
				obj := map[string]interface{}{}
				for header, field := range mapping {
					obj[field] = row[header]
				}
				objs = append(objs, obj)
			}
			return objs, nil
		},
	}
}

func failingOracle(err error) *mockOracle {
	return &mockOracle{
		MapRowsFunc: func(context.Context, *schema.Definition, *extract.RawTable) ([]map[string]interface{}, error) {
			return nil, err
		},
	}
}

var productsCSV = []byte("Product Name,SKU,Price,Qty\nWidget,W-1,$12.50,5\n,W-2,3.00,2\n")

var productsMapping = map[string]string{
	"Product Name": "name",
	"SKU":          "sku",
	"Price":        "unitCost",
	"Qty":          "quantity",
}

func TestRunPartialSuccess(t *testing.T) {
	store := newMockStore()
	orch := New(echoOracle(productsMapping), store, nil)

	outcome := orch.Run(context.Background(), "user-1", []UploadFile{
		{Name: "products.csv", SchemaType: "products", Content: productsCSV},
	})

	if len(outcome.Files) != 1 {
		t.Fatalf("files = %d", len(outcome.Files))
	}
	f := outcome.Files[0]
	if f.Status != StatusPartiallySucceeded {
		t.Errorf("status = %s, want PartiallySucceeded (%v)", f.Status, f.RejectionReasons)
	}
	if f.RowsExtracted != 2 || f.RecordsAccepted != 1 || f.RecordsRejected != 1 {
		t.Errorf("counts = %d/%d/%d", f.RowsExtracted, f.RecordsAccepted, f.RecordsRejected)
	}
	if f.UsedFallback {
		t.Error("oracle succeeded, fallback flag must stay false")
	}
	found := false
	for _, r := range f.RejectionReasons {
		if strings.Contains(r, "name: required, empty") {
			found = true
		}
	}
	if !found {
		t.Errorf("rejection reasons = %v", f.RejectionReasons)
	}
	if store.inserted("products") != 1 {
		t.Errorf("inserted = %d, want 1", store.inserted("products"))
	}
	if outcome.Status != BatchAllSucceeded {
		t.Errorf("batch status = %s", outcome.Status)
	}
}

func TestRunOracleFailureEngagesFallback(t *testing.T) {
	store := newMockStore()
	orch := New(failingOracle(fmt.Errorf("deadline exceeded")), store, nil)

	outcome := orch.Run(context.Background(), "user-1", []UploadFile{
		{Name: "products.csv", SchemaType: "products", Content: productsCSV},
	})

	f := outcome.Files[0]
	if !f.UsedFallback {
		t.Fatal("expected fallback engagement")
	}
	// An unusable oracle is never a file failure on its own: the fallback
	// still produces one record per row.
	if f.Status == StatusFailed {
		t.Errorf("status = %s, oracle failure must not fail the file", f.Status)
	}
	if f.RecordsAccepted+f.RecordsRejected != f.RowsExtracted {
		t.Errorf("record counts %d+%d do not cover %d rows",
			f.RecordsAccepted, f.RecordsRejected, f.RowsExtracted)
	}
}

func TestRunFilesAreIndependent(t *testing.T) {
	store := newMockStore()
	orch := New(echoOracle(productsMapping), store, nil)

	outcome := orch.Run(context.Background(), "user-1", []UploadFile{
		{Name: "good.csv", SchemaType: "products", Content: []byte("Product Name,SKU,Price,Qty\nWidget,W-1,1,1\n")},
		{Name: "bad.csv", SchemaType: "unicorns", Content: []byte("a,b\n1,2\n")},
		{Name: "empty.csv", SchemaType: "products", Content: []byte("Product Name,SKU\n")},
	})

	if len(outcome.Files) != 3 {
		t.Fatalf("files = %d", len(outcome.Files))
	}
	byName := map[string]FileOutcome{}
	for _, f := range outcome.Files {
		byName[f.FileName] = f
	}

	if byName["good.csv"].Status != StatusSucceeded {
		t.Errorf("good.csv = %s (%s)", byName["good.csv"].Status, byName["good.csv"].Error)
	}
	if byName["bad.csv"].Status != StatusFailed {
		t.Errorf("bad.csv = %s, unknown schema must fail the file", byName["bad.csv"].Status)
	}
	if byName["empty.csv"].Status != StatusFailed || byName["empty.csv"].Error != "no data rows found" {
		t.Errorf("empty.csv = %s (%q)", byName["empty.csv"].Status, byName["empty.csv"].Error)
	}
	if outcome.Status != BatchMixed {
		t.Errorf("batch status = %s, want Mixed", outcome.Status)
	}
	// Outcome order matches submission order even though files run
	// concurrently.
	if outcome.Files[0].FileName != "good.csv" || outcome.Files[2].FileName != "empty.csv" {
		t.Errorf("outcome order = %v", []string{outcome.Files[0].FileName, outcome.Files[1].FileName, outcome.Files[2].FileName})
	}
}

func TestRunAllFailed(t *testing.T) {
	store := newMockStore()
	orch := New(echoOracle(productsMapping), store, nil)

	outcome := orch.Run(context.Background(), "user-1", []UploadFile{
		{Name: "a.csv", SchemaType: "nope", Content: []byte("x\n1\n")},
		{Name: "b.csv", SchemaType: "alsonope", Content: []byte("x\n1\n")},
	})
	if outcome.Status != BatchAllFailed {
		t.Errorf("batch status = %s, want AllFailed", outcome.Status)
	}
}

func TestRunStoreErrorFailsFile(t *testing.T) {
	store := newMockStore()
	store.err = fmt.Errorf("connection refused")
	orch := New(echoOracle(productsMapping), store, nil)

	outcome := orch.Run(context.Background(), "user-1", []UploadFile{
		{Name: "products.csv", SchemaType: "products", Content: []byte("Product Name,SKU,Price,Qty\nWidget,W-1,1,1\n")},
	})

	f := outcome.Files[0]
	if f.Status != StatusFailed {
		t.Errorf("status = %s, want Failed", f.Status)
	}
	if f.RecordsAccepted != 0 {
		t.Errorf("accepted = %d, persistence failed so nothing counts", f.RecordsAccepted)
	}
	if !strings.Contains(f.Error, "store error") || !strings.Contains(f.Error, "connection refused") {
		t.Errorf("error = %q", f.Error)
	}
}

func TestPreviewSkipsPersistence(t *testing.T) {
	store := newMockStore()
	orch := New(echoOracle(productsMapping), store, nil)

	outcome := orch.Preview(context.Background(), "user-1", []UploadFile{
		{Name: "products.csv", SchemaType: "products", Content: []byte("Product Name,SKU,Price,Qty\nWidget,W-1,1,1\n")},
	})

	if outcome.Files[0].Status != StatusSucceeded {
		t.Errorf("status = %s", outcome.Files[0].Status)
	}
	if store.inserted("products") != 0 {
		t.Errorf("preview must not persist, inserted = %d", store.inserted("products"))
	}
}

func TestRunAttachesOwner(t *testing.T) {
	store := newMockStore()
	orch := New(echoOracle(productsMapping), store, nil)

	orch.Run(context.Background(), "user-42", []UploadFile{
		{Name: "products.csv", SchemaType: "products", Content: []byte("Product Name,SKU,Price,Qty\nWidget,W-1,1,1\n")},
	})

	store.mu.Lock()
	defer store.mu.Unlock()
	recs := store.inserts["products"]
	if len(recs) != 1 {
		t.Fatalf("inserted = %d", len(recs))
	}
	if recs[0]["userId"] != "user-42" {
		t.Errorf("owner = %v", recs[0]["userId"])
	}
}

func TestRunNilOracleAlwaysFallsBack(t *testing.T) {
	store := newMockStore()
	orch := New(nil, store, nil)

	outcome := orch.Run(context.Background(), "user-1", []UploadFile{
		{Name: "products.csv", SchemaType: "products", Content: productsCSV},
	})
	if !outcome.Files[0].UsedFallback {
		t.Error("nil oracle must engage the fallback mapper")
	}
}

func TestRunBatchHasIdentity(t *testing.T) {
	orch := New(nil, newMockStore(), nil)
	outcome := orch.Run(context.Background(), "user-1", nil)
	if outcome.BatchID == "" {
		t.Error("missing batch id")
	}
	if outcome.UserID != "user-1" {
		t.Errorf("user = %q", outcome.UserID)
	}
	if outcome.CompletedAt.IsZero() {
		t.Error("missing completion timestamp")
	}
	if outcome.Status != BatchAllFailed {
		t.Errorf("empty submission status = %s, want AllFailed", outcome.Status)
	}
}
