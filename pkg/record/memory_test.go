package record_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-relations/pkg/record"
)

func TestMemory_QueryFiltersByTypeIDsAndCriteria(t *testing.T) {
	store := record.NewMemory(record.WithRecords(
		record.Record{ID: 7, Type: "product", Title: "Widget", Attributes: map[string]any{"color": "red"}},
		record.Record{ID: 8, Type: "product", Title: "Gadget", Attributes: map[string]any{"color": "blue"}},
		record.Record{ID: 9, Type: "coupon", Title: "SAVE10"},
	))
	ctx := context.Background()

	products, err := store.Query(ctx, record.Query{Types: []string{"product"}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got := ids(products); !cmp.Equal(got, []record.ID{7, 8}) {
		t.Fatalf("unexpected products: %v", got)
	}

	red, err := store.Query(ctx, record.Query{Types: []string{"product"}, Filter: record.Criteria{"color": "red"}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got := ids(red); !cmp.Equal(got, []record.ID{7}) {
		t.Fatalf("unexpected filtered products: %v", got)
	}

	byID, err := store.Query(ctx, record.Query{IDs: []record.ID{9, 7}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got := ids(byID); !cmp.Equal(got, []record.ID{7, 9}) {
		t.Fatalf("unexpected id query: %v", got)
	}
}

func TestMemory_CreateRequiresTitleUnlessAllowed(t *testing.T) {
	store := record.NewMemory(record.WithUntitledTypes("note"))
	ctx := context.Background()

	_, err := store.Create(ctx, record.Payload{Type: "product", Fields: map[string]string{}})
	var storageErr *record.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if diff := cmp.Diff([]string{"Content, title, and excerpt are empty."}, storageErr.Messages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}

	if store.SupportsTitle("note") {
		t.Fatalf("expected note to be untitled")
	}
	rec, err := store.Create(ctx, record.Payload{Type: "note", AllowEmptyTitle: true, Fields: map[string]string{"body": "x"}})
	if err != nil {
		t.Fatalf("create untitled: %v", err)
	}
	if rec.ID.IsZero() || rec.Attributes["body"] != "x" {
		t.Fatalf("unexpected record: %#v", rec)
	}
}

func TestMemory_UpdateMergesFields(t *testing.T) {
	store := record.NewMemory(record.WithRecords(record.Record{ID: 3, Type: "product", Title: "Old"}))
	ctx := context.Background()

	rec, err := store.Update(ctx, 3, record.Payload{Type: "product", Status: "publish", Fields: map[string]string{"post_title": "New", "sku": "A1"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want := record.Record{ID: 3, Type: "product", Title: "New", Status: "publish", Attributes: map[string]any{"sku": "A1"}}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	if _, err := store.Update(ctx, 3, record.Payload{Type: "coupon"}); err == nil {
		t.Fatalf("expected type mismatch error")
	}
	if _, err := store.Update(ctx, 99, record.Payload{}); err == nil {
		t.Fatalf("expected missing record error")
	}
}

func TestParseID(t *testing.T) {
	if id, err := record.ParseID(" 42 "); err != nil || id != 42 {
		t.Fatalf("unexpected parse result: %v %v", id, err)
	}
	if id, err := record.ParseID(""); err != nil || !id.IsZero() {
		t.Fatalf("expected zero id for empty input, got %v %v", id, err)
	}
	if _, err := record.ParseID("-1"); err == nil {
		t.Fatalf("expected negative id to fail")
	}
	if _, err := record.ParseID("abc"); err == nil {
		t.Fatalf("expected non-numeric id to fail")
	}
}

func ids(records []record.Record) []record.ID {
	out := make([]record.ID, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.ID)
	}
	return out
}
