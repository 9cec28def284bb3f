package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/store"
)

// plainMeta hides the Mutator implementation of the wrapped store.
type plainMeta struct{ store.MetaStore }

func metaStores(t *testing.T) map[string]store.MetaStore {
	t.Helper()

	bolt, err := store.OpenBolt(filepath.Join(t.TempDir(), "meta.db"))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { _ = bolt.Close() })

	stores := map[string]store.MetaStore{
		"memory": store.NewMemory(),
		"plain":  plainMeta{store.NewMemory()},
		"bolt":   bolt,
	}

	if addr := os.Getenv("RELATIONS_REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		t.Cleanup(func() { _ = client.Close() })
		stores["redis"] = store.NewRedis(client, store.WithKeyPrefix("relations-test:"+t.Name()))
	}
	return stores
}

func entry(id record.ID, title string) store.Entry {
	return store.NewEntry(id, map[string]string{"title": title, "type": "product", "id": "ignored"})
}

func TestRelations_AttachReplaceDetach(t *testing.T) {
	ctx := context.Background()
	for name, meta := range metaStores(t) {
		t.Run(name, func(t *testing.T) {
			relations := store.NewRelations(meta)

			empty, err := relations.List(ctx, 1, "shop_product")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(empty) != 0 {
				t.Fatalf("expected empty list, got %v", empty)
			}

			if _, err := relations.Attach(ctx, 1, "shop_product", entry(7, "Widget")); err != nil {
				t.Fatalf("attach: %v", err)
			}
			if _, err := relations.Attach(ctx, 1, "shop_product", entry(8, "Gadget")); err != nil {
				t.Fatalf("attach: %v", err)
			}
			list, err := relations.Attach(ctx, 1, "shop_product", entry(7, "Widget v2"))
			if err != nil {
				t.Fatalf("attach: %v", err)
			}

			want := []store.Entry{entry(7, "Widget v2"), entry(8, "Gadget")}
			if diff := cmp.Diff(want, list); diff != "" {
				t.Fatalf("attach result mismatch (-want +got):\n%s", diff)
			}
			stored, err := relations.List(ctx, 1, "shop_product")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if diff := cmp.Diff(want, stored); diff != "" {
				t.Fatalf("stored list mismatch (-want +got):\n%s", diff)
			}

			list, err = relations.Detach(ctx, 1, "shop_product", 7)
			if err != nil {
				t.Fatalf("detach: %v", err)
			}
			if diff := cmp.Diff([]store.Entry{entry(8, "Gadget")}, list); diff != "" {
				t.Fatalf("detach result mismatch (-want +got):\n%s", diff)
			}

			// detaching an absent id is not an error
			if _, err := relations.Detach(ctx, 1, "shop_product", 99); err != nil {
				t.Fatalf("detach absent: %v", err)
			}

			other, err := relations.List(ctx, 2, "shop_product")
			if err != nil {
				t.Fatalf("list other: %v", err)
			}
			if len(other) != 0 {
				t.Fatalf("lists must be scoped per primary record, got %v", other)
			}
		})
	}
}

func TestRelations_AttachDetachRoundTrip(t *testing.T) {
	ctx := context.Background()
	relations := store.NewRelations(store.NewMemory())

	before, err := relations.Attach(ctx, 1, "k", entry(3, "Three"))
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := relations.Attach(ctx, 1, "k", entry(4, "Four")); err != nil {
		t.Fatalf("attach: %v", err)
	}
	after, err := relations.Detach(ctx, 1, "k", 4)
	if err != nil {
		t.Fatalf("detach: %v", err)
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRelations_MalformedListReadsEmpty(t *testing.T) {
	ctx := context.Background()
	meta := store.NewMemory()
	relations := store.NewRelations(meta)

	for _, raw := range []string{`not json`, `{"7":{"id":7}}`, `[{"title":"no id"}]`, `"text"`} {
		if err := meta.Set(ctx, 1, "k", []byte(raw)); err != nil {
			t.Fatalf("set: %v", err)
		}
		list, err := relations.List(ctx, 1, "k")
		if err != nil {
			t.Fatalf("list %s: %v", raw, err)
		}
		if len(list) != 0 {
			t.Fatalf("expected empty list for %s, got %v", raw, list)
		}
	}

	list, err := relations.Attach(ctx, 1, "k", entry(5, "Five"))
	if err != nil {
		t.Fatalf("attach over malformed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected malformed list to be replaced, got %v", list)
	}
}

func TestRelations_MalformedEntriesAreKept(t *testing.T) {
	ctx := context.Background()
	for name, meta := range metaStores(t) {
		t.Run(name, func(t *testing.T) {
			relations := store.NewRelations(meta)
			stored := `[{"id":7,"title":"Widget"},{"id":8,"title":"Gadget"},{"title":"orphan"}]`
			if err := meta.Set(ctx, 1, "k", []byte(stored)); err != nil {
				t.Fatalf("set: %v", err)
			}

			list, err := relations.List(ctx, 1, "k")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if diff := cmp.Diff([]record.ID{7, 8}, store.IDs(list)); diff != "" {
				t.Fatalf("list ids mismatch (-want +got):\n%s", diff)
			}

			list, err = relations.Attach(ctx, 1, "k", entry(9, "New"))
			if err != nil {
				t.Fatalf("attach: %v", err)
			}
			if diff := cmp.Diff([]record.ID{7, 8, 9}, store.IDs(list)); diff != "" {
				t.Fatalf("attach ids mismatch (-want +got):\n%s", diff)
			}

			raw, _, err := meta.Get(ctx, 1, "k")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			want := `[{"id":7,"title":"Widget"},{"id":8,"title":"Gadget"},{"id":9,"title":"New","type":"product"},{"title":"orphan"}]`
			if diff := cmp.Diff(want, string(raw)); diff != "" {
				t.Fatalf("stored list mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRelations_InvalidJSONIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	for name, meta := range metaStores(t) {
		t.Run(name, func(t *testing.T) {
			relations := store.NewRelations(meta)
			if err := meta.Set(ctx, 1, "k", []byte(`[{"id":7}`)); err != nil {
				t.Fatalf("set: %v", err)
			}

			if _, err := relations.Attach(ctx, 1, "k", entry(9, "New")); !errors.Is(err, store.ErrMalformedList) {
				t.Fatalf("attach: expected ErrMalformedList, got %v", err)
			}
			if _, err := relations.Detach(ctx, 1, "k", 7); !errors.Is(err, store.ErrMalformedList) {
				t.Fatalf("detach: expected ErrMalformedList, got %v", err)
			}

			raw, _, err := meta.Get(ctx, 1, "k")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(raw) != `[{"id":7}` {
				t.Fatalf("stored value changed to %s", raw)
			}
		})
	}
}

func TestRelations_AttachRequiresID(t *testing.T) {
	relations := store.NewRelations(store.NewMemory())
	if _, err := relations.Attach(context.Background(), 1, "k", store.Entry{}); err == nil {
		t.Fatalf("expected error for entry without id")
	}
}

func TestRelations_ConcurrentAttach(t *testing.T) {
	ctx := context.Background()
	relations := store.NewRelations(store.NewMemory())

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(id record.ID) {
			defer wg.Done()
			if _, err := relations.Attach(ctx, 1, "k", entry(id, "x")); err != nil {
				t.Errorf("attach %d: %v", id, err)
			}
		}(record.ID(i))
	}
	wg.Wait()

	list, err := relations.List(ctx, 1, "k")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 20 {
		t.Fatalf("expected 20 entries with an atomic store, got %d", len(list))
	}
}

func TestEntry_JSON(t *testing.T) {
	encoded, err := entry(7, "Widget").MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(encoded); got != `{"id":7,"title":"Widget","type":"product"}` {
		t.Fatalf("unexpected encoding %s", got)
	}

	var decoded store.Entry
	if err := decoded.UnmarshalJSON([]byte(`{"id":"9","title":"Coupon","qty":2,"tags":["a"]}`)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := store.Entry{ID: 9, Fields: map[string]string{"title": "Coupon", "qty": "2", "tags": `["a"]`}}
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Fatalf("decoded mismatch (-want +got):\n%s", diff)
	}
}
