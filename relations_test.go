package relations_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	relations "github.com/goliatone/go-relations"
	"github.com/goliatone/go-relations/pkg/crud"
	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/token"
)

const shopYAML = `
relations:
  - prefix: shop
    primary: order
    related: [product]
    types:
      product:
        label: Item
        post_list_format: text
  - prefix: promo
    primary: order
    related: [product, coupon]
    mixed: true
`

func newEngine(t *testing.T, signer *token.Signer) *relations.Engine {
	t.Helper()
	records := record.NewMemory(record.WithRecords(
		record.Record{ID: 1, Type: "order", Title: "Order #1"},
		record.Record{ID: 7, Type: "product", Title: "Widget"},
		record.Record{ID: 9, Type: "coupon", Title: "SAVE10"},
	))
	engine, err := relations.Load(
		fstest.MapFS{"shop.yaml": {Data: []byte(shopYAML)}},
		relations.WithRecords(records),
		relations.WithSigner(signer),
		relations.WithBasePath("/admin"),
	)
	if err != nil {
		t.Fatalf("load engine: %v", err)
	}
	return engine
}

func newSigner(t *testing.T) *token.Signer {
	t.Helper()
	signer, err := token.NewSigner([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	return signer
}

func TestEngine_RegisterRoutesAndServe(t *testing.T) {
	signer := newSigner(t)
	engine := newEngine(t, signer)

	if diff := cmp.Diff([]string{"promo/order_product_coupon", "shop/order_product"}, engine.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	mux := http.NewServeMux()
	patterns, err := engine.RegisterRoutes(mux)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if diff := cmp.Diff([]string{"/admin/relations/promo/order_product_coupon/", "/admin/relations/shop/order_product/"}, patterns); diff != "" {
		t.Fatalf("patterns mismatch (-want +got):\n%s", diff)
	}

	shop, ok := engine.Handler("shop/order_product")
	if !ok {
		t.Fatalf("missing shop handler")
	}
	nonce, err := shop.IssueToken(context.Background(), shop.Descriptor().PrimaryScope())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	form := url.Values{"post_id": {"1"}, "nonce": {nonce}, "related[id]": {"7"}, "related[title]": {"Widget"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/relations/shop/order_product/shop_add_order_product", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("attach: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/relations/shop/order_product/shop_list_order_product?post_id=1&nonce="+url.QueryEscape(nonce), nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	var payload struct {
		Success bool   `json:"success"`
		Data    string `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Success || payload.Data != "[product #7] ID: 7; Post Title: Widget\n" {
		t.Fatalf("unexpected list payload %+v", payload)
	}
}

func TestEngine_EditLinksPointAtMount(t *testing.T) {
	engine := newEngine(t, newSigner(t))
	shop, _ := engine.Handler("shop/order_product")

	out, err := shop.Browse(context.Background(), crud.BrowseRequest{Type: "product"})
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if !strings.Contains(out, "/admin/relations/shop/order_product/shop_edit_product?related_id=7") {
		t.Fatalf("expected edit link under the mount path, got:\n%s", out)
	}
}

const sharedPrefixYAML = `
relations:
  - prefix: shop
    primary: order
    related: [product]
  - prefix: shop
    primary: cart
    related: [product]
`

func TestEngine_SharedPrefix(t *testing.T) {
	signer := newSigner(t)
	records := record.NewMemory(record.WithRecords(
		record.Record{ID: 1, Type: "order", Title: "Order #1"},
		record.Record{ID: 2, Type: "cart", Title: "Cart #2"},
		record.Record{ID: 7, Type: "product", Title: "Widget"},
	))
	engine, err := relations.Load(
		fstest.MapFS{"shop.yaml": {Data: []byte(sharedPrefixYAML)}},
		relations.WithRecords(records),
		relations.WithSigner(signer),
	)
	if err != nil {
		t.Fatalf("load engine: %v", err)
	}
	if diff := cmp.Diff([]string{"shop/cart_product", "shop/order_product"}, engine.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	mux := http.NewServeMux()
	patterns, err := engine.RegisterRoutes(mux)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if diff := cmp.Diff([]string{"/relations/shop/cart_product/", "/relations/shop/order_product/"}, patterns); diff != "" {
		t.Fatalf("patterns mismatch (-want +got):\n%s", diff)
	}

	cart, err := engine.Find("shop/cart_product")
	if err != nil {
		t.Fatalf("find cart: %v", err)
	}
	nonce, err := cart.IssueToken(context.Background(), cart.Descriptor().PrimaryScope())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	form := url.Values{"post_id": {"2"}, "nonce": {nonce}, "related[id]": {"7"}, "related[title]": {"Widget"}}
	req := httptest.NewRequest(http.MethodPost, "/relations/shop/cart_product/shop_add_cart_product", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("attach: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if _, err := engine.Find("shop"); err == nil || !strings.Contains(err.Error(), "shared by") {
		t.Fatalf("expected ambiguous prefix error, got %v", err)
	}
	if _, err := engine.Find("missing"); err == nil {
		t.Fatalf("expected unknown relation error")
	}
}

func TestEngine_FindByUniquePrefix(t *testing.T) {
	engine := newEngine(t, newSigner(t))
	handler, err := engine.Find("promo")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got := handler.Descriptor().Name(); got != "promo/order_product_coupon" {
		t.Fatalf("expected promo relation, got %q", got)
	}
}

func TestNew_RequiresRelations(t *testing.T) {
	if _, err := relations.New(nil, relations.WithVerifier(token.Static("x"))); err == nil {
		t.Fatalf("expected error without relations")
	}
}
