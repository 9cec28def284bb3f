package openapi_test

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-relations/pkg/openapi"
	"github.com/goliatone/go-relations/pkg/relation"
)

func TestDescribe_ValidatesAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	doc := openapi.Describe(relation.MustMixed("shop", "order", "product", "coupon"), "/relations/")

	if err := openapi.Validate(ctx, doc); err != nil {
		t.Fatalf("validate: %v", err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	loaded, err := openapi3.NewLoader().LoadFromData(raw)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := loaded.Validate(ctx); err != nil {
		t.Fatalf("validate loaded: %v", err)
	}

	var paths []string
	for path := range loaded.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	want := []string{
		"/relations/shop_add_order_product_coupon",
		"/relations/shop_edit_coupon",
		"/relations/shop_edit_product",
		"/relations/shop_list_coupon",
		"/relations/shop_list_order_product_coupon",
		"/relations/shop_list_product",
		"/relations/shop_remove_order_product_coupon",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	edit := loaded.Paths.Value("/relations/shop_edit_product")
	if edit.Get == nil || edit.Post == nil {
		t.Fatalf("edit route should describe GET and POST")
	}
	if edit.Post.OperationID != "shop_edit_product_submit" {
		t.Fatalf("unexpected operation id %q", edit.Post.OperationID)
	}
}

func TestPath(t *testing.T) {
	cases := map[string]string{
		"":          "/shop_list_product",
		"/":         "/shop_list_product",
		"relations": "/relations/shop_list_product",
		"/api/rel/": "/api/rel/shop_list_product",
	}
	for base, want := range cases {
		if got := openapi.Path(base, "shop_list_product"); got != want {
			t.Fatalf("Path(%q) = %q, want %q", base, got, want)
		}
	}
}

func TestValidate_Nil(t *testing.T) {
	if err := openapi.Validate(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil document")
	}
}
