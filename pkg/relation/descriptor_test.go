package relation_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-relations/pkg/relation"
)

func TestSingle_KeysDeriveFromRelatedType(t *testing.T) {
	desc := relation.MustSingle("shop", "order", "product")

	if desc.Mixed() {
		t.Fatalf("expected single relation")
	}
	if got := desc.Key(); got != "product" {
		t.Fatalf("key: got %q", got)
	}
	if got := desc.MetaKey(); got != "shop_product" {
		t.Fatalf("meta key: got %q", got)
	}
	if got := desc.InstanceID(); got != "crud_related_instance_product" {
		t.Fatalf("instance: got %q", got)
	}
	if got := desc.PrimaryScope(); got != "shop_order_nonce" {
		t.Fatalf("primary scope: got %q", got)
	}
	if got := desc.EditScope("product"); got != "shop_product_nonce" {
		t.Fatalf("edit scope: got %q", got)
	}
	if got := desc.Name(); got != "shop/order_product" {
		t.Fatalf("name: got %q", got)
	}
}

func TestMixed_KeyJoinsInDeclarationOrder(t *testing.T) {
	desc := relation.MustMixed("shop", "order", "product", "coupon")

	if !desc.Mixed() {
		t.Fatalf("expected mixed relation")
	}
	if got := desc.Key(); got != "product_coupon" {
		t.Fatalf("key: got %q", got)
	}
	if got := desc.MetaKey(); got != "shop_mixed" {
		t.Fatalf("meta key: got %q", got)
	}
	if got := desc.InstanceID(); got != "crud_related_instance_mixed_product_coupon" {
		t.Fatalf("instance: got %q", got)
	}
	if got := desc.Name(); got != "shop/order_product_coupon" {
		t.Fatalf("name: got %q", got)
	}
}

func TestMixed_SingleElementStaysMixed(t *testing.T) {
	single := relation.MustSingle("shop", "order", "product")
	mixed := relation.MustMixed("shop", "order", "product")

	if single.Key() != mixed.Key() {
		t.Fatalf("relation keys should match: %q vs %q", single.Key(), mixed.Key())
	}
	if single.MetaKey() == mixed.MetaKey() {
		t.Fatalf("declared mode should select distinct slots, both got %q", single.MetaKey())
	}
	if single.InstanceID() == mixed.InstanceID() {
		t.Fatalf("declared mode should select distinct instances, both got %q", single.InstanceID())
	}
}

func TestDescriptor_RelatedIsCopied(t *testing.T) {
	desc := relation.MustMixed("shop", "order", "product", "coupon")
	related := desc.Related()
	related[0] = "mutated"

	if got := desc.Key(); got != "product_coupon" {
		t.Fatalf("descriptor mutated through accessor: %q", got)
	}
}

func TestBuild_RejectsInvalidDeclarations(t *testing.T) {
	cases := map[string]func() error{
		"empty prefix": func() error {
			_, err := relation.Single("", "order", "product")
			return err
		},
		"empty primary": func() error {
			_, err := relation.Single("shop", " ", "product")
			return err
		},
		"no related": func() error {
			_, err := relation.Mixed("shop", "order")
			return err
		},
		"duplicate related": func() error {
			_, err := relation.Mixed("shop", "order", "product", "product")
			return err
		},
		"whitespace": func() error {
			_, err := relation.Single("shop", "order", "gift card")
			return err
		},
	}
	for name, fn := range cases {
		if err := fn(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestRoutes_Table(t *testing.T) {
	desc := relation.MustMixed("shop", "order", "product", "coupon")

	want := []relation.Route{
		{Name: "shop_list_product", Operation: relation.OpBrowse, Type: "product"},
		{Name: "shop_edit_product", Operation: relation.OpEdit, Type: "product"},
		{Name: "shop_list_coupon", Operation: relation.OpBrowse, Type: "coupon"},
		{Name: "shop_edit_coupon", Operation: relation.OpEdit, Type: "coupon"},
		{Name: "shop_list_order_product_coupon", Operation: relation.OpListAttached},
		{Name: "shop_add_order_product_coupon", Operation: relation.OpAttach},
		{Name: "shop_remove_order_product_coupon", Operation: relation.OpDetach},
	}
	if diff := cmp.Diff(want, desc.Routes()); diff != "" {
		t.Fatalf("routes mismatch (-want +got):\n%s", diff)
	}
}
