package relations

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goliatone/go-relations/pkg/crud"
	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/relation"
	"github.com/goliatone/go-relations/pkg/token"
	"github.com/goliatone/go-relations/pkg/validation"
)

const goodToken = "letmein"

type envelopeResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func newCrud(t *testing.T, descriptor relation.Descriptor) *crud.Handler {
	t.Helper()
	records := record.NewMemory(record.WithRecords(
		record.Record{ID: 1, Type: "order", Title: "Order #1"},
		record.Record{ID: 7, Type: "product", Title: "Widget"},
		record.Record{ID: 9, Type: "coupon", Title: "SAVE10"},
	))
	handler, err := crud.New(descriptor,
		crud.WithRecords(records),
		crud.WithVerifier(token.Static(goodToken)),
		crud.WithBasePath(MountPath("")),
	)
	if err != nil {
		t.Fatalf("crud handler: %v", err)
	}
	return handler
}

func serve(t *testing.T, h http.Handler, method, target string, form url.Values) (*http.Response, envelopeResponse) {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := rec.Result()
	var payload envelopeResponse
	if strings.HasPrefix(res.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return res, payload
}

func TestHandler_AttachListDetach(t *testing.T) {
	h := NewHandler(newCrud(t, relation.MustSingle("shop", "order", "product")))

	res, payload := serve(t, h, http.MethodPost, "/relations/shop_add_order_product", url.Values{
		"post_id":        {"1"},
		"nonce":          {goodToken},
		"related[id]":    {"7"},
		"related[title]": {"Widget"},
	})
	if res.StatusCode != http.StatusOK || !payload.Success {
		t.Fatalf("attach failed: %d %s", res.StatusCode, payload.Data)
	}
	var entries []map[string]any
	if err := json.Unmarshal(payload.Data, &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(entries) != 1 || entries[0]["id"] != float64(7) || entries[0]["type"] != "product" {
		t.Fatalf("unexpected entries %v", entries)
	}

	res, payload = serve(t, h, http.MethodGet, "/relations/shop_list_order_product?post_id=1&nonce="+goodToken, nil)
	if res.StatusCode != http.StatusOK || !payload.Success {
		t.Fatalf("list failed: %d %s", res.StatusCode, payload.Data)
	}
	var html string
	if err := json.Unmarshal(payload.Data, &html); err != nil {
		t.Fatalf("decode html: %v", err)
	}
	if !strings.Contains(html, `data-related-id="7"`) {
		t.Fatalf("expected product 7 in list, got:\n%s", html)
	}

	res, payload = serve(t, h, http.MethodPost, "/relations/shop_remove_order_product", url.Values{
		"post_id":    {"1"},
		"nonce":      {goodToken},
		"related_id": {"7"},
	})
	if res.StatusCode != http.StatusOK || string(payload.Data) != "[]" {
		t.Fatalf("detach failed: %d %s", res.StatusCode, payload.Data)
	}

	_, payload = serve(t, h, http.MethodGet, "/relations/shop_list_order_product?post_id=1&nonce="+goodToken, nil)
	if !payload.Success || string(payload.Data) != `""` {
		t.Fatalf("expected empty success, got %s", payload.Data)
	}
}

func TestHandler_RejectsBadToken(t *testing.T) {
	h := NewHandler(newCrud(t, relation.MustSingle("shop", "order", "product")))

	res, payload := serve(t, h, http.MethodPost, "/relations/shop_add_order_product", url.Values{
		"post_id":     {"1"},
		"nonce":       {"nope"},
		"related[id]": {"7"},
	})
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.StatusCode)
	}
	if payload.Success {
		t.Fatalf("expected failure envelope")
	}
}

func TestHandler_EditValidationFailure(t *testing.T) {
	handler := newCrud(t, relation.MustSingle("shop", "order", "product"))
	if err := handler.Config().SetValidation("product", validation.Func(func(c *validation.Context) bool {
		return c.Fail("Name required")
	})); err != nil {
		t.Fatalf("set validation: %v", err)
	}
	h := NewHandler(handler)

	res, payload := serve(t, h, http.MethodPost, "/relations/shop_edit_product", url.Values{
		"nonce":      {goodToken},
		"post_title": {""},
	})
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res.StatusCode)
	}
	var data struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Data, &data); err != nil {
		t.Fatalf("decode error data: %v", err)
	}
	if data.Message != "Name required" {
		t.Fatalf("unexpected message %q", data.Message)
	}
}

func TestHandler_EditSubmitCreates(t *testing.T) {
	h := NewHandler(newCrud(t, relation.MustSingle("shop", "order", "product")))

	res, payload := serve(t, h, http.MethodPost, "/relations/shop_edit_product", url.Values{
		"nonce":      {goodToken},
		"post_title": {"Gadget"},
	})
	if res.StatusCode != http.StatusOK || !payload.Success {
		t.Fatalf("edit failed: %d %s", res.StatusCode, payload.Data)
	}
	var data struct {
		ID      int64 `json:"id"`
		Created bool  `json:"created"`
	}
	if err := json.Unmarshal(payload.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.ID == 0 || !data.Created {
		t.Fatalf("unexpected saved data %+v", data)
	}
}

func TestHandler_HTMLFlows(t *testing.T) {
	h := NewHandler(newCrud(t, relation.MustSingle("shop", "order", "product")))

	res, _ := serve(t, h, http.MethodGet, "/relations/shop_list_product", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("browse: expected 200, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html content type, got %q", ct)
	}

	req := httptest.NewRequest(http.MethodGet, "/relations/shop_edit_product?related_id=7", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<!DOCTYPE html>") {
		t.Fatalf("expected dialog page, got %d:\n%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/relations/shop_edit_product?related_id=7&partial=1", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if strings.Contains(rec.Body.String(), "<!DOCTYPE html>") {
		t.Fatalf("partial forms are not wrapped")
	}
	if !strings.Contains(rec.Body.String(), `action="/relations/shop_edit_product"`) {
		t.Fatalf("expected form action under the mount path, got:\n%s", rec.Body.String())
	}
}

func TestHandler_RoutingErrors(t *testing.T) {
	h := NewHandler(newCrud(t, relation.MustSingle("shop", "order", "product")))

	cases := []struct {
		name   string
		method string
		target string
		form   url.Values
		want   int
	}{
		{"unknown route", http.MethodGet, "/relations/shop_list_coupon", nil, http.StatusNotFound},
		{"outside mount", http.MethodGet, "/other/shop_list_product", nil, http.StatusNotFound},
		{"attach via get", http.MethodGet, "/relations/shop_add_order_product", nil, http.StatusMethodNotAllowed},
		{"bad id", http.MethodPost, "/relations/shop_remove_order_product", url.Values{"post_id": {"x"}}, http.StatusBadRequest},
		{"missing primary", http.MethodPost, "/relations/shop_remove_order_product", url.Values{"nonce": {goodToken}, "related_id": {"7"}}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, _ := serve(t, h, tc.method, tc.target, tc.form)
			if res.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, res.StatusCode)
			}
		})
	}
}

func TestHandler_Guard(t *testing.T) {
	h := NewHandler(
		newCrud(t, relation.MustSingle("shop", "order", "product")),
		WithGuard(func(*http.Request) error {
			return StatusError{Code: http.StatusUnauthorized, Err: errors.New("login required")}
		}),
	)
	res, _ := serve(t, h, http.MethodGet, "/relations/shop_list_product", nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
}

func TestHandler_OpenAPI(t *testing.T) {
	h := NewHandler(newCrud(t, relation.MustSingle("shop", "order", "product")))

	req := httptest.NewRequest(http.MethodGet, "/relations/openapi.json", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var doc struct {
		OpenAPI string                     `json:"openapi"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.OpenAPI != "3.0.3" {
		t.Fatalf("unexpected version %q", doc.OpenAPI)
	}
	if _, ok := doc.Paths["/relations/shop_add_order_product"]; !ok {
		t.Fatalf("expected attach path, got %v", doc.Paths)
	}

	disabled := NewHandler(newCrud(t, relation.MustSingle("shop", "order", "product")), WithoutOpenAPI())
	res, _ := serve(t, disabled, http.MethodGet, "/relations/openapi.json", nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 when disabled, got %d", res.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&crud.IntegrityError{Scope: "s"}, http.StatusForbidden},
		{&crud.ValidationError{Message: "no"}, http.StatusUnprocessableEntity},
		{&crud.StorageError{Err: record.NewStorageError("bad")}, http.StatusUnprocessableEntity},
		{&crud.StorageError{Err: errors.New("disk")}, http.StatusInternalServerError},
		{crud.ErrUnknownType, http.StatusNotFound},
		{StatusError{Code: http.StatusTeapot}, http.StatusTeapot},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Fatalf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
