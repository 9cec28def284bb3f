package validation_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-relations/pkg/validation"
)

func TestEvaluate_AlwaysAndFixed(t *testing.T) {
	if got := validation.Evaluate(validation.Always(), nil); !got.Passed {
		t.Fatalf("always rule should pass")
	}
	if got := validation.Evaluate(validation.Fixed(true), nil); !got.Passed {
		t.Fatalf("fixed(true) should pass")
	}

	got := validation.Evaluate(validation.Fixed(false), nil)
	if got.Passed {
		t.Fatalf("fixed(false) should fail")
	}
	if got.Message != validation.DefaultMessage {
		t.Fatalf("expected default message, got %q", got.Message)
	}
	if got.Err() == nil || got.Err().Error() != validation.DefaultMessage {
		t.Fatalf("unexpected error %v", got.Err())
	}
}

func TestEvaluate_PredicateMessage(t *testing.T) {
	rule := validation.Func(func(ctx *validation.Context) bool {
		if ctx.Value("sku") == "" {
			return ctx.Fail("SKU missing")
		}
		return true
	})

	failed := validation.Evaluate(rule, &validation.Context{Type: "product", Values: map[string]string{}})
	if failed.Passed || failed.Message != "SKU missing" {
		t.Fatalf("unexpected outcome %+v", failed)
	}

	passed := validation.Evaluate(rule, &validation.Context{Type: "product", Values: map[string]string{"sku": "W1"}})
	if !passed.Passed {
		t.Fatalf("expected pass, got %+v", passed)
	}
}

func TestEvaluate_LastMessageWins(t *testing.T) {
	rule := validation.Func(func(ctx *validation.Context) bool {
		ctx.Fail("Name required")
		return ctx.Fail("Price required")
	})

	got := validation.Evaluate(rule, &validation.Context{Type: "product"})
	if got.Passed || got.Message != "Price required" {
		t.Fatalf("expected the last message, got %+v", got)
	}
	want := []validation.Issue{{Message: "Name required"}, {Message: "Price required"}}
	if diff := cmp.Diff(want, got.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
	if got.Err().Error() != "Price required" {
		t.Fatalf("unexpected error %v", got.Err())
	}
}

func TestEvaluate_PredicateWithoutMessage(t *testing.T) {
	rule := validation.Func(func(*validation.Context) bool { return false })
	got := validation.Evaluate(rule, nil)
	if got.Message != validation.DefaultMessage {
		t.Fatalf("expected default message, got %q", got.Message)
	}
}

func TestEvaluate_Tags(t *testing.T) {
	rule := validation.Tags(map[string]string{
		"post_title": "required,min=3",
		"email":      "omitempty,email",
		"ignored":    "  ",
	})

	got := validation.Evaluate(rule, &validation.Context{Values: map[string]string{
		"post_title": "ab",
		"email":      "nope",
	}})
	if got.Passed {
		t.Fatalf("expected failure")
	}
	want := []validation.Issue{
		{Field: "email", Message: "Email must be a valid email address."},
		{Field: "post_title", Message: "Post Title must be at least 3 characters."},
	}
	if diff := cmp.Diff(want, got.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
	if got.Message != "Post Title must be at least 3 characters." {
		t.Fatalf("unexpected message %q", got.Message)
	}

	ok := validation.Evaluate(rule, &validation.Context{Values: map[string]string{"post_title": "Widget"}})
	if !ok.Passed {
		t.Fatalf("expected pass, got %+v", ok)
	}
}
