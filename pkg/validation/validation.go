// Package validation decides whether an edit submission may be persisted.
// A Rule is one of four variants: always pass, a fixed outcome, a caller
// predicate, or a set of validator tags checked per submitted field.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-relations/pkg/fields"
	"github.com/goliatone/go-relations/pkg/record"
)

// DefaultMessage is reported when a rule fails without a message of its own.
const DefaultMessage = "Form Validation Error"

// Kind enumerates the rule variants.
type Kind int

const (
	KindAlways Kind = iota
	KindFixed
	KindPredicate
	KindTags
)

// Predicate inspects a submission and reports whether it passes. It may call
// Context.Fail to attach a message.
type Predicate func(ctx *Context) bool

// Rule is the validation rule configured for a related type.
type Rule struct {
	kind      Kind
	fixed     bool
	predicate Predicate
	tags      map[string]string
}

// Always passes every submission.
func Always() Rule { return Rule{kind: KindAlways} }

// Fixed always yields pass.
func Fixed(pass bool) Rule { return Rule{kind: KindFixed, fixed: pass} }

// Func delegates to a caller predicate. A nil predicate passes.
func Func(fn Predicate) Rule { return Rule{kind: KindPredicate, predicate: fn} }

// Tags validates submitted fields with validator tags keyed by field name,
// for example {"post_title": "required,min=3"}.
func Tags(tags map[string]string) Rule {
	copied := make(map[string]string, len(tags))
	for field, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		copied[field] = tag
	}
	return Rule{kind: KindTags, tags: copied}
}

// Kind reports the variant.
func (r Rule) Kind() Kind { return r.kind }

// Issue describes a failure for a single field.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Context is the submission handed to a rule.
type Context struct {
	Type     string
	RecordID record.ID
	Values   map[string]string

	issues []Issue
}

// Value returns a submitted value.
func (c *Context) Value(name string) string {
	if c == nil || c.Values == nil {
		return ""
	}
	return c.Values[name]
}

// Fail records message and returns false so predicates can end with
// `return ctx.Fail("...")`.
func (c *Context) Fail(message string) bool {
	c.FailField("", message)
	return false
}

// FailField records a message for a specific field.
func (c *Context) FailField(field, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

// Issues returns the recorded failures.
func (c *Context) Issues() []Issue {
	return append([]Issue(nil), c.issues...)
}

// Outcome is the result of evaluating a rule.
type Outcome struct {
	Passed  bool
	Message string
	Issues  []Issue
}

// Err converts a failed outcome into an error.
func (o Outcome) Err() error {
	if o.Passed {
		return nil
	}
	return errors.New(o.Message)
}

// Evaluate runs rule against ctx. A failed outcome carries the last recorded
// message, or DefaultMessage when none was recorded. Issues keeps them all.
func Evaluate(rule Rule, ctx *Context) Outcome {
	if ctx == nil {
		ctx = &Context{}
	}

	var passed bool
	switch rule.kind {
	case KindFixed:
		passed = rule.fixed
	case KindPredicate:
		passed = rule.predicate == nil || rule.predicate(ctx)
	case KindTags:
		passed = checkTags(rule.tags, ctx)
	default:
		passed = true
	}

	if passed {
		return Outcome{Passed: true}
	}

	issues := ctx.Issues()
	message := DefaultMessage
	if len(issues) > 0 {
		message = issues[len(issues)-1].Message
	}
	return Outcome{Passed: false, Message: message, Issues: issues}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

func checkTags(tags map[string]string, ctx *Context) bool {
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	passed := true
	for _, name := range names {
		err := engine().Var(ctx.Value(name), tags[name])
		if err == nil {
			continue
		}
		passed = false

		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				ctx.FailField(name, describe(name, fe))
			}
			continue
		}
		ctx.FailField(name, fmt.Sprintf("%s is invalid.", fields.Humanize(name)))
	}
	return passed
}

func describe(name string, fe validator.FieldError) string {
	label := fields.Humanize(name)
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "email":
		return label + " must be a valid email address."
	case "url":
		return label + " must be a valid URL."
	case "numeric", "number":
		return label + " must be numeric."
	case "oneof":
		return fmt.Sprintf("%s must be one of %s.", label, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation.", label, fe.Tag())
	}
}
