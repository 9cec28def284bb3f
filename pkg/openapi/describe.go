package openapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-relations/pkg/relation"
)

// Version is the OpenAPI version emitted by Describe.
const Version = "3.0.3"

// Option customises the generated document.
type Option func(*options)

type options struct {
	title   string
	version string
}

// WithTitle overrides the document title.
func WithTitle(title string) Option {
	return func(o *options) {
		if strings.TrimSpace(title) != "" {
			o.title = strings.TrimSpace(title)
		}
	}
}

// WithVersion overrides the API version in the info block.
func WithVersion(version string) Option {
	return func(o *options) {
		if strings.TrimSpace(version) != "" {
			o.version = strings.TrimSpace(version)
		}
	}
}

// Path joins basePath and a route name the way components/relations mounts
// it.
func Path(basePath, route string) string {
	basePath = strings.TrimRight(strings.TrimSpace(basePath), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return basePath + "/" + strings.TrimLeft(route, "/")
}

// Describe builds the document for every route of descriptor mounted under
// basePath.
func Describe(descriptor relation.Descriptor, basePath string, opts ...Option) *openapi3.T {
	cfg := options{
		title:   "Relations: " + descriptor.String(),
		version: "1.0.0",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	var paths []openapi3.NewPathsOption
	for _, route := range descriptor.Routes() {
		item := &openapi3.PathItem{}
		switch route.Operation {
		case relation.OpBrowse:
			item.Get = browseOperation(route)
		case relation.OpEdit:
			item.Get = editFormOperation(route)
			item.Post = editSubmitOperation(route)
		case relation.OpListAttached:
			item.Get = listAttachedOperation(route)
		case relation.OpAttach:
			item.Post = attachOperation(route, descriptor)
		case relation.OpDetach:
			item.Post = detachOperation(route)
		}
		paths = append(paths, openapi3.WithPath(Path(basePath, route.Name), item))
	}

	return &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:   cfg.title,
			Version: cfg.version,
		},
		Paths: openapi3.NewPaths(paths...),
	}
}

// Validate checks doc against the OpenAPI 3 rules.
func Validate(ctx context.Context, doc *openapi3.T) error {
	if doc == nil {
		return errors.New("openapi: document is nil")
	}
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("openapi: invalid document: %w", err)
	}
	return nil
}

func browseOperation(route relation.Route) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = route.Name
	op.Summary = "Browse " + route.Type + " candidates"
	op.AddParameter(openapi3.NewQueryParameter("filter").
		WithDescription("Filter criteria as filter[attribute]=value pairs.").
		WithSchema(openapi3.NewObjectSchema()))
	op.AddResponse(http.StatusOK, htmlResponse("Candidate list or a no records notice."))
	op.AddResponse(http.StatusNotFound, errorResponse("Unknown related type."))
	return op
}

func editFormOperation(route relation.Route) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = route.Name + "_form"
	op.Summary = "Present the " + route.Type + " edit form"
	op.AddParameter(openapi3.NewQueryParameter("related_id").
		WithDescription("Record to edit; omitted to create one.").
		WithSchema(openapi3.NewInt64Schema()))
	op.AddParameter(openapi3.NewQueryParameter("partial").
		WithDescription("Return the bare form without the dialog page.").
		WithSchema(openapi3.NewBoolSchema()))
	op.AddResponse(http.StatusOK, htmlResponse("Edit form."))
	return op
}

func editSubmitOperation(route relation.Route) *openapi3.Operation {
	body := openapi3.NewObjectSchema().
		WithProperty("nonce", openapi3.NewStringSchema()).
		WithProperty("related_id", openapi3.NewInt64Schema()).
		WithProperty("post_title", openapi3.NewStringSchema()).
		WithRequired([]string{"nonce"})

	op := openapi3.NewOperation()
	op.OperationID = route.Name + "_submit"
	op.Summary = "Create or update a " + route.Type
	op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
		WithRequired(true).
		WithDescription("Form fields; meta fields are posted as meta[key].").
		WithFormDataSchema(body)}
	op.AddResponse(http.StatusOK, envelopeResponse("Saved record.", openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewInt64Schema()).
		WithProperty("created", openapi3.NewBoolSchema())))
	addRejections(op)
	return op
}

func listAttachedOperation(route relation.Route) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = route.Name
	op.Summary = "List attached records"
	op.AddParameter(openapi3.NewQueryParameter("post_id").WithRequired(true).WithSchema(openapi3.NewInt64Schema()))
	op.AddParameter(openapi3.NewQueryParameter("nonce").WithRequired(true).WithSchema(openapi3.NewStringSchema()))
	op.AddResponse(http.StatusOK, envelopeResponse("Rendered list, empty when nothing is attached.", openapi3.NewStringSchema()))
	op.AddResponse(http.StatusForbidden, errorResponse("Token rejected."))
	return op
}

func attachOperation(route relation.Route, descriptor relation.Descriptor) *openapi3.Operation {
	related := make([]any, 0, len(descriptor.Related()))
	for _, name := range descriptor.Related() {
		related = append(related, name)
	}
	body := openapi3.NewObjectSchema().
		WithProperty("post_id", openapi3.NewInt64Schema()).
		WithProperty("nonce", openapi3.NewStringSchema()).
		WithProperty("related[id]", openapi3.NewInt64Schema()).
		WithProperty("related[title]", openapi3.NewStringSchema()).
		WithProperty("related[type]", openapi3.NewStringSchema().WithEnum(related...)).
		WithRequired([]string{"post_id", "nonce", "related[id]"})

	op := openapi3.NewOperation()
	op.OperationID = route.Name
	op.Summary = "Attach a related record"
	op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithFormDataSchema(body)}
	op.AddResponse(http.StatusOK, envelopeResponse("Updated relation list.", entryList()))
	addRejections(op)
	return op
}

func detachOperation(route relation.Route) *openapi3.Operation {
	body := openapi3.NewObjectSchema().
		WithProperty("post_id", openapi3.NewInt64Schema()).
		WithProperty("nonce", openapi3.NewStringSchema()).
		WithProperty("related_id", openapi3.NewInt64Schema()).
		WithRequired([]string{"post_id", "nonce", "related_id"})

	op := openapi3.NewOperation()
	op.OperationID = route.Name
	op.Summary = "Detach a related record"
	op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithFormDataSchema(body)}
	op.AddResponse(http.StatusOK, envelopeResponse("Updated relation list.", entryList()))
	addRejections(op)
	return op
}

func entryList() *openapi3.Schema {
	return openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewInt64Schema()).
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("type", openapi3.NewStringSchema()))
}

func addRejections(op *openapi3.Operation) {
	op.AddResponse(http.StatusBadRequest, errorResponse("Missing or malformed input."))
	op.AddResponse(http.StatusForbidden, errorResponse("Token rejected."))
	op.AddResponse(http.StatusUnprocessableEntity, errorResponse("Validation or storage rejected the submission."))
}

func htmlResponse(description string) *openapi3.Response {
	return openapi3.NewResponse().
		WithDescription(description).
		WithContent(openapi3.NewContentWithSchema(openapi3.NewStringSchema(), []string{"text/html"}))
}

func envelopeResponse(description string, data *openapi3.Schema) *openapi3.Response {
	return openapi3.NewResponse().
		WithDescription(description).
		WithJSONSchema(openapi3.NewObjectSchema().
			WithProperty("success", openapi3.NewBoolSchema()).
			WithProperty("data", data))
}

func errorResponse(description string) *openapi3.Response {
	return envelopeResponse(description, openapi3.NewObjectSchema().
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("messages", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())))
}
