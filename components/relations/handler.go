package relations

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-relations/pkg/crud"
	"github.com/goliatone/go-relations/pkg/openapi"
	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/relation"
	"github.com/goliatone/go-relations/pkg/store"
)

const openAPIRoute = "openapi.json"

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorData struct {
	Message  string   `json:"message"`
	Messages []string `json:"messages,omitempty"`
}

type savedData struct {
	ID      record.ID `json:"id"`
	Created bool      `json:"created"`
}

// Handler builds a net/http handler for the routes of h with default
// options plus any overrides.
func Handler(h *crud.Handler, fns ...OptionFn) http.Handler {
	return NewHandler(h, fns...)
}

func NewHandler(h *crud.Handler, fns ...OptionFn) http.Handler {
	return HandlerWithOptions(h, NewOptions(fns...))
}

// HandlerWithOptions builds the handler from a pre-constructed Options
// value.
func HandlerWithOptions(h *crud.Handler, opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	srv := &server{
		crud:   h,
		opts:   opts,
		routes: make(map[string]relation.Route),
	}
	if h != nil {
		for _, route := range h.Routes() {
			srv.routes[route.Name] = route
		}
	}
	return srv
}

type server struct {
	crud   *crud.Handler
	opts   Options
	routes map[string]relation.Route
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r == nil || s.crud == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	name, ok := s.routeName(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if s.opts.Guard != nil {
		if err := s.opts.Guard(r); err != nil {
			writeGuardError(w, err)
			return
		}
	}

	if name == openAPIRoute && !s.opts.DisableOpenAPI {
		s.serveOpenAPI(w, r)
		return
	}

	route, ok := s.routes[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	}

	switch route.Operation {
	case relation.OpBrowse:
		s.browse(w, r, route)
	case relation.OpEdit:
		s.edit(w, r, route)
	case relation.OpListAttached:
		s.listAttached(w, r)
	case relation.OpAttach:
		s.attach(w, r)
	case relation.OpDetach:
		s.detach(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *server) routeName(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, s.opts.mount+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

func (s *server) browse(w http.ResponseWriter, r *http.Request, route relation.Route) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	out, err := s.crud.Browse(r.Context(), crud.BrowseRequest{
		Type:   route.Type,
		Filter: filterCriteria(r),
	})
	if err != nil {
		s.writeError(w, r, err, false)
		return
	}
	writeHTML(w, r, out)
}

func (s *server) edit(w http.ResponseWriter, r *http.Request, route relation.Route) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead, http.MethodPost) {
		return
	}

	if r.Method != http.MethodPost {
		id, err := parseID(r.URL.Query().Get(crud.FieldRelatedID))
		if err != nil {
			s.writeError(w, r, err, false)
			return
		}
		result, err := s.crud.Edit(r.Context(), crud.EditRequest{
			Type:     route.Type,
			ID:       id,
			Embedded: !truthy(r.URL.Query().Get("partial")),
		})
		if err != nil {
			s.writeError(w, r, err, false)
			return
		}
		writeHTML(w, r, result.HTML)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, invalid(err), true)
		return
	}
	values := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		values[key] = r.PostForm.Get(key)
	}
	if s.opts.TokenParam != crud.FieldNonce {
		values[crud.FieldNonce] = r.PostForm.Get(s.opts.TokenParam)
		delete(values, s.opts.TokenParam)
	}
	id, err := parseID(values[crud.FieldRelatedID])
	if err != nil {
		s.writeError(w, r, err, true)
		return
	}

	result, err := s.crud.Edit(r.Context(), crud.EditRequest{Type: route.Type, ID: id, Values: values})
	if err != nil {
		s.writeError(w, r, err, true)
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{Success: true, Data: savedData{ID: result.Record.ID, Created: result.Created}})
}

func (s *server) listAttached(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead, http.MethodPost) {
		return
	}
	primary, err := parseID(r.FormValue(s.opts.PrimaryParam))
	if err != nil {
		s.writeError(w, r, err, true)
		return
	}
	result, err := s.crud.ListAttached(r.Context(), crud.ListRequest{
		Primary: primary,
		Token:   r.FormValue(s.opts.TokenParam),
	})
	if err != nil {
		s.writeError(w, r, err, true)
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{Success: true, Data: result.HTML})
}

func (s *server) attach(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}
	primary, err := parseID(r.PostFormValue(s.opts.PrimaryParam))
	if err != nil {
		s.writeError(w, r, err, true)
		return
	}
	id, err := parseID(r.PostFormValue("related[id]"))
	if err != nil {
		s.writeError(w, r, err, true)
		return
	}
	entries, err := s.crud.Attach(r.Context(), crud.AttachRequest{
		Primary: primary,
		Token:   r.PostFormValue(s.opts.TokenParam),
		ID:      id,
		Title:   r.PostFormValue("related[title]"),
		Type:    r.PostFormValue("related[type]"),
	})
	if err != nil {
		s.writeError(w, r, err, true)
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{Success: true, Data: nonNil(entries)})
}

func (s *server) detach(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}
	primary, err := parseID(r.PostFormValue(s.opts.PrimaryParam))
	if err != nil {
		s.writeError(w, r, err, true)
		return
	}
	id, err := parseID(r.PostFormValue(crud.FieldRelatedID))
	if err != nil {
		s.writeError(w, r, err, true)
		return
	}
	entries, err := s.crud.Detach(r.Context(), crud.DetachRequest{
		Primary: primary,
		Token:   r.PostFormValue(s.opts.TokenParam),
		ID:      id,
	})
	if err != nil {
		s.writeError(w, r, err, true)
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{Success: true, Data: nonNil(entries)})
}

func (s *server) serveOpenAPI(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	doc := openapi.Describe(s.crud.Descriptor(), s.opts.mount)
	if err := openapi.Validate(r.Context(), doc); err != nil {
		s.opts.Logger.Error("openapi description invalid", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, doc)
}

// StatusFor maps flow errors onto HTTP status codes.
func StatusFor(err error) int {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode()
	}

	var storeErr *record.StorageError
	switch {
	case errors.Is(err, crud.ErrIntegrity):
		return http.StatusForbidden
	case errors.Is(err, crud.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &storeErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, crud.ErrUnknownType):
		return http.StatusNotFound
	case errors.Is(err, crud.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error, asJSON bool) {
	code := StatusFor(err)
	data := errorData{Message: http.StatusText(code)}

	var (
		validationErr *crud.ValidationError
		storageErr    *crud.StorageError
	)
	switch {
	case errors.Is(err, crud.ErrIntegrity):
		data.Message = "Security check failed."
	case errors.As(err, &validationErr):
		data.Message = validationErr.Message
	case errors.As(err, &storageErr) && code != http.StatusInternalServerError:
		data.Message = strings.Join(storageErr.Messages, " ")
		data.Messages = storageErr.Messages
	case code == http.StatusBadRequest || code == http.StatusNotFound:
		data.Message = err.Error()
	}

	if code >= http.StatusInternalServerError {
		s.opts.Logger.Error("relation request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}

	if asJSON {
		writeJSON(w, r, code, envelope{Success: false, Data: data})
		return
	}
	http.Error(w, data.Message, code)
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, method := range methods {
		if r.Method == method {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}

func writeHTML(w http.ResponseWriter, r *http.Request, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if r.Method == http.MethodHead {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func filterCriteria(r *http.Request) record.Criteria {
	var criteria record.Criteria
	for key, values := range r.URL.Query() {
		inner, ok := strings.CutPrefix(key, "filter[")
		if !ok {
			continue
		}
		inner, ok = strings.CutSuffix(inner, "]")
		if !ok || inner == "" || len(values) == 0 {
			continue
		}
		if criteria == nil {
			criteria = make(record.Criteria)
		}
		criteria[inner] = values[0]
	}
	return criteria
}

func parseID(raw string) (record.ID, error) {
	id, err := record.ParseID(raw)
	if err != nil {
		return 0, invalid(err)
	}
	return id, nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", crud.ErrInvalidRequest, err)
}

func truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func nonNil(entries []store.Entry) []store.Entry {
	if entries == nil {
		return []store.Entry{}
	}
	return entries
}
