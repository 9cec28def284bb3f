package render

import "context"

// NoticeLevel is the severity of a notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeDanger  NoticeLevel = "danger"
)

// Notice is a one line message shown in place of a list.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// FormView is the edit form of a related record.
type FormView struct {
	// Heading is shown above the form, e.g. "Edit Product".
	Heading string
	// Action is the URL the form posts to.
	Action string
	// Instance is the relation instance id carried by the form.
	Instance string
	Hidden   []HiddenField
	// Fields, Hooks and Buttons are pre-rendered HTML fragments.
	Fields  []string
	Hooks   []string
	Buttons []string
}

// Views renders the non-list HTML surfaces of the edit and browse flows.
type Views interface {
	Notice(ctx context.Context, notice Notice) (string, error)
	Form(ctx context.Context, form FormView) (string, error)
}

// Chrome wraps a full page response (the embedded dialog surface) around
// body content.
type Chrome interface {
	Wrap(ctx context.Context, title, body string) (string, error)
}

// ChromeFunc adapts a function to Chrome.
type ChromeFunc func(ctx context.Context, title, body string) (string, error)

// Wrap calls fn.
func (fn ChromeFunc) Wrap(ctx context.Context, title, body string) (string, error) {
	return fn(ctx, title, body)
}
