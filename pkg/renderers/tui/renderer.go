// Package tui renders relation lists as plain text and lets a terminal user
// pick records through survey prompts.
package tui

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/render"
)

// FormatText is the name the text formatter registers under.
const FormatText = "text"

// Renderer is a render.Formatter producing one line per record, plus the
// prompt helpers used by terminal clients.
type Renderer struct {
	driver PromptDriver
	out    io.Writer
	theme  Theme
}

var _ render.Formatter = (*Renderer)(nil)

// New constructs a terminal renderer with the survey driver writing to
// stdout.
func New(options ...Option) *Renderer {
	r := &Renderer{out: os.Stdout}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	return r
}

// Name reports the formatter identifier.
func (r *Renderer) Name() string { return FormatText }

// Format renders "[type #id] Label: value; ..." lines. Cell markup is
// reduced to its text.
func (r *Renderer) Format(ctx context.Context, page render.Page) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, item := range page.Items {
		fmt.Fprintf(&b, "[%s #%s]", item.Record.Type, item.Record.ID)
		sep := " "
		for _, cell := range item.Row.Cells() {
			b.WriteString(sep)
			b.WriteString(cell.Label)
			b.WriteString(": ")
			b.WriteString(plainText(cell.Value))
			sep = "; "
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// Pick asks the user to choose among records and returns the chosen ones in
// list order.
func (r *Renderer) Pick(ctx context.Context, message string, records []record.Record) ([]record.Record, error) {
	if len(records) == 0 {
		return nil, nil
	}
	options := make([]string, 0, len(records))
	for _, rec := range records {
		options = append(options, OptionLabel(rec))
	}
	picked, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  message,
		Options:  options,
		PageSize: 15,
	})
	if err != nil {
		return nil, err
	}
	out := make([]record.Record, 0, len(picked))
	for _, idx := range picked {
		if idx >= 0 && idx < len(records) {
			out = append(out, records[idx])
		}
	}
	return out, nil
}

// Confirm asks a yes/no question.
func (r *Renderer) Confirm(ctx context.Context, message string) (bool, error) {
	ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: message})
	if errors.Is(err, ErrAborted) {
		return false, nil
	}
	return ok, err
}

// Info prints msg with the theme prefix.
func (r *Renderer) Info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

// OptionLabel is the picker label of rec.
func OptionLabel(rec record.Record) string {
	return fmt.Sprintf("#%s %s (%s)", rec.ID, rec.Title, rec.Type)
}

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func plainText(fragment string) string {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.Join(strings.Fields(html.UnescapeString(textPolicy.Sanitize(fragment))), " ")
}
