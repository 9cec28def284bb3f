package forms

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Hook contributes extra markup to the form body after the configured
// fields. Output is sanitized with a user-generated-content policy that
// keeps form controls.
type Hook func(env Env) string

var (
	hookPolicyOnce sync.Once
	hookPolicy     *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	hookPolicyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("label", "fieldset", "legend", "option", "optgroup")
		p.AllowAttrs("type", "name", "value", "placeholder", "checked").OnElements("input")
		p.AllowAttrs("name", "rows", "cols", "placeholder").OnElements("textarea")
		p.AllowAttrs("name", "multiple").OnElements("select")
		p.AllowAttrs("value", "selected").OnElements("option")
		p.AllowAttrs("for").OnElements("label")
		p.AllowElements("input", "textarea", "select")
		p.AllowAttrs("class", "id").Globally()
		hookPolicy = p
	})
	return hookPolicy
}

// RenderHooks runs hooks in order and returns their sanitized output.
func RenderHooks(hooks []Hook, env Env) []string {
	out := make([]string, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		markup := strings.TrimSpace(policy().Sanitize(hook(env)))
		if markup != "" {
			out = append(out, markup)
		}
	}
	return out
}
