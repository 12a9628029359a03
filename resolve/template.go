package resolve

import (
	"encoding/json"
	"reflect"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

var (
	exprPattern  = regexp.MustCompile(`\{\{\s*([^{}]*?)\s*\}\}`)
	wholePattern = regexp.MustCompile(`^\s*\{\{\s*([^{}]*?)\s*\}\}\s*$`)
)

// Template resolves "{{ path.to.value }}" expressions against a variable
// scope.
//
// A string that is exactly one expression resolves to the referenced value
// with its type preserved, so "{{ user.age }}" yields a number. Expressions
// embedded in longer text are interpolated as text. Maps and slices are
// resolved element by element. Unknown paths resolve to nil, or to empty
// text when interpolated.
type Template struct {
	vars map[string]any
}

// NewTemplate creates a Template over vars. vars is read, never modified.
func NewTemplate(vars map[string]any) *Template {
	if vars == nil {
		vars = map[string]any{}
	}
	return &Template{vars: vars}
}

// Resolve evaluates raw against the template scope.
func (t *Template) Resolve(raw any) any {
	switch v := raw.(type) {
	case string:
		return t.resolveString(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = t.Resolve(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = t.Resolve(item)
		}
		return out
	default:
		return raw
	}
}

func (t *Template) resolveString(s string) any {
	if !strings.Contains(s, "{{") {
		return s
	}
	if m := wholePattern.FindStringSubmatch(s); m != nil {
		return t.Lookup(m[1])
	}
	return exprPattern.ReplaceAllStringFunc(s, func(expr string) string {
		m := exprPattern.FindStringSubmatch(expr)
		return toText(t.Lookup(m[1]))
	})
}

// Lookup returns the value at a dotted path such as "order.items.0.sku",
// or nil when any segment is missing.
func (t *Template) Lookup(path string) any {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	var cur any = t.vars
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil
			}
			cur = next
		case []any:
			i, err := cast.ToIntE(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			cur = node[i]
		default:
			next, ok := mapIndex(node, seg)
			if !ok {
				return nil
			}
			cur = next
		}
	}
	return cur
}

// mapIndex reads string-keyed maps of any value type, such as
// map[string]string or map[string]bool.
func mapIndex(node any, key string) (any, bool) {
	rv := reflect.ValueOf(node)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}

func toText(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		b, jerr := json.Marshal(v)
		if jerr != nil {
			return ""
		}
		return string(b)
	}
	return s
}
