package latextmpl

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/alnah/go-mkresume/internal/dateutil"
)

// timeValuer is implemented by calendar types that wrap time.Time.
type timeValuer interface {
	Time() time.Time
}

func builtinFuncs(e *Engine) template.FuncMap {
	return template.FuncMap{
		"date":      formatDate,
		"escape":    func(v any) Raw { return Raw(escapeValue(e.escape, v)) },
		"texescape": func(v any) Raw { return Raw(escapeValue(TeXEscape, v)) },
		"safe":      func(v any) Raw { return Raw(stringify(v)) },
		"join":      join,
		"contains":  contains,
	}
}

// formatDate formats a date value. The layout uses '~' where strftime uses
// '%', because a bare '%' starts a LaTeX comment in template sources.
// Layouts without directives fall back to dateutil's friendly tokens.
func formatDate(layout string, v any) (string, error) {
	if v == nil || isNilPointer(v) {
		return "", nil
	}
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case timeValuer:
		t = x.Time()
	case string:
		parsed, _, err := dateutil.ParseDate(x)
		if err != nil {
			return "", err
		}
		t = parsed
	default:
		return "", fmt.Errorf("date: unsupported value of type %T", v)
	}
	if t.IsZero() {
		return "", nil
	}
	return dateutil.Format(t, strings.ReplaceAll(layout, "~", "%"))
}

// join concatenates the items of a slice with sep.
func join(sep string, v any) (string, error) {
	items, err := toStrings(v)
	if err != nil {
		return "", fmt.Errorf("join: %w", err)
	}
	return strings.Join(items, sep), nil
}

// contains reports whether list holds item. Used as
// \BLOCK{if contains .blocks "summary"}.
func contains(list any, item string) (bool, error) {
	items, err := toStrings(list)
	if err != nil {
		return false, fmt.Errorf("contains: %w", err)
	}
	return slices.Contains(items, item), nil
}

func toStrings(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return x, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]string, rv.Len())
	for i := range out {
		out[i] = stringify(rv.Index(i).Interface())
	}
	return out, nil
}
