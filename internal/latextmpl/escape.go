package latextmpl

import (
	"fmt"
	"reflect"
	"strings"
)

// Raw is text that is already valid LaTeX and must not be escaped again.
type Raw string

// EscapeFunc neutralizes characters that would break the generated LaTeX.
type EscapeFunc func(string) string

var defaultReplacer = strings.NewReplacer(`&`, `\&`, `%`, `\%`)

// Escape is the default escape function. It only handles the two characters
// that routinely appear in résumé prose: & and %.
func Escape(s string) string {
	return defaultReplacer.Replace(s)
}

// TeXEscape escapes every LaTeX special character: \ { } $ & % # ^ _ ~
func TeXEscape(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) * 2)

	for _, r := range text {
		switch r {
		case '\\':
			result.WriteString(`\textbackslash{}`)
		case '{':
			result.WriteString(`\{`)
		case '}':
			result.WriteString(`\}`)
		case '$':
			result.WriteString(`\$`)
		case '&':
			result.WriteString(`\&`)
		case '%':
			result.WriteString(`\%`)
		case '#':
			result.WriteString(`\#`)
		case '^':
			result.WriteString(`\textasciicircum{}`)
		case '_':
			result.WriteString(`\_`)
		case '~':
			result.WriteString(`\textasciitilde{}`)
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// stringify renders a template value as text. Nil and missing values
// render as the empty string.
func stringify(v any) string {
	if isNilPointer(v) {
		return ""
	}
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case Raw:
		return string(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

// escapeValue applies fn unless v is Raw.
func escapeValue(fn EscapeFunc, v any) string {
	if r, ok := v.(Raw); ok {
		return string(r)
	}
	return fn(stringify(v))
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
