// Package latextmpl renders LaTeX templates with text/template.
//
// Templates use LaTeX-friendly markup (see Translate). Every \VAR{}
// result passes through the engine's escape function unless the value is
// Raw, which the safe filter produces.
package latextmpl

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"
	"text/template"
)

// ErrTemplate wraps every parse and execution failure.
var ErrTemplate = errors.New("template error")

// Engine holds the escape function and filters shared by all templates it
// parses. An Engine is immutable after New and safe for concurrent use.
type Engine struct {
	escape EscapeFunc
	funcs  template.FuncMap
}

// Option configures an Engine.
type Option func(*Engine)

// WithEscape replaces the default escape function.
func WithEscape(fn EscapeFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.escape = fn
		}
	}
}

// WithFuncs registers additional filters. Built-in names can be overridden,
// except autoescape.
func WithFuncs(fm template.FuncMap) Option {
	return func(e *Engine) {
		maps.Copy(e.funcs, fm)
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{escape: Escape}
	e.funcs = builtinFuncs(e)
	for _, opt := range opts {
		opt(e)
	}
	e.funcs[escapeFuncName] = func(v any) string { return escapeValue(e.escape, v) }
	return e
}

// Set is a group of templates parsed together so that entry points can
// invoke partials with \BLOCK{template "name" .}.
type Set struct {
	root *template.Template
}

// NewSet returns an empty template set.
func (e *Engine) NewSet() *Set {
	root := template.New("").
		Delims(leftDelim, rightDelim).
		Funcs(e.funcs).
		Option("missingkey=default")
	return &Set{root: root}
}

// Add translates and parses src under name.
func (s *Set) Add(name, src string) error {
	translated, err := Translate(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTemplate, name, err)
	}
	if _, err := s.root.New(name).Parse(translated); err != nil {
		return fmt.Errorf("%w: %s", ErrTemplate, cleanError(err))
	}
	return nil
}

// Execute renders the named template with data.
func (s *Set) Execute(w io.Writer, name string, data any) error {
	if s.root.Lookup(name) == nil {
		return fmt.Errorf("%w: %s: not defined", ErrTemplate, name)
	}
	if err := s.root.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("%w: %s", ErrTemplate, cleanError(err))
	}
	return nil
}

// cleanError strips the text/template prefix and makes the private
// delimiters readable in messages.
func cleanError(err error) string {
	msg := strings.TrimPrefix(err.Error(), "template: ")
	return strings.NewReplacer(leftDelim, "{", rightDelim, "}").Replace(msg)
}
