// Package schema validates parsed YAML documents against a declarative
// rule tree and reports every failure with its source position.
//
// Rules are plain data: a mapping lists its fields with a required flag, a
// sequence names its item rule, and scalars are either strings or dates.
// Mappings are closed, so keys the rule does not declare are errors.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid matches every *ValidationError via errors.Is.
var ErrInvalid = errors.New("invalid document")

// Kind is the shape a rule accepts.
type Kind int

const (
	KindMap Kind = iota
	KindSeq
	KindStr
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindMap:
		return "mapping"
	case KindSeq:
		return "sequence"
	case KindStr:
		return "string"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Rule describes the accepted shape of one node.
type Rule struct {
	Kind   Kind
	Fields []Field // KindMap only
	Items  *Rule   // KindSeq only
}

// Field is a named entry of a mapping rule.
type Field struct {
	Key      string
	Rule     *Rule
	Required bool
}

// Map returns a closed mapping rule.
func Map(fields ...Field) *Rule {
	return &Rule{Kind: KindMap, Fields: fields}
}

// Seq returns a sequence rule whose items all follow items.
func Seq(items *Rule) *Rule {
	return &Rule{Kind: KindSeq, Items: items}
}

// Str accepts string scalars, including block literals.
func Str() *Rule {
	return &Rule{Kind: KindStr}
}

// Date accepts strings in YYYY-MM-DD or YYYY-MM form.
func Date() *Rule {
	return &Rule{Kind: KindDate}
}

func Required(key string, r *Rule) Field {
	return Field{Key: key, Rule: r, Required: true}
}

func Optional(key string, r *Rule) Field {
	return Field{Key: key, Rule: r}
}

// field looks up a declared key.
func (r *Rule) field(key string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// FieldError is a single validation failure.
type FieldError struct {
	File    string
	Line    int
	Column  int
	Path    string // dotted path, e.g. experience[1].dates.from
	Message string
}

func (e FieldError) String() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteByte(':')
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, "%d:%d:", e.Line, e.Column)
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// ValidationError collects all failures found in one document.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return ErrInvalid.Error()
	case 1:
		return e.Errors[0].String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e.Errors))
	for _, fe := range e.Errors {
		b.WriteString("\n  ")
		b.WriteString(fe.String())
	}
	return b.String()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}
