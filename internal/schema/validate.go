package schema

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/token"

	"github.com/alnah/go-mkresume/internal/dateutil"
	"github.com/alnah/go-mkresume/internal/yamlutil"
)

// Parse parses data and validates it against rule. The returned node is
// ready for decoding. Parser failures are reported as a ValidationError
// carrying the parser's position.
func Parse(file string, data []byte, rule *Rule) (ast.Node, error) {
	node, err := yamlutil.Parse(data)
	if err != nil {
		var se *yamlutil.SyntaxError
		if errors.As(err, &se) {
			return nil, &ValidationError{Errors: []FieldError{{
				File: file, Line: se.Line, Column: se.Column, Message: se.Message,
			}}}
		}
		return nil, &ValidationError{Errors: []FieldError{{File: file, Message: err.Error()}}}
	}
	if err := Validate(file, node, rule); err != nil {
		return nil, err
	}
	return node, nil
}

// Validate walks node and rule in lockstep and returns a *ValidationError
// listing every failure, or nil.
func Validate(file string, node ast.Node, rule *Rule) error {
	v := &validator{file: file}
	if node == nil {
		v.add(nil, "", "document is empty")
	} else {
		v.walk(node, rule, "")
	}
	if len(v.errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errs}
}

type validator struct {
	file string
	errs []FieldError
}

func (v *validator) add(node ast.Node, path, format string, args ...any) {
	fe := FieldError{File: v.file, Path: path, Message: fmt.Sprintf(format, args...)}
	if tk := tokenOf(node); tk != nil && tk.Position != nil {
		fe.Line = tk.Position.Line
		fe.Column = tk.Position.Column
	} else if node == nil {
		fe.Line, fe.Column = 1, 1
	}
	v.errs = append(v.errs, fe)
}

func (v *validator) walk(node ast.Node, rule *Rule, path string) {
	node, ok := v.unwrap(node, path)
	if !ok {
		return
	}
	switch rule.Kind {
	case KindMap:
		v.walkMap(node, rule, path)
	case KindSeq:
		v.walkSeq(node, rule, path)
	case KindStr:
		if _, ok := scalarString(node); !ok {
			v.add(node, path, "expected a string, found %s", describe(node))
		}
	case KindDate:
		s, ok := scalarString(node)
		if !ok {
			v.add(node, path, "expected a date, found %s", describe(node))
			return
		}
		if _, _, err := dateutil.ParseDate(s); err != nil {
			v.add(node, path, "invalid date %q (want YYYY-MM-DD or YYYY-MM)", s)
		}
	}
}

// unwrap strips anchors and tags and rejects aliases, which would let one
// value appear under several paths.
func (v *validator) unwrap(node ast.Node, path string) (ast.Node, bool) {
	for {
		switch n := node.(type) {
		case *ast.AnchorNode:
			node = n.Value
		case *ast.TagNode:
			node = n.Value
		case *ast.AliasNode:
			v.add(n, path, "aliases are not allowed")
			return nil, false
		default:
			return node, node != nil
		}
	}
}

func (v *validator) walkMap(node ast.Node, rule *Rule, path string) {
	var values []*ast.MappingValueNode
	switch n := node.(type) {
	case *ast.MappingNode:
		values = n.Values
	case *ast.MappingValueNode:
		values = []*ast.MappingValueNode{n}
	default:
		v.add(node, path, "expected a mapping, found %s", describe(node))
		return
	}

	seen := make(map[string]bool, len(values))
	for _, mv := range values {
		if mv.Key.IsMergeKey() {
			v.add(mv.Key, path, "merge keys are not allowed")
			continue
		}
		key := keyString(mv.Key)
		childPath := join(path, key)
		if seen[key] {
			v.add(mv.Key, childPath, "duplicate key")
			continue
		}
		seen[key] = true

		f, ok := rule.field(key)
		if !ok {
			v.add(mv.Key, childPath, "unexpected key")
			continue
		}
		if isNull(mv.Value) {
			if f.Required {
				v.add(mv.Key, childPath, "required value is empty")
			}
			continue
		}
		v.walk(mv.Value, f.Rule, childPath)
		mv.Value = verbatim(mv.Value, f.Rule)
	}

	for _, f := range rule.Fields {
		if f.Required && !seen[f.Key] {
			v.add(node, join(path, f.Key), "required key is missing")
		}
	}
}

func (v *validator) walkSeq(node ast.Node, rule *Rule, path string) {
	seq, ok := node.(*ast.SequenceNode)
	if !ok {
		v.add(node, path, "expected a sequence, found %s", describe(node))
		return
	}
	for i, item := range seq.Values {
		itemPath := path + "[" + strconv.Itoa(i) + "]"
		if isNull(item) {
			v.add(item, itemPath, "empty item")
			continue
		}
		v.walk(item, rule.Items, itemPath)
		seq.Values[i] = verbatim(item, rule.Items)
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func tokenOf(node ast.Node) *token.Token {
	if node == nil {
		return nil
	}
	return node.GetToken()
}

func keyString(key ast.MapKeyNode) string {
	if s, ok := key.(*ast.StringNode); ok {
		return s.Value
	}
	if tk := key.GetToken(); tk != nil {
		return tk.Value
	}
	return key.String()
}

// scalarString returns the text of a scalar. Numbers and booleans count
// as strings and keep their source spelling: 0612 stays 0612.
func scalarString(node ast.Node) (string, bool) {
	switch n := node.(type) {
	case *ast.StringNode:
		return n.Value, true
	case *ast.LiteralNode:
		if n.Value == nil {
			return "", true
		}
		return n.Value.Value, true
	}
	if isTypedScalar(node) {
		return node.GetToken().Value, true
	}
	return "", false
}

func isTypedScalar(node ast.Node) bool {
	switch node.(type) {
	case *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode, *ast.InfinityNode, *ast.NanNode:
		return true
	}
	return false
}

// verbatim replaces a number or boolean in a string slot with a string
// node holding its source text, so decoding does not reformat it.
func verbatim(node ast.Node, rule *Rule) ast.Node {
	if rule.Kind != KindStr && rule.Kind != KindDate {
		return node
	}
	if a, ok := node.(*ast.AnchorNode); ok {
		a.Value = verbatim(a.Value, rule)
		return a
	}
	if !isTypedScalar(node) {
		return node
	}
	tk := *node.GetToken()
	tk.Type = token.StringType
	return ast.String(&tk)
}

func isNull(node ast.Node) bool {
	if node == nil {
		return true
	}
	_, ok := node.(*ast.NullNode)
	return ok
}

func describe(node ast.Node) string {
	switch node.(type) {
	case *ast.MappingNode, *ast.MappingValueNode:
		return "a mapping"
	case *ast.SequenceNode:
		return "a sequence"
	case *ast.IntegerNode, *ast.FloatNode, *ast.InfinityNode, *ast.NanNode:
		return "a number"
	case *ast.BoolNode:
		return "a boolean"
	case *ast.NullNode:
		return "null"
	case *ast.StringNode, *ast.LiteralNode:
		return "a string"
	default:
		return node.Type().String()
	}
}
