// Package yamlutil wraps YAML parsing to isolate the external dependency.
// Documents are parsed to an AST first so that validation can report
// line and column positions, then decoded into typed values.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
	ErrMultiDocument  = errors.New("yamlutil: multiple documents in one file")
)

// SyntaxError is a parser failure with the position reported by the parser.
// Line and Column are zero when the parser did not attach a token.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("yamlutil: line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return "yamlutil: " + e.Message
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func validateInput(data []byte) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	return nil
}

// Parse parses a single YAML document and returns its body node.
// An empty document yields a nil node and no error.
func Parse(data []byte) (ast.Node, error) {
	if err := validateInput(data); err != nil {
		return nil, err
	}
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, newSyntaxError(err)
	}
	switch len(file.Docs) {
	case 0:
		return nil, nil
	case 1:
		return file.Docs[0].Body, nil
	default:
		return nil, ErrMultiDocument
	}
}

// Decode converts a parsed node into v.
func Decode(node ast.Node, v any) error {
	if v == nil {
		return ErrNilDestination
	}
	if err := yaml.NodeToValue(node, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// newSyntaxError extracts the position and short message from a parser error.
func newSyntaxError(err error) *SyntaxError {
	se := &SyntaxError{Message: err.Error(), Err: err}

	var tokErr interface{ GetToken() *token.Token }
	if errors.As(err, &tokErr) {
		if tk := tokErr.GetToken(); tk != nil && tk.Position != nil {
			se.Line = tk.Position.Line
			se.Column = tk.Position.Column
		}
	}
	var msgErr interface{ GetMessage() string }
	if errors.As(err, &msgErr) {
		if msg := msgErr.GetMessage(); msg != "" {
			se.Message = msg
		}
	}
	return se
}
