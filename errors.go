package mkresume

import (
	"errors"
	"fmt"

	"github.com/alnah/go-mkresume/internal/schema"
)

// Sentinel errors for library operations.
var (
	// ErrValidation matches every document or descriptor validation failure.
	// The concrete error is a *ValidationError listing each problem.
	ErrValidation = schema.ErrInvalid

	ErrNilInput        = errors.New("document and template are required")
	ErrReadDocument    = errors.New("failed to read document")
	ErrUnsupportedMode = errors.New("unsupported mode")
	ErrMissingCover    = errors.New("cover mode requires a cover section")
	ErrInvalidEngine   = errors.New("invalid LaTeX engine")

	// Rendering errors.
	ErrBibliography = errors.New("bibliography rendering failed")
	ErrRender       = errors.New("template rendering failed")
	ErrCompile      = errors.New("compilation failed")

	// I/O errors.
	ErrWorkspace   = errors.New("workspace error")
	ErrCopy        = errors.New("failed to copy file into workspace")
	ErrWriteOutput = errors.New("failed to write output")
)

// ValidationError lists the problems found in a document, each with its
// file, line and key path.
type ValidationError = schema.ValidationError

// FieldError is one entry of a ValidationError.
type FieldError = schema.FieldError

// CompileError reports a failed compiler run. Output holds the compiler's
// combined output when it was captured (non-debug runs).
type CompileError struct {
	Entry  string // top-level file passed to the compiler
	Output string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCompile, e.Entry, e.Err)
}

func (e *CompileError) Unwrap() []error {
	return []error{ErrCompile, e.Err}
}
