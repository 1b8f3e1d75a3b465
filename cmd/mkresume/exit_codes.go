package main

import (
	"errors"
	"os"

	mkresume "github.com/alnah/go-mkresume"
	"github.com/alnah/go-mkresume/internal/assets"
	"github.com/alnah/go-mkresume/internal/config"
	"github.com/alnah/go-mkresume/internal/process"
)

// Exit codes for mkresume CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // Successful render
	ExitGeneral   = 1 // General/unexpected error
	ExitUsage     = 2 // Invalid flags, config, document, mode or template
	ExitIO        = 3 // File not found, permission denied, workspace errors
	ExitToolchain = 4 // latexmk, bibtex or a TeX binary failed or is missing
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Toolchain errors (exit 4)
	if errors.Is(err, mkresume.ErrCompile) ||
		errors.Is(err, mkresume.ErrBibliography) ||
		errors.Is(err, process.ErrNotFound) {
		return ExitToolchain
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, mkresume.ErrValidation) ||
		errors.Is(err, mkresume.ErrUnsupportedMode) ||
		errors.Is(err, mkresume.ErrMissingCover) ||
		errors.Is(err, mkresume.ErrInvalidEngine) ||
		errors.Is(err, assets.ErrTemplateNotFound) ||
		errors.Is(err, assets.ErrInvalidDescriptor) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, mkresume.ErrReadDocument) ||
		errors.Is(err, mkresume.ErrCopy) ||
		errors.Is(err, mkresume.ErrWorkspace) ||
		errors.Is(err, mkresume.ErrWriteOutput) ||
		errors.Is(err, ErrWriteSources) {
		return ExitIO
	}

	return ExitGeneral
}
