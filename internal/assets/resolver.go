package assets

import (
	"errors"
	"slices"

	"github.com/alnah/go-mkresume/internal/fileutil"
)

// Resolver combines custom and embedded loaders with fallback logic.
// When a custom loader is configured, it tries custom first, then falls back
// to embedded if the template is not found in the custom location.
type Resolver struct {
	custom   TemplateLoader // nil if no custom path configured
	embedded TemplateLoader
}

// NewResolver creates a Resolver.
// If customBasePath is empty, only embedded templates are used.
// Returns error if customBasePath is set but invalid.
func NewResolver(customBasePath string) (*Resolver, error) {
	resolver := &Resolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadTemplate loads a template, trying the custom loader first if available.
func (r *Resolver) LoadTemplate(name string) (*Template, error) {
	if r.custom == nil {
		return r.embedded.LoadTemplate(name)
	}

	tmpl, err := r.custom.LoadTemplate(name)
	if err == nil {
		return tmpl, nil
	}

	// Only fall back for "not found" errors, not validation or I/O errors
	if !errors.Is(err, ErrTemplateNotFound) {
		return nil, err
	}

	return r.embedded.LoadTemplate(name)
}

// ListTemplates returns the union of custom and embedded template names.
func (r *Resolver) ListTemplates() ([]string, error) {
	names, err := r.embedded.ListTemplates()
	if err != nil {
		return nil, err
	}
	if r.custom != nil {
		custom, err := r.custom.ListTemplates()
		if err != nil {
			return nil, err
		}
		names = append(names, custom...)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// Resolve accepts either a template name or a directory path. Anything that
// looks like a path is loaded with LoadDir.
func (r *Resolver) Resolve(nameOrDir string) (*Template, error) {
	if fileutil.IsFilePath(nameOrDir) {
		return LoadDir(nameOrDir)
	}
	return r.LoadTemplate(nameOrDir)
}

// HasCustomLoader returns true if a custom template loader is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ TemplateLoader = (*Resolver)(nil)
