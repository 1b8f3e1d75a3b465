package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed templates
var templates embed.FS

// EmbeddedLoader loads templates compiled into the binary.
// Implements TemplateLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadTemplate loads a built-in template by name.
func (e *EmbeddedLoader) LoadTemplate(name string) (*Template, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	sub, err := fs.Sub(templates, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return loadTemplate(name, "", sub, "embedded:"+name+"/"+DescriptorFile)
}

// ListTemplates returns the built-in template names.
func (e *EmbeddedLoader) ListTemplates() ([]string, error) {
	entries, err := fs.ReadDir(templates, "templates")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Compile-time interface check.
var _ TemplateLoader = (*EmbeddedLoader)(nil)
