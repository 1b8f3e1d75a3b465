package mkresume

import (
	"errors"

	"github.com/alnah/go-mkresume/internal/assets"
)

// DefaultTemplate is the name of the built-in template.
const DefaultTemplate = assets.DefaultTemplateName

// Template errors.
var (
	ErrTemplateNotFound    = errors.New("template not found")
	ErrInvalidTemplate     = errors.New("invalid template")
	ErrInvalidTemplatePath = errors.New("invalid template path")
)

// TemplateLoader finds templates by name or directory.
//
// NewTemplateLoader returns the built-in implementation: a custom templates
// directory (when given) takes precedence, with fallback to the embedded
// templates.
type TemplateLoader interface {
	// Load accepts a template name or a path to a template directory.
	// Returns ErrTemplateNotFound if no template matches.
	Load(nameOrDir string) (*Template, error)

	// List returns the names of every loadable template, sorted.
	List() ([]string, error)
}

// NewTemplateLoader creates a TemplateLoader. An empty templatesDir uses
// only the embedded templates. The directory should contain one
// subdirectory per template, each with a template.yaml descriptor.
//
// Returns ErrInvalidTemplatePath if templatesDir is set but is not a
// readable directory.
func NewTemplateLoader(templatesDir string) (TemplateLoader, error) {
	resolver, err := assets.NewResolver(templatesDir)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &templateLoader{resolver: resolver}, nil
}

type templateLoader struct {
	resolver *assets.Resolver
}

func (l *templateLoader) Load(nameOrDir string) (*Template, error) {
	tmpl, err := l.resolver.Resolve(nameOrDir)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return tmpl, nil
}

func (l *templateLoader) List() ([]string, error) {
	names, err := l.resolver.ListTemplates()
	if err != nil {
		return nil, convertAssetError(err)
	}
	return names, nil
}

// convertAssetError maps internal asset errors to public errors.
// Descriptor validation errors keep matching ErrValidation as well.
func convertAssetError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, assets.ErrTemplateNotFound), errors.Is(err, assets.ErrInvalidAssetName):
		return &assetError{sentinel: ErrTemplateNotFound, original: err}
	case errors.Is(err, assets.ErrInvalidBasePath), errors.Is(err, assets.ErrPathTraversal):
		return &assetError{sentinel: ErrInvalidTemplatePath, original: err}
	case errors.Is(err, assets.ErrInvalidDescriptor):
		return &assetError{sentinel: ErrInvalidTemplate, original: err, validation: errors.Is(err, ErrValidation)}
	default:
		return err
	}
}

// assetError keeps the internal message while matching a public sentinel.
type assetError struct {
	sentinel   error
	original   error
	validation bool
}

func (e *assetError) Error() string {
	return e.original.Error()
}

func (e *assetError) Unwrap() []error {
	if e.validation {
		return []error{e.sentinel, ErrValidation}
	}
	return []error{e.sentinel}
}
