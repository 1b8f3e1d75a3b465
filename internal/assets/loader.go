package assets

// TemplateLoader defines the contract for locating templates.
type TemplateLoader interface {
	// LoadTemplate loads a template by name.
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplate(name string) (*Template, error)

	// ListTemplates returns the names of the available templates, sorted.
	ListTemplates() ([]string, error)
}
