package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alnah/go-mkresume/internal/schema"
	"github.com/alnah/go-mkresume/internal/yamlutil"
)

// DescriptorFile is the descriptor's file name inside a template directory.
const DescriptorFile = "template.yaml"

// DefaultTemplateName is the name of the built-in template.
const DefaultTemplateName = "classic"

// DefaultModes applies when a descriptor lists no modes.
var DefaultModes = []string{"resume"}

// Descriptor is the parsed template.yaml.
type Descriptor struct {
	Description string   `yaml:"description"`
	Entrypoints []string `yaml:"entrypoints"`
	Partials    []string `yaml:"partials"`
	ExtraFiles  []string `yaml:"extra_files"`
	// BibtexStyle is either a .bst file in the template directory or the
	// name of a style installed with the TeX distribution (e.g. "plain").
	BibtexStyle string   `yaml:"bibtex_style"`
	Modes       []string `yaml:"modes"`
}

var descriptorRule = schema.Map(
	schema.Optional("description", schema.Str()),
	schema.Required("entrypoints", schema.Seq(schema.Str())),
	schema.Optional("partials", schema.Seq(schema.Str())),
	schema.Optional("extra_files", schema.Seq(schema.Str())),
	schema.Optional("bibtex_style", schema.Str()),
	schema.Optional("modes", schema.Seq(schema.Str())),
)

// OutputName maps an entry point to the file written into the workspace:
// a trailing .tmpl is dropped, other names are kept.
func OutputName(entry string) string {
	return strings.TrimSuffix(entry, ".tmpl")
}

// Template is a loaded template. Files are read through ReadFile so that
// embedded and on-disk templates behave the same.
type Template struct {
	Name       string
	Dir        string // absolute directory; empty for embedded templates
	Descriptor Descriptor

	fsys fs.FS
}

// ReadFile reads a file relative to the template directory.
func (t *Template) ReadFile(name string) ([]byte, error) {
	name = filepath.ToSlash(name)
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: %q", ErrPathTraversal, name)
	}
	data, err := fs.ReadFile(t.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", ErrAssetRead, t.Name, name, err)
	}
	return data, nil
}

// Path returns the absolute path of a template file, or "" for embedded
// templates.
func (t *Template) Path(name string) string {
	if t.Dir == "" {
		return ""
	}
	return filepath.Join(t.Dir, filepath.FromSlash(name))
}

// ExtraFilePaths returns absolute paths of the extra files of an on-disk
// template. Existence is not checked.
func (t *Template) ExtraFilePaths() []string {
	if t.Dir == "" {
		return nil
	}
	out := make([]string, len(t.Descriptor.ExtraFiles))
	for i, f := range t.Descriptor.ExtraFiles {
		out[i] = t.Path(f)
	}
	return out
}

// HasMode reports whether the template declares mode.
func (t *Template) HasMode(mode string) bool {
	return slices.Contains(t.Descriptor.Modes, mode)
}

// BibStyle returns the bibliography style name and, when the style is a
// .bst file shipped with the template, its contents. An empty name means
// the template declares no style.
func (t *Template) BibStyle() (name string, content []byte, err error) {
	style := t.Descriptor.BibtexStyle
	if style == "" {
		return "", nil, nil
	}
	if !strings.HasSuffix(style, ".bst") {
		return style, nil, nil
	}
	content, err = t.ReadFile(style)
	if err != nil {
		return "", nil, err
	}
	return strings.TrimSuffix(path.Base(filepath.ToSlash(style)), ".bst"), content, nil
}

// loadTemplate reads and validates the descriptor found at the root of fsys.
// label identifies the descriptor in error positions.
func loadTemplate(name, dir string, fsys fs.FS, label string) (*Template, error) {
	data, err := fs.ReadFile(fsys, DescriptorFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
		}
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}

	desc, err := parseDescriptor(label, data)
	if err != nil {
		return nil, err
	}
	return &Template{Name: name, Dir: dir, Descriptor: desc, fsys: fsys}, nil
}

func parseDescriptor(label string, data []byte) (Descriptor, error) {
	var desc Descriptor
	node, err := schema.Parse(label, data, descriptorRule)
	if err != nil {
		return desc, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}
	if err := yamlutil.Decode(node, &desc); err != nil {
		return desc, fmt.Errorf("%w: %s: %w", ErrInvalidDescriptor, label, err)
	}

	if len(desc.Entrypoints) == 0 {
		return desc, fmt.Errorf("%w: %s: entrypoints: at least one entry point is required", ErrInvalidDescriptor, label)
	}
	if len(desc.Modes) == 0 {
		desc.Modes = slices.Clone(DefaultModes)
	}

	lists := map[string][]string{
		"entrypoints": desc.Entrypoints,
		"partials":    desc.Partials,
		"extra_files": desc.ExtraFiles,
	}
	for _, key := range []string{"entrypoints", "partials", "extra_files"} {
		for i, f := range lists[key] {
			if !isLocalName(f) {
				return desc, fmt.Errorf("%w: %s: %s[%d]: %q must be a relative path inside the template", ErrInvalidDescriptor, label, key, i, f)
			}
		}
	}
	if desc.BibtexStyle != "" && !isLocalName(desc.BibtexStyle) {
		return desc, fmt.Errorf("%w: %s: bibtex_style: %q must be a relative path inside the template", ErrInvalidDescriptor, label, desc.BibtexStyle)
	}
	for i, m := range desc.Modes {
		if err := ValidateAssetName(m); err != nil {
			return desc, fmt.Errorf("%w: %s: modes[%d]: %w", ErrInvalidDescriptor, label, i, err)
		}
	}
	return desc, nil
}

func isLocalName(name string) bool {
	return name != "" && filepath.IsLocal(name) && fs.ValidPath(filepath.ToSlash(name))
}
