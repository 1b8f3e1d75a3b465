// Package assets locates résumé templates and the support files shared by
// all of them.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	TemplateLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in templates)
//	    ├── FilesystemLoader  - loads from a templates root on disk
//	    └── Resolver          - combines both with custom-first fallback
//
// LoadDir loads a single template from an explicit directory, bypassing the
// name lookup.
//
// # Directory Structure
//
// A template is a directory holding a descriptor and its source files:
//
//	{templatesRoot}/
//	└── {name}/
//	    ├── template.yaml    # descriptor: entrypoints, partials, extra_files, ...
//	    ├── resume.tex       # entry point rendered for mode "resume"
//	    ├── cover.tex        # entry point rendered for mode "cover"
//	    └── ...              # partials, images, .bst styles, fonts
//
// # Security
//
// Template names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within the
// templates root. Descriptor file entries must be local relative paths.
package assets
