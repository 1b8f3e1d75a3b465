// Package mkresume typesets résumés and cover letters written in YAML into
// PDF through LaTeX templates.
//
// # Quick Start
//
// Load a document, resolve a template and render:
//
//	doc, err := mkresume.Load("resume.yaml")
//	if err != nil {
//	    log.Fatal(err) // *mkresume.ValidationError lists every problem
//	}
//
//	resolver, err := assets.NewResolver("")
//	tmpl, err := resolver.Resolve("classic")
//
//	r, err := mkresume.NewRenderer()
//	result, err := r.Render(ctx, doc, tmpl, mkresume.RenderOptions{
//	    Mode:   "resume",
//	    Output: "resume.pdf",
//	})
//
// # Rendering Pipeline
//
// Render runs these stages in a fresh temporary workspace, removed on
// every exit path:
//
//  1. Precondition checks (mode declared by the template, cover section
//     present for the cover mode)
//  2. Bibliography rendering with bibtex when the document has publications
//  3. Asset copy (photo, template extra files, shared support files)
//  4. Template rendering of every entry point
//  5. Compilation with latexmk (lualatex by default)
//  6. Atomic copy of <mode>.pdf to the output path
//
// # Documents
//
// Documents are validated against a closed schema before decoding. Every
// failure carries its file, line, column and key path, and all of them are
// reported at once:
//
//	resume.yaml:12:5: experience[1].dates.from: invalid date "2020-13" (want YYYY-MM-DD or YYYY-MM)
//
// Dates are written YYYY-MM-DD or YYYY-MM. A range without "to" is ongoing.
// Ranges that end before they start are accepted; Document.Lint reports them.
//
// # Templates
//
// A template is a directory with a template.yaml descriptor:
//
//	classic/
//	├── template.yaml
//	├── resume.tex
//	├── cover.tex
//	└── macros.tex
//
// Template sources use LaTeX-friendly markup: \BLOCK{...} for statements,
// \VAR{...} for escaped values, \#{...} for comments, and lines starting
// with %%% or %%# for line statements and comments. Values are the document
// keys (name, positions, experience, ...) plus blocks, fontpath, mode,
// template, today, and publications holding the rendered bibliography.
//
// # Configuration
//
// Use functional options to customize the renderer:
//
//	r, err := mkresume.NewRenderer(
//	    mkresume.WithEngine("xelatex"),
//	    mkresume.WithTimeout(2*time.Minute),
//	    mkresume.WithLogger(slog.Default()),
//	)
//
// # Error Handling
//
// Errors wrap sentinels usable with errors.Is: ErrValidation,
// ErrUnsupportedMode, ErrMissingCover, ErrBibliography, ErrRender,
// ErrCompile, ErrCopy, ErrWorkspace and ErrWriteOutput. Compiler failures
// are *CompileError values carrying the captured compiler output.
package mkresume
