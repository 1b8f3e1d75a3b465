package mkresume

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"slices"
	"text/template"
	"time"

	"github.com/alnah/go-mkresume/internal/assets"
	"github.com/alnah/go-mkresume/internal/bibtex"
	"github.com/alnah/go-mkresume/internal/fileutil"
	"github.com/alnah/go-mkresume/internal/latextmpl"
	"github.com/alnah/go-mkresume/internal/markdown"
	"github.com/alnah/go-mkresume/internal/process"
)

// Template is a loaded template, as returned by the assets resolver.
type Template = assets.Template

// RenderOptions selects what one Render call produces.
type RenderOptions struct {
	// Mode picks the entry point <mode>.tex. Defaults to "resume".
	Mode string
	// Output is the PDF destination. Defaults to <mode>.pdf.
	Output string
	// Blocks is the ordered list of sections templates render. nil selects
	// DefaultBlocks.
	Blocks []string
	// Context holds extra template values. Document and computed values
	// take precedence over them.
	Context map[string]any
	// Debug streams compiler output instead of capturing it.
	Debug bool
}

// Result describes a finished render.
type Result struct {
	Output      string   // path of the written PDF
	Entrypoints []string // files rendered into the workspace
	Missing     []string // citation keys the bibliography engine did not find
}

// Renderer turns documents into PDFs. Create with NewRenderer. A Renderer
// holds no per-render state and can be reused.
type Renderer struct {
	cfg      rendererConfig
	logger   *slog.Logger
	runner   process.Runner
	markdown *markdown.Converter
	engine   *latextmpl.Engine
	bibtex   *bibtex.Renderer
}

// NewRenderer creates a Renderer. It fails only on an unknown engine.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		cfg: rendererConfig{
			latexCommand:  DefaultLaTeXCommand,
			engine:        DefaultEngine,
			bibtexCommand: DefaultBibtexCommand,
			escape:        latextmpl.Escape,
			now:           time.Now,
		},
		logger:   slog.New(slog.DiscardHandler),
		runner:   process.ExecRunner{},
		markdown: markdown.New(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if _, ok := engineFlags[r.cfg.engine]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEngine, r.cfg.engine)
	}

	r.engine = latextmpl.New(
		latextmpl.WithEscape(r.cfg.escape),
		latextmpl.WithFuncs(template.FuncMap{"markdown": r.markdown.Filter}),
	)
	r.bibtex = bibtex.New(
		bibtex.WithCommand(r.cfg.bibtexCommand),
		bibtex.WithRunner(r.runner),
		bibtex.WithLogger(r.logger),
	)
	return r, nil
}

// Render compiles doc with tmpl and writes the PDF. Nothing is written to
// the output path unless every step succeeds. The workspace is removed on
// every path.
func (r *Renderer) Render(ctx context.Context, doc *Document, tmpl *Template, opts RenderOptions) (result *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal error: %v", rec)
		}
	}()

	mode, err := r.check(doc, tmpl, opts)
	if err != nil {
		return nil, err
	}

	ws, err := newWorkspace(r.cfg.tempDir)
	if err != nil {
		return nil, err
	}
	defer r.removeWorkspace(ws)

	result = &Result{}
	if _, err := r.prepare(ctx, ws, doc, tmpl, mode, opts, result); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf, err := r.compile(ctx, ws, mode+".tex", mode+".pdf", opts.Debug)
	if err != nil {
		return nil, err
	}

	output := opts.Output
	if output == "" {
		output = mode + ".pdf"
	}
	if err := fileutil.CopyFileAtomic(pdf, output); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrWriteOutput, output, err)
	}
	result.Output = output
	r.logger.Info("wrote PDF", "output", output)
	return result, nil
}

// RenderSources runs every step before compilation and returns the
// rendered entry points keyed by their workspace name. The bibliography
// engine still runs when the document has publications.
func (r *Renderer) RenderSources(ctx context.Context, doc *Document, tmpl *Template, opts RenderOptions) (map[string]string, error) {
	mode, err := r.check(doc, tmpl, opts)
	if err != nil {
		return nil, err
	}
	ws, err := newWorkspace(r.cfg.tempDir)
	if err != nil {
		return nil, err
	}
	defer r.removeWorkspace(ws)

	return r.prepare(ctx, ws, doc, tmpl, mode, opts, &Result{})
}

// check validates the request before any work is done and returns the
// effective mode.
func (r *Renderer) check(doc *Document, tmpl *Template, opts RenderOptions) (string, error) {
	if doc == nil || tmpl == nil {
		return "", ErrNilInput
	}
	mode := opts.Mode
	if mode == "" {
		mode = DefaultMode
	}
	if !tmpl.HasMode(mode) {
		return "", fmt.Errorf("%w: template %q supports %v, not %q",
			ErrUnsupportedMode, tmpl.Name, tmpl.Descriptor.Modes, mode)
	}
	if mode == CoverMode && doc.Cover == nil {
		return "", ErrMissingCover
	}
	entry := mode + ".tex"
	if !slices.ContainsFunc(tmpl.Descriptor.Entrypoints, func(e string) bool {
		return assets.OutputName(e) == entry
	}) {
		return "", fmt.Errorf("%w: template %q has no %s entry point",
			ErrUnsupportedMode, tmpl.Name, entry)
	}
	return mode, nil
}

// prepare fills the workspace: bibliography, assets, rendered sources.
func (r *Renderer) prepare(ctx context.Context, ws *workspace, doc *Document, tmpl *Template, mode string, opts RenderOptions, result *Result) (map[string]string, error) {
	var bib latextmpl.Raw
	if doc.Publications != nil {
		text, missing, err := r.bibliography(ctx, doc, tmpl)
		if err != nil {
			return nil, err
		}
		bib = text
		result.Missing = missing
	}

	photo, err := r.copyAssets(ws, doc, tmpl)
	if err != nil {
		return nil, err
	}

	fonts := ws.dir
	if r.cfg.fontsDir != "" {
		fonts = r.cfg.fontsDir
	}
	blocks := opts.Blocks
	if blocks == nil {
		blocks = slices.Clone(DefaultBlocks)
	}
	data := buildContext(doc, blocks, opts.Context, computedValues{
		FontPath:     fontPath(fonts),
		Mode:         mode,
		Template:     tmpl.Name,
		Today:        NewDate(r.cfg.now()),
		Photo:        photo,
		Publications: bib,
	})

	sources, err := r.renderTemplates(tmpl, data)
	if err != nil {
		return nil, err
	}
	for _, entry := range tmpl.Descriptor.Entrypoints {
		name := assets.OutputName(entry)
		if err := ws.Write(name, []byte(sources[name])); err != nil {
			return nil, err
		}
		result.Entrypoints = append(result.Entrypoints, name)
	}
	return sources, nil
}

// bibliography renders the document's publications with the template's
// bibliography style.
func (r *Renderer) bibliography(ctx context.Context, doc *Document, tmpl *Template) (latextmpl.Raw, []string, error) {
	pubs := doc.Publications
	name, style, err := tmpl.BibStyle()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBibliography, err)
	}
	if name == "" {
		return "", nil, fmt.Errorf("%w: template %q declares no bibtex_style", ErrBibliography, tmpl.Name)
	}
	files := make([]string, len(pubs.BibFiles))
	for i, f := range pubs.BibFiles {
		files[i] = doc.Resolve(f)
	}

	res, err := r.bibtex.Render(ctx, bibtex.Request{
		StyleName: name,
		Style:     style,
		BibFiles:  files,
		Keys:      pubs.Keys,
		Emphasize: pubs.BoldNames,
	})
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBibliography, err)
	}
	if len(res.Missing) > 0 {
		r.logger.Warn("citation keys not found in bibliography", "keys", res.Missing)
	}
	return latextmpl.Raw(res.Text), res.Missing, nil
}

// copyAssets copies the photo, the template's extra files and the shared
// support files to the workspace root. It returns the photo's workspace
// name, or "" when the document has none.
func (r *Renderer) copyAssets(ws *workspace, doc *Document, tmpl *Template) (string, error) {
	var photo string
	if doc.Photo != "" {
		src := doc.Resolve(doc.Photo)
		photo = filepath.Base(src)
		if err := ws.CopyIn(src, photo); err != nil {
			return "", err
		}
	}

	if err := copyExtraFiles(ws, tmpl); err != nil {
		return "", err
	}

	for _, name := range assets.SupportFiles() {
		data, err := assets.ReadSupportFile(name)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrCopy, err)
		}
		if err := ws.Write(name, data); err != nil {
			return "", err
		}
	}
	r.logger.Debug("workspace ready", "dir", ws.dir,
		"extra_files", len(tmpl.Descriptor.ExtraFiles), "photo", photo)
	return photo, nil
}

// copyExtraFiles flattens the template's extra files into the workspace
// root. On-disk templates are copied file to file; embedded ones are read
// from the binary.
func copyExtraFiles(ws *workspace, tmpl *Template) error {
	if tmpl.Dir != "" {
		for _, src := range tmpl.ExtraFilePaths() {
			if err := ws.CopyIn(src, filepath.Base(src)); err != nil {
				return err
			}
		}
		return nil
	}
	for _, f := range tmpl.Descriptor.ExtraFiles {
		data, err := tmpl.ReadFile(f)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCopy, err)
		}
		if err := ws.Write(path.Base(filepath.ToSlash(f)), data); err != nil {
			return err
		}
	}
	return nil
}

// renderTemplates parses partials and entry points into one set and
// executes every entry point.
func (r *Renderer) renderTemplates(tmpl *Template, data map[string]any) (map[string]string, error) {
	set := r.engine.NewSet()
	for _, name := range slices.Concat(tmpl.Descriptor.Partials, tmpl.Descriptor.Entrypoints) {
		src, err := tmpl.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRender, err)
		}
		if err := set.Add(name, string(src)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRender, err)
		}
	}

	out := make(map[string]string, len(tmpl.Descriptor.Entrypoints))
	for _, entry := range tmpl.Descriptor.Entrypoints {
		var buf bytes.Buffer
		if err := set.Execute(&buf, entry, data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRender, err)
		}
		out[assets.OutputName(entry)] = buf.String()
		r.logger.Debug("rendered entry point", "entry", entry, "bytes", buf.Len())
	}
	return out, nil
}

func (r *Renderer) removeWorkspace(ws *workspace) {
	if err := ws.Remove(); err != nil {
		r.logger.Warn("failed to remove workspace", "dir", ws.dir, "error", err)
	}
}
