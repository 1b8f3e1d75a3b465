// Package bibtex renders a bibliography for a fixed list of citation keys
// by running a BibTeX engine on a generated .aux file.
package bibtex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/alnah/go-mkresume/internal/fileutil"
	"github.com/alnah/go-mkresume/internal/process"
)

// DefaultCommand is the engine binary used when none is configured.
const DefaultCommand = "bibtex"

// Sentinel errors for bibliography rendering.
var (
	ErrNoKeys            = errors.New("bibliography has no citation keys")
	ErrNoStyle           = errors.New("bibliography style is missing")
	ErrEmptyBibliography = errors.New("bibliography engine produced no entries")
	ErrEngine            = errors.New("bibliography engine failed")
)

// EngineError carries the engine's output when it fails.
type EngineError struct {
	Command string
	Log     string
	Err     error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrEngine, e.Command, e.Err)
}

func (e *EngineError) Unwrap() []error {
	return []error{ErrEngine, e.Err}
}

// Request describes one bibliography.
type Request struct {
	StyleName string   // style name without .bst, e.g. "plain"
	Style     []byte   // .bst contents; nil selects an installed style
	BibFiles  []string // .bib paths
	Keys      []string // citation keys, in order
	Emphasize []string // names wrapped in \textbf{}
}

// Result is the rendered bibliography.
type Result struct {
	Text    string   // contents of the generated .bbl
	Missing []string // keys the engine found no entry for
}

// Renderer runs the engine. The zero value is not usable; call New.
type Renderer struct {
	command string
	runner  process.Runner
	logger  *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCommand sets the engine executable. An empty name keeps DefaultCommand.
func WithCommand(name string) Option {
	return func(r *Renderer) {
		if name != "" {
			r.command = name
		}
	}
}

// WithRunner sets how the engine is started. Tests pass a fake.
func WithRunner(runner process.Runner) Option {
	return func(r *Renderer) {
		if runner != nil {
			r.runner = runner
		}
	}
}

// WithLogger sets the logger for engine runs and warnings. Output is
// discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a Renderer running DefaultCommand through process.ExecRunner.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		command: DefaultCommand,
		runner:  process.ExecRunner{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes the style, copies of the databases and an .aux file into a
// scratch directory, runs the engine there and returns the .bbl text.
func (r *Renderer) Render(ctx context.Context, req Request) (*Result, error) {
	if len(req.Keys) == 0 {
		return nil, ErrNoKeys
	}
	styleName := strings.TrimSuffix(req.StyleName, ".bst")
	if len(req.Style) == 0 && styleName == "" {
		return nil, ErrNoStyle
	}
	if styleName == "" {
		styleName = "style"
	}

	dir, err := os.MkdirTemp("", "mkresume-bib-*")
	if err != nil {
		return nil, fmt.Errorf("creating bibliography directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	// Without contents the style is looked up in the TeX installation.
	if len(req.Style) > 0 {
		if err := os.WriteFile(filepath.Join(dir, styleName+".bst"), req.Style, 0o600); err != nil {
			return nil, fmt.Errorf("writing style: %w", err)
		}
	}

	databases := make([]string, len(req.BibFiles))
	for i, src := range req.BibFiles {
		name := "db" + strconv.Itoa(i)
		if err := fileutil.CopyFile(src, filepath.Join(dir, name+".bib")); err != nil {
			return nil, fmt.Errorf("copying %s: %w", src, err)
		}
		databases[i] = name
	}

	const job = "publications"
	if err := os.WriteFile(filepath.Join(dir, job+".aux"), auxFile(req.Keys, styleName, databases), 0o600); err != nil {
		return nil, fmt.Errorf("writing aux file: %w", err)
	}

	var out bytes.Buffer
	cmd := process.Command{Name: r.command, Args: []string{job}, Dir: dir, Stdout: &out, Stderr: &out}
	r.logger.Debug("running bibliography engine", "command", cmd.String(), "keys", len(req.Keys))
	if err := r.runner.Run(ctx, cmd); err != nil {
		// Exit status 1 means warnings, such as a missing key.
		if process.ExitCode(err) != 1 {
			return nil, &EngineError{Command: cmd.String(), Log: out.String(), Err: err}
		}
		r.logger.Warn("bibliography engine reported warnings", "log", strings.TrimSpace(out.String()))
	}

	bbl, err := os.ReadFile(filepath.Join(dir, job+".bbl"))
	if err != nil {
		return nil, fmt.Errorf("%w: no .bbl output: %w", ErrEmptyBibliography, err)
	}

	cited := citedKeys(bbl)
	if len(cited) == 0 {
		return nil, ErrEmptyBibliography
	}
	res := &Result{Text: Emphasize(string(bbl), req.Emphasize)}
	for _, k := range req.Keys {
		if !cited[k] {
			res.Missing = append(res.Missing, k)
		}
	}
	return res, nil
}

// Emphasize wraps every occurrence of each name in \textbf{}. It is a plain
// substring replacement: a name inside a longer word or inside a macro
// argument is wrapped too.
func Emphasize(text string, names []string) string {
	for _, name := range names {
		if name == "" {
			continue
		}
		text = strings.ReplaceAll(text, name, `\textbf{`+name+`}`)
	}
	return text
}

func auxFile(keys []string, style string, databases []string) []byte {
	var b bytes.Buffer
	b.WriteString("\\relax\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "\\citation{%s}\n", k)
	}
	fmt.Fprintf(&b, "\\bibstyle{%s}\n", style)
	fmt.Fprintf(&b, "\\bibdata{%s}\n", strings.Join(databases, ","))
	return b.Bytes()
}

var bibitemRe = regexp.MustCompile(`\\bibitem(?:\[[^\]]*\])?\{([^}]*)\}`)

func citedKeys(bbl []byte) map[string]bool {
	keys := make(map[string]bool)
	for _, m := range bibitemRe.FindAllSubmatch(bbl, -1) {
		keys[string(m[1])] = true
	}
	return keys
}
