package mkresume

import (
	"io"
	"log/slog"
	"time"

	"github.com/alnah/go-mkresume/internal/latextmpl"
	"github.com/alnah/go-mkresume/internal/process"
)

// Defaults used when no option overrides them.
const (
	DefaultLaTeXCommand  = "latexmk"
	DefaultEngine        = "lualatex"
	DefaultBibtexCommand = "bibtex"
	DefaultMode          = "resume"
	CoverMode            = "cover"
)

// DefaultBlocks is the section order used when RenderOptions.Blocks is nil.
var DefaultBlocks = []string{
	"summary", "experience", "education", "honors", "committees",
	"presentations", "projects", "publications", "skills", "hobbies",
}

// engineFlags maps each supported engine to its latexmk switch.
var engineFlags = map[string]string{
	"lualatex": "-pdflua",
	"xelatex":  "-pdfxe",
	"pdflatex": "-pdf",
}

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds the settings applied by options.
type rendererConfig struct {
	latexCommand  string
	engine        string
	latexArgs     []string
	bibtexCommand string
	timeout       time.Duration // 0 = no limit
	fontsDir      string
	tempDir       string
	stdout        io.Writer
	stderr        io.Writer
	escape        latextmpl.EscapeFunc
	now           func() time.Time
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRunner replaces the subprocess runner, mainly for tests.
func WithRunner(runner process.Runner) Option {
	return func(r *Renderer) {
		if runner != nil {
			r.runner = runner
		}
	}
}

// WithLaTeXCommand sets the compiler driver binary (latexmk by default).
func WithLaTeXCommand(name string) Option {
	return func(r *Renderer) {
		if name != "" {
			r.cfg.latexCommand = name
		}
	}
}

// WithEngine selects lualatex, xelatex or pdflatex. NewRenderer rejects
// other values with ErrInvalidEngine.
func WithEngine(engine string) Option {
	return func(r *Renderer) {
		if engine != "" {
			r.cfg.engine = engine
		}
	}
}

// WithLaTeXArgs adds arguments passed to the driver before the entry point.
func WithLaTeXArgs(args ...string) Option {
	return func(r *Renderer) {
		r.cfg.latexArgs = append(r.cfg.latexArgs, args...)
	}
}

// WithBibtexCommand sets the bibliography engine run for documents with
// publications. An empty name keeps DefaultBibtexCommand.
func WithBibtexCommand(name string) Option {
	return func(r *Renderer) {
		if name != "" {
			r.cfg.bibtexCommand = name
		}
	}
}

// WithTimeout bounds the compiler run. Zero means no limit.
// Panics if d < 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d < 0 {
		panic("mkresume: WithTimeout duration must not be negative")
	}
	return func(r *Renderer) {
		r.cfg.timeout = d
	}
}

// WithFontsDir exposes dir to templates as fontpath. Without it, fontpath
// is the workspace directory.
func WithFontsDir(dir string) Option {
	return func(r *Renderer) {
		r.cfg.fontsDir = dir
	}
}

// WithTempDir sets the parent of workspace directories.
func WithTempDir(dir string) Option {
	return func(r *Renderer) {
		r.cfg.tempDir = dir
	}
}

// WithOutput sets where compiler output is streamed in debug renders.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Renderer) {
		r.cfg.stdout = stdout
		r.cfg.stderr = stderr
	}
}

// WithEscape replaces the escape function applied to every \VAR{} value.
func WithEscape(fn latextmpl.EscapeFunc) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.cfg.escape = fn
		}
	}
}

// WithClock sets the source of the today value.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.cfg.now = now
		}
	}
}
