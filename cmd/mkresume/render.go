package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	mkresume "github.com/alnah/go-mkresume"
	"github.com/alnah/go-mkresume/internal/assets"
	"github.com/alnah/go-mkresume/internal/config"
	"github.com/alnah/go-mkresume/internal/fileutil"
	"github.com/alnah/go-mkresume/internal/hints"
	"github.com/alnah/go-mkresume/internal/logger"
)

// defaultDocument is rendered when no path is given.
const defaultDocument = "resume.yaml"

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// runRender loads the document and template, then compiles the PDF or,
// with --dry-run, writes the generated sources. debug reports whether the
// run had debug verbosity, so the caller prints errors accordingly.
func runRender(ctx context.Context, args []string, env *Environment) (debug bool, err error) {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	debug = flags.common.debug
	docPath, err := documentPath(positional)
	if err != nil {
		return debug, err
	}

	cfg, err := loadConfig(flags.common.config)
	if err != nil {
		return debug, err
	}
	mergeRenderFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return debug, err
	}
	debug = isDebug(flags.common, cfg)
	return debug, render(ctx, flags, cfg, docPath, debug, env)
}

func render(ctx context.Context, flags *renderFlags, cfg *config.Config, docPath string, debug bool, env *Environment) error {
	log := newLogger(cfg.LogLevel, debug, flags.common.quiet, env.Stderr)
	warnUnknownEnvVars(log, env.environ())

	doc, err := loadDocument(docPath, log)
	if err != nil {
		return err
	}
	tmpl, err := resolveTemplate(cfg)
	if err != nil {
		return err
	}

	r, err := mkresume.NewRenderer(rendererOptions(cfg, debug, log, env)...)
	if err != nil {
		return err
	}
	opts := mkresume.RenderOptions{
		Mode:   cfg.Mode,
		Output: cfg.Output,
		Blocks: cfg.Blocks,
		Debug:  debug,
	}
	used := tools{latex: cfg.LaTeX.Command, bibtex: cfg.Bibtex.Command}

	if flags.dryRun != "" {
		sources, err := r.RenderSources(ctx, doc, tmpl, opts)
		if err != nil {
			return toolError(modeError(err, tmpl), used)
		}
		written, err := writeSources(flags.dryRun, sources)
		if err != nil {
			return err
		}
		if !flags.common.quiet {
			for _, p := range written {
				fmt.Fprintln(env.Stdout, p)
			}
		}
		return nil
	}

	if cfg.Output != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Output), dirPermissions); err != nil {
			return fmt.Errorf("%w: %w", mkresume.ErrWriteOutput, err)
		}
	}
	start := env.Now()
	result, err := r.Render(ctx, doc, tmpl, opts)
	if err != nil {
		return toolError(modeError(err, tmpl), used)
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "%s -> %s (%s)\n", docPath, result.Output, env.Now().Sub(start).Round(time.Millisecond))
	}
	return nil
}

// runValidate parses and lints a document without rendering it. A mode
// flag additionally checks that the document carries what the mode needs.
// debug has the same meaning as for runRender.
func runValidate(args []string, env *Environment) (debug bool, err error) {
	flags, positional, err := parseValidateFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	debug = flags.common.debug
	docPath, err := documentPath(positional)
	if err != nil {
		return debug, err
	}

	cfg, err := loadConfig(flags.common.config)
	if err != nil {
		return debug, err
	}
	if flags.mode != "" {
		cfg.Mode = flags.mode
	}
	if flags.common.logLevel != "" {
		cfg.LogLevel = flags.common.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return debug, err
	}
	debug = isDebug(flags.common, cfg)
	return debug, validate(cfg, flags.common.quiet, docPath, debug, env)
}

func validate(cfg *config.Config, quiet bool, docPath string, debug bool, env *Environment) error {
	log := newLogger(cfg.LogLevel, debug, quiet, env.Stderr)
	warnUnknownEnvVars(log, env.environ())

	doc, err := loadDocument(docPath, log)
	if err != nil {
		return err
	}
	if cfg.Mode == mkresume.CoverMode && doc.Cover == nil {
		return fmt.Errorf("%s: %w", docPath, mkresume.ErrMissingCover)
	}
	if !quiet {
		fmt.Fprintf(env.Stdout, "%s: ok\n", docPath)
	}
	return nil
}

// runTemplates lists the templates available by name.
func runTemplates(args []string, env *Environment) error {
	fs := flag.NewFlagSet("templates", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	var dir, configPath string
	fs.StringVar(&dir, "templates-dir", "", "directory of custom templates")
	fs.StringVarP(&configPath, "config", "c", "", "config file path")
	fs.Usage = func() { printTemplatesUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if dir != "" {
		cfg.TemplatesDir = dir
	}
	resolver, err := assets.NewResolver(cfg.TemplatesDir)
	if err != nil {
		return err
	}
	names, err := resolver.ListTemplates()
	if err != nil {
		return err
	}
	for _, name := range names {
		tmpl, err := resolver.LoadTemplate(name)
		if err != nil {
			fmt.Fprintf(env.Stdout, "%-12s (invalid: %v)\n", name, err)
			continue
		}
		fmt.Fprintf(env.Stdout, "%-12s %s [%s]\n", name, tmpl.Descriptor.Description, strings.Join(tmpl.Descriptor.Modes, ", "))
	}
	return nil
}

// documentPath returns the single positional argument or the default.
func documentPath(positional []string) (string, error) {
	switch len(positional) {
	case 0:
		return defaultDocument, nil
	case 1:
		return positional[0], nil
	default:
		return "", fmt.Errorf("%w: expected one document, got %d", ErrUsage, len(positional))
	}
}

// loadConfig finds and loads the configuration file, if any.
func loadConfig(explicit string) (*config.Config, error) {
	path, err := config.FindFile(explicit)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeRenderFlags applies explicitly set flags over cfg (CLI wins).
func mergeRenderFlags(f *renderFlags, cfg *config.Config) {
	if f.templates.template != "" {
		cfg.Template = f.templates.template
	}
	if f.templates.templatesDir != "" {
		cfg.TemplatesDir = f.templates.templatesDir
	}
	if f.mode != "" {
		cfg.Mode = f.mode
	}
	if f.output != "" {
		cfg.Output = f.output
	}
	if f.blocks != nil {
		cfg.Blocks = slices.Clone(f.blocks)
	}
	if f.fontsDir != "" {
		cfg.FontsDir = f.fontsDir
	}
	if f.timeout > 0 {
		cfg.LaTeX.Timeout = f.timeout
	}
	if f.common.logLevel != "" {
		cfg.LogLevel = f.common.logLevel
	}
}

// isDebug reports whether the run has debug verbosity: --debug, or a debug
// log level from a flag, the config file or the environment.
func isDebug(f commonFlags, cfg *config.Config) bool {
	if f.debug {
		return true
	}
	lvl, err := logger.ParseLevel(cfg.LogLevel)
	return err == nil && lvl <= slog.LevelDebug
}

// newLogger builds the CLI logger. Debug verbosity wins over --quiet.
func newLogger(level string, debug, quiet bool, w io.Writer) *slog.Logger {
	lvl, err := logger.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	switch {
	case debug:
		lvl = slog.LevelDebug
	case quiet:
		lvl = slog.LevelError
	}
	return logger.New(w, lvl)
}

// warnUnknownEnvVars logs MKRESUME_* variables that are not recognized.
func warnUnknownEnvVars(log *slog.Logger, environ []string) {
	for _, name := range config.UnknownEnvVars(environ) {
		log.Warn("unknown environment variable ignored", "name", name)
	}
}

// loadDocument parses the document and logs its lint warnings.
func loadDocument(path string, log *slog.Logger) (*mkresume.Document, error) {
	doc, err := mkresume.Load(path)
	if err != nil {
		return nil, err
	}
	for _, w := range doc.Lint() {
		log.Warn(w.Message, "file", w.File, "path", w.Path)
	}
	return doc, nil
}

// resolveTemplate loads the configured template by name or directory.
func resolveTemplate(cfg *config.Config) (*mkresume.Template, error) {
	resolver, err := assets.NewResolver(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}
	tmpl, err := resolver.Resolve(cfg.Template)
	if errors.Is(err, assets.ErrTemplateNotFound) {
		available, _ := resolver.ListTemplates()
		return nil, withHint(err, hints.ForTemplateNotFound(available))
	}
	return tmpl, err
}

// modeError attaches the template's modes to a mode error.
func modeError(err error, tmpl *mkresume.Template) error {
	if errors.Is(err, mkresume.ErrUnsupportedMode) {
		return withHint(err, hints.ForUnsupportedMode(tmpl.Descriptor.Modes))
	}
	return err
}

// rendererOptions translates the configuration into renderer options.
func rendererOptions(cfg *config.Config, debug bool, log *slog.Logger, env *Environment) []mkresume.Option {
	opts := []mkresume.Option{
		mkresume.WithLogger(log),
		mkresume.WithRunner(env.runner()),
		mkresume.WithLaTeXCommand(cfg.LaTeX.Command),
		mkresume.WithEngine(cfg.LaTeX.Engine),
		mkresume.WithLaTeXArgs(cfg.LaTeX.Args...),
		mkresume.WithBibtexCommand(cfg.Bibtex.Command),
		mkresume.WithTimeout(cfg.LaTeX.Timeout),
		mkresume.WithFontsDir(cfg.FontsDir),
		mkresume.WithClock(env.Now),
	}
	if debug {
		opts = append(opts, mkresume.WithOutput(env.Stderr, env.Stderr))
	}
	return opts
}

// writeSources writes rendered entry points into dir and returns their paths.
func writeSources(dir string, sources map[string]string) ([]string, error) {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteSources, err)
	}
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	slices.Sort(names)

	written := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), dirPermissions); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWriteSources, err)
		}
		if err := fileutil.WriteFileAtomic(p, []byte(sources[name]), filePermissions); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWriteSources, err)
		}
		written = append(written, p)
	}
	return written, nil
}
