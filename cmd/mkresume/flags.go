package main

import (
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config   string
	logLevel string
	debug    bool
	quiet    bool
}

// templateFlags selects the template and where custom templates live.
type templateFlags struct {
	template     string // name or directory path
	templatesDir string
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common    commonFlags
	templates templateFlags
	mode      string
	output    string
	blocks    []string
	fontsDir  string
	dryRun    string
	timeout   time.Duration
}

// validateFlags holds flags for the validate command.
type validateFlags struct {
	common commonFlags
	mode   string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warning, error, critical")
	fs.BoolVar(&f.debug, "debug", false, "debug logging, compiler output and full error chain")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
}

// addTemplateFlags adds template selection flags to a FlagSet.
func addTemplateFlags(fs *flag.FlagSet, f *templateFlags) {
	fs.StringVarP(&f.template, "template", "t", "", "template name or directory path (default \"classic\")")
	fs.StringVar(&f.templatesDir, "templates-dir", "", "directory of custom templates")
}

// addModeFlag adds the mode flag to a FlagSet.
func addModeFlag(fs *flag.FlagSet, mode *string) {
	fs.StringVarP(mode, "mode", "m", "", "document mode: resume, cover (default \"resume\")")
}

// newRenderFlagSet registers every render flag on a new FlagSet.
// Shared by parsing and completion so both see the same flags.
func newRenderFlagSet(f *renderFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)

	fs.StringVarP(&f.output, "output", "o", "", "output PDF path (default \"<mode>.pdf\")")
	fs.StringSliceVar(&f.blocks, "blocks", nil, "comma-separated section order")
	fs.StringVar(&f.fontsDir, "fonts-dir", "", "directory of font files")
	fs.StringVar(&f.dryRun, "dry-run", "", "write generated sources to this directory without compiling")
	fs.DurationVar(&f.timeout, "timeout", 0, "compile timeout (e.g. 90s, 2m; 0 = none)")

	addModeFlag(fs, &f.mode)
	addTemplateFlags(fs, &f.templates)
	addCommonFlags(fs, &f.common)
	return fs
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, w io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newRenderFlagSet(f)
	fs.SetOutput(w)
	fs.Usage = func() { printRenderUsage(w) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// newValidateFlagSet registers every validate flag on a new FlagSet.
func newValidateFlagSet(f *validateFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	addModeFlag(fs, &f.mode)
	addCommonFlags(fs, &f.common)
	return fs
}

// parseValidateFlags parses validate command flags and returns positional args.
func parseValidateFlags(args []string, w io.Writer) (*validateFlags, []string, error) {
	f := &validateFlags{}
	fs := newValidateFlagSet(f)
	fs.SetOutput(w)
	fs.Usage = func() { printValidateUsage(w) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
