package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mkresume [command] [flags] [resume.yaml]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render       Render a résumé or cover letter to PDF (default)")
	fmt.Fprintln(w, "  validate     Check a document without rendering it")
	fmt.Fprintln(w, "  templates    List available templates")
	fmt.Fprintln(w, "  doctor       Check the TeX toolchain")
	fmt.Fprintln(w, "  completion   Generate shell completion script")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mkresume help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mkresume render [flags] [resume.yaml]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a YAML document to PDF with a LaTeX template.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  resume.yaml    Document to render (default: resume.yaml)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>        Output PDF (default: <mode>.pdf)")
	fmt.Fprintln(w, "  -m, --mode <mode>          Document mode: resume, cover (default: resume)")
	fmt.Fprintln(w, "      --blocks <list>        Comma-separated section order")
	fmt.Fprintln(w, "      --dry-run <dir>        Write generated sources to dir, skip compilation")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Template:")
	fmt.Fprintln(w, "  -t, --template <name|dir>  Template name or directory (default: classic)")
	fmt.Fprintln(w, "      --templates-dir <dir>  Directory of custom templates")
	fmt.Fprintln(w, "      --fonts-dir <dir>      Directory of font files")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Toolchain:")
	fmt.Fprintln(w, "      --timeout <duration>   Compile timeout, e.g. 90s (default: none)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printValidateUsage prints usage for the validate command.
func printValidateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mkresume validate [flags] [resume.yaml]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check a document against the schema and report lint warnings.")
	fmt.Fprintln(w, "With --mode cover, also require a cover section.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -m, --mode <mode>          Document mode: resume, cover")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printTemplatesUsage prints usage for the templates command.
func printTemplatesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mkresume templates [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List built-in and custom templates with the modes they support.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --templates-dir <dir>  Directory of custom templates")
	fmt.Fprintln(w, "  -c, --config <path>        Config file path")
}

// printCommonUsage prints the flags shared by render and validate.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <path>        Config file path")
	fmt.Fprintln(w, "      --log-level <level>    debug, info, warning, error, critical (default: info)")
	fmt.Fprintln(w, "      --debug                Debug logging, compiler output and full error chain")
	fmt.Fprintln(w, "  -q, --quiet                Only show errors")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MKRESUME_CONFIG and MKRESUME_<KEY> variables override the config file.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "validate":
		printValidateUsage(env.Stdout)
	case "templates":
		printTemplatesUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: mkresume doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check that latexmk, the LaTeX engine and bibtex are installed.")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mkresume version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mkresume help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
