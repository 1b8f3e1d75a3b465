package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mkresume/internal/logger"
)

// Shell names a shell completion scripts can be generated for.
type Shell string

const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

var shells = []Shell{ShellBash, ShellZsh, ShellFish}

// ErrUnsupportedShell is returned by GenerateCompletion for other shells.
var ErrUnsupportedShell = errors.New("unsupported shell")

// valueKind says what a flag's value completes to.
type valueKind int

const (
	valueFree   valueKind = iota // any text, no suggestions
	valueNone                    // boolean, takes no value
	valueChoice                  // one of Choices
	valueFile                    // file with one of Exts
	valueDir                     // directory
)

// flagDef is a flag as the completion scripts see it.
type flagDef struct {
	Name    string
	Short   string
	Usage   string
	Kind    valueKind
	Choices []string
	Exts    []string
}

// commandDef is a subcommand with its flags and positional arguments.
// Positionals are either documents (DocExts) or a fixed list (Args).
type commandDef struct {
	Name    string
	Usage   string
	Flags   []flagDef
	DocExts []string
	Args    []string
}

var yamlExts = []string{"yaml", "yml"}

// describeFlag derives the completion of a registered flag. Names,
// shorthands and usage strings come from the FlagSet itself.
func describeFlag(f *flag.Flag) flagDef {
	d := flagDef{Name: f.Name, Short: f.Shorthand, Usage: f.Usage}
	switch {
	case f.Name == "mode":
		d.Kind, d.Choices = valueChoice, []string{"resume", "cover"}
	case f.Name == "log-level":
		d.Kind, d.Choices = valueChoice, logger.LevelNames
	case f.Name == "config":
		d.Kind, d.Exts = valueFile, yamlExts
	case f.Name == "output":
		d.Kind, d.Exts = valueFile, []string{"pdf"}
	case f.Name == "template", f.Name == "dry-run", strings.HasSuffix(f.Name, "-dir"):
		d.Kind = valueDir
	case f.Value.Type() == "bool":
		d.Kind = valueNone
	}
	return d
}

func flagDefs(fs *flag.FlagSet) []flagDef {
	var defs []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		defs = append(defs, describeFlag(f))
	})
	return defs
}

// getCommands lists every subcommand in dispatch order.
func getCommands() []commandDef {
	templatesFlags := flag.NewFlagSet("templates", flag.ContinueOnError)
	templatesFlags.String("templates-dir", "", "directory of custom templates")
	templatesFlags.StringP("config", "c", "", "config file path")

	doctorFlags := flag.NewFlagSet("doctor", flag.ContinueOnError)
	doctorFlags.Bool("json", false, "output JSON")

	shellNames := make([]string, len(shells))
	for i, s := range shells {
		shellNames[i] = string(s)
	}

	return []commandDef{
		{
			Name:    "render",
			Usage:   "Render a résumé or cover letter to PDF",
			Flags:   flagDefs(newRenderFlagSet(&renderFlags{})),
			DocExts: yamlExts,
		},
		{
			Name:    "validate",
			Usage:   "Check a document without rendering it",
			Flags:   flagDefs(newValidateFlagSet(&validateFlags{})),
			DocExts: yamlExts,
		},
		{Name: "templates", Usage: "List available templates", Flags: flagDefs(templatesFlags)},
		{Name: "doctor", Usage: "Check the TeX toolchain", Flags: flagDefs(doctorFlags)},
		{Name: "completion", Usage: "Generate shell completion script", Args: shellNames},
		{Name: "version", Usage: "Show version information"},
		{Name: "help", Usage: "Show help for a command"},
	}
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var script string
	switch shell {
	case ShellBash:
		script = bashScript(getCommands())
	case ShellZsh:
		script = zshScript(getCommands())
	case ShellFish:
		script = fishScript(getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, script)
	return err
}

func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

func printCompletionUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: mkresume completion <shell>

Print a completion script for bash, zsh or fish.

Setup:
  bash   eval "$(mkresume completion bash)"         in ~/.bashrc
  zsh    eval "$(mkresume completion zsh)"          in ~/.zshrc, before compinit
  fish   mkresume completion fish > ~/.config/fish/completions/mkresume.fish
`)
}
