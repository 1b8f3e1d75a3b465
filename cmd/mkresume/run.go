package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	mkresume "github.com/alnah/go-mkresume"
	"github.com/alnah/go-mkresume/internal/config"
	"github.com/alnah/go-mkresume/internal/hints"
	"github.com/alnah/go-mkresume/internal/process"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage        = errors.New("invalid usage")
	ErrWriteSources = errors.New("failed to write generated sources")
)

// commands are the subcommand names; anything else is taken as render input.
var commands = map[string]bool{
	"render": true, "validate": true, "templates": true, "doctor": true,
	"completion": true, "version": true, "help": true,
}

// runMain dispatches args (os.Args layout) and returns the exit code.
func runMain(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}

	cmd := "render"
	if len(rest) > 0 && commands[rest[0]] {
		cmd, rest = rest[0], rest[1:]
	} else if len(rest) > 0 && !looksLikeRenderArg(rest[0]) {
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", rest[0])
		printUsage(env.Stderr)
		return ExitUsage
	}

	switch cmd {
	case "version":
		fmt.Fprintf(env.Stdout, "mkresume %s\n", Version)
		return ExitSuccess
	case "help":
		return runHelp(rest, env)
	case "doctor":
		return runDoctorCmd(ctx, rest, env)
	case "completion":
		return finish(runCompletion(rest, env), false, env)
	case "templates":
		return finish(runTemplates(rest, env), false, env)
	case "validate":
		debug, err := runValidate(rest, env)
		return finish(err, debug, env)
	default:
		debug, err := runRender(ctx, rest, env)
		return finish(err, debug, env)
	}
}

// looksLikeRenderArg reports whether a leading argument belongs to the
// implicit render command: a flag or a document path.
func looksLikeRenderArg(arg string) bool {
	if strings.HasPrefix(arg, "-") {
		return true
	}
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".yaml", ".yml":
		return true
	}
	return strings.ContainsRune(arg, '/') || strings.ContainsRune(arg, filepath.Separator)
}

// finish prints err and maps it to an exit code.
func finish(err error, debug bool, env *Environment) int {
	if err == nil {
		return ExitSuccess
	}
	printError(env.Stderr, err, debug)
	return exitCodeFor(err)
}

// hintedError attaches a hint computed where the context to build it exists.
type hintedError struct {
	err  error
	hint string
}

func (e *hintedError) Error() string { return e.err.Error() }
func (e *hintedError) Unwrap() error { return e.err }

func withHint(err error, hint string) error {
	if err == nil || hint == "" {
		return err
	}
	return &hintedError{err: err, hint: hint}
}

// tools names the binaries a run was configured with, for hints.
type tools struct {
	latex  string
	bibtex string
}

// toolError records which binary a process.ErrNotFound refers to.
func toolError(err error, t tools) error {
	if !errors.Is(err, process.ErrNotFound) {
		return err
	}
	tool := t.latex
	if errors.Is(err, mkresume.ErrBibliography) {
		tool = t.bibtex
	}
	return withHint(err, hints.ForToolNotFound(tool))
}

// hintFor returns the hint for err, or "".
func hintFor(err error, debug bool) string {
	var he *hintedError
	if errors.As(err, &he) {
		return he.hint
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, mkresume.ErrCompile):
		return hints.ForCompile(debug)
	case errors.Is(err, mkresume.ErrBibliography):
		return hints.ForBibliography()
	case errors.Is(err, mkresume.ErrMissingCover):
		return hints.ForMissingCover()
	case errors.Is(err, mkresume.ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, config.ErrConfigNotFound):
		var searched []string
		if dir, derr := os.UserConfigDir(); derr == nil {
			searched = append(searched, filepath.Join(dir, "mkresume", "config.yaml"))
		}
		return hints.ForConfigNotFound(searched)
	}
	return ""
}

// compilerTailLines is how much captured compiler output a failed
// non-debug run shows.
const compilerTailLines = 20

// printError writes err for a human. Without debug it is one message plus
// an optional hint and the end of any captured compiler output; with debug
// every wrapped error is listed.
func printError(w io.Writer, err error, debug bool) {
	fmt.Fprintf(w, "error: %v%s\n", err, hintFor(err, debug))
	if !debug {
		var ce *mkresume.CompileError
		if errors.As(err, &ce) && strings.TrimSpace(ce.Output) != "" {
			fmt.Fprintf(w, "compiler output (last %d lines):\n", compilerTailLines)
			for _, line := range tailLines(ce.Output, compilerTailLines) {
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
		return
	}
	fmt.Fprintln(w, "error chain:")
	printChain(w, err, 1)
}

// tailLines returns the last n non-trailing lines of s.
func tailLines(s string, n int) []string {
	lines := strings.Split(strings.TrimRight(s, "\r\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

func printChain(w io.Writer, err error, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%T: %v\n", indent, err, err)
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		if next := u.Unwrap(); next != nil {
			printChain(w, next, depth+1)
		}
	case interface{ Unwrap() []error }:
		for _, next := range u.Unwrap() {
			printChain(w, next, depth+1)
		}
	}
}
