package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-mkresume/internal/process"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake toolchain and environment
// ---------------------------------------------------------------------------

// fixtureDocument is the shared résumé fixture of the root package.
var fixtureDocument = filepath.Join("..", "..", "testdata", "resume.yaml")

// fakeRunner stands in for latexmk, bibtex and the doctor checks.
// latexmk writes log to its stdout, then "succeeds" by writing <entry>.pdf
// into the workspace.
type fakeRunner struct {
	mu    sync.Mutex
	calls []process.Command
	fail  map[string]error // command name -> error returned
	log   string
}

func (f *fakeRunner) Run(_ context.Context, cmd process.Command) error {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	err := f.fail[cmd.Name]
	f.mu.Unlock()
	if cmd.Name == "latexmk" && cmd.Stdout != nil && f.log != "" {
		_, _ = io.WriteString(cmd.Stdout, f.log)
	}
	if err != nil {
		return err
	}

	if len(cmd.Args) == 1 && cmd.Args[0] == "--version" {
		if cmd.Stdout != nil {
			fmt.Fprintf(cmd.Stdout, "%s 1.0 (fake)\nsecond line\n", cmd.Name)
		}
		return nil
	}
	if cmd.Name == "latexmk" {
		entry := cmd.Args[len(cmd.Args)-1]
		pdf := filepath.Join(cmd.Dir, strings.TrimSuffix(entry, ".tex")+".pdf")
		return os.WriteFile(pdf, []byte("%PDF-1.5 fake"), 0o600)
	}
	return nil
}

func (f *fakeRunner) called(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.Name == name {
			return true
		}
	}
	return false
}

// newTestEnv returns an environment writing to buffers, with a fixed clock
// and no process environment.
func newTestEnv(runner process.Runner) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Environment{
		Now:     func() time.Time { return now },
		Stdout:  &stdout,
		Stderr:  &stderr,
		Environ: func() []string { return nil },
		Runner:  runner,
	}, &stdout, &stderr
}

// writeConfig writes a config file and returns its path. Passing it with
// --config keeps tests independent of the user's own configuration.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mkresume.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}
