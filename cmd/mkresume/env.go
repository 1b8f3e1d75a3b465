package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/go-mkresume/internal/process"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, the process environment and the external command runner.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Environ func() []string
	Runner  process.Runner // nil runs real binaries
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Environ: os.Environ,
		Runner:  process.ExecRunner{},
	}
}

// runner returns the configured runner, defaulting to real processes.
func (e *Environment) runner() process.Runner {
	if e.Runner == nil {
		return process.ExecRunner{}
	}
	return e.Runner
}

// environ returns the process environment, or nothing when unset.
func (e *Environment) environ() []string {
	if e.Environ == nil {
		return nil
	}
	return e.Environ()
}
