package mkresume

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/alnah/go-mkresume/internal/fileutil"
	"github.com/alnah/go-mkresume/internal/process"
)

// compileArgs returns the driver arguments for entry.
func (r *Renderer) compileArgs(entry string) []string {
	args := []string{engineFlags[r.cfg.engine], "-interaction=nonstopmode"}
	args = append(args, r.cfg.latexArgs...)
	return append(args, entry)
}

// compile runs the driver on entry inside ws and returns the PDF path.
// Debug runs stream the compiler output; other runs capture it and attach
// it to the CompileError on failure.
func (r *Renderer) compile(ctx context.Context, ws *workspace, entry, pdf string, debug bool) (string, error) {
	if r.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.timeout)
		defer cancel()
	}

	var captured bytes.Buffer
	cmd := process.Command{
		Name: r.cfg.latexCommand,
		Args: r.compileArgs(entry),
		Dir:  ws.dir,
	}
	if debug {
		cmd.Stdout = orDiscard(r.cfg.stdout)
		cmd.Stderr = orDiscard(r.cfg.stderr)
	} else {
		cmd.Stdout = &captured
		cmd.Stderr = &captured
	}

	r.logger.Info("compiling", "command", cmd.String())
	if err := r.runner.Run(ctx, cmd); err != nil {
		return "", &CompileError{Entry: entry, Output: captured.String(), Err: err}
	}

	out := ws.Path(pdf)
	if !fileutil.FileExists(out) {
		return "", &CompileError{
			Entry:  entry,
			Output: captured.String(),
			Err:    fmt.Errorf("%s was not produced", pdf),
		}
	}
	return out, nil
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
