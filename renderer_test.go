package mkresume

// Notes:
// - latexmk and bibtex are replaced by fakeToolchain, which snapshots the
//   workspace and writes the files the real tools would produce. Real runs
//   live in renderer_integration_test.go.
// - The classic template is loaded from the embedded assets so that these
//   tests also catch template regressions.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-mkresume/internal/assets"
	"github.com/alnah/go-mkresume/internal/process"
)

const fakePDF = "%PDF-1.5 fake"

// fakeToolchain plays latexmk and bibtex.
type fakeToolchain struct {
	bbl        string // written by the bibliography engine
	log        string // written to stdout by the compiler
	compileErr error
	noPDF      bool
	block      bool // wait for cancellation

	calls     []process.Command
	workspace string
	files     map[string]string // workspace contents seen by the compiler
}

func (f *fakeToolchain) Run(ctx context.Context, cmd process.Command) error {
	f.calls = append(f.calls, cmd)
	if cmd.Name == DefaultBibtexCommand {
		if f.bbl == "" {
			return nil
		}
		return os.WriteFile(filepath.Join(cmd.Dir, cmd.Args[0]+".bbl"), []byte(f.bbl), 0o600)
	}

	f.workspace = cmd.Dir
	f.files = readTree(cmd.Dir)
	if cmd.Stdout != nil {
		_, _ = io.WriteString(cmd.Stdout, f.log)
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.compileErr != nil {
		return f.compileErr
	}
	if f.noPDF {
		return nil
	}
	entry := cmd.Args[len(cmd.Args)-1]
	return os.WriteFile(filepath.Join(cmd.Dir, strings.TrimSuffix(entry, ".tex")+".pdf"), []byte(fakePDF), 0o600)
}

func (f *fakeToolchain) compiles() int {
	n := 0
	for _, c := range f.calls {
		if c.Name != DefaultBibtexCommand {
			n++
		}
	}
	return n
}

func readTree(root string) map[string]string {
	files := make(map[string]string)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		data, _ := os.ReadFile(path)
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	return files
}

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func newTestRenderer(t *testing.T, f *fakeToolchain, opts ...Option) *Renderer {
	t.Helper()

	base := []Option{
		WithRunner(f),
		WithTempDir(t.TempDir()),
		WithClock(func() time.Time { return fixedNow }),
	}
	r, err := NewRenderer(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return r
}

func classicTemplate(t *testing.T) *Template {
	t.Helper()

	tmpl, err := assets.NewEmbeddedLoader().LoadTemplate("classic")
	if err != nil {
		t.Fatalf("LoadTemplate(classic) error = %v", err)
	}
	return tmpl
}

// dirTemplate writes a template named "mini" and loads it from disk.
func dirTemplate(t *testing.T, descriptor string, files map[string]string) *Template {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "mini")
	files[assets.DescriptorFile] = descriptor
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	tmpl, err := assets.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	return tmpl
}

func loadFixture(t *testing.T) *Document {
	t.Helper()

	doc, err := Load(filepath.Join("testdata", "resume.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return doc
}

func assertRemoved(t *testing.T, dir string) {
	t.Helper()

	if dir == "" {
		t.Fatal("compiler never saw a workspace")
	}
	if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("workspace %s still exists (stat error = %v)", dir, err)
	}
}

// ---------------------------------------------------------------------------
// TestNewRenderer - Construction
// ---------------------------------------------------------------------------

func TestNewRenderer(t *testing.T) {
	t.Parallel()

	if _, err := NewRenderer(); err != nil {
		t.Errorf("NewRenderer() error = %v", err)
	}
	if _, err := NewRenderer(WithEngine("context")); !errors.Is(err, ErrInvalidEngine) {
		t.Errorf("NewRenderer(WithEngine(context)) error = %v, want ErrInvalidEngine", err)
	}
}

func TestWithBibtexCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"custom engine", "biber", "biber"},
		{"empty keeps default", "", DefaultBibtexCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := NewRenderer(WithBibtexCommand(tt.in))
			if err != nil {
				t.Fatalf("NewRenderer() error = %v", err)
			}
			if r.cfg.bibtexCommand != tt.want {
				t.Errorf("bibtexCommand = %q, want %q", r.cfg.bibtexCommand, tt.want)
			}
		})
	}
}

func TestWithTimeout_Negative(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithTimeout(-1) did not panic")
		}
	}()
	WithTimeout(-1)
}

// ---------------------------------------------------------------------------
// TestRender_Preconditions - Failures before any work
// ---------------------------------------------------------------------------

func TestRender_Preconditions(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	noCover := *doc
	noCover.Cover = nil
	resumeOnly := dirTemplate(t, "entrypoints: [resume.tex]\n", map[string]string{"resume.tex": "x"})
	noEntry := dirTemplate(t, "entrypoints: [main.tex]\nmodes: [resume]\n", map[string]string{"main.tex": "x"})

	tests := []struct {
		name    string
		doc     *Document
		tmpl    *Template
		mode    string
		wantErr error
	}{
		{name: "nil document", tmpl: classicTemplate(t), wantErr: ErrNilInput},
		{name: "nil template", doc: doc, wantErr: ErrNilInput},
		{name: "mode not declared", doc: doc, tmpl: resumeOnly, mode: "cover", wantErr: ErrUnsupportedMode},
		{name: "unknown mode", doc: doc, tmpl: classicTemplate(t), mode: "letter", wantErr: ErrUnsupportedMode},
		{name: "cover without section", doc: &noCover, tmpl: classicTemplate(t), mode: "cover", wantErr: ErrMissingCover},
		{name: "no entry point for mode", doc: doc, tmpl: noEntry, wantErr: ErrUnsupportedMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := &fakeToolchain{}
			r := newTestRenderer(t, f)
			output := filepath.Join(t.TempDir(), "out.pdf")

			_, err := r.Render(context.Background(), tt.doc, tt.tmpl, RenderOptions{Mode: tt.mode, Output: output})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Render() error = %v, want %v", err, tt.wantErr)
			}
			if len(f.calls) != 0 {
				t.Errorf("toolchain ran %d times, want 0", len(f.calls))
			}
			if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("output exists after failed render")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRender - Full pipeline with the classic template
// ---------------------------------------------------------------------------

func TestRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode     string
		contains []string
	}{
		{mode: "resume", contains: []string{`\section*{Experience}`, `Ada`, `Note G, 100\% original`}},
		{mode: "cover", contains: []string{`Charles Babbage`, `July 10, 1843`, `Dear Mr Babbage,`}},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			t.Parallel()

			f := &fakeToolchain{}
			r := newTestRenderer(t, f)
			output := filepath.Join(t.TempDir(), "cv.pdf")

			res, err := r.Render(context.Background(), loadFixture(t), classicTemplate(t),
				RenderOptions{Mode: tt.mode, Output: output})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}

			if res.Output != output {
				t.Errorf("Output = %q, want %q", res.Output, output)
			}
			if diff := cmp.Diff([]string{"resume.tex", "cover.tex"}, res.Entrypoints); diff != "" {
				t.Errorf("Entrypoints mismatch (-want +got):\n%s", diff)
			}
			data, err := os.ReadFile(output)
			if err != nil || string(data) != fakePDF {
				t.Errorf("output = %q, %v; want fake PDF", data, err)
			}

			if f.compiles() != 1 {
				t.Fatalf("compiler ran %d times, want 1", f.compiles())
			}
			cmd := f.calls[len(f.calls)-1]
			wantArgs := []string{"-pdflua", "-interaction=nonstopmode", tt.mode + ".tex"}
			if cmd.Name != DefaultLaTeXCommand || !slices.Equal(cmd.Args, wantArgs) {
				t.Errorf("command = %s, want latexmk %v", cmd, wantArgs)
			}

			src := f.files[tt.mode+".tex"]
			for _, want := range tt.contains {
				if !strings.Contains(src, want) {
					t.Errorf("%s.tex missing %q", tt.mode, want)
				}
			}
			if _, ok := f.files["mkresume-icons.sty"]; !ok {
				t.Error("support file mkresume-icons.sty not copied")
			}
			assertRemoved(t, f.workspace)
		})
	}
}

func TestRender_DefaultOutput(t *testing.T) {
	fixture, err := filepath.Abs(filepath.Join("testdata", "resume.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	t.Chdir(dir)

	doc, err := Load(fixture)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	r := newTestRenderer(t, &fakeToolchain{})

	res, err := r.Render(context.Background(), doc, classicTemplate(t), RenderOptions{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.Output != "resume.pdf" {
		t.Errorf("Output = %q, want resume.pdf", res.Output)
	}
	if _, err := os.Stat(filepath.Join(dir, "resume.pdf")); err != nil {
		t.Errorf("resume.pdf not written: %v", err)
	}
}

func TestRender_Engines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		engine string
		flag   string
	}{
		{"lualatex", "-pdflua"},
		{"xelatex", "-pdfxe"},
		{"pdflatex", "-pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			t.Parallel()

			f := &fakeToolchain{}
			r := newTestRenderer(t, f,
				WithEngine(tt.engine),
				WithLaTeXCommand("latexmk2"),
				WithLaTeXArgs("-shell-escape"))

			_, err := r.Render(context.Background(), loadFixture(t), classicTemplate(t),
				RenderOptions{Output: filepath.Join(t.TempDir(), "out.pdf")})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			cmd := f.calls[0]
			want := []string{tt.flag, "-interaction=nonstopmode", "-shell-escape", "resume.tex"}
			if cmd.Name != "latexmk2" || !slices.Equal(cmd.Args, want) {
				t.Errorf("command = %s, want latexmk2 %v", cmd, want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRender_CompileFailures - Errors after the workspace exists
// ---------------------------------------------------------------------------

func TestRender_CompileFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		f          *fakeToolchain
		debug      bool
		wantOutput string // CompileError.Output
		wantStream string // streamed to the configured stdout
		wantErr    error
	}{
		{
			name:       "compiler fails",
			f:          &fakeToolchain{log: "! Undefined control sequence.", compileErr: errors.New("exit status 12")},
			wantOutput: "! Undefined control sequence.",
		},
		{
			name:       "no pdf produced",
			f:          &fakeToolchain{log: "nothing to do", noPDF: true},
			wantOutput: "nothing to do",
		},
		{
			name:       "debug streams output",
			f:          &fakeToolchain{log: "chatter", compileErr: errors.New("exit status 1")},
			debug:      true,
			wantStream: "chatter",
		},
		{
			name:    "binary missing",
			f:       &fakeToolchain{compileErr: process.ErrNotFound},
			wantErr: process.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout bytes.Buffer
			r := newTestRenderer(t, tt.f, WithOutput(&stdout, io.Discard))
			output := filepath.Join(t.TempDir(), "out.pdf")

			_, err := r.Render(context.Background(), loadFixture(t), classicTemplate(t),
				RenderOptions{Output: output, Debug: tt.debug})

			var cerr *CompileError
			if !errors.As(err, &cerr) {
				t.Fatalf("Render() error = %v, want *CompileError", err)
			}
			if !errors.Is(err, ErrCompile) {
				t.Errorf("error does not match ErrCompile")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Render() error = %v, want %v", err, tt.wantErr)
			}
			if cerr.Entry != "resume.tex" {
				t.Errorf("Entry = %q, want resume.tex", cerr.Entry)
			}
			if cerr.Output != tt.wantOutput {
				t.Errorf("Output = %q, want %q", cerr.Output, tt.wantOutput)
			}
			if stdout.String() != tt.wantStream {
				t.Errorf("streamed = %q, want %q", stdout.String(), tt.wantStream)
			}
			if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
				t.Error("output written despite compile failure")
			}
			assertRemoved(t, tt.f.workspace)
		})
	}
}

func TestRender_Timeout(t *testing.T) {
	t.Parallel()

	f := &fakeToolchain{block: true}
	r := newTestRenderer(t, f, WithTimeout(20*time.Millisecond))

	_, err := r.Render(context.Background(), loadFixture(t), classicTemplate(t),
		RenderOptions{Output: filepath.Join(t.TempDir(), "out.pdf")})
	if !errors.Is(err, ErrCompile) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Render() error = %v, want ErrCompile and DeadlineExceeded", err)
	}
	assertRemoved(t, f.workspace)
}

func TestRender_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeToolchain{}
	r := newTestRenderer(t, f)
	_, err := r.Render(ctx, loadFixture(t), classicTemplate(t),
		RenderOptions{Output: filepath.Join(t.TempDir(), "out.pdf")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("toolchain ran %d times after cancellation", len(f.calls))
	}
}

func TestRender_TemplateError(t *testing.T) {
	t.Parallel()

	tmpl := dirTemplate(t, "entrypoints: [resume.tex]\n", map[string]string{
		"resume.tex": `\VAR{.name.first | nosuchfilter}`,
	})
	f := &fakeToolchain{}
	r := newTestRenderer(t, f)

	_, err := r.Render(context.Background(), loadFixture(t), tmpl,
		RenderOptions{Output: filepath.Join(t.TempDir(), "out.pdf")})
	if !errors.Is(err, ErrRender) {
		t.Errorf("Render() error = %v, want ErrRender", err)
	}
	if len(f.calls) != 0 {
		t.Error("compiler ran after a template error")
	}
}

// ---------------------------------------------------------------------------
// TestRender_Context - Values visible to templates
// ---------------------------------------------------------------------------

func TestRender_Context(t *testing.T) {
	t.Parallel()

	docDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(docDir, "me.jpg"), []byte("jpeg"), 0o600); err != nil {
		t.Fatal(err)
	}
	doc, err := Parse(filepath.Join(docDir, "resume.yaml"), []byte(minimalDoc+"photo: me.jpg\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tmpl := dirTemplate(t, "entrypoints: [resume.tex.tmpl]\nextra_files: [fonts/icon.otf]\n", map[string]string{
		"resume.tex.tmpl": `\VAR{.photo}|\VAR{.mode}|\VAR{.template}|\VAR{.today | date "~Y-~m-~d"}|` +
			`\VAR{.custom}|\VAR{.name.first}|\VAR{.blocks | join ","}|\VAR{.experience | join ","}|\VAR{.fontpath}`,
		"fonts/icon.otf": "font",
	})

	f := &fakeToolchain{}
	r := newTestRenderer(t, f)
	_, err = r.Render(context.Background(), doc, tmpl, RenderOptions{
		Output:  filepath.Join(t.TempDir(), "out.pdf"),
		Blocks:  []string{"skills", "hobbies"},
		Context: map[string]any{"custom": "a&b", "name": "shadowed", "mode": "shadowed"},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := `me.jpg|resume|mini|2024-03-15|a\&b|Ada|skills,hobbies||` + fontPath(f.workspace)
	if got := f.files["resume.tex"]; got != want {
		t.Errorf("resume.tex =\n%s\nwant\n%s", got, want)
	}
	if f.files["me.jpg"] != "jpeg" {
		t.Error("photo not copied to the workspace root")
	}
	if f.files["icon.otf"] != "font" {
		t.Error("extra file not copied to the workspace root")
	}
}

func TestRender_FontsDir(t *testing.T) {
	t.Parallel()

	fonts := t.TempDir()
	tmpl := dirTemplate(t, "entrypoints: [resume.tex]\n", map[string]string{"resume.tex": `\VAR{.fontpath}`})
	f := &fakeToolchain{}
	r := newTestRenderer(t, f, WithFontsDir(fonts))

	if _, err := r.Render(context.Background(), loadFixture(t), tmpl,
		RenderOptions{Output: filepath.Join(t.TempDir(), "out.pdf")}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got, want := f.files["resume.tex"], fontPath(fonts); got != want {
		t.Errorf("fontpath = %q, want %q", got, want)
	}
	if !strings.HasSuffix(f.files["resume.tex"], "/") {
		t.Error("fontpath lacks a trailing slash")
	}
}

func TestRender_MissingAsset(t *testing.T) {
	t.Parallel()

	photoDoc, err := Parse(filepath.Join(t.TempDir(), "resume.yaml"), []byte(minimalDoc+"photo: gone.jpg\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		name string
		doc  func(t *testing.T) *Document
		tmpl func(t *testing.T) *Template
	}{
		{
			name: "photo",
			doc:  func(*testing.T) *Document { return photoDoc },
			tmpl: classicTemplate,
		},
		{
			name: "extra file of an on-disk template",
			doc:  loadFixture,
			tmpl: func(t *testing.T) *Template {
				return dirTemplate(t, "entrypoints: [resume.tex]\nextra_files: [fonts/gone.otf]\n",
					map[string]string{"resume.tex": "x"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parent := t.TempDir()
			output := filepath.Join(t.TempDir(), "out.pdf")
			f := &fakeToolchain{}
			r := newTestRenderer(t, f, WithTempDir(parent))

			_, err := r.Render(context.Background(), tt.doc(t), tt.tmpl(t), RenderOptions{Output: output})
			if !errors.Is(err, ErrCopy) {
				t.Errorf("Render() error = %v, want ErrCopy", err)
			}
			if len(f.calls) != 0 {
				t.Error("a tool ran after a copy failure")
			}
			if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("output exists after a copy failure (stat error = %v)", err)
			}
			entries, err := os.ReadDir(parent)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Errorf("workspace left behind: %v", entries)
			}
		})
	}
}

func TestRender_ExtraFilesFromDisk(t *testing.T) {
	t.Parallel()

	tmpl := dirTemplate(t, "entrypoints: [resume.tex]\nextra_files: [fonts/icon.otf, img/logo.png]\n", map[string]string{
		"resume.tex":     "x",
		"fonts/icon.otf": "font",
		"img/logo.png":   "png",
	})
	f := &fakeToolchain{}
	r := newTestRenderer(t, f)

	if _, err := r.Render(context.Background(), loadFixture(t), tmpl,
		RenderOptions{Output: filepath.Join(t.TempDir(), "out.pdf")}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for name, want := range map[string]string{"icon.otf": "font", "logo.png": "png"} {
		if got := f.files[name]; got != want {
			t.Errorf("workspace %s = %q, want %q", name, got, want)
		}
	}
	if _, ok := f.files["fonts/icon.otf"]; ok {
		t.Error("extra file kept its directory, want it at the workspace root")
	}
}

// ---------------------------------------------------------------------------
// TestRender_Bibliography - Publications through the bibliography engine
// ---------------------------------------------------------------------------

func TestRender_Bibliography(t *testing.T) {
	t.Parallel()

	docDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(docDir, "refs.bib"), []byte("@misc{lovelace1843}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	doc, err := Parse(filepath.Join(docDir, "resume.yaml"), []byte(minimalDoc+`publications:
  keys: [lovelace1843, ghost]
  bibfiles: [refs.bib]
  boldnames: [A.~Lovelace]
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	t.Run("rendered into the context", func(t *testing.T) {
		t.Parallel()

		tmpl := dirTemplate(t, "entrypoints: [resume.tex]\nbibtex_style: plain\n", map[string]string{
			"resume.tex": `\VAR{.publications}`,
		})
		f := &fakeToolchain{bbl: "\\bibitem{lovelace1843}\nA.~Lovelace & C.~Babbage.\n"}
		r := newTestRenderer(t, f)

		res, err := r.Render(context.Background(), doc, tmpl,
			RenderOptions{Output: filepath.Join(t.TempDir(), "out.pdf")})
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if diff := cmp.Diff([]string{"ghost"}, res.Missing); diff != "" {
			t.Errorf("Missing mismatch (-want +got):\n%s", diff)
		}
		// The bibliography is trusted LaTeX: & is not escaped again.
		want := "\\bibitem{lovelace1843}\n\\textbf{A.~Lovelace} & C.~Babbage.\n"
		if got := f.files["resume.tex"]; got != want {
			t.Errorf("resume.tex = %q, want %q", got, want)
		}
		if f.calls[0].Name != DefaultBibtexCommand {
			t.Errorf("first command = %s, want the bibliography engine", f.calls[0])
		}
	})

	t.Run("template without style", func(t *testing.T) {
		t.Parallel()

		tmpl := dirTemplate(t, "entrypoints: [resume.tex]\n", map[string]string{"resume.tex": "x"})
		f := &fakeToolchain{}
		r := newTestRenderer(t, f)

		_, err := r.Render(context.Background(), doc, tmpl,
			RenderOptions{Output: filepath.Join(t.TempDir(), "out.pdf")})
		if !errors.Is(err, ErrBibliography) {
			t.Errorf("Render() error = %v, want ErrBibliography", err)
		}
	})

	t.Run("engine output without entries", func(t *testing.T) {
		t.Parallel()

		tmpl := dirTemplate(t, "entrypoints: [resume.tex]\nbibtex_style: plain\n", map[string]string{"resume.tex": "x"})
		f := &fakeToolchain{bbl: "\\begin{thebibliography}{}\n\\end{thebibliography}\n"}
		r := newTestRenderer(t, f)

		_, err := r.Render(context.Background(), doc, tmpl,
			RenderOptions{Output: filepath.Join(t.TempDir(), "out.pdf")})
		if !errors.Is(err, ErrBibliography) {
			t.Errorf("Render() error = %v, want ErrBibliography", err)
		}
		if f.compiles() != 0 {
			t.Error("compiler ran after a bibliography failure")
		}
	})
}

// ---------------------------------------------------------------------------
// TestRenderSources - Rendering without compilation
// ---------------------------------------------------------------------------

func TestRenderSources(t *testing.T) {
	t.Parallel()

	f := &fakeToolchain{}
	r := newTestRenderer(t, f)

	sources, err := r.RenderSources(context.Background(), loadFixture(t), classicTemplate(t),
		RenderOptions{Blocks: []string{"summary", "skills"}})
	if err != nil {
		t.Fatalf("RenderSources() error = %v", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("toolchain ran %d times, want 0", len(f.calls))
	}

	src := sources["resume.tex"]
	for _, want := range []string{
		`\section*{Summary}`,
		`\emph{programs}`,
		`\&`,
		`\section*{Skills}`,
		`Calculus, Bernoulli numbers`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("resume.tex missing %q", want)
		}
	}
	if strings.Contains(src, `\section*{Experience}`) {
		t.Error("resume.tex renders experience although it is not in blocks")
	}
	if _, ok := sources["cover.tex"]; !ok {
		t.Error("cover.tex not rendered")
	}
}

func TestRenderSources_Deterministic(t *testing.T) {
	t.Parallel()

	custom := map[string]any{
		"zeta":  "last",
		"alpha": "first & foremost",
		"count": 3,
		"meta":  map[string]any{"z": 1, "a": 2, "m": 3},
	}
	mini := dirTemplate(t, "entrypoints: [resume.tex]\n", map[string]string{
		"resume.tex": `\BLOCK{range $k, $v := .meta}\VAR{$k}=\VAR{$v};\BLOCK{end}` +
			`|\VAR{.alpha}|\VAR{.zeta}|\VAR{.count}|\VAR{.today | date "~Y-~m-~d"}|\VAR{.blocks | join ","}`,
	})

	tests := []struct {
		name string
		tmpl *Template
	}{
		{"classic", classicTemplate(t)},
		{"context keys", mini},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newTestRenderer(t, &fakeToolchain{})
			render := func() map[string]string {
				sources, err := r.RenderSources(context.Background(), loadFixture(t), tt.tmpl,
					RenderOptions{Context: custom})
				if err != nil {
					t.Fatalf("RenderSources() error = %v", err)
				}
				return sources
			}

			first, second := render(), render()
			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("RenderSources() differs between runs (-first +second):\n%s", diff)
			}
		})
	}

	r := newTestRenderer(t, &fakeToolchain{})
	sources, err := r.RenderSources(context.Background(), loadFixture(t), mini, RenderOptions{Context: custom})
	if err != nil {
		t.Fatalf("RenderSources() error = %v", err)
	}
	want := `a=2;m=3;z=1;|first \& foremost|last|3|2024-03-15|` + strings.Join(DefaultBlocks, ",")
	if got := sources["resume.tex"]; got != want {
		t.Errorf("resume.tex = %q, want %q", got, want)
	}
}
