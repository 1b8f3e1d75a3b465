package assets

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
)

// writeTemplate creates {root}/{name}/template.yaml plus the given files.
func writeTemplate(t *testing.T, root, name, descriptor string, files map[string]string) string {
	t.Helper()

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create template dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, DescriptorFile), []byte(descriptor), 0o644); err != nil {
		t.Fatalf("failed to write descriptor: %v", err)
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
	return dir
}

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	t.Run("valid directory", func(t *testing.T) {
		t.Parallel()

		loader, err := NewFilesystemLoader(t.TempDir())
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		if loader == nil {
			t.Fatal("NewFilesystemLoader() returned nil")
		}
	})

	t.Run("empty path returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader("")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader(\"\") error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("nonexistent directory returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader("/nonexistent/path/abc123xyz")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader() error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("file instead of directory returns error", func(t *testing.T) {
		t.Parallel()

		filePath := filepath.Join(t.TempDir(), "file.txt")
		if err := os.WriteFile(filePath, []byte("test"), 0o644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		_, err := NewFilesystemLoader(filePath)
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader() error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestFilesystemLoader_LoadTemplate(t *testing.T) {
	t.Parallel()

	t.Run("loads existing template", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeTemplate(t, root, "modern", "entrypoints: [resume.tex.tmpl]\nextra_files: [fonts/a.otf]\n", map[string]string{
			"resume.tex.tmpl": `\VAR{name.first}`,
		})

		loader, err := NewFilesystemLoader(root)
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		tmpl, err := loader.LoadTemplate("modern")
		if err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}

		if tmpl.Name != "modern" {
			t.Errorf("Name = %q, want modern", tmpl.Name)
		}
		if !filepath.IsAbs(tmpl.Dir) {
			t.Errorf("Dir = %q, want an absolute path", tmpl.Dir)
		}
		data, err := tmpl.ReadFile("resume.tex.tmpl")
		if err != nil || string(data) != `\VAR{name.first}` {
			t.Errorf("ReadFile() = (%q, %v)", data, err)
		}
		want := []string{filepath.Join(tmpl.Dir, "fonts", "a.otf")}
		if got := tmpl.ExtraFilePaths(); !slices.Equal(got, want) {
			t.Errorf("ExtraFilePaths() = %v, want %v", got, want)
		}
	})

	t.Run("extra files are not checked at load time", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeTemplate(t, root, "sparse", "entrypoints: [a.tex]\nextra_files: [missing.png]\n", nil)

		loader, err := NewFilesystemLoader(root)
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		if _, err := loader.LoadTemplate("sparse"); err != nil {
			t.Errorf("LoadTemplate() error = %v, want nil", err)
		}
	})

	t.Run("invalid descriptor is reported, not hidden", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeTemplate(t, root, "broken", "entrypoints: oops\n", nil)

		loader, err := NewFilesystemLoader(root)
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		_, err = loader.LoadTemplate("broken")
		if !errors.Is(err, ErrInvalidDescriptor) {
			t.Errorf("LoadTemplate() error = %v, want ErrInvalidDescriptor", err)
		}
	})

	tests := []struct {
		name         string
		templateName string
		wantErr      error
	}{
		{name: "nonexistent template", templateName: "nonexistent", wantErr: ErrTemplateNotFound},
		{name: "directory without descriptor", templateName: "bare", wantErr: ErrTemplateNotFound},
		{name: "plain file", templateName: "file", wantErr: ErrTemplateNotFound},
		{name: "path traversal", templateName: "../etc", wantErr: ErrInvalidAssetName},
		{name: "empty name", templateName: "", wantErr: ErrInvalidAssetName},
	}

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "bare"), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "file"), []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	loader, err := NewFilesystemLoader(root)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := loader.LoadTemplate(tt.templateName)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadTemplate(%q) error = %v, want %v", tt.templateName, err, tt.wantErr)
			}
		})
	}
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on Windows")
	}

	outside := t.TempDir()
	writeTemplate(t, outside, "evil", "entrypoints: [a.tex]\n", nil)

	root := t.TempDir()
	if err := os.Symlink(filepath.Join(outside, "evil"), filepath.Join(root, "evil")); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	loader, err := NewFilesystemLoader(root)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}
	_, err = loader.LoadTemplate("evil")
	if !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadTemplate() error = %v, want ErrPathTraversal", err)
	}
}

func TestFilesystemLoader_ListTemplates(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTemplate(t, root, "zeta", "entrypoints: [a.tex]\n", nil)
	writeTemplate(t, root, "alpha", "entrypoints: [a.tex]\n", nil)
	if err := os.Mkdir(filepath.Join(root, "no-descriptor"), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	loader, err := NewFilesystemLoader(root)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}
	names, err := loader.ListTemplates()
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	if want := []string{"alpha", "zeta"}; !slices.Equal(names, want) {
		t.Errorf("ListTemplates() = %v, want %v", names, want)
	}
}

func TestLoadDir(t *testing.T) {
	t.Parallel()

	t.Run("loads template named after its directory", func(t *testing.T) {
		t.Parallel()

		dir := writeTemplate(t, t.TempDir(), "mine", "entrypoints: [resume.tex]\n", map[string]string{"resume.tex": "x"})

		tmpl, err := LoadDir(dir)
		if err != nil {
			t.Fatalf("LoadDir() error = %v", err)
		}
		if tmpl.Name != "mine" {
			t.Errorf("Name = %q, want mine", tmpl.Name)
		}
		if got := tmpl.Path("resume.tex"); got != filepath.Join(tmpl.Dir, "resume.tex") {
			t.Errorf("Path() = %q", got)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()

		_, err := LoadDir(filepath.Join(t.TempDir(), "absent"))
		if !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("LoadDir() error = %v, want ErrTemplateNotFound", err)
		}
	})

	t.Run("directory without descriptor", func(t *testing.T) {
		t.Parallel()

		_, err := LoadDir(t.TempDir())
		if !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("LoadDir() error = %v, want ErrTemplateNotFound", err)
		}
	})
}
