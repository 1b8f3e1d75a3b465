package mkresume

// Notes:
// - NewTemplateLoader: we check that internal asset errors surface as the
//   public sentinels. Containment and symlink handling are covered in
//   internal/assets.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeTemplateDir(t *testing.T, root, name, descriptor string) string {
	t.Helper()

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "template.yaml"), []byte(descriptor), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir
}

// ---------------------------------------------------------------------------
// TestTemplateLoader - Loading by name and by directory
// ---------------------------------------------------------------------------

func TestTemplateLoader(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTemplateDir(t, root, "mini", "entrypoints: [resume.tex]\n")
	writeTemplateDir(t, root, "broken", "entrypoints: []\n")

	loader, err := NewTemplateLoader(root)
	if err != nil {
		t.Fatalf("NewTemplateLoader() error = %v", err)
	}

	tests := []struct {
		name     string
		input    string
		wantName string
		wantErr  error
	}{
		{"embedded default", DefaultTemplate, "classic", nil},
		{"custom by name", "mini", "mini", nil},
		{"directory path", filepath.Join(root, "mini"), "mini", nil},
		{"unknown name", "nope", "", ErrTemplateNotFound},
		{"traversal name", "..", "", ErrTemplateNotFound},
		{"missing directory", filepath.Join(root, "absent"), "", ErrTemplateNotFound},
		{"invalid descriptor", "broken", "", ErrInvalidTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpl, err := loader.Load(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Load(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load(%q) error = %v", tt.input, err)
			}
			if tmpl.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", tmpl.Name, tt.wantName)
			}
		})
	}
}

func TestTemplateLoader_List(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTemplateDir(t, root, "mini", "entrypoints: [resume.tex]\n")
	if err := os.MkdirAll(filepath.Join(root, "no-descriptor"), 0o755); err != nil {
		t.Fatal(err)
	}

	loader, err := NewTemplateLoader(root)
	if err != nil {
		t.Fatalf("NewTemplateLoader() error = %v", err)
	}
	names, err := loader.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !slices.Equal(names, []string{"classic", "mini"}) {
		t.Errorf("List() = %v, want [classic mini]", names)
	}
}

func TestNewTemplateLoader_InvalidPath(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(t.TempDir(), "missing"), file} {
		_, err := NewTemplateLoader(path)
		if !errors.Is(err, ErrInvalidTemplatePath) {
			t.Errorf("NewTemplateLoader(%q) error = %v, want ErrInvalidTemplatePath", path, err)
		}
	}
}

func TestConvertAssetError_Passthrough(t *testing.T) {
	t.Parallel()

	if convertAssetError(nil) != nil {
		t.Error("convertAssetError(nil) should be nil")
	}
	other := errors.New("other")
	if got := convertAssetError(other); got != other {
		t.Errorf("convertAssetError(other) = %v, want unchanged", got)
	}
}
