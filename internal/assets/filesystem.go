package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alnah/go-mkresume/internal/fileutil"
)

// FilesystemLoader loads templates from a templates root on the filesystem.
// Implements TemplateLoader interface.
type FilesystemLoader struct {
	basePath string
}

// NewFilesystemLoader creates a FilesystemLoader for the given base path.
// Returns ErrInvalidBasePath if the path is not a valid, readable directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	absPath, err := resolveDir(basePath)
	if err != nil {
		return nil, err
	}
	return &FilesystemLoader{basePath: absPath}, nil
}

// LoadTemplate loads {basePath}/{name}/template.yaml and its directory.
func (f *FilesystemLoader) LoadTemplate(name string) (*Template, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	dirPath := filepath.Join(f.basePath, name)

	// Path containment check for the directory
	if err := f.verifyPathContainment(dirPath + string(filepath.Separator)); err != nil {
		return nil, err
	}

	if !fileutil.DirExists(dirPath) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	return loadTemplate(name, dirPath, os.DirFS(dirPath), filepath.Join(dirPath, DescriptorFile))
}

// ListTemplates returns the subdirectories of basePath holding a descriptor.
func (f *FilesystemLoader) ListTemplates() ([]string, error) {
	entries, err := os.ReadDir(f.basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || ValidateAssetName(entry.Name()) != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(f.basePath, entry.Name(), DescriptorFile)); err == nil {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadDir loads the template stored in dir. The template is named after
// the directory.
func LoadDir(dir string) (*Template, error) {
	absPath, err := resolveDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrTemplateNotFound, dir, err)
	}
	return loadTemplate(filepath.Base(absPath), absPath, os.DirFS(absPath), filepath.Join(absPath, DescriptorFile))
}

// resolveDir returns the absolute, symlink-free form of a readable directory.
func resolveDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	// Resolve symlinks so that containment checks compare real paths.
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}

	if _, err := os.ReadDir(absPath); err != nil {
		return "", fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}
	return absPath, nil
}

// verifyPathContainment ensures the resolved file path is within basePath.
// Prevents path traversal attacks even if name validation is bypassed.
// Resolves symlinks to prevent escape via symlink pointing outside basePath.
func (f *FilesystemLoader) verifyPathContainment(filePath string) error {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}

	// If EvalSymlinks fails (e.g. the path doesn't exist), keep the cleaned
	// path; opening it fails later and the prefix check still applies.
	if realPath, err := filepath.EvalSymlinks(absFilePath); err == nil {
		absFilePath = realPath
	}

	// Add separator to prevent prefix attacks (e.g., /base/path vs /base/pathevil)
	if !strings.HasPrefix(absFilePath+string(filepath.Separator), f.basePath+string(filepath.Separator)) ||
		absFilePath == f.basePath {
		return fmt.Errorf("%w: path escapes base directory", ErrPathTraversal)
	}

	return nil
}

// Compile-time interface check.
var _ TemplateLoader = (*FilesystemLoader)(nil)
