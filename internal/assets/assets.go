package assets

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed support
var support embed.FS

// SupportFiles returns the names of the files copied into every workspace,
// whatever the template.
func SupportFiles() []string {
	entries, err := fs.ReadDir(support, "support")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names
}

// ReadSupportFile returns the contents of a shared support file.
func ReadSupportFile(name string) ([]byte, error) {
	if err := ValidateFileName(name); err != nil {
		return nil, err
	}
	data, err := support.ReadFile("support/" + name)
	if err != nil {
		return nil, fmt.Errorf("%w: support file %q: %v", ErrAssetRead, name, err)
	}
	return data, nil
}
