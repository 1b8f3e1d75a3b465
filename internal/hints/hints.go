// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mkresume/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// inCI reports whether a well-known CI variable is set.
func inCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForToolNotFound returns hints for a missing TeX binary such as latexmk or
// bibtex. Container and CI runs get a package-manager suggestion.
func ForToolNotFound(tool string) string {
	var hints []string
	if inCI() || IsInContainer() {
		hints = append(hints, "install TeX Live in the image, e.g. apt-get install latexmk texlive-luatex texlive-latex-extra texlive-fonts-extra")
	} else {
		hints = append(hints, "install a TeX distribution providing "+tool+" (TeX Live, MacTeX or MiKTeX)")
	}
	hints = append(hints, "run 'mkresume doctor' to check the toolchain")
	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the compile timeout.
func ForTimeout() string {
	return format("the first run may build font caches; raise latex.timeout or use --timeout")
}

// ForCompile returns a hint for compiler failures.
// Without debug output the compiler log is hidden, so point at --debug.
func ForCompile(debug bool) string {
	if debug {
		return format("the compiler output above shows the failing line of the generated .tex file")
	}
	return format("rerun with --debug to stream the compiler output, or --dry-run DIR to inspect the generated sources")
}

// ForBibliography returns hints for bibliography failures.
func ForBibliography() string {
	return format("check publications.bibfiles and that every key in publications.keys exists")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/mkresume/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/mkresume") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForTemplateNotFound returns hints for template not found errors.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return format("pass a template directory with --template ./path/to/template")
	}
	return format("available: " + strings.Join(available, ", ") + "; or pass a directory with --template ./path")
}

// ForUnsupportedMode returns hints listing the modes a template declares.
func ForUnsupportedMode(modes []string) string {
	if len(modes) == 0 {
		return ""
	}
	return format("this template supports: " + strings.Join(modes, ", "))
}

// ForMissingCover returns a hint for cover mode without cover letter data.
func ForMissingCover() string {
	return format("add a cover: section (recipient, opening, body, closing) to the document")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
