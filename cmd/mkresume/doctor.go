package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/alnah/go-mkresume/internal/config"
	"github.com/alnah/go-mkresume/internal/hints"
	"github.com/alnah/go-mkresume/internal/process"
)

// versionTimeout bounds each "--version" run.
const versionTimeout = 10 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Tools    []toolInfo `json:"tools"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// toolInfo holds the detection result of one binary.
type toolInfo struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Required bool   `json:"required"`
	Found    bool   `json:"found"`
	Path     string `json:"path,omitempty"`
	Version  string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	ConfigFile    string `json:"config_file,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	result := runDoctor(ctx, env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	cfg := checkConfig(result)
	checkEnvironment(result, env.environ())
	checkTools(ctx, result, cfg, env.runner())
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkConfig loads the effective configuration so tool names match what
// render would run. A broken config is reported and defaults are used.
func checkConfig(result *doctorResult) *config.Config {
	path, err := config.FindFile("")
	if err == nil {
		result.Env.ConfigFile = path
		var cfg *config.Config
		if cfg, err = config.Load(path); err == nil {
			return cfg
		}
	}
	result.Warnings = append(result.Warnings, fmt.Sprintf("Config not usable, checking defaults: %v", err))
	return config.Default()
}

// checkTools checks every binary a render may run.
func checkTools(ctx context.Context, result *doctorResult, cfg *config.Config, runner process.Runner) {
	wanted := []toolInfo{
		{Name: cfg.LaTeX.Command, Role: "build driver", Required: true},
		{Name: cfg.LaTeX.Engine, Role: "LaTeX engine", Required: true},
		{Name: cfg.Bibtex.Command, Role: "bibliography (publications only)"},
		{Name: "kpsewhich", Role: "TeX file lookup"},
	}

	for _, tool := range wanted {
		version, err := toolVersion(ctx, runner, tool.Name)
		switch {
		case errors.Is(err, process.ErrNotFound):
			msg := fmt.Sprintf("%s (%s) not found%s", tool.Name, tool.Role, hints.ForToolNotFound(tool.Name))
			if tool.Required {
				result.Errors = append(result.Errors, msg)
			} else {
				result.Warnings = append(result.Warnings, msg)
			}
		case err != nil:
			tool.Found = true
			result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get %s version: %v", tool.Name, err))
		default:
			tool.Found = true
			tool.Version = version
		}
		if tool.Found {
			if p, err := exec.LookPath(tool.Name); err == nil {
				tool.Path = p
			}
		}
		result.Tools = append(result.Tools, tool)
	}
}

// toolVersion runs "name --version" and returns the first output line.
func toolVersion(ctx context.Context, runner process.Runner, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	var out bytes.Buffer
	err := runner.Run(ctx, process.Command{Name: name, Args: []string{"--version"}, Stdout: &out})
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(out.String()), "\n")
	return strings.TrimSpace(line), nil
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, environ []string) {
	result.Env.Container, result.Env.ContainerHint = isContainer(environ)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if lookupEnv(environ, v) != "" {
			result.Env.CI = true
			break
		}
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(environ []string) (bool, string) {
	// Docker
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := lookupEnv(environ, "container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if lookupEnv(environ, "KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// lookupEnv returns the value of name in an os.Environ style list.
func lookupEnv(environ []string, name string) string {
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k == name {
			return v
		}
	}
	return ""
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "mkresume-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mkresume doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "TeX toolchain")
	for _, t := range r.Tools {
		switch {
		case t.Found && t.Version != "":
			fmt.Fprintf(w, "  [OK] %s: %s\n", t.Name, t.Version)
		case t.Found:
			fmt.Fprintf(w, "  [OK] %s\n", t.Name)
		case t.Required:
			fmt.Fprintf(w, "  [ERROR] %s: not found\n", t.Name)
		default:
			fmt.Fprintf(w, "  [WARN] %s: not found\n", t.Name)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.ConfigFile != "" {
		fmt.Fprintf(w, "  [OK] Config: %s\n", r.Env.ConfigFile)
	}
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
