// Package config loads mkresume settings from defaults, an optional YAML
// file and MKRESUME_* environment variables, in that order of precedence.
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/alnah/go-mkresume/internal/fileutil"
	"github.com/alnah/go-mkresume/internal/logger"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid config")
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "MKRESUME_"

// EnvConfigPath names the variable holding the config file path.
const EnvConfigPath = EnvPrefix + "CONFIG"

// Engines lists the LaTeX engines latexmk can drive.
var Engines = []string{"lualatex", "xelatex", "pdflatex"}

// Config holds all settings of a run.
type Config struct {
	Template     string       `koanf:"template" validate:"required"`
	TemplatesDir string       `koanf:"templates_dir"`
	Mode         string       `koanf:"mode" validate:"required"`
	Output       string       `koanf:"output"`
	LogLevel     string       `koanf:"log_level" validate:"loglevel"`
	Blocks       []string     `koanf:"blocks" validate:"dive,required"` // nil = renderer default order
	FontsDir     string       `koanf:"fonts_dir"`
	LaTeX        LaTeXConfig  `koanf:"latex"`
	Bibtex       BibtexConfig `koanf:"bibtex"`
}

// LaTeXConfig configures the compiler run.
type LaTeXConfig struct {
	Command string        `koanf:"command" validate:"required"`
	Engine  string        `koanf:"engine" validate:"oneof=lualatex xelatex pdflatex"`
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"` // 0 = no limit
	Args    []string      `koanf:"args"`                     // extra latexmk arguments
}

// BibtexConfig configures the bibliography engine.
type BibtexConfig struct {
	Command string `koanf:"command" validate:"required"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Template: "classic",
		Mode:     "resume",
		LogLevel: "info",
		LaTeX: LaTeXConfig{
			Command: "latexmk",
			Engine:  "lualatex",
		},
		Bibtex: BibtexConfig{Command: "bibtex"},
	}
}

// knownEnvVars maps each MKRESUME_* variable to its config key.
// MKRESUME_CONFIG selects the file and has no key.
var knownEnvVars = map[string]string{
	EnvConfigPath:             "",
	"MKRESUME_TEMPLATE":       "template",
	"MKRESUME_TEMPLATES_DIR":  "templates_dir",
	"MKRESUME_MODE":           "mode",
	"MKRESUME_OUTPUT":         "output",
	"MKRESUME_LOG_LEVEL":      "log_level",
	"MKRESUME_BLOCKS":         "blocks",
	"MKRESUME_FONTS_DIR":      "fonts_dir",
	"MKRESUME_LATEX_COMMAND":  "latex.command",
	"MKRESUME_LATEX_ENGINE":   "latex.engine",
	"MKRESUME_LATEX_TIMEOUT":  "latex.timeout",
	"MKRESUME_LATEX_ARGS":     "latex.args",
	"MKRESUME_BIBTEX_COMMAND": "bibtex.command",
}

// listKeys hold comma-separated lists when set from the environment.
var listKeys = map[string]bool{"blocks": true, "latex.args": true}

// KnownEnvVars returns the recognized variable names, sorted.
func KnownEnvVars() []string {
	names := make([]string, 0, len(knownEnvVars))
	for name := range knownEnvVars {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// UnknownEnvVars returns the MKRESUME_* names in environ that Load ignores,
// which usually are typos. environ has the os.Environ format.
func UnknownEnvVars(environ []string) []string {
	var unknown []string
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		if _, ok := knownEnvVars[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	slices.Sort(unknown)
	return unknown
}

// FindFile returns the config file to load. An explicit path or
// MKRESUME_CONFIG must exist. Otherwise ./mkresume.yaml and the user config
// directory are searched; finding nothing returns "" and no error.
func FindFile(explicit string) (string, error) {
	for _, p := range []string{explicit, os.Getenv(EnvConfigPath)} {
		if p == "" {
			continue
		}
		if !fileutil.FileExists(p) {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, p)
		}
		return p, nil
	}

	candidates := []string{"mkresume.yaml", "mkresume.yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(dir, "mkresume", "config.yaml"),
			filepath.Join(dir, "mkresume", "config.yml"))
	}
	for _, p := range candidates {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", nil
}

// Load layers defaults, the YAML file at path (skipped when empty) and the
// environment, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", ErrConfigParse, err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			ErrorUnused:      true,
			WeaklyTypedInput: true,
			Result:           cfg,
		},
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps a known variable to its key. Unknown and empty variables
// are dropped.
func envKey(name, value string) (string, any) {
	key := knownEnvVars[name]
	if key == "" || strings.TrimSpace(value) == "" {
		return "", nil
	}
	if listKeys[key] {
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return key, items
	}
	return key, value
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their config key.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		return name
	})
	_ = v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		_, err := logger.ParseLevel(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks the configuration. Called by Load, but available for
// callers that build a Config in code.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fieldMessage(fe)
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	// Namespace is "Config.latex.engine"; drop the type name.
	_, key, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required":
		return key + ": must not be empty"
	case "oneof":
		return fmt.Sprintf("%s: %q is not one of %s", key, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "loglevel":
		return fmt.Sprintf("%s: %q is not one of %s", key, fe.Value(), strings.Join(logger.LevelNames, ", "))
	case "gte":
		return key + ": must not be negative"
	default:
		return fmt.Sprintf("%s: failed %q check", key, fe.Tag())
	}
}
