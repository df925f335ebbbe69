package runtimeconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

// ErrConfigPathRequired is returned by Load when no file was given.
var ErrConfigPathRequired = errors.New("ssg config: config path is required")

// ErrConfigRead wraps filesystem failures while reading the config file.
var ErrConfigRead = errors.New("ssg config: unable to read config file")

// ErrConfigDecode wraps YAML decoding failures.
var ErrConfigDecode = errors.New("ssg config: unable to decode config file")

var ErrLoggingLevelInvalid = errors.New("ssg config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("ssg config: logging format is invalid")
var ErrPandocTimeoutInvalid = errors.New("ssg config: pandoc timeout must be positive")
var ErrTheoremInvalid = errors.New("ssg config: theorem requires name and label")

const (
	TextDirectionLTR = "ltr"
	TextDirectionRTL = "rtl"
)

// Config is the generator configuration decoded from the site YAML file.
type Config struct {
	BuildDir       string `yaml:"build_dir"`
	ContentDir     string `yaml:"content_dir"`
	TemplateDir    string `yaml:"template_dir"`
	TranslationDir string `yaml:"translation_dir"`

	Language      string         `yaml:"language"`
	TextDirection string         `yaml:"text_direction"`
	Context       map[string]any `yaml:"context"`
	Theorems      []Theorem      `yaml:"theorems"`

	SyntaxHighlighterTheme string `yaml:"syntax_highlighter_theme"`
	RawMathBlocks          bool   `yaml:"raw_math_blocks"`

	BaseURL string `yaml:"base_url"`
	Workers int    `yaml:"workers"`

	Pandoc  PandocConfig  `yaml:"pandoc"`
	Logging LoggingConfig `yaml:"logging"`
}

// Theorem declares a LaTeX theorem-like environment. Numbered defaults to
// true when the key is omitted.
type Theorem struct {
	Name     string `yaml:"name"`
	Label    string `yaml:"label"`
	Numbered bool   `yaml:"numbered"`
}

// UnmarshalYAML applies the numbered default before decoding.
func (t *Theorem) UnmarshalYAML(node *yaml.Node) error {
	type plain Theorem
	raw := plain{Numbered: true}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*t = Theorem(raw)
	return nil
}

// PandocConfig configures the LaTeX converter subprocess.
type PandocConfig struct {
	Binary  string        `yaml:"binary"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig selects the go-logger level and output format.
type LoggingConfig struct {
	Level  string   `yaml:"level"`
	Format string   `yaml:"format"`
	Focus  []string `yaml:"focus"`
}

// DefaultConfig returns the configuration used when a key is not present in
// the config file. Directory keys have no default.
func DefaultConfig() Config {
	return Config{
		Language:               "en",
		TextDirection:          TextDirectionLTR,
		SyntaxHighlighterTheme: "monokai",
		RawMathBlocks:          true,
		BaseURL:                "http://localhost",
		Workers:                runtime.NumCPU(),
		Pandoc: PandocConfig{
			Binary:  "pandoc",
			Timeout: time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads and validates the YAML config at path. Keys missing from the
// file keep their DefaultConfig values.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, goerrors.Wrap(ErrConfigPathRequired, goerrors.CategoryValidation, "config path missing").
			WithTextCode("CONFIG_PATH_REQUIRED")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerrors.Wrap(fmt.Errorf("%w: %s: %w", ErrConfigRead, path, err), goerrors.CategoryInternal, "config read failed").
			WithTextCode("CONFIG_READ_FAILED")
	}

	cfg, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes raw YAML over the defaults and validates the result.
func Parse(raw []byte) (*Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, goerrors.Wrap(fmt.Errorf("%w: %w", ErrConfigDecode, err), goerrors.CategoryValidation, "config decode failed").
			WithTextCode("CONFIG_DECODE_FAILED")
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "config validation failed").
			WithTextCode("CONFIG_INVALID")
	}
	return &cfg, nil
}

// Validate checks required directories and enumerated values.
func (cfg Config) Validate() error {
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.BuildDir, validation.Required),
		validation.Field(&cfg.ContentDir, validation.Required),
		validation.Field(&cfg.TemplateDir, validation.Required),
		validation.Field(&cfg.TextDirection, validation.In(TextDirectionLTR, TextDirectionRTL)),
		validation.Field(&cfg.Workers, validation.Min(0)),
		validation.Field(&cfg.Theorems, validation.By(validateTheorems)),
		validation.Field(&cfg.Pandoc, validation.By(validatePandoc)),
		validation.Field(&cfg.Logging, validation.By(validateLogging)),
	)
}

// EffectiveWorkers resolves the worker count, treating zero as "one per CPU".
func (cfg Config) EffectiveWorkers() int {
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return runtime.NumCPU()
}

// LanguageOr returns language when set, otherwise the configured default.
func (cfg Config) LanguageOr(language string) string {
	if trimmed := strings.TrimSpace(language); trimmed != "" {
		return trimmed
	}
	return cfg.Language
}

func validateTheorems(value any) error {
	theorems, _ := value.([]Theorem)
	for i, theorem := range theorems {
		if strings.TrimSpace(theorem.Name) == "" || strings.TrimSpace(theorem.Label) == "" {
			return fmt.Errorf("%w: index %d", ErrTheoremInvalid, i)
		}
	}
	return nil
}

func validatePandoc(value any) error {
	pandoc, _ := value.(PandocConfig)
	if pandoc.Timeout <= 0 {
		return ErrPandocTimeoutInvalid
	}
	return nil
}

func validateLogging(value any) error {
	logging, _ := value.(LoggingConfig)
	if level := strings.TrimSpace(logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
