package latex

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-ssg/pkg/interfaces"
)

const (
	DefaultBinary  = "pandoc"
	DefaultTimeout = time.Second
)

var pandocArgs = []string{"--from=latex", "--to=html", "--mathjax"}

// Config controls how LaTeX is handed to pandoc.
type Config struct {
	Binary   string
	Timeout  time.Duration
	Theorems []Theorem
}

// Converter turns LaTeX fragments into HTML through pandoc.
type Converter struct {
	runner interfaces.CommandRunner
	cfg    Config
}

// NewConverter wires a converter to the supplied command runner.
func NewConverter(runner interfaces.CommandRunner, cfg Config) *Converter {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Converter{runner: runner, cfg: cfg}
}

// ToHTML runs the environment filter around a pandoc conversion.
func (c *Converter) ToHTML(ctx context.Context, source string) (string, error) {
	filter := NewEnvFilter(c.cfg.Theorems)

	preprocessed, err := filter.Preprocess(source)
	if err != nil {
		return "", err
	}

	out, err := c.runner.Run(ctx, c.cfg.Binary, pandocArgs, preprocessed, c.cfg.Timeout)
	if err != nil {
		return "", fmt.Errorf("latex: pandoc conversion failed: %w", err)
	}
	return filter.Postprocess(out), nil
}
