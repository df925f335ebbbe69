package di

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-ssg/internal/formatted"
	"github.com/goliatone/go-ssg/internal/generator"
	"github.com/goliatone/go-ssg/internal/i18n"
	"github.com/goliatone/go-ssg/internal/latex"
	"github.com/goliatone/go-ssg/internal/logging"
	"github.com/goliatone/go-ssg/internal/logging/gologger"
	"github.com/goliatone/go-ssg/internal/markdown"
	"github.com/goliatone/go-ssg/internal/metrics"
	"github.com/goliatone/go-ssg/internal/render"
	"github.com/goliatone/go-ssg/internal/runtimeconfig"
	"github.com/goliatone/go-ssg/internal/shell"
	"github.com/goliatone/go-ssg/pkg/interfaces"
)

// Container wires the generator pipeline from a validated site config.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	runner         interfaces.CommandRunner
	parser         interfaces.MarkdownParser
	metrics        *metrics.Build

	translations *i18n.Service
	converter    *formatted.Converter

	mu        sync.RWMutex
	templates *render.Renderer
	items     *render.ItemRenderer
	generator generator.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the go-logger provider built from cfg.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithCommandRunner replaces the exec runner used to call pandoc.
func WithCommandRunner(runner interfaces.CommandRunner) Option {
	return func(c *Container) {
		if runner != nil {
			c.runner = runner
		}
	}
}

// WithMarkdownParser replaces the goldmark parser.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		if parser != nil {
			c.parser = parser
		}
	}
}

// WithMetrics shares a collector set across containers, e.g. between
// reloads in watch mode.
func WithMetrics(m *metrics.Build) Option {
	return func(c *Container) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewContainer validates cfg and builds every service. Templates are parsed
// eagerly so syntax errors surface before any content is rendered.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.loggerProvider == nil {
		provider, err := gologger.NewProvider(gologger.FromSiteConfig(cfg.Logging))
		if err != nil {
			return nil, err
		}
		c.loggerProvider = provider
	}
	if c.runner == nil {
		c.runner = shell.NewExecRunner()
	}
	if c.parser == nil {
		c.parser = markdown.NewGoldmarkParser(interfaces.ParseOptions{
			HighlightStyle: cfg.SyntaxHighlighterTheme,
			RawMath:        cfg.RawMathBlocks,
		})
	}
	if c.metrics == nil {
		c.metrics = metrics.NewBuild()
	}

	c.translations = i18n.NewService(i18n.FromSiteConfig(cfg.TranslationDir, cfg.Language))
	c.converter = formatted.NewConverter(c.parser, latex.NewConverter(c.runner, latex.Config{
		Binary:   cfg.Pandoc.Binary,
		Timeout:  cfg.Pandoc.Timeout,
		Theorems: theorems(cfg.Theorems),
	}))

	if err := c.configureRendering(ctx); err != nil {
		return nil, err
	}

	c.logger("ssg").Debug("container.configured",
		"content_dir", cfg.ContentDir,
		"build_dir", cfg.BuildDir,
		"workers", cfg.EffectiveWorkers(),
	)
	return c, nil
}

// configureRendering parses the template directory and rebuilds the services
// that depend on it.
func (c *Container) configureRendering(ctx context.Context) error {
	templates, err := render.New(ctx, render.Config{
		TemplateDir:   c.Config.TemplateDir,
		Language:      c.Config.Language,
		TextDirection: c.Config.TextDirection,
		Context:       c.Config.Context,
	}, c.translations)
	if err != nil {
		return fmt.Errorf("configure templates: %w", err)
	}

	items := render.NewItemRenderer(c.converter, templates, logging.RenderLogger(c.loggerProvider))
	svc := generator.NewService(generator.Config{
		BuildDir:        c.Config.BuildDir,
		ContentDir:      c.Config.ContentDir,
		BaseURL:         c.Config.BaseURL,
		Language:        c.Config.Language,
		Workers:         c.Config.EffectiveWorkers(),
		GenerateSitemap: true,
		GenerateRobots:  true,
	}, generator.Dependencies{
		Items:   items,
		Lists:   templates,
		Metrics: c.metrics,
		Logger:  logging.GeneratorLogger(c.loggerProvider),
	})

	c.mu.Lock()
	c.templates = templates
	c.items = items
	c.generator = svc
	c.mu.Unlock()
	return nil
}

// Reload drops cached translation catalogs and re-parses templates. The
// previous generator stays in place when parsing fails.
func (c *Container) Reload(ctx context.Context) (generator.Service, error) {
	c.translations.Reset()
	if err := c.configureRendering(ctx); err != nil {
		return nil, err
	}
	return c.GeneratorService(), nil
}

func (c *Container) GeneratorService() generator.Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generator
}

func (c *Container) Templates() *render.Renderer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.templates
}

func (c *Container) ItemRenderer() *render.ItemRenderer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items
}

func (c *Container) Metrics() *metrics.Build {
	return c.metrics
}

func (c *Container) Translations() *i18n.Service {
	return c.translations
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

func (c *Container) logger(module string) interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, module)
}

func theorems(defs []runtimeconfig.Theorem) []latex.Theorem {
	if len(defs) == 0 {
		return nil
	}
	out := make([]latex.Theorem, 0, len(defs))
	for _, def := range defs {
		out = append(out, latex.Theorem{
			Name:     def.Name,
			Label:    def.Label,
			Numbered: def.Numbered,
		})
	}
	return out
}
