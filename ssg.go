package ssg

import (
	"context"

	"github.com/goliatone/go-ssg/internal/di"
	"github.com/goliatone/go-ssg/internal/generator"
	"github.com/goliatone/go-ssg/internal/metrics"
	"github.com/goliatone/go-ssg/pkg/interfaces"
)

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

type (
	BuildOptions = generator.BuildOptions
	BuildResult  = generator.BuildResult
	RenderedPage = generator.RenderedPage
)

// Site is the top level generator façade.
type Site struct {
	container *di.Container
}

// New constructs a site using the provided configuration and optional DI
// overrides. Templates are parsed before New returns.
func New(ctx context.Context, cfg Config, opts ...di.Option) (*Site, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Site{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (s *Site) Container() *di.Container {
	return s.container
}

// Config returns the configuration the site was built with.
func (s *Site) Config() Config {
	return s.container.Config
}

// Generator returns the current generator service.
func (s *Site) Generator() GeneratorService {
	return s.container.GeneratorService()
}

// Reload re-parses templates and drops cached translations.
func (s *Site) Reload(ctx context.Context) (GeneratorService, error) {
	return s.container.Reload(ctx)
}

// Metrics returns the Prometheus collectors updated by every build.
func (s *Site) Metrics() *metrics.Build {
	return s.container.Metrics()
}

// LoggerProvider returns the provider shared by every module logger.
func (s *Site) LoggerProvider() interfaces.LoggerProvider {
	return s.container.LoggerProvider()
}

// Build renders the whole content tree.
func (s *Site) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	return s.Generator().Build(ctx, opts)
}
