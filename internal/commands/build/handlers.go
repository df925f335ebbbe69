package buildcmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-ssg/internal/commands"
	"github.com/goliatone/go-ssg/internal/generator"
	"github.com/goliatone/go-ssg/internal/logging"
	"github.com/goliatone/go-ssg/pkg/interfaces"
)

// ErrGeneratorRequired is returned when a handler is wired without a generator.
var ErrGeneratorRequired = errors.New("buildcmd: generator service is required")

// BuildContentHandler renders a single item through the generator.
type BuildContentHandler struct {
	inner *commands.Handler[BuildContentCommand]
}

// NewBuildContentHandler constructs a handler wired to the provided generator service.
func NewBuildContentHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildContentCommand]) *BuildContentHandler {
	if logger == nil {
		logger = logging.NoOp()
	}
	exec := func(ctx context.Context, msg BuildContentCommand) error {
		if service == nil {
			return ErrGeneratorRequired
		}
		page, err := service.BuildContent(ctx, msg.Path)
		if err != nil {
			return err
		}
		if msg.OnResult != nil {
			msg.OnResult(page)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[BuildContentCommand]{
		commands.WithLogger[BuildContentCommand](logger),
		commands.WithOperation[BuildContentCommand]("build.content"),
		commands.WithMessageFields(func(msg BuildContentCommand) map[string]any {
			return map[string]any{"path": msg.Path}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildContentCommand](logger)),
	}
	return &BuildContentHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[BuildContentCommand].
func (h *BuildContentHandler) Execute(ctx context.Context, msg BuildContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// BuildListHandler renders a listing page.
type BuildListHandler struct {
	inner *commands.Handler[BuildListCommand]
}

// NewBuildListHandler constructs a handler wired to the provided generator service.
func NewBuildListHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildListCommand]) *BuildListHandler {
	if logger == nil {
		logger = logging.NoOp()
	}
	exec := func(ctx context.Context, msg BuildListCommand) error {
		if service == nil {
			return ErrGeneratorRequired
		}
		page, err := service.BuildList(ctx, msg.IndexPath)
		if err != nil {
			return err
		}
		if msg.OnResult != nil {
			msg.OnResult(page)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[BuildListCommand]{
		commands.WithLogger[BuildListCommand](logger),
		commands.WithOperation[BuildListCommand]("build.list"),
		commands.WithMessageFields(func(msg BuildListCommand) map[string]any {
			return map[string]any{"index": msg.IndexPath}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildListCommand](logger)),
	}
	return &BuildListHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[BuildListCommand].
func (h *BuildListHandler) Execute(ctx context.Context, msg BuildListCommand) error {
	return h.inner.Execute(ctx, msg)
}

// BuildSiteHandler orchestrates full site builds.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the provided generator service.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	if logger == nil {
		logger = logging.NoOp()
	}
	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil {
			return ErrGeneratorRequired
		}
		result, err := service.Build(ctx, generator.BuildOptions{DryRun: msg.DryRun})
		if msg.OnResult != nil && result != nil {
			msg.OnResult(result)
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](logger),
		commands.WithOperation[BuildSiteCommand]("build.site"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			if msg.DryRun {
				return map[string]any{"dry_run": true}
			}
			return nil
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](logger)),
	}
	return &BuildSiteHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}
