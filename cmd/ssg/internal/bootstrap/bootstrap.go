package bootstrap

import (
	"context"
	"fmt"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-ssg"
	"github.com/goliatone/go-ssg/internal/commands"
	buildcmd "github.com/goliatone/go-ssg/internal/commands/build"
	"github.com/goliatone/go-ssg/internal/di"
	"github.com/goliatone/go-ssg/internal/logging"
	"github.com/goliatone/go-ssg/internal/logging/gologger"
	"github.com/goliatone/go-ssg/pkg/interfaces"
)

// Options captures the CLI flags that override the site config file.
type Options struct {
	ConfigPath     string
	LogLevel       string
	LogFormat      string
	Workers        int
	BaseURL        string
	LoggerProvider interfaces.LoggerProvider
}

// Handlers groups the command handlers backing the build subcommands.
type Handlers struct {
	Content *buildcmd.BuildContentHandler
	List    *buildcmd.BuildListHandler
	Site    *buildcmd.BuildSiteHandler
}

// Module wraps the site and the handlers configured for CLI use.
type Module struct {
	Site     *ssg.Site
	Handlers Handlers
	Logger   interfaces.Logger
}

// BuildModule loads the config at opts.ConfigPath, applies flag overrides and
// wires the site.
func BuildModule(ctx context.Context, opts Options) (*Module, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}

	provider := opts.LoggerProvider
	if provider == nil {
		goProvider, err := gologger.NewProvider(gologger.FromSiteConfig(cfg.Logging))
		if err != nil {
			return nil, fmt.Errorf("configure logging: %w", err)
		}
		provider = goProvider
	}

	site, err := ssg.New(ctx, *cfg, di.WithLoggerProvider(provider))
	if err != nil {
		return nil, fmt.Errorf("initialise site: %w", err)
	}

	svc := site.Generator()
	commandLogger := commands.CommandLogger(provider, "build")

	return &Module{
		Site: site,
		Handlers: Handlers{
			Content: buildcmd.NewBuildContentHandler(svc, commandLogger, telemetry[buildcmd.BuildContentCommand](commandLogger, site.Metrics())),
			List:    buildcmd.NewBuildListHandler(svc, commandLogger, telemetry[buildcmd.BuildListCommand](commandLogger, site.Metrics())),
			Site:    buildcmd.NewBuildSiteHandler(svc, commandLogger, telemetry[buildcmd.BuildSiteCommand](commandLogger, site.Metrics())),
		},
		Logger: logging.ModuleLogger(provider, "ssg.cli"),
	}, nil
}

// telemetry logs each outcome and counts it on the site metrics, so
// ssg_commands_total is visible on /metrics during serve --watch.
func telemetry[T command.Message](logger interfaces.Logger, recorder commands.CommandRecorder) commands.HandlerOption[T] {
	return commands.WithTelemetry(commands.ChainTelemetry(
		commands.DefaultTelemetry[T](logger),
		commands.MetricsTelemetry[T](recorder),
	))
}

// LoadConfig reads the config file and applies the non-empty overrides.
func LoadConfig(opts Options) (*ssg.Config, error) {
	cfg, err := ssg.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if format := strings.TrimSpace(opts.LogFormat); format != "" {
		cfg.Logging.Format = format
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid overrides: %w", err)
	}
	return cfg, nil
}
