package main

import (
	"context"

	command "github.com/goliatone/go-command"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-ssg/cmd/ssg/internal/bootstrap"
	buildcmd "github.com/goliatone/go-ssg/internal/commands/build"
	"github.com/goliatone/go-ssg/internal/logging"
	"github.com/goliatone/go-ssg/internal/server"
	"github.com/goliatone/go-ssg/internal/watch"
	"github.com/goliatone/go-ssg/pkg/interfaces"
)

type moduleOptions = bootstrap.Options

type handlerSet struct {
	content command.Commander[buildcmd.BuildContentCommand]
	list    command.Commander[buildcmd.BuildListCommand]
	site    command.Commander[buildcmd.BuildSiteCommand]
}

// moduleResources is what the subcommands run against. watch and serve are
// closures so tests can replace the long running parts.
type moduleResources struct {
	handlers handlerSet
	logger   interfaces.Logger
	watch    func(ctx context.Context) error
	serve    func(ctx context.Context, addr string, watching bool) error
}

var moduleBuilder = buildModule

func buildModule(ctx context.Context, opts moduleOptions) (*moduleResources, error) {
	module, err := bootstrap.BuildModule(ctx, opts)
	if err != nil {
		return nil, err
	}

	site := module.Site
	cfg := site.Config()
	provider := site.LoggerProvider()

	watchFn := func(ctx context.Context) error {
		w, err := watch.New(watch.Config{
			ContentDir:     cfg.ContentDir,
			TemplateDir:    cfg.TemplateDir,
			TranslationDir: cfg.TranslationDir,
		}, site.Generator(), func(ctx context.Context) (watch.Target, error) {
			svc, err := site.Reload(ctx)
			if err != nil {
				return nil, err
			}
			return svc, nil
		}, logging.WatchLogger(provider))
		if err != nil {
			return err
		}
		return w.Run(ctx)
	}

	serveFn := func(ctx context.Context, addr string, watching bool) error {
		srv := server.New(server.Config{Addr: addr, BuildDir: cfg.BuildDir}, site.Metrics().Registry(), logging.ServerLogger(provider))
		if !watching {
			return srv.ListenAndServe(ctx)
		}
		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error { return srv.ListenAndServe(groupCtx) })
		group.Go(func() error { return watchFn(groupCtx) })
		return group.Wait()
	}

	return &moduleResources{
		handlers: handlerSet{
			content: module.Handlers.Content,
			list:    module.Handlers.List,
			site:    module.Handlers.Site,
		},
		logger: module.Logger,
		watch:  watchFn,
		serve:  serveFn,
	}, nil
}
