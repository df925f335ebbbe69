package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	buildcmd "github.com/goliatone/go-ssg/internal/commands/build"
	"github.com/goliatone/go-ssg/internal/generator"
	"github.com/goliatone/go-ssg/internal/server"
)

type rootFlags struct {
	config    string
	logLevel  string
	logFormat string
	workers   int
	baseURL   string
}

func (f rootFlags) options() moduleOptions {
	return moduleOptions{
		ConfigPath: f.config,
		LogLevel:   f.logLevel,
		LogFormat:  f.logFormat,
		Workers:    f.workers,
		BaseURL:    f.baseURL,
	}
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "ssg",
		Short:         "Static site generator for problems, posts and pages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.config, "config", "", "path to the site config file (YAML)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override logging.level")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "override logging.format (console, json, pretty)")
	root.PersistentFlags().IntVar(&flags.workers, "workers", 0, "override the build worker count")
	root.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "override base_url used by sitemap.xml and robots.txt")
	_ = root.MarkPersistentFlagRequired("config")

	root.AddCommand(
		newContentCommand(flags),
		newListCommand(flags),
		newBuildCommand(flags),
		newWatchCommand(flags),
		newServeCommand(flags),
	)
	return root
}

func newContentCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "content PATH",
		Short: "Render one content directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := moduleBuilder(cmd.Context(), flags.options())
			if err != nil {
				return err
			}
			return resources.handlers.content.Execute(cmd.Context(), buildcmd.BuildContentCommand{
				Path: args[0],
				OnResult: func(page *generator.RenderedPage) {
					printPage(cmd.OutOrStdout(), page)
				},
			})
		},
	}
}

func newListCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list PATH",
		Short: "Render the listing declared by an index.yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := moduleBuilder(cmd.Context(), flags.options())
			if err != nil {
				return err
			}
			return resources.handlers.list.Execute(cmd.Context(), buildcmd.BuildListCommand{
				IndexPath: args[0],
				OnResult: func(page *generator.RenderedPage) {
					printPage(cmd.OutOrStdout(), page)
				},
			})
		},
	}
}

func newBuildCommand(flags *rootFlags) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render every item and listing under content_dir",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resources, err := moduleBuilder(cmd.Context(), flags.options())
			if err != nil {
				return err
			}
			return buildSite(cmd, resources, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render without writing files")
	return cmd
}

func newWatchCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Build the site, then rebuild affected outputs on change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resources, err := moduleBuilder(cmd.Context(), flags.options())
			if err != nil {
				return err
			}
			if err := buildSite(cmd, resources, false); err != nil {
				resources.logger.Warn("initial build finished with errors", "error", err)
			}
			return resources.watch(cmd.Context())
		},
	}
}

func newServeCommand(flags *rootFlags) *cobra.Command {
	var (
		addr     string
		watching bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve build_dir for preview with metrics at /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resources, err := moduleBuilder(cmd.Context(), flags.options())
			if err != nil {
				return err
			}
			if watching {
				if err := buildSite(cmd, resources, false); err != nil {
					resources.logger.Warn("initial build finished with errors", "error", err)
				}
			}
			return resources.serve(cmd.Context(), addr, watching)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&watching, "watch", false, "build first and rebuild on change while serving")
	return cmd
}

func buildSite(cmd *cobra.Command, resources *moduleResources, dryRun bool) error {
	return resources.handlers.site.Execute(cmd.Context(), buildcmd.BuildSiteCommand{
		DryRun: dryRun,
		OnResult: func(result *generator.BuildResult) {
			printSummary(cmd.OutOrStdout(), result)
		},
	})
}

func printPage(w io.Writer, page *generator.RenderedPage) {
	if page == nil {
		return
	}
	fmt.Fprintln(w, page.Output)
}

func printSummary(w io.Writer, result *generator.BuildResult) {
	if result == nil {
		return
	}
	prefix := "built"
	if result.DryRun {
		prefix = "dry run:"
	}
	fmt.Fprintf(w, "%s %d pages, %d lists, %d assets in %s (%d errors)\n",
		prefix, result.PagesBuilt, result.ListsBuilt, result.AssetsBuilt, result.Duration.Round(time.Millisecond), len(result.Errors))
}
