// Package generator exposes the static site generation API for hosts that
// bring their own item or listing renderers. Use NewService with Config and
// Dependencies to render single items, listings or the whole content tree.
package generator

import internal "github.com/goliatone/go-ssg/internal/generator"

type (
	Service      = internal.Service
	Config       = internal.Config
	BuildOptions = internal.BuildOptions
	BuildResult  = internal.BuildResult
	RenderedPage = internal.RenderedPage
	Dependencies = internal.Dependencies
	ItemRenderer = internal.ItemRenderer
	ListRenderer = internal.ListRenderer
	Metrics      = internal.Metrics
	IndexConfig  = internal.IndexConfig
)

const (
	IndexFile    = internal.IndexFile
	ListTemplate = internal.ListTemplate
)

var ErrIndexInvalid = internal.ErrIndexInvalid

// NewService wires a static site generator with the supplied configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	return internal.NewService(cfg, deps)
}

// OutputPath returns the HTML file written for the item in itemDir.
func OutputPath(itemDir, buildDir, contentDir string) string {
	return internal.OutputPath(itemDir, buildDir, contentDir)
}

// Route returns the site relative URL of an output file.
func Route(outputPath, buildDir string) string {
	return internal.Route(outputPath, buildDir)
}

// LoadIndex decodes and validates an index.yaml listing declaration.
func LoadIndex(path string) (IndexConfig, error) {
	return internal.LoadIndex(path)
}
