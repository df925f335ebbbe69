package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-ssg/internal/content"
	"github.com/goliatone/go-ssg/internal/logging"
	"github.com/goliatone/go-ssg/internal/render"
	"github.com/goliatone/go-ssg/pkg/interfaces"
)

var (
	errItemRendererRequired = errors.New("generator: item renderer is required")
	errListRendererRequired = errors.New("generator: list renderer is required")
)

// ListTemplate renders listing pages.
const ListTemplate = "list.html"

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	BuildContent(ctx context.Context, dir string) (*RenderedPage, error)
	BuildList(ctx context.Context, indexPath string) (*RenderedPage, error)
	BuildLists(ctx context.Context) (*BuildResult, error)
}

// Config captures the directories and toggles the generator runs with.
type Config struct {
	BuildDir        string
	ContentDir      string
	BaseURL         string
	Language        string
	Workers         int
	GenerateSitemap bool
	GenerateRobots  bool
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	DryRun bool
}

// RenderedPage describes one generated HTML file.
type RenderedPage struct {
	Source       string
	Output       string
	Route        string
	Kind         content.Kind
	Title        string
	Language     string
	Checksum     string
	LastModified time.Time
	Images       []string
	List         bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	RunID       string
	PagesBuilt  int
	ListsBuilt  int
	AssetsBuilt int
	Duration    time.Duration
	Rendered    []RenderedPage
	Errors      []error
	DryRun      bool
}

// ItemRenderer turns a loaded item into a full HTML document.
type ItemRenderer interface {
	Render(ctx context.Context, item *content.Content) (string, error)
}

// ListRenderer renders a template with translations for a language.
type ListRenderer interface {
	RenderLanguage(ctx context.Context, language, name string, data map[string]any) (string, error)
}

// Metrics receives build observations.
type Metrics interface {
	ItemRendered(kind string)
	ItemFailed(kind string)
	BuildCompleted(d time.Duration)
}

// Dependencies lists the collaborators required by the generator.
type Dependencies struct {
	Items   ItemRenderer
	Lists   ListRenderer
	Metrics Metrics
	Logger  interfaces.Logger
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	return &service{
		cfg:  cfg,
		deps: deps,
		now:  time.Now,
	}
}

type service struct {
	cfg  Config
	deps Dependencies
	now  func() time.Time
}

type buildOutcome struct {
	page RenderedPage
	err  error
}

func (s *service) BuildContent(ctx context.Context, dir string) (*RenderedPage, error) {
	page, err := s.buildContent(ctx, newArtifactWriter(false), dir, false)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *service) buildContent(ctx context.Context, writer artifactWriter, dir string, dryRun bool) (RenderedPage, error) {
	if s.deps.Items == nil {
		return RenderedPage{}, errItemRendererRequired
	}
	if err := ctx.Err(); err != nil {
		return RenderedPage{}, err
	}

	item, err := content.Load(dir)
	if err != nil {
		s.deps.Metrics.ItemFailed("unknown")
		return RenderedPage{}, fmt.Errorf("generator: load %s: %w", dir, err)
	}
	kind := string(item.Kind())
	logger := logging.WithContentContext(logging.FromContext(ctx, s.deps.Logger), dir, kind, item.Metadata.Language)

	html, err := s.deps.Items.Render(ctx, item)
	if err != nil {
		s.deps.Metrics.ItemFailed(kind)
		return RenderedPage{}, fmt.Errorf("generator: render %s: %w", dir, err)
	}

	images, err := render.NewImageProcessor(dir, s.cfg.ContentDir, s.cfg.BuildDir)
	if err != nil {
		s.deps.Metrics.ItemFailed(kind)
		return RenderedPage{}, fmt.Errorf("generator: images %s: %w", dir, err)
	}
	var copied []string
	if images.HasImages() && !dryRun {
		copied, err = images.CopyToBuildDir()
		if err != nil {
			s.deps.Metrics.ItemFailed(kind)
			return RenderedPage{}, fmt.Errorf("generator: images %s: %w", dir, err)
		}
		html = images.Rewrite(html)
	}

	output := OutputPath(dir, s.cfg.BuildDir, s.cfg.ContentDir)
	logger.Info(fmt.Sprintf("Generating %s", output))
	body := []byte(html)
	if err := writer.WriteFile(ctx, writeFileRequest{Path: output, Content: body, Category: categoryPage}); err != nil {
		s.deps.Metrics.ItemFailed(kind)
		return RenderedPage{}, err
	}
	s.deps.Metrics.ItemRendered(kind)

	return RenderedPage{
		Source:       dir,
		Output:       output,
		Route:        Route(output, s.cfg.BuildDir),
		Kind:         item.Kind(),
		Title:        item.Metadata.Title,
		Language:     item.Metadata.Language,
		Checksum:     computeHash(body),
		LastModified: parseTimestamp(item.Metadata.Timestamp),
		Images:       copied,
	}, nil
}

func (s *service) BuildList(ctx context.Context, indexPath string) (*RenderedPage, error) {
	page, err := s.buildList(ctx, newArtifactWriter(false), indexPath)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *service) buildList(ctx context.Context, writer artifactWriter, indexPath string) (RenderedPage, error) {
	if s.deps.Lists == nil {
		return RenderedPage{}, errListRendererRequired
	}
	if err := ctx.Err(); err != nil {
		return RenderedPage{}, err
	}

	index, err := LoadIndex(indexPath)
	if err != nil {
		s.deps.Metrics.ItemFailed("list")
		return RenderedPage{}, err
	}
	logger := logging.WithFields(logging.FromContext(ctx, s.deps.Logger), map[string]any{"index": indexPath, "content_type": string(index.ContentType)})

	items, err := FindItems(filepath.Dir(indexPath), index.ContentType, logger)
	if err != nil {
		s.deps.Metrics.ItemFailed("list")
		return RenderedPage{}, fmt.Errorf("generator: list %s: %w", indexPath, err)
	}
	SortItems(items)
	logger.Debug("found content items", "count", len(items))

	entries := make([]map[string]any, 0, len(items))
	var lastModified time.Time
	for _, item := range items {
		meta := item.Metadata
		meta.Slug = itemSlug(meta.Title)
		meta.Path = Route(OutputPath(item.Dir, s.cfg.BuildDir, s.cfg.ContentDir), s.cfg.BuildDir)
		entries = append(entries, listItemContext(meta))
		if ts := parseTimestamp(meta.Timestamp); ts.After(lastModified) {
			lastModified = ts
		}
	}

	language := index.Language
	if strings.TrimSpace(language) == "" {
		language = s.cfg.Language
	}
	html, err := s.deps.Lists.RenderLanguage(ctx, language, ListTemplate, map[string]any{
		"title":         index.Title,
		"content_items": entries,
	})
	if err != nil {
		s.deps.Metrics.ItemFailed("list")
		return RenderedPage{}, fmt.Errorf("generator: render list %s: %w", indexPath, err)
	}

	output := ListOutputPath(indexPath, s.cfg.BuildDir, s.cfg.ContentDir, index.Path)
	logger.Info(fmt.Sprintf("Generating %s", output))
	body := []byte(html)
	if err := writer.WriteFile(ctx, writeFileRequest{Path: output, Content: body, Category: categoryList}); err != nil {
		s.deps.Metrics.ItemFailed("list")
		return RenderedPage{}, err
	}
	s.deps.Metrics.ItemRendered("list")

	return RenderedPage{
		Source:       indexPath,
		Output:       output,
		Route:        Route(output, s.cfg.BuildDir),
		Kind:         index.ContentType,
		Title:        index.Title,
		Language:     language,
		Checksum:     computeHash(body),
		LastModified: lastModified,
		List:         true,
	}, nil
}

// siteInputs is the result of scanning the content tree.
type siteInputs struct {
	Items   []string
	Indexes []string
}

func (s *service) discover(ctx context.Context) (siteInputs, error) {
	var inputs siteInputs
	root := s.cfg.ContentDir
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch {
		case d.Name() == IndexFile:
			inputs.Indexes = append(inputs.Indexes, path)
		case content.MarksItem(path):
			dir := filepath.Dir(path)
			// Unreadable metadata is still queued so the failure is reported.
			if meta, err := content.LoadMetadata(dir); err == nil && !meta.Kind.Known() {
				s.deps.Logger.Debug("skipping directory without a known content type", "path", dir, "type", string(meta.Kind))
				return nil
			}
			inputs.Items = append(inputs.Items, dir)
		}
		return nil
	})
	if err != nil {
		return siteInputs{}, fmt.Errorf("generator: scan %s: %w", root, err)
	}
	return inputs, nil
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.NewString()
	ctx = logging.ContextWithFields(ctx, map[string]any{"build_id": runID})
	logger := logging.FromContext(ctx, s.deps.Logger)
	logger.Info("build started", "content_dir", s.cfg.ContentDir, "build_dir", s.cfg.BuildDir, "dry_run", opts.DryRun)

	inputs, err := s.discover(ctx)
	if err != nil {
		return nil, err
	}

	writer := newArtifactWriter(opts.DryRun)
	if err := writer.EnsureDir(ctx, s.cfg.BuildDir); err != nil {
		return nil, fmt.Errorf("generator: prepare %s: %w", s.cfg.BuildDir, err)
	}

	result := &BuildResult{RunID: runID, DryRun: opts.DryRun}
	var mu sync.Mutex
	collect := func(outcome buildOutcome) {
		mu.Lock()
		defer mu.Unlock()
		if outcome.err != nil {
			logger.Error("build output failed", "error", outcome.err)
			result.Errors = append(result.Errors, outcome.err)
			return
		}
		if outcome.page.List {
			result.ListsBuilt++
		} else {
			result.PagesBuilt++
			result.AssetsBuilt += len(outcome.page.Images)
		}
		result.Rendered = append(result.Rendered, outcome.page)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.effectiveWorkerCount())
	for _, dir := range inputs.Items {
		group.Go(func() error {
			page, err := s.buildContent(groupCtx, writer, dir, opts.DryRun)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			collect(buildOutcome{page: page, err: err})
			return nil
		})
	}
	for _, indexPath := range inputs.Indexes {
		group.Go(func() error {
			page, err := s.buildList(groupCtx, writer, indexPath)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			collect(buildOutcome{page: page, err: err})
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		result.Errors = append(result.Errors, err)
		result.Duration = time.Since(start)
		return result, err
	}

	sort.Slice(result.Rendered, func(i, j int) bool {
		return result.Rendered[i].Output < result.Rendered[j].Output
	})

	if s.cfg.GenerateSitemap {
		sitemap, err := buildSitemap(s.cfg.BaseURL, result.Rendered, s.now())
		if err == nil {
			err = writer.WriteFile(ctx, writeFileRequest{
				Path:     filepath.Join(s.cfg.BuildDir, "sitemap.xml"),
				Content:  sitemap,
				Category: categorySitemap,
			})
		}
		if err != nil {
			result.Errors = append(result.Errors, err)
		}
	}
	if s.cfg.GenerateRobots {
		if err := writer.WriteFile(ctx, writeFileRequest{
			Path:     filepath.Join(s.cfg.BuildDir, "robots.txt"),
			Content:  buildRobots(s.cfg.BaseURL, s.cfg.GenerateSitemap),
			Category: categoryRobots,
		}); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	result.Duration = time.Since(start)
	s.deps.Metrics.BuildCompleted(result.Duration)
	logger.Info("build finished",
		"pages", result.PagesBuilt,
		"lists", result.ListsBuilt,
		"assets", result.AssetsBuilt,
		"errors", len(result.Errors),
		"duration", result.Duration,
	)

	if len(result.Errors) > 0 {
		return result, errors.Join(result.Errors...)
	}
	return result, nil
}

// BuildLists regenerates every listing page below the content directory.
func (s *service) BuildLists(ctx context.Context) (*BuildResult, error) {
	start := time.Now()
	inputs, err := s.discover(ctx)
	if err != nil {
		return nil, err
	}
	writer := newArtifactWriter(false)
	result := &BuildResult{RunID: uuid.NewString()}
	ctx = logging.ContextWithFields(ctx, map[string]any{"build_id": result.RunID})
	for _, indexPath := range inputs.Indexes {
		page, err := s.buildList(ctx, writer, indexPath)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		result.ListsBuilt++
		result.Rendered = append(result.Rendered, page)
	}
	result.Duration = time.Since(start)
	if len(result.Errors) > 0 {
		return result, errors.Join(result.Errors...)
	}
	return result, nil
}

func (s *service) effectiveWorkerCount() int {
	if s.cfg.Workers > 0 {
		return s.cfg.Workers
	}
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}

type noopMetrics struct{}

func (noopMetrics) ItemRendered(string)          {}
func (noopMetrics) ItemFailed(string)            {}
func (noopMetrics) BuildCompleted(time.Duration) {}
