package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-ssg/internal/content"
	"github.com/goliatone/go-ssg/internal/generator"
	"github.com/goliatone/go-ssg/internal/logging"
	"github.com/goliatone/go-ssg/pkg/interfaces"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before rebuilding.
const DefaultDebounce = 200 * time.Millisecond

var ErrContentDirRequired = errors.New("watch: content directory is required")

// Target is the part of the generator the watcher drives.
type Target interface {
	Build(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error)
	BuildContent(ctx context.Context, dir string) (*generator.RenderedPage, error)
	BuildLists(ctx context.Context) (*generator.BuildResult, error)
}

// Reloader returns a fresh target after templates or translations change.
type Reloader func(ctx context.Context) (Target, error)

// Config lists the trees to watch.
type Config struct {
	ContentDir     string
	TemplateDir    string
	TranslationDir string
	Debounce       time.Duration
}

// Watcher rebuilds outputs affected by file changes.
type Watcher struct {
	cfg    Config
	target Target
	reload Reloader
	logger interfaces.Logger

	// rebuilt is signalled after every rebuild; tests use it to synchronise.
	rebuilt chan Plan
}

// New constructs a watcher. reload may be nil, in which case site wide
// changes rebuild with the existing target.
func New(cfg Config, target Target, reload Reloader, logger interfaces.Logger) (*Watcher, error) {
	if strings.TrimSpace(cfg.ContentDir) == "" {
		return nil, ErrContentDirRequired
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Watcher{cfg: cfg, target: target, reload: reload, logger: logger}, nil
}

// Plan is the work derived from a batch of changed paths.
type Plan struct {
	Site  bool
	Items []string
	Lists bool
}

// Empty reports whether the plan has nothing to rebuild.
func (p Plan) Empty() bool {
	return !p.Site && !p.Lists && len(p.Items) == 0
}

// PlanFor classifies changed paths. Template and translation changes
// rebuild the whole site. A change inside an item directory rebuilds that
// item and every listing; any other content change rebuilds listings only.
func PlanFor(cfg Config, paths []string) Plan {
	var plan Plan
	items := map[string]struct{}{}
	for _, path := range paths {
		if within(path, cfg.TemplateDir) || within(path, cfg.TranslationDir) {
			return Plan{Site: true}
		}
		if !within(path, cfg.ContentDir) {
			continue
		}
		plan.Lists = true
		if dir, ok := itemDirFor(path, cfg.ContentDir); ok {
			items[dir] = struct{}{}
		}
	}
	for dir := range items {
		plan.Items = append(plan.Items, dir)
	}
	sort.Strings(plan.Items)
	return plan
}

// itemDirFor walks up from path to the closest item directory without
// leaving root.
func itemDirFor(path, root string) (string, bool) {
	dir := path
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		dir = filepath.Dir(path)
	}
	root = filepath.Clean(root)
	for {
		if content.IsItemDir(dir) {
			return dir, true
		}
		if filepath.Clean(dir) == root {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir || !within(parent, root) {
			return "", false
		}
		dir = parent
	}
}

func within(path, root string) bool {
	if strings.TrimSpace(root) == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fsw.Close()

	for _, root := range []string{w.cfg.ContentDir, w.cfg.TemplateDir, w.cfg.TranslationDir} {
		if strings.TrimSpace(root) == "" {
			continue
		}
		if err := addRecursive(fsw, root); err != nil {
			return err
		}
	}
	w.logger.Info("watching for changes", "content_dir", w.cfg.ContentDir, "template_dir", w.cfg.TemplateDir)

	pending := map[string]struct{}{}
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(fsw, event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			w.logger.Debug("file changed", "path", event.Name, "op", event.Op.String())
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
			} else {
				timer.Reset(w.cfg.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			pending = map[string]struct{}{}
			w.apply(ctx, PlanFor(w.cfg, paths))

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) apply(ctx context.Context, plan Plan) {
	if plan.Empty() {
		return
	}
	defer func() {
		if w.rebuilt != nil {
			w.rebuilt <- plan
		}
	}()

	if plan.Site {
		if w.reload != nil {
			target, err := w.reload(ctx)
			if err != nil {
				w.logger.Error("reload failed, keeping previous templates", "error", err)
				return
			}
			w.target = target
		}
		if _, err := w.target.Build(ctx, generator.BuildOptions{}); err != nil {
			w.logger.Error("site rebuild finished with errors", "error", err)
		}
		return
	}

	for _, dir := range plan.Items {
		if _, err := w.target.BuildContent(ctx, dir); err != nil {
			w.logger.Error("item rebuild failed", "path", dir, "error", err)
		}
	}
	if plan.Lists {
		if _, err := w.target.BuildLists(ctx); err != nil {
			w.logger.Error("listing rebuild failed", "error", err)
		}
	}
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}
