package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-ssg/internal/generator"
)

func mkfile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newTree(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()
	cfg := Config{
		ContentDir:     filepath.Join(root, "content"),
		TemplateDir:    filepath.Join(root, "templates"),
		TranslationDir: filepath.Join(root, "translations"),
		Debounce:       50 * time.Millisecond,
	}
	mkfile(t, filepath.Join(cfg.ContentDir, "blog", "index.yaml"), "title: Posts\ncontent-type: blog\n")
	mkfile(t, filepath.Join(cfg.ContentDir, "blog", "post", "metadata.yaml"), "title: Post\ntype: blog\n")
	mkfile(t, filepath.Join(cfg.ContentDir, "blog", "post", "body.md"), "hello")
	mkfile(t, filepath.Join(cfg.ContentDir, "blog", "post", "figs", "a.png"), "png")
	mkfile(t, filepath.Join(cfg.TemplateDir, "blog.html"), "{{ blog.body|safe }}")
	mkfile(t, filepath.Join(cfg.TranslationDir, "en.csv"), "a,b\n")
	return cfg
}

func TestPlanForItemChange(t *testing.T) {
	cfg := newTree(t)
	post := filepath.Join(cfg.ContentDir, "blog", "post")

	plan := PlanFor(cfg, []string{
		filepath.Join(post, "body.md"),
		filepath.Join(post, "figs", "a.png"),
	})
	if plan.Site || !plan.Lists || len(plan.Items) != 1 || plan.Items[0] != post {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestPlanForIndexChangeRebuildsListsOnly(t *testing.T) {
	cfg := newTree(t)

	plan := PlanFor(cfg, []string{filepath.Join(cfg.ContentDir, "blog", "index.yaml")})
	if plan.Site || !plan.Lists || len(plan.Items) != 0 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestPlanForTemplateOrTranslationRebuildsSite(t *testing.T) {
	cfg := newTree(t)

	for _, path := range []string{
		filepath.Join(cfg.TemplateDir, "blog.html"),
		filepath.Join(cfg.TranslationDir, "en.csv"),
	} {
		plan := PlanFor(cfg, []string{filepath.Join(cfg.ContentDir, "blog", "post", "body.md"), path})
		if !plan.Site {
			t.Fatalf("expected site rebuild for %s, got %+v", path, plan)
		}
	}
}

func TestPlanForIgnoresUnrelatedPaths(t *testing.T) {
	cfg := newTree(t)
	if plan := PlanFor(cfg, []string{filepath.Join(os.TempDir(), "elsewhere.txt")}); !plan.Empty() {
		t.Fatalf("expected empty plan, got %+v", plan)
	}
}

type recordingTarget struct {
	mu      sync.Mutex
	builds  int
	content []string
	lists   int
}

func (r *recordingTarget) Build(context.Context, generator.BuildOptions) (*generator.BuildResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builds++
	return &generator.BuildResult{}, nil
}

func (r *recordingTarget) BuildContent(_ context.Context, dir string) (*generator.RenderedPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = append(r.content, dir)
	return &generator.RenderedPage{}, nil
}

func (r *recordingTarget) BuildLists(context.Context) (*generator.BuildResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	return &generator.BuildResult{}, nil
}

func waitForPlan(t *testing.T, ch <-chan Plan) Plan {
	t.Helper()
	select {
	case plan := <-ch:
		return plan
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rebuild")
		return Plan{}
	}
}

func TestRunRebuildsChangedItem(t *testing.T) {
	cfg := newTree(t)
	target := &recordingTarget{}
	reloaded := &recordingTarget{}
	w, err := New(cfg, target, func(context.Context) (Target, error) { return reloaded, nil }, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.rebuilt = make(chan Plan, 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher time to register the tree.
	time.Sleep(100 * time.Millisecond)

	post := filepath.Join(cfg.ContentDir, "blog", "post")
	mkfile(t, filepath.Join(post, "body.md"), "changed")
	plan := waitForPlan(t, w.rebuilt)
	if plan.Site || len(plan.Items) != 1 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	target.mu.Lock()
	if len(target.content) == 0 || target.content[0] != post || target.lists == 0 {
		t.Fatalf("unexpected target calls: content=%v lists=%d", target.content, target.lists)
	}
	target.mu.Unlock()

	mkfile(t, filepath.Join(cfg.TemplateDir, "blog.html"), "<main>{{ blog.body|safe }}</main>")
	for plan = waitForPlan(t, w.rebuilt); !plan.Site; plan = waitForPlan(t, w.rebuilt) {
	}
	reloaded.mu.Lock()
	defer reloaded.mu.Unlock()
	if reloaded.builds != 1 {
		t.Fatalf("expected reloaded target to build once, got %d", reloaded.builds)
	}
}

func TestNewRequiresContentDir(t *testing.T) {
	if _, err := New(Config{}, &recordingTarget{}, nil, nil); err != ErrContentDirRequired {
		t.Fatalf("expected ErrContentDirRequired, got %v", err)
	}
}
