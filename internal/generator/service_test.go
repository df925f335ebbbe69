package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-ssg/internal/content"
	"github.com/goliatone/go-ssg/pkg/interfaces"
)

func writeFixture(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

type siteFixture struct {
	ContentDir string
	BuildDir   string
}

func newSiteFixture(t *testing.T) siteFixture {
	t.Helper()
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")

	writeFixture(t, filepath.Join(contentDir, "blog", "index.yaml"), "title: Posts\ncontent-type: blog\n")
	writeFixture(t, filepath.Join(contentDir, "blog", "recursion", "metadata.yaml"),
		"title: On Recursion\ntype: blog\nauthor: Ada\ntimestamp: \"2025-03-06T12:00:00Z\"\n")
	writeFixture(t, filepath.Join(contentDir, "blog", "recursion", "body.md"), "# Recursion\n\n![chart](figs/chart.png)\n")
	writeFixture(t, filepath.Join(contentDir, "blog", "recursion", "figs", "chart.png"), "png")
	writeFixture(t, filepath.Join(contentDir, "blog", "older", "metadata.yaml"),
		"title: Older Post\ntype: blog\ntimestamp: \"2024-01-01T00:00:00Z\"\n")
	writeFixture(t, filepath.Join(contentDir, "blog", "older", "body.md"), "Older\n")
	writeFixture(t, filepath.Join(contentDir, "about", "metadata.yaml"), "title: About\ntype: page\n")
	writeFixture(t, filepath.Join(contentDir, "about", "content.md"), "About us\n")
	writeFixture(t, filepath.Join(contentDir, "drafts", "metadata.yaml"), "title: Draft\n")

	return siteFixture{ContentDir: contentDir, BuildDir: filepath.Join(root, "build")}
}

func (f siteFixture) config() Config {
	return Config{
		BuildDir:        f.BuildDir,
		ContentDir:      f.ContentDir,
		BaseURL:         "https://example.com/",
		Language:        "en",
		Workers:         2,
		GenerateSitemap: true,
		GenerateRobots:  true,
	}
}

type stubItemRenderer struct {
	mu      sync.Mutex
	calls   []string
	fail    map[string]bool
	delay   time.Duration
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (r *stubItemRenderer) Render(_ context.Context, item *content.Content) (string, error) {
	current := r.active.Add(1)
	defer r.active.Add(-1)
	for {
		seen := r.maxSeen.Load()
		if current <= seen || r.maxSeen.CompareAndSwap(seen, current) {
			break
		}
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	r.mu.Lock()
	r.calls = append(r.calls, item.Metadata.Title)
	r.mu.Unlock()
	if r.fail[item.Metadata.Title] {
		return "", errors.New("render failed")
	}
	return `<h1>` + item.Metadata.Title + `</h1><img src="figs/chart.png">`, nil
}

type listCall struct {
	Language string
	Name     string
	Data     map[string]any
}

type stubListRenderer struct {
	mu    sync.Mutex
	calls []listCall
}

func (r *stubListRenderer) RenderLanguage(_ context.Context, language, name string, data map[string]any) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, listCall{Language: language, Name: name, Data: data})
	r.mu.Unlock()

	var b strings.Builder
	b.WriteString("<ul>")
	for _, item := range data["content_items"].([]map[string]any) {
		b.WriteString(`<li><a href="` + item["path"].(string) + `">` + item["title"].(string) + `</a></li>`)
	}
	b.WriteString("</ul>")
	return b.String(), nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	rendered map[string]int
	failed   map[string]int
	builds   int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{rendered: map[string]int{}, failed: map[string]int{}}
}

func (m *recordingMetrics) ItemRendered(kind string) {
	m.mu.Lock()
	m.rendered[kind]++
	m.mu.Unlock()
}

func (m *recordingMetrics) ItemFailed(kind string) {
	m.mu.Lock()
	m.failed[kind]++
	m.mu.Unlock()
}

func (m *recordingMetrics) BuildCompleted(time.Duration) {
	m.mu.Lock()
	m.builds++
	m.mu.Unlock()
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestBuildContentWritesPageAndImages(t *testing.T) {
	fixture := newSiteFixture(t)
	svc := NewService(fixture.config(), Dependencies{Items: &stubItemRenderer{}})

	page, err := svc.BuildContent(context.Background(), filepath.Join(fixture.ContentDir, "blog", "recursion"))
	if err != nil {
		t.Fatalf("BuildContent: %v", err)
	}

	wantOutput := filepath.Join(fixture.BuildDir, "blog", "recursion.html")
	if page.Output != wantOutput || page.Route != "/blog/recursion.html" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Checksum == "" || page.LastModified.IsZero() {
		t.Fatalf("expected checksum and last modified, got %+v", page)
	}
	html := readOutput(t, wantOutput)
	if !strings.Contains(html, `src="/static/assets/blog/recursion/figs/chart.png"`) {
		t.Fatalf("expected rewritten image url:\n%s", html)
	}
	if _, err := os.Stat(filepath.Join(fixture.BuildDir, "static", "assets", "blog", "recursion", "figs", "chart.png")); err != nil {
		t.Fatalf("expected copied image: %v", err)
	}
}

func TestBuildContentUnknownType(t *testing.T) {
	fixture := newSiteFixture(t)
	svc := NewService(fixture.config(), Dependencies{Items: &stubItemRenderer{}})

	_, err := svc.BuildContent(context.Background(), filepath.Join(fixture.ContentDir, "drafts"))
	if !errors.Is(err, content.ErrUnknownContentType) {
		t.Fatalf("expected ErrUnknownContentType, got %v", err)
	}
}

func TestBuildListSortsAndLinksItems(t *testing.T) {
	fixture := newSiteFixture(t)
	lists := &stubListRenderer{}
	svc := NewService(fixture.config(), Dependencies{Lists: lists})

	page, err := svc.BuildList(context.Background(), filepath.Join(fixture.ContentDir, "blog", "index.yaml"))
	if err != nil {
		t.Fatalf("BuildList: %v", err)
	}
	if page.Output != filepath.Join(fixture.BuildDir, "blog", "index.html") || page.Route != "/blog/" {
		t.Fatalf("unexpected list page: %+v", page)
	}
	if len(lists.calls) != 1 {
		t.Fatalf("expected one render call, got %d", len(lists.calls))
	}
	call := lists.calls[0]
	if call.Name != ListTemplate || call.Language != "en" || call.Data["title"] != "Posts" {
		t.Fatalf("unexpected render call: %+v", call)
	}
	items := call.Data["content_items"].([]map[string]any)
	if len(items) != 2 || items[0]["title"] != "On Recursion" || items[1]["title"] != "Older Post" {
		t.Fatalf("unexpected items: %v", items)
	}
	if items[0]["slug"] != "on-recursion" || items[0]["path"] != "/blog/recursion.html" {
		t.Fatalf("unexpected derived fields: %v", items[0])
	}
	html := readOutput(t, page.Output)
	if !strings.Contains(html, `<a href="/blog/older.html">Older Post</a>`) {
		t.Fatalf("unexpected list html:\n%s", html)
	}
}

func TestBuildRendersSiteAndCollectsErrors(t *testing.T) {
	fixture := newSiteFixture(t)
	items := &stubItemRenderer{fail: map[string]bool{"Older Post": true}}
	metrics := newRecordingMetrics()
	svc := NewService(fixture.config(), Dependencies{
		Items:   items,
		Lists:   &stubListRenderer{},
		Metrics: metrics,
	})

	result, err := svc.Build(context.Background(), BuildOptions{})
	if err == nil {
		t.Fatalf("expected joined error for failing item")
	}
	if result == nil {
		t.Fatalf("expected result alongside error")
	}
	if result.RunID == "" {
		t.Fatalf("expected run id")
	}
	if result.PagesBuilt != 2 || result.ListsBuilt != 1 || result.AssetsBuilt != 1 {
		t.Fatalf("unexpected counts: pages=%d lists=%d assets=%d", result.PagesBuilt, result.ListsBuilt, result.AssetsBuilt)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	if len(items.calls) != 3 {
		t.Fatalf("expected draft without type to be skipped, got calls %v", items.calls)
	}
	if metrics.rendered["blog"] != 1 || metrics.rendered["page"] != 1 || metrics.rendered["list"] != 1 || metrics.failed["blog"] != 1 {
		t.Fatalf("unexpected metrics: rendered=%v failed=%v", metrics.rendered, metrics.failed)
	}
	if metrics.builds != 1 {
		t.Fatalf("expected build duration to be recorded")
	}

	sitemap := readOutput(t, filepath.Join(fixture.BuildDir, "sitemap.xml"))
	for _, loc := range []string{"https://example.com/about.html", "https://example.com/blog/", "https://example.com/blog/recursion.html"} {
		if !strings.Contains(sitemap, "<loc>"+loc+"</loc>") {
			t.Fatalf("expected %s in sitemap:\n%s", loc, sitemap)
		}
	}
	if strings.Contains(sitemap, "older.html") {
		t.Fatalf("failed page must not be in sitemap:\n%s", sitemap)
	}
	robots := readOutput(t, filepath.Join(fixture.BuildDir, "robots.txt"))
	if !strings.Contains(robots, "Sitemap: https://example.com/sitemap.xml") {
		t.Fatalf("unexpected robots.txt:\n%s", robots)
	}
}

func TestBuildDryRunWritesNothing(t *testing.T) {
	fixture := newSiteFixture(t)
	svc := NewService(fixture.config(), Dependencies{
		Items: &stubItemRenderer{},
		Lists: &stubListRenderer{},
	})

	result, err := svc.Build(context.Background(), BuildOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !result.DryRun || result.PagesBuilt != 3 || len(result.Rendered) != 4 {
		t.Fatalf("unexpected dry run result: %+v", result)
	}
	if _, err := os.Stat(fixture.BuildDir); !os.IsNotExist(err) {
		t.Fatalf("expected build dir to be untouched, got %v", err)
	}
}

func TestBuildUsesWorkerPool(t *testing.T) {
	fixture := newSiteFixture(t)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		dir := filepath.Join(fixture.ContentDir, "pages", name)
		writeFixture(t, filepath.Join(dir, "metadata.yaml"), "title: Page "+name+"\ntype: page\n")
		writeFixture(t, filepath.Join(dir, "content.md"), name)
	}
	items := &stubItemRenderer{delay: 20 * time.Millisecond}
	cfg := fixture.config()
	cfg.Workers = 2
	svc := NewService(cfg, Dependencies{Items: items, Lists: &stubListRenderer{}})

	if _, err := svc.Build(context.Background(), BuildOptions{DryRun: true}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if peak := items.maxSeen.Load(); peak > 2 || peak < 1 {
		t.Fatalf("expected at most 2 concurrent renders, saw %d", peak)
	}
}

func TestBuildHonoursCancelledContext(t *testing.T) {
	fixture := newSiteFixture(t)
	svc := NewService(fixture.config(), Dependencies{Items: &stubItemRenderer{}, Lists: &stubListRenderer{}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Build(ctx, BuildOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuildListsRegeneratesListings(t *testing.T) {
	fixture := newSiteFixture(t)
	lists := &stubListRenderer{}
	svc := NewService(fixture.config(), Dependencies{Lists: lists})

	result, err := svc.BuildLists(context.Background())
	if err != nil {
		t.Fatalf("BuildLists: %v", err)
	}
	if result.ListsBuilt != 1 || len(lists.calls) != 1 {
		t.Fatalf("expected one listing, got %+v", result)
	}
}

type fieldsEntry struct {
	msg    string
	fields map[string]any
}

type fieldsLogger struct {
	mu      *sync.Mutex
	entries *[]fieldsEntry
	fields  map[string]any
}

func newFieldsLogger() *fieldsLogger {
	return &fieldsLogger{mu: &sync.Mutex{}, entries: &[]fieldsEntry{}}
}

func (l *fieldsLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, fieldsEntry{msg: msg, fields: l.fields})
}

func (l *fieldsLogger) Trace(msg string, _ ...any) { l.record(msg) }
func (l *fieldsLogger) Debug(msg string, _ ...any) { l.record(msg) }
func (l *fieldsLogger) Info(msg string, _ ...any)  { l.record(msg) }
func (l *fieldsLogger) Warn(msg string, _ ...any)  { l.record(msg) }
func (l *fieldsLogger) Error(msg string, _ ...any) { l.record(msg) }
func (l *fieldsLogger) Fatal(msg string, _ ...any) { l.record(msg) }

func (l *fieldsLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := map[string]any{}
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &fieldsLogger{mu: l.mu, entries: l.entries, fields: merged}
}

func (l *fieldsLogger) WithContext(context.Context) interfaces.Logger { return l }

func TestBuildTagsItemLogsWithRunID(t *testing.T) {
	fixture := newSiteFixture(t)
	logger := newFieldsLogger()
	svc := NewService(fixture.config(), Dependencies{
		Items:  &stubItemRenderer{},
		Lists:  &stubListRenderer{},
		Logger: logger,
	})

	result, err := svc.Build(context.Background(), BuildOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	generating := 0
	for _, entry := range *logger.entries {
		if !strings.HasPrefix(entry.msg, "Generating ") {
			continue
		}
		generating++
		if entry.fields["build_id"] != result.RunID {
			t.Fatalf("expected build_id %s on %q, got %v", result.RunID, entry.msg, entry.fields)
		}
	}
	if generating != 4 {
		t.Fatalf("expected 4 generating entries, got %d", generating)
	}
}

func TestBuildDiscoversFrontMatterItems(t *testing.T) {
	fixture := newSiteFixture(t)
	writeFixture(t, filepath.Join(fixture.ContentDir, "blog", "notes", "body.md"),
		"---\ntitle: Front Matter Notes\ntype: blog\n---\nNotes\n")
	items := &stubItemRenderer{}
	svc := NewService(fixture.config(), Dependencies{Items: items, Lists: &stubListRenderer{}})

	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.PagesBuilt != 4 {
		t.Fatalf("expected four pages, got %d (calls %v)", result.PagesBuilt, items.calls)
	}
	if _, err := os.Stat(filepath.Join(fixture.BuildDir, "blog", "notes.html")); err != nil {
		t.Fatalf("expected front matter item output: %v", err)
	}
}
