package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-ssg/internal/i18n"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	translations := i18n.NewService(i18n.Config{Dir: filepath.Join("testdata", "translations"), DefaultLanguage: "en"})
	r, err := New(context.Background(), Config{
		TemplateDir:   filepath.Join("testdata", "templates"),
		Language:      "en",
		TextDirection: "ltr",
		Context:       map[string]any{"site_name": "Example"},
	}, translations)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestRendererPreloadsTemplates(t *testing.T) {
	r := newTestRenderer(t)

	got := strings.Join(r.Templates(), ",")
	if got != "base.html,blog.html,list.html,page.html,problem.html" {
		t.Fatalf("unexpected templates: %s", got)
	}
}

func TestRendererMergesDefaultContext(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render("page.html", map[string]any{
		"title": "About",
		"page":  map[string]any{"body": "<p>Hello</p>"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{`lang="en"`, `dir="ltr"`, "<title>About | Example</title>", "<main><p>Hello</p></main>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRendererCallContextOverridesDefaults(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render("page.html", map[string]any{
		"title":     "About",
		"site_name": "Override",
		"page":      map[string]any{"body": ""},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "About | Override") {
		t.Fatalf("expected per call context to win:\n%s", out)
	}
}

func TestRendererEscapesUnsafeValues(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.Render("page.html", map[string]any{
		"title": "<b>About</b>",
		"page":  map[string]any{"body": ""},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "<b>About</b>") {
		t.Fatalf("expected title to be escaped:\n%s", out)
	}
}

func TestRendererTranslatesPerLanguage(t *testing.T) {
	r := newTestRenderer(t)
	data := map[string]any{
		"title": "Post",
		"blog":  map[string]any{"author": "Ada", "body": ""},
	}

	out, err := r.Render("blog.html", data)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "Written by Ada") {
		t.Fatalf("expected english translation:\n%s", out)
	}

	fa, err := r.WithLanguage(context.Background(), "fa")
	if err != nil {
		t.Fatalf("WithLanguage: %v", err)
	}
	out, err = fa.Render("blog.html", data)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "نوشته Ada") || !strings.Contains(out, `lang="fa"`) {
		t.Fatalf("expected persian translation:\n%s", out)
	}
	if r.Language() != "en" {
		t.Fatalf("expected original renderer to keep its language, got %q", r.Language())
	}
}

func TestRendererWithoutTranslationsReturnsKeys(t *testing.T) {
	r, err := New(context.Background(), Config{TemplateDir: filepath.Join("testdata", "templates"), Language: "en"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := r.Render("blog.html", map[string]any{"blog": map[string]any{"author": "Ada"}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "written_by Ada") {
		t.Fatalf("expected untranslated key:\n%s", out)
	}
}

func TestRendererMissingCatalog(t *testing.T) {
	r := newTestRenderer(t)
	if _, err := r.WithLanguage(context.Background(), "de"); err == nil {
		t.Fatalf("expected error for missing catalog")
	}
}

func TestRendererUnknownTemplate(t *testing.T) {
	r := newTestRenderer(t)
	_, err := r.Render("missing.html", nil)
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestNewRejectsBrokenTemplate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.html"), []byte("{% for x in items %}never closed"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if _, err := New(context.Background(), Config{TemplateDir: dir}, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNewRequiresTemplateDir(t *testing.T) {
	if _, err := New(context.Background(), Config{}, nil); !errors.Is(err, ErrTemplateDirRequired) {
		t.Fatalf("expected ErrTemplateDirRequired, got %v", err)
	}
}
