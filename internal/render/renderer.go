package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-ssg/internal/i18n"
	"github.com/goliatone/go-ssg/pkg/interfaces"
)

var (
	ErrTemplateDirRequired = errors.New("render: template directory is required")
	ErrTemplateNotFound    = errors.New("render: template not found")
)

// Config carries the renderer inputs taken from the site config.
type Config struct {
	TemplateDir   string
	Language      string
	TextDirection string
	Context       map[string]any
}

// Renderer renders pongo2 templates loaded from a directory. All templates
// are parsed up front so syntax errors surface before any item is built.
type Renderer struct {
	set          *pongo2.TemplateSet
	templates    map[string]*pongo2.Template
	base         pongo2.Context
	translations *i18n.Service
	translator   interfaces.Translator
	language     string
}

var _ interfaces.TemplateRenderer = (*Renderer)(nil)

// New parses every *.html template below cfg.TemplateDir. translations may
// be nil, in which case translate() returns its key.
func New(ctx context.Context, cfg Config, translations *i18n.Service) (*Renderer, error) {
	if strings.TrimSpace(cfg.TemplateDir) == "" {
		return nil, ErrTemplateDirRequired
	}
	loader, err := pongo2.NewLocalFileSystemLoader(cfg.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("render: template loader: %w", err)
	}
	set := pongo2.NewSet("ssg", loader)

	templates := map[string]*pongo2.Template{}
	err = filepath.WalkDir(cfg.TemplateDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}
		rel, err := filepath.Rel(cfg.TemplateDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		tpl, err := set.FromFile(name)
		if err != nil {
			return fmt.Errorf("render: parse template %s: %w", name, err)
		}
		templates[name] = tpl
		return nil
	})
	if err != nil {
		return nil, err
	}

	base := pongo2.Context{}
	maps.Copy(base, cfg.Context)
	base["text_direction"] = cfg.TextDirection

	if translations == nil {
		translations = i18n.NewService(i18n.Config{DefaultLanguage: cfg.Language})
	}

	r := &Renderer{
		set:          set,
		templates:    templates,
		base:         base,
		translations: translations,
	}
	return r.WithLanguage(ctx, cfg.Language)
}

// WithLanguage returns a renderer sharing the parsed templates whose
// language variable and translate() function follow language.
func (r *Renderer) WithLanguage(ctx context.Context, language string) (*Renderer, error) {
	if strings.TrimSpace(language) == "" {
		language = r.translations.DefaultLanguage()
	}
	translator, err := r.translations.Translator(ctx, language)
	if err != nil {
		return nil, fmt.Errorf("render: translations for %q: %w", language, err)
	}
	clone := *r
	clone.translator = translator
	clone.language = language
	return &clone, nil
}

// Language returns the language this renderer translates to.
func (r *Renderer) Language() string {
	return r.language
}

// Templates lists the parsed template names.
func (r *Renderer) Templates() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render executes template name with data layered over the default context.
func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	ctx := pongo2.Context{}
	maps.Copy(ctx, r.base)
	ctx["language"] = r.language
	translator := r.translator
	ctx["translate"] = func(key string) string {
		return translator.Translate(key)
	}
	maps.Copy(ctx, data)

	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("render: execute template %s: %w", name, err)
	}
	return out, nil
}

// RenderLanguage renders name with translations for language.
func (r *Renderer) RenderLanguage(ctx context.Context, language, name string, data map[string]any) (string, error) {
	localized, err := r.WithLanguage(ctx, language)
	if err != nil {
		return "", err
	}
	return localized.Render(name, data)
}
