package render

import (
	"context"
	"fmt"

	"github.com/goliatone/go-ssg/internal/content"
	"github.com/goliatone/go-ssg/internal/formatted"
	"github.com/goliatone/go-ssg/internal/logging"
	"github.com/goliatone/go-ssg/pkg/interfaces"
)

// TextConverter turns a formatted body into HTML.
type TextConverter interface {
	ToHTML(ctx context.Context, text formatted.Text) (string, error)
}

// ItemRenderer renders loaded content items through their kind's template.
type ItemRenderer struct {
	converter TextConverter
	templates *Renderer
	logger    interfaces.Logger
}

// NewItemRenderer wires the body converter and template renderer.
func NewItemRenderer(converter TextConverter, templates *Renderer, logger interfaces.Logger) *ItemRenderer {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &ItemRenderer{converter: converter, templates: templates, logger: logger}
}

// Render converts the item bodies and executes its template. The template
// language follows the item metadata, falling back to the site language.
func (r *ItemRenderer) Render(ctx context.Context, item *content.Content) (string, error) {
	data, err := r.Context(ctx, item)
	if err != nil {
		return "", err
	}
	templates, err := r.templates.WithLanguage(ctx, item.Metadata.Language)
	if err != nil {
		return "", err
	}
	return templates.Render(item.Kind().Template(), data)
}

// Context builds the template context for item. Statement and body failures
// are returned; solutions and hints that fail to convert are logged and left
// out.
func (r *ItemRenderer) Context(ctx context.Context, item *content.Content) (map[string]any, error) {
	meta := item.Metadata
	logger := logging.WithContentContext(logging.FromContext(ctx, r.logger), item.Dir, string(meta.Kind), meta.Language)

	switch meta.Kind {
	case content.KindProblem:
		statement, err := r.converter.ToHTML(ctx, item.Statement)
		if err != nil {
			return nil, fmt.Errorf("%s: statement: %w", item.Dir, err)
		}
		return map[string]any{
			"title": meta.Title,
			"problem": map[string]any{
				"title":     meta.Title,
				"id":        meta.ID,
				"tags":      meta.Tags,
				"timestamp": meta.Timestamp,
				"statement": statement,
				"solutions": r.convertAll(ctx, logger, "solution", item.Solutions),
				"hints":     r.convertAll(ctx, logger, "hint", item.Hints),
				"image":     meta.Image,
			},
		}, nil
	case content.KindBlog:
		body, err := r.converter.ToHTML(ctx, item.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: body: %w", item.Dir, err)
		}
		return map[string]any{
			"title": meta.Title,
			"blog": map[string]any{
				"title":     meta.Title,
				"id":        meta.ID,
				"tags":      meta.Tags,
				"timestamp": meta.Timestamp,
				"body":      body,
				"author":    meta.Author,
			},
		}, nil
	case content.KindPage:
		body, err := r.converter.ToHTML(ctx, item.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: body: %w", item.Dir, err)
		}
		return map[string]any{
			"title": meta.Title,
			"page": map[string]any{
				"title": meta.Title,
				"id":    meta.ID,
				"body":  body,
			},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", content.ErrUnknownContentType, meta.Kind)
	}
}

func (r *ItemRenderer) convertAll(ctx context.Context, logger interfaces.Logger, label string, texts []formatted.Text) []string {
	out := make([]string, 0, len(texts))
	for i, text := range texts {
		html, err := r.converter.ToHTML(ctx, text)
		if err != nil {
			logger.Warn("skipping "+label, "index", i, "error", err)
			continue
		}
		out = append(out, html)
	}
	return out
}
