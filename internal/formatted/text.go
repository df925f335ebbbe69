package formatted

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-ssg/internal/markdown"
	"github.com/goliatone/go-ssg/pkg/interfaces"
)

// ErrUnsupportedExtension is returned for body files that are neither .md nor .tex.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// ErrUnknownFormat is returned when a Text carries an unrecognised format.
var ErrUnknownFormat = errors.New("formatted: unknown text format")

// Format names the markup language of a Text.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatLatex    Format = "latex"
	FormatHTML     Format = "html"
)

// Text is a body fragment together with its markup language.
type Text struct {
	Format Format
	Source string
}

func Markdown(source string) Text { return Text{Format: FormatMarkdown, Source: source} }
func Latex(source string) Text    { return Text{Format: FormatLatex, Source: source} }
func HTML(source string) Text     { return Text{Format: FormatHTML, Source: source} }

// FormatForPath maps a file extension to a Format.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md":
		return FormatMarkdown, nil
	case ".tex":
		return FormatLatex, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedExtension, path)
	}
}

// ReadFile loads a body file. Markdown front matter is stripped.
func ReadFile(path string) (Text, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return Text{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Text{}, fmt.Errorf("read %s: %w", path, err)
	}
	if format == FormatMarkdown {
		body, err := markdown.StripFrontMatter(raw)
		if err != nil {
			return Text{}, fmt.Errorf("%s: %w", path, err)
		}
		raw = body
	}
	return Text{Format: format, Source: string(raw)}, nil
}

// LatexConverter converts LaTeX fragments to HTML.
type LatexConverter interface {
	ToHTML(ctx context.Context, source string) (string, error)
}

// Converter dispatches a Text to the renderer for its format.
type Converter struct {
	markdown interfaces.MarkdownParser
	latex    LatexConverter
}

// NewConverter wires the Markdown and LaTeX backends.
func NewConverter(md interfaces.MarkdownParser, latex LatexConverter) *Converter {
	return &Converter{markdown: md, latex: latex}
}

// ToHTML renders text. HTML passes through unchanged.
func (c *Converter) ToHTML(ctx context.Context, text Text) (string, error) {
	switch text.Format {
	case FormatHTML:
		return text.Source, nil
	case FormatMarkdown:
		if c.markdown == nil {
			return "", fmt.Errorf("%w: markdown renderer not configured", ErrUnknownFormat)
		}
		html, err := c.markdown.Parse([]byte(text.Source))
		if err != nil {
			return "", err
		}
		return string(html), nil
	case FormatLatex:
		if c.latex == nil {
			return "", fmt.Errorf("%w: latex converter not configured", ErrUnknownFormat)
		}
		return c.latex.ToHTML(ctx, text.Source)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, text.Format)
	}
}
