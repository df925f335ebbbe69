package markdown

import (
	"bytes"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-ssg/pkg/interfaces"
)

// GoldmarkParser renders Markdown with goldmark after running the block
// preprocessors. It keeps no per-call state.
type GoldmarkParser struct {
	defaults interfaces.ParseOptions
}

var _ interfaces.MarkdownParser = (*GoldmarkParser)(nil)

func NewGoldmarkParser(defaults interfaces.ParseOptions) *GoldmarkParser {
	return &GoldmarkParser{defaults: defaults}
}

func (p *GoldmarkParser) Parse(markdown []byte) ([]byte, error) {
	return p.ParseWithOptions(markdown, p.defaults)
}

// ParseWithOptions expands directives, shields math spans when RawMath is
// set and converts the result.
func (p *GoldmarkParser) ParseWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	source := PreprocessAlerts(PreprocessCards(PreprocessExpandables(string(markdown))))

	stash := &mathStash{}
	if opts.RawMath {
		source, stash = protectMath(source)
	}

	var out bytes.Buffer
	if err := engineFor(opts).Convert([]byte(source), &out); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	return []byte(stash.restore(out.String())), nil
}

func engineFor(opts interfaces.ParseOptions) goldmark.Markdown {
	extenders := extensionsFor(opts.Extensions)
	if style := strings.TrimSpace(opts.HighlightStyle); style != "" {
		extenders = append(extenders, highlighting.NewHighlighting(
			highlighting.WithStyle(style),
			highlighting.WithFormatOptions(chromahtml.WithClasses(false)),
		))
	}

	var rendering []renderer.Option
	if opts.HardWraps {
		rendering = append(rendering, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendering = append(rendering, html.WithUnsafe())
	}

	return goldmark.New(
		goldmark.WithExtensions(extenders...),
		goldmark.WithRendererOptions(rendering...),
	)
}

var namedExtensions = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"typographer":   extension.Typographer,
	"smart":         extension.Typographer,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

// extensionsFor resolves extension names, skipping unknown names and
// duplicates.
func extensionsFor(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM, extension.Typographer}
	}
	var out []goldmark.Extender
	used := make(map[goldmark.Extender]bool, len(names))
	for _, name := range names {
		ext, ok := namedExtensions[strings.ToLower(strings.TrimSpace(name))]
		if !ok || used[ext] {
			continue
		}
		used[ext] = true
		out = append(out, ext)
	}
	return out
}
