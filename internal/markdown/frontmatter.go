package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// ParseFrontMatter decodes the YAML (or TOML) front matter of source into
// meta and returns the Markdown body without delimiters. Sources without
// front matter are returned unchanged and meta is left untouched.
func ParseFrontMatter(source []byte, meta any) ([]byte, error) {
	body, err := frontmatter.Parse(bytes.NewReader(source), meta)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return body, nil
}

// StripFrontMatter returns the Markdown body of source, discarding any front
// matter block.
func StripFrontMatter(source []byte) ([]byte, error) {
	var discard map[string]any
	return ParseFrontMatter(source, &discard)
}

// HasFrontMatter reports whether source starts with a front matter block
// that decodes to at least one key.
func HasFrontMatter(source []byte) bool {
	var meta map[string]any
	if _, err := ParseFrontMatter(source, &meta); err != nil {
		return false
	}
	return len(meta) > 0
}
