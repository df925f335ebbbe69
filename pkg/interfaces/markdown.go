package interfaces

// MarkdownParser renders Markdown source to HTML. Implementations must be
// safe for concurrent use by build workers.
type MarkdownParser interface {
	Parse(markdown []byte) ([]byte, error)
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions tunes a single render.
type ParseOptions struct {
	// Extensions names goldmark extensions ("gfm", "footnote", ...). Empty
	// selects GFM with typographer.
	Extensions []string
	HardWraps  bool
	// SafeMode drops raw HTML, including the markup emitted for expandables,
	// cards and alerts.
	SafeMode bool
	// HighlightStyle names the chroma style for fenced code. Empty disables
	// highlighting.
	HighlightStyle string
	// RawMath keeps $...$ and $$...$$ spans verbatim for MathJax.
	RawMath bool
}
