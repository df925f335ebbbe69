package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	mathSpanPattern   = regexp.MustCompile(`\$\$[\s\S]+?\$\$|\$[^$\n]+?\$`)
	inlineCodePattern = regexp.MustCompile("`+[^`\n]*`+")
	mathEscaper       = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// mathStash holds math spans swapped out of the source so the Markdown
// renderer cannot emphasise or escape their contents.
type mathStash struct {
	spans []string
}

func (s *mathStash) placeholder(span string) string {
	s.spans = append(s.spans, span)
	return fmt.Sprintf("SSGMATHSPAN%dZ", len(s.spans)-1)
}

// restore puts every stashed span back into html. Only the characters that
// would break the markup are escaped; MathJax reads the rest as written.
func (s *mathStash) restore(html string) string {
	if len(s.spans) == 0 {
		return html
	}
	pairs := make([]string, 0, len(s.spans)*2)
	for i, span := range s.spans {
		pairs = append(pairs, fmt.Sprintf("SSGMATHSPAN%dZ", i), mathEscaper.Replace(span))
	}
	return strings.NewReplacer(pairs...).Replace(html)
}

// protectMath replaces $..$ and $$..$$ spans outside fenced and inline code
// with placeholders. Dollars escaped with a backslash are left in place.
func protectMath(markdown string) (string, *mathStash) {
	stash := &mathStash{}
	fences := &fenceTracker{}

	var out, text strings.Builder
	flush := func() {
		out.WriteString(protectText(text.String(), stash))
		text.Reset()
	}

	lines := strings.SplitAfter(markdown, "\n")
	for _, line := range lines {
		if fences.observe(strings.TrimSuffix(line, "\n")) {
			flush()
			out.WriteString(line)
			continue
		}
		text.WriteString(line)
	}
	flush()
	return out.String(), stash
}

func protectText(text string, stash *mathStash) string {
	if !strings.Contains(text, "$") {
		return text
	}
	var out strings.Builder
	last := 0
	for _, loc := range inlineCodePattern.FindAllStringIndex(text, -1) {
		out.WriteString(protectSpans(text[last:loc[0]], stash))
		out.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	out.WriteString(protectSpans(text[last:], stash))
	return out.String()
}

func protectSpans(text string, stash *mathStash) string {
	var out strings.Builder
	last := 0
	for _, loc := range mathSpanPattern.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && text[loc[0]-1] == '\\' {
			continue
		}
		out.WriteString(text[last:loc[0]])
		out.WriteString(stash.placeholder(text[loc[0]:loc[1]]))
		last = loc[1]
	}
	out.WriteString(text[last:])
	return out.String()
}
