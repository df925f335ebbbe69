package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

// fenceTracker follows fenced code blocks line by line so block directives
// inside code samples are left alone.
type fenceTracker struct {
	marker string
}

// observe reports whether line belongs to a fenced code block, including the
// opening and closing fence lines.
func (f *fenceTracker) observe(line string) bool {
	trimmed := strings.TrimSpace(line)
	if f.marker != "" {
		if strings.HasPrefix(trimmed, f.marker) && strings.Trim(trimmed, f.marker[:1]) == "" {
			f.marker = ""
		}
		return true
	}
	for _, ch := range []string{"`", "~"} {
		if strings.HasPrefix(trimmed, strings.Repeat(ch, 3)) {
			f.marker = leadingRun(trimmed, ch[0])
			return true
		}
	}
	return false
}

func leadingRun(s string, ch byte) string {
	i := 0
	for i < len(s) && s[i] == ch {
		i++
	}
	return s[:i]
}

func splitLines(markdown string) []string {
	lines := strings.Split(markdown, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func isFenceClose(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), ":::")
}

// splitHeading separates "heading [link text]" into its two parts. Without
// brackets the whole line is the link text.
func splitHeading(line string) (string, string) {
	open := strings.Index(line, "[")
	closing := strings.Index(line, "]")
	if open >= 0 && closing > open {
		return line[:open], line[open+1 : closing]
	}
	return "", line
}

// PreprocessExpandables replaces ":::expandable" blocks with collapsible
// Bootstrap markup. The line after the opening fence holds the heading and
// the toggle link text; the body runs until the next ":::" line.
func PreprocessExpandables(markdown string) string {
	var out strings.Builder
	lines := splitLines(markdown)
	fences := &fenceTracker{}
	counter := 0

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if fences.observe(line) || !strings.HasPrefix(strings.TrimLeft(line, " \t"), ":::expandable") {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		headingLine := ""
		if i+1 < len(lines) {
			i++
			headingLine = strings.TrimSpace(lines[i])
		}
		counter++
		id := fmt.Sprintf("expand-%d", counter)
		heading, link := splitHeading(headingLine)

		fmt.Fprintf(&out, "%s<a class=\"expand-link\" data-bs-toggle=\"collapse\" href='#%s'>%s</a>\n\n", heading, id, link)
		fmt.Fprintf(&out, "<div class=\"collapse\" id=\"%s\">\n  <div class=\"card card-body\">\n", id)

		for i+1 < len(lines) {
			i++
			if isFenceClose(lines[i]) {
				break
			}
			out.WriteString(lines[i])
			out.WriteByte('\n')
		}
		out.WriteString("  </div>\n</div>\n\n")
	}
	return out.String()
}

var cardOpenPattern = regexp.MustCompile(`^\s*:::card(?:\[([^\]]*)\])?\s*$`)

// PreprocessCards turns ":::card[class]" blocks into a card div. The body is
// separated by blank lines so it is still parsed as Markdown.
func PreprocessCards(markdown string) string {
	var out strings.Builder
	lines := splitLines(markdown)
	fences := &fenceTracker{}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if fences.observe(line) {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}
		match := cardOpenPattern.FindStringSubmatch(line)
		if match == nil {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		class := "card"
		if extra := strings.TrimSpace(match[1]); extra != "" {
			class += " " + extra
		}
		fmt.Fprintf(&out, "<div class=\"%s\">\n\n", class)

		for i+1 < len(lines) {
			i++
			if isFenceClose(lines[i]) {
				break
			}
			out.WriteString(lines[i])
			out.WriteByte('\n')
		}
		out.WriteString("\n</div>\n\n")
	}
	return out.String()
}

var alertOpenPattern = regexp.MustCompile(`^\s*>\s*\[!(?i:(note|tip|important|warning|caution))\]\s*(.*)$`)

// PreprocessAlerts rewrites GitHub style alert blockquotes ("> [!NOTE]")
// into alert divs with a title paragraph. Text after the marker replaces the
// default title.
func PreprocessAlerts(markdown string) string {
	var out strings.Builder
	lines := splitLines(markdown)
	fences := &fenceTracker{}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if fences.observe(line) {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}
		match := alertOpenPattern.FindStringSubmatch(line)
		if match == nil {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		kind := strings.ToLower(match[1])
		title := strings.TrimSpace(match[2])
		if title == "" {
			title = strings.ToUpper(kind[:1]) + kind[1:]
		}
		fmt.Fprintf(&out, "<div class=\"markdown-alert markdown-alert-%s\">\n<p class=\"markdown-alert-title\">%s</p>\n\n", kind, title)

		for i+1 < len(lines) {
			next := strings.TrimLeft(lines[i+1], " \t")
			if !strings.HasPrefix(next, ">") {
				break
			}
			i++
			body := strings.TrimPrefix(next, ">")
			body = strings.TrimPrefix(body, " ")
			out.WriteString(body)
			out.WriteByte('\n')
		}
		out.WriteString("\n</div>\n\n")
	}
	return out.String()
}
