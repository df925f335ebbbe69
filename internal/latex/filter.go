package latex

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMismatchedEnvironment is returned when \end does not close the most
// recently opened environment.
var ErrMismatchedEnvironment = errors.New("latex: mismatched environment tags")

// Theorem describes a theorem-like environment such as "lemma". Numbered
// theorems share a single counter per document.
type Theorem struct {
	Name     string
	Label    string
	Numbered bool
}

// Heading returns the bold heading text for the theorem at counter.
func (t Theorem) Heading(counter int) string {
	if t.Numbered {
		return fmt.Sprintf("%s %d", t.Label, counter)
	}
	return t.Label
}

const (
	equationEnv      = "equation"
	equationRefOpen  = "(EQREFBEGIN)"
	equationRefClose = "(EQREFEND)"
)

var (
	tokenPattern = regexp.MustCompile(`\\label\{[\w:-]+\}|\\ref\{[\w:-]+\}|\\begin\{[^}]+\}(?:\{[^}]*\})*|\\end\{\w+\}`)
	labelSpan    = regexp.MustCompile(`<span id="([\w:-]+)" label="([\w:-]+)">\[[\w:-]+\]</span>`)
)

// EnvFilter rewrites LaTeX environments that pandoc does not understand
// before conversion, and tidies the generated HTML afterwards. A filter keeps
// the labels it saw during Preprocess, so use one filter per document.
type EnvFilter struct {
	theorems       map[string]Theorem
	theoremLabels  map[string]string
	equationLabels map[string]struct{}
}

// NewEnvFilter builds a filter for the configured theorem environments.
func NewEnvFilter(theorems []Theorem) *EnvFilter {
	byName := make(map[string]Theorem, len(theorems))
	for _, theorem := range theorems {
		byName[theorem.Name] = theorem
	}
	return &EnvFilter{
		theorems:       byName,
		theoremLabels:  map[string]string{},
		equationLabels: map[string]struct{}{},
	}
}

// Preprocess numbers theorems, wraps equations in display math so pandoc
// keeps them intact, resolves references and drops extra parameters from
// problem and solution environments.
func (f *EnvFilter) Preprocess(input string) (string, error) {
	var out strings.Builder
	counter := 0
	processed := 0
	stack := []string{"document"}

	for _, loc := range tokenPattern.FindAllStringIndex(input, -1) {
		token := input[loc[0]:loc[1]]
		out.WriteString(input[processed:loc[0]])
		processed = loc[1]

		switch {
		case strings.HasPrefix(token, `\begin`):
			name := environmentName(token, `\begin{`)
			stack = append(stack, name)
			if theorem, ok := f.theorems[name]; ok {
				if theorem.Numbered {
					counter++
				}
				fmt.Fprintf(&out, `\textbf{%s}. `, theorem.Heading(counter))
			} else if name == equationEnv {
				out.WriteString(`$$\begin{equation}`)
			} else if name == "problem" || name == "solution" {
				fmt.Fprintf(&out, `\begin{%s}`, name)
			} else {
				out.WriteString(token)
			}

		case strings.HasPrefix(token, `\label`):
			label := environmentName(token, `\label{`)
			current := ""
			if len(stack) > 0 {
				current = stack[len(stack)-1]
			}
			if _, ok := f.theorems[current]; ok {
				f.theoremLabels[label] = strconv.Itoa(counter)
			} else if current == equationEnv {
				f.equationLabels[label] = struct{}{}
			}
			out.WriteString(token)

		case strings.HasPrefix(token, `\ref`):
			label := environmentName(token, `\ref{`)
			if number, ok := f.theoremLabels[label]; ok {
				fmt.Fprintf(&out, `\href{#%s}{%s}`, label, number)
			} else if _, ok := f.equationLabels[label]; ok {
				out.WriteString(equationRefOpen + label + equationRefClose)
			} else {
				out.WriteString(token)
			}

		case strings.HasPrefix(token, `\end`):
			name := environmentName(token, `\end{`)
			if len(stack) == 0 {
				return "", fmt.Errorf("%w: unexpected \\end{%s}", ErrMismatchedEnvironment, name)
			}
			last := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if name != last {
				return "", fmt.Errorf("%w: \\begin{%s} and \\end{%s}", ErrMismatchedEnvironment, last, name)
			}
			if _, ok := f.theorems[name]; ok {
				out.WriteString("\n")
			} else if name == equationEnv {
				out.WriteString(`\end{equation}$$`)
			} else {
				out.WriteString(token)
			}
		}
	}
	out.WriteString(input[processed:])
	return out.String(), nil
}

// Postprocess empties the bracketed label text pandoc emits for theorem
// anchors and unwraps equations and equation references.
func (f *EnvFilter) Postprocess(html string) string {
	html = labelSpan.ReplaceAllStringFunc(html, func(span string) string {
		groups := labelSpan.FindStringSubmatch(span)
		if _, ok := f.theoremLabels[groups[1]]; !ok {
			return span
		}
		return fmt.Sprintf(`<span id="%s" label="%s"></span>`, groups[1], groups[2])
	})
	return strings.NewReplacer(
		equationRefOpen, `\ref{`,
		equationRefClose, "}",
		`$$\begin{equation}`, `\begin{equation}`,
		`\end{equation}$$`, `\end{equation}`,
	).Replace(html)
}

// environmentName returns the first braced argument after prefix.
func environmentName(token, prefix string) string {
	rest := strings.TrimPrefix(token, prefix)
	if idx := strings.Index(rest, "}"); idx >= 0 {
		return rest[:idx]
	}
	return rest
}
