package latex

import (
	"errors"
	"strings"
	"testing"
)

var theoremFixture = []Theorem{
	{Name: "theorem", Label: "Theorem", Numbered: true},
	{Name: "lemma", Label: "Lemma", Numbered: true},
	{Name: "remark", Label: "Remark", Numbered: false},
}

func TestEnvFilterNumbersTheoremsWithSharedCounter(t *testing.T) {
	filter := NewEnvFilter(theoremFixture)

	out, err := filter.Preprocess(`\begin{theorem}\label{th:a}A\end{theorem}
\begin{remark}R\end{remark}
\begin{lemma}\label{lm:b}B\end{lemma}
See \ref{th:a} and \ref{lm:b}.`)
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}

	for _, want := range []string{
		`\textbf{Theorem 1}. \label{th:a}A` + "\n",
		`\textbf{Remark}. R` + "\n",
		`\textbf{Lemma 2}. \label{lm:b}B` + "\n",
		`See \href{#th:a}{1} and \href{#lm:b}{2}.`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestEnvFilterWrapsEquations(t *testing.T) {
	filter := NewEnvFilter(nil)

	out, err := filter.Preprocess(`\begin{equation}\label{eq:one}x\end{equation} by \ref{eq:one}`)
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	want := `$$\begin{equation}\label{eq:one}x\end{equation}$$ by (EQREFBEGIN)eq:one(EQREFEND)`
	if out != want {
		t.Fatalf("Preprocess = %q, want %q", out, want)
	}

	html := filter.Postprocess(`<p><span class="math display">\[` + out + `\]</span></p>`)
	if !strings.Contains(html, `\[\begin{equation}\label{eq:one}x\end{equation} by \ref{eq:one}\]`) {
		t.Fatalf("expected equation unwrapped, got %q", html)
	}
}

func TestEnvFilterDropsExtraParameters(t *testing.T) {
	filter := NewEnvFilter(nil)

	cases := map[string]string{
		`\begin{problem}{82/figs/pic.jpeg}{Game of Pebbles} We have a problem \end{problem}`: `\begin{problem} We have a problem \end{problem}`,
		`\begin{problem}{}{A Problem}Some text\end{problem}`:                                  `\begin{problem}Some text\end{problem}`,
		`\begin{solution}{x}Answer\end{solution}`:                                             `\begin{solution}Answer\end{solution}`,
	}
	for input, want := range cases {
		out, err := filter.Preprocess(input)
		if err != nil {
			t.Fatalf("Preprocess(%q): %v", input, err)
		}
		if out != want {
			t.Fatalf("Preprocess(%q) = %q, want %q", input, out, want)
		}
	}
}

func TestEnvFilterKeepsUnknownEnvironments(t *testing.T) {
	input := `\begin{tabular}{|c|c|}A & B\end{tabular} \ref{missing}`

	out, err := NewEnvFilter(nil).Preprocess(input)
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if out != input {
		t.Fatalf("expected input unchanged, got %q", out)
	}
}

func TestEnvFilterRejectsMismatchedTags(t *testing.T) {
	_, err := NewEnvFilter(nil).Preprocess(`\begin{itemize}\end{enumerate}`)
	if !errors.Is(err, ErrMismatchedEnvironment) {
		t.Fatalf("expected ErrMismatchedEnvironment, got %v", err)
	}

	_, err = NewEnvFilter(nil).Preprocess(`\end{document}\end{document}`)
	if !errors.Is(err, ErrMismatchedEnvironment) {
		t.Fatalf("expected ErrMismatchedEnvironment for unbalanced end, got %v", err)
	}
}

func TestEnvFilterCleansTheoremLabelSpans(t *testing.T) {
	filter := NewEnvFilter(theoremFixture)
	if _, err := filter.Preprocess(`\begin{theorem}\label{lm:1}X\end{theorem}`); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}

	html := filter.Postprocess(`<span id="lm:1" label="lm:1">[lm:1]</span> <span id="other" label="other">[other]</span>`)
	if !strings.Contains(html, `<span id="lm:1" label="lm:1"></span>`) {
		t.Fatalf("expected theorem label span emptied, got %q", html)
	}
	if !strings.Contains(html, `<span id="other" label="other">[other]</span>`) {
		t.Fatalf("expected unrelated span untouched, got %q", html)
	}
}

func TestEnvFilterAllowsLabelAfterDocumentEnd(t *testing.T) {
	filter := NewEnvFilter(nil)

	out, err := filter.Preprocess(`text \end{document} \label{x}`)
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if !strings.Contains(out, `\label{x}`) {
		t.Fatalf("expected label to pass through, got %q", out)
	}
}
