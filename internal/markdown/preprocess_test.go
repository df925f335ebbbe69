package markdown

import (
	"strings"
	"testing"
)

func TestPreprocessExpandables(t *testing.T) {
	input := `
:::expandable
**Heading** [Click to Expand]
Some text

More text
::::

:::expandable
**Heading 2** [Expand]
Some more
`
	out := PreprocessExpandables(input)

	for _, want := range []string{
		`**Heading** <a class="expand-link" data-bs-toggle="collapse" href='#expand-1'>Click to Expand</a>`,
		`**Heading 2** <a class="expand-link" data-bs-toggle="collapse" href='#expand-2'>Expand</a>`,
		`<div class="collapse" id="expand-1">`,
		`<div class="card card-body">`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if strings.Contains(out, ":::") {
		t.Fatalf("expected fences consumed, got %q", out)
	}
}

func TestPreprocessExpandablesWithoutBrackets(t *testing.T) {
	out := PreprocessExpandables(":::expandable\nShow me\nbody\n:::\n")

	if !strings.Contains(out, `<a class="expand-link" data-bs-toggle="collapse" href='#expand-1'>Show me</a>`) {
		t.Fatalf("expected whole line as link text, got %q", out)
	}
}

func TestPreprocessCardsWithoutClass(t *testing.T) {
	out := PreprocessCards(":::card\nbody\n:::\nafter\n")

	if !strings.HasPrefix(out, "<div class=\"card\">\n\nbody\n\n</div>\n\n") {
		t.Fatalf("unexpected card output %q", out)
	}
	if !strings.HasSuffix(out, "after\n") {
		t.Fatalf("expected trailing text preserved, got %q", out)
	}
}

func TestPreprocessAlertsCustomTitle(t *testing.T) {
	out := PreprocessAlerts("> [!warning] Mind the gap\n> body line\n\nnext\n")

	if !strings.Contains(out, `<div class="markdown-alert markdown-alert-warning">`) {
		t.Fatalf("expected warning alert, got %q", out)
	}
	if !strings.Contains(out, `<p class="markdown-alert-title">Mind the gap</p>`) {
		t.Fatalf("expected custom title, got %q", out)
	}
	if !strings.Contains(out, "\nbody line\n") {
		t.Fatalf("expected quote marker stripped, got %q", out)
	}
}

func TestPreprocessorsSkipFencedCode(t *testing.T) {
	input := "```\n:::card[x]\n> [!NOTE]\n:::expandable\n```\n"

	out := PreprocessAlerts(PreprocessCards(PreprocessExpandables(input)))
	if out != input {
		t.Fatalf("expected fenced code untouched, got %q", out)
	}
}

func TestProtectMathSkipsCode(t *testing.T) {
	source, stash := protectMath("`$a$` and $b$\n```\n$c$\n```\n\\$d$\n")

	if len(stash.spans) != 1 || stash.spans[0] != "$b$" {
		t.Fatalf("expected only $b$ stashed, got %#v", stash.spans)
	}
	if !strings.Contains(source, "`$a$`") || !strings.Contains(source, "$c$") || !strings.Contains(source, `\$d$`) {
		t.Fatalf("expected code and escaped dollars untouched, got %q", source)
	}
	if got := stash.restore(source); !strings.Contains(got, "and $b$") {
		t.Fatalf("expected restore to reinsert span, got %q", got)
	}
}
