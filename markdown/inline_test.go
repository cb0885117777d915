package markdown

import "testing"

func TestRenderInline(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"escape", "a <b>", "a &lt;b&gt;"},
		{"bold", "**bold**", `<strong class="markdown-strong">bold</strong>`},
		{"italic", "*it*", `<em class="markdown-em">it</em>`},
		{"bold with italic", "**a *b* c**", `<strong class="markdown-strong">a <em class="markdown-em">b</em> c</strong>`},
		{"unclosed bold", "**unclosed", "**unclosed"},
		{"code span", "`x`", `<code class="markdown-inline-code">x</code>`},
		{"code span protects bold", "`a**b**`", `<code class="markdown-inline-code">a**b**</code>`},
		{"code span escapes", "`<tag>`", `<code class="markdown-inline-code">&lt;tag&gt;</code>`},
		{
			"link",
			"[site](https://example.com?a=1&b=2)",
			`<a href="https://example.com?a=1&amp;b=2" class="markdown-link" target="_blank" rel="noopener noreferrer">site</a>`,
		},
		{
			"code span as link target",
			"see [docs](`cmd arg`)",
			"see [docs](<code class=\"markdown-inline-code\">cmd arg</code>)",
		},
		{
			"code span in link text",
			"[`x`](https://a.io)",
			`<a href="https://a.io" class="markdown-link" target="_blank" rel="noopener noreferrer"><code class="markdown-inline-code">x</code></a>`,
		},
		{
			"script link",
			"[x](javascript:alert(1))",
			`<a href="#" class="markdown-link" target="_blank" rel="noopener noreferrer">x</a>)`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderInline(tt.in); got != tt.want {
				t.Fatalf("renderInline(%q):\n got %q\nwant %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSafeHref(t *testing.T) {
	for _, href := range []string{"javascript:x", " JavaScript:x", "vbscript:x", "data:text/html,x"} {
		if got := safeHref(href); got != "#" {
			t.Errorf("safeHref(%q) = %q", href, got)
		}
	}
	if got := safeHref("/relative/path"); got != "/relative/path" {
		t.Errorf("relative href rewritten: %q", got)
	}
}

func TestNormalizeSource(t *testing.T) {
	got := normalizeSource("\n\n  \r\nfirst\r\n \t \nsecond\rthird\x00\n\n")
	want := "first\n\nsecond\nthird\uFFFD"
	if got != want {
		t.Fatalf("normalizeSource:\n got %q\nwant %q", got, want)
	}
}
