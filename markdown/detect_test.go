package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		in   string
		want ContentType
	}{
		{"", ContentPlain},
		{"   ", ContentPlain},
		{"plain words here", ContentPlain},
		{"see https://example.com for details", ContentPlain},
		{"a < b and c > d", ContentPlain},
		{"# Title", ContentMarkdown},
		{"Hello **world**", ContentMarkdown},
		{"- item", ContentMarkdown},
		{"> quote", ContentMarkdown},
		{"```\ncode\n```", ContentMarkdown},
		{"| a | b |\n|---|---|\n| 1 | 2 |", ContentMarkdown},
		{"<b>bold</b> text", ContentHTML},
		{"<div>block</div>", ContentHTML},
		{Render("```go\nx := 1\n\n\ny := 2\n```"), ContentHTML},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, DetectContentType(tt.in), "input %q", tt.in)
	}
}

func TestFormat(t *testing.T) {
	out, kind := Format(nil, "# Title")
	require.Equal(t, ContentMarkdown, kind)
	require.Equal(t, 1, parseHTML(t, out).Find("h1.markdown-heading").Length())

	out, kind = Format(nil, `line one\nline two`)
	require.Equal(t, ContentPlain, kind)
	require.Equal(t, "line one line two", parseHTML(t, out).Find("p.markdown-paragraph").Text())

	out, kind = Format(nil, "```c\nprintf(\"a\\n\");\n```")
	require.Equal(t, ContentMarkdown, kind)
	require.Equal(t, `printf("a\n");`, parseHTML(t, out).Find("pre code").Text())

	out, kind = Format(NewRenderer(), `<p onclick="steal()">hi</p><script>alert(1)</script>`)
	require.Equal(t, ContentHTML, kind)
	require.NotContains(t, out, "onclick")
	require.NotContains(t, out, "script")
	require.Contains(t, out, "hi")
}

func TestSanitizeKeepsRendererClasses(t *testing.T) {
	out := Sanitize(Render("# Title\n\n| A |\n|:-:|\n| 1 |"))
	require.Contains(t, out, `class="markdown-h1 markdown-heading"`)
	require.Contains(t, out, `text-align: center`)
	require.False(t, strings.Contains(out, "<script"))
}

func TestConvertToMarkdown(t *testing.T) {
	require.Equal(t, "# Title", ConvertToMarkdown(Render("# Title")))
	require.Equal(t, "# Title", ConvertToMarkdown("# Title"))
	require.Equal(t, "just text", ConvertToMarkdown("just text"))
}

func TestClassesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Classes() {
		require.False(t, seen[c], "duplicate class %q", c)
		seen[c] = true
	}
	require.True(t, seen["markdown-content"])
}
