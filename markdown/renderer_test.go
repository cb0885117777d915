package markdown

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func parseHTML(t testing.TB, s string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func TestRenderHeadingAndBoldParagraph(t *testing.T) {
	doc := parseHTML(t, Render("# Title\n\nHello **world**."))

	heading := doc.Find("h1.markdown-heading")
	require.Equal(t, 1, heading.Length())
	require.Equal(t, "Title", heading.Text())

	para := doc.Find("p.markdown-paragraph")
	require.Equal(t, 1, para.Length())
	require.Equal(t, "Hello world.", para.Text())
	require.Equal(t, "world", para.Find("strong.markdown-strong").Text())
}

func TestRenderHeadingLevels(t *testing.T) {
	for level := 1; level <= 6; level++ {
		src := strings.Repeat("#", level) + " Level"
		doc := parseHTML(t, Render(src))
		h := doc.Find(fmt.Sprintf("h%d.markdown-h%d", level, level))
		require.Equal(t, 1, h.Length(), src)
		require.Equal(t, "Level", h.Text())
	}

	doc := parseHTML(t, Render("####### seven"))
	require.Equal(t, 0, doc.Find(".markdown-heading").Length())
	require.Equal(t, "####### seven", doc.Find("p.markdown-paragraph").Text())

	doc = parseHTML(t, Render("#hashtag"))
	require.Equal(t, 0, doc.Find(".markdown-heading").Length())
}

func TestRenderFencedCodeBlock(t *testing.T) {
	out := Render("```js\nconst x = 1;\n```")
	doc := parseHTML(t, out)

	block := doc.Find("div.markdown-code-block")
	require.Equal(t, 1, block.Length())
	require.Equal(t, "js", block.Find("span.code-lang").Text())
	require.Equal(t, 1, block.Find("button.copy-code-btn").Length())
	require.Equal(t, "const x = 1;", block.Find("pre.markdown-code code").Text())
	require.Contains(t, out, `<code class="language-js">const x = 1;</code>`)
}

func TestRenderCodeBlockEscapesAndSkipsInline(t *testing.T) {
	out := Render("```\n<script>alert('x')</script>\n**not bold** `x`\n```")
	doc := parseHTML(t, out)

	require.Equal(t, 0, doc.Find("script").Length())
	require.Equal(t, "code", doc.Find("span.code-lang").Text())
	require.Equal(t, 0, doc.Find("strong").Length())
	require.Equal(t, 0, doc.Find(".markdown-inline-code").Length())
	require.Equal(t, "<script>alert('x')</script>\n**not bold** `x`", doc.Find("pre code").Text())
	require.Contains(t, out, "&lt;script&gt;alert(&#039;x&#039;)&lt;/script&gt;")
}

func TestRenderUnterminatedFenceIsClosed(t *testing.T) {
	out := Render("intro\n\n```go\nfmt.Println(1)\n\nmore()")
	require.Equal(t, strings.Count(out, "<pre"), strings.Count(out, "</pre>"))

	doc := parseHTML(t, out)
	require.Equal(t, "fmt.Println(1)\n\nmore()", doc.Find("pre code").Text())
	require.Equal(t, "intro", doc.Find("p.markdown-paragraph").Text())
}

func TestRenderTable(t *testing.T) {
	doc := parseHTML(t, Render("| A | B |\n|---|---|\n| 1 | 2 |"))

	table := doc.Find("div.markdown-table-container table.markdown-table")
	require.Equal(t, 1, table.Length())

	var headers []string
	table.Find("thead th.markdown-table-header").Each(func(_ int, s *goquery.Selection) {
		headers = append(headers, s.Text())
	})
	require.Equal(t, []string{"A", "B"}, headers)

	rows := table.Find("tbody tr.markdown-table-row")
	require.Equal(t, 1, rows.Length())
	var cells []string
	rows.Find("td.markdown-table-cell").Each(func(_ int, s *goquery.Selection) {
		cells = append(cells, s.Text())
	})
	require.Equal(t, []string{"1", "2"}, cells)
}

func TestRenderTableAlignment(t *testing.T) {
	doc := parseHTML(t, Render("| L | C | R |\n|:--|:-:|--:|\n| 1 | 2 | 3 |"))

	want := []string{"text-align: left;", "text-align: center;", "text-align: right;"}
	doc.Find("th").Each(func(i int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		require.Equal(t, want[i], style)
	})
	doc.Find("td").Each(func(i int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		require.Equal(t, want[i], style)
	})
}

func TestRenderTableColumnConsistency(t *testing.T) {
	src := "| A | B | C |\n|---|---|---|\n| 1 |\n| 1 | 2 | 3 | 4 |\n| x | **y** |"
	doc := parseHTML(t, Render(src))

	require.Equal(t, 3, doc.Find("th").Length())
	rows := doc.Find("tbody tr")
	require.Equal(t, 3, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		require.Equal(t, 3, row.Find("td").Length())
	})
	first := rows.Eq(0).Find("td")
	require.Equal(t, "1", first.Eq(0).Text())
	require.Equal(t, "", first.Eq(1).Text())
	require.Equal(t, "y", rows.Eq(2).Find("td strong").Text())
}

func TestRenderSingleLineTableDiscarded(t *testing.T) {
	doc := parseHTML(t, Render("| lonely |\nafter"))
	require.Equal(t, 0, doc.Find("table").Length())
	require.Equal(t, "after", doc.Find("p.markdown-paragraph").Text())
}

func TestRenderAlert(t *testing.T) {
	doc := parseHTML(t, Render("> [!WARNING] Disk low"))

	alert := doc.Find("div.markdown-alert")
	require.Equal(t, 1, alert.Length())
	require.True(t, alert.HasClass("markdown-alert-warning"))
	require.Equal(t, "⚠️", alert.Find(".markdown-alert-header .markdown-alert-icon").Text())
	require.Equal(t, "WARNING", alert.Find(".markdown-alert-header .markdown-alert-title").Text())
	require.Equal(t, "Disk low", alert.Find(".markdown-alert-content").Text())
}

func TestRenderAlertClassification(t *testing.T) {
	tests := []struct {
		kind  string
		class AlertClass
		icon  string
	}{
		{"note", AlertInfo, "ℹ️"},
		{"info", AlertInfo, "ℹ️"},
		{"tip", AlertSuccess, "✅"},
		{"success", AlertSuccess, "✅"},
		{"hint", AlertSuccess, "✅"},
		{"warning", AlertWarning, "⚠️"},
		{"warn", AlertWarning, "⚠️"},
		{"caution", AlertError, "❌"},
		{"error", AlertError, "❌"},
		{"danger", AlertError, "❌"},
		{"important", AlertWarning, "❗"},
		{"whatever", AlertInfo, "ℹ️"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			doc := parseHTML(t, Render("> [!"+strings.ToUpper(tt.kind)+"] body"))
			alert := doc.Find("div.markdown-alert")
			require.Equal(t, 1, alert.Length())
			require.True(t, alert.HasClass("markdown-alert-"+string(tt.class)))
			require.Equal(t, tt.icon, alert.Find(".markdown-alert-icon").Text())
			require.Equal(t, strings.ToUpper(tt.kind), alert.Find(".markdown-alert-title").Text())
			require.Equal(t, "body", alert.Find(".markdown-alert-content").Text())
		})
	}
}

func TestRenderAlertContinuationAndClose(t *testing.T) {
	doc := parseHTML(t, Render("> [!NOTE]\n> first line\n> **second**\nafter"))

	content := doc.Find(".markdown-alert-content")
	require.Equal(t, 1, content.Length())
	require.Equal(t, 1, content.Find("br").Length())
	require.Equal(t, "second", content.Find("strong").Text())
	require.Equal(t, "first linesecond", content.Text())
	require.Equal(t, "after", doc.Find("p.markdown-paragraph").Text())
	require.Equal(t, 0, doc.Find("blockquote").Length())
}

func TestRenderNestedList(t *testing.T) {
	doc := parseHTML(t, Render("- a\n  - b\n- c"))

	outer := doc.Find("div.markdown-content > ul.markdown-list")
	require.Equal(t, 1, outer.Length())
	items := outer.ChildrenFiltered("li.markdown-list-item")
	require.Equal(t, 2, items.Length())

	nested := items.Eq(0).ChildrenFiltered("ul.markdown-list")
	require.Equal(t, 1, nested.Length())
	require.Equal(t, 1, nested.Find("li").Length())
	require.Equal(t, "b", nested.Find("li").Text())
	require.Equal(t, "c", items.Eq(1).Text())
}

func TestRenderListDepth(t *testing.T) {
	for n := 1; n <= 5; n++ {
		var b strings.Builder
		for level := 0; level < n; level++ {
			b.WriteString(strings.Repeat("  ", level) + "- item\n")
		}
		out := Render(b.String())
		require.Equal(t, strings.Count(out, "<ul"), strings.Count(out, "</ul>"))
		require.Equal(t, strings.Count(out, "<li"), strings.Count(out, "</li>"))

		doc := parseHTML(t, out)
		deepest := doc.Find("li").Last()
		require.Equal(t, n, deepest.ParentsFiltered("ul").Length(), "levels=%d", n)
	}
}

func TestRenderListIndentJumpIsClamped(t *testing.T) {
	doc := parseHTML(t, Render("- a\n        - b"))
	require.Equal(t, 2, doc.Find("li").Last().ParentsFiltered("ul").Length())
}

func TestRenderListKindSwitch(t *testing.T) {
	doc := parseHTML(t, Render("1. one\n2. two\n- three"))

	top := doc.Find("div.markdown-content").Children()
	require.Equal(t, 2, top.Length())
	require.Equal(t, "ol", goquery.NodeName(top.Eq(0)))
	require.True(t, top.Eq(0).HasClass("markdown-list-ordered"))
	require.Equal(t, 2, top.Eq(0).Find("li").Length())
	require.Equal(t, "ul", goquery.NodeName(top.Eq(1)))
	require.Equal(t, "three", top.Eq(1).Find("li").Text())
}

func TestRenderHeadingClosesList(t *testing.T) {
	doc := parseHTML(t, Render("- a\n# H\ntext"))
	top := doc.Find("div.markdown-content").Children()
	require.Equal(t, 3, top.Length())
	require.Equal(t, "ul", goquery.NodeName(top.Eq(0)))
	require.Equal(t, "h1", goquery.NodeName(top.Eq(1)))
	require.Equal(t, "p", goquery.NodeName(top.Eq(2)))
}

func TestRenderBlockquote(t *testing.T) {
	doc := parseHTML(t, Render("> quoted **text**\n> more\n\nafter"))

	quote := doc.Find("blockquote.markdown-blockquote")
	require.Equal(t, 1, quote.Length())
	lines := quote.Find("p.markdown-blockquote-p")
	require.Equal(t, 2, lines.Length())
	require.Equal(t, "text", lines.Eq(0).Find("strong").Text())
	require.Equal(t, "more", lines.Eq(1).Text())
	require.Equal(t, "after", doc.Find("p.markdown-paragraph").Text())
}

func TestRenderHorizontalRule(t *testing.T) {
	for _, rule := range []string{"---", "***", "-----"} {
		doc := parseHTML(t, Render("a\n\n"+rule+"\n\nb"))
		require.Equal(t, 1, doc.Find("hr.markdown-hr").Length(), rule)
		require.Equal(t, 2, doc.Find("p.markdown-paragraph").Length(), rule)
	}
}

func TestRenderParagraphJoining(t *testing.T) {
	doc := parseHTML(t, Render("line one\nline two"))
	p := doc.Find("p.markdown-paragraph")
	require.Equal(t, 1, p.Length())
	require.Equal(t, "line one line two", p.Text())
	require.Equal(t, 0, p.Find("br").Length())

	doc = parseHTML(t, Render("line one  \nline two"))
	p = doc.Find("p.markdown-paragraph")
	require.Equal(t, 1, p.Find("br").Length())

	doc = parseHTML(t, Render("first\n\nsecond"))
	require.Equal(t, 2, doc.Find("p.markdown-paragraph").Length())
}

func TestRenderEscapesText(t *testing.T) {
	out := Render(`a < b & c > d "q" 'x'`)
	require.Contains(t, out, "a &lt; b &amp; c &gt; d &quot;q&quot; &#039;x&#039;")

	doc := parseHTML(t, Render("<script>alert(1)</script> <img src=x onerror=y>"))
	require.Equal(t, 0, doc.Find("script").Length())
	require.Equal(t, 0, doc.Find("img").Length())
}

func TestRenderEmptyInput(t *testing.T) {
	require.Equal(t, `<div class="markdown-content"></div>`, Render(""))
	require.Equal(t, `<div class="markdown-content"></div>`, Render("  \n\t\n "))
}

func TestRenderNormalizesLineEndings(t *testing.T) {
	require.Equal(t, Render("# T\n\nbody"), Render("# T\r\n\r\nbody"))
}

func TestFallbackHTML(t *testing.T) {
	require.Equal(t,
		`<div class="markdown-content"><p class="markdown-paragraph">&lt;b&gt;x&lt;/b&gt;</p></div>`,
		fallbackHTML("<b>x</b>"))
}

func TestRenderRecoversFromPanic(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := NewRenderer(WithLogger(logger))
	r.blocks = func(string) string { panic("boom") }

	src := "# <b>x</b>"
	require.Equal(t, fallbackHTML(src), r.Render(src))

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	require.Equal(t, logrus.WarnLevel, entry.Level)
	require.Equal(t, "Markdown render failed; using escaped text", entry.Message)
	require.Equal(t, "boom", entry.Data["panic"])
	require.Equal(t, len(src), entry.Data["input_len"])
}

func TestWithNilLoggerKeepsDefault(t *testing.T) {
	r := NewRenderer(WithLogger(nil))
	require.NotNil(t, r.log)
}

func TestRendererConcurrentUse(t *testing.T) {
	r := NewRenderer()
	src := "# Title\n\n- a\n  - b\n\n| A | B |\n|---|---|\n| 1 | 2 |\n\n```go\nx := 1\n```"
	want := r.Render(src)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if got := r.Render(src); got != want {
					t.Errorf("concurrent render mismatch")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func FuzzRender(f *testing.F) {
	seeds := []string{
		"",
		"# Title\n\nHello **world**.",
		"```js\nconst x = 1;\n```",
		"```\nunterminated",
		"| A | B |\n|---|---|\n| 1 | 2 |",
		"> [!WARNING] Disk low\n> more",
		"- a\n  - b\n    - c\n- d",
		"1. x\n- y\n  1. z",
		"***bold italic*** and ** odd * stars",
		"<div>`code` [l](javascript:x)</div>",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, src string) {
		out := Render(src)
		if !strings.HasPrefix(out, `<div class="markdown-content">`) || !strings.HasSuffix(out, `</div>`) {
			t.Fatalf("output not wrapped in container: %q", out)
		}
		for _, tag := range []string{"pre", "ul", "ol", "li", "blockquote", "table"} {
			if open, closed := strings.Count(out, "<"+tag), strings.Count(out, "</"+tag+">"); open != closed {
				t.Fatalf("unbalanced <%s>: %d open, %d closed in %q", tag, open, closed, out)
			}
		}
	})
}
