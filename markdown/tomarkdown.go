package markdown

import (
	"bytes"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
)

// codeNewline stands in for line breaks inside code bodies until the
// converter has finished its own newline cleanup.
const codeNewline = "\uE002"

// mdConverter is safe for concurrent use. Elements carrying the renderer's
// classes get dedicated renderers; anything else falls through to the
// commonmark and table plugins.
var mdConverter = newMarkdownConverter()

func newMarkdownConverter() *converter.Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHorizontalRule("---"),
				commonmark.WithBulletListMarker("-"),
			),
			table.NewTablePlugin(),
		),
	)
	conv.Register.RendererFor("div", converter.TagTypeBlock, renderCodeBlock, converter.PriorityEarly)
	conv.Register.RendererFor("div", converter.TagTypeBlock, renderAlert, converter.PriorityEarly)
	conv.Register.RendererFor("div", converter.TagTypeBlock, renderTableContainer, converter.PriorityEarly)
	conv.Register.RendererFor("ul", converter.TagTypeBlock, renderList, converter.PriorityEarly)
	conv.Register.RendererFor("ol", converter.TagTypeBlock, renderList, converter.PriorityEarly)
	conv.Register.RendererFor("blockquote", converter.TagTypeBlock, renderBlockquote, converter.PriorityEarly)
	return conv
}

// ToMarkdown reconstructs markdown from HTML that follows the Renderer's
// class conventions. It is a structural inverse: element kinds and text
// survive, exact source spacing does not. Ordered lists come back as bullet
// lists and alerts as plain quotes. Foreign HTML is converted as CommonMark.
func ToMarkdown(src string) string {
	if src == "" {
		return ""
	}
	out, err := mdConverter.ConvertString(markerNeutralizer.Replace(src))
	if err != nil {
		return ToPlainText(src)
	}
	return strings.TrimSpace(strings.ReplaceAll(out, codeNewline, "\n"))
}

// renderCodeBlock writes a fenced block with the language from the code
// element's class. The header with its label and copy button is dropped.
func renderCodeBlock(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if !hasClass(n, classCodeBlock) {
		return converter.RenderTryNext
	}
	code := findElement(n, "code")
	if code == nil {
		return converter.RenderTryNext
	}
	lang := ""
	for _, c := range strings.Fields(dom.GetAttributeOr(code, "class", "")) {
		if strings.HasPrefix(c, "language-") {
			lang = strings.TrimPrefix(c, "language-")
			break
		}
	}
	body := strings.ReplaceAll(nodeText(code), "\n", codeNewline)
	w.WriteString("\n\n```" + lang + "\n" + body + "\n```\n\n")
	return converter.RenderSuccess
}

// renderAlert writes the alert body as a single quoted line; the icon and
// title are presentation only.
func renderAlert(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if !hasClass(n, classAlert) {
		return converter.RenderTryNext
	}
	content := findClass(n, classAlertContent)
	if content == nil {
		return converter.RenderTryNext
	}
	w.WriteString("\n\n> " + joinLines(renderChildren(ctx, content)) + "\n\n")
	return converter.RenderSuccess
}

func renderBlockquote(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if !hasClass(n, classBlockquote) {
		return converter.RenderTryNext
	}
	var lines []string
	for p := n.FirstChild; p != nil; p = p.NextSibling {
		if p.Type == html.ElementNode && p.Data == "p" {
			lines = append(lines, joinLines(renderChildren(ctx, p)))
		}
	}
	w.WriteString("\n\n> " + strings.Join(lines, "\n> ") + "\n\n")
	return converter.RenderSuccess
}

// renderList writes one "- " line per item with nested lists indented two
// spaces under their parent item. Ordered lists use the same marker.
func renderList(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if !hasClass(n, classList) {
		return converter.RenderTryNext
	}
	var b strings.Builder
	for item := n.FirstChild; item != nil; item = item.NextSibling {
		if item.Type != html.ElementNode || item.Data != "li" {
			continue
		}
		lines := strings.Split(strings.TrimSpace(renderChildren(ctx, item)), "\n")
		b.WriteString("- " + strings.TrimSpace(lines[0]) + "\n")
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) == "" {
				continue
			}
			b.WriteString("  " + line + "\n")
		}
	}
	w.WriteString("\n\n" + b.String() + "\n")
	return converter.RenderSuccess
}

// renderTableContainer writes a pipe table. Cells keep their inline
// markdown; alignment is not carried back.
func renderTableContainer(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if !hasClass(n, classTableContainer) {
		return converter.RenderTryNext
	}
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	if head := findElement(n, "thead"); head != nil {
		if headers := tableCells(ctx, head, "th"); len(headers) > 0 {
			writeRow(headers)
			sep := make([]string, len(headers))
			for i := range sep {
				sep[i] = "---"
			}
			writeRow(sep)
		}
	}
	if body := findElement(n, "tbody"); body != nil {
		for row := body.FirstChild; row != nil; row = row.NextSibling {
			if row.Type != html.ElementNode || row.Data != "tr" {
				continue
			}
			if cells := tableCells(ctx, row, "td"); len(cells) > 0 {
				writeRow(cells)
			}
		}
	}
	w.WriteString("\n\n" + b.String() + "\n")
	return converter.RenderSuccess
}

// tableCells renders the cells named tag below n, flattened to one line
// with pipes escaped.
func tableCells(ctx converter.Context, n *html.Node, tag string) []string {
	var cells []string
	for _, cell := range findElements(n, tag) {
		text := joinLines(renderChildren(ctx, cell))
		cells = append(cells, strings.ReplaceAll(text, "|", `\|`))
	}
	return cells
}

func renderChildren(ctx converter.Context, n *html.Node) string {
	var buf bytes.Buffer
	ctx.RenderChildNodes(ctx, &buf, n)
	return buf.String()
}

func joinLines(s string) string {
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(dom.GetAttributeOr(n, "class", "")) {
		if c == class {
			return true
		}
	}
	return false
}

func findElement(n *html.Node, tag string) *html.Node {
	return findFirst(n, func(c *html.Node) bool { return c.Data == tag })
}

func findClass(n *html.Node, class string) *html.Node {
	return findFirst(n, func(c *html.Node) bool { return hasClass(c, class) })
}

// findFirst returns the first element below n, in document order, that
// satisfies match.
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findElements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, c)
			continue
		}
		out = append(out, findElements(c, tag)...)
	}
	return out
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}
