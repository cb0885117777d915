package markdown

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// ContentType classifies a chat message body.
type ContentType string

const (
	ContentPlain    ContentType = "plain"
	ContentMarkdown ContentType = "markdown"
	ContentHTML     ContentType = "html"
)

// detector only parses; its renderer is never used. Linkify is left out so
// a bare URL in plain text does not count as markdown.
var detector = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Strikethrough,
	),
)

var sanitizer = newSanitizer()

func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).Globally()
	p.AllowStyles("text-align").MatchingEnum("left", "center", "right").OnElements("th", "td")
	p.AllowElements("button")
	p.AllowAttrs("type", "aria-label").OnElements("button")
	p.RequireNoReferrerOnFullyQualifiedLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// DetectContentType reports whether s is markdown, HTML or plain text. Any
// markdown construct wins over embedded HTML, the same precedence the chat
// UI applies.
func DetectContentType(s string) ContentType {
	if strings.TrimSpace(s) == "" {
		return ContentPlain
	}
	// Renderer output can hold blank lines inside code bodies, which would
	// end goldmark's HTML block early.
	if strings.Contains(s, `<div class="`+classContent+`">`) {
		return ContentHTML
	}
	source := []byte(s)
	doc := detector.Parser().Parse(text.NewReader(source))

	sawMarkdown, sawHTML := false, false
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindDocument, ast.KindParagraph, ast.KindTextBlock, ast.KindText, ast.KindString:
		case ast.KindCodeBlock:
			// Indented code is not a construct the chat renderer supports.
		case ast.KindHTMLBlock, ast.KindRawHTML:
			sawHTML = true
		default:
			sawMarkdown = true
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	switch {
	case sawMarkdown:
		return ContentMarkdown
	case sawHTML:
		return ContentHTML
	default:
		return ContentPlain
	}
}

// Format turns a chat message body into HTML safe to insert into a page.
// Markdown and plain text go through r; HTML is sanitized. A body with no
// real line breaks has its literal "\n" escape sequences treated as
// newlines, since some backends double-escape answers. Bodies that already
// contain newlines are left alone so code such as printf("a\n") survives.
func Format(r *Renderer, content string) (string, ContentType) {
	if r == nil {
		r = defaultRenderer
	}
	normalized := content
	if !strings.Contains(content, "\n") {
		normalized = strings.ReplaceAll(content, `\n`, "\n")
	}
	kind := DetectContentType(normalized)
	if kind == ContentHTML {
		return Sanitize(normalized), kind
	}
	return r.Render(normalized), kind
}

// Sanitize strips markup that could run script while keeping the classes
// and table alignment the renderer emits.
func Sanitize(html string) string {
	return sanitizer.Sanitize(html)
}

// ConvertToMarkdown prepares a message body for "copy as markdown": HTML is
// converted with ToMarkdown, anything else is already markdown or plain
// text and is returned unchanged.
func ConvertToMarkdown(content string) string {
	if DetectContentType(content) == ContentHTML {
		return ToMarkdown(content)
	}
	return content
}
