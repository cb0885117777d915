// Package markdown converts chat markdown to class-tagged HTML and back.
//
// The Renderer is a single-pass, line-oriented state machine with one line of
// lookahead for tables. It supports headings, paragraphs, nested lists,
// blockquotes, GitHub-style alerts, fenced code blocks, tables, horizontal
// rules and the inline spans code, bold, italic and link. Every element it
// emits carries a stable CSS class; ToMarkdown and ToPlainText rely on those
// classes to recover text for clipboard copy.
package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	headingPattern   = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	unorderedPattern = regexp.MustCompile(`^[-*+]\s+(.+)$`)
	orderedPattern   = regexp.MustCompile(`^\d+\.\s+(.+)$`)
	rulePattern      = regexp.MustCompile(`^[-*]{3,}$`)
)

// Renderer converts markdown to HTML. It holds only construction-time
// configuration, so one instance can serve concurrent callers.
type Renderer struct {
	log    logrus.FieldLogger
	blocks func(string) string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used to report recovered render failures.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRenderer returns a Renderer configured by opts.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{log: logrus.StandardLogger(), blocks: renderBlocks}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRenderer = NewRenderer()

// Render converts markdown to HTML with a default Renderer.
func Render(src string) string {
	return defaultRenderer.Render(src)
}

// Render converts src to HTML wrapped in a single markdown-content container.
// It never fails: if rendering panics, the escaped input is returned as one
// paragraph inside the container.
func (r *Renderer) Render(src string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithFields(logrus.Fields{
				"panic":     rec,
				"input_len": len(src),
			}).Warn("Markdown render failed; using escaped text")
			out = fallbackHTML(src)
		}
	}()
	return wrapContent(r.blocks(normalizeSource(src)))
}

func wrapContent(inner string) string {
	return `<div class="` + classContent + `">` + inner + `</div>`
}

func fallbackHTML(src string) string {
	return wrapContent(`<p class="` + classParagraph + `">` + escapeHTML(src) + `</p>`)
}

// ------------------- Parser State -------------------

type blockMode int

const (
	modeNone blockMode = iota
	modeCode
	modeTable
	modeBlockquote
	modeAlert
)

type listKind int

const (
	listUnordered listKind = iota
	listOrdered
)

func (k listKind) openTag() string {
	if k == listOrdered {
		return `<ol class="` + classList + ` ` + classListOrdered + `">`
	}
	return `<ul class="` + classList + ` ` + classListUnordered + `">`
}

func (k listKind) closeTag() string {
	if k == listOrdered {
		return `</ol>`
	}
	return `</ul>`
}

type openList struct {
	kind     listKind
	itemOpen bool
}

// parserState lives for one render call.
type parserState struct {
	out       strings.Builder
	mode      blockMode
	lists     []openList
	paragraph []string

	codeLang  string
	codeLines []string

	tableRows []string

	alertKind  string
	alertLines []string
}

func renderBlocks(src string) string {
	if src == "" {
		return ""
	}
	lines := strings.Split(src, "\n")
	p := &parserState{}
	for i := range lines {
		p.processLine(lines, i)
	}
	p.closeAll()
	return p.out.String()
}

func (p *parserState) processLine(lines []string, i int) {
	raw := lines[i]
	line := strings.TrimSpace(raw)

	if strings.HasPrefix(line, "```") {
		if p.mode == modeCode {
			p.closeCode()
			return
		}
		p.closeBlocks()
		p.openCode(line[3:])
		return
	}
	if p.mode == modeCode {
		p.codeLines = append(p.codeLines, raw)
		return
	}

	if kind, rest, ok := matchAlert(line); ok {
		p.closeBlocks()
		p.openAlert(kind, rest)
		return
	}
	if p.mode == modeAlert {
		if strings.HasPrefix(line, ">") {
			if text := strings.TrimSpace(line[1:]); text != "" {
				p.alertLines = append(p.alertLines, renderInline(text))
			}
			return
		}
		p.closeAlert()
	}

	if line == "" {
		p.flushParagraph()
		p.closeLists()
		p.closeQuote()
		return
	}

	if m := headingPattern.FindStringSubmatch(line); m != nil {
		p.closeBlocks()
		level := strconv.Itoa(len(m[1]))
		p.out.WriteString(`<h` + level + ` class="markdown-h` + level + ` ` + classHeading + `">`)
		p.out.WriteString(renderInline(strings.TrimSpace(m[2])))
		p.out.WriteString(`</h` + level + `>`)
		return
	}

	if m := unorderedPattern.FindStringSubmatch(line); m != nil {
		p.flushParagraph()
		p.closeQuote()
		p.listItem(leadingIndent(raw)/2, listUnordered, m[1])
		return
	}
	if m := orderedPattern.FindStringSubmatch(line); m != nil {
		p.flushParagraph()
		p.closeQuote()
		p.listItem(leadingIndent(raw)/2, listOrdered, m[1])
		return
	}

	if strings.HasPrefix(line, ">") {
		p.flushParagraph()
		p.closeLists()
		if p.mode != modeBlockquote {
			p.out.WriteString(`<blockquote class="` + classBlockquote + `">`)
			p.mode = modeBlockquote
		}
		if text := strings.TrimSpace(line[1:]); text != "" {
			p.out.WriteString(`<p class="` + classBlockquoteP + `">` + renderInline(text) + `</p>`)
		}
		return
	}
	p.closeQuote()

	if strings.HasPrefix(line, "|") {
		p.flushParagraph()
		p.closeLists()
		p.mode = modeTable
		p.tableRows = append(p.tableRows, line)
		if i+1 >= len(lines) || !strings.HasPrefix(strings.TrimSpace(lines[i+1]), "|") {
			p.flushTable()
		}
		return
	}

	if rulePattern.MatchString(line) {
		p.flushParagraph()
		p.closeLists()
		p.out.WriteString(`<hr class="` + classRule + `">`)
		return
	}

	p.closeLists()
	text := renderInline(line)
	switch {
	case len(p.paragraph) == 0:
		p.paragraph = append(p.paragraph, text)
	case i > 0 && strings.HasSuffix(lines[i-1], "  "):
		p.paragraph = append(p.paragraph, "<br>"+text)
	default:
		p.paragraph = append(p.paragraph, " "+text)
	}
}

// ------------------- Block Transitions -------------------

// closeBlocks ends everything a new block construct may not nest in.
func (p *parserState) closeBlocks() {
	p.flushParagraph()
	p.closeLists()
	p.closeQuote()
	p.closeAlert()
}

func (p *parserState) flushParagraph() {
	if len(p.paragraph) == 0 {
		return
	}
	p.out.WriteString(`<p class="` + classParagraph + `">`)
	for _, frag := range p.paragraph {
		p.out.WriteString(frag)
	}
	p.out.WriteString(`</p>`)
	p.paragraph = p.paragraph[:0]
}

func (p *parserState) openCode(info string) {
	lang := ""
	if fields := strings.Fields(info); len(fields) > 0 {
		lang = fields[0]
	}
	p.mode = modeCode
	p.codeLang = lang
	p.codeLines = p.codeLines[:0]
}

func (p *parserState) closeCode() {
	if p.mode != modeCode {
		return
	}
	label := p.codeLang
	if label == "" {
		label = "code"
	}
	p.out.WriteString(`<div class="` + classCodeBlock + `">`)
	p.out.WriteString(`<div class="` + classCodeHeader + `">`)
	p.out.WriteString(`<span class="` + classCodeLang + `">` + escapeHTML(label) + `</span>`)
	p.out.WriteString(`<button type="button" class="` + classCopyButton + `" aria-label="Copy code">Copy</button>`)
	p.out.WriteString(`</div>`)
	p.out.WriteString(`<pre class="` + classCodeBody + `">`)
	if p.codeLang != "" {
		p.out.WriteString(`<code class="language-` + escapeHTML(p.codeLang) + `">`)
	} else {
		p.out.WriteString(`<code>`)
	}
	p.out.WriteString(escapeHTML(strings.Join(p.codeLines, "\n")))
	p.out.WriteString(`</code></pre></div>`)

	p.mode = modeNone
	p.codeLang = ""
	p.codeLines = p.codeLines[:0]
}

func (p *parserState) openAlert(kind, rest string) {
	p.mode = modeAlert
	p.alertKind = kind
	p.alertLines = p.alertLines[:0]
	if rest != "" {
		p.alertLines = append(p.alertLines, renderInline(rest))
	}
}

func (p *parserState) closeAlert() {
	if p.mode != modeAlert {
		return
	}
	p.out.WriteString(alertOpenTag(p.alertKind))
	p.out.WriteString(strings.Join(p.alertLines, "<br>"))
	p.out.WriteString(`</div></div>`)

	p.mode = modeNone
	p.alertKind = ""
	p.alertLines = p.alertLines[:0]
}

func (p *parserState) closeQuote() {
	if p.mode != modeBlockquote {
		return
	}
	p.out.WriteString(`</blockquote>`)
	p.mode = modeNone
}

func (p *parserState) flushTable() {
	if p.mode != modeTable {
		return
	}
	p.out.WriteString(renderTable(p.tableRows))
	p.mode = modeNone
	p.tableRows = p.tableRows[:0]
}

// ------------------- Lists -------------------

// listItem emits one item at the given nesting level. The stack depth after
// the call is level+1; a level more than one deeper than the current depth
// is clamped so every nested list opens inside a parent item.
func (p *parserState) listItem(level int, kind listKind, text string) {
	if level > len(p.lists) {
		level = len(p.lists)
	}
	for len(p.lists) > level+1 {
		p.popList()
	}
	if len(p.lists) == level+1 && p.lists[level].kind != kind {
		p.popList()
	}
	if len(p.lists) < level+1 {
		p.out.WriteString(kind.openTag())
		p.lists = append(p.lists, openList{kind: kind})
	}

	top := &p.lists[len(p.lists)-1]
	if top.itemOpen {
		p.out.WriteString(`</li>`)
	}
	p.out.WriteString(`<li class="` + classListItem + `">` + renderInline(strings.TrimSpace(text)))
	top.itemOpen = true
}

func (p *parserState) popList() {
	top := p.lists[len(p.lists)-1]
	if top.itemOpen {
		p.out.WriteString(`</li>`)
	}
	p.out.WriteString(top.kind.closeTag())
	p.lists = p.lists[:len(p.lists)-1]
}

func (p *parserState) closeLists() {
	for len(p.lists) > 0 {
		p.popList()
	}
}

// closeAll force-closes open constructs at end of input so no tag is left
// unterminated.
func (p *parserState) closeAll() {
	p.flushParagraph()
	p.closeCode()
	p.closeAlert()
	p.closeLists()
	p.closeQuote()
	p.flushTable()
}
