package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var (
	htmlCodeBlockPattern = regexp.MustCompile(`(?s)<div class="` + classCodeBlock + `">.*?<pre class="` + classCodeBody + `"><code(?: class="language-[^"]*")?>(.*?)</code></pre></div>`)
	htmlTablePattern     = regexp.MustCompile(`(?s)<div class="` + classTableContainer + `">(.*?)</div>`)
	htmlTheadPattern     = regexp.MustCompile(`(?s)<thead[^>]*>(.*?)</thead>`)
	htmlTbodyPattern     = regexp.MustCompile(`(?s)<tbody[^>]*>(.*?)</tbody>`)
	htmlRowPattern       = regexp.MustCompile(`(?s)<tr[^>]*>(.*?)</tr>`)
	htmlThPattern        = regexp.MustCompile(`(?s)<th(?:\s[^>]*)?>(.*?)</th>`)
	htmlTdPattern        = regexp.MustCompile(`(?s)<td(?:\s[^>]*)?>(.*?)</td>`)

	htmlHeadingPattern   = regexp.MustCompile(`(?s)<h([1-6])[^>]*class="[^"]*` + classHeading + `[^"]*"[^>]*>(.*?)</h[1-6]>`)
	htmlParagraphPattern = regexp.MustCompile(`(?s)<p[^>]*class="` + classParagraph + `"[^>]*>(.*?)</p>`)
	htmlQuotePattern     = regexp.MustCompile(`(?s)<blockquote[^>]*class="` + classBlockquote + `"[^>]*>(.*?)</blockquote>`)
	htmlQuoteLinePattern = regexp.MustCompile(`(?s)<p[^>]*class="` + classBlockquoteP + `"[^>]*>(.*?)</p>`)
	htmlAlertPattern     = regexp.MustCompile(`(?s)<div class="` + classAlert + ` [^"]*"><div class="` + classAlertHeader + `">.*?<span class="` + classAlertTitle + `">(.*?)</span></div><div class="` + classAlertContent + `">(.*?)</div></div>`)
	htmlListItemPattern  = regexp.MustCompile(`(?s)<li[^>]*class="` + classListItem + `"[^>]*>(.*?)</li>`)
	htmlRulePattern      = regexp.MustCompile(`<hr[^>]*>`)
	htmlBreakPattern     = regexp.MustCompile(`<br\s*/?>`)
	htmlTagPattern       = regexp.MustCompile(`<[^>]*>`)

	blankRunPattern        = regexp.MustCompile(`\n{3,}`)
	codePlaceholderPattern = regexp.MustCompile("\uE000([0-9]+)\uE001")
)

// The extractors reserve these private-use runes for their own markers, so
// they are replaced in input text before any pass runs.
var markerNeutralizer = strings.NewReplacer(
	"\uE000", "\uFFFD",
	"\uE001", "\uFFFD",
	"\uE002", "\uFFFD",
)

// ToPlainText reduces renderer HTML to readable plain text: tables become
// tab-separated rows, list items are bulleted with '•' and alerts read
// "TITLE: text". Unrecognized markup is stripped.
func ToPlainText(src string) string {
	if src == "" {
		return ""
	}
	out := markerNeutralizer.Replace(src)

	// Code bodies are parked behind placeholders so no later pass (including
	// blank-line collapsing) can touch them.
	var blocks []string
	out = htmlCodeBlockPattern.ReplaceAllStringFunc(out, func(m string) string {
		body := htmlCodeBlockPattern.FindStringSubmatch(m)[1]
		blocks = append(blocks, html.UnescapeString(body))
		return "\n\uE000" + strconv.Itoa(len(blocks)-1) + "\uE001\n\n"
	})

	out = htmlTablePattern.ReplaceAllStringFunc(out, func(m string) string {
		return plainTable(htmlTablePattern.FindStringSubmatch(m)[1])
	})

	out = htmlHeadingPattern.ReplaceAllStringFunc(out, func(m string) string {
		sub := htmlHeadingPattern.FindStringSubmatch(m)
		return "\n" + strings.TrimSpace(stripTags(sub[2])) + "\n"
	})

	out = htmlAlertPattern.ReplaceAllStringFunc(out, func(m string) string {
		sub := htmlAlertPattern.FindStringSubmatch(m)
		text := strings.TrimSpace(stripTags(htmlBreakPattern.ReplaceAllString(sub[2], " ")))
		return "\n" + strings.TrimSpace(stripTags(sub[1])) + ": " + text + "\n"
	})

	out = htmlQuotePattern.ReplaceAllStringFunc(out, func(m string) string {
		var b strings.Builder
		b.WriteString("\n")
		for _, line := range htmlQuoteLinePattern.FindAllStringSubmatch(m, -1) {
			b.WriteString(strings.TrimSpace(stripTags(line[1])) + "\n")
		}
		return b.String()
	})

	out = replaceLists(out)

	out = htmlParagraphPattern.ReplaceAllStringFunc(out, func(m string) string {
		content := htmlParagraphPattern.FindStringSubmatch(m)[1]
		content = htmlBreakPattern.ReplaceAllString(content, "\n")
		return strings.TrimSpace(stripTags(content)) + "\n"
	})

	out = htmlRulePattern.ReplaceAllString(out, "\n")
	out = htmlBreakPattern.ReplaceAllString(out, "\n")

	out = textContent(out)
	out = blankRunPattern.ReplaceAllString(out, "\n\n")
	out = codePlaceholderPattern.ReplaceAllStringFunc(out, func(m string) string {
		idx, err := strconv.Atoi(m[len("\uE000") : len(m)-len("\uE001")])
		if err != nil || idx >= len(blocks) {
			return ""
		}
		return blocks[idx]
	})
	return strings.TrimSpace(out)
}

// plainTable renders the inside of a table container as tab-separated rows.
func plainTable(content string) string {
	var b strings.Builder
	b.WriteString("\n")
	if head := htmlTheadPattern.FindStringSubmatch(content); head != nil {
		if headers := cellTexts(htmlThPattern, head[1]); len(headers) > 0 {
			b.WriteString(strings.Join(headers, "\t") + "\n")
		}
	}
	if body := htmlTbodyPattern.FindStringSubmatch(content); body != nil {
		for _, row := range htmlRowPattern.FindAllStringSubmatch(body[1], -1) {
			if cells := cellTexts(htmlTdPattern, row[1]); len(cells) > 0 {
				b.WriteString(strings.Join(cells, "\t") + "\n")
			}
		}
	}
	b.WriteString("\n")
	return b.String()
}

func cellTexts(pattern *regexp.Regexp, row string) []string {
	var cells []string
	for _, m := range pattern.FindAllStringSubmatch(row, -1) {
		cells = append(cells, strings.TrimSpace(stripTags(m[1])))
	}
	return cells
}

// replaceLists converts list containers innermost first, so a nested list is
// already text when its parent item is converted and ends up indented under
// that item.
func replaceLists(s string) string {
	for {
		start := max(
			strings.LastIndex(s, `<ul class="`+classList),
			strings.LastIndex(s, `<ol class="`+classList),
		)
		if start < 0 {
			return s
		}
		openEnd := strings.IndexByte(s[start:], '>')
		if openEnd < 0 {
			return s
		}
		bodyStart := start + openEnd + 1
		end := firstIndex(s[bodyStart:], "</ul>", "</ol>")
		if end < 0 {
			// Unbalanced input: drop the opening tag and stop matching.
			return s[:start] + s[bodyStart:]
		}
		inner := s[bodyStart : bodyStart+end]
		s = s[:start] + plainList(inner) + s[bodyStart+end+len("</ul>"):]
	}
}

func plainList(inner string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, item := range htmlListItemPattern.FindAllStringSubmatch(inner, -1) {
		lines := strings.Split(strings.TrimSpace(item[1]), "\n")
		b.WriteString("• " + strings.TrimSpace(stripTags(lines[0])) + "\n")
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) == "" {
				continue
			}
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}

func firstIndex(s string, subs ...string) int {
	best := -1
	for _, sub := range subs {
		if i := strings.Index(s, sub); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

// stripTags removes tags character for character and leaves entities alone.
func stripTags(s string) string {
	return htmlTagPattern.ReplaceAllString(s, "")
}

// textContent drops every remaining tag and decodes entities, using the
// HTML tokenizer so stray '<' in text is handled the way a browser would.
// Script and style bodies are discarded.
func textContent(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip = false
			}
		case html.TextToken:
			if !skip {
				b.Write(z.Text())
			}
		}
	}
}
