package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

// Bold text may contain a single '*' as long as it is not doubled. Link
// targets exclude NUL so a code-span placeholder never lands in an href.
var (
	inlineCodePattern  = regexp.MustCompile("`([^`]+)`")
	boldPattern        = regexp.MustCompile(`\*\*([^*]+(?:\*[^*]+)*)\*\*`)
	linkPattern        = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s\x00]+)\)`)
	placeholderPattern = regexp.MustCompile("\x00([0-9]+)\x00")
)

var unsafeSchemes = []string{"javascript:", "vbscript:", "data:"}

// renderInline escapes text and applies the inline span transforms in a
// fixed order: code spans, bold, italic, links. Code spans are swapped out
// for placeholders so their contents never take part in the later passes.
func renderInline(text string) string {
	if text == "" {
		return ""
	}
	out := escapeHTML(text)

	var spans []string
	out = inlineCodePattern.ReplaceAllStringFunc(out, func(m string) string {
		body := m[1 : len(m)-1]
		spans = append(spans, `<code class="`+classInlineCode+`">`+body+`</code>`)
		return "\x00" + strconv.Itoa(len(spans)-1) + "\x00"
	})

	out = boldPattern.ReplaceAllString(out, `<strong class="`+classStrong+`">$1</strong>`)
	out = replaceItalic(out)
	out = linkPattern.ReplaceAllStringFunc(out, func(m string) string {
		sub := linkPattern.FindStringSubmatch(m)
		return `<a href="` + safeHref(sub[2]) + `" class="` + classLink +
			`" target="_blank" rel="noopener noreferrer">` + sub[1] + `</a>`
	})

	if len(spans) > 0 {
		out = placeholderPattern.ReplaceAllStringFunc(out, func(m string) string {
			idx, err := strconv.Atoi(m[1 : len(m)-1])
			if err != nil || idx >= len(spans) {
				return ""
			}
			return spans[idx]
		})
	}
	return out
}

// replaceItalic wraps *text* in <em>. The opening star must not follow
// another star and the closing star must not precede one, so the markers of
// unresolved bold are left alone.
func replaceItalic(s string) string {
	if !strings.Contains(s, "*") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 32)
	i := 0
	for i < len(s) {
		if s[i] != '*' || (i > 0 && s[i-1] == '*') {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexAny(s[i+1:], "*\n")
		if end <= 0 {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := i + 1 + end
		if s[j] != '*' || (j+1 < len(s) && s[j+1] == '*') {
			b.WriteByte(s[i])
			i++
			continue
		}
		b.WriteString(`<em class="` + classEm + `">`)
		b.WriteString(s[i+1 : j])
		b.WriteString(`</em>`)
		i = j + 1
	}
	return b.String()
}

// safeHref neutralizes script-capable URL schemes. The URL arrives already
// HTML-escaped.
func safeHref(href string) string {
	lower := strings.ToLower(strings.TrimSpace(href))
	for _, scheme := range unsafeSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "#"
		}
	}
	return href
}
