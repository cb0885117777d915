package app

import (
	"html/template"
	"strings"

	"chatops/markdown"
)

var renderer = markdown.NewRenderer(markdown.WithLogger(log))

// renderMarkdown renders a persona answer for a page or API response.
func renderMarkdown(input string) template.HTML {
	if strings.TrimSpace(input) == "" {
		return template.HTML("")
	}
	renderTotal.WithLabelValues(string(markdown.ContentMarkdown)).Inc()
	return template.HTML(renderer.Render(input))
}

// formatContent renders text whose kind is unknown: markdown and plain text
// go through the renderer, HTML is sanitized.
func formatContent(input string) template.HTML {
	if strings.TrimSpace(input) == "" {
		return template.HTML("")
	}
	html, kind := markdown.Format(renderer, input)
	renderTotal.WithLabelValues(string(kind)).Inc()
	return template.HTML(html)
}
