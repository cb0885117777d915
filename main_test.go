package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	out, err := runCLI(t, "# Title\n\nHello **world**.", "render")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `<h1 class="markdown-h1 markdown-heading">Title</h1>`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestExtractCommandFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.html")
	html := `<div class="markdown-content"><ul class="markdown-list markdown-list-unordered"><li class="markdown-list-item">a</li><li class="markdown-list-item">b</li></ul></div>`
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, err := runCLI(t, "", "extract", "--format", "text", path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if out != "• a\n• b\n" {
		t.Fatalf("unexpected output: %q", out)
	}

	if _, err := runCLI(t, "", "extract", "--format", "pdf", path); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestTemplatesEmbedded(t *testing.T) {
	for _, name := range []string{"templates/index.html", "templates/persona.html", "templates/error.html", "static/markdown.css", "static/copy.js"} {
		if _, err := templatesFS.ReadFile(name); err != nil {
			t.Fatalf("missing embedded %s: %v", name, err)
		}
	}
}
