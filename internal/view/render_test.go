// internal/view/render_test.go
package view

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTree lays out a minimal templates/ directory under a temp root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestRenderPlainFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"templates/gallery/home.html": `<h1>{{ .Title }}</h1>`,
	})
	e := New(root, false)

	rec := httptest.NewRecorder()
	if err := e.Render(rec, "gallery", "home", map[string]string{"Title": "合言葉"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "<h1>合言葉</h1>") {
		t.Fatalf("body = %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
}

func TestRenderWithLayout(t *testing.T) {
	root := writeTree(t, map[string]string{
		"templates/layout/base.html":    `{{ define "base" }}<body>{{ block "main" . }}{{ end }}</body>{{ end }}`,
		"templates/gallery/prompt.html": `{{ define "main" }}slug={{ .Slug }}{{ end }}{{ template "base" . }}`,
	})
	e := New(root, false)

	rec := httptest.NewRecorder()
	if err := e.Render(rec, "gallery", "prompt", map[string]string{"Slug": "x-abc123"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "<body>slug=x-abc123</body>") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestRenderSiblingPagesWithSameBlockName(t *testing.T) {
	// Every gallery page defines "main"; each render must execute the
	// requested page's definition, not whichever file the glob parsed last.
	root := writeTree(t, map[string]string{
		"templates/layout/base.html":  `{{ define "base" }}<body>{{ block "main" . }}{{ end }}</body>{{ end }}`,
		"templates/gallery/home.html": `{{ define "main" }}home{{ end }}{{ template "base" . }}`,
		"templates/gallery/tag.html":  `{{ define "main" }}tag{{ end }}{{ template "base" . }}`,
	})
	e := New(root, false)

	for _, tc := range []struct{ name, want string }{
		{"home", "<body>home</body>"},
		{"tag", "<body>tag</body>"},
	} {
		rec := httptest.NewRecorder()
		if err := e.Render(rec, "gallery", tc.name, nil); err != nil {
			t.Fatalf("Render %s: %v", tc.name, err)
		}
		if !strings.Contains(rec.Body.String(), tc.want) {
			t.Fatalf("%s body = %q, want %q", tc.name, rec.Body.String(), tc.want)
		}
	}
}

func TestRenderMissingTemplate(t *testing.T) {
	e := New(t.TempDir(), false)
	rec := httptest.NewRecorder()
	if err := e.Render(rec, "gallery", "nope", nil); err == nil {
		t.Fatal("expected error for missing template")
	}
}

func TestRenderToString(t *testing.T) {
	root := writeTree(t, map[string]string{
		"templates/gallery/card.html": `<div>{{ . }}</div>`,
	})
	e := New(root, false)

	html, err := e.RenderToString("gallery", "card", "hi")
	if err != nil {
		t.Fatalf("RenderToString: %v", err)
	}
	if string(html) != "<div>hi</div>" {
		t.Fatalf("html = %q", html)
	}
}

func TestDevModeSeesEdits(t *testing.T) {
	root := writeTree(t, map[string]string{
		"templates/gallery/home.html": `v1`,
	})
	e := New(root, true)

	rec := httptest.NewRecorder()
	if err := e.Render(rec, "gallery", "home", nil); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(root, "templates/gallery/home.html"), []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec = httptest.NewRecorder()
	if err := e.Render(rec, "gallery", "home", nil); err != nil {
		t.Fatal(err)
	}
	if rec.Body.String() != "v2" {
		t.Fatalf("dev mode served stale template: %q", rec.Body.String())
	}
}
