// internal/viewhelpers/helpers_test.go
package viewhelpers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aikotoba-jp/aikotoba/internal/prompt"
)

func TestMarkdownBasic(t *testing.T) {
	out := string(Markdown("# 見出し\n\n*強調*"))
	require.Contains(t, out, "<h1>見出し</h1>")
	require.Contains(t, out, "<em>強調</em>")
}

func TestMarkdownEscapesRawHTMLByDefault(t *testing.T) {
	out := string(Markdown(`<script>alert(1)</script>`))
	require.NotContains(t, out, "<script>alert")
}

func TestFormatDateIsJST(t *testing.T) {
	// 2026-01-01T23:30Z is already Jan 2 in Tokyo.
	utc := time.Date(2026, 1, 1, 23, 30, 0, 0, time.UTC)
	require.Equal(t, "2026-01-02", FormatDate(utc))
	require.Equal(t, "2026-01-02 08:30", FormatDateTime(utc))
}

func TestTagChip(t *testing.T) {
	out := string(TagChip(prompt.Tag{Name: "ポートレート", Color: "#ff0000"}))
	require.Contains(t, out, "--chip: #ff0000")
	require.Contains(t, out, ">ポートレート</a>")
	require.True(t, strings.Contains(out, `href="/t/`))

	// Missing color falls back to grey.
	out = string(TagChip(prompt.Tag{Name: "tag"}))
	require.Contains(t, out, "#9ca3af")
}

func TestPromptURL(t *testing.T) {
	require.Equal(t, "/p/hello-world-abc123",
		PromptURL(prompt.Prompt{Slug: "hello-world-abc123"}))
}

func TestDict(t *testing.T) {
	m := dict("a", 1, "b", "two")
	require.Equal(t, 1, m["a"])
	require.Equal(t, "two", m["b"])
}
