// internal/viewhelpers/helpers.go
//
// Template helper functions shared by gallery and admin templates.
//
// Context
// -------
// The view engine injects these into every parsed template set.  Helpers are
// pure functions over model values, so they are trivially safe to cache with
// the parsed templates.
//
// Notes
// -----
// • Prompt bodies are authored in Markdown and converted with goldmark.
// • Oxford commas, two spaces after periods.
package viewhelpers

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/aikotoba-jp/aikotoba/internal/prompt"
)

// FuncMap returns the helper set for template parsing.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"markdown":  Markdown,
		"date":      FormatDate,
		"datetime":  FormatDateTime,
		"tagChip":   TagChip,
		"tagNames":  tagNames,
		"promptURL": PromptURL,
		"dict":      dict,
	}
}

// Markdown converts a prompt body to HTML.  On parse failure the raw text is
// escaped and returned, never an error page.
func Markdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// FormatDate renders "2006-01-02" in JST, the gallery's display zone.
func FormatDate(t time.Time) string {
	return t.In(jst).Format("2006-01-02")
}

// FormatDateTime renders "2006-01-02 15:04" in JST.
func FormatDateTime(t time.Time) string {
	return t.In(jst).Format("2006-01-02 15:04")
}

var jst = time.FixedZone("JST", 9*60*60)

// TagChip renders one colored tag chip.  Color falls back to a neutral grey
// when the tag row carries none.
func TagChip(t prompt.Tag) template.HTML {
	color := t.Color
	if color == "" {
		color = "#9ca3af"
	}
	return template.HTML(fmt.Sprintf(
		`<a class="tag-chip" style="--chip: %s" href="/t/%s">%s</a>`,
		template.HTMLEscapeString(color),
		template.URLQueryEscaper(t.Name),
		template.HTMLEscapeString(t.Name),
	))
}

// PromptURL returns the canonical path for a prompt.
func PromptURL(p prompt.Prompt) string {
	return "/p/" + p.Slug
}

func tagNames(tags prompt.TagList) string {
	return strings.Join(tags.Names(), ", ")
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}
