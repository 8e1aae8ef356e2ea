// internal/view/render.go
//
// Central view engine: template lookup, func-map injection, and an LRU of
// parsed *template.Template* sets.
//
// Public helpers
// --------------
//   - Render         – write rendered HTML to an http.ResponseWriter.
//   - RenderToString – return template.HTML (partials, e-mails).
//
// Lookup
// ------
// Templates live under <root>/templates/<comp>/<name>.html, parsed together
// with the shared layout set <root>/templates/layout/*.html so pages can do
// {{ template "base" . }} out of the box.  The requested page is parsed last,
// so each cached set executes that page's block definitions even when sibling
// pages define the same names.
//
// execName() chooses the best template to execute:
//   – If the set contains "<name>.html", we run that (file has no define).
//   – Else we fall back to "<name>" (root template defined via {{ define }}).
// Callers pass the logical name (e.g. "prompt"); the engine figures out the
// concrete template automatically.
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/aikotoba-jp/aikotoba/internal/cache"
	"github.com/aikotoba-jp/aikotoba/internal/viewhelpers"
)

// CachePolicy hints how the caller wants this template cached.
type CachePolicy int

const (
	CacheDefault CachePolicy = iota // cache parsed sets
	CacheSkip                       // re-parse every request (dev mode)
)

// Engine parses and caches template sets for one site.
type Engine struct {
	root   string // directory containing templates/
	dev    bool   // dev mode re-parses on every render
	mu     sync.Mutex
	parsed *cache.LRU[string, *template.Template]
	funcs  template.FuncMap
}

// New builds an Engine rooted at root.  When dev is true every render
// re-parses from disk, so template edits show up without a restart.
func New(root string, dev bool) *Engine {
	return &Engine{
		root:   root,
		dev:    dev,
		parsed: cache.New[string, *template.Template](256),
		funcs:  viewhelpers.FuncMap(),
	}
}

// Render executes the template set and streams it to w.
func (e *Engine) Render(w http.ResponseWriter, comp, name string, data any) error {
	t, err := e.load(comp, name)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.ExecuteTemplate(w, execName(t, name), data)
}

// RenderToString executes and returns HTML (used by partials and e-mail
// generators).  It mirrors Render, but writes to a buffer instead of w.
func (e *Engine) RenderToString(comp, name string, data any) (template.HTML, error) {
	t, err := e.load(comp, name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, execName(t, name), data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// load finds and (if necessary) parses the template set for comp/name.
func (e *Engine) load(comp, name string) (*template.Template, error) {
	key := comp + "::" + name

	if !e.dev {
		e.mu.Lock()
		if t, ok := e.parsed.Get(key); ok {
			e.mu.Unlock()
			return t, nil
		}
		e.mu.Unlock()
	}

	page := filepath.Join(e.root, "templates", comp, name+".html")
	if _, err := os.Stat(page); err != nil {
		return nil, err
	}

	// Parse the shared layout plus every page in the component directory so
	// sub-templates work.
	t := template.New(name).Funcs(e.funcs)
	layout := filepath.Join(e.root, "templates", "layout", "*.html")
	if matches, _ := filepath.Glob(layout); len(matches) > 0 {
		var err error
		if t, err = t.ParseGlob(layout); err != nil {
			return nil, err
		}
	}
	t, err := t.ParseGlob(filepath.Join(e.root, "templates", comp, "*.html"))
	if err != nil {
		return nil, err
	}
	// Sibling pages in one component may define the same block names (every
	// gallery page defines "main").  Parsing the requested page last makes
	// its definitions the ones that execute for this set.
	if t, err = t.ParseFiles(page); err != nil {
		return nil, err
	}

	if !e.dev {
		e.mu.Lock()
		e.parsed.Add(key, t)
		e.mu.Unlock()
	}
	return t, nil
}

// execName picks the template name to execute.
//
// Priority:
//  1. If the set has "<name>.html" (file-based template), run that.
//  2. Otherwise, fall back to "<name>" (root template defined in code).
func execName(t *template.Template, name string) string {
	if tmpl := t.Lookup(name + ".html"); tmpl != nil {
		return name + ".html"
	}
	return name
}
