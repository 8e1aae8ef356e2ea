// components/gallery/gallery.go
//
// Aikotoba public gallery component – browse and read prompts.
//
// Routes
// ------
//   GET /              – newest published prompts
//   GET /c/{category}  – prompts in one category
//   GET /t/{tag}       – prompts carrying one tag
//   GET /p/{slug}      – prompt detail with the related rail
//
// Legacy links that still carry a database ID (the pre-slug URL scheme)
// are answered with a 301 to the canonical slug URL, so old bookmarks and
// search results keep working.
//
//------------------------------------------------------------------------------

package gallery

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aikotoba-jp/aikotoba/internal/category"
	"github.com/aikotoba-jp/aikotoba/internal/component"
	"github.com/aikotoba-jp/aikotoba/internal/config"
	"github.com/aikotoba-jp/aikotoba/internal/head"
	"github.com/aikotoba-jp/aikotoba/internal/metrics"
	"github.com/aikotoba-jp/aikotoba/internal/prompt"
	"github.com/aikotoba-jp/aikotoba/internal/requestinfo"
	"github.com/aikotoba-jp/aikotoba/internal/slug"
	"github.com/aikotoba-jp/aikotoba/internal/stats"
	"github.com/aikotoba-jp/aikotoba/internal/view"
)

const (
	listLimit    = 24 // prompts per listing page
	relatedLimit = 4  // cards in the related rail
)

// Compile-time assertions: *Comp satisfies both registry contracts.
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

// Comp serves the read-only public pages.
type Comp struct {
	cfg        *config.Config
	views      *view.Engine
	prompts    *prompt.Repo
	categories *category.Repo
	related    *prompt.Finder
	stats      *stats.Counter
}

/*────────────────── component.Component methods ───────────────────────────*/

func (c *Comp) Name() string         { return "gallery" }
func (c *Comp) Mount() string        { return "/" }
func (c *Comp) Migrations() []string { return nil }

// Init wires repositories off the shared resources.
func (c *Comp) Init(info component.AppInfo) error {
	c.cfg = info.GetConfig()
	c.views = info.GetViews()
	c.prompts = prompt.NewRepo(info.GetDB())
	c.categories = category.NewRepo(info.GetDB())
	c.related = prompt.NewFinder(c.prompts)
	c.stats = info.GetStats()
	return nil
}

// Routes builds and returns the router mounted at "/".
func (c *Comp) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.handleHome)
	r.Get("/c/{category}", c.handleCategory)
	r.Get("/t/{tag}", c.handleTag)
	r.Get("/p/{slug}", c.handlePrompt)
	return r
}

// Register component at program start.
func init() { component.Register(&Comp{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Comp) handleHome(w http.ResponseWriter, r *http.Request) {
	prompts, err := c.prompts.ListRecent(r.Context(), listLimit)
	if err != nil {
		c.serverError(w, "list recent", err)
		return
	}
	cats, err := c.categories.All(r.Context())
	if err != nil {
		c.serverError(w, "list categories", err)
		return
	}

	h := head.New()
	h.SetTitle(c.cfg.Site.Title)
	h.SetDescription("AIプロンプトのギャラリー")
	c.render(w, "home", map[string]any{
		"Head":       h,
		"Site":       c.cfg.Site,
		"Prompts":    prompts,
		"Categories": cats,
	})
}

func (c *Comp) handleCategory(w http.ResponseWriter, r *http.Request) {
	catSlug := chi.URLParam(r, "category")

	cat, err := c.categories.BySlug(r.Context(), catSlug)
	if errors.Is(err, category.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		c.serverError(w, "category lookup", err)
		return
	}

	prompts, err := c.prompts.PublishedByCategory(r.Context(), catSlug, "", listLimit)
	if err != nil {
		c.serverError(w, "category listing", err)
		return
	}

	h := head.New()
	h.SetTitle(cat.Name + " | " + c.cfg.Site.Title)
	c.render(w, "category", map[string]any{
		"Head":     h,
		"Site":     c.cfg.Site,
		"Category": cat,
		"Prompts":  prompts,
	})
}

func (c *Comp) handleTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")

	prompts, err := c.prompts.PublishedByTag(r.Context(), tag, listLimit)
	if err != nil {
		c.serverError(w, "tag listing", err)
		return
	}

	h := head.New()
	h.SetTitle("#" + tag + " | " + c.cfg.Site.Title)
	c.render(w, "tag", map[string]any{
		"Head":    h,
		"Site":    c.cfg.Site,
		"Tag":     tag,
		"Prompts": prompts,
	})
}

// handlePrompt serves the detail page.  The {slug} parameter may also be a
// legacy database ID; those requests get a permanent redirect to the slug
// URL instead of a second canonical page.
func (c *Comp) handlePrompt(w http.ResponseWriter, r *http.Request) {
	param := chi.URLParam(r, "slug")

	if slug.IsLegacyID(param) {
		p, err := c.prompts.ByID(r.Context(), param)
		if errors.Is(err, prompt.ErrNotFound) || (err == nil && p.Slug == "") {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			c.serverError(w, "legacy id lookup", err)
			return
		}
		http.Redirect(w, r, "/p/"+p.Slug, http.StatusMovedPermanently)
		return
	}

	p, err := c.prompts.BySlug(r.Context(), param)
	if errors.Is(err, prompt.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		c.serverError(w, "prompt lookup", err)
		return
	}
	if !p.Published() {
		http.NotFound(w, r)
		return
	}

	related := c.related.Related(r.Context(), p.ID, p.CategorySlug, p.Tags.Names(), relatedLimit)

	// Count the view unless a crawler is reading.
	if info := requestinfo.FromContext(r.Context()); info == nil || !info.UA.IsBot {
		c.stats.Bump(r.Context(), p.Slug)
		metrics.PromptViewsTotal.Inc()
	}

	h := head.New()
	h.SetTitle(p.Title + " | " + c.cfg.Site.Title)
	h.Canonical(c.cfg.Site.BaseURL + "/p/" + p.Slug)
	h.OpenGraph("og:title", p.Title)
	h.OpenGraph("og:type", "article")
	c.render(w, "prompt", map[string]any{
		"Head":    h,
		"Site":    c.cfg.Site,
		"Prompt":  p,
		"Related": related,
	})
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

func (c *Comp) render(w http.ResponseWriter, name string, data map[string]any) {
	if err := c.views.Render(w, "gallery", name, data); err != nil {
		zap.S().Errorw("gallery render", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (c *Comp) serverError(w http.ResponseWriter, what string, err error) {
	zap.S().Errorw("gallery "+what, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
