// components/admin/admin.go
//
// Aikotoba admin CMS component – login, prompt editing, categories, and
// asset uploads.
//
// Routes (mounted at /admin)
// --------------------------
//   GET  /login           – login form
//   POST /login           – credential check, session cookie
//   POST /logout          – clear session
//   GET  /                – dashboard: recent prompts + view ranking
//   GET  /prompts/new     – blank prompt form
//   POST /prompts         – create (slug assigned here, immutable after)
//   GET  /prompts/{id}    – edit form
//   POST /prompts/{id}    – update (title edits never touch the slug)
//   POST /categories      – create category
//   POST /assets          – multipart image upload
//
// Every mutating route sits behind the session middleware and a CSRF check.
//
//------------------------------------------------------------------------------

package admin

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aikotoba-jp/aikotoba/internal/acl"
	"github.com/aikotoba-jp/aikotoba/internal/asset"
	"github.com/aikotoba-jp/aikotoba/internal/category"
	"github.com/aikotoba-jp/aikotoba/internal/component"
	"github.com/aikotoba-jp/aikotoba/internal/config"
	"github.com/aikotoba-jp/aikotoba/internal/csrf"
	"github.com/aikotoba-jp/aikotoba/internal/form"
	"github.com/aikotoba-jp/aikotoba/internal/metrics"
	"github.com/aikotoba-jp/aikotoba/internal/prompt"
	"github.com/aikotoba-jp/aikotoba/internal/session"
	"github.com/aikotoba-jp/aikotoba/internal/slug"
	"github.com/aikotoba-jp/aikotoba/internal/stats"
	"github.com/aikotoba-jp/aikotoba/internal/storage"
	"github.com/aikotoba-jp/aikotoba/internal/user"
	"github.com/aikotoba-jp/aikotoba/internal/view"
)

const (
	dashboardLimit = 20
	topViewsLimit  = 10
	maxUploadBytes = 10 << 20 // 10 MiB per image
)

// Compile-time assertions: *Comp satisfies both registry contracts.
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

// Comp owns the CMS surface.
type Comp struct {
	cfg        *config.Config
	views      *view.Engine
	prompts    *prompt.Repo
	categories *category.Repo
	users      *user.Repo
	assets     *asset.Repo
	store      storage.Store
	stats      *stats.Counter
	sessions   *session.Manager
	guard      *csrf.Guard
}

/*────────────────── component.Component methods ───────────────────────────*/

func (c *Comp) Name() string         { return "admin" }
func (c *Comp) Mount() string        { return "/admin" }
func (c *Comp) Migrations() []string { return nil }

// Init wires repositories off the shared resources.
func (c *Comp) Init(info component.AppInfo) error {
	c.cfg = info.GetConfig()
	c.views = info.GetViews()
	c.prompts = prompt.NewRepo(info.GetDB())
	c.categories = category.NewRepo(info.GetDB())
	c.users = user.NewRepo(info.GetDB())
	c.assets = asset.NewRepo(info.GetDB())
	c.store = info.GetStorage()
	c.stats = info.GetStats()
	c.sessions = info.GetSessions()
	c.guard = info.GetCSRF()
	return nil
}

// Routes builds the router mounted at /admin.
func (c *Comp) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/login", c.handleLoginGET)
	r.Post("/login", c.handleLoginPOST)

	r.Group(func(priv chi.Router) {
		priv.Use(acl.RequireLogin(c.sessions))
		priv.Use(acl.RequirePermission(acl.ActionManageContent))

		priv.Post("/logout", c.handleLogout)
		priv.Get("/", c.handleDashboard)
		priv.Get("/prompts/new", c.handlePromptNew)
		priv.Post("/prompts", c.handlePromptCreate)
		priv.Get("/prompts/{id}", c.handlePromptEdit)
		priv.Post("/prompts/{id}", c.handlePromptUpdate)
		priv.Post("/categories", c.handleCategoryCreate)
		priv.Post("/assets", c.handleAssetUpload)
	})
	return r
}

// Register component at program start.
func init() { component.Register(&Comp{}) }

/*──────────────────────────── Forms ────────────────────────────────────────*/

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type promptForm struct {
	Title      string `validate:"required,max=200"`
	Body       string `validate:"required"`
	CategoryID uint64 `validate:"required"`
	Status     string `validate:"required,oneof=draft published"`
	Tags       string `validate:"max=500"` // comma-separated names
}

type categoryForm struct {
	Name string `validate:"required,max=100"`
	Sort int
}

/*──────────────────────────── Auth handlers ────────────────────────────────*/

func (c *Comp) handleLoginGET(w http.ResponseWriter, r *http.Request) {
	c.render(w, "login", map[string]any{"CSRF": c.token()})
}

func (c *Comp) handleLoginPOST(w http.ResponseWriter, r *http.Request) {
	if !c.checkCSRF(r) {
		c.render(w, "login", map[string]any{
			"CSRF":  c.token(),
			"Error": "Security token expired.  Please try again.",
		})
		return
	}

	f := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if err := form.Validate(f); err != nil {
		c.render(w, "login", map[string]any{
			"CSRF":   c.token(),
			"Fields": form.Errors(err),
			"Email":  f.Email,
		})
		return
	}

	rec, err := c.users.Authenticate(r.Context(), f.Email, f.Password)
	if err != nil {
		metrics.LoginFailuresTotal.Inc()
		zap.S().Warnw("admin login failed", "email", f.Email)
		c.render(w, "login", map[string]any{
			"CSRF":  c.token(),
			"Error": "Incorrect email or password.",
			"Email": f.Email,
		})
		return
	}

	c.sessions.Login(w, r, rec.Email, rec.Role)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (c *Comp) handleLogout(w http.ResponseWriter, r *http.Request) {
	c.sessions.Logout(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

/*──────────────────────────── Dashboard ────────────────────────────────────*/

func (c *Comp) handleDashboard(w http.ResponseWriter, r *http.Request) {
	recent, err := c.prompts.ListRecent(r.Context(), dashboardLimit)
	if err != nil {
		c.serverError(w, "dashboard listing", err)
		return
	}

	// View ranking is decorative; a cold Redis just hides the panel.
	var top []stats.View
	if c.stats.Enabled() {
		if top, err = c.stats.Top(r.Context(), topViewsLimit); err != nil {
			zap.S().Warnw("view ranking unavailable", "error", err)
			top = nil
		}
	}

	sess, _ := acl.FromContext(r.Context())
	c.render(w, "dashboard", map[string]any{
		"Session":  sess,
		"Prompts":  recent,
		"TopViews": top,
	})
}

/*──────────────────────────── Prompt CRUD ──────────────────────────────────*/

func (c *Comp) handlePromptNew(w http.ResponseWriter, r *http.Request) {
	cats, err := c.categories.All(r.Context())
	if err != nil {
		c.serverError(w, "category listing", err)
		return
	}
	c.render(w, "prompt_form", map[string]any{
		"CSRF":       c.token(),
		"Categories": cats,
		"Prompt":     &prompt.Prompt{Status: prompt.StatusDraft},
	})
}

func (c *Comp) handlePromptCreate(w http.ResponseWriter, r *http.Request) {
	if !c.checkCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	f, ferr := c.bindPromptForm(r)
	if ferr != nil {
		c.rerenderPromptForm(w, r, &prompt.Prompt{
			Title: f.Title, Body: f.Body, Status: f.Status, CategoryID: f.CategoryID,
		}, form.Errors(ferr))
		return
	}

	id := uuid.NewString()

	// The slug is assigned exactly once, at creation, from the title plus
	// the tail of the new ID.  Collisions against every assigned slug are
	// resolved with numeric suffixes.
	existing, err := c.prompts.AllSlugs(r.Context())
	if err != nil {
		c.serverError(w, "slug set", err)
		return
	}
	s := slug.ResolveUniqueMax(f.Title, id, c.cfg.Slug.MaxLen, existing)

	p := &prompt.Prompt{
		ID:         id,
		Title:      f.Title,
		Slug:       s,
		Body:       f.Body,
		Status:     f.Status,
		CategoryID: f.CategoryID,
	}
	if p.Status == prompt.StatusPublished {
		now := time.Now()
		p.PublishedAt = &now
	}

	if err := c.prompts.Insert(r.Context(), p); err != nil {
		c.serverError(w, "prompt insert", err)
		return
	}
	if err := c.prompts.SetTags(r.Context(), p.ID, parseTags(f.Tags)); err != nil {
		c.serverError(w, "prompt tags", err)
		return
	}

	zap.S().Infow("prompt created", "id", p.ID, "slug", p.Slug)
	http.Redirect(w, r, "/admin/prompts/"+p.ID, http.StatusSeeOther)
}

func (c *Comp) handlePromptEdit(w http.ResponseWriter, r *http.Request) {
	p, err := c.prompts.ByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, prompt.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		c.serverError(w, "prompt lookup", err)
		return
	}
	c.rerenderPromptForm(w, r, p, nil)
}

func (c *Comp) handlePromptUpdate(w http.ResponseWriter, r *http.Request) {
	if !c.checkCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	p, err := c.prompts.ByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, prompt.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		c.serverError(w, "prompt lookup", err)
		return
	}

	f, ferr := c.bindPromptForm(r)
	if ferr != nil {
		c.rerenderPromptForm(w, r, p, form.Errors(ferr))
		return
	}

	// Title and body edits never touch the slug; published URLs are stable
	// for their lifetime.
	wasPublished := p.Published()
	p.Title = f.Title
	p.Body = f.Body
	p.Status = f.Status
	p.CategoryID = f.CategoryID
	if !wasPublished && p.Published() {
		now := time.Now()
		p.PublishedAt = &now
	}

	if err := c.prompts.Update(r.Context(), p); err != nil {
		c.serverError(w, "prompt update", err)
		return
	}
	if err := c.prompts.SetTags(r.Context(), p.ID, parseTags(f.Tags)); err != nil {
		c.serverError(w, "prompt tags", err)
		return
	}

	http.Redirect(w, r, "/admin/prompts/"+p.ID, http.StatusSeeOther)
}

/*──────────────────────────── Categories ───────────────────────────────────*/

func (c *Comp) handleCategoryCreate(w http.ResponseWriter, r *http.Request) {
	if !c.checkCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	f := categoryForm{Name: strings.TrimSpace(r.PostFormValue("name"))}
	f.Sort, _ = strconv.Atoi(r.PostFormValue("sort"))
	if err := form.Validate(f); err != nil {
		http.Error(w, "category name is required", http.StatusUnprocessableEntity)
		return
	}

	// Category slugs share the generator but skip the random tail; names
	// are few and uniqueness is resolved with a numeric suffix.
	existing, err := c.categories.Slugs(r.Context())
	if err != nil {
		c.serverError(w, "category slug set", err)
		return
	}
	base := slug.Base(f.Name)
	cand := base
	for n := 1; ; n++ {
		if _, taken := existing[cand]; !taken {
			break
		}
		cand = fmt.Sprintf("%s-%d", base, n)
	}
	rec := &category.Record{
		Name: f.Name,
		Slug: cand,
		Sort: f.Sort,
	}
	if err := c.categories.Insert(r.Context(), rec); err != nil {
		c.serverError(w, "category insert", err)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

/*──────────────────────────── Asset upload ─────────────────────────────────*/

func (c *Comp) handleAssetUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
		return
	}
	if !c.guard.Verify(r.FormValue(csrf.FieldName)) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ct := header.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		http.Error(w, "only images are accepted", http.StatusUnsupportedMediaType)
		return
	}

	// Stored under a fresh UUID so uploads never collide or leak the
	// original filename into URLs.
	id := uuid.NewString()
	key := id + ext(header.Filename)
	n, err := c.store.Save(r.Context(), key, io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.serverError(w, "asset save", err)
		return
	}

	rec := &asset.Record{
		ID:          id,
		Filename:    header.Filename,
		Path:        key,
		ContentType: ct,
		ByteSize:    n,
	}
	if pid := r.FormValue("prompt_id"); pid != "" {
		rec.PromptID = &pid
	}
	if err := c.assets.Insert(r.Context(), rec); err != nil {
		c.serverError(w, "asset insert", err)
		return
	}

	metrics.AssetUploadsTotal.Inc()
	zap.S().Infow("asset uploaded", "id", id, "bytes", n)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

// bindPromptForm parses and validates the shared create/edit form.
func (c *Comp) bindPromptForm(r *http.Request) (promptForm, error) {
	catID, _ := strconv.ParseUint(r.PostFormValue("category_id"), 10, 64)
	f := promptForm{
		Title:      strings.TrimSpace(r.PostFormValue("title")),
		Body:       r.PostFormValue("body"),
		CategoryID: catID,
		Status:     r.PostFormValue("status"),
		Tags:       r.PostFormValue("tags"),
	}
	return f, form.Validate(f)
}

func (c *Comp) rerenderPromptForm(w http.ResponseWriter, r *http.Request, p *prompt.Prompt, fields []form.ErrorField) {
	cats, err := c.categories.All(r.Context())
	if err != nil {
		c.serverError(w, "category listing", err)
		return
	}
	c.render(w, "prompt_form", map[string]any{
		"CSRF":       c.token(),
		"Categories": cats,
		"Prompt":     p,
		"Fields":     fields,
	})
}

// parseTags splits a comma-separated tag string, dropping blanks.
func parseTags(s string) []prompt.Tag {
	parts := strings.Split(s, ",")
	tags := make([]prompt.Tag, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		tags = append(tags, prompt.Tag{Name: name})
	}
	return tags
}

// ext returns the lowercase filename extension, "" when absent.
func ext(name string) string {
	if i := strings.LastIndexByte(name, '.'); i != -1 {
		return strings.ToLower(name[i:])
	}
	return ""
}

func (c *Comp) token() string {
	tok, err := c.guard.Token()
	if err != nil {
		zap.S().Errorw("csrf token", "error", err)
	}
	return tok
}

func (c *Comp) checkCSRF(r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		return false
	}
	return c.guard.Verify(r.PostFormValue(csrf.FieldName))
}

func (c *Comp) render(w http.ResponseWriter, name string, data map[string]any) {
	if err := c.views.Render(w, "admin", name, data); err != nil {
		zap.S().Errorw("admin render", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (c *Comp) serverError(w http.ResponseWriter, what string, err error) {
	zap.S().Errorw("admin "+what, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
