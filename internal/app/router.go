// internal/app/router.go
//
// Application router.
//
// Built once at boot.  Mounts every registered component at "/" and wires
// logging, security headers, and request-info enrichment in the correct
// order.  The Prometheus endpoint and the media file server bypass the
// request-info middleware; neither benefits from UA parsing.

package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aikotoba-jp/aikotoba/internal/component"
	"github.com/aikotoba-jp/aikotoba/internal/middleware"
	"github.com/aikotoba-jp/aikotoba/internal/requestinfo"
)

// Router builds and returns the root http.Handler.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Log)
	r.Use(middleware.Security)

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/media/*", http.StripPrefix("/media/",
		http.FileServer(http.Dir(a.Cfg.Storage.Path))))

	// Page routes get UA + Geo enrichment.
	r.Group(func(pages chi.Router) {
		pages.Use(requestinfo.Enrich)
		for _, c := range component.All() {
			if ini, ok := c.(component.Initializer); ok {
				if err := ini.Init(a); err != nil {
					zap.S().Fatalw("component init", "component", c.Name(), "error", err)
				}
			}
			pages.Mount(c.Mount(), c.Routes())
			zap.S().Infow("component mounted",
				"component", c.Name(), "mount", c.Mount())
		}
	})

	return r
}
