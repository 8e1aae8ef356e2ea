// internal/app/app.go
//
// Application aggregate: one struct owning every shared resource the
// gallery needs (config, DB pool, Redis counter, blob store, view engine,
// sessions, and CSRF).  cmd/web builds exactly one App and mounts its
// Router.
//
// Context
// -------
// Components receive the App through the component.AppInfo interface, so
// they never import this package and the registry stays cycle-free.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package app

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aikotoba-jp/aikotoba/internal/config"
	"github.com/aikotoba-jp/aikotoba/internal/csrf"
	"github.com/aikotoba-jp/aikotoba/internal/database"
	"github.com/aikotoba-jp/aikotoba/internal/session"
	"github.com/aikotoba-jp/aikotoba/internal/stats"
	"github.com/aikotoba-jp/aikotoba/internal/storage"
	"github.com/aikotoba-jp/aikotoba/internal/view"
)

// App owns the process-wide resources.
type App struct {
	Cfg      *config.Config
	DB       *sqlx.DB
	Views    *view.Engine
	Store    storage.Store
	Stats    *stats.Counter
	Sessions *session.Manager
	CSRF     *csrf.Guard
}

// New wires every resource from the loaded configuration.  Steps:
//
//  1. Open the MySQL pool (with ping retries).
//  2. Connect the Redis view counter (optional; empty addr disables it).
//  3. Open the local blob store.
//  4. Build the view engine, session manager, and CSRF guard.
func New(ctx context.Context, cfg *config.Config, dev bool) (*App, error) {
	db, err := database.OpenWithOptions(ctx, cfg.DSN(), database.Defaults())
	if err != nil {
		return nil, err
	}

	counter, err := stats.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		db.Close()
		return nil, err
	}

	store, err := storage.NewLocal(cfg.Storage.Path)
	if err != nil {
		db.Close()
		counter.Close()
		return nil, err
	}

	return &App{
		Cfg:      cfg,
		DB:       db,
		Views:    view.New(cfg.Paths.Root, dev),
		Store:    store,
		Stats:    counter,
		Sessions: session.NewManager(cfg.Session.Secret, time.Duration(cfg.Session.TTLHours)*time.Hour),
		CSRF:     csrf.NewGuard(cfg.Session.Secret),
	}, nil
}

// Close releases pooled resources.  Safe to call once at shutdown.
func (a *App) Close() error {
	a.Stats.Close()
	return a.DB.Close()
}

//
// component.AppInfo
//

func (a *App) GetDB() *sqlx.DB               { return a.DB }
func (a *App) GetConfig() *config.Config     { return a.Cfg }
func (a *App) GetViews() *view.Engine        { return a.Views }
func (a *App) GetStorage() storage.Store     { return a.Store }
func (a *App) GetStats() *stats.Counter      { return a.Stats }
func (a *App) GetSessions() *session.Manager { return a.Sessions }
func (a *App) GetCSRF() *csrf.Guard          { return a.CSRF }
