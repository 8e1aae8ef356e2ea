// internal/component/appinfo.go
package component

import (
	"github.com/jmoiron/sqlx"

	"github.com/aikotoba-jp/aikotoba/internal/config"
	"github.com/aikotoba-jp/aikotoba/internal/csrf"
	"github.com/aikotoba-jp/aikotoba/internal/session"
	"github.com/aikotoba-jp/aikotoba/internal/stats"
	"github.com/aikotoba-jp/aikotoba/internal/storage"
	"github.com/aikotoba-jp/aikotoba/internal/view"
)

// AppInfo exposes shared resources to Components during Init.
type AppInfo interface {
	GetDB() *sqlx.DB
	GetConfig() *config.Config
	GetViews() *view.Engine
	GetStorage() storage.Store
	GetStats() *stats.Counter
	GetSessions() *session.Manager
	GetCSRF() *csrf.Guard
}
