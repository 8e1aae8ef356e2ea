// cmd/web/main.go
//
// Aikotoba – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (server-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load and validate configuration (YAML + AIKOTOBA_ env overlay).
//
//  4. Resolve vault: secret references when any are present.
//
//  5. Load the optional GeoLite2 database for request enrichment.
//
//  6. Build the application aggregate (MySQL, Redis, storage, views).
//
//  7. Mount the component router, wrap it with ForceHTTPS, and serve with
//     hardened timeouts.  SIGINT/SIGTERM drain in-flight requests.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aikotoba-jp/aikotoba/internal/app"
	"github.com/aikotoba-jp/aikotoba/internal/config"
	"github.com/aikotoba-jp/aikotoba/internal/logger"
	"github.com/aikotoba-jp/aikotoba/internal/middleware"
	"github.com/aikotoba-jp/aikotoba/internal/requestinfo"
	"github.com/aikotoba-jp/aikotoba/internal/server"
	"github.com/aikotoba-jp/aikotoba/internal/vault"

	_ "github.com/aikotoba-jp/aikotoba/components/admin"
	_ "github.com/aikotoba-jp/aikotoba/components/gallery"
)

const serverEnvPath = "/usr/local/etc/aikotoba/global.env"

// loadEnv prefers the server-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	//
	// ── 1.  Configuration ───────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	sugar, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = sugar.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//
	// ── 2.  Vault secrets (only when referenced) ────────────────────────
	//
	if cfg.NeedsVault() {
		vc, err := vault.New(ctx, sugar.Infof)
		if err != nil {
			sugar.Fatalw("vault connect", "error", err)
		}
		if err := cfg.ResolveSecrets(ctx, vc); err != nil {
			sugar.Fatalw("vault resolve", "error", err)
		}
	}

	//
	// ── 3.  GeoIP (optional) ────────────────────────────────────────────
	//
	if err := requestinfo.InitGeo(cfg.GeoIP.Path); err != nil {
		sugar.Warnw("geoip disabled", "path", cfg.GeoIP.Path, "error", err)
	}

	//
	// ── 4.  Application aggregate ───────────────────────────────────────
	//
	dev := os.Getenv("AIKOTOBA_DEV") != ""
	application, err := app.New(ctx, cfg, dev)
	if err != nil {
		sugar.Fatalw("app boot", "error", err)
	}
	defer application.Close()
	sugar.Infow("database online", "redis", application.Stats.Enabled())

	//
	// ── 5.  HTTP server ─────────────────────────────────────────────────
	//
	handler := middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS, application.Router())
	srv := server.New(cfg.HTTP.ListenAddr, handler)

	go func() {
		sugar.Infow("gallery online", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("http server", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("shutdown", "error", err)
	}
}
