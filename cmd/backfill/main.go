// cmd/backfill/main.go
//
// One-shot slug backfill for legacy prompt rows.
//
// Usage
// -----
//
//	aikotoba-backfill [-dry-run]
//
// Reads the same configuration as cmd/web, assigns a slug to every prompt
// row that lacks one, and exits non-zero only when the seed queries fail.
// Individual row failures are logged and counted, never fatal, so the run
// is safe to repeat until clean.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/aikotoba-jp/aikotoba/internal/config"
	"github.com/aikotoba-jp/aikotoba/internal/database"
	"github.com/aikotoba-jp/aikotoba/internal/logger"
	"github.com/aikotoba-jp/aikotoba/internal/prompt"
	"github.com/aikotoba-jp/aikotoba/internal/slug"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	sugar, err := logger.New(cfg.Paths.Root, true)
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = sugar.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.OpenWithOptions(ctx, cfg.DSN(), database.Defaults())
	if err != nil {
		sugar.Fatalw("connect database", "error", err)
	}
	defer db.Close()

	repo := prompt.NewRepo(db)

	if *dryRun {
		targets, err := repo.WithoutSlug(ctx)
		if err != nil {
			sugar.Fatalw("list prompts without slug", "error", err)
		}
		existing, err := repo.AllSlugs(ctx)
		if err != nil {
			sugar.Fatalw("list assigned slugs", "error", err)
		}
		for _, t := range targets {
			sugar.Infow("would assign",
				"id", t.ID, "slug", slug.ResolveUnique(t.Title, t.ID, existing))
		}
		sugar.Infow("dry run complete", "rows", len(targets))
		return
	}

	res, err := prompt.BackfillSlugs(ctx, repo)
	if err != nil {
		sugar.Fatalw("backfill", "error", err)
	}
	sugar.Infow("backfill complete", "updated", res.Updated, "failed", res.Failed)
}
