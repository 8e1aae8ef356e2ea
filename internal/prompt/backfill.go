// internal/prompt/backfill.go
//
// One-shot slug backfill for prompts created before slug URLs existed.
//
// Context
// -------
// Legacy rows have no slug; the gallery addressed them by raw identifier.
// BackfillSlugs walks every such row, derives a slug from the title with the
// row's own id as disambiguator, and writes it back.  The reservation set is
// updated before the next row is processed, so two legacy rows with the same
// title can never race each other into the same slug within one pass.
//
// Failure isolation: one row's UPDATE failing is counted and logged, and the
// pass moves on.  Re-running the pass is idempotent; a second run finds no
// slug-less rows and writes nothing.
package prompt

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aikotoba-jp/aikotoba/internal/metrics"
	"github.com/aikotoba-jp/aikotoba/internal/slug"
)

// BackfillStore is the storage contract the backfill needs.  *Repo
// satisfies it.
type BackfillStore interface {
	WithoutSlug(ctx context.Context) ([]SlugTarget, error)
	AllSlugs(ctx context.Context) (map[string]struct{}, error)
	UpdateSlug(ctx context.Context, id, slug string) error
}

// BackfillResult reports what one pass did.
type BackfillResult struct {
	Updated int
	Failed  int
}

// BackfillSlugs assigns a slug to every prompt lacking one.  The returned
// error covers only the two seed queries; per-row update failures are
// reflected in Result.Failed.
func BackfillSlugs(ctx context.Context, store BackfillStore) (BackfillResult, error) {
	var res BackfillResult

	targets, err := store.WithoutSlug(ctx)
	if err != nil {
		return res, fmt.Errorf("backfill: %w", err)
	}
	if len(targets) == 0 {
		return res, nil
	}

	existing, err := store.AllSlugs(ctx)
	if err != nil {
		return res, fmt.Errorf("backfill: %w", err)
	}

	for _, t := range targets {
		s := slug.ResolveUnique(t.Title, t.ID, existing)
		if err := store.UpdateSlug(ctx, t.ID, s); err != nil {
			res.Failed++
			metrics.SlugBackfillErrorsTotal.Inc()
			zap.L().Warn("slug backfill row failed",
				zap.String("prompt", t.ID),
				zap.Error(err))
			continue
		}
		res.Updated++
		metrics.SlugBackfillTotal.Inc()
	}

	zap.L().Info("slug backfill done",
		zap.Int("updated", res.Updated),
		zap.Int("failed", res.Failed))
	return res, nil
}
