// internal/prompt/related.go
//
// Related-prompt lookup and ranking.
//
// Context
// -------
// The detail page shows up to N prompts "related" to the one being viewed.
// Relevance is cheap and deterministic: sharing the category is worth 1,
// each shared tag (case-insensitive) is worth 2.  Candidates come from one
// newest-first fetch of the same category, over-fetched 3x so re-ranking has
// room to work; a second fetch backfills from any category when the first
// round comes up short.
//
// The widget is supplementary, never critical path.  Any storage failure
// degrades to an empty list, logged at WARN, and the page renders without
// the rail.
package prompt

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/aikotoba-jp/aikotoba/internal/metrics"
)

const (
	categoryScore   = 1
	tagMatchScore   = 2
	candidateFactor = 3
)

// Source is the storage contract the finder needs.  *Repo satisfies it.
type Source interface {
	PublishedByCategory(ctx context.Context, categorySlug, excludeID string, limit int) ([]Prompt, error)
	PublishedExcluding(ctx context.Context, exclude []string, limit int) ([]Prompt, error)
}

// Finder ranks related prompts.  Concurrent lookups for the same prompt are
// collapsed into one storage round trip via singleflight.
type Finder struct {
	src Source
	sfg singleflight.Group
}

// NewFinder wraps src.
func NewFinder(src Source) *Finder { return &Finder{src: src} }

// Related returns up to limit published prompts relevant to the target,
// excluding the target itself.  It never returns an error; a failed lookup
// yields an empty list.
func (f *Finder) Related(ctx context.Context, excludeID, categorySlug string, tags []string, limit int) []Prompt {
	if limit <= 0 {
		return nil
	}
	start := time.Now()
	defer func() { metrics.RelatedQuerySeconds.Observe(time.Since(start).Seconds()) }()

	key := excludeID + "\x00" + categorySlug + "\x00" + strconv.Itoa(limit)
	v, err, _ := f.sfg.Do(key, func() (any, error) {
		return f.lookup(ctx, excludeID, categorySlug, tags, limit)
	})
	if err != nil {
		zap.L().Warn("related lookup failed",
			zap.String("prompt", excludeID),
			zap.Error(err))
		return nil
	}
	return v.([]Prompt)
}

func (f *Finder) lookup(ctx context.Context, excludeID, categorySlug string, tags []string, limit int) ([]Prompt, error) {
	candidates, err := f.src.PublishedByCategory(ctx, categorySlug, excludeID, limit*candidateFactor)
	if err != nil {
		return nil, err
	}

	picked := rank(tags, candidates, limit)
	if len(picked) >= limit {
		return picked, nil
	}

	// Short list: append recent prompts from any category, excluding the
	// target and everything already picked.  Backfilled entries carry no
	// score; they are lowest priority by construction.
	exclude := make([]string, 0, len(picked)+1)
	exclude = append(exclude, excludeID)
	for _, p := range picked {
		exclude = append(exclude, p.ID)
	}
	extra, err := f.src.PublishedExcluding(ctx, exclude, limit-len(picked))
	if err != nil {
		return nil, err
	}
	return append(picked, extra...), nil
}

// rank scores every candidate and returns the top limit entries.  The sort
// is stable, so equal scores keep the newest-first fetch order.
func rank(targetTags []string, candidates []Prompt, limit int) []Prompt {
	scores := make([]int, len(candidates))
	for i := range candidates {
		scores[i] = score(targetTags, candidates[i].Tags)
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	n := len(candidates)
	if n > limit {
		n = limit
	}
	out := make([]Prompt, 0, n)
	for _, idx := range order[:n] {
		out = append(out, candidates[idx])
	}
	return out
}

// score starts at 1 for the category match and adds 2 per shared tag name.
func score(targetTags []string, candidate TagList) int {
	s := categoryScore
	for _, want := range targetTags {
		for _, have := range candidate {
			if strings.EqualFold(want, have.Name) {
				s += tagMatchScore
			}
		}
	}
	return s
}
