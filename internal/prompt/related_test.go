package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSource serves canned candidate lists and records the exclusions it was
// asked for.
type fakeSource struct {
	byCategory    []Prompt
	byCategoryErr error

	excluding    []Prompt
	excludingErr error

	gotExclude []string
	gotLimit   int
}

func (f *fakeSource) PublishedByCategory(_ context.Context, _, _ string, limit int) ([]Prompt, error) {
	f.gotLimit = limit
	return f.byCategory, f.byCategoryErr
}

func (f *fakeSource) PublishedExcluding(_ context.Context, exclude []string, _ int) ([]Prompt, error) {
	f.gotExclude = exclude
	return f.excluding, f.excludingErr
}

func tagged(id string, names ...string) Prompt {
	tags := make(TagList, 0, len(names))
	for _, n := range names {
		tags = append(tags, Tag{Name: n})
	}
	return Prompt{ID: id, Status: StatusPublished, Tags: tags}
}

func TestRelatedRanksByTagOverlap(t *testing.T) {
	t.Parallel()

	// Candidates arrive newest-first: C, B, A.  A shares both target tags,
	// B one, C none, so the ranked order must invert the fetch order.
	src := &fakeSource{byCategory: []Prompt{
		tagged("c", "風景"),
		tagged("b", "写真"),
		tagged("a", "写真", "ポートレート"),
	}}
	f := NewFinder(src)

	got := f.Related(context.Background(), "target", "photo", []string{"写真", "ポートレート"}, 3)

	require.Len(t, got, 3)
	require.Equal(t, "a", got[0].ID) // score 1 + 2*2 = 5
	require.Equal(t, "b", got[1].ID) // score 1 + 2   = 3
	require.Equal(t, "c", got[2].ID) // score 1
}

func TestRelatedTagMatchIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	src := &fakeSource{byCategory: []Prompt{
		tagged("lower", "portrait"),
		tagged("upper", "PORTRAIT"),
	}}
	f := NewFinder(src)

	got := f.Related(context.Background(), "target", "photo", []string{"Portrait"}, 2)

	require.Len(t, got, 2)
	// Both match, so the stable sort keeps fetch order.
	require.Equal(t, "lower", got[0].ID)
	require.Equal(t, "upper", got[1].ID)
}

func TestRelatedTiesKeepFetchOrder(t *testing.T) {
	t.Parallel()

	src := &fakeSource{byCategory: []Prompt{
		tagged("newest"),
		tagged("middle"),
		tagged("oldest"),
	}}
	f := NewFinder(src)

	got := f.Related(context.Background(), "target", "photo", nil, 3)

	require.Equal(t, []string{"newest", "middle", "oldest"},
		[]string{got[0].ID, got[1].ID, got[2].ID})
}

func TestRelatedBackfillsShortLists(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		byCategory: []Prompt{tagged("a", "写真"), tagged("b")},
		excluding:  []Prompt{tagged("x"), tagged("y")},
	}
	f := NewFinder(src)

	got := f.Related(context.Background(), "target", "photo", []string{"写真"}, 4)

	require.Len(t, got, 4)
	require.Equal(t, "a", got[0].ID)
	require.Equal(t, "b", got[1].ID)
	// Backfilled entries append after scored results.
	require.Equal(t, "x", got[2].ID)
	require.Equal(t, "y", got[3].ID)
	// The second fetch must exclude the target and everything picked.
	require.ElementsMatch(t, []string{"target", "a", "b"}, src.gotExclude)
}

func TestRelatedOverFetchesCandidates(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	f := NewFinder(src)

	f.Related(context.Background(), "target", "photo", nil, 4)
	require.Equal(t, 12, src.gotLimit)
}

func TestRelatedTruncatesToLimit(t *testing.T) {
	t.Parallel()

	src := &fakeSource{byCategory: []Prompt{
		tagged("1"), tagged("2"), tagged("3"), tagged("4"), tagged("5"),
	}}
	f := NewFinder(src)

	got := f.Related(context.Background(), "target", "photo", nil, 2)
	require.Len(t, got, 2)
}

func TestRelatedDegradesToEmptyOnFetchFailure(t *testing.T) {
	t.Parallel()

	t.Run("candidate fetch fails", func(t *testing.T) {
		t.Parallel()
		src := &fakeSource{byCategoryErr: errors.New("db down")}
		got := NewFinder(src).Related(context.Background(), "t", "photo", nil, 4)
		require.Empty(t, got)
	})

	t.Run("backfill fetch fails", func(t *testing.T) {
		t.Parallel()
		src := &fakeSource{
			byCategory:   []Prompt{tagged("a")},
			excludingErr: errors.New("db down"),
		}
		got := NewFinder(src).Related(context.Background(), "t", "photo", nil, 4)
		require.Empty(t, got)
	})
}

func TestRelatedZeroLimit(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	require.Empty(t, NewFinder(src).Related(context.Background(), "t", "photo", nil, 0))
}
