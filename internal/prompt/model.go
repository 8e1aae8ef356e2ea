package prompt

import "time"

// Status values for the `prompt.status` column.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Prompt mirrors one row in the `prompt` table, joined with its category
// slug and an aggregated tag payload.  Slug is empty for legacy rows that
// the backfill pass has not visited yet.
type Prompt struct {
	ID           string     `db:"id"`
	Title        string     `db:"title"`
	Slug         string     `db:"slug"`
	Body         string     `db:"body"`
	Status       string     `db:"status"`
	CategoryID   uint64     `db:"category_id"`
	CategorySlug string     `db:"category_slug"`
	Tags         TagList    `db:"tags"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	PublishedAt  *time.Time `db:"published_at"`
}

// Published reports whether the prompt is visible on the public gallery.
func (p *Prompt) Published() bool { return p.Status == StatusPublished }

// SlugTarget is the minimal projection the slug backfill operates on.
type SlugTarget struct {
	ID    string `db:"id"`
	Title string `db:"title"`
}
