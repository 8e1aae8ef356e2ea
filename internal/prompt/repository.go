// internal/prompt/repository.go
//
// sqlx query helpers for the `prompt` table.
//
// Context
// -------
// Repo wraps the process-wide *sqlx.DB and is constructed once in main(),
// then handed to every consumer (gallery routes, admin CMS, backfill).  The
// tag payload is aggregated into one JSON column per row so a listing costs
// a single round trip; TagList.Scan resolves the payload shape.
//
// Notes
// -----
// • Listing queries order newest-first on published_at.
// • sql.ErrNoRows is mapped to ErrNotFound so callers never import
//   database/sql for the sentinel.
// • Oxford commas, two spaces after periods.
package prompt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no prompt matches the lookup.
var ErrNotFound = errors.New("prompt not found")

// tagsColumn aggregates a prompt's tags into one JSON array column.  NULL
// when the prompt has no tags.
const tagsColumn = `(SELECT JSON_ARRAYAGG(JSON_OBJECT('name', t.name, 'color', t.color))
           FROM prompt_tag pt JOIN tag t ON t.id = pt.tag_id
           WHERE pt.prompt_id = p.id)`

const selectColumns = `p.id, p.title, COALESCE(p.slug, '') AS slug, p.body, p.status,
       p.category_id, c.slug AS category_slug, ` + tagsColumn + ` AS tags,
       p.created_at, p.updated_at, p.published_at`

// Repo is the storage collaborator for prompts.  Zero value is unusable;
// construct with NewRepo.
type Repo struct {
	db *sqlx.DB
}

// NewRepo wraps db.  The pool is owned by the caller.
func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// BySlug fetches one prompt by its canonical slug, any status.
func (r *Repo) BySlug(ctx context.Context, slug string) (*Prompt, error) {
	const q = `
        SELECT ` + selectColumns + `
        FROM   prompt p JOIN category c ON c.id = p.category_id
        WHERE  p.slug = ?
        LIMIT  1`
	var p Prompt
	if err := r.db.GetContext(ctx, &p, q, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("prompt by slug: %w", err)
	}
	return &p, nil
}

// ByID fetches one prompt by identifier, used for legacy-URL redirects and
// the admin editor.
func (r *Repo) ByID(ctx context.Context, id string) (*Prompt, error) {
	const q = `
        SELECT ` + selectColumns + `
        FROM   prompt p JOIN category c ON c.id = p.category_id
        WHERE  p.id = ?
        LIMIT  1`
	var p Prompt
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("prompt by id: %w", err)
	}
	return &p, nil
}

// ListRecent returns published prompts newest-first for the home page.
func (r *Repo) ListRecent(ctx context.Context, limit int) ([]Prompt, error) {
	const q = `
        SELECT ` + selectColumns + `
        FROM   prompt p JOIN category c ON c.id = p.category_id
        WHERE  p.status = 'published'
        ORDER  BY p.published_at DESC
        LIMIT  ?`
	var rows []Prompt
	if err := r.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, fmt.Errorf("list recent prompts: %w", err)
	}
	return rows, nil
}

// PublishedByCategory returns published prompts in one category, excluding
// excludeID, newest-first.  Used by category listings and as the candidate
// fetch for related-prompt scoring.
func (r *Repo) PublishedByCategory(ctx context.Context, categorySlug, excludeID string, limit int) ([]Prompt, error) {
	const q = `
        SELECT ` + selectColumns + `
        FROM   prompt p JOIN category c ON c.id = p.category_id
        WHERE  p.status = 'published'
          AND  c.slug = ?
          AND  p.id <> ?
        ORDER  BY p.published_at DESC
        LIMIT  ?`
	var rows []Prompt
	if err := r.db.SelectContext(ctx, &rows, q, categorySlug, excludeID, limit); err != nil {
		return nil, fmt.Errorf("published by category: %w", err)
	}
	return rows, nil
}

// PublishedExcluding returns published prompts from any category whose id is
// not in exclude, newest-first.  Used to backfill short related lists.
func (r *Repo) PublishedExcluding(ctx context.Context, exclude []string, limit int) ([]Prompt, error) {
	if len(exclude) == 0 {
		return r.ListRecent(ctx, limit)
	}
	q, args, err := sqlx.In(`
        SELECT `+selectColumns+`
        FROM   prompt p JOIN category c ON c.id = p.category_id
        WHERE  p.status = 'published'
          AND  p.id NOT IN (?)
        ORDER  BY p.published_at DESC
        LIMIT  ?`, exclude, limit)
	if err != nil {
		return nil, fmt.Errorf("published excluding: %w", err)
	}
	var rows []Prompt
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("published excluding: %w", err)
	}
	return rows, nil
}

// PublishedByTag returns published prompts carrying one tag name.
func (r *Repo) PublishedByTag(ctx context.Context, tagName string, limit int) ([]Prompt, error) {
	const q = `
        SELECT ` + selectColumns + `
        FROM   prompt p
        JOIN   category c ON c.id = p.category_id
        JOIN   prompt_tag pt ON pt.prompt_id = p.id
        JOIN   tag t ON t.id = pt.tag_id
        WHERE  p.status = 'published'
          AND  t.name = ?
        ORDER  BY p.published_at DESC
        LIMIT  ?`
	var rows []Prompt
	if err := r.db.SelectContext(ctx, &rows, q, tagName, limit); err != nil {
		return nil, fmt.Errorf("published by tag: %w", err)
	}
	return rows, nil
}

// Insert stores a new prompt row.  The slug is assigned here, once; later
// title edits never touch it.
func (r *Repo) Insert(ctx context.Context, p *Prompt) error {
	const q = `
        INSERT INTO prompt (id, title, slug, body, status, category_id, published_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q,
		p.ID, p.Title, p.Slug, p.Body, p.Status, p.CategoryID, p.PublishedAt); err != nil {
		return fmt.Errorf("insert prompt: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of an existing prompt.  The slug is
// deliberately absent from the SET list.
func (r *Repo) Update(ctx context.Context, p *Prompt) error {
	const q = `
        UPDATE prompt
        SET    title = ?, body = ?, status = ?, category_id = ?, published_at = ?
        WHERE  id = ?`
	if _, err := r.db.ExecContext(ctx, q,
		p.Title, p.Body, p.Status, p.CategoryID, p.PublishedAt, p.ID); err != nil {
		return fmt.Errorf("update prompt: %w", err)
	}
	return nil
}

// SetTags replaces the prompt's tag bindings.  Unknown tag names are created
// on the fly so editors can invent tags from the prompt form.
func (r *Repo) SetTags(ctx context.Context, promptID string, tags []Tag) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set tags: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM prompt_tag WHERE prompt_id = ?`, promptID); err != nil {
		return fmt.Errorf("set tags: %w", err)
	}
	for _, t := range tags {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO tag (name, color) VALUES (?, ?)
            ON DUPLICATE KEY UPDATE color = VALUES(color)`, t.Name, t.Color); err != nil {
			return fmt.Errorf("set tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO prompt_tag (prompt_id, tag_id)
            SELECT ?, id FROM tag WHERE name = ?`, promptID, t.Name); err != nil {
			return fmt.Errorf("set tags: %w", err)
		}
	}
	return tx.Commit()
}

// WithoutSlug returns the id and title of every prompt lacking a slug, the
// work list for the backfill pass.
func (r *Repo) WithoutSlug(ctx context.Context) ([]SlugTarget, error) {
	const q = `
        SELECT id, title
        FROM   prompt
        WHERE  slug IS NULL OR slug = ''`
	var rows []SlugTarget
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("prompts without slug: %w", err)
	}
	return rows, nil
}

// AllSlugs returns every assigned slug, seeding collision checks.
func (r *Repo) AllSlugs(ctx context.Context) (map[string]struct{}, error) {
	const q = `
        SELECT slug
        FROM   prompt
        WHERE  slug IS NOT NULL AND slug <> ''`
	var slugs []string
	if err := r.db.SelectContext(ctx, &slugs, q); err != nil {
		return nil, fmt.Errorf("all slugs: %w", err)
	}
	set := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		set[s] = struct{}{}
	}
	return set, nil
}

// UpdateSlug writes one prompt's slug.
func (r *Repo) UpdateSlug(ctx context.Context, id, slug string) error {
	const q = `UPDATE prompt SET slug = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, slug, id); err != nil {
		return fmt.Errorf("update slug: %w", err)
	}
	return nil
}
