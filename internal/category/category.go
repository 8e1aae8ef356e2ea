// Package category holds the model and query helpers for the `category`
// table.  Categories are few and change rarely; callers may cache the All()
// result per request.
package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no category matches the lookup.
var ErrNotFound = errors.New("category not found")

// Record mirrors one row in the `category` table.
type Record struct {
	ID        uint64    `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	Sort      int       `db:"sort"`
	CreatedAt time.Time `db:"created_at"`
}

// Repo wraps the shared *sqlx.DB.  Construct with NewRepo.
type Repo struct {
	db *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// All returns every category in display order.
func (r *Repo) All(ctx context.Context) ([]Record, error) {
	const q = `
        SELECT id, name, slug, sort, created_at
        FROM   category
        ORDER  BY sort, name`
	var rows []Record
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return rows, nil
}

// BySlug fetches one category.
func (r *Repo) BySlug(ctx context.Context, slug string) (*Record, error) {
	const q = `
        SELECT id, name, slug, sort, created_at
        FROM   category
        WHERE  slug = ?
        LIMIT  1`
	var rec Record
	if err := r.db.GetContext(ctx, &rec, q, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("category by slug: %w", err)
	}
	return &rec, nil
}

// Insert stores a new category.  The slug is derived by the caller and must
// already be unique.
func (r *Repo) Insert(ctx context.Context, rec *Record) error {
	const q = `INSERT INTO category (name, slug, sort) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rec.Name, rec.Slug, rec.Sort)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = uint64(id)
	}
	return nil
}

// Slugs returns the set of assigned category slugs for collision checks.
func (r *Repo) Slugs(ctx context.Context) (map[string]struct{}, error) {
	const q = `SELECT slug FROM category`
	var slugs []string
	if err := r.db.SelectContext(ctx, &slugs, q); err != nil {
		return nil, fmt.Errorf("category slugs: %w", err)
	}
	set := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		set[s] = struct{}{}
	}
	return set, nil
}
