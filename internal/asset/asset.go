// Package asset tracks uploaded image files.  The bytes live in blob
// storage (internal/storage); rows here carry the metadata the CMS and the
// gallery templates need.
package asset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no asset matches the lookup.
var ErrNotFound = errors.New("asset not found")

// Record mirrors one row in the `asset` table.  PromptID is nil for assets
// uploaded before being attached to a prompt.
type Record struct {
	ID          string    `db:"id"`
	PromptID    *string   `db:"prompt_id"`
	Filename    string    `db:"filename"`
	Path        string    `db:"path"`
	ContentType string    `db:"content_type"`
	ByteSize    int64     `db:"byte_size"`
	CreatedAt   time.Time `db:"created_at"`
}

// Repo wraps the shared *sqlx.DB.  Construct with NewRepo.
type Repo struct {
	db *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// Insert stores asset metadata after the bytes are in blob storage.
func (r *Repo) Insert(ctx context.Context, rec *Record) error {
	const q = `
        INSERT INTO asset (id, prompt_id, filename, path, content_type, byte_size)
        VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.PromptID, rec.Filename, rec.Path, rec.ContentType, rec.ByteSize); err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

// ByID fetches one asset.
func (r *Repo) ByID(ctx context.Context, id string) (*Record, error) {
	const q = `
        SELECT id, prompt_id, filename, path, content_type, byte_size, created_at
        FROM   asset
        WHERE  id = ?
        LIMIT  1`
	var rec Record
	if err := r.db.GetContext(ctx, &rec, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("asset by id: %w", err)
	}
	return &rec, nil
}

// ByPrompt returns every asset attached to one prompt, oldest first.
func (r *Repo) ByPrompt(ctx context.Context, promptID string) ([]Record, error) {
	const q = `
        SELECT id, prompt_id, filename, path, content_type, byte_size, created_at
        FROM   asset
        WHERE  prompt_id = ?
        ORDER  BY created_at`
	var rows []Record
	if err := r.db.SelectContext(ctx, &rows, q, promptID); err != nil {
		return nil, fmt.Errorf("assets by prompt: %w", err)
	}
	return rows, nil
}

// Attach binds an uploaded asset to a prompt.
func (r *Repo) Attach(ctx context.Context, assetID, promptID string) error {
	const q = `UPDATE asset SET prompt_id = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, promptID, assetID); err != nil {
		return fmt.Errorf("attach asset: %w", err)
	}
	return nil
}

// Delete removes the metadata row.  Callers remove the blob separately.
func (r *Repo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM asset WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}
