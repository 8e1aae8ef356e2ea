// Package user holds the admin account model and credential check.  The
// gallery has no public accounts; rows exist only for CMS editors.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// Roles stored in the `user.role` column.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// ErrNotFound is returned when no account matches the email.
var ErrNotFound = errors.New("user not found")

// Record mirrors one row in the `user` table.
type Record struct {
	ID           uint64    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

// Repo wraps the shared *sqlx.DB.  Construct with NewRepo.
type Repo struct {
	db *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// ByEmail fetches one account.
func (r *Repo) ByEmail(ctx context.Context, email string) (*Record, error) {
	const q = `
        SELECT id, email, password_hash, role, created_at
        FROM   user
        WHERE  email = ?
        LIMIT  1`
	var rec Record
	if err := r.db.GetContext(ctx, &rec, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return &rec, nil
}

// Authenticate verifies email + password and returns the account on success.
// A missing account and a wrong password are indistinguishable to the
// caller; both return ErrNotFound so login errors leak nothing.
func (r *Repo) Authenticate(ctx context.Context, email, password string) (*Record, error) {
	rec, err := r.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Burn comparable time so absent accounts are not detectable
			// by response latency.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		}
		return nil, ErrNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// HashPassword wraps bcrypt with the default cost, used by account tooling.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// dummyHash is a valid bcrypt digest of an unguessable string, compared
// against when the account does not exist.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")
