// internal/prompt/repository_test.go
//
// Unit-tests for the prompt repository using sqlmock.
//
// Run: go test ./internal/prompt -v

package prompt

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockRepo(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepo(sqlx.NewDb(db, "mysql")), mock
}

func promptColumns() []string {
	return []string{
		"id", "title", "slug", "body", "status",
		"category_id", "category_slug", "tags",
		"created_at", "updated_at", "published_at",
	}
}

func TestBySlug(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.slug = ?`)).
		WithArgs("hello-world-xyz456").
		WillReturnRows(sqlmock.NewRows(promptColumns()).
			AddRow("abc123xyz456", "Hello World", "hello-world-xyz456", "body", "published",
				uint64(3), "photo", []byte(`[{"name":"写真","color":"#ff9900"}]`),
				now, now, now))

	got, err := repo.BySlug(context.Background(), "hello-world-xyz456")
	if err != nil {
		t.Fatalf("BySlug error: %v", err)
	}
	if got.Title != "Hello World" || got.CategorySlug != "photo" {
		t.Fatalf("unexpected prompt: %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "写真" {
		t.Fatalf("unexpected tags: %+v", got.Tags)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestBySlugNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.slug = ?`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(promptColumns()))

	if _, err := repo.BySlug(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPublishedByCategory(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows(promptColumns()).
		AddRow("id-new", "New", "new-slug", "", "published", uint64(3), "photo",
			[]byte(`["写真"]`), now, now, now).
		AddRow("id-old", "Old", "old-slug", "", "published", uint64(3), "photo",
			nil, now, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`AND c.slug = ? AND p.id <> ? ORDER BY p.published_at DESC LIMIT ?`)).
		WithArgs("photo", "target-id", 12).
		WillReturnRows(rows)

	got, err := repo.PublishedByCategory(context.Background(), "photo", "target-id", 12)
	if err != nil {
		t.Fatalf("PublishedByCategory error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "id-new" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if len(got[1].Tags) != 0 {
		t.Fatalf("NULL tag payload should scan to empty list: %+v", got[1].Tags)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestPublishedExcluding(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`AND p.id NOT IN (?, ?) ORDER BY p.published_at DESC LIMIT ?`)).
		WithArgs("a", "b", 2).
		WillReturnRows(sqlmock.NewRows(promptColumns()).
			AddRow("c", "C", "c-slug", "", "published", uint64(1), "misc",
				nil, now, now, now))

	got, err := repo.PublishedExcluding(context.Background(), []string{"a", "b"}, 2)
	if err != nil {
		t.Fatalf("PublishedExcluding error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestWithoutSlugAndUpdateSlug(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title FROM prompt WHERE slug IS NULL OR slug = ''`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow("clq8abc123def456ghi789jkl", "Hello World"))

	targets, err := repo.WithoutSlug(context.Background())
	if err != nil {
		t.Fatalf("WithoutSlug error: %v", err)
	}
	if len(targets) != 1 || targets[0].Title != "Hello World" {
		t.Fatalf("unexpected targets: %+v", targets)
	}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE prompt SET slug = ? WHERE id = ?`)).
		WithArgs("hello-world-789jkl", "clq8abc123def456ghi789jkl").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateSlug(context.Background(), "clq8abc123def456ghi789jkl", "hello-world-789jkl"); err != nil {
		t.Fatalf("UpdateSlug error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestAllSlugs(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT slug FROM prompt WHERE slug IS NOT NULL AND slug <> ''`)).
		WillReturnRows(sqlmock.NewRows([]string{"slug"}).
			AddRow("hello-world-xyz456").
			AddRow("写真-abc123"))

	got, err := repo.AllSlugs(context.Background())
	if err != nil {
		t.Fatalf("AllSlugs error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected set: %#v", got)
	}
	if _, ok := got["hello-world-xyz456"]; !ok {
		t.Fatalf("missing slug in set: %#v", got)
	}
}
