// components/admin/admin_test.go
//
// Handler tests over sqlmock-backed repositories.  CSRF tokens are minted
// with the same guard the component verifies against, so POST flows run the
// real check.  Run: go test ./components/admin -v

package admin

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/aikotoba-jp/aikotoba/internal/asset"
	"github.com/aikotoba-jp/aikotoba/internal/category"
	"github.com/aikotoba-jp/aikotoba/internal/config"
	"github.com/aikotoba-jp/aikotoba/internal/csrf"
	"github.com/aikotoba-jp/aikotoba/internal/prompt"
	"github.com/aikotoba-jp/aikotoba/internal/session"
	"github.com/aikotoba-jp/aikotoba/internal/slug"
	"github.com/aikotoba-jp/aikotoba/internal/user"
	"github.com/aikotoba-jp/aikotoba/internal/view"
)

const testSecret = "admin-test-secret"

// newComp wires a Comp against sqlmock.  Templates are throwaway stubs; the
// tests assert on routing, status codes, and SQL, not markup.
func newComp(t *testing.T) (*Comp, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	sdb := sqlx.NewDb(db, "mysql")

	root := t.TempDir()
	for _, name := range []string{"login", "dashboard", "prompt_form"} {
		full := filepath.Join(root, "templates", "admin", name+".html")
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(name+" ok"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	c := &Comp{
		cfg:        &config.Config{},
		views:      view.New(root, false),
		prompts:    prompt.NewRepo(sdb),
		categories: category.NewRepo(sdb),
		users:      user.NewRepo(sdb),
		assets:     asset.NewRepo(sdb),
		sessions:   session.NewManager(testSecret, time.Hour),
		guard:      csrf.NewGuard(testSecret),
	}
	return c, mock
}

// loggedIn returns a session cookie for an editor account.
func loggedIn(t *testing.T, c *Comp) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	c.sessions.Login(rec, httptest.NewRequest(http.MethodPost, "/admin/login", nil),
		"editor@example.jp", user.RoleEditor)
	return rec.Result().Cookies()[0]
}

func postForm(t *testing.T, c *Comp, path string, values url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.Routes().ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, c *Comp) string {
	t.Helper()
	tok, err := c.guard.Token()
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestLoginSuccessSetsSession(t *testing.T) {
	c, mock := newComp(t)

	hash, err := user.HashPassword("correct-horse")
	if err != nil {
		t.Fatal(err)
	}
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE  email = ?`)).
		WithArgs("editor@example.jp").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "email", "password_hash", "role", "created_at"}).
			AddRow(uint64(1), "editor@example.jp", hash, "editor", time.Now()))

	rec := postForm(t, c, "/login", url.Values{
		"csrf_token": {token(t, c)},
		"email":      {"editor@example.jp"},
		"password":   {"correct-horse"},
	}, nil)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected session cookie, got %d", len(cookies))
	}
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookies[0])
	if s, ok := c.sessions.Current(req); !ok || s.Role != "editor" {
		t.Fatalf("session not valid: %+v", s)
	}
}

func TestLoginWrongPasswordRerenders(t *testing.T) {
	c, mock := newComp(t)

	hash, _ := user.HashPassword("correct-horse")
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE  email = ?`)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "email", "password_hash", "role", "created_at"}).
			AddRow(uint64(1), "editor@example.jp", hash, "editor", time.Now()))

	rec := postForm(t, c, "/login", url.Values{
		"csrf_token": {token(t, c)},
		"email":      {"editor@example.jp"},
		"password":   {"wrong"},
	}, nil)

	if rec.Code != http.StatusOK || len(rec.Result().Cookies()) != 0 {
		t.Fatalf("status = %d, cookies = %d", rec.Code, len(rec.Result().Cookies()))
	}
}

func TestLoginUnknownAccountRerenders(t *testing.T) {
	c, mock := newComp(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE  email = ?`)).
		WillReturnError(sql.ErrNoRows)

	rec := postForm(t, c, "/login", url.Values{
		"csrf_token": {token(t, c)},
		"email":      {"ghost@example.jp"},
		"password":   {"whatever"},
	}, nil)

	if rec.Code != http.StatusOK || len(rec.Result().Cookies()) != 0 {
		t.Fatal("unknown account must not log in")
	}
}

func TestDashboardRequiresLogin(t *testing.T) {
	c, _ := newComp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/login" {
		t.Fatalf("redirect to %q", loc)
	}
}

func TestPromptCreateAssignsUniqueSlug(t *testing.T) {
	c, mock := newComp(t)
	cookie := loggedIn(t, c)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE  slug IS NOT NULL AND slug <> ''`)).
		WillReturnRows(sqlmock.NewRows([]string{"slug"}).AddRow("old-one-aaa111"))

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO prompt`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM prompt_tag`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tag`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO prompt_tag`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rec := postForm(t, c, "/prompts", url.Values{
		"csrf_token":  {token(t, c)},
		"title":       {"夕焼けのポートレート"},
		"body":        {"body text"},
		"category_id": {"1"},
		"status":      {"draft"},
		"tags":        {"写真"},
	}, cookie)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
	// Redirect target carries the new ID; the slug itself is validated by
	// construction in the slug package, spot-check the shape via Location.
	if !strings.HasPrefix(rec.Header().Get("Location"), "/admin/prompts/") {
		t.Fatalf("redirect to %q", rec.Header().Get("Location"))
	}
}

func TestPromptCreateRejectsBadCSRF(t *testing.T) {
	c, _ := newComp(t)
	cookie := loggedIn(t, c)

	rec := postForm(t, c, "/prompts", url.Values{
		"csrf_token": {"forged"},
		"title":      {"x"},
	}, cookie)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestPromptCreateValidation(t *testing.T) {
	c, mock := newComp(t)
	cookie := loggedIn(t, c)

	// Re-render needs the category list.
	mock.ExpectQuery(regexp.QuoteMeta(`FROM   category`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "sort", "created_at"}))

	rec := postForm(t, c, "/prompts", url.Values{
		"csrf_token": {token(t, c)},
		"title":      {""},
		"body":       {""},
		"status":     {"draft"},
	}, cookie)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want re-rendered form", rec.Code)
	}
}

func TestPromptUpdateKeepsSlug(t *testing.T) {
	c, mock := newComp(t)
	cookie := loggedIn(t, c)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE  p.id = ?`)).
		WithArgs("id-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "slug", "body", "status", "category_id",
			"category_slug", "tags", "created_at", "updated_at", "published_at",
		}).AddRow("id-1", "Old Title", "old-title-abc123", "old", "draft",
			uint64(1), "photo", []byte(`[]`), now, now, nil))

	// The UPDATE arg list has no slug; title edits leave the URL alone.
	mock.ExpectExec(regexp.QuoteMeta(`SET    title = ?, body = ?, status = ?, category_id = ?, published_at = ?`)).
		WithArgs("Completely New Title", "new body", "draft", uint64(1), nil, "id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM prompt_tag`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	rec := postForm(t, c, "/prompts/id-1", url.Values{
		"csrf_token":  {token(t, c)},
		"title":       {"Completely New Title"},
		"body":        {"new body"},
		"category_id": {"1"},
		"status":      {"draft"},
	}, cookie)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCategoryCreateSlugCollision(t *testing.T) {
	c, mock := newComp(t)
	cookie := loggedIn(t, c)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT slug FROM category`)).
		WillReturnRows(sqlmock.NewRows([]string{"slug"}).AddRow("portrait"))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO category`)).
		WithArgs("Portrait", "portrait-1", 0).
		WillReturnResult(sqlmock.NewResult(2, 1))

	rec := postForm(t, c, "/categories", url.Values{
		"csrf_token": {token(t, c)},
		"name":       {"Portrait"},
	}, cookie)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

// Sanity: a freshly created prompt slug passes the package validator.
func TestCreatedSlugShape(t *testing.T) {
	existing := map[string]struct{}{}
	s := slug.ResolveUnique("夕焼けのポートレート", "0c9f3a6e-1d2b-4c5e-8f7a-123456abcdef", existing)
	if !slug.IsValid(s) {
		t.Fatalf("generated slug %q invalid", s)
	}
}
