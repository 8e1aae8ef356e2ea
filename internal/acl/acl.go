// internal/acl/acl.go
//
// Role checks for the admin CMS, and the request-context helpers that carry
// the authenticated session.
//
// Context
// -------
// Aikotoba keeps authorization deliberately small: every account holds a
// single role ("admin" or "editor") stored on the user row and signed into
// the session cookie.  Middleware verifies the cookie once, stashes the
// session in the request context, and downstream handlers read it back with
// FromContext.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.

package acl

import (
	"context"

	"github.com/aikotoba-jp/aikotoba/internal/session"
	"github.com/aikotoba-jp/aikotoba/internal/user"
)

// sessionKey is unexported to avoid context-key collisions.
type sessionKey struct{}

// WithSession returns a new context carrying the verified session.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext extracts the session from ctx.  ok is false when the request
// never passed the RequireLogin middleware.
func FromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*session.Session)
	return s, ok && s != nil
}

// Allowed reports whether role may perform the named action.  Editors can
// manage content; user management stays admin-only.
func Allowed(role, action string) bool {
	switch role {
	case user.RoleAdmin:
		return true
	case user.RoleEditor:
		return action != ActionManageUsers
	default:
		return false
	}
}

// Admin actions checked by handlers and middleware.
const (
	ActionManageContent = "content.manage"
	ActionManageUsers   = "users.manage"
)
