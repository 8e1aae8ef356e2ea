// internal/acl/middleware.go
//
// Chi middleware helpers that gate the admin routes.

package acl

import (
	"net/http"

	"github.com/aikotoba-jp/aikotoba/internal/session"
)

// RequireLogin verifies the session cookie and stashes the session in the
// request context.  Anonymous requests are redirected to the login form.
func RequireLogin(mgr *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := mgr.Current(r)
			if !ok {
				http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// RequirePermission ensures the logged-in user's role allows action.  Mount
// inside RequireLogin; requests without a session are rejected outright.
func RequirePermission(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if !Allowed(s.Role, action) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
