// internal/session/session.go
//
// Signed-cookie sessions for the admin CMS.
//
// Context
// -------
// Logging in sets one cookie, "aikotoba_session", carrying the editor's
// email, role, and expiry, HMAC-SHA256 signed with the configured session
// secret.  No server-side session table: the payload is small, tamper-proof,
// and expires on its own.  All callers (components/admin) rely only on this
// tiny API, so swapping in a server-side store later is painless.
//
// Token shape: base64url(email|role|unix-expiry) + "." + base64url(mac).
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const cookieName = "aikotoba_session"

// Session is the decoded cookie payload.
type Session struct {
	Email   string
	Role    string
	Expires time.Time
}

// Manager signs and verifies session cookies.  Construct once at boot and
// inject into the admin component.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager builds a Manager from the configured secret and lifetime.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Login sets the session cookie after credential verification succeeds.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, email, role string) {
	exp := time.Now().Add(m.ttl)
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    m.encode(email, role, exp),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil, // only send over HTTPS
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

// Logout clears the session cookie.
func (m *Manager) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Current returns the verified session, if any.  ok == false when the
// cookie is missing, tampered with, or expired.
func (m *Manager) Current(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	return m.decode(c.Value)
}

//
// encoding
//

var b64 = base64.RawURLEncoding

func (m *Manager) encode(email, role string, exp time.Time) string {
	payload := b64.EncodeToString([]byte(
		email + "|" + role + "|" + strconv.FormatInt(exp.Unix(), 10)))
	return payload + "." + b64.EncodeToString(m.sign(payload))
}

func (m *Manager) decode(token string) (*Session, bool) {
	payload, sig, ok := strings.Cut(token, ".")
	if !ok {
		return nil, false
	}
	wantSig, err := b64.DecodeString(sig)
	if err != nil {
		return nil, false
	}
	if subtle.ConstantTimeCompare(m.sign(payload), wantSig) != 1 {
		return nil, false
	}

	raw, err := b64.DecodeString(payload)
	if err != nil {
		return nil, false
	}
	parts := strings.Split(string(raw), "|")
	if len(parts) != 3 {
		return nil, false
	}
	unix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return nil, false
	}
	exp := time.Unix(unix, 0)
	if time.Now().After(exp) {
		return nil, false
	}
	return &Session{Email: parts[0], Role: parts[1], Expires: exp}, true
}

func (m *Manager) sign(payload string) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}
