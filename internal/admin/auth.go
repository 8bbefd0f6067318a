// Package admin implements the single-operator write path: password login
// backed by a cookie session, and the editor that creates, updates and
// deletes posts through the content facade.
package admin

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"portfolio/app/internal/config"
)

const (
	sessionName      = "admin_session"
	authenticatedKey = "authenticated"
	sessionMaxAge    = 60 * 60 * 12
)

// Messages returned by Check.
const (
	MessageGranted     = "Admin access granted"
	MessageDenied      = "Not authenticated"
	MessageUnavailable = "Admin authentication is not configured"
)

// ErrDisabled is returned by session operations when admin is not configured.
var ErrDisabled = eris.New("admin authentication is not configured")

// Authenticator verifies the operator password and tracks the admin session.
type Authenticator struct {
	passwordHash []byte
	store        *sessions.CookieStore
	logger       *logrus.Logger
}

// NewAuthenticator builds an authenticator. Without both a password hash and
// a session secret it returns a disabled authenticator that denies everyone.
func NewAuthenticator(cfg config.AdminConfig, logger *logrus.Logger) *Authenticator {
	auth := &Authenticator{logger: logger}
	if !cfg.Enabled() {
		return auth
	}

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   sessionMaxAge,
		SameSite: http.SameSiteLaxMode,
		Secure:   cfg.CookieSecure,
	}

	auth.passwordHash = []byte(strings.TrimSpace(cfg.PasswordHash))
	auth.store = store
	return auth
}

// Enabled reports whether admin login is possible at all.
func (a *Authenticator) Enabled() bool {
	return a != nil && a.store != nil
}

// Verify compares password with the configured bcrypt hash.
func (a *Authenticator) Verify(password string) bool {
	if !a.Enabled() || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
}

// IsAdmin reports whether the request carries an authenticated session.
func (a *Authenticator) IsAdmin(r *http.Request) bool {
	if !a.Enabled() {
		return false
	}
	sess, err := a.store.Get(r, sessionName)
	if err != nil {
		return false
	}
	authenticated, ok := sess.Values[authenticatedKey].(bool)
	return ok && authenticated
}

// Check returns the admin state of the request with a message for the client.
func (a *Authenticator) Check(r *http.Request) (bool, string) {
	switch {
	case !a.Enabled():
		return false, MessageUnavailable
	case a.IsAdmin(r):
		return true, MessageGranted
	default:
		return false, MessageDenied
	}
}

// Login marks the session as authenticated.
func (a *Authenticator) Login(w http.ResponseWriter, r *http.Request) error {
	if !a.Enabled() {
		return ErrDisabled
	}
	// A stale or tampered cookie yields a fresh session alongside the error.
	sess, _ := a.store.Get(r, sessionName)
	sess.Values[authenticatedKey] = true
	if err := sess.Save(r, w); err != nil {
		return eris.Wrap(err, "saving admin session")
	}

	if a.logger != nil {
		a.logger.WithField("component", "admin").Info("admin logged in")
	}
	return nil
}

// Logout expires the session cookie.
func (a *Authenticator) Logout(w http.ResponseWriter, r *http.Request) error {
	if !a.Enabled() {
		return ErrDisabled
	}
	sess, _ := a.store.Get(r, sessionName)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return eris.Wrap(err, "clearing admin session")
	}
	return nil
}
