// Package session owns the process-wide shopper identity: one Session per
// process, read by every component, written only by the authentication flow.
package session

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openshelf/storefront/internal/domain"
)

// Session is a point-in-time view of the shopper's identity.
type Session struct {
	User          domain.User `json:"user"`
	Authenticated bool        `json:"authenticated"`
}

// persistedCredential is the on-disk shape: one bearer credential plus the
// serialized profile, read once at startup and written on login/logout only.
type persistedCredential struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Store holds the authenticated identity derived from a persisted
// credential. Safe for concurrent reads; writes happen only on
// login/logout/invalidate.
type Store struct {
	mu     sync.RWMutex
	path   string
	logger *slog.Logger

	token         string
	user          domain.User
	authenticated bool
}

// NewStore creates a session store persisting to the given file path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Restore reads the persisted credential and, when present and well-formed,
// optimistically establishes an authenticated session without a validation
// round trip. A stale or revoked credential is only discovered on first use:
// the backend's 401 arrives as an AuthError and Invalidate clears the
// session. Called once at process start.
func (s *Store) Restore() Session {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("read persisted credential", slog.String("error", err.Error()))
		}
		return Session{}
	}

	var cred persistedCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		s.logger.Warn("malformed persisted credential, starting anonymous",
			slog.String("path", s.path),
		)
		return Session{}
	}

	if !credentialUsable(cred.Token) {
		s.logger.Info("persisted credential expired or malformed, starting anonymous")
		return Session{}
	}

	s.mu.Lock()
	s.token = cred.Token
	s.user = cred.User
	s.authenticated = true
	s.mu.Unlock()

	s.logger.Info("session restored",
		slog.String("user_id", cred.User.ID),
	)
	return Session{User: cred.User, Authenticated: true}
}

// credentialUsable checks local well-formedness only: the token must parse as
// a JWT and must not be past its exp claim when one is present. The signature
// is NOT verified; the client has no key, and the backend is the authority.
func credentialUsable(token string) bool {
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp != nil && exp.Before(time.Now()) {
		return false
	}
	return true
}

// Establish records a successful login or registration and persists the
// credential. Write failures are logged, not surfaced: the in-memory session
// is already valid and losing only persistence must not fail the sign-in.
func (s *Store) Establish(grant domain.AuthGrant) {
	s.mu.Lock()
	s.token = grant.Token
	s.user = grant.User
	s.authenticated = true
	s.mu.Unlock()

	s.persist(persistedCredential{Token: grant.Token, User: grant.User})
}

// Clear resets the session to anonymous and removes persisted state
// synchronously. Never fails upward.
func (s *Store) Clear() {
	s.mu.Lock()
	s.token = ""
	s.user = domain.User{}
	s.authenticated = false
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("remove persisted credential", slog.String("error", err.Error()))
	}
}

// Invalidate is the teardown invoked when the backend reports the credential
// invalid. Identical to Clear; the separate name marks the remote-triggered
// path so callers and logs can tell the two apart.
func (s *Store) Invalidate() {
	s.logger.Warn("session invalidated by backend")
	s.Clear()
}

// Token returns the current bearer credential, empty when anonymous.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a shopper is signed in.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Current returns the session snapshot.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{User: s.user, Authenticated: s.authenticated}
}

// UserID returns the signed-in shopper's ID, empty when anonymous. Used by
// the request-scoped logging middleware.
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.ID
}

func (s *Store) persist(cred persistedCredential) {
	data, err := json.Marshal(cred)
	if err != nil {
		s.logger.Error("marshal credential", slog.String("error", err.Error()))
		return
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			s.logger.Warn("create credential dir", slog.String("error", err.Error()))
			return
		}
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		s.logger.Warn("write persisted credential",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
	}
}
