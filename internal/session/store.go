// Package session owns the authenticated identity and the bearer credential.
//
// The credential and the remembered login email are persisted under the data
// directory so they survive process restarts, the same split the browser
// client made between profile-wide and tab-scoped storage: the cached
// identity itself lives only in memory and is replaced wholesale on every
// profile reload.
package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"sapcca/client/internal/models"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	tokenFile = "token"
	emailFile = "remembered_email"
)

// Store is the single holder of session state. Safe for concurrent use; the
// UI goroutine and the relay pumps both read from it.
type Store struct {
	mu       sync.RWMutex
	dir      string
	token    string
	identity *models.Identity
	email    string
}

// NewStore loads any persisted credential and remembered email from dir,
// creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	s := &Store{dir: dir}
	s.token = readFileTrimmed(filepath.Join(dir, tokenFile))
	s.email = readFileTrimmed(filepath.Join(dir, emailFile))
	return s, nil
}

func readFileTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SetCredentials stores a fresh token and identity after a successful login
// or signup. The token is persisted; the identity is cached in memory only.
func (s *Store) SetCredentials(token string, id models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.identity = &id
	return os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(token), 0o600)
}

// Token returns the current bearer credential, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a credential is present at all. It says
// nothing about validity; the backend's 401 is the source of truth.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Identity returns the cached identity and whether one is set.
func (s *Store) Identity() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

// SetIdentity replaces the cached identity, e.g. after a profile reload.
func (s *Store) SetIdentity(id models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = &id
}

// Clear wipes the whole session: credential, cached identity and the
// remembered email. Used on logout and on a 401 from any endpoint.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.identity = nil
	s.email = ""
	os.Remove(filepath.Join(s.dir, tokenFile))
	os.Remove(filepath.Join(s.dir, emailFile))
}

// Invalidate drops the credential and identity but keeps the remembered
// email, so the login form can still prefill after a session expiry.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.identity = nil
	os.Remove(filepath.Join(s.dir, tokenFile))
}

// RememberedEmail returns the persisted login email convenience value.
func (s *Store) RememberedEmail() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// SetRememberedEmail persists the login email, or forgets it when empty.
func (s *Store) SetRememberedEmail(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.email = email
	path := filepath.Join(s.dir, emailFile)
	if email == "" {
		err := os.Remove(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.WriteFile(path, []byte(email), 0o600)
}

// Expired reports whether the stored token carries an exp claim in the
// past. The signature is deliberately not verified, that is the backend's
// job; this only lets the UI skip a doomed request and go straight to the
// login page. A missing or unparsable token counts as expired; a token
// without an exp claim does not.
func (s *Store) Expired() bool {
	token := s.Token()
	if token == "" {
		return true
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return true
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
