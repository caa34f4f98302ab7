// Package session holds the client-side session state: the authenticated
// identity, the bearer credential, and the local device/session identifiers
// attached to login requests.
package session

import "sync"

// UserType is the marketplace side a user belongs to.
type UserType string

const (
	UserTypeDriver UserType = "DRIVER"
	UserTypeSender UserType = "SENDER"
	UserTypeBoth   UserType = "BOTH"
)

// Identity describes the authenticated marketplace user.
type Identity struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Phone     string   `json:"phone,omitempty"`
	Role      string   `json:"role"`
	UserType  UserType `json:"userType"`
	Verified  bool     `json:"verified"`
	Active    bool     `json:"active"`
}

// Store is the single source of truth for credential state. Identity and
// credential are set together and cleared together; the version counter
// increments on every mutation so dependents can detect rotation without
// comparing token strings.
//
// Only the refresh path and the logout path may write to it.
type Store struct {
	mu           sync.RWMutex
	identity     *Identity
	token        string
	refreshToken string
	version      uint64
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{}
}

// SetCredential installs the identity and bearer token together and bumps
// the credential version.
func (s *Store) SetCredential(identity Identity, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := identity
	s.identity = &id
	s.token = token
	s.version++
}

// SetToken replaces the bearer token after a refresh that did not re-fetch
// the identity. It reports whether the token actually changed; the version
// is bumped only in that case. A store without an identity is left untouched,
// so identity and credential can never be present one without the other.
func (s *Store) SetToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil || s.token == token {
		return false
	}
	s.token = token
	s.version++
	return true
}

// SetRefreshToken stores the rotating refresh token. Held in memory only,
// never persisted.
func (s *Store) SetRefreshToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshToken = token
}

// Clear drops the identity and both tokens. Each call bumps the version,
// including calls on an already-empty store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = nil
	s.token = ""
	s.refreshToken = ""
	s.version++
}

// Token returns the current bearer token.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// RefreshToken returns the current rotating refresh token.
func (s *Store) RefreshToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken, s.refreshToken != ""
}

// Identity returns a copy of the authenticated identity.
func (s *Store) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// IsAuthenticated is true only when both identity and credential are present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil && s.token != ""
}

// IsDriver reports whether the session belongs to the driver side.
func (s *Store) IsDriver() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil && (s.identity.UserType == UserTypeDriver || s.identity.UserType == UserTypeBoth)
}

// IsSender reports whether the session belongs to the sender side.
func (s *Store) IsSender() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil && (s.identity.UserType == UserTypeSender || s.identity.UserType == UserTypeBoth)
}

// Version returns the monotonically increasing credential version.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
