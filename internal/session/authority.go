// Package session implements the admin session authority: a single shared
// identity, bearer tokens held in an in-memory active set, and a fixed
// time-to-live measured from issuance.
//
// Tokens are never persisted. Restarting the process invalidates every
// session.
package session

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// TTL is how long a token stays valid after it is issued.
const TTL = 24 * time.Hour

// Fallback credentials used outside production when none are configured.
const (
	DefaultUsername = "admin"
	DefaultPassword = "admin123"
)

var (
	// ErrInvalidCredentials is returned by Login. It never says which field
	// was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is returned by Authorize for a missing, unknown,
	// revoked, expired or forged token.
	ErrUnauthorized = errors.New("unauthorized")
)

// Session is an active admin session.
type Session struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Authority issues and checks admin tokens. The zero value is not usable;
// construct one with New.
type Authority struct {
	username string
	password string

	now    func() time.Time
	minter Minter

	mu     sync.Mutex
	active map[string]time.Time // token -> issued at
}

// Option configures an Authority.
type Option func(*Authority)

// WithClock replaces time.Now. Tests use it to move across the TTL boundary.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) { a.now = now }
}

// WithMinter replaces the default random token format.
func WithMinter(m Minter) Option {
	return func(a *Authority) { a.minter = m }
}

// New returns an Authority for the given admin credentials.
func New(username, password string, opts ...Option) (*Authority, error) {
	if username == "" || password == "" {
		return nil, errors.New("session: admin username and password are required")
	}

	a := &Authority{
		username: username,
		password: password,
		now:      time.Now,
		minter:   RandomMinter{},
		active:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Login checks the credentials and, on success, issues a new token.
func (a *Authority) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !userOK || !passOK {
		return "", ErrInvalidCredentials
	}

	issuedAt := a.now()
	token, err := a.minter.Mint(issuedAt, issuedAt.Add(TTL))
	if err != nil {
		return "", fmt.Errorf("session: mint token: %w", err)
	}

	a.mu.Lock()
	a.active[token] = issuedAt
	a.mu.Unlock()

	return token, nil
}

// Logout revokes token. Unknown and empty tokens are ignored.
func (a *Authority) Logout(token string) {
	if token == "" {
		return
	}
	a.mu.Lock()
	delete(a.active, token)
	a.mu.Unlock()
}

// Authorize reports whether token belongs to a live session. An expired
// token is evicted on the spot.
func (a *Authority) Authorize(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrUnauthorized
	}
	if err := a.minter.Check(token); err != nil {
		return Session{}, ErrUnauthorized
	}

	now := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()

	issuedAt, ok := a.active[token]
	if !ok {
		return Session{}, ErrUnauthorized
	}
	expiresAt := issuedAt.Add(TTL)
	if !now.Before(expiresAt) {
		delete(a.active, token)
		return Session{}, ErrUnauthorized
	}

	return Session{Token: token, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Sweep evicts every expired token and returns how many were removed.
func (a *Authority) Sweep() int {
	now := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()

	removed := 0
	for token, issuedAt := range a.active {
		if !now.Before(issuedAt.Add(TTL)) {
			delete(a.active, token)
			removed++
		}
	}
	return removed
}

// Active returns the number of tokens currently in the set, expired or not.
func (a *Authority) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.active)
}

// BearerToken extracts the token from an Authorization header value of the
// form "Bearer <token>". Anything else yields "".
func BearerToken(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
