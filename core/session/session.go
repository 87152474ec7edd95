// Package session holds the authentication state of a dashboard client and the
// boundary to the identity provider that establishes it.
package session

import (
	"context"
	"time"
)

// Identity is an authenticated account as known by the identity Provider.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	// Generation is bumped by the Provider on sign-out; sessions carrying an older one are revoked.
	Generation int `json:"gen,omitempty"`
}

// Session is either "authenticated as Identity" or anonymous (nil Identity).
type Session struct {
	Identity *Identity `json:"identity,omitempty"`
	IssuedAt time.Time `json:"-"`
}

func Anonymous() Session { return Session{} }

func Authenticated(id Identity, issuedAt time.Time) Session {
	return Session{Identity: &id, IssuedAt: issuedAt}
}

func (s Session) IsAuthenticated() bool { return s.Identity != nil }

func (s Session) UID() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.UID
}

// same reports whether s and o describe the same state.
func (s Session) same(o Session) bool {
	if s.IsAuthenticated() != o.IsAuthenticated() {
		return false
	}
	return !s.IsAuthenticated() || s.Identity.UID == o.Identity.UID
}

// Provider is the identity provider.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignUp(ctx context.Context, email, password string) (Identity, error)
	SignOut(ctx context.Context, uid string) error
	// Verify returns nil if s is still valid: the account exists, is active and has not signed out since s was issued.
	Verify(ctx context.Context, s Session) error
}
