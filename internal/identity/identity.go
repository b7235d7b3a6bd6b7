// Package identity adapts the external identity provider: credential
// verification, email/password updates, verification mail dispatch, and
// session reads. The profile edit workflow consumes this capability set,
// it never talks to the provider wire format directly.
package identity

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
	ErrNotSignedIn        = errors.New("no user is signed in")
	ErrUserDisabled       = errors.New("user account is disabled")
)

// Session is the provider-issued state of one signed-in identity.
type Session struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
}

// Provider is the identity capability set consumed by the client core.
type Provider interface {
	// SignInWithPassword establishes a session from email credentials.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// Reauthenticate verifies the supplied password against the current
	// credential. It is never retried automatically; repeated attempts
	// must be user-initiated to respect provider lockout policies.
	Reauthenticate(ctx context.Context, email, password string) error

	// UpdateEmail changes the account email. The caller must have
	// reauthenticated with currentPassword first.
	UpdateEmail(ctx context.Context, newEmail, currentPassword string) error

	// UpdatePassword changes the account password for the current session.
	UpdatePassword(ctx context.Context, newPassword string) error

	// SendEmailVerification dispatches a verification mail to the
	// current account email.
	SendEmailVerification(ctx context.Context) error

	// CurrentSession returns the active session, or nil when signed out.
	CurrentSession() *Session

	// SignOut discards the local session. Provider-side tokens are left
	// to expire on their own.
	SignOut()
}
