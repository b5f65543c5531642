// Package auth exposes the authenticated user and sign-in state
// transitions to the rest of the app.
package auth

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password too weak")
	ErrUserDisabled       = errors.New("account disabled")
	ErrTooManyRequests    = errors.New("too many attempts")
	ErrNetwork            = errors.New("network unavailable")
	ErrInternal           = errors.New("internal auth error")
)

// Principal is the authenticated user. Immutable within a session; a
// new value replaces it when sign-in state changes.
type Principal struct {
	UID         string
	Email       string
	CreatedAt   time.Time
	LastLoginAt time.Time
}

// CancelFunc removes a subscription. Idempotent.
type CancelFunc func()

// Session is the hosted identity service plus the local sign-in state.
//
// Subscribe delivers the current principal (possibly nil) immediately,
// then every transition. SignOut always clears the local session and
// notifies subscribers, even when the server call fails.
type Session interface {
	Current() *Principal
	Subscribe(fn func(*Principal)) CancelFunc
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) error
	SendPasswordReset(ctx context.Context, email string) error
	SignOut(ctx context.Context) error
}
