package domain

import (
	"errors"
	"time"
)

// Fixed names under which the two bearer tokens are persisted per session.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrSessionExpired       = errors.New("session expired")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrForbidden            = errors.New("access forbidden")
	ErrConfirmationRequired = errors.New("action requires explicit confirmation")
	ErrUnknownResource      = errors.New("unknown resource")
)

// TokenPair is the credential pair issued by the backend on login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Session is the in-memory view of one browser session. User is set if and
// only if a profile was loaded with a validated access token.
type Session struct {
	ID   string
	User *CurrentUser
}

// Authenticated reports whether a profile has been loaded for the session.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}

// LoginResult is the outcome of a login attempt. Error carries a message that
// is safe to show to the user.
type LoginResult struct {
	Success bool         `json:"success"`
	Error   string       `json:"error,omitempty"`
	User    *CurrentUser `json:"user,omitempty"`
}

// DetailError carries the backend's own explanation of a rejected request.
type DetailError struct {
	Detail string
	Err    error
}

func (e *DetailError) Error() string { return e.Detail }

func (e *DetailError) Unwrap() error { return e.Err }

// SessionStatus is what the login page needs to know about a session.
type SessionStatus struct {
	Authenticated   bool         `json:"authenticated"`
	User            *CurrentUser `json:"user,omitempty"`
	AccessExpiresAt *time.Time   `json:"access_expires_at,omitempty"`
}
