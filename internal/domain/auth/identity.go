package auth

import "errors"

// Failure modes surfaced by the auth domain. Lookup misses and
// password mismatches collapse into ErrNotFound so callers cannot
// enumerate usernames.
var (
	ErrNotFound         = errors.New("user not found or password mismatch")
	ErrAuthFailure      = errors.New("incorrect username or password")
	ErrUnauthenticated  = errors.New("authentication required")
	ErrInvalidToken     = errors.New("invalid token")
	ErrIncompleteClaims = errors.New("token claims incomplete")
)

// Identity is the resolved, request-scoped caller. The zero value is
// the anonymous identity.
type Identity struct {
	Username string `json:"username"`
	UserID   uint   `json:"user_id"`
}

// Anonymous is the identity of an unauthenticated caller.
var Anonymous = Identity{}

// IsAnonymous reports whether the identity carries no authenticated user.
func (i Identity) IsAnonymous() bool {
	return i.UserID == 0 && i.Username == ""
}

// RequireIdentity is the access gate in front of every protected
// operation: anonymous callers are rejected, everyone else passes
// through unchanged. Ownership checks remain with the operations
// themselves.
func RequireIdentity(identity Identity) (Identity, error) {
	if identity.IsAnonymous() {
		return Anonymous, ErrUnauthenticated
	}
	return identity, nil
}

// Logger is the minimal logging contract required by the auth domain.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
