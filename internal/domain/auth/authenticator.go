package auth

import (
	"context"
	"errors"
	"time"
)

// Credential is the stored login record as read from the user store.
// The auth domain never writes or logs it.
type Credential struct {
	UserID         uint
	Username       string
	HashedPassword string
	IsActive       bool
}

// CredentialSource looks up a credential record by exact username.
// Implementations return (nil, nil) when no such user exists.
type CredentialSource interface {
	FindCredential(ctx context.Context, username string) (*Credential, error)
}

// Options encapsulates the dependencies required to construct an
// Authenticator.
type Options struct {
	Credentials CredentialSource
	Hasher      *PasswordHasher
	Codec       *TokenCodec
	TokenTTL    time.Duration
	Logger      Logger
}

// Authenticator validates username/password pairs against the
// credential store and issues login tokens.
type Authenticator struct {
	credentials CredentialSource
	hasher      *PasswordHasher
	codec       *TokenCodec
	tokenTTL    time.Duration
	logger      Logger
}

// NewAuthenticator wires an Authenticator using the supplied options.
func NewAuthenticator(opts Options) (*Authenticator, error) {
	if opts.Credentials == nil {
		return nil, errors.New("authenticator requires a credential source")
	}
	if opts.Hasher == nil {
		return nil, errors.New("authenticator requires a password hasher")
	}
	if opts.Codec == nil {
		return nil, errors.New("authenticator requires a token codec")
	}
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	tokenTTL := opts.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = 200 * time.Minute
	}
	return &Authenticator{
		credentials: opts.Credentials,
		hasher:      opts.Hasher,
		codec:       opts.Codec,
		tokenTTL:    tokenTTL,
		logger:      logger,
	}, nil
}

// Authenticate validates the pair and yields the identity. An unknown
// username and a wrong password both return ErrNotFound, so the two
// causes are indistinguishable to the caller.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	cred, err := a.credentials.FindCredential(ctx, username)
	if err != nil {
		a.logger.Error("credential lookup failed for %q: %v", username, err)
		return Anonymous, err
	}
	if cred == nil {
		a.logger.Debug("auth rejected: unknown user %q", username)
		return Anonymous, ErrNotFound
	}
	if !a.hasher.Verify(password, cred.HashedPassword) {
		a.logger.Debug("auth rejected: password mismatch for %q", username)
		return Anonymous, ErrNotFound
	}
	return Identity{Username: cred.Username, UserID: cred.UserID}, nil
}

// Login authenticates and issues a signed token with the configured
// TTL. Authentication failures map to ErrAuthFailure; storage errors
// propagate unchanged.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	identity, err := a.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrAuthFailure
		}
		return "", err
	}

	token, err := a.codec.Issue(identity.Username, identity.UserID, a.tokenTTL)
	if err != nil {
		a.logger.Error("token issue failed for %q: %v", username, err)
		return "", err
	}
	a.logger.Info("login succeeded for %q", username)
	return token, nil
}
