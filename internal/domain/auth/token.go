package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload carried inside a signed token.
type Claims struct {
	Username  string
	UserID    uint
	ExpiresAt time.Time
}

// TokenCodec signs and verifies HS256 tokens carrying
// {sub, id, exp}. The secret is injected at construction and is
// immutable afterwards, so concurrent use needs no synchronization.
type TokenCodec struct {
	secret     []byte
	defaultTTL time.Duration
}

// NewTokenCodec builds a codec. defaultTTL applies when Issue is
// called with ttl == 0.
func NewTokenCodec(secret string, defaultTTL time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("token codec requires a signing secret")
	}
	if defaultTTL <= 0 {
		defaultTTL = 15 * time.Minute
	}
	return &TokenCodec{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
	}, nil
}

// Issue signs a token for the given identity. ttl == 0 uses the
// codec's default; a negative ttl produces an already-expired token.
func (c *TokenCodec) Issue(username string, userID uint, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	expireTime := time.Now().Add(ttl)
	claims := jwt.MapClaims{
		"sub": username,
		"id":  userID,
		"exp": expireTime.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks signature and expiry and extracts the claim set.
// Signature mismatch, malformed structure and expiry all map to
// ErrInvalidToken; a structurally valid token missing sub or id maps
// to ErrIncompleteClaims.
func (c *TokenCodec) Verify(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	username, ok := mapClaims["sub"].(string)
	if !ok || username == "" {
		return Claims{}, ErrIncompleteClaims
	}
	id, ok := mapClaims["id"].(float64)
	if !ok || id <= 0 {
		return Claims{}, ErrIncompleteClaims
	}

	claims := Claims{
		Username: username,
		UserID:   uint(id),
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
