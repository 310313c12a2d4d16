package auth

import "strings"

const bearerPrefix = "Bearer "

// BearerResolver resolves identity from an Authorization header. API
// routes have no anonymous fallback: a missing or failing token is an
// error.
type BearerResolver struct {
	codec *TokenCodec
}

func NewBearerResolver(codec *TokenCodec) *BearerResolver {
	return &BearerResolver{codec: codec}
}

// Resolve extracts and verifies the bearer token from the raw
// Authorization header value. Missing header, wrong scheme, bad
// signature, expiry and incomplete claims all yield
// ErrUnauthenticated.
func (r *BearerResolver) Resolve(authorization string) (Identity, error) {
	if !strings.HasPrefix(authorization, bearerPrefix) {
		return Anonymous, ErrUnauthenticated
	}
	claims, err := r.codec.Verify(strings.TrimPrefix(authorization, bearerPrefix))
	if err != nil {
		return Anonymous, ErrUnauthenticated
	}
	return Identity{Username: claims.Username, UserID: claims.UserID}, nil
}

// CookieResolver resolves identity from a session cookie. Browser
// routes treat "no cookie" as anonymous, not as an error.
type CookieResolver struct {
	codec *TokenCodec
}

func NewCookieResolver(codec *TokenCodec) *CookieResolver {
	return &CookieResolver{codec: codec}
}

// CookieResolution separates the pure identity answer from the
// token-is-broken signal. Resolution itself never mutates anything;
// the calling route decides whether an invalid token warrants
// clearing the cookie.
type CookieResolution struct {
	Identity Identity
	// InvalidToken is true when a cookie was present but failed
	// verification. An absent cookie leaves it false.
	InvalidToken bool
}

// Resolve verifies the cookie value. An empty value means no cookie
// was presented and resolves to anonymous.
func (r *CookieResolver) Resolve(cookieValue string) CookieResolution {
	if cookieValue == "" {
		return CookieResolution{Identity: Anonymous}
	}
	claims, err := r.codec.Verify(cookieValue)
	if err != nil {
		return CookieResolution{Identity: Anonymous, InvalidToken: true}
	}
	return CookieResolution{
		Identity: Identity{Username: claims.Username, UserID: claims.UserID},
	}
}
