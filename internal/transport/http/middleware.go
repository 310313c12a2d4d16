package httptransport

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"todo-server-go/internal/domain/auth"
	"todo-server-go/internal/platform/logging"
)

const (
	identityKey     = "identity"
	invalidTokenKey = "identity_token_invalid"
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-Id"
)

// IdentityFrom returns the identity resolved by the middlewares, or
// Anonymous when none ran.
func IdentityFrom(c *gin.Context) auth.Identity {
	if value, exists := c.Get(identityKey); exists {
		if identity, ok := value.(auth.Identity); ok {
			return identity
		}
	}
	return auth.Anonymous
}

// TokenWasInvalid reports whether the cookie middleware saw a cookie
// that failed verification. Routes use this to clear the stale cookie.
func TokenWasInvalid(c *gin.Context) bool {
	return c.GetBool(invalidTokenKey)
}

// RequireBearer rejects requests without a valid bearer token. There
// is no anonymous fallback on API routes.
func RequireBearer(resolver *auth.BearerResolver, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := resolver.Resolve(c.GetHeader("Authorization"))
		if err != nil {
			logger.DebugTag("HTTP", "bearer auth rejected: %s %s", c.Request.Method, c.Request.URL.Path)
			RespondUnauthenticated(c)
			c.Abort()
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// ResolveCookie resolves the session cookie into an identity without
// failing the request: an absent or broken cookie yields Anonymous and
// the handler decides what to do with it.
func ResolveCookie(resolver *auth.CookieResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(cookieName)
		if err != nil {
			value = ""
		}
		res := resolver.Resolve(value)
		c.Set(identityKey, res.Identity)
		if res.InvalidToken {
			c.Set(invalidTokenKey, true)
		}
		c.Next()
	}
}

// RequireInternalToken gates the internal-only routes behind a shared
// header token.
func RequireInternalToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-Internal-Token")
		if token == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			RespondError(c, http.StatusBadRequest, "X-Internal-Token header invalid", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestID assigns every request an id, echoed in the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
