package middleware

import (
	"strings"

	"blogapi/internal/domain"

	"github.com/gin-gonic/gin"
)

const requestContextKey = "request_context"

// TokenParser validates a bearer token.
type TokenParser interface {
	ParseToken(raw string) (domain.RequestContext, error)
}

// RequireAuth rejects requests without a valid bearer token. onError writes
// the rejection so the payload matches the other API errors.
func RequireAuth(parser TokenParser, onError func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			onError(c, domain.UnauthorizedError{Msg: "missing bearer token"})
			c.Abort()
			return
		}

		rc, err := parser.ParseToken(strings.TrimSpace(token))
		if err != nil {
			onError(c, err)
			c.Abort()
			return
		}
		c.Set(requestContextKey, rc)
		c.Next()
	}
}

// GetRequestContext returns the caller set by RequireAuth.
func GetRequestContext(c *gin.Context) (domain.RequestContext, bool) {
	v, ok := c.Get(requestContextKey)
	if !ok {
		return domain.RequestContext{}, false
	}
	rc, ok := v.(domain.RequestContext)
	return rc, ok
}
