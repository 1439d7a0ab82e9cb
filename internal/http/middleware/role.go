package middleware

import (
	"strings"

	"blogapi/internal/domain"

	"github.com/gin-gonic/gin"
)

// RequireRoles only lets through callers whose token role is in allowedRoles.
// It runs after RequireAuth.
func RequireRoles(onError func(*gin.Context, error), allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		rc, ok := GetRequestContext(c)
		if !ok || rc.Role == "" {
			onError(c, domain.UnauthorizedError{Msg: "no authenticated caller"})
			c.Abort()
			return
		}
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(rc.Role))]; !ok {
			onError(c, domain.ForbiddenError{Role: rc.Role})
			c.Abort()
			return
		}
		c.Next()
	}
}
