package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	dom "github.com/PlanujHajs/analiza-backend/internal/domain"
)

const contextKeyUser = "current_user"

// CurrentUser returns the user set by RequireAuth. ok is false when the
// request did not pass through the middleware.
func CurrentUser(c *gin.Context) (dom.User, bool) {
	v, ok := c.Get(contextKeyUser)
	if !ok {
		return dom.User{}, false
	}
	u, ok := v.(dom.User)
	return u, ok
}

// RequireAuth returns a middleware that resolves the Authorization bearer
// token and sets the current user in context. Missing header, invalid token
// and vanished user all produce the same 401; a storage failure during the
// lookup is a 500 with no internal detail.
func RequireAuth(resolver *Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			unauthorized(c)
			return
		}
		u, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, dom.ErrUnauthenticated) {
				unauthorized(c)
				return
			}
			// Storage failure during lookup is not an auth verdict.
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authentication check failed"})
			return
		}
		c.Set(contextKeyUser, u)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": dom.ErrUnauthenticated.Error()})
}
