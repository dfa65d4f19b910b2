package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionResolver is the slice of the session store the gate needs; small
// so tests can fake it easily.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (int64, error)
}

// RequireSession rejects requests without a live session before the
// handler runs, so gated endpoints produce no side effect for anonymous
// callers.
func RequireSession(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)

		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Login required",
			})
			return
		}

		userID, err := sessions.Resolve(c.Request.Context(), token)

		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Login required",
			})
			return
		}

		c.Set(ctxUserIDKey, userID)
		c.Set(ctxTokenKey, token)

		c.Next()
	}
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func SessionTokenFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxTokenKey)
	if !ok {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}
