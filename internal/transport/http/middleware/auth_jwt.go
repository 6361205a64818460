package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-user-service/internal/core/auth"
	resp "go-user-service/internal/transport/http/response"
)

// AuthAccessToken guards a group with bearer access tokens. Refresh tokens
// are rejected here: verification is pinned to the access kind.
func AuthAccessToken(t *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := t.Verify(strings.TrimPrefix(ah, "Bearer "), auth.KindAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		c.Set("userId", claims.UID)
		c.Set("email", claims.Email)
		c.Next()
	}
}
