package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clipfeed/clipfeed/internal/common"
	"github.com/clipfeed/clipfeed/internal/server/auth"
)

const ctxKeyUserID = "auth_user_id"

// optionalAuth validates a Bearer token when one is present and stores the
// user id in the request context. Requests without a token pass through
// unauthenticated; requests with a bad token are rejected.
func optionalAuth(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if header == "" {
			c.Next()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		userID, err := auth.GetUserIDFromToken(token, secretKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(ctxKeyUserID, userID)
		c.Next()
	}
}

// authUserID returns the authenticated user id, or "" for anonymous requests.
func authUserID(c *gin.Context) string {
	return c.GetString(ctxKeyUserID)
}
