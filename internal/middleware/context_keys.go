package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// contextKey is used for values stored in the request context.
// Using a custom type prevents collisions.
type contextKey string

const (
	loggerCtxKey = contextKey("logger")
	userIDKey    = contextKey("userID")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (int64, bool) {
	raw, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		raw = c.Request.Context().Value(userIDKey)
		if raw == nil {
			return 0, false
		}
	}

	userID, ok := raw.(string)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
