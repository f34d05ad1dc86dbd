package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gigmarket/backend/internal/domain/valueobject"
	"github.com/gigmarket/backend/internal/service"
)

// ContextActorKey is where the resolved Actor lives in gin.Context.
const ContextActorKey = "actor"

// AuthMiddleware verifies the JWT access token and resolves the caller into
// an Actor for the handlers.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			abortUnauthorized(c, "authentication required")
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		userID, role, err := tokens.ParseAccess(raw)
		if err != nil || userID == uuid.Nil {
			abortUnauthorized(c, "invalid access token")
			return
		}

		party, err := valueobject.NewParty(role)
		if err != nil {
			abortUnauthorized(c, "invalid access token")
			return
		}

		c.Set(ContextActorKey, valueobject.Actor{UserID: userID, Party: party})
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"code": "UNAUTHORIZED", "message": message},
	})
}
