package middleware

import (
	"net/http"
	"strings"

	"meal-order-service/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
	HeaderUserRole = "X-User-Role"

	actorKey = "actor"
)

// Identity reads the caller established by the upstream gateway. Requests
// without a user id are rejected; a missing role means staff.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHENTICATED", "message": "missing user identity"})
			return
		}

		role := domain.Role(strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderUserRole))))
		switch role {
		case "":
			role = domain.RoleStaff
		case domain.RoleStaff, domain.RoleKitchen, domain.RoleFinance, domain.RoleAdmin:
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "UNAUTHORIZED", "message": "unknown role"})
			return
		}

		name := strings.TrimSpace(c.GetHeader(HeaderUserName))
		if name == "" {
			name = id
		}
		c.Set(actorKey, domain.Actor{UserID: id, Name: name, Role: role})
		c.Next()
	}
}

func ActorFrom(c *gin.Context) domain.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(domain.Actor); ok {
			return a
		}
	}
	return domain.Actor{}
}
