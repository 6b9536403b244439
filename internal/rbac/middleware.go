package rbac

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-receptionist/internal/auth"
)

// RequireAnyRole allows access if the caller has any of the provided roles.
// Unknown roles are always denied.
func RequireAnyRole(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, err := auth.Role(c.Request.Context())
		if err != nil || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "role required", "errorCode": "UNAUTHORIZED"})
			return
		}
		if _, ok := allowedSet[role]; !ok || !IsKnownRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "forbidden", "errorCode": "FORBIDDEN"})
			return
		}
		c.Next()
	}
}

// ContractorScope returns the contractor whose records the caller may read.
// Contractors are pinned to their own id; operators use requested.
// ok is false when no scope can be determined.
func ContractorScope(id auth.Identity, requested string) (string, bool) {
	switch id.Role {
	case RoleContractor:
		if requested != "" && requested != id.ContractorID {
			return "", false
		}
		return id.ContractorID, id.ContractorID != ""
	case RoleOperator:
		return requested, requested != ""
	default:
		return "", false
	}
}
