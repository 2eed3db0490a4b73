package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// ClientRoles returns the roles the auth middleware attached to the request.
func ClientRoles(c *gin.Context) ([]string, bool) {
	raw, ok := c.Get(ClientRolesCtx)
	if !ok {
		return nil, false
	}
	roles, ok := raw.([]string)
	return roles, ok
}

// RequireRoles lets the request through when the client holds any of allowed.
func RequireRoles(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, ok := ClientRoles(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "access denied"})
			return
		}
		if !slices.ContainsFunc(roles, func(r string) bool { return slices.Contains(allowed, r) }) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "access denied: role not permitted"})
			return
		}
		c.Next()
	}
}
