package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const principalCtxKey = "auth.principal"

// RequireRole returns gin middleware that validates the bearer token and
// rejects callers whose role is not role. The principal is stored on the gin
// context.
func RequireRole(secret, role string) gin.HandlerFunc {
	role = strings.ToLower(role)
	return func(c *gin.Context) {
		p, err := ParseBearer(c.GetHeader("Authorization"), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized", "details": err.Error()})
			return
		}
		if p.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden", "details": "only " + role + " can perform this action"})
			return
		}
		c.Set(principalCtxKey, p)
		c.Next()
	}
}

// RequireOperator is RequireRole for RoleOperator.
func RequireOperator(secret string) gin.HandlerFunc {
	return RequireRole(secret, RoleOperator)
}

// PrincipalFrom returns the principal set by RequireRole.
func PrincipalFrom(c *gin.Context) (*Principal, bool) {
	v, ok := c.Get(principalCtxKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok
}
