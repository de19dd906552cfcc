package middleware

import (
	"net/http"

	"github.com/Devliang24/tapb/internal/model"
	"github.com/gin-gonic/gin"
)

func RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Admin bypasses all role checks
		userRole := model.UserRole(GetCurrentUserRole(c))
		if userRole == model.RoleAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if userRole == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code":    40301,
			"message": "insufficient role",
			"data":    nil,
		})
	}
}
