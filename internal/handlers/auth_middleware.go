package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-review-service/internal/models"
	"github.com/SAP-F-2025/course-review-service/internal/services"
)

// AuthMiddleware resolves bearer tokens to local users through the user
// service, whichever verifier (local JWT or Casdoor) it was built with
type AuthMiddleware struct {
	users services.UserService
}

func NewAuthMiddleware(users services.UserService) *AuthMiddleware {
	return &AuthMiddleware{users: users}
}

// RequireAuth rejects requests without a valid bearer token
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, services.ErrNotAuthenticated.Message)
			return
		}

		user, err := am.users.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, services.ErrNotAuthenticated.Message)
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", user.Role)
		c.Next()
	}
}

// RequireRoleMiddleware checks if user has required role. Admins pass every check.
func (am *AuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			abortUnauthorized(c, services.ErrNotAuthenticated.Message)
			return
		}

		for _, requiredRole := range requiredRoles {
			if role == requiredRole || role == models.RoleAdmin {
				c.Next()
				return
			}
		}

		abortUnauthorized(c, services.ErrAdminRequired.Message)
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: message})
}

// GetUserFromContext extracts user from Gin context
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	userModel, ok := user.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return userModel, nil
}

// GetUserRoleFromContext extracts user role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get("user_role")
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}

	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}

	return role, nil
}
