package middleware

import (
	"net/http"
	"strings"

	"foodify-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
}

func NewAuthMiddleware(jwtManager *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// bearerToken pulls the access token from the request. Both the standard
// Authorization header and the bare "token" header used by the legacy
// storefront clients are accepted.
func bearerToken(c *gin.Context) string {
	if raw := c.GetHeader("token"); raw != "" {
		return raw
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// AuthRequired validates the access token and loads its claims into the
// request context.
func (a *AuthMiddleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			c.Abort()
			return
		}

		claims, err := a.jwtManager.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}
		if claims.TokenType != auth.AccessToken {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token type"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("restaurant_id", claims.RestaurantID)
		c.Set("role", claims.Role)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// RoleRequired checks if the user has one of the required roles
func (a *AuthMiddleware) RoleRequired(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role information missing"})
			c.Abort()
			return
		}

		userRole := role.(string)
		for _, requiredRole := range requiredRoles {
			if userRole == requiredRole {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		c.Abort()
	}
}

// AdminRequired ensures the user is an admin
func (a *AuthMiddleware) AdminRequired() gin.HandlerFunc {
	return a.RoleRequired("admin")
}

// RestaurantOwnerRequired ensures the user owns a restaurant
func (a *AuthMiddleware) RestaurantOwnerRequired() gin.HandlerFunc {
	return a.RoleRequired("restaurant_owner", "admin")
}

// RestaurantRequired ensures the user is attached to a restaurant
func (a *AuthMiddleware) RestaurantRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, exists := c.Get("restaurant_id")
		if !exists || restaurantID == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Restaurant access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID extracts the user ID from context
func GetUserID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		return userID.(string)
	}
	return ""
}

// GetUserUUID extracts and parses the user ID from context
func GetUserUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(GetUserID(c))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetRestaurantID extracts the restaurant ID from context
func GetRestaurantID(c *gin.Context) string {
	if restaurantID, exists := c.Get("restaurant_id"); exists {
		return restaurantID.(string)
	}
	return ""
}

// GetUserRole extracts the user role from context
func GetUserRole(c *gin.Context) string {
	if role, exists := c.Get("role"); exists {
		return role.(string)
	}
	return ""
}
