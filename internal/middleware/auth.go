package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalmia/sensai-backend/internal/common"
	"github.com/dalmia/sensai-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// JWTAuth JWT authentication middleware
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifyRequestToken(c, jwtManager)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.ErrorResponse(c, 401, "Token expired", err)
			} else {
				common.ErrorResponse(c, 401, "Invalid token", err)
			}
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWTAuth populates user info when a valid token is present but
// never rejects the request. Used on public routes whose response
// differs for instructors.
func OptionalJWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := verifyRequestToken(c, jwtManager); err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// RequireInstructor rejects authenticated requests whose token does not
// carry the instructor role. Must run after JWTAuth.
func RequireInstructor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) != jwt.RoleInstructor {
			common.ErrorResponse(c, http.StatusForbidden, "Instructor access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set("userID", claims.UserID)
	c.Set("userName", claims.Name)
	c.Set("userRole", claims.Role)
}

func verifyRequestToken(c *gin.Context, jwtManager *jwt.Manager) (*jwt.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, common.ErrUnauthorized
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, common.ErrInvalidToken
	}

	return jwtManager.VerifyToken(parts[1])
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) string {
	return contextString(c, "userID")
}

// GetUserName extracts the user's display name from context
func GetUserName(c *gin.Context) string {
	return contextString(c, "userName")
}

// GetUserRole extracts the user's role from context
func GetUserRole(c *gin.Context) string {
	return contextString(c, "userRole")
}

func contextString(c *gin.Context, key string) string {
	value, exists := c.Get(key)
	if !exists {
		return ""
	}
	if str, ok := value.(string); ok {
		return str
	}
	return ""
}
