package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coworkhub/coworking-backend/pkg/jwt"
)

// UserContextKey is the key used to store user information in Gin context
const UserContextKey = "user"

// UserContext represents the authenticated caller's information
type UserContext struct {
	UserID    int64    `json:"userId"`
	Role      jwt.Role `json:"role"`
	Email     string   `json:"email,omitempty"`
	CompanyID *int64   `json:"idEmpresa,omitempty"`
}

// IsAdmin reports whether the caller is a company admin
func (u UserContext) IsAdmin() bool {
	return u.Role == jwt.RoleAdmin
}

// ExtractToken returns the session token of a request. The cookie wins over
// the Authorization header; no other source is accepted.
func ExtractToken(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && strings.TrimSpace(token) != "" {
		return strings.TrimSpace(token)
	}

	authHeader := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthMiddleware creates a middleware that validates session tokens
func AuthMiddleware(jwtService *jwt.Service, cookieName string, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ExtractToken(c, cookieName)
		if tokenString == "" {
			logger.WithFields(logrus.Fields{
				"path": c.Request.URL.Path,
				"ip":   c.ClientIP(),
			}).Debug("Auth failed: missing token")
			abortUnauthorized(c)
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"path":    c.Request.URL.Path,
				"ip":      c.ClientIP(),
				"expired": jwtService.IsTokenExpired(tokenString),
				"error":   err.Error(),
			}).Warn("Auth failed: invalid token")
			abortUnauthorized(c)
			return
		}

		c.Set(UserContextKey, UserContext{
			UserID:    claims.UserID,
			Role:      claims.Role,
			Email:     claims.Email,
			CompanyID: claims.CompanyID,
		})

		c.Next()
	}
}

// RequireRole creates a middleware that checks the caller has one of roles
func RequireRole(roles ...jwt.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			abortUnauthorized(c)
			return
		}

		for _, role := range roles {
			if userCtx.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "You don't have permission to access this resource",
			"code":    "INSUFFICIENT_PERMISSIONS",
		})
		c.Abort()
	}
}

// GetUserContext retrieves the user context from Gin context
func GetUserContext(c *gin.Context) (UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return UserContext{}, false
	}

	userCtx, ok := value.(UserContext)
	if !ok {
		return UserContext{}, false
	}

	return userCtx, true
}

// MustGetUserContext retrieves the user context or panics (use only after AuthMiddleware)
func MustGetUserContext(c *gin.Context) UserContext {
	userCtx, exists := GetUserContext(c)
	if !exists {
		panic("user context not found - ensure AuthMiddleware is applied")
	}
	return userCtx
}

func abortUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": "Authentication required",
	})
	c.Abort()
}
