package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coworkhub/coworking-backend/internal/models"
)

// CompanyIDKey is the key under which the verified company id is stored
const CompanyIDKey = "company_id"

// AdminLookup finds company admin accounts
type AdminLookup interface {
	GetAdminByID(ctx context.Context, id int64) (*models.CompanyAdmin, error)
}

// RequireCompanyAdmin checks the caller is an admin whose account still
// belongs to the company named in the token.
// Must be used after AuthMiddleware to have userCtx available
func RequireCompanyAdmin(admins AdminLookup, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			abortUnauthorized(c)
			return
		}

		if !userCtx.IsAdmin() || userCtx.CompanyID == nil {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "not_company_admin",
				"message": "Company admin account required",
			})
			c.Abort()
			return
		}

		admin, err := admins.GetAdminByID(c.Request.Context(), userCtx.UserID)
		if err != nil {
			logger.WithError(err).WithField("admin_id", userCtx.UserID).Error("Failed to load admin for company check")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to verify company",
			})
			c.Abort()
			return
		}

		if admin == nil || admin.CompanyID != *userCtx.CompanyID {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "not_company_admin",
				"message": "Company admin account not found",
			})
			c.Abort()
			return
		}

		c.Set(CompanyIDKey, admin.CompanyID)
		c.Next()
	}
}

// GetCompanyID returns the company id stored by RequireCompanyAdmin
func GetCompanyID(c *gin.Context) (int64, bool) {
	value, exists := c.Get(CompanyIDKey)
	if !exists {
		return 0, false
	}
	companyID, ok := value.(int64)
	return companyID, ok
}
