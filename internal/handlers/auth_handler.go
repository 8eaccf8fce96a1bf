package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coworkhub/coworking-backend/internal/config"
	"github.com/coworkhub/coworking-backend/internal/database"
	"github.com/coworkhub/coworking-backend/internal/middleware"
	"github.com/coworkhub/coworking-backend/internal/models"
	"github.com/coworkhub/coworking-backend/internal/services"
	"github.com/coworkhub/coworking-backend/internal/utils"
	"github.com/coworkhub/coworking-backend/pkg/jwt"
)

// AccountService is the account logic behind the auth and user routes
type AccountService interface {
	Login(ctx context.Context, email, password string) (string, *models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterUserRequest) (string, *models.LoginResponse, error)
	Profile(ctx context.Context, id int64, role jwt.Role) (*models.Profile, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	accounts AccountService
	cookie   config.JWTConfig
	logger   *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts AccountService, cookie config.JWTConfig, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		cookie:   cookie,
		logger:   logger,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ===================================================================
// SESSION
// ===================================================================

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Checks email and password against user and company admin accounts and sets the session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param loginRequest body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "A valid email and a password of at least 6 characters are required",
		})
		return
	}

	token, resp, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.logger.WithFields(logrus.Fields{
				"ip": utils.GetRealIP(c),
			}).Warn("Login failed: invalid credentials")
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_credentials",
				Message: "Invalid credentials",
			})
			return
		}
		h.logger.WithError(err).Error("Login failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong",
		})
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, resp)
}

// ValidateToken handles GET /api/auth/validate-token
// @Summary Validate session
// @Tags Auth
// @Produce json
// @Success 200 {object} middleware.UserContext
// @Failure 401 {object} ErrorResponse
// @Router /auth/validate-token [get]
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.MustGetUserContext(c))
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Tags Auth
// @Success 200
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(h.cookie.CookieName, "", -1, "/", "", h.cookie.CookieSecure, true)
	c.Status(http.StatusOK)
}

// ===================================================================
// USERS
// ===================================================================

// Register handles POST /api/users/register
// @Summary Register a customer account
// @Tags Users
// @Accept json
// @Produce json
// @Param registerRequest body models.RegisterUserRequest true "New account"
// @Success 201 {object} models.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /users/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "First name, last name, a valid email and a password of at least 6 characters are required",
		})
		return
	}

	token, resp, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "email_taken",
				Message: "User already exists",
			})
			return
		}
		h.logger.WithError(err).Error("Registration failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong",
		})
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusCreated, resp)
}

// Me handles GET /api/users/me
// @Summary Current account
// @Tags Users
// @Produce json
// @Success 200 {object} models.Profile
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	profile, err := h.accounts.Profile(c.Request.Context(), userCtx.UserID, userCtx.Role)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userCtx.UserID).Error("Failed to load profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong",
		})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "User not found",
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(h.cookie.CookieName, token, int(h.cookie.Expiry.Seconds()), "/", "", h.cookie.CookieSecure, true)
}
