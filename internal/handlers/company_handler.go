package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coworkhub/coworking-backend/internal/database"
	"github.com/coworkhub/coworking-backend/internal/models"
	"github.com/coworkhub/coworking-backend/internal/services"
)

// CompanyOnboarding registers companies and lists their records
type CompanyOnboarding interface {
	Register(ctx context.Context, req models.RegisterCompanyRequest) (*models.RegisterCompanyResponse, error)
	Apply(ctx context.Context, req models.CompanyApplicationRequest) error
	ListCompanies(ctx context.Context) ([]models.Company, error)
	ListAddresses(ctx context.Context) ([]models.Address, error)
	ListAdmins(ctx context.Context) ([]models.CompanyAdmin, error)
}

// CompanyHandler handles company onboarding HTTP requests
type CompanyHandler struct {
	companies CompanyOnboarding
	logger    *logrus.Logger
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companies CompanyOnboarding, logger *logrus.Logger) *CompanyHandler {
	return &CompanyHandler{
		companies: companies,
		logger:    logger,
	}
}

// Register handles POST /api/admins/register
// @Summary Register a company
// @Description Creates the address, the company and its admin account in one transaction and emails the admin a generated password
// @Tags Admins
// @Accept json
// @Produce json
// @Param request body models.RegisterCompanyRequest true "Company"
// @Success 201 {object} models.RegisterCompanyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admins/register [post]
func (h *CompanyHandler) Register(c *gin.Context) {
	var req models.RegisterCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "name, nit, phone, email and address are required",
		})
		return
	}

	resp, err := h.companies.Register(c.Request.Context(), req)
	if err != nil {
		h.respondOnboardingError(c, err, "Failed to register company")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Apply handles POST /api/users/register-admin
// @Summary Apply as a company
// @Description Validates a company application and forwards it to the platform mailbox
// @Tags Users
// @Accept json
// @Produce json
// @Param request body models.CompanyApplicationRequest true "Application"
// @Success 202 {object} ErrorResponse
// @Failure 400 {object} ErrorResponse
// @Router /users/register-admin [post]
func (h *CompanyHandler) Apply(c *gin.Context) {
	var req models.CompanyApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "contactName, companyName, nit, phone, email and address are required",
		})
		return
	}

	if err := h.companies.Apply(c.Request.Context(), req); err != nil {
		h.respondOnboardingError(c, err, "Failed to forward company application")
		return
	}

	c.JSON(http.StatusAccepted, ErrorResponse{Message: "Application received"})
}

// ===================================================================
// LISTINGS
// ===================================================================

// ListCompanies handles GET /api/coworkings
// @Summary List companies
// @Tags Coworkings
// @Produce json
// @Success 200 {array} models.Company
// @Router /coworkings [get]
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	companies, err := h.companies.ListCompanies(c.Request.Context())
	respondList(c, h.logger, companies, err, "Failed to list companies")
}

// ListAddresses handles GET /api/admins/addresses
// @Summary List addresses
// @Tags Admins
// @Produce json
// @Success 200 {array} models.Address
// @Failure 403 {object} ErrorResponse
// @Router /admins/addresses [get]
func (h *CompanyHandler) ListAddresses(c *gin.Context) {
	addresses, err := h.companies.ListAddresses(c.Request.Context())
	respondList(c, h.logger, addresses, err, "Failed to list addresses")
}

// ListAdmins handles GET /api/admins/admins
// @Summary List company admins
// @Tags Admins
// @Produce json
// @Success 200 {array} models.CompanyAdmin
// @Failure 403 {object} ErrorResponse
// @Router /admins/admins [get]
func (h *CompanyHandler) ListAdmins(c *gin.Context) {
	admins, err := h.companies.ListAdmins(c.Request.Context())
	respondList(c, h.logger, admins, err, "Failed to list admins")
}

func (h *CompanyHandler) respondOnboardingError(c *gin.Context, err error, logMessage string) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_" + validationErr.Field,
			Message: validationErr.Err.Error(),
		})
	case errors.Is(err, database.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "email_taken",
			Message: "An account with this email already exists",
		})
	case errors.Is(err, database.ErrCompanyExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "company_exists",
			Message: "A company with this NIT is already registered",
		})
	default:
		h.logger.WithError(err).Error(logMessage)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error",
		})
	}
}

// respondList writes a JSON array, never null
func respondList[T any](c *gin.Context, logger *logrus.Logger, items []T, err error, logMessage string) {
	if err != nil {
		logger.WithError(err).Error(logMessage)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error",
		})
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, items)
}
