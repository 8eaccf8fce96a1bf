package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coworkhub/coworking-backend/internal/database"
	"github.com/coworkhub/coworking-backend/internal/middleware"
	"github.com/coworkhub/coworking-backend/internal/models"
)

// SiteStore is the site storage behind the catalogue routes
type SiteStore interface {
	Create(ctx context.Context, site *models.Site, address *models.Address) error
	Update(ctx context.Context, site *models.Site, address *models.Address) error
	GetByID(ctx context.Context, id int64) (*models.SiteDetails, error)
	GetForCompany(ctx context.Context, id, companyID int64) (*models.SiteDetails, error)
	ListByCompany(ctx context.Context, companyID int64) ([]models.SiteDetails, error)
	Search(ctx context.Context, filter models.SiteSearchFilter) (*models.SiteSearchResponse, error)
}

// SiteHandler handles the public catalogue and the admin site management routes
type SiteHandler struct {
	sites  SiteStore
	logger *logrus.Logger
}

// NewSiteHandler creates a new site handler
func NewSiteHandler(sites SiteStore, logger *logrus.Logger) *SiteHandler {
	return &SiteHandler{
		sites:  sites,
		logger: logger,
	}
}

// ===================================================================
// PUBLIC CATALOGUE
// ===================================================================

// Search handles GET /api/coworkings/search
// @Summary Search coworking sites
// @Tags Coworkings
// @Produce json
// @Param destination query string false "City, name or country"
// @Param capacity query int false "Minimum capacity"
// @Param maxPrice query int false "Maximum price per day"
// @Param sortOption query string false "starRating, pricePerDayAsc or pricePerDayDesc"
// @Param page query int false "Page number"
// @Success 200 {object} models.SiteSearchResponse
// @Failure 400 {object} ErrorResponse
// @Router /coworkings/search [get]
func (h *SiteHandler) Search(c *gin.Context) {
	var filter models.SiteSearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "capacity, maxPrice and page must be non-negative numbers",
		})
		return
	}

	result, err := h.sites.Search(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, database.ErrUnknownSortOption) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "Unknown sort option",
			})
			return
		}
		h.logger.WithError(err).Error("Site search failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong",
		})
		return
	}

	if result.Data == nil {
		result.Data = []models.SiteDetails{}
	}
	c.JSON(http.StatusOK, result)
}

// GetByID handles GET /api/coworkings/:id
// @Summary Get a coworking site
// @Tags Coworkings
// @Produce json
// @Param id path int true "Site ID"
// @Success 200 {object} models.SiteDetails
// @Failure 404 {object} ErrorResponse
// @Router /coworkings/{id} [get]
func (h *SiteHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	site, err := h.sites.GetByID(c.Request.Context(), id)
	h.respondSite(c, site, err)
}

// ===================================================================
// COMPANY SITES
// ===================================================================

// Create handles POST /api/my-coworkings
// @Summary Create a site for the caller's company
// @Tags My Coworkings
// @Accept json
// @Produce json
// @Param request body models.SiteRequest true "Site"
// @Success 201 {object} models.Site
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /my-coworkings [post]
func (h *SiteHandler) Create(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	req, address, ok := bindSiteRequest(c)
	if !ok {
		return
	}

	site := req.ToSite(companyID)
	if err := h.sites.Create(c.Request.Context(), &site, &address); err != nil {
		h.logger.WithError(err).WithField("company_id", companyID).Error("Failed to create site")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"company_id": companyID,
		"site_id":    site.ID,
	}).Info("Site created")

	c.JSON(http.StatusCreated, site)
}

// List handles GET /api/my-coworkings
// @Summary List the caller's company sites
// @Tags My Coworkings
// @Produce json
// @Success 200 {array} models.SiteDetails
// @Failure 403 {object} ErrorResponse
// @Router /my-coworkings [get]
func (h *SiteHandler) List(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)

	sites, err := h.sites.ListByCompany(c.Request.Context(), companyID)
	respondList(c, h.logger, sites, err, "Failed to list company sites")
}

// Get handles GET /api/my-coworkings/:id
// @Summary Get one of the caller's company sites
// @Tags My Coworkings
// @Produce json
// @Param id path int true "Site ID"
// @Success 200 {object} models.SiteDetails
// @Failure 404 {object} ErrorResponse
// @Router /my-coworkings/{id} [get]
func (h *SiteHandler) Get(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	site, err := h.sites.GetForCompany(c.Request.Context(), id, companyID)
	h.respondSite(c, site, err)
}

// Update handles PUT /api/my-coworkings/:id
// @Summary Update one of the caller's company sites
// @Tags My Coworkings
// @Accept json
// @Produce json
// @Param id path int true "Site ID"
// @Param request body models.SiteRequest true "Site"
// @Success 200 {object} models.Site
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /my-coworkings/{id} [put]
func (h *SiteHandler) Update(c *gin.Context) {
	companyID, _ := middleware.GetCompanyID(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	req, address, ok := bindSiteRequest(c)
	if !ok {
		return
	}

	site := req.ToSite(companyID)
	site.ID = id
	if err := h.sites.Update(c.Request.Context(), &site, &address); err != nil {
		if errors.Is(err, database.ErrSiteNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Coworking not found",
			})
			return
		}
		h.logger.WithError(err).WithField("site_id", id).Error("Failed to update site")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong",
		})
		return
	}

	c.JSON(http.StatusOK, site)
}

func (h *SiteHandler) respondSite(c *gin.Context, site *models.SiteDetails, err error) {
	if err != nil {
		h.logger.WithError(err).Error("Failed to load site")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong",
		})
		return
	}
	if site == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Coworking not found",
		})
		return
	}
	c.JSON(http.StatusOK, site)
}

func bindSiteRequest(c *gin.Context) (models.SiteRequest, models.Address, bool) {
	var req models.SiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return req, models.Address{}, false
	}
	return req, req.Address, true
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "id must be a positive integer",
		})
		return 0, false
	}
	return id, true
}
