package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coworkhub/coworking-backend/internal/middleware"
	"github.com/coworkhub/coworking-backend/internal/models"
)

// BookingLister lists a user's bookings
type BookingLister interface {
	ListByUser(ctx context.Context, userID int64) ([]models.BookingDetails, error)
}

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookings BookingLister
	logger   *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings BookingLister, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		logger:   logger,
	}
}

// List handles GET /api/bookings
// @Summary List the caller's bookings
// @Tags Bookings
// @Produce json
// @Success 200 {array} models.BookingDetails
// @Failure 401 {object} ErrorResponse
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	bookings, err := h.bookings.ListByUser(c.Request.Context(), userCtx.UserID)
	respondList(c, h.logger, bookings, err, "Failed to list bookings")
}
