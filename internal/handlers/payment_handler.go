package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coworkhub/coworking-backend/internal/middleware"
	"github.com/coworkhub/coworking-backend/internal/models"
	"github.com/coworkhub/coworking-backend/internal/services"
	"github.com/coworkhub/coworking-backend/internal/utils"
)

// CheckoutFlow creates payment orders and settles their outcomes
type CheckoutFlow interface {
	CreateOrder(ctx context.Context, payerID int64, req models.CreateOrderRequest, client utils.ClientInfo) (string, error)
	CompleteCheckout(ctx context.Context, userID int64, cb models.PaymentCallback, client utils.ClientInfo) (*services.CheckoutResult, error)
	HandlePending(ctx context.Context, cb models.PaymentCallback, client utils.ClientInfo)
	HandleFailure(ctx context.Context, cb models.PaymentCallback, client utils.ClientInfo) (int64, error)
}

// PaymentHandler handles checkout and payment outcome HTTP requests.
// Outcome routes always answer with a browser redirect to the frontend.
type PaymentHandler struct {
	checkout    CheckoutFlow
	frontendURL string
	logger      *logrus.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(checkout CheckoutFlow, frontendURL string, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		checkout:    checkout,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

// CheckoutErrorResponse lists the request fields that blocked an order
type CheckoutErrorResponse struct {
	Message string                `json:"message"`
	Fields  []services.FieldError `json:"fields,omitempty"`
}

// ===================================================================
// ORDER CREATION
// ===================================================================

// CreateOrder handles POST /api/payment/create-order
// @Summary Create a checkout order
// @Description Validates the booking request and returns the payment provider checkout URL
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body models.CreateOrderRequest true "Booking request"
// @Success 200 {object} models.CreateOrderResponse
// @Failure 400 {object} CheckoutErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /payment/create-order [post]
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, CheckoutErrorResponse{Message: "Invalid request body"})
		return
	}

	url, err := h.checkout.CreateOrder(c.Request.Context(), userCtx.UserID, req, utils.DescribeClient(c))
	if err != nil {
		var validationErr *services.CheckoutValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, CheckoutErrorResponse{
				Message: "Missing or invalid fields: " + strings.Join(validationErr.FieldNames(), ", "),
				Fields:  validationErr.Fields,
			})
		case errors.Is(err, services.ErrUnknownPayer):
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: "Authentication required",
			})
		default:
			h.logger.WithError(err).WithField("user_id", userCtx.UserID).Error("Failed to create checkout order")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to create payment order"})
		}
		return
	}

	c.JSON(http.StatusOK, models.CreateOrderResponse{URL: url})
}

// ===================================================================
// OUTCOME CALLBACKS
// ===================================================================

// Success handles GET /api/payment/success
// @Summary Approved payment callback
// @Description Stores the booking carried by external_reference and redirects to the bookings page
// @Tags Payment
// @Param external_reference query string true "Signed booking intent"
// @Param payment_id query string false "Provider payment id"
// @Param status query string false "Provider payment status"
// @Success 302
// @Failure 401 {object} ErrorResponse
// @Router /payment/success [get]
func (h *PaymentHandler) Success(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)
	cb := bindCallback(c)

	result, err := h.checkout.CompleteCheckout(c.Request.Context(), userCtx.UserID, cb, utils.DescribeClient(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotApproved):
			h.redirect(c, "/payment/pending")
		default:
			h.logger.WithError(err).WithFields(logrus.Fields{
				"user_id":    userCtx.UserID,
				"payment_id": cb.PaymentID,
			}).Error("Payment success callback not settled")
			h.redirect(c, "/payment/error")
		}
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id": result.Booking.ID,
		"created":    result.Created,
	}).Info("Payment success callback settled")
	h.redirect(c, "/bookings")
}

// Pending handles GET /api/payment/pending
// @Summary Pending payment callback
// @Tags Payment
// @Success 302
// @Router /payment/pending [get]
func (h *PaymentHandler) Pending(c *gin.Context) {
	h.checkout.HandlePending(c.Request.Context(), bindCallback(c), utils.DescribeClient(c))
	h.redirect(c, "/payment/pending")
}

// Failure handles GET /api/payment/failure
// @Summary Failed payment callback
// @Description Redirects back to the booked site so the user can retry
// @Tags Payment
// @Success 302
// @Router /payment/failure [get]
func (h *PaymentHandler) Failure(c *gin.Context) {
	siteID, err := h.checkout.HandleFailure(c.Request.Context(), bindCallback(c), utils.DescribeClient(c))
	if err != nil {
		h.logger.WithError(err).Warn("Payment failure callback carried an unusable reference")
		h.redirect(c, "/payment/error")
		return
	}
	h.redirect(c, fmt.Sprintf("/coworkings/%d", siteID))
}

func (h *PaymentHandler) redirect(c *gin.Context, path string) {
	c.Redirect(http.StatusFound, h.frontendURL+path)
}

// bindCallback reads the provider query string; unknown parameters are ignored
func bindCallback(c *gin.Context) models.PaymentCallback {
	var cb models.PaymentCallback
	_ = c.ShouldBindQuery(&cb)
	return cb
}
