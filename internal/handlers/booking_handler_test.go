package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coworkhub/coworking-backend/internal/middleware"
	"github.com/coworkhub/coworking-backend/internal/models"
	"github.com/coworkhub/coworking-backend/pkg/jwt"
)

type stubBookings struct {
	byUser map[int64][]models.BookingDetails
}

func (s stubBookings) ListByUser(ctx context.Context, userID int64) ([]models.BookingDetails, error) {
	return s.byUser[userID], nil
}

func TestBookingHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewBookingHandler(stubBookings{byUser: map[int64][]models.BookingDetails{
		7: {{Booking: models.Booking{ID: 1, UserID: 7, Price: 150000, ReservationType: "days"}, SiteName: "Hub Central"}},
	}}, quietLogger())
	router.GET("/api/bookings", middleware.AuthMiddleware(testJWT(), testCookie, quietLogger()), middleware.RequireRole(jwt.RoleUser), h.List)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	req.Header.Set("Authorization", bearer(t, 7))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var bookings []models.BookingDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bookings))
	require.Len(t, bookings, 1)
	assert.Equal(t, "Hub Central", bookings[0].SiteName)

	req = httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	req.Header.Set("Authorization", bearer(t, 8))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "[]", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bookings", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// admin 7 is not customer 7
	req = httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	req.Header.Set("Authorization", adminBearer(t, 7))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "Hub Central")
}
