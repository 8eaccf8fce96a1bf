package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coworkhub/coworking-backend/internal/models"
)

// BookingRepository handles booking database operations
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{
		db: db,
	}
}

// Create inserts a booking unless one with the same idempotency key exists.
// It reports whether a new row was written; on a duplicate the booking is left untouched.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) (bool, error) {
	query := `
		INSERT INTO bookings (
			user_id, company_id, site_id, starts_at, ends_at,
			price, reservation_type, idempotency_key, payment_reference
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		booking.UserID,
		booking.CompanyID,
		booking.SiteID,
		booking.StartsAt,
		booking.EndsAt,
		booking.Price,
		booking.ReservationType,
		booking.IdempotencyKey,
		booking.PaymentReference,
	).Scan(&booking.ID, &booking.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create booking: %w", err)
	}

	return true, nil
}

// ListByUser returns a user's bookings with site and address, newest start first
func (r *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]models.BookingDetails, error) {
	bookings := []models.BookingDetails{}
	query := `
		SELECT
			b.id, b.user_id, b.company_id, b.site_id, b.starts_at, b.ends_at,
			b.price, b.reservation_type, b.idempotency_key, b.payment_reference, b.created_at,
			s.name AS site_name, s.city, s.image_urls,
			a.road_type, a.main_road, a.cross_road, a.complement
		FROM bookings b
		JOIN sites s ON s.id = b.site_id
		JOIN addresses a ON a.id = s.address_id
		WHERE b.user_id = $1
		ORDER BY b.starts_at DESC
	`

	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}
