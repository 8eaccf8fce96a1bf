package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/coworkhub/coworking-backend/internal/models"
)

// PaymentEventRepository stores the checkout event trail
type PaymentEventRepository struct {
	db     DB
	logger *logrus.Logger
}

// NewPaymentEventRepository creates a new payment event repository
func NewPaymentEventRepository(db DB, logger *logrus.Logger) *PaymentEventRepository {
	return &PaymentEventRepository{
		db:     db,
		logger: logger,
	}
}

// Log appends a payment event
func (r *PaymentEventRepository) Log(ctx context.Context, event *models.PaymentEvent) error {
	if event == nil {
		return fmt.Errorf("payment event cannot be nil")
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO payment_events (
			id, event_type, user_id, site_id, booking_id,
			payment_id, payment_status, amount, idempotency_key,
			error_message, ip_address, client, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.EventType, event.UserID, event.SiteID, event.BookingID,
		event.PaymentID, event.PaymentStatus, event.Amount, event.IdempotencyKey,
		event.ErrorMessage, event.IPAddress, event.Client, event.CreatedAt,
	)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"event_id":   event.ID,
			"event_type": event.EventType,
			"error":      err.Error(),
		}).Error("CRITICAL: Failed to log payment event")
		return fmt.Errorf("failed to log payment event: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.EventType,
	}).Debug("Payment event logged")

	return nil
}

// DeleteOlderThan removes events created before cutoff and returns how many were deleted
func (r *PaymentEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM payment_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune payment events: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned payment events: %w", err)
	}
	return deleted, nil
}
