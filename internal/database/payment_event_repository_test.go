package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coworkhub/coworking-backend/internal/models"
)

func TestPaymentEventRepository_Log(t *testing.T) {
	ctx := context.Background()
	logger := logrus.New()

	t.Run("Success", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewPaymentEventRepository(db, logger)

		event := models.NewPaymentEvent(models.PaymentEventBookingCreated).
			SetUser(7).
			SetSite(3).
			SetBooking(41).
			SetPayment("1234567890", "approved")

		mock.ExpectExec(`INSERT INTO payment_events`).
			WithArgs(event.ID, models.PaymentEventBookingCreated, int64(7), int64(3), int64(41),
				"1234567890", "approved", nil, nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Log(ctx, event))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nil event", func(t *testing.T) {
		db, _ := setupTestDB(t)
		repo := NewPaymentEventRepository(db, logger)
		assert.Error(t, repo.Log(ctx, nil))
	})

	t.Run("Database error", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewPaymentEventRepository(db, logger)

		mock.ExpectExec(`INSERT INTO payment_events`).
			WillReturnError(errors.New("relation does not exist"))

		err := repo.Log(ctx, &models.PaymentEvent{EventType: models.PaymentEventOrderFailed})
		assert.ErrorContains(t, err, "failed to log payment event")
	})
}

func TestPaymentEventRepository_DeleteOlderThan(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewPaymentEventRepository(db, logrus.New())
	cutoff := time.Now().AddDate(0, 0, -90)

	mock.ExpectExec(`DELETE FROM payment_events WHERE created_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 12))

	deleted, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(12), deleted)
}
