package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEventType represents the type of payment event
type PaymentEventType string

const (
	PaymentEventOrderCreated     PaymentEventType = "order_created"
	PaymentEventOrderFailed      PaymentEventType = "order_failed"
	PaymentEventCallbackPending  PaymentEventType = "callback_pending"
	PaymentEventCallbackFailure  PaymentEventType = "callback_failure"
	PaymentEventIntentRejected   PaymentEventType = "intent_rejected"
	PaymentEventBookingCreated   PaymentEventType = "booking_created"
	PaymentEventBookingDuplicate PaymentEventType = "booking_duplicate"
	PaymentEventBookingFailed    PaymentEventType = "booking_failed"
)

// PaymentEvent is an append-only record of one step of a checkout
type PaymentEvent struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	EventType      PaymentEventType `json:"eventType" db:"event_type"`
	UserID         *int64           `json:"userId,omitempty" db:"user_id"`
	SiteID         *int64           `json:"siteId,omitempty" db:"site_id"`
	BookingID      *int64           `json:"bookingId,omitempty" db:"booking_id"`
	PaymentID      *string          `json:"paymentId,omitempty" db:"payment_id"`
	PaymentStatus  *string          `json:"paymentStatus,omitempty" db:"payment_status"`
	Amount         *int64           `json:"amount,omitempty" db:"amount"`
	IdempotencyKey *string          `json:"idempotencyKey,omitempty" db:"idempotency_key"`
	ErrorMessage   *string          `json:"errorMessage,omitempty" db:"error_message"`
	IPAddress      *string          `json:"ipAddress,omitempty" db:"ip_address"`
	Client         JSONB            `json:"client,omitempty" db:"client"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
}

// NewPaymentEvent creates a payment event with required fields
func NewPaymentEvent(eventType PaymentEventType) *PaymentEvent {
	return &PaymentEvent{
		ID:        uuid.New(),
		EventType: eventType,
		CreatedAt: time.Now(),
	}
}

// SetUser sets the paying user
func (e *PaymentEvent) SetUser(userID int64) *PaymentEvent {
	e.UserID = &userID
	return e
}

// SetSite sets the booked site
func (e *PaymentEvent) SetSite(siteID int64) *PaymentEvent {
	e.SiteID = &siteID
	return e
}

// SetBooking sets the booking the event resulted in
func (e *PaymentEvent) SetBooking(bookingID int64) *PaymentEvent {
	e.BookingID = &bookingID
	return e
}

// SetPayment sets the provider payment id and status when present
func (e *PaymentEvent) SetPayment(paymentID, status string) *PaymentEvent {
	if paymentID != "" {
		e.PaymentID = &paymentID
	}
	if status != "" {
		e.PaymentStatus = &status
	}
	return e
}

// SetAmount sets the charged amount
func (e *PaymentEvent) SetAmount(amount int64) *PaymentEvent {
	e.Amount = &amount
	return e
}

// SetIdempotencyKey sets the booking idempotency key
func (e *PaymentEvent) SetIdempotencyKey(key string) *PaymentEvent {
	e.IdempotencyKey = &key
	return e
}

// SetError sets error information
func (e *PaymentEvent) SetError(err error) *PaymentEvent {
	if err != nil {
		message := err.Error()
		e.ErrorMessage = &message
	}
	return e
}

// SetClient sets request metadata of the browser that hit the callback
func (e *PaymentEvent) SetClient(ip string, client JSONB) *PaymentEvent {
	if ip != "" {
		e.IPAddress = &ip
	}
	e.Client = client
	return e
}
