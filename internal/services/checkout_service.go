package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/coworkhub/coworking-backend/internal/metrics"
	"github.com/coworkhub/coworking-backend/internal/models"
	"github.com/coworkhub/coworking-backend/internal/utils"
	"github.com/coworkhub/coworking-backend/pkg/reservation"
)

var (
	// ErrBookingPersistence is returned when the booking could not be stored after a retry
	ErrBookingPersistence = errors.New("booking could not be stored")
	// ErrIntentOwnerMismatch is returned when the callback session is not the payer
	ErrIntentOwnerMismatch = errors.New("reservation intent belongs to another user")
	// ErrPaymentNotApproved is returned when the provider reports a non-approved status
	ErrPaymentNotApproved = errors.New("payment not approved")
	// ErrUnknownPayer is returned when the session user no longer exists
	ErrUnknownPayer = errors.New("payer account not found")
)

const (
	approvedStatus  = "approved"
	siteNameMaxLen  = 40
	itemCategory    = "services"
	persistAttempts = 2
)

// SiteLookup finds sites by id
type SiteLookup interface {
	GetByID(ctx context.Context, id int64) (*models.SiteDetails, error)
}

// UserLookup finds customer accounts by id
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// BookingStore persists bookings; Create reports false for a duplicate idempotency key
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) (bool, error)
}

// PaymentEventLogger appends to the payment event trail
type PaymentEventLogger interface {
	Log(ctx context.Context, event *models.PaymentEvent) error
}

// PaymentProvider creates hosted checkouts
type PaymentProvider interface {
	CreatePreference(ctx context.Context, req PreferenceRequest, idempotencyKey string) (*Preference, error)
	Sandbox() bool
}

// BookingMailer sends booking confirmations
type BookingMailer interface {
	SendBookingConfirmation(ctx context.Context, to, name string, b BookingConfirmation) error
}

// CheckoutConfig holds the deployment settings checkout depends on
type CheckoutConfig struct {
	Currency     string
	Installments int
	BackendURL   string
	Location     *time.Location
	RetryDelay   time.Duration
}

// CheckoutService turns booking requests into provider orders and approved
// payment callbacks into bookings
type CheckoutService struct {
	codec     *reservation.Codec
	provider  PaymentProvider
	sites     SiteLookup
	users     UserLookup
	bookings  BookingStore
	events    PaymentEventLogger
	mailer    BookingMailer
	publisher EventPublisher
	config    CheckoutConfig
	validate  *validator.Validate
	logger    *logrus.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	codec *reservation.Codec,
	provider PaymentProvider,
	sites SiteLookup,
	users UserLookup,
	bookings BookingStore,
	events PaymentEventLogger,
	mailer BookingMailer,
	publisher EventPublisher,
	cfg CheckoutConfig,
	logger *logrus.Logger,
) *CheckoutService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &CheckoutService{
		codec:     codec,
		provider:  provider,
		sites:     sites,
		users:     users,
		bookings:  bookings,
		events:    events,
		mailer:    mailer,
		publisher: publisher,
		config:    cfg,
		validate:  newRequestValidator(),
		logger:    logger,
	}
}

// CheckoutResult is the outcome of an approved payment callback
type CheckoutResult struct {
	Booking *models.Booking
	Created bool
}

// ============================================================================
// ORDER CREATION
// ============================================================================

// CreateOrder validates the request, signs the booking intent into the order
// reference and returns the provider checkout URL
func (s *CheckoutService) CreateOrder(ctx context.Context, payerID int64, req models.CreateOrderRequest, client utils.ClientInfo) (string, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return "", err
	}

	intent, err := s.buildIntent(ctx, payerID, req)
	if err != nil {
		return "", err
	}

	payer, err := s.users.GetByID(ctx, payerID)
	if err != nil {
		return "", fmt.Errorf("failed to load payer: %w", err)
	}
	if payer == nil {
		return "", ErrUnknownPayer
	}

	reference, err := s.codec.Encode(intent)
	if err != nil {
		return "", fmt.Errorf("failed to encode intent: %w", err)
	}

	idempotencyKey := intent.IdempotencyKey()
	event := models.NewPaymentEvent(models.PaymentEventOrderCreated).
		SetUser(payerID).
		SetSite(intent.SiteID).
		SetAmount(intent.Price).
		SetIdempotencyKey(idempotencyKey).
		SetClient(client.IP, client.Fields())

	preference, err := s.provider.CreatePreference(ctx, s.preferenceRequest(intent, req, payer, reference), idempotencyKey)
	if err != nil {
		metrics.RecordCheckoutOrder("provider_error")
		event.EventType = models.PaymentEventOrderFailed
		s.logEvent(ctx, event.SetError(err))
		return "", err
	}

	metrics.RecordCheckoutOrder("created")
	s.logEvent(ctx, event.SetPayment(preference.ID, ""))

	s.logger.WithFields(logrus.Fields{
		"user_id":          payerID,
		"site_id":          intent.SiteID,
		"reservation_type": intent.Kind,
		"price":            intent.Price,
		"preference_id":    preference.ID,
	}).Info("Checkout order created")

	return preference.RedirectURL(s.provider.Sandbox()), nil
}

func (s *CheckoutService) buildIntent(ctx context.Context, payerID int64, req models.CreateOrderRequest) (reservation.Intent, error) {
	invalid := &CheckoutValidationError{}

	price, err := parseWholeAmount(req.TotalPrice)
	if err != nil {
		invalid.add("totalPrice", "number", "totalPrice must be a positive amount")
	}

	intent := reservation.Intent{
		Kind:        reservation.Kind(req.ReservationType),
		Price:       price,
		SiteID:      req.SiteID,
		RequesterID: payerID,
		SiteName:    truncateRunes(strings.TrimSpace(req.SedeName), siteNameMaxLen),
	}

	switch intent.Kind {
	case reservation.KindDays:
		intent.StartDate = req.StartDate
		intent.EndDate = req.EndDate
		days, err := strconv.Atoi(req.TotalDays.String())
		if err != nil || days <= 0 {
			invalid.add("totalDays", "number", "totalDays must be a positive whole number")
		}
		intent.TotalDays = days
	case reservation.KindHours:
		intent.ReservationDate = req.ReservationDate
		intent.StartTime = req.StartTime
		intent.EndTime = req.EndTime
		hours, err := req.TotalHours.Float64()
		if err != nil || hours <= 0 {
			invalid.add("totalHours", "number", "totalHours must be a positive number")
		}
		intent.TotalHours = hours
	}

	schedule, err := reservation.Reconcile(intent, s.config.Location)
	if err != nil {
		invalid.add(scheduleField(intent.Kind), "schedule", err.Error())
	} else if schedule.End.Before(schedule.Start) || (intent.Kind == reservation.KindHours && !schedule.End.After(schedule.Start)) {
		invalid.add(scheduleEndField(intent.Kind), "schedule", "the reservation must end after it starts")
	}

	if err := invalid.orNil(); err != nil {
		return reservation.Intent{}, err
	}

	site, err := s.sites.GetByID(ctx, req.SiteID)
	if err != nil {
		return reservation.Intent{}, fmt.Errorf("failed to load site: %w", err)
	}
	if site == nil {
		invalid.add("idsede", "exists", "site does not exist")
		return reservation.Intent{}, invalid
	}
	intent.CompanyID = site.CompanyID

	id := uuid.New()
	intent.Nonce = base64.RawURLEncoding.EncodeToString(id[:])

	return intent, nil
}

func (s *CheckoutService) preferenceRequest(intent reservation.Intent, req models.CreateOrderRequest, payer *models.User, reference string) PreferenceRequest {
	backURL := s.config.BackendURL + "/api/payment/"

	return PreferenceRequest{
		Items: []PreferenceItem{{
			ID:          strconv.FormatInt(intent.SiteID, 10),
			Title:       "Booking at " + strings.TrimSpace(req.SedeName),
			Description: describeIntent(intent),
			PictureURL:  req.ImgURL,
			CategoryID:  itemCategory,
			Quantity:    1,
			CurrencyID:  s.config.Currency,
			UnitPrice:   intent.Price,
		}},
		Payer: PreferencePayer{
			Email:   payer.Email,
			Name:    payer.FirstName,
			Surname: payer.LastName,
		},
		BackURLs: BackURLs{
			Success: backURL + "success",
			Pending: backURL + "pending",
			Failure: backURL + "failure",
		},
		AutoReturn:        approvedStatus,
		PaymentMethods:    PaymentMethods{Installments: s.config.Installments},
		ExternalReference: reference,
	}
}

// ============================================================================
// PAYMENT CALLBACKS
// ============================================================================

// CompleteCheckout stores the booking for an approved payment. A repeated
// callback for the same intent returns the existing outcome with Created false.
func (s *CheckoutService) CompleteCheckout(ctx context.Context, userID int64, cb models.PaymentCallback, client utils.ClientInfo) (*CheckoutResult, error) {
	event := models.NewPaymentEvent(models.PaymentEventCallbackPending).
		SetUser(userID).
		SetPayment(cb.PaymentID, cb.ApprovalStatus()).
		SetClient(client.IP, client.Fields())

	if status := cb.ApprovalStatus(); status != "" && status != approvedStatus {
		metrics.RecordPaymentCallback("not_approved")
		s.logEvent(ctx, event)
		return nil, fmt.Errorf("%w: %s", ErrPaymentNotApproved, status)
	}

	intent, err := s.codec.Decode(cb.ExternalReference)
	if err != nil {
		return nil, s.reject(ctx, event, err)
	}
	event.SetSite(intent.SiteID).SetAmount(intent.Price).SetIdempotencyKey(intent.IdempotencyKey())

	if intent.RequesterID != userID {
		return nil, s.reject(ctx, event, fmt.Errorf("%w: intent user %d", ErrIntentOwnerMismatch, intent.RequesterID))
	}

	schedule, err := reservation.Reconcile(intent, s.config.Location)
	if err != nil {
		return nil, s.reject(ctx, event, err)
	}

	booking := &models.Booking{
		UserID:          intent.RequesterID,
		CompanyID:       intent.CompanyID,
		SiteID:          intent.SiteID,
		StartsAt:        schedule.Start,
		EndsAt:          schedule.End,
		Price:           intent.Price,
		ReservationType: string(intent.Kind),
		IdempotencyKey:  intent.IdempotencyKey(),
	}
	if cb.PaymentID != "" {
		reference := cb.PaymentID
		booking.PaymentReference = &reference
	}

	created, err := s.persist(ctx, booking)
	if err != nil {
		metrics.RecordBooking(booking.ReservationType, "failed")
		metrics.RecordPaymentCallback("persistence_error")
		event.EventType = models.PaymentEventBookingFailed
		s.logEvent(ctx, event.SetError(err))
		return nil, fmt.Errorf("%w: %v", ErrBookingPersistence, err)
	}

	if !created {
		metrics.RecordBooking(booking.ReservationType, "duplicate")
		metrics.RecordPaymentCallback("duplicate")
		event.EventType = models.PaymentEventBookingDuplicate
		s.logEvent(ctx, event)
		s.logger.WithFields(logrus.Fields{
			"user_id":         userID,
			"idempotency_key": booking.IdempotencyKey,
		}).Info("Repeated payment callback ignored")
		return &CheckoutResult{Booking: booking, Created: false}, nil
	}

	metrics.RecordBooking(booking.ReservationType, "created")
	metrics.RecordPaymentCallback("success")
	event.EventType = models.PaymentEventBookingCreated
	s.logEvent(ctx, event.SetBooking(booking.ID))

	s.logger.WithFields(logrus.Fields{
		"booking_id":       booking.ID,
		"user_id":          booking.UserID,
		"site_id":          booking.SiteID,
		"reservation_type": booking.ReservationType,
		"starts_at":        booking.StartsAt,
		"ends_at":          booking.EndsAt,
		"price":            booking.Price,
	}).Info("Booking created from payment")

	s.notify(ctx, booking, intent)

	return &CheckoutResult{Booking: booking, Created: true}, nil
}

// HandlePending records a pending payment; nothing is persisted
func (s *CheckoutService) HandlePending(ctx context.Context, cb models.PaymentCallback, client utils.ClientInfo) {
	metrics.RecordPaymentCallback("pending")

	event := models.NewPaymentEvent(models.PaymentEventCallbackPending).
		SetPayment(cb.PaymentID, cb.ApprovalStatus()).
		SetClient(client.IP, client.Fields())
	if intent, err := s.codec.Decode(cb.ExternalReference); err == nil {
		event.SetUser(intent.RequesterID).SetSite(intent.SiteID).SetAmount(intent.Price)
	}
	s.logEvent(ctx, event)
}

// HandleFailure recovers the site of a failed payment so the user can retry
func (s *CheckoutService) HandleFailure(ctx context.Context, cb models.PaymentCallback, client utils.ClientInfo) (int64, error) {
	event := models.NewPaymentEvent(models.PaymentEventCallbackFailure).
		SetPayment(cb.PaymentID, cb.ApprovalStatus()).
		SetClient(client.IP, client.Fields())

	intent, err := s.codec.Decode(cb.ExternalReference)
	if err != nil {
		metrics.RecordPaymentCallback("malformed")
		s.logEvent(ctx, event.SetError(err))
		return 0, err
	}

	metrics.RecordPaymentCallback("failure")
	s.logEvent(ctx, event.SetUser(intent.RequesterID).SetSite(intent.SiteID).SetAmount(intent.Price))
	return intent.SiteID, nil
}

// ============================================================================
// HELPERS
// ============================================================================

// persist tries the insert twice before giving up
func (s *CheckoutService) persist(ctx context.Context, booking *models.Booking) (bool, error) {
	var lastErr error
	for attempt := 1; attempt <= persistAttempts; attempt++ {
		created, err := s.bookings.Create(ctx, booking)
		if err == nil {
			return created, nil
		}
		lastErr = err

		s.logger.WithFields(logrus.Fields{
			"attempt":         attempt,
			"idempotency_key": booking.IdempotencyKey,
			"error":           err.Error(),
		}).Warn("Failed to store booking")

		if attempt < persistAttempts {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(s.config.RetryDelay):
			}
		}
	}
	return false, lastErr
}

func (s *CheckoutService) notify(ctx context.Context, booking *models.Booking, intent reservation.Intent) {
	user, err := s.users.GetByID(ctx, booking.UserID)
	switch {
	case err != nil:
		s.logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to load user for confirmation email")
	case user == nil:
		s.logger.WithField("booking_id", booking.ID).Warn("Booking owner not found, confirmation email skipped")
	default:
		err = s.mailer.SendBookingConfirmation(ctx, user.Email, user.FirstName, BookingConfirmation{
			BookingID:       booking.ID,
			SiteName:        intent.SiteName,
			ReservationType: booking.ReservationType,
			StartsAt:        booking.StartsAt,
			EndsAt:          booking.EndsAt,
			Price:           booking.Price,
			Currency:        s.config.Currency,
		})
		if err != nil {
			s.logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to send booking confirmation")
		}
	}

	event := BookingConfirmedEvent{
		BookingID:       booking.ID,
		UserID:          booking.UserID,
		CompanyID:       booking.CompanyID,
		SiteID:          booking.SiteID,
		ReservationType: booking.ReservationType,
		StartsAt:        booking.StartsAt,
		EndsAt:          booking.EndsAt,
		Price:           booking.Price,
		ConfirmedAt:     time.Now().UTC(),
	}
	if booking.PaymentReference != nil {
		event.PaymentReference = *booking.PaymentReference
	}
	if err := s.publisher.PublishBookingConfirmed(ctx, event); err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to publish booking confirmed event")
	}
}

func (s *CheckoutService) reject(ctx context.Context, event *models.PaymentEvent, err error) error {
	metrics.RecordPaymentCallback("rejected")
	event.EventType = models.PaymentEventIntentRejected
	s.logEvent(ctx, event.SetError(err))
	s.logger.WithError(err).Warn("Payment callback rejected")
	return err
}

func (s *CheckoutService) logEvent(ctx context.Context, event *models.PaymentEvent) {
	if err := s.events.Log(ctx, event); err != nil {
		s.logger.WithError(err).WithField("event_type", event.EventType).Error("Payment event not recorded")
	}
}

// parseWholeAmount reads a positive amount, dropping any decimal part
func parseWholeAmount(n fmt.Stringer) (int64, error) {
	whole, _, _ := strings.Cut(strings.TrimSpace(n.String()), ".")
	amount, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}
	return amount, nil
}

func describeIntent(intent reservation.Intent) string {
	if intent.Kind == reservation.KindHours {
		return fmt.Sprintf("%s from %s to %s (%s hours)",
			intent.ReservationDate, intent.StartTime, intent.EndTime,
			strconv.FormatFloat(intent.TotalHours, 'f', -1, 64))
	}
	return fmt.Sprintf("From %s to %s (%d days)", intent.StartDate, intent.EndDate, intent.TotalDays)
}

func scheduleField(kind reservation.Kind) string {
	if kind == reservation.KindHours {
		return "reservationDate"
	}
	return "startDate"
}

func scheduleEndField(kind reservation.Kind) string {
	if kind == reservation.KindHours {
		return "endTime"
	}
	return "endDate"
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
