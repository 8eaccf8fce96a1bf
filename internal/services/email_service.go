package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/coworkhub/coworking-backend/internal/config"
	"github.com/coworkhub/coworking-backend/internal/metrics"
	"github.com/coworkhub/coworking-backend/internal/models"
)

const (
	emailQueue       = "emails"
	emailFailedQueue = "emails:failed"
	emailMaxTries    = 3
)

// Email types, used as metric labels
const (
	EmailBookingConfirmation = "booking_confirmation"
	EmailAdminCredentials    = "admin_credentials"
	EmailCompanyApplication  = "company_application"
)

// EmailMessage is one outgoing plain-text email
type EmailMessage struct {
	Type    string
	To      string
	Name    string
	Subject string
	Body    string
}

// EmailJob is the queued form of an EmailMessage
type EmailJob struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService sends email through a Redis-backed queue, or directly over
// SMTP when no Redis client is configured
type EmailService struct {
	redis      *redis.Client
	config     config.EmailConfig
	logger     *logrus.Logger
	sendMail   sendMailFunc
	retryDelay time.Duration
}

// NewEmailService creates a new email service; rdb may be nil
func NewEmailService(cfg config.EmailConfig, rdb *redis.Client, logger *logrus.Logger) *EmailService {
	return &EmailService{
		redis:      rdb,
		config:     cfg,
		logger:     logger,
		sendMail:   smtp.SendMail,
		retryDelay: 5 * time.Second,
	}
}

// Queued reports whether messages go through the Redis queue
func (s *EmailService) Queued() bool {
	return s.redis != nil
}

// Send queues a message, or sends it right away without a queue
func (s *EmailService) Send(ctx context.Context, msg EmailMessage) error {
	job := EmailJob{
		ID:      uuid.NewString(),
		Type:    msg.Type,
		To:      msg.To,
		Name:    msg.Name,
		Subject: msg.Subject,
		Body:    msg.Body,
		Created: time.Now(),
	}

	if s.redis == nil {
		job.Tries = 1
		if err := s.sendNow(job); err != nil {
			metrics.RecordEmail(job.Type, "failed")
			return fmt.Errorf("failed to send email: %w", err)
		}
		metrics.RecordEmail(job.Type, "sent")
		return nil
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal email job: %w", err)
	}

	if err := s.redis.LPush(ctx, emailQueue, string(data)).Err(); err != nil {
		s.logger.WithError(err).WithField("to", msg.To).Error("Failed to queue email")
		return fmt.Errorf("failed to queue email: %w", err)
	}

	metrics.RecordEmail(job.Type, "queued")
	s.logger.WithFields(logrus.Fields{
		"job_id":  job.ID,
		"type":    job.Type,
		"subject": job.Subject,
	}).Info("Email queued")
	return nil
}

// Start runs the queue worker until ctx is cancelled
func (s *EmailService) Start(ctx context.Context) {
	if s.redis == nil {
		return
	}
	s.logger.Info("Email worker started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *EmailService) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, emailQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			s.logger.WithError(err).Warn("Email queue pop failed")
		}
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		s.logger.WithError(err).Error("Bad email job data")
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		s.logger.WithFields(logrus.Fields{
			"job_id":  job.ID,
			"attempt": job.Tries,
			"error":   err.Error(),
		}).Error("Failed to send email")

		if job.Tries < emailMaxTries {
			s.requeue(ctx, job)
		} else {
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordEmail(job.Type, "sent")
	s.logger.WithFields(logrus.Fields{
		"job_id":  job.ID,
		"attempt": job.Tries,
	}).Info("Email sent")
}

func (s *EmailService) requeue(ctx context.Context, job EmailJob) {
	select {
	case <-ctx.Done():
	case <-time.After(s.retryDelay):
	}

	data, _ := json.Marshal(job)
	if err := s.redis.LPush(context.Background(), emailQueue, string(data)).Err(); err != nil {
		s.logger.WithError(err).WithField("job_id", job.ID).Error("Failed to requeue email")
	}
}

func (s *EmailService) saveFailed(job EmailJob, sendErr error) {
	metrics.RecordEmail(job.Type, "failed")

	failed := map[string]interface{}{
		"job":   job,
		"error": sendErr.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	if err := s.redis.LPush(context.Background(), emailFailedQueue, string(data)).Err(); err != nil {
		s.logger.WithError(err).WithField("job_id", job.ID).Error("Failed to dead-letter email")
		return
	}
	s.logger.WithField("job_id", job.ID).Error("Email moved to failed queue")
}

func (s *EmailService) sendNow(job EmailJob) error {
	if s.config.SMTPHost == "" {
		return fmt.Errorf("smtp host not configured")
	}

	message := fmt.Sprintf("From: %s <%s>\r\n", mime.QEncoding.Encode("UTF-8", headerValue(s.config.FromName)), headerValue(s.config.FromAddress))
	message += fmt.Sprintf("To: %s\r\n", headerValue(job.To))
	message += fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", headerValue(job.Subject)))
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/plain; charset=UTF-8\r\n"
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.config.SMTPUser != "" && s.config.SMTPPassword != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUser, s.config.SMTPPassword, s.config.SMTPHost)
	}

	addr := s.config.SMTPHost + ":" + s.config.SMTPPort
	return s.sendMail(addr, auth, s.config.FromAddress, []string{job.To}, []byte(message))
}

// headerValue folds a value onto one line so it cannot start a new header
func headerValue(v string) string {
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool {
		return r == '\r' || r == '\n'
	}), " ")
}

// QueueLength returns the number of pending jobs; zero without a queue
func (s *EmailService) QueueLength(ctx context.Context) (int64, error) {
	if s.redis == nil {
		return 0, nil
	}
	length, err := s.redis.LLen(ctx, emailQueue).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read email queue length: %w", err)
	}
	return length, nil
}

// BookingConfirmation is what the confirmation email tells the user
type BookingConfirmation struct {
	BookingID       int64
	SiteName        string
	ReservationType string
	StartsAt        time.Time
	EndsAt          time.Time
	Price           int64
	Currency        string
}

// SendBookingConfirmation emails the user that their booking is stored
func (s *EmailService) SendBookingConfirmation(ctx context.Context, to, name string, b BookingConfirmation) error {
	var when string
	if b.ReservationType == "hours" {
		when = fmt.Sprintf("%s from %s to %s",
			b.StartsAt.Format("Jan 2, 2006"), b.StartsAt.Format("15:04"), b.EndsAt.Format("15:04"))
	} else {
		when = fmt.Sprintf("from %s to %s", b.StartsAt.Format("Jan 2, 2006"), b.EndsAt.Format("Jan 2, 2006"))
	}

	body := fmt.Sprintf(`Hi %s,

Your booking is confirmed!

Booking: #%d
Space: %s
When: %s
Paid: %d %s

You can review it any time under "My bookings".

- CoworkHub Team`, name, b.BookingID, b.SiteName, when, b.Price, b.Currency)

	return s.Send(ctx, EmailMessage{
		Type:    EmailBookingConfirmation,
		To:      to,
		Name:    name,
		Subject: "Booking confirmed - " + b.SiteName,
		Body:    body,
	})
}

// SendAdminCredentials emails a new company admin their generated password
func (s *EmailService) SendAdminCredentials(ctx context.Context, to, companyName, password string) error {
	body := fmt.Sprintf(`Hello,

%s is now registered on CoworkHub.

Sign in with:
Email: %s
Password: %s

Please change the password after your first login.

- CoworkHub Team`, companyName, to, password)

	return s.Send(ctx, EmailMessage{
		Type:    EmailAdminCredentials,
		To:      to,
		Subject: "Your CoworkHub admin account",
		Body:    body,
	})
}

// SendCompanyApplication forwards a company application to the system mailbox
func (s *EmailService) SendCompanyApplication(ctx context.Context, app models.CompanyApplicationRequest) error {
	if s.config.SystemMailbox == "" {
		return fmt.Errorf("system mailbox not configured")
	}

	body := fmt.Sprintf(`New company application

Contact: %s
Company: %s
NIT: %s
Phone: %s
Email: %s
Address: %s`, app.ContactName, app.CompanyName, app.TaxID, app.Phone, app.Email, app.Address)

	return s.Send(ctx, EmailMessage{
		Type:    EmailCompanyApplication,
		To:      s.config.SystemMailbox,
		Subject: "Company application - " + app.CompanyName,
		Body:    body,
	})
}
