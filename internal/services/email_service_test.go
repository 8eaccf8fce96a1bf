package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coworkhub/coworking-backend/internal/config"
	"github.com/coworkhub/coworking-backend/internal/models"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestEmailService(rdb *redis.Client, sendErr error) (*EmailService, *[]capturedMail) {
	sent := &[]capturedMail{}
	svc := NewEmailService(config.EmailConfig{
		SMTPHost:      "smtp.test.com",
		SMTPPort:      "587",
		SMTPUser:      "mailer",
		SMTPPassword:  "secret",
		FromAddress:   "no-reply@coworkhub.co",
		FromName:      "CoworkHub",
		SystemMailbox: "partners@coworkhub.co",
	}, rdb, quietLogger())
	svc.retryDelay = 0
	svc.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		*sent = append(*sent, capturedMail{addr: addr, from: from, to: to, msg: string(msg)})
		return sendErr
	}
	return svc, sent
}

func encodeJob(t *testing.T, job EmailJob) string {
	data, err := json.Marshal(job)
	require.NoError(t, err)
	return string(data)
}

func TestEmailService_SendQueues(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush(emailQueue, `.*"to":"ana@example.com".*`).SetVal(1)

	svc, sent := newTestEmailService(db, nil)
	err := svc.Send(context.Background(), EmailMessage{Type: EmailBookingConfirmation, To: "ana@example.com", Subject: "Hi", Body: "Body"})

	assert.NoError(t, err)
	assert.Empty(t, *sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailService_SendWithoutQueue(t *testing.T) {
	svc, sent := newTestEmailService(nil, nil)

	err := svc.Send(context.Background(), EmailMessage{To: "ana@example.com", Subject: "Hi", Body: "Body"})
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	mail := (*sent)[0]
	assert.Equal(t, "smtp.test.com:587", mail.addr)
	assert.Equal(t, []string{"ana@example.com"}, mail.to)
	assert.Contains(t, mail.msg, "From: CoworkHub <no-reply@coworkhub.co>\r\n")
	assert.Contains(t, mail.msg, "Subject: Hi\r\n")
	assert.True(t, strings.HasSuffix(mail.msg, "\r\n\r\nBody"))
}

func TestEmailService_SendWithoutQueueFails(t *testing.T) {
	svc, _ := newTestEmailService(nil, errors.New("connection refused"))

	err := svc.Send(context.Background(), EmailMessage{To: "ana@example.com"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestEmailService_ProcessNext(t *testing.T) {
	ctx := context.Background()
	job := EmailJob{ID: "job-1", Type: EmailAdminCredentials, To: "admin@hub.co", Subject: "Welcome", Body: "Body"}

	t.Run("Sent", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectBRPop(2*time.Second, emailQueue).SetVal([]string{emailQueue, encodeJob(t, job)})

		svc, sent := newTestEmailService(db, nil)
		svc.processNext(ctx)

		assert.Len(t, *sent, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Requeued after first failure", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectBRPop(2*time.Second, emailQueue).SetVal([]string{emailQueue, encodeJob(t, job)})
		mock.Regexp().ExpectLPush(emailQueue, `.*"tries":1.*`).SetVal(1)

		svc, _ := newTestEmailService(db, errors.New("451 try later"))
		svc.processNext(ctx)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Dead-lettered after last attempt", func(t *testing.T) {
		exhausted := job
		exhausted.Tries = emailMaxTries - 1

		db, mock := redismock.NewClientMock()
		mock.ExpectBRPop(2*time.Second, emailQueue).SetVal([]string{emailQueue, encodeJob(t, exhausted)})
		mock.Regexp().ExpectLPush(emailFailedQueue, `.*451 try later.*`).SetVal(1)

		svc, _ := newTestEmailService(db, errors.New("451 try later"))
		svc.processNext(ctx)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty queue", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectBRPop(2*time.Second, emailQueue).RedisNil()

		svc, sent := newTestEmailService(db, nil)
		svc.processNext(ctx)

		assert.Empty(t, *sent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEmailService_QueueLength(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectLLen(emailQueue).SetVal(4)

	svc, _ := newTestEmailService(db, nil)
	length, err := svc.QueueLength(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), length)

	withoutQueue, _ := newTestEmailService(nil, nil)
	length, err = withoutQueue.QueueLength(context.Background())
	require.NoError(t, err)
	assert.Zero(t, length)
}

func TestEmailService_Templates(t *testing.T) {
	ctx := context.Background()
	svc, sent := newTestEmailService(nil, nil)
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, svc.SendBookingConfirmation(ctx, "ana@example.com", "Ana", BookingConfirmation{
		BookingID:       41,
		SiteName:        "Hub Central",
		ReservationType: "hours",
		StartsAt:        start,
		EndsAt:          start.Add(8 * time.Hour),
		Price:           45000,
		Currency:        "COP",
	}))
	require.NoError(t, svc.SendAdminCredentials(ctx, "admin@hub.co", "Hub SAS", "a1b2c3d4"))
	require.NoError(t, svc.SendCompanyApplication(ctx, models.CompanyApplicationRequest{
		ContactName: "Luis",
		CompanyName: "Hub SAS",
		TaxID:       "900123456-8",
		Phone:       "3001234567",
		Email:       "luis@hub.co",
		Address:     "Carrera 7 # 71 - 21",
	}))

	require.Len(t, *sent, 3)
	assert.Contains(t, (*sent)[0].msg, "Jun 1, 2024 from 09:00 to 17:00")
	assert.Contains(t, (*sent)[0].msg, "Paid: 45000 COP")
	assert.Contains(t, (*sent)[1].msg, "Password: a1b2c3d4")
	assert.Equal(t, []string{"partners@coworkhub.co"}, (*sent)[2].to)
	assert.Contains(t, (*sent)[2].msg, "NIT: 900123456-8")
}

func TestEmailService_HeadersStayOnOneLine(t *testing.T) {
	svc, sent := newTestEmailService(nil, nil)

	require.NoError(t, svc.SendCompanyApplication(context.Background(), models.CompanyApplicationRequest{
		ContactName: "Luis",
		CompanyName: "Acme\r\nBcc: victim@example.com",
		TaxID:       "900123456-8",
		Phone:       "3001234567",
		Email:       "luis@hub.co",
		Address:     "Carrera 7 # 71 - 21",
	}))
	require.NoError(t, svc.Send(context.Background(), EmailMessage{
		To:      "ana@example.com",
		Subject: "Booking confirmed - Café Central",
		Body:    "Body",
	}))

	require.Len(t, *sent, 2)
	headers, _, found := strings.Cut((*sent)[0].msg, "\r\n\r\n")
	require.True(t, found)
	lines := strings.Split(headers, "\r\n")
	assert.Len(t, lines, 5)
	for _, line := range lines {
		assert.False(t, strings.HasPrefix(line, "Bcc:"), line)
	}
	assert.Contains(t, headers, "Subject: Company application - Acme Bcc: victim@example.com")

	assert.Contains(t, (*sent)[1].msg, "Subject: =?UTF-8?q?Booking_confirmed_-_Caf=C3=A9_Central?=\r\n")
}
