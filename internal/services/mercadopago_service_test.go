package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	circuit "github.com/rubyist/circuitbreaker"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coworkhub/coworking-backend/internal/config"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestMercadoPago(baseURL string, threshold int64) *MercadoPagoService {
	return NewMercadoPagoService(config.PaymentConfig{
		AccessToken:      "TEST-token",
		APIBaseURL:       baseURL,
		Timeout:          time.Second,
		BreakerThreshold: threshold,
		Currency:         "COP",
		Installments:     3,
	}, quietLogger())
}

func TestMercadoPagoService_CreatePreference(t *testing.T) {
	var received PreferenceRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "Bearer TEST-token", r.Header.Get("Authorization"))
		assert.Equal(t, "key-1", r.Header.Get("X-Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"pref-1","init_point":"https://mp/prod","sandbox_init_point":"https://mp/sandbox","external_reference":"ref"}`))
	}))
	defer server.Close()

	svc := newTestMercadoPago(server.URL, 5)
	preference, err := svc.CreatePreference(context.Background(), PreferenceRequest{
		Items:             []PreferenceItem{{ID: "3", Title: "Booking at Hub", Quantity: 1, CurrencyID: "COP", UnitPrice: 150000}},
		Payer:             PreferencePayer{Email: "ana@example.com"},
		AutoReturn:        "approved",
		ExternalReference: "ref",
	}, "key-1")

	require.NoError(t, err)
	assert.Equal(t, "pref-1", preference.ID)
	assert.Equal(t, "https://mp/sandbox", preference.RedirectURL(true))
	assert.Equal(t, "https://mp/prod", preference.RedirectURL(false))
	assert.Equal(t, int64(150000), received.Items[0].UnitPrice)
	assert.Equal(t, "ref", received.ExternalReference)
}

func TestMercadoPagoService_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid unit_price"}`))
	}))
	defer server.Close()

	svc := newTestMercadoPago(server.URL, 1)
	_, err := svc.CreatePreference(context.Background(), PreferenceRequest{}, "key")

	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.ErrorContains(t, err, "status 400")
	assert.False(t, svc.breaker.Tripped())
}

func TestMercadoPagoService_BreakerOpensAfterServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := newTestMercadoPago(server.URL, 2)
	for i := 0; i < 2; i++ {
		_, err := svc.CreatePreference(context.Background(), PreferenceRequest{}, "key")
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	}

	_, err := svc.CreatePreference(context.Background(), PreferenceRequest{}, "key")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.ErrorContains(t, err, circuit.ErrBreakerOpen.Error())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestMercadoPagoService_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	svc := newTestMercadoPago(server.URL, 5)
	svc.client.Timeout = 50 * time.Millisecond

	_, err := svc.CreatePreference(context.Background(), PreferenceRequest{}, "key")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestMercadoPagoService_MissingToken(t *testing.T) {
	svc := NewMercadoPagoService(config.PaymentConfig{APIBaseURL: "http://127.0.0.1:1"}, quietLogger())
	_, err := svc.CreatePreference(context.Background(), PreferenceRequest{}, "key")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestPreference_RedirectURLFallback(t *testing.T) {
	onlyProd := &Preference{InitPoint: "https://mp/prod"}
	onlySandbox := &Preference{SandboxInitPoint: "https://mp/sandbox"}

	assert.Equal(t, "https://mp/prod", onlyProd.RedirectURL(true))
	assert.Equal(t, "https://mp/sandbox", onlySandbox.RedirectURL(false))
}
