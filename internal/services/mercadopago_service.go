package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	circuit "github.com/rubyist/circuitbreaker"
	"github.com/sirupsen/logrus"

	"github.com/coworkhub/coworking-backend/internal/config"
)

// ErrProviderUnavailable is returned when the payment provider cannot create an order
var ErrProviderUnavailable = errors.New("payment provider unavailable")

// PreferenceItem is a checkout line item
type PreferenceItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PictureURL  string `json:"picture_url,omitempty"`
	CategoryID  string `json:"category_id"`
	Quantity    int    `json:"quantity"`
	CurrencyID  string `json:"currency_id"`
	UnitPrice   int64  `json:"unit_price"`
}

// PreferencePayer identifies the paying user to the provider
type PreferencePayer struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Surname string `json:"surname,omitempty"`
}

// BackURLs are the browser redirects the provider uses after checkout
type BackURLs struct {
	Success string `json:"success"`
	Pending string `json:"pending"`
	Failure string `json:"failure"`
}

// PaymentMethods restricts how the payer may pay
type PaymentMethods struct {
	Installments int `json:"installments"`
}

// PreferenceRequest is the body of POST /checkout/preferences
type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	Payer             PreferencePayer  `json:"payer"`
	BackURLs          BackURLs         `json:"back_urls"`
	AutoReturn        string           `json:"auto_return"`
	PaymentMethods    PaymentMethods   `json:"payment_methods"`
	ExternalReference string           `json:"external_reference"`
}

// Preference is the checkout created by the provider
type Preference struct {
	ID                string `json:"id"`
	InitPoint         string `json:"init_point"`
	SandboxInitPoint  string `json:"sandbox_init_point"`
	ExternalReference string `json:"external_reference"`
}

// RedirectURL returns the checkout page for the environment, falling back
// to the other one when the provider left it empty
func (p *Preference) RedirectURL(sandbox bool) string {
	if sandbox {
		if p.SandboxInitPoint != "" {
			return p.SandboxInitPoint
		}
		return p.InitPoint
	}
	if p.InitPoint != "" {
		return p.InitPoint
	}
	return p.SandboxInitPoint
}

// MercadoPagoService creates checkout preferences with MercadoPago
type MercadoPagoService struct {
	config  config.PaymentConfig
	logger  *logrus.Logger
	client  *http.Client
	breaker *circuit.Breaker
}

// NewMercadoPagoService creates a new MercadoPago client. Consecutive
// transport failures or 5xx answers trip the breaker.
func NewMercadoPagoService(cfg config.PaymentConfig, logger *logrus.Logger) *MercadoPagoService {
	threshold := cfg.BreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}

	return &MercadoPagoService{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: circuit.NewConsecutiveBreaker(threshold),
	}
}

// Sandbox reports whether sandbox checkout pages should be used
func (s *MercadoPagoService) Sandbox() bool {
	return s.config.Sandbox
}

// CreatePreference registers a checkout with the provider
func (s *MercadoPagoService) CreatePreference(ctx context.Context, req PreferenceRequest, idempotencyKey string) (*Preference, error) {
	if s.config.AccessToken == "" {
		return nil, fmt.Errorf("%w: access token not configured", ErrProviderUnavailable)
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preference: %w", err)
	}

	endpointURL := strings.TrimSuffix(s.config.APIBaseURL, "/") + "/checkout/preferences"

	s.logger.WithFields(logrus.Fields{
		"endpoint":        endpointURL,
		"items":           len(req.Items),
		"idempotency_key": idempotencyKey,
	}).Info("Creating MercadoPago preference")

	var (
		status int
		body   []byte
	)
	err = s.breaker.Call(func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(jsonBody))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+s.config.AccessToken)
		httpReq.Header.Set("X-Idempotency-Key", idempotencyKey)

		resp, err := s.client.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if status >= http.StatusInternalServerError {
			return fmt.Errorf("provider returned status %d", status)
		}
		return nil
	}, 0)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"error":   err.Error(),
			"tripped": s.breaker.Tripped(),
		}).Error("MercadoPago call failed")
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if status < 200 || status >= 300 {
		s.logger.WithFields(logrus.Fields{
			"status_code": status,
			"response":    string(body),
		}).Error("MercadoPago rejected preference")
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderUnavailable, status, string(body))
	}

	var preference Preference
	if err := json.Unmarshal(body, &preference); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", ErrProviderUnavailable, err)
	}

	if preference.InitPoint == "" && preference.SandboxInitPoint == "" {
		return nil, fmt.Errorf("%w: no checkout URL returned", ErrProviderUnavailable)
	}

	s.logger.WithFields(logrus.Fields{
		"preference_id": preference.ID,
	}).Info("MercadoPago preference created")

	return &preference, nil
}
