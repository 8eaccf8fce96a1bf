// Package reservation carries booking intent across the payment provider
// round trip and turns it into concrete booking instants.
package reservation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind selects how a reservation is measured
type Kind string

const (
	KindDays  Kind = "days"
	KindHours Kind = "hours"
)

// ErrIncompleteIntent is returned when the fields for the selected kind are absent
var ErrIncompleteIntent = errors.New("incomplete reservation intent")

// Intent is the booking a payer committed to when the order was created.
// It only ever exists encoded inside the order's external reference.
// JSON keys are short because providers cap the reference length.
type Intent struct {
	Nonce string `json:"n"`
	Kind  Kind   `json:"k"`

	// days
	StartDate string `json:"sd,omitempty"`
	EndDate   string `json:"ed,omitempty"`
	TotalDays int    `json:"td,omitempty"`

	// hours
	ReservationDate string  `json:"rd,omitempty"`
	StartTime       string  `json:"st,omitempty"`
	EndTime         string  `json:"et,omitempty"`
	TotalHours      float64 `json:"th,omitempty"`

	Price       int64  `json:"p"`
	CompanyID   int64  `json:"c"`
	SiteID      int64  `json:"s"`
	RequesterID int64  `json:"u"`
	SiteName    string `json:"sn,omitempty"`
}

// Validate checks that exactly the field group selected by Kind is populated
func (i Intent) Validate() error {
	var missing []string

	switch i.Kind {
	case KindDays:
		if i.StartDate == "" {
			missing = append(missing, "startDate")
		}
		if i.EndDate == "" {
			missing = append(missing, "endDate")
		}
		if i.TotalDays <= 0 {
			missing = append(missing, "totalDays")
		}
		if i.ReservationDate != "" || i.StartTime != "" || i.EndTime != "" || i.TotalHours != 0 {
			return fmt.Errorf("%w: hour fields set on a days reservation", ErrIncompleteIntent)
		}
	case KindHours:
		if i.ReservationDate == "" {
			missing = append(missing, "reservationDate")
		}
		if i.StartTime == "" {
			missing = append(missing, "startTime")
		}
		if i.EndTime == "" {
			missing = append(missing, "endTime")
		}
		if i.TotalHours <= 0 {
			missing = append(missing, "totalHours")
		}
		if i.StartDate != "" || i.EndDate != "" || i.TotalDays != 0 {
			return fmt.Errorf("%w: day fields set on an hours reservation", ErrIncompleteIntent)
		}
	default:
		return fmt.Errorf("%w: unknown reservation type %q", ErrIncompleteIntent, i.Kind)
	}

	if i.Nonce == "" {
		missing = append(missing, "nonce")
	}
	if i.Price <= 0 {
		missing = append(missing, "price")
	}
	if i.CompanyID <= 0 {
		missing = append(missing, "companyId")
	}
	if i.SiteID <= 0 {
		missing = append(missing, "siteId")
	}
	if i.RequesterID <= 0 {
		missing = append(missing, "requesterId")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteIntent, strings.Join(missing, ", "))
	}
	return nil
}

// IdempotencyKey identifies the booking this intent produces. Two callbacks
// carrying the same intent map to the same key.
func (i Intent) IdempotencyKey() string {
	payload, _ := json.Marshal(i)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
