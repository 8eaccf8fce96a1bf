package models

import "encoding/json"

// CreateOrderRequest is the body of POST /api/payment/create-order.
// Field names follow the booking widget of the web client.
type CreateOrderRequest struct {
	ReservationType string `json:"reservationType" validate:"required,oneof=days hours"`

	StartDate string      `json:"startDate" validate:"required_if=ReservationType days"`
	EndDate   string      `json:"endDate" validate:"required_if=ReservationType days"`
	TotalDays json.Number `json:"totalDays" validate:"required_if=ReservationType days"`

	ReservationDate string      `json:"reservationDate" validate:"required_if=ReservationType hours"`
	StartTime       string      `json:"startTime" validate:"required_if=ReservationType hours"`
	EndTime         string      `json:"endTime" validate:"required_if=ReservationType hours"`
	TotalHours      json.Number `json:"totalHours" validate:"required_if=ReservationType hours"`

	TotalPrice json.Number `json:"totalPrice" validate:"required"`
	SedeName   string      `json:"sedeName" validate:"required,excludesall=\r\n"`
	ImgURL     string      `json:"imgUrl" validate:"required"`
	SiteID     int64       `json:"idsede" validate:"required,gt=0"`
}

// CreateOrderResponse carries the provider checkout URL
type CreateOrderResponse struct {
	URL string `json:"url"`
}

// PaymentCallback is the query string the provider appends to back URLs
type PaymentCallback struct {
	ExternalReference string `form:"external_reference"`
	PaymentID         string `form:"payment_id"`
	Status            string `form:"status"`
	CollectionStatus  string `form:"collection_status"`
	PreferenceID      string `form:"preference_id"`
	MerchantOrderID   string `form:"merchant_order_id"`
}

// ApprovalStatus returns the payment status reported by the provider, if any
func (p PaymentCallback) ApprovalStatus() string {
	if p.Status != "" {
		return p.Status
	}
	return p.CollectionStatus
}
