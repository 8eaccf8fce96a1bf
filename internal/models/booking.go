package models

import "time"

// Booking is a paid reservation of a site. Rows are written once per
// approved checkout and never updated.
type Booking struct {
	ID               int64     `json:"id" db:"id"`
	UserID           int64     `json:"userId" db:"user_id"`
	CompanyID        int64     `json:"companyId" db:"company_id"`
	SiteID           int64     `json:"siteId" db:"site_id"`
	StartsAt         time.Time `json:"startsAt" db:"starts_at"`
	EndsAt           time.Time `json:"endsAt" db:"ends_at"`
	Price            int64     `json:"price" db:"price"`
	ReservationType  string    `json:"reservationType" db:"reservation_type"`
	IdempotencyKey   string    `json:"-" db:"idempotency_key"`
	PaymentReference *string   `json:"paymentReference,omitempty" db:"payment_reference"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}

// BookingDetails is a booking joined with its site and address for listings
type BookingDetails struct {
	Booking
	SiteName   string     `json:"siteName" db:"site_name"`
	City       string     `json:"city" db:"city"`
	ImageURLs  StringList `json:"imageUrls" db:"image_urls"`
	RoadType   string     `json:"roadType" db:"road_type"`
	MainRoad   string     `json:"mainRoad" db:"main_road"`
	CrossRoad  string     `json:"crossRoad" db:"cross_road"`
	Complement string     `json:"complement" db:"complement"`
}
