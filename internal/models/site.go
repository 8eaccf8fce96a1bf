package models

import "time"

// Site is a bookable coworking location owned by a company
type Site struct {
	ID          int64      `json:"id" db:"id"`
	CompanyID   int64      `json:"companyId" db:"company_id"`
	AddressID   int64      `json:"addressId" db:"address_id"`
	Name        string     `json:"name" db:"name"`
	City        string     `json:"city" db:"city"`
	Country     string     `json:"country" db:"country"`
	Description string     `json:"description" db:"description"`
	Type        string     `json:"type" db:"type"`
	PricePerDay int64      `json:"pricePerDay" db:"price_per_day"`
	StarRating  int        `json:"starRating" db:"star_rating"`
	Facilities  StringList `json:"facilities" db:"facilities"`
	Capacity    int        `json:"capacity" db:"capacity"`
	Visitors    int        `json:"visitors" db:"visitors"`
	ImageURLs   StringList `json:"imageUrls" db:"image_urls"`
	LastUpdated time.Time  `json:"lastUpdated" db:"last_updated"`
}

// SiteDetails is a site joined with its address
type SiteDetails struct {
	Site
	RoadType   string `json:"roadType" db:"road_type"`
	MainRoad   string `json:"mainRoad" db:"main_road"`
	CrossRoad  string `json:"crossRoad" db:"cross_road"`
	Complement string `json:"complement" db:"complement"`
}

// SiteRequest is the body for creating or updating a site.
// Images are referenced by URL; uploading them is handled elsewhere.
type SiteRequest struct {
	Name        string   `json:"name" binding:"required"`
	City        string   `json:"city" binding:"required"`
	Country     string   `json:"country" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Type        string   `json:"type" binding:"required"`
	PricePerDay int64    `json:"pricePerDay" binding:"required,gt=0"`
	StarRating  int      `json:"starRating" binding:"required,min=1,max=5"`
	Facilities  []string `json:"facilities" binding:"required"`
	Capacity    int      `json:"capacity" binding:"gte=0"`
	Visitors    int      `json:"visitors" binding:"gte=0"`
	ImageURLs   []string `json:"imageUrls" binding:"max=6,dive,url"`
	Address     Address  `json:"address"`
}

// ToSite copies the request onto a site owned by companyID
func (r SiteRequest) ToSite(companyID int64) Site {
	return Site{
		CompanyID:   companyID,
		Name:        r.Name,
		City:        r.City,
		Country:     r.Country,
		Description: r.Description,
		Type:        r.Type,
		PricePerDay: r.PricePerDay,
		StarRating:  r.StarRating,
		Facilities:  StringList(r.Facilities),
		Capacity:    r.Capacity,
		Visitors:    r.Visitors,
		ImageURLs:   StringList(r.ImageURLs),
	}
}

// SiteSortOption is a whitelisted ordering for search results
type SiteSortOption string

const (
	SortLastUpdated  SiteSortOption = ""
	SortStarRating   SiteSortOption = "starRating"
	SortPriceLowHigh SiteSortOption = "pricePerDayAsc"
	SortPriceHighLow SiteSortOption = "pricePerDayDesc"
)

// SiteSearchPageSize is the number of sites per search page
const SiteSearchPageSize = 5

// SiteSearchFilter holds the query string of GET /api/coworkings/search
type SiteSearchFilter struct {
	Destination string         `form:"destination"`
	Capacity    int            `form:"capacity" binding:"gte=0"`
	MaxPrice    int64          `form:"maxPrice" binding:"gte=0"`
	SortOption  SiteSortOption `form:"sortOption"`
	Page        int            `form:"page" binding:"gte=0"`
}

// Pagination describes a page of search results
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// SiteSearchResponse is a page of matching sites
type SiteSearchResponse struct {
	Data       []SiteDetails `json:"data"`
	Pagination Pagination    `json:"pagination"`
}
