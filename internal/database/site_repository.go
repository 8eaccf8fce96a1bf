package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/coworkhub/coworking-backend/internal/models"
)

var (
	// ErrSiteNotFound is returned when a site does not exist or belongs to another company
	ErrSiteNotFound = errors.New("site not found")
	// ErrUnknownSortOption is returned for a sort option outside the whitelist
	ErrUnknownSortOption = errors.New("unknown sort option")
)

const siteDetailsColumns = `
	s.id, s.company_id, s.address_id, s.name, s.city, s.country, s.description, s.type,
	s.price_per_day, s.star_rating, s.facilities, s.capacity, s.visitors, s.image_urls, s.last_updated,
	a.road_type, a.main_road, a.cross_road, a.complement`

var siteOrderBy = map[models.SiteSortOption]string{
	models.SortLastUpdated:  "s.last_updated DESC, s.id DESC",
	models.SortStarRating:   "s.star_rating DESC, s.last_updated DESC",
	models.SortPriceLowHigh: "s.price_per_day ASC, s.id ASC",
	models.SortPriceHighLow: "s.price_per_day DESC, s.id ASC",
}

// SiteRepository handles coworking site database operations
type SiteRepository struct {
	db DB
}

// NewSiteRepository creates a new site repository
func NewSiteRepository(db DB) *SiteRepository {
	return &SiteRepository{
		db: db,
	}
}

// Create inserts the site address and the site in one transaction
func (r *SiteRepository) Create(ctx context.Context, site *models.Site, address *models.Address) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := insertAddress(ctx, tx, address); err != nil {
			return err
		}

		site.AddressID = address.ID
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO sites (
				company_id, address_id, name, city, country, description, type,
				price_per_day, star_rating, facilities, capacity, visitors, image_urls
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id, last_updated
		`,
			site.CompanyID, site.AddressID, site.Name, site.City, site.Country, site.Description, site.Type,
			site.PricePerDay, site.StarRating, site.Facilities, site.Capacity, site.Visitors, site.ImageURLs,
		).Scan(&site.ID, &site.LastUpdated)
		if err != nil {
			return fmt.Errorf("failed to create site: %w", err)
		}
		return nil
	})
}

// Update rewrites a company's site. An identical existing address is reused,
// otherwise a new one is inserted.
func (r *SiteRepository) Update(ctx context.Context, site *models.Site, address *models.Address) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if address.RoadType == "" {
			address.RoadType = "Calle"
		}

		err := tx.GetContext(ctx, &address.ID, `
			SELECT id FROM addresses
			WHERE road_type = $1 AND main_road = $2 AND cross_road = $3 AND complement = $4
			ORDER BY id
			LIMIT 1
		`, address.RoadType, address.MainRoad, address.CrossRoad, address.Complement)
		if errors.Is(err, sql.ErrNoRows) {
			err = insertAddress(ctx, tx, address)
		}
		if err != nil {
			return fmt.Errorf("failed to resolve address: %w", err)
		}

		site.AddressID = address.ID
		err = tx.QueryRowxContext(ctx, `
			UPDATE sites SET
				address_id = $1, name = $2, city = $3, country = $4, description = $5, type = $6,
				price_per_day = $7, star_rating = $8, facilities = $9, capacity = $10, visitors = $11,
				image_urls = $12, last_updated = NOW()
			WHERE id = $13 AND company_id = $14
			RETURNING last_updated
		`,
			site.AddressID, site.Name, site.City, site.Country, site.Description, site.Type,
			site.PricePerDay, site.StarRating, site.Facilities, site.Capacity, site.Visitors,
			site.ImageURLs, site.ID, site.CompanyID,
		).Scan(&site.LastUpdated)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSiteNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to update site: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a site with its address
func (r *SiteRepository) GetByID(ctx context.Context, id int64) (*models.SiteDetails, error) {
	var site models.SiteDetails
	query := `SELECT ` + siteDetailsColumns + `
		FROM sites s
		JOIN addresses a ON a.id = s.address_id
		WHERE s.id = $1`

	err := r.db.GetContext(ctx, &site, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return &site, nil
}

// GetForCompany retrieves a site only if it belongs to companyID
func (r *SiteRepository) GetForCompany(ctx context.Context, id, companyID int64) (*models.SiteDetails, error) {
	var site models.SiteDetails
	query := `SELECT ` + siteDetailsColumns + `
		FROM sites s
		JOIN addresses a ON a.id = s.address_id
		WHERE s.id = $1 AND s.company_id = $2`

	err := r.db.GetContext(ctx, &site, query, id, companyID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company site: %w", err)
	}
	return &site, nil
}

// ListByCompany returns every site owned by companyID
func (r *SiteRepository) ListByCompany(ctx context.Context, companyID int64) ([]models.SiteDetails, error) {
	sites := []models.SiteDetails{}
	query := `SELECT ` + siteDetailsColumns + `
		FROM sites s
		JOIN addresses a ON a.id = s.address_id
		WHERE s.company_id = $1
		ORDER BY s.last_updated DESC`

	if err := r.db.SelectContext(ctx, &sites, query, companyID); err != nil {
		return nil, fmt.Errorf("failed to list company sites: %w", err)
	}
	return sites, nil
}

// Search returns one page of sites matching the filter and the total match count
func (r *SiteRepository) Search(ctx context.Context, filter models.SiteSearchFilter) (*models.SiteSearchResponse, error) {
	orderBy, ok := siteOrderBy[filter.SortOption]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSortOption, filter.SortOption)
	}

	var (
		conditions []string
		args       []interface{}
	)
	if destination := strings.TrimSpace(filter.Destination); destination != "" {
		args = append(args, "%"+destination+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(s.city ILIKE $%d OR s.name ILIKE $%d OR s.country ILIKE $%d)", n, n, n))
	}
	if filter.Capacity > 0 {
		args = append(args, filter.Capacity)
		conditions = append(conditions, fmt.Sprintf("s.capacity >= $%d", len(args)))
	}
	if filter.MaxPrice > 0 {
		args = append(args, filter.MaxPrice)
		conditions = append(conditions, fmt.Sprintf("s.price_per_day <= $%d", len(args)))
	}

	from := `
		FROM sites s
		JOIN addresses a ON a.id = s.address_id`
	if len(conditions) > 0 {
		from += "\n\t\tWHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*)`+from, args...); err != nil {
		return nil, fmt.Errorf("failed to count sites: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pages := (total + models.SiteSearchPageSize - 1) / models.SiteSearchPageSize
	if pages > 0 && page > pages {
		page = pages
	}

	sites := []models.SiteDetails{}
	if total > 0 {
		query := fmt.Sprintf(`SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d`,
			siteDetailsColumns, from, orderBy, models.SiteSearchPageSize, (page-1)*models.SiteSearchPageSize)
		if err := r.db.SelectContext(ctx, &sites, query, args...); err != nil {
			return nil, fmt.Errorf("failed to search sites: %w", err)
		}
	}

	return &models.SiteSearchResponse{
		Data: sites,
		Pagination: models.Pagination{
			Total: total,
			Page:  page,
			Pages: pages,
		},
	}, nil
}
