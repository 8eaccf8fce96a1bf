package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/coworkhub/coworking-backend/internal/models"
)

// ErrCompanyExists is returned when a company with the same NIT is already registered
var ErrCompanyExists = errors.New("company already registered")

// CompanyRepository handles companies, their admins and addresses
type CompanyRepository struct {
	db DB
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db DB) *CompanyRepository {
	return &CompanyRepository{
		db: db,
	}
}

// RegisterCompany creates the address, the company and its admin atomically
func (r *CompanyRepository) RegisterCompany(ctx context.Context, address *models.Address, company *models.Company, admin *models.CompanyAdmin) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := insertAddress(ctx, tx, address); err != nil {
			return err
		}

		company.AddressID = address.ID
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO companies (name, tax_id, phone, email, address_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, last_updated
		`, company.Name, company.TaxID, company.Phone, company.Email, company.AddressID).
			Scan(&company.ID, &company.LastUpdated)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: nit %s", ErrCompanyExists, company.TaxID)
			}
			return fmt.Errorf("failed to create company: %w", err)
		}

		admin.CompanyID = company.ID
		err = tx.QueryRowxContext(ctx, `
			INSERT INTO company_admins (company_id, email, password_hash)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, admin.CompanyID, admin.Email, admin.PasswordHash).
			Scan(&admin.ID, &admin.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrEmailTaken
			}
			return fmt.Errorf("failed to create company admin: %w", err)
		}

		return nil
	})
}

// ListCompanies returns every company, most recently updated first
func (r *CompanyRepository) ListCompanies(ctx context.Context) ([]models.Company, error) {
	companies := []models.Company{}
	query := `
		SELECT id, name, tax_id, phone, email, address_id, last_updated
		FROM companies
		ORDER BY last_updated DESC
	`

	if err := r.db.SelectContext(ctx, &companies, query); err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// ListAddresses returns every stored address
func (r *CompanyRepository) ListAddresses(ctx context.Context) ([]models.Address, error) {
	addresses := []models.Address{}
	query := `SELECT id, road_type, main_road, cross_road, complement FROM addresses ORDER BY id`

	if err := r.db.SelectContext(ctx, &addresses, query); err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// ListAdmins returns every company admin; password hashes are not selected
func (r *CompanyRepository) ListAdmins(ctx context.Context) ([]models.CompanyAdmin, error) {
	admins := []models.CompanyAdmin{}
	query := `SELECT id, company_id, email, created_at FROM company_admins ORDER BY id`

	if err := r.db.SelectContext(ctx, &admins, query); err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}

// GetAdminByID retrieves a company admin by id
func (r *CompanyRepository) GetAdminByID(ctx context.Context, id int64) (*models.CompanyAdmin, error) {
	var admin models.CompanyAdmin
	query := `SELECT id, company_id, email, created_at FROM company_admins WHERE id = $1`

	err := r.db.GetContext(ctx, &admin, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &admin, nil
}

func insertAddress(ctx context.Context, tx *sqlx.Tx, address *models.Address) error {
	if address.RoadType == "" {
		address.RoadType = "Calle"
	}
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO addresses (road_type, main_road, cross_road, complement)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, address.RoadType, address.MainRoad, address.CrossRoad, address.Complement).Scan(&address.ID)
	if err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}
