package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coworkhub/coworking-backend/internal/models"
)

func TestCompanyRepository_RegisterCompany(t *testing.T) {
	ctx := context.Background()
	newInput := func() (*models.Address, *models.Company, *models.CompanyAdmin) {
		return &models.Address{RoadType: "Carrera", MainRoad: "7", CrossRoad: "71", Complement: "21"},
			&models.Company{Name: "Hub SAS", TaxID: "900123456-8", Phone: "3001234567", Email: "admin@hub.co"},
			&models.CompanyAdmin{Email: "admin@hub.co", PasswordHash: "hash"}
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewCompanyRepository(db)
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO addresses`).
			WithArgs("Carrera", "7", "71", "21").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
		mock.ExpectQuery(`INSERT INTO companies`).
			WithArgs("Hub SAS", "900123456-8", "3001234567", "admin@hub.co", int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "last_updated"}).AddRow(int64(8), now))
		mock.ExpectQuery(`INSERT INTO company_admins`).
			WithArgs(int64(8), "admin@hub.co", "hash").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(4), now))
		mock.ExpectCommit()

		address, company, admin := newInput()
		require.NoError(t, repo.RegisterCompany(ctx, address, company, admin))
		assert.Equal(t, int64(3), company.AddressID)
		assert.Equal(t, int64(8), admin.CompanyID)
		assert.Equal(t, int64(4), admin.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back when admin insert fails", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewCompanyRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO addresses`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
		mock.ExpectQuery(`INSERT INTO companies`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "last_updated"}).AddRow(int64(8), time.Now()))
		mock.ExpectQuery(`INSERT INTO company_admins`).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		address, company, admin := newInput()
		err := repo.RegisterCompany(ctx, address, company, admin)
		assert.ErrorIs(t, err, ErrEmailTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back when address insert fails", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewCompanyRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO addresses`).
			WillReturnError(fmt.Errorf("disk full"))
		mock.ExpectRollback()

		address, company, admin := newInput()
		err := repo.RegisterCompany(ctx, address, company, admin)
		assert.ErrorContains(t, err, "failed to create address")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCompanyRepository_Listings(t *testing.T) {
	ctx := context.Background()

	t.Run("Companies", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewCompanyRepository(db)

		mock.ExpectQuery(`SELECT (.+) FROM companies ORDER BY last_updated DESC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "tax_id", "phone", "email", "address_id", "last_updated"}).
				AddRow(int64(1), "Hub SAS", "900123456-8", "3001234567", "admin@hub.co", int64(3), time.Now()))

		companies, err := repo.ListCompanies(ctx)
		require.NoError(t, err)
		require.Len(t, companies, 1)
		assert.Equal(t, "Hub SAS", companies[0].Name)
	})

	t.Run("Admins without hashes", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewCompanyRepository(db)

		mock.ExpectQuery(`SELECT id, company_id, email, created_at FROM company_admins`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "email", "created_at"}).
				AddRow(int64(4), int64(8), "admin@hub.co", time.Now()))

		admins, err := repo.ListAdmins(ctx)
		require.NoError(t, err)
		require.Len(t, admins, 1)
		assert.Empty(t, admins[0].PasswordHash)
	})

	t.Run("Addresses empty", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewCompanyRepository(db)

		mock.ExpectQuery(`FROM addresses`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "road_type", "main_road", "cross_road", "complement"}))

		addresses, err := repo.ListAddresses(ctx)
		require.NoError(t, err)
		assert.NotNil(t, addresses)
		assert.Empty(t, addresses)
	})

	t.Run("Admin not found", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewCompanyRepository(db)

		mock.ExpectQuery(`FROM company_admins WHERE id = \$1`).
			WithArgs(int64(77)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "email", "created_at"}))

		admin, err := repo.GetAdminByID(ctx, 77)
		assert.NoError(t, err)
		assert.Nil(t, admin)
	})
}
