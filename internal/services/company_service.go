package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/coworkhub/coworking-backend/internal/database"
	"github.com/coworkhub/coworking-backend/internal/models"
	"github.com/coworkhub/coworking-backend/internal/utils"
	"github.com/coworkhub/coworking-backend/pkg/validator"
)

// ValidationError wraps a client input problem so handlers can answer 400
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CompanyStore is the company storage the company service needs
type CompanyStore interface {
	RegisterCompany(ctx context.Context, address *models.Address, company *models.Company, admin *models.CompanyAdmin) error
	ListCompanies(ctx context.Context) ([]models.Company, error)
	ListAddresses(ctx context.Context) ([]models.Address, error)
	ListAdmins(ctx context.Context) ([]models.CompanyAdmin, error)
}

// EmailChecker reports whether an email is used by any account
type EmailChecker interface {
	EmailExists(ctx context.Context, email string) (bool, error)
}

// CompanyMailer sends company onboarding emails
type CompanyMailer interface {
	SendAdminCredentials(ctx context.Context, to, companyName, password string) error
	SendCompanyApplication(ctx context.Context, app models.CompanyApplicationRequest) error
}

// CompanyService registers companies and handles company applications
type CompanyService struct {
	companies  CompanyStore
	emails     EmailChecker
	mailer     CompanyMailer
	phones     *validator.PhoneValidator
	bcryptCost int
	logger     *logrus.Logger
}

// NewCompanyService creates a new company service
func NewCompanyService(companies CompanyStore, emails EmailChecker, mailer CompanyMailer, bcryptCost int, logger *logrus.Logger) *CompanyService {
	return &CompanyService{
		companies:  companies,
		emails:     emails,
		mailer:     mailer,
		phones:     validator.NewPhoneValidator(),
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates a company with its address and admin account, then emails
// the admin a generated password. A failed email does not undo the registration.
func (s *CompanyService) Register(ctx context.Context, req models.RegisterCompanyRequest) (*models.RegisterCompanyResponse, error) {
	phone, taxID, address, err := s.validateCompany(req.Phone, req.TaxID, req.Address)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	exists, err := s.emails.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, database.ErrEmailTaken
	}

	password, err := utils.GeneratePassword()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	company := &models.Company{
		Name:  strings.TrimSpace(req.Name),
		TaxID: taxID,
		Phone: phone,
		Email: email,
	}
	admin := &models.CompanyAdmin{
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.companies.RegisterCompany(ctx, &address, company, admin); err != nil {
		return nil, err
	}

	resp := &models.RegisterCompanyResponse{
		CompanyID: company.ID,
		AdminID:   admin.ID,
	}
	if err := s.mailer.SendAdminCredentials(ctx, email, company.Name, password); err != nil {
		s.logger.WithError(err).WithField("company_id", company.ID).Error("Failed to send admin credentials")
	} else {
		resp.CredentialsEmailed = true
	}

	s.logger.WithFields(logrus.Fields{
		"company_id": company.ID,
		"admin_id":   admin.ID,
	}).Info("Company registered")

	return resp, nil
}

// Apply validates a company application and forwards it to the system mailbox
func (s *CompanyService) Apply(ctx context.Context, req models.CompanyApplicationRequest) error {
	phone, taxID, address, err := s.validateCompany(req.Phone, req.TaxID, req.Address)
	if err != nil {
		return err
	}

	req.Phone = phone
	req.TaxID = taxID
	req.Address = address.String()
	req.Email = normalizeEmail(req.Email)

	if err := s.mailer.SendCompanyApplication(ctx, req); err != nil {
		return fmt.Errorf("failed to forward application: %w", err)
	}
	return nil
}

// ListCompanies returns every company
func (s *CompanyService) ListCompanies(ctx context.Context) ([]models.Company, error) {
	return s.companies.ListCompanies(ctx)
}

// ListAddresses returns every stored address
func (s *CompanyService) ListAddresses(ctx context.Context) ([]models.Address, error) {
	return s.companies.ListAddresses(ctx)
}

// ListAdmins returns every company admin
func (s *CompanyService) ListAdmins(ctx context.Context) ([]models.CompanyAdmin, error) {
	return s.companies.ListAdmins(ctx)
}

func (s *CompanyService) validateCompany(phone, taxID, rawAddress string) (string, string, models.Address, error) {
	sanitizedPhone, err := s.phones.Validate(phone)
	if err != nil {
		return "", "", models.Address{}, &ValidationError{Field: "phone", Err: err}
	}

	nit, err := validator.ValidateNIT(taxID)
	if err != nil {
		return "", "", models.Address{}, &ValidationError{Field: "nit", Err: err}
	}

	address, err := models.ParseAddress(rawAddress)
	if err != nil {
		return "", "", models.Address{}, &ValidationError{Field: "address", Err: err}
	}

	return sanitizedPhone, nit, address, nil
}

// IsValidationError reports whether err is a client input problem
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
