package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/coworkhub/coworking-backend/internal/models"
)

// Mock collaborators
type MockUserStore struct{ mock.Mock }
type MockAdminStore struct{ mock.Mock }
type MockCompanyStore struct{ mock.Mock }
type MockSiteLookup struct{ mock.Mock }
type MockBookingStore struct{ mock.Mock }
type MockEventLog struct{ mock.Mock }
type MockProvider struct{ mock.Mock }
type MockMailer struct{ mock.Mock }
type MockPublisher struct{ mock.Mock }

func (m *MockUserStore) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) FindCredentials(ctx context.Context, email string) (*models.Credentials, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credentials), args.Error(1)
}

func (m *MockAdminStore) GetAdminByID(ctx context.Context, id int64) (*models.CompanyAdmin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CompanyAdmin), args.Error(1)
}

func (m *MockCompanyStore) RegisterCompany(ctx context.Context, address *models.Address, company *models.Company, admin *models.CompanyAdmin) error {
	return m.Called(ctx, address, company, admin).Error(0)
}

func (m *MockCompanyStore) ListCompanies(ctx context.Context) ([]models.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Company), args.Error(1)
}

func (m *MockCompanyStore) ListAddresses(ctx context.Context) ([]models.Address, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Address), args.Error(1)
}

func (m *MockCompanyStore) ListAdmins(ctx context.Context) ([]models.CompanyAdmin, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CompanyAdmin), args.Error(1)
}

func (m *MockSiteLookup) GetByID(ctx context.Context, id int64) (*models.SiteDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SiteDetails), args.Error(1)
}

func (m *MockBookingStore) Create(ctx context.Context, booking *models.Booking) (bool, error) {
	args := m.Called(ctx, booking)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventLog) Log(ctx context.Context, event *models.PaymentEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockProvider) CreatePreference(ctx context.Context, req PreferenceRequest, idempotencyKey string) (*Preference, error) {
	args := m.Called(ctx, req, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Preference), args.Error(1)
}

func (m *MockProvider) Sandbox() bool {
	return m.Called().Bool(0)
}

func (m *MockMailer) SendBookingConfirmation(ctx context.Context, to, name string, b BookingConfirmation) error {
	return m.Called(ctx, to, name, b).Error(0)
}

func (m *MockMailer) SendAdminCredentials(ctx context.Context, to, companyName, password string) error {
	return m.Called(ctx, to, companyName, password).Error(0)
}

func (m *MockMailer) SendCompanyApplication(ctx context.Context, app models.CompanyApplicationRequest) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockPublisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

// recordedEvents collects the types of every logged payment event
func recordedEvents(m *MockEventLog) []models.PaymentEventType {
	var types []models.PaymentEventType
	for _, call := range m.Calls {
		if call.Method == "Log" {
			types = append(types, call.Arguments.Get(1).(*models.PaymentEvent).EventType)
		}
	}
	return types
}
