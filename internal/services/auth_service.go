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
	"github.com/coworkhub/coworking-backend/pkg/jwt"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserStore is the account storage the auth service needs
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	FindCredentials(ctx context.Context, email string) (*models.Credentials, error)
}

// AdminStore finds company admin accounts
type AdminStore interface {
	GetAdminByID(ctx context.Context, id int64) (*models.CompanyAdmin, error)
}

// AuthService handles login, registration and profiles
type AuthService struct {
	users      UserStore
	admins     AdminStore
	jwtService *jwt.Service
	bcryptCost int
	logger     *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, admins AdminStore, jwtService *jwt.Service, bcryptCost int, logger *logrus.Logger) *AuthService {
	return &AuthService{
		users:      users,
		admins:     admins,
		jwtService: jwtService,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Login checks credentials against both account tables and issues a session token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.LoginResponse, error) {
	creds, err := s.users.FindCredentials(ctx, normalizeEmail(email))
	if err != nil {
		return "", nil, err
	}
	if creds == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	role := jwt.Role(creds.Role)
	token, err := s.jwtService.GenerateToken(jwt.Identity{
		UserID:    creds.ID,
		Role:      role,
		Email:     creds.Email,
		CompanyID: creds.CompanyID,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": creds.ID,
		"role":    role,
	}).Info("User logged in")

	return token, &models.LoginResponse{UserID: creds.ID, Role: string(role)}, nil
}

// Register creates a customer account and logs it in
func (s *AuthService) Register(ctx context.Context, req models.RegisterUserRequest) (string, *models.LoginResponse, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if exists {
		return "", nil, database.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.jwtService.GenerateToken(jwt.Identity{
		UserID: user.ID,
		Role:   jwt.RoleUser,
		Email:  user.Email,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return token, &models.LoginResponse{UserID: user.ID, Role: string(jwt.RoleUser)}, nil
}

// Profile returns the caller's account without its password hash.
// A nil profile means the account no longer exists.
func (s *AuthService) Profile(ctx context.Context, id int64, role jwt.Role) (*models.Profile, error) {
	if role == jwt.RoleAdmin {
		admin, err := s.admins.GetAdminByID(ctx, id)
		if err != nil || admin == nil {
			return nil, err
		}
		companyID := admin.CompanyID
		return &models.Profile{
			ID:        admin.ID,
			Role:      string(jwt.RoleAdmin),
			Email:     admin.Email,
			CompanyID: &companyID,
		}, nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	return &models.Profile{
		ID:        user.ID,
		Role:      string(jwt.RoleUser),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
