package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the account kind carried by a session token
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const issuer = "coworkhub-backend"

// ErrInvalidRole is returned when a token carries a role this service never issues
var ErrInvalidRole = errors.New("invalid role")

// Claims represents the session token claims
type Claims struct {
	UserID    int64  `json:"userId"`
	Role      Role   `json:"role"`
	Email     string `json:"email,omitempty"`
	CompanyID *int64 `json:"idEmpresa,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller a token is issued for
type Identity struct {
	UserID    int64
	Role      Role
	Email     string
	CompanyID *int64
}

// Service issues and verifies session tokens
type Service struct {
	secret string
	expiry time.Duration
}

// NewService creates a new session token service
func NewService(secret string, expiry time.Duration) *Service {
	return &Service{
		secret: secret,
		expiry: expiry,
	}
}

// Expiry returns the lifetime of issued tokens
func (s *Service) Expiry() time.Duration {
	return s.expiry
}

// GenerateToken signs a session token for the given identity
func (s *Service) GenerateToken(identity Identity) (string, error) {
	if identity.Role != RoleUser && identity.Role != RoleAdmin {
		return "", fmt.Errorf("failed to sign token: %w: %q", ErrInvalidRole, identity.Role)
	}

	now := time.Now()
	claims := Claims{
		UserID:    identity.UserID,
		Role:      identity.Role,
		Email:     identity.Email,
		CompanyID: identity.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   strconv.FormatInt(identity.UserID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies signature and expiry and returns the claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Role != RoleUser && claims.Role != RoleAdmin {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, claims.Role)
	}

	return claims, nil
}

// IsTokenExpired reports whether a token failed only because it expired
func (s *Service) IsTokenExpired(tokenString string) bool {
	_, err := s.ValidateToken(tokenString)
	return errors.Is(err, jwt.ErrTokenExpired)
}
