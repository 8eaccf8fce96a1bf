package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-session-secret-key-for-testing-purposes"

func TestNewService(t *testing.T) {
	service := NewService(testSecret, 24*time.Hour)

	assert.NotNil(t, service)
	assert.Equal(t, testSecret, service.secret)
	assert.Equal(t, 24*time.Hour, service.Expiry())
}

func TestGenerateToken(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	t.Run("User", func(t *testing.T) {
		token, err := service.GenerateToken(Identity{UserID: 42, Role: RoleUser, Email: "ana@example.com"})
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := service.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), claims.UserID)
		assert.Equal(t, RoleUser, claims.Role)
		assert.Equal(t, "ana@example.com", claims.Email)
		assert.Nil(t, claims.CompanyID)
		assert.Equal(t, "42", claims.Subject)
	})

	t.Run("Admin carries company", func(t *testing.T) {
		companyID := int64(7)
		token, err := service.GenerateToken(Identity{UserID: 3, Role: RoleAdmin, CompanyID: &companyID})
		require.NoError(t, err)

		claims, err := service.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, claims.Role)
		require.NotNil(t, claims.CompanyID)
		assert.Equal(t, int64(7), *claims.CompanyID)
	})

	t.Run("Unknown role", func(t *testing.T) {
		_, err := service.GenerateToken(Identity{UserID: 1, Role: "superuser"})
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestValidateToken(t *testing.T) {
	service := NewService(testSecret, time.Hour)

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewService("another-secret", time.Hour)
		token, err := other.GenerateToken(Identity{UserID: 1, Role: RoleUser})
		require.NoError(t, err)

		claims, err := service.ValidateToken(token)
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("Expired", func(t *testing.T) {
		expired := NewService(testSecret, -time.Minute)
		token, err := expired.GenerateToken(Identity{UserID: 1, Role: RoleUser})
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.Error(t, err)
		assert.True(t, service.IsTokenExpired(token))
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := service.ValidateToken("not.a.token")
		assert.Error(t, err)
		assert.False(t, service.IsTokenExpired("not.a.token"))
	})

	t.Run("Unexpected signing method", func(t *testing.T) {
		claims := Claims{
			UserID: 1,
			Role:   RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				Issuer:    issuer,
			},
		}
		token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
		tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		assert.Error(t, err)
	})

	t.Run("Foreign role", func(t *testing.T) {
		claims := Claims{
			UserID: 1,
			Role:   "root",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				Issuer:    issuer,
			},
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}
