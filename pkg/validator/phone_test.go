package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhoneValidator(t *testing.T) {
	validator := NewPhoneValidator()
	assert.NotNil(t, validator)
}

func TestValidate_ValidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	validNumbers := []struct {
		input    string
		expected string
		name     string
	}{
		{"3001234567", "3001234567", "Standard mobile"},
		{"300 123 4567", "3001234567", "With spaces"},
		{"300-123-4567", "3001234567", "With dashes"},
		{"300.123.4567", "3001234567", "With dots"},
		{"(300) 123 4567", "3001234567", "With parentheses"},
		{"+57 300 123 4567", "3001234567", "With country code"},
		{"573151234567", "3151234567", "Country code without plus"},
		{"6012345678", "6012345678", "Bogota landline"},
		{"604 444 5555", "6044445555", "Medellin landline"},
	}

	for _, tc := range validNumbers {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
		})
	}
}

func TestValidate_InvalidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	invalidNumbers := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyPhone, "Empty"},
		{"   ", ErrEmptyPhone, "Blank"},
		{"30012345", ErrInvalidLength, "Too short"},
		{"300123456789", ErrInvalidLength, "Too long"},
		{"300123456a", ErrInvalidFormat, "Letters"},
		{"2001234567", ErrInvalidPrefix, "Unknown prefix"},
		{"6091234567", ErrInvalidPrefix, "Unassigned landline area"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestFormat(t *testing.T) {
	validator := NewPhoneValidator()

	formatted, err := validator.Format("+57 3001234567")
	require.NoError(t, err)
	assert.Equal(t, "300 123 4567", formatted)

	_, err = validator.Format("123")
	assert.Error(t, err)
}

func TestIsMobile(t *testing.T) {
	validator := NewPhoneValidator()

	assert.True(t, validator.IsMobile("3001234567"))
	assert.False(t, validator.IsMobile("6012345678"))
	assert.False(t, validator.IsMobile("nope"))
	assert.True(t, validator.IsValid("6012345678"))
}
