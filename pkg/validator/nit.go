package validator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidNIT indicates the NIT is not 9 digits plus a verification digit
	ErrInvalidNIT = errors.New("NIT must look like 900123456-8")

	// ErrNITCheckDigit indicates the verification digit does not match
	ErrNITCheckDigit = errors.New("NIT verification digit does not match")
)

// nitWeights are the DIAN prime weights, applied from the rightmost digit
var nitWeights = []int{3, 7, 13, 17, 19, 23, 29, 37, 41, 43, 47, 53, 59, 67, 71}

// ValidateNIT checks a Colombian tax id and returns it as "<number>-<dv>".
// Dots and spaces are ignored; without a dash the last digit is the verification digit.
func ValidateNIT(nit string) (string, error) {
	cleaned := strings.NewReplacer(".", "", " ", "").Replace(strings.TrimSpace(nit))

	number, dv, hasDash := strings.Cut(cleaned, "-")
	if !hasDash {
		if len(cleaned) < 2 {
			return "", ErrInvalidNIT
		}
		number, dv = cleaned[:len(cleaned)-1], cleaned[len(cleaned)-1:]
	}

	if len(number) < 6 || len(number) > len(nitWeights) || len(dv) != 1 {
		return "", ErrInvalidNIT
	}
	if !phoneRegex.MatchString(number) || !phoneRegex.MatchString(dv) {
		return "", ErrInvalidNIT
	}

	if expected := NITCheckDigit(number); int(dv[0]-'0') != expected {
		return "", fmt.Errorf("%w: expected %d", ErrNITCheckDigit, expected)
	}

	return number + "-" + dv, nil
}

// NITCheckDigit computes the verification digit of a digits-only NIT
func NITCheckDigit(number string) int {
	sum := 0
	for i := 0; i < len(number); i++ {
		digit := int(number[len(number)-1-i] - '0')
		sum += digit * nitWeights[i]
	}

	remainder := sum % 11
	if remainder >= 2 {
		return 11 - remainder
	}
	return remainder
}
