package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSecret generates a cryptographically secure random hex secret
func GenerateSecret(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateDeploymentSecrets generates the session token and intent signing secrets
func GenerateDeploymentSecrets() (jwtSecret, intentSecret string, err error) {
	jwtSecret, err = GenerateSecret(32) // 256-bit
	if err != nil {
		return "", "", fmt.Errorf("failed to generate jwt secret: %w", err)
	}

	intentSecret, err = GenerateSecret(32) // 256-bit
	if err != nil {
		return "", "", fmt.Errorf("failed to generate intent signing secret: %w", err)
	}

	return jwtSecret, intentSecret, nil
}

// GeneratePassword returns a random initial password for company admins
func GeneratePassword() (string, error) {
	return GenerateSecret(8)
}
