package security

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateAccessToken creates a new opaque token for link-based kid access
func GenerateAccessToken() string {
	return uuid.New().String()
}

// GenerateJoinCode creates a short shareable code for joining a family
func GenerateJoinCode() string {
	return uuid.New().String()[:8]
}

// GenerateSecureToken generates a cryptographically secure random token
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
