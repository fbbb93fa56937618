// Package crypto provides cryptographic utilities for Abernathy Accounts.
package crypto

import (
	"crypto/rand"
	"fmt"
)

// apiKeyChars contains characters used in generated API keys.
const apiKeyChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// APIKeyLength is the length of generated API keys.
const APIKeyLength = 40

// GenerateAPIKey generates a random 40-character API key suitable for use
// as the service's pre-shared secret.
func GenerateAPIKey() (string, error) {
	return generateRandomString(APIKeyLength, apiKeyChars)
}

// generateRandomString generates a random string of the specified length
// using characters from the provided character set.
func generateRandomString(length int, charset string) (string, error) {
	result := make([]byte, length)
	charsetLen := len(charset)

	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	for i := 0; i < length; i++ {
		result[i] = charset[int(randomBytes[i])%charsetLen]
	}

	return string(result), nil
}
