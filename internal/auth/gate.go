// Package auth provides shared-secret authorization for Abernathy Accounts.
// Profile endpoints are protected by a single pre-shared API key that every
// request must present in the X-API-Key header.
package auth

import (
	"github.com/prn-tf/abernathy-accounts/internal/domain"
	"github.com/prn-tf/abernathy-accounts/internal/pkg/crypto"
)

// Gate enforces the shared-secret check on protected operations.
// The secret comes from runtime configuration, never from a source literal.
type Gate struct {
	apiKey string
}

// NewGate creates a Gate around the configured API key.
func NewGate(apiKey string) *Gate {
	return &Gate{apiKey: apiKey}
}

// Authorize compares the request-supplied key against the shared secret.
// The comparison runs in constant time regardless of where a mismatch
// occurs. Returns domain.ErrInvalidAPIKey on absence or mismatch.
func (g *Gate) Authorize(providedKey string) error {
	if providedKey == "" || !crypto.SecureCompare(providedKey, g.apiKey) {
		return domain.ErrInvalidAPIKey
	}
	return nil
}
