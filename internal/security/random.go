package security

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

// NewOpaqueID identifies one login instance; it is embedded in the refresh
// token claims and matched against the session row on refresh.
func NewOpaqueID() string {
	return uuid.NewString()
}

// NewRandomToken yields the raw reset/verification token mailed to the user.
func NewRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
