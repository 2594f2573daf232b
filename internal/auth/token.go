package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// GenerateSessionToken returns 256 bits of cryptographically secure
// randomness as a 64-character lowercase hex string in NFC form. This
// string is the only secret the client ever holds.
func GenerateSessionToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return norm.NFC.String(hex.EncodeToString(raw)), nil
}

// DigestToken maps a session token to the key its row is stored under.
// The token already carries full entropy, so a single fast hash suffices;
// storing only the digest means a copied database cannot be replayed as
// live cookies.
func DigestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
