// Package auth verifies the shared secret presented with each task.
package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const minSecretLength = 8

// Verifier checks a candidate against a plain secret, a bcrypt hash, or both.
type Verifier struct {
	plain string
	hash  string
}

// NewVerifier requires at least one of plain or hash.
func NewVerifier(plain, hash string) (*Verifier, error) {
	plain = strings.TrimSpace(plain)
	hash = strings.TrimSpace(hash)
	if plain == "" && hash == "" {
		return nil, fmt.Errorf("a secret or secret_hash is required")
	}
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("invalid secret_hash: %w", err)
		}
	}
	return &Verifier{plain: plain, hash: hash}, nil
}

// Verify reports whether candidate matches any configured form.
func (v *Verifier) Verify(candidate string) bool {
	if v == nil || candidate == "" {
		return false
	}
	if v.plain != "" && subtle.ConstantTimeCompare([]byte(v.plain), []byte(candidate)) == 1 {
		return true
	}
	return VerifySecret(v.hash, candidate)
}

// ValidateSecret checks minimal secret requirements.
func ValidateSecret(secret string) error {
	if len(secret) < minSecretLength {
		return fmt.Errorf("secret must be at least %d characters", minSecretLength)
	}
	return nil
}

// HashSecret hashes one plaintext secret for the config file.
func HashSecret(secret string) (string, error) {
	if err := ValidateSecret(secret); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifySecret verifies plaintext secret against a bcrypt hash.
func VerifySecret(secretHash, candidate string) bool {
	if strings.TrimSpace(secretHash) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(candidate)) == nil
}
