package utils

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// VerifyPassword checks a plaintext password against a stored hash. Modern
// accounts store bcrypt; accounts migrated from older LibreClinica releases
// still carry the legacy SHA-1 hex digest, recognizable by its fixed 40
// character length.
func VerifyPassword(storedHash, password string) bool {
	if storedHash == "" || password == "" {
		return false
	}
	if strings.HasPrefix(storedHash, "$2a$") || strings.HasPrefix(storedHash, "$2b$") || strings.HasPrefix(storedHash, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
	}
	if len(storedHash) == 40 {
		sum := sha1.Sum([]byte(password))
		digest := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(digest), []byte(strings.ToLower(storedHash))) == 1
	}
	return false
}

// HashPassword produces a bcrypt hash for storing a new credential
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
