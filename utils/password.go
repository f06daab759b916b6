package utils

import (
	"crypto/subtle"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword generates a bcrypt hash for the given password.
func HashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		log.Printf("ERROR: Failed to hash password: %v", err)
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// IsPasswordHash reports whether stored looks like a bcrypt hash.
func IsPasswordHash(stored string) bool {
	if len(stored) != 60 {
		return false
	}
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

// CheckPassword compares a plain text password with the stored value. Stored
// bcrypt hashes are verified with bcrypt; anything else is a legacy plaintext
// record and must match exactly.
func CheckPassword(password, stored string) bool {
	if IsPasswordHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}
