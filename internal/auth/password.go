package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// Accounts imported from the earlier deployment carry unsalted SHA-256 hex
// digests. They still verify; new hashes are always bcrypt.
var legacyHashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// hashPassword hashes a password using bcrypt
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// checkPasswordHash verifies a password against a bcrypt or legacy hash
func checkPasswordHash(password, hash string) bool {
	if legacyHashPattern.MatchString(hash) {
		return subtle.ConstantTimeCompare([]byte(legacyHash(password)), []byte(hash)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func legacyHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
