package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// HashPassword returns the bcrypt hash of pw. An empty password hashes to ""
// so accounts created without one cannot log in.
func HashPassword(pw string) (string, error) {
	if pw == "" {
		return "", nil
	}
	if len(pw) > 72 {
		return "", fmt.Errorf("password longer than 72 bytes")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	return string(b), err
}
