package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when an empty password is hashed.
var ErrEmptyPassword = errors.New("password must not be empty")

const bcryptCost = 12

// HashPassword generates a salted bcrypt hash suitable for storing
// in tb_usuario.senha_hash. The cost and salt are embedded in the
// hash itself.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyPassword checks a cleartext password against a stored hash.
// Empty or malformed inputs report a mismatch, never an error.
func VerifyPassword(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
