package identity

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const mockPassword = "password"

// Checker verifies the demo credential pair.
type Checker struct {
	user User
	hash []byte
}

// NewChecker hashes the demo secret once at startup.
func NewChecker() (*Checker, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(mockPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Checker{user: MockUser(), hash: hash}, nil
}

// Check returns the demo user when email matches case-insensitively and the
// password matches exactly.
func (c *Checker) Check(email, password string) (User, error) {
	if !strings.EqualFold(email, c.user.Email) {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return c.user, nil
}

// UserForEmail maps an externally verified address to the demo user.
func (c *Checker) UserForEmail(email string) (User, error) {
	if !strings.EqualFold(strings.TrimSpace(email), c.user.Email) {
		return User{}, ErrAccountNotAllowed
	}
	return c.user, nil
}
