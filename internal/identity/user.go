package identity

import "errors"

var (
	ErrInvalidCredentials = errors.New("Invalid credentials. Use test@example.com and password.")
	ErrAccountNotAllowed  = errors.New("this account is not allowed to sign in")
)

// User is an authenticated account. Each user owns exactly one profile.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	ProfileID string `json:"profileId"`
}

// MockUser is the single demo account.
func MockUser() User {
	return User{ID: "user-1", Email: "test@example.com", ProfileID: "dev-1234"}
}
