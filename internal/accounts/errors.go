package accounts

import "errors"

var (
	// ErrNotFound is returned when a user does not exist
	ErrNotFound = errors.New("accounts: user not found")

	// ErrEmailTaken is returned when registering an email that already exists
	ErrEmailTaken = errors.New("accounts: email already registered")

	// ErrUsernameTaken is returned when registering a username that already exists
	ErrUsernameTaken = errors.New("accounts: username already taken")

	// ErrInvalidCredentials is returned when login fails
	ErrInvalidCredentials = errors.New("accounts: invalid credentials")

	// ErrInvalidToken is returned for malformed, expired or revoked tokens
	ErrInvalidToken = errors.New("accounts: invalid token")
)
