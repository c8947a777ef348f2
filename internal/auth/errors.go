package auth

import "errors"

var (
	ErrEmailPasswordRequired = errors.New("Email and password are required")
	ErrInvalidEmail          = errors.New("Invalid Email")
	ErrIncorrectPassword     = errors.New("Incorrect Password")
	ErrNotAuthenticated      = errors.New("Not authenticated")
	ErrInvalidEmailFormat    = errors.New("Invalid email format")
	ErrInvalidPasswordFormat = errors.New("Invalid password format")
	ErrInvalidFullname       = errors.New("Full name is required and must contain only letters, spaces, hyphens, and apostrophes")
	ErrEmailTaken            = errors.New("Email already registered")
)
