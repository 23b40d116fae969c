package services

import "github.com/pkg/errors"

var (
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrAccountDoesNotExist      = errors.New("account does not exist")
	ErrInvalidVerificationToken = errors.New("invalid verification token")
	ErrUnauthorized             = errors.New("unauthorised")
	ErrEmailTaken               = errors.New("email has already been taken")
)
