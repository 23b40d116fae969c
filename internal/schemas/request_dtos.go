// Package schemas defines the request structures for various operations in the application.
package schemas

// RegistrationRequest is a struct that represents a registration request
// Name is required
// Email is required and must be a valid email
// Password is required and must satisfy the strong password rule
type RegistrationRequest struct {
	Name     string `json:"name" validate:"required" sanitize:"strict"`
	Email    string `json:"email" validate:"required,email,email_mx"`
	Password string `json:"password" validate:"required,min=8,password_validation"`
}

// LoginRequest is a struct that represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required" sanitize:"-"`
}

// EmailRequest is a struct that represents a request carrying only an email,
// used for password reset requests and verification link resends
type EmailRequest struct {
	Email string `json:"email" validate:"required"`
}

// VerifyEmailRequest is a struct that represents an email verification request
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required"`
	Token string `json:"token" validate:"required"`
}

// ResetPasswordRequest is a struct that represents a password reset request
// PasswordConfirmation must match NewPassword
type ResetPasswordRequest struct {
	Email                string `json:"email" validate:"required"`
	Token                string `json:"token" validate:"required"`
	NewPassword          string `json:"newPassword" validate:"required,min=8,password_validation"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required,eqfield=NewPassword"`
}
