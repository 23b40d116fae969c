// Package schemas defines the data structures
package schemas

import (
	"time"
)

// VerificationTokenType distinguishes the flows a verification token may be used for.
type VerificationTokenType int

const (
	VerifyEmail   VerificationTokenType = iota + 1 // Confirms ownership of the email address.
	PasswordReset                                  // Authorises setting a new password.
)

func (t VerificationTokenType) String() string {
	switch t {
	case VerifyEmail:
		return "VERIFY_EMAIL"
	case PasswordReset:
		return "PASSWORD_RESET"
	default:
		return "UNKNOWN"
	}
}

// User represents the data model for a user in the system.
type User struct {
	ID              string     `json:"id" bson:"_id"`                            // Unique identifier for the user.
	Name            string     `json:"name" bson:"name"`                         // Display name of the user.
	Email           string     `json:"email" bson:"email"`                       // Normalised email address of the user.
	Password        string     `json:"-" bson:"password,omitempty"`              // Password hash of the user.
	IsActive        bool       `json:"isActive" bson:"is_active"`                // Whether the account may be used.
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt" bson:"email_verified_at"` // Timestamp when the email was verified.
	CreatedAt       time.Time  `json:"createdAt" bson:"created_at"`              // Timestamp when the user was created.
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updated_at"`              // Timestamp of the last change.
}

// HasPassword reports whether a password hash has been stored for the user.
func (u *User) HasPassword() bool {
	return u.Password != ""
}

// VerificationToken represents a one-time token issued for email verification or password reset.
type VerificationToken struct {
	ID         string                `json:"id" bson:"_id"`                 // Unique identifier for the token row.
	Token      string                `json:"token" bson:"token"`            // Opaque token value sent to the user.
	Type       VerificationTokenType `json:"type" bson:"type"`              // Flow the token belongs to.
	UserID     string                `json:"userId" bson:"user_id"`         // Identifier of the user associated with this token.
	CreatedAt  time.Time             `json:"createdAt" bson:"created_at"`   // Timestamp when the token was issued.
	ExpiresAt  time.Time             `json:"expiresAt" bson:"expires_at"`   // Timestamp when the token expires.
	VerifiedAt *time.Time            `json:"verifiedAt" bson:"verified_at"` // Timestamp when the token was consumed.
}

// IsValidAt reports whether the token can still be used at the given instant.
func (t *VerificationToken) IsValidAt(now time.Time) bool {
	return t.VerifiedAt == nil && now.Before(t.ExpiresAt)
}
