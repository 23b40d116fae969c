// Package repositories holds the persistence of users and verification tokens.
// Every engine (MongoDB, PostgreSQL, in-memory) implements the same two interfaces.
package repositories

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"starter-server/internal/schemas"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a user with the same email already exists.
	ErrDuplicateEmail = errors.New("email already taken")
)

// UserRepository defines the user operations used by the services.
// Emails are expected to be normalised by the caller.
type UserRepository interface {
	Create(ctx context.Context, user *schemas.User) error
	FindByEmail(ctx context.Context, email string) (*schemas.User, error)
	FindByID(ctx context.Context, id string) (*schemas.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error
	SetEmailVerifiedAt(ctx context.Context, id string, at time.Time) error
}

// VerificationTokenRepository defines the verification token operations used by the services.
type VerificationTokenRepository interface {
	// Create always inserts a new row, existing tokens of the same user and type are left untouched.
	Create(ctx context.Context, token *schemas.VerificationToken) error

	// FindOne looks a token up by its value, owner and type. All three have to match.
	FindOne(ctx context.Context, token, userID string, tokenType schemas.VerificationTokenType) (*schemas.VerificationToken, error)

	// FindByUser lists the tokens of a user for the given type, newest first.
	FindByUser(ctx context.Context, userID string, tokenType schemas.VerificationTokenType) ([]*schemas.VerificationToken, error)

	// Consume sets verified_at on the unconsumed token with the given value in a single
	// conditional update. It reports false when no unconsumed token matched.
	Consume(ctx context.Context, token string, at time.Time) (bool, error)
}
