// Package services implements the account flows on top of the repositories and managers.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"starter-server/internal/managers"
	"starter-server/internal/repositories"
	"starter-server/internal/schemas"
)

// Clock returns the current instant. Tests replace it to pin time.
type Clock func() time.Time

// CreateUserParams carries the fields of a new user. Password is already hashed.
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
}

// UserService reads and writes users.
type UserService struct {
	databaseMgr managers.DatabaseMgr
	hasher      managers.PasswordHasher
	now         Clock
}

func NewUserService(databaseMgr managers.DatabaseMgr, hasher managers.PasswordHasher, now Clock) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{databaseMgr: databaseMgr, hasher: hasher, now: now}
}

// FormatEmail normalises an email before it reaches the store.
func FormatEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores a new active user with an unverified email.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (*schemas.User, error) {
	now := s.now()
	user := &schemas.User{
		ID:        uuid.NewString(),
		Name:      params.Name,
		Email:     FormatEmail(params.Email),
		Password:  params.PasswordHash,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.databaseMgr.Users().Create(ctx, user)
	if errors.Is(err, repositories.ErrDuplicateEmail) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// FindUserByEmail returns nil without an error when no user has the email.
func (s *UserService) FindUserByEmail(ctx context.Context, email string) (*schemas.User, error) {
	user, err := s.databaseMgr.Users().FindByEmail(ctx, FormatEmail(email))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

// FindUserByID returns nil without an error when no user has the id.
func (s *UserService) FindUserByID(ctx context.Context, id string) (*schemas.User, error) {
	user, err := s.databaseMgr.Users().FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

// ChangePassword hashes and stores a new password for the user.
func (s *UserService) ChangePassword(ctx context.Context, user *schemas.User, newPassword string) error {
	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.databaseMgr.Users().UpdatePassword(ctx, user.ID, passwordHash, s.now())
}

// MarkEmailVerified records the instant the user proved ownership of the email.
func (s *UserService) MarkEmailVerified(ctx context.Context, user *schemas.User, at time.Time) error {
	return s.databaseMgr.Users().SetEmailVerifiedAt(ctx, user.ID, at)
}
