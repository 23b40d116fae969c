package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"starter-server/internal/interfaces"
	"starter-server/internal/schemas"
)

const uniqueViolation = "23505"

const userColumns = "id::text, name, email, password, is_active, email_verified_at, created_at, updated_at"

type userPostgresRepository struct {
	pool interfaces.PgxPoolIface
}

// NewUserPostgresRepository returns a UserRepository backed by the users table.
func NewUserPostgresRepository(pool interfaces.PgxPoolIface) UserRepository {
	return &userPostgresRepository{pool: pool}
}

func (r *userPostgresRepository) Create(ctx context.Context, user *schemas.User) error {
	queryString := "INSERT INTO users (id, name, email, password, is_active, email_verified_at, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)"
	_, err := r.pool.Exec(ctx, queryString, user.ID, user.Name, user.Email, user.Password, user.IsActive, user.EmailVerifiedAt, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return errors.Wrapf(err, "insert user %s", user.Email)
	}

	return nil
}

func (r *userPostgresRepository) FindByEmail(ctx context.Context, email string) (*schemas.User, error) {
	queryString := "SELECT " + userColumns + " FROM users WHERE email = $1"
	user, err := scanUser(r.pool.QueryRow(ctx, queryString, email))
	if err != nil {
		return nil, errors.Wrapf(err, "find user by email %s", email)
	}

	return user, nil
}

func (r *userPostgresRepository) FindByID(ctx context.Context, id string) (*schemas.User, error) {
	queryString := "SELECT " + userColumns + " FROM users WHERE id = $1"
	user, err := scanUser(r.pool.QueryRow(ctx, queryString, id))
	if err != nil {
		return nil, errors.Wrapf(err, "find user by id %s", id)
	}

	return user, nil
}

func (r *userPostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	queryString := "UPDATE users SET password = $1, updated_at = $2 WHERE id = $3"
	tag, err := r.pool.Exec(ctx, queryString, passwordHash, at, id)
	if err != nil {
		return errors.Wrapf(err, "update password of user %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *userPostgresRepository) SetEmailVerifiedAt(ctx context.Context, id string, at time.Time) error {
	queryString := "UPDATE users SET email_verified_at = $1, updated_at = $1 WHERE id = $2"
	tag, err := r.pool.Exec(ctx, queryString, at, id)
	if err != nil {
		return errors.Wrapf(err, "set email verified of user %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (*schemas.User, error) {
	user := &schemas.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.IsActive, &user.EmailVerifiedAt, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}
