package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"starter-server/internal/interfaces"
	"starter-server/internal/schemas"
)

const tokenColumns = "id::text, token, type, user_id::text, created_at, expires_at, verified_at"

type verificationTokenPostgresRepository struct {
	pool interfaces.PgxPoolIface
}

// NewVerificationTokenPostgresRepository returns a VerificationTokenRepository backed by the verification_tokens table.
func NewVerificationTokenPostgresRepository(pool interfaces.PgxPoolIface) VerificationTokenRepository {
	return &verificationTokenPostgresRepository{pool: pool}
}

func (r *verificationTokenPostgresRepository) Create(ctx context.Context, token *schemas.VerificationToken) error {
	queryString := "INSERT INTO verification_tokens (id, token, type, user_id, created_at, expires_at, verified_at) VALUES ($1, $2, $3, $4, $5, $6, $7)"
	_, err := r.pool.Exec(ctx, queryString, token.ID, token.Token, int(token.Type), token.UserID, token.CreatedAt, token.ExpiresAt, token.VerifiedAt)
	if err != nil {
		return errors.Wrapf(err, "insert %s token for user %s", token.Type, token.UserID)
	}

	return nil
}

func (r *verificationTokenPostgresRepository) FindOne(ctx context.Context, token, userID string, tokenType schemas.VerificationTokenType) (*schemas.VerificationToken, error) {
	queryString := "SELECT " + tokenColumns + " FROM verification_tokens WHERE token = $1 AND user_id = $2 AND type = $3 ORDER BY created_at DESC LIMIT 1"
	row := r.pool.QueryRow(ctx, queryString, token, userID, int(tokenType))

	verificationToken, err := scanToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find %s token for user %s", tokenType, userID)
	}

	return verificationToken, nil
}

func (r *verificationTokenPostgresRepository) FindByUser(ctx context.Context, userID string, tokenType schemas.VerificationTokenType) ([]*schemas.VerificationToken, error) {
	queryString := "SELECT " + tokenColumns + " FROM verification_tokens WHERE user_id = $1 AND type = $2 ORDER BY created_at DESC"
	rows, err := r.pool.Query(ctx, queryString, userID, int(tokenType))
	if err != nil {
		return nil, errors.Wrapf(err, "list %s tokens for user %s", tokenType, userID)
	}
	defer rows.Close()

	tokens := make([]*schemas.VerificationToken, 0)
	for rows.Next() {
		verificationToken, err := scanToken(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan verification token")
		}
		tokens = append(tokens, verificationToken)
	}

	return tokens, errors.Wrap(rows.Err(), "iterate verification tokens")
}

func (r *verificationTokenPostgresRepository) Consume(ctx context.Context, token string, at time.Time) (bool, error) {
	queryString := "UPDATE verification_tokens SET verified_at = $1 WHERE token = $2 AND verified_at IS NULL"
	tag, err := r.pool.Exec(ctx, queryString, at, token)
	if err != nil {
		return false, errors.Wrap(err, "consume verification token")
	}

	return tag.RowsAffected() > 0, nil
}

func scanToken(row pgx.Row) (*schemas.VerificationToken, error) {
	verificationToken := &schemas.VerificationToken{}
	var tokenType int
	err := row.Scan(&verificationToken.ID, &verificationToken.Token, &tokenType, &verificationToken.UserID, &verificationToken.CreatedAt, &verificationToken.ExpiresAt, &verificationToken.VerifiedAt)
	if err != nil {
		return nil, err
	}
	verificationToken.Type = schemas.VerificationTokenType(tokenType)

	return verificationToken, nil
}
