package repositories

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starter-server/internal/schemas"
)

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	users := store.Users()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, users.Create(ctx, &schemas.User{ID: "u1", Name: "A", Email: "a@x.com", IsActive: true, CreatedAt: now}))
	assert.ErrorIs(t, users.Create(ctx, &schemas.User{ID: "u2", Name: "B", Email: "a@x.com"}), ErrDuplicateEmail)

	user, err := users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	require.NoError(t, users.SetEmailVerifiedAt(ctx, "u1", now))
	user, err = users.FindByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, user.EmailVerifiedAt)
	assert.Equal(t, now, *user.EmailVerifiedAt)

	_, err = users.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, users.UpdatePassword(ctx, "missing", "hash", now), ErrNotFound)

	store.Reset()
	_, err = users.FindByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTokensFindOneRequiresAllKeys(t *testing.T) {
	ctx := context.Background()
	tokens := NewMemoryStore().VerificationTokens()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, tokens.Create(ctx, &schemas.VerificationToken{ID: "t1", Token: "tok", Type: schemas.VerifyEmail, UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))

	_, err := tokens.FindOne(ctx, "tok", "u1", schemas.VerifyEmail)
	assert.NoError(t, err)
	_, err = tokens.FindOne(ctx, "tok", "u1", schemas.PasswordReset)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tokens.FindOne(ctx, "tok", "u2", schemas.VerifyEmail)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tokens.FindOne(ctx, "other", "u1", schemas.VerifyEmail)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTokensConsumeOnce(t *testing.T) {
	ctx := context.Background()
	tokens := NewMemoryStore().VerificationTokens()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, tokens.Create(ctx, &schemas.VerificationToken{ID: "t1", Token: "tok", Type: schemas.PasswordReset, UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))

	var wg sync.WaitGroup
	var wins int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			consumed, err := tokens.Consume(ctx, "tok", now.Add(time.Duration(offset)*time.Second))
			assert.NoError(t, err)
			if consumed {
				atomic.AddInt32(&wins, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)

	stored, err := tokens.FindOne(ctx, "tok", "u1", schemas.PasswordReset)
	require.NoError(t, err)
	verifiedAt := *stored.VerifiedAt

	consumed, err := tokens.Consume(ctx, "tok", now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, consumed)

	stored, err = tokens.FindOne(ctx, "tok", "u1", schemas.PasswordReset)
	require.NoError(t, err)
	assert.Equal(t, verifiedAt, *stored.VerifiedAt)
}

func TestMemoryTokensFindByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	tokens := NewMemoryStore().VerificationTokens()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, tokens.Create(ctx, &schemas.VerificationToken{ID: "t1", Token: "old", Type: schemas.VerifyEmail, UserID: "u1", CreatedAt: now}))
	require.NoError(t, tokens.Create(ctx, &schemas.VerificationToken{ID: "t2", Token: "new", Type: schemas.VerifyEmail, UserID: "u1", CreatedAt: now.Add(time.Minute)}))
	require.NoError(t, tokens.Create(ctx, &schemas.VerificationToken{ID: "t3", Token: "reset", Type: schemas.PasswordReset, UserID: "u1", CreatedAt: now}))

	found, err := tokens.FindByUser(ctx, "u1", schemas.VerifyEmail)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "new", found[0].Token)
	assert.Equal(t, "old", found[1].Token)
}
