package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"starter-server/internal/schemas"
)

// MemoryStore keeps users and verification tokens in process memory.
// It backs DB_DRIVER=memory and the service and routing tests.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[string]schemas.User
	tokens []schemas.VerificationToken
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]schemas.User)}
}

// Reset removes every stored record.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]schemas.User)
	s.tokens = nil
}

// Users returns a UserRepository view on the store.
func (s *MemoryStore) Users() UserRepository {
	return &userMemoryRepository{store: s}
}

// VerificationTokens returns a VerificationTokenRepository view on the store.
func (s *MemoryStore) VerificationTokens() VerificationTokenRepository {
	return &verificationTokenMemoryRepository{store: s}
}

type userMemoryRepository struct {
	store *MemoryStore
}

func (r *userMemoryRepository) Create(_ context.Context, user *schemas.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	r.store.users[user.ID] = *user

	return nil
}

func (r *userMemoryRepository) FindByEmail(_ context.Context, email string) (*schemas.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, user := range r.store.users {
		if user.Email == email {
			return &user, nil
		}
	}

	return nil, ErrNotFound
}

func (r *userMemoryRepository) FindByID(_ context.Context, id string) (*schemas.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &user, nil
}

func (r *userMemoryRepository) UpdatePassword(_ context.Context, id, passwordHash string, at time.Time) error {
	return r.update(id, func(user *schemas.User) {
		user.Password = passwordHash
		user.UpdatedAt = at
	})
}

func (r *userMemoryRepository) SetEmailVerifiedAt(_ context.Context, id string, at time.Time) error {
	return r.update(id, func(user *schemas.User) {
		verifiedAt := at
		user.EmailVerifiedAt = &verifiedAt
		user.UpdatedAt = at
	})
}

func (r *userMemoryRepository) update(id string, apply func(user *schemas.User)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return ErrNotFound
	}
	apply(&user)
	r.store.users[id] = user

	return nil
}

type verificationTokenMemoryRepository struct {
	store *MemoryStore
}

func (r *verificationTokenMemoryRepository) Create(_ context.Context, token *schemas.VerificationToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.tokens = append(r.store.tokens, *token)

	return nil
}

func (r *verificationTokenMemoryRepository) FindOne(_ context.Context, token, userID string, tokenType schemas.VerificationTokenType) (*schemas.VerificationToken, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for i := len(r.store.tokens) - 1; i >= 0; i-- {
		candidate := r.store.tokens[i]
		if candidate.Token == token && candidate.UserID == userID && candidate.Type == tokenType {
			return &candidate, nil
		}
	}

	return nil, ErrNotFound
}

func (r *verificationTokenMemoryRepository) FindByUser(_ context.Context, userID string, tokenType schemas.VerificationTokenType) ([]*schemas.VerificationToken, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	tokens := make([]*schemas.VerificationToken, 0)
	for i := len(r.store.tokens) - 1; i >= 0; i-- {
		candidate := r.store.tokens[i]
		if candidate.UserID == userID && candidate.Type == tokenType {
			tokens = append(tokens, &candidate)
		}
	}
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].CreatedAt.After(tokens[j].CreatedAt)
	})

	return tokens, nil
}

func (r *verificationTokenMemoryRepository) Consume(_ context.Context, token string, at time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range r.store.tokens {
		if r.store.tokens[i].Token == token && r.store.tokens[i].VerifiedAt == nil {
			verifiedAt := at
			r.store.tokens[i].VerifiedAt = &verifiedAt
			return true, nil
		}
	}

	return false, nil
}
