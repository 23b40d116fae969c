package managers

import (
	"github.com/matthewhartstonge/argon2"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"starter-server/internal/config"
)

// PasswordHasher hashes and verifies passwords. Plaintext passwords are never stored.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// NewPasswordHasher returns the hasher selected by PASSWORD_HASHER.
func NewPasswordHasher(cfg *config.AuthConfig) (PasswordHasher, error) {
	switch cfg.PasswordHasher {
	case config.HasherBcrypt:
		return NewBcryptHasher(cfg.BcryptCost), nil
	case config.HasherArgon2:
		return NewArgon2Hasher(), nil
	default:
		return nil, errors.Errorf("unknown password hasher %q", cfg.PasswordHasher)
	}
}

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher clamps cost into the range bcrypt accepts.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hashedPassword), nil
}

func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Argon2Hasher hashes passwords with argon2id in the PHC encoded format.
type Argon2Hasher struct {
	config argon2.Config
}

func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{config: argon2.DefaultConfig()}
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	encoded, err := h.config.HashEncoded([]byte(password))
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(encoded), nil
}

func (h *Argon2Hasher) Compare(hash, password string) bool {
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(hash))
	return err == nil && ok
}
