package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"starter-server/internal/managers"
	"starter-server/internal/repositories"
	"starter-server/internal/schemas"
	"starter-server/internal/utils"
)

// TokenSettings holds the lifetime of each token type and the front-end base URL of the links.
type TokenSettings struct {
	EmailVerificationLinkDuration time.Duration
	PasswordResetLinkDuration     time.Duration
	FrontendURL                   string
}

// RegisterParams carries a validated registration request.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// ResetPasswordParams carries a validated password reset request.
type ResetPasswordParams struct {
	Email       string
	Token       string
	NewPassword string
}

// AuthService implements registration, login and the verification token lifecycle.
type AuthService struct {
	databaseMgr managers.DatabaseMgr
	users       *UserService
	jwtMgr      managers.JWTMgr
	mailMgr     managers.MailMgr
	hasher      managers.PasswordHasher
	metrics     *managers.MetricsManager
	settings    TokenSettings
	now         Clock
}

func NewAuthService(
	databaseMgr managers.DatabaseMgr,
	jwtMgr managers.JWTMgr,
	mailMgr managers.MailMgr,
	hasher managers.PasswordHasher,
	metrics *managers.MetricsManager,
	settings TokenSettings,
	now Clock,
) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		databaseMgr: databaseMgr,
		users:       NewUserService(databaseMgr, hasher, now),
		jwtMgr:      jwtMgr,
		mailMgr:     mailMgr,
		hasher:      hasher,
		metrics:     metrics,
		settings:    settings,
		now:         now,
	}
}

// Users exposes the user service sharing the same store and clock.
func (s *AuthService) Users() *UserService {
	return s.users
}

// GenerateToken stores a new verification token for the user.
// Existing tokens of the same user and type stay untouched.
func (s *AuthService) GenerateToken(ctx context.Context, user *schemas.User, tokenType schemas.VerificationTokenType) (*schemas.VerificationToken, error) {
	value, err := generateVerificationTokenValue()
	if err != nil {
		return nil, err
	}

	now := s.now()
	token := &schemas.VerificationToken{
		ID:        uuid.NewString(),
		Token:     value,
		Type:      tokenType,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.durationOf(tokenType)),
	}

	if err := s.databaseMgr.VerificationTokens().Create(ctx, token); err != nil {
		return nil, err
	}
	s.metrics.TokenIssued(tokenType)
	utils.LogMessageWithFields(ctx, "debug", "Issued "+tokenType.String()+" token for user "+user.ID)

	return token, nil
}

// BuildLink returns the front-end URL the user follows to redeem token.
func (s *AuthService) BuildLink(tokenType schemas.VerificationTokenType, token string, user *schemas.User) string {
	verb := "verify-email"
	if tokenType == schemas.PasswordReset {
		verb = "reset-password"
	}

	return strings.TrimRight(s.settings.FrontendURL, "/") + "/auth/" + verb +
		"?token=" + url.QueryEscape(token) + "&email=" + url.QueryEscape(user.Email)
}

// IsTokenValid reports whether token exists for the user and type, is not expired and was never consumed.
func (s *AuthService) IsTokenValid(ctx context.Context, token string, tokenType schemas.VerificationTokenType, user *schemas.User) (bool, error) {
	verificationToken, err := s.databaseMgr.VerificationTokens().FindOne(ctx, token, user.ID, tokenType)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return verificationToken.IsValidAt(s.now()), nil
}

// ConsumeToken marks the unconsumed token as verified. It reports false, without an error,
// when no unconsumed token matched, in which case nothing was written.
func (s *AuthService) ConsumeToken(ctx context.Context, token string) (bool, error) {
	return s.databaseMgr.VerificationTokens().Consume(ctx, token, s.now())
}

// RegisterUser creates the account and sends the welcome and verification mails.
// Mail failures are logged and do not undo the registration.
func (s *AuthService) RegisterUser(ctx context.Context, params RegisterParams) (*schemas.User, error) {
	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, CreateUserParams{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return nil, err
	}

	if err := s.mailMgr.SendWelcomeMail(ctx, user); err != nil {
		utils.LogMessageWithFieldsAndError(ctx, "warn", "Could not send welcome mail", err)
	}

	token, err := s.GenerateToken(ctx, user, schemas.VerifyEmail)
	if err != nil {
		utils.LogMessageWithFieldsAndError(ctx, "error", "Could not issue email verification token", err)
		return user, nil
	}

	if err := s.mailMgr.SendVerifyEmailMail(ctx, user, s.BuildLink(schemas.VerifyEmail, token.Token, user)); err != nil {
		utils.LogMessageWithFieldsAndError(ctx, "warn", "Could not send verification mail", err)
	}

	return user, nil
}

// LoginUser returns a signed credential for the user owning email and password.
// An unknown email and a wrong password both yield ErrInvalidCredentials.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, *schemas.User, error) {
	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !user.HasPassword() || !s.hasher.Compare(user.Password, password) {
		return "", nil, ErrInvalidCredentials
	}

	accessToken, err := s.jwtMgr.GenerateJWT(s.jwtMgr.GenerateClaims(user))
	if err != nil {
		return "", nil, errors.Wrap(err, "sign access token")
	}

	return accessToken, user, nil
}

// RequestPasswordReset issues a password reset token and mails its link.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.existingUser(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.GenerateToken(ctx, user, schemas.PasswordReset)
	if err != nil {
		return err
	}

	return s.mailMgr.SendPasswordResetMail(ctx, user, s.BuildLink(schemas.PasswordReset, token.Token, user))
}

// ResetPassword redeems a password reset token and stores the new password.
func (s *AuthService) ResetPassword(ctx context.Context, params ResetPasswordParams) error {
	user, err := s.existingUser(ctx, params.Email)
	if err != nil {
		return err
	}

	if _, err := s.redeemToken(ctx, user, params.Token, schemas.PasswordReset); err != nil {
		return err
	}

	return s.users.ChangePassword(ctx, user, params.NewPassword)
}

// ResendVerificationLink issues a fresh email verification token and mails its link.
// Earlier tokens remain valid until they expire.
func (s *AuthService) ResendVerificationLink(ctx context.Context, email string) error {
	user, err := s.existingUser(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.GenerateToken(ctx, user, schemas.VerifyEmail)
	if err != nil {
		return err
	}

	return s.mailMgr.SendVerifyEmailMail(ctx, user, s.BuildLink(schemas.VerifyEmail, token.Token, user))
}

// VerifyEmail redeems an email verification token. The user's emailVerifiedAt and the
// token's verifiedAt receive the same instant.
func (s *AuthService) VerifyEmail(ctx context.Context, email, token string) error {
	user, err := s.existingUser(ctx, email)
	if err != nil {
		return err
	}

	verifiedAt, err := s.redeemToken(ctx, user, token, schemas.VerifyEmail)
	if err != nil {
		return err
	}

	return s.users.MarkEmailVerified(ctx, user, verifiedAt)
}

// Authenticate resolves a bearer credential to the stored user.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (*schemas.User, error) {
	if bearer == "" {
		return nil, ErrUnauthorized
	}

	claims, err := s.jwtMgr.ValidateJWT(bearer)
	if err != nil {
		utils.LogMessageWithFieldsAndError(ctx, "debug", "Rejected bearer credential", err)
		return nil, ErrUnauthorized
	}

	user, err := s.users.FindUserByID(ctx, claims.UserID)
	if err != nil || user == nil {
		return nil, ErrUnauthorized
	}

	return user, nil
}

// redeemToken validates the token and then consumes it with a single conditional update.
// Only the caller winning the update may apply the business effect.
func (s *AuthService) redeemToken(ctx context.Context, user *schemas.User, token string, tokenType schemas.VerificationTokenType) (time.Time, error) {
	valid, err := s.IsTokenValid(ctx, token, tokenType, user)
	if err != nil {
		return time.Time{}, err
	}
	if !valid {
		return time.Time{}, ErrInvalidVerificationToken
	}

	at := s.now()
	consumed, err := s.databaseMgr.VerificationTokens().Consume(ctx, token, at)
	if err != nil {
		return time.Time{}, err
	}
	s.metrics.TokenConsumed(tokenType, consumed)
	if !consumed {
		return time.Time{}, ErrInvalidVerificationToken
	}

	return at, nil
}

func (s *AuthService) existingUser(ctx context.Context, email string) (*schemas.User, error) {
	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountDoesNotExist
	}
	return user, nil
}

func (s *AuthService) durationOf(tokenType schemas.VerificationTokenType) time.Duration {
	if tokenType == schemas.PasswordReset {
		return s.settings.PasswordResetLinkDuration
	}
	return s.settings.EmailVerificationLinkDuration
}

// generateVerificationTokenValue joins a random uuid and 32 random bytes in hex.
func generateVerificationTokenValue() (string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", errors.Wrap(err, "read random bytes")
	}

	return uuid.NewString() + "-" + hex.EncodeToString(randomBytes), nil
}
