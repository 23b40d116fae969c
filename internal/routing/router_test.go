package routing

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"starter-server/internal/config"
	"starter-server/internal/managers"
	"starter-server/internal/managers/mocks"
	"starter-server/internal/schemas"
)

const validPassword = "Abcdef1!"

type testServer struct {
	e           *httpexpect.Expect
	databaseMgr *managers.MemoryDatabaseManager
	mailMgr     *mocks.MockMailManager
}

func newTestConfig() *config.Config {
	return &config.Config{
		Environment: config.EnvTest,
		AppName:     "Starter Server",
		Auth: config.AuthConfig{
			EmailVerificationLinkDuration: 24 * time.Hour,
			PasswordResetLinkDuration:     time.Hour,
			FrontendURL:                   "http://fe.test",
		},
		HTTP: config.HTTPConfig{
			MaxBodyBytes: 1 << 20,
			AllowOrigins: []string{"http://fe.test"},
		},
	}
}

func newDependencies(t *testing.T, databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr) Dependencies {
	t.Helper()

	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	return Dependencies{
		DatabaseMgr: databaseMgr,
		MailMgr:     mailMgr,
		JWTMgr:      managers.NewJWTManager(privateKey, publicKey, time.Hour),
		Hasher:      managers.NewBcryptHasher(bcrypt.MinCost),
		Metrics:     managers.NewMetricsManager(),
	}
}

func setupServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()

	ts := &testServer{
		databaseMgr: managers.NewMemoryDatabaseManager(),
		mailMgr:     mocks.NewAcceptingMailManager(),
	}

	server := httptest.NewServer(InitRouter(cfg, newDependencies(t, ts.databaseMgr, ts.mailMgr)))
	t.Cleanup(server.Close)
	ts.e = httpexpect.Default(t, server.URL)

	return ts
}

func (ts *testServer) register(email string) string {
	return ts.e.POST("/api/auth/register").
		WithJSON(map[string]string{"name": "A", "email": email, "password": validPassword}).
		Expect().
		Status(http.StatusCreated).
		JSON().Object().Value("data").Object().Value("id").String().Raw()
}

func (ts *testServer) login(email, password string) string {
	return ts.e.POST("/api/auth/login").
		WithJSON(map[string]string{"email": email, "password": password}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().Value("accessToken").String().NotEmpty().Raw()
}

func (ts *testServer) latestToken(t *testing.T, userID string, tokenType schemas.VerificationTokenType) string {
	t.Helper()

	tokens, err := ts.databaseMgr.VerificationTokens().FindByUser(context.Background(), userID, tokenType)
	require.NoError(t, err)
	require.NotEmpty(t, tokens)
	return tokens[0].Token
}

func TestMetadataHealthAndMetrics(t *testing.T) {
	ts := setupServer(t, newTestConfig())

	ts.e.GET("/").
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().
		HasValue("apiVersion", "main:latest").
		HasValue("apiName", "Starter Server")

	ts.e.GET("/health").
		Expect().
		Status(http.StatusOK).
		Header("X-Trace-Id").NotEmpty()

	ts.e.GET("/metrics").
		Expect().
		Status(http.StatusOK).
		Body().Contains("http_requests_total")
}

func TestHealthDatabaseNotResponding(t *testing.T) {
	databaseMgrMock := &mocks.MockDatabaseManager{}
	databaseMgrMock.On("Ping", mock.Anything).Return(errors.New("connection refused"))

	server := httptest.NewServer(InitRouter(newTestConfig(), newDependencies(t, databaseMgrMock, mocks.NewAcceptingMailManager())))
	defer server.Close()

	httpexpect.Default(t, server.URL).GET("/health").
		Expect().
		Status(http.StatusInternalServerError).
		Body().IsEqual("Database not responding")
	databaseMgrMock.AssertExpectations(t)
}

func TestUserRegistration(t *testing.T) {
	testCases := []struct {
		name    string
		body    interface{}
		status  int
		code    string
		details map[string]interface{}
	}{
		{
			"InvalidEmail",
			map[string]string{"name": "A", "email": "test@example@.com", "password": validPassword},
			http.StatusUnprocessableEntity,
			"ERR-001",
			map[string]interface{}{"email": "Email format is invalid."},
		},
		{
			"MissingFields",
			map[string]string{"password": validPassword},
			http.StatusUnprocessableEntity,
			"ERR-001",
			map[string]interface{}{"name": "Name is required.", "email": "Email is required."},
		},
		{
			"ShortPassword",
			map[string]string{"name": "A", "email": "a@x.com", "password": "Ab1!"},
			http.StatusUnprocessableEntity,
			"ERR-001",
			map[string]interface{}{"password": "Password must have at least 8 characters."},
		},
		{
			"WeakPassword",
			map[string]string{"name": "A", "email": "a@x.com", "password": "abcdefgh"},
			http.StatusUnprocessableEntity,
			"ERR-001",
			map[string]interface{}{"password": "Password must contain at least 1 lowercase letter, 1 uppercase letter, 1 digit, 1 special character and have at least 8 characters."},
		},
		{
			"MarkupOnlyName",
			map[string]string{"name": "<script></script>", "email": "a@x.com", "password": validPassword},
			http.StatusUnprocessableEntity,
			"ERR-001",
			map[string]interface{}{"name": "Name is required."},
		},
		{
			"MalformedJSON",
			"{not json",
			http.StatusBadRequest,
			"ERR-000",
			nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts := setupServer(t, newTestConfig())

			req := ts.e.POST("/api/auth/register")
			if raw, ok := tc.body.(string); ok {
				req = req.WithHeader("Content-Type", "application/json").WithBytes([]byte(raw))
			} else {
				req = req.WithJSON(tc.body)
			}

			errObj := req.Expect().
				Status(tc.status).
				JSON().Object().Value("error").Object()
			errObj.HasValue("code", tc.code)
			if tc.details != nil {
				errObj.Value("details").Object().IsEqual(tc.details)
			} else {
				errObj.NotContainsKey("details")
			}
		})
	}
}

func TestUserRegistrationStoresUser(t *testing.T) {
	ts := setupServer(t, newTestConfig())

	data := ts.e.POST("/api/auth/register").
		WithJSON(map[string]string{"name": "  A ", "email": " A@X.com", "password": validPassword}).
		Expect().
		Status(http.StatusCreated).
		JSON().Object().Value("data").Object()

	data.HasValue("name", "A").
		HasValue("email", "a@x.com").
		HasValue("isActive", true).
		NotContainsKey("password")
	data.Value("emailVerifiedAt").IsNull()

	userID := data.Value("id").String().Raw()
	require.NotEmpty(t, ts.latestToken(t, userID, schemas.VerifyEmail))
	ts.mailMgr.AssertNumberOfCalls(t, "SendWelcomeMail", 1)
	ts.mailMgr.AssertNumberOfCalls(t, "SendVerifyEmailMail", 1)

	ts.e.POST("/api/auth/register").
		WithJSON(map[string]string{"name": "B", "email": "a@x.com", "password": validPassword}).
		Expect().
		Status(http.StatusUnprocessableEntity).
		JSON().Object().Value("error").Object().
		HasValue("code", "ERR-001").
		Value("details").Object().HasValue("email", "Email has already been taken.")
}

func TestUserRegistrationKeepsNamePunctuation(t *testing.T) {
	ts := setupServer(t, newTestConfig())

	userID := ts.e.POST("/api/auth/register").
		WithJSON(map[string]string{"name": "Tom O'Brien & Co <i>x</i>", "email": "tom@x.com", "password": validPassword}).
		Expect().
		Status(http.StatusCreated).
		JSON().Object().Value("data").Object().
		HasValue("name", "Tom O'Brien & Co x").
		Value("id").String().Raw()

	user, err := ts.databaseMgr.Users().FindByID(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, "Tom O'Brien & Co x", user.Name)
}

func TestClientIPIgnoresForwardedForByDefault(t *testing.T) {
	cfg := newTestConfig()
	router := InitRouter(cfg, newDependencies(t, managers.NewMemoryDatabaseManager(), mocks.NewAcceptingMailManager()))
	router.GET("/client-ip", func(c *gin.Context) {
		c.String(http.StatusOK, c.ClientIP())
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	httpexpect.Default(t, server.URL).GET("/client-ip").
		WithHeader("X-Forwarded-For", "203.0.113.9").
		Expect().
		Status(http.StatusOK).
		Body().IsEqual("127.0.0.1")

	cfg = newTestConfig()
	cfg.HTTP.TrustedProxies = []string{"127.0.0.1"}
	router = InitRouter(cfg, newDependencies(t, managers.NewMemoryDatabaseManager(), mocks.NewAcceptingMailManager()))
	router.GET("/client-ip", func(c *gin.Context) {
		c.String(http.StatusOK, c.ClientIP())
	})
	proxied := httptest.NewServer(router)
	t.Cleanup(proxied.Close)

	httpexpect.Default(t, proxied.URL).GET("/client-ip").
		WithHeader("X-Forwarded-For", "203.0.113.9").
		Expect().
		Status(http.StatusOK).
		Body().IsEqual("203.0.113.9")
}

func TestLoginAndMe(t *testing.T) {
	ts := setupServer(t, newTestConfig())
	userID := ts.register("a@x.com")

	data := ts.e.POST("/api/auth/login").
		WithJSON(map[string]string{"email": "A@x.com", "password": validPassword}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object()
	accessToken := data.Value("accessToken").String().NotEmpty().Raw()
	data.Value("user").Object().HasValue("id", userID)

	ts.e.GET("/api/auth/me").
		WithHeader("Authorization", "Bearer "+accessToken).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().
		HasValue("id", userID).
		HasValue("email", "a@x.com")

	for _, header := range []string{"", "Bearer ", "Bearer garbage", accessToken} {
		ts.e.GET("/api/auth/me").
			WithHeader("Authorization", header).
			Expect().
			Status(http.StatusUnauthorized).
			JSON().Object().Value("error").Object().
			HasValue("code", "ERR-005").
			HasValue("message", "Unauthorised.")
	}

	wrongPassword := ts.e.POST("/api/auth/login").
		WithJSON(map[string]string{"email": "a@x.com", "password": "Wrong123!"}).
		Expect().
		Status(http.StatusUnprocessableEntity).
		JSON().Object()
	unknownEmail := ts.e.POST("/api/auth/login").
		WithJSON(map[string]string{"email": "nobody@x.com", "password": validPassword}).
		Expect().
		Status(http.StatusUnprocessableEntity).
		JSON().Object()

	paddedPassword := ts.e.POST("/api/auth/login").
		WithJSON(map[string]string{"email": "a@x.com", "password": " " + validPassword + " "}).
		Expect().
		Status(http.StatusUnprocessableEntity).
		JSON().Object()

	wrongPassword.Value("error").Object().HasValue("code", "ERR-002").HasValue("message", "Invalid credentials.")
	unknownEmail.IsEqual(wrongPassword.Raw())
	paddedPassword.IsEqual(wrongPassword.Raw())
}

func TestVerifyEmail(t *testing.T) {
	ts := setupServer(t, newTestConfig())
	userID := ts.register("a@x.com")
	token := ts.latestToken(t, userID, schemas.VerifyEmail)

	ts.e.PUT("/api/auth/verify-email").
		WithJSON(map[string]string{"email": "a@x.com"}).
		Expect().
		Status(http.StatusUnprocessableEntity).
		JSON().Object().Value("error").Object().
		Value("details").Object().HasValue("token", "Token is required.")

	ts.e.PUT("/api/auth/verify-email").
		WithJSON(map[string]string{"email": "nobody@x.com", "token": token}).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().Value("error").Object().
		HasValue("code", "ERR-003").
		HasValue("message", "Account does not exist.")

	ts.e.PUT("/api/auth/verify-email").
		WithJSON(map[string]string{"email": "a@x.com", "token": token}).
		Expect().
		Status(http.StatusNoContent).
		NoContent()

	ts.e.PUT("/api/auth/verify-email").
		WithJSON(map[string]string{"email": "a@x.com", "token": token}).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().Value("error").Object().HasValue("code", "ERR-004")

	accessToken := ts.login("a@x.com", validPassword)
	ts.e.GET("/api/auth/me").
		WithHeader("Authorization", "Bearer "+accessToken).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().Value("emailVerifiedAt").String().NotEmpty()
}

func TestResendVerificationLink(t *testing.T) {
	ts := setupServer(t, newTestConfig())
	userID := ts.register("a@x.com")
	first := ts.latestToken(t, userID, schemas.VerifyEmail)

	ts.e.POST("/api/auth/email-verification-link/resend").
		WithJSON(map[string]string{"email": "a@x.com"}).
		Expect().
		Status(http.StatusNoContent)

	for _, email := range []string{"nobody@x.com", "not-an-email"} {
		ts.e.POST("/api/auth/email-verification-link/resend").
			WithJSON(map[string]string{"email": email}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().Value("error").Object().HasValue("code", "ERR-003")
	}

	second := ts.latestToken(t, userID, schemas.VerifyEmail)
	require.NotEqual(t, first, second)
	ts.mailMgr.AssertNumberOfCalls(t, "SendVerifyEmailMail", 2)

	ts.e.PUT("/api/auth/verify-email").
		WithJSON(map[string]string{"email": "a@x.com", "token": first}).
		Expect().
		Status(http.StatusNoContent)
}

func TestPasswordReset(t *testing.T) {
	ts := setupServer(t, newTestConfig())
	userID := ts.register("a@x.com")
	newPassword := "Zyxwvu9?"

	ts.e.POST("/api/auth/request-password-reset").
		WithJSON(map[string]string{"email": "nobody@x.com"}).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().Value("error").Object().HasValue("code", "ERR-003")

	ts.e.POST("/api/auth/request-password-reset").
		WithJSON(map[string]string{"email": "a@x.com"}).
		Expect().
		Status(http.StatusNoContent)
	ts.mailMgr.AssertNumberOfCalls(t, "SendPasswordResetMail", 1)
	token := ts.latestToken(t, userID, schemas.PasswordReset)

	ts.e.PUT("/api/auth/reset-password").
		WithJSON(map[string]string{"email": "a@x.com", "token": token, "newPassword": newPassword, "passwordConfirmation": "Other123!"}).
		Expect().
		Status(http.StatusUnprocessableEntity).
		JSON().Object().Value("error").Object().
		Value("details").Object().HasValue("passwordConfirmation", "Passwords do not match.")

	ts.e.PUT("/api/auth/reset-password").
		WithJSON(map[string]string{"email": "a@x.com", "token": token, "newPassword": newPassword}).
		Expect().
		Status(http.StatusUnprocessableEntity).
		JSON().Object().Value("error").Object().
		Value("details").Object().HasValue("passwordConfirmation", "Please confirm your password.")

	verifyToken := ts.latestToken(t, userID, schemas.VerifyEmail)
	ts.e.PUT("/api/auth/reset-password").
		WithJSON(map[string]string{"email": "a@x.com", "token": verifyToken, "newPassword": newPassword, "passwordConfirmation": newPassword}).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().Value("error").Object().HasValue("code", "ERR-004")

	ts.e.PUT("/api/auth/reset-password").
		WithJSON(map[string]string{"email": "a@x.com", "token": token, "newPassword": newPassword, "passwordConfirmation": newPassword}).
		Expect().
		Status(http.StatusNoContent)

	ts.e.POST("/api/auth/login").
		WithJSON(map[string]string{"email": "a@x.com", "password": validPassword}).
		Expect().
		Status(http.StatusUnprocessableEntity)
	ts.login("a@x.com", newPassword)
}

func TestRequestBodyTooLarge(t *testing.T) {
	cfg := newTestConfig()
	cfg.HTTP.MaxBodyBytes = 64
	ts := setupServer(t, cfg)

	ts.e.POST("/api/auth/register").
		WithJSON(map[string]string{"name": strings.Repeat("A", 128), "email": "a@x.com", "password": validPassword}).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().Value("error").Object().HasValue("code", "UploadMaxFileSizeError")
}
