// Package config loads the runtime configuration from the environment.
// A .env file is read first when present, after that the process environment wins.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"

	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	MailDriverMailgun = "mailgun"
	MailDriverSMTP    = "smtp"
	MailDriverLog     = "log"

	HasherBcrypt = "bcrypt"
	HasherArgon2 = "argon2"
)

// Config holds every setting the server needs at startup.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`
	AppName     string `env:"APP_NAME" envDefault:"Starter Server"`
	PRNumber    string `env:"PR_NUMBER"`

	DB       DatabaseConfig
	Auth     AuthConfig
	Mail     MailConfig
	HTTP     HTTPConfig
	Validate ValidationConfig
}

// DatabaseConfig selects the storage engine and its connection settings.
type DatabaseConfig struct {
	Driver        string `env:"DB_DRIVER" envDefault:"mongo"`
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"starter"`
	Host          string `env:"DB_HOST"`
	Port          string `env:"DB_PORT" envDefault:"5432"`
	User          string `env:"DB_USER"`
	Password      string `env:"DB_PASS"`
	Name          string `env:"DB_NAME"`
}

// AuthConfig holds the credential and verification link settings.
type AuthConfig struct {
	KeyPairPath                   string        `env:"KEY_PAIR_PATH" envDefault:"keypair.bin"`
	TokenExpiresIn                time.Duration `env:"AUTH_TOKEN_EXPIRES_IN" envDefault:"24h"`
	EmailVerificationLinkDuration time.Duration `env:"EMAIL_VERIFICATION_LINK_DURATION" envDefault:"24h"`
	PasswordResetLinkDuration     time.Duration `env:"PASSWORD_RESET_LINK_DURATION" envDefault:"1h"`
	FrontendURL                   string        `env:"FE_URL" envDefault:"http://localhost:3000"`
	PasswordHasher                string        `env:"PASSWORD_HASHER" envDefault:"bcrypt"`
	BcryptCost                    int           `env:"BCRYPT_COST" envDefault:"10"`
}

// MailConfig holds the outgoing mail settings.
type MailConfig struct {
	Driver        string `env:"MAIL_DRIVER" envDefault:"log"`
	From          string `env:"MAIL_FROM" envDefault:"Starter Server <no-reply@localhost>"`
	ProductLink   string `env:"MAIL_PRODUCT_LINK" envDefault:"http://localhost:3000"`
	MailgunDomain string `env:"MAILGUN_DOMAIN"`
	MailgunAPIKey string `env:"MAILGUN_API_KEY"`
	MailgunEU     bool   `env:"MAILGUN_EU" envDefault:"false"`
	SMTPHost      string `env:"SMTP_HOST"`
	SMTPPort      int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername  string `env:"SMTP_USERNAME"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`
}

// HTTPConfig holds settings for the HTTP surface.
type HTTPConfig struct {
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"2m"`
	MaxBodyBytes      int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	AllowOrigins      []string      `env:"CORS_ALLOW_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	// TrustedProxies may set X-Forwarded-For, none by default.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// ValidationConfig toggles the optional validation extras.
type ValidationConfig struct {
	EmailMXCheck  bool   `env:"EMAIL_MX_CHECK" envDefault:"false"`
	VerifierEmail string `env:"EMAIL_VERIFIER" envDefault:"no-reply@localhost"`
}

// Load reads envFile if it exists and parses the environment into a Config.
func Load(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		log.Info("No .env file found, using environment variables from system")
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// PostgresURL is the connection string of the PostgreSQL engine.
func (c *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", c.Host, c.Port, c.User, c.Password, c.Name)
}

// IsProduction reports whether mails should actually leave the process.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// APIVersion names the running build, PR-<n> for preview deployments.
func (c *Config) APIVersion() string {
	if c.PRNumber == "" {
		return "main:latest"
	}
	return "PR-" + c.PRNumber
}

// IsTest reports whether the server runs under the test environment.
func (c *Config) IsTest() bool {
	return c.Environment == EnvTest
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverMongo:
		if c.DB.MongoURI == "" {
			return fmt.Errorf("missing MONGO_URI environment variable")
		}
	case DriverPostgres:
		if c.DB.Host == "" || c.DB.User == "" || c.DB.Password == "" || c.DB.Name == "" {
			return fmt.Errorf("database environment variables not set")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver)
	}

	switch c.Mail.Driver {
	case MailDriverMailgun:
		if c.IsProduction() && (c.Mail.MailgunDomain == "" || c.Mail.MailgunAPIKey == "") {
			return fmt.Errorf("missing MAILGUN_DOMAIN or MAILGUN_API_KEY environment variable")
		}
	case MailDriverSMTP:
		if c.IsProduction() && c.Mail.SMTPHost == "" {
			return fmt.Errorf("missing SMTP_HOST environment variable")
		}
	case MailDriverLog:
	default:
		return fmt.Errorf("unknown MAIL_DRIVER %q", c.Mail.Driver)
	}

	switch c.Auth.PasswordHasher {
	case HasherBcrypt, HasherArgon2:
	default:
		return fmt.Errorf("unknown PASSWORD_HASHER %q", c.Auth.PasswordHasher)
	}

	if c.Auth.EmailVerificationLinkDuration <= 0 || c.Auth.PasswordResetLinkDuration <= 0 {
		return fmt.Errorf("verification link durations must be positive")
	}

	if c.Auth.FrontendURL == "" {
		return fmt.Errorf("missing FE_URL environment variable")
	}

	return nil
}
