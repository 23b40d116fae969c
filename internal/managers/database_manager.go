// package managers wires the external collaborators of the server: the database engines,
// the credential signer, the password hasher and the mail sender.
package managers

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"starter-server/internal/config"
	"starter-server/internal/interfaces"
	"starter-server/internal/migrations"
	"starter-server/internal/repositories"
)

// DatabaseMgr defines the interface for database management.
// It owns the connection lifecycle and vends the repositories bound to it.
type DatabaseMgr interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error
	Drop(ctx context.Context) error
	Ping(ctx context.Context) error
	Users() repositories.UserRepository
	VerificationTokens() repositories.VerificationTokenRepository
}

// NewDatabaseManager returns the DatabaseMgr selected by DB_DRIVER. The manager is not connected yet.
func NewDatabaseManager(cfg *config.DatabaseConfig) (DatabaseMgr, error) {
	log.Info("Initializing database manager")

	switch cfg.Driver {
	case config.DriverMongo:
		return &MongoDatabaseManager{uri: cfg.MongoURI, database: cfg.MongoDatabase}, nil
	case config.DriverPostgres:
		return &PostgresDatabaseManager{url: cfg.PostgresURL()}, nil
	case config.DriverMemory:
		return NewMemoryDatabaseManager(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// MongoDatabaseManager keeps users and tokens in a MongoDB database.
type MongoDatabaseManager struct {
	uri      string
	database string
	client   *mongo.Client
	db       *mongo.Database
}

func (m *MongoDatabaseManager) Connect(ctx context.Context) error {
	client, err := mongo.Connect(options.Client().ApplyURI(m.uri))
	if err != nil {
		return errors.Wrap(err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return errors.Wrap(err, "ping mongo")
	}

	m.client = client
	m.db = client.Database(m.database)

	if err := repositories.EnsureUserIndexes(ctx, m.db); err != nil {
		return err
	}
	if err := repositories.EnsureVerificationTokenIndexes(ctx, m.db); err != nil {
		return err
	}

	log.Infof("Connected to mongo database %s", m.database)
	return nil
}

func (m *MongoDatabaseManager) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

func (m *MongoDatabaseManager) Drop(ctx context.Context) error {
	return m.db.Drop(ctx)
}

func (m *MongoDatabaseManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoDatabaseManager) Users() repositories.UserRepository {
	return repositories.NewUserMongoRepository(m.db)
}

func (m *MongoDatabaseManager) VerificationTokens() repositories.VerificationTokenRepository {
	return repositories.NewVerificationTokenMongoRepository(m.db)
}

// PostgresDatabaseManager is responsible for managing the PostgreSQL connection pool.
type PostgresDatabaseManager struct {
	url  string
	Pool interfaces.PgxPoolIface
}

// NewPostgresDatabaseManagerFromPool wraps an already opened pool, e.g. a pgxmock pool.
func NewPostgresDatabaseManagerFromPool(pool interfaces.PgxPoolIface) *PostgresDatabaseManager {
	return &PostgresDatabaseManager{Pool: pool}
}

func (m *PostgresDatabaseManager) Connect(ctx context.Context) error {
	if m.Pool != nil {
		return nil
	}

	poolConfig, err := pgxpool.ParseConfig(m.url)
	if err != nil {
		return errors.Wrap(err, "configure database")
	}

	poolConfig.MinConns = 5
	poolConfig.MaxConns = 30
	poolConfig.MaxConnIdleTime = time.Minute * 2
	poolConfig.HealthCheckPeriod = time.Minute * 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	if err := migrations.Up(ctx, db); err != nil {
		pool.Close()
		return errors.Wrap(err, "run migrations")
	}

	m.Pool = pool
	log.Info("Connected to postgres database")
	return nil
}

func (m *PostgresDatabaseManager) Close(_ context.Context) error {
	if m.Pool != nil {
		m.Pool.Close()
	}
	return nil
}

func (m *PostgresDatabaseManager) Drop(ctx context.Context) error {
	_, err := m.Pool.Exec(ctx, "TRUNCATE TABLE verification_tokens, users")
	return err
}

func (m *PostgresDatabaseManager) Ping(ctx context.Context) error {
	return m.Pool.Ping(ctx)
}

func (m *PostgresDatabaseManager) Users() repositories.UserRepository {
	return repositories.NewUserPostgresRepository(m.Pool)
}

func (m *PostgresDatabaseManager) VerificationTokens() repositories.VerificationTokenRepository {
	return repositories.NewVerificationTokenPostgresRepository(m.Pool)
}

// MemoryDatabaseManager keeps everything in process memory.
type MemoryDatabaseManager struct {
	store *repositories.MemoryStore
}

func NewMemoryDatabaseManager() *MemoryDatabaseManager {
	return &MemoryDatabaseManager{store: repositories.NewMemoryStore()}
}

func (m *MemoryDatabaseManager) Connect(_ context.Context) error {
	log.Info("Using in-memory database")
	return nil
}

func (m *MemoryDatabaseManager) Close(_ context.Context) error { return nil }

func (m *MemoryDatabaseManager) Drop(_ context.Context) error {
	m.store.Reset()
	return nil
}

func (m *MemoryDatabaseManager) Ping(_ context.Context) error { return nil }

func (m *MemoryDatabaseManager) Users() repositories.UserRepository {
	return m.store.Users()
}

func (m *MemoryDatabaseManager) VerificationTokens() repositories.VerificationTokenRepository {
	return m.store.VerificationTokens()
}
