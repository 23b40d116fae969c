// Command migrate applies or rolls back the PostgreSQL schema.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"

	"starter-server/internal/config"
	"starter-server/internal/migrations"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up, down or status")
	envFile := flag.String("env", ".env", "path of the .env file")
	flag.Parse()

	if err := run(context.Background(), *envFile, *direction); err != nil {
		log.Fatal("Migration failed: ", err)
	}
	log.Infof("Migration %s finished", *direction)
}

func run(ctx context.Context, envFile, direction string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if cfg.DB.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations only apply to the %s driver, DB_DRIVER is %s", config.DriverPostgres, cfg.DB.Driver)
	}

	connConfig, err := pgx.ParseConfig(cfg.DB.PostgresURL())
	if err != nil {
		return err
	}
	db := stdlib.OpenDB(*connConfig)
	defer db.Close()

	switch direction {
	case "up":
		return migrations.Up(ctx, db)
	case "down":
		return migrations.Down(ctx, db)
	case "status":
		return migrations.Status(ctx, db)
	default:
		return fmt.Errorf("unknown direction %q", direction)
	}
}
