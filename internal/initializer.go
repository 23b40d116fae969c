package internal

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"starter-server/internal/config"
	"starter-server/internal/managers"
	"starter-server/internal/routing"
	"starter-server/internal/utils"
)

const (
	envFile         = ".env"
	shutdownTimeout = 10 * time.Second
)

func Init() {
	cfg, err := config.Load(envFile)
	if err != nil {
		log.Fatal("Error loading configuration: ", err)
	}

	setLogLevel(cfg.LogLevel)
	utils.SetServiceName(cfg.AppName)

	// Connect to database
	databaseMgr, err := managers.NewDatabaseManager(&cfg.DB)
	if err != nil {
		log.Fatal("Error initializing database manager: ", err)
	}
	if err := databaseMgr.Connect(context.Background()); err != nil {
		log.Fatal("Error connecting to database: ", err)
	}

	// Initialize mail manager
	mailMgr := managers.NewMailManager(cfg)

	// Initialize JWT manager
	jwtMgr, err := managers.NewJWTManagerFromFile(cfg.Auth.KeyPairPath, cfg.Auth.TokenExpiresIn)
	if err != nil {
		log.Fatal("Error initializing JWT manager: ", err)
	}

	hasher, err := managers.NewPasswordHasher(&cfg.Auth)
	if err != nil {
		log.Fatal("Error initializing password hasher: ", err)
	}

	if cfg.Validate.EmailMXCheck {
		if err := utils.GetValidator().EnableMXCheck(cfg.Validate.VerifierEmail); err != nil {
			log.Fatal("Error enabling email MX check: ", err)
		}
	}

	// Initialize router
	r := routing.InitRouter(cfg, routing.Dependencies{
		DatabaseMgr: databaseMgr,
		MailMgr:     mailMgr,
		JWTMgr:      jwtMgr,
		Hasher:      hasher,
		Metrics:     managers.NewMetricsManager(),
	})
	log.Println("Initialized router")

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server on the specified port
	go func() {
		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Error starting server: ", err)
		}
	}()

	// Handle interrupt signal gracefully
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Error shutting down server: ", err)
	}
	if err := databaseMgr.Close(ctx); err != nil {
		log.Error("Error closing database: ", err)
	}
	log.Println("Server stopped")
}

func setLogLevel(logLevel string) {
	switch logLevel {
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
	case "INFO":
		log.SetLevel(log.InfoLevel)
	case "WARN":
		log.SetLevel(log.WarnLevel)
	case "ERROR":
		log.SetLevel(log.ErrorLevel)
	case "FATAL":
		log.SetLevel(log.FatalLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	log.SetReportCaller(true)

	log.SetOutput(os.Stdout)
}
