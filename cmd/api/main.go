package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-auth-nosql/internal/application/verification"
	"github.com/go-auth-nosql/internal/config"
	"github.com/go-auth-nosql/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-auth-nosql/internal/infrastructure/jwt"
	redisinfra "github.com/go-auth-nosql/internal/infrastructure/redis"
	"github.com/go-auth-nosql/internal/infrastructure/smtp"
	"github.com/go-auth-nosql/internal/infrastructure/sns"
	"github.com/go-auth-nosql/internal/pkg/logging"
	"github.com/go-auth-nosql/internal/pkg/password"
	transporthttp "github.com/go-auth-nosql/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := logging.Setup("go-auth-nosql", cfg.AppEnv, cfg.LogFormat, cfg.LogLevel, nil)
	if envErr != nil {
		logger.Info("no .env file found, reading from environment")
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		logger.Error("dynamodb client", "error", err)
		os.Exit(1)
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	tokens, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		logger.Error("jwt provider", "error", err)
		os.Exit(1)
	}

	var codes transporthttp.VerificationRepository
	switch cfg.VerificationBackend {
	case "redis":
		rdb, err := redisinfra.NewClient(ctx, cfg)
		if err != nil {
			logger.Error("redis client", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		codes = redisinfra.NewVerificationStore(rdb)
	default:
		codes = dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.VerificationCodes)
	}

	var notifier verification.Notifier
	switch cfg.Notifier {
	case "sns":
		n, err := sns.NewNotifier(ctx, cfg)
		if err != nil {
			logger.Error("sns notifier", "error", err)
			os.Exit(1)
		}
		notifier = n
	default:
		notifier = smtp.NewMailer(cfg)
	}

	deps := &transporthttp.Deps{
		AccountRepo:      dynamo.NewAccountRepo(dynamoClient, cfg.DynamoTables.Accounts),
		VerificationRepo: codes,
		Notifier:         notifier,
		Hasher:           password.NewHasher(cfg.BcryptCost),
		Tokens:           tokens,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.AppPort,
			"verification_backend", cfg.VerificationBackend, "notifier", cfg.Notifier)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
		return
	}
	logger.Info("server stopped")
}
