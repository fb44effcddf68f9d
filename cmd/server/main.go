package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/api"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/api/handler"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/ports"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/service"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/infrastructure/crypto"
	mongostore "github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/infrastructure/db/mongo"
	pgstore "github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/infrastructure/db/postgres"
	redisstore "github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/infrastructure/db/redis"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/pkg/config"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "banque",
	})

	ctx := context.Background()
	health := map[string]handler.Pinger{}

	// Ledger store
	store, closeStore, err := openStore(ctx, cfg, health)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open ledger store")
	}
	defer closeStore()

	// Redis
	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() { _ = rdb.Close() }()
	health["redis"] = redisstore.Pinger{Client: rdb}
	sessions := redisstore.NewSessionStore(rdb, cfg.Security.SessionTTL)

	// Services
	credentials := service.NewCredentialService(store,
		crypto.NewBcryptScheme(cfg.Security.BcryptCost),
		[]ports.HashScheme{crypto.NewLegacySHA256Scheme()},
		logger.Component("credentials"))
	ledger := service.NewLedgerService(store, credentials, cfg.Ledger.AccountPrefix, logger.Component("ledger"))
	auth := service.NewAuthService(store, credentials, logger.Component("auth"))
	gate := service.NewAuthorizationGate(ledger, logger.Component("authorization"))

	if err := bootstrapManager(ctx, ledger, cfg.Bootstrap, log); err != nil {
		log.Fatal().Err(err).Msg("failed to seed the first manager")
	}

	e := api.NewRouter(api.Dependencies{
		Ledger:      gate,
		Auth:        auth,
		Credentials: credentials,
		Sessions:    sessions,
		Health:      health,
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    cfg.Security.SessionTTL,
		Logger:      logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Str("driver", cfg.StorageDriver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}
	log.Info().Msg("server exited properly")
}

// openStore connects the configured ledger backend, prepares its schema and
// registers it for the readiness probe.
func openStore(ctx context.Context, cfg *config.Config, health map[string]handler.Pinger) (ports.LedgerStore, func(), error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := pgstore.Open(ctx, pgstore.Config{
			DSN:          cfg.Postgres.DSN,
			MaxOpenConns: cfg.Postgres.MaxOpenConns,
			Timeout:      10 * time.Second,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := pgstore.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		store := pgstore.NewLedgerStore(db)
		health["postgres"] = store
		return store, func() { _ = db.Close() }, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  10 * time.Second,
		})
		if err != nil {
			return nil, nil, err
		}
		store := mongostore.NewLedgerStore(client, db)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		health["mongodb"] = mongostore.Pinger{Client: client}
		return store, func() { _ = client.Disconnect(context.Background()) }, nil
	}
}

// bootstrapManager creates the configured manager when the ledger has none,
// so that a fresh deployment can be administered.
func bootstrapManager(ctx context.Context, ledger ports.LedgerService, cfg config.BootstrapConfig, log zerolog.Logger) error {
	if cfg.ManagerID == "" {
		return nil
	}
	managers, err := ledger.ListManagers(ctx)
	if err != nil {
		return err
	}
	if len(managers) > 0 {
		return nil
	}

	_, err = ledger.CreateManager(ctx, ports.CreateManagerInput{
		UserID:   cfg.ManagerID,
		Password: cfg.ManagerPassword,
	})
	if errors.Is(err, domain.ErrDuplicateUser) {
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("user_id", cfg.ManagerID).Msg("seeded first manager")
	return nil
}
