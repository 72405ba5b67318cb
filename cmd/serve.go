package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	_ "github.com/ecommerce/auth-service/docs"
	"github.com/ecommerce/auth-service/internal/api"
	"github.com/ecommerce/auth-service/internal/api/handler"
	"github.com/ecommerce/auth-service/internal/core/password"
	"github.com/ecommerce/auth-service/internal/core/ports"
	"github.com/ecommerce/auth-service/internal/core/service"
	"github.com/ecommerce/auth-service/internal/core/token"
	"github.com/ecommerce/auth-service/internal/infrastructure/config"
	mongostore "github.com/ecommerce/auth-service/internal/infrastructure/db/mongo"
	pgstore "github.com/ecommerce/auth-service/internal/infrastructure/db/postgres"
	redisstore "github.com/ecommerce/auth-service/internal/infrastructure/db/redis"
	"github.com/ecommerce/auth-service/internal/infrastructure/queue"
	"github.com/ecommerce/auth-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// store bundles the persistence adapters selected by STORE_DRIVER.
type store struct {
	users  ports.UserRepository
	events ports.AuthEventRepository
	pinger handler.Pinger
	close  func()
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "auth-service",
	})

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	keys, err := newKeyring(cfg)
	if err != nil {
		return err
	}
	hasher := password.NewHasher(cfg.Auth.BcryptCost)
	go newKeyReloader(keys, cfg.Auth.JWTSecret, log).watch(ctx)

	// Workers outlive the signal context so queued events drain on shutdown.
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, st.events, log)
	dispatcher.Start(context.Background())
	defer dispatcher.Close()

	opts := []service.Option{service.WithEvents(dispatcher)}
	readiness := []handler.Pinger{st.pinger}

	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, login throttling disabled")
		} else {
			defer rdb.Close()
			opts = append(opts, service.WithThrottle(redisstore.NewLoginThrottle(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockout)))
			readiness = append(readiness, redisstore.NewPinger(rdb))
		}
	}

	e := api.NewRouter(api.Dependencies{
		Auth:      service.NewAuthService(st.users, hasher, keys, log, opts...),
		Users:     service.NewUserService(st.users, hasher, dispatcher, log),
		Guard:     service.NewGuard(keys, nil),
		Readiness: readiness,
		Log:       log,
		Swagger:   cfg.Swagger,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func newKeyring(cfg *config.Config) (*token.Keyring, error) {
	var previous []byte
	if cfg.Auth.JWTPreviousSecret != "" {
		previous = []byte(cfg.Auth.JWTPreviousSecret)
	}
	return token.NewKeyring(token.Config{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.TokenTTL,
		Issuer: cfg.Auth.Issuer,
	}, previous)
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		if err := pgstore.MigrateUp(cfg.Postgres.DSN); err != nil {
			return nil, err
		}
		db, err := pgstore.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("connected to postgres")
		return &store{
			users:  pgstore.NewUserRepository(db),
			events: pgstore.NewEventRepository(db),
			pinger: pgstore.NewPinger(db),
			close:  func() { _ = db.Close() },
		}, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		users := mongostore.NewUserRepository(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		return &store{
			users:  users,
			events: mongostore.NewEventRepository(db),
			pinger: mongostore.NewPinger(db),
			close:  func() { _ = client.Disconnect(context.Background()) },
		}, nil
	}
}
