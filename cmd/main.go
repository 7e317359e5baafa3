// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Shivanand-hulikatti/eventhub/internal/auth"
	"github.com/Shivanand-hulikatti/eventhub/internal/config"
	"github.com/Shivanand-hulikatti/eventhub/internal/database"
	"github.com/Shivanand-hulikatti/eventhub/internal/handler"
	"github.com/Shivanand-hulikatti/eventhub/internal/logger"
	"github.com/Shivanand-hulikatti/eventhub/internal/mailer"
	"github.com/Shivanand-hulikatti/eventhub/internal/ratelimit"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository/memory"
	mongorepo "github.com/Shivanand-hulikatti/eventhub/internal/repository/mongo"
	"github.com/Shivanand-hulikatti/eventhub/internal/repository/postgres"
	"github.com/Shivanand-hulikatti/eventhub/internal/service"
	"github.com/Shivanand-hulikatti/eventhub/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New("eventhub", cfg.SlogLevel())

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Connect to the store ───────────────────────────────────────────
	users, events, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info("store ready", "driver", cfg.StoreDriver)

	// ── 2. Wire up layers ────────────────────────────────────────────────
	images, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		return err
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	smtp := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.MailUser, cfg.MailPassword)

	limiter := newLimiter(ctx, cfg, log)
	defer limiter.Close()

	router := handler.NewRouter(handler.Deps{
		Log:         log,
		FrontendURL: cfg.FrontendURL,
		UploadDir:   cfg.UploadDir,
		Gate:        auth.NewGate(tokens, users),
		Users:       service.NewUserService(users, tokens, log),
		Events:      service.NewEventService(events, users, images, log),
		Contact:     service.NewContactService(smtp, cfg.MailUser, log),
		Images:      images,
		Limiter:     limiter,
		Metrics:     handler.NewMetrics(),
	})

	// ── 3. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repository.UserRepository, repository.EventRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		return mongorepo.NewUserRepository(db), mongorepo.NewEventRepository(db), closeFn, nil

	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return postgres.NewUserRepository(pool), postgres.NewEventRepository(pool), pool.Close, nil

	default:
		log.Warn("using in-memory store; data is lost on restart")
		s := memory.New()
		return s.Users(), s.Events(), func() {}, nil
	}
}

// newLimiter prefers a shared Redis limiter and falls back to process memory.
func newLimiter(ctx context.Context, cfg config.Config, log *slog.Logger) ratelimit.Limiter {
	if cfg.RedisAddr != "" {
		rl, err := ratelimit.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RateLimitRPS, cfg.RateLimitBurst, log)
		if err == nil {
			return rl
		}
		log.Warn("redis rate limiter unavailable, using memory", "error", err)
	}
	return ratelimit.NewMemory(cfg.RateLimitRPS, cfg.RateLimitBurst)
}
