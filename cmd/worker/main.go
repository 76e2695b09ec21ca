package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	authrepo "ngo_erp_backend/internal/auth/repository"
	authservice "ngo_erp_backend/internal/auth/service"
	identityrepo "ngo_erp_backend/internal/identity/repository"
	identityservice "ngo_erp_backend/internal/identity/service"
	"ngo_erp_backend/internal/scheduler"
	"ngo_erp_backend/platform/config"
	"ngo_erp_backend/platform/db"
	"ngo_erp_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	tokens := authrepo.New(pool)
	authSvc := authservice.New(tokens, cfg, log)
	identitySvc := identityservice.New(identityrepo.New(pool), log)

	g, gctx := errgroup.WithContext(ctx)

	cleanupInterval := getDurationEnv("TOKEN_CLEANUP_INTERVAL", time.Hour)
	retention := time.Duration(getPositiveIntEnv("TOKEN_CLEANUP_RETENTION_DAYS", 7)) * 24 * time.Hour
	tokenCleanup := scheduler.NewTokenCleanup(tokens, log, cleanupInterval, retention)
	g.Go(func() error {
		tokenCleanup.Run(gctx)
		return nil
	})

	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; compensation retries disabled")
	} else {
		worker, err := scheduler.NewWorker(cfg, scheduler.CompensationTargets{
			Identities:    authSvc,
			Organizations: identitySvc,
			Profiles:      identitySvc,
		}, log)
		if err != nil {
			log.Error("failed to initialize compensation worker", "error", err)
			panic("failed to initialize compensation worker: " + err.Error())
		}
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("worker error", "error", err)
		os.Exit(1)
	}
	log.Info("worker stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

func getPositiveIntEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
