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

	"ngo_erp_backend/internal/adapters"
	"ngo_erp_backend/internal/adapters/storage"
	"ngo_erp_backend/internal/auth"
	"ngo_erp_backend/internal/documents"
	documentservice "ngo_erp_backend/internal/documents/service"
	"ngo_erp_backend/internal/email"
	"ngo_erp_backend/internal/events"
	apphttp "ngo_erp_backend/internal/http"
	"ngo_erp_backend/internal/http/router"
	"ngo_erp_backend/internal/identity"
	"ngo_erp_backend/internal/notification"
	"ngo_erp_backend/internal/registration"
	regservice "ngo_erp_backend/internal/registration/service"
	"ngo_erp_backend/internal/scheduler"
	"ngo_erp_backend/migrations"
	"ngo_erp_backend/platform/config"
	"ngo_erp_backend/platform/db"
	"ngo_erp_backend/platform/logger"
	"ngo_erp_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS, log)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()
	objects := initObjectStore(ctx, cfg, log)

	queue, closeQueue := initCompensationQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	// ========================================================================
	// Domain Modules
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, val, log)
	identityModule := identity.NewModule(pool, log)
	authModule.Service().SetMembershipReader(adapters.NewMembershipReader(identityModule.Service()))

	tenancy := adapters.NewTenancyStore(identityModule.Service())
	registrationSvc := regservice.New(regservice.Stores{
		Identities:    adapters.NewAuthIdentityStore(authModule.Service()),
		Organizations: tenancy,
		Profiles:      tenancy,
		Modules:       tenancy,
	}, queue, eventBus, regservice.Timeouts{
		Step: cfg.GetRegistrationStepTimeout(),
		Undo: cfg.GetRegistrationUndoTimeout(),
	}, log)
	registrationModule := registration.NewModule(registrationSvc)

	documentsModule := documents.NewModule(pool, objects, identityModule.Service(), cfg.GetMinioBucketDocuments(), eventBus, val, log)

	notificationModule := notification.New(email.NewSender(cfg), authModule.Service(), cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		Verifier: authModule.Service(),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			identityModule,
			registrationModule,
			documentsModule,
			notificationModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		notificationModule.SSE().Close()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	eventBus.Wait()
	log.Info("server stopped")
}

// initObjectStore returns nil when MinIO is not configured so that the
// documents module reports itself as misconfigured instead of panicking.
func initObjectStore(ctx context.Context, cfg *config.Config, log *logger.Logger) documentservice.ObjectStore {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; document storage disabled")
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	bucket := cfg.GetMinioBucketDocuments()
	if err := withRetry(ctx, log, "ensure documents bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	return storageSvc
}

func initCompensationQueue(cfg config.SchedulerConfig, log *logger.Logger) (regservice.CompensationQueue, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; failed compensations are only logged")
		return scheduler.NewLogQueue(log), nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize compensation queue client", "error", err)
		return scheduler.NewLogQueue(log), nil
	}

	return client, func() {
		_ = client.Close()
	}
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
