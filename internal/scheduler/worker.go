package scheduler

import (
	"context"
	"fmt"

	"ngo_erp_backend/platform/config"
	"ngo_erp_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type IdentityRemover interface {
	DeleteIdentity(ctx context.Context, userID uuid.UUID) error
}

type OrganizationRemover interface {
	DeleteOrganization(ctx context.Context, organizationID uuid.UUID) error
}

type ProfileRemover interface {
	DeleteProfile(ctx context.Context, userID uuid.UUID) error
}

// CompensationTargets are the stores a compensation task can delete from.
// Every delete must succeed when the row is already gone.
type CompensationTargets struct {
	Identities    IdentityRemover
	Organizations OrganizationRemover
	Profiles      ProfileRemover
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	targets CompensationTargets
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, targets CompensationTargets, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		targets: targets,
		log:     log,
	}

	mux.HandleFunc(TaskRegistrationCompensate, w.handleCompensation)

	return w, nil
}

// Run processes compensation tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start compensation worker: %w", err)
	}
	w.log.Info("compensation worker started")

	<-ctx.Done()
	w.server.Shutdown()
	w.log.Info("compensation worker stopped")
	return nil
}

func (w *Worker) handleCompensation(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCompensationPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	id, err := uuid.Parse(payload.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	switch payload.Resource {
	case ResourceIdentity:
		err = w.targets.Identities.DeleteIdentity(ctx, id)
	case ResourceOrganization:
		err = w.targets.Organizations.DeleteOrganization(ctx, id)
	case ResourceProfile:
		err = w.targets.Profiles.DeleteProfile(ctx, id)
	default:
		return fmt.Errorf("%w: unknown compensation resource %q", asynq.SkipRetry, payload.Resource)
	}

	w.log.WithContext(ctx).Compensation("registration_retry", payload.Resource, err)
	return err
}
