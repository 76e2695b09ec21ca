package scheduler

import (
	"context"
	"time"

	"ngo_erp_backend/platform/logger"
)

const (
	defaultTokenCleanupInterval = time.Hour
	defaultTokenRetention       = 7 * 24 * time.Hour
)

// TokenPurger deletes one-time tokens that expired before the given time.
type TokenPurger interface {
	DeleteExpiredUserTokens(ctx context.Context, before time.Time) (int64, error)
}

// TokenCleanup periodically removes expired email verification tokens.
type TokenCleanup struct {
	repo      TokenPurger
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewTokenCleanup(repo TokenPurger, log *logger.Logger, interval, retention time.Duration) *TokenCleanup {
	if interval <= 0 {
		interval = defaultTokenCleanupInterval
	}
	if retention <= 0 {
		retention = defaultTokenRetention
	}

	return &TokenCleanup{
		repo:      repo,
		log:       log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

func (c *TokenCleanup) Run(ctx context.Context) {
	if c == nil || c.repo == nil {
		return
	}

	c.cleanup(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *TokenCleanup) cleanup(ctx context.Context) {
	deleted, err := c.repo.DeleteExpiredUserTokens(ctx, c.now().Add(-c.retention))
	if err != nil {
		c.log.WithContext(ctx).DatabaseError("delete_expired_user_tokens", err)
		return
	}

	if deleted > 0 {
		c.log.Info("token cleanup deleted expired tokens", "deleted", deleted)
	}
}
