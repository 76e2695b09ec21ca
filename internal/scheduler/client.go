package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"ngo_erp_backend/platform/config"
	"ngo_erp_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const (
	compensationMaxRetry = 10
	compensationTimeout  = 30 * time.Second
)

type Client struct {
	client *asynq.Client
	queue  string
}

// CompensationQueue accepts failed registration rollbacks for retry.
type CompensationQueue interface {
	EnqueueCompensation(ctx context.Context, resource string, id uuid.UUID) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueCompensation schedules a retried delete of the given resource.
func (c *Client) EnqueueCompensation(ctx context.Context, resource string, id uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewCompensationTask(CompensationPayload{Resource: resource, ID: id.String()})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(compensationMaxRetry),
		asynq.Timeout(compensationTimeout),
	)
	return err
}

// LogQueue is used when Redis is not configured: failed rollbacks are only
// logged so that an operator can remove the leftovers by hand.
type LogQueue struct {
	log *logger.Logger
}

func NewLogQueue(log *logger.Logger) *LogQueue {
	return &LogQueue{log: log}
}

func (q *LogQueue) EnqueueCompensation(ctx context.Context, resource string, id uuid.UUID) error {
	q.log.WithContext(ctx).Error("compensation requires manual cleanup",
		"resource", resource,
		"id", id.String(),
	)
	return nil
}

var (
	_ CompensationQueue = (*Client)(nil)
	_ CompensationQueue = (*LogQueue)(nil)
)

func queueName(cfg config.SchedulerConfig) string {
	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	return queue
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
