package scheduler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"ngo_erp_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	redisURL string
}

func (c testConfig) GetRedisURL() string       { return c.redisURL }
func (c testConfig) GetRedisTLSInsecure() bool { return false }
func (c testConfig) GetAsynqQueueName() string { return "compensation" }
func (c testConfig) GetAsynqConcurrency() int  { return 1 }

func TestEnqueueCompensation(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig{redisURL: "redis://" + mr.Addr()}

	client, err := NewClient(cfg)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	id := uuid.New()
	require.NoError(t, client.EnqueueCompensation(context.Background(), ResourceOrganization, id))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer func() { _ = inspector.Close() }()

	tasks, err := inspector.ListPendingTasks("compensation")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, TaskRegistrationCompensate, tasks[0].Type)
	assert.Equal(t, compensationMaxRetry, tasks[0].MaxRetry)

	payload, err := ParseCompensationPayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	require.NoError(t, err)
	assert.Equal(t, CompensationPayload{Resource: ResourceOrganization, ID: id.String()}, payload)
}

func TestNewClientRequiresRedis(t *testing.T) {
	_, err := NewClient(testConfig{})
	assert.Error(t, err)
}

func TestNilClientIsNoop(t *testing.T) {
	var client *Client
	assert.NoError(t, client.EnqueueCompensation(context.Background(), ResourceIdentity, uuid.New()))
	assert.NoError(t, client.Close())
}

type removals struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (r *removals) record(kind string, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, kind+":"+id.String())
	return r.err
}

func (r *removals) DeleteIdentity(_ context.Context, id uuid.UUID) error {
	return r.record(ResourceIdentity, id)
}

func (r *removals) DeleteOrganization(_ context.Context, id uuid.UUID) error {
	return r.record(ResourceOrganization, id)
}

func (r *removals) DeleteProfile(_ context.Context, id uuid.UUID) error {
	return r.record(ResourceProfile, id)
}

func newTestWorker(r *removals) *Worker {
	return &Worker{
		targets: CompensationTargets{Identities: r, Organizations: r, Profiles: r},
		log:     logger.NewWithWriter("test", io.Discard),
	}
}

func compensationTask(t *testing.T, resource, id string) *asynq.Task {
	t.Helper()
	task, err := NewCompensationTask(CompensationPayload{Resource: resource, ID: id})
	require.NoError(t, err)
	return task
}

func TestHandleCompensationDispatchesByResource(t *testing.T) {
	r := &removals{}
	w := newTestWorker(r)
	id := uuid.New()

	for _, resource := range []string{ResourceProfile, ResourceOrganization, ResourceIdentity} {
		require.NoError(t, w.handleCompensation(context.Background(), compensationTask(t, resource, id.String())))
	}

	assert.Equal(t, []string{
		ResourceProfile + ":" + id.String(),
		ResourceOrganization + ":" + id.String(),
		ResourceIdentity + ":" + id.String(),
	}, r.deleted)
}

func TestHandleCompensationSkipsRetryForBadPayload(t *testing.T) {
	w := newTestWorker(&removals{})

	err := w.handleCompensation(context.Background(), compensationTask(t, "invoice", uuid.NewString()))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = w.handleCompensation(context.Background(), compensationTask(t, ResourceIdentity, "not-a-uuid"))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleCompensationReturnsStoreErrorForRetry(t *testing.T) {
	storeErr := errors.New("connection refused")
	w := newTestWorker(&removals{err: storeErr})

	err := w.handleCompensation(context.Background(), compensationTask(t, ResourceIdentity, uuid.NewString()))

	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

type purger struct {
	before time.Time
	calls  int
	err    error
}

func (p *purger) DeleteExpiredUserTokens(_ context.Context, before time.Time) (int64, error) {
	p.before = before
	p.calls++
	if p.err != nil {
		return 0, p.err
	}
	return 3, nil
}

func TestTokenCleanupUsesRetention(t *testing.T) {
	p := &purger{}
	c := NewTokenCleanup(p, logger.NewWithWriter("test", io.Discard), 0, 48*time.Hour)
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.cleanup(context.Background())

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, now.Add(-48*time.Hour), p.before)
	assert.Equal(t, defaultTokenCleanupInterval, c.interval)
}

func TestTokenCleanupLogsDatabaseError(t *testing.T) {
	var buf bytes.Buffer
	c := NewTokenCleanup(&purger{err: errors.New("relation does not exist")}, logger.NewWithWriter("production", &buf), time.Minute, time.Hour)

	c.cleanup(context.Background())

	assert.Contains(t, buf.String(), `"msg":"database_error"`)
	assert.Contains(t, buf.String(), "delete_expired_user_tokens")
}
