package events

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"ngo_erp_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingEvent struct {
	Meta
}

func (pingEvent) EventName() string { return "test.ping" }

func TestPublishRunsAllHandlers(t *testing.T) {
	bus := NewInMemoryBus(logger.NewWithWriter("production", io.Discard))
	var calls atomic.Int32

	for i := 0; i < 3; i++ {
		bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
			calls.Add(1)
			return nil
		}))
	}

	bus.Publish(context.Background(), pingEvent{Meta: NewMeta()})
	bus.Wait()

	assert.Equal(t, int32(3), calls.Load())
}

func TestPublishSurvivesCancelledContext(t *testing.T) {
	bus := NewInMemoryBus(logger.NewWithWriter("production", io.Discard))
	var sawCancel atomic.Bool
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, _ Event) error {
		sawCancel.Store(ctx.Err() != nil)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, pingEvent{})
	bus.Wait()

	assert.False(t, sawCancel.Load())
}

func TestPublishSyncJoinsErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)
	first := errors.New("first")
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error { return first }))
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error { return nil }))

	err := bus.PublishSync(context.Background(), pingEvent{})
	require.Error(t, err)
	assert.ErrorIs(t, err, first)
}

func TestPublishLogsFailedHandlerWithEventID(t *testing.T) {
	var buf bytes.Buffer
	bus := NewInMemoryBus(logger.NewWithWriter("production", &buf))
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
		return errors.New("mailbox full")
	}))

	event := pingEvent{Meta: NewMeta()}
	bus.Publish(context.Background(), event)
	bus.Wait()

	out := buf.String()
	assert.Contains(t, out, "event handler failed")
	assert.Contains(t, out, event.ID)
	assert.Contains(t, out, "mailbox full")
}

func TestInMemoryBusSatisfiesBus(t *testing.T) {
	var bus Bus = NewInMemoryBus(nil)
	bus.Publish(context.Background(), pingEvent{Meta: NewMeta()})
	bus.Wait()
}
