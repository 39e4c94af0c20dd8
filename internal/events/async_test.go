package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/local_store/pkg/logging"
)

// stalled holds every publish until release is closed or the context ends.
type stalled struct {
	release chan struct{}

	mu        sync.Mutex
	topics    []string
	deadlines []bool
	closed    bool
	err       error
}

func newStalled() *stalled { return &stalled{release: make(chan struct{})} }

func (s *stalled) Publish(ctx context.Context, topic, key string, event any) error {
	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	_, ok := ctx.Deadline()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = append(s.topics, topic)
	s.deadlines = append(s.deadlines, ok)
	return s.err
}

func (s *stalled) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func TestAsync_PublishDoesNotWaitOnBroker(t *testing.T) {
	inner := newStalled()
	a := NewAsync(inner, 8, time.Minute)

	start := time.Now()
	require.NoError(t, a.Publish(context.Background(), TopicCart, "k", CartEvent{Type: "cart_item_added"}))
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(inner.release)
	require.NoError(t, a.Close())
	assert.Equal(t, []string{TopicCart}, inner.topics)
	assert.Equal(t, []bool{true}, inner.deadlines)
	assert.True(t, inner.closed)
}

func TestAsync_CloseDrainsQueue(t *testing.T) {
	inner := newStalled()
	close(inner.release)
	a := NewAsync(inner, 8, time.Minute)

	for i := 0; i < 5; i++ {
		require.NoError(t, a.Publish(context.Background(), TopicPayment, "k", PaymentEvent{Type: "payment_recorded"}))
	}
	require.NoError(t, a.Close())
	assert.Len(t, inner.topics, 5)

	assert.ErrorIs(t, a.Publish(context.Background(), TopicPayment, "k", nil), ErrClosed)
	assert.NoError(t, a.Close())
}

func TestAsync_QueueFull(t *testing.T) {
	inner := newStalled()
	a := NewAsync(inner, 1, time.Minute)
	t.Cleanup(func() {
		close(inner.release)
		_ = a.Close()
	})

	var full bool
	for i := 0; i < 3; i++ {
		if err := a.Publish(context.Background(), TopicCart, "k", nil); errors.Is(err, ErrQueueFull) {
			full = true
		}
	}
	assert.True(t, full)
}

func TestAsync_DeliveryTimeout(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.IntoContext(context.Background(), logging.NewWithWriter(&buf, "info"))

	a := NewAsync(newStalled(), 8, 20*time.Millisecond)
	require.NoError(t, a.Publish(ctx, TopicUser, "k", UserEvent{Type: "user_registered"}))
	require.NoError(t, a.Close())

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "publish_event_error", rec["msg"])
	assert.Equal(t, TopicUser, rec["topic"])
	assert.Equal(t, context.DeadlineExceeded.Error(), rec["error"])
}

func TestAsync_CancelledRequestStillDelivers(t *testing.T) {
	inner := newStalled()
	close(inner.release)
	a := NewAsync(inner, 8, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Publish(ctx, TopicCart, "k", nil))
	cancel()

	require.NoError(t, a.Close())
	assert.Equal(t, []string{TopicCart}, inner.topics)
}
