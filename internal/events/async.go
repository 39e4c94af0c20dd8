package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Skotchmaster/local_store/pkg/logging"
)

var (
	ErrQueueFull = errors.New("events: publish queue is full")
	ErrClosed    = errors.New("events: publisher is closed")
)

const defaultQueueSize = 1024

type envelope struct {
	ctx   context.Context
	topic string
	key   string
	event any
}

// Async queues events for a single background worker that publishes them
// to the wrapped broker. Publish never waits on the broker; when the queue is
// full the event is dropped and ErrQueueFull returned.
type Async struct {
	inner   Publisher
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan envelope
	done   chan struct{}
}

func NewAsync(inner Publisher, size int, timeout time.Duration) *Async {
	if size <= 0 {
		size = defaultQueueSize
	}
	if timeout <= 0 {
		timeout = publishTimeout
	}
	a := &Async{
		inner:   inner,
		timeout: timeout,
		queue:   make(chan envelope, size),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) Publish(ctx context.Context, topic, key string, event any) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- envelope{ctx: context.WithoutCancel(ctx), topic: topic, key: key, event: event}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *Async) run() {
	defer close(a.done)
	for env := range a.queue {
		a.deliver(env)
	}
}

func (a *Async) deliver(env envelope) {
	ctx, cancel := context.WithTimeout(env.ctx, a.timeout)
	defer cancel()

	if err := a.inner.Publish(ctx, env.topic, env.key, env.event); err != nil {
		logging.FromContext(env.ctx).Error("publish_event_error", "topic", env.topic, "key", env.key, "error", err)
		return
	}
	logging.FromContext(env.ctx).Debug("event_published", "topic", env.topic, "key", env.key)
}

// Close stops accepting events, waits for the queued ones to be delivered,
// then closes the broker connection.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	<-a.done
	return a.inner.Close()
}
