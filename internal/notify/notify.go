// Package notify relays contact-form and newsletter submissions to the site
// owner. Delivery is best effort: callers enqueue on a Dispatcher and never
// wait on, or fail because of, the transport.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Kind identifies the submission being relayed.
type Kind string

const (
	KindContact   Kind = "contact"
	KindSubscribe Kind = "subscribe"
)

// Payload carries the submitted form. Subscribe uses Email only.
type Payload struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message,omitempty"`
}

// Notifier delivers one submission.
type Notifier interface {
	Notify(ctx context.Context, kind Kind, p Payload) error
}

// Verifier is implemented by transports that can check their connection
// without sending anything.
type Verifier interface {
	Verify(ctx context.Context) error
}

var (
	ErrQueueFull = errors.New("notify: queue full")
	ErrClosed    = errors.New("notify: dispatcher closed")
)

// LogNotifier writes submissions to the log for manual follow-up.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, kind Kind, p Payload) error {
	slog.Info("submission received",
		"kind", kind,
		"name", p.Name,
		"email", p.Email,
		"subject", p.Subject,
		"message", p.Message,
	)
	return nil
}

func (LogNotifier) Verify(context.Context) error { return nil }

type job struct {
	kind    Kind
	payload Payload
}

// Dispatcher queues submissions and delivers them on a background worker.
type Dispatcher struct {
	next    Notifier
	timeout time.Duration
	queue   chan job
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 30 * time.Second

// NewDispatcher starts a worker delivering through next. size bounds the
// number of queued submissions.
func NewDispatcher(next Notifier, size int, timeout time.Duration) *Dispatcher {
	if size <= 0 {
		size = 64
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := &Dispatcher{
		next:    next,
		timeout: timeout,
		queue:   make(chan job, size),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify enqueues a submission without blocking. It fails only when the
// queue is full or the dispatcher is closed.
func (d *Dispatcher) Notify(ctx context.Context, kind Kind, p Payload) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}
	select {
	case d.queue <- job{kind: kind, payload: p}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Verify probes the underlying transport when it supports it.
func (d *Dispatcher) Verify(ctx context.Context) error {
	v, ok := d.next.(Verifier)
	if !ok {
		return fmt.Errorf("notify: %T cannot be verified", d.next)
	}
	return v.Verify(ctx)
}

// Close stops accepting submissions and waits for the queue to drain, or
// for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for j := range d.queue {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.next.Notify(ctx, j.kind, j.payload); err != nil {
		// Keep the submission in the log so it can be followed up by hand.
		slog.Error("notification delivery failed",
			"err", err,
			"kind", j.kind,
			"name", j.payload.Name,
			"email", j.payload.Email,
			"subject", j.payload.Subject,
			"message", j.payload.Message,
		)
		return
	}
	slog.Info("notification delivered", "kind", j.kind)
}
