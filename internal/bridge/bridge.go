// Package bridge implements the single-producer/single-consumer delivery
// queue that sits between the session machine's worker goroutine and a
// host's polling Receive calls. The worker is the only producer; Receive
// is meant to be called by exactly one consumer at a time, mirroring the
// blocking receive loop a host process drives from its own thread.
package bridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/panics"
)

// Outcome distinguishes the three shapes a Receive call can return:
// a delivered payload, a heartbeat emitted because the timeout elapsed
// with nothing queued, or a terminal signal that the worker has exited and
// no further payloads will ever arrive.
type Outcome int

const (
	// OutcomeData means Payload holds a delivered message.
	OutcomeData Outcome = iota
	// OutcomeHeartbeat means the timeout elapsed with the queue empty;
	// Payload is the literal heartbeat body.
	OutcomeHeartbeat
	// OutcomeClosed means the worker has exited; no further calls to
	// Receive will ever return OutcomeData again.
	OutcomeClosed
)

const heartbeatBody = "{}"

const defaultCapacity = 256

// Bridge is a bounded, drop-oldest queue of delivered payloads, plus a
// done signal the worker closes on exit.
type Bridge struct {
	items  chan string
	done   chan struct{}
	closed bool
	logger *slog.Logger
}

// New returns a Bridge with the given capacity. A non-positive capacity
// falls back to a sane default rather than a queue that can never hold
// anything.
func New(capacity int, logger *slog.Logger) *Bridge {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		items:  make(chan string, capacity),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Publish enqueues a payload for delivery. If the queue is at capacity,
// the oldest queued payload is dropped to make room: a host that cannot
// keep up sees gaps rather than unbounded memory growth or a producer
// that blocks forever. Every drop is logged.
func (b *Bridge) Publish(payload string) {
	for {
		select {
		case b.items <- payload:
			return
		default:
		}

		select {
		case dropped := <-b.items:
			b.logger.Warn("delivery queue full, dropping oldest payload", "dropped_len", len(dropped))
		default:
			// Another goroutine drained concurrently; retry the send.
		}
	}
}

// Close signals that the worker has exited. Subsequent Receive calls drain
// any already-queued payloads and then return OutcomeClosed forever.
func (b *Bridge) Close() {
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
}

// Receive blocks for up to timeout waiting for a payload. It returns
// (payload, OutcomeData) if one was queued, (heartbeat, OutcomeHeartbeat)
// if the timeout elapsed first, or ("", OutcomeClosed) if the worker has
// exited and the queue is empty.
func (b *Bridge) Receive(timeout time.Duration) (string, Outcome) {
	select {
	case payload := <-b.items:
		return payload, OutcomeData
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case payload := <-b.items:
		return payload, OutcomeData
	case <-b.done:
		select {
		case payload := <-b.items:
			return payload, OutcomeData
		default:
			return "", OutcomeClosed
		}
	case <-timer.C:
		return heartbeatBody, OutcomeHeartbeat
	}
}

// Spawn runs fn in a panic-isolated goroutine and closes the bridge when
// fn returns, regardless of whether it returned an error or panicked. A
// panic inside fn must never take down the host process embedding this
// client, so it is recovered and logged here rather than propagated.
func (b *Bridge) Spawn(ctx context.Context, fn func(context.Context) error) {
	go func() {
		defer b.Close()

		var p panics.Catcher
		p.Try(func() {
			if err := fn(ctx); err != nil {
				b.logger.Error("worker exited with error", "error", err)
			}
		})
		if recovered := p.Recovered(); recovered != nil {
			b.logger.Error("worker panicked", "panic", recovered.AsError())
		}
	}()
}
