package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/riverine/ripple/internal/event"
)

// pendingDispatch is one queued bubbling pass. The typed payload is bound
// into the closure at enqueue time, so the queue itself stays free of
// type parameters.
type pendingDispatch struct {
	token string
	event string
	run   func(ctx context.Context) (*Result, error)
}

// dispatchQueue is a thread-safe FIFO queue of pending passes.
//
// The queue is unbounded so producers never block. Thread-safety covers
// external enqueuing while the Run loop dequeues; in practice most usage
// is single-threaded.
//
// A buffered signal channel enables context-aware waiting in the Run loop
// (prevents goroutine hangs on context cancellation).
type dispatchQueue struct {
	mu      sync.Mutex
	pending []pendingDispatch
	closed  bool
	signal  chan struct{} // Signals availability (buffered, size 1)
}

// newDispatchQueue creates an empty queue.
func newDispatchQueue() *dispatchQueue {
	return &dispatchQueue{
		pending: make([]pendingDispatch, 0, 16),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue adds a pass to the back of the queue.
// Returns false if the queue is closed.
func (q *dispatchQueue) Enqueue(p pendingDispatch) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.pending = append(q.pending, p)

	// Non-blocking signal - the buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
func (q *dispatchQueue) TryDequeue() (pendingDispatch, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return pendingDispatch{}, false
	}

	p := q.pending[0]

	// Nil out the slot so the closure (and the payload it captures) can
	// be collected before the underlying array is reallocated.
	q.pending[0] = pendingDispatch{}

	if len(q.pending) == 1 {
		q.pending = q.pending[:0]
	} else {
		q.pending = q.pending[1:]
	}

	return p, true
}

// Wait returns a channel that signals when passes may be available.
func (q *dispatchQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *dispatchQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close signals that no more passes will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *dispatchQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}

// Enqueue submits an event for processing by the Run loop and returns the
// dispatch token assigned to it. The token is assigned now so callers can
// look up the journal trace after the loop drains.
//
// Thread-safe: may be called from any goroutine.
// The second return value is false if the dispatcher has been stopped.
func Enqueue[E event.EntityEvent](d *Dispatcher, name string, data *E) (string, bool) {
	token := d.tokens.Generate()
	ok := d.queue.Enqueue(pendingDispatch{
		token: token,
		event: name,
		run: func(ctx context.Context) (*Result, error) {
			return bubble(ctx, d, token, name, data)
		},
	})
	return token, ok
}

// Run starts the single-writer dispatch loop.
// Blocks until the context is cancelled or Stop is called.
//
// Must be called from exactly ONE goroutine: queued passes execute
// strictly in FIFO order on this goroutine, which is the ordering
// guarantee callers buy by enqueuing instead of dispatching directly.
//
// ERROR HANDLING: a failed pass is logged with its token and the loop
// continues. Retries would reorder passes; operators use the logged
// token to inspect the journal. Synchronous Dispatch remains the path
// for callers that want errors returned to them.
func (d *Dispatcher) Run(ctx context.Context) error {
	slog.Info("dispatcher starting")

	for {
		p, ok := d.queue.TryDequeue()
		if ok {
			if _, err := p.run(ctx); err != nil {
				slog.Error("dispatch failed",
					"error", err,
					"token", p.token,
					"event", p.event,
				)
			}
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("dispatcher stopping: context cancelled")
			d.queue.Close()
			return ctx.Err()

		case <-d.queue.Wait():
			// Signal received - loop back to TryDequeue. The signal
			// channel closes when the queue closes, so this case fires
			// immediately during shutdown.
			if d.queue.Len() == 0 {
				slog.Info("dispatcher stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the dispatcher.
// Closes the queue, which will cause Run to return once drained.
func (d *Dispatcher) Stop() {
	d.queue.Close()
}

// QueueLen returns the number of pending passes.
// Useful for monitoring and testing.
func (d *Dispatcher) QueueLen() int {
	return d.queue.Len()
}
