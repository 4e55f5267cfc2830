package callback

import (
	"context"
	"fmt"
	"sync"

	"github.com/riverine/ripple/internal/world"
)

// State is the lifecycle tag of a Cell.
type State int

const (
	// StateEmpty means no callback is present; Execute is a no-op.
	StateEmpty State = iota
	// StateUninitialized means a callback is present but has never run.
	StateUninitialized
	// StateReady means the callback has been initialized at least once.
	// A cell never leaves StateReady.
	StateReady
)

// String returns the state name for logs and test output.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Cell owns the lifecycle of one callback and drives its run-to-completion
// execution against the world.
//
// Cells are shared by reference: registering the same *Cell under several
// listeners means all sites see the same lifecycle, and initialization
// happens at most once no matter how many owners call Execute, including
// concurrently from independent dispatch passes. The cell's mutex covers
// the whole of Execute - initialization check, initialization, run, and
// deferred flush are one critical section, so there is no window for a
// second owner to observe a half-initialized callback.
type Cell struct {
	mu    sync.Mutex
	state State
	cb    Callback
}

// NewEmpty returns a cell with no callback. Its Execute is a no-op.
func NewEmpty() *Cell {
	return &Cell{state: StateEmpty}
}

// New returns an uninitialized cell owning cb.
// A nil cb yields an empty cell.
func New(cb Callback) *Cell {
	if cb == nil {
		return NewEmpty()
	}
	return &Cell{state: StateUninitialized, cb: cb}
}

// IsReady reports whether the callback has been initialized.
// False before the first successful Execute, true ever after.
func (c *Cell) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateReady
}

// State returns the current lifecycle tag.
func (c *Cell) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Execute runs the callback once against w.
//
// On the first call the callback is initialized before its run step; the
// Ready transition commits only after initialization succeeds, so a
// failed initialization leaves the cell uninitialized and the next call
// retries it. After a successful run step the world's deferred command
// buffer is flushed; after a failed run step the buffer is discarded, so
// either way no queued effects are left pending when Execute returns and
// a failed run never leaks partial commands into a later flush.
//
// The caller must hold exclusive access to w for the duration of the
// call. Errors from the callback or the flush propagate unchanged; the
// cell never catches or retries.
//
// An empty cell returns nil without touching the world.
func (c *Cell) Execute(ctx context.Context, w *world.World) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateEmpty:
		return nil

	case StateUninitialized:
		if err := c.cb.Initialize(ctx, w); err != nil {
			return fmt.Errorf("initialize callback: %w", err)
		}
		c.state = StateReady
	}

	if err := c.cb.Run(ctx, w); err != nil {
		w.DiscardDeferred()
		return fmt.Errorf("run callback: %w", err)
	}

	if err := w.ApplyDeferred(ctx); err != nil {
		return fmt.Errorf("apply deferred commands: %w", err)
	}

	return nil
}
