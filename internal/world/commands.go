package world

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverine/ripple/internal/event"
)

// Command is a deferred mutation. Callbacks queue commands during their
// run step; the executing cell flushes the whole buffer in one
// transaction via ApplyDeferred immediately after the run step.
type Command interface {
	apply(ctx context.Context, tx *sql.Tx) error
}

// SetState queues an upsert of one keyed state value.
func SetState(entity event.EntityID, key, value string) Command {
	return setStateCommand{entity: entity, key: key, value: value}
}

// RemoveState queues the removal of one keyed state value.
// Removing an unset key is a no-op.
func RemoveState(entity event.EntityID, key string) Command {
	return removeStateCommand{entity: entity, key: key}
}

// Despawn queues the removal of an entity. Children are orphaned into
// roots; state rows are removed by the schema cascade.
func Despawn(entity event.EntityID) Command {
	return despawnCommand{entity: entity}
}

type setStateCommand struct {
	entity event.EntityID
	key    string
	value  string
}

func (c setStateCommand) apply(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO entity_state (entity, key, value) VALUES (?, ?, ?)
		ON CONFLICT(entity, key) DO UPDATE SET value = excluded.value
	`, int64(c.entity), c.key, c.value)
	if err != nil {
		return fmt.Errorf("set state %q of entity %d: %w", c.key, c.entity, err)
	}
	return nil
}

type removeStateCommand struct {
	entity event.EntityID
	key    string
}

func (c removeStateCommand) apply(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM entity_state WHERE entity = ? AND key = ?
	`, int64(c.entity), c.key)
	if err != nil {
		return fmt.Errorf("remove state %q of entity %d: %w", c.key, c.entity, err)
	}
	return nil
}

type despawnCommand struct {
	entity event.EntityID
}

func (c despawnCommand) apply(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM entities WHERE id = ?
	`, int64(c.entity))
	if err != nil {
		return fmt.Errorf("despawn entity %d: %w", c.entity, err)
	}
	return nil
}

// Queue appends a command to the deferred buffer. Safe from any
// goroutine, though in practice a callback queues commands from inside
// its own run step.
func (w *World) Queue(cmd Command) {
	w.commandsMu.Lock()
	defer w.commandsMu.Unlock()
	w.commands = append(w.commands, cmd)
}

// CommandCount returns the number of buffered commands.
// Used by tests to assert the buffer drains.
func (w *World) CommandCount() int {
	w.commandsMu.Lock()
	defer w.commandsMu.Unlock()
	return len(w.commands)
}

// DiscardDeferred empties the command buffer without applying anything
// and returns the number of commands discarded. The executing cell calls
// this when a run step fails, so a failed invocation's queued effects
// never leak into a later flush.
func (w *World) DiscardDeferred() int {
	w.commandsMu.Lock()
	defer w.commandsMu.Unlock()

	n := len(w.commands)
	w.commands = nil
	return n
}

// ApplyDeferred flushes every buffered command in queue order inside a
// single transaction, then empties the buffer. With nothing buffered it
// is a no-op.
//
// On failure the transaction rolls back, the buffer is still emptied, and
// the error propagates to the caller: failed commands are not retried on
// the next flush, matching the fatal-failure policy of the executing cell.
func (w *World) ApplyDeferred(ctx context.Context) error {
	w.commandsMu.Lock()
	commands := w.commands
	w.commands = nil
	w.commandsMu.Unlock()

	if len(commands) == 0 {
		return nil
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply deferred: begin: %w", err)
	}

	for i, cmd := range commands {
		if err := cmd.apply(ctx, tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply deferred command %d of %d: %w", i+1, len(commands), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply deferred: commit: %w", err)
	}

	return nil
}
