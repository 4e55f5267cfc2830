package world

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/riverine/ripple/internal/event"
)

// WriteState upserts one keyed state value immediately, outside the
// command buffer. Callbacks use this during initialization wiring; run
// steps should queue a SetState command instead so the mutation lands in
// the deferred flush.
func (w *World) WriteState(ctx context.Context, entity event.EntityID, key, value string) error {
	_, err := w.db.ExecContext(ctx, `
		INSERT INTO entity_state (entity, key, value) VALUES (?, ?, ?)
		ON CONFLICT(entity, key) DO UPDATE SET value = excluded.value
	`, int64(entity), key, value)
	if err != nil {
		return fmt.Errorf("write state %q of entity %d: %w", key, entity, err)
	}
	return nil
}

// ReadState returns one keyed state value.
// The second return value is false when the key is unset.
func (w *World) ReadState(ctx context.Context, entity event.EntityID, key string) (string, bool, error) {
	var value string
	err := w.db.QueryRowContext(ctx, `
		SELECT value FROM entity_state WHERE entity = ? AND key = ?
	`, int64(entity), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read state %q of entity %d: %w", key, entity, err)
	}
	return value, true, nil
}

// StateCount returns the number of state rows in the world.
// Used by tests to assert a pass left the store untouched.
func (w *World) StateCount(ctx context.Context) (int, error) {
	var n int
	if err := w.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entity_state`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count state rows: %w", err)
	}
	return n, nil
}

// EntitiesWithState returns the IDs of entities whose state matches
// key = value, ordered by id for deterministic results. Backs the CLI
// query surface and scenario state assertions.
func (w *World) EntitiesWithState(ctx context.Context, key, value string) ([]event.EntityID, error) {
	rows, err := w.db.QueryContext(ctx, `
		SELECT entity FROM entity_state
		WHERE key = ? AND value = ?
		ORDER BY entity ASC
	`, key, value)
	if err != nil {
		return nil, fmt.Errorf("query state %q=%q: %w", key, value, err)
	}
	defer rows.Close()

	ids := []event.EntityID{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan state row: %w", err)
		}
		ids = append(ids, event.EntityID(id))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state rows: %w", err)
	}

	return ids, nil
}
