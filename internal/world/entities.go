package world

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/riverine/ripple/internal/event"
)

// Spawn creates a new entity with the given unique name.
// Pass event.NoEntity as parent to create a root entity.
func (w *World) Spawn(ctx context.Context, name string, parent event.EntityID) (event.EntityID, error) {
	var parentVal any
	if parent != event.NoEntity {
		parentVal = int64(parent)
	}

	res, err := w.db.ExecContext(ctx, `
		INSERT INTO entities (name, parent) VALUES (?, ?)
	`, name, parentVal)
	if err != nil {
		return event.NoEntity, fmt.Errorf("spawn entity %q: %w", name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return event.NoEntity, fmt.Errorf("spawn entity %q: %w", name, err)
	}

	return event.EntityID(id), nil
}

// Exists reports whether the entity is present in the world.
func (w *World) Exists(ctx context.Context, id event.EntityID) (bool, error) {
	var one int
	err := w.db.QueryRowContext(ctx, `
		SELECT 1 FROM entities WHERE id = ?
	`, int64(id)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check entity %d: %w", id, err)
	}
	return true, nil
}

// Parent returns the parent of the given entity.
// The second return value is false when the entity is a root (or absent).
func (w *World) Parent(ctx context.Context, id event.EntityID) (event.EntityID, bool, error) {
	var parent sql.NullInt64
	err := w.db.QueryRowContext(ctx, `
		SELECT parent FROM entities WHERE id = ?
	`, int64(id)).Scan(&parent)
	if errors.Is(err, sql.ErrNoRows) {
		return event.NoEntity, false, nil
	}
	if err != nil {
		return event.NoEntity, false, fmt.Errorf("read parent of entity %d: %w", id, err)
	}
	if !parent.Valid {
		return event.NoEntity, false, nil
	}
	return event.EntityID(parent.Int64), true, nil
}

// SetParent re-parents an entity. Pass event.NoEntity to detach it into a
// root. The new parent must exist; the hierarchy is not checked for
// cycles here - the dispatcher's visited-set guards each bubbling pass.
func (w *World) SetParent(ctx context.Context, id, parent event.EntityID) error {
	var parentVal any
	if parent != event.NoEntity {
		parentVal = int64(parent)
	}

	res, err := w.db.ExecContext(ctx, `
		UPDATE entities SET parent = ? WHERE id = ?
	`, parentVal, int64(id))
	if err != nil {
		return fmt.Errorf("set parent of entity %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set parent of entity %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("set parent of entity %d: entity not found", id)
	}
	return nil
}

// EntityByName resolves an entity by its unique name.
// The second return value is false when no entity has that name.
func (w *World) EntityByName(ctx context.Context, name string) (event.EntityID, bool, error) {
	var id int64
	err := w.db.QueryRowContext(ctx, `
		SELECT id FROM entities WHERE name = ?
	`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return event.NoEntity, false, nil
	}
	if err != nil {
		return event.NoEntity, false, fmt.Errorf("resolve entity %q: %w", name, err)
	}
	return event.EntityID(id), true, nil
}

// EntityName returns the name of an entity.
func (w *World) EntityName(ctx context.Context, id event.EntityID) (string, bool, error) {
	var name string
	err := w.db.QueryRowContext(ctx, `
		SELECT name FROM entities WHERE id = ?
	`, int64(id)).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read name of entity %d: %w", id, err)
	}
	return name, true, nil
}

// DespawnNow removes an entity immediately, outside the command buffer.
// Children are orphaned into roots (parent set NULL); the entity's state
// rows are removed by the cascade. Prefer the Despawn command from
// callback run steps so the removal lands in the deferred flush.
func (w *World) DespawnNow(ctx context.Context, id event.EntityID) error {
	_, err := w.db.ExecContext(ctx, `
		DELETE FROM entities WHERE id = ?
	`, int64(id))
	if err != nil {
		return fmt.Errorf("despawn entity %d: %w", id, err)
	}
	return nil
}

// Entity is one row of the hierarchy, as read back for display.
type Entity struct {
	ID     event.EntityID
	Name   string
	Parent event.EntityID // NoEntity for roots
}

// Entities returns every entity ordered by id. Used by the CLI tree view
// and by scenario assertions.
func (w *World) Entities(ctx context.Context) ([]Entity, error) {
	rows, err := w.db.QueryContext(ctx, `
		SELECT id, name, parent FROM entities ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	entities := []Entity{}
	for rows.Next() {
		var (
			e      Entity
			id     int64
			parent sql.NullInt64
		)
		if err := rows.Scan(&id, &e.Name, &parent); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		e.ID = event.EntityID(id)
		if parent.Valid {
			e.Parent = event.EntityID(parent.Int64)
		}
		entities = append(entities, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}

	return entities, nil
}
