package world

import (
	"context"
	"fmt"

	"github.com/riverine/ripple/internal/event"
)

// Delivery is one journal record: a single callback invocation made by
// the driver during a bubbling pass.
type Delivery struct {
	// ID is content-addressed over (token, event, listener, target, seq).
	ID string

	// Token correlates every delivery of one event instance.
	Token string

	// Seq is the logical-clock stamp. Deliveries of one pass have strictly
	// increasing seq values; never ordered by wall clock.
	Seq int64

	// Event is the event name the listener was registered under.
	Event string

	// Target is the entity the event originally targeted.
	Target event.EntityID

	// Listener is the entity whose callback handled this delivery.
	Listener event.EntityID

	// Stopped records whether the callback ended the pass here.
	Stopped bool

	// Payload is the canonical JSON snapshot of the event data as it
	// looked after this delivery.
	Payload string
}

// WriteDelivery inserts a journal record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - re-inserting the same
// content-addressed delivery is silently ignored.
func (w *World) WriteDelivery(ctx context.Context, d Delivery) error {
	stopped := 0
	if d.Stopped {
		stopped = 1
	}

	_, err := w.db.ExecContext(ctx, `
		INSERT INTO deliveries
		(id, token, seq, event, target, listener, stopped, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		d.ID,
		d.Token,
		d.Seq,
		d.Event,
		int64(d.Target),
		int64(d.Listener),
		stopped,
		d.Payload,
	)
	if err != nil {
		return fmt.Errorf("write delivery %s: %w", d.ID, err)
	}

	return nil
}

// ReadTrace returns every delivery recorded for a dispatch token.
// Results are ordered deterministically: ORDER BY seq ASC, id COLLATE
// BINARY ASC. Returns an empty slice (not nil) for unknown tokens.
func (w *World) ReadTrace(ctx context.Context, token string) ([]Delivery, error) {
	rows, err := w.db.QueryContext(ctx, `
		SELECT id, token, seq, event, target, listener, stopped, payload
		FROM deliveries
		WHERE token = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := []Delivery{}
	for rows.Next() {
		var (
			d                Delivery
			target, listener int64
			stopped          int
		)
		if err := rows.Scan(&d.ID, &d.Token, &d.Seq, &d.Event, &target, &listener, &stopped, &d.Payload); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		d.Target = event.EntityID(target)
		d.Listener = event.EntityID(listener)
		d.Stopped = stopped != 0
		deliveries = append(deliveries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deliveries: %w", err)
	}

	return deliveries, nil
}

// DeliveryCount returns the number of journal rows, optionally filtered
// by event name (empty name counts all). Used by tests and assertions.
func (w *World) DeliveryCount(ctx context.Context, name string) (int, error) {
	var (
		n   int
		err error
	)
	if name == "" {
		err = w.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deliveries`).Scan(&n)
	} else {
		err = w.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deliveries WHERE event = ?`, name).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count deliveries: %w", err)
	}
	return n, nil
}
