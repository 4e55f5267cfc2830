package dispatch

import (
	"fmt"

	"github.com/puzpuzpuz/xsync"

	"github.com/riverine/ripple/internal/callback"
	"github.com/riverine/ripple/internal/event"
)

// Registry maps (event name, entity) registration sites to callback
// cells. Which sites exist decides which entities receive an event; the
// driver only ever looks up exact (name, entity) pairs while walking the
// parent chain.
//
// The same *callback.Cell may be stored under many sites. That is the
// sharing model: all sites observe one lifecycle, and the cell's own lock
// serializes executions.
//
// Thread-safety: backed by a concurrent map, so registration may race
// with dispatch from other goroutines.
type Registry struct {
	cells *xsync.MapOf[string, *callback.Cell]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{cells: xsync.NewMapOf[*callback.Cell]()}
}

// siteKey builds the map key for one registration site.
func siteKey(name string, entity event.EntityID) string {
	return fmt.Sprintf("%s/%d", name, entity)
}

// On registers a cell for (name, entity), replacing any previous
// registration at that site. Nil cells register an empty cell so the
// site stays a deliberate no-op rather than a lookup miss.
func (r *Registry) On(name string, entity event.EntityID, cell *callback.Cell) {
	if cell == nil {
		cell = callback.NewEmpty()
	}
	r.cells.Store(siteKey(name, entity), cell)
}

// Off removes the registration at (name, entity), if any.
func (r *Registry) Off(name string, entity event.EntityID) {
	r.cells.Delete(siteKey(name, entity))
}

// Lookup returns the cell registered at (name, entity).
func (r *Registry) Lookup(name string, entity event.EntityID) (*callback.Cell, bool) {
	return r.cells.Load(siteKey(name, entity))
}

// Len returns the number of registration sites.
func (r *Registry) Len() int {
	return r.cells.Size()
}
