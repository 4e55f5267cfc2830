package dispatch

import (
	"sync"

	"github.com/riverine/ripple/internal/event"
)

// VisitedSet tracks the entities one bubbling pass has already handled,
// so a cycle in the parent chain is detected instead of walked forever.
//
// Cycles can appear because re-parenting (world.SetParent) does not
// validate the hierarchy - a callback or operator can make an ancestor of
// an entity also its descendant. The set is per pass and discarded with
// it.
type VisitedSet struct {
	mu   sync.Mutex
	seen map[event.EntityID]bool
}

// NewVisitedSet creates an empty visited set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[event.EntityID]bool)}
}

// Seen reports whether the entity was already visited in this pass.
func (v *VisitedSet) Seen(id event.EntityID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.seen[id]
}

// Record marks the entity as visited. Call immediately after Seen returns
// false, before invoking the entity's listener.
func (v *VisitedSet) Record(id event.EntityID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seen[id] = true
}

// Len returns the number of recorded entities. Used for introspection
// and tests.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}
