package dispatch

import (
	"errors"
	"fmt"
)

// DefaultMaxDepth is the default maximum number of entities one event may
// visit while bubbling. Hierarchies deeper than this are almost always a
// modeling mistake; the quota keeps a malformed chain from walking
// unbounded.
const DefaultMaxDepth = 64

// DepthGuard tracks how many entities one bubbling pass has visited and
// enforces the maximum depth.
//
// Each pass gets its own guard. The guard is checked once per visited
// entity, whether or not a listener is registered there.
//
// DISTINCTION from the visited set: the visited set catches parent-chain
// cycles (A above B above A); the depth quota catches linear explosions
// on hierarchies that are simply too deep. Together they guarantee a pass
// terminates.
type DepthGuard struct {
	maxDepth int
	current  int
}

// NewDepthGuard creates a guard with the given limit.
func NewDepthGuard(maxDepth int) *DepthGuard {
	return &DepthGuard{maxDepth: maxDepth}
}

// Check increments the visit counter and validates against the limit.
// Returns DepthExceededError once the pass has visited more entities than
// allowed.
func (g *DepthGuard) Check(token string) error {
	g.current++
	if g.current > g.maxDepth {
		return &DepthExceededError{
			Token: token,
			Depth: g.current,
			Limit: g.maxDepth,
		}
	}
	return nil
}

// Current returns the number of entities visited so far.
func (g *DepthGuard) Current() int {
	return g.current
}

// MaxDepth returns the configured limit.
func (g *DepthGuard) MaxDepth() int {
	return g.maxDepth
}

// DepthExceededError is returned when a pass exceeds the bubble depth
// quota. It terminates the pass; deliveries already made stand.
type DepthExceededError struct {
	Token string // The dispatch pass that exceeded the quota
	Depth int    // Number of entities visited
	Limit int    // Maximum allowed
}

// Error implements the error interface.
func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("dispatch %s exceeded max bubble depth: %d visited > %d limit",
		e.Token, e.Depth, e.Limit)
}

// IsDepthExceededError returns true if the error is a DepthExceededError.
// Uses errors.As to handle wrapped errors.
func IsDepthExceededError(err error) bool {
	var de *DepthExceededError
	return errors.As(err, &de)
}
