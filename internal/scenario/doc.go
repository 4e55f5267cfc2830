// Package scenario runs declarative bubbling scenarios end to end.
//
// A scenario describes an entity tree, the listeners attached to it, the
// events to dispatch, and assertions over the resulting journal and world
// state. Scenarios load from YAML or CUE files and execute against an
// in-memory world with fixed dispatch tokens, so the same scenario always
// produces a byte-identical journal.
//
// Listeners reference built-in callback kinds (counter, stopper, tagger)
// rather than arbitrary code, which keeps scenario files purely
// declarative. Two listeners that name the same cell label share one
// callback cell - the way the engine shares cells across registration
// sites - so scenarios can exercise shared-lifecycle behavior.
//
// Golden trace comparison (RunWithGolden) snapshots every pass to
// canonical JSON and compares against testdata/golden fixtures.
package scenario
