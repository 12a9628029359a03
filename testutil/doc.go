// Package testutil provides lifecycle helpers for components used in
// kvbridge tests.
//
// A TestComponent is a regular component.Component with Reset, Snapshot
// and Restore added so tests can isolate state between cases. The
// miniredis-backed store in redis/testutil is the main implementation.
//
//	store := redistest.NewComponent()
//	h := testutil.T(t)
//	h.Setup(store)
//	snap := h.Snapshot(store)
//	// ... mutate ...
//	h.Restore(store, snap)
package testutil
