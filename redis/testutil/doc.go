// Package testutil provides an in-memory Redis component for tests.
//
// Component runs miniredis and exposes a redis.Handle pointed at it, so
// bridge and server tests exercise the real client against a real protocol
// peer:
//
//	store := testutil.NewComponent()
//	kvtest.T(t).Setup(store)
//	b := bridge.New(bridge.FromHandle(store.Handle()))
//
// Snapshot captures string and list keys; Reset flushes everything.
package testutil
