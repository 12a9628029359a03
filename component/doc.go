// Package component defines lifecycle-managed infrastructure for kvbridge.
//
// Components (the Redis store, the HTTP server) are started in registration
// order and stopped in reverse order by a Registry. Lazy wraps an
// initializer that must run at most once, on first use, which is how the
// shared store handle defers connecting until an operation needs it.
package component
