// Package bridge is the kvbridge Key-Value Bridge: four operations over a
// shared Redis store.
//
//	b := bridge.New(bridge.FromHandle(redis.Shared()))
//	v, err := b.Query(ctx, resolver, bridge.Options{"key": "user:{{ id }}"})
//
// Every operation takes a resolve.Resolver and an Options bag. Option values
// are resolved first, then checked for presence with resolve.Truthy, then
// exactly one store command is sent:
//
//	Query      GET, JSON-decoded when the stored text is JSON
//	Ping       PING, raced against a timeout (default 5000 ms)
//	Insert     JSON-encode, then SET
//	LogInsert  build a LogRecord, JSON-encode, then RPUSH
//
// A missing store fails every operation with SERVICE_UNAVAILABLE before any
// network activity. Query and Ping return every failure. Insert and
// LogInsert log store failures and return them only when
// Config.SurfaceWriteErrors is set.
package bridge
