// Package redis is the kvbridge store client: a go-redis wrapper that
// issues GET, SET, RPUSH and PING.
//
// Configuration comes from REDIS_HOST, REDIS_PORT (6379), REDIS_DB (0),
// REDIS_USER, REDIS_PASSWORD and REDIS_TLS. A Handle reads it once on first
// use; with a host it builds one client for the life of the process, and
// without one it borrows the client registered through SetGlobalClient:
//
//	client, err := redis.Shared().Client(ctx)
//
// A missing configuration never fails at load time. It surfaces as a
// SERVICE_UNAVAILABLE error when an operation first asks for the client.
package redis
