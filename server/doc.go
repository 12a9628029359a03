// Package server is the HTTP surface of kvbridge, built on Gin.
//
// BridgeHandler mounts the four bridge operations:
//
//	POST /v1/query       {"key": ...}                 -> 200 {"data": value}
//	POST /v1/ping        {"timeout": 250}             -> 200 {"data": "PONG"}
//	POST /v1/insert      {"key": ..., "data": ...}    -> 204
//	POST /v1/log-insert  {"key": ..., "message": ...} -> 204
//
// Request bodies are the operation's options bag. An optional "vars" object
// feeds {{ expr }} templates in the other members. Failures are answered
// with the AppError body and status: 400 invalid input, 502 store error,
// 503 store unavailable, 504 timeout.
//
// RegisterDefaultEndpoints adds GET /health, /livez, /readyz and /info.
//
// # Middleware
//
// ApplyMiddleware installs, outermost first: panic recovery, request ID
// propagation (X-Request-Id), CORS, a request body size limit and request
// logging with in-flight request metrics.
package server
