// Package errors provides the structured error type shared by kvbridge
// packages. Every failure a bridge operation can surface maps onto one code:
//
//   - SERVICE_UNAVAILABLE: no store handle is configured
//   - INVALID_INPUT: a required option resolved to a falsy value
//   - TIMEOUT: a ping exceeded its deadline
//   - STORE_ERROR: the store itself reported a failure
//
// The code fixes the HTTP status and retryability, so transports render an
// AppError without a mapping of their own.
package errors
