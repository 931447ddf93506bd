// Package rpcmeta carries per-request correlation metadata through contexts
// and across the RPC transport as message headers.
package rpcmeta

import "context"

type ctxKey string

const (
	requestIDKey      ctxKey = "request_id"
	idempotencyKeyKey ctxKey = "idempotency_key"

	// HeaderRequestID and HeaderIdempotencyKey are the AMQP header names
	// used when the metadata crosses a service boundary.
	HeaderRequestID      = "x-request-id"
	HeaderIdempotencyKey = "x-idempotency-key"
)

// WithRequestID returns a context carrying the given request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the request id carried by ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithIdempotencyKey returns a context carrying the given idempotency key.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyKey, key)
}

// IdempotencyKey returns the idempotency key carried by ctx, or "".
func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKeyKey).(string)
	return key
}
