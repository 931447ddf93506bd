// Package rpcx implements synchronous request/response RPC over RabbitMQ.
//
// Each service consumes one durable queue and dispatches on the "pattern"
// field of the request envelope (e.g. "check_stock", "orders.create").
// Replies travel over the direct reply-to pseudo queue, matched back to the
// caller by correlation id.
//
// Failures are split in two: a response envelope carrying an error is a
// domain rejection with a stable apperr code, while an unreachable broker or
// an expired deadline surfaces as apperr.CodeTransport. Callers must never
// confuse the two.
package rpcx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
)

const (
	// maxDialAttempts bounds the transport-level connection retry.
	maxDialAttempts = 5

	// DefaultCallTimeout applies when the caller's context has no deadline.
	DefaultCallTimeout = 5 * time.Second
)

// request is the wire envelope for a call.
type request struct {
	Pattern string          `json:"pattern"`
	Data    json.RawMessage `json:"data"`
}

// response is the wire envelope for a reply: exactly one of Data or Error
// is set.
type response struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error *apperr.Error   `json:"error,omitempty"`
}

// dial connects to the broker, retrying with quadratic backoff up to
// maxDialAttempts. The caller's deadline bounds the whole attempt: the TCP
// connect and the waits between retries both abort once ctx expires, so a
// blocked caller never outlives its own timeout.
func dial(ctx context.Context, url string) (*amqp.Connection, error) {
	cfg := amqp.Config{
		Heartbeat: 10 * time.Second,
		Dial: func(network, addr string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	}

	var err error
	for attempt := 0; attempt < maxDialAttempts; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt*attempt) * time.Second
			slog.Warn("rpcx: broker unreachable, retrying", "wait", wait, "error", err)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("rpcx: connect to broker: %w", ctx.Err())
			case <-time.After(wait):
			}
		}
		var conn *amqp.Connection
		conn, err = amqp.DialConfig(url, cfg)
		if err == nil {
			return conn, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("rpcx: connect to broker: %w", ctx.Err())
		}
	}
	return nil, fmt.Errorf("rpcx: connect to broker after %d attempts: %w", maxDialAttempts, err)
}

// errorFrom maps a handler error onto the wire error envelope, preserving
// apperr codes and hiding everything else behind INTERNAL.
func errorFrom(err error) *apperr.Error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apperr.Internal("%s", err.Error())
}
