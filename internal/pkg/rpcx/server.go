package rpcx

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
	"github.com/feriaviva/feria-backend/internal/pkg/rpcmeta"
)

// HandlerFunc serves one pattern. The returned value is marshalled into the
// reply envelope; a returned error becomes a domain error envelope instead.
type HandlerFunc func(ctx context.Context, data json.RawMessage) (any, error)

// Server consumes a single durable service queue and dispatches requests to
// registered pattern handlers.
type Server struct {
	url      string
	queue    string
	timeout  time.Duration
	handlers map[string]HandlerFunc
}

// NewServer builds a server for the given broker URL and queue name.
func NewServer(url, queue string) *Server {
	return &Server{
		url:      url,
		queue:    queue,
		timeout:  10 * time.Second,
		handlers: make(map[string]HandlerFunc),
	}
}

// Handle registers the handler for a pattern. Must be called before Run.
func (s *Server) Handle(pattern string, h HandlerFunc) {
	s.handlers[pattern] = h
}

// Run connects, declares the service queue and serves requests until ctx is
// cancelled. Every request runs under its own timeout so a stuck handler
// cannot wedge the consumer.
func (s *Server) Run(ctx context.Context) error {
	conn, err := dial(ctx, s.url)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		return err
	}
	// Prefetch a small window; replies are cheap but handlers hit storage.
	if err := ch.Qos(8, 0, false); err != nil {
		return err
	}

	deliveries, err := ch.Consume(s.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	slog.Info("rpc server listening", "queue", s.queue, "patterns", len(s.handlers))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return apperr.Transport("rpcx: consume channel for %s closed", s.queue)
			}
			s.serve(ctx, ch, d)
		}
	}
}

// serve handles a single delivery: dispatch, reply, ack. Requests without a
// reply-to are fire-and-forget; the response is simply dropped.
func (s *Server) serve(parent context.Context, ch *amqp.Channel, d amqp.Delivery) {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()
	ctx = contextFromHeaders(ctx, d.Headers)

	var req request
	resp := response{}
	if err := json.Unmarshal(d.Body, &req); err != nil {
		resp.Error = apperr.Validation("malformed request envelope")
	} else if handler, ok := s.handlers[req.Pattern]; !ok {
		resp.Error = apperr.Internal("no handler for pattern %q", req.Pattern)
	} else {
		result, err := handler(ctx, req.Data)
		if err != nil {
			slog.WarnContext(ctx, "rpc handler rejected request",
				"pattern", req.Pattern, "error", err)
			resp.Error = errorFrom(err)
		} else if data, merr := json.Marshal(result); merr != nil {
			resp.Error = apperr.Internal("marshal %s response: %s", req.Pattern, merr)
		} else {
			resp.Data = data
		}
	}

	if d.ReplyTo != "" {
		body, _ := json.Marshal(resp)
		err := ch.PublishWithContext(ctx, "", d.ReplyTo, false, false, amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: d.CorrelationId,
			Body:          body,
		})
		if err != nil {
			slog.ErrorContext(ctx, "rpc reply failed", "pattern", req.Pattern, "error", err)
		}
	}

	if err := d.Ack(false); err != nil {
		slog.ErrorContext(ctx, "rpc ack failed", "pattern", req.Pattern, "error", err)
	}
}

// contextFromHeaders restores propagated correlation metadata.
func contextFromHeaders(ctx context.Context, headers amqp.Table) context.Context {
	if id, ok := headers[rpcmeta.HeaderRequestID].(string); ok && id != "" {
		ctx = rpcmeta.WithRequestID(ctx, id)
	}
	if key, ok := headers[rpcmeta.HeaderIdempotencyKey].(string); ok && key != "" {
		ctx = rpcmeta.WithIdempotencyKey(ctx, key)
	}
	return ctx
}
