package rpcx

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
	"github.com/feriaviva/feria-backend/internal/pkg/rpcmeta"
)

// Client issues calls against a single service queue. The broker connection
// is established lazily on the first Send and reused afterwards; a failed
// publish drops the connection so the next call reconnects.
type Client struct {
	url   string
	queue string

	// connectMu serializes dialing only. It is never taken while holding
	// mu, so reply dispatch keeps flowing while a connect is in progress.
	connectMu sync.Mutex

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	pending map[string]chan response
}

// NewClient builds a client for the given broker URL and target queue.
// No connection is made until the first Send.
func NewClient(url, queue string) *Client {
	return &Client{
		url:     url,
		queue:   queue,
		pending: make(map[string]chan response),
	}
}

// Send publishes a request for pattern with the given payload and blocks
// until the reply arrives, the context deadline expires, or the transport
// fails. A DefaultCallTimeout is imposed when ctx carries no deadline —
// stock and activation checks must fail closed, never hang open.
//
// Domain rejections come back as *apperr.Error with the remote code;
// transport problems come back with apperr.CodeTransport. out may be nil
// when the caller does not need the response body.
func (c *Client) Send(ctx context.Context, pattern string, payload, out any) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCallTimeout)
		defer cancel()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return apperr.Internal("rpcx: marshal payload for %s: %s", pattern, err)
	}
	body, err := json.Marshal(request{Pattern: pattern, Data: data})
	if err != nil {
		return apperr.Internal("rpcx: marshal envelope for %s: %s", pattern, err)
	}

	corrID := uuid.NewString()
	replyCh := make(chan response, 1)

	ch, err := c.ensureChannel(ctx)
	if err != nil {
		return apperr.Transport("rpcx: %s unreachable: %s", c.queue, err)
	}

	c.mu.Lock()
	c.pending[corrID] = replyCh
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, corrID)
		c.mu.Unlock()
	}()

	headers := amqp.Table{}
	if id := rpcmeta.RequestID(ctx); id != "" {
		headers[rpcmeta.HeaderRequestID] = id
	}
	if key := rpcmeta.IdempotencyKey(ctx); key != "" {
		headers[rpcmeta.HeaderIdempotencyKey] = key
	}

	err = ch.PublishWithContext(ctx,
		"",      // default exchange
		c.queue, // routing key = service queue
		false, false,
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: corrID,
			ReplyTo:       replyToQueue,
			Timestamp:     time.Now(),
			Headers:       headers,
			Body:          body,
		},
	)
	if err != nil {
		c.dropConnection()
		return apperr.Transport("rpcx: publish %s to %s: %s", pattern, c.queue, err)
	}

	select {
	case <-ctx.Done():
		return apperr.Transport("rpcx: %s on %s: %s", pattern, c.queue, ctx.Err())
	case resp, ok := <-replyCh:
		if !ok {
			return apperr.Transport("rpcx: connection to %s lost awaiting %s", c.queue, pattern)
		}
		if resp.Error != nil {
			return resp.Error
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return apperr.Internal("rpcx: decode %s response: %s", pattern, err)
		}
		return nil
	}
}

// Close tears down the broker connection, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn, c.ch = nil, nil
	return err
}

// replyToQueue is RabbitMQ's direct reply-to pseudo queue. Consuming from it
// (auto-ack, same channel as the publish) gives the client a private reply
// stream without declaring a queue per caller.
const replyToQueue = "amq.rabbitmq.reply-to"

// ensureChannel returns a live channel, connecting on first use: dial with
// bounded, ctx-cancellable retry, open a channel, and start the reply
// dispatcher. The dial runs outside c.mu; callers queued behind a connect
// in flight re-check their own deadline before starting another one.
func (c *Client) ensureChannel(ctx context.Context) (*amqp.Channel, error) {
	c.mu.Lock()
	ch := c.ch
	c.mu.Unlock()
	if ch != nil {
		return ch, nil
	}

	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	// Another caller may have connected while we waited for the lock.
	c.mu.Lock()
	ch = c.ch
	c.mu.Unlock()
	if ch != nil {
		return ch, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := dial(ctx, c.url)
	if err != nil {
		return nil, err
	}
	ch, err = conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	replies, err := ch.Consume(replyToQueue, "", true, false, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	c.mu.Lock()
	c.conn, c.ch = conn, ch
	c.mu.Unlock()
	go c.dispatch(replies)
	return ch, nil
}

// dispatch routes replies to the waiting Send by correlation id. When the
// delivery stream closes every pending call is woken with a closed channel.
func (c *Client) dispatch(replies <-chan amqp.Delivery) {
	for d := range replies {
		var resp response
		if err := json.Unmarshal(d.Body, &resp); err != nil {
			resp = response{Error: apperr.Internal("rpcx: malformed reply: %s", err)}
		}
		c.mu.Lock()
		waiting, ok := c.pending[d.CorrelationId]
		if ok {
			delete(c.pending, d.CorrelationId)
		}
		c.mu.Unlock()
		if ok {
			waiting <- resp
		}
	}

	c.mu.Lock()
	for id, waiting := range c.pending {
		close(waiting)
		delete(c.pending, id)
	}
	c.conn, c.ch = nil, nil
	c.mu.Unlock()
}

func (c *Client) dropConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn, c.ch = nil, nil
}
