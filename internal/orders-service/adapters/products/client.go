// Package products is the orders-side client of the products service. It
// answers the fresh-read queries the cart validator needs and the two stock
// mutations the reservation issues.
package products

import (
	"context"

	"github.com/feriaviva/feria-backend/internal/ordering"
	"github.com/feriaviva/feria-backend/internal/pkg/rpcmeta"
	"github.com/feriaviva/feria-backend/internal/pkg/rpcx"
)

type Client struct {
	rpc *rpcx.Client
}

func NewClient(rpc *rpcx.Client) *Client {
	return &Client{rpc: rpc}
}

type checkStockRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type checkStockResponse struct {
	Available bool    `json:"available"`
	Stock     int     `json:"stock"`
	ID        string  `json:"id"`
	Price     float64 `json:"price"`
	StallID   string  `json:"stallId"`
}

// ProductView asks the ledger for current availability. check_stock answers
// with stock at the moment of the read; the atomic decrement is still the
// only true arbiter.
func (c *Client) ProductView(ctx context.Context, productID string, quantity int) (ordering.ProductView, error) {
	var resp checkStockResponse
	err := c.rpc.Send(ctx, "check_stock", checkStockRequest{ProductID: productID, Quantity: quantity}, &resp)
	if err != nil {
		return ordering.ProductView{}, err
	}
	return ordering.ProductView{
		ID:        resp.ID,
		StallID:   resp.StallID,
		Price:     resp.Price,
		Stock:     resp.Stock,
		Available: resp.Available,
	}, nil
}

type mutateStockRequest struct {
	ProductID      string `json:"productId"`
	Quantity       int    `json:"quantity"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

type mutateStockResponse struct {
	Success bool   `json:"success"`
	Stock   int    `json:"stock"`
	ID      string `json:"id"`
}

// Decrement reserves quantity units. The key travels both in the payload
// and as a header so either side of the wire can enforce replay safety.
func (c *Client) Decrement(ctx context.Context, productID string, quantity int, idempotencyKey string) error {
	ctx = rpcmeta.WithIdempotencyKey(ctx, idempotencyKey)
	var resp mutateStockResponse
	return c.rpc.Send(ctx, "decrement_stock", mutateStockRequest{
		ProductID:      productID,
		Quantity:       quantity,
		IdempotencyKey: idempotencyKey,
	}, &resp)
}

// Increment releases quantity units back to the ledger.
func (c *Client) Increment(ctx context.Context, productID string, quantity int) error {
	var resp mutateStockResponse
	return c.rpc.Send(ctx, "increment_stock", mutateStockRequest{
		ProductID: productID,
		Quantity:  quantity,
	}, &resp)
}

var _ ordering.ProductSource = (*Client)(nil)
