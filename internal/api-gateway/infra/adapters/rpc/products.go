// Package rpc wires the gateway ports to the message-pattern RPC clients.
package rpc

import (
	"context"

	"github.com/feriaviva/feria-backend/internal/api-gateway/core/domain/entity"
	"github.com/feriaviva/feria-backend/internal/ordering"
	"github.com/feriaviva/feria-backend/internal/pkg/rpcx"
)

type ProductsClient struct {
	rpc *rpcx.Client
}

func NewProductsClient(rpc *rpcx.Client) *ProductsClient {
	return &ProductsClient{rpc: rpc}
}

type getProductRequest struct {
	ID string `json:"id"`
}

type productResponse struct {
	ID          string  `json:"id"`
	StallID     string  `json:"stallId"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	IsAvailable bool    `json:"isAvailable"`
}

func (c *ProductsClient) GetProduct(ctx context.Context, id string) (entity.Product, error) {
	var resp productResponse
	if err := c.rpc.Send(ctx, "getProducto", getProductRequest{ID: id}, &resp); err != nil {
		return entity.Product{}, err
	}
	return entity.Product{
		ID:          resp.ID,
		StallID:     resp.StallID,
		Name:        resp.Name,
		Price:       resp.Price,
		Stock:       resp.Stock,
		IsAvailable: resp.IsAvailable,
	}, nil
}

// ProductView makes the client usable directly as the validator's source.
func (c *ProductsClient) ProductView(ctx context.Context, productID string, _ int) (ordering.ProductView, error) {
	p, err := c.GetProduct(ctx, productID)
	if err != nil {
		return ordering.ProductView{}, err
	}
	return p.View(), nil
}

var _ ordering.ProductSource = (*ProductsClient)(nil)
