// Package rpc exposes the products service over the message-pattern RPC
// surface. Pattern names and payload shapes are wire contract: other
// services and the gateway depend on them verbatim.
package rpc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
	"github.com/feriaviva/feria-backend/internal/pkg/rpcmeta"
	"github.com/feriaviva/feria-backend/internal/pkg/rpcx"
	"github.com/feriaviva/feria-backend/internal/products-service/app"
	"github.com/feriaviva/feria-backend/internal/products-service/domain"
)

type Handler struct {
	ledger *app.StockLedger
}

func NewHandler(ledger *app.StockLedger) *Handler {
	return &Handler{ledger: ledger}
}

// Register binds every pattern this service answers.
func (h *Handler) Register(s *rpcx.Server) {
	s.Handle("getProducto", h.getProduct)
	s.Handle("check_stock", h.checkStock)
	s.Handle("decrement_stock", h.decrementStock)
	s.Handle("increment_stock", h.incrementStock)
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
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		StallID:     p.StallID,
		Name:        p.Name,
		Price:       p.Price,
		Stock:       p.Stock,
		IsAvailable: p.IsAvailable,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (h *Handler) getProduct(ctx context.Context, data json.RawMessage) (any, error) {
	var req getProductRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ID == "" {
		return nil, apperr.Validation("product id is required")
	}
	p, err := h.ledger.GetProduct(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
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

func (h *Handler) checkStock(ctx context.Context, data json.RawMessage) (any, error) {
	var req checkStockRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ProductID == "" {
		return nil, apperr.Validation("productId is required")
	}
	check, err := h.ledger.CheckStock(ctx, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}
	return checkStockResponse{
		Available: check.Available,
		Stock:     check.Stock,
		ID:        check.ProductID,
		Price:     check.Price,
		StallID:   check.StallID,
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

func (h *Handler) decrementStock(ctx context.Context, data json.RawMessage) (any, error) {
	var req mutateStockRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ProductID == "" {
		return nil, apperr.Validation("productId is required")
	}
	key := req.IdempotencyKey
	if key == "" {
		key = rpcmeta.IdempotencyKey(ctx)
	}
	stock, err := h.ledger.Decrement(ctx, app.DecrementCommand{
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		IdempotencyKey: key,
	})
	if err != nil {
		return nil, err
	}
	return mutateStockResponse{Success: true, Stock: stock, ID: req.ProductID}, nil
}

func (h *Handler) incrementStock(ctx context.Context, data json.RawMessage) (any, error) {
	var req mutateStockRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ProductID == "" {
		return nil, apperr.Validation("productId is required")
	}
	stock, err := h.ledger.Increment(ctx, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}
	return mutateStockResponse{Success: true, Stock: stock, ID: req.ProductID}, nil
}
