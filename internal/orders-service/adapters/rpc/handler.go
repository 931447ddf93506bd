// Package rpc exposes the orders service over the message-pattern RPC
// surface. Pattern names and payload shapes are wire contract.
package rpc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/feriaviva/feria-backend/internal/ordering"
	"github.com/feriaviva/feria-backend/internal/orders-service/app"
	"github.com/feriaviva/feria-backend/internal/orders-service/domain"
	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
	"github.com/feriaviva/feria-backend/internal/pkg/rpcx"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

// Register binds every pattern this service answers.
func (h *Handler) Register(s *rpcx.Server) {
	s.Handle("orders.create", h.create)
	s.Handle("orders.findByCustomer", h.findByCustomer)
	s.Handle("orders.findById", h.findByID)
	s.Handle("orders.updateStatus", h.updateStatus)
	s.Handle("orders.getSalesForStall", h.salesForStall)
	s.Handle("orders.getReservationStatus", h.reservationStatus)
	s.Handle("orders.listAll", h.listAll)
}

type itemPayload struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price,omitempty"`
}

type createRequest struct {
	CustomerID string        `json:"customerId"`
	StallID    string        `json:"stallId,omitempty"`
	Items      []itemPayload `json:"items"`
}

type orderResponse struct {
	ID         string        `json:"id"`
	CustomerID string        `json:"customerId"`
	StallID    string        `json:"stallId"`
	Items      []itemPayload `json:"items"`
	Status     string        `json:"status"`
	Total      float64       `json:"total"`
	CreatedAt  string        `json:"createdAt"`
	UpdatedAt  string        `json:"updatedAt"`
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]itemPayload, len(o.Items))
	for i, it := range o.Items {
		items[i] = itemPayload{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
	}
	return orderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		StallID:    o.StallID,
		Items:      items,
		Status:     string(o.Status),
		Total:      o.Total(),
		CreatedAt:  o.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  o.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toOrderList(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	return out
}

func (h *Handler) create(ctx context.Context, data json.RawMessage) (any, error) {
	var req createRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, apperr.Validation("malformed order payload")
	}
	lines := make([]ordering.Line, len(req.Items))
	for i, it := range req.Items {
		lines[i] = ordering.Line{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	order, err := h.svc.Create(ctx, app.CreateCommand{
		CustomerID: req.CustomerID,
		StallID:    req.StallID,
		Items:      lines,
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

type findByCustomerRequest struct {
	CustomerID string `json:"customerId"`
}

func (h *Handler) findByCustomer(ctx context.Context, data json.RawMessage) (any, error) {
	var req findByCustomerRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, apperr.Validation("malformed payload")
	}
	orders, err := h.svc.FindByCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	return toOrderList(orders), nil
}

type findByIDRequest struct {
	ID string `json:"id"`
}

func (h *Handler) findByID(ctx context.Context, data json.RawMessage) (any, error) {
	var req findByIDRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ID == "" {
		return nil, apperr.Validation("order id is required")
	}
	order, err := h.svc.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

type updateStatusRequest struct {
	ID  string `json:"id"`
	DTO struct {
		Status string `json:"status"`
	} `json:"dto"`
	UserID   string `json:"userId"`
	UserRole string `json:"userRole"`
}

func (h *Handler) updateStatus(ctx context.Context, data json.RawMessage) (any, error) {
	var req updateStatusRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ID == "" {
		return nil, apperr.Validation("order id is required")
	}
	order, err := h.svc.UpdateStatus(ctx, req.ID, domain.Status(req.DTO.Status), domain.Actor{
		UserID: req.UserID,
		Role:   req.UserRole,
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

type salesRequest struct {
	StallID string `json:"stallId"`
}

type salesResponse struct {
	StallID   string `json:"stallId"`
	ItemsSold int    `json:"itemsSold"`
}

func (h *Handler) salesForStall(ctx context.Context, data json.RawMessage) (any, error) {
	var req salesRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, apperr.Validation("malformed payload")
	}
	report, err := h.svc.SalesForStall(ctx, req.StallID)
	if err != nil {
		return nil, err
	}
	return salesResponse{StallID: report.StallID, ItemsSold: report.ItemsSold}, nil
}

type reservationStatusRequest struct {
	OrderID string `json:"orderId"`
}

type reservationStatusResponse struct {
	OrderID       string `json:"orderId"`
	Status        string `json:"status"`
	CurrentStep   string `json:"currentStep,omitempty"`
	ErrorMessages string `json:"errorMessages"`
	TraceID       string `json:"traceId,omitempty"`
	UpdatedAt     string `json:"updatedAt"`
}

func (h *Handler) reservationStatus(ctx context.Context, data json.RawMessage) (any, error) {
	var req reservationStatusRequest
	if err := json.Unmarshal(data, &req); err != nil || req.OrderID == "" {
		return nil, apperr.Validation("orderId is required")
	}
	entry, err := h.svc.ReservationStatus(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	return reservationStatusResponse{
		OrderID:       entry.ReservationID,
		Status:        string(entry.Status),
		CurrentStep:   entry.CurrentStep,
		ErrorMessages: entry.ErrorMessages,
		TraceID:       entry.TraceID,
		UpdatedAt:     entry.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

func (h *Handler) listAll(ctx context.Context, _ json.RawMessage) (any, error) {
	orders, err := h.svc.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toOrderList(orders), nil
}
