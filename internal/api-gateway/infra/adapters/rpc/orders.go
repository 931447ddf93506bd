package rpc

import (
	"context"

	"github.com/feriaviva/feria-backend/internal/api-gateway/core/domain/entity"
	"github.com/feriaviva/feria-backend/internal/ordering"
	"github.com/feriaviva/feria-backend/internal/pkg/rpcx"
)

type OrdersClient struct {
	rpc *rpcx.Client
}

func NewOrdersClient(rpc *rpcx.Client) *OrdersClient {
	return &OrdersClient{rpc: rpc}
}

type orderItemPayload struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price,omitempty"`
}

type orderPayload struct {
	ID         string             `json:"id"`
	CustomerID string             `json:"customerId"`
	StallID    string             `json:"stallId"`
	Items      []orderItemPayload `json:"items"`
	Status     string             `json:"status"`
	Total      float64            `json:"total"`
	CreatedAt  string             `json:"createdAt"`
	UpdatedAt  string             `json:"updatedAt"`
}

func toEntity(p orderPayload) entity.Order {
	items := make([]entity.OrderItem, len(p.Items))
	for i, it := range p.Items {
		items[i] = entity.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
	}
	return entity.Order{
		ID:         p.ID,
		CustomerID: p.CustomerID,
		StallID:    p.StallID,
		Items:      items,
		Status:     p.Status,
		Total:      p.Total,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

type createOrderRequest struct {
	CustomerID string             `json:"customerId"`
	StallID    string             `json:"stallId,omitempty"`
	Items      []orderItemPayload `json:"items"`
}

// Create submits the order with the stall id the pre-check resolved, so
// the orders service can cross-check it against the items' stall.
func (c *OrdersClient) Create(ctx context.Context, customerID, stallID string, lines []ordering.Line) (entity.Order, error) {
	items := make([]orderItemPayload, len(lines))
	for i, l := range lines {
		items[i] = orderItemPayload{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	var resp orderPayload
	err := c.rpc.Send(ctx, "orders.create", createOrderRequest{CustomerID: customerID, StallID: stallID, Items: items}, &resp)
	if err != nil {
		return entity.Order{}, err
	}
	return toEntity(resp), nil
}

func (c *OrdersClient) FindByID(ctx context.Context, id string) (entity.Order, error) {
	var resp orderPayload
	if err := c.rpc.Send(ctx, "orders.findById", map[string]string{"id": id}, &resp); err != nil {
		return entity.Order{}, err
	}
	return toEntity(resp), nil
}

func (c *OrdersClient) FindByCustomer(ctx context.Context, customerID string) ([]entity.Order, error) {
	var resp []orderPayload
	if err := c.rpc.Send(ctx, "orders.findByCustomer", map[string]string{"customerId": customerID}, &resp); err != nil {
		return nil, err
	}
	orders := make([]entity.Order, len(resp))
	for i, p := range resp {
		orders[i] = toEntity(p)
	}
	return orders, nil
}

type updateStatusRequest struct {
	ID  string `json:"id"`
	DTO struct {
		Status string `json:"status"`
	} `json:"dto"`
	UserID   string `json:"userId"`
	UserRole string `json:"userRole"`
}

func (c *OrdersClient) UpdateStatus(ctx context.Context, id, status, userID, userRole string) (entity.Order, error) {
	req := updateStatusRequest{ID: id, UserID: userID, UserRole: userRole}
	req.DTO.Status = status
	var resp orderPayload
	if err := c.rpc.Send(ctx, "orders.updateStatus", req, &resp); err != nil {
		return entity.Order{}, err
	}
	return toEntity(resp), nil
}

type salesPayload struct {
	StallID   string `json:"stallId"`
	ItemsSold int    `json:"itemsSold"`
}

func (c *OrdersClient) SalesForStall(ctx context.Context, stallID string) (entity.SalesReport, error) {
	var resp salesPayload
	if err := c.rpc.Send(ctx, "orders.getSalesForStall", map[string]string{"stallId": stallID}, &resp); err != nil {
		return entity.SalesReport{}, err
	}
	return entity.SalesReport{StallID: resp.StallID, ItemsSold: resp.ItemsSold}, nil
}
