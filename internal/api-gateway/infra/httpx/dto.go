package httpx

import "github.com/feriaviva/feria-backend/internal/api-gateway/core/domain/entity"

type CreateOrderRequest struct {
	Items []CreateOrderItemDTO `json:"items"`
}

type CreateOrderItemDTO struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type OrderItemResponse struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderResponse struct {
	ID         string              `json:"id"`
	CustomerID string              `json:"customerId"`
	StallID    string              `json:"stallId"`
	Items      []OrderItemResponse `json:"items"`
	Status     string              `json:"status"`
	Total      float64             `json:"total"`
	CreatedAt  string              `json:"createdAt"`
	UpdatedAt  string              `json:"updatedAt"`
}

type SalesResponse struct {
	StallID   string `json:"stallId"`
	ItemsSold int    `json:"itemsSold"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapOrderToResponse(o entity.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
	}
	return OrderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		StallID:    o.StallID,
		Items:      items,
		Status:     o.Status,
		Total:      o.Total,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}
