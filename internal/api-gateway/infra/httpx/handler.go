package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/feriaviva/feria-backend/internal/api-gateway/core/ports"
	"github.com/feriaviva/feria-backend/internal/ordering"
	"github.com/feriaviva/feria-backend/internal/pkg/rpcmeta"
)

// Handler serves the public order surface. Carts are pre-checked here with
// fresh reads before the orders service runs its own authoritative pass; the
// pre-check exists to fail fast and to apply the stall activation gate,
// which the orders service does not repeat.
type Handler struct {
	products ports.ProductReader
	stalls   ports.StallDirectory
	orders   ports.OrderService
}

func NewHandler(products ports.ProductReader, stalls ports.StallDirectory, orders ports.OrderService) *Handler {
	return &Handler{products: products, stalls: stalls, orders: orders}
}

// productSource adapts the gateway's product reader to the cart validator.
type productSource struct {
	products ports.ProductReader
}

func (s productSource) ProductView(ctx context.Context, productID string, _ int) (ordering.ProductView, error) {
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return ordering.ProductView{}, err
	}
	return p.View(), nil
}

// CreateOrder validates the cart against live product and stall state, then
// submits it to the orders service.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	customerID := r.Header.Get("X-User-Id")
	if customerID == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "X-User-Id header is required")
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json body")
		return
	}

	lines := make([]ordering.Line, len(req.Items))
	for i, it := range req.Items {
		lines[i] = ordering.Line{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	validator := ordering.NewValidator(productSource{h.products}, h.stalls)
	stallID, _, err := validator.ValidateCart(r.Context(), lines)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// The resolved stall id travels with the order so the orders service
	// can cross-check it against the items it re-validates.
	order, err := h.orders.Create(r.Context(), customerID, stallID, lines)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "order submitted",
		"order_id", order.ID, "customer_id", customerID,
		"request_id", rpcmeta.RequestID(r.Context()))
	writeJSON(w, http.StatusCreated, mapOrderToResponse(order))
}

// GetOrder retrieves a single order by id.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.orders.FindByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// ListOrders lists a customer's orders, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customerId")
	if customerID == "" {
		customerID = r.Header.Get("X-User-Id")
	}
	orders, err := h.orders.FindByCustomer(r.Context(), customerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = mapOrderToResponse(o)
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateOrderStatus advances an order through its lifecycle. The caller's
// identity travels in headers; the orders service enforces the role gate.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "status is required")
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, req.Status,
		r.Header.Get("X-User-Id"), r.Header.Get("X-User-Role"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// GetStallSales reports items sold by a stall across delivered orders.
func (h *Handler) GetStallSales(w http.ResponseWriter, r *http.Request) {
	stallID := chi.URLParam(r, "id")
	report, err := h.orders.SalesForStall(r.Context(), stallID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SalesResponse{StallID: report.StallID, ItemsSold: report.ItemsSold})
}
