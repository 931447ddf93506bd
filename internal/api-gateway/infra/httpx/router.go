package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/feriaviva/feria-backend/internal/api-gateway/infra/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/orders", handler.CreateOrder)
		r.Get("/orders", handler.ListOrders)
		r.Get("/orders/{id}", handler.GetOrder)
		r.Patch("/orders/{id}/status", handler.UpdateOrderStatus)
		r.Get("/stalls/{id}/sales", handler.GetStallSales)
	})
	return r
}
