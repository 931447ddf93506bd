// Package rpc exposes the stalls service over the message-pattern RPC
// surface. The "puestos.*" pattern names and the esActivo field are wire
// contract carried over from the original deployment.
package rpc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
	"github.com/feriaviva/feria-backend/internal/pkg/rpcx"
	"github.com/feriaviva/feria-backend/internal/stalls-service/app"
	"github.com/feriaviva/feria-backend/internal/stalls-service/domain"
)

type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(s *rpcx.Server) {
	s.Handle("puestos.validateActivo", h.validateActive)
	s.Handle("puestos.findOne", h.findOne)
	s.Handle("puestos.aprobar", h.approve)
	s.Handle("puestos.activar", h.activate)
}

type validateActiveRequest struct {
	StallID string `json:"puestoId"`
}

type validateActiveResponse struct {
	Success  bool `json:"success"`
	IsActive bool `json:"esActivo"`
}

func (h *Handler) validateActive(ctx context.Context, data json.RawMessage) (any, error) {
	var req validateActiveRequest
	if err := json.Unmarshal(data, &req); err != nil || req.StallID == "" {
		return nil, apperr.Validation("puestoId is required")
	}
	return validateActiveResponse{
		Success:  true,
		IsActive: h.service.ValidateActive(ctx, req.StallID),
	}, nil
}

type stallByIDRequest struct {
	ID string `json:"id"`
}

type stallResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     string `json:"ownerId"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toStallResponse(s domain.Stall) stallResponse {
	return stallResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		OwnerID:     s.OwnerID,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   s.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (h *Handler) findOne(ctx context.Context, data json.RawMessage) (any, error) {
	var req stallByIDRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ID == "" {
		return nil, apperr.Validation("stall id is required")
	}
	stall, err := h.service.GetStall(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return toStallResponse(stall), nil
}

func (h *Handler) approve(ctx context.Context, data json.RawMessage) (any, error) {
	var req stallByIDRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ID == "" {
		return nil, apperr.Validation("stall id is required")
	}
	stall, err := h.service.Approve(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return toStallResponse(stall), nil
}

func (h *Handler) activate(ctx context.Context, data json.RawMessage) (any, error) {
	var req stallByIDRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ID == "" {
		return nil, apperr.Validation("stall id is required")
	}
	stall, err := h.service.Activate(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return toStallResponse(stall), nil
}
