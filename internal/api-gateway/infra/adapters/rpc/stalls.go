package rpc

import (
	"context"
	"log/slog"

	"github.com/feriaviva/feria-backend/internal/pkg/rpcx"
)

type StallsClient struct {
	rpc *rpcx.Client
}

func NewStallsClient(rpc *rpcx.Client) *StallsClient {
	return &StallsClient{rpc: rpc}
}

type validateActiveRequest struct {
	StallID string `json:"puestoId"`
}

type validateActiveResponse struct {
	Success  bool `json:"success"`
	EsActivo bool `json:"esActivo"`
}

// IsActive asks the stalls service whether the stall may sell. The check
// fails soft on transport problems: a stall that cannot be verified is
// treated as inactive rather than taking the order path down.
func (c *StallsClient) IsActive(ctx context.Context, stallID string) (bool, error) {
	var resp validateActiveResponse
	if err := c.rpc.Send(ctx, "puestos.validateActivo", validateActiveRequest{StallID: stallID}, &resp); err != nil {
		slog.WarnContext(ctx, "stall activation check unavailable, treating as inactive",
			"stall_id", stallID, "error", err)
		return false, nil
	}
	return resp.Success && resp.EsActivo, nil
}
