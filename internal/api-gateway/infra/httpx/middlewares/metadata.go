// Package middlewares holds the gateway's HTTP middlewares.
package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/feriaviva/feria-backend/internal/pkg/rpcmeta"
)

// AttachRequestMetadata copies the request id and the caller's idempotency
// key into the context so they ride along on every downstream RPC call.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := rpcmeta.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		if key := r.Header.Get(rpcmeta.HeaderIdempotencyKey); key != "" {
			ctx = rpcmeta.WithIdempotencyKey(ctx, key)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
