package telemetry

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"

	"github.com/feriaviva/feria-backend/internal/pkg/rpcmeta"
)

// ContextHandler decorates every log record with correlation attributes
// found in the context: the OTel trace/span ids when a span is active, and
// the request id propagated from the gateway.
type ContextHandler struct {
	slog.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		r.AddAttrs(slog.String("trace_id", sc.TraceID().String()))
	}
	if sc.HasSpanID() {
		r.AddAttrs(slog.String("span_id", sc.SpanID().String()))
	}
	if id := rpcmeta.RequestID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

// InitLogger installs the global slog logger: JSON to stderr, decorated
// with whatever correlation ids the context carries.
func InitLogger(service string) {
	base := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(&ContextHandler{Handler: base}).With("service", service)
	slog.SetDefault(logger)
}
