package middleware

import (
	"context"
	"net/http"

	"github.com/frahmantamala/warehouse-management/pkg/logger"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

const TraceHeader = "X-Trace-ID"

// RequestID reuses an incoming trace id or mints one, stores it where chi's
// GetReqID finds it and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, traceID)
		ctx = logger.With(ctx, "trace_id", traceID)

		w.Header().Set(TraceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
