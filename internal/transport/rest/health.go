package rest

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/frahmantamala/warehouse-management/internal/transport"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
	DurationMs int64        `json:"duration_ms"`
}

// Pinger is anything with a context-aware liveness probe (sql.DB, redis client wrappers).
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	*transport.BaseHandler
	checks map[string]Pinger
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	h := &HealthHandler{BaseHandler: transport.NewBaseHandler(nil), checks: map[string]Pinger{}}
	if db != nil {
		h.checks["postgres"] = db
	}
	return h
}

// AddCheck registers another component probed by /health.
func (h *HealthHandler) AddCheck(name string, p Pinger) {
	h.checks[name] = p
}

func (h *HealthHandler) pingHandler(w http.ResponseWriter, _ *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		Components: make(map[string]CheckEntry, len(h.checks)),
	}
	for name, p := range h.checks {
		start := time.Now()
		entry := CheckEntry{Status: HealthHealthy, CheckedAt: start}
		if err := p.PingContext(ctx); err != nil {
			entry.Status = HealthUnhealthy
			entry.Message = err.Error()
			resp.Status = HealthUnhealthy
		}
		entry.DurationMs = time.Since(start).Milliseconds()
		resp.Components[name] = entry
	}

	status := http.StatusOK
	if resp.Status == HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}
	h.WriteJSON(w, status, resp)
}
