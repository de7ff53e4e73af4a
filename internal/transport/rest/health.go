package rest

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/frahmantamala/campus-fixit/internal/transport"
)

type HealthStatus string

const (
	HealthOK        HealthStatus = "ok"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status    HealthStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Database  HealthStatus `json:"database"`
	LatencyMs int64        `json:"latencyMs"`
}

type HealthHandler struct {
	*transport.BaseHandler
	db *sql.DB
}

func NewHealthHandler(base *transport.BaseHandler, db *sql.DB) *HealthHandler {
	return &HealthHandler{BaseHandler: base, db: db}
}

// Ping only says the process is up.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// Health pings the database.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	resp := HealthResponse{Status: HealthOK, Database: HealthOK}
	if h.db == nil {
		resp.Status, resp.Database = HealthUnhealthy, HealthUnhealthy
	} else if err := h.db.PingContext(ctx); err != nil {
		h.Logger.Error("health check: database ping failed", "error", err)
		resp.Status, resp.Database = HealthUnhealthy, HealthUnhealthy
	}
	resp.LatencyMs = time.Since(start).Milliseconds()
	resp.Timestamp = time.Now().UTC()

	status := http.StatusOK
	if resp.Status != HealthOK {
		status = http.StatusServiceUnavailable
	}
	h.WriteJSON(w, status, resp)
}
