package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/drivenpass/internal/logging"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports liveness together with database reachability.
type HealthHandler struct {
	DB  Pinger
	Log logging.Logger
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		h.Log.Warn(ctx, "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
