package http

import (
	"log/slog"
	"net/http"

	"github.com/waxhands/workshop-backend/internal/core/ports"
)

// StatsHandler exposes the hub's diagnostics snapshot.
type StatsHandler struct {
	stats  ports.StatsProvider
	logger *slog.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(stats ports.StatsProvider, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

// HandleStats returns connection counts and the current queue depth.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, SuccessResponse{Data: h.stats.Stats()})
}
