package handler

import (
	"net/http"

	"github.com/mcoot/galapa/internal/api/response"
	"github.com/mcoot/galapa/internal/game"
	"github.com/mcoot/galapa/internal/hiroba"
)

// StatusHandler reports server state and news
type StatusHandler struct {
	maintenance *game.MaintenanceChecker
	banners     *hiroba.Client
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(maintenance *game.MaintenanceChecker, banners *hiroba.Client) *StatusHandler {
	return &StatusHandler{
		maintenance: maintenance,
		banners:     banners,
	}
}

// Maintenance handles GET /api/v1/maintenance
func (h *StatusHandler) Maintenance(w http.ResponseWriter, r *http.Request) {
	status := h.maintenance.Check(r.Context())
	response.JSON(w, http.StatusOK, response.MaintenanceFromGame(status))
}

// Banners handles GET /api/v1/banners
func (h *StatusHandler) Banners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.banners.Banners(r.Context())
	if err != nil {
		WriteError(w, NewUpstreamError("could not load banners"))
		return
	}

	response.JSON(w, http.StatusOK, response.Banners{Banners: banners})
}

// Health handles GET /api/v1/health
func Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
