package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/galapa/internal/api/handler"
	"github.com/mcoot/galapa/internal/api/middleware"
	"github.com/mcoot/galapa/internal/game"
	"github.com/mcoot/galapa/internal/hiroba"
	"github.com/mcoot/galapa/internal/playerlist"
	"github.com/mcoot/galapa/internal/services/flows"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Token       string
	Players     *playerlist.List
	Flows       *flows.Service
	Maintenance *game.MaintenanceChecker
	Banners     *hiroba.Client
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.Players)
	loginHandler := handler.NewLoginHandler(cfg.Flows)
	statusHandler := handler.NewStatusHandler(cfg.Maintenance, cfg.Banners)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.Token)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)

	// Roster routes
	protected.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/players", playerHandler.Add).Methods(http.MethodPost)
	protected.HandleFunc("/players/{token}", playerHandler.Remove).Methods(http.MethodDelete)
	protected.HandleFunc("/players/{token}/secrets", playerHandler.SetSecrets).Methods(http.MethodPut)
	protected.HandleFunc("/players/{token}/select", playerHandler.Select).Methods(http.MethodPost)

	// Login flow routes
	protected.HandleFunc("/login", loginHandler.Start).Methods(http.MethodPost)
	protected.HandleFunc("/login/{flow}", loginHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/login/{flow}", loginHandler.Cancel).Methods(http.MethodDelete)
	protected.HandleFunc("/login/{flow}/step", loginHandler.Step).Methods(http.MethodPost)
	protected.HandleFunc("/login/{flow}/launch", loginHandler.Launch).Methods(http.MethodPost)

	// Server state routes
	protected.HandleFunc("/maintenance", statusHandler.Maintenance).Methods(http.MethodGet)
	protected.HandleFunc("/banners", statusHandler.Banners).Methods(http.MethodGet)

	return r
}
