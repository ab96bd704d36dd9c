package game

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// DefaultMaintenanceURL is the endpoint the official launcher polls
const DefaultMaintenanceURL = "https://launcher.dqx.jp/smgame/gameRequest/mainte/check"

// MaintenanceState is the server availability reported by the maintenance check
type MaintenanceState int

const (
	MaintenanceUnknown MaintenanceState = iota
	MaintenanceUp
	MaintenanceDown
)

func (s MaintenanceState) String() string {
	switch s {
	case MaintenanceUp:
		return "up"
	case MaintenanceDown:
		return "down"
	default:
		return "unknown"
	}
}

// MaintenanceStatus is the result of a maintenance check
type MaintenanceStatus struct {
	State   MaintenanceState
	Message string
}

type maintenanceResponse struct {
	Status string `json:"status"`
	Text   string `json:"text"`
}

// MaintenanceChecker asks the launcher server whether the game is up. It does
// not use a cookie jar.
type MaintenanceChecker struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewMaintenanceChecker creates a checker for url. A nil client uses
// http.DefaultClient.
func NewMaintenanceChecker(url string, client *http.Client, logger *slog.Logger) *MaintenanceChecker {
	if url == "" {
		url = DefaultMaintenanceURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &MaintenanceChecker{
		url:    url,
		client: client,
		logger: logger.With(slog.String("component", "maintenance")),
	}
}

// Check reports the server state. Failures to reach the server give
// MaintenanceUnknown.
func (c *MaintenanceChecker) Check(ctx context.Context) MaintenanceStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		c.logger.Warn("failed to build maintenance request", slog.Any("error", err))
		return MaintenanceStatus{State: MaintenanceUnknown}
	}
	req.Header.Set("User-Agent", "Server State Check")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("maintenance check failed", slog.Any("error", err))
		return MaintenanceStatus{State: MaintenanceUnknown}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("unexpected maintenance status", slog.Int("status", resp.StatusCode))
		_, _ = io.Copy(io.Discard, resp.Body)
		return MaintenanceStatus{State: MaintenanceUnknown}
	}

	var body maintenanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("unreadable maintenance response", slog.Any("error", err))
		return MaintenanceStatus{State: MaintenanceDown}
	}
	if body.Status == "0" {
		return MaintenanceStatus{State: MaintenanceUp, Message: body.Text}
	}
	return MaintenanceStatus{State: MaintenanceDown, Message: body.Text}
}
