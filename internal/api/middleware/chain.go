package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/galapa/internal/api/apierr"
	"github.com/mcoot/galapa/internal/middleware"
)

// Logging logs each API request under the "api" component
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("component", "api")))
}

// Recovery turns a handler panic into a JSON internal error
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("component", "api")), func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
