package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/cardboard/internal/api/apierr"
	"github.com/mcoot/cardboard/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// A panicking handler is answered with the INTERNAL_ERROR JSON body.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("component", "http")), func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
