package health

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/searchforge/booksearch/internal/contract"
	"github.com/searchforge/booksearch/internal/controller"
)

// Readyz returns an http.Handler that reports whether the upstream search API
// answers for the configured settings.
func Readyz(ctrl *controller.Controller, settings contract.Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		err := ctrl.Ping(r.Context(), settings)
		latency := time.Since(start)

		status := http.StatusOK
		if err != nil {
			status = http.StatusServiceUnavailable
		}

		payload := map[string]any{
			"upstream_ok":  err == nil,
			"last_ping_ms": latency.Milliseconds(),
		}
		if err != nil {
			payload["error"] = err.Error()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}
}
