package health

import (
	"encoding/json"
	"net/http"
)

// NewHandler returns the liveness endpoint handler.
func NewHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "healthy", "ok": true})
	})
}
