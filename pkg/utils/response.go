package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

var logger = zap.NewNop()

// SetLogger installs the logger used for encode failures. The default
// discards them.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// RespondJSON writes a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", zap.Int("status", status), zap.Error(err))
	}
}

// RespondError writes a JSON error body with the given status.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}
