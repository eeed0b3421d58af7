package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"quickcart-emporium/app/middleware"
	"quickcart-emporium/logger"
	"quickcart-emporium/models"
	"quickcart-emporium/repository"
)

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorf("❌ Error encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}

// writeFetchError maps a catalog failure to a response. Upstream failures
// become 502 with the shopper-facing message.
func writeFetchError(w http.ResponseWriter, r *http.Request, op string, err error) {
	requestID := middleware.RequestIDFromContext(r.Context())

	var fetchErr *repository.FetchError
	if errors.As(err, &fetchErr) {
		logger.Log.Errorf("❌ %s: %v (request_id=%s)", op, err, requestID)
		writeError(w, http.StatusBadGateway, fetchErr.Message())
		return
	}

	logger.Log.Errorf("❌ %s: Unexpected error: %v (request_id=%s)", op, err, requestID)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, op string) {
	logger.Log.Warnf("❌ %s: Method not allowed: %s", op, r.Method)
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
