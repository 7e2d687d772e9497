package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/metrics"
	"github.com/ukydev/fleet-maintenance/internal/ticket"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeTicketError maps the error taxonomy to HTTP responses: validation
// failures are 422 with a stable code, missing documents 404, anything else
// is treated as backend unavailability the caller may retry.
func writeTicketError(w http.ResponseWriter, err error) {
	var verr *ticket.ValidationError
	if errors.As(err, &verr) {
		metrics.ValidationFailures.WithLabelValues(verr.Code).Inc()
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": verr.Message,
			"code":  verr.Code,
		})
		return
	}
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	http.Error(w, "Service temporarily unavailable, try again", http.StatusServiceUnavailable)
}
