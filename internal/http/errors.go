// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/retail-checkout-service/internal/fault"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Item    string `json:"item,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// WriteFault maps a domain error onto the HTTP surface. Business rejections
// become 4xx with the offending item surfaced; storage failures are 503 and
// retryable; conflicts mean broken locking and are 500.
func WriteFault(w http.ResponseWriter, err error) {
	kind := fault.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case fault.KindValidation:
		status = http.StatusBadRequest
	case fault.KindNotFound:
		status = http.StatusNotFound
	case fault.KindInsufficientStock:
		status = http.StatusConflict
	case fault.KindStorage:
		status = http.StatusServiceUnavailable
	case fault.KindConflict:
		status = http.StatusInternalServerError
	}
	payload := jsonError{Error: kind.String(), Details: err.Error()}
	var fe *fault.Error
	if errors.As(err, &fe) {
		payload.Item = fe.Item
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
