package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"carrental-storefront/internal/logger"
	"carrental-storefront/internal/remote"
	"carrental-storefront/internal/store"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		writeJSON(w, httpErr.Code, map[string]string{"message": httpErr.Message})
		return
	}

	// Pass the upstream status through so the UI can react to it.
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.StatusCode, map[string]string{"message": apiErr.Message})
		return
	}

	writeJSON(w, statusFor(err), map[string]string{"message": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrCarNotFound),
		errors.Is(err, store.ErrReservationNotFound),
		errors.Is(err, store.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrCarReferenced),
		errors.Is(err, store.ErrTerminalStatus),
		errors.Is(err, store.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, store.ErrMissingUserID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
