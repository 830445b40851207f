package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/drivenpass/internal/common"
	"github.com/dmitrijs2005/drivenpass/internal/logging"
)

const (
	msgInternal     = "Internal server error"
	msgInvalidBody  = "Invalid request body"
	msgBodyTooLarge = "Request body too large"

	maxBodyBytes = 1 << 20
)

// errorBody is the envelope of every failed response. Message is either a
// string or a list of validation messages.
type errorBody struct {
	Message    any    `json:"message"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message any) {
	writeJSON(w, status, errorBody{Message: message, Error: http.StatusText(status), StatusCode: status})
}

func writeValidation(w http.ResponseWriter, msgs []string) {
	writeError(w, http.StatusBadRequest, msgs)
}

// statusOf maps an error kind to its HTTP status. Unknown errors are 500.
func statusOf(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrorUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError translates a service error into the envelope. Internal
// failures are logged with their cause and answered with a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Error(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeError(w, status, msgInternal)
		return
	}
	writeError(w, status, common.Message(err, http.StatusText(status)))
}

// decodeJSON reads at most maxBodyBytes of the body into v. It answers 413
// when the body is larger and 400 when it is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return false
		}
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}
