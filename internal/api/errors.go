package api

import (
	"encoding/json"
	"errors"
	"net/http"

	ecoerrors "ecoscan/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error          string                `json:"error"`
	Code           string                `json:"code"`
	Details        interface{}           `json:"details,omitempty"`
	SuggestedFixes []ecoerrors.FixAction `json:"suggestedFixes,omitempty"`
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := ErrorResponse{
		Error: err.Error(),
	}

	var ecoErr *ecoerrors.EcoError
	if errors.As(err, &ecoErr) {
		resp.Code = string(ecoErr.Code)
		resp.Details = ecoErr.Details
		resp.SuggestedFixes = ecoErr.SuggestedFixes
	} else {
		resp.Code = string(ecoerrors.InternalError)
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// WriteEcoError writes err with a status derived from its code. Errors
// without a code are reported as 500.
func WriteEcoError(w http.ResponseWriter, err error) {
	WriteError(w, err, MapEcoErrorToStatus(ecoerrors.CodeOf(err)))
}

// MapEcoErrorToStatus maps error codes to HTTP status codes
func MapEcoErrorToStatus(code ecoerrors.ErrorCode) int {
	switch code {
	case ecoerrors.ParseError:
		return http.StatusUnprocessableEntity // 422
	case ecoerrors.InvalidInput, ecoerrors.UnsupportedFile:
		return http.StatusBadRequest // 400
	case ecoerrors.FileNotFound:
		return http.StatusNotFound // 404
	case ecoerrors.FetchFailed:
		return http.StatusBadGateway // 502
	case ecoerrors.StorageError:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// BadRequest writes a 400 Bad Request error
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, ecoerrors.NewEcoError(ecoerrors.InvalidInput, message, nil), http.StatusBadRequest)
}

// NotFound writes a 404 Not Found error
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, ecoerrors.NewEcoError(ecoerrors.FileNotFound, message, nil), http.StatusNotFound)
}

// InternalError writes a 500 Internal Server Error
func InternalError(w http.ResponseWriter, message string, err error) {
	WriteError(w, ecoerrors.NewEcoError(ecoerrors.InternalError, message, err), http.StatusInternalServerError)
}

// MethodNotAllowed writes a 405 with the allowed method
func MethodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}
