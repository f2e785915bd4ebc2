package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/devhive/identity-server/internal/apperrors"
	"github.com/devhive/identity-server/internal/model"
)

// errorResponse is the JSON body written for every failed request.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleError maps a service failure to an HTTP status and a stable error
// code. Unrecognized errors surface as a generic internal failure so
// infrastructure details never leak to clients.
func handleError(w http.ResponseWriter, err error) {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		writeError(w, apiErr.HTTPStatus, apiErr.Code, apiErr.Message)
		return
	}

	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusNotFound, apperrors.CodeUserNotFound, "not found")
		return
	}

	writeError(w, http.StatusInternalServerError, apperrors.CodeInternal, "internal server error")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
