package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	authgate "github.com/mwhitlock/authgate"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps engine sentinels onto the external status/code table.
// Anything unrecognized is reported as a generic server error.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authgate.ErrInvalidInput),
		errors.Is(err, authgate.ErrInvalidEmail),
		errors.Is(err, authgate.ErrPasswordPolicy),
		errors.Is(err, authgate.ErrRoleInvalid),
		errors.Is(err, authgate.ErrCodeInvalid):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid", Message: err.Error()})

	case errors.Is(err, authgate.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorBody{Error: "conflict", Message: err.Error()})

	case errors.Is(err, authgate.ErrInvalidCredentials),
		errors.Is(err, authgate.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Message: err.Error()})

	case errors.Is(err, authgate.ErrAccountUnverified),
		errors.Is(err, authgate.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "forbidden", Message: err.Error()})

	case errors.Is(err, authgate.ErrIdentityNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: err.Error()})

	case errors.Is(err, authgate.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate_limited", Message: err.Error()})

	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "server_error", Message: "internal server error"})
	}
}
