package api

import (
	"encoding/json"
	"net/http"

	errs "filamento/pkg/errors"
)

type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errs.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errs.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := http.StatusText(status)
	if m, ok := err.(interface{ Message() string }); ok && status != http.StatusInternalServerError {
		msg = m.Message()
	}
	writeJSON(w, status, errorBody{Error: msg, Status: status})
}
