package httpapi

import (
    "encoding/json"
    "net/http"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
    Error string `json:"error"`
    Code  string `json:"code,omitempty"`
}

// toJSON encodes v as the response body with the given status. Encode
// errors are dropped; the status line is already committed by the time
// they can occur.
func toJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}

// writeErr emits the standard error payload.
func writeErr(w http.ResponseWriter, status int, msg, code string) {
    toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) {
    writeErr(w, http.StatusBadRequest, msg, "bad_request")
}
