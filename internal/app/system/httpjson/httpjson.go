// internal/app/system/httpjson/httpjson.go

// Package httpjson holds the JSON response envelope used by every API
// handler. Validation failures carry itemized field details; everything else
// gets a single message so internals never leak to clients.
package httpjson

import (
	"encoding/json"
	"net/http"
)

// errorBody is the error envelope: {"error": "...", "details": [...]}.
type errorBody struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// Write encodes v as JSON with the given status code.
func Write(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a bare error message.
func Error(w http.ResponseWriter, code int, msg string) {
	Write(w, code, errorBody{Error: msg})
}

// ValidationError writes a 400 with itemized field-level details so client
// forms can surface each violation next to its input.
func ValidationError(w http.ResponseWriter, msg string, details interface{}) {
	Write(w, http.StatusBadRequest, errorBody{Error: msg, Details: details})
}

// Unauthorized writes the standard 401 body.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "unauthorized")
}

// Forbidden writes the standard 403 body.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "forbidden")
}

// NotFound writes a 404 with the given message.
func NotFound(w http.ResponseWriter, msg string) {
	Error(w, http.StatusNotFound, msg)
}

// ServerError writes the generic 500 body. The underlying error is expected
// to be logged by the caller, never sent to the client.
func ServerError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "internal server error")
}

// Decode reads a JSON request body into dst, rejecting unknown fields so a
// malformed or misshapen payload fails the whole request before any write.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
