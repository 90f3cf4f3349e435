// Package apierr renders the HTTP surface's JSON bodies. Error responses
// use the two-field {error, message} envelope the room-creation and
// registration endpoints document, kept distinct from the game core's
// error taxonomy so the core stays transport-agnostic.
package apierr

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error envelope: error names the HTTP failure
// class, message says what the caller should fix.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RespondError writes an error envelope with the given status code.
func RespondError(w http.ResponseWriter, code int, message string) {
	RespondJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
	})
}

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}
