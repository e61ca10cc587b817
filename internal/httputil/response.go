package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the standard response shape shared by most endpoints:
// {success, data?, message?, errors?}. The 2FA register/login/verify
// endpoints use their own flatter shapes and call RespondJSON directly.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondSuccess sends {success:true, data} with the given status code.
func RespondSuccess(w http.ResponseWriter, data any, statusCode int) {
	RespondJSON(w, Envelope{Success: true, Data: data}, statusCode)
}

// RespondMessage sends {success:true, message} with the given status code.
func RespondMessage(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, Envelope{Success: true, Message: message}, statusCode)
}

// RespondError sends {success:false, message} with the given status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, Envelope{Success: false, Message: message}, statusCode)
}

// RespondValidationError sends a 422 with field-level errors:
// {success:false, message, errors:{field:[...]}}.
func RespondValidationError(w http.ResponseWriter, message string, fieldErrors any) {
	RespondJSON(w, Envelope{Success: false, Message: message, Errors: fieldErrors}, http.StatusUnprocessableEntity)
}
