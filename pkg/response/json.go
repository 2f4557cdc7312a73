package response

import (
	"net/http"

	"github.com/goccy/go-json"
)

// APIResponse is the standard response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func write(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(body)
}

// JSON sends a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// JSONWithMessage sends a JSON response carrying a payload and a human-readable message
func JSONWithMessage(w http.ResponseWriter, status int, data interface{}, message string) {
	write(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Message: message,
	})
}

// Message sends a JSON response with only a human-readable message
func Message(w http.ResponseWriter, status int, message string) {
	write(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Message: message,
	})
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, APIResponse{
		Success: false,
		Error:   message,
	})
}

// Common error responses
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}
