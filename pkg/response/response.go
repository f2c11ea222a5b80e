package response

import (
	"encoding/json"
	"net/http"
)

type Resp struct {
	ErrorCode int    `json:"error_code,omitempty"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Errors    any    `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, statusCode int, data any) {
	write(w, statusCode, Resp{Message: "success", Data: data})
}

func Error(w http.ResponseWriter, statusCode int, message string) {
	write(w, statusCode, Resp{ErrorCode: statusCode, Message: message})
}

func ValidationError(w http.ResponseWriter, details any) {
	write(w, http.StatusBadRequest, Resp{
		ErrorCode: http.StatusBadRequest,
		Message:   "Validation failed",
		Errors:    details,
	})
}

func write(w http.ResponseWriter, statusCode int, body Resp) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
