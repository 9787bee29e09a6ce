package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error envelope the frontend expects.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Error writes a {"detail": ...} JSON error response.
func Error(w http.ResponseWriter, status int, detail string) {
	JSON(w, status, ErrorBody{Detail: detail})
}

// Message writes a {"message": ...} JSON body.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}
