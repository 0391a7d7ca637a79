package common

import (
	"encoding/json"
	"net/http"
)

// ErrorBody represents a consistent error payload returned by the API.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Data wraps payload in the {"data": ...} envelope. Extra top-level fields,
// such as generatedAt on reports, come from meta.
func Data(w http.ResponseWriter, status int, payload any, meta map[string]any) {
	body := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		body[k] = v
	}
	body["data"] = payload
	JSON(w, status, body)
}

// Paged writes a list page with its pagination block.
func Paged(w http.ResponseWriter, items any, p Pagination) {
	Data(w, http.StatusOK, items, map[string]any{"pagination": p})
}

// JSONError renders an error response using the canonical error shape.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
