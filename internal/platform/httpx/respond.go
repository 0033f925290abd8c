// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ProblemDetail represents RFC7807 problem details. Required and Current are
// populated only for authorization denials so clients can render which roles
// would have been accepted and which the caller actually holds.
type ProblemDetail struct {
	Type     string   `json:"type,omitempty"`
	Title    string   `json:"title"`
	Status   int      `json:"status"`
	Detail   string   `json:"detail,omitempty"`
	Required []string `json:"required,omitempty"`
	Current  []string `json:"current,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	JSON(w, status, ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// Forbidden sends a 403 problem carrying the required versus held roles.
func Forbidden(w http.ResponseWriter, detail string, required, current []string) {
	JSON(w, http.StatusForbidden, ProblemDetail{
		Title:    "Forbidden",
		Status:   http.StatusForbidden,
		Detail:   detail,
		Required: required,
		Current:  current,
	})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
