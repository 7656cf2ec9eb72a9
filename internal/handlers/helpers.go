package handlers

import (
	"encoding/json"
	"net/http"
)

// errorBody is the body of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}

// respondJSON sends data as a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError sends an error response carrying a single detail message
func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, errorBody{Detail: detail})
}
