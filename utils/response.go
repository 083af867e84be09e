package utils

import (
	"encoding/json"
	"net/http"
)

// RespondWithJSON sends a JSON response with the given status code.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]string{"error": msg})
}

// RespondWithReason sends an error body carrying a stable machine reason code
// alongside the human-readable message.
func RespondWithReason(w http.ResponseWriter, code int, reason, msg string) {
	RespondWithJSON(w, code, map[string]string{"reason": reason, "error": msg})
}

type M map[string]interface{}
