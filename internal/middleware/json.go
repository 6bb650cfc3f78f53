package middleware

import (
	"encoding/json"
	"net/http"

	"go-account-service/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func errorEnvelope(code string, message string) model.APIResponse {
	return model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: code, Message: message},
	}
}
