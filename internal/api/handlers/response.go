package handlers

import (
	"encoding/json"
	"net/http"
)

// StatusResponse is returned when no dashboard can be served
type StatusResponse struct {
	Status  string `json:"status"` // loading, failed, error
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`

	// 실패한 프로바이더/시리즈 (원인 에러 문자열은 응답에 포함하지 않음)
	Provider string `json:"provider,omitempty"`
	Series   string `json:"series,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
