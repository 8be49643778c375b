package util

import (
	"auth-service/internal/logging"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// LogError пишет ошибку в лог и возвращает ее обернутой в message
func LogError(ctx context.Context, log logging.Logger, message string, err error) error {
	log.Error(ctx, message, "error", err)
	return fmt.Errorf("%s: %w", message, err)
}

// HandleError отдает клиенту ошибку в формате {error, message, code}
func HandleError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	}{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	_ = json.NewEncoder(w).Encode(errorResponse)
}

// WriteJSON отдает успешный ответ
func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
