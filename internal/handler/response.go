package handler

import (
	"auth-service/internal/logging"
	"auth-service/internal/model/requestresponse"
	"auth-service/internal/service"
	"auth-service/internal/util"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxBodyBytes = 1 << 20

// decodeJSON читает тело запроса. Неизвестные поля и лишние данные после объекта - ошибка 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		util.HandleError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		util.HandleError(w, "Invalid request body: unexpected data after JSON object", http.StatusBadRequest)
		return false
	}

	return true
}

func writeValidationError(w http.ResponseWriter, err error) {
	var validationErr *requestresponse.ValidationError
	if errors.As(err, &validationErr) {
		util.HandleError(w, validationErr.Error(), http.StatusBadRequest)
		return
	}
	util.HandleError(w, err.Error(), http.StatusBadRequest)
}

// statusFor сопоставляет вид ошибки сервиса с HTTP статусом
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError отдает клиенту публичное сообщение; внутренние ошибки только в лог
func writeServiceError(ctx context.Context, w http.ResponseWriter, log logging.Logger, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		util.HandleError(w, svcErr.Message(), statusFor(err))
		return
	}

	log.Error(ctx, "внутренняя ошибка при обработке запроса", "error", err)
	util.HandleError(w, "Internal server error", http.StatusInternalServerError)
}
