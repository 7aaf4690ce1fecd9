package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"finco/services"
	"finco/utils"
)

// writeJSON сериализует ответ в JSON с указанным статусом
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// writeError отправляет JSON с сообщением об ошибке
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError сопоставляет доменные ошибки сервисов с HTTP-кодами
func writeServiceError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInsufficientFunds):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusInternalServerError
		utils.GetMetrics().RecordError(err)
		utils.LogError("Внутренняя ошибка: %v", err)
	}

	writeError(w, status, err.Error())
}
