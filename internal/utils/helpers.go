package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/senyabanana/freelance-match/internal/models"

	"go.uber.org/zap"
)

const (
	defaultLimit = 5
	maxLimit     = 50
)

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeError(w, models.NewErrorResponse(statusCode, message), nil)
}

// SendServiceError отправляет ошибку сервиса, выбирая HTTP-статус по её категории.
func SendServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var e *models.ErrorResponse
	if !errors.As(err, &e) {
		e = models.NewPersistenceFailure(err)
	}
	if e.StatusCode >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", zap.String("kind", string(e.Kind)), zap.Error(err))
	}
	writeError(w, e, logger)
}

func writeError(w http.ResponseWriter, e *models.ErrorResponse, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	if err := json.NewEncoder(w).Encode(e); err != nil && logger != nil {
		logger.Warn("failed to encode error response", zap.Error(err))
	}
}

// SendJSON отправляет ответ в формате JSON с указанным статусом.
func SendJSON(w http.ResponseWriter, statusCode int, body any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil && logger != nil {
		logger.Warn("failed to encode response", zap.Error(err))
	}
}

// ParseLimitOffset обрабатывает limit и offset
func ParseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	var limit, offset int
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > maxLimit {
			return 0, 0, fmt.Errorf("invalid limit parameter, must be a positive integer [1:%d]", maxLimit)
		}
	} else {
		limit = defaultLimit
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter, must be a non-negative integer")
		}
	}

	return limit, offset, nil
}

// Contains - функция для проверки перехода статусов
func Contains[T comparable](items []T, item T) bool {
	for _, v := range items {
		if v == item {
			return true
		}
	}
	return false
}

// Unique возвращает элементы без повторов, сохраняя порядок первого вхождения.
func Unique[T comparable](items []T) []T {
	if items == nil {
		return nil
	}
	seen := make(map[T]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, v := range items {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
