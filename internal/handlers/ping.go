package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/senyabanana/freelance-match/internal/utils"

	"go.uber.org/zap"
)

// PingHandler обрабатывает GET запрос к /api/ping
func PingHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if _, err := fmt.Fprint(w, "ok"); err != nil {
			logger.Warn("failed to write ping response", zap.Error(err))
		}
	}
}

// ReadinessCheck - проверка внешней зависимости для /api/ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// ReadyHandler обрабатывает GET запрос к /api/ready. Отвечает 503, если
// хотя бы одна зависимость недоступна.
func ReadyHandler(checks []ReadinessCheck, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()

		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				logger.Warn("readiness check failed", zap.String("check", c.Name), zap.Error(err))
				utils.SendJSON(w, http.StatusServiceUnavailable, map[string]string{"status": c.Name + "_not_ready"}, logger)
				return
			}
		}
		utils.SendJSON(w, http.StatusOK, map[string]string{"status": "ready"}, logger)
	}
}
