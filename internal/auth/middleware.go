package auth

import (
	"context"
	"net/http"

	"github.com/senyabanana/freelance-match/internal/models"
	"github.com/senyabanana/freelance-match/internal/utils"

	"go.uber.org/zap"
)

type callerKey struct{}

// WithCaller сохраняет пользователя в контексте запроса.
func WithCaller(ctx context.Context, caller models.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// FromContext возвращает пользователя, сохранённого Middleware.
func FromContext(ctx context.Context) (models.Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(models.Caller)
	return caller, ok
}

// Middleware пропускает только запросы с действительным токеном.
func Middleware(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				utils.SendErrorResponse(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			caller, err := ParseToken(token, secret)
			if err != nil {
				logger.Debug("rejected token", zap.String("path", r.URL.Path), zap.Error(err))
				utils.SendErrorResponse(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}
