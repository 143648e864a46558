package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/senyabanana/freelance-match/internal/auth"
	"github.com/senyabanana/freelance-match/internal/models"
	"github.com/senyabanana/freelance-match/internal/utils"
)

// requireCaller достаёт пользователя, сохранённого auth.Middleware.
func requireCaller(w http.ResponseWriter, r *http.Request) (models.Caller, bool) {
	caller, ok := auth.FromContext(r.Context())
	if !ok {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "user is not authenticated")
		return models.Caller{}, false
	}
	return caller, true
}

// decodeBody разбирает JSON тела запроса и отвечает 400 при ошибке.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
