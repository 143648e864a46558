package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/freelance-match/internal/models"
	"github.com/senyabanana/freelance-match/internal/services"
	"github.com/senyabanana/freelance-match/internal/utils"

	"go.uber.org/zap"
)

// ProjectHandler - структура для обработки HTTP-запросов по проектам.
type ProjectHandler struct {
	Service     *services.ProjectService
	Recommender *services.RecommendationService
	Logger      *zap.Logger
	Timeout     time.Duration
}

// NewProjectHandler создаёт новый экземпляр ProjectHandler.
func NewProjectHandler(service *services.ProjectService, recommender *services.RecommendationService, logger *zap.Logger, timeout time.Duration) *ProjectHandler {
	return &ProjectHandler{
		Service:     service,
		Recommender: recommender,
		Logger:      logger,
		Timeout:     timeout,
	}
}

// GetProjects обрабатывает запросы для получения списка открытых проектов.
func (h *ProjectHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	projects, err := h.Service.FetchOpenProjects(ctx, limitStr, offsetStr)
	if err != nil {
		utils.SendServiceError(w, err, h.Logger)
		return
	}
	utils.SendJSON(w, http.StatusOK, projects, h.Logger)
}

// CreateProject обрабатывает запросы для создания проекта.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var projectReq models.ProjectRequest
	if !decodeBody(w, r, &projectReq) {
		return
	}

	project, err := h.Service.CreateProject(ctx, caller, projectReq)
	if err != nil {
		utils.SendServiceError(w, err, h.Logger)
		return
	}
	h.Logger.Info("project created", zap.String("project_id", project.ID), zap.String("client_id", caller.ID))
	utils.SendJSON(w, http.StatusOK, project, h.Logger)
}

// GetUserProjects обрабатывает запросы для получения проектов пользователя.
func (h *ProjectHandler) GetUserProjects(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	projects, err := h.Service.GetUserProjects(ctx, caller, limitStr, offsetStr)
	if err != nil {
		utils.SendServiceError(w, err, h.Logger)
		return
	}
	utils.SendJSON(w, http.StatusOK, projects, h.Logger)
}

// GetProject обрабатывает запросы для получения проекта по ID.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	project, err := h.Service.GetProject(ctx, caller, r.PathValue("projectId"))
	if err != nil {
		utils.SendServiceError(w, err, h.Logger)
		return
	}
	utils.SendJSON(w, http.StatusOK, project, h.Logger)
}

// CompleteProject обрабатывает запросы для завершения проекта.
func (h *ProjectHandler) CompleteProject(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	project, err := h.Service.CompleteProject(ctx, caller, r.PathValue("projectId"))
	if err != nil {
		utils.SendServiceError(w, err, h.Logger)
		return
	}
	utils.SendJSON(w, http.StatusOK, project, h.Logger)
}

// GetRecommendations обрабатывает запросы для подбора фрилансеров на проект.
func (h *ProjectHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	result, err := h.Recommender.Recommend(ctx, caller, r.PathValue("projectId"))
	if err != nil {
		utils.SendServiceError(w, err, h.Logger)
		return
	}
	utils.SendJSON(w, http.StatusOK, result, h.Logger)
}
