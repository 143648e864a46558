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

// ReviewHandler - структура для обработки HTTP-запросов по отзывам.
type ReviewHandler struct {
	Service *services.ReviewService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewReviewHandler создаёт новый экземпляр ReviewHandler.
func NewReviewHandler(service *services.ReviewService, logger *zap.Logger, timeout time.Duration) *ReviewHandler {
	return &ReviewHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateReview обрабатывает запросы для создания отзыва.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var reviewReq models.ReviewRequest
	if !decodeBody(w, r, &reviewReq) {
		return
	}

	review, err := h.Service.CreateReview(ctx, caller, reviewReq)
	if err != nil {
		utils.SendServiceError(w, err, h.Logger)
		return
	}
	utils.SendJSON(w, http.StatusOK, review, h.Logger)
}

// GetFreelancerReviews обрабатывает запросы для получения отзывов о фрилансере.
func (h *ReviewHandler) GetFreelancerReviews(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	reviews, err := h.Service.GetFreelancerReviews(ctx, r.PathValue("freelancerId"), limitStr, offsetStr)
	if err != nil {
		utils.SendServiceError(w, err, h.Logger)
		return
	}
	utils.SendJSON(w, http.StatusOK, reviews, h.Logger)
}
