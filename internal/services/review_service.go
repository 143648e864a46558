package services

import (
	"context"
	"errors"
	"math"

	"github.com/senyabanana/freelance-match/internal/metrics"
	"github.com/senyabanana/freelance-match/internal/models"
	"github.com/senyabanana/freelance-match/internal/repository"
	"github.com/senyabanana/freelance-match/internal/utils"

	"github.com/google/uuid"
)

type ReviewService struct {
	Deps
}

// NewReviewService создает новый экземпляр ReviewService.
func NewReviewService(deps Deps) *ReviewService {
	return &ReviewService{Deps: deps.withDefaults()}
}

// validateRating проверяет, что оценка - целое число от 1 до 5.
func validateRating(rating float64) (int, error) {
	if math.IsNaN(rating) || math.IsInf(rating, 0) || rating != math.Trunc(rating) {
		return 0, models.ErrInvalidRating
	}
	if rating < models.MinRating || rating > models.MaxRating {
		return 0, models.ErrInvalidRating
	}
	return int(rating), nil
}

// CreateReview создает отзыв клиента о фрилансере по завершенному проекту.
func (s *ReviewService) CreateReview(ctx context.Context, caller models.Caller, req models.ReviewRequest) (*models.Review, error) {
	rating, err := validateRating(req.Rating)
	if err != nil {
		return nil, err
	}
	if !caller.IsClient() {
		return nil, models.ErrUnauthorized.WithMessage("only clients can leave reviews")
	}
	if req.FreelancerID == "" {
		return nil, models.ErrInvalidInput.WithMessage("missing required field: freelancerId")
	}

	review := &models.Review{
		ID:           uuid.New().String(),
		ProjectID:    req.ProjectID,
		FreelancerID: req.FreelancerID,
		ClientID:     caller.ID,
		Rating:       rating,
		Comment:      req.Comment,
		CreatedAt:    s.Now(),
	}

	err = s.Store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		return createReview(ctx, uow, caller, review)
	})
	if err != nil {
		return nil, storageError(err)
	}

	metrics.IncrementTransition("review", "created")
	s.publish(ctx, models.EngagementEvent{
		Type:         models.ReviewCreatedEvent,
		ProjectID:    review.ProjectID,
		ReviewID:     review.ID,
		ClientID:     review.ClientID,
		FreelancerID: review.FreelancerID,
	})
	return review, nil
}

func createReview(ctx context.Context, uow repository.UnitOfWork, caller models.Caller, review *models.Review) error {
	project, err := loadProject(ctx, uow, review.ProjectID)
	if err != nil {
		return err
	}
	if !caller.OwnsProject(project) {
		return models.ErrUnauthorized.WithMessage("you can only review freelancers on your own projects")
	}
	if project.Status != models.CompletedProject {
		return models.ErrProjectNotCompleted
	}
	if !project.AssignedTo(review.FreelancerID) {
		return models.ErrFreelancerMismatch
	}

	exists, err := uow.Reviews().ReviewExists(ctx, review.ProjectID, review.FreelancerID)
	if err != nil {
		return storageError(err)
	}
	if exists {
		return models.ErrDuplicateReview
	}

	err = uow.Reviews().CreateReview(ctx, review)
	if errors.Is(err, repository.ErrDuplicate) {
		return models.ErrDuplicateReview
	}
	return storageError(err)
}

// GetFreelancerReviews получает список отзывов о фрилансере.
func (s *ReviewService) GetFreelancerReviews(ctx context.Context, freelancerId, limitStr, offsetStr string) ([]models.Review, error) {
	if freelancerId == "" {
		return nil, models.ErrInvalidInput.WithMessage("freelancerId is required")
	}
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.ErrInvalidInput.WithMessage(err.Error())
	}
	reviews, err := s.Store.Reader().Reviews().GetFreelancerReviews(ctx, freelancerId, limit, offset)
	return reviews, storageError(err)
}
