package services

import (
	"context"
	"sort"

	"github.com/senyabanana/freelance-match/internal/metrics"
	"github.com/senyabanana/freelance-match/internal/models"
	"github.com/senyabanana/freelance-match/internal/utils"

	"go.uber.org/zap"
)

const (
	skillWeight  = 0.5
	ratingWeight = 0.5
)

type RecommendationService struct {
	Deps
}

// NewRecommendationService создает новый экземпляр RecommendationService.
func NewRecommendationService(deps Deps) *RecommendationService {
	return &RecommendationService{Deps: deps.withDefaults()}
}

// Recommend ранжирует фрилансеров для проекта по совпадению навыков и рейтингу.
func (s *RecommendationService) Recommend(ctx context.Context, caller models.Caller, projectId string) (*models.RecommendationResult, error) {
	uow := s.Store.Reader()
	project, err := loadProject(ctx, uow, projectId)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageProject(project) {
		return nil, models.ErrUnauthorized.WithMessage("you are not authorized to view recommendations for this project")
	}

	result := &models.RecommendationResult{ProjectID: project.ID}
	required := utils.Unique(project.SkillIDs)
	if len(required) == 0 {
		result.Message = models.NoSkillsMessage
		return result, nil
	}

	candidates, err := uow.Skills().FindFreelancersBySkills(ctx, required)
	if err != nil {
		return nil, storageError(err)
	}
	ids := make([]string, 0, len(candidates))
	for _, f := range candidates {
		ids = append(ids, f.ID)
	}
	stats, err := uow.Reviews().GetRatingStats(ctx, ids)
	if err != nil {
		return nil, storageError(err)
	}

	result.Recommendations = RankFreelancers(required, candidates, stats)
	metrics.ObserveRecommendationCandidates(len(result.Recommendations))
	s.Logger.Debug("recommendations ranked",
		zap.String("project_id", project.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("ranked", len(result.Recommendations)),
	)
	return result, nil
}

// RankFreelancers вычисляет оценки и сортирует фрилансеров по убыванию оценки.
// Фрилансеры без общих навыков с проектом в результат не попадают.
// При равных оценках порядок определяется идентификатором фрилансера.
func RankFreelancers(required []string, freelancers []models.Freelancer, stats map[string]models.RatingStats) []models.Recommendation {
	wanted := make(map[string]struct{}, len(required))
	for _, id := range required {
		wanted[id] = struct{}{}
	}

	ranked := make([]models.Recommendation, 0, len(freelancers))
	if len(wanted) == 0 {
		return ranked
	}

	for i := range freelancers {
		f := &freelancers[i]
		matching := 0
		for _, id := range utils.Unique(f.SkillIDs) {
			if _, ok := wanted[id]; ok {
				matching++
			}
		}
		if matching == 0 {
			continue
		}

		skillMatch := float64(matching) / float64(len(wanted))
		rec := models.Recommendation{
			Freelancer:     f.Summary(),
			Score:          skillMatch,
			MatchingSkills: matching,
		}
		// Без отзывов фрилансер оценивается только по навыкам.
		if st, ok := stats[f.ID]; ok && st.Count > 0 {
			avg := float64(st.Sum) / float64(st.Count)
			rec.AverageRating = &avg
			rec.ReviewCount = st.Count
			rec.Score = skillWeight*skillMatch + ratingWeight*(avg/models.MaxRating)
		}
		ranked = append(ranked, rec)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Freelancer.ID < ranked[j].Freelancer.ID
	})
	return ranked
}
