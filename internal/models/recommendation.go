package models

import (
	"encoding/json"
	"math"
)

// NoSkillsMessage возвращается, когда у проекта нет требуемых навыков.
const NoSkillsMessage = "project has no required skills; recommendations are based on skills and cannot be ranked"

// Recommendation - рассчитанная рекомендация фрилансера для проекта.
// Значения хранятся без округления, округление выполняется только при сериализации.
type Recommendation struct {
	Freelancer     FreelancerSummary
	Score          float64
	MatchingSkills int
	AverageRating  *float64
	ReviewCount    int
}

// MarshalJSON округляет оценку до двух знаков, а средний рейтинг до одного.
func (r Recommendation) MarshalJSON() ([]byte, error) {
	out := struct {
		Freelancer     FreelancerSummary `json:"freelancer"`
		Score          float64           `json:"score"`
		MatchingSkills int               `json:"matchingSkills"`
		AverageRating  *float64          `json:"averageRating"`
		ReviewCount    int               `json:"reviewCount"`
	}{
		Freelancer:     r.Freelancer,
		Score:          roundTo(r.Score, 2),
		MatchingSkills: r.MatchingSkills,
		ReviewCount:    r.ReviewCount,
	}
	if r.AverageRating != nil {
		avg := roundTo(*r.AverageRating, 1)
		out.AverageRating = &avg
	}
	return json.Marshal(out)
}

// RecommendationResult - ответ на запрос рекомендаций.
type RecommendationResult struct {
	ProjectID       string           `json:"projectId"`
	Message         string           `json:"message,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
