package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review представляет отзыв клиента о фрилансере после завершения проекта.
type Review struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	FreelancerID string    `json:"freelancerId"`
	ClientID     string    `json:"clientId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ReviewRequest представляет структуру запроса для создания отзыва.
// Оценка принимается как число, чтобы отличать дробные значения от целых.
type ReviewRequest struct {
	ProjectID    string  `json:"projectId"`
	FreelancerID string  `json:"freelancerId"`
	Rating       float64 `json:"rating"`
	Comment      string  `json:"comment"`
}

// RatingStats хранит агрегированные оценки фрилансера.
type RatingStats struct {
	Sum   int
	Count int
}
