package repository

import (
	"context"

	"github.com/senyabanana/freelance-match/internal/models"

	"github.com/lib/pq"
)

// PostgresReviewRepository - реализация ReviewRepository для базы данных.
type PostgresReviewRepository struct {
	DB Querier
}

// NewPostgresReviewRepository создает новый экземпляр PostgresReviewRepository.
func NewPostgresReviewRepository(db Querier) *PostgresReviewRepository {
	return &PostgresReviewRepository{DB: db}
}

// CreateReview сохраняет отзыв. Повторный отзыв отклоняется уникальным индексом.
func (r *PostgresReviewRepository) CreateReview(ctx context.Context, review *models.Review) error {
	insertQuery := `INSERT INTO review (id, project_id, freelancer_id, client_id, rating, comment, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.Exec(ctx, insertQuery,
		review.ID,
		review.ProjectID,
		review.FreelancerID,
		review.ClientID,
		review.Rating,
		review.Comment,
		review.CreatedAt)
	return translateError(err)
}

// ReviewExists проверяет, существует ли отзыв на фрилансера по проекту.
func (r *PostgresReviewRepository) ReviewExists(ctx context.Context, projectId, freelancerId string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM review WHERE project_id = $1 AND freelancer_id = $2)`
	err := r.DB.QueryRow(ctx, query, projectId, freelancerId).Scan(&exists)
	return exists, translateError(err)
}

// GetFreelancerReviews получает список отзывов о фрилансере.
func (r *PostgresReviewRepository) GetFreelancerReviews(ctx context.Context, freelancerId string, limit, offset int) ([]models.Review, error) {
	query := `
		SELECT id, project_id, freelancer_id, client_id, rating, COALESCE(comment, ''), created_at
		FROM review
		WHERE freelancer_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	rows, err := r.DB.Query(ctx, query, freelancerId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(
			&review.ID,
			&review.ProjectID,
			&review.FreelancerID,
			&review.ClientID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// GetRatingStats возвращает сумму и количество оценок для каждого фрилансера.
func (r *PostgresReviewRepository) GetRatingStats(ctx context.Context, freelancerIds []string) (map[string]models.RatingStats, error) {
	stats := make(map[string]models.RatingStats, len(freelancerIds))
	if len(freelancerIds) == 0 {
		return stats, nil
	}

	query := `
		SELECT freelancer_id::text, COALESCE(SUM(rating), 0), COUNT(*)
		FROM review
		WHERE freelancer_id::text = ANY($1)
		GROUP BY freelancer_id`
	rows, err := r.DB.Query(ctx, query, pq.Array(freelancerIds))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			s  models.RatingStats
		)
		if err := rows.Scan(&id, &s.Sum, &s.Count); err != nil {
			return nil, err
		}
		stats[id] = s
	}
	return stats, rows.Err()
}
