package repository

import (
	"context"

	"github.com/senyabanana/freelance-match/internal/models"

	"github.com/lib/pq"
)

// PostgresSkillRepository - реализация SkillRepository для базы данных.
type PostgresSkillRepository struct {
	DB Querier
}

// NewPostgresSkillRepository создает новый экземпляр PostgresSkillRepository.
func NewPostgresSkillRepository(db Querier) *PostgresSkillRepository {
	return &PostgresSkillRepository{DB: db}
}

// CountSkills возвращает количество существующих навыков из списка.
func (r *PostgresSkillRepository) CountSkills(ctx context.Context, skillIds []string) (int, error) {
	if len(skillIds) == 0 {
		return 0, nil
	}
	var count int
	query := `SELECT COUNT(*) FROM skill WHERE id::text = ANY($1)`
	err := r.DB.QueryRow(ctx, query, pq.Array(skillIds)).Scan(&count)
	return count, translateError(err)
}

// SetProjectSkills сохраняет требуемые навыки проекта в заданном порядке.
func (r *PostgresSkillRepository) SetProjectSkills(ctx context.Context, projectId string, skillIds []string) error {
	insertQuery := `INSERT INTO project_skill (project_id, skill_id, position) VALUES ($1, $2, $3)`
	for i, skillId := range skillIds {
		if _, err := r.DB.Exec(ctx, insertQuery, projectId, skillId, i); err != nil {
			return translateError(err)
		}
	}
	return nil
}

// FindFreelancersBySkills находит фрилансеров хотя бы с одним из навыков.
func (r *PostgresSkillRepository) FindFreelancersBySkills(ctx context.Context, skillIds []string) ([]models.Freelancer, error) {
	if len(skillIds) == 0 {
		return nil, nil
	}

	query := `
		SELECT f.id, f.name, f.email, COALESCE(f.portfolio_url, ''),
		       ARRAY(SELECT fs.skill_id::text FROM freelancer_skill fs WHERE fs.freelancer_id = f.id ORDER BY fs.skill_id)
		FROM freelancer f
		WHERE EXISTS (
			SELECT 1 FROM freelancer_skill fs
			WHERE fs.freelancer_id = f.id AND fs.skill_id::text = ANY($1)
		)
		ORDER BY f.id`
	rows, err := r.DB.Query(ctx, query, pq.Array(skillIds))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var freelancers []models.Freelancer
	for rows.Next() {
		var f models.Freelancer
		if err := rows.Scan(&f.ID, &f.Name, &f.Email, &f.PortfolioURL, &f.SkillIDs); err != nil {
			return nil, err
		}
		freelancers = append(freelancers, f)
	}
	return freelancers, rows.Err()
}
