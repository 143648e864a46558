package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/freelance-match/internal/models"
)

const projectColumns = `p.id, p.title, p.description,
	ARRAY(SELECT ps.skill_id::text FROM project_skill ps WHERE ps.project_id = p.id ORDER BY ps.position),
	p.budget, p.deadline, p.client_id, p.freelancer_id, p.status, p.created_at`

// PostgresProjectRepository - реализация ProjectRepository для базы данных.
type PostgresProjectRepository struct {
	DB Querier
}

// NewPostgresProjectRepository создаёт новый экземпляр PostgresProjectRepository.
func NewPostgresProjectRepository(db Querier) *PostgresProjectRepository {
	return &PostgresProjectRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var project models.Project
	err := row.Scan(
		&project.ID,
		&project.Title,
		&project.Description,
		&project.SkillIDs,
		&project.Budget,
		&project.Deadline,
		&project.ClientID,
		&project.FreelancerID,
		&project.Status,
		&project.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject создает новый проект. Навыки сохраняются отдельно через SkillRepository.
func (r *PostgresProjectRepository) CreateProject(ctx context.Context, project *models.Project) error {
	_, err := r.DB.Exec(ctx, `
       INSERT INTO project (id, title, description, budget, deadline, client_id, freelancer_id, status, created_at)
       VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
   `,
		project.ID,
		project.Title,
		project.Description,
		project.Budget,
		project.Deadline,
		project.ClientID,
		project.FreelancerID,
		project.Status,
		project.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", translateError(err))
	}
	return nil
}

// GetProject получает проект по ID.
func (r *PostgresProjectRepository) GetProject(ctx context.Context, projectId string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project p WHERE p.id = $1`
	project, err := scanProject(r.DB.QueryRow(ctx, query, projectId))
	if err != nil {
		return nil, translateError(err)
	}
	return project, nil
}

func (r *PostgresProjectRepository) queryProjects(ctx context.Context, query string, args ...any) ([]models.Project, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

// GetOpenProjects возвращает список открытых проектов.
func (r *PostgresProjectRepository) GetOpenProjects(ctx context.Context, limit, offset int) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project p
	          WHERE p.status = $1 ORDER BY p.created_at DESC, p.id LIMIT $2 OFFSET $3`
	return r.queryProjects(ctx, query, models.OpenProject, limit, offset)
}

// GetClientProjects возвращает проекты клиента.
func (r *PostgresProjectRepository) GetClientProjects(ctx context.Context, clientId string, limit, offset int) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project p
	          WHERE p.client_id = $1 ORDER BY p.created_at DESC, p.id LIMIT $2 OFFSET $3`
	return r.queryProjects(ctx, query, clientId, limit, offset)
}

// GetFreelancerProjects возвращает проекты, на которые назначен фрилансер.
func (r *PostgresProjectRepository) GetFreelancerProjects(ctx context.Context, freelancerId string, limit, offset int) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project p
	          WHERE p.freelancer_id = $1 ORDER BY p.created_at DESC, p.id LIMIT $2 OFFSET $3`
	return r.queryProjects(ctx, query, freelancerId, limit, offset)
}

// StartProject назначает фрилансера и переводит проект в работу.
// Условие по статусу делает операцию атомарной: из нескольких конкурентных
// вызовов строку обновит только один.
func (r *PostgresProjectRepository) StartProject(ctx context.Context, projectId, freelancerId string) (bool, error) {
	updateQuery := `UPDATE project SET status = $1, freelancer_id = $2
	                WHERE id = $3 AND status = $4 AND freelancer_id IS NULL`
	tag, err := r.DB.Exec(ctx, updateQuery, models.InProgressProject, freelancerId, projectId, models.OpenProject)
	if err != nil {
		return false, translateError(err)
	}
	return tag.RowsAffected() == 1, nil
}

// CompleteProject завершает проект, находящийся в работе.
func (r *PostgresProjectRepository) CompleteProject(ctx context.Context, projectId string) (bool, error) {
	updateQuery := `UPDATE project SET status = $1
	                WHERE id = $2 AND status = $3 AND freelancer_id IS NOT NULL`
	tag, err := r.DB.Exec(ctx, updateQuery, models.CompletedProject, projectId, models.InProgressProject)
	if err != nil {
		return false, translateError(err)
	}
	return tag.RowsAffected() == 1, nil
}
