package repository

import (
	"context"

	"github.com/senyabanana/freelance-match/internal/models"
)

const proposalColumns = `id, project_id, freelancer_id, bid_amount, estimated_days, COALESCE(message, ''), status, created_at`

// PostgresProposalRepository - реализация ProposalRepository для базы данных.
type PostgresProposalRepository struct {
	DB Querier
}

// NewPostgresProposalRepository создает новый экземпляр PostgresProposalRepository.
func NewPostgresProposalRepository(db Querier) *PostgresProposalRepository {
	return &PostgresProposalRepository{DB: db}
}

func scanProposal(row rowScanner) (*models.Proposal, error) {
	var proposal models.Proposal
	err := row.Scan(
		&proposal.ID,
		&proposal.ProjectID,
		&proposal.FreelancerID,
		&proposal.BidAmount,
		&proposal.EstimatedDays,
		&proposal.Message,
		&proposal.Status,
		&proposal.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// CreateProposal создает новое предложение.
func (r *PostgresProposalRepository) CreateProposal(ctx context.Context, proposal *models.Proposal) error {
	insertQuery := `INSERT INTO proposal (id, project_id, freelancer_id, bid_amount, estimated_days, message, status, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		proposal.ID,
		proposal.ProjectID,
		proposal.FreelancerID,
		proposal.BidAmount,
		proposal.EstimatedDays,
		proposal.Message,
		proposal.Status,
		proposal.CreatedAt)
	return translateError(err)
}

// GetProposal получает предложение по ID.
func (r *PostgresProposalRepository) GetProposal(ctx context.Context, proposalId string) (*models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposal WHERE id = $1`
	proposal, err := scanProposal(r.DB.QueryRow(ctx, query, proposalId))
	if err != nil {
		return nil, translateError(err)
	}
	return proposal, nil
}

func (r *PostgresProposalRepository) queryProposals(ctx context.Context, query string, args ...any) ([]models.Proposal, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []models.Proposal
	for rows.Next() {
		proposal, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, *proposal)
	}
	return proposals, rows.Err()
}

// GetProjectProposals возвращает список предложений по проекту.
func (r *PostgresProposalRepository) GetProjectProposals(ctx context.Context, projectId string) ([]models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposal WHERE project_id = $1 ORDER BY created_at, id`
	return r.queryProposals(ctx, query, projectId)
}

// GetFreelancerProposals возвращает список предложений фрилансера.
func (r *PostgresProposalRepository) GetFreelancerProposals(ctx context.Context, freelancerId string) ([]models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposal WHERE freelancer_id = $1 ORDER BY created_at DESC, id`
	return r.queryProposals(ctx, query, freelancerId)
}

// GetAcceptedProposal возвращает принятое предложение проекта.
func (r *PostgresProposalRepository) GetAcceptedProposal(ctx context.Context, projectId string) (*models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposal WHERE project_id = $1 AND status = $2 LIMIT 1`
	proposal, err := scanProposal(r.DB.QueryRow(ctx, query, projectId, models.AcceptedProposal))
	if err != nil {
		return nil, translateError(err)
	}
	return proposal, nil
}

// HasQualifyingProposal проверяет, есть ли у фрилансера принятое или выполненное предложение по проекту.
func (r *PostgresProposalRepository) HasQualifyingProposal(ctx context.Context, projectId, freelancerId string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM proposal WHERE project_id = $1 AND freelancer_id = $2 AND status IN ($3, $4))`
	err := r.DB.QueryRow(ctx, query, projectId, freelancerId,
		models.AcceptedProposal, models.CompletedByFreelancerProposal).Scan(&exists)
	return exists, translateError(err)
}

// UpdateProposalStatus меняет статус предложения.
func (r *PostgresProposalRepository) UpdateProposalStatus(ctx context.Context, proposalId string, from, to models.ProposalStatus) (bool, error) {
	updateQuery := `UPDATE proposal SET status = $1 WHERE id = $2 AND status = $3`
	tag, err := r.DB.Exec(ctx, updateQuery, to, proposalId, from)
	if err != nil {
		return false, translateError(err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteProposal удаляет предложение, если его статус не изменился.
func (r *PostgresProposalRepository) DeleteProposal(ctx context.Context, proposalId string, status models.ProposalStatus) (bool, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM proposal WHERE id = $1 AND status = $2`, proposalId, status)
	if err != nil {
		return false, translateError(err)
	}
	return tag.RowsAffected() == 1, nil
}
