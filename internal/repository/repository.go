package repository

import (
	"context"
	"errors"

	"github.com/senyabanana/freelance-match/internal/models"
)

var (
	// ErrNotFound возвращается, когда запись не найдена.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate возвращается при нарушении ограничения уникальности.
	ErrDuplicate = errors.New("duplicate record")
)

// ProjectRepository - интерфейс для работы с проектами.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, projectId string) (*models.Project, error)
	GetOpenProjects(ctx context.Context, limit, offset int) ([]models.Project, error)
	GetClientProjects(ctx context.Context, clientId string, limit, offset int) ([]models.Project, error)
	GetFreelancerProjects(ctx context.Context, freelancerId string, limit, offset int) ([]models.Project, error)
	// StartProject переводит проект из open в in_progress, только если он всё ещё открыт.
	StartProject(ctx context.Context, projectId, freelancerId string) (bool, error)
	// CompleteProject переводит проект из in_progress в completed.
	CompleteProject(ctx context.Context, projectId string) (bool, error)
}

// ProposalRepository - интерфейс для работы с предложениями.
type ProposalRepository interface {
	CreateProposal(ctx context.Context, proposal *models.Proposal) error
	GetProposal(ctx context.Context, proposalId string) (*models.Proposal, error)
	GetProjectProposals(ctx context.Context, projectId string) ([]models.Proposal, error)
	GetFreelancerProposals(ctx context.Context, freelancerId string) ([]models.Proposal, error)
	GetAcceptedProposal(ctx context.Context, projectId string) (*models.Proposal, error)
	HasQualifyingProposal(ctx context.Context, projectId, freelancerId string) (bool, error)
	// UpdateProposalStatus меняет статус, только если текущий статус равен from.
	UpdateProposalStatus(ctx context.Context, proposalId string, from, to models.ProposalStatus) (bool, error)
	DeleteProposal(ctx context.Context, proposalId string, status models.ProposalStatus) (bool, error)
}

// ReviewRepository - интерфейс для работы с отзывами.
type ReviewRepository interface {
	CreateReview(ctx context.Context, review *models.Review) error
	ReviewExists(ctx context.Context, projectId, freelancerId string) (bool, error)
	GetFreelancerReviews(ctx context.Context, freelancerId string, limit, offset int) ([]models.Review, error)
	GetRatingStats(ctx context.Context, freelancerIds []string) (map[string]models.RatingStats, error)
}

// SkillRepository - интерфейс для чтения навыков проектов и фрилансеров.
type SkillRepository interface {
	CountSkills(ctx context.Context, skillIds []string) (int, error)
	SetProjectSkills(ctx context.Context, projectId string, skillIds []string) error
	// FindFreelancersBySkills возвращает фрилансеров, у которых есть хотя бы один
	// из навыков, вместе с полным набором их навыков.
	FindFreelancersBySkills(ctx context.Context, skillIds []string) ([]models.Freelancer, error)
}

// UnitOfWork объединяет репозитории, работающие в рамках одной транзакции.
type UnitOfWork interface {
	Projects() ProjectRepository
	Proposals() ProposalRepository
	Reviews() ReviewRepository
	Skills() SkillRepository
}

// TxManager открывает транзакции и выдаёт репозитории для чтения вне транзакций.
// WithinTx фиксирует транзакцию, если fn вернула nil, и откатывает в противном случае.
type TxManager interface {
	Reader() UnitOfWork
	WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}
