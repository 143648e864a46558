package services

import (
	"context"
	"fmt"

	"github.com/senyabanana/freelance-match/internal/metrics"
	"github.com/senyabanana/freelance-match/internal/models"
	"github.com/senyabanana/freelance-match/internal/repository"
	"github.com/senyabanana/freelance-match/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProjectService struct {
	Deps
}

// NewProjectService создаёт новый экземпляр ProjectService.
func NewProjectService(deps Deps) *ProjectService {
	return &ProjectService{Deps: deps.withDefaults()}
}

// CreateProject создает новый открытый проект клиента.
func (s *ProjectService) CreateProject(ctx context.Context, caller models.Caller, req models.ProjectRequest) (*models.Project, error) {
	if !caller.IsClient() {
		return nil, models.ErrUnauthorized.WithMessage("only clients can create projects")
	}
	if req.Title == "" || req.Description == "" {
		return nil, models.ErrInvalidInput.WithMessage("missing required fields: title or description")
	}
	if len(req.Title) > 100 {
		return nil, models.ErrInvalidInput.WithMessage("title must not exceed 100 characters")
	}
	if req.Budget != nil && *req.Budget < 0 {
		return nil, models.ErrInvalidInput.WithMessage("budget must not be negative")
	}
	skillIds := utils.Unique(req.SkillIDs)

	project := &models.Project{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		SkillIDs:    skillIds,
		Budget:      req.Budget,
		Deadline:    req.Deadline,
		ClientID:    caller.ID,
		Status:      models.OpenProject,
		CreatedAt:   s.Now(),
	}

	err := s.Store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		return createProject(ctx, uow, project)
	})
	if err != nil {
		return nil, storageError(err)
	}

	metrics.IncrementTransition("project", string(models.OpenProject))
	s.publish(ctx, models.EngagementEvent{
		Type:      models.ProjectCreatedEvent,
		ProjectID: project.ID,
		ClientID:  project.ClientID,
	})
	return project, nil
}

func createProject(ctx context.Context, uow repository.UnitOfWork, project *models.Project) error {
	if len(project.SkillIDs) > 0 {
		known, err := uow.Skills().CountSkills(ctx, project.SkillIDs)
		if err != nil {
			return storageError(err)
		}
		if known != len(project.SkillIDs) {
			return models.ErrInvalidInput.WithMessage("unknown skill in skillIds")
		}
	}
	if err := uow.Projects().CreateProject(ctx, project); err != nil {
		return storageError(err)
	}
	if err := uow.Skills().SetProjectSkills(ctx, project.ID, project.SkillIDs); err != nil {
		return storageError(err)
	}
	return nil
}

// GetProject получает проект с учётом прав пользователя.
func (s *ProjectService) GetProject(ctx context.Context, caller models.Caller, projectId string) (*models.Project, error) {
	project, err := loadProject(ctx, s.Store.Reader(), projectId)
	if err != nil {
		return nil, err
	}

	switch {
	case caller.IsAdmin(), caller.OwnsProject(project):
	case caller.IsFreelancer() && (project.Status == models.OpenProject || project.AssignedTo(caller.ID)):
	default:
		return nil, models.ErrUnauthorized.WithMessage("you are not authorized to view this project")
	}
	return project, nil
}

// FetchOpenProjects получает список открытых проектов.
func (s *ProjectService) FetchOpenProjects(ctx context.Context, limitStr, offsetStr string) ([]models.Project, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.ErrInvalidInput.WithMessage(err.Error())
	}
	projects, err := s.Store.Reader().Projects().GetOpenProjects(ctx, limit, offset)
	return projects, storageError(err)
}

// GetUserProjects получает проекты клиента или проекты, назначенные фрилансеру.
func (s *ProjectService) GetUserProjects(ctx context.Context, caller models.Caller, limitStr, offsetStr string) ([]models.Project, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.ErrInvalidInput.WithMessage(err.Error())
	}

	repo := s.Store.Reader().Projects()
	var projects []models.Project
	switch caller.Role {
	case models.ClientRole:
		projects, err = repo.GetClientProjects(ctx, caller.ID, limit, offset)
	case models.FreelancerRole:
		projects, err = repo.GetFreelancerProjects(ctx, caller.ID, limit, offset)
	default:
		return nil, models.ErrUnauthorized.WithMessage(fmt.Sprintf("role %q has no own projects", caller.Role))
	}
	return projects, storageError(err)
}

// CompleteProject завершает проект, находящийся в работе.
func (s *ProjectService) CompleteProject(ctx context.Context, caller models.Caller, projectId string) (*models.Project, error) {
	var project *models.Project
	err := s.Store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		project, err = completeProject(ctx, uow, caller, projectId)
		return err
	})
	if err != nil {
		s.Logger.Info("project completion rejected",
			zap.String("project_id", projectId),
			zap.String("caller_id", caller.ID),
			zap.Error(err),
		)
		return nil, storageError(err)
	}

	metrics.IncrementTransition("project", string(models.CompletedProject))
	s.publish(ctx, models.EngagementEvent{
		Type:         models.ProjectCompletedEvent,
		ProjectID:    project.ID,
		ClientID:     project.ClientID,
		FreelancerID: *project.FreelancerID,
	})
	return project, nil
}

func completeProject(ctx context.Context, uow repository.UnitOfWork, caller models.Caller, projectId string) (*models.Project, error) {
	project, err := loadProject(ctx, uow, projectId)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageProject(project) {
		return nil, models.ErrUnauthorized.WithMessage("you are not authorized to complete this project")
	}
	if !canMoveProject(project.Status, models.CompletedProject) {
		return nil, models.ErrNotInProgress
	}
	if project.FreelancerID == nil {
		return nil, models.ErrNoFreelancerAssigned
	}

	qualifies, err := uow.Proposals().HasQualifyingProposal(ctx, project.ID, *project.FreelancerID)
	if err != nil {
		return nil, storageError(err)
	}
	if !qualifies {
		return nil, models.ErrNoQualifyingProposal
	}

	done, err := uow.Projects().CompleteProject(ctx, project.ID)
	if err != nil {
		return nil, storageError(err)
	}
	if !done {
		return nil, models.ErrNotInProgress
	}
	project.Status = models.CompletedProject
	return project, nil
}
