package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/senyabanana/freelance-match/internal/metrics"
	"github.com/senyabanana/freelance-match/internal/models"
	"github.com/senyabanana/freelance-match/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProposalService struct {
	Deps
}

// NewProposalService создает новый экземпляр ProposalService.
func NewProposalService(deps Deps) *ProposalService {
	return &ProposalService{Deps: deps.withDefaults()}
}

// SubmitProposal создает новое предложение по открытому проекту.
func (s *ProposalService) SubmitProposal(ctx context.Context, caller models.Caller, req models.ProposalRequest) (*models.Proposal, error) {
	if !caller.IsFreelancer() {
		return nil, models.ErrUnauthorized.WithMessage("only freelancers can submit proposals")
	}
	if req.ProjectID == "" {
		return nil, models.ErrInvalidInput.WithMessage("missing required field: projectId")
	}
	if req.BidAmount <= 0 {
		return nil, models.ErrInvalidInput.WithMessage("bidAmount must be positive")
	}
	if req.EstimatedDays <= 0 {
		return nil, models.ErrInvalidInput.WithMessage("estimatedDays must be positive")
	}

	proposal := &models.Proposal{
		ID:            uuid.New().String(),
		ProjectID:     req.ProjectID,
		FreelancerID:  caller.ID,
		BidAmount:     req.BidAmount,
		EstimatedDays: req.EstimatedDays,
		Message:       req.Message,
		Status:        models.PendingProposal,
		CreatedAt:     s.Now(),
	}

	err := s.Store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		return submitProposal(ctx, uow, proposal)
	})
	if err != nil {
		return nil, storageError(err)
	}

	metrics.IncrementTransition("proposal", string(models.PendingProposal))
	s.publish(ctx, models.EngagementEvent{
		Type:         models.ProposalSubmittedEvent,
		ProjectID:    proposal.ProjectID,
		ProposalID:   proposal.ID,
		FreelancerID: proposal.FreelancerID,
	})
	return proposal, nil
}

func submitProposal(ctx context.Context, uow repository.UnitOfWork, proposal *models.Proposal) error {
	project, err := loadProject(ctx, uow, proposal.ProjectID)
	if err != nil {
		return err
	}
	if project.Status != models.OpenProject {
		return models.ErrProjectNotOpen
	}
	return storageError(uow.Proposals().CreateProposal(ctx, proposal))
}

// GetProposal получает предложение. Доступно фрилансеру-автору, владельцу проекта и администратору.
func (s *ProposalService) GetProposal(ctx context.Context, caller models.Caller, proposalId string) (*models.Proposal, error) {
	uow := s.Store.Reader()
	proposal, err := loadProposal(ctx, uow, proposalId)
	if err != nil {
		return nil, err
	}
	if caller.IsFreelancer() && proposal.FreelancerID == caller.ID || caller.IsAdmin() {
		return proposal, nil
	}

	project, err := loadProject(ctx, uow, proposal.ProjectID)
	if err != nil {
		return nil, err
	}
	if !caller.OwnsProject(project) {
		return nil, models.ErrUnauthorized.WithMessage("you are not authorized to view this proposal")
	}
	return proposal, nil
}

// GetProjectProposals получает список предложений по проекту.
func (s *ProposalService) GetProjectProposals(ctx context.Context, caller models.Caller, projectId string) ([]models.Proposal, error) {
	uow := s.Store.Reader()
	project, err := loadProject(ctx, uow, projectId)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageProject(project) {
		return nil, models.ErrUnauthorized.WithMessage("user is not authorized to view proposals for this project")
	}
	proposals, err := uow.Proposals().GetProjectProposals(ctx, projectId)
	return proposals, storageError(err)
}

// GetUserProposals получает список предложений фрилансера.
func (s *ProposalService) GetUserProposals(ctx context.Context, caller models.Caller) ([]models.Proposal, error) {
	if !caller.IsFreelancer() {
		return nil, models.ErrUnauthorized.WithMessage("only freelancers have proposals")
	}
	proposals, err := s.Store.Reader().Proposals().GetFreelancerProposals(ctx, caller.ID)
	return proposals, storageError(err)
}

// SubmitProposalDecision принимает или отклоняет предложение.
func (s *ProposalService) SubmitProposalDecision(ctx context.Context, caller models.Caller, proposalId, decision string) (*models.Proposal, error) {
	switch models.ProposalDecision(decision) {
	case models.AcceptDecision:
		return s.AcceptProposal(ctx, caller, proposalId)
	case models.RejectDecision:
		return s.RejectProposal(ctx, caller, proposalId)
	default:
		return nil, models.ErrInvalidInput.WithMessage(
			fmt.Sprintf("invalid decision, must be either '%s' or '%s'", models.AcceptDecision, models.RejectDecision))
	}
}

// AcceptProposal принимает предложение и переводит проект в работу.
//
// Исход гонки решает только условный UPDATE ... WHERE status = 'open' внутри
// транзакции. Блокировка по проекту отмечает идущее принятие: занятая или
// недоступная блокировка не отклоняет вызов, и операция не ждёт её освобождения.
func (s *ProposalService) AcceptProposal(ctx context.Context, caller models.Caller, proposalId string) (*models.Proposal, error) {
	uow := s.Store.Reader()
	current, err := loadProposal(ctx, uow, proposalId)
	if err != nil {
		return nil, err
	}
	project, err := loadProject(ctx, uow, current.ProjectID)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageProject(project) {
		return nil, models.ErrUnauthorized.WithMessage("you are not authorized to decide on this proposal")
	}

	unlock, ok, err := s.Locker.TryLock(ctx, "accept:"+current.ProjectID)
	switch {
	case err != nil:
		s.Logger.Warn("accept lock unavailable, relying on conditional update",
			zap.String("project_id", current.ProjectID),
			zap.Error(err),
		)
	case !ok:
		metrics.IncrementAcceptLockBusy()
		s.Logger.Debug("accept lock is busy, relying on conditional update",
			zap.String("project_id", current.ProjectID),
		)
	default:
		defer unlock()
	}

	var accepted *models.Proposal
	err = s.Store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		accepted, project, err = acceptProposal(ctx, uow, caller, proposalId)
		return err
	})
	if err != nil {
		if errors.Is(err, models.ErrAlreadyAccepted) {
			metrics.IncrementAcceptConflict()
		}
		s.Logger.Info("proposal acceptance rejected",
			zap.String("proposal_id", proposalId),
			zap.String("project_id", current.ProjectID),
			zap.Error(err),
		)
		return nil, storageError(err)
	}

	metrics.IncrementTransition("proposal", string(models.AcceptedProposal))
	metrics.IncrementTransition("project", string(models.InProgressProject))
	s.publish(ctx, models.EngagementEvent{
		Type:         models.ProposalAcceptedEvent,
		ProjectID:    project.ID,
		ProposalID:   accepted.ID,
		ClientID:     project.ClientID,
		FreelancerID: accepted.FreelancerID,
	})
	return accepted, nil
}

func acceptProposal(ctx context.Context, uow repository.UnitOfWork, caller models.Caller, proposalId string) (*models.Proposal, *models.Project, error) {
	proposal, err := loadProposal(ctx, uow, proposalId)
	if err != nil {
		return nil, nil, err
	}
	project, err := loadProject(ctx, uow, proposal.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if !caller.CanManageProject(project) {
		return nil, nil, models.ErrUnauthorized.WithMessage("you are not authorized to decide on this proposal")
	}

	if proposal.Status == models.AcceptedProposal {
		return nil, nil, models.ErrAlreadyAccepted.WithMessage("proposal is already accepted")
	}
	if !canMoveProposal(proposal.Status, models.AcceptedProposal) {
		return nil, nil, models.ErrProposalNotPending
	}
	// Проект покидает статус open только при принятии предложения.
	if !canMoveProject(project.Status, models.InProgressProject) {
		return nil, nil, models.ErrAlreadyAccepted
	}

	_, err = uow.Proposals().GetAcceptedProposal(ctx, project.ID)
	switch {
	case err == nil:
		return nil, nil, models.ErrAlreadyAccepted
	case !errors.Is(err, repository.ErrNotFound):
		return nil, nil, storageError(err)
	}

	started, err := uow.Projects().StartProject(ctx, project.ID, proposal.FreelancerID)
	if err != nil {
		return nil, nil, storageError(err)
	}
	if !started {
		return nil, nil, models.ErrAlreadyAccepted
	}

	updated, err := uow.Proposals().UpdateProposalStatus(ctx, proposal.ID, models.PendingProposal, models.AcceptedProposal)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, nil, models.ErrAlreadyAccepted
	}
	if err != nil {
		return nil, nil, storageError(err)
	}
	if !updated {
		return nil, nil, models.ErrProposalNotPending
	}

	proposal.Status = models.AcceptedProposal
	project.Status = models.InProgressProject
	project.FreelancerID = &proposal.FreelancerID
	return proposal, project, nil
}

// RejectProposal отклоняет ожидающее предложение. Проект не меняется.
func (s *ProposalService) RejectProposal(ctx context.Context, caller models.Caller, proposalId string) (*models.Proposal, error) {
	var rejected *models.Proposal
	err := s.Store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		proposal, err := loadProposal(ctx, uow, proposalId)
		if err != nil {
			return err
		}
		project, err := loadProject(ctx, uow, proposal.ProjectID)
		if err != nil {
			return err
		}
		if !caller.CanManageProject(project) {
			return models.ErrUnauthorized.WithMessage("you are not authorized to decide on this proposal")
		}
		rejected, err = moveProposal(ctx, uow, proposal, models.RejectedProposal, models.ErrProposalNotPending)
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}

	metrics.IncrementTransition("proposal", string(models.RejectedProposal))
	s.publish(ctx, models.EngagementEvent{
		Type:         models.ProposalRejectedEvent,
		ProjectID:    rejected.ProjectID,
		ProposalID:   rejected.ID,
		FreelancerID: rejected.FreelancerID,
	})
	return rejected, nil
}

// MarkProposalCompleted отмечает принятое предложение выполненным. Доступно только автору предложения.
func (s *ProposalService) MarkProposalCompleted(ctx context.Context, caller models.Caller, proposalId string) (*models.Proposal, error) {
	var completed *models.Proposal
	err := s.Store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		proposal, err := loadProposal(ctx, uow, proposalId)
		if err != nil {
			return err
		}
		if !caller.IsFreelancer() || proposal.FreelancerID != caller.ID {
			return models.ErrUnauthorized.WithMessage("this proposal does not belong to the freelancer")
		}
		completed, err = moveProposal(ctx, uow, proposal, models.CompletedByFreelancerProposal, models.ErrProposalNotAccepted)
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}

	metrics.IncrementTransition("proposal", string(models.CompletedByFreelancerProposal))
	s.publish(ctx, models.EngagementEvent{
		Type:         models.ProposalCompletedEvent,
		ProjectID:    completed.ProjectID,
		ProposalID:   completed.ID,
		FreelancerID: completed.FreelancerID,
	})
	return completed, nil
}

// moveProposal выполняет переход по таблице разрешённых переходов.
func moveProposal(ctx context.Context, uow repository.UnitOfWork, proposal *models.Proposal, to models.ProposalStatus, notAllowed error) (*models.Proposal, error) {
	if !canMoveProposal(proposal.Status, to) {
		return nil, notAllowed
	}
	updated, err := uow.Proposals().UpdateProposalStatus(ctx, proposal.ID, proposal.Status, to)
	if err != nil {
		return nil, storageError(err)
	}
	if !updated {
		return nil, notAllowed
	}
	proposal.Status = to
	return proposal, nil
}

// DeleteProposal удаляет предложение. Разрешено только для ожидающих предложений,
// чтобы проект не ссылался на удалённое принятое предложение.
func (s *ProposalService) DeleteProposal(ctx context.Context, caller models.Caller, proposalId string) error {
	err := s.Store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		proposal, err := loadProposal(ctx, uow, proposalId)
		if err != nil {
			return err
		}

		authorized := caller.IsFreelancer() && proposal.FreelancerID == caller.ID
		if !authorized && caller.IsClient() {
			project, err := loadProject(ctx, uow, proposal.ProjectID)
			if err != nil {
				return err
			}
			authorized = caller.OwnsProject(project)
		}
		if !authorized {
			return models.ErrUnauthorized.WithMessage("you are not authorized to delete this proposal")
		}

		if proposal.Status != models.PendingProposal {
			return models.ErrProposalNotDeletable
		}
		deleted, err := uow.Proposals().DeleteProposal(ctx, proposal.ID, models.PendingProposal)
		if err != nil {
			return storageError(err)
		}
		if !deleted {
			return models.ErrProposalNotDeletable
		}
		return nil
	})
	return storageError(err)
}
