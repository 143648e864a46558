package services

import (
	"context"
	"errors"
	"time"

	"github.com/senyabanana/freelance-match/internal/events"
	"github.com/senyabanana/freelance-match/internal/lock"
	"github.com/senyabanana/freelance-match/internal/metrics"
	"github.com/senyabanana/freelance-match/internal/models"
	"github.com/senyabanana/freelance-match/internal/repository"

	"go.uber.org/zap"
)

// Deps - общие зависимости сервисов.
type Deps struct {
	Store  repository.TxManager
	Locker lock.Locker
	Events events.Publisher
	Logger *zap.Logger
	Now    func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Locker == nil {
		d.Locker = lock.NewLocalLocker()
	}
	if d.Events == nil {
		d.Events = events.NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// publish отправляет событие после фиксации транзакции. Ошибка брокера не
// отменяет уже выполненную операцию и только логируется.
func (d Deps) publish(ctx context.Context, event models.EngagementEvent) {
	event.OccurredAt = d.Now()
	if err := d.Events.Publish(ctx, event); err != nil {
		metrics.IncrementEventPublishFailure(string(event.Type))
		d.Logger.Warn("failed to publish engagement event",
			zap.String("type", string(event.Type)),
			zap.String("project_id", event.ProjectID),
			zap.Error(err),
		)
	}
}

// storageError оставляет доменные ошибки как есть, а остальные оборачивает в PersistenceFailure.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	var e *models.ErrorResponse
	if errors.As(err, &e) {
		return err
	}
	return models.NewPersistenceFailure(err)
}

func loadProject(ctx context.Context, uow repository.UnitOfWork, projectId string) (*models.Project, error) {
	if projectId == "" {
		return nil, models.ErrInvalidInput.WithMessage("projectId is required")
	}
	project, err := uow.Projects().GetProject(ctx, projectId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.ErrProjectNotFound
	}
	if err != nil {
		return nil, storageError(err)
	}
	return project, nil
}

func loadProposal(ctx context.Context, uow repository.UnitOfWork, proposalId string) (*models.Proposal, error) {
	if proposalId == "" {
		return nil, models.ErrInvalidInput.WithMessage("proposalId is required")
	}
	proposal, err := uow.Proposals().GetProposal(ctx, proposalId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.ErrProposalNotFound
	}
	if err != nil {
		return nil, storageError(err)
	}
	return proposal, nil
}
