package services

import (
	"context"
	"errors"
	"testing"

	"github.com/senyabanana/freelance-match/internal/models"
	"github.com/senyabanana/freelance-match/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProject(t *testing.T) {
	ctx := context.Background()

	t.Run("client creates an open project", func(t *testing.T) {
		f := newFixture(t)
		budget := 2500.0
		project, err := f.projects.CreateProject(ctx, owner, models.ProjectRequest{
			Title:       "Landing page",
			Description: "Static landing page",
			SkillIDs:    []string{"go", "sql", "go"},
			Budget:      &budget,
		})
		require.NoError(t, err)

		assert.Equal(t, models.OpenProject, project.Status)
		assert.Nil(t, project.FreelancerID)
		assert.Equal(t, owner.ID, project.ClientID)
		assert.Equal(t, []string{"go", "sql"}, project.SkillIDs)

		stored := f.project(t, project.ID)
		assert.Equal(t, []string{"go", "sql"}, stored.SkillIDs)
		assert.Equal(t, []models.EventType{models.ProjectCreatedEvent}, f.events.Types())
	})

	tests := []struct {
		name     string
		caller   models.Caller
		req      models.ProjectRequest
		wantKind models.ErrorKind
	}{
		{
			name:     "freelancer cannot create projects",
			caller:   freelancerCaller("fl-1"),
			req:      models.ProjectRequest{Title: "t", Description: "d"},
			wantKind: models.UnauthorizedKind,
		},
		{
			name:     "missing title",
			caller:   owner,
			req:      models.ProjectRequest{Description: "d"},
			wantKind: models.InvalidInputKind,
		},
		{
			name:     "unknown skill",
			caller:   owner,
			req:      models.ProjectRequest{Title: "t", Description: "d", SkillIDs: []string{"go", "cobol"}},
			wantKind: models.InvalidInputKind,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.projects.CreateProject(ctx, tt.caller, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, models.KindOf(err))
			assert.Empty(t, f.events.Types())
		})
	}
}

func TestGetProjectAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	open := f.createProject(t, "go")
	started, _ := f.startedProject(t, freelancerCaller("fl-1"))

	_, err := f.projects.GetProject(ctx, freelancerCaller("fl-2"), open.ID)
	assert.NoError(t, err, "open projects are visible to freelancers")

	_, err = f.projects.GetProject(ctx, freelancerCaller("fl-1"), started.ID)
	assert.NoError(t, err, "assigned freelancer sees the project")

	_, err = f.projects.GetProject(ctx, freelancerCaller("fl-2"), started.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.projects.GetProject(ctx, stranger, open.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.projects.GetProject(ctx, admin, started.ID)
	assert.NoError(t, err)

	_, err = f.projects.GetProject(ctx, owner, "missing")
	assert.ErrorIs(t, err, models.ErrProjectNotFound)
}

func TestListProjects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	open := f.createProject(t)
	started, _ := f.startedProject(t, freelancerCaller("fl-1"))

	openProjects, err := f.projects.FetchOpenProjects(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, openProjects, 1)
	assert.Equal(t, open.ID, openProjects[0].ID)

	_, err = f.projects.FetchOpenProjects(ctx, "100", "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	mine, err := f.projects.GetUserProjects(ctx, owner, "", "")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	assigned, err := f.projects.GetUserProjects(ctx, freelancerCaller("fl-1"), "", "")
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, started.ID, assigned[0].ID)

	_, err = f.projects.GetUserProjects(ctx, admin, "", "")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestCompleteProject(t *testing.T) {
	ctx := context.Background()

	t.Run("completes an in-progress project with an accepted proposal", func(t *testing.T) {
		f := newFixture(t)
		project, _ := f.startedProject(t, freelancerCaller("fl-1"))

		completed, err := f.projects.CompleteProject(ctx, owner, project.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CompletedProject, completed.Status)
		assert.Equal(t, models.CompletedProject, f.project(t, project.ID).Status)
		assert.Contains(t, f.events.Types(), models.ProjectCompletedEvent)
	})

	t.Run("open project is not in progress", func(t *testing.T) {
		f := newFixture(t)
		project := f.createProject(t)

		_, err := f.projects.CompleteProject(ctx, owner, project.ID)
		assert.ErrorIs(t, err, models.ErrNotInProgress)
		assert.Equal(t, models.InvalidTransitionKind, models.KindOf(err))
	})

	t.Run("completed project cannot be completed again", func(t *testing.T) {
		f := newFixture(t)
		project := f.completedProject(t, freelancerCaller("fl-1"))

		_, err := f.projects.CompleteProject(ctx, owner, project.ID)
		assert.ErrorIs(t, err, models.ErrNotInProgress)
	})

	t.Run("pending proposal does not qualify", func(t *testing.T) {
		f := newFixture(t)
		project := f.createProject(t)
		f.submit(t, project.ID, freelancerCaller("fl-1"))

		err := f.store.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
			_, err := uow.Projects().StartProject(ctx, project.ID, "fl-1")
			return err
		})
		require.NoError(t, err)

		_, err = f.projects.CompleteProject(ctx, owner, project.ID)
		assert.ErrorIs(t, err, models.ErrNoQualifyingProposal)
		assert.Equal(t, models.InProgressProject, f.project(t, project.ID).Status)
	})

	t.Run("only the owner or an admin can complete", func(t *testing.T) {
		f := newFixture(t)
		project, _ := f.startedProject(t, freelancerCaller("fl-1"))

		_, err := f.projects.CompleteProject(ctx, stranger, project.ID)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
		_, err = f.projects.CompleteProject(ctx, freelancerCaller("fl-1"), project.ID)
		assert.ErrorIs(t, err, models.ErrUnauthorized)

		_, err = f.projects.CompleteProject(ctx, admin, project.ID)
		assert.NoError(t, err)
	})
}

type stubProjects struct {
	repository.ProjectRepository
	project *models.Project
}

func (s stubProjects) GetProject(context.Context, string) (*models.Project, error) {
	p := *s.project
	return &p, nil
}

type stubUnit struct {
	repository.UnitOfWork
	projects repository.ProjectRepository
}

func (u stubUnit) Projects() repository.ProjectRepository { return u.projects }

func TestCompleteProjectWithoutFreelancer(t *testing.T) {
	uow := stubUnit{projects: stubProjects{project: &models.Project{
		ID:       "p-1",
		ClientID: owner.ID,
		Status:   models.InProgressProject,
	}}}

	_, err := completeProject(context.Background(), uow, owner, "p-1")
	assert.ErrorIs(t, err, models.ErrNoFreelancerAssigned)
}

type failingProjects struct {
	repository.ProjectRepository
}

func (failingProjects) GetProject(context.Context, string) (*models.Project, error) {
	return nil, errors.New("connection refused")
}

func TestStorageFailureIsPersistenceFailure(t *testing.T) {
	uow := stubUnit{projects: failingProjects{}}

	_, err := completeProject(context.Background(), uow, owner, "p-1")
	require.Error(t, err)
	assert.Equal(t, models.PersistenceFailureKind, models.KindOf(err))
	assert.ErrorContains(t, err, "connection refused")
}
