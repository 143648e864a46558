package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/senyabanana/freelance-match/internal/events"
	"github.com/senyabanana/freelance-match/internal/lock"
	"github.com/senyabanana/freelance-match/internal/models"
	"github.com/senyabanana/freelance-match/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	owner    = models.Caller{ID: "client-1", Role: models.ClientRole}
	stranger = models.Caller{ID: "client-2", Role: models.ClientRole}
	admin    = models.Caller{ID: "admin-1", Role: models.AdminRole}
)

func freelancerCaller(id string) models.Caller {
	return models.Caller{ID: id, Role: models.FreelancerRole}
}

type fixture struct {
	store  *repository.MemoryStore
	events *events.Recorder

	projects        *ProjectService
	proposals       *ProposalService
	reviews         *ReviewService
	recommendations *RecommendationService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithLocker(t, lock.NewLocalLocker())
}

func newFixtureWithLocker(t *testing.T, locker lock.Locker) *fixture {
	t.Helper()

	store := repository.NewMemoryStore()
	for _, s := range []models.Skill{
		{ID: "go", Name: "Go"},
		{ID: "sql", Name: "SQL"},
		{ID: "k8s", Name: "Kubernetes"},
	} {
		store.AddSkill(s)
	}

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var tick atomic.Int64
	recorder := &events.Recorder{}
	deps := Deps{
		Store:  store,
		Locker: locker,
		Events: recorder,
		Logger: zap.NewNop(),
		Now: func() time.Time {
			return base.Add(time.Duration(tick.Add(1)) * time.Second)
		},
	}

	return &fixture{
		store:           store,
		events:          recorder,
		projects:        NewProjectService(deps),
		proposals:       NewProposalService(deps),
		reviews:         NewReviewService(deps),
		recommendations: NewRecommendationService(deps),
	}
}

func (f *fixture) createProject(t *testing.T, skills ...string) *models.Project {
	t.Helper()
	project, err := f.projects.CreateProject(context.Background(), owner, models.ProjectRequest{
		Title:       "Billing service",
		Description: "Rewrite the billing service",
		SkillIDs:    skills,
	})
	require.NoError(t, err)
	return project
}

func (f *fixture) submit(t *testing.T, projectId string, freelancer models.Caller) *models.Proposal {
	t.Helper()
	proposal, err := f.proposals.SubmitProposal(context.Background(), freelancer, models.ProposalRequest{
		ProjectID:     projectId,
		BidAmount:     1500,
		EstimatedDays: 14,
		Message:       "I can do it",
	})
	require.NoError(t, err)
	return proposal
}

// startedProject создает проект с принятым предложением фрилансера.
func (f *fixture) startedProject(t *testing.T, freelancer models.Caller, skills ...string) (*models.Project, *models.Proposal) {
	t.Helper()
	ctx := context.Background()
	project := f.createProject(t, skills...)
	proposal := f.submit(t, project.ID, freelancer)
	_, err := f.proposals.AcceptProposal(ctx, owner, proposal.ID)
	require.NoError(t, err)
	return project, proposal
}

// completedProject проводит проект через весь жизненный цикл.
func (f *fixture) completedProject(t *testing.T, freelancer models.Caller, skills ...string) *models.Project {
	t.Helper()
	ctx := context.Background()
	project, proposal := f.startedProject(t, freelancer, skills...)
	_, err := f.proposals.MarkProposalCompleted(ctx, freelancer, proposal.ID)
	require.NoError(t, err)
	completed, err := f.projects.CompleteProject(ctx, owner, project.ID)
	require.NoError(t, err)
	return completed
}

func (f *fixture) project(t *testing.T, projectId string) *models.Project {
	t.Helper()
	project, err := f.store.Reader().Projects().GetProject(context.Background(), projectId)
	require.NoError(t, err)
	return project
}

func (f *fixture) proposal(t *testing.T, proposalId string) *models.Proposal {
	t.Helper()
	proposal, err := f.store.Reader().Proposals().GetProposal(context.Background(), proposalId)
	require.NoError(t, err)
	return proposal
}
