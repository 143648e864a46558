package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/senyabanana/freelance-match/internal/lock"
	"github.com/senyabanana/freelance-match/internal/models"
	"github.com/senyabanana/freelance-match/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitProposal(t *testing.T) {
	ctx := context.Background()

	t.Run("pending proposal on an open project", func(t *testing.T) {
		f := newFixture(t)
		project := f.createProject(t)

		proposal := f.submit(t, project.ID, freelancerCaller("fl-1"))
		assert.Equal(t, models.PendingProposal, proposal.Status)
		assert.Equal(t, "fl-1", proposal.FreelancerID)
		assert.Equal(t, []models.EventType{models.ProjectCreatedEvent, models.ProposalSubmittedEvent}, f.events.Types())
	})

	t.Run("project in progress is not open", func(t *testing.T) {
		f := newFixture(t)
		project, _ := f.startedProject(t, freelancerCaller("fl-1"))

		_, err := f.proposals.SubmitProposal(ctx, freelancerCaller("fl-2"), models.ProposalRequest{
			ProjectID: project.ID, BidAmount: 100, EstimatedDays: 3,
		})
		assert.ErrorIs(t, err, models.ErrProjectNotOpen)
		assert.Equal(t, models.InvalidTransitionKind, models.KindOf(err))
	})

	tests := []struct {
		name    string
		caller  models.Caller
		req     models.ProposalRequest
		wantErr error
	}{
		{
			name:    "client cannot submit",
			caller:  owner,
			req:     models.ProposalRequest{ProjectID: "p", BidAmount: 1, EstimatedDays: 1},
			wantErr: models.ErrUnauthorized,
		},
		{
			name:    "bid must be positive",
			caller:  freelancerCaller("fl-1"),
			req:     models.ProposalRequest{ProjectID: "p", BidAmount: 0, EstimatedDays: 1},
			wantErr: models.ErrInvalidInput,
		},
		{
			name:    "estimate must be positive",
			caller:  freelancerCaller("fl-1"),
			req:     models.ProposalRequest{ProjectID: "p", BidAmount: 10, EstimatedDays: 0},
			wantErr: models.ErrInvalidInput,
		},
		{
			name:    "missing project",
			caller:  freelancerCaller("fl-1"),
			req:     models.ProposalRequest{ProjectID: "missing", BidAmount: 10, EstimatedDays: 1},
			wantErr: models.ErrProjectNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.proposals.SubmitProposal(ctx, tt.caller, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAcceptProposal(t *testing.T) {
	ctx := context.Background()

	t.Run("accept starts the project", func(t *testing.T) {
		f := newFixture(t)
		project := f.createProject(t)
		proposal := f.submit(t, project.ID, freelancerCaller("fl-1"))

		accepted, err := f.proposals.AcceptProposal(ctx, owner, proposal.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AcceptedProposal, accepted.Status)

		stored := f.project(t, project.ID)
		assert.Equal(t, models.InProgressProject, stored.Status)
		require.NotNil(t, stored.FreelancerID)
		assert.Equal(t, "fl-1", *stored.FreelancerID)
		assert.Contains(t, f.events.Types(), models.ProposalAcceptedEvent)
	})

	t.Run("accepting the same proposal twice is a conflict", func(t *testing.T) {
		f := newFixture(t)
		_, proposal := f.startedProject(t, freelancerCaller("fl-1"))

		_, err := f.proposals.AcceptProposal(ctx, owner, proposal.ID)
		assert.ErrorIs(t, err, models.ErrAlreadyAccepted)
		assert.Equal(t, models.ConflictKind, models.KindOf(err))
	})

	t.Run("second proposal on a started project is a conflict", func(t *testing.T) {
		f := newFixture(t)
		project := f.createProject(t)
		first := f.submit(t, project.ID, freelancerCaller("fl-1"))
		second := f.submit(t, project.ID, freelancerCaller("fl-2"))

		_, err := f.proposals.AcceptProposal(ctx, owner, first.ID)
		require.NoError(t, err)
		_, err = f.proposals.AcceptProposal(ctx, owner, second.ID)
		assert.ErrorIs(t, err, models.ErrAlreadyAccepted)

		assert.Equal(t, models.PendingProposal, f.proposal(t, second.ID).Status)
		assert.Equal(t, "fl-1", *f.project(t, project.ID).FreelancerID)
	})

	t.Run("rejected proposal is not pending", func(t *testing.T) {
		f := newFixture(t)
		project := f.createProject(t)
		proposal := f.submit(t, project.ID, freelancerCaller("fl-1"))
		_, err := f.proposals.RejectProposal(ctx, owner, proposal.ID)
		require.NoError(t, err)

		_, err = f.proposals.AcceptProposal(ctx, owner, proposal.ID)
		assert.ErrorIs(t, err, models.ErrProposalNotPending)
		assert.Equal(t, models.OpenProject, f.project(t, project.ID).Status)
	})

	t.Run("only the owner or an admin decides", func(t *testing.T) {
		f := newFixture(t)
		project := f.createProject(t)
		proposal := f.submit(t, project.ID, freelancerCaller("fl-1"))

		_, err := f.proposals.AcceptProposal(ctx, stranger, proposal.ID)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
		_, err = f.proposals.AcceptProposal(ctx, freelancerCaller("fl-1"), proposal.ID)
		assert.ErrorIs(t, err, models.ErrUnauthorized)

		_, err = f.proposals.AcceptProposal(ctx, admin, proposal.ID)
		assert.NoError(t, err)
	})

	t.Run("held lock does not reject a valid accept", func(t *testing.T) {
		locker := lock.NewLocalLocker()
		f := newFixtureWithLocker(t, locker)
		project := f.createProject(t)
		proposal := f.submit(t, project.ID, freelancerCaller("fl-1"))

		unlock, ok, err := locker.TryLock(ctx, "accept:"+project.ID)
		require.NoError(t, err)
		require.True(t, ok)
		defer unlock()

		accepted, err := f.proposals.AcceptProposal(ctx, owner, proposal.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AcceptedProposal, accepted.Status)
		assert.Equal(t, models.InProgressProject, f.project(t, project.ID).Status)
	})

	t.Run("missing proposal", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.proposals.AcceptProposal(ctx, owner, "missing")
		assert.ErrorIs(t, err, models.ErrProposalNotFound)
	})
}

// brokenLocker имитирует недоступный Redis.
type brokenLocker struct{}

func (brokenLocker) TryLock(context.Context, string) (func(), bool, error) {
	return nil, false, errors.New("redis: connection refused")
}

func TestConcurrentAccept(t *testing.T) {
	const n = 16

	lockers := map[string]lock.Locker{
		"local lock":       lock.NewLocalLocker(),
		"lock unavailable": brokenLocker{},
	}
	for name, locker := range lockers {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixtureWithLocker(t, locker)
			project := f.createProject(t)

			ids := make([]string, n)
			for i := range ids {
				ids[i] = f.submit(t, project.ID, freelancerCaller(fmt.Sprintf("fl-%d", i))).ID
			}

			var (
				wg    sync.WaitGroup
				start = make(chan struct{})
				errs  = make([]error, n)
			)
			for i := range ids {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					_, errs[i] = f.proposals.AcceptProposal(ctx, owner, ids[i])
				}(i)
			}
			close(start)
			wg.Wait()

			var succeeded, conflicts int
			for _, err := range errs {
				switch {
				case err == nil:
					succeeded++
				case models.KindOf(err) == models.ConflictKind:
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}
			assert.Equal(t, 1, succeeded)
			assert.Equal(t, n-1, conflicts)

			proposals, err := f.proposals.GetProjectProposals(ctx, owner, project.ID)
			require.NoError(t, err)
			accepted := 0
			for _, p := range proposals {
				if p.Status == models.AcceptedProposal {
					accepted++
					assert.Equal(t, p.FreelancerID, *f.project(t, project.ID).FreelancerID)
				}
			}
			assert.Equal(t, 1, accepted)
		})
	}
}

// gatedTx задерживает первую транзакцию, пока тест не откроет gate.
type gatedTx struct {
	repository.TxManager
	entered chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func (g *gatedTx) WithinTx(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.gate
	}
	return g.TxManager.WithinTx(ctx, fn)
}

func TestAcceptWhileFailingAcceptHoldsLock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	project := f.createProject(t)
	rejected := f.submit(t, project.ID, freelancerCaller("fl-1"))
	pending := f.submit(t, project.ID, freelancerCaller("fl-2"))
	_, err := f.proposals.RejectProposal(ctx, owner, rejected.ID)
	require.NoError(t, err)

	gated := &gatedTx{TxManager: f.store, entered: make(chan struct{}), gate: make(chan struct{})}
	proposals := NewProposalService(Deps{Store: gated, Locker: lock.NewLocalLocker()})

	failed := make(chan error, 1)
	go func() {
		_, err := proposals.AcceptProposal(ctx, owner, rejected.ID)
		failed <- err
	}()
	<-gated.entered

	accepted, err := proposals.AcceptProposal(ctx, owner, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AcceptedProposal, accepted.Status)

	close(gated.gate)
	err = <-failed
	assert.ErrorIs(t, err, models.ErrProposalNotPending)

	assert.Equal(t, models.InProgressProject, f.project(t, project.ID).Status)
	assert.Equal(t, "fl-2", *f.project(t, project.ID).FreelancerID)
	assert.Equal(t, models.AcceptedProposal, f.proposal(t, pending.ID).Status)
}

func TestSubmitProposalDecision(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	project := f.createProject(t)
	first := f.submit(t, project.ID, freelancerCaller("fl-1"))
	second := f.submit(t, project.ID, freelancerCaller("fl-2"))

	_, err := f.proposals.SubmitProposalDecision(ctx, owner, first.ID, "maybe")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	rejected, err := f.proposals.SubmitProposalDecision(ctx, owner, first.ID, "rejected")
	require.NoError(t, err)
	assert.Equal(t, models.RejectedProposal, rejected.Status)
	assert.Equal(t, models.OpenProject, f.project(t, project.ID).Status, "rejection does not touch the project")

	_, err = f.proposals.SubmitProposalDecision(ctx, owner, first.ID, "rejected")
	assert.ErrorIs(t, err, models.ErrProposalNotPending)

	accepted, err := f.proposals.SubmitProposalDecision(ctx, owner, second.ID, "accepted")
	require.NoError(t, err)
	assert.Equal(t, models.AcceptedProposal, accepted.Status)

	_, err = f.proposals.SubmitProposalDecision(ctx, owner, second.ID, "rejected")
	assert.ErrorIs(t, err, models.ErrProposalNotPending)
}

func TestMarkProposalCompleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	project := f.createProject(t)
	proposal := f.submit(t, project.ID, freelancerCaller("fl-1"))

	_, err := f.proposals.MarkProposalCompleted(ctx, freelancerCaller("fl-1"), proposal.ID)
	assert.ErrorIs(t, err, models.ErrProposalNotAccepted)

	_, err = f.proposals.AcceptProposal(ctx, owner, proposal.ID)
	require.NoError(t, err)

	_, err = f.proposals.MarkProposalCompleted(ctx, freelancerCaller("fl-2"), proposal.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	_, err = f.proposals.MarkProposalCompleted(ctx, owner, proposal.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	completed, err := f.proposals.MarkProposalCompleted(ctx, freelancerCaller("fl-1"), proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CompletedByFreelancerProposal, completed.Status)

	_, err = f.proposals.MarkProposalCompleted(ctx, freelancerCaller("fl-1"), proposal.ID)
	assert.ErrorIs(t, err, models.ErrProposalNotAccepted)

	done, err := f.projects.CompleteProject(ctx, owner, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CompletedProject, done.Status)
}

func TestDeleteProposal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	project := f.createProject(t)
	mine := f.submit(t, project.ID, freelancerCaller("fl-1"))
	other := f.submit(t, project.ID, freelancerCaller("fl-2"))
	accepted := f.submit(t, project.ID, freelancerCaller("fl-3"))

	err := f.proposals.DeleteProposal(ctx, freelancerCaller("fl-2"), mine.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	err = f.proposals.DeleteProposal(ctx, stranger, mine.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	require.NoError(t, f.proposals.DeleteProposal(ctx, freelancerCaller("fl-1"), mine.ID))
	_, err = f.proposals.GetProposal(ctx, admin, mine.ID)
	assert.ErrorIs(t, err, models.ErrProposalNotFound)

	require.NoError(t, f.proposals.DeleteProposal(ctx, owner, other.ID))

	_, err = f.proposals.AcceptProposal(ctx, owner, accepted.ID)
	require.NoError(t, err)
	err = f.proposals.DeleteProposal(ctx, freelancerCaller("fl-3"), accepted.ID)
	assert.ErrorIs(t, err, models.ErrProposalNotDeletable)
	assert.Equal(t, models.AcceptedProposal, f.proposal(t, accepted.ID).Status)
}

func TestProposalReadAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	project := f.createProject(t)
	proposal := f.submit(t, project.ID, freelancerCaller("fl-1"))
	f.submit(t, project.ID, freelancerCaller("fl-2"))

	for _, caller := range []models.Caller{owner, admin, freelancerCaller("fl-1")} {
		_, err := f.proposals.GetProposal(ctx, caller, proposal.ID)
		assert.NoError(t, err, caller.ID)
	}
	for _, caller := range []models.Caller{stranger, freelancerCaller("fl-2")} {
		_, err := f.proposals.GetProposal(ctx, caller, proposal.ID)
		assert.ErrorIs(t, err, models.ErrUnauthorized, caller.ID)
	}

	all, err := f.proposals.GetProjectProposals(ctx, owner, project.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	_, err = f.proposals.GetProjectProposals(ctx, stranger, project.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	mine, err := f.proposals.GetUserProposals(ctx, freelancerCaller("fl-1"))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, proposal.ID, mine[0].ID)
	_, err = f.proposals.GetUserProposals(ctx, owner)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestEventFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.events.Err = errors.New("broker down")

	project := f.createProject(t)
	proposal := f.submit(t, project.ID, freelancerCaller("fl-1"))
	_, err := f.proposals.AcceptProposal(context.Background(), owner, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InProgressProject, f.project(t, project.ID).Status)
	assert.Empty(t, f.events.Types())
}
