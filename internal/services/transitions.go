package services

import (
	"github.com/senyabanana/freelance-match/internal/models"
	"github.com/senyabanana/freelance-match/internal/utils"
)

var allowedProjectTransition = map[models.ProjectStatus][]models.ProjectStatus{
	models.OpenProject:       {models.InProgressProject},
	models.InProgressProject: {models.CompletedProject},
	models.CompletedProject:  {},
}

var allowedProposalTransition = map[models.ProposalStatus][]models.ProposalStatus{
	models.PendingProposal:               {models.AcceptedProposal, models.RejectedProposal},
	models.AcceptedProposal:              {models.CompletedByFreelancerProposal},
	models.RejectedProposal:              {},
	models.CompletedByFreelancerProposal: {},
}

func canMoveProject(from, to models.ProjectStatus) bool {
	return utils.Contains(allowedProjectTransition[from], to)
}

func canMoveProposal(from, to models.ProposalStatus) bool {
	return utils.Contains(allowedProposalTransition[from], to)
}
