package models

import "time"

type EventType string // Тип события жизненного цикла

const (
	ProjectCreatedEvent    EventType = "project.created"
	ProjectCompletedEvent  EventType = "project.completed"
	ProposalSubmittedEvent EventType = "proposal.submitted"
	ProposalAcceptedEvent  EventType = "proposal.accepted"
	ProposalRejectedEvent  EventType = "proposal.rejected"
	ProposalCompletedEvent EventType = "proposal.completed"
	ReviewCreatedEvent     EventType = "review.created"
)

// EngagementEvent публикуется после фиксации транзакции.
type EngagementEvent struct {
	Type         EventType `json:"type"`
	ProjectID    string    `json:"projectId"`
	ProposalID   string    `json:"proposalId,omitempty"`
	ReviewID     string    `json:"reviewId,omitempty"`
	ClientID     string    `json:"clientId,omitempty"`
	FreelancerID string    `json:"freelancerId,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}
