package models

import "time"

type (
	ProposalStatus   string // Статус предложения
	ProposalDecision string // Решение клиента по предложению
)

const (
	PendingProposal               ProposalStatus = "pending"                 // Предложение ожидает решения
	AcceptedProposal              ProposalStatus = "accepted"                // Предложение принято
	RejectedProposal              ProposalStatus = "rejected"                // Предложение отклонено
	CompletedByFreelancerProposal ProposalStatus = "completed_by_freelancer" // Фрилансер отметил работу выполненной

	AcceptDecision ProposalDecision = "accepted"
	RejectDecision ProposalDecision = "rejected"
)

// Proposal представляет модель предложения фрилансера по проекту.
type Proposal struct {
	ID            string         `json:"id"`
	ProjectID     string         `json:"projectId"`
	FreelancerID  string         `json:"freelancerId"`
	BidAmount     float64        `json:"bidAmount"`
	EstimatedDays int            `json:"estimatedDays"`
	Message       string         `json:"message"`
	Status        ProposalStatus `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// ProposalRequest представляет структуру запроса для отправки предложения.
type ProposalRequest struct {
	ProjectID     string  `json:"projectId"`
	BidAmount     float64 `json:"bidAmount"`
	EstimatedDays int     `json:"estimatedDays"`
	Message       string  `json:"message"`
}

// Qualifies сообщает, позволяет ли статус предложения завершить проект.
func (p *Proposal) Qualifies() bool {
	return p.Status == AcceptedProposal || p.Status == CompletedByFreelancerProposal
}
