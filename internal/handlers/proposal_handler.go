package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/freelance-match/internal/models"
	"github.com/senyabanana/freelance-match/internal/services"
	"github.com/senyabanana/freelance-match/internal/utils"

	"go.uber.org/zap"
)

// ProposalHandler - структура для обработки HTTP-запросов по предложениям.
type ProposalHandler struct {
	Service *services.ProposalService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewProposalHandler создаёт новый экземпляр ProposalHandler.
func NewProposalHandler(service *services.ProposalService, logger *zap.Logger, timeout time.Duration) *ProposalHandler {
	return &ProposalHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateProposal обрабатывает запросы для создания предложения.
func (h *ProposalHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var proposalReq models.ProposalRequest
	if !decodeBody(w, r, &proposalReq) {
		return
	}

	proposal, err := h.Service.SubmitProposal(ctx, caller, proposalReq)
	if err != nil {
		utils.SendServiceError(w, err, h.Logger)
		return
	}
	utils.SendJSON(w, http.StatusOK, proposal, h.Logger)
}

// GetUserProposals обрабатывает запросы для получения предложений фрилансера.
func (h *ProposalHandler) GetUserProposals(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	proposals, err := h.Service.GetUserProposals(ctx, caller)
	if err != nil {
		utils.SendServiceError(w, err, h.Logger)
		return
	}
	utils.SendJSON(w, http.StatusOK, proposals, h.Logger)
}

// GetProjectProposals обрабатывает запросы для получения предложений по проекту.
func (h *ProposalHandler) GetProjectProposals(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	proposals, err := h.Service.GetProjectProposals(ctx, caller, r.PathValue("projectId"))
	if err != nil {
		utils.SendServiceError(w, err, h.Logger)
		return
	}
	utils.SendJSON(w, http.StatusOK, proposals, h.Logger)
}

// GetProposal обрабатывает запросы для получения предложения по ID.
func (h *ProposalHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	proposal, err := h.Service.GetProposal(ctx, caller, r.PathValue("proposalId"))
	if err != nil {
		utils.SendServiceError(w, err, h.Logger)
		return
	}
	utils.SendJSON(w, http.StatusOK, proposal, h.Logger)
}

// SubmitProposalDecision обрабатывает запросы для принятия или отклонения предложения.
func (h *ProposalHandler) SubmitProposalDecision(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	proposalId := r.PathValue("proposalId")
	decision := r.URL.Query().Get("decision")

	proposal, err := h.Service.SubmitProposalDecision(ctx, caller, proposalId, decision)
	if err != nil {
		utils.SendServiceError(w, err, h.Logger)
		return
	}
	h.Logger.Info("proposal decision submitted",
		zap.String("proposal_id", proposal.ID),
		zap.String("project_id", proposal.ProjectID),
		zap.String("status", string(proposal.Status)),
	)
	utils.SendJSON(w, http.StatusOK, proposal, h.Logger)
}

// CompleteProposal обрабатывает запросы фрилансера об окончании работы.
func (h *ProposalHandler) CompleteProposal(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	proposal, err := h.Service.MarkProposalCompleted(ctx, caller, r.PathValue("proposalId"))
	if err != nil {
		utils.SendServiceError(w, err, h.Logger)
		return
	}
	utils.SendJSON(w, http.StatusOK, proposal, h.Logger)
}

// DeleteProposal обрабатывает запросы для удаления предложения.
func (h *ProposalHandler) DeleteProposal(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.DeleteProposal(ctx, caller, r.PathValue("proposalId")); err != nil {
		utils.SendServiceError(w, err, h.Logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
