package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/senyabanana/freelance-match/internal/auth"
	"github.com/senyabanana/freelance-match/internal/handlers"
	"github.com/senyabanana/freelance-match/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers - набор обработчиков, из которых собираются маршруты.
type Handlers struct {
	Projects  *handlers.ProjectHandler
	Proposals *handlers.ProposalHandler
	Reviews   *handlers.ReviewHandler
	Readiness []handlers.ReadinessCheck
}

func InitRoutes(h Handlers, jwtSecret string, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	protected := auth.Middleware(jwtSecret, logger)
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, protected(fn))
	}

	mux.HandleFunc("GET /api/ping", handlers.PingHandler(logger))
	mux.HandleFunc("GET /api/ready", handlers.ReadyHandler(h.Readiness, logger))
	mux.Handle("GET /metrics", promhttp.Handler())

	handle("GET /api/projects", h.Projects.GetProjects)
	handle("POST /api/projects/new", h.Projects.CreateProject)
	handle("GET /api/projects/my", h.Projects.GetUserProjects)
	handle("GET /api/projects/{projectId}", h.Projects.GetProject)
	handle("PUT /api/projects/{projectId}/complete", h.Projects.CompleteProject)
	handle("GET /api/projects/{projectId}/proposals", h.Proposals.GetProjectProposals)
	handle("GET /api/projects/{projectId}/recommendations", h.Projects.GetRecommendations)

	handle("POST /api/proposals/new", h.Proposals.CreateProposal)
	handle("GET /api/proposals/my", h.Proposals.GetUserProposals)
	handle("GET /api/proposals/{proposalId}", h.Proposals.GetProposal)
	handle("PUT /api/proposals/{proposalId}/submit_decision", h.Proposals.SubmitProposalDecision)
	handle("PATCH /api/proposals/{proposalId}/complete", h.Proposals.CompleteProposal)
	handle("DELETE /api/proposals/{proposalId}", h.Proposals.DeleteProposal)

	handle("POST /api/reviews/new", h.Reviews.CreateReview)
	handle("GET /api/freelancers/{freelancerId}/reviews", h.Reviews.GetFreelancerReviews)

	return instrument(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument записывает длительность запросов по шаблону маршрута.
func instrument(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		mux.ServeHTTP(rec, r)

		// Шаблон вместо пути, чтобы идентификаторы не раздували число меток.
		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(r.Method, path, strconv.Itoa(rec.status), time.Since(start))
	})
}
