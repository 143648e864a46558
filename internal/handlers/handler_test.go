package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/senyabanana/freelance-match/internal/auth"
	"github.com/senyabanana/freelance-match/internal/models"
	"github.com/senyabanana/freelance-match/internal/repository"
	"github.com/senyabanana/freelance-match/internal/services"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newProjectHandler() *ProjectHandler {
	deps := services.Deps{Store: repository.NewMemoryStore()}
	return NewProjectHandler(services.NewProjectService(deps), services.NewRecommendationService(deps), zap.NewNop(), time.Second)
}

func TestCreateProjectHandler(t *testing.T) {
	h := newProjectHandler()
	client := models.Caller{ID: "client-1", Role: models.ClientRole}

	tests := []struct {
		name       string
		caller     *models.Caller
		body       string
		wantStatus int
	}{
		{name: "no caller in context", body: `{}`, wantStatus: http.StatusUnauthorized},
		{name: "malformed body", caller: &client, body: `{"title":`, wantStatus: http.StatusBadRequest},
		{name: "missing fields", caller: &client, body: `{"title":"t"}`, wantStatus: http.StatusBadRequest},
		{name: "created", caller: &client, body: `{"title":"t","description":"d"}`, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/projects/new", strings.NewReader(tt.body))
			if tt.caller != nil {
				req = req.WithContext(auth.WithCaller(req.Context(), *tt.caller))
			}
			rec := httptest.NewRecorder()
			h.CreateProject(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestGetProjectHandlerUsesPathValue(t *testing.T) {
	h := newProjectHandler()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects/{projectId}", h.GetProject)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/unknown", nil)
	req = req.WithContext(auth.WithCaller(req.Context(), models.Caller{ID: "admin", Role: models.AdminRole}))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ProjectNotFound")
}

func TestPingHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	PingHandler(zap.NewNop())(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestReadyHandler(t *testing.T) {
	ok := ReadinessCheck{Name: "db", Check: func(context.Context) error { return nil }}
	down := ReadinessCheck{Name: "mq", Check: func(context.Context) error { return errors.New("rabbitmq connection is closed") }}

	tests := []struct {
		name       string
		checks     []ReadinessCheck
		wantStatus int
		wantBody   string
	}{
		{name: "no dependencies", wantStatus: http.StatusOK, wantBody: `{"status":"ready"}`},
		{name: "all ready", checks: []ReadinessCheck{ok}, wantStatus: http.StatusOK, wantBody: `{"status":"ready"}`},
		{name: "broker down", checks: []ReadinessCheck{ok, down}, wantStatus: http.StatusServiceUnavailable, wantBody: `{"status":"mq_not_ready"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ReadyHandler(tt.checks, zap.NewNop())(rec, httptest.NewRequest(http.MethodGet, "/api/ready", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
