// Package api implements the hosted Vitalscope REST API.
// It provides assessment submission and read endpoints backed by Postgres.
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vitalscope/vitalscope/internal/assessment"
	"github.com/vitalscope/vitalscope/internal/bundle"
	"github.com/vitalscope/vitalscope/pkg/rules"
)

// AssessmentService is the pipeline surface the handler needs. It is an
// interface so handler tests can run without a database.
type AssessmentService interface {
	Process(ctx context.Context, req assessment.Request) (*assessment.Assessment, error)
	GetByID(ctx context.Context, id string) (*assessment.Assessment, error)
	ListByUser(ctx context.Context, userRef string) ([]assessment.Assessment, error)
}

// Handler is the top-level API handler for the hosted Vitalscope service.
type Handler struct {
	assessments AssessmentService
}

// NewHandler creates a new API handler.
func NewHandler(assessments AssessmentService) *Handler {
	return &Handler{assessments: assessments}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Write endpoints (auth-protected)
	mux.HandleFunc("POST /v1/assessments", h.handleCreateAssessment)

	// Read endpoints
	mux.HandleFunc("GET /v1/assessments", h.handleListAssessments)
	mux.HandleFunc("GET /v1/assessments/{id}", h.handleGetAssessment)
}

func (h *Handler) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	var req assessment.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	a, err := h.assessments.Process(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if isClientError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	a, err := h.assessments.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "assessment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	userRef := r.URL.Query().Get("user_ref")
	if userRef == "" {
		writeError(w, http.StatusBadRequest, "user_ref query parameter is required")
		return
	}

	list, err := h.assessments.ListByUser(r.Context(), userRef)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []assessment.Assessment{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"assessments": list})
}

// isClientError reports whether a pipeline error was caused by the request
// rather than the backend: an incomplete submission, an unknown macroarea,
// or a rule bundle the submitted macroarea cannot load. Store outages stay
// server errors.
func isClientError(err error) bool {
	var reqErr assessment.RequestError
	var cfgErr *rules.ConfigError
	return errors.As(err, &reqErr) ||
		errors.As(err, &cfgErr) ||
		errors.Is(err, bundle.ErrNotFound)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
