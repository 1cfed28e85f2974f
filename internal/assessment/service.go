// Package assessment orchestrates the questionnaire pipeline: bundle loading,
// scoring, report generation, and result storage.
package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/vitalscope/vitalscope/pkg/engine"
	"github.com/vitalscope/vitalscope/pkg/rules"
)

// BundleLoader abstracts rule bundle loading so the assessment package does
// not depend on a concrete store.
type BundleLoader interface {
	Load(ctx context.Context, macroarea string) (*rules.Bundle, error)
}

// Reporter generates a narrative report from prepared score data.
type Reporter interface {
	Generate(ctx context.Context, macroarea string, input *engine.LLMInput) (string, error)
}

// RequestError reports a submission problem the caller can correct.
type RequestError string

func (e RequestError) Error() string { return string(e) }

// Request describes one questionnaire submission.
type Request struct {
	UserRef   string            `json:"user_ref"`
	Macroarea string            `json:"macroarea"`
	Answers   engine.RawAnswers `json:"answers"`
}

// Assessment is a stored scoring result.
type Assessment struct {
	ID            string          `json:"id"`
	UserRef       string          `json:"user_ref"`
	Macroarea     string          `json:"macroarea"`
	HealthScore   float64         `json:"health_score"`
	RiskClass     string          `json:"risk_class"`
	Answers       json.RawMessage `json:"answers"`
	Drivers       json.RawMessage `json:"drivers"`
	RedFlags      json.RawMessage `json:"red_flags"`
	Actions       json.RawMessage `json:"actions"`
	FeatureScores json.RawMessage `json:"feature_scores"`
	Narrative     string          `json:"narrative"`
	Report        *string         `json:"report,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Service runs the assessment pipeline backed by Postgres.
type Service struct {
	db       *sql.DB
	bundles  BundleLoader
	reporter Reporter
}

// NewService creates a new assessment Service. The reporter may be nil, in
// which case assessments are stored without a narrative report.
func NewService(db *sql.DB, bundles BundleLoader, reporter Reporter) *Service {
	return &Service{db: db, bundles: bundles, reporter: reporter}
}

// Process scores one submission and stores the result. Report generation is
// best effort: an LLM failure is logged and the assessment is stored without
// a report.
func (s *Service) Process(ctx context.Context, req Request) (*Assessment, error) {
	if req.UserRef == "" {
		return nil, RequestError("user_ref is required")
	}
	if req.Macroarea == "" {
		return nil, RequestError("macroarea is required")
	}
	if req.Answers == nil {
		return nil, RequestError("answers are required")
	}

	bundle, err := s.bundles.Load(ctx, req.Macroarea)
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}

	result, err := engine.ComputeScore(req.Answers, bundle)
	if err != nil {
		return nil, fmt.Errorf("compute score: %w", err)
	}

	var report *string
	if s.reporter != nil {
		input := engine.PrepareForLLM(result, req.Answers)
		text, err := s.reporter.Generate(ctx, req.Macroarea, input)
		if err != nil {
			log.Printf("report generation for %s failed, storing without report: %v", req.Macroarea, err)
		} else {
			report = &text
		}
	}

	return s.store(ctx, req, result, report)
}

func (s *Service) store(ctx context.Context, req Request, result *engine.ScoreResult, report *string) (*Assessment, error) {
	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}
	driversJSON, err := json.Marshal(result.Drivers)
	if err != nil {
		return nil, fmt.Errorf("marshal drivers: %w", err)
	}
	redFlagsJSON, err := json.Marshal(result.RedFlags)
	if err != nil {
		return nil, fmt.Errorf("marshal red flags: %w", err)
	}
	actionsJSON, err := json.Marshal(result.Actions)
	if err != nil {
		return nil, fmt.Errorf("marshal actions: %w", err)
	}
	scoresJSON, err := json.Marshal(result.FeatureScores)
	if err != nil {
		return nil, fmt.Errorf("marshal feature scores: %w", err)
	}

	a := &Assessment{
		ID:            uuid.NewString(),
		UserRef:       req.UserRef,
		Macroarea:     req.Macroarea,
		HealthScore:   result.HealthScore,
		RiskClass:     result.RiskClass,
		Answers:       answersJSON,
		Drivers:       driversJSON,
		RedFlags:      redFlagsJSON,
		Actions:       actionsJSON,
		FeatureScores: scoresJSON,
		Narrative:     result.Narrative,
		Report:        report,
	}

	err = s.db.QueryRowContext(ctx,
		`INSERT INTO assessments (id, user_ref, macroarea, health_score, risk_class,
		                          answers, drivers, red_flags, actions, feature_scores,
		                          narrative, report)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at`,
		a.ID, a.UserRef, a.Macroarea, a.HealthScore, a.RiskClass,
		a.Answers, a.Drivers, a.RedFlags, a.Actions, a.FeatureScores,
		a.Narrative, a.Report,
	).Scan(&a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert assessment: %w", err)
	}
	return a, nil
}

const assessmentColumns = `id, user_ref, macroarea, health_score, risk_class,
       answers, drivers, red_flags, actions, feature_scores,
       narrative, report, created_at`

func scanAssessment(row interface{ Scan(...any) error }) (*Assessment, error) {
	a := &Assessment{}
	err := row.Scan(
		&a.ID, &a.UserRef, &a.Macroarea, &a.HealthScore, &a.RiskClass,
		&a.Answers, &a.Drivers, &a.RedFlags, &a.Actions, &a.FeatureScores,
		&a.Narrative, &a.Report, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves a stored assessment.
func (s *Service) GetByID(ctx context.Context, id string) (*Assessment, error) {
	a, err := scanAssessment(s.db.QueryRowContext(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE id = $1`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("get assessment %s: %w", id, err)
	}
	return a, nil
}

// ListByUser returns all assessments for a user, newest first.
func (s *Service) ListByUser(ctx context.Context, userRef string) ([]Assessment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assessmentColumns+` FROM assessments
		 WHERE user_ref = $1 ORDER BY created_at DESC`,
		userRef,
	)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
