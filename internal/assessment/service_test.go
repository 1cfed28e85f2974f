package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vitalscope/vitalscope/pkg/engine"
	"github.com/vitalscope/vitalscope/pkg/rules"
)

type stubLoader struct {
	bundle *rules.Bundle
	err    error
}

func (l *stubLoader) Load(ctx context.Context, macroarea string) (*rules.Bundle, error) {
	return l.bundle, l.err
}

func TestProcessValidation(t *testing.T) {
	svc := NewService(nil, &stubLoader{}, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "missing user_ref",
			req:  Request{Macroarea: "familiarita", Answers: engine.RawAnswers{}},
			want: "user_ref",
		},
		{
			name: "missing macroarea",
			req:  Request{UserRef: "u-1", Answers: engine.RawAnswers{}},
			want: "macroarea",
		},
		{
			name: "missing answers",
			req:  Request{UserRef: "u-1", Macroarea: "familiarita"},
			want: "answers",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Process(ctx, tc.req)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Process = %v, want error mentioning %q", err, tc.want)
			}
			var reqErr RequestError
			if !errors.As(err, &reqErr) {
				t.Errorf("Process error %T is not a RequestError", err)
			}
		})
	}
}

func TestProcessBundleLoadFailure(t *testing.T) {
	svc := NewService(nil, &stubLoader{err: fmt.Errorf("bucket unreachable")}, nil)

	_, err := svc.Process(context.Background(), Request{
		UserRef:   "u-1",
		Macroarea: "familiarita",
		Answers:   engine.RawAnswers{"fh_diabete": "diabete_tipo_1"},
	})
	if err == nil || !strings.Contains(err.Error(), "load bundle") {
		t.Errorf("Process = %v, want bundle load error", err)
	}
}

func TestNewService(t *testing.T) {
	// NewService should not panic with nil db (it just stores the reference).
	svc := NewService(nil, &stubLoader{}, nil)
	if svc == nil {
		t.Fatal("NewService returned nil")
	}
	if svc.reporter != nil {
		t.Error("nil reporter should stay nil")
	}
}

func TestAssessmentStruct(t *testing.T) {
	report := "# Report"
	a := Assessment{
		ID:          "a-1",
		UserRef:     "u-1",
		Macroarea:   "familiarita",
		HealthScore: 7.5,
		RiskClass:   engine.RiskLow,
		Report:      &report,
	}

	if a.HealthScore != 7.5 {
		t.Errorf("HealthScore = %v, want 7.5", a.HealthScore)
	}
	if *a.Report != "# Report" {
		t.Errorf("Report = %q", *a.Report)
	}
}
