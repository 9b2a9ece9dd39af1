package equivalence

import (
	"errors"
	"testing"
	"time"
)

func analyzing() Equivalence {
	return Equivalence{ID: "eq-1", Status: StatusAnalyzing, Method: MethodManual}
}

func TestNewRejectsSelfEquivalence(t *testing.T) {
	for _, id := range []string{"X", "MATH-101", ""} {
		s := sampleSubject(id)
		if _, err := New("eq", s, s, MethodAutomatic, "", time.Now()); !errors.Is(err, ErrSelfEquivalence) {
			t.Fatalf("New(%q, %q) error = %v", id, id, err)
		}
	}
}

func TestCompleteAnalysisAutoApproval(t *testing.T) {
	now := time.Now()
	for threshold := 1; threshold <= 100; threshold++ {
		eq := analyzing()
		if err := eq.CompleteAnalysis(AnalysisResult{ConfidenceScore: threshold, OverallScore: threshold}, threshold, now); err != nil {
			t.Fatalf("CompleteAnalysis() error = %v", err)
		}
		if eq.Status != StatusApproved || eq.Method != MethodAutomatic || eq.ApprovedBy != AutoApprover {
			t.Fatalf("threshold %d: eq = %#v, want auto-approved", threshold, eq)
		}

		eq = analyzing()
		if err := eq.CompleteAnalysis(AnalysisResult{ConfidenceScore: threshold - 1}, threshold, now); err != nil {
			t.Fatalf("CompleteAnalysis() error = %v", err)
		}
		if eq.Status != StatusUnderReview || eq.ApprovedAt != nil {
			t.Fatalf("threshold %d: eq = %#v, want under review", threshold, eq)
		}
	}
}

func TestStateTransitions(t *testing.T) {
	eq := Equivalence{ID: "eq-1", Status: StatusPending}
	if err := eq.BeginAnalysis(); err != nil || eq.Status != StatusAnalyzing {
		t.Fatalf("BeginAnalysis() = %v, status %s", err, eq.Status)
	}
	if err := eq.BeginAnalysis(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("BeginAnalysis() twice error = %v", err)
	}

	if err := eq.Decide(Decision{Approve: true, Approver: "dean"}, time.Now()); !errors.Is(err, ErrNotUnderReview) {
		t.Fatalf("Decide() while analyzing error = %v", err)
	}

	if err := eq.CompleteAnalysis(AnalysisResult{ConfidenceScore: 40, OverallScore: 70, RecommendedType: TypePartial}, 85, time.Now()); err != nil {
		t.Fatalf("CompleteAnalysis() error = %v", err)
	}

	pct := 120
	if err := eq.Decide(Decision{Approve: true, SimilarityPercentage: &pct}, time.Now()); !errors.Is(err, ErrInvalidPercentage) {
		t.Fatalf("Decide() error = %v, want ErrInvalidPercentage", err)
	}

	full := TypeFull
	pct = 95
	if err := eq.Decide(Decision{Approve: true, Approver: "dean", Type: &full, SimilarityPercentage: &pct}, time.Now()); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if eq.Status != StatusApproved || eq.Type != TypeFull || eq.SimilarityPercentage != 95 || eq.Method != MethodHybrid {
		t.Fatalf("eq = %#v", eq)
	}

	if err := eq.BeginAnalysis(); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("BeginAnalysis() after approval error = %v", err)
	}
	if err := eq.Decide(Decision{Approve: false, Approver: "dean"}, time.Now()); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("Decide() after approval error = %v", err)
	}
}
