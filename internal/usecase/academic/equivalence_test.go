package academic

import (
	"context"
	"testing"
	"time"

	"academictoken/internal/domain/equivalence"
	"academictoken/internal/errs"
)

// pair registers two subjects at different institutions bound to the given
// syllabi and an equivalence between them.
func (f fixture) pair(t *testing.T, sourceSyllabus, targetSyllabus string) equivalence.Equivalence {
	t.Helper()
	f.cache(t, "ipfs://src.yaml", sourceSyllabus)
	f.cache(t, "ipfs://dst.yaml", targetSyllabus)
	f.subject(t, "uni-a:la", "uni-a", 6, "ipfs://src.yaml")
	f.subject(t, "uni-b:la", "uni-b", 6, "ipfs://dst.yaml")

	eq, err := f.svc.RegisterEquivalence(context.Background(), RegisterEquivalenceInput{
		SourceSubjectID: "uni-a:la",
		TargetSubjectID: "uni-b:la",
	})
	if err != nil {
		t.Fatalf("RegisterEquivalence() error = %v", err)
	}
	return eq
}

func TestRegisterEquivalenceRules(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()

	_, err := f.svc.RegisterEquivalence(ctx, RegisterEquivalenceInput{SourceSubjectID: "ghost", TargetSubjectID: "ghost"})
	assertKind(t, err, errs.KindInvalidInput)

	eq := f.pair(t, fullSyllabus, fullSyllabus)
	if eq.Status != equivalence.StatusPending || eq.Type != equivalence.TypeNone || eq.Method != equivalence.MethodAutomatic {
		t.Fatalf("equivalence = %#v", eq)
	}
	if eq.Source.Institution != "uni-a" || eq.Target.Institution != "uni-b" {
		t.Fatalf("snapshots = %#v / %#v", eq.Source, eq.Target)
	}

	_, err = f.svc.RegisterEquivalence(ctx, RegisterEquivalenceInput{SourceSubjectID: "uni-a:la", TargetSubjectID: "uni-b:la"})
	assertKind(t, err, errs.KindAlreadyExists)

	_, err = f.svc.RegisterEquivalence(ctx, RegisterEquivalenceInput{SourceSubjectID: "uni-a:la", TargetSubjectID: "uni-c:none"})
	assertKind(t, err, errs.KindNotFound)

	_, err = f.svc.RegisterEquivalence(ctx, RegisterEquivalenceInput{SourceSubjectID: "uni-b:la", TargetSubjectID: "uni-a:la", Method: "telepathy"})
	assertKind(t, err, errs.KindInvalidInput)

	reverse, err := f.svc.RegisterEquivalence(ctx, RegisterEquivalenceInput{SourceSubjectID: "uni-b:la", TargetSubjectID: "uni-a:la"})
	if err != nil {
		t.Fatalf("RegisterEquivalence(reverse) error = %v", err)
	}
	if reverse.ID == eq.ID {
		t.Fatalf("reverse pair reused id %s", eq.ID)
	}

	if got := f.engineState(t).TotalEquivalences; got != 2 {
		t.Fatalf("TotalEquivalences = %d, want 2", got)
	}

	byPair, err := f.svc.GetEquivalenceByPair(ctx, "uni-a:la", "uni-b:la")
	if err != nil || byPair.ID != eq.ID {
		t.Fatalf("GetEquivalenceByPair() = %#v, %v", byPair, err)
	}
	page, err := f.svc.ListEquivalencesByInstitution(ctx, "uni-b", PageRequest{})
	if err != nil {
		t.Fatalf("ListEquivalencesByInstitution() error = %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("institution page = %#v", page)
	}
}

func TestAnalyzeEquivalenceIdenticalSyllabiAutoApproves(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	eq := f.pair(t, fullSyllabus, fullSyllabus)

	result, err := f.svc.AnalyzeEquivalence(ctx, AnalyzeEquivalenceInput{EquivalenceID: eq.ID})
	if err != nil {
		t.Fatalf("AnalyzeEquivalence() error = %v", err)
	}
	if result.Analysis.OverallScore != 100 || result.Analysis.ConfidenceScore != 100 {
		t.Fatalf("analysis = %#v", result.Analysis)
	}
	if result.Analysis.RecommendedType != equivalence.TypeFull || result.Analysis.Mode != equivalence.ModeBasic {
		t.Fatalf("analysis = %#v", result.Analysis)
	}
	if !result.AutoApproved {
		t.Fatalf("expected auto approval")
	}

	stored, err := f.svc.GetEquivalence(ctx, eq.ID)
	if err != nil {
		t.Fatalf("GetEquivalence() error = %v", err)
	}
	if stored.Status != equivalence.StatusApproved || stored.Method != equivalence.MethodAutomatic ||
		stored.ApprovedBy != equivalence.AutoApprover || stored.ApprovedAt == nil {
		t.Fatalf("stored = %#v", stored)
	}
	if stored.SimilarityPercentage != 100 || stored.Type != equivalence.TypeFull {
		t.Fatalf("stored = %#v", stored)
	}

	analysis, err := f.svc.GetAnalysis(ctx, eq.ID)
	if err != nil {
		t.Fatalf("GetAnalysis() error = %v", err)
	}
	if analysis.EquivalenceID != eq.ID || analysis.OverallScore != 100 {
		t.Fatalf("stored analysis = %#v", analysis)
	}

	if !f.sink.has("equivalence_analyzed") || !f.sink.has("equivalence_approved") {
		t.Fatalf("events = %v", f.sink.types())
	}

	_, err = f.svc.AnalyzeEquivalence(ctx, AnalyzeEquivalenceInput{EquivalenceID: eq.ID, ForceReanalysis: true})
	assertKind(t, err, errs.KindAlreadyCompleted)
	if got := f.engineState(t).TotalAnalyses; got != 1 {
		t.Fatalf("TotalAnalyses = %d, want 1", got)
	}
}

func TestAnalyzeEquivalenceThresholdBoundary(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	eq := f.pair(t, sparseSyllabus, sparseSyllabus)

	first, err := f.svc.AnalyzeEquivalence(ctx, AnalyzeEquivalenceInput{EquivalenceID: eq.ID})
	if err != nil {
		t.Fatalf("AnalyzeEquivalence() error = %v", err)
	}
	confidence := first.Analysis.ConfidenceScore
	if first.AutoApproved || first.Equivalence.Status != equivalence.StatusUnderReview {
		t.Fatalf("confidence %d should not clear the default threshold: %#v", confidence, first.Equivalence)
	}
	if first.Analysis.Quality.DataAvailability >= 60 || len(first.Analysis.Recommendations) == 0 {
		t.Fatalf("quality = %#v, recommendations = %v", first.Analysis.Quality, first.Analysis.Recommendations)
	}

	_, err = f.svc.AnalyzeEquivalence(ctx, AnalyzeEquivalenceInput{EquivalenceID: eq.ID})
	assertKind(t, err, errs.KindAlreadyAnalyzed)

	f.setThreshold(t, confidence+1)
	again, err := f.svc.AnalyzeEquivalence(ctx, AnalyzeEquivalenceInput{EquivalenceID: eq.ID, ForceReanalysis: true})
	if err != nil {
		t.Fatalf("AnalyzeEquivalence(force) error = %v", err)
	}
	if again.AutoApproved {
		t.Fatalf("confidence %d approved with threshold %d", confidence, confidence+1)
	}

	f.setThreshold(t, confidence)
	last, err := f.svc.AnalyzeEquivalence(ctx, AnalyzeEquivalenceInput{EquivalenceID: eq.ID, ForceReanalysis: true})
	if err != nil {
		t.Fatalf("AnalyzeEquivalence(force) error = %v", err)
	}
	if !last.AutoApproved || last.Equivalence.Status != equivalence.StatusApproved {
		t.Fatalf("confidence %d at threshold %d was not approved: %#v", last.Analysis.ConfidenceScore, confidence, last.Equivalence)
	}

	if got := f.engineState(t).TotalAnalyses; got != 3 {
		t.Fatalf("TotalAnalyses = %d, want 3", got)
	}
}

func TestAnalyzeEquivalenceEnhancedScoresEveryFactor(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	eq := f.pair(t, fullSyllabus, fullSyllabus)

	result, err := f.svc.AnalyzeEquivalenceEnhanced(ctx, AnalyzeEquivalenceInput{EquivalenceID: eq.ID})
	if err != nil {
		t.Fatalf("AnalyzeEquivalenceEnhanced() error = %v", err)
	}
	a := result.Analysis
	if a.Mode != equivalence.ModeEnhanced || a.OverallScore != 100 || a.ConfidenceScore != 100 {
		t.Fatalf("analysis = %#v", a)
	}
	if a.Factors.Language != 100 || a.Factors.Workload != 100 || a.Factors.Bibliography != 100 || a.Factors.Outcomes != 100 {
		t.Fatalf("factors = %#v", a.Factors)
	}
	if a.Quality.Completeness != 100 || a.Quality.DataAvailability != 100 {
		t.Fatalf("quality = %#v", a.Quality)
	}
}

func TestAnalyzeEquivalenceFailures(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	f.cache(t, "ipfs://src.yaml", fullSyllabus)
	f.subject(t, "uni-a:la", "uni-a", 6, "ipfs://src.yaml")
	f.subject(t, "uni-b:bare", "uni-b", 6, "")
	f.subject(t, "uni-b:lost", "uni-b", 6, "ipfs://never-cached.yaml")

	bare, err := f.svc.RegisterEquivalence(ctx, RegisterEquivalenceInput{SourceSubjectID: "uni-a:la", TargetSubjectID: "uni-b:bare"})
	if err != nil {
		t.Fatalf("RegisterEquivalence() error = %v", err)
	}
	lost, err := f.svc.RegisterEquivalence(ctx, RegisterEquivalenceInput{SourceSubjectID: "uni-a:la", TargetSubjectID: "uni-b:lost"})
	if err != nil {
		t.Fatalf("RegisterEquivalence() error = %v", err)
	}

	_, err = f.svc.AnalyzeEquivalence(ctx, AnalyzeEquivalenceInput{EquivalenceID: bare.ID})
	assertKind(t, err, errs.KindInsufficientData)
	_, err = f.svc.AnalyzeEquivalence(ctx, AnalyzeEquivalenceInput{EquivalenceID: lost.ID})
	assertKind(t, err, errs.KindInsufficientData)

	f.cache(t, "ipfs://never-cached.yaml", fullSyllabus)
	_, err = f.svc.AnalyzeEquivalence(ctx, AnalyzeEquivalenceInput{
		EquivalenceID: lost.ID,
		Deadline:      testNow.Add(-time.Second),
	})
	assertKind(t, err, errs.KindTimeout)

	_, err = f.svc.AnalyzeEquivalence(ctx, AnalyzeEquivalenceInput{EquivalenceID: "missing"})
	assertKind(t, err, errs.KindNotFound)

	stored, err := f.svc.GetEquivalence(ctx, lost.ID)
	if err != nil {
		t.Fatalf("GetEquivalence() error = %v", err)
	}
	if stored.Status != equivalence.StatusPending {
		t.Fatalf("status = %s after failed analyses", stored.Status)
	}
	if got := f.engineState(t).TotalAnalyses; got != 0 {
		t.Fatalf("TotalAnalyses = %d, want 0", got)
	}
}

func TestAnalyzeEquivalenceBlockedByReversePair(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	eq := f.pair(t, fullSyllabus, fullSyllabus)

	if _, err := f.svc.AnalyzeEquivalence(ctx, AnalyzeEquivalenceInput{EquivalenceID: eq.ID}); err != nil {
		t.Fatalf("AnalyzeEquivalence() error = %v", err)
	}
	reverse, err := f.svc.RegisterEquivalence(ctx, RegisterEquivalenceInput{SourceSubjectID: "uni-b:la", TargetSubjectID: "uni-a:la"})
	if err != nil {
		t.Fatalf("RegisterEquivalence(reverse) error = %v", err)
	}

	_, err = f.svc.AnalyzeEquivalence(ctx, AnalyzeEquivalenceInput{EquivalenceID: reverse.ID})
	assertKind(t, err, errs.KindAlreadyExists)
}

func TestApproveEquivalence(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	eq := f.pair(t, sparseSyllabus, sparseSyllabus)

	_, err := f.svc.ApproveEquivalence(ctx, ApproveEquivalenceInput{Caller: testApprover, EquivalenceID: eq.ID, Approve: true})
	assertKind(t, err, errs.KindInvalidInput)

	if _, err := f.svc.AnalyzeEquivalence(ctx, AnalyzeEquivalenceInput{EquivalenceID: eq.ID}); err != nil {
		t.Fatalf("AnalyzeEquivalence() error = %v", err)
	}

	_, err = f.svc.ApproveEquivalence(ctx, ApproveEquivalenceInput{Caller: "student", EquivalenceID: eq.ID, Approve: true})
	assertKind(t, err, errs.KindUnauthorized)

	bad := 140
	_, err = f.svc.ApproveEquivalence(ctx, ApproveEquivalenceInput{Caller: testApprover, EquivalenceID: eq.ID, Approve: true, SimilarityPercentage: &bad})
	assertKind(t, err, errs.KindInvalidInput)

	pct := 88
	approved, err := f.svc.ApproveEquivalence(ctx, ApproveEquivalenceInput{
		Caller:               testApprover,
		EquivalenceID:        eq.ID,
		Approve:              true,
		Type:                 "partial",
		SimilarityPercentage: &pct,
		Notes:                "reviewed by committee",
	})
	if err != nil {
		t.Fatalf("ApproveEquivalence() error = %v", err)
	}
	if approved.Status != equivalence.StatusApproved || approved.Method != equivalence.MethodHybrid ||
		approved.ApprovedBy != testApprover || approved.Type != equivalence.TypePartial || approved.SimilarityPercentage != 88 {
		t.Fatalf("approved = %#v", approved)
	}

	_, err = f.svc.ApproveEquivalence(ctx, ApproveEquivalenceInput{Caller: testApprover, EquivalenceID: eq.ID, Approve: false})
	assertKind(t, err, errs.KindAlreadyCompleted)

	page, err := f.svc.ListEquivalencesByStatus(ctx, equivalence.StatusApproved, PageRequest{})
	if err != nil {
		t.Fatalf("ListEquivalencesByStatus() error = %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != eq.ID {
		t.Fatalf("approved page = %#v", page)
	}
}

func TestBatchRegisterEquivalences(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	f.subject(t, "uni-a:1", "uni-a", 3, "")
	f.subject(t, "uni-b:1", "uni-b", 3, "")
	f.subject(t, "uni-b:2", "uni-b", 3, "")

	items := []RegisterEquivalenceInput{
		{SourceSubjectID: "uni-a:1", TargetSubjectID: "uni-b:1"},
		{SourceSubjectID: "uni-a:1", TargetSubjectID: "uni-a:1"},
		{SourceSubjectID: "uni-a:1", TargetSubjectID: "uni-b:1"},
		{SourceSubjectID: "uni-a:1", TargetSubjectID: "uni-b:2"},
	}

	_, err := f.svc.BatchRegisterEquivalences(ctx, BatchRegisterEquivalencesInput{Caller: "", Items: items})
	assertKind(t, err, errs.KindUnauthorized)
	_, err = f.svc.BatchRegisterEquivalences(ctx, BatchRegisterEquivalencesInput{Caller: "student", Items: items})
	assertKind(t, err, errs.KindUnauthorized)

	results, err := f.svc.BatchRegisterEquivalences(ctx, BatchRegisterEquivalencesInput{Caller: testApprover, Items: items})
	if err != nil {
		t.Fatalf("BatchRegisterEquivalences() error = %v", err)
	}
	if len(results) != len(items) {
		t.Fatalf("results = %#v", results)
	}
	if results[0].Err != nil || results[0].ID == "" || results[3].Err != nil {
		t.Fatalf("results = %#v", results)
	}
	if errs.KindOf(results[1].Err) != errs.KindInvalidInput || errs.KindOf(results[2].Err) != errs.KindAlreadyExists {
		t.Fatalf("results = %#v", results)
	}
	if got := f.engineState(t).TotalEquivalences; got != 2 {
		t.Fatalf("TotalEquivalences = %d, want 2", got)
	}
}
