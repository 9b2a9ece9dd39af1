package reviewconsole

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	domain "academictoken/internal/domain/academic"
	"academictoken/internal/domain/equivalence"
	"academictoken/internal/usecase/academic"
)

type fakeReviewer struct {
	queue      []equivalence.Equivalence
	decisions  []academic.ApproveEquivalenceInput
	approveErr error
}

func (f *fakeReviewer) ListEquivalencesByStatus(_ context.Context, status equivalence.Status, _ academic.PageRequest) (academic.PageResult[equivalence.Equivalence], error) {
	items := make([]equivalence.Equivalence, 0, len(f.queue))
	for _, eq := range f.queue {
		if eq.Status == status {
			items = append(items, eq)
		}
	}
	return academic.PageResult[equivalence.Equivalence]{Items: items}, nil
}

func (f *fakeReviewer) GetAnalysis(_ context.Context, equivalenceID string) (equivalence.AnalysisResult, error) {
	return equivalence.AnalysisResult{EquivalenceID: equivalenceID, OverallScore: 70, ConfidenceScore: 40}, nil
}

func (f *fakeReviewer) ApproveEquivalence(_ context.Context, input academic.ApproveEquivalenceInput) (equivalence.Equivalence, error) {
	f.decisions = append(f.decisions, input)
	if f.approveErr != nil {
		return equivalence.Equivalence{}, f.approveErr
	}
	status := equivalence.StatusRejected
	if input.Approve {
		status = equivalence.StatusApproved
	}
	return equivalence.Equivalence{ID: input.EquivalenceID, Status: status}, nil
}

func underReview(ids ...string) []equivalence.Equivalence {
	out := make([]equivalence.Equivalence, 0, len(ids))
	for _, id := range ids {
		out = append(out, equivalence.Equivalence{ID: id, Status: equivalence.StatusUnderReview})
	}
	return out
}

func academicSubject(id string) domain.SubjectInfo {
	return domain.SubjectInfo{ID: id, Title: id, Credits: 4}
}

func newTestModel(reviewer Reviewer, approver string) *reviewModel {
	return NewReviewModel(context.Background(), reviewer, Options{Approver: approver}).(*reviewModel)
}

func TestQueueLoadedClampsSelection(t *testing.T) {
	model := newTestModel(&fakeReviewer{}, "approver-1")
	model.selectedIndex = 5

	_, cmd := model.Update(queueLoadedMsg{items: underReview("eq-1", "eq-2")})
	if model.selectedIndex != 1 {
		t.Fatalf("selectedIndex = %d, want 1", model.selectedIndex)
	}
	if cmd == nil {
		t.Fatalf("expected analysis load command")
	}
	msg, ok := cmd().(analysisLoadedMsg)
	if !ok || msg.equivalenceID != "eq-2" {
		t.Fatalf("analysis msg = %#v", msg)
	}

	model.Update(queueLoadedMsg{})
	if model.selectedIndex != 0 || model.hasAnalysis {
		t.Fatalf("empty queue left selection=%d hasAnalysis=%v", model.selectedIndex, model.hasAnalysis)
	}
}

func TestAnalysisLoadedIgnoresStaleSelection(t *testing.T) {
	model := newTestModel(&fakeReviewer{}, "approver-1")
	model.queue = underReview("eq-1", "eq-2")
	model.selectedIndex = 1

	model.Update(analysisLoadedMsg{equivalenceID: "eq-1", analysis: equivalence.AnalysisResult{OverallScore: 90}})
	if model.hasAnalysis {
		t.Fatalf("stale analysis should be ignored")
	}

	model.Update(analysisLoadedMsg{equivalenceID: "eq-2", analysis: equivalence.AnalysisResult{OverallScore: 90}})
	if !model.hasAnalysis || model.analysis.OverallScore != 90 {
		t.Fatalf("analysis = (%v,%d), want (true,90)", model.hasAnalysis, model.analysis.OverallScore)
	}
}

func TestDecideSendsApproverAndRefreshes(t *testing.T) {
	reviewer := &fakeReviewer{queue: underReview("eq-1")}
	model := newTestModel(reviewer, "approver-1")
	model.queue = reviewer.queue

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if cmd == nil {
		t.Fatalf("expected decision command")
	}
	done, ok := cmd().(decisionDoneMsg)
	if !ok {
		t.Fatalf("unexpected message %#v", done)
	}
	if len(reviewer.decisions) != 1 {
		t.Fatalf("decisions = %d, want 1", len(reviewer.decisions))
	}
	got := reviewer.decisions[0]
	if got.Caller != "approver-1" || got.EquivalenceID != "eq-1" || !got.Approve {
		t.Fatalf("decision input = %#v", got)
	}

	_, cmd = model.Update(done)
	if cmd == nil {
		t.Fatalf("expected queue refresh after decision")
	}
	if !strings.Contains(model.status, "approve done: Approved") {
		t.Fatalf("status = %q", model.status)
	}
	if len(model.auditLogs) != 1 || !strings.Contains(model.auditLogs[0], "id=eq-1") {
		t.Fatalf("audit logs = %#v", model.auditLogs)
	}
}

func TestDecideRequiresApprover(t *testing.T) {
	reviewer := &fakeReviewer{queue: underReview("eq-1")}
	model := newTestModel(reviewer, "")
	model.queue = reviewer.queue

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd != nil {
		t.Fatalf("expected no command without approver")
	}
	if !strings.Contains(model.status, "--approver") {
		t.Fatalf("status = %q", model.status)
	}
}

func TestDecisionFailureIsAudited(t *testing.T) {
	reviewer := &fakeReviewer{queue: underReview("eq-1"), approveErr: errors.New("not an approver")}
	model := newTestModel(reviewer, "approver-1")
	model.queue = reviewer.queue

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	model.Update(cmd())
	if !strings.Contains(model.status, "reject failed") {
		t.Fatalf("status = %q", model.status)
	}
	if len(model.auditLogs) != 1 || !strings.Contains(model.auditLogs[0], "result=failed") {
		t.Fatalf("audit logs = %#v", model.auditLogs)
	}
}

func TestViewListsQueueAndAnalysis(t *testing.T) {
	model := newTestModel(&fakeReviewer{}, "approver-1")
	model.queue = []equivalence.Equivalence{{
		ID:     "eq-9",
		Source: academicSubject("uni-a:la"),
		Target: academicSubject("uni-b:la"),
		Status: equivalence.StatusUnderReview,
	}}
	model.hasAnalysis = true
	model.analysis = equivalence.AnalysisResult{OverallScore: 72, ConfidenceScore: 41, Recommendations: []string{"compare syllabi"}}

	view := model.View()
	for _, want := range []string{"eq-9", "uni-a:la -> uni-b:la", "Overall: 72", "compare syllabi"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}
