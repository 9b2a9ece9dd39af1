package academic

import (
	"context"
	"errors"
	"testing"
	"time"

	"academictoken/internal/domain/equivalence"
	"academictoken/internal/domain/transfer"
	"academictoken/internal/errs"
)

type transferFixture struct {
	fixture
	approved []string
	pending  string
}

// setupTransfer registers two auto-approved equivalences from uni-a to uni-b,
// one pending equivalence, and a student holding both uni-a subjects.
func setupTransfer(t *testing.T) transferFixture {
	t.Helper()
	f := setupEngine(t)
	ctx := context.Background()
	f.cache(t, "ipfs://syllabus.yaml", fullSyllabus)
	f.subject(t, "uni-a:1", "uni-a", 4, "ipfs://syllabus.yaml")
	f.subject(t, "uni-a:2", "uni-a", 6, "ipfs://syllabus.yaml")
	f.subject(t, "uni-b:1", "uni-b", 4, "ipfs://syllabus.yaml")
	f.subject(t, "uni-b:2", "uni-b", 6, "ipfs://syllabus.yaml")

	tf := transferFixture{fixture: f}
	for _, pair := range [][2]string{{"uni-a:1", "uni-b:1"}, {"uni-a:2", "uni-b:2"}} {
		eq, err := f.svc.RegisterEquivalence(ctx, RegisterEquivalenceInput{SourceSubjectID: pair[0], TargetSubjectID: pair[1]})
		if err != nil {
			t.Fatalf("RegisterEquivalence(%v) error = %v", pair, err)
		}
		result, err := f.svc.AnalyzeEquivalence(ctx, AnalyzeEquivalenceInput{EquivalenceID: eq.ID})
		if err != nil {
			t.Fatalf("AnalyzeEquivalence(%s) error = %v", eq.ID, err)
		}
		if !result.AutoApproved {
			t.Fatalf("equivalence %s not auto approved: %#v", eq.ID, result.Analysis)
		}
		tf.approved = append(tf.approved, eq.ID)
	}

	pending, err := f.svc.RegisterEquivalence(ctx, RegisterEquivalenceInput{SourceSubjectID: "uni-a:1", TargetSubjectID: "uni-b:2"})
	if err != nil {
		t.Fatalf("RegisterEquivalence(pending) error = %v", err)
	}
	tf.pending = pending.ID

	if _, err := f.svc.UpdateStudentRecord(ctx, UpdateStudentRecordInput{
		StudentID: "stu-1",
		Subjects: []CompletedSubjectInput{
			{SubjectID: "uni-a:1", Grade: 800},
			{SubjectID: "uni-a:2", Grade: 700},
		},
	}); err != nil {
		t.Fatalf("UpdateStudentRecord() error = %v", err)
	}
	return tf
}

func (tf transferFixture) submit(t *testing.T, equivalenceIDs ...string) transfer.Request {
	t.Helper()
	req, err := tf.svc.SubmitTransferRequest(context.Background(), SubmitTransferRequestInput{
		StudentID:         "stu-1",
		SourceInstitution: "uni-a",
		TargetInstitution: "uni-b",
		SubjectIDs:        []string{"uni-a:1", "uni-a:2"},
		EquivalenceIDs:    equivalenceIDs,
	})
	if err != nil {
		t.Fatalf("SubmitTransferRequest() error = %v", err)
	}
	if req.Status != transfer.StatusPending {
		t.Fatalf("status = %s, want Pending", req.Status)
	}
	return req
}

func TestProcessTransferFullyApprovedCreditsTargets(t *testing.T) {
	tf := setupTransfer(t)
	ctx := context.Background()
	req := tf.submit(t, tf.approved...)

	result, err := tf.svc.ProcessTransferRequest(ctx, ProcessTransferRequestInput{
		Caller:               testApprover,
		TransferID:           req.ID,
		ApprovedEquivalences: tf.approved,
	})
	if err != nil {
		t.Fatalf("ProcessTransferRequest() error = %v", err)
	}
	if result.Request.Status != transfer.StatusFullyApproved || result.Request.ProcessedBy != testApprover {
		t.Fatalf("request = %#v", result.Request)
	}
	if len(result.CreditedSubjects) != 2 || result.CreditedSubjects[0] != "uni-b:1" || result.CreditedSubjects[1] != "uni-b:2" {
		t.Fatalf("credited = %v", result.CreditedSubjects)
	}

	record, err := tf.svc.GetStudentRecord(ctx, "stu-1")
	if err != nil {
		t.Fatalf("GetStudentRecord() error = %v", err)
	}
	if record.TotalCredits != 20 || len(record.CompletedSubjects) != 4 {
		t.Fatalf("record = %#v", record)
	}
	credited := record.Completed()["uni-b:1"]
	if credited.Grade != 800 || credited.CredentialRef != "transfer:"+req.ID || credited.Credits != 4 {
		t.Fatalf("credited entry = %#v", credited)
	}

	history, err := tf.svc.GetTransferHistory(ctx, "stu-1")
	if err != nil {
		t.Fatalf("GetTransferHistory() error = %v", err)
	}
	if len(history) != 1 || history[0] != req.ID {
		t.Fatalf("history = %v", history)
	}
	if got := tf.engineState(t).TotalTransfers; got != 1 {
		t.Fatalf("TotalTransfers = %d, want 1", got)
	}

	_, err = tf.svc.ProcessTransferRequest(ctx, ProcessTransferRequestInput{
		Caller:               testApprover,
		TransferID:           req.ID,
		ApprovedEquivalences: tf.approved,
	})
	assertKind(t, err, errs.KindAlreadyCompleted)
	if got := tf.engineState(t).TotalTransfers; got != 1 {
		t.Fatalf("TotalTransfers = %d after reprocess, want 1", got)
	}
	if !tf.sink.has("transfer_processed") {
		t.Fatalf("events = %v", tf.sink.types())
	}
}

func TestProcessTransferOutcomes(t *testing.T) {
	cases := []struct {
		name        string
		approve     func(tf transferFixture) []string
		wantStatus  transfer.Status
		wantCredits int
		wantHistory int
	}{
		{
			name:        "partial",
			approve:     func(tf transferFixture) []string { return tf.approved[:1] },
			wantStatus:  transfer.StatusPartiallyApproved,
			wantCredits: 14,
			wantHistory: 1,
		},
		{
			name:        "rejected",
			approve:     func(transferFixture) []string { return nil },
			wantStatus:  transfer.StatusRejected,
			wantCredits: 10,
			wantHistory: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tf := setupTransfer(t)
			ctx := context.Background()
			req := tf.submit(t, tf.approved...)

			result, err := tf.svc.ProcessTransferRequest(ctx, ProcessTransferRequestInput{
				Caller:               testOwner,
				TransferID:           req.ID,
				ApprovedEquivalences: tc.approve(tf),
			})
			if err != nil {
				t.Fatalf("ProcessTransferRequest() error = %v", err)
			}
			if result.Request.Status != tc.wantStatus {
				t.Fatalf("status = %s, want %s", result.Request.Status, tc.wantStatus)
			}

			record, err := tf.svc.GetStudentRecord(ctx, "stu-1")
			if err != nil {
				t.Fatalf("GetStudentRecord() error = %v", err)
			}
			if record.TotalCredits != tc.wantCredits {
				t.Fatalf("total credits = %d, want %d", record.TotalCredits, tc.wantCredits)
			}
			history, err := tf.svc.GetTransferHistory(ctx, "stu-1")
			if err != nil {
				t.Fatalf("GetTransferHistory() error = %v", err)
			}
			if len(history) != tc.wantHistory {
				t.Fatalf("history = %v", history)
			}

			stored, err := tf.svc.GetTransferRequest(ctx, req.ID)
			if err != nil {
				t.Fatalf("GetTransferRequest() error = %v", err)
			}
			if stored.Status != tc.wantStatus || stored.ProcessedAt == nil {
				t.Fatalf("stored = %#v", stored)
			}
			if got := tf.engineState(t).TotalTransfers; got != 1 {
				t.Fatalf("TotalTransfers = %d, want 1", got)
			}
		})
	}
}

func TestProcessTransferRejectsUnusableEquivalences(t *testing.T) {
	tf := setupTransfer(t)
	ctx := context.Background()
	req := tf.submit(t, tf.approved[0], tf.pending)

	_, err := tf.svc.ProcessTransferRequest(ctx, ProcessTransferRequestInput{
		Caller:               "student",
		TransferID:           req.ID,
		ApprovedEquivalences: []string{tf.approved[0]},
	})
	assertKind(t, err, errs.KindUnauthorized)

	_, err = tf.svc.ProcessTransferRequest(ctx, ProcessTransferRequestInput{
		Caller:               testApprover,
		TransferID:           req.ID,
		ApprovedEquivalences: []string{tf.approved[0], tf.pending},
	})
	assertKind(t, err, errs.KindInvalidInput)

	_, err = tf.svc.ProcessTransferRequest(ctx, ProcessTransferRequestInput{
		Caller:               testApprover,
		TransferID:           req.ID,
		ApprovedEquivalences: []string{tf.approved[1]},
	})
	assertKind(t, err, errs.KindInvalidInput)

	_, err = tf.svc.ProcessTransferRequest(ctx, ProcessTransferRequestInput{Caller: testApprover, TransferID: "missing"})
	assertKind(t, err, errs.KindNotFound)

	stored, err := tf.svc.GetTransferRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetTransferRequest() error = %v", err)
	}
	if stored.Status != transfer.StatusPending {
		t.Fatalf("status = %s after failed processing", stored.Status)
	}
	record, err := tf.svc.GetStudentRecord(ctx, "stu-1")
	if err != nil {
		t.Fatalf("GetStudentRecord() error = %v", err)
	}
	if record.TotalCredits != 10 {
		t.Fatalf("total credits = %d after failed processing", record.TotalCredits)
	}
	if got := tf.engineState(t).TotalTransfers; got != 0 {
		t.Fatalf("TotalTransfers = %d, want 0", got)
	}
}

func TestSubmitTransferRequestValidation(t *testing.T) {
	tf := setupTransfer(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input SubmitTransferRequestInput
		want  errs.Kind
	}{
		{
			name:  "same institution",
			input: SubmitTransferRequestInput{StudentID: "stu-1", SourceInstitution: "uni-a", TargetInstitution: "uni-a", EquivalenceIDs: tf.approved},
			want:  errs.KindInvalidInput,
		},
		{
			name:  "no equivalences",
			input: SubmitTransferRequestInput{StudentID: "stu-1", SourceInstitution: "uni-a", TargetInstitution: "uni-b"},
			want:  errs.KindInvalidInput,
		},
		{
			name:  "unknown student",
			input: SubmitTransferRequestInput{StudentID: "stu-9", SourceInstitution: "uni-a", TargetInstitution: "uni-b", EquivalenceIDs: tf.approved},
			want:  errs.KindNotFound,
		},
		{
			name: "subject not completed",
			input: SubmitTransferRequestInput{
				StudentID: "stu-1", SourceInstitution: "uni-a", TargetInstitution: "uni-b",
				SubjectIDs: []string{"uni-a:9"}, EquivalenceIDs: tf.approved,
			},
			want: errs.KindInvalidInput,
		},
		{
			name:  "wrong direction",
			input: SubmitTransferRequestInput{StudentID: "stu-1", SourceInstitution: "uni-b", TargetInstitution: "uni-a", EquivalenceIDs: tf.approved},
			want:  errs.KindInvalidInput,
		},
		{
			name:  "unknown equivalence",
			input: SubmitTransferRequestInput{StudentID: "stu-1", SourceInstitution: "uni-a", TargetInstitution: "uni-b", EquivalenceIDs: []string{"nope"}},
			want:  errs.KindNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tf.svc.SubmitTransferRequest(ctx, tc.input)
			assertKind(t, err, tc.want)
		})
	}

	page, err := tf.svc.ListTransfersByStudent(ctx, "stu-1", PageRequest{})
	if err != nil {
		t.Fatalf("ListTransfersByStudent() error = %v", err)
	}
	if len(page.Items) != 0 {
		t.Fatalf("transfers = %#v", page.Items)
	}
}

func TestTransferRequiresCompletedSourceSubjects(t *testing.T) {
	tf := setupTransfer(t)
	ctx := context.Background()
	if _, err := tf.svc.UpdateStudentRecord(ctx, UpdateStudentRecordInput{
		StudentID: "stu-2",
		Subjects:  []CompletedSubjectInput{{SubjectID: "uni-a:1", Grade: 900}},
	}); err != nil {
		t.Fatalf("UpdateStudentRecord() error = %v", err)
	}

	_, err := tf.svc.SubmitTransferRequest(ctx, SubmitTransferRequestInput{
		StudentID:         "stu-2",
		SourceInstitution: "uni-a",
		TargetInstitution: "uni-b",
		SubjectIDs:        []string{"uni-a:1"},
		EquivalenceIDs:    tf.approved,
	})
	assertKind(t, err, errs.KindInvalidInput)
	if !errors.Is(err, transfer.ErrSubjectNotCompleted) {
		t.Fatalf("SubmitTransferRequest() error = %v, want ErrSubjectNotCompleted", err)
	}
	var coded *errs.Error
	if !errors.As(err, &coded) || coded.Metadata["subject_id"] != "uni-a:2" || coded.Metadata["equivalence_id"] != tf.approved[1] {
		t.Fatalf("error metadata = %#v", coded)
	}

	page, err := tf.svc.ListTransfersByStudent(ctx, "stu-2", PageRequest{})
	if err != nil {
		t.Fatalf("ListTransfersByStudent() error = %v", err)
	}
	if len(page.Items) != 0 {
		t.Fatalf("transfers = %#v", page.Items)
	}

	eq, err := tf.svc.GetEquivalence(ctx, tf.approved[1])
	if err != nil {
		t.Fatalf("GetEquivalence() error = %v", err)
	}
	req := transfer.Request{ID: "tr-1", StudentID: "stu-2"}
	_, _, err = tf.svc.creditTransferTx(ctx, req, []equivalence.Equivalence{eq}, time.Now())
	if !errors.Is(err, transfer.ErrSubjectNotCompleted) {
		t.Fatalf("creditTransferTx() error = %v, want ErrSubjectNotCompleted", err)
	}

	record, err := tf.svc.GetStudentRecord(ctx, "stu-2")
	if err != nil {
		t.Fatalf("GetStudentRecord() error = %v", err)
	}
	if len(record.CompletedSubjects) != 1 || record.TotalCredits != 4 {
		t.Fatalf("record = %#v", record)
	}
}
