package academic

import (
	"context"
	"testing"

	"academictoken/internal/errs"
)

func TestVerifyEnrollmentAllGroupWithMinimumCredits(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	f.subject(t, "A", "uni-a", 4, "")
	f.subject(t, "B", "uni-a", 3, "")
	f.subject(t, "S", "uni-a", 5, "")

	if _, err := f.svc.RegisterPrerequisites(ctx, RegisterPrerequisitesInput{
		SubjectID: "S",
		Groups: []PrerequisiteGroupInput{
			{ID: "core", GroupType: "All", SubjectIDs: []string{"A", "B"}, MinimumCredits: 5, Confidence: 100},
		},
	}); err != nil {
		t.Fatalf("RegisterPrerequisites() error = %v", err)
	}

	if _, err := f.svc.UpdateStudentRecord(ctx, UpdateStudentRecordInput{
		StudentID: "stu-1",
		Subjects: []CompletedSubjectInput{
			{SubjectID: "A", Grade: 800, CredentialRef: "cred-a"},
			{SubjectID: "B", Grade: 700, CredentialRef: "cred-b"},
		},
	}); err != nil {
		t.Fatalf("UpdateStudentRecord() error = %v", err)
	}

	v, err := f.svc.VerifyEnrollment(ctx, VerifyEnrollmentInput{StudentID: "stu-1", SubjectID: "S"})
	if err != nil {
		t.Fatalf("VerifyEnrollment() error = %v", err)
	}
	if !v.Eligible || len(v.MissingPrerequisites) != 0 || len(v.SatisfiedGroups) != 1 {
		t.Fatalf("verification = %#v", v)
	}
	if v.UsedContent {
		t.Fatalf("UsedContent = true without cached group content")
	}
	if got := f.engineState(t).TotalVerifications; got != 1 {
		t.Fatalf("TotalVerifications = %d, want 1", got)
	}

	stored, err := f.svc.GetVerification(ctx, v.ID)
	if err != nil {
		t.Fatalf("GetVerification() error = %v", err)
	}
	if stored.Rationale != v.Rationale || !stored.Eligible {
		t.Fatalf("stored = %#v", stored)
	}

	page, err := f.svc.ListVerificationsByStudent(ctx, "stu-1", PageRequest{})
	if err != nil {
		t.Fatalf("ListVerificationsByStudent() error = %v", err)
	}
	if len(page.Items) != 1 || page.NextCursor != "" {
		t.Fatalf("page = %#v", page)
	}
}

func TestVerifyEnrollmentReportsMissingAndContent(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	f.cache(t, "ipfs://calc.yaml", fullSyllabus)
	f.subject(t, "A", "uni-a", 4, "")
	f.subject(t, "S", "uni-a", 5, "")

	if _, err := f.svc.RegisterPrerequisites(ctx, RegisterPrerequisitesInput{
		SubjectID: "S",
		Groups: []PrerequisiteGroupInput{
			{ID: "g1", GroupType: "Any", SubjectIDs: []string{"A", "C"}, ContentLocator: "ipfs://calc.yaml"},
			{ID: "g2", GroupType: "Minimum", SubjectIDs: []string{"C", "D"}, MinimumCompletedSubjects: 1},
		},
	}); err != nil {
		t.Fatalf("RegisterPrerequisites() error = %v", err)
	}
	if _, err := f.svc.UpdateStudentRecord(ctx, UpdateStudentRecordInput{
		StudentID: "stu-1",
		Subjects:  []CompletedSubjectInput{{SubjectID: "A", Grade: 650}},
	}); err != nil {
		t.Fatalf("UpdateStudentRecord() error = %v", err)
	}

	v, err := f.svc.VerifyEnrollment(ctx, VerifyEnrollmentInput{StudentID: "stu-1", SubjectID: "S"})
	if err != nil {
		t.Fatalf("VerifyEnrollment() error = %v", err)
	}
	if v.Eligible {
		t.Fatalf("expected ineligible: %#v", v)
	}
	if len(v.MissingPrerequisites) != 2 || v.MissingPrerequisites[0] != "C" || v.MissingPrerequisites[1] != "D" {
		t.Fatalf("missing = %v", v.MissingPrerequisites)
	}
	if len(v.UnsatisfiedGroups) != 1 || v.UnsatisfiedGroups[0] != "g2" {
		t.Fatalf("unsatisfied = %v", v.UnsatisfiedGroups)
	}
	if !v.UsedContent {
		t.Fatalf("UsedContent = false with cached group content")
	}
}

func TestVerifyEnrollmentErrors(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.subject(t, "S", "uni-a", 5, "")

	_, err := f.svc.VerifyEnrollment(ctx, VerifyEnrollmentInput{StudentID: "stu-1", SubjectID: "S"})
	assertKind(t, err, errs.KindNotFound)

	if _, err := f.svc.InitEngine(ctx, InitEngineInput{Owner: testOwner}); err != nil {
		t.Fatalf("InitEngine() error = %v", err)
	}
	_, err = f.svc.VerifyEnrollment(ctx, VerifyEnrollmentInput{StudentID: "stu-1", SubjectID: "missing"})
	assertKind(t, err, errs.KindNotFound)

	_, err = f.svc.VerifyEnrollment(ctx, VerifyEnrollmentInput{StudentID: "nobody", SubjectID: "S"})
	assertKind(t, err, errs.KindNotFound)

	if got := f.engineState(t).TotalVerifications; got != 0 {
		t.Fatalf("TotalVerifications = %d after failures", got)
	}
}

func TestRegisterPrerequisitesValidation(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.subject(t, "S", "uni-a", 5, "")

	cases := []struct {
		name   string
		groups []PrerequisiteGroupInput
		want   errs.Kind
	}{
		{name: "bad type", groups: []PrerequisiteGroupInput{{ID: "g", GroupType: "Most"}}, want: errs.KindInvalidInput},
		{name: "bad logic", groups: []PrerequisiteGroupInput{{ID: "g", GroupType: "All", Logic: "nand"}}, want: errs.KindInvalidInput},
		{name: "confidence", groups: []PrerequisiteGroupInput{{ID: "g", GroupType: "All", Confidence: 101}}, want: errs.KindInvalidInput},
		{name: "self", groups: []PrerequisiteGroupInput{{ID: "g", GroupType: "Any", SubjectIDs: []string{"S"}}}, want: errs.KindInvalidInput},
		{name: "duplicate", groups: []PrerequisiteGroupInput{{ID: "g", GroupType: "Any"}, {ID: "g", GroupType: "All"}}, want: errs.KindAlreadyExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.RegisterPrerequisites(ctx, RegisterPrerequisitesInput{SubjectID: "S", Groups: tc.groups})
			assertKind(t, err, tc.want)
		})
	}

	_, err := f.svc.RegisterPrerequisites(ctx, RegisterPrerequisitesInput{SubjectID: "nope", Groups: nil})
	assertKind(t, err, errs.KindNotFound)
}

func TestBatchRegisterPrerequisites(t *testing.T) {
	f := setupEngine(t)
	ctx := context.Background()
	f.subject(t, "S1", "uni-a", 5, "")
	f.subject(t, "S2", "uni-a", 5, "")

	items := []RegisterPrerequisitesInput{
		{SubjectID: "S1", Groups: []PrerequisiteGroupInput{{ID: "g", GroupType: "Any", SubjectIDs: []string{"X"}}}},
		{SubjectID: "missing", Groups: []PrerequisiteGroupInput{{ID: "g", GroupType: "Any"}}},
		{SubjectID: "S2", Groups: []PrerequisiteGroupInput{{ID: "g", GroupType: "None"}}},
	}

	_, err := f.svc.BatchRegisterPrerequisites(ctx, BatchRegisterPrerequisitesInput{Caller: "student", Items: items})
	assertKind(t, err, errs.KindUnauthorized)
	if groups, _ := f.svc.GetPrerequisites(ctx, "S1"); len(groups) != 0 {
		t.Fatalf("unauthorized batch wrote groups: %#v", groups)
	}

	results, err := f.svc.BatchRegisterPrerequisites(ctx, BatchRegisterPrerequisitesInput{Caller: testApprover, Items: items})
	if err != nil {
		t.Fatalf("BatchRegisterPrerequisites() error = %v", err)
	}
	if len(results) != 3 || results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("results = %#v", results)
	}
	if errs.KindOf(results[1].Err) != errs.KindNotFound || results[1].Index != 1 {
		t.Fatalf("results[1] = %#v", results[1])
	}

	groups, err := f.svc.GetPrerequisites(ctx, "S2")
	if err != nil {
		t.Fatalf("GetPrerequisites() error = %v", err)
	}
	if len(groups) != 1 || groups[0].GroupType != "None" {
		t.Fatalf("groups = %#v", groups)
	}
}

func TestUpdateStudentRecordAppendsAndRejectsDuplicates(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.subject(t, "A", "uni-a", 4, "")

	record, err := f.svc.UpdateStudentRecord(ctx, UpdateStudentRecordInput{
		StudentID: "stu-1",
		Subjects: []CompletedSubjectInput{
			{SubjectID: "A", Grade: 900},
			{SubjectID: "ext-1", Credits: 2, Grade: 500},
		},
	})
	if err != nil {
		t.Fatalf("UpdateStudentRecord() error = %v", err)
	}
	if record.TotalCredits != 6 || record.Revision != 1 {
		t.Fatalf("record = %#v", record)
	}

	_, err = f.svc.UpdateStudentRecord(ctx, UpdateStudentRecordInput{
		StudentID: "stu-1",
		Subjects:  []CompletedSubjectInput{{SubjectID: "A", Grade: 900}},
	})
	assertKind(t, err, errs.KindAlreadyCompleted)

	_, err = f.svc.UpdateStudentRecord(ctx, UpdateStudentRecordInput{
		StudentID: "stu-1",
		Subjects:  []CompletedSubjectInput{{SubjectID: "ext-2", Credits: 3, Grade: 1001}},
	})
	assertKind(t, err, errs.KindInvalidInput)

	_, err = f.svc.UpdateStudentRecord(ctx, UpdateStudentRecordInput{
		StudentID: "stu-1",
		Subjects:  []CompletedSubjectInput{{SubjectID: "unknown"}},
	})
	assertKind(t, err, errs.KindInvalidInput)

	stored, err := f.svc.GetStudentRecord(ctx, "stu-1")
	if err != nil {
		t.Fatalf("GetStudentRecord() error = %v", err)
	}
	if len(stored.CompletedSubjects) != 2 || stored.TotalCredits != 6 || stored.Revision != 1 {
		t.Fatalf("stored = %#v", stored)
	}
	if stored.CompletedSubjects[0].CompletionDate.IsZero() {
		t.Fatalf("completion date not defaulted")
	}
}

func TestAnalyzePrerequisiteRelationshipUpdatesConfidence(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.cache(t, "ipfs://la.yaml", fullSyllabus)
	f.cache(t, "ipfs://la-copy.yaml", fullSyllabus+"\n# copy\n")
	f.subject(t, "LA", "uni-a", 6, "ipfs://la.yaml")
	f.subject(t, "LA2", "uni-a", 6, "ipfs://la-copy.yaml")

	if _, err := f.svc.RegisterPrerequisites(ctx, RegisterPrerequisitesInput{
		SubjectID: "LA2",
		Groups: []PrerequisiteGroupInput{
			{ID: "g1", GroupType: "Any", SubjectIDs: []string{"LA"}, Confidence: 10},
			{ID: "g2", GroupType: "Any", SubjectIDs: []string{"OTHER"}, Confidence: 10},
		},
	}); err != nil {
		t.Fatalf("RegisterPrerequisites() error = %v", err)
	}

	rel, err := f.svc.AnalyzePrerequisiteRelationship(ctx, AnalyzePrerequisiteRelationshipInput{SubjectID: "LA2", CandidateID: "LA"})
	if err != nil {
		t.Fatalf("AnalyzePrerequisiteRelationship() error = %v", err)
	}
	if !rel.SameDept || rel.LevelScore != 100 || rel.Strength < 40 {
		t.Fatalf("relationship = %#v", rel)
	}
	if len(rel.UpdatedGroups) != 1 || rel.UpdatedGroups[0] != "g1" {
		t.Fatalf("updated groups = %v", rel.UpdatedGroups)
	}

	groups, err := f.svc.GetPrerequisites(ctx, "LA2")
	if err != nil {
		t.Fatalf("GetPrerequisites() error = %v", err)
	}
	if groups[0].Confidence != rel.Strength || groups[1].Confidence != 10 {
		t.Fatalf("groups = %#v", groups)
	}

	_, err = f.svc.AnalyzePrerequisiteRelationship(ctx, AnalyzePrerequisiteRelationshipInput{SubjectID: "LA", CandidateID: "LA"})
	assertKind(t, err, errs.KindInvalidInput)
}
