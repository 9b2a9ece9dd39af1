package curriculum

import (
	"errors"
	"testing"
	"time"

	"academictoken/internal/domain/academic"
)

func recordWith(credits []int, grade int) academic.StudentRecord {
	var record academic.StudentRecord
	record.StudentID = "stu-1"
	for i, c := range credits {
		record.CompletedSubjects = append(record.CompletedSubjects, academic.CompletedSubject{
			SubjectID: string(rune('A' + i)),
			Credits:   c,
			Grade:     grade,
		})
	}
	record.RecomputeTotal()
	return record
}

func TestValidateReportsCreditShortfallOnly(t *testing.T) {
	minGPA := 700
	req := Requirements{ID: "cs-bsc", MinimumCredits: 120, MinimumGPA: &minGPA}
	record := recordWith([]int{25, 25, 25, 25}, 800)

	res := Validate(record, req, nil, time.Now())
	if res.IsValid {
		t.Fatalf("Validate() is_valid = true")
	}
	if res.TotalCredits != 100 || res.GPA != 800 {
		t.Fatalf("credits/gpa = %d/%d", res.TotalCredits, res.GPA)
	}
	if len(res.MissingRequirements) != 1 || res.MissingRequirements[0] != "minimum credits: 100 of 120" {
		t.Fatalf("missing = %v", res.MissingRequirements)
	}
	// 40 coverage + 40*83/100 + 20 gpa
	if res.ValidationScore != 93 {
		t.Fatalf("score = %d, want 93", res.ValidationScore)
	}
}

func TestValidateRequiredSubjectsAndExtras(t *testing.T) {
	req := Requirements{
		ID:                     "cs-bsc",
		MinimumCredits:         6,
		RequiredSubjects:       []string{"A", "Z"},
		AdditionalRequirements: []string{"thesis", "internship"},
	}
	record := recordWith([]int{3, 3}, 600)

	res := Validate(record, req, map[string]bool{"thesis": true}, time.Now())
	if res.IsValid {
		t.Fatalf("Validate() is_valid = true")
	}
	want := map[string]bool{"required subject: Z": true, "additional: internship": true}
	if len(res.MissingRequirements) != len(want) {
		t.Fatalf("missing = %v", res.MissingRequirements)
	}
	for _, m := range res.MissingRequirements {
		if !want[m] {
			t.Fatalf("unexpected missing requirement %q", m)
		}
	}

	res = Validate(record, Requirements{ID: "x", MinimumCredits: 6, RequiredSubjects: []string{"A", "B"}}, nil, time.Now())
	if !res.IsValid || res.ValidationScore != 100 {
		t.Fatalf("Validate() = %#v", res)
	}
}

func TestGPAIsCreditWeighted(t *testing.T) {
	record := academic.StudentRecord{CompletedSubjects: []academic.CompletedSubject{
		{SubjectID: "A", Credits: 4, Grade: 900},
		{SubjectID: "B", Credits: 2, Grade: 600},
	}}
	if got := GPA(record); got != 800 {
		t.Fatalf("GPA() = %d, want 800", got)
	}
	if got := GPA(academic.StudentRecord{}); got != 0 {
		t.Fatalf("GPA(empty) = %d", got)
	}
}

func TestRequirementsValidate(t *testing.T) {
	bad := 1200
	if err := (Requirements{ID: "x", MinimumGPA: &bad}).Validate(); !errors.Is(err, ErrInvalidGPA) {
		t.Fatalf("Validate() error = %v, want ErrInvalidGPA", err)
	}
	if err := (Requirements{}).Validate(); !errors.Is(err, ErrIDRequired) {
		t.Fatalf("Validate() error = %v, want ErrIDRequired", err)
	}
}
