package curriculum

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"academictoken/internal/domain/academic"
)

// Requirements describes what a degree demands. MinimumGPA uses the same x100
// scale as grades, so 700 means 7.0.
type Requirements struct {
	ID                     string
	Name                   string
	MinimumCredits         int
	RequiredSubjects       []string
	MinimumGPA             *int
	AdditionalRequirements []string
}

func (r Requirements) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrIDRequired
	}
	if r.MinimumCredits < 0 {
		return ErrInvalidCredits
	}
	if r.MinimumGPA != nil && (*r.MinimumGPA < 0 || *r.MinimumGPA > academic.MaxGrade) {
		return ErrInvalidGPA
	}
	return nil
}

type ValidationResult struct {
	StudentID           string    `json:"student_id"`
	CurriculumID        string    `json:"curriculum_id"`
	IsValid             bool      `json:"is_valid"`
	ValidationScore     int       `json:"validation_score"`
	Message             string    `json:"message"`
	MetRequirements     []string  `json:"met_requirements"`
	MissingRequirements []string  `json:"missing_requirements"`
	TotalCredits        int       `json:"total_credits"`
	GPA                 int       `json:"gpa"`
	StudentRevision     int64     `json:"student_revision"`
	ValidatedAt         time.Time `json:"validated_at"`
}

// GPA is the credit-weighted grade average on the x100 scale.
func GPA(record academic.StudentRecord) int {
	weighted, credits := 0, 0
	for _, c := range record.CompletedSubjects {
		weighted += c.Grade * c.Credits
		credits += c.Credits
	}
	if credits == 0 {
		return 0
	}
	return (2*weighted + credits) / (2 * credits)
}

// Validate checks a student record against a curriculum. satisfied names the
// additional requirement descriptors the caller vouches for.
func Validate(record academic.StudentRecord, req Requirements, satisfied map[string]bool, now time.Time) ValidationResult {
	res := ValidationResult{
		StudentID:           record.StudentID,
		CurriculumID:        req.ID,
		MetRequirements:     []string{},
		MissingRequirements: []string{},
		TotalCredits:        record.TotalCredits,
		GPA:                 GPA(record),
		StudentRevision:     record.Revision,
		ValidatedAt:         now,
	}

	completed := record.Completed()
	covered := 0
	for _, id := range req.RequiredSubjects {
		if _, ok := completed[id]; ok {
			covered++
			res.MetRequirements = append(res.MetRequirements, "required subject: "+id)
		} else {
			res.MissingRequirements = append(res.MissingRequirements, "required subject: "+id)
		}
	}

	if res.TotalCredits >= req.MinimumCredits {
		res.MetRequirements = append(res.MetRequirements, fmt.Sprintf("minimum credits: %d of %d", res.TotalCredits, req.MinimumCredits))
	} else {
		res.MissingRequirements = append(res.MissingRequirements, fmt.Sprintf("minimum credits: %d of %d", res.TotalCredits, req.MinimumCredits))
	}

	gpaRatio := 100
	if req.MinimumGPA != nil {
		label := fmt.Sprintf("minimum gpa: %s of %s", formatGPA(res.GPA), formatGPA(*req.MinimumGPA))
		if res.GPA >= *req.MinimumGPA {
			res.MetRequirements = append(res.MetRequirements, label)
		} else {
			res.MissingRequirements = append(res.MissingRequirements, label)
		}
		gpaRatio = ratio(res.GPA, *req.MinimumGPA)
	}

	extras := append([]string(nil), req.AdditionalRequirements...)
	sort.Strings(extras)
	for _, extra := range extras {
		if satisfied[extra] {
			res.MetRequirements = append(res.MetRequirements, "additional: "+extra)
		} else {
			res.MissingRequirements = append(res.MissingRequirements, "additional: "+extra)
		}
	}

	coverage := 100
	if len(req.RequiredSubjects) > 0 {
		coverage = (200*covered + len(req.RequiredSubjects)) / (2 * len(req.RequiredSubjects))
	}
	res.ValidationScore = (40*coverage + 40*ratio(res.TotalCredits, req.MinimumCredits) + 20*gpaRatio + 50) / 100

	res.IsValid = len(res.MissingRequirements) == 0
	if res.IsValid {
		res.Message = "all degree requirements met"
	} else {
		res.Message = fmt.Sprintf("%d degree requirement(s) missing", len(res.MissingRequirements))
	}
	return res
}

// ratio returns 100*min(1, have/want).
func ratio(have, want int) int {
	if want <= 0 || have >= want {
		return 100
	}
	if have <= 0 {
		return 0
	}
	return (200*have + want) / (2 * want)
}

func formatGPA(v int) string {
	return fmt.Sprintf("%d.%02d", v/100, v%100)
}
