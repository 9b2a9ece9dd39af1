package prerequisite

import (
	"errors"
	"testing"

	"academictoken/internal/domain/academic"
	"academictoken/internal/domain/content"
)

func TestAnalyzeRelationship(t *testing.T) {
	calc1 := academic.SubjectInfo{
		ID:       "CALC1",
		Title:    "Calculus",
		Metadata: academic.Metadata{Level: academic.LevelUndergraduate, Department: "Math"},
	}
	calc2 := academic.SubjectInfo{
		ID:       "CALC2",
		Title:    "Multivariable Calculus",
		Metadata: academic.Metadata{Level: academic.LevelUndergraduate, Department: "math"},
	}
	calc1Doc := &content.Document{Sections: content.Sections{Topics: []string{"limits", "derivatives", "integrals"}}}
	calc2Doc := &content.Document{
		Sections:      content.Sections{Summary: "partial derivatives and multiple integrals"},
		Prerequisites: []string{"limits", "derivatives", "integrals"},
	}

	rel, err := AnalyzeRelationship(calc2, calc1, calc2Doc, calc1Doc)
	if err != nil {
		t.Fatalf("AnalyzeRelationship() error = %v", err)
	}
	if rel.Coverage != 100 || rel.Strength != 100 || !rel.Recommended {
		t.Fatalf("relationship = %#v", rel)
	}

	if _, err := AnalyzeRelationship(calc1, calc1, nil, nil); !errors.Is(err, ErrCandidateSubjectEqual) {
		t.Fatalf("AnalyzeRelationship() error = %v, want ErrCandidateSubjectEqual", err)
	}
}

func TestGroupValidate(t *testing.T) {
	g := Group{ID: "g1", SubjectID: "S", GroupType: GroupAll, Logic: LogicAnd, Confidence: 101}
	if err := g.Validate(); !errors.Is(err, ErrInvalidConfidence) {
		t.Fatalf("Validate() error = %v, want ErrInvalidConfidence", err)
	}

	g.Confidence = 50
	g.SubjectIDs = []string{"S"}
	if err := g.Validate(); !errors.Is(err, ErrSelfPrerequisite) {
		t.Fatalf("Validate() error = %v, want ErrSelfPrerequisite", err)
	}

	err := ValidateSet([]Group{
		{ID: "g1", GroupType: GroupAny, Logic: LogicOr},
		{ID: "g1", GroupType: GroupAny, Logic: LogicOr},
	})
	if !errors.Is(err, ErrDuplicateGroupID) {
		t.Fatalf("ValidateSet() error = %v, want ErrDuplicateGroupID", err)
	}
}
