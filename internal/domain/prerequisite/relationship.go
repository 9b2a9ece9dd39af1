package prerequisite

import (
	"fmt"
	"strings"

	"academictoken/internal/domain/academic"
	"academictoken/internal/domain/content"
)

const RecommendThreshold = 60

// Relationship scores how strongly a candidate reads as a prerequisite of a subject.
type Relationship struct {
	SubjectID   string
	CandidateID string
	Coverage    int
	LevelScore  int
	SameDept    bool
	Strength    int
	Recommended bool
	Rationale   string
}

// AnalyzeRelationship compares what the candidate teaches against what the
// subject expects. Either document may be nil; the titles stand in for them.
func AnalyzeRelationship(subject, candidate academic.SubjectInfo, subjectDoc, candidateDoc *content.Document) (Relationship, error) {
	if subject.ID == candidate.ID {
		return Relationship{}, ErrCandidateSubjectEqual
	}

	taught := content.Tokens(candidate.Title)
	if candidateDoc != nil {
		taught = content.Tokens(append(append([]string{candidate.Title}, candidateDoc.Topics...), candidateDoc.LearningOutcomes...)...)
	}

	expected := content.Tokens(subject.Title)
	if subjectDoc != nil {
		parts := []string{subject.Title, subjectDoc.Summary}
		parts = append(parts, subjectDoc.Prerequisites...)
		parts = append(parts, subjectDoc.Topics...)
		expected = content.Tokens(parts...)
	}

	rel := Relationship{
		SubjectID:   subject.ID,
		CandidateID: candidate.ID,
		Coverage:    content.Coverage(taught, expected),
		SameDept: strings.TrimSpace(subject.Metadata.Department) != "" &&
			strings.EqualFold(subject.Metadata.Department, candidate.Metadata.Department),
	}

	switch {
	case candidate.Metadata.Level.Rank() == 0 || subject.Metadata.Level.Rank() == 0:
		rel.LevelScore = 50
	case candidate.Metadata.Level.Rank() <= subject.Metadata.Level.Rank():
		rel.LevelScore = 100
	default:
		rel.LevelScore = 0
	}

	dept := 0
	if rel.SameDept {
		dept = 100
	}
	rel.Strength = (60*rel.Coverage + 20*rel.LevelScore + 20*dept + 50) / 100
	rel.Recommended = rel.Strength >= RecommendThreshold
	rel.Rationale = fmt.Sprintf(
		"coverage %d%%, level %d, same department %t",
		rel.Coverage, rel.LevelScore, rel.SameDept,
	)
	return rel, nil
}
