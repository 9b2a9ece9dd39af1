package academic

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	domain "academictoken/internal/domain/academic"
	"academictoken/internal/domain/content"
	"academictoken/internal/domain/prerequisite"
	"academictoken/internal/errs"
)

type RelationshipResult struct {
	prerequisite.Relationship
	UpdatedGroups []string
}

// AnalyzePrerequisiteRelationship scores a candidate prerequisite and copies
// the strength into the confidence of every group that lists it.
func (s *Service) AnalyzePrerequisiteRelationship(ctx context.Context, input AnalyzePrerequisiteRelationshipInput) (_ RelationshipResult, err error) {
	if err := s.ready(ctx); err != nil {
		return RelationshipResult{}, err
	}
	ctx, span := startSpan(ctx, "analyze_prerequisite_relationship",
		attribute.String("subject_id", input.SubjectID),
		attribute.String("candidate_id", input.CandidateID),
	)
	defer func() { endSpan(span, err) }()

	subjectID, err := requireID(input.SubjectID, domain.ErrSubjectIDRequired)
	if err != nil {
		return RelationshipResult{}, err
	}
	candidateID, err := requireID(input.CandidateID, domain.ErrSubjectIDRequired)
	if err != nil {
		return RelationshipResult{}, err
	}
	if subjectID == candidateID {
		return RelationshipResult{}, errs.E(prerequisite.ErrCandidateSubjectEqual, "subject_id", subjectID)
	}

	var result RelationshipResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		subject, err := s.repo.GetSubject(txCtx, subjectID)
		if err != nil {
			return err
		}
		candidate, err := s.repo.GetSubject(txCtx, candidateID)
		if err != nil {
			return err
		}
		subjectDoc, err := s.optionalDocument(txCtx, subject.ContentLocator)
		if err != nil {
			return err
		}
		candidateDoc, err := s.optionalDocument(txCtx, candidate.ContentLocator)
		if err != nil {
			return err
		}

		rel, err := prerequisite.AnalyzeRelationship(subject, candidate, subjectDoc, candidateDoc)
		if err != nil {
			return err
		}
		result = RelationshipResult{Relationship: rel, UpdatedGroups: []string{}}

		groups, err := s.repo.ListPrerequisites(txCtx, subjectID)
		if err != nil {
			return err
		}
		for i := range groups {
			if groups[i].Lists(candidateID) && groups[i].Confidence != rel.Strength {
				groups[i].Confidence = rel.Strength
				result.UpdatedGroups = append(result.UpdatedGroups, groups[i].ID)
			}
		}
		if len(result.UpdatedGroups) == 0 {
			return nil
		}
		return s.repo.ReplacePrerequisites(txCtx, subjectID, groups)
	}); err != nil {
		return RelationshipResult{}, err
	}

	s.emit(ctx, "prerequisite_relationship_analyzed", map[string]string{
		"subject_id":     subjectID,
		"candidate_id":   candidateID,
		"strength":       fmt.Sprint(result.Strength),
		"recommended":    fmt.Sprint(result.Recommended),
		"updated_groups": fmt.Sprint(len(result.UpdatedGroups)),
	})
	return result, nil
}

// optionalDocument returns the cached document for locator, or nil when the
// locator is empty or not cached.
func (s *Service) optionalDocument(ctx context.Context, locator string) (*content.Document, error) {
	if locator == "" || s.content == nil {
		return nil, nil
	}
	doc, err := s.content.Get(ctx, locator)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return nil, nil
		}
		return nil, errs.Storage(err, "read cached content")
	}
	return &doc, nil
}
