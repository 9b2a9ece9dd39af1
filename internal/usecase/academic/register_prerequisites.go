package academic

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	domain "academictoken/internal/domain/academic"
	"academictoken/internal/domain/prerequisite"
	"academictoken/internal/errs"
)

// RegisterPrerequisites replaces the ordered group list of a subject.
func (s *Service) RegisterPrerequisites(ctx context.Context, input RegisterPrerequisitesInput) (_ []prerequisite.Group, err error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "register_prerequisites", attribute.String("subject_id", input.SubjectID))
	defer func() { endSpan(span, err) }()

	groups, err := s.registerPrerequisites(ctx, input)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "prerequisites_registered", map[string]string{
		"subject_id": strings.TrimSpace(input.SubjectID),
		"groups":     fmt.Sprint(len(groups)),
	})
	return groups, nil
}

// BatchRegisterPrerequisites checks the caller once and then registers each
// item in its own unit of work.
func (s *Service) BatchRegisterPrerequisites(ctx context.Context, input BatchRegisterPrerequisitesInput) (_ []BatchItemResult, err error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "batch_register_prerequisites", attribute.Int("items", len(input.Items)))
	defer func() { endSpan(span, err) }()

	state, err := s.state.GetState(ctx)
	if err != nil {
		return nil, err
	}
	if err := state.RequireApprover(input.Caller); err != nil {
		return nil, err
	}

	results := make([]BatchItemResult, 0, len(input.Items))
	succeeded := 0
	for i, item := range input.Items {
		result := BatchItemResult{Index: i, ID: strings.TrimSpace(item.SubjectID)}
		if _, err := s.registerPrerequisites(ctx, item); err != nil {
			result.Err = err
		} else {
			succeeded++
		}
		results = append(results, result)
	}

	s.emit(ctx, "prerequisites_batch_registered", map[string]string{
		"caller":    input.Caller,
		"items":     fmt.Sprint(len(input.Items)),
		"succeeded": fmt.Sprint(succeeded),
	})
	return results, nil
}

func (s *Service) registerPrerequisites(ctx context.Context, input RegisterPrerequisitesInput) ([]prerequisite.Group, error) {
	subjectID, err := requireID(input.SubjectID, domain.ErrSubjectIDRequired)
	if err != nil {
		return nil, err
	}

	groups, err := buildGroups(subjectID, input.Groups)
	if err != nil {
		return nil, errs.E(err, "subject_id", subjectID)
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetSubject(txCtx, subjectID); err != nil {
			return err
		}
		return s.repo.ReplacePrerequisites(txCtx, subjectID, groups)
	}); err != nil {
		return nil, err
	}
	return groups, nil
}

func buildGroups(subjectID string, inputs []PrerequisiteGroupInput) ([]prerequisite.Group, error) {
	groups := make([]prerequisite.Group, 0, len(inputs))
	for i, in := range inputs {
		groupType, err := prerequisite.ParseGroupType(in.GroupType)
		if err != nil {
			return nil, errs.E(err, "group_id", in.ID, "field", "group_type")
		}
		logic, err := prerequisite.ParseLogic(in.Logic)
		if err != nil {
			return nil, errs.E(err, "group_id", in.ID, "field", "logic")
		}
		groups = append(groups, prerequisite.Group{
			ID:                       strings.TrimSpace(in.ID),
			SubjectID:                subjectID,
			GroupType:                groupType,
			MinimumCredits:           in.MinimumCredits,
			MinimumCompletedSubjects: in.MinimumCompletedSubjects,
			SubjectIDs:               normalizeIDs(in.SubjectIDs),
			Logic:                    logic,
			Priority:                 in.Priority,
			Confidence:               in.Confidence,
			ContentLocator:           strings.TrimSpace(in.ContentLocator),
			Position:                 i,
		})
	}
	if err := prerequisite.ValidateSet(groups); err != nil {
		return nil, err
	}
	return groups, nil
}
