package academic

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"academictoken/internal/bootstrap/logging"
	domain "academictoken/internal/domain/academic"
	"academictoken/internal/domain/prerequisite"
	"academictoken/internal/errs"
)

// VerifyEnrollment evaluates a subject's prerequisite groups against a
// student's history and stores the verdict.
func (s *Service) VerifyEnrollment(ctx context.Context, input VerifyEnrollmentInput) (_ prerequisite.Verification, err error) {
	if err := s.ready(ctx); err != nil {
		return prerequisite.Verification{}, err
	}
	ctx, span := startSpan(ctx, "verify_enrollment",
		attribute.String("student_id", input.StudentID),
		attribute.String("subject_id", input.SubjectID),
	)
	defer func() { endSpan(span, err) }()

	studentID, err := requireID(input.StudentID, domain.ErrStudentIDRequired)
	if err != nil {
		return prerequisite.Verification{}, err
	}
	subjectID, err := requireID(input.SubjectID, domain.ErrSubjectIDRequired)
	if err != nil {
		return prerequisite.Verification{}, err
	}

	var verification prerequisite.Verification
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		state, err := s.state.GetState(txCtx)
		if err != nil {
			return err
		}
		if _, err := s.repo.GetSubject(txCtx, subjectID); err != nil {
			return err
		}
		groups, err := s.repo.ListPrerequisites(txCtx, subjectID)
		if err != nil {
			return err
		}
		record, err := s.repo.GetStudent(txCtx, studentID)
		if err != nil {
			return err
		}

		usedContent, err := s.groupsUseContent(txCtx, groups)
		if err != nil {
			return err
		}

		outcome := prerequisite.Evaluate(groups, record.Completed())
		verification = prerequisite.Verification{
			ID:                   s.newID(),
			StudentID:            studentID,
			SubjectID:            subjectID,
			Eligible:             outcome.Eligible,
			MissingPrerequisites: outcome.MissingPrerequisites,
			SatisfiedGroups:      outcome.SatisfiedGroups,
			UnsatisfiedGroups:    outcome.UnsatisfiedGroups,
			VerifiedAt:           s.now(),
			Rationale:            prerequisite.Rationale(outcome, usedContent),
			UsedContent:          usedContent,
		}
		if err := s.repo.CreateVerification(txCtx, verification); err != nil {
			return err
		}

		state.TotalVerifications++
		state.UpdatedAt = verification.VerifiedAt
		return s.state.SaveState(txCtx, state)
	}); err != nil {
		return prerequisite.Verification{}, err
	}

	logging.Info(ctx, "enrollment verified",
		slog.String("verification_id", verification.ID),
		slog.Bool("eligible", verification.Eligible),
	)
	s.emit(ctx, "enrollment_verified", map[string]string{
		"verification_id": verification.ID,
		"student_id":      studentID,
		"subject_id":      subjectID,
		"eligible":        fmt.Sprint(verification.Eligible),
	})
	return verification, nil
}

// groupsUseContent reports whether any group points at a cached document.
func (s *Service) groupsUseContent(ctx context.Context, groups []prerequisite.Group) (bool, error) {
	if s.content == nil {
		return false, nil
	}
	for _, g := range groups {
		if g.ContentLocator == "" {
			continue
		}
		ok, err := s.content.Exists(ctx, g.ContentLocator)
		if err != nil {
			return false, errs.Storage(err, "check cached content")
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
