package academic

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	domain "academictoken/internal/domain/academic"
	"academictoken/internal/domain/transfer"
	"academictoken/internal/errs"
)

// SubmitTransferRequest opens a pending transfer of completed subjects backed
// by equivalences that map the source institution onto the target. Every
// equivalence must start from one of the transferred subjects.
func (s *Service) SubmitTransferRequest(ctx context.Context, input SubmitTransferRequestInput) (_ transfer.Request, err error) {
	if err := s.ready(ctx); err != nil {
		return transfer.Request{}, err
	}
	ctx, span := startSpan(ctx, "submit_transfer_request", attribute.String("student_id", input.StudentID))
	defer func() { endSpan(span, err) }()

	studentID, err := requireID(input.StudentID, domain.ErrStudentIDRequired)
	if err != nil {
		return transfer.Request{}, err
	}

	req, err := transfer.New(
		s.newID(),
		studentID,
		input.SourceInstitution,
		input.TargetInstitution,
		input.SubjectIDs,
		input.EquivalenceIDs,
		strings.TrimSpace(input.Notes),
		s.now(),
	)
	if err != nil {
		return transfer.Request{}, errs.E(err, "student_id", studentID)
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		record, err := s.repo.GetStudent(txCtx, studentID)
		if err != nil {
			return err
		}
		for _, subjectID := range req.SubjectIDs {
			if !record.Has(subjectID) {
				return errs.E(transfer.ErrSubjectNotCompleted, "student_id", studentID, "subject_id", subjectID)
			}
		}

		transferred := make(map[string]struct{}, len(req.SubjectIDs))
		for _, subjectID := range req.SubjectIDs {
			transferred[subjectID] = struct{}{}
		}
		for _, equivalenceID := range req.RequestedEquivalences {
			eq, err := s.repo.GetEquivalence(txCtx, equivalenceID)
			if err != nil {
				return err
			}
			if _, ok := transferred[eq.Source.ID]; !ok {
				return errs.E(transfer.ErrSubjectNotCompleted,
					"student_id", studentID,
					"equivalence_id", eq.ID,
					"subject_id", eq.Source.ID,
				)
			}
			if eq.Source.Institution != req.SourceInstitution || eq.Target.Institution != req.TargetInstitution {
				return errs.E(transfer.ErrInstitutionMismatch,
					"equivalence_id", eq.ID,
					"source_institution", eq.Source.Institution,
					"target_institution", eq.Target.Institution,
				)
			}
		}
		return s.repo.CreateTransfer(txCtx, req)
	}); err != nil {
		return transfer.Request{}, err
	}

	s.emit(ctx, "transfer_submitted", map[string]string{
		"transfer_id":        req.ID,
		"student_id":         req.StudentID,
		"source_institution": req.SourceInstitution,
		"target_institution": req.TargetInstitution,
		"equivalences":       fmt.Sprint(len(req.RequestedEquivalences)),
	})
	return req, nil
}
