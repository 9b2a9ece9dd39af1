package academic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	domain "academictoken/internal/domain/academic"
	"academictoken/internal/errs"
)

// UpdateStudentRecord appends completed subjects to a student's history,
// creating the record on first use. Entries without credits take the credits
// of the registered subject.
func (s *Service) UpdateStudentRecord(ctx context.Context, input UpdateStudentRecordInput) (_ domain.StudentRecord, err error) {
	if err := s.ready(ctx); err != nil {
		return domain.StudentRecord{}, err
	}
	ctx, span := startSpan(ctx, "update_student_record", attribute.String("student_id", input.StudentID))
	defer func() { endSpan(span, err) }()

	studentID, err := requireID(input.StudentID, domain.ErrStudentIDRequired)
	if err != nil {
		return domain.StudentRecord{}, err
	}
	if len(input.Subjects) == 0 {
		return domain.StudentRecord{}, errs.E(domain.ErrSubjectIDRequired, "student_id", studentID)
	}

	now := s.now()
	var record domain.StudentRecord
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetStudent(txCtx, studentID)
		switch {
		case errors.Is(err, domain.ErrStudentNotFound):
			current = domain.StudentRecord{StudentID: studentID, CompletedSubjects: []domain.CompletedSubject{}}
		case err != nil:
			return err
		}

		entries := make([]domain.CompletedSubject, 0, len(input.Subjects))
		for _, in := range input.Subjects {
			entry, err := s.completedEntryTx(txCtx, in, now)
			if err != nil {
				return errs.E(err, "student_id", studentID, "subject_id", in.SubjectID)
			}
			entries = append(entries, entry)
		}
		if err := current.Append(entries...); err != nil {
			return errs.E(err, "student_id", studentID)
		}

		if err := s.repo.SaveStudent(txCtx, current); err != nil {
			return err
		}
		if err := s.invalidateDegreeCacheTx(txCtx, studentID); err != nil {
			return err
		}
		record = current
		return nil
	}); err != nil {
		return domain.StudentRecord{}, err
	}

	s.emit(ctx, "student_record_updated", map[string]string{
		"student_id":    studentID,
		"appended":      fmt.Sprint(len(input.Subjects)),
		"total_credits": fmt.Sprint(record.TotalCredits),
		"revision":      fmt.Sprint(record.Revision),
	})
	return record, nil
}

func (s *Service) completedEntryTx(ctx context.Context, in CompletedSubjectInput, now time.Time) (domain.CompletedSubject, error) {
	entry := domain.CompletedSubject{
		SubjectID:      strings.TrimSpace(in.SubjectID),
		Credits:        in.Credits,
		CompletionDate: in.CompletionDate.UTC(),
		Grade:          in.Grade,
		CredentialRef:  strings.TrimSpace(in.CredentialRef),
		ContentLocator: strings.TrimSpace(in.ContentLocator),
	}
	if in.CompletionDate.IsZero() {
		entry.CompletionDate = now
	}

	if entry.Credits == 0 && entry.SubjectID != "" {
		subject, err := s.repo.GetSubject(ctx, entry.SubjectID)
		switch {
		case err == nil:
			entry.Credits = subject.Credits
			if entry.ContentLocator == "" {
				entry.ContentLocator = subject.ContentLocator
			}
		case !errors.Is(err, domain.ErrSubjectNotFound):
			return domain.CompletedSubject{}, err
		}
	}

	if err := entry.Validate(); err != nil {
		return domain.CompletedSubject{}, err
	}
	return entry, nil
}
