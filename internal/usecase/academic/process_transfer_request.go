package academic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"academictoken/internal/bootstrap/logging"
	domain "academictoken/internal/domain/academic"
	"academictoken/internal/domain/equivalence"
	"academictoken/internal/domain/transfer"
	"academictoken/internal/errs"
)

type ProcessTransferResult struct {
	Request          transfer.Request
	CreditedSubjects []string
	Student          domain.StudentRecord
}

// ProcessTransferRequest rolls the approved equivalences up into the request
// status and credits the target subjects to the student in one unit of work.
func (s *Service) ProcessTransferRequest(ctx context.Context, input ProcessTransferRequestInput) (_ ProcessTransferResult, err error) {
	if err := s.ready(ctx); err != nil {
		return ProcessTransferResult{}, err
	}
	ctx, span := startSpan(ctx, "process_transfer_request", attribute.String("transfer_id", input.TransferID))
	defer func() { endSpan(span, err) }()

	transferID, err := requireID(input.TransferID, errTransferIDRequired)
	if err != nil {
		return ProcessTransferResult{}, err
	}

	var result ProcessTransferResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		state, err := s.state.GetState(txCtx)
		if err != nil {
			return err
		}
		if err := state.RequireApprover(input.Caller); err != nil {
			return err
		}

		req, err := s.repo.GetTransfer(txCtx, transferID)
		if err != nil {
			return err
		}
		now := s.now()
		if err := req.Process(input.ApprovedEquivalences, strings.TrimSpace(input.Caller), now); err != nil {
			return errs.E(err, "transfer_id", req.ID)
		}

		accepted := make([]equivalence.Equivalence, 0, len(req.ApprovedEquivalences))
		for _, equivalenceID := range req.ApprovedEquivalences {
			eq, err := s.repo.GetEquivalence(txCtx, equivalenceID)
			if err != nil {
				return err
			}
			if eq.Status != equivalence.StatusApproved {
				return errs.E(transfer.ErrEquivalenceNotUsable,
					"transfer_id", req.ID,
					"equivalence_id", eq.ID,
					"status", string(eq.Status),
				)
			}
			accepted = append(accepted, eq)
		}

		result = ProcessTransferResult{Request: req, CreditedSubjects: []string{}}
		if req.Status.GrantsCredits() {
			record, credited, err := s.creditTransferTx(txCtx, req, accepted, now)
			if err != nil {
				return err
			}
			result.Student = record
			result.CreditedSubjects = credited

			if err := s.repo.AppendTransferHistory(txCtx, req.StudentID, req.ID, now); err != nil {
				return err
			}
			if err := s.invalidateDegreeCacheTx(txCtx, req.StudentID); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateTransfer(txCtx, req); err != nil {
			return err
		}
		state.TotalTransfers++
		state.UpdatedAt = now
		return s.state.SaveState(txCtx, state)
	}); err != nil {
		return ProcessTransferResult{}, err
	}

	logging.Info(ctx, "transfer processed",
		slog.String("transfer_id", result.Request.ID),
		slog.String("status", string(result.Request.Status)),
		slog.Int("credited", len(result.CreditedSubjects)),
	)
	s.emit(ctx, "transfer_processed", map[string]string{
		"transfer_id": result.Request.ID,
		"student_id":  result.Request.StudentID,
		"status":      string(result.Request.Status),
		"approved":    fmt.Sprint(len(result.Request.ApprovedEquivalences)),
		"credited":    fmt.Sprint(len(result.CreditedSubjects)),
		"processor":   result.Request.ProcessedBy,
	})
	return result, nil
}

// creditTransferTx appends each accepted target subject the student does not
// already hold. The grade is carried over from the source subject.
func (s *Service) creditTransferTx(ctx context.Context, req transfer.Request, accepted []equivalence.Equivalence, now time.Time) (domain.StudentRecord, []string, error) {
	record, err := s.repo.GetStudent(ctx, req.StudentID)
	if err != nil {
		return domain.StudentRecord{}, nil, err
	}

	completed := record.Completed()
	entries := make([]domain.CompletedSubject, 0, len(accepted))
	credited := make([]string, 0, len(accepted))
	seen := make(map[string]struct{}, len(accepted))
	for _, eq := range accepted {
		source, ok := completed[eq.Source.ID]
		if !ok {
			return domain.StudentRecord{}, nil, errs.E(transfer.ErrSubjectNotCompleted,
				"transfer_id", req.ID,
				"equivalence_id", eq.ID,
				"subject_id", eq.Source.ID,
			)
		}
		target := eq.Target
		if _, ok := completed[target.ID]; ok {
			continue
		}
		if _, ok := seen[target.ID]; ok {
			continue
		}
		seen[target.ID] = struct{}{}

		entries = append(entries, domain.CompletedSubject{
			SubjectID:      target.ID,
			Credits:        target.Credits,
			CompletionDate: now,
			Grade:          source.Grade,
			CredentialRef:  "transfer:" + req.ID,
			ContentLocator: target.ContentLocator,
		})
		credited = append(credited, target.ID)
	}
	if len(entries) == 0 {
		return record, credited, nil
	}

	if err := record.Append(entries...); err != nil {
		return domain.StudentRecord{}, nil, errs.E(err, "transfer_id", req.ID, "student_id", req.StudentID)
	}
	if err := s.repo.SaveStudent(ctx, record); err != nil {
		return domain.StudentRecord{}, nil, err
	}
	return record, credited, nil
}
