package academic

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"academictoken/internal/domain/equivalence"
	"academictoken/internal/errs"
)

// ApproveEquivalence records a reviewer's verdict on an analyzed equivalence.
// Approve=false rejects it.
func (s *Service) ApproveEquivalence(ctx context.Context, input ApproveEquivalenceInput) (_ equivalence.Equivalence, err error) {
	if err := s.ready(ctx); err != nil {
		return equivalence.Equivalence{}, err
	}
	ctx, span := startSpan(ctx, "approve_equivalence",
		attribute.String("equivalence_id", input.EquivalenceID),
		attribute.Bool("approve", input.Approve),
	)
	defer func() { endSpan(span, err) }()

	equivalenceID, err := requireID(input.EquivalenceID, errEquivalenceIDRequired)
	if err != nil {
		return equivalence.Equivalence{}, err
	}

	decision := equivalence.Decision{
		Approve:              input.Approve,
		Approver:             strings.TrimSpace(input.Caller),
		SimilarityPercentage: input.SimilarityPercentage,
		Notes:                strings.TrimSpace(input.Notes),
	}
	if strings.TrimSpace(input.Type) != "" {
		t, err := equivalence.ParseType(input.Type)
		if err != nil {
			return equivalence.Equivalence{}, errs.E(err, "equivalence_id", equivalenceID)
		}
		decision.Type = &t
	}
	if strings.TrimSpace(input.Method) != "" {
		m, err := equivalence.ParseMethod(input.Method)
		if err != nil {
			return equivalence.Equivalence{}, errs.E(err, "equivalence_id", equivalenceID)
		}
		decision.Method = m
	}

	var eq equivalence.Equivalence
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		state, err := s.state.GetState(txCtx)
		if err != nil {
			return err
		}
		if err := state.RequireApprover(input.Caller); err != nil {
			return err
		}

		eq, err = s.repo.GetEquivalence(txCtx, equivalenceID)
		if err != nil {
			return err
		}
		if err := eq.Decide(decision, s.now()); err != nil {
			return errs.E(err, "equivalence_id", eq.ID, "status", string(eq.Status))
		}
		return s.repo.UpdateEquivalence(txCtx, eq)
	}); err != nil {
		return equivalence.Equivalence{}, err
	}

	eventType := "equivalence_rejected"
	if eq.Status == equivalence.StatusApproved {
		eventType = "equivalence_approved"
	}
	s.emit(ctx, eventType, map[string]string{
		"equivalence_id":        eq.ID,
		"approver":              eq.ApprovedBy,
		"method":                string(eq.Method),
		"equivalence_type":      string(eq.Type),
		"similarity_percentage": fmt.Sprint(eq.SimilarityPercentage),
	})
	return eq, nil
}
