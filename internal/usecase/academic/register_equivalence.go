package academic

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	domain "academictoken/internal/domain/academic"
	"academictoken/internal/domain/equivalence"
	"academictoken/internal/errs"
)

// RegisterEquivalence creates a pending equivalence holding copies of both subjects.
func (s *Service) RegisterEquivalence(ctx context.Context, input RegisterEquivalenceInput) (_ equivalence.Equivalence, err error) {
	if err := s.ready(ctx); err != nil {
		return equivalence.Equivalence{}, err
	}
	ctx, span := startSpan(ctx, "register_equivalence",
		attribute.String("source_subject_id", input.SourceSubjectID),
		attribute.String("target_subject_id", input.TargetSubjectID),
	)
	defer func() { endSpan(span, err) }()

	eq, err := s.registerEquivalence(ctx, input)
	if err != nil {
		return equivalence.Equivalence{}, err
	}

	s.emit(ctx, "equivalence_registered", map[string]string{
		"equivalence_id":    eq.ID,
		"source_subject_id": eq.Source.ID,
		"target_subject_id": eq.Target.ID,
		"method":            string(eq.Method),
	})
	return eq, nil
}

// BatchRegisterEquivalences checks the caller once; each item then commits or
// fails on its own.
func (s *Service) BatchRegisterEquivalences(ctx context.Context, input BatchRegisterEquivalencesInput) (_ []BatchItemResult, err error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "batch_register_equivalences", attribute.Int("items", len(input.Items)))
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
		result := BatchItemResult{Index: i}
		eq, err := s.registerEquivalence(ctx, item)
		if err != nil {
			result.Err = err
		} else {
			result.ID = eq.ID
			succeeded++
		}
		results = append(results, result)
	}

	s.emit(ctx, "equivalences_batch_registered", map[string]string{
		"caller":    input.Caller,
		"items":     fmt.Sprint(len(input.Items)),
		"succeeded": fmt.Sprint(succeeded),
	})
	return results, nil
}

func (s *Service) registerEquivalence(ctx context.Context, input RegisterEquivalenceInput) (equivalence.Equivalence, error) {
	sourceID, err := requireID(input.SourceSubjectID, domain.ErrSubjectIDRequired)
	if err != nil {
		return equivalence.Equivalence{}, errs.E(err, "field", "source_subject_id")
	}
	targetID, err := requireID(input.TargetSubjectID, domain.ErrSubjectIDRequired)
	if err != nil {
		return equivalence.Equivalence{}, errs.E(err, "field", "target_subject_id")
	}
	if sourceID == targetID {
		return equivalence.Equivalence{}, errs.E(equivalence.ErrSelfEquivalence, "subject_id", sourceID)
	}
	method, err := equivalence.ParseMethod(input.Method)
	if err != nil {
		return equivalence.Equivalence{}, err
	}

	var eq equivalence.Equivalence
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		state, err := s.state.GetState(txCtx)
		if err != nil {
			return err
		}
		source, err := s.repo.GetSubject(txCtx, sourceID)
		if err != nil {
			return err
		}
		target, err := s.repo.GetSubject(txCtx, targetID)
		if err != nil {
			return err
		}

		now := s.now()
		eq, err = equivalence.New(s.newID(), source, target, method, strings.TrimSpace(input.Notes), now)
		if err != nil {
			return err
		}
		if err := s.repo.CreateEquivalence(txCtx, eq); err != nil {
			return err
		}

		state.TotalEquivalences++
		state.UpdatedAt = now
		return s.state.SaveState(txCtx, state)
	}); err != nil {
		return equivalence.Equivalence{}, err
	}
	return eq, nil
}
