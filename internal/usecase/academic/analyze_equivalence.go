package academic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"academictoken/internal/bootstrap/logging"
	domain "academictoken/internal/domain/academic"
	"academictoken/internal/domain/content"
	"academictoken/internal/domain/equivalence"
	"academictoken/internal/errs"
)

type AnalyzeEquivalenceResult struct {
	Equivalence  equivalence.Equivalence
	Analysis     equivalence.AnalysisResult
	AutoApproved bool
}

// AnalyzeEquivalence scores an equivalence with the four basic factors.
func (s *Service) AnalyzeEquivalence(ctx context.Context, input AnalyzeEquivalenceInput) (AnalyzeEquivalenceResult, error) {
	return s.analyzeEquivalence(ctx, input, equivalence.ModeBasic)
}

// AnalyzeEquivalenceEnhanced scores an equivalence with every factor and
// reports quality metrics and recommendations.
func (s *Service) AnalyzeEquivalenceEnhanced(ctx context.Context, input AnalyzeEquivalenceInput) (AnalyzeEquivalenceResult, error) {
	return s.analyzeEquivalence(ctx, input, equivalence.ModeEnhanced)
}

func (s *Service) analyzeEquivalence(ctx context.Context, input AnalyzeEquivalenceInput, mode equivalence.Mode) (_ AnalyzeEquivalenceResult, err error) {
	if err := s.ready(ctx); err != nil {
		return AnalyzeEquivalenceResult{}, err
	}
	if s.content == nil {
		return AnalyzeEquivalenceResult{}, errContentStoreRequired
	}
	ctx, span := startSpan(ctx, "analyze_equivalence",
		attribute.String("equivalence_id", input.EquivalenceID),
		attribute.String("mode", string(mode)),
	)
	defer func() { endSpan(span, err) }()

	equivalenceID, err := requireID(input.EquivalenceID, errEquivalenceIDRequired)
	if err != nil {
		return AnalyzeEquivalenceResult{}, err
	}

	var result AnalyzeEquivalenceResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		state, err := s.state.GetState(txCtx)
		if err != nil {
			return err
		}
		eq, err := s.repo.GetEquivalence(txCtx, equivalenceID)
		if err != nil {
			return err
		}
		if eq.Status.Terminal() {
			return errs.E(equivalence.ErrAlreadyDecided, "equivalence_id", eq.ID, "status", string(eq.Status))
		}
		if err := s.checkReanalysisTx(txCtx, eq, input.ForceReanalysis); err != nil {
			return err
		}

		sourceDoc, err := s.requireDocument(txCtx, eq.Source)
		if err != nil {
			return err
		}
		targetDoc, err := s.requireDocument(txCtx, eq.Target)
		if err != nil {
			return err
		}

		now := s.now()
		if !input.Deadline.IsZero() && now.After(input.Deadline) {
			return errs.E(equivalence.ErrAnalysisTimeout, "equivalence_id", eq.ID)
		}

		analysis, err := equivalence.Analyze(eq.Source, eq.Target, sourceDoc, targetDoc, mode, now)
		if err != nil {
			return errs.E(err, "equivalence_id", eq.ID)
		}
		analysis.EquivalenceID = eq.ID

		if err := eq.BeginAnalysis(); err != nil {
			return errs.E(err, "equivalence_id", eq.ID)
		}
		if err := eq.CompleteAnalysis(analysis, state.AutoApprovalThreshold, now); err != nil {
			return errs.E(err, "equivalence_id", eq.ID)
		}

		if err := s.repo.SaveAnalysis(txCtx, analysis); err != nil {
			return err
		}
		if err := s.repo.UpdateEquivalence(txCtx, eq); err != nil {
			return err
		}

		state.TotalAnalyses++
		state.UpdatedAt = now
		if err := s.state.SaveState(txCtx, state); err != nil {
			return err
		}

		result = AnalyzeEquivalenceResult{
			Equivalence:  eq,
			Analysis:     analysis,
			AutoApproved: eq.Status == equivalence.StatusApproved,
		}
		return nil
	}); err != nil {
		return AnalyzeEquivalenceResult{}, err
	}

	logging.Info(ctx, "equivalence analyzed",
		slog.String("equivalence_id", result.Equivalence.ID),
		slog.Int("overall_score", result.Analysis.OverallScore),
		slog.Int("confidence_score", result.Analysis.ConfidenceScore),
		slog.String("status", string(result.Equivalence.Status)),
	)
	s.emit(ctx, "equivalence_analyzed", map[string]string{
		"equivalence_id":   result.Equivalence.ID,
		"mode":             string(mode),
		"overall_score":    fmt.Sprint(result.Analysis.OverallScore),
		"confidence_score": fmt.Sprint(result.Analysis.ConfidenceScore),
		"recommended_type": string(result.Analysis.RecommendedType),
		"status":           string(result.Equivalence.Status),
	})
	if result.AutoApproved {
		s.emit(ctx, "equivalence_approved", map[string]string{
			"equivalence_id": result.Equivalence.ID,
			"approver":       result.Equivalence.ApprovedBy,
			"method":         string(result.Equivalence.Method),
		})
	}
	return result, nil
}

// checkReanalysisTx enforces one stored result per equivalence unless forced,
// and refuses to analyze while the reversed pair is analyzing or approved.
func (s *Service) checkReanalysisTx(ctx context.Context, eq equivalence.Equivalence, force bool) error {
	_, err := s.repo.GetAnalysis(ctx, eq.ID)
	switch {
	case err == nil:
		if !force {
			return errs.E(equivalence.ErrAlreadyAnalyzed, "equivalence_id", eq.ID)
		}
	case !errors.Is(err, equivalence.ErrAnalysisNotFound):
		return err
	}

	reverse, err := s.repo.GetEquivalenceByPair(ctx, eq.Target.ID, eq.Source.ID)
	switch {
	case err == nil:
		if equivalence.BlocksPair(reverse.Status) {
			return errs.E(equivalence.ErrPairInProgress,
				"equivalence_id", eq.ID,
				"blocking_equivalence_id", reverse.ID,
			)
		}
	case !errors.Is(err, equivalence.ErrNotFound):
		return err
	}
	return nil
}

// requireDocument loads the cached document bound to a subject snapshot.
func (s *Service) requireDocument(ctx context.Context, subject domain.SubjectInfo) (content.Document, error) {
	if subject.ContentLocator == "" {
		return content.Document{}, errs.E(equivalence.ErrInsufficientData, "subject_id", subject.ID, "reason", "no content locator")
	}
	doc, err := s.content.Get(ctx, subject.ContentLocator)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return content.Document{}, errs.E(equivalence.ErrInsufficientData,
				"subject_id", subject.ID,
				"content_locator", subject.ContentLocator,
				"reason", "content not cached",
			)
		}
		return content.Document{}, errs.Storage(err, "read cached content")
	}
	return doc, nil
}
