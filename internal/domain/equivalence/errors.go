package equivalence

import "academictoken/internal/errs"

var (
	ErrNotFound           = errs.New(errs.KindNotFound, "equivalence not found")
	ErrAnalysisNotFound   = errs.New(errs.KindNotFound, "analysis not found")
	ErrSelfEquivalence    = errs.New(errs.KindInvalidInput, "subject cannot be equivalent to itself")
	ErrDuplicatePair      = errs.New(errs.KindAlreadyExists, "equivalence already registered for subject pair")
	ErrPairInProgress     = errs.New(errs.KindAlreadyExists, "equivalence for subject pair is already analyzing or approved")
	ErrAlreadyAnalyzed    = errs.New(errs.KindAlreadyAnalyzed, "equivalence already analyzed")
	ErrAlreadyDecided     = errs.New(errs.KindAlreadyCompleted, "equivalence already approved or rejected")
	ErrNotUnderReview     = errs.New(errs.KindInvalidInput, "equivalence is not under review")
	ErrInsufficientData   = errs.New(errs.KindInsufficientData, "insufficient content for analysis")
	ErrAnalysisTimeout    = errs.New(errs.KindTimeout, "analysis deadline exceeded")
	ErrInvalidPercentage  = errs.New(errs.KindInvalidInput, "similarity percentage must be within 0..100")
	ErrInvalidType        = errs.New(errs.KindInvalidInput, "invalid equivalence type")
	ErrInvalidMethod      = errs.New(errs.KindInvalidInput, "invalid analysis method")
	ErrInvalidTransition  = errs.New(errs.KindInvalidInput, "invalid equivalence status transition")
	ErrScoringFailed      = errs.New(errs.KindComputationFailed, "equivalence scoring failed")
	ErrContentHashChanged = errs.New(errs.KindIntegrationError, "cached content hash differs from subject binding")
)
