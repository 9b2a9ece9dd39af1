package prerequisite

import "academictoken/internal/errs"

var (
	ErrInvalidGroupType      = errs.New(errs.KindInvalidInput, "invalid prerequisite group type")
	ErrInvalidLogic          = errs.New(errs.KindInvalidInput, "invalid prerequisite logic")
	ErrInvalidConfidence     = errs.New(errs.KindInvalidInput, "confidence must be within 0..100")
	ErrInvalidThreshold      = errs.New(errs.KindInvalidInput, "group thresholds must not be negative")
	ErrGroupIDRequired       = errs.New(errs.KindInvalidInput, "group id is required")
	ErrDuplicateGroupID      = errs.New(errs.KindAlreadyExists, "duplicate prerequisite group id")
	ErrVerificationNotFound  = errs.New(errs.KindNotFound, "verification not found")
	ErrSelfPrerequisite      = errs.New(errs.KindInvalidInput, "subject cannot be its own prerequisite")
	ErrCandidateSubjectEqual = errs.New(errs.KindInvalidInput, "candidate must differ from subject")
)
