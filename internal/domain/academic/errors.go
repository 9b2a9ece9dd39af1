package academic

import "academictoken/internal/errs"

var (
	ErrSubjectNotFound     = errs.New(errs.KindNotFound, "subject not found")
	ErrStudentNotFound     = errs.New(errs.KindNotFound, "student record not found")
	ErrSubjectExists       = errs.New(errs.KindAlreadyExists, "subject already registered")
	ErrSubjectCompleted    = errs.New(errs.KindAlreadyCompleted, "subject already completed by student")
	ErrInvalidGrade        = errs.New(errs.KindInvalidInput, "grade must be within 0..1000")
	ErrInvalidCredits      = errs.New(errs.KindInvalidInput, "credits must be positive")
	ErrInvalidLevel        = errs.New(errs.KindInvalidInput, "invalid academic level")
	ErrSubjectIDRequired   = errs.New(errs.KindInvalidInput, "subject id is required")
	ErrStudentIDRequired   = errs.New(errs.KindInvalidInput, "student id is required")
	ErrInstitutionRequired = errs.New(errs.KindInvalidInput, "institution is required")
	ErrContentHashMismatch = errs.New(errs.KindIntegrationError, "content hash does not match cached document")
)
