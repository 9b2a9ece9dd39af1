package curriculum

import "academictoken/internal/errs"

var (
	ErrNotFound          = errs.New(errs.KindNotFound, "curriculum not found")
	ErrExists            = errs.New(errs.KindAlreadyExists, "curriculum already registered")
	ErrIDRequired        = errs.New(errs.KindInvalidInput, "curriculum id is required")
	ErrInvalidCredits    = errs.New(errs.KindInvalidInput, "minimum credits must not be negative")
	ErrInvalidGPA        = errs.New(errs.KindInvalidInput, "minimum gpa must be within 0..1000")
	ErrValidationMissing = errs.New(errs.KindNotFound, "degree validation not cached")
)
