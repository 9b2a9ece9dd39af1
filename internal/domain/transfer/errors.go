package transfer

import "academictoken/internal/errs"

var (
	ErrNotFound             = errs.New(errs.KindNotFound, "transfer request not found")
	ErrAlreadyProcessed     = errs.New(errs.KindAlreadyCompleted, "transfer request already processed")
	ErrSameInstitution      = errs.New(errs.KindInvalidInput, "source and target institution must differ")
	ErrInstitutionRequired  = errs.New(errs.KindInvalidInput, "source and target institution are required")
	ErrNoEquivalences       = errs.New(errs.KindInvalidInput, "at least one equivalence must be requested")
	ErrNotRequested         = errs.New(errs.KindInvalidInput, "approved equivalence was not requested")
	ErrEquivalenceNotUsable = errs.New(errs.KindInvalidInput, "equivalence is not approved")
	ErrInstitutionMismatch  = errs.New(errs.KindInvalidInput, "equivalence does not map source to target institution")
	ErrSubjectNotCompleted  = errs.New(errs.KindInvalidInput, "transferred subject is not in the student record")
)
