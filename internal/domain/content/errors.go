package content

import "academictoken/internal/errs"

var (
	ErrNotFound          = errs.New(errs.KindNotFound, "content not cached")
	ErrLocatorRequired   = errs.New(errs.KindInvalidInput, "content locator is required")
	ErrTooLarge          = errs.New(errs.KindInvalidInput, "content exceeds size limit")
	ErrUnsupportedFormat = errs.New(errs.KindInvalidInput, "unsupported content format")
	ErrEmptyDocument     = errs.New(errs.KindInsufficientData, "document carries no analyzable text")
)
