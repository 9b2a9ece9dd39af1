package errs

import (
	"errors"
	"sort"
	"strings"
)

// Kind is a machine-readable failure category surfaced to callers.
type Kind string

const (
	KindUnknown           Kind = "UNKNOWN"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindNotFound          Kind = "NOT_FOUND"
	KindAlreadyExists     Kind = "ALREADY_EXISTS"
	KindAlreadyCompleted  Kind = "ALREADY_COMPLETED"
	KindAlreadyAnalyzed   Kind = "ALREADY_ANALYZED"
	KindAlreadyIssued     Kind = "ALREADY_ISSUED"
	KindInvalidInput      Kind = "INVALID_INPUT"
	KindInsufficientData  Kind = "INSUFFICIENT_DATA"
	KindTimeout           Kind = "TIMEOUT"
	KindComputationFailed Kind = "COMPUTATION_FAILED"
	KindIntegrationError  Kind = "INTEGRATION_ERROR"
	KindStorageError      Kind = "STORAGE_ERROR"
)

// Error is a coded error with structured context for callers and logs.
type Error struct {
	Kind     Kind
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if len(e.Metadata) == 0 {
		return e.Message
	}

	keys := make([]string, 0, len(e.Metadata))
	for key := range e.Metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+e.Metadata[key])
	}
	return e.Message + " (" + strings.Join(parts, ", ") + ")"
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches a bare kind marker created with Of.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" || t.Cause != nil {
		return false
	}
	return e.Kind == t.Kind
}

// New creates a coded sentinel error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Of returns a marker usable with errors.Is to test for a kind.
func Of(kind Kind) error {
	return &Error{Kind: kind}
}

// E annotates err with key/value metadata, keeping its kind and chain.
func E(err error, kv ...string) error {
	if err == nil {
		return nil
	}

	meta := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		meta[kv[i]] = kv[i+1]
	}

	var base *Error
	message := err.Error()
	if errors.As(err, &base) {
		message = base.Message
		for key, value := range base.Metadata {
			if _, ok := meta[key]; !ok {
				meta[key] = value
			}
		}
	}

	return &Error{
		Kind:     KindOf(err),
		Message:  message,
		Metadata: meta,
		Cause:    err,
	}
}

// Storage wraps a collaborator failure as a StorageError.
func Storage(err error, op string) error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) {
		return err
	}
	return &Error{Kind: KindStorageError, Message: op, Cause: err}
}

// KindOf returns the kind of the outermost coded error in the chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Kind
	}
	return KindUnknown
}
