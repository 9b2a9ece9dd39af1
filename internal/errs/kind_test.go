package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

var errSample = New(KindInvalidInput, "grade out of range")

func TestEKeepsKindAndChain(t *testing.T) {
	err := E(errSample, "field", "grade", "subject_id", "MATH101")

	if !errors.Is(err, errSample) {
		t.Fatalf("errors.Is(err, errSample) = false")
	}
	if !errors.Is(err, Of(KindInvalidInput)) {
		t.Fatalf("errors.Is(err, Of(KindInvalidInput)) = false")
	}
	if errors.Is(err, Of(KindNotFound)) {
		t.Fatalf("errors.Is(err, Of(KindNotFound)) = true")
	}
	if KindOf(err) != KindInvalidInput {
		t.Fatalf("KindOf() = %q", KindOf(err))
	}
	if got := err.Error(); got != "grade out of range (field=grade, subject_id=MATH101)" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestEMergesMetadataThroughWrap(t *testing.T) {
	inner := E(errSample, "field", "grade")
	outer := E(fmt.Errorf("update record: %w", inner), "student_id", "s-1")

	var coded *Error
	if !errors.As(outer, &coded) {
		t.Fatalf("errors.As() = false")
	}
	if coded.Metadata["field"] != "grade" || coded.Metadata["student_id"] != "s-1" {
		t.Fatalf("metadata = %#v", coded.Metadata)
	}
}

func TestStorageWrapsPlainErrorsOnly(t *testing.T) {
	plain := errors.New("disk full")
	wrapped := Storage(plain, "insert subject")
	if KindOf(wrapped) != KindStorageError {
		t.Fatalf("KindOf(wrapped) = %q", KindOf(wrapped))
	}
	if !errors.Is(wrapped, plain) {
		t.Fatalf("storage error lost cause")
	}

	if got := Storage(errSample, "insert subject"); got != error(errSample) {
		t.Fatalf("Storage() rewrapped coded error: %v", got)
	}
	if Storage(nil, "noop") != nil {
		t.Fatalf("Storage(nil) != nil")
	}
}

func TestKindOfUncoded(t *testing.T) {
	if KindOf(nil) != "" {
		t.Fatalf("KindOf(nil) = %q", KindOf(nil))
	}
	if KindOf(errors.New("x")) != KindUnknown {
		t.Fatalf("KindOf(plain) = %q", KindOf(errors.New("x")))
	}
}

func TestLoggableIncludesKind(t *testing.T) {
	value := Loggable(E(errSample, "field", "grade")).LogValue()
	rendered := value.String()
	if !strings.Contains(rendered, string(KindInvalidInput)) {
		t.Fatalf("LogValue() = %s", rendered)
	}
	if !strings.Contains(rendered, "grade") {
		t.Fatalf("LogValue() missing metadata: %s", rendered)
	}
}
