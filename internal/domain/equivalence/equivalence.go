package equivalence

import (
	"fmt"
	"strings"
	"time"

	"academictoken/internal/domain/academic"
)

type Type string

const (
	TypeFull        Type = "Full"
	TypePartial     Type = "Partial"
	TypeConditional Type = "Conditional"
	TypeNone        Type = "None"
)

func ParseType(raw string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "full":
		return TypeFull, nil
	case "partial":
		return TypePartial, nil
	case "conditional":
		return TypeConditional, nil
	case "none":
		return TypeNone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, raw)
	}
}

type Status string

const (
	StatusPending     Status = "Pending"
	StatusAnalyzing   Status = "Analyzing"
	StatusUnderReview Status = "UnderReview"
	StatusApproved    Status = "Approved"
	StatusRejected    Status = "Rejected"
)

func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected:
		return true
	case StatusPending, StatusAnalyzing, StatusUnderReview:
		return false
	default:
		return false
	}
}

type Method string

const (
	MethodAutomatic     Method = "Automatic"
	MethodManual        Method = "Manual"
	MethodHybrid        Method = "Hybrid"
	MethodInstitutional Method = "Institutional"
)

func ParseMethod(raw string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "automatic", "":
		return MethodAutomatic, nil
	case "manual":
		return MethodManual, nil
	case "hybrid":
		return MethodHybrid, nil
	case "institutional":
		return MethodInstitutional, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, raw)
	}
}

// AutoApprover is recorded as approver when a score clears the threshold.
const AutoApprover = "system:auto-approval"

// Equivalence holds copies of both subjects taken at registration time.
type Equivalence struct {
	ID                   string
	Source               academic.SubjectInfo
	Target               academic.SubjectInfo
	Type                 Type
	SimilarityPercentage int
	Status               Status
	Method               Method
	CreatedAt            time.Time
	ApprovedAt           *time.Time
	ApprovedBy           string
	Notes                string
	ConfidenceScore      int
}

// New validates a pair and builds a pending record.
func New(id string, source, target academic.SubjectInfo, method Method, notes string, now time.Time) (Equivalence, error) {
	if source.ID == target.ID {
		return Equivalence{}, ErrSelfEquivalence
	}
	return Equivalence{
		ID:        id,
		Source:    source,
		Target:    target,
		Type:      TypeNone,
		Status:    StatusPending,
		Method:    method,
		CreatedAt: now,
		Notes:     notes,
	}, nil
}

// BeginAnalysis moves a pending or reviewed record into Analyzing.
func (e *Equivalence) BeginAnalysis() error {
	switch e.Status {
	case StatusPending, StatusUnderReview:
		e.Status = StatusAnalyzing
		return nil
	case StatusApproved, StatusRejected:
		return ErrAlreadyDecided
	case StatusAnalyzing:
		return fmt.Errorf("%w: %s is already analyzing", ErrInvalidTransition, e.ID)
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, e.Status)
	}
}

// CompleteAnalysis records the result and auto-approves when the confidence
// score reaches threshold.
func (e *Equivalence) CompleteAnalysis(result AnalysisResult, threshold int, now time.Time) error {
	if e.Status != StatusAnalyzing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.Status, StatusUnderReview)
	}

	e.Type = result.RecommendedType
	e.SimilarityPercentage = result.OverallScore
	e.ConfidenceScore = result.ConfidenceScore
	e.Status = StatusUnderReview

	if ShouldAutoApprove(result.ConfidenceScore, threshold) {
		e.Status = StatusApproved
		e.Method = MethodAutomatic
		e.ApprovedBy = AutoApprover
		approvedAt := now
		e.ApprovedAt = &approvedAt
	}
	return nil
}

func ShouldAutoApprove(confidence, threshold int) bool {
	return confidence >= threshold
}

// Decision is a reviewer's verdict on an analyzed equivalence.
type Decision struct {
	Approve              bool
	Approver             string
	Type                 *Type
	SimilarityPercentage *int
	Method               Method
	Notes                string
}

func (e *Equivalence) Decide(d Decision, now time.Time) error {
	switch e.Status {
	case StatusUnderReview:
	case StatusApproved, StatusRejected:
		return ErrAlreadyDecided
	case StatusPending, StatusAnalyzing:
		return ErrNotUnderReview
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, e.Status)
	}

	if d.SimilarityPercentage != nil {
		if p := *d.SimilarityPercentage; p < 0 || p > 100 {
			return ErrInvalidPercentage
		}
		e.SimilarityPercentage = *d.SimilarityPercentage
	}
	if d.Type != nil {
		e.Type = *d.Type
	}

	method := d.Method
	if method == "" {
		method = MethodHybrid
	}
	e.Method = method

	if strings.TrimSpace(d.Notes) != "" {
		e.Notes = d.Notes
	}

	e.Status = StatusRejected
	if d.Approve {
		e.Status = StatusApproved
	}
	e.ApprovedBy = d.Approver
	decidedAt := now
	e.ApprovedAt = &decidedAt
	return nil
}

// BlocksPair reports whether an existing record for the same ordered pair
// prevents another analysis from starting.
func BlocksPair(status Status) bool {
	return status == StatusAnalyzing || status == StatusApproved
}
