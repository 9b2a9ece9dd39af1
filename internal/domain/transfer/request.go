package transfer

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending           Status = "Pending"
	StatusProcessing        Status = "Processing"
	StatusPartiallyApproved Status = "PartiallyApproved"
	StatusFullyApproved     Status = "FullyApproved"
	StatusRejected          Status = "Rejected"
)

// Open reports whether a request may still be processed.
func (s Status) Open() bool {
	switch s {
	case StatusPending, StatusProcessing:
		return true
	case StatusPartiallyApproved, StatusFullyApproved, StatusRejected:
		return false
	default:
		return false
	}
}

// GrantsCredits reports whether processing ended with credits to record.
func (s Status) GrantsCredits() bool {
	return s == StatusFullyApproved || s == StatusPartiallyApproved
}

type Request struct {
	ID                    string
	StudentID             string
	SourceInstitution     string
	TargetInstitution     string
	SubjectIDs            []string
	RequestedEquivalences []string
	ApprovedEquivalences  []string
	Status                Status
	SubmittedAt           time.Time
	ProcessedAt           *time.Time
	ProcessedBy           string
	Notes                 string
}

// New validates the submission shape and returns a pending request.
func New(id, studentID, source, target string, subjectIDs, equivalenceIDs []string, notes string, now time.Time) (Request, error) {
	source, target = strings.TrimSpace(source), strings.TrimSpace(target)
	if source == "" || target == "" {
		return Request{}, ErrInstitutionRequired
	}
	if source == target {
		return Request{}, ErrSameInstitution
	}
	requested := Dedupe(equivalenceIDs)
	if len(requested) == 0 {
		return Request{}, ErrNoEquivalences
	}

	return Request{
		ID:                    id,
		StudentID:             studentID,
		SourceInstitution:     source,
		TargetInstitution:     target,
		SubjectIDs:            Dedupe(subjectIDs),
		RequestedEquivalences: requested,
		ApprovedEquivalences:  []string{},
		Status:                StatusPending,
		SubmittedAt:           now,
		Notes:                 notes,
	}, nil
}

// Rollup derives the processed status from the requested and approved sets.
// approved must be a subset of requested.
func Rollup(requested, approved []string) (Status, []string, error) {
	want := make(map[string]struct{}, len(requested))
	for _, id := range requested {
		want[id] = struct{}{}
	}

	accepted := Dedupe(approved)
	for _, id := range accepted {
		if _, ok := want[id]; !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrNotRequested, id)
		}
	}

	switch {
	case len(accepted) == 0:
		return StatusRejected, accepted, nil
	case len(accepted) == len(want):
		return StatusFullyApproved, accepted, nil
	default:
		return StatusPartiallyApproved, accepted, nil
	}
}

// Process applies a rollup to an open request.
func (r *Request) Process(approved []string, processor string, now time.Time) error {
	if !r.Status.Open() {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyProcessed, r.ID, r.Status)
	}

	status, accepted, err := Rollup(r.RequestedEquivalences, approved)
	if err != nil {
		return err
	}

	r.Status = status
	r.ApprovedEquivalences = accepted
	r.ProcessedBy = processor
	processedAt := now
	r.ProcessedAt = &processedAt
	return nil
}

// Dedupe drops blanks and repeats, keeping first-seen order.
func Dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
