package academic

import (
	"strings"
	"time"
)

const MaxGrade = 1000

// CompletedSubject is one entry of a student's history. Grade is scaled x100.
type CompletedSubject struct {
	SubjectID      string
	Credits        int
	CompletionDate time.Time
	Grade          int
	CredentialRef  string
	ContentLocator string
}

func (c CompletedSubject) Validate() error {
	if strings.TrimSpace(c.SubjectID) == "" {
		return ErrSubjectIDRequired
	}
	if c.Credits <= 0 {
		return ErrInvalidCredits
	}
	if c.Grade < 0 || c.Grade > MaxGrade {
		return ErrInvalidGrade
	}
	return nil
}

type StudentRecord struct {
	StudentID         string
	CompletedSubjects []CompletedSubject
	TotalCredits      int
	Revision          int64
}

func (r StudentRecord) Has(subjectID string) bool {
	for _, c := range r.CompletedSubjects {
		if c.SubjectID == subjectID {
			return true
		}
	}
	return false
}

// Completed indexes the history by subject id.
func (r StudentRecord) Completed() map[string]CompletedSubject {
	out := make(map[string]CompletedSubject, len(r.CompletedSubjects))
	for _, c := range r.CompletedSubjects {
		out[c.SubjectID] = c
	}
	return out
}

// Append adds entries to the history and recomputes the running total.
// The record is left untouched when any entry is invalid or already present.
func (r *StudentRecord) Append(entries ...CompletedSubject) error {
	seen := r.Completed()
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return err
		}
		if _, ok := seen[entry.SubjectID]; ok {
			return ErrSubjectCompleted
		}
		seen[entry.SubjectID] = entry
	}

	r.CompletedSubjects = append(r.CompletedSubjects, entries...)
	r.RecomputeTotal()
	r.Revision++
	return nil
}

func (r *StudentRecord) RecomputeTotal() {
	total := 0
	for _, c := range r.CompletedSubjects {
		total += c.Credits
	}
	r.TotalCredits = total
}
