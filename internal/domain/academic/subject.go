package academic

import (
	"fmt"
	"strings"
)

type Level string

const (
	LevelUndergraduate Level = "Undergraduate"
	LevelGraduate      Level = "Graduate"
	LevelPostgraduate  Level = "Postgraduate"
)

// ParseLevel accepts the canonical names case-insensitively.
func ParseLevel(raw string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "undergraduate":
		return LevelUndergraduate, nil
	case "graduate":
		return LevelGraduate, nil
	case "postgraduate":
		return LevelPostgraduate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, raw)
	}
}

// Rank orders levels from 1 (undergraduate) upwards. Unknown levels rank 0.
func (l Level) Rank() int {
	switch l {
	case LevelUndergraduate:
		return 1
	case LevelGraduate:
		return 2
	case LevelPostgraduate:
		return 3
	default:
		return 0
	}
}

type Metadata struct {
	Level         Level
	Department    string
	WorkloadHours int
	Semester      string
	Language      string
}

type SubjectInfo struct {
	ID             string
	Title          string
	Institution    string
	Credits        int
	ContentLocator string
	ContentHash    string
	Metadata       Metadata
}

func (s SubjectInfo) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrSubjectIDRequired
	}
	if strings.TrimSpace(s.Institution) == "" {
		return ErrInstitutionRequired
	}
	if s.Credits <= 0 {
		return ErrInvalidCredits
	}
	if s.Metadata.Level.Rank() == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, s.Metadata.Level)
	}
	if s.Metadata.WorkloadHours < 0 {
		return fmt.Errorf("%w: workload hours %d", ErrInvalidCredits, s.Metadata.WorkloadHours)
	}
	return nil
}
