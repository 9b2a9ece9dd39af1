package prerequisite

import (
	"fmt"
	"strings"
)

type GroupType string

const (
	GroupAll     GroupType = "All"
	GroupAny     GroupType = "Any"
	GroupMinimum GroupType = "Minimum"
	GroupNone    GroupType = "None"
)

func ParseGroupType(raw string) (GroupType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "all":
		return GroupAll, nil
	case "any":
		return GroupAny, nil
	case "minimum", "min":
		return GroupMinimum, nil
	case "none", "":
		return GroupNone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGroupType, raw)
	}
}

// Logic says how a group combines with the groups evaluated before it.
type Logic string

const (
	LogicAnd       Logic = "And"
	LogicOr        Logic = "Or"
	LogicXor       Logic = "Xor"
	LogicThreshold Logic = "Threshold"
	LogicNone      Logic = "None"
)

func ParseLogic(raw string) (Logic, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "and", "":
		return LogicAnd, nil
	case "or":
		return LogicOr, nil
	case "xor":
		return LogicXor, nil
	case "threshold":
		return LogicThreshold, nil
	case "none":
		return LogicNone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLogic, raw)
	}
}

type Group struct {
	ID                       string
	SubjectID                string
	GroupType                GroupType
	MinimumCredits           int
	MinimumCompletedSubjects int
	SubjectIDs               []string
	Logic                    Logic
	Priority                 int
	Confidence               int
	ContentLocator           string
	Position                 int
}

func (g Group) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return ErrGroupIDRequired
	}
	switch g.GroupType {
	case GroupAll, GroupAny, GroupMinimum, GroupNone:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidGroupType, g.GroupType)
	}
	switch g.Logic {
	case LogicAnd, LogicOr, LogicXor, LogicThreshold, LogicNone:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogic, g.Logic)
	}
	if g.Confidence < 0 || g.Confidence > 100 {
		return ErrInvalidConfidence
	}
	if g.MinimumCredits < 0 || g.MinimumCompletedSubjects < 0 {
		return ErrInvalidThreshold
	}
	for _, id := range g.SubjectIDs {
		if id == g.SubjectID {
			return fmt.Errorf("%w: %s", ErrSelfPrerequisite, id)
		}
	}
	return nil
}

// ValidateSet checks every group and rejects duplicate ids within one subject.
func ValidateSet(groups []Group) error {
	seen := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("group %s: %w", g.ID, err)
		}
		if _, ok := seen[g.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateGroupID, g.ID)
		}
		seen[g.ID] = struct{}{}
	}
	return nil
}

// Lists reports whether the group names subjectID as a candidate.
func (g Group) Lists(subjectID string) bool {
	for _, id := range g.SubjectIDs {
		if id == subjectID {
			return true
		}
	}
	return false
}
