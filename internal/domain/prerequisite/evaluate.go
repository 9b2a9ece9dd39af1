package prerequisite

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"academictoken/internal/domain/academic"
)

// Outcome is the pure result of evaluating a group set.
type Outcome struct {
	Eligible             bool
	MissingPrerequisites []string
	SatisfiedGroups      []string
	UnsatisfiedGroups    []string
}

// Verification is the persisted result of one eligibility check.
type Verification struct {
	ID                   string
	StudentID            string
	SubjectID            string
	Eligible             bool
	MissingPrerequisites []string
	SatisfiedGroups      []string
	UnsatisfiedGroups    []string
	VerifiedAt           time.Time
	Rationale            string
	UsedContent          bool
}

// Ordered returns the groups sorted by priority, keeping declaration order on ties.
func Ordered(groups []Group) []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Position < out[j].Position
	})
	return out
}

// Satisfied evaluates one group in isolation.
func Satisfied(g Group, completed map[string]academic.CompletedSubject) bool {
	switch g.GroupType {
	case GroupAll:
		credits := 0
		for _, id := range g.SubjectIDs {
			c, ok := completed[id]
			if !ok {
				return false
			}
			credits += c.Credits
		}
		return credits >= g.MinimumCredits
	case GroupAny:
		if len(g.SubjectIDs) == 0 {
			return true
		}
		for _, id := range g.SubjectIDs {
			if _, ok := completed[id]; ok {
				return true
			}
		}
		return false
	case GroupMinimum:
		count := 0
		for _, id := range g.SubjectIDs {
			if _, ok := completed[id]; ok {
				count++
			}
		}
		return count >= g.MinimumCompletedSubjects
	case GroupNone:
		return true
	default:
		return false
	}
}

// Evaluate decides eligibility for one subject's groups against a completed set.
func Evaluate(groups []Group, completed map[string]academic.CompletedSubject) Outcome {
	out := Outcome{
		MissingPrerequisites: []string{},
		SatisfiedGroups:      []string{},
		UnsatisfiedGroups:    []string{},
	}

	if onlyPlaceholders(groups) {
		for _, g := range groups {
			out.SatisfiedGroups = append(out.SatisfiedGroups, g.ID)
		}
		out.Eligible = true
		return out
	}

	var (
		aggregate      bool
		seeded         bool
		xorSeen        bool
		satisfiedCount int
	)
	missingSeen := make(map[string]struct{})

	for _, g := range Ordered(groups) {
		ok := Satisfied(g, completed)
		if ok {
			out.SatisfiedGroups = append(out.SatisfiedGroups, g.ID)
		} else {
			out.UnsatisfiedGroups = append(out.UnsatisfiedGroups, g.ID)
			for _, id := range g.SubjectIDs {
				if _, done := completed[id]; done {
					continue
				}
				if _, dup := missingSeen[id]; dup {
					continue
				}
				missingSeen[id] = struct{}{}
				out.MissingPrerequisites = append(out.MissingPrerequisites, id)
			}
		}

		if g.Logic == LogicNone {
			continue
		}
		if ok {
			satisfiedCount++
		}

		switch g.Logic {
		case LogicAnd:
			if !seeded {
				aggregate = ok
			} else {
				aggregate = aggregate && ok
			}
		case LogicOr:
			if !seeded {
				aggregate = ok
			} else {
				aggregate = aggregate || ok
			}
		case LogicThreshold:
			aggregate = satisfiedCount >= g.MinimumCompletedSubjects
		case LogicXor:
			xorSeen = true
			if !seeded {
				aggregate = ok
			}
		}
		seeded = true
	}

	switch {
	case !seeded:
		aggregate = true
	case xorSeen:
		aggregate = satisfiedCount == 1
	}

	out.Eligible = aggregate
	return out
}

func onlyPlaceholders(groups []Group) bool {
	for _, g := range groups {
		if g.GroupType != GroupNone {
			return false
		}
	}
	return true
}

// Rationale renders a short human-readable explanation of an outcome.
func Rationale(out Outcome, usedContent bool) string {
	var b strings.Builder
	if out.Eligible {
		b.WriteString("prerequisites satisfied")
	} else {
		b.WriteString("prerequisites not satisfied")
	}
	fmt.Fprintf(&b, ": %d of %d groups met", len(out.SatisfiedGroups), len(out.SatisfiedGroups)+len(out.UnsatisfiedGroups))
	if len(out.MissingPrerequisites) > 0 {
		fmt.Fprintf(&b, "; missing %s", strings.Join(out.MissingPrerequisites, ", "))
	}
	if usedContent {
		b.WriteString("; cached syllabus content consulted")
	}
	return b.String()
}
