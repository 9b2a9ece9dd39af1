package prerequisite

import (
	"math/rand"
	"testing"

	"academictoken/internal/domain/academic"
)

func completedSet(entries map[string]int) map[string]academic.CompletedSubject {
	out := make(map[string]academic.CompletedSubject, len(entries))
	for id, credits := range entries {
		out[id] = academic.CompletedSubject{SubjectID: id, Credits: credits, Grade: 700}
	}
	return out
}

func TestEvaluateAllWithMinimumCredits(t *testing.T) {
	groups := []Group{{
		ID:             "g1",
		SubjectID:      "S",
		GroupType:      GroupAll,
		MinimumCredits: 5,
		SubjectIDs:     []string{"A", "B"},
		Logic:          LogicAnd,
	}}

	out := Evaluate(groups, completedSet(map[string]int{"A": 4, "B": 3}))
	if !out.Eligible {
		t.Fatalf("Evaluate() eligible = false, want true: %#v", out)
	}
	if len(out.MissingPrerequisites) != 0 {
		t.Fatalf("missing = %v", out.MissingPrerequisites)
	}

	groups[0].MinimumCredits = 8
	out = Evaluate(groups, completedSet(map[string]int{"A": 4, "B": 3}))
	if out.Eligible {
		t.Fatalf("Evaluate() eligible = true with 7 < 8 credits")
	}
}

func TestEvaluatePlaceholderGroupsAlwaysEligible(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	logics := []Logic{LogicAnd, LogicOr, LogicXor, LogicThreshold, LogicNone}

	for i := 0; i < 200; i++ {
		n := rng.Intn(5)
		groups := make([]Group, 0, n)
		for j := 0; j < n; j++ {
			groups = append(groups, Group{
				ID:                       string(rune('a' + j)),
				GroupType:                GroupNone,
				MinimumCompletedSubjects: rng.Intn(4),
				SubjectIDs:               []string{"X", "Y"},
				Logic:                    logics[rng.Intn(len(logics))],
				Priority:                 rng.Intn(3),
			})
		}
		out := Evaluate(groups, nil)
		if !out.Eligible || len(out.MissingPrerequisites) != 0 {
			t.Fatalf("Evaluate(%#v) = %#v, want eligible", groups, out)
		}
	}
}

func TestEvaluateAndMatchesEveryGroupSatisfied(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pool := []string{"A", "B", "C", "D", "E"}
	types := []GroupType{GroupAll, GroupAny, GroupMinimum}

	for i := 0; i < 500; i++ {
		completed := map[string]int{}
		for _, id := range pool {
			if rng.Intn(2) == 0 {
				completed[id] = 1 + rng.Intn(5)
			}
		}
		set := completedSet(completed)

		n := 1 + rng.Intn(4)
		groups := make([]Group, 0, n)
		want := true
		for j := 0; j < n; j++ {
			ids := []string{pool[rng.Intn(len(pool))], pool[rng.Intn(len(pool))]}
			g := Group{
				ID:                       string(rune('a' + j)),
				GroupType:                types[rng.Intn(len(types))],
				MinimumCredits:           rng.Intn(8),
				MinimumCompletedSubjects: rng.Intn(3),
				SubjectIDs:               ids,
				Logic:                    LogicAnd,
				Priority:                 rng.Intn(3),
				Position:                 j,
			}
			want = want && Satisfied(g, set)
			groups = append(groups, g)
		}

		if got := Evaluate(groups, set).Eligible; got != want {
			t.Fatalf("Evaluate() = %t, want %t for groups %#v with %v", got, want, groups, completed)
		}
	}
}

func TestEvaluateCombinators(t *testing.T) {
	set := completedSet(map[string]int{"A": 3, "C": 3})
	sat := func(id string, logic Logic, priority int) Group {
		return Group{ID: id, GroupType: GroupAny, SubjectIDs: []string{"A"}, Logic: logic, Priority: priority}
	}
	unsat := func(id string, logic Logic, priority int) Group {
		return Group{ID: id, GroupType: GroupAny, SubjectIDs: []string{"B"}, Logic: logic, Priority: priority}
	}

	cases := []struct {
		name   string
		groups []Group
		want   bool
	}{
		{name: "or rescues", groups: []Group{unsat("g1", LogicAnd, 0), sat("g2", LogicOr, 1)}, want: true},
		{name: "and fails", groups: []Group{sat("g1", LogicAnd, 0), unsat("g2", LogicAnd, 1)}, want: false},
		{name: "xor exactly one", groups: []Group{sat("g1", LogicXor, 0), unsat("g2", LogicXor, 1)}, want: true},
		{name: "xor two satisfied", groups: []Group{sat("g1", LogicXor, 0), sat("g2", LogicXor, 1)}, want: false},
		{
			name: "threshold counts satisfied groups",
			groups: []Group{
				sat("g1", LogicAnd, 0),
				unsat("g2", LogicOr, 1),
				{ID: "g3", GroupType: GroupNone, Logic: LogicThreshold, MinimumCompletedSubjects: 2, Priority: 2},
			},
			want: true,
		},
		{
			name: "threshold not reached",
			groups: []Group{
				unsat("g1", LogicAnd, 0),
				{ID: "g2", GroupType: GroupAny, SubjectIDs: []string{"A"}, Logic: LogicThreshold, MinimumCompletedSubjects: 3, Priority: 1},
			},
			want: false,
		},
		{name: "logic none ignored", groups: []Group{sat("g1", LogicAnd, 0), unsat("g2", LogicNone, 1)}, want: true},
		{name: "priority decides seed", groups: []Group{sat("g1", LogicOr, 5), unsat("g2", LogicAnd, 0)}, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.groups, set).Eligible; got != tc.want {
				t.Fatalf("Evaluate() eligible = %t, want %t", got, tc.want)
			}
		})
	}
}

func TestEvaluateReportsMissingFromUnsatisfiedGroups(t *testing.T) {
	groups := []Group{
		{ID: "g1", GroupType: GroupAll, SubjectIDs: []string{"A", "B"}, Logic: LogicAnd},
		{ID: "g2", GroupType: GroupMinimum, MinimumCompletedSubjects: 2, SubjectIDs: []string{"B", "C", "D"}, Logic: LogicAnd},
		{ID: "g3", GroupType: GroupAny, SubjectIDs: []string{"A", "E"}, Logic: LogicAnd},
	}
	out := Evaluate(groups, completedSet(map[string]int{"A": 2}))

	if out.Eligible {
		t.Fatalf("Evaluate() eligible = true")
	}
	want := []string{"B", "C", "D"}
	if len(out.MissingPrerequisites) != len(want) {
		t.Fatalf("missing = %v, want %v", out.MissingPrerequisites, want)
	}
	for i := range want {
		if out.MissingPrerequisites[i] != want[i] {
			t.Fatalf("missing = %v, want %v", out.MissingPrerequisites, want)
		}
	}
	if len(out.SatisfiedGroups) != 1 || out.SatisfiedGroups[0] != "g3" {
		t.Fatalf("satisfied = %v", out.SatisfiedGroups)
	}
}

func TestEvaluateMinimumZeroThresholdIsSatisfied(t *testing.T) {
	groups := []Group{{ID: "g1", GroupType: GroupMinimum, SubjectIDs: []string{"Z"}, Logic: LogicAnd}}
	if !Evaluate(groups, nil).Eligible {
		t.Fatalf("Minimum with zero threshold should be satisfied")
	}
}
