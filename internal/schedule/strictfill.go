package schedule

import (
	"sort"

	"github.com/leaguesched/rbrl2/internal/matchup"
	"github.com/leaguesched/rbrl2/internal/schederr"
)

// divisionRounds holds the precomputed round-robin rounds for one
// division's teams plus a cursor into how many rounds have been consumed.
type divisionRounds struct {
	rounds [][][2]string
	cursor int
}

// StrictFill walks every full, recipe-matching segment and, for each
// recipe division, consumes the next unused round of that division's
// round-robin sequence — placing every team of every recipe division
// exactly once per such block. Segments that are partial, recipe-mismatched,
// would push any recipe-division team over quota, or come after a recipe
// division has used up all of its round-robin rounds are left untouched for
// the greedy assigner to fill instead.
func StrictFill(s *Schedule, slots []Slot, recipe map[string]int, blockSize int, gamesPerTeam int) error {
	if blockSize <= 0 || len(recipe) == 0 {
		return nil
	}

	teamsByDiv := make(map[string][]string)
	for _, name := range s.Teams() {
		div := s.teamDivision[name]
		teamsByDiv[div] = append(teamsByDiv[div], name)
	}

	divSeq := make(map[string]*divisionRounds, len(recipe))
	for div := range recipe {
		teams := make([]string, len(teamsByDiv[div]))
		copy(teams, teamsByDiv[div])
		sort.Strings(teams)
		divSeq[div] = &divisionRounds{rounds: matchup.RoundRobin(teams)}
	}

	usedSlotIDs := make(map[int]bool)
	for _, g := range s.Games {
		usedSlotIDs[g.Slot.ID] = true
	}

	segments := groupBySegment(slots)
	segIdxs := make([]int, 0, len(segments))
	for seg := range segments {
		segIdxs = append(segIdxs, seg)
	}
	sort.Ints(segIdxs)

	for _, seg := range segIdxs {
		segSlots := segments[seg]
		if len(segSlots) != blockSize {
			continue
		}
		if !recipeMatches(segSlots, recipe) {
			continue
		}

		if wouldExceedCap(s, teamsByDiv, recipe, gamesPerTeam) {
			continue
		}

		exhausted := false
		for div := range recipe {
			if divSeq[div].cursor >= len(divSeq[div].rounds) {
				exhausted = true
			}
		}
		if exhausted {
			continue
		}

		if err := fillSegment(s, segSlots, recipe, teamsByDiv, divSeq, usedSlotIDs); err != nil {
			return err
		}
	}

	return nil
}

func groupBySegment(slots []Slot) map[int][]Slot {
	out := make(map[int][]Slot)
	for _, sl := range slots {
		out[sl.Segment] = append(out[sl.Segment], sl)
	}
	return out
}

func recipeMatches(segSlots []Slot, recipe map[string]int) bool {
	counts := make(map[string]int)
	for _, sl := range segSlots {
		counts[sl.AssignedDivision]++
	}
	if len(counts) != len(recipe) {
		return false
	}
	for div, want := range recipe {
		if counts[div] != want {
			return false
		}
	}
	return true
}

func wouldExceedCap(s *Schedule, teamsByDiv map[string][]string, recipe map[string]int, gamesPerTeam int) bool {
	for div := range recipe {
		for _, team := range teamsByDiv[div] {
			if st := s.TeamState(team); st != nil && st.GamesPlayed+1 > gamesPerTeam {
				return true
			}
		}
	}
	return false
}

func fillSegment(s *Schedule, segSlots []Slot, recipe map[string]int, teamsByDiv map[string][]string,
	divSeq map[string]*divisionRounds, usedSlotIDs map[int]bool) error {

	divs := make([]string, 0, len(recipe))
	for div := range recipe {
		divs = append(divs, div)
	}
	sort.Strings(divs)

	slotsByDiv := make(map[string][]Slot)
	for _, sl := range segSlots {
		slotsByDiv[sl.AssignedDivision] = append(slotsByDiv[sl.AssignedDivision], sl)
	}
	for div := range slotsByDiv {
		sort.Slice(slotsByDiv[div], func(i, j int) bool { return slotsByDiv[div][i].ID < slotsByDiv[div][j].ID })
	}

	var toCommit []ScheduledGame

	for _, div := range divs {
		want := recipe[div]
		seq := divSeq[div]
		if seq.cursor >= len(seq.rounds) {
			return schederr.NewFeasibilityError(schederr.StrictBlockViolated,
				"division %s has no remaining round-robin rounds for its strict block", div)
		}
		round := seq.rounds[seq.cursor]
		if len(round) < want {
			return schederr.NewFeasibilityError(schederr.StrictBlockViolated,
				"division %s round has %d pairs, need %d", div, len(round), want)
		}
		divSlots := slotsByDiv[div]
		if len(divSlots) < want {
			return schederr.NewFeasibilityError(schederr.StrictBlockViolated,
				"division %s has %d stamped slots in segment, need %d", div, len(divSlots), want)
		}

		for i := 0; i < want; i++ {
			pair := round[i]
			slot := divSlots[i]
			toCommit = append(toCommit, ScheduledGame{
				Matchup: Matchup{Division: div, Home: pair[0], Away: pair[1], RoundIndex: seq.cursor + 1},
				Slot:    slot,
			})
		}
		seq.cursor++
	}

	for _, g := range toCommit {
		s.Games = append(s.Games, g)
	}
	s.rebuildTeamState()
	return nil
}
