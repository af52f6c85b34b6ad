package schedule

import (
	"fmt"

	"github.com/leaguesched/rbrl2/internal/config"
	"github.com/leaguesched/rbrl2/internal/schederr"
)

// ValidationResult collects the outcome of running all validators over a
// schedule: warnings are advisory, errors are broken invariants. Validate
// only collects them; what to do about errors is left to the caller.
type ValidationResult struct {
	Errors   []error
	Warnings []string
}

func (r *ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs every invariant check over a finished schedule: rest gaps,
// same-day conflicts, slot uniqueness, quota attainment, and (when a strict
// block recipe is in effect) per-block division coverage.
func Validate(s *Schedule, p *config.Params, recipe map[string]int, blockSize int, slots []Slot) *ValidationResult {
	r := &ValidationResult{}

	validateRest(s, p, r)
	validateSameDay(s, r)
	validateSlotUniqueness(s, r)
	validateQuota(s, p, r)
	if blockSize > 0 && len(recipe) > 0 {
		validateStrictBlocks(s, recipe, blockSize, slots, r)
	}

	return r
}

// validateRest checks that consecutive games of a team are >= min_rest_days
// apart (error), and flags (warning) any gap exceeding max_gap_days.
func validateRest(s *Schedule, p *config.Params, r *ValidationResult) {
	byTeam := gamesByTeam(s)
	for _, team := range s.Teams() {
		games := byTeam[team]
		for i := 1; i < len(games); i++ {
			gap := daysBetween(games[i-1].Slot.Start, games[i].Slot.Start)
			if gap < p.MinRestDays {
				r.Errors = append(r.Errors, schederr.NewInvariantViolation("min_rest",
					fmt.Sprintf("team %s has only %d rest days between games on %s and %s (want >= %d)",
						team, gap, games[i-1].Slot.Start.Format("2006-01-02"), games[i].Slot.Start.Format("2006-01-02"), p.MinRestDays)))
			}
			if gap > p.MaxGapDays {
				r.Warnings = append(r.Warnings, fmt.Sprintf(
					"team %s has a %d-day gap between games on %s and %s (target %d, max %d)",
					team, gap, games[i-1].Slot.Start.Format("2006-01-02"), games[i].Slot.Start.Format("2006-01-02"), p.TargetGapDays, p.MaxGapDays))
			}
		}
	}
}

// validateSameDay checks that no team appears twice on the same date.
func validateSameDay(s *Schedule, r *ValidationResult) {
	seen := make(map[string]map[string]bool) // team -> date -> seen
	for _, g := range s.Games {
		date := g.Slot.Start.Format("2006-01-02")
		for _, team := range []string{g.Matchup.Home, g.Matchup.Away} {
			if seen[team] == nil {
				seen[team] = make(map[string]bool)
			}
			if seen[team][date] {
				r.Errors = append(r.Errors, schederr.NewInvariantViolation("same_day",
					fmt.Sprintf("team %s is scheduled twice on %s", team, date)))
			}
			seen[team][date] = true
		}
	}
}

// validateSlotUniqueness checks that every slot is used by at most one
// game.
func validateSlotUniqueness(s *Schedule, r *ValidationResult) {
	seen := make(map[int]bool)
	for _, g := range s.Games {
		if seen[g.Slot.ID] {
			r.Errors = append(r.Errors, schederr.NewInvariantViolation("slot_uniqueness",
				fmt.Sprintf("slot %d is used by more than one game", g.Slot.ID)))
		}
		seen[g.Slot.ID] = true
	}
}

// validateQuota checks that every team's games_played equals
// games_per_team, reporting any delta as a warning rather than an error
// (the pipeline endeavors toward, but does not guarantee, exact equality).
func validateQuota(s *Schedule, p *config.Params, r *ValidationResult) {
	for _, team := range s.Teams() {
		st := s.TeamState(team)
		if st.GamesPlayed != p.GamesPerTeam {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"team %s has %d games, want %d", team, st.GamesPlayed, p.GamesPerTeam))
		}
	}
}

// validateStrictBlocks checks that for every full, recipe-matching segment,
// every team of every recipe division plays exactly once. "Full" is judged
// from the segment's underlying slot count, not from how many of those slots
// ended up with a committed game — a block StrictFill/GreedyFill only
// partially filled is still a strict-block coverage violation, not a
// skippable partial segment.
func validateStrictBlocks(s *Schedule, recipe map[string]int, blockSize int, slots []Slot, r *ValidationResult) {
	teamsByDiv := make(map[string][]string)
	for _, name := range s.Teams() {
		div := s.teamDivision[name]
		teamsByDiv[div] = append(teamsByDiv[div], name)
	}

	segSlotCounts := make(map[int]int)
	segDivCounts := make(map[int]map[string]int)
	for _, sl := range slots {
		segSlotCounts[sl.Segment]++
		if segDivCounts[sl.Segment] == nil {
			segDivCounts[sl.Segment] = make(map[string]int)
		}
		segDivCounts[sl.Segment][sl.AssignedDivision]++
	}

	for seg, count := range segSlotCounts {
		if count != blockSize {
			continue
		}
		matches := len(segDivCounts[seg]) == len(recipe)
		if matches {
			for div, want := range recipe {
				if segDivCounts[seg][div] != want {
					matches = false
					break
				}
			}
		}
		if !matches {
			continue
		}

		played := make(map[string]int)
		for _, g := range s.Games {
			if g.Slot.Segment != seg {
				continue
			}
			played[g.Matchup.Home]++
			played[g.Matchup.Away]++
		}
		for div := range recipe {
			for _, team := range teamsByDiv[div] {
				if played[team] != 1 {
					r.Errors = append(r.Errors, schederr.NewInvariantViolation("strict_block_coverage",
						fmt.Sprintf("team %s played %d times in strict block %d, want exactly 1", team, played[team], seg)))
				}
			}
		}
	}
}

func gamesByTeam(s *Schedule) map[string][]ScheduledGame {
	out := make(map[string][]ScheduledGame)
	games := make([]ScheduledGame, len(s.Games))
	copy(games, s.Games)
	for _, team := range s.Teams() {
		out[team] = nil
	}
	for _, g := range games {
		out[g.Matchup.Home] = append(out[g.Matchup.Home], g)
		out[g.Matchup.Away] = append(out[g.Matchup.Away], g)
	}
	return out
}
