package schedule

import (
	"math"
	"math/rand"
	"sort"

	"github.com/leaguesched/rbrl2/internal/config"
	"github.com/leaguesched/rbrl2/internal/schederr"
)

// Pool tracks a matchup's remaining per-pair allocation as the greedy
// assigner and strict filler consume it.
type Pool struct {
	matchups []Matchup
	used     map[int]bool // index into matchups -> committed
}

// NewPool wraps a generated matchup slice for consumption by the
// assignment stages. Matchups are considered by (round_index, home, away)
// order, per the core spec's ordering guarantee.
func NewPool(matchups []Matchup) *Pool {
	sorted := make([]Matchup, len(matchups))
	copy(sorted, matchups)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].RoundIndex != sorted[j].RoundIndex {
			return sorted[i].RoundIndex < sorted[j].RoundIndex
		}
		if sorted[i].Home != sorted[j].Home {
			return sorted[i].Home < sorted[j].Home
		}
		return sorted[i].Away < sorted[j].Away
	})
	return &Pool{matchups: sorted, used: make(map[int]bool)}
}

// Remaining returns the not-yet-committed matchups, in pool order.
func (p *Pool) Remaining() []Matchup {
	var out []Matchup
	for i, m := range p.matchups {
		if !p.used[i] {
			out = append(out, m)
		}
	}
	return out
}

// Commit marks a matchup (matched by home/away/round_index) as consumed.
// Reports whether a matching unused entry was found.
func (p *Pool) Commit(m Matchup) bool {
	for i, cand := range p.matchups {
		if p.used[i] {
			continue
		}
		if cand.Home == m.Home && cand.Away == m.Away && cand.RoundIndex == m.RoundIndex {
			p.used[i] = true
			return true
		}
	}
	return false
}

func urgency(gap int, maxGapDays int) float64 {
	if gap < 0 {
		return 0
	}
	v := math.Exp(float64(gap-(maxGapDays-2))/1.5) - 1.0
	if v < 0 {
		return 0
	}
	return v
}

// cost implements the greedy assigner's scoring function (core spec §4.5):
// weighted gap-to-ideal, idle urgency, EML repetition, week rotation,
// weekday repetition, home/away balance, plus a deterministic epsilon
// tie-break.
func cost(slot Slot, m Matchup, s *Schedule, p *config.Params, jitter float64) float64 {
	home := s.TeamState(m.Home)
	away := s.TeamState(m.Away)

	ideal := p.TargetGapDays

	gapHome := home.DaysSinceLastPlayed(slot.Start)
	gapAway := away.DaysSinceLastPlayed(slot.Start)

	gapHomeForTerm := gapHome
	if gapHomeForTerm < 0 {
		gapHomeForTerm = ideal
	}
	gapAwayForTerm := gapAway
	if gapAwayForTerm < 0 {
		gapAwayForTerm = ideal
	}
	gapTerm := math.Abs(float64(gapHomeForTerm-ideal)) + math.Abs(float64(gapAwayForTerm-ideal))

	urgTerm := urgency(gapHome, p.MaxGapDays) + urgency(gapAway, p.MaxGapDays)

	emlTerm := float64(home.EMLCounts[slot.EML] + away.EMLCounts[slot.EML])

	rotTerm := 0.0
	if home.FirstSlotWeeks[slot.WeekIndex] || away.FirstSlotWeeks[slot.WeekIndex] {
		rotTerm = 1.0
	}

	weekdayTerm := float64(home.WeekdayCounts[slot.Weekday] + away.WeekdayCounts[slot.Weekday])

	haTerm := math.Abs(float64((home.HomeCount+1)-home.AwayCount)) + math.Abs(float64(away.HomeCount-(away.AwayCount+1)))

	w := p.Weights
	return w.Gap*gapTerm +
		w.Urgency*urgTerm +
		w.EML*emlTerm +
		w.Rotation*rotTerm +
		w.Weekday*weekdayTerm +
		w.HomeAway*haTerm +
		jitter
}

// eligible reports whether a matchup can be placed in slot, per §4.5: both
// teams rested (if they have played), neither already scheduled in this
// slot's segment when the segment is full-recipe, the division matches the
// slot's assignment (unless "any"), and neither team is already at quota.
func eligible(slot Slot, m Matchup, s *Schedule, p *config.Params, gamesPerTeam int, segmentFull map[int]bool) bool {
	home := s.TeamState(m.Home)
	away := s.TeamState(m.Away)
	if home == nil || away == nil {
		return false
	}

	if home.GamesPlayed >= gamesPerTeam || away.GamesPlayed >= gamesPerTeam {
		return false
	}

	if gapHome := home.DaysSinceLastPlayed(slot.Start); gapHome >= 0 && gapHome < p.MinRestDays {
		return false
	}
	if gapAway := away.DaysSinceLastPlayed(slot.Start); gapAway >= 0 && gapAway < p.MinRestDays {
		return false
	}

	if slot.AssignedDivision != anyDivision && m.Division != slot.AssignedDivision {
		return false
	}

	if segmentFull[slot.Segment] {
		for _, g := range s.Games {
			if g.Slot.Segment != slot.Segment {
				continue
			}
			if g.Matchup.Home == m.Home || g.Matchup.Away == m.Home ||
				g.Matchup.Home == m.Away || g.Matchup.Away == m.Away {
				return false
			}
		}
	}

	return true
}

func isUrgent(slot Slot, m Matchup, s *Schedule, p *config.Params) bool {
	home := s.TeamState(m.Home)
	away := s.TeamState(m.Away)
	gapHome := home.DaysSinceLastPlayed(slot.Start)
	gapAway := away.DaysSinceLastPlayed(slot.Start)
	return (gapHome >= 0 && gapHome > p.MaxGapDays) || (gapAway >= 0 && gapAway > p.MaxGapDays)
}

// GreedyFill iterates slots not already committed, in chronological order,
// and for each scores and commits the best remaining eligible matchup from
// pool. Slots with no eligible matchup are not recorded anywhere; GreedyFill
// just skips them, leaving the slot open for ForceFillResidual.
func GreedyFill(s *Schedule, slots []Slot, pool *Pool, p *config.Params, rng *rand.Rand) {
	usedSlot := make(map[int]bool)
	for _, g := range s.Games {
		usedSlot[g.Slot.ID] = true
	}

	segmentFull := make(map[int]bool)
	segCounts := make(map[int]int)
	for _, sl := range slots {
		segCounts[sl.Segment]++
	}
	blockSize := 0
	for _, c := range segCounts {
		if c > blockSize {
			blockSize = c
		}
	}
	for seg, c := range segCounts {
		if blockSize > 0 && c == blockSize {
			segmentFull[seg] = true
		}
	}

	ordered := make([]Slot, len(slots))
	copy(ordered, slots)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].Start.Equal(ordered[j].Start) {
			return ordered[i].Start.Before(ordered[j].Start)
		}
		return ordered[i].ID < ordered[j].ID
	})

	for _, slot := range ordered {
		if usedSlot[slot.ID] {
			continue
		}

		candidates := pool.Remaining()
		var urgent, rest []Matchup
		for _, m := range candidates {
			if !eligible(slot, m, s, p, p.GamesPerTeam, segmentFull) {
				continue
			}
			if isUrgent(slot, m, s, p) {
				urgent = append(urgent, m)
			} else {
				rest = append(rest, m)
			}
		}

		pick := urgent
		if len(pick) == 0 {
			pick = rest
		}
		if len(pick) == 0 {
			continue
		}

		bestIdx := -1
		bestCost := math.Inf(1)
		for i, m := range pick {
			jitter := 1e-6 * rng.Float64()
			c := cost(slot, m, s, p, jitter)
			if c < bestCost {
				bestCost = c
				bestIdx = i
			}
		}

		best := pick[bestIdx]
		pool.Commit(best)
		s.Games = append(s.Games, ScheduledGame{Matchup: best, Slot: slot})
		s.rebuildTeamState()
		usedSlot[slot.ID] = true
	}
}

// ForceFillResidual fills any still-open slot from the remaining pool
// ignoring the rest-day constraint (but never the same-day constraint),
// recording a warning for each placement. Division match and the quota are
// still honored; whether a team already plays in the slot's segment is not
// checked.
func ForceFillResidual(s *Schedule, slots []Slot, pool *Pool, p *config.Params) {
	usedSlot := make(map[int]bool)
	for _, g := range s.Games {
		usedSlot[g.Slot.ID] = true
	}

	for _, slot := range slots {
		if usedSlot[slot.ID] {
			continue
		}
		for _, m := range pool.Remaining() {
			home := s.TeamState(m.Home)
			away := s.TeamState(m.Away)
			if home.GamesPlayed >= p.GamesPerTeam || away.GamesPlayed >= p.GamesPerTeam {
				continue
			}
			if slot.AssignedDivision != anyDivision && m.Division != slot.AssignedDivision {
				continue
			}
			if sameDayConflict(s, slot, m.Home) || sameDayConflict(s, slot, m.Away) {
				continue
			}
			pool.Commit(m)
			s.Games = append(s.Games, ScheduledGame{Matchup: m, Slot: slot})
			s.rebuildTeamState()
			s.Warnings = append(s.Warnings, schederr.NewFeasibilityError(schederr.NoEligibleSlot,
				"force-filled %s vs %s into slot %d without satisfying min rest days", m.Home, m.Away, slot.ID).Error())
			usedSlot[slot.ID] = true
			break
		}
	}

	for _, m := range pool.Remaining() {
		s.Unscheduled = append(s.Unscheduled, Unscheduled{Matchup: m, Reason: "no_eligible_slot"})
	}
}

func sameDayConflict(s *Schedule, slot Slot, team string) bool {
	day := slot.Start.Format("2006-01-02")
	for _, g := range s.Games {
		if g.Slot.Start.Format("2006-01-02") != day {
			continue
		}
		if g.Matchup.Home == team || g.Matchup.Away == team {
			return true
		}
	}
	return false
}
