// Package latefair implements the days-since-last-played / late-game
// fairness optimizer: a week-at-a-time rearrangement that places teams
// with the longest rest into the earliest non-late slots of that week,
// leaving every earlier week untouched.
package latefair

import (
	"sort"

	"github.com/leaguesched/rbrl2/internal/eml"
	"github.com/leaguesched/rbrl2/internal/schedule"
)

const neverPlayedSentinel = 1 << 30

// maxChainDepth bounds how many intermediate matchups attemptChainSwap will
// displace looking for a usable slot.
const maxChainDepth = 3

// maxRotationParticipants bounds the combinatorial search attemptRotation
// runs over still-unplaced matchups and free slots.
const maxRotationParticipants = 4

// placement pairs a matchup with the slot it used to occupy, captured
// before a bucket is cleared for re-placement.
type placement struct {
	matchup schedule.Matchup
	slot    schedule.Slot
}

// Run applies the optimizer to every week bucket in s, in ascending week
// order, treating all earlier weeks as immutable history once processed.
func Run(s *schedule.Schedule) {
	buckets := weekBuckets(s)
	weeks := sortedKeys(buckets)

	for _, week := range weeks {
		optimizeBucket(s, week, buckets[week])
	}
}

func weekBuckets(s *schedule.Schedule) map[int][]schedule.Slot {
	out := make(map[int][]schedule.Slot)
	seen := make(map[int]bool)
	for _, g := range s.Games {
		if seen[g.Slot.ID] {
			continue
		}
		seen[g.Slot.ID] = true
		out[g.Slot.WeekIndex] = append(out[g.Slot.WeekIndex], g.Slot)
	}
	return out
}

func sortedKeys(m map[int][]schedule.Slot) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// optimizeBucket runs the three phases of §4.7 over one week's slots.
func optimizeBucket(s *schedule.Schedule, week int, bucketSlots []schedule.Slot) {
	// Phase 0: extract existing matchups in this bucket, preserving slot
	// identity (time/venue bytes), then clear them from the schedule.
	var extracted []placement
	for _, sl := range bucketSlots {
		if g, ok := s.RemoveSlot(sl.ID); ok {
			extracted = append(extracted, placement{matchup: g.Matchup, slot: g.Slot})
		}
	}
	if len(extracted) == 0 {
		return
	}

	sort.Slice(extracted, func(i, j int) bool {
		if extracted[i].matchup.RoundIndex != extracted[j].matchup.RoundIndex {
			return extracted[i].matchup.RoundIndex < extracted[j].matchup.RoundIndex
		}
		if extracted[i].matchup.Home != extracted[j].matchup.Home {
			return extracted[i].matchup.Home < extracted[j].matchup.Home
		}
		return extracted[i].matchup.Away < extracted[j].matchup.Away
	})

	placed := make([]bool, len(extracted))
	slotUsed := make(map[int]bool, len(bucketSlots))

	hasConflict := func(team, date string) bool { return sameDayInSchedule(s, team, date) }

	commit := func(i int, slot schedule.Slot) {
		s.AddGame(schedule.ScheduledGame{Matchup: extracted[i].matchup, Slot: slot})
		placed[i] = true
		slotUsed[slot.ID] = true
	}

	// Phase 1: late slots, earliest first, matchup with the fewest
	// combined prior late games wins each one.
	var lateSlots []schedule.Slot
	for _, sl := range bucketSlots {
		if sl.EML == eml.Late {
			lateSlots = append(lateSlots, sl)
		}
	}
	sort.Slice(lateSlots, func(i, j int) bool { return lateSlots[i].Start.Before(lateSlots[j].Start) })

	for _, slot := range lateSlots {
		best := -1
		bestLateCount := 1 << 30
		for i, p := range extracted {
			if placed[i] {
				continue
			}
			if hasConflict(p.matchup.Home, dateKey(slot)) || hasConflict(p.matchup.Away, dateKey(slot)) {
				continue
			}
			homeSt := s.TeamState(p.matchup.Home)
			awaySt := s.TeamState(p.matchup.Away)
			lateCount := 0
			if homeSt != nil {
				lateCount += homeSt.EMLCounts[eml.Late]
			}
			if awaySt != nil {
				lateCount += awaySt.EMLCounts[eml.Late]
			}
			if lateCount < bestLateCount {
				bestLateCount = lateCount
				best = i
			}
		}
		if best >= 0 {
			commit(best, slot)
		}
	}

	// Phase 2: days-since, largest gap first, into the earliest remaining
	// non-late slot that creates no same-day conflict. When no direct
	// placement exists, falls back in order through a simple swap, a
	// multi-hop chain swap, then a rotation across several still-unplaced
	// matchups, before giving up on the matchup for this pass entirely.
	var nonLateSlots []schedule.Slot
	for _, sl := range bucketSlots {
		if !slotUsed[sl.ID] && sl.EML != eml.Late {
			nonLateSlots = append(nonLateSlots, sl)
		}
	}
	sort.Slice(nonLateSlots, func(i, j int) bool { return nonLateSlots[i].Start.Before(nonLateSlots[j].Start) })

	skipped := make([]bool, len(extracted))
	for {
		pending := make([]bool, len(extracted))
		for i := range pending {
			pending[i] = placed[i] || skipped[i]
		}
		idx := mostOverdueUnplaced(s, extracted, pending)
		if idx < 0 {
			break
		}
		slotIdx := findFeasibleSlot(nonLateSlots, extracted[idx].matchup, hasConflict)
		if slotIdx < 0 {
			if attemptSimpleSwap(s, week, extracted, idx, &nonLateSlots, hasConflict, commit) {
				continue
			}
			if attemptChainSwap(s, week, extracted, idx, &nonLateSlots, hasConflict, commit, maxChainDepth) {
				continue
			}
			if attemptRotation(s, week, extracted, placed, idx, &nonLateSlots, hasConflict, commit) {
				continue
			}
			skipped[idx] = true
			continue
		}
		slot := nonLateSlots[slotIdx]
		nonLateSlots = append(nonLateSlots[:slotIdx], nonLateSlots[slotIdx+1:]...)
		commit(idx, slot)
	}

	// Phase 3: residual — any still-empty slot is force-filled from
	// whatever remains, rest relaxed but same-day conflicts never relaxed.
	var remainingSlots []schedule.Slot
	for _, sl := range bucketSlots {
		if !slotUsed[sl.ID] {
			remainingSlots = append(remainingSlots, sl)
		}
	}
	sort.Slice(remainingSlots, func(i, j int) bool { return remainingSlots[i].Start.Before(remainingSlots[j].Start) })

	for _, slot := range remainingSlots {
		for i, p := range extracted {
			if placed[i] {
				continue
			}
			if hasConflict(p.matchup.Home, dateKey(slot)) || hasConflict(p.matchup.Away, dateKey(slot)) {
				continue
			}
			commit(i, slot)
			break
		}
	}
}

func dateKey(slot schedule.Slot) string { return slot.Start.Format("2006-01-02") }

func sameDayInSchedule(s *schedule.Schedule, team, date string) bool {
	for _, g := range s.Games {
		if g.Slot.Start.Format("2006-01-02") != date {
			continue
		}
		if g.Matchup.Home == team || g.Matchup.Away == team {
			return true
		}
	}
	return false
}

func mostOverdueUnplaced(s *schedule.Schedule, extracted []placement, placed []bool) int {
	best := -1
	bestDaysSince := -1
	for i, p := range extracted {
		if placed[i] {
			continue
		}
		homeSt := s.TeamState(p.matchup.Home)
		awaySt := s.TeamState(p.matchup.Away)
		ds := combinedDaysSince(homeSt, awaySt, p.slot)
		if ds > bestDaysSince {
			bestDaysSince = ds
			best = i
		}
	}
	return best
}

func combinedDaysSince(home, away *schedule.TeamState, slot schedule.Slot) int {
	h := neverPlayedSentinel
	if home != nil {
		if d := home.DaysSinceLastPlayed(slot.Start); d >= 0 {
			h = d
		}
	}
	a := neverPlayedSentinel
	if away != nil {
		if d := away.DaysSinceLastPlayed(slot.Start); d >= 0 {
			a = d
		}
	}
	if h > a {
		return h
	}
	return a
}

func findFeasibleSlot(slots []schedule.Slot, m schedule.Matchup, hasConflict func(team, date string) bool) int {
	for i, slot := range slots {
		date := dateKey(slot)
		if hasConflict(m.Home, date) || hasConflict(m.Away, date) {
			continue
		}
		return i
	}
	return -1
}

// attemptSimpleSwap tries to free up a slot for the given unplaced matchup
// by moving one already-placed (non-late) bucket game directly into an
// empty slot, vacating its own slot for want. Equivalent to attemptChainSwap
// with a one-hop limit.
func attemptSimpleSwap(s *schedule.Schedule, week int, extracted []placement, wantIdx int, freeSlots *[]schedule.Slot,
	hasConflict func(team, date string) bool, commit func(i int, slot schedule.Slot)) bool {
	return attemptChainSwap(s, week, extracted, wantIdx, freeSlots, hasConflict, commit, 1)
}

// attemptChainSwap generalizes the simple swap to a bounded chain: when the
// game blocking a usable slot can't move directly into an empty one, it
// recurses to free a slot for that game first, displacing a second (and, up
// to maxDepth, further) intermediate matchup before giving up. Only games
// still within this week's bucket are candidates for displacement — earlier
// weeks are already finalized and must stay untouched.
func attemptChainSwap(s *schedule.Schedule, week int, extracted []placement, wantIdx int, freeSlots *[]schedule.Slot,
	hasConflict func(team, date string) bool, commit func(i int, slot schedule.Slot), maxDepth int) bool {

	want := extracted[wantIdx].matchup
	moved := make(map[int]bool) // slot IDs already vacated this attempt

	var tryChain func(home, away string, depth int) (schedule.Slot, bool)
	tryChain = func(home, away string, depth int) (schedule.Slot, bool) {
		if depth <= 0 {
			return schedule.Slot{}, false
		}
		for _, g := range s.Games {
			if g.Slot.WeekIndex != week || g.Slot.EML == eml.Late || moved[g.Slot.ID] {
				continue
			}
			gDate := dateKey(g.Slot)
			if hasConflict(home, gDate) || hasConflict(away, gDate) {
				continue // want can't take g's slot regardless of where g goes
			}

			// Try moving g directly into an empty slot.
			for si, candidate := range *freeSlots {
				cDate := dateKey(candidate)
				if sameDayExcept(s, g.Matchup.Home, cDate, g.Slot.ID) || sameDayExcept(s, g.Matchup.Away, cDate, g.Slot.ID) {
					continue
				}
				oldSlot, ok := s.RemoveSlot(g.Slot.ID)
				if !ok {
					continue
				}
				s.AddGame(schedule.ScheduledGame{Matchup: oldSlot.Matchup, Slot: candidate})
				*freeSlots = append((*freeSlots)[:si], (*freeSlots)[si+1:]...)
				moved[oldSlot.Slot.ID] = true
				return oldSlot.Slot, true
			}

			// No empty slot works for g directly: recurse one hop deeper,
			// freeing a slot for g the same way.
			if relocSlot, ok := tryChain(g.Matchup.Home, g.Matchup.Away, depth-1); ok {
				oldSlot, removeOk := s.RemoveSlot(g.Slot.ID)
				if !removeOk {
					continue
				}
				s.AddGame(schedule.ScheduledGame{Matchup: oldSlot.Matchup, Slot: relocSlot})
				moved[oldSlot.Slot.ID] = true
				return oldSlot.Slot, true
			}
		}
		return schedule.Slot{}, false
	}

	slot, ok := tryChain(want.Home, want.Away, maxDepth)
	if !ok {
		return false
	}
	commit(wantIdx, slot)
	return true
}

// attemptRotation cycles several of the bucket's other still-unplaced
// matchups through the remaining non-late slots before retrying want: a
// chain swap can only ever terminate at a truly empty slot, so it cannot
// help a matchup that conflicts with every slot currently free. Placing a
// different unplaced matchup first — directly or via its own chain swap —
// changes which games occupy which slots, which can open up a slot for want
// that neither direct placement nor want's own chain search could reach.
// Bounded to a handful of participants so the search stays small.
func attemptRotation(s *schedule.Schedule, week int, extracted []placement, placed []bool, wantIdx int, freeSlots *[]schedule.Slot,
	hasConflict func(team, date string) bool, commit func(i int, slot schedule.Slot)) bool {

	tried := 0
	for i := range extracted {
		if i == wantIdx || placed[i] {
			continue
		}
		if tried >= maxRotationParticipants {
			break
		}
		tried++

		moved := false
		if si := findFeasibleSlot(*freeSlots, extracted[i].matchup, hasConflict); si >= 0 {
			slot := (*freeSlots)[si]
			*freeSlots = append((*freeSlots)[:si], (*freeSlots)[si+1:]...)
			commit(i, slot)
			moved = true
		} else if attemptChainSwap(s, week, extracted, i, freeSlots, hasConflict, commit, maxChainDepth) {
			moved = true
		}
		if !moved {
			continue
		}

		if si := findFeasibleSlot(*freeSlots, extracted[wantIdx].matchup, hasConflict); si >= 0 {
			slot := (*freeSlots)[si]
			*freeSlots = append((*freeSlots)[:si], (*freeSlots)[si+1:]...)
			commit(wantIdx, slot)
			return true
		}
		if attemptChainSwap(s, week, extracted, wantIdx, freeSlots, hasConflict, commit, maxChainDepth) {
			return true
		}
	}
	return false
}

func sameDayExcept(s *schedule.Schedule, team, date string, exceptSlotID int) bool {
	for _, g := range s.Games {
		if g.Slot.ID == exceptSlotID {
			continue
		}
		if g.Slot.Start.Format("2006-01-02") != date {
			continue
		}
		if g.Matchup.Home == team || g.Matchup.Away == team {
			return true
		}
	}
	return false
}
