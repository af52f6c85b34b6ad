// Package passes implements the constraint-repair passes that mutate an
// existing assignment to reduce gap-cap violations, smooth gap variance,
// and balance weekdays and home/away — each conforming to the same
// capability set (find violations, propose a swap, score it, execute) and
// sharing one feasibility predicate, per the scheduling core's design
// notes on collapsing the duplicated per-pass state-update logic into a
// single primitive.
package passes

import (
	"sort"
	"time"
)

// GameInfo is the read-only view a pass needs of one scheduled game.
type GameInfo struct {
	Home, Away string
	Start, End time.Time
	SlotID     int
}

// SwapResult records one committed swap for the caller's swap log.
type SwapResult struct {
	Game1       any
	Game2       any
	Improvement float64
}

// Adapter is the narrow interface a pass needs over the caller's schedule
// aggregate. It never exposes mutation except through Commit, which also
// performs the chronological-replay rebuild on the caller's side.
type Adapter interface {
	// Games returns the current schedule, sorted chronologically by
	// (start, slot id) — refreshed on every call so a pass sees the
	// effect of its own prior commits within the same run.
	Games() []GameInfo

	// Commit exchanges the Slot (date/time/venue) of Games()[i] and
	// Games()[j], leaving matchups (and therefore home/away) untouched,
	// and returns opaque handles to the two updated games for the
	// caller's swap log.
	Commit(i, j int) (g1, g2 any)

	// FlipHomeAway swaps which team is home/away for Games()[i], leaving
	// its date/venue untouched. Used only by home-away-balance, whose
	// rebalancing mechanism is a role flip rather than a date swap.
	FlipHomeAway(i int) (g any)

	HomeAwayCounts() map[string][2]int // team -> (home, away)

	MinRestDays() int
	MaxGapDays() int
	TargetGapDays() int
	WeekdayHeavyThreshold() int
	WeekdayLightThreshold() int
	HomeAwayBand() int
	MaxIterations() int
}

// Pass is the shared shape every constraint-repair pass conforms to.
type Pass interface {
	Run(a Adapter) []SwapResult
}

type passFunc func(a Adapter) []SwapResult

func (f passFunc) Run(a Adapter) []SwapResult { return f(a) }

var registry = map[string]Pass{
	"cap_fix":           passFunc(runCapFix),
	"smooth_gap":        passFunc(runSmoothGap),
	"weekday_balance":   passFunc(runWeekdayBalance),
	"home_away_balance": passFunc(runHomeAwayBalance),
}

// Get looks up a pass by name. Returns nil for an unregistered name — the
// caller's pipeline treats that as "skip", following the teacher's
// strategy.Get dispatch convention.
func Get(name string) Pass {
	return registry[name]
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

// teamIndices returns the indices into games (assumed chronological) where
// team plays, in chronological order.
func teamIndices(games []GameInfo, team string) []int {
	var idxs []int
	for i, g := range games {
		if g.Home == team || g.Away == team {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// simulateSwap returns a copy of games with i and j's Start/End/SlotID
// exchanged, without touching Home/Away — this is the only mutation a
// pass ever proposes.
func simulateSwap(games []GameInfo, i, j int) []GameInfo {
	out := make([]GameInfo, len(games))
	copy(out, games)
	out[i].Start, out[j].Start = out[j].Start, out[i].Start
	out[i].End, out[j].End = out[j].End, out[i].End
	out[i].SlotID, out[j].SlotID = out[j].SlotID, out[i].SlotID
	return out
}

// feasibleSwap is the shared predicate every pass uses: after
// hypothetically exchanging the slots of games[i] and games[j], every
// affected team keeps rest gap >= minRestDays at its new neighboring
// games, and no team ends up playing twice on the same date.
func feasibleSwap(games []GameInfo, i, j int, minRestDays int) bool {
	hyp := simulateSwap(games, i, j)
	sort.Slice(hyp, func(a, b int) bool {
		if !hyp[a].Start.Equal(hyp[b].Start) {
			return hyp[a].Start.Before(hyp[b].Start)
		}
		return hyp[a].SlotID < hyp[b].SlotID
	})

	affected := map[string]bool{
		games[i].Home: true, games[i].Away: true,
		games[j].Home: true, games[j].Away: true,
	}

	for team := range affected {
		idxs := teamIndices(hyp, team)
		dates := make(map[string]int)
		for _, idx := range idxs {
			dates[dateKey(hyp[idx].Start)]++
		}
		for _, c := range dates {
			if c > 1 {
				return false
			}
		}
		for k := 1; k < len(idxs); k++ {
			gap := daysBetween(hyp[idxs[k-1]].Start, hyp[idxs[k]].Start)
			if gap < minRestDays {
				return false
			}
		}
	}
	return true
}

// gapsForTeam returns the day-gaps between a team's consecutive games, in
// chronological order.
func gapsForTeam(games []GameInfo, team string) []int {
	idxs := teamIndices(games, team)
	gaps := make([]int, 0, len(idxs)-1)
	for k := 1; k < len(idxs); k++ {
		gaps = append(gaps, daysBetween(games[idxs[k-1]].Start, games[idxs[k]].Start))
	}
	return gaps
}
