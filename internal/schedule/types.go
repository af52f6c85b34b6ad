// Package schedule implements the scheduling core: slot classification,
// matchup-to-slot assignment, constraint-repair passes, and the validators
// that check the result.
package schedule

import (
	"sort"
	"time"

	"github.com/leaguesched/rbrl2/internal/eml"
	"github.com/leaguesched/rbrl2/internal/matchup"
)

const anyDivision = "any"

// Slot is a timed venue reservation, classified for scheduling.
type Slot struct {
	ID       int
	Start    time.Time
	End      time.Time
	Resource string

	Weekday    time.Weekday
	EML        eml.Category
	WeekIndex  int

	Segment          int
	AssignedDivision string // normalized division tag, or anyDivision
}

// Matchup is a re-export of the matchup package's type for convenience
// within this package's public signatures.
type Matchup = matchup.Matchup

// ScheduledGame is a committed (matchup, slot) pair.
type ScheduledGame struct {
	Matchup Matchup
	Slot    Slot

	DaysSinceHome int // -1 if the home team had not played before
	DaysSinceAway int
}

// TeamState is rebuilt by chronological replay after every mutation; never
// patched incrementally.
type TeamState struct {
	Name string

	HasPlayed      bool
	LastPlayed     time.Time
	EMLCounts      map[eml.Category]int
	WeekdayCounts  map[time.Weekday]int
	HomeCount      int
	AwayCount      int
	GamesPlayed    int
	FirstSlotWeeks map[int]bool
}

func newTeamState(name string) *TeamState {
	return &TeamState{
		Name:           name,
		EMLCounts:      make(map[eml.Category]int),
		WeekdayCounts:  make(map[time.Weekday]int),
		FirstSlotWeeks: make(map[int]bool),
	}
}

// DaysSinceLastPlayed returns the day gap between the team's last game and
// t, or -1 (the "never played" sentinel) if it has not played yet.
func (ts *TeamState) DaysSinceLastPlayed(t time.Time) int {
	if !ts.HasPlayed {
		return -1
	}
	return daysBetween(ts.LastPlayed, t)
}

func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// Unscheduled records a matchup that the pipeline could not place.
type Unscheduled struct {
	Matchup Matchup
	Reason  string
}

// SwapLogEntry records one optimization-pass commit.
type SwapLogEntry struct {
	PassName    string
	Game1       ScheduledGame
	Game2       ScheduledGame
	Improvement float64
}

// Schedule is the aggregate that exclusively owns games, teams, and the
// derived per-team state.
type Schedule struct {
	Games       []ScheduledGame
	Unscheduled []Unscheduled
	Warnings    []string
	SwapLog     []SwapLogEntry

	teamDivision map[string]string
	teamOrder    []string
	teamState    map[string]*TeamState
}

// NewSchedule builds an empty schedule aggregate over the given teams
// (name -> normalized division tag).
func NewSchedule(teamDivision map[string]string) *Schedule {
	order := make([]string, 0, len(teamDivision))
	for name := range teamDivision {
		order = append(order, name)
	}
	sort.Strings(order)

	s := &Schedule{
		teamDivision: teamDivision,
		teamOrder:    order,
	}
	s.rebuildTeamState()
	return s
}

// Teams returns all team names, sorted ascending.
func (s *Schedule) Teams() []string {
	out := make([]string, len(s.teamOrder))
	copy(out, s.teamOrder)
	return out
}

// TeamState returns the current (always up to date) state for a team.
func (s *Schedule) TeamState(name string) *TeamState {
	return s.teamState[name]
}

// AddGame commits a game and replays team state; the replay re-sorts Games
// chronologically, so callers need not insert in order.
func (s *Schedule) AddGame(g ScheduledGame) {
	s.Games = append(s.Games, g)
	s.rebuildTeamState()
}

// RemoveSlot removes a previously committed game occupying the given slot
// ID, if any, and returns it.
func (s *Schedule) RemoveSlot(slotID int) (ScheduledGame, bool) {
	for i, g := range s.Games {
		if g.Slot.ID == slotID {
			removed := g
			s.Games = append(s.Games[:i], s.Games[i+1:]...)
			s.rebuildTeamState()
			return removed, true
		}
	}
	return ScheduledGame{}, false
}

// SortChronological sorts Games by slot start time then slot ID, the
// ordering every invariant and every cost computation assumes.
func (s *Schedule) SortChronological() {
	sort.Slice(s.Games, func(i, j int) bool {
		if !s.Games[i].Slot.Start.Equal(s.Games[j].Slot.Start) {
			return s.Games[i].Slot.Start.Before(s.Games[j].Slot.Start)
		}
		return s.Games[i].Slot.ID < s.Games[j].Slot.ID
	})
}

// rebuildTeamState is the single shared replay primitive: drop all derived
// state and recompute it from Games in chronological order. Every mutation
// path (AddGame, RemoveSlot, and every optimization pass's swap commit)
// goes through this instead of patching counters in place.
func (s *Schedule) rebuildTeamState() {
	s.SortChronological()

	state := make(map[string]*TeamState, len(s.teamOrder))
	for _, name := range s.teamOrder {
		state[name] = newTeamState(name)
	}

	for i := range s.Games {
		g := &s.Games[i]
		if home, away := state[g.Matchup.Home], state[g.Matchup.Away]; home != nil && away != nil {
			g.DaysSinceHome = home.DaysSinceLastPlayed(g.Slot.Start)
			g.DaysSinceAway = away.DaysSinceLastPlayed(g.Slot.Start)
		}
		applyGame(state, *g)
	}

	s.teamState = state
}

func applyGame(state map[string]*TeamState, g ScheduledGame) {
	home := state[g.Matchup.Home]
	away := state[g.Matchup.Away]
	if home == nil || away == nil {
		return
	}

	weekday := g.Slot.Weekday
	category := g.Slot.EML

	for _, st := range []*TeamState{home, away} {
		if st.WeekIndexIsFirstSlot(g.Slot) {
			st.FirstSlotWeeks[g.Slot.WeekIndex] = true
		}
		st.HasPlayed = true
		st.LastPlayed = g.Slot.Start
		st.EMLCounts[category]++
		st.WeekdayCounts[weekday]++
		st.GamesPlayed++
	}
	home.HomeCount++
	away.AwayCount++
}

// WeekIndexIsFirstSlot reports whether this is the first time this team's
// replay has encountered a game in slot.WeekIndex. Since applyGame runs in
// chronological order, the check is simply "have we not recorded this week
// yet" — the caller records it right after.
func (ts *TeamState) WeekIndexIsFirstSlot(slot Slot) bool {
	return !ts.FirstSlotWeeks[slot.WeekIndex]
}
