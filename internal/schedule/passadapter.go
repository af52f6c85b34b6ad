package schedule

import (
	"github.com/leaguesched/rbrl2/internal/config"
	"github.com/leaguesched/rbrl2/internal/passes"
)

// passAdapter is the schedule package's implementation of passes.Adapter:
// it exposes a read-only GameInfo view and funnels every mutation back
// through Schedule.rebuildTeamState, the shared chronological-replay
// primitive every pass relies on instead of patching counters itself.
type passAdapter struct {
	s *Schedule
	p *config.Params
}

func newPassAdapter(s *Schedule, p *config.Params) *passAdapter {
	return &passAdapter{s: s, p: p}
}

func (a *passAdapter) Games() []passes.GameInfo {
	out := make([]passes.GameInfo, len(a.s.Games))
	for i, g := range a.s.Games {
		out[i] = passes.GameInfo{
			Home:   g.Matchup.Home,
			Away:   g.Matchup.Away,
			Start:  g.Slot.Start,
			End:    g.Slot.End,
			SlotID: g.Slot.ID,
		}
	}
	return out
}

func (a *passAdapter) Commit(i, j int) (g1, g2 any) {
	a.s.Games[i].Slot, a.s.Games[j].Slot = a.s.Games[j].Slot, a.s.Games[i].Slot
	a.s.rebuildTeamState()
	return findGameByMatchup(a.s, a.s.Games[i].Matchup), findGameByMatchup(a.s, a.s.Games[j].Matchup)
}

func (a *passAdapter) FlipHomeAway(i int) any {
	g := a.s.Games[i]
	a.s.Games[i].Matchup.Home, a.s.Games[i].Matchup.Away = g.Matchup.Away, g.Matchup.Home
	a.s.rebuildTeamState()
	return findGameByMatchup(a.s, a.s.Games[i].Matchup)
}

func (a *passAdapter) HomeAwayCounts() map[string][2]int {
	out := make(map[string][2]int, len(a.s.teamOrder))
	for _, name := range a.s.teamOrder {
		st := a.s.TeamState(name)
		out[name] = [2]int{st.HomeCount, st.AwayCount}
	}
	return out
}

func (a *passAdapter) MinRestDays() int            { return a.p.MinRestDays }
func (a *passAdapter) MaxGapDays() int             { return a.p.MaxGapDays }
func (a *passAdapter) TargetGapDays() int          { return a.p.TargetGapDays }
func (a *passAdapter) WeekdayHeavyThreshold() int  { return a.p.WeekdayHeavyThreshold }
func (a *passAdapter) WeekdayLightThreshold() int  { return a.p.WeekdayLightThreshold }
func (a *passAdapter) HomeAwayBand() int           { return a.p.HomeAwayBand }
func (a *passAdapter) MaxIterations() int          { return a.p.MaxIterations }

func findGameByMatchup(s *Schedule, m Matchup) ScheduledGame {
	for _, g := range s.Games {
		if g.Matchup == m {
			return g
		}
	}
	return ScheduledGame{}
}
