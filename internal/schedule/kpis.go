package schedule

import "github.com/leaguesched/rbrl2/internal/eml"

// TeamKpis summarizes one team's placement outcome.
type TeamKpis struct {
	Home    int
	Away    int
	Games   int
	AvgGap  float64
	MaxGap  int
}

// Kpis is the external reporting surface over a finished schedule.
type Kpis struct {
	GamesScheduled     int
	UnscheduledCount   int
	MaxGap             int
	AvgGap             float64
	EMLDistribution    map[eml.Category]int
	WeekdayDistribution map[string]int
	PerTeam            map[string]TeamKpis
}

// ComputeKpis derives the reporting summary from a finished schedule.
func ComputeKpis(s *Schedule) Kpis {
	k := Kpis{
		GamesScheduled:      len(s.Games),
		UnscheduledCount:    len(s.Unscheduled),
		EMLDistribution:     make(map[eml.Category]int),
		WeekdayDistribution: make(map[string]int),
		PerTeam:             make(map[string]TeamKpis),
	}

	byTeam := gamesByTeam(s)

	totalGap, gapCount, maxGap := 0, 0, 0

	for _, g := range s.Games {
		k.EMLDistribution[g.Slot.EML]++
		k.WeekdayDistribution[g.Slot.Weekday.String()]++
	}

	for _, team := range s.Teams() {
		games := byTeam[team]
		st := s.TeamState(team)

		teamMaxGap := 0
		teamTotalGap, teamGapCount := 0, 0
		for i := 1; i < len(games); i++ {
			gap := daysBetween(games[i-1].Slot.Start, games[i].Slot.Start)
			teamTotalGap += gap
			teamGapCount++
			totalGap += gap
			gapCount++
			if gap > teamMaxGap {
				teamMaxGap = gap
			}
			if gap > maxGap {
				maxGap = gap
			}
		}

		avg := 0.0
		if teamGapCount > 0 {
			avg = float64(teamTotalGap) / float64(teamGapCount)
		}

		k.PerTeam[team] = TeamKpis{
			Home:   st.HomeCount,
			Away:   st.AwayCount,
			Games:  st.GamesPlayed,
			AvgGap: avg,
			MaxGap: teamMaxGap,
		}
	}

	k.MaxGap = maxGap
	if gapCount > 0 {
		k.AvgGap = float64(totalGap) / float64(gapCount)
	}

	return k
}
