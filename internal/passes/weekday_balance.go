package passes

// runWeekdayBalance counts each team's games per weekday; a weekday is
// "heavy" at >= WeekdayHeavyThreshold, "light" at <= WeekdayLightThreshold.
// For each team with a heavy weekday, it looks for a feasible swap between
// one of that team's games on the heavy day and any other game sharing the
// exact same start/end time-of-day (so only the date moves, never the
// venue window) whose weekday is light for that team. Commits swaps that
// reduce the team's heavy-day count.
func runWeekdayBalance(a Adapter) []SwapResult {
	var results []SwapResult

	heavyThreshold := a.WeekdayHeavyThreshold()
	lightThreshold := a.WeekdayLightThreshold()
	minRest := a.MinRestDays()

	games := a.Games()

	for _, team := range allTeams(games) {
		weekdayCounts := make(map[int]int)
		var teamGameIdxs []int
		for i, g := range games {
			if g.Home != team && g.Away != team {
				continue
			}
			weekdayCounts[int(g.Start.Weekday())]++
			teamGameIdxs = append(teamGameIdxs, i)
		}

		for _, i := range teamGameIdxs {
			wd := int(games[i].Start.Weekday())
			if weekdayCounts[wd] < heavyThreshold {
				continue
			}

			bestJ := -1
			for j := range games {
				if j == i || games[j].Home == team || games[j].Away == team {
					continue
				}
				if games[j].Start.Format("15:04") != games[i].Start.Format("15:04") {
					continue
				}
				if games[j].End.Format("15:04") != games[i].End.Format("15:04") {
					continue
				}
				candidateWd := int(games[j].Start.Weekday())
				if weekdayCounts[candidateWd] > lightThreshold {
					continue
				}
				if !feasibleSwap(games, i, j, minRest) {
					continue
				}
				bestJ = j
				break
			}

			if bestJ >= 0 {
				g1, g2 := a.Commit(i, bestJ)
				results = append(results, SwapResult{Game1: g1, Game2: g2, Improvement: 1.0})
				games = a.Games()
				break // recount from scratch next team; this team's counts are now stale
			}
		}
	}

	return results
}
