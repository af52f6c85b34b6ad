package passes

// runCapFix finds, for each team, the first consecutive-game gap exceeding
// MaxGapDays, then searches intermediate games (games strictly between the
// two violating games, not involving the team) for a feasible swap that
// reduces it. Scoring and commit rule resolve the source's ambiguous
// "improvement" semantics: the best (maximum) improvement wins, and it
// commits only when that improvement is positive.
func runCapFix(a Adapter) []SwapResult {
	var results []SwapResult

	games := a.Games()
	maxGap := a.MaxGapDays()
	targetGap := a.TargetGapDays()
	minRest := a.MinRestDays()

	for _, team := range allTeams(games) {
		idxs := teamIndices(games, team)
		violationAt := -1
		for k := 1; k < len(idxs); k++ {
			gap := daysBetween(games[idxs[k-1]].Start, games[idxs[k]].Start)
			if gap > maxGap {
				violationAt = k
				break
			}
		}
		if violationAt < 0 {
			continue
		}

		g1idx := idxs[violationAt-1]
		g2idx := idxs[violationAt]

		bestJ := -1
		bestTarget := -1
		bestImprovement := 0.0
		for mid := g1idx + 1; mid < g2idx; mid++ {
			if games[mid].Home == team || games[mid].Away == team {
				continue
			}
			for _, target := range []int{g1idx, g2idx} {
				if !feasibleSwap(games, target, mid, minRest) {
					continue
				}
				improvement := capFixImprovement(games, target, mid, team, maxGap, targetGap)
				if improvement > bestImprovement {
					bestImprovement = improvement
					bestJ = mid
					bestTarget = target
				}
			}
		}

		if bestJ >= 0 && bestImprovement > 0 {
			g1, g2 := a.Commit(bestTarget, bestJ)
			results = append(results, SwapResult{Game1: g1, Game2: g2, Improvement: bestImprovement})
			games = a.Games()
		}
	}

	return results
}

// capFixImprovement scores a swap between games[i] (one end of the
// violating gap) and games[j] (a candidate mid-game): a heavy penalty for
// any post-swap gap still over maxGap, plus a bonus for shrinking gaps
// that were over targetGap.
func capFixImprovement(games []GameInfo, i, j int, team string, maxGap, targetGap int) float64 {
	before := overCapPenalty(games, team, maxGap, targetGap)
	hyp := simulateSwap(games, i, j)
	after := overCapPenalty(hyp, team, maxGap, targetGap)
	return before - after
}

func overCapPenalty(games []GameInfo, team string, maxGap, targetGap int) float64 {
	penalty := 0.0
	for _, gap := range gapsForTeam(games, team) {
		if gap > maxGap {
			penalty += float64(gap-maxGap) * 10
		}
		if gap > targetGap {
			penalty += float64(gap - targetGap)
		}
	}
	return penalty
}

func allTeams(games []GameInfo) []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range games {
		if !seen[g.Home] {
			seen[g.Home] = true
			out = append(out, g.Home)
		}
		if !seen[g.Away] {
			seen[g.Away] = true
			out = append(out, g.Away)
		}
	}
	return out
}
