package passes

import "math"

const smoothGapThreshold = 2.0 // mean |gap-target| days above which a team is considered for smoothing

// runSmoothGap iterates up to MaxIterations rounds. Each round it selects
// the team with the largest mean |gap-target| (above smoothGapThreshold),
// searches for a feasible swap involving that team's worst gap that
// reduces its squared deviation from target (penalizing heavily any
// resulting gap above MaxGapDays), and commits the best positive proposal.
// Stops early once no team qualifies or no improving swap is found.
func runSmoothGap(a Adapter) []SwapResult {
	var results []SwapResult

	targetGap := a.TargetGapDays()
	maxGap := a.MaxGapDays()
	minRest := a.MinRestDays()

	for iter := 0; iter < a.MaxIterations(); iter++ {
		games := a.Games()

		team, worstIdx, deviation := worstTeamGap(games, targetGap)
		if team == "" || deviation <= smoothGapThreshold {
			break
		}

		idxs := teamIndices(games, team)
		gIdx := idxs[worstIdx]

		bestJ := -1
		bestImprovement := 0.0
		for j := range games {
			if j == gIdx || games[j].Home == team || games[j].Away == team {
				continue
			}
			if !feasibleSwap(games, gIdx, j, minRest) {
				continue
			}
			improvement := smoothGapImprovement(games, gIdx, j, team, targetGap, maxGap)
			if improvement > bestImprovement {
				bestImprovement = improvement
				bestJ = j
			}
		}

		if bestJ < 0 {
			break
		}

		g1, g2 := a.Commit(gIdx, bestJ)
		results = append(results, SwapResult{Game1: g1, Game2: g2, Improvement: bestImprovement})
	}

	return results
}

// worstTeamGap returns the team with the largest mean |gap-target|
// deviation, the index (within that team's own gap list) of its single
// worst gap, and the deviation value.
func worstTeamGap(games []GameInfo, targetGap int) (team string, worstGapIdx int, deviation float64) {
	bestDeviation := -1.0
	for _, t := range allTeams(games) {
		gaps := gapsForTeam(games, t)
		if len(gaps) == 0 {
			continue
		}
		total := 0.0
		localWorstIdx, localWorst := 0, -1.0
		for i, g := range gaps {
			d := math.Abs(float64(g - targetGap))
			total += d
			if d > localWorst {
				localWorst = d
				localWorstIdx = i
			}
		}
		mean := total / float64(len(gaps))
		if mean > bestDeviation {
			bestDeviation = mean
			team = t
			worstGapIdx = localWorstIdx
		}
	}
	return team, worstGapIdx, bestDeviation
}

func smoothGapImprovement(games []GameInfo, i, j int, team string, targetGap, maxGap int) float64 {
	before := squaredDeviationPenalty(games, team, targetGap, maxGap)
	hyp := simulateSwap(games, i, j)
	after := squaredDeviationPenalty(hyp, team, targetGap, maxGap)
	return before - after
}

func squaredDeviationPenalty(games []GameInfo, team string, targetGap, maxGap int) float64 {
	penalty := 0.0
	for _, gap := range gapsForTeam(games, team) {
		d := float64(gap - targetGap)
		penalty += d * d
		if gap > maxGap {
			penalty += float64(gap-maxGap) * 100
		}
	}
	return penalty
}
