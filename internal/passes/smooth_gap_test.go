package passes

import (
	"testing"
	"time"
)

func TestRunSmoothGapReducesDeviationFromTarget(t *testing.T) {
	d0 := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)
	d1 := d0.AddDate(0, 0, 3)
	mid := d0.AddDate(0, 0, 10)
	d2 := d0.AddDate(0, 0, 60)

	a := &fakeAdapter{
		games: []GameInfo{
			mkGame("A", "B", d0, 1),
			mkGame("A", "C", d1, 2),
			mkGame("X", "Y", mid, 3),
			mkGame("A", "D", d2, 4),
		},
		minRest: 1, maxGap: 100, targetGap: 7, maxIterations: 5,
	}

	before := gapsForTeam(a.Games(), "A")
	beforePenalty := squaredDeviationPenalty(a.Games(), "A", 7, 100)

	results := runSmoothGap(a)
	if len(results) == 0 {
		t.Fatalf("expected smooth_gap to commit at least one swap, gaps were %v", before)
	}

	afterPenalty := squaredDeviationPenalty(a.Games(), "A", 7, 100)
	if afterPenalty >= beforePenalty {
		t.Errorf("expected deviation penalty to shrink: before=%v after=%v", beforePenalty, afterPenalty)
	}
}

func TestRunSmoothGapStopsWhenNoTeamExceedsThreshold(t *testing.T) {
	d0 := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)
	d1 := d0.AddDate(0, 0, 7)
	d2 := d0.AddDate(0, 0, 14)

	a := &fakeAdapter{
		games: []GameInfo{
			mkGame("A", "B", d0, 1),
			mkGame("A", "C", d1, 2),
			mkGame("A", "D", d2, 3),
		},
		minRest: 1, maxGap: 100, targetGap: 7, maxIterations: 5,
	}

	results := runSmoothGap(a)
	if len(results) != 0 {
		t.Errorf("expected no swaps when every gap already matches target, got %v", results)
	}
}
