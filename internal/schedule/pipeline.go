package schedule

import (
	"math/rand"
	"time"

	"github.com/leaguesched/rbrl2/internal/config"
	"github.com/leaguesched/rbrl2/internal/divtag"
	"github.com/leaguesched/rbrl2/internal/eml"
	"github.com/leaguesched/rbrl2/internal/matchup"
	"github.com/leaguesched/rbrl2/internal/passes"
	"github.com/leaguesched/rbrl2/internal/schederr"
)

const defaultGameDuration = time.Hour + 20*time.Minute

// Result is the outcome of running the full pipeline.
type Result struct {
	Schedule   *Schedule
	Kpis       Kpis
	Validation *ValidationResult
	BlockSize  int
	Recipe     map[string]int
	Slots      []Slot
}

// Run executes the whole pipeline: generate -> classify_slots ->
// build_matchups -> segment_blocks -> strict_fill -> greedy_fill_remaining
// -> force_fill_residual -> optimization_passes -> validate.
func Run(cfg *config.Config, raw []RawSlot) (*Result, error) {
	classifier, err := eml.NewClassifier(cfg.Params.Timezone, cfg.Params.EarlyEnd, cfg.Params.MidEnd)
	if err != nil {
		return nil, err
	}

	slots, err := ClassifySlots(raw, classifier, defaultGameDuration)
	if err != nil {
		return nil, err
	}

	var configWarnings []string

	teamDivision := make(map[string]string)
	divisionTeams := make(map[string][]string)
	var divisionOrder []string
	for _, div := range cfg.Divisions {
		tag := divtag.Normalize(div.Name)
		if tag == divtag.Unknown {
			configWarnings = append(configWarnings, schederr.NewConfigError(schederr.UnknownDivisionTag,
				"division %q has no recognizable size tag; its teams are grouped under the %q tag", div.Name, divtag.Unknown).Error())
		}
		if _, ok := divisionTeams[tag]; !ok {
			divisionOrder = append(divisionOrder, tag)
		}
		divisionTeams[tag] = append(divisionTeams[tag], div.Teams...)
		for _, team := range div.Teams {
			teamDivision[team] = tag
		}
	}

	pool, err := matchup.Generate(matchup.GenerateOptions{
		DivisionTeams: divisionTeams,
		DivisionOrder: divisionOrder,
		CrossDivision: !cfg.Params.NoInterdivision && len(divisionOrder) > 1,
		GamesPerTeam:  cfg.Params.GamesPerTeam,
		Seed:          cfg.Params.Seed,
	})
	if err != nil {
		return nil, err
	}

	blockSize := cfg.Params.BlockSize
	if blockSize <= 0 {
		blockSize = DefaultBlockSize(len(teamDivision))
	}

	recipe := cfg.Params.BlockRecipe
	if len(recipe) == 0 {
		recipe = deriveRecipe(divisionTeams, divisionOrder, blockSize)
	}
	if recipeTotal := sumRecipe(recipe); recipeTotal != 0 && recipeTotal != blockSize {
		configWarnings = append(configWarnings, schederr.NewConfigError(schederr.RecipeSumMismatch,
			"block recipe sums to %d, rescaling to match block size %d", recipeTotal, blockSize).Error())
	}
	recipe = ScaleRecipe(recipe, blockSize)

	slots = SegmentSlots(slots, blockSize, recipe)

	sched := NewSchedule(teamDivision)
	sched.Warnings = append(sched.Warnings, configWarnings...)

	if err := StrictFill(sched, slots, recipe, blockSize, cfg.Params.GamesPerTeam); err != nil {
		return nil, err
	}

	matchupPool := NewPool(pool)
	for _, g := range sched.Games {
		if !matchupPool.Commit(g.Matchup) {
			return nil, schederr.NewInvariantViolation("strict_fill_pool_sync",
				"matchup %s vs %s (round %d) committed by strict fill has no matching entry in the matchup pool",
				g.Matchup.Home, g.Matchup.Away, g.Matchup.RoundIndex)
		}
	}

	rng := rand.New(rand.NewSource(cfg.Params.Seed))

	GreedyFill(sched, slots, matchupPool, &cfg.Params, rng)
	ForceFillResidual(sched, slots, matchupPool, &cfg.Params)

	runOptimizationPasses(sched, &cfg.Params)

	validation := Validate(sched, &cfg.Params, recipe, blockSize, slots)
	validation.Warnings = append(validation.Warnings, sched.Warnings...)

	return &Result{
		Schedule:   sched,
		Kpis:       ComputeKpis(sched),
		Validation: validation,
		BlockSize:  blockSize,
		Recipe:     recipe,
		Slots:      slots,
	}, nil
}

func sumRecipe(recipe map[string]int) int {
	total := 0
	for _, c := range recipe {
		total += c
	}
	return total
}

// deriveRecipe builds a default block recipe proportional to each
// division's team count, scaled to blockSize by ScaleRecipe.
func deriveRecipe(divisionTeams map[string][]string, divisionOrder []string, blockSize int) map[string]int {
	recipe := make(map[string]int, len(divisionOrder))
	for _, div := range divisionOrder {
		recipe[div] = len(divisionTeams[div]) / 2
	}
	return recipe
}

// runOptimizationPasses runs each constraint-repair pass in turn: cap-fix,
// smooth-gap, weekday-balance, home-away-balance. Each operates through the
// shared passes.Adapter over *Schedule.
func runOptimizationPasses(s *Schedule, p *config.Params) {
	adapter := newPassAdapter(s, p)
	for _, name := range []string{"cap_fix", "smooth_gap", "weekday_balance", "home_away_balance"} {
		pass := passes.Get(name)
		if pass == nil {
			continue
		}
		log := pass.Run(adapter)
		s.SwapLog = append(s.SwapLog, convertSwapLog(name, log)...)
	}
}

func convertSwapLog(name string, entries []passes.SwapResult) []SwapLogEntry {
	out := make([]SwapLogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, SwapLogEntry{
			PassName:    name,
			Game1:       e.Game1.(ScheduledGame),
			Game2:       e.Game2.(ScheduledGame),
			Improvement: e.Improvement,
		})
	}
	return out
}
