package schedule

import (
	"testing"
	"time"

	"github.com/leaguesched/rbrl2/internal/config"
)

func pipelineDate(y, m, d int) config.Date {
	return config.Date{Time: time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)}
}

func pipelineTestConfig() *config.Config {
	return &config.Config{
		Season: config.Season{
			StartDate: pipelineDate(2026, 4, 25),
			EndDate:   pipelineDate(2026, 6, 28),
		},
		Divisions: []config.Division{
			{Name: "American", Teams: []string{"Angels", "Astros", "Orioles", "Mariners"}},
			{Name: "National", Teams: []string{"Cubs", "Padres", "Phillies", "Pirates"}},
		},
		Resources: []config.Resource{
			{Name: "Field A"},
			{Name: "Field B"},
		},
		TimeSlots: config.TimeSlots{
			Weekday:  []string{"17:45"},
			Saturday: []string{"10:00", "12:30", "14:45", "17:00"},
			Sunday:   []string{"13:00", "17:00"},
		},
		Params: config.Params{
			Timezone:      "America/Chicago",
			GamesPerTeam:  10,
			EarlyEnd:      "21:59",
			MidEnd:        "22:34",
			MinRestDays:   1,
			MaxGapDays:    21,
			TargetGapDays: 7,
			Seed:          42,
		},
	}
}

func TestRunProducesAFeasibleSchedule(t *testing.T) {
	cfg := pipelineTestConfig()
	raw := GenerateRawSlots(cfg)
	result, err := Run(cfg, raw)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if !result.Validation.OK() {
		t.Fatalf("invariant violations: %v", result.Validation.Errors)
	}

	for _, team := range cfg.AllTeams() {
		st := result.Schedule.TeamState(team)
		if st == nil {
			t.Fatalf("no team state for %s", team)
		}
	}

	if result.Kpis.GamesScheduled == 0 {
		t.Fatal("expected some games scheduled")
	}
}

func TestRunIsDeterministicForAFixedSeed(t *testing.T) {
	cfg := pipelineTestConfig()
	raw1 := GenerateRawSlots(cfg)
	r1, err := Run(cfg, raw1)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	raw2 := GenerateRawSlots(cfg)
	r2, err := Run(cfg, raw2)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(r1.Schedule.Games) != len(r2.Schedule.Games) {
		t.Fatalf("game counts differ across runs: %d vs %d", len(r1.Schedule.Games), len(r2.Schedule.Games))
	}
	for i := range r1.Schedule.Games {
		g1, g2 := r1.Schedule.Games[i], r2.Schedule.Games[i]
		if g1.Matchup != g2.Matchup || g1.Slot.ID != g2.Slot.ID {
			t.Fatalf("game %d differs across runs: %+v vs %+v", i, g1, g2)
		}
	}
}

func TestRunRespectsGamesPerTeamQuota(t *testing.T) {
	cfg := pipelineTestConfig()
	raw := GenerateRawSlots(cfg)
	result, err := Run(cfg, raw)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	for _, team := range cfg.AllTeams() {
		st := result.Schedule.TeamState(team)
		if st.GamesPlayed > cfg.Params.GamesPerTeam {
			t.Errorf("%s played %d games, quota is %d", team, st.GamesPlayed, cfg.Params.GamesPerTeam)
		}
	}
}

func TestRunHonorsBlackoutDates(t *testing.T) {
	cfg := pipelineTestConfig()
	cfg.Season.BlackoutDates = []config.BlackoutDate{
		{Date: pipelineDate(2026, 5, 10), Reason: "Mother's Day"},
	}
	raw := GenerateRawSlots(cfg)
	result, err := Run(cfg, raw)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	for _, g := range result.Schedule.Games {
		if g.Slot.Start.Year() == 2026 && g.Slot.Start.Month() == 5 && g.Slot.Start.Day() == 10 {
			t.Errorf("game scheduled on blacked-out date: %+v", g)
		}
	}
}
