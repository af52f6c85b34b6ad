package config

import (
	"testing"
	"time"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

const testConfigYAML = `
season:
  start_date: "2026-04-25"
  end_date: "2026-08-31"
  blackout_dates:
    - date: "2026-05-10"
      reason: "Mother's Day"
    - date: "2026-05-25"
      reason: "Memorial Day"

divisions:
  - name: div12
    teams: [Angels, Astros, Athletics, Mariners, Royals, Yankees, Red Sox, Blue Jays, Rays, Orioles, Twins, Guardians]
  - name: div8
    teams: [Cubs, Padres, Phillies, Pirates, Marlins, Reds, Brewers, Cardinals]

resources:
  - name: Moscariello Ballpark
    reservations:
      - date: "2026-05-15"
        times: ["17:45"]
        reason: "Varsity"
  - name: Symonds Field
  - name: Washington Park

time_slots:
  weekday: ["17:45"]
  saturday: ["12:30", "14:45", "17:00"]
  sunday: ["17:00"]
  holiday_dates:
    - "2026-05-25"

params:
  timezone: "America/Chicago"
  games_per_team: 14
  min_rest_days: 3
  max_gap_days: 12
  target_gap_days: 7
  early_end: "21:59"
  mid_end: "22:34"
  seed: 42
  block_size: 10
  block_recipe:
    div12: 6
    div8: 4
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("season dates", func(t *testing.T) {
		if cfg.Season.StartDate.Time != mustDate("2026-04-25") {
			t.Errorf("start date = %v, want 2026-04-25", cfg.Season.StartDate.Time)
		}
		if cfg.Season.EndDate.Time != mustDate("2026-08-31") {
			t.Errorf("end date = %v, want 2026-08-31", cfg.Season.EndDate.Time)
		}
	})

	t.Run("blackout dates", func(t *testing.T) {
		if len(cfg.Season.BlackoutDates) != 2 {
			t.Fatalf("blackout dates = %d, want 2", len(cfg.Season.BlackoutDates))
		}
		if cfg.Season.BlackoutDates[0].Reason != "Mother's Day" {
			t.Errorf("reason = %q, want %q", cfg.Season.BlackoutDates[0].Reason, "Mother's Day")
		}
	})

	t.Run("divisions", func(t *testing.T) {
		if len(cfg.Divisions) != 2 {
			t.Fatalf("divisions = %d, want 2", len(cfg.Divisions))
		}
		if len(cfg.Divisions[0].Teams) != 12 {
			t.Errorf("div12 teams = %d, want 12", len(cfg.Divisions[0].Teams))
		}
		if cfg.Divisions[0].Name != "div12" {
			t.Errorf("division name = %q, want %q", cfg.Divisions[0].Name, "div12")
		}
	})

	t.Run("resources", func(t *testing.T) {
		if len(cfg.Resources) != 3 {
			t.Fatalf("resources = %d, want 3", len(cfg.Resources))
		}
		if len(cfg.Resources[0].Reservations) != 1 {
			t.Fatalf("reservations = %d, want 1", len(cfg.Resources[0].Reservations))
		}
		r := cfg.Resources[0].Reservations[0]
		if r.Reason != "Varsity" {
			t.Errorf("reservation reason = %q, want %q", r.Reason, "Varsity")
		}
		if len(r.Times) != 1 || r.Times[0] != "17:45" {
			t.Errorf("reservation times = %v, want [17:45]", r.Times)
		}
	})

	t.Run("time slots", func(t *testing.T) {
		if len(cfg.TimeSlots.Weekday) != 1 || cfg.TimeSlots.Weekday[0] != "17:45" {
			t.Errorf("weekday slots = %v, want [17:45]", cfg.TimeSlots.Weekday)
		}
		if len(cfg.TimeSlots.Saturday) != 3 {
			t.Errorf("saturday slots = %d, want 3", len(cfg.TimeSlots.Saturday))
		}
		if len(cfg.TimeSlots.Sunday) != 1 || cfg.TimeSlots.Sunday[0] != "17:00" {
			t.Errorf("sunday slots = %v, want [17:00]", cfg.TimeSlots.Sunday)
		}
		if len(cfg.TimeSlots.HolidayDates) != 1 {
			t.Errorf("holiday dates = %d, want 1", len(cfg.TimeSlots.HolidayDates))
		}
	})

	t.Run("params", func(t *testing.T) {
		if cfg.Params.GamesPerTeam != 14 {
			t.Errorf("games per team = %d, want 14", cfg.Params.GamesPerTeam)
		}
		if cfg.Params.Timezone != "America/Chicago" {
			t.Errorf("timezone = %q, want America/Chicago", cfg.Params.Timezone)
		}
		if cfg.Params.BlockSize != 10 {
			t.Errorf("block size = %d, want 10", cfg.Params.BlockSize)
		}
		if cfg.Params.BlockRecipe["div12"] != 6 || cfg.Params.BlockRecipe["div8"] != 4 {
			t.Errorf("block recipe = %v, want div12:6 div8:4", cfg.Params.BlockRecipe)
		}
		if cfg.Params.Weights.Urgency != 3.0 {
			t.Errorf("default urgency weight = %v, want 3.0 (should apply when unset)", cfg.Params.Weights.Urgency)
		}
	})
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("end before start", func(t *testing.T) {
		yaml := `
season:
  start_date: "2026-06-01"
  end_date: "2026-05-01"
divisions:
  - name: A
    teams: [T1, T2]
resources:
  - name: F1
time_slots:
  weekday: ["17:45"]
params:
  games_per_team: 4
`
		_, err := LoadFromBytes([]byte(yaml))
		if err == nil {
			t.Error("expected error for end date before start date")
		}
	})

	t.Run("no divisions", func(t *testing.T) {
		yaml := `
season:
  start_date: "2026-04-25"
  end_date: "2026-05-31"
divisions: []
resources:
  - name: F1
time_slots:
  weekday: ["17:45"]
params:
  games_per_team: 4
`
		_, err := LoadFromBytes([]byte(yaml))
		if err == nil {
			t.Error("expected error for no divisions")
		}
	})

	t.Run("no resources", func(t *testing.T) {
		yaml := `
season:
  start_date: "2026-04-25"
  end_date: "2026-05-31"
divisions:
  - name: A
    teams: [T1, T2]
resources: []
time_slots:
  weekday: ["17:45"]
params:
  games_per_team: 4
`
		_, err := LoadFromBytes([]byte(yaml))
		if err == nil {
			t.Error("expected error for no resources")
		}
	})

	t.Run("duplicate team names", func(t *testing.T) {
		yaml := `
season:
  start_date: "2026-04-25"
  end_date: "2026-05-31"
divisions:
  - name: A
    teams: [Angels, Astros]
  - name: B
    teams: [Angels, Cubs]
resources:
  - name: F1
time_slots:
  weekday: ["17:45"]
params:
  games_per_team: 4
`
		_, err := LoadFromBytes([]byte(yaml))
		if err == nil {
			t.Error("expected error for duplicate team name")
		}
	})

	t.Run("bad timezone", func(t *testing.T) {
		yaml := `
season:
  start_date: "2026-04-25"
  end_date: "2026-05-31"
divisions:
  - name: A
    teams: [T1, T2]
resources:
  - name: F1
time_slots:
  weekday: ["17:45"]
params:
  timezone: "Not/AZone"
  games_per_team: 4
`
		_, err := LoadFromBytes([]byte(yaml))
		if err == nil {
			t.Error("expected error for invalid timezone")
		}
	})

	t.Run("zero games per team", func(t *testing.T) {
		yaml := `
season:
  start_date: "2026-04-25"
  end_date: "2026-05-31"
divisions:
  - name: A
    teams: [T1, T2]
resources:
  - name: F1
time_slots:
  weekday: ["17:45"]
`
		_, err := LoadFromBytes([]byte(yaml))
		if err == nil {
			t.Error("expected error for zero games_per_team")
		}
	})
}

func TestAllTeams(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	teams := cfg.AllTeams()
	if len(teams) != 20 {
		t.Errorf("AllTeams() = %d teams, want 20", len(teams))
	}
}

func TestTeamDivision(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.TeamDivision("Cubs"); got != "div8" {
		t.Errorf("TeamDivision(Cubs) = %q, want div8", got)
	}
	if got := cfg.TeamDivision("Nonexistent"); got != "" {
		t.Errorf("TeamDivision(Nonexistent) = %q, want empty", got)
	}
}
