package validator

import (
	"testing"
	"time"

	"github.com/leaguesched/rbrl2/internal/config"
	"github.com/leaguesched/rbrl2/internal/excel"
	"github.com/leaguesched/rbrl2/internal/schedule"
)

func date(y, m, d int) config.Date {
	return config.Date{Time: time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)}
}

func fullTestConfig() *config.Config {
	return &config.Config{
		Season: config.Season{
			StartDate: date(2026, 4, 25),
			EndDate:   date(2026, 5, 31),
			BlackoutDates: []config.BlackoutDate{
				{Date: date(2026, 5, 10), Reason: "Mother's Day"},
				{Date: date(2026, 5, 23), Reason: "Memorial Day Weekend"},
				{Date: date(2026, 5, 24), Reason: "Memorial Day Weekend"},
				{Date: date(2026, 5, 25), Reason: "Memorial Day"},
			},
		},
		Divisions: []config.Division{
			{Name: "American", Teams: []string{"Angels", "Astros", "Orioles", "Mariners"}},
			{Name: "National", Teams: []string{"Cubs", "Padres", "Phillies", "Pirates"}},
		},
		Resources: []config.Resource{
			{Name: "Moscariello Ballpark"},
			{Name: "Symonds Field"},
			{Name: "Washington Park"},
		},
		TimeSlots: config.TimeSlots{
			Weekday:  []string{"17:45"},
			Saturday: []string{"12:30", "14:45", "17:00"},
			Sunday:   []string{"17:00"},
			HolidayDates: []config.Date{
				date(2026, 5, 25),
			},
		},
		Params: config.Params{
			Timezone:      "America/Chicago",
			GamesPerTeam:  6,
			EarlyEnd:      "21:59",
			MidEnd:        "22:34",
			MinRestDays:   1,
			MaxGapDays:    20,
			TargetGapDays: 7,
			Seed:          11,
		},
	}
}

func buildWorkbook(t *testing.T, cfg *config.Config) string {
	t.Helper()

	raw := schedule.GenerateRawSlots(cfg)
	result, err := schedule.Run(cfg, raw)
	if err != nil {
		t.Fatalf("schedule.Run: %v", err)
	}
	blackouts := schedule.GenerateBlackoutSlots(cfg)

	f, err := excel.Generate(cfg, result, blackouts)
	if err != nil {
		t.Fatalf("excel.Generate: %v", err)
	}

	path := t.TempDir() + "/schedule.xlsx"
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestValidateGeneratedSchedule(t *testing.T) {
	cfg := fullTestConfig()
	path := buildWorkbook(t, cfg)

	violations, err := Validate(cfg, path)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	t.Run("no invariant errors", func(t *testing.T) {
		for _, v := range violations {
			if v.Type == "error" {
				t.Errorf("invariant violation: %s", v.Message)
			}
		}
	})

	t.Run("reports any soft warnings without failing", func(t *testing.T) {
		warnings := 0
		for _, v := range violations {
			if v.Type == "warning" {
				warnings++
				t.Logf("WARNING: %s", v.Message)
			}
		}
		t.Logf("Total warnings: %d", warnings)
	})
}

func TestParseGameCell(t *testing.T) {
	cases := []struct {
		cell     string
		wantAway string
		wantHome string
		wantOK   bool
	}{
		{"Angels @ Astros", "Angels", "Astros", true},
		{"Mother's Day", "", "", false},
		{"", "", "", false},
		{"Reserved", "", "", false},
	}
	for _, c := range cases {
		away, home, ok := parseGameCell(c.cell)
		if ok != c.wantOK || away != c.wantAway || home != c.wantHome {
			t.Errorf("parseGameCell(%q) = (%q, %q, %v), want (%q, %q, %v)",
				c.cell, away, home, ok, c.wantAway, c.wantHome, c.wantOK)
		}
	}
}

func TestCheckSameDayCatchesDoubleBooking(t *testing.T) {
	d := date(2026, 5, 1).Time
	games := []parsedGame{
		{Row: 2, Date: d, Home: "Angels", Away: "Astros"},
		{Row: 3, Date: d, Home: "Angels", Away: "Cubs"},
	}
	violations := checkSameDay(games)
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(violations))
	}
	if violations[0].Type != "error" {
		t.Errorf("expected error severity, got %s", violations[0].Type)
	}
}

func TestCheckMinRestFlagsShortGap(t *testing.T) {
	cfg := fullTestConfig()
	cfg.Params.MinRestDays = 3

	games := []parsedGame{
		{Date: date(2026, 5, 1).Time, Home: "Angels", Away: "Astros"},
		{Date: date(2026, 5, 2).Time, Home: "Angels", Away: "Cubs"},
	}
	violations := checkMinRest(cfg, games)
	if len(violations) == 0 {
		t.Fatal("expected a min-rest violation")
	}
	if violations[0].Days != 1 {
		t.Errorf("Days = %d, want 1", violations[0].Days)
	}
}

func TestCheckQuotaFlagsUnderPlay(t *testing.T) {
	cfg := fullTestConfig()
	cfg.Params.GamesPerTeam = 2

	games := []parsedGame{
		{Date: date(2026, 5, 1).Time, Home: "Angels", Away: "Astros"},
	}
	violations := checkQuota(cfg, games)
	if len(violations) == 0 {
		t.Fatal("expected quota violations for teams with 0 or 1 games")
	}
	for _, v := range violations {
		if v.Type != "warning" {
			t.Errorf("quota mismatch should be a warning, got %s", v.Type)
		}
	}
}

func TestCheckGameCompletenessFlagsIdleTeam(t *testing.T) {
	cfg := fullTestConfig()
	games := []parsedGame{
		{Date: date(2026, 5, 1).Time, Home: "Angels", Away: "Astros"},
	}
	violations := checkGameCompleteness(cfg, games)
	found := false
	for _, v := range violations {
		if v.Message == "Pirates has no games scheduled" {
			found = true
		}
	}
	if !found {
		t.Error("expected a completeness violation for a team with no games")
	}
}
