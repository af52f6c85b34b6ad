package schedule

import (
	"testing"
	"time"

	"github.com/leaguesched/rbrl2/internal/config"
	"github.com/leaguesched/rbrl2/internal/eml"
)

func mkSlot(id int, start time.Time, weekday time.Weekday, resource string) Slot {
	return Slot{
		ID:               id,
		Start:            start,
		End:              start.Add(time.Hour + 20*time.Minute),
		Resource:         resource,
		Weekday:          weekday,
		EML:              eml.Mid,
		WeekIndex:        1,
		Segment:          -1,
		AssignedDivision: anyDivision,
	}
}

func newTestSchedule() *Schedule {
	return NewSchedule(map[string]string{
		"Angels": "american", "Astros": "american",
		"Cubs": "national", "Padres": "national",
	})
}

func TestValidateSameDayDetectsDoubleBooking(t *testing.T) {
	s := newTestSchedule()
	day := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)

	s.AddGame(ScheduledGame{
		Matchup: Matchup{Division: "american", Home: "Angels", Away: "Astros"},
		Slot:    mkSlot(1, day, time.Friday, "Field A"),
	})
	s.AddGame(ScheduledGame{
		Matchup: Matchup{Division: "national", Home: "Cubs", Away: "Angels"},
		Slot:    mkSlot(2, day, time.Friday, "Field B"),
	})

	r := Validate(s, &config.Params{MinRestDays: 1, MaxGapDays: 30, GamesPerTeam: 2}, nil, 0, nil)
	if r.OK() {
		t.Fatal("expected a same-day invariant violation")
	}
}

func TestValidateRestDetectsShortGap(t *testing.T) {
	s := newTestSchedule()
	day1 := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)
	day2 := time.Date(2026, 5, 2, 17, 45, 0, 0, time.UTC)

	s.AddGame(ScheduledGame{
		Matchup: Matchup{Division: "american", Home: "Angels", Away: "Astros"},
		Slot:    mkSlot(1, day1, time.Friday, "Field A"),
	})
	s.AddGame(ScheduledGame{
		Matchup: Matchup{Division: "american", Home: "Astros", Away: "Angels"},
		Slot:    mkSlot(2, day2, time.Saturday, "Field A"),
	})

	r := Validate(s, &config.Params{MinRestDays: 3, MaxGapDays: 30, GamesPerTeam: 2}, nil, 0, nil)
	if r.OK() {
		t.Fatal("expected a min-rest invariant violation")
	}
}

func TestValidateQuotaWarnsWithoutFailing(t *testing.T) {
	s := newTestSchedule()
	day := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)
	s.AddGame(ScheduledGame{
		Matchup: Matchup{Division: "american", Home: "Angels", Away: "Astros"},
		Slot:    mkSlot(1, day, time.Friday, "Field A"),
	})

	r := Validate(s, &config.Params{MinRestDays: 1, MaxGapDays: 30, GamesPerTeam: 5}, nil, 0, nil)
	if !r.OK() {
		t.Fatalf("quota shortfall should warn, not error: %v", r.Errors)
	}
	if len(r.Warnings) == 0 {
		t.Fatal("expected a quota warning")
	}
}

func TestValidateSlotUniquenessDetectsReuse(t *testing.T) {
	s := newTestSchedule()
	day1 := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)
	slot := mkSlot(1, day1, time.Friday, "Field A")

	s.Games = append(s.Games,
		ScheduledGame{Matchup: Matchup{Division: "american", Home: "Angels", Away: "Astros"}, Slot: slot},
		ScheduledGame{Matchup: Matchup{Division: "national", Home: "Cubs", Away: "Padres"}, Slot: slot},
	)

	r := Validate(s, &config.Params{MinRestDays: 1, MaxGapDays: 30, GamesPerTeam: 2}, nil, 0, nil)
	if r.OK() {
		t.Fatal("expected a slot-uniqueness invariant violation")
	}
}

func TestValidateStrictBlocksDetectsMissingCoverage(t *testing.T) {
	s := newTestSchedule()
	day1 := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)
	day2 := time.Date(2026, 5, 8, 17, 45, 0, 0, time.UTC)

	slot1 := mkSlot(1, day1, time.Friday, "Field A")
	slot1.Segment = 0
	slot1.AssignedDivision = "american"
	slot2 := mkSlot(2, day2, time.Friday, "Field B")
	slot2.Segment = 0
	slot2.AssignedDivision = "national"

	// Both slots of the block are filled, but both with american teams —
	// national's required coverage in this block never happens.
	s.AddGame(ScheduledGame{
		Matchup: Matchup{Division: "american", Home: "Angels", Away: "Astros"},
		Slot:    slot1,
	})
	s.AddGame(ScheduledGame{
		Matchup: Matchup{Division: "american", Home: "Astros", Away: "Angels"},
		Slot:    slot2,
	})

	recipe := map[string]int{"american": 1, "national": 1}
	r := Validate(s, &config.Params{MinRestDays: 1, MaxGapDays: 30, GamesPerTeam: 2}, recipe, 2, []Slot{slot1, slot2})
	if r.OK() {
		t.Fatal("expected a strict-block-coverage invariant violation")
	}
}

func TestValidateStrictBlocksFlagsAPartiallyFilledBlockAsAViolation(t *testing.T) {
	s := newTestSchedule()
	day1 := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)

	slot1 := mkSlot(1, day1, time.Friday, "Field A")
	slot1.Segment = 0
	slot1.AssignedDivision = "american"
	slot2 := mkSlot(2, day1, time.Friday, "Field B")
	slot2.Segment = 0
	slot2.AssignedDivision = "national"

	// Only the american slot got filled; the national slot was never
	// scheduled. The segment is still structurally full (two slots, matching
	// the recipe), so this must be flagged rather than silently skipped.
	s.AddGame(ScheduledGame{
		Matchup: Matchup{Division: "american", Home: "Angels", Away: "Astros"},
		Slot:    slot1,
	})

	recipe := map[string]int{"american": 1, "national": 1}
	r := Validate(s, &config.Params{MinRestDays: 1, MaxGapDays: 30, GamesPerTeam: 2}, recipe, 2, []Slot{slot1, slot2})
	if r.OK() {
		t.Fatal("expected a strict-block-coverage invariant violation for the unfilled national slot")
	}
}
