package schedule

import (
	"testing"
	"time"

	"github.com/leaguesched/rbrl2/internal/eml"
)

func strictSlot(id, segment int, div string, start time.Time) Slot {
	return Slot{
		ID:               id,
		Start:            start,
		End:              start.Add(time.Hour + 20*time.Minute),
		Resource:         "Field A",
		Weekday:          start.Weekday(),
		EML:              eml.Mid,
		WeekIndex:        1,
		Segment:          segment,
		AssignedDivision: div,
	}
}

func fourTeamSchedule() *Schedule {
	return NewSchedule(map[string]string{"A": "div1", "B": "div1", "C": "div1", "D": "div1"})
}

func TestStrictFillPlacesOneRoundPerFullRecipeSegment(t *testing.T) {
	s := fourTeamSchedule()
	base := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)

	slots := []Slot{
		strictSlot(1, 0, "div1", base),
		strictSlot(2, 0, "div1", base.Add(2*time.Hour)),
		strictSlot(3, 1, "div1", base.AddDate(0, 0, 7)),
		strictSlot(4, 1, "div1", base.AddDate(0, 0, 7).Add(2*time.Hour)),
	}

	recipe := map[string]int{"div1": 2}
	if err := StrictFill(s, slots, recipe, 2, 4); err != nil {
		t.Fatalf("StrictFill error: %v", err)
	}

	if len(s.Games) != 4 {
		t.Fatalf("expected 4 games (2 segments x 2 pairs), got %d", len(s.Games))
	}
	for _, team := range s.Teams() {
		if st := s.TeamState(team); st.GamesPlayed != 2 {
			t.Errorf("expected %s to play once per segment (2 total), got %d", team, st.GamesPlayed)
		}
	}
}

func TestStrictFillSkipsAPartialSegment(t *testing.T) {
	s := fourTeamSchedule()
	base := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)

	slots := []Slot{
		strictSlot(1, 0, "div1", base),
	}

	recipe := map[string]int{"div1": 2}
	if err := StrictFill(s, slots, recipe, 2, 4); err != nil {
		t.Fatalf("StrictFill error: %v", err)
	}
	if len(s.Games) != 0 {
		t.Errorf("expected the partial segment to be left untouched, got %d games", len(s.Games))
	}
}

func TestStrictFillSkipsASegmentWhoseDivisionCompositionDoesNotMatch(t *testing.T) {
	s := fourTeamSchedule()
	base := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)

	slots := []Slot{
		strictSlot(1, 0, "div1", base),
		strictSlot(2, 0, "div2", base.Add(2*time.Hour)), // wrong division stamp
	}

	recipe := map[string]int{"div1": 2}
	if err := StrictFill(s, slots, recipe, 2, 4); err != nil {
		t.Fatalf("StrictFill error: %v", err)
	}
	if len(s.Games) != 0 {
		t.Errorf("expected a recipe-mismatched segment to be left untouched, got %d games", len(s.Games))
	}
}

func TestStrictFillStopsOnceQuotaWouldBeExceeded(t *testing.T) {
	s := fourTeamSchedule()
	base := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)

	slots := []Slot{
		strictSlot(1, 0, "div1", base),
		strictSlot(2, 0, "div1", base.Add(2*time.Hour)),
		strictSlot(3, 1, "div1", base.AddDate(0, 0, 7)),
		strictSlot(4, 1, "div1", base.AddDate(0, 0, 7).Add(2*time.Hour)),
	}

	recipe := map[string]int{"div1": 2}
	if err := StrictFill(s, slots, recipe, 2, 1); err != nil {
		t.Fatalf("StrictFill error: %v", err)
	}
	if len(s.Games) != 2 {
		t.Fatalf("expected only the first segment to be filled before quota=1 blocks the second, got %d games", len(s.Games))
	}
}
