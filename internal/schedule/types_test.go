package schedule

import (
	"testing"
	"time"

	"github.com/leaguesched/rbrl2/internal/eml"
)

func typesSlot(id int, start time.Time) Slot {
	return Slot{
		ID:        id,
		Start:     start,
		End:       start.Add(time.Hour + 20*time.Minute),
		Resource:  "Field A",
		Weekday:   start.Weekday(),
		EML:       eml.Mid,
		WeekIndex: 1,
		Segment:   -1,
	}
}

func TestDaysSinceLastPlayedReturnsSentinelBeforeFirstGame(t *testing.T) {
	s := NewSchedule(map[string]string{"A": "d", "B": "d"})
	st := s.TeamState("A")
	if got := st.DaysSinceLastPlayed(time.Now()); got != -1 {
		t.Errorf("expected -1 sentinel before any game, got %d", got)
	}
}

func TestAddGameRebuildsTeamStateForBothTeams(t *testing.T) {
	s := NewSchedule(map[string]string{"A": "d", "B": "d"})
	day := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)

	s.AddGame(ScheduledGame{Matchup: Matchup{Division: "d", Home: "A", Away: "B"}, Slot: typesSlot(1, day)})

	home := s.TeamState("A")
	away := s.TeamState("B")
	if home.GamesPlayed != 1 || home.HomeCount != 1 || home.AwayCount != 0 {
		t.Errorf("unexpected home team state: %+v", home)
	}
	if away.GamesPlayed != 1 || away.AwayCount != 1 || away.HomeCount != 0 {
		t.Errorf("unexpected away team state: %+v", away)
	}
	if !home.HasPlayed || home.LastPlayed != day {
		t.Errorf("expected home.LastPlayed to be set to the game's slot start")
	}
}

func TestRemoveSlotReplaysStateWithoutTheRemovedGame(t *testing.T) {
	s := NewSchedule(map[string]string{"A": "d", "B": "d"})
	day := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)
	s.AddGame(ScheduledGame{Matchup: Matchup{Division: "d", Home: "A", Away: "B"}, Slot: typesSlot(1, day)})

	removed, ok := s.RemoveSlot(1)
	if !ok || removed.Slot.ID != 1 {
		t.Fatalf("expected to remove slot 1, got ok=%v removed=%+v", ok, removed)
	}

	st := s.TeamState("A")
	if st.HasPlayed || st.GamesPlayed != 0 {
		t.Errorf("expected team state reset after removing the team's only game, got %+v", st)
	}
}

func TestRemoveSlotReportsFalseForAnUnknownSlot(t *testing.T) {
	s := NewSchedule(map[string]string{"A": "d", "B": "d"})
	_, ok := s.RemoveSlot(999)
	if ok {
		t.Error("expected RemoveSlot to report false for a slot never committed")
	}
}

func TestSortChronologicalOrdersByStartThenSlotID(t *testing.T) {
	s := NewSchedule(map[string]string{"A": "d", "B": "d", "C": "d"})
	day1 := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)
	day2 := time.Date(2026, 5, 2, 17, 45, 0, 0, time.UTC)

	s.Games = append(s.Games,
		ScheduledGame{Matchup: Matchup{Home: "B", Away: "C"}, Slot: typesSlot(2, day2)},
		ScheduledGame{Matchup: Matchup{Home: "A", Away: "B"}, Slot: typesSlot(1, day1)},
	)
	s.SortChronological()

	if s.Games[0].Slot.ID != 1 || s.Games[1].Slot.ID != 2 {
		t.Errorf("expected chronological order [1 2], got [%d %d]", s.Games[0].Slot.ID, s.Games[1].Slot.ID)
	}
}

func TestTeamsReturnsNamesSortedAscending(t *testing.T) {
	s := NewSchedule(map[string]string{"Zebras": "d", "Aardvarks": "d", "Moles": "d"})
	teams := s.Teams()
	want := []string{"Aardvarks", "Moles", "Zebras"}
	for i, w := range want {
		if teams[i] != w {
			t.Errorf("Teams()[%d] = %q, want %q", i, teams[i], w)
		}
	}
}
