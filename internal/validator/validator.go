// Package validator re-derives schedule invariants directly from a saved
// Excel workbook, independent of the in-memory schedule.Validate pass. It
// exists to catch corruption introduced between generation and distribution
// (a hand edit, a bad save) rather than to duplicate generation-time checks.
package validator

import (
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/leaguesched/rbrl2/internal/config"
)

// Violation represents a constraint violation found during validation.
type Violation struct {
	Row     int
	Type    string // "error" or "warning"
	Message string
	Days    int // for rest violations: days between games (0 = not applicable)
}

// Validate reads a schedule Excel file and checks it against cfg.Params.
func Validate(cfg *config.Config, path string) ([]Violation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	games, err := readGames(f)
	if err != nil {
		return nil, fmt.Errorf("reading games: %w", err)
	}

	var violations []Violation
	violations = append(violations, checkSameDay(games)...)
	violations = append(violations, checkMinRest(cfg, games)...)
	violations = append(violations, checkGapBalance(cfg, games)...)
	violations = append(violations, checkQuota(cfg, games)...)
	violations = append(violations, checkGameCompleteness(cfg, games)...)

	return violations, nil
}

type parsedGame struct {
	Row      int
	Date     time.Time
	Time     string
	Resource string
	Home     string
	Away     string
}

func readGames(f *excelize.File) ([]parsedGame, error) {
	rows, err := f.GetRows("Master Schedule")
	if err != nil {
		return nil, fmt.Errorf("reading Master Schedule: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("Master Schedule is empty")
	}

	header := rows[0]
	type resourceCol struct {
		index int
		name  string
	}
	var resourceCols []resourceCol
	for i := 3; i < len(header); i++ {
		resourceCols = append(resourceCols, resourceCol{i, header[i]})
	}

	var games []parsedGame
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 3 || row[0] == "" {
			continue
		}

		date, err := time.Parse("01/02/2006", row[0])
		if err != nil {
			continue
		}
		timeStr := row[2]

		for _, rc := range resourceCols {
			if rc.index >= len(row) || row[rc.index] == "" {
				continue
			}
			cell := row[rc.index]
			away, home, ok := parseGameCell(cell)
			if !ok {
				continue // blackout/reservation text, not a game
			}
			games = append(games, parsedGame{
				Row:      i + 1,
				Date:     date,
				Time:     timeStr,
				Resource: rc.name,
				Home:     home,
				Away:     away,
			})
		}
	}

	return games, nil
}

// parseGameCell parses "Away @ Home" and returns (away, home, true).
// Returns ("", "", false) if the cell doesn't match the game format.
func parseGameCell(cell string) (away, home string, ok bool) {
	for i := 0; i < len(cell)-2; i++ {
		if cell[i] == ' ' && cell[i+1] == '@' && cell[i+2] == ' ' {
			return cell[:i], cell[i+3:], true
		}
	}
	return "", "", false
}

func checkSameDay(games []parsedGame) []Violation {
	type teamDay struct {
		team string
		date time.Time
	}
	rows := make(map[teamDay][]int)
	for _, g := range games {
		rows[teamDay{g.Home, g.Date}] = append(rows[teamDay{g.Home, g.Date}], g.Row)
		rows[teamDay{g.Away, g.Date}] = append(rows[teamDay{g.Away, g.Date}], g.Row)
	}

	var violations []Violation
	for td, r := range rows {
		if len(r) > 1 {
			violations = append(violations, Violation{
				Row:     r[len(r)-1],
				Type:    "error",
				Message: fmt.Sprintf("%s plays %d games on %s", td.team, len(r), td.date.Format("01/02")),
			})
		}
	}
	return violations
}

func checkMinRest(cfg *config.Config, games []parsedGame) []Violation {
	teamDates := buildTeamDates(games)
	var violations []Violation

	for team, dates := range teamDates {
		for i := 1; i < len(dates); i++ {
			days := int(dates[i].Sub(dates[i-1]).Hours() / 24)
			if days < cfg.Params.MinRestDays {
				violations = append(violations, Violation{
					Type: "error",
					Days: days,
					Message: fmt.Sprintf("%s has only %d rest days between %s and %s (min %d)",
						team, days, dates[i-1].Format("01/02"), dates[i].Format("01/02"), cfg.Params.MinRestDays),
				})
			}
		}
	}
	sort.Slice(violations, func(i, j int) bool { return violations[i].Days < violations[j].Days })
	return violations
}

func checkGapBalance(cfg *config.Config, games []parsedGame) []Violation {
	if cfg.Params.MaxGapDays <= 0 {
		return nil
	}
	teamDates := buildTeamDates(games)
	var violations []Violation

	for team, dates := range teamDates {
		for i := 1; i < len(dates); i++ {
			days := int(dates[i].Sub(dates[i-1]).Hours() / 24)
			if days > cfg.Params.MaxGapDays {
				violations = append(violations, Violation{
					Type: "warning",
					Days: days,
					Message: fmt.Sprintf("%s has a %d-day gap between %s and %s (max %d)",
						team, days, dates[i-1].Format("01/02"), dates[i].Format("01/02"), cfg.Params.MaxGapDays),
				})
			}
		}
	}
	return violations
}

func checkQuota(cfg *config.Config, games []parsedGame) []Violation {
	counts := make(map[string]int)
	for _, g := range games {
		counts[g.Home]++
		counts[g.Away]++
	}

	var violations []Violation
	for _, team := range cfg.AllTeams() {
		if counts[team] != cfg.Params.GamesPerTeam {
			violations = append(violations, Violation{
				Type:    "warning",
				Message: fmt.Sprintf("%s has %d games, want %d", team, counts[team], cfg.Params.GamesPerTeam),
			})
		}
	}
	return violations
}

func checkGameCompleteness(cfg *config.Config, games []parsedGame) []Violation {
	counts := make(map[string]int)
	for _, g := range games {
		counts[g.Home]++
		counts[g.Away]++
	}

	var violations []Violation
	for _, team := range cfg.AllTeams() {
		if counts[team] == 0 {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("%s has no games scheduled", team),
			})
		}
	}
	return violations
}

func buildTeamDates(games []parsedGame) map[string][]time.Time {
	m := make(map[string][]time.Time)
	for _, g := range games {
		m[g.Home] = append(m[g.Home], g.Date)
		m[g.Away] = append(m[g.Away], g.Date)
	}
	for team := range m {
		sortDates(m[team])
	}
	return m
}

func sortDates(dates []time.Time) {
	for i := 1; i < len(dates); i++ {
		for j := i; j > 0 && dates[j].Before(dates[j-1]); j-- {
			dates[j], dates[j-1] = dates[j-1], dates[j]
		}
	}
}
