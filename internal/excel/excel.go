// Package excel renders a finished schedule into an Excel workbook: a
// master grid of date x resource, one sheet per team derived from it with a
// dynamic-array formula, a KPI summary sheet, and a constraint-repair swap
// log.
package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/leaguesched/rbrl2/internal/config"
	"github.com/leaguesched/rbrl2/internal/schedule"
)

// Generate creates an Excel workbook with the master schedule, per-team
// sheets, a KPI summary, and a swap log.
func Generate(cfg *config.Config, result *schedule.Result, blackouts []schedule.BlackoutSlot) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetDefaultFont("Arial")

	lastMasterRow, err := writeMasterSheet(f, cfg, result, blackouts)
	if err != nil {
		return nil, fmt.Errorf("writing master sheet: %w", err)
	}

	if err := writeTeamSheets(f, cfg, lastMasterRow); err != nil {
		return nil, fmt.Errorf("writing team sheets: %w", err)
	}

	if err := writeKpiSheet(f, result); err != nil {
		return nil, fmt.Errorf("writing KPI sheet: %w", err)
	}

	if err := writeSwapLogSheet(f, result); err != nil {
		return nil, fmt.Errorf("writing swap log sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

func resourceColumnName(name string, allNames []string) string {
	first := name
	for i, c := range name {
		if c == ' ' {
			first = name[:i]
			break
		}
	}
	count := 0
	for _, n := range allNames {
		word := n
		for i, c := range n {
			if c == ' ' {
				word = n[:i]
				break
			}
		}
		if word == first {
			count++
		}
	}
	if count > 1 {
		return name
	}
	return first
}

func writeMasterSheet(f *excelize.File, cfg *config.Config, result *schedule.Result, blackouts []schedule.BlackoutSlot) (int, error) {
	sheet := "Master Schedule"
	f.NewSheet(sheet)

	var resourceNames []string
	for _, res := range cfg.Resources {
		resourceNames = append(resourceNames, res.Name)
	}
	resourceCols := make([]string, len(resourceNames))
	for i, name := range resourceNames {
		resourceCols[i] = resourceColumnName(name, resourceNames)
	}

	headers := []string{"Date", "Day", "Time"}
	headers = append(headers, resourceCols...)
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 16, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if headerStyle != 0 {
		for i := range headers {
			f.SetCellStyle(sheet, cellRef(i+1, 1), cellRef(i+1, 1), headerStyle)
		}
	}

	cellStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 16, Family: "Arial"},
	})
	resourceCellStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 16, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	type slotKey struct {
		date     time.Time
		time     string
		resource string
	}
	gameMap := make(map[slotKey]schedule.ScheduledGame)
	for _, g := range result.Schedule.Games {
		gameMap[slotKey{dateOnly(g.Slot.Start), g.Slot.Start.Format("15:04"), g.Slot.Resource}] = g
	}

	blackoutMap := make(map[slotKey]string)
	for _, b := range blackouts {
		blackoutMap[slotKey{dateOnly(b.Date), b.Time, b.Resource}] = b.Reason
	}

	type timeSlot struct {
		date time.Time
		time string
	}
	seen := make(map[timeSlot]bool)
	var timeSlots []timeSlot
	for _, g := range result.Schedule.Games {
		ts := timeSlot{dateOnly(g.Slot.Start), g.Slot.Start.Format("15:04")}
		if !seen[ts] {
			seen[ts] = true
			timeSlots = append(timeSlots, ts)
		}
	}
	for _, b := range blackouts {
		ts := timeSlot{dateOnly(b.Date), b.Time}
		if !seen[ts] {
			seen[ts] = true
			timeSlots = append(timeSlots, ts)
		}
	}

	sort.Slice(timeSlots, func(i, j int) bool {
		if !timeSlots[i].date.Equal(timeSlots[j].date) {
			return timeSlots[i].date.Before(timeSlots[j].date)
		}
		return timeSlots[i].time < timeSlots[j].time
	})

	for i, ts := range timeSlots {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), ts.date.Format("01/02/2006"))
		f.SetCellValue(sheet, cellRef(2, row), ts.date.Format("Mon"))
		f.SetCellValue(sheet, cellRef(3, row), ts.time)

		for fi, rname := range resourceNames {
			col := fi + 4
			sk := slotKey{ts.date, ts.time, rname}

			if g, ok := gameMap[sk]; ok {
				f.SetCellValue(sheet, cellRef(col, row), fmt.Sprintf("%s @ %s", g.Matchup.Away, g.Matchup.Home))
			} else if reason, ok := blackoutMap[sk]; ok {
				f.SetCellValue(sheet, cellRef(col, row), reason)
			}
		}

		if cellStyle != 0 {
			for col := 1; col <= 3; col++ {
				f.SetCellStyle(sheet, cellRef(col, row), cellRef(col, row), cellStyle)
			}
			for col := 4; col <= len(headers); col++ {
				f.SetCellStyle(sheet, cellRef(col, row), cellRef(col, row), resourceCellStyle)
			}
		}
	}

	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "B", "B", 8)
	f.SetColWidth(sheet, "C", "C", 10)
	for i := range resourceNames {
		col := colLetter(i + 4)
		f.SetColWidth(sheet, col, col, 30)
	}

	lastRow := len(timeSlots) + 1
	redFill, _ := f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFC7CE"}},
		Font: &excelize.Font{Size: 16, Family: "Arial"},
	})
	for i := range resourceNames {
		col := colLetter(i + 4)
		cellRange := fmt.Sprintf("%s2:%s%d", col, col, lastRow)
		topCell := fmt.Sprintf("%s2", col)
		formula := fmt.Sprintf(`AND(%s<>"",ISERROR(FIND(" @ ",%s)))`, topCell, topCell)
		f.SetConditionalFormat(sheet, cellRange, []excelize.ConditionalFormatOptions{
			{Type: "formula", Criteria: formula, Format: &redFill},
		})
	}

	return lastRow, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func writeTeamSheets(f *excelize.File, cfg *config.Config, lastMasterRow int) error {
	masterSheet := "Master Schedule"

	var resourceNames []string
	for _, res := range cfg.Resources {
		resourceNames = append(resourceNames, res.Name)
	}

	for _, team := range cfg.AllTeams() {
		sheet := team
		f.NewSheet(sheet)

		headers := []string{"Date", "Day", "Time", "Resource", "Opponent", "Home/Away", "Game"}
		for i, h := range headers {
			f.SetCellValue(sheet, cellRef(i+1, 1), h)
		}

		headerStyle, _ := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 16, Family: "Arial"},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if headerStyle != 0 {
			for i := range headers {
				f.SetCellStyle(sheet, cellRef(i+1, 1), cellRef(i+1, 1), headerStyle)
			}
		}

		formula := buildTeamFormula(team, masterSheet, resourceNames, lastMasterRow)
		f.SetCellFormula(sheet, "A2", formula)

		cellStyle, _ := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Size: 16, Family: "Arial"},
		})
		if cellStyle != 0 {
			lastCol := colLetter(len(headers))
			f.SetColStyle(sheet, fmt.Sprintf("A:%s", lastCol), cellStyle)
		}

		widths := map[string]float64{"A": 18, "B": 8, "C": 10, "D": 28, "E": 16, "F": 14, "G": 28}
		for col, w := range widths {
			f.SetColWidth(sheet, col, col, w)
		}
	}

	return nil
}

// buildTeamFormula creates a LET/FILTER/HSTACK formula that derives a
// team's schedule from the Master Schedule sheet. Requires Excel 365 or
// Excel 2021+ for dynamic array support.
func buildTeamFormula(team, masterSheet string, resourceNames []string, lastRow int) string {
	ms := fmt.Sprintf("'%s'", masterSheet)
	colRange := func(col string) string {
		return fmt.Sprintf("%s!%s$2:%s$%d", ms, col, col, lastRow)
	}

	var parts []string
	parts = append(parts, fmt.Sprintf(`team,"%s"`, team))
	parts = append(parts, fmt.Sprintf("d,%s", colRange("A")))
	parts = append(parts, fmt.Sprintf("dy,%s", colRange("B")))
	parts = append(parts, fmt.Sprintf("tm,%s", colRange("C")))

	for i := range resourceNames {
		col := colLetter(i + 4)
		parts = append(parts, fmt.Sprintf("c%d,%s", i+1, colRange(col)))
	}
	for i := range resourceNames {
		parts = append(parts, fmt.Sprintf("m%d,ISNUMBER(SEARCH(team,c%d))", i+1, i+1))
	}

	matchExprs := make([]string, len(resourceNames))
	for i := range resourceNames {
		matchExprs[i] = fmt.Sprintf("m%d", i+1)
	}
	parts = append(parts, fmt.Sprintf("found,(%s)>0", strings.Join(matchExprs, "+")))

	gameExpr := `""`
	for i := len(resourceNames) - 1; i >= 0; i-- {
		gameExpr = fmt.Sprintf("IF(m%d,c%d,%s)", i+1, i+1, gameExpr)
	}
	parts = append(parts, fmt.Sprintf("game,%s", gameExpr))

	resourceExpr := `""`
	for i := len(resourceNames) - 1; i >= 0; i-- {
		colName := resourceColumnName(resourceNames[i], resourceNames)
		resourceExpr = fmt.Sprintf(`IF(m%d,"%s",%s)`, i+1, colName, resourceExpr)
	}
	parts = append(parts, fmt.Sprintf("resource,%s", resourceExpr))

	parts = append(parts, `opp,IFERROR(IF(LEFT(game,FIND(" @ ",game)-1)=team,MID(game,FIND(" @ ",game)+3,100),LEFT(game,FIND(" @ ",game)-1)),"")`)
	parts = append(parts, `ha,IFERROR(IF(LEFT(game,FIND(" @ ",game)-1)=team,"Away","Home"),"")`)

	parts = append(parts, `FILTER(HSTACK(d,dy,tm,resource,opp,ha,game),found,"No games scheduled")`)

	return "LET(" + strings.Join(parts, ",") + ")"
}

func writeKpiSheet(f *excelize.File, result *schedule.Result) error {
	sheet := "KPIs"
	f.NewSheet(sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
	})

	f.SetCellValue(sheet, "A1", "Games scheduled")
	f.SetCellValue(sheet, "B1", result.Kpis.GamesScheduled)
	f.SetCellValue(sheet, "A2", "Unscheduled")
	f.SetCellValue(sheet, "B2", result.Kpis.UnscheduledCount)
	f.SetCellValue(sheet, "A3", "Max gap (days)")
	f.SetCellValue(sheet, "B3", result.Kpis.MaxGap)
	f.SetCellValue(sheet, "A4", "Avg gap (days)")
	f.SetCellValue(sheet, "B4", result.Kpis.AvgGap)

	headers := []string{"Team", "Home", "Away", "Games", "Avg Gap", "Max Gap"}
	row := 6
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, row), h)
	}
	if headerStyle != 0 {
		f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), headerStyle)
	}

	teams := make([]string, 0, len(result.Kpis.PerTeam))
	for t := range result.Kpis.PerTeam {
		teams = append(teams, t)
	}
	sort.Strings(teams)

	for _, team := range teams {
		row++
		k := result.Kpis.PerTeam[team]
		f.SetCellValue(sheet, cellRef(1, row), team)
		f.SetCellValue(sheet, cellRef(2, row), k.Home)
		f.SetCellValue(sheet, cellRef(3, row), k.Away)
		f.SetCellValue(sheet, cellRef(4, row), k.Games)
		f.SetCellValue(sheet, cellRef(5, row), k.AvgGap)
		f.SetCellValue(sheet, cellRef(6, row), k.MaxGap)
	}

	f.SetColWidth(sheet, "A", "A", 20)
	f.SetColWidth(sheet, "B", "F", 12)

	return nil
}

func writeSwapLogSheet(f *excelize.File, result *schedule.Result) error {
	sheet := "Swap Log"
	f.NewSheet(sheet)

	headers := []string{"Pass", "Game 1", "Game 1 Date", "Game 2", "Game 2 Date", "Improvement"}
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
	})
	if headerStyle != 0 {
		f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), headerStyle)
	}

	for i, entry := range result.Schedule.SwapLog {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), entry.PassName)
		f.SetCellValue(sheet, cellRef(2, row), fmt.Sprintf("%s @ %s", entry.Game1.Matchup.Away, entry.Game1.Matchup.Home))
		f.SetCellValue(sheet, cellRef(3, row), entry.Game1.Slot.Start.Format("01/02/2006 15:04"))
		f.SetCellValue(sheet, cellRef(4, row), fmt.Sprintf("%s @ %s", entry.Game2.Matchup.Away, entry.Game2.Matchup.Home))
		f.SetCellValue(sheet, cellRef(5, row), entry.Game2.Slot.Start.Format("01/02/2006 15:04"))
		f.SetCellValue(sheet, cellRef(6, row), entry.Improvement)
	}

	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "B", "D", 22)
	f.SetColWidth(sheet, "E", "E", 22)
	f.SetColWidth(sheet, "F", "F", 14)

	return nil
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
