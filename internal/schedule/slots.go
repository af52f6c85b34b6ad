package schedule

import (
	"sort"
	"time"

	"github.com/leaguesched/rbrl2/internal/config"
	"github.com/leaguesched/rbrl2/internal/eml"
)

// RawSlot is a (date, time-of-day, resource) tuple as generated straight
// from the season calendar, before timezone-aware instants and derived
// classification are attached.
type RawSlot struct {
	Date     time.Time
	Time     string // "17:45", "12:30", etc.
	Resource string
}

// BlackoutSlot is a slot excluded from generation, retained for display.
type BlackoutSlot struct {
	Date     time.Time
	Time     string
	Resource string
	Reason   string
}

// GenerateRawSlots builds all available (date, time, resource) tuples for
// the season, excluding blackout dates and resource reservations.
func GenerateRawSlots(cfg *config.Config) []RawSlot {
	blackoutDates := make(map[time.Time]bool)
	for _, b := range cfg.Season.BlackoutDates {
		blackoutDates[b.Date.Time] = true
	}

	holidayDates := make(map[time.Time]bool)
	for _, h := range cfg.TimeSlots.HolidayDates {
		holidayDates[h.Time] = true
	}

	reservations, fullDayRes := buildReservationLookups(cfg)

	var slots []RawSlot
	d := cfg.Season.StartDate.Time
	for !d.After(cfg.Season.EndDate.Time) {
		if blackoutDates[d] {
			d = d.AddDate(0, 0, 1)
			continue
		}

		times := timesForDay(d, holidayDates, cfg.TimeSlots)
		for _, t := range times {
			for _, res := range cfg.Resources {
				if fullDayRes[fieldDateKey{res.Name, d}] {
					continue
				}
				if reservations[resKey{res.Name, d, t}] {
					continue
				}
				slots = append(slots, RawSlot{Date: d, Time: t, Resource: res.Name})
			}
		}

		d = d.AddDate(0, 0, 1)
	}

	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		if slots[i].Time != slots[j].Time {
			return slots[i].Time < slots[j].Time
		}
		return slots[i].Resource < slots[j].Resource
	})

	return slots
}

// GenerateBlackoutSlots returns all slots that are blacked out (season-wide
// blackouts and resource reservations), for display on the master sheet.
func GenerateBlackoutSlots(cfg *config.Config) []BlackoutSlot {
	holidayDates := make(map[time.Time]bool)
	for _, h := range cfg.TimeSlots.HolidayDates {
		holidayDates[h.Time] = true
	}

	var blackouts []BlackoutSlot

	for _, b := range cfg.Season.BlackoutDates {
		times := timesForDay(b.Date.Time, holidayDates, cfg.TimeSlots)
		for _, t := range times {
			for _, res := range cfg.Resources {
				blackouts = append(blackouts, BlackoutSlot{
					Date: b.Date.Time, Time: t, Resource: res.Name, Reason: b.Reason,
				})
			}
		}
	}

	for _, res := range cfg.Resources {
		for _, r := range res.Reservations {
			for _, rd := range r.Dates() {
				if rd.Before(cfg.Season.StartDate.Time) || rd.After(cfg.Season.EndDate.Time) {
					continue
				}
				if len(r.Times) == 0 {
					times := timesForDay(rd, holidayDates, cfg.TimeSlots)
					for _, t := range times {
						blackouts = append(blackouts, BlackoutSlot{Date: rd, Time: t, Resource: res.Name, Reason: r.Reason})
					}
				} else {
					for _, t := range r.Times {
						blackouts = append(blackouts, BlackoutSlot{Date: rd, Time: t, Resource: res.Name, Reason: r.Reason})
					}
				}
			}
		}
	}

	sort.Slice(blackouts, func(i, j int) bool {
		if !blackouts[i].Date.Equal(blackouts[j].Date) {
			return blackouts[i].Date.Before(blackouts[j].Date)
		}
		if blackouts[i].Time != blackouts[j].Time {
			return blackouts[i].Time < blackouts[j].Time
		}
		return blackouts[i].Resource < blackouts[j].Resource
	})

	return blackouts
}

type resKey struct {
	field string
	date  time.Time
	time  string
}

type fieldDateKey struct {
	field string
	date  time.Time
}

func buildReservationLookups(cfg *config.Config) (map[resKey]bool, map[fieldDateKey]bool) {
	reservations := make(map[resKey]bool)
	fullDayRes := make(map[fieldDateKey]bool)
	for _, res := range cfg.Resources {
		for _, r := range res.Reservations {
			for _, rd := range r.Dates() {
				if len(r.Times) == 0 {
					fullDayRes[fieldDateKey{res.Name, rd}] = true
				} else {
					for _, t := range r.Times {
						reservations[resKey{res.Name, rd, t}] = true
					}
				}
			}
		}
	}
	return reservations, fullDayRes
}

// timesForDay picks the time-of-day template for d: a holiday date uses
// the Sunday template regardless of its actual weekday.
func timesForDay(d time.Time, holidays map[time.Time]bool, ts config.TimeSlots) []string {
	if holidays[d] {
		return ts.Sunday
	}
	switch d.Weekday() {
	case time.Saturday:
		return ts.Saturday
	case time.Sunday:
		return ts.Sunday
	default:
		return ts.Weekday
	}
}

// ClassifySlots converts raw (date, time, resource) tuples into fully
// classified Slots: parses the HH:MM time into a zone-aware start instant,
// derives an end instant gameDuration later, and stamps weekday/EML/week-index. week_index is
// measured from the earliest raw slot's date.
func ClassifySlots(raw []RawSlot, classifier *eml.Classifier, gameDuration time.Duration) ([]Slot, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	loc := classifier.Location()

	sorted := make([]RawSlot, len(raw))
	copy(sorted, raw)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		if sorted[i].Time != sorted[j].Time {
			return sorted[i].Time < sorted[j].Time
		}
		return sorted[i].Resource < sorted[j].Resource
	})

	seasonStart := sorted[0].Date

	slots := make([]Slot, 0, len(sorted))
	for i, r := range sorted {
		hhmm, err := time.Parse("15:04", r.Time)
		if err != nil {
			return nil, err
		}
		start := time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), hhmm.Hour(), hhmm.Minute(), 0, 0, loc)
		end := eml.NormalizeOvernight(start, start.Add(gameDuration))

		slots = append(slots, Slot{
			ID:        i + 1,
			Start:     start,
			End:       end,
			Resource:  r.Resource,
			Weekday:   classifier.Weekday(start),
			EML:       classifier.Classify(end),
			WeekIndex: classifier.WeekIndex(start, seasonStart),
			Segment:   -1,
			AssignedDivision: anyDivision,
		})
	}

	return slots, nil
}
