// Package eml classifies a slot's end time into Early/Mid/Late and derives
// the weekday and season-relative week index used throughout the scheduler.
package eml

import (
	"time"

	"github.com/leaguesched/rbrl2/internal/schederr"
)

// Category is a slot's Early/Mid/Late classification by end time.
type Category int

const (
	Early Category = iota
	Mid
	Late
)

func (c Category) String() string {
	switch c {
	case Early:
		return "Early"
	case Mid:
		return "Mid"
	case Late:
		return "Late"
	default:
		return "Unknown"
	}
}

// Classifier holds a resolved timezone and the Early/Mid boundary times
// (minutes since midnight). Construct once per run; Classify and Weekday
// are then infallible.
type Classifier struct {
	loc      *time.Location
	earlyEnd int // minutes since midnight, exclusive upper bound for Early
	midEnd   int // minutes since midnight, exclusive upper bound for Mid
}

// NewClassifier resolves the timezone and parses the "HH:MM" thresholds.
// Returns *schederr.ConfigError on an unrecognized zone or malformed time.
func NewClassifier(timezone, earlyEnd, midEnd string) (*Classifier, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, schederr.NewConfigError(schederr.InvalidTimezone, "%q: %v", timezone, err)
	}
	early, err := parseHHMM(earlyEnd)
	if err != nil {
		return nil, schederr.NewConfigError(schederr.InvalidTimeFormat, "early_end %q: %v", earlyEnd, err)
	}
	mid, err := parseHHMM(midEnd)
	if err != nil {
		return nil, schederr.NewConfigError(schederr.InvalidTimeFormat, "mid_end %q: %v", midEnd, err)
	}
	return &Classifier{loc: loc, earlyEnd: early, midEnd: mid}, nil
}

func parseHHMM(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Location returns the resolved timezone.
func (c *Classifier) Location() *time.Location { return c.loc }

// Classify buckets a slot by its end time, converted into the configured
// zone. Thresholds are exclusive upper bounds: strictly before early_end is
// Early, strictly before mid_end is Mid, otherwise Late.
func (c *Classifier) Classify(end time.Time) Category {
	local := end.In(c.loc)
	minutes := local.Hour()*60 + local.Minute()
	switch {
	case minutes < c.earlyEnd:
		return Early
	case minutes < c.midEnd:
		return Mid
	default:
		return Late
	}
}

// Weekday returns the slot's weekday, computed from its start in the
// configured zone.
func (c *Classifier) Weekday(start time.Time) time.Weekday {
	return start.In(c.loc).Weekday()
}

// WeekIndex returns the season-relative week number (1-based) of t,
// measured from seasonStart in the configured zone.
func (c *Classifier) WeekIndex(t, seasonStart time.Time) int {
	d := dateOnly(t.In(c.loc))
	s := dateOnly(seasonStart.In(c.loc))
	days := int(d.Sub(s).Hours() / 24)
	return days/7 + 1
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizeOvernight adds 24h to end if it falls before start, per the
// slot invariant that end must follow start.
func NormalizeOvernight(start, end time.Time) time.Time {
	if end.Before(start) {
		return end.AddDate(0, 0, 1)
	}
	return end
}
