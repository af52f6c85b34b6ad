// Package config loads and validates the YAML configuration that drives a
// scheduling run: the season calendar, the venues and divisions, and the
// tuning parameters for the scheduling core.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leaguesched/rbrl2/internal/schederr"
)

// Date is a wrapper around time.Time for YAML date parsing.
type Date struct {
	Time time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse("2006-01-02", value.Value)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value.Value, err)
	}
	d.Time = t
	return nil
}

type BlackoutDate struct {
	Date   Date   `yaml:"date"`
	Reason string `yaml:"reason"`
}

type Season struct {
	StartDate     Date           `yaml:"start_date"`
	EndDate       Date           `yaml:"end_date"`
	BlackoutDates []BlackoutDate `yaml:"blackout_dates"`
}

type Reservation struct {
	Date      *Date    `yaml:"date"`
	StartDate *Date    `yaml:"start_date"`
	EndDate   *Date    `yaml:"end_date"`
	Times     []string `yaml:"times"`
	Reason    string   `yaml:"reason"`
}

// Dates returns all dates covered by this reservation.
// Supports single date (date:) or range (start_date:/end_date:).
func (r *Reservation) Dates() []time.Time {
	if r.StartDate != nil && r.EndDate != nil {
		var dates []time.Time
		d := r.StartDate.Time
		for !d.After(r.EndDate.Time) {
			dates = append(dates, d)
			d = d.AddDate(0, 0, 1)
		}
		return dates
	}
	if r.Date != nil {
		return []time.Time{r.Date.Time}
	}
	return nil
}

// Resource is a schedulable venue (field, rink, court) with its blackout
// reservations.
type Resource struct {
	Name         string        `yaml:"name"`
	Reservations []Reservation `yaml:"reservations"`
}

// Division is a named set of teams. A number in the name ("div 12") is
// taken as its size tag for the block-coverage recipe (see
// divtag.Normalize).
type Division struct {
	Name  string   `yaml:"name"`
	Teams []string `yaml:"teams"`
}

type TimeSlots struct {
	Weekday      []string `yaml:"weekday"`
	Saturday     []string `yaml:"saturday"`
	Sunday       []string `yaml:"sunday"`
	HolidayDates []Date   `yaml:"holiday_dates"`
}

// Weights holds the cost coefficients used by the greedy assigner's scoring
// function: gap-to-ideal, exponential idle urgency, EML balance, week
// rotation, weekday balance, and home/away balance.
type Weights struct {
	Gap      float64 `yaml:"gap"`
	Urgency  float64 `yaml:"urgency"`
	EML      float64 `yaml:"eml"`
	Rotation float64 `yaml:"rotation"`
	Weekday  float64 `yaml:"weekday"`
	HomeAway float64 `yaml:"home_away"`
}

func defaultWeights() Weights {
	return Weights{Gap: 1.0, Urgency: 3.0, EML: 1.0, Rotation: 0.2, Weekday: 1.0, HomeAway: 0.5}
}

// Params tunes the scheduling core: rest/gap rules, EML thresholds, balance
// bands, cost weights, determinism seed, and block-coverage recipe.
type Params struct {
	Timezone string `yaml:"timezone"`

	GamesPerTeam  int `yaml:"games_per_team"`
	MinRestDays   int `yaml:"min_rest_days"`
	MaxGapDays    int `yaml:"max_gap_days"`
	TargetGapDays int `yaml:"target_gap_days"`

	EarlyEnd string `yaml:"early_end"`
	MidEnd   string `yaml:"mid_end"`

	WeekdayHeavyThreshold int `yaml:"weekday_heavy_threshold"`
	WeekdayLightThreshold int `yaml:"weekday_light_threshold"`

	HomeAwayBand int `yaml:"home_away_band"`

	Weights Weights `yaml:"weights"`

	Seed int64 `yaml:"seed"`

	// BlockSize is the number of chronologically-adjacent slots per
	// strict-coverage block. 0 or less means derive it from the team count
	// as max(4, min(20, team_count/2)) (see schedule.DefaultBlockSize).
	BlockSize int `yaml:"block_size"`
	// BlockRecipe maps a normalized division tag (see divtag.Normalize)
	// to its required slot count within a block. Nil means derive one
	// proportionally from division sizes.
	BlockRecipe map[string]int `yaml:"block_recipe"`

	NoInterdivision bool `yaml:"no_interdivision"`

	MaxIterations int `yaml:"max_iterations"`
}

func (p *Params) applyDefaults() {
	if p.Timezone == "" {
		p.Timezone = "America/Chicago"
	}
	if p.MinRestDays == 0 {
		p.MinRestDays = 3
	}
	if p.MaxGapDays == 0 {
		p.MaxGapDays = 12
	}
	if p.TargetGapDays == 0 {
		p.TargetGapDays = 7
	}
	if p.EarlyEnd == "" {
		p.EarlyEnd = "21:59"
	}
	if p.MidEnd == "" {
		p.MidEnd = "22:34"
	}
	if p.WeekdayHeavyThreshold == 0 {
		p.WeekdayHeavyThreshold = 8
	}
	if p.WeekdayLightThreshold == 0 {
		p.WeekdayLightThreshold = 1
	}
	if p.Weights == (Weights{}) {
		p.Weights = defaultWeights()
	}
	if p.MaxIterations == 0 {
		p.MaxIterations = 50
	}
}

type Config struct {
	Season    Season     `yaml:"season"`
	Divisions []Division `yaml:"divisions"`
	Resources []Resource `yaml:"resources"`
	TimeSlots TimeSlots  `yaml:"time_slots"`
	Params    Params     `yaml:"params"`
}

// AllTeams returns all team names across all divisions, in declaration
// order.
func (c *Config) AllTeams() []string {
	var teams []string
	for _, d := range c.Divisions {
		teams = append(teams, d.Teams...)
	}
	return teams
}

// TeamDivision returns the declared division name for a team, or "" if the
// team is not found.
func (c *Config) TeamDivision(team string) string {
	for _, d := range c.Divisions {
		for _, t := range d.Teams {
			if t == team {
				return d.Name
			}
		}
	}
	return ""
}

// LoadFromBytes parses YAML bytes into a Config, applies parameter
// defaults, and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Params.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) validate() error {
	if !c.Season.EndDate.Time.After(c.Season.StartDate.Time) {
		return fmt.Errorf("end date %s must be after start date %s",
			c.Season.EndDate.Time.Format("2006-01-02"),
			c.Season.StartDate.Time.Format("2006-01-02"))
	}

	if len(c.Divisions) == 0 {
		return fmt.Errorf("at least one division is required")
	}

	if len(c.Resources) == 0 {
		return fmt.Errorf("at least one resource (field/rink/court) is required")
	}

	seen := make(map[string]string)
	for _, div := range c.Divisions {
		if len(div.Teams) == 0 {
			return fmt.Errorf("division %q has no teams", div.Name)
		}
		for _, team := range div.Teams {
			if prevDiv, ok := seen[team]; ok {
				return fmt.Errorf("team %q appears in both %q and %q divisions", team, prevDiv, div.Name)
			}
			seen[team] = div.Name
		}
	}

	for _, res := range c.Resources {
		for _, r := range res.Reservations {
			hasDate := r.Date != nil
			hasRange := r.StartDate != nil || r.EndDate != nil
			if !hasDate && !hasRange {
				return fmt.Errorf("resource %q: reservation must have either 'date' or 'start_date'/'end_date'", res.Name)
			}
			if hasDate && hasRange {
				return fmt.Errorf("resource %q: reservation cannot have both 'date' and 'start_date'/'end_date'", res.Name)
			}
			if hasRange && (r.StartDate == nil || r.EndDate == nil) {
				return fmt.Errorf("resource %q: reservation with date range must have both 'start_date' and 'end_date'", res.Name)
			}
			if hasRange && !r.EndDate.Time.After(r.StartDate.Time) && r.EndDate.Time != r.StartDate.Time {
				return fmt.Errorf("resource %q: reservation end_date must be on or after start_date", res.Name)
			}
		}
	}

	if _, err := time.LoadLocation(c.Params.Timezone); err != nil {
		return schederr.NewConfigError(schederr.InvalidTimezone, "%q: %v", c.Params.Timezone, err)
	}

	if c.Params.GamesPerTeam <= 0 {
		return fmt.Errorf("params.games_per_team must be positive")
	}

	return nil
}
