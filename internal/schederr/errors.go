// Package schederr defines the typed errors raised by the scheduling core.
//
// Errors fall into three buckets: ConfigError (bad input, caught before the
// pipeline runs), FeasibilityError (the pipeline could not place something;
// non-fatal kinds are recorded, fatal kinds abort), and InvariantViolation (a validator
// caught a broken guarantee after a pass ran; always fatal).
package schederr

import "fmt"

// Kind classifies an error for callers that want to branch on it without
// string matching.
type Kind string

const (
	InvalidTimezone     Kind = "invalid_timezone"
	InvalidTimeFormat   Kind = "invalid_time_format"
	RecipeSumMismatch   Kind = "recipe_sum_mismatch"
	UnknownDivisionTag  Kind = "unknown_division_tag"
	NoEligibleSlot      Kind = "no_eligible_slot"
	StrictBlockViolated Kind = "strict_block_violation"
	InfeasibleQuota     Kind = "infeasible_quota"
	InvariantBroken     Kind = "invariant_violation"
)

// ConfigError reports a problem with caller-supplied configuration.
type ConfigError struct {
	Kind Kind
	Msg  string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config: %s: %s", e.Kind, e.Msg) }

func NewConfigError(kind Kind, format string, args ...any) *ConfigError {
	return &ConfigError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// FeasibilityError reports that the pipeline could not place a matchup or
// complete a block. Non-fatal kinds are recorded on the schedule and
// execution continues; StrictBlockViolated and InfeasibleQuota are fatal.
type FeasibilityError struct {
	Kind Kind
	Msg  string
}

func (e *FeasibilityError) Error() string { return fmt.Sprintf("feasibility: %s: %s", e.Kind, e.Msg) }

func NewFeasibilityError(kind Kind, format string, args ...any) *FeasibilityError {
	return &FeasibilityError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *FeasibilityError) Fatal() bool {
	return e.Kind == StrictBlockViolated || e.Kind == InfeasibleQuota
}

// InvariantViolation reports that a validator found a broken guarantee
// after a pass committed. Always fatal and caller-visible.
type InvariantViolation struct {
	Property string // e.g. "min_rest", "strict_block_coverage"
	Msg      string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant %s violated: %s", e.Property, e.Msg)
}

func NewInvariantViolation(property, format string, args ...any) *InvariantViolation {
	return &InvariantViolation{Property: property, Msg: fmt.Sprintf(format, args...)}
}
