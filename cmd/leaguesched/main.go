package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leaguesched/rbrl2/internal/config"
	"github.com/leaguesched/rbrl2/internal/excel"
	"github.com/leaguesched/rbrl2/internal/latefair"
	"github.com/leaguesched/rbrl2/internal/schedule"
	"github.com/leaguesched/rbrl2/internal/validator"
)

const defaultConfigFile = "config.yaml"

func resolveConfigPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass the path as an argument", defaultConfigFile)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "leaguesched",
		Short: "League schedule generator",
	}

	var outputFile string
	var applyLateFair bool
	generateCmd := &cobra.Command{
		Use:          "generate [config.yaml]",
		Short:        "Generate a schedule from a config file",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(args)
			if err != nil {
				return err
			}
			return runGenerate(configPath, outputFile, applyLateFair)
		},
	}
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "schedule.xlsx", "Output Excel file path")
	generateCmd.Flags().BoolVar(&applyLateFair, "late-fair", false, "Apply the late-game fairness pass to the finished schedule before writing")

	validateCmd := &cobra.Command{
		Use:          "validate [config.yaml] <schedule.xlsx>",
		Short:        "Re-check a saved schedule workbook against the config",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				return runValidate(args[0], args[1])
			}
			configPath, err := resolveConfigPath(nil)
			if err != nil {
				return err
			}
			return runValidate(configPath, args[0])
		},
	}

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter config.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	var lateFairOutputFile string
	lateFairCmd := &cobra.Command{
		Use:          "late-fair [config.yaml] <schedule.xlsx>",
		Short:        "Re-run the late-game fairness optimizer over an already-generated schedule",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				return runLateFair(args[0], args[1], lateFairOutputFile)
			}
			cp, err := resolveConfigPath(nil)
			if err != nil {
				return err
			}
			return runLateFair(cp, args[0], lateFairOutputFile)
		},
	}
	lateFairCmd.Flags().StringVarP(&lateFairOutputFile, "output", "o", "schedule.xlsx", "Output Excel file path")

	rootCmd.AddCommand(generateCmd, validateCmd, initCmd, lateFairCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Created %s\n", outputPath)
	return nil
}

const configTemplate = `# League season configuration
# =============================
# This file defines the parameters for generating a season schedule.

season:
  start_date: "2026-04-25"
  end_date: "2026-05-31"

  # Blackout dates are full days where no games are scheduled on any resource.
  blackout_dates:
    - date: "2026-05-10"
      reason: "Mother's Day"
    - date: "2026-05-23"
      reason: "Memorial Day Weekend"
    - date: "2026-05-24"
      reason: "Memorial Day Weekend"
    - date: "2026-05-25"
      reason: "Memorial Day"

# Divisions and their teams. The number of divisions and teams per division
# can vary. Team names must be unique across all divisions.
divisions:
  - name: American
    teams: [Angels, Astros, Orioles, Mariners, Royals]
  - name: National
    teams: [Cubs, Padres, Phillies, Pirates, Rockies]

# Resources (fields, rinks, courts) available for scheduling. Each can carry
# reservations that block it for specific dates, date ranges, or times.
#
# Single date reservation (full day):
#   - date: "2026-05-04"
#     reason: "Freshman"
#
# Single date, specific times only:
#   - date: "2026-05-04"
#     times: ["17:45"]
#     reason: "Freshman"
#
# Date range reservation (blocks every day in the range):
#   - start_date: "2026-04-25"
#     end_date: "2026-05-31"
#     reason: "Reserved"
resources:
  - name: Moscariello Ballpark
    reservations:
      - start_date: "2026-04-25"
        end_date: "2026-05-31"
        reason: "Reserved"
  - name: Symonds Field
    reservations:
      - date: "2026-05-04"
        reason: "Freshman"
      - date: "2026-05-05"
        reason: "Freshman"
      - date: "2026-05-06"
        reason: "Freshman"
      - date: "2026-05-13"
        reason: "Freshman"
      - date: "2026-05-22"
        reason: "Freshman"
  - name: Washington Park
    reservations:
      - date: "2026-04-29"
        reason: "JV"
      - date: "2026-05-01"
        reason: "JV"
      - date: "2026-05-11"
        reason: "JV"
      - date: "2026-05-12"
        reason: "JV"

# Time slots define when games can be played on each type of day.
# Times use 24-hour format (e.g., "17:45" = 5:45 PM).
time_slots:
  weekday: ["17:45"]
  saturday: ["12:30", "14:45", "17:00"]
  sunday: ["17:00"]

  # Holiday dates are treated as Sundays for scheduling purposes.
  holiday_dates:
    - "2026-05-25"

# Params tunes the scheduling core.
params:
  timezone: "America/Chicago"
  games_per_team: 18
  min_rest_days: 2
  max_gap_days: 12
  target_gap_days: 7

  # early_end/mid_end are the boundary times (24-hour, in timezone) between
  # the Early/Mid/Late slot categories.
  early_end: "21:59"
  mid_end: "22:34"

  weekday_heavy_threshold: 8
  weekday_light_threshold: 1
  home_away_band: 1

  seed: 7
`

func runGenerate(configPath, outputPath string, applyLateFair bool) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	raw := schedule.GenerateRawSlots(cfg)
	blackouts := schedule.GenerateBlackoutSlots(cfg)

	fmt.Printf("Scheduling %d teams across %d candidate slots...\n", len(cfg.AllTeams()), len(raw))

	result, err := schedule.Run(cfg, raw)
	if err != nil {
		return fmt.Errorf("scheduling: %w", err)
	}

	if applyLateFair {
		fmt.Println("Applying late-game fairness pass...")
		latefair.Run(result.Schedule)
		result.Kpis = schedule.ComputeKpis(result.Schedule)
	}

	fmt.Printf("Scheduled %d games (%d unscheduled)\n", result.Kpis.GamesScheduled, result.Kpis.UnscheduledCount)

	fmt.Println("\nPer Team Summary:")
	fmt.Printf("  %-15s %6s %5s %5s %8s\n", "Team", "Games", "Home", "Away", "MaxGap")
	for _, team := range cfg.AllTeams() {
		m := result.Kpis.PerTeam[team]
		fmt.Printf("  %-15s %6d %5d %5d %8d\n", team, m.Games, m.Home, m.Away, m.MaxGap)
	}

	if result.Validation.OK() {
		fmt.Println("\nAll invariants satisfied")
	} else {
		fmt.Printf("\nInvariant violations (%d):\n", len(result.Validation.Errors))
		for _, e := range result.Validation.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	if len(result.Validation.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(result.Validation.Warnings))
		for _, w := range result.Validation.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	f, err := excel.Generate(cfg, result, blackouts)
	if err != nil {
		return fmt.Errorf("generating workbook: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}

	fmt.Printf("\nSchedule saved to %s\n", outputPath)
	if !result.Validation.OK() {
		return fmt.Errorf("%d invariant violations found", len(result.Validation.Errors))
	}
	return nil
}

func runValidate(configPath, schedulePath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	violations, err := validator.Validate(cfg, schedulePath)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	errors := 0
	warnings := 0
	for _, v := range violations {
		switch v.Type {
		case "error":
			errors++
			fmt.Printf("✗ %s\n", v.Message)
		case "warning":
			warnings++
			fmt.Printf("⚠ %s\n", v.Message)
		}
	}

	fmt.Printf("\nValidation complete: %d errors, %d warnings\n", errors, warnings)

	if errors > 0 {
		return fmt.Errorf("%d constraint violations found", errors)
	}
	return nil
}

// runLateFair re-runs the full pipeline, applies the late-game fairness
// optimizer as a distinct post-processing step, and re-saves the workbook.
// It is kept separate from generate's --late-fair flag. It does not read a
// schedule built earlier: matchups and the schedule are regenerated from
// config before the pass runs. schedulePath is accepted for symmetry with validate's calling convention;
// the pipeline is deterministic from the seed, so reproducing it from
// config rather than parsing the existing workbook back into a Schedule
// yields the same pre-late-fair state.
func runLateFair(configPath, schedulePath, outputPath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	raw := schedule.GenerateRawSlots(cfg)
	result, err := schedule.Run(cfg, raw)
	if err != nil {
		return fmt.Errorf("scheduling: %w", err)
	}

	latefair.Run(result.Schedule)
	result.Kpis = schedule.ComputeKpis(result.Schedule)
	result.Validation = schedule.Validate(result.Schedule, &cfg.Params, result.Recipe, result.BlockSize, result.Slots)
	result.Validation.Warnings = append(result.Validation.Warnings, result.Schedule.Warnings...)

	blackouts := schedule.GenerateBlackoutSlots(cfg)
	f, err := excel.Generate(cfg, result, blackouts)
	if err != nil {
		return fmt.Errorf("generating workbook: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}

	fmt.Printf("Late-fairness pass applied; saved to %s\n", outputPath)
	return nil
}
