// Package constants provides centralized constant values used throughout COMPASS.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// File names used by COMPASS for state persistence.
const (
	// PlanFileName is the name of the JSON file that stores plan state.
	PlanFileName = "plan.json"

	// TrialsDBFileName is the name of the SQLite database that stores trial history.
	TrialsDBFileName = "trials.db"

	// RuleTuningFileName is the name of the YAML file with decision rule overrides.
	RuleTuningFileName = "rules.yaml"

	// CLILogFileName is the name of the rotating CLI log file.
	CLILogFileName = "compass.log"
)

// Directory names and paths used by COMPASS for organizing data.
const (
	// CompassHome is the hidden directory name where COMPASS stores all its data.
	// This directory is created in the user's home directory.
	CompassHome = ".compass"

	// PlansDir is the directory name where plan state is stored.
	PlansDir = "plans"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the maximum size of a log file before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to keep.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age of a rotated log file.
	LogMaxAgeDays = 30

	// LogCompress controls gzip compression of rotated log files.
	LogCompress = true
)

// Replanning defaults for the plan supervisor.
const (
	// DefaultFailureRateThreshold is the failure rate above which a plan
	// transitions from executing to replanning.
	DefaultFailureRateThreshold = 0.30

	// DefaultMinSampleSize is the minimum number of attempted tasks before
	// the failure rate is considered meaningful.
	DefaultMinSampleSize = 3

	// DefaultMaxReplans bounds how many times a single plan may replan
	// before it is declared failed.
	DefaultMaxReplans = 3

	// DefaultMaxConcurrent is the default number of ready tasks dispatched
	// to the executor concurrently.
	DefaultMaxConcurrent = 4
)

// Decision confidence band boundaries.
const (
	// HighConfidenceThreshold is the exclusive lower bound for HIGH confidence.
	// Decisions above this score auto-execute without review.
	HighConfidenceThreshold = 0.80

	// LowConfidenceThreshold is the threshold below which a decision is LOW
	// confidence and always requires human confirmation.
	LowConfidenceThreshold = 0.50
)

// Retry configuration defaults for the trial engine.
const (
	// DefaultMaxAttempts is the maximum number of attempts per task.
	DefaultMaxAttempts = 4

	// DefaultBaseBackoff is the delay before the second attempt.
	// Subsequent delays double (base x 2^(attempt-1)).
	DefaultBaseBackoff = 1 * time.Second
)

// Decomposition defaults.
const (
	// DefaultDepthLimit bounds recursive sub-goal splitting for the
	// hierarchical strategy.
	DefaultDepthLimit = 3

	// DefaultTaskConfidence is the starting confidence estimate for a
	// decomposed task before structural discounts apply.
	DefaultTaskConfidence = 0.9

	// DepthDiscount is the per-level confidence discount applied to
	// hierarchical branches.
	DepthDiscount = 0.95
)

// Goal-context keys callers use to structure a goal explicitly instead of
// relying on text splitting. Shared here so the planner can hand the
// decomposer a structured context without importing it.
const (
	// GoalContextSteps holds an ordered []string of step descriptions.
	GoalContextSteps = "steps"

	// GoalContextPhases holds an ordered [][]string: phases of parallel steps.
	GoalContextPhases = "phases"
)

// Schema version constants for data migration support.
const (
	// PlanSchemaVersion is the current version of the plan JSON schema.
	// This enables forward-compatible schema migrations.
	PlanSchemaVersion = 1
)
