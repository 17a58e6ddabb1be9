// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Pointer fields
// distinguish "unset" from a zero value so file settings can be layered
// under command-line flags.
type FileConfig struct {
	User      UserConfig      `toml:"user"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Analytics AnalyticsConfig `toml:"analytics"`
	Report    ReportConfig    `toml:"report"`
}

// UserConfig maps user identity settings.
type UserConfig struct {
	ID        *string `toml:"id"`
	DailyGoal *int    `toml:"daily-goal"`
}

// SchedulerConfig maps spaced-repetition tuning knobs.
type SchedulerConfig struct {
	MinIntervalDays      *int     `toml:"min-interval-days"`
	MaxIntervalDays      *int     `toml:"max-interval-days"`
	MinEase              *float64 `toml:"min-ease"`
	EaseBonus            *float64 `toml:"ease-bonus"`
	EasePenalty          *float64 `toml:"ease-penalty"`
	StreakDamping        *float64 `toml:"streak-damping"`
	StrengthGain         *float64 `toml:"strength-gain"`
	StrengthDecay        *float64 `toml:"strength-decay"`
	ConfidenceGain       *float64 `toml:"confidence-gain"`
	ConfidenceDecay      *float64 `toml:"confidence-decay"`
	StabilityScale       *float64 `toml:"stability-scale"`
	GraduationReviews    *int     `toml:"graduation-reviews"`
	MasteredReviews      *int     `toml:"mastered-reviews"`
	MasteredIntervalDays *int     `toml:"mastered-interval-days"`
	MasteredStrength     *float64 `toml:"mastered-strength"`
	ShortIntervalDays    *int     `toml:"short-interval-days"`
	OverdueUrgentDays    *int     `toml:"overdue-urgent-days"`
}

// AnalyticsConfig maps aggregation thresholds and weights.
type AnalyticsConfig struct {
	MinAccuracy       *float64 `toml:"min-accuracy"`
	LowRetention      *float64 `toml:"low-retention"`
	LowConsistency    *float64 `toml:"low-consistency"`
	LowMinutesPerDay  *float64 `toml:"low-minutes-per-day"`
	StrongAccuracy    *float64 `toml:"strong-accuracy"`
	StrongConsistency *float64 `toml:"strong-consistency"`
	MinStreakBroken   *int     `toml:"min-streak-broken"`
	ConsistencyK      *float64 `toml:"consistency-k"`
	TimeWeight        *float64 `toml:"time-weight"`
	GoalWeight        *float64 `toml:"goal-weight"`
}

// ReportConfig maps report rendering settings.
type ReportConfig struct {
	Period *string `toml:"period"`
	Chart  *bool   `toml:"chart"`
	Weekly *bool   `toml:"weekly"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
