package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.User.ID != nil || cfg.Scheduler.MaxIntervalDays != nil {
		t.Errorf("missing file should yield zero config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Error("LoadConfig(\"\") should fail")
	}
}

func TestLoadConfigParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `[user]
id = "anna"
daily-goal = 25

[scheduler]
max-interval-days = 180
ease-bonus = 0.15
strength-gain = 0.25
mastered-reviews = 8

[analytics]
min-accuracy = 75.0
consistency-k = 40.0
goal-weight = 0.5

[report]
period = "month"
chart = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.User.ID == nil || *cfg.User.ID != "anna" {
		t.Errorf("User.ID = %v, want anna", cfg.User.ID)
	}
	if cfg.User.DailyGoal == nil || *cfg.User.DailyGoal != 25 {
		t.Errorf("User.DailyGoal = %v, want 25", cfg.User.DailyGoal)
	}
	if cfg.Scheduler.MaxIntervalDays == nil || *cfg.Scheduler.MaxIntervalDays != 180 {
		t.Errorf("Scheduler.MaxIntervalDays = %v, want 180", cfg.Scheduler.MaxIntervalDays)
	}
	if cfg.Scheduler.EaseBonus == nil || *cfg.Scheduler.EaseBonus != 0.15 {
		t.Errorf("Scheduler.EaseBonus = %v, want 0.15", cfg.Scheduler.EaseBonus)
	}
	if cfg.Scheduler.StrengthGain == nil || *cfg.Scheduler.StrengthGain != 0.25 {
		t.Errorf("Scheduler.StrengthGain = %v, want 0.25", cfg.Scheduler.StrengthGain)
	}
	if cfg.Scheduler.MasteredReviews == nil || *cfg.Scheduler.MasteredReviews != 8 {
		t.Errorf("Scheduler.MasteredReviews = %v, want 8", cfg.Scheduler.MasteredReviews)
	}
	if cfg.Analytics.MinAccuracy == nil || *cfg.Analytics.MinAccuracy != 75 {
		t.Errorf("Analytics.MinAccuracy = %v, want 75", cfg.Analytics.MinAccuracy)
	}
	if cfg.Analytics.ConsistencyK == nil || *cfg.Analytics.ConsistencyK != 40 {
		t.Errorf("Analytics.ConsistencyK = %v, want 40", cfg.Analytics.ConsistencyK)
	}
	if cfg.Analytics.GoalWeight == nil || *cfg.Analytics.GoalWeight != 0.5 {
		t.Errorf("Analytics.GoalWeight = %v, want 0.5", cfg.Analytics.GoalWeight)
	}
	if cfg.Report.Period == nil || *cfg.Report.Period != "month" {
		t.Errorf("Report.Period = %v, want month", cfg.Report.Period)
	}
	if cfg.Report.Chart == nil || !*cfg.Report.Chart {
		t.Errorf("Report.Chart = %v, want true", cfg.Report.Chart)
	}
	// Unset keys stay nil so flag defaults win.
	if cfg.Scheduler.MinEase != nil || cfg.Report.Weekly != nil {
		t.Error("unset keys should remain nil")
	}
}
