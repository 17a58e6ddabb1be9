package srs

import "fmt"

// Params holds every tunable of the scheduling algorithm. The exact constants
// are not pinned by any reference implementation, so they are configuration
// rather than code; DefaultParams gives SM-2-conventional values.
type Params struct {
	MinIntervalDays int     `toml:"min-interval-days"` // lapse reset target
	MaxIntervalDays int     `toml:"max-interval-days"` // runaway-scheduling cap
	MinEase         float64 `toml:"min-ease"`          // SM-2 ease floor
	EaseBonus       float64 `toml:"ease-bonus"`        // base ease gain on a correct answer
	EasePenalty     float64 `toml:"ease-penalty"`      // ease loss on an incorrect answer
	StreakDamping   float64 `toml:"streak-damping"`    // diminishes the ease bonus as the correct streak grows

	StrengthGain    float64 `toml:"strength-gain"`    // fraction of remaining headroom gained on correct
	StrengthDecay   float64 `toml:"strength-decay"`   // fraction of strength retained after a lapse
	ConfidenceGain  float64 `toml:"confidence-gain"`
	ConfidenceDecay float64 `toml:"confidence-decay"`

	StabilityScale float64 `toml:"stability-scale"` // scales ease x interval into forgetting-curve stability

	GraduationReviews    int     `toml:"graduation-reviews"`     // reviews before learning -> review
	MasteredReviews      int     `toml:"mastered-reviews"`       // minimum reviews before mastered
	MasteredIntervalDays int     `toml:"mastered-interval-days"` // minimum interval before mastered
	MasteredStrength     float64 `toml:"mastered-strength"`      // minimum strength before mastered

	ShortIntervalDays int `toml:"short-interval-days"` // intervals at or below stay medium priority
	OverdueUrgentDays int `toml:"overdue-urgent-days"` // overdue by this many days -> urgent
}

// DefaultParams returns the conventional SM-2-derived defaults.
func DefaultParams() Params {
	return Params{
		MinIntervalDays:      1,
		MaxIntervalDays:      365,
		MinEase:              1.3,
		EaseBonus:            0.1,
		EasePenalty:          0.2,
		StreakDamping:        0.25,
		StrengthGain:         0.18,
		StrengthDecay:        0.6,
		ConfidenceGain:       0.12,
		ConfidenceDecay:      0.7,
		StabilityScale:       2.0,
		GraduationReviews:    2,
		MasteredReviews:      5,
		MasteredIntervalDays: 30,
		MasteredStrength:     0.8,
		ShortIntervalDays:    7,
		OverdueUrgentDays:    7,
	}
}

// Validate checks that all parameters are within their allowed bounds.
func (p Params) Validate() error {
	if p.MinIntervalDays < 1 {
		return fmt.Errorf("%w: min interval %d must be >= 1", ErrInvalidParams, p.MinIntervalDays)
	}
	if p.MaxIntervalDays < p.MinIntervalDays {
		return fmt.Errorf("%w: max interval %d below min interval %d",
			ErrInvalidParams, p.MaxIntervalDays, p.MinIntervalDays)
	}
	if p.MinEase < 1.3 {
		return fmt.Errorf("%w: min ease %.3f below 1.3", ErrInvalidParams, p.MinEase)
	}
	if p.EaseBonus < 0 || p.EaseBonus > 1 {
		return fmt.Errorf("%w: ease bonus %.3f out of [0,1]", ErrInvalidParams, p.EaseBonus)
	}
	if p.EasePenalty < 0 || p.EasePenalty > 2 {
		return fmt.Errorf("%w: ease penalty %.3f out of [0,2]", ErrInvalidParams, p.EasePenalty)
	}
	if p.StreakDamping < 0 {
		return fmt.Errorf("%w: streak damping %.3f must be >= 0", ErrInvalidParams, p.StreakDamping)
	}
	gains := []struct {
		name string
		v    float64
	}{
		{"strength gain", p.StrengthGain},
		{"confidence gain", p.ConfidenceGain},
	}
	for _, g := range gains {
		if g.v <= 0 || g.v > 1 {
			return fmt.Errorf("%w: %s %.3f out of (0,1]", ErrInvalidParams, g.name, g.v)
		}
	}
	decays := []struct {
		name string
		v    float64
	}{
		{"strength decay", p.StrengthDecay},
		{"confidence decay", p.ConfidenceDecay},
	}
	for _, d := range decays {
		if d.v < 0 || d.v >= 1 {
			return fmt.Errorf("%w: %s %.3f out of [0,1)", ErrInvalidParams, d.name, d.v)
		}
	}
	if p.StabilityScale <= 0 {
		return fmt.Errorf("%w: stability scale %.3f must be > 0", ErrInvalidParams, p.StabilityScale)
	}
	if p.GraduationReviews < 1 || p.MasteredReviews < p.GraduationReviews {
		return fmt.Errorf("%w: graduation %d / mastered %d review thresholds",
			ErrInvalidParams, p.GraduationReviews, p.MasteredReviews)
	}
	if p.MasteredIntervalDays < 1 {
		return fmt.Errorf("%w: mastered interval %d must be >= 1", ErrInvalidParams, p.MasteredIntervalDays)
	}
	if p.MasteredStrength <= 0 || p.MasteredStrength > 1 {
		return fmt.Errorf("%w: mastered strength %.3f out of (0,1]", ErrInvalidParams, p.MasteredStrength)
	}
	if p.ShortIntervalDays < 1 {
		return fmt.Errorf("%w: short interval %d must be >= 1", ErrInvalidParams, p.ShortIntervalDays)
	}
	if p.OverdueUrgentDays < 1 {
		return fmt.Errorf("%w: overdue urgent days %d must be >= 1", ErrInvalidParams, p.OverdueUrgentDays)
	}
	return nil
}
