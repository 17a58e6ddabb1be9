// Package analytics computes learning analytics and chart payloads from raw
// progress and session logs. All entry points are pure: they never mutate
// their inputs and identical inputs yield identical outputs.
package analytics

import (
	"errors"
	"fmt"
	"math"

	"github.com/wordpulse/wordpulse/internal/model"
)

// ErrInvalidOptions is returned when aggregation options are out of bounds.
var ErrInvalidOptions = errors.New("analytics: options out of bounds")

// Options holds the aggregator's tunable thresholds and weights. The exact
// values are not pinned by any reference implementation; DefaultOptions gives
// workable defaults.
type Options struct {
	MinAccuracy       float64 `toml:"min-accuracy"`       // below this, suggest reviewing fundamentals
	LowRetention      float64 `toml:"low-retention"`      // below this, urgent foundation work
	LowConsistency    float64 `toml:"low-consistency"`    // below this, suggest a fixed schedule
	LowMinutesPerDay  float64 `toml:"low-minutes-per-day"`
	StrongAccuracy    float64 `toml:"strong-accuracy"`    // reinforcement threshold
	StrongConsistency float64 `toml:"strong-consistency"` // reinforcement threshold
	MinStreakBroken   int     `toml:"min-streak-broken"`  // prior streak length that counts as "broken"

	ConsistencyK float64 `toml:"consistency-k"` // coefficient-of-variation multiplier
	TimeWeight   float64 `toml:"time-weight"`   // study-time regularity weight
	GoalWeight   float64 `toml:"goal-weight"`   // goal-achieved rate weight
}

// DefaultOptions returns the default aggregation thresholds.
func DefaultOptions() Options {
	return Options{
		MinAccuracy:       70,
		LowRetention:      50,
		LowConsistency:    50,
		LowMinutesPerDay:  10,
		StrongAccuracy:    90,
		StrongConsistency: 70,
		MinStreakBroken:   3,
		ConsistencyK:      50,
		TimeWeight:        0.7,
		GoalWeight:        0.3,
	}
}

// Validate checks that all options are within their allowed bounds.
func (o Options) Validate() error {
	pcts := []struct {
		name string
		v    float64
	}{
		{"min accuracy", o.MinAccuracy},
		{"low retention", o.LowRetention},
		{"low consistency", o.LowConsistency},
		{"strong accuracy", o.StrongAccuracy},
		{"strong consistency", o.StrongConsistency},
	}
	for _, p := range pcts {
		if p.v < 0 || p.v > 100 {
			return fmt.Errorf("%w: %s %.2f out of [0,100]", ErrInvalidOptions, p.name, p.v)
		}
	}
	if o.LowMinutesPerDay < 0 {
		return fmt.Errorf("%w: low minutes per day %.2f must be >= 0", ErrInvalidOptions, o.LowMinutesPerDay)
	}
	if o.MinStreakBroken < 1 {
		return fmt.Errorf("%w: min streak broken %d must be >= 1", ErrInvalidOptions, o.MinStreakBroken)
	}
	if o.ConsistencyK < 0 {
		return fmt.Errorf("%w: consistency k %.2f must be >= 0", ErrInvalidOptions, o.ConsistencyK)
	}
	if o.TimeWeight < 0 || o.GoalWeight < 0 || o.TimeWeight+o.GoalWeight <= 0 {
		return fmt.Errorf("%w: weights %.2f/%.2f", ErrInvalidOptions, o.TimeWeight, o.GoalWeight)
	}
	return nil
}

// Generate aggregates the user's progress and session logs over the period
// window. Inputs are expected in chronological order; entries outside the
// trailing window never influence the output. Empty logs produce the neutral
// zero result, not an error.
func Generate(userID string, progress []model.ProgressEntry, sessions []model.SessionEntry, period model.Period, opts Options) (model.LearningAnalytics, error) {
	if !period.IsValid() {
		return model.LearningAnalytics{}, fmt.Errorf("analytics: invalid period %d", int(period))
	}
	if err := opts.Validate(); err != nil {
		return model.LearningAnalytics{}, err
	}
	for _, p := range progress {
		if err := p.Validate(); err != nil {
			return model.LearningAnalytics{}, err
		}
	}
	for _, s := range sessions {
		if err := s.Validate(); err != nil {
			return model.LearningAnalytics{}, err
		}
	}

	wp := tail(progress, period.Window())
	ws := tail(sessions, period.Window())

	out := model.LearningAnalytics{
		UserID:      userID,
		Period:      period,
		Velocity:    velocity(wp),
		Retention:   retention(ws),
		Performance: performance(wp, opts),
	}
	out.Recommendations = recommendations(ruleInput{
		Progress:    wp,
		Sessions:    ws,
		Velocity:    out.Velocity,
		Retention:   out.Retention,
		Performance: out.Performance,
	}, opts)
	return out, nil
}

// tail returns the trailing n entries, or all of them when n <= 0.
func tail[T any](entries []T, n int) []T {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}

func velocity(progress []model.ProgressEntry) model.Velocity {
	if len(progress) == 0 {
		return model.Velocity{}
	}
	var learned, minutes int
	for _, p := range progress {
		learned += p.WordsLearned
		minutes += p.MinutesStudied
	}
	days := float64(len(progress))
	return model.Velocity{
		WordsPerWeek:  float64(learned) / days * 7,
		MinutesPerDay: float64(minutes) / days,
	}
}

// retention is the cards-weighted average of per-session accuracy; sessions
// with more cards count more. Sessions without cards carry no weight.
func retention(sessions []model.SessionEntry) model.Retention {
	var out model.Retention
	var sum, weight float64
	type diffAcc struct{ sum, weight float64 }
	byDiff := map[model.Difficulty]*diffAcc{}

	for _, s := range sessions {
		w := float64(s.CardsTotal)
		if w <= 0 {
			continue
		}
		sum += s.Accuracy() * w
		weight += w
		acc, ok := byDiff[s.Difficulty]
		if !ok {
			acc = &diffAcc{}
			byDiff[s.Difficulty] = acc
		}
		acc.sum += s.Accuracy() * w
		acc.weight += w
	}
	if weight == 0 {
		return out
	}
	out.Overall = sum / weight
	out.ByDifficulty = make(map[model.Difficulty]float64, len(byDiff))
	for d, acc := range byDiff {
		out.ByDifficulty[d] = acc.sum / acc.weight
	}
	return out
}

func performance(progress []model.ProgressEntry, opts Options) model.Performance {
	if len(progress) == 0 {
		return model.Performance{}
	}
	var accSum float64
	minutes := make([]float64, len(progress))
	goals := 0
	for i, p := range progress {
		accSum += p.Accuracy
		minutes[i] = float64(p.MinutesStudied)
		if p.GoalAchieved {
			goals++
		}
	}

	timeScore := clamp(100-coefficientOfVariation(minutes)*opts.ConsistencyK, 0, 100)
	goalScore := float64(goals) / float64(len(progress)) * 100
	weightSum := opts.TimeWeight + opts.GoalWeight
	consistency := (timeScore*opts.TimeWeight + goalScore*opts.GoalWeight) / weightSum

	return model.Performance{
		AverageAccuracy:  accSum / float64(len(progress)),
		ConsistencyScore: clamp(consistency, 0, 100),
	}
}

// coefficientOfVariation returns stddev/mean. Degenerate inputs (fewer than
// two values, or an all-zero series) count as perfectly regular.
func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 0
	}
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq/float64(len(values))) / mean
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
