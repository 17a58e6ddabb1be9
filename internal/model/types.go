// Package model defines shared data structures and their validation rules.
package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Sentinel errors for input validation.
// Use errors.Is to check: errors.Is(err, model.ErrInvalidSession)
var (
	ErrInvalidProgress     = errors.New("model: invalid progress entry")
	ErrInvalidSession      = errors.New("model: invalid session entry")
	ErrInvalidWordStrength = errors.New("model: invalid word strength record")
)

// ProgressEntry is one user's daily progress snapshot. Entries form an
// append-only log with at most one entry per user per calendar day.
type ProgressEntry struct {
	UserID          string    `json:"user_id" db:"user_id"`
	Date            time.Time `json:"date" db:"date"`
	WordsStudied    int       `json:"words_studied" db:"words_studied"`
	WordsLearned    int       `json:"words_learned" db:"words_learned"`
	WordsReviewed   int       `json:"words_reviewed" db:"words_reviewed"`
	DeepMemoryWords int       `json:"deep_memory_words" db:"deep_memory_words"`
	MinutesStudied  int       `json:"minutes_studied" db:"minutes_studied"`
	Sessions        int       `json:"sessions" db:"sessions"`
	Accuracy        float64   `json:"accuracy" db:"accuracy"` // percentage [0,100]
	StreakDays      int       `json:"streak_days" db:"streak_days"`
	DailyGoal       int       `json:"daily_goal" db:"daily_goal"` // words per day
	GoalAchieved    bool      `json:"goal_achieved" db:"goal_achieved"`
}

// Validate checks the entry's domain invariants.
func (p ProgressEntry) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidProgress)
	}
	if p.Date.IsZero() {
		return fmt.Errorf("%w: zero date", ErrInvalidProgress)
	}
	if p.Accuracy < 0 || p.Accuracy > 100 {
		return fmt.Errorf("%w: accuracy %.2f out of range [0,100]", ErrInvalidProgress, p.Accuracy)
	}
	if p.MinutesStudied < 0 {
		return fmt.Errorf("%w: negative minutes studied %d", ErrInvalidProgress, p.MinutesStudied)
	}
	counts := []struct {
		name string
		v    int
	}{
		{"words_studied", p.WordsStudied},
		{"words_learned", p.WordsLearned},
		{"words_reviewed", p.WordsReviewed},
		{"deep_memory_words", p.DeepMemoryWords},
		{"sessions", p.Sessions},
		{"streak_days", p.StreakDays},
		{"daily_goal", p.DailyGoal},
	}
	for _, c := range counts {
		if c.v < 0 {
			return fmt.Errorf("%w: negative %s %d", ErrInvalidProgress, c.name, c.v)
		}
	}
	return nil
}

// Day returns the entry's date truncated to the calendar day in UTC.
func (p ProgressEntry) Day() time.Time {
	y, m, d := p.Date.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SessionEntry records one completed practice session. Immutable once recorded.
type SessionEntry struct {
	ID             int64       `json:"id" db:"id"`
	UserID         string      `json:"user_id" db:"user_id"`
	StartedAt      time.Time   `json:"started_at" db:"started_at"`
	EndedAt        time.Time   `json:"ended_at" db:"ended_at"`
	CardsCorrect   int         `json:"cards_correct" db:"cards_correct"`
	CardsIncorrect int         `json:"cards_incorrect" db:"cards_incorrect"`
	CardsTotal     int         `json:"cards_total" db:"cards_total"`
	LearnedWords   []string    `json:"learned_words" db:"-"`
	ReviewedWords  []string    `json:"reviewed_words" db:"-"`
	AvgResponseSec float64     `json:"avg_response_sec" db:"avg_response_sec"`
	Difficulty     Difficulty  `json:"difficulty" db:"difficulty"`
	Type           SessionType `json:"type" db:"session_type"`
}

// Validate checks the session's domain invariants.
func (s SessionEntry) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidSession)
	}
	if s.EndedAt.Before(s.StartedAt) {
		return fmt.Errorf("%w: ended_at before started_at", ErrInvalidSession)
	}
	if s.CardsCorrect < 0 || s.CardsIncorrect < 0 || s.CardsTotal < 0 {
		return fmt.Errorf("%w: negative card count", ErrInvalidSession)
	}
	if s.CardsCorrect+s.CardsIncorrect != s.CardsTotal {
		return fmt.Errorf("%w: cards %d+%d != total %d",
			ErrInvalidSession, s.CardsCorrect, s.CardsIncorrect, s.CardsTotal)
	}
	if s.CardsTotal > 0 && s.AvgResponseSec <= 0 {
		return fmt.Errorf("%w: avg response %.2fs must be > 0", ErrInvalidSession, s.AvgResponseSec)
	}
	if !s.Difficulty.IsValid() {
		return fmt.Errorf("%w: difficulty %q", ErrInvalidSession, string(s.Difficulty))
	}
	if !s.Type.IsValid() {
		return fmt.Errorf("%w: session type %q", ErrInvalidSession, string(s.Type))
	}
	return nil
}

// Accuracy returns the session accuracy as a rounded percentage.
// Sessions with no cards have zero accuracy.
func (s SessionEntry) Accuracy() float64 {
	if s.CardsTotal == 0 {
		return 0
	}
	return math.Round(float64(s.CardsCorrect) / float64(s.CardsTotal) * 100)
}

// Duration returns the session length.
func (s SessionEntry) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

// WordStrength is the per-user, per-word memory state. It is updated exactly
// once per review event, from the scheduler's output.
type WordStrength struct {
	UserID               string     `json:"user_id" db:"user_id"`
	WordID               string     `json:"word_id" db:"word_id"`
	Strength             float64    `json:"strength" db:"strength"`       // [0,1]
	Confidence           float64    `json:"confidence" db:"confidence"`   // [0,1]
	LastReview           *time.Time `json:"last_review" db:"last_review"` // nil before first review
	NextReview           time.Time  `json:"next_review" db:"next_review"`
	ReviewCount          int        `json:"review_count" db:"review_count"`
	ConsecutiveCorrect   int        `json:"consecutive_correct" db:"consecutive_correct"`
	ConsecutiveIncorrect int        `json:"consecutive_incorrect" db:"consecutive_incorrect"`
	DifficultyModifier   float64    `json:"difficulty_modifier" db:"difficulty_modifier"` // multiplicative, ~[0.8,1.2]
	IntervalDays         int        `json:"interval_days" db:"interval_days"`             // >= 1
	Ease                 float64    `json:"ease" db:"ease"`                               // >= 1.3
	Lapses               int        `json:"lapses" db:"lapses"`
	Status               Status     `json:"status" db:"status"`
}

// NewWordStrength creates a fresh record for an unseen word, due immediately.
func NewWordStrength(userID, wordID string, now time.Time) WordStrength {
	return WordStrength{
		UserID:             userID,
		WordID:             wordID,
		NextReview:         now,
		DifficultyModifier: 1.0,
		IntervalDays:       1,
		Ease:               2.5,
		Status:             StatusNew,
	}
}

// Validate checks the record's domain invariants. Out-of-range records are a
// caller contract violation and are rejected, never silently clamped.
func (w WordStrength) Validate() error {
	if w.UserID == "" || w.WordID == "" {
		return fmt.Errorf("%w: empty user or word id", ErrInvalidWordStrength)
	}
	if w.Strength < 0 || w.Strength > 1 {
		return fmt.Errorf("%w: strength %.3f out of range [0,1]", ErrInvalidWordStrength, w.Strength)
	}
	if w.Confidence < 0 || w.Confidence > 1 {
		return fmt.Errorf("%w: confidence %.3f out of range [0,1]", ErrInvalidWordStrength, w.Confidence)
	}
	if w.Ease < 1.3 {
		return fmt.Errorf("%w: ease %.3f below minimum 1.3", ErrInvalidWordStrength, w.Ease)
	}
	if w.IntervalDays < 1 {
		return fmt.Errorf("%w: interval %d days must be >= 1", ErrInvalidWordStrength, w.IntervalDays)
	}
	if w.DifficultyModifier < 0.5 || w.DifficultyModifier > 2.0 {
		return fmt.Errorf("%w: difficulty modifier %.3f out of range [0.5,2.0]", ErrInvalidWordStrength, w.DifficultyModifier)
	}
	if w.ReviewCount < 0 || w.Lapses < 0 {
		return fmt.Errorf("%w: negative counters", ErrInvalidWordStrength)
	}
	if w.ConsecutiveCorrect < 0 || w.ConsecutiveIncorrect < 0 {
		return fmt.Errorf("%w: negative streak counters", ErrInvalidWordStrength)
	}
	if w.ConsecutiveCorrect > 0 && w.ConsecutiveIncorrect > 0 {
		return fmt.Errorf("%w: both streak counters non-zero (%d correct, %d incorrect)",
			ErrInvalidWordStrength, w.ConsecutiveCorrect, w.ConsecutiveIncorrect)
	}
	if !w.Status.IsValid() {
		return fmt.Errorf("%w: status %q", ErrInvalidWordStrength, string(w.Status))
	}
	return nil
}

// ReviewSchedule is the scheduler's output for a single review. It is merged
// into the word's WordStrength record by the caller, not persisted directly.
type ReviewSchedule struct {
	NextReview           time.Time `json:"next_review"`
	IntervalDays         int       `json:"interval_days"`
	Priority             Priority  `json:"priority"`
	PredictedSuccessRate float64   `json:"predicted_success_rate"` // percentage [0,100]
}

// Velocity measures learning pace over the analysis window.
type Velocity struct {
	WordsPerWeek  float64 `json:"words_per_week"`
	MinutesPerDay float64 `json:"minutes_per_day"`
}

// Retention measures recall quality over the analysis window.
type Retention struct {
	Overall      float64                `json:"overall"` // percentage [0,100]
	ByDifficulty map[Difficulty]float64 `json:"by_difficulty,omitempty"`
}

// Performance measures accuracy and regularity over the analysis window.
type Performance struct {
	AverageAccuracy  float64 `json:"average_accuracy"`  // percentage [0,100]
	ConsistencyScore float64 `json:"consistency_score"` // [0,100]
}

// Recommendation is a single derived study suggestion.
type Recommendation struct {
	Priority Priority `json:"priority"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
}

// LearningAnalytics is the aggregator's output. Recomputed on demand;
// identical inputs yield identical output.
type LearningAnalytics struct {
	UserID          string           `json:"user_id"`
	Period          Period           `json:"period"`
	Velocity        Velocity         `json:"learning_velocity"`
	Retention       Retention        `json:"retention_rate"`
	Performance     Performance      `json:"performance"`
	Recommendations []Recommendation `json:"recommendations"`
}
