package model

import (
	"encoding"
	"fmt"
)

// Period selects the trailing analysis window for aggregation.
type Period int

const (
	PeriodWeek    Period = iota + 1 // trailing 7 daily entries
	PeriodMonth                     // trailing 30 daily entries
	PeriodQuarter                   // trailing 90 daily entries
	PeriodAll                       // unfiltered
)

var (
	periodNames  = [...]string{PeriodWeek: "week", PeriodMonth: "month", PeriodQuarter: "quarter", PeriodAll: "all"}
	periodByName = map[string]Period{
		"week":    PeriodWeek,
		"month":   PeriodMonth,
		"quarter": PeriodQuarter,
		"all":     PeriodAll,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Period(0)
	_ encoding.TextMarshaler   = Period(0)
	_ encoding.TextUnmarshaler = (*Period)(nil)
)

// ParsePeriod converts a name ("week", "month", "quarter", "all") to a Period.
func ParsePeriod(s string) (Period, error) {
	p, ok := periodByName[s]
	if !ok {
		return 0, fmt.Errorf("model: unknown period %q", s)
	}
	return p, nil
}

// IsValid reports whether p is a known period.
func (p Period) IsValid() bool {
	return p >= PeriodWeek && p <= PeriodAll
}

// Window returns the number of trailing entries for the period, 0 for all.
func (p Period) Window() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	case PeriodQuarter:
		return 90
	default:
		return 0
	}
}

// String returns the period name. For invalid values it returns "Period(n)".
func (p Period) String() string {
	if p.IsValid() {
		return periodNames[p]
	}
	return fmt.Sprintf("Period(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Period) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("model: invalid period: %d", int(p))
	}
	return []byte(periodNames[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Period) UnmarshalText(text []byte) error {
	v, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Priority ranks review urgency and recommendation importance.
// Higher values are more urgent.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

var (
	priorityNames  = [...]string{PriorityLow: "low", PriorityMedium: "medium", PriorityHigh: "high", PriorityUrgent: "urgent"}
	priorityByName = map[string]Priority{
		"low":    PriorityLow,
		"medium": PriorityMedium,
		"high":   PriorityHigh,
		"urgent": PriorityUrgent,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Priority(0)
	_ encoding.TextMarshaler   = Priority(0)
	_ encoding.TextUnmarshaler = (*Priority)(nil)
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	return p >= PriorityLow && p <= PriorityUrgent
}

// String returns the priority name. For invalid values it returns "Priority(n)".
func (p Priority) String() string {
	if p.IsValid() {
		return priorityNames[p]
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("model: invalid priority: %d", int(p))
	}
	return []byte(priorityNames[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	v, ok := priorityByName[string(text)]
	if !ok {
		return fmt.Errorf("model: invalid priority: %q", text)
	}
	*p = v
	return nil
}

// Difficulty is a CEFR-style proficiency tag, ordered A1 < A2 < B1 < B2 < C1.
type Difficulty string

const (
	DifficultyA1 Difficulty = "A1"
	DifficultyA2 Difficulty = "A2"
	DifficultyB1 Difficulty = "B1"
	DifficultyB2 Difficulty = "B2"
	DifficultyC1 Difficulty = "C1"
)

var difficultyLevels = map[Difficulty]int{
	DifficultyA1: 1,
	DifficultyA2: 2,
	DifficultyB1: 3,
	DifficultyB2: 4,
	DifficultyC1: 5,
}

// Difficulties lists all levels in ascending order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyA1, DifficultyA2, DifficultyB1, DifficultyB2, DifficultyC1}
}

// IsValid reports whether d is a known level.
func (d Difficulty) IsValid() bool {
	_, ok := difficultyLevels[d]
	return ok
}

// Level returns the ordinal position on the scale, 0 for unknown tags.
func (d Difficulty) Level() int {
	return difficultyLevels[d]
}

// Status tags a word's place in the learning lifecycle.
type Status string

const (
	StatusNew       Status = "new"
	StatusLearning  Status = "learning"
	StatusReview    Status = "review"
	StatusMastered  Status = "mastered"
	StatusSuspended Status = "suspended"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusLearning, StatusReview, StatusMastered, StatusSuspended:
		return true
	}
	return false
}

// SessionType tags the practice mode of a session.
type SessionType string

const (
	SessionFlashcards SessionType = "flashcards"
	SessionQuiz       SessionType = "quiz"
	SessionListening  SessionType = "listening"
	SessionWriting    SessionType = "writing"
)

// IsValid reports whether t is a known session type.
func (t SessionType) IsValid() bool {
	switch t {
	case SessionFlashcards, SessionQuiz, SessionListening, SessionWriting:
		return true
	}
	return false
}

// Trend classifies the direction of a chart series.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)
