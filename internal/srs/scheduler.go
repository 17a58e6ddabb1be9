// Package srs implements an SM-2-derived spaced repetition scheduler for
// vocabulary words.
//
// The scheduler is a pure function of its inputs: it never mutates the word
// record it is given, and the caller supplies the current instant, so the
// same (word, outcome, now) triple always produces the same schedule.
//
// Basic usage:
//
//	s, err := srs.New(srs.DefaultParams())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	word := model.NewWordStrength("u1", "w1", time.Now())
//	word, schedule, err := s.Review(word, true, time.Now())
package srs

import (
	"math"
	"sort"
	"time"

	"github.com/wordpulse/wordpulse/internal/model"
)

const hoursPerDay = 24.0

// Scheduler computes review schedules for word strength records.
type Scheduler struct {
	p Params
}

// New creates a Scheduler from the given params; invalid params return an error.
func New(p Params) (*Scheduler, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{p: p}, nil
}

// Params returns the scheduler's parameters.
func (s *Scheduler) Params() Params {
	return s.p
}

// Review processes one pass/fail review of the word at the given time.
// It returns the updated record and the resulting schedule; the input record
// is not mutated. Malformed records and suspended words are rejected.
func (s *Scheduler) Review(w model.WordStrength, wasCorrect bool, now time.Time) (model.WordStrength, model.ReviewSchedule, error) {
	if err := w.Validate(); err != nil {
		return model.WordStrength{}, model.ReviewSchedule{}, err
	}
	if w.Status == model.StatusSuspended {
		return model.WordStrength{}, model.ReviewSchedule{}, ErrSuspendedWord
	}

	overdueDays := now.Sub(w.NextReview).Hours() / hoursPerDay
	if overdueDays < 0 {
		overdueDays = 0
	}

	next := w
	if wasCorrect {
		next.ConsecutiveCorrect = w.ConsecutiveCorrect + 1
		next.ConsecutiveIncorrect = 0
		// Ease bonus diminishes as the streak grows.
		bonus := s.p.EaseBonus / (1 + s.p.StreakDamping*float64(next.ConsecutiveCorrect-1))
		next.Ease = w.Ease + bonus
		next.IntervalDays = s.nextInterval(w.IntervalDays, next.Ease, w.DifficultyModifier)
		next.Strength = w.Strength + (1-w.Strength)*s.p.StrengthGain
		next.Confidence = w.Confidence + (1-w.Confidence)*s.p.ConfidenceGain
	} else {
		// Lapse: interval collapses to the minimum regardless of history.
		next.ConsecutiveIncorrect = w.ConsecutiveIncorrect + 1
		next.ConsecutiveCorrect = 0
		next.Lapses = w.Lapses + 1
		next.Ease = math.Max(s.p.MinEase, w.Ease-s.p.EasePenalty)
		next.IntervalDays = s.p.MinIntervalDays
		next.Strength = w.Strength * s.p.StrengthDecay
		next.Confidence = w.Confidence * s.p.ConfidenceDecay
	}

	next.ReviewCount = w.ReviewCount + 1
	reviewedAt := now
	next.LastReview = &reviewedAt
	next.NextReview = now.AddDate(0, 0, next.IntervalDays)
	next.Status = s.nextStatus(next, wasCorrect)

	schedule := model.ReviewSchedule{
		NextReview:           next.NextReview,
		IntervalDays:         next.IntervalDays,
		Priority:             classifyPriority(s.p, next.IntervalDays, next.ConsecutiveIncorrect, overdueDays),
		PredictedSuccessRate: s.PredictedSuccessRate(next, next.NextReview),
	}
	return next, schedule, nil
}

// PredictedSuccessRate estimates the recall probability for the word at the
// given time, as a percentage in [0,100]. It rises with strength and ease and
// falls with time elapsed since the last review; 100 is reached only at full
// strength with zero elapsed time.
func (s *Scheduler) PredictedSuccessRate(w model.WordStrength, at time.Time) float64 {
	var elapsedDays float64
	if w.LastReview != nil {
		elapsedDays = at.Sub(*w.LastReview).Hours() / hoursPerDay
	}
	if elapsedDays < 0 {
		elapsedDays = 0
	}
	stability := s.p.StabilityScale * w.Ease * float64(w.IntervalDays)
	rate := 100 * w.Strength * math.Exp(-elapsedDays/stability)
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}

// nextInterval grows the interval multiplicatively, rounded up to whole days
// and capped. A hard word's modifier can pull ease x modifier below 1, so the
// result is floored at one day above the previous interval; a correct answer
// never shortens the schedule.
func (s *Scheduler) nextInterval(intervalDays int, ease, modifier float64) int {
	next := int(math.Ceil(float64(intervalDays) * ease * modifier))
	if next < s.p.MinIntervalDays {
		next = s.p.MinIntervalDays
	}
	if next <= intervalDays {
		next = intervalDays + 1
	}
	if next > s.p.MaxIntervalDays {
		next = s.p.MaxIntervalDays
	}
	return next
}

// nextStatus applies the learning lifecycle transitions to the updated record.
func (s *Scheduler) nextStatus(w model.WordStrength, wasCorrect bool) model.Status {
	if !wasCorrect {
		return model.StatusLearning
	}
	if w.ReviewCount >= s.p.MasteredReviews &&
		w.IntervalDays >= s.p.MasteredIntervalDays &&
		w.Strength >= s.p.MasteredStrength {
		return model.StatusMastered
	}
	if w.ReviewCount >= s.p.GraduationReviews {
		return model.StatusReview
	}
	return model.StatusLearning
}

// classifyPriority is a deterministic function of the interval, the incorrect
// streak, and how overdue the word was at review time. Overdue words are
// never low priority.
func classifyPriority(p Params, intervalDays, consecIncorrect int, overdueDays float64) model.Priority {
	switch {
	case consecIncorrect >= 2 || overdueDays >= float64(p.OverdueUrgentDays):
		return model.PriorityUrgent
	case consecIncorrect == 1 || overdueDays > 0:
		return model.PriorityHigh
	case intervalDays <= p.ShortIntervalDays:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// DueWords returns the words due for review at the given time, most urgent
// first, limited to at most limit entries (no limit when limit <= 0).
// Suspended words are skipped.
func (s *Scheduler) DueWords(words []model.WordStrength, now time.Time, limit int) []model.WordStrength {
	var due []model.WordStrength
	for _, w := range words {
		if w.Status == model.StatusSuspended {
			continue
		}
		if w.NextReview.After(now) {
			continue
		}
		due = append(due, w)
	}

	sort.Slice(due, func(i, j int) bool {
		pi := s.QueuePriority(due[i], now)
		pj := s.QueuePriority(due[j], now)
		if pi != pj {
			return pi > pj
		}
		if !due[i].NextReview.Equal(due[j].NextReview) {
			return due[i].NextReview.Before(due[j].NextReview)
		}
		if due[i].Strength != due[j].Strength {
			return due[i].Strength < due[j].Strength
		}
		return due[i].WordID < due[j].WordID
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due
}

// QueuePriority classifies how urgently the word needs review at the given
// time, using the same rules Review applies at review time.
func (s *Scheduler) QueuePriority(w model.WordStrength, now time.Time) model.Priority {
	overdueDays := now.Sub(w.NextReview).Hours() / hoursPerDay
	if overdueDays < 0 {
		overdueDays = 0
	}
	return classifyPriority(s.p, w.IntervalDays, w.ConsecutiveIncorrect, overdueDays)
}
